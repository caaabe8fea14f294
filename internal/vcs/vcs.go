// Package vcs maps a git revision range onto the changed-symbol entry
// points spec.md's impact_analysis consumes. It has no teacher file to
// ground on directly — neither go-git nor sourcegraph/go-diff is ever
// imported by the teacher's own code, despite both being declared in
// go.mod — so this package is grounded on the shape of
// internal/ai/change_tracker.go: a content change feeds forward into an
// impact computation instead of being reported on its own.
package vcs

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	godiff "github.com/sourcegraph/go-diff/diff"

	"github.com/aaamil13/symgraph/internal/extract"
	"github.com/aaamil13/symgraph/internal/graph"
)

// Hunk is one changed line range of one file, in the "new" (working tree
// or target revision) side's line numbering.
type Hunk struct {
	Path     string
	NewStart int
	NewLines int
}

// DiffSince opens the repository at repoPath and diffs sinceRev against
// HEAD, returning every hunk touched in between.
func DiffSince(repoPath, sinceRev string) ([]Hunk, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("vcs: open repository at %s: %w", repoPath, err)
	}

	sinceTree, err := resolveTree(repo, sinceRev)
	if err != nil {
		return nil, err
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("vcs: resolve HEAD: %w", err)
	}
	headTree, err := resolveTree(repo, head.Hash().String())
	if err != nil {
		return nil, err
	}

	patch, err := sinceTree.Patch(headTree)
	if err != nil {
		return nil, fmt.Errorf("vcs: diff %s..HEAD: %w", sinceRev, err)
	}

	fileDiffs, err := godiff.ParseMultiFileDiff([]byte(patch.String()))
	if err != nil {
		return nil, fmt.Errorf("vcs: parse unified diff: %w", err)
	}

	var hunks []Hunk
	for _, fd := range fileDiffs {
		path := diffTargetPath(fd.NewName)
		if path == "" {
			continue // file deleted between the two revisions.
		}
		for _, h := range fd.Hunks {
			hunks = append(hunks, Hunk{
				Path:     path,
				NewStart: int(h.NewStartLine),
				NewLines: int(h.NewLines),
			})
		}
	}
	return hunks, nil
}

func resolveTree(repo *git.Repository, rev string) (*object.Tree, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("vcs: resolve revision %q: %w", rev, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("vcs: load commit %q: %w", rev, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("vcs: load tree for %q: %w", rev, err)
	}
	return tree, nil
}

func diffTargetPath(name string) string {
	name = strings.TrimPrefix(name, "b/")
	if name == "/dev/null" {
		return ""
	}
	return name
}

// ChangedSymbols maps hunks against table's symbol locations, returning the
// sorted, de-duplicated fully-qualified ids of every symbol whose source
// range overlaps a changed line. The result is usable directly as
// TreeShaker/impact-analysis entry points (`symgraph impact --since <rev>`).
//
// A hunk whose file_key isn't present in table (renamed, deleted, or
// outside the analyzed source set) contributes nothing. Because
// Symbol.Location.End currently mirrors Start's line (extract.go records
// only a start position per declaration), overlap here is checked against
// each symbol's start line rather than its full body range — a change deep
// inside a multi-line function's body that doesn't also touch its
// declaration line can be missed. Spec.md's Non-goals already exclude
// tracking value flow; this is the same granularity limit applied to
// change detection.
func ChangedSymbols(table *graph.Table, hunks []Hunk) []string {
	seen := make(map[string]struct{})
	for _, h := range hunks {
		fileKey := extract.FileKeyForPath(h.Path)
		fs, ok := table.File(fileKey)
		if !ok {
			continue
		}
		hunkEnd := h.NewStart + h.NewLines
		for _, sym := range fs.AllSymbols() {
			line := sym.Location.Start.Line
			if line >= h.NewStart && line <= hunkEnd {
				seen[sym.FullyQualifiedID] = struct{}{}
			}
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
