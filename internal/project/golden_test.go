package project_test

import (
	"context"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/aaamil13/symgraph/internal/extract"
	"github.com/aaamil13/symgraph/internal/project"
	"github.com/aaamil13/symgraph/internal/resolve"
	"github.com/aaamil13/symgraph/internal/shake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// goldenProject is a small multi-file TypeScript project fixture encoded as
// a txtar archive: one file per "-- name --" header, contents until the
// next header. shapes.ts/app.ts form a used path from the entry point;
// orphan.ts is reachable by nothing and exercises the unused partition;
// cyclic_a.ts/cyclic_b.ts depend on each other directly.
const goldenProject = `
-- shapes.ts --
export interface Shape {
  area(): number;
}

export function describe(s: Shape): string {
  return "shape with area " + s.area();
}
-- app.ts --
import { describe } from './shapes';

export function run(): string {
  return describe({ area: () => 1 });
}
-- orphan.ts --
export function unreachable(): number {
  return 42;
}
-- cyclic_a.ts --
import { b } from './cyclic_b';

export function a(): number {
  return b();
}
-- cyclic_b.ts --
import { a } from './cyclic_a';

export function b(): number {
  return a();
}
`

func parseGoldenProject(t *testing.T) []project.SourceFile {
	t.Helper()
	archive := txtar.Parse([]byte(goldenProject))
	require.NotEmpty(t, archive.Files)

	files := make([]project.SourceFile, 0, len(archive.Files))
	for _, f := range archive.Files {
		files = append(files, project.SourceFile{
			FileKey: extract.FileKeyForPath(f.Name),
			Path:    f.Name,
			Content: f.Data,
		})
	}
	return files
}

func analyzeGoldenProject(t *testing.T) *project.Result {
	t.Helper()
	analyzer := project.New(project.Options{WorkerCount: 4, Resolve: resolve.DefaultOptions()})
	result, err := analyzer.Analyze(context.Background(), parseGoldenProject(t))
	require.NoError(t, err)
	require.Empty(t, result.Diagnostics)
	return result
}

// TestGoldenProject_IdentityMatchesFileKeyAndName checks P1: every symbol's
// FullyQualifiedID is exactly "<file_key>:<name>".
func TestGoldenProject_IdentityMatchesFileKeyAndName(t *testing.T) {
	result := analyzeGoldenProject(t)

	for _, sym := range result.Table.AllSymbols() {
		fileKey, name, found := strings.Cut(sym.FullyQualifiedID, ":")
		require.True(t, found, "id %q must contain a ':' separator", sym.FullyQualifiedID)
		assert.Equal(t, sym.Name, name)
		assert.NotEmpty(t, fileKey)
	}
}

// TestGoldenProject_NoSymbolDependsOnItself checks P3: Dependencies never
// contains the symbol's own id.
func TestGoldenProject_NoSymbolDependsOnItself(t *testing.T) {
	result := analyzeGoldenProject(t)

	for _, sym := range result.Table.AllSymbols() {
		assert.NotContains(t, sym.Dependencies, sym.FullyQualifiedID)
	}
}

// TestGoldenProject_EdgesAreConsistent checks P2: for every dependency edge
// A->B, B lists A as a dependent.
func TestGoldenProject_EdgesAreConsistent(t *testing.T) {
	result := analyzeGoldenProject(t)

	for _, sym := range result.Table.AllSymbols() {
		for depID := range sym.Dependencies {
			dep, ok := result.Table.Get(depID)
			require.True(t, ok, "dependency %q of %q must resolve", depID, sym.FullyQualifiedID)
			assert.Contains(t, dep.Dependents, sym.FullyQualifiedID)
		}
	}
}

// TestGoldenProject_TreeShakingPartitionsEveryUnreachableSymbolAsUnused
// checks P7: shaking from app:run includes the used path and partitions
// orphan.ts's symbol into Unused, with Included and Unused disjoint.
func TestGoldenProject_TreeShakingPartitionsEveryUnreachableSymbolAsUnused(t *testing.T) {
	result := analyzeGoldenProject(t)

	shaken := shake.Shake(result.Table, []string{"app:run"})

	assert.Contains(t, shaken.Included, "app:run")
	assert.Contains(t, shaken.Included, "shapes:describe")
	assert.Contains(t, shaken.Unused, "orphan:unreachable")

	for id := range shaken.Included {
		assert.NotContains(t, shaken.Unused, id)
	}
}

// TestGoldenProject_FindsTheDirectCycle checks P9: a direct two-symbol
// cycle is reported by FindCycles.
func TestGoldenProject_FindsTheDirectCycle(t *testing.T) {
	result := analyzeGoldenProject(t)

	cycles := result.Table.FindCycles()
	require.NotEmpty(t, cycles)

	found := false
	for _, cycle := range cycles {
		ids := strings.Join(cycle, ",")
		if strings.Contains(ids, "cyclic_a:a") && strings.Contains(ids, "cyclic_b:b") {
			found = true
			break
		}
	}
	assert.True(t, found, "expected a cycle containing cyclic_a:a and cyclic_b:b, got %v", cycles)
}
