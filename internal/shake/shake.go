// Package shake implements the TreeShaker of spec.md §4.5: given a
// populated graph.Table and a set of entry-point ids, compute the live
// (included) and dead (unused) symbol sets, grouped by owning file, plus
// the removal-rate statistics the Reporter displays.
package shake

import (
	"sort"
	"strings"

	"github.com/aaamil13/symgraph/internal/graph"
)

// Statistics is the spec.md §4.5 summary.
type Statistics struct {
	Total        int
	Included     int
	Unused       int
	RemovalRate  float64
}

// Result is the spec.md §4.5 TreeShakingResult.
type Result struct {
	EntryPoints    []string
	Included       map[string]struct{}
	Unused         map[string]struct{}
	IncludedByFile map[string][]string
	UnusedByFile   map[string][]string
	MissingEntries []string
	Statistics     Statistics
}

// Shake computes the forward closure of entries over table, the unused
// complement, and per-file groupings. Entry ids that do not resolve to any
// symbol are retained in MissingEntries rather than failing the operation
// (spec.md §4.5).
func Shake(table *graph.Table, entries []string) *Result {
	var missing []string
	var liveRoots []string
	for _, id := range entries {
		if _, ok := table.Get(id); ok {
			liveRoots = append(liveRoots, id)
		} else {
			missing = append(missing, id)
			liveRoots = append(liveRoots, id) // still seeds the closure per spec.
		}
	}

	included := table.ForwardClosure(liveRoots)
	unused := table.FindUnused(included)

	total := len(table.AllSymbols())
	removalRate := 0.0
	if total > 0 {
		removalRate = round2(100 * float64(len(unused)) / float64(total))
	}

	return &Result{
		EntryPoints:    append([]string(nil), entries...),
		Included:       included,
		Unused:         unused,
		IncludedByFile: groupByFile(included),
		UnusedByFile:   groupByFile(unused),
		MissingEntries: missing,
		Statistics: Statistics{
			Total:       total,
			Included:    len(included),
			Unused:      len(unused),
			RemovalRate: removalRate,
		},
	}
}

func groupByFile(ids map[string]struct{}) map[string][]string {
	out := make(map[string][]string)
	for id := range ids {
		fileKey := fileKeyOf(id)
		out[fileKey] = append(out[fileKey], id)
	}
	for fileKey := range out {
		sort.Strings(out[fileKey])
	}
	return out
}

func fileKeyOf(id string) string {
	idx := strings.LastIndex(id, ":")
	if idx < 0 {
		return id
	}
	return id[:idx]
}

func round2(v float64) float64 {
	shifted := v*100 + 0.5
	return float64(int64(shifted)) / 100
}
