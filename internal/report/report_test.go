package report_test

import (
	"encoding/json"
	"testing"

	"github.com/aaamil13/symgraph/internal/graph"
	"github.com/aaamil13/symgraph/internal/report"
	"github.com/aaamil13/symgraph/internal/shake"
	"github.com/aaamil13/symgraph/internal/symbols"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTable(t *testing.T) *graph.Table {
	t.Helper()
	tbl := graph.New()
	fs := symbols.NewFileSymbols("app")

	main := symbols.NewSymbol("app", "main", symbols.KindFunction)
	main.TypeText = "void"
	main.AddDependency("app:helper")
	fs.AddExport(main)

	helper := symbols.NewSymbol("app", "helper", symbols.KindFunction)
	fs.AddExport(helper)

	dead := symbols.NewSymbol("app", "dead", symbols.KindConst)
	fs.AddInternal(dead)

	require.NoError(t, tbl.InsertFile(fs))
	return tbl
}

func TestSummary_ReportsCountsAndRate(t *testing.T) {
	tbl := buildTable(t)
	result := shake.Shake(tbl, []string{"app:main"})

	out := report.Summary(result)
	assert.Contains(t, out, "total: 3")
	assert.Contains(t, out, "included: 2")
	assert.Contains(t, out, "unused: 1")
}

func TestDetailed_ListsEntryPointsAndGroupedSymbols(t *testing.T) {
	tbl := buildTable(t)
	result := shake.Shake(tbl, []string{"app:main"})

	out := report.Detailed(result, tbl)
	assert.Contains(t, out, "app:main")
	assert.Contains(t, out, "app:helper")
	assert.Contains(t, out, "app:dead")
	assert.Contains(t, out, "entry points:")
}

func TestJSON_MatchesTopLevelKeyNames(t *testing.T) {
	tbl := buildTable(t)
	result := shake.Shake(tbl, []string{"app:main"})

	raw, err := report.JSON(result, "2026-07-30T00:00:00Z")
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "2026-07-30T00:00:00Z", decoded["timestamp"])
	assert.Contains(t, decoded, "entry_points")
	assert.Contains(t, decoded, "statistics")
	assert.Contains(t, decoded, "includedSymbols")
	assert.Contains(t, decoded, "unusedSymbols")
	assert.Contains(t, decoded, "fileAnalysis")

	stats := decoded["statistics"].(map[string]interface{})
	assert.Equal(t, float64(3), stats["total"])
	assert.Equal(t, float64(2), stats["included"])
	assert.Equal(t, float64(1), stats["unused"])

	fileAnalysis := decoded["fileAnalysis"].(map[string]interface{})
	app := fileAnalysis["app"].(map[string]interface{})
	assert.Equal(t, float64(3), app["totalSymbols"])
	assert.Equal(t, float64(2), app["includedSymbols"])
	assert.Equal(t, float64(1), app["unusedSymbols"])
}

func TestMarkdown_ContainsHeadingsAndTables(t *testing.T) {
	tbl := buildTable(t)
	result := shake.Shake(tbl, []string{"app:main"})

	out := report.Markdown(result, tbl)
	assert.Contains(t, out, "# Dependency Analysis")
	assert.Contains(t, out, "## Entry points")
	assert.Contains(t, out, "## Included")
	assert.Contains(t, out, "## Unused")
	assert.Contains(t, out, "| symbol | type |")
}

func TestDOT_RendersIncludedGreenAndUnusedRed(t *testing.T) {
	tbl := buildTable(t)
	result := shake.Shake(tbl, []string{"app:main"})

	out := report.DOT(result, tbl, report.DefaultOptions())
	assert.Contains(t, out, "digraph Dependencies {")
	assert.Contains(t, out, `"app:main" [label="main", fillcolor=lightgreen];`)
	assert.Contains(t, out, `"app:dead" [label="dead", fillcolor=lightcoral];`)
	assert.Contains(t, out, `"app:main" -> "app:helper";`)
}

func TestDOT_IncludedOnlyOmitsUnusedNodes(t *testing.T) {
	tbl := buildTable(t)
	result := shake.Shake(tbl, []string{"app:main"})

	out := report.DOT(result, tbl, report.Options{MaxNodes: 100, IncludedOnly: true})
	assert.NotContains(t, out, "app:dead")
}

func TestDOT_RespectsMaxNodes(t *testing.T) {
	tbl := buildTable(t)
	result := shake.Shake(tbl, []string{"app:main"})

	out := report.DOT(result, tbl, report.Options{MaxNodes: 1})
	assert.Equal(t, 1, countOccurrences(out, "[label="))
}

func TestAdjacencyList_SortsByLocalNameAndMarksNone(t *testing.T) {
	tbl := buildTable(t)
	result := shake.Shake(tbl, []string{"app:main"})

	out := report.AdjacencyList(result, tbl)
	assert.Contains(t, out, "app:helper")
	assert.Contains(t, out, "(none)")
}

func TestFindCircularDependencies_DelegatesToTable(t *testing.T) {
	tbl := graph.New()
	fs := symbols.NewFileSymbols("cyc")
	a := symbols.NewSymbol("cyc", "a", symbols.KindFunction)
	a.AddDependency("cyc:b")
	fs.AddExport(a)
	b := symbols.NewSymbol("cyc", "b", symbols.KindFunction)
	b.AddDependency("cyc:a")
	fs.AddExport(b)
	require.NoError(t, tbl.InsertFile(fs))

	cycles := report.FindCircularDependencies(tbl)
	assert.NotEmpty(t, cycles)
}

func TestImpactAnalysisOf_ReturnsDirectAndTransitiveDependents(t *testing.T) {
	tbl := buildTable(t)

	impact := report.ImpactAnalysisOf(tbl, "app:helper")
	assert.Contains(t, impact.Direct, "app:main")
	assert.Contains(t, impact.All, "app:main")
	assert.Equal(t, 1, impact.Count)
}

func TestFindLargestSymbols_RanksByDependencyCount(t *testing.T) {
	tbl := buildTable(t)

	largest := report.FindLargestSymbols(tbl, 1)
	require.Len(t, largest, 1)
	assert.Equal(t, "app:main", largest[0].ID)
	assert.Equal(t, 1, largest[0].Count)
}

func countOccurrences(s, substr string) int {
	count := 0
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			count++
		}
	}
	return count
}
