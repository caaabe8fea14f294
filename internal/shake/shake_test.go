package shake_test

import (
	"testing"

	"github.com/aaamil13/symgraph/internal/graph"
	"github.com/aaamil13/symgraph/internal/shake"
	"github.com/aaamil13/symgraph/internal/symbols"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTable(t *testing.T) *graph.Table {
	t.Helper()
	tbl := graph.New()
	fs := symbols.NewFileSymbols("app")

	entry := symbols.NewSymbol("app", "main", symbols.KindFunction)
	entry.AddDependency("app:used")
	fs.AddExport(entry)

	used := symbols.NewSymbol("app", "used", symbols.KindFunction)
	fs.AddExport(used)

	dead := symbols.NewSymbol("app", "dead", symbols.KindFunction)
	fs.AddInternal(dead)

	require.NoError(t, tbl.InsertFile(fs))
	return tbl
}

func TestShake_ComputesIncludedAndUnused(t *testing.T) {
	tbl := buildTable(t)

	result := shake.Shake(tbl, []string{"app:main"})

	assert.Contains(t, result.Included, "app:main")
	assert.Contains(t, result.Included, "app:used")
	assert.Contains(t, result.Unused, "app:dead")
	assert.Empty(t, result.MissingEntries)
}

func TestShake_GroupsByFile(t *testing.T) {
	tbl := buildTable(t)
	result := shake.Shake(tbl, []string{"app:main"})

	assert.ElementsMatch(t, []string{"app:main", "app:used"}, result.IncludedByFile["app"])
	assert.ElementsMatch(t, []string{"app:dead"}, result.UnusedByFile["app"])
}

func TestShake_RemovalRate(t *testing.T) {
	tbl := buildTable(t)
	result := shake.Shake(tbl, []string{"app:main"})

	assert.Equal(t, 3, result.Statistics.Total)
	assert.Equal(t, 2, result.Statistics.Included)
	assert.Equal(t, 1, result.Statistics.Unused)
	assert.InDelta(t, 33.33, result.Statistics.RemovalRate, 0.01)
}

func TestShake_MissingEntryPointIsRecordedNotFatal(t *testing.T) {
	tbl := buildTable(t)
	result := shake.Shake(tbl, []string{"app:main", "app:ghost"})

	assert.Equal(t, []string{"app:ghost"}, result.MissingEntries)
	assert.Contains(t, result.Included, "app:main")
}

func TestShake_EmptyTableYieldsZeroRemovalRate(t *testing.T) {
	tbl := graph.New()
	result := shake.Shake(tbl, nil)

	assert.Equal(t, 0.0, result.Statistics.RemovalRate)
	assert.Equal(t, 0, result.Statistics.Total)
}
