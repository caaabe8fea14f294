package store_test

import (
	"testing"

	"github.com/aaamil13/symgraph/internal/graph"
	"github.com/aaamil13/symgraph/internal/store"
	"github.com/aaamil13/symgraph/internal/symbols"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func buildTable(t *testing.T) *graph.Table {
	t.Helper()
	tbl := graph.New()
	fs := symbols.NewFileSymbols("app")

	main := symbols.NewSymbol("app", "main", symbols.KindFunction)
	main.IsExported = true
	main.AddDependency("app:helper")
	fs.AddExport(main)

	helper := symbols.NewSymbol("app", "helper", symbols.KindFunction)
	fs.AddInternal(helper)

	fs.AddImport(&symbols.Import{
		LocalName:    "lodash",
		FromModule:   "lodash",
		Normalized:   "lodash",
		Style:        symbols.ImportNamespace,
		OriginalName: "*",
	})

	require.NoError(t, tbl.InsertFile(fs))
	return tbl
}

func TestLoadAnalysis_NoSavedSnapshotReportsNotFound(t *testing.T) {
	s := openStore(t)

	table, found, err := s.LoadAnalysis("/nonexistent")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, table.AllFiles())
}

func TestSaveAndLoadAnalysis_RoundTripsSymbolsAndEdges(t *testing.T) {
	s := openStore(t)
	tbl := buildTable(t)

	require.NoError(t, s.SaveAnalysis("/project", tbl))

	loaded, found, err := s.LoadAnalysis("/project")
	require.NoError(t, err)
	require.True(t, found)

	main, ok := loaded.Get("app:main")
	require.True(t, ok)
	assert.True(t, main.IsExported)
	assert.Contains(t, main.Dependencies, "app:helper")

	helper, ok := loaded.Get("app:helper")
	require.True(t, ok)
	assert.False(t, helper.IsExported)

	fs, ok := loaded.File("app")
	require.True(t, ok)
	imports := fs.Imports()
	require.Len(t, imports, 1)
	assert.Equal(t, "lodash", imports[0].LocalName)
}

func TestSaveAnalysis_ReplacesPriorSnapshotForSameProject(t *testing.T) {
	s := openStore(t)
	tbl := buildTable(t)
	require.NoError(t, s.SaveAnalysis("/project", tbl))

	smaller := graph.New()
	fs := symbols.NewFileSymbols("other")
	sym := symbols.NewSymbol("other", "solo", symbols.KindConst)
	fs.AddExport(sym)
	require.NoError(t, smaller.InsertFile(fs))
	require.NoError(t, s.SaveAnalysis("/project", smaller))

	loaded, found, err := s.LoadAnalysis("/project")
	require.NoError(t, err)
	require.True(t, found)

	_, ok := loaded.Get("app:main")
	assert.False(t, ok)
	_, ok = loaded.Get("other:solo")
	assert.True(t, ok)
}
