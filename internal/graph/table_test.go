package graph_test

import (
	"testing"

	"github.com/aaamil13/symgraph/internal/graph"
	"github.com/aaamil13/symgraph/internal/symbols"
	"github.com/aaamil13/symgraph/internal/symerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func symbolIn(fs *symbols.FileSymbols, name string, deps ...string) *symbols.Symbol {
	sym := symbols.NewSymbol(fs.FileKey, name, symbols.KindFunction)
	for _, d := range deps {
		sym.AddDependency(d)
	}
	fs.AddExport(sym)
	return sym
}

func TestInsertFile_WiresForwardAndReverseEdges(t *testing.T) {
	tbl := graph.New()

	fs := symbols.NewFileSymbols("a.ts")
	symbolIn(fs, "FuncA", "a.ts:FuncB")
	symbolIn(fs, "FuncB")

	require.NoError(t, tbl.InsertFile(fs))

	assert.Equal(t, []string{"a.ts:FuncB"}, tbl.Dependencies("a.ts:FuncA"))
	assert.Equal(t, []string{"a.ts:FuncA"}, tbl.Dependents("a.ts:FuncB"))
	assert.Empty(t, tbl.Dependencies("a.ts:FuncB"))
}

func TestInsertFile_DuplicateIDFails(t *testing.T) {
	tbl := graph.New()

	fs1 := symbols.NewFileSymbols("a.ts")
	symbolIn(fs1, "Shared")
	require.NoError(t, tbl.InsertFile(fs1))

	fs2 := symbols.NewFileSymbols("a.ts")
	symbolIn(fs2, "Shared")
	err := tbl.InsertFile(fs2)

	require.Error(t, err)
	var dup *symerr.DuplicateSymbol
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "a.ts:Shared", dup.ID)
}

func TestRemoveFile_ClearsIncidentEdgesBothDirections(t *testing.T) {
	tbl := graph.New()

	a := symbols.NewFileSymbols("a.ts")
	symbolIn(a, "FuncA", "b.ts:FuncB")
	require.NoError(t, tbl.InsertFile(a))

	b := symbols.NewFileSymbols("b.ts")
	symbolIn(b, "FuncB")
	require.NoError(t, tbl.InsertFile(b))

	tbl.RemoveFile("b.ts")

	_, ok := tbl.Get("b.ts:FuncB")
	assert.False(t, ok)
	assert.Empty(t, tbl.Dependencies("a.ts:FuncA"))

	_, ok = tbl.File("b.ts")
	assert.False(t, ok)
	assert.NotContains(t, tbl.AllFiles(), "b.ts")
}

func TestForwardClosure_FollowsTransitiveChain(t *testing.T) {
	tbl := graph.New()
	fs := symbols.NewFileSymbols("m.ts")
	symbolIn(fs, "Entry", "m.ts:Mid")
	symbolIn(fs, "Mid", "m.ts:Leaf")
	symbolIn(fs, "Leaf")
	symbolIn(fs, "Unrelated")
	require.NoError(t, tbl.InsertFile(fs))

	closure := tbl.ForwardClosure([]string{"m.ts:Entry"})

	assert.Len(t, closure, 3)
	assert.Contains(t, closure, "m.ts:Entry")
	assert.Contains(t, closure, "m.ts:Mid")
	assert.Contains(t, closure, "m.ts:Leaf")
	assert.NotContains(t, closure, "m.ts:Unrelated")
}

func TestReverseClosure_FindsAllAncestors(t *testing.T) {
	tbl := graph.New()
	fs := symbols.NewFileSymbols("m.ts")
	symbolIn(fs, "Root", "m.ts:Target")
	symbolIn(fs, "Mid", "m.ts:Root")
	symbolIn(fs, "Target")
	require.NoError(t, tbl.InsertFile(fs))

	closure := tbl.ReverseClosure([]string{"m.ts:Target"})

	assert.Contains(t, closure, "m.ts:Root")
	assert.Contains(t, closure, "m.ts:Mid")
	assert.Contains(t, closure, "m.ts:Target")
}

func TestFindUnused_ComputesComplementOfLiveSet(t *testing.T) {
	tbl := graph.New()
	fs := symbols.NewFileSymbols("m.ts")
	symbolIn(fs, "Entry", "m.ts:Used")
	symbolIn(fs, "Used")
	symbolIn(fs, "Dead")
	require.NoError(t, tbl.InsertFile(fs))

	live := tbl.ForwardClosure([]string{"m.ts:Entry"})
	unused := tbl.FindUnused(live)

	assert.Len(t, unused, 1)
	assert.Contains(t, unused, "m.ts:Dead")
}

func TestFindCycles_DetectsDirectCycle(t *testing.T) {
	tbl := graph.New()
	fs := symbols.NewFileSymbols("m.ts")
	symbolIn(fs, "A", "m.ts:B")
	symbolIn(fs, "B", "m.ts:C")
	symbolIn(fs, "C", "m.ts:A")
	require.NoError(t, tbl.InsertFile(fs))

	cycles := tbl.FindCycles()

	require.Len(t, cycles, 1)
	assert.ElementsMatch(t, []string{"m.ts:A", "m.ts:B", "m.ts:C"}, cycles[0][:len(cycles[0])-1])
	assert.Equal(t, cycles[0][0], cycles[0][len(cycles[0])-1])
}

func TestFindCycles_AcyclicGraphYieldsNone(t *testing.T) {
	tbl := graph.New()
	fs := symbols.NewFileSymbols("m.ts")
	symbolIn(fs, "A", "m.ts:B")
	symbolIn(fs, "B")
	require.NoError(t, tbl.InsertFile(fs))

	assert.Empty(t, tbl.FindCycles())
}

func TestAllSymbols_SortedByID(t *testing.T) {
	tbl := graph.New()
	fs := symbols.NewFileSymbols("z.ts")
	symbolIn(fs, "Zeta")
	symbolIn(fs, "Alpha")
	require.NoError(t, tbl.InsertFile(fs))

	all := tbl.AllSymbols()
	require.Len(t, all, 2)
	assert.Equal(t, "z.ts:Alpha", all[0].FullyQualifiedID)
	assert.Equal(t, "z.ts:Zeta", all[1].FullyQualifiedID)
}
