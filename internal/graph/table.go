// Package graph implements the SymbolTable of spec.md §4.1: the in-memory
// project-wide dependency graph with O(1) lookup by id, O(deg) traversal,
// and deterministic iteration (insertion order for files/per-file maps,
// sorted id order for every graph query).
package graph

import (
	"sort"

	"github.com/aaamil13/symgraph/internal/symbols"
	"github.com/aaamil13/symgraph/internal/symerr"
)

// Table is the ProjectSymbolTable of spec.md §3. InsertFile and RemoveFile
// mutate shared maps; concurrent callers must serialize them.
type Table struct {
	fileOrder []string
	files     map[string]*symbols.FileSymbols

	global map[string]*symbols.Symbol

	forward map[string]map[string]struct{}
	reverse map[string]map[string]struct{}
}

// New returns an empty Table.
func New() *Table {
	return &Table{
		files:   make(map[string]*symbols.FileSymbols),
		global:  make(map[string]*symbols.Symbol),
		forward: make(map[string]map[string]struct{}),
		reverse: make(map[string]map[string]struct{}),
	}
}

// InsertFile registers fs's symbols into the table, assigning forward/reverse
// edges from each symbol's pre-populated Dependencies set. Fails with
// DuplicateSymbol if any id already exists; callers must RemoveFile first
// when re-analyzing a file (spec.md §3's atomic per-file refresh).
func (t *Table) InsertFile(fs *symbols.FileSymbols) error {
	all := fs.AllSymbols()
	for _, sym := range all {
		if _, exists := t.global[sym.FullyQualifiedID]; exists {
			return &symerr.DuplicateSymbol{ID: sym.FullyQualifiedID}
		}
	}

	if _, exists := t.files[fs.FileKey]; !exists {
		t.fileOrder = append(t.fileOrder, fs.FileKey)
	}
	t.files[fs.FileKey] = fs

	for _, sym := range all {
		t.global[sym.FullyQualifiedID] = sym
		for from := range t.reverse[sym.FullyQualifiedID] {
			sym.Dependents[from] = struct{}{}
		}
	}
	for _, sym := range all {
		for dep := range sym.Dependencies {
			t.addEdge(sym.FullyQualifiedID, dep)
		}
	}
	return nil
}

func (t *Table) addEdge(from, to string) {
	if from == to {
		return
	}
	if t.forward[from] == nil {
		t.forward[from] = make(map[string]struct{})
	}
	t.forward[from][to] = struct{}{}
	if t.reverse[to] == nil {
		t.reverse[to] = make(map[string]struct{})
	}
	t.reverse[to][from] = struct{}{}

	if sym, ok := t.global[to]; ok {
		sym.Dependents[from] = struct{}{}
	}
}

// RemoveFile deletes every symbol fileKey owns and every edge incident to
// them, in either direction, plus the file's imports.
func (t *Table) RemoveFile(fileKey string) {
	fs, ok := t.files[fileKey]
	if !ok {
		return
	}

	for _, sym := range fs.AllSymbols() {
		id := sym.FullyQualifiedID

		for dep := range t.forward[id] {
			delete(t.reverse[dep], id)
			if depSym, ok := t.global[dep]; ok {
				delete(depSym.Dependents, id)
			}
		}
		delete(t.forward, id)

		for dependent := range t.reverse[id] {
			delete(t.forward[dependent], id)
			if depSym, ok := t.global[dependent]; ok {
				delete(depSym.Dependencies, id)
			}
		}
		delete(t.reverse, id)

		delete(t.global, id)
	}

	delete(t.files, fileKey)
	for i, k := range t.fileOrder {
		if k == fileKey {
			t.fileOrder = append(t.fileOrder[:i], t.fileOrder[i+1:]...)
			break
		}
	}
}

// Get returns the Symbol with the given id, if any.
func (t *Table) Get(id string) (*symbols.Symbol, bool) {
	s, ok := t.global[id]
	return s, ok
}

// File returns the FileSymbols registered under fileKey, if any.
func (t *Table) File(fileKey string) (*symbols.FileSymbols, bool) {
	fs, ok := t.files[fileKey]
	return fs, ok
}

// AllFiles returns every registered file key in insertion order.
func (t *Table) AllFiles() []string {
	out := make([]string, len(t.fileOrder))
	copy(out, t.fileOrder)
	return out
}

// AllSymbols returns every Symbol, sorted by id.
func (t *Table) AllSymbols() []*symbols.Symbol {
	ids := t.sortedIDs()
	out := make([]*symbols.Symbol, len(ids))
	for i, id := range ids {
		out[i] = t.global[id]
	}
	return out
}

func (t *Table) sortedIDs() []string {
	ids := make([]string, 0, len(t.global))
	for id := range t.global {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Dependencies returns the sorted set of ids id directly depends on.
func (t *Table) Dependencies(id string) []string {
	return sortedSet(t.forward[id])
}

// Dependents returns the sorted set of ids that directly depend on id.
func (t *Table) Dependents(id string) []string {
	return sortedSet(t.reverse[id])
}

func sortedSet(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// ForwardClosure returns the set of ids reachable from roots by following
// forward edges, via FIFO BFS (first-visit wins).
func (t *Table) ForwardClosure(roots []string) map[string]struct{} {
	return t.closure(roots, t.forward)
}

// ReverseClosure returns the set of ids that can reach targets by following
// forward edges (i.e. BFS over reverse edges).
func (t *Table) ReverseClosure(targets []string) map[string]struct{} {
	return t.closure(targets, t.reverse)
}

func (t *Table) closure(roots []string, edges map[string]map[string]struct{}) map[string]struct{} {
	visited := make(map[string]struct{}, len(roots))
	queue := make([]string, 0, len(roots))
	for _, r := range roots {
		if _, seen := visited[r]; !seen {
			visited[r] = struct{}{}
			queue = append(queue, r)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for next := range edges[cur] {
			if _, seen := visited[next]; !seen {
				visited[next] = struct{}{}
				queue = append(queue, next)
			}
		}
	}
	return visited
}

// FindUnused returns all_symbols \ live.
func (t *Table) FindUnused(live map[string]struct{}) map[string]struct{} {
	unused := make(map[string]struct{})
	for id := range t.global {
		if _, ok := live[id]; !ok {
			unused[id] = struct{}{}
		}
	}
	return unused
}

// color is the grey/black marker cycle detection uses during DFS.
type color int

const (
	white color = iota
	grey
	black
)

// FindCycles runs a grey/black DFS starting from symbols in sorted id
// order, so cycle output is deterministic across runs on identical input
// (spec.md §4.1, P9). A cycle found on revisiting a grey node is the slice
// of the current path from that node's first occurrence through the
// re-encountered node. Duplicate cycles (same vertex set, different
// rotation/start point) may appear; callers may canonicalize.
func (t *Table) FindCycles() [][]string {
	colors := make(map[string]color, len(t.global))
	var path []string
	var cycles [][]string

	var visit func(id string)
	visit = func(id string) {
		colors[id] = grey
		path = append(path, id)

		for _, next := range sortedSet(t.forward[id]) {
			switch colors[next] {
			case white:
				visit(next)
			case grey:
				start := indexOf(path, next)
				if start >= 0 {
					cycle := make([]string, len(path[start:])+1)
					copy(cycle, path[start:])
					cycle[len(cycle)-1] = next
					cycles = append(cycles, cycle)
				}
			case black:
				// already fully explored, no new cycle through it
			}
		}

		path = path[:len(path)-1]
		colors[id] = black
	}

	for _, id := range t.sortedIDs() {
		if colors[id] == white {
			visit(id)
		}
	}
	return cycles
}

func indexOf(path []string, id string) int {
	for i, p := range path {
		if p == id {
			return i
		}
	}
	return -1
}
