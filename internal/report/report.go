// Package report implements the Reporter of spec.md §4.6: pure functions
// turning a shake.Result into the text/JSON/Markdown/DOT/adjacency-list
// forms spec.md §6.3/§6.4 fix the shape of, plus the auxiliary analyses
// (circular dependencies, impact analysis, largest symbols) that sit
// alongside them.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/aaamil13/symgraph/internal/graph"
	"github.com/aaamil13/symgraph/internal/shake"
)

// Options configures DOT rendering (spec.md §4.6).
type Options struct {
	MaxNodes     int
	IncludedOnly bool
}

// DefaultOptions matches spec.md §4.6's stated default.
func DefaultOptions() Options { return Options{MaxNodes: 100} }

// Summary renders every stat on a single text line.
func Summary(r *shake.Result) string {
	s := r.Statistics
	return fmt.Sprintf(
		"total: %d  included: %d  unused: %d  removal_rate: %.2f%%",
		s.Total, s.Included, s.Unused, s.RemovalRate,
	)
}

// Detailed renders Summary followed by entry points and the included/unused
// symbols grouped by file, per spec.md §4.6.
func Detailed(r *shake.Result, table *graph.Table) string {
	var b strings.Builder
	b.WriteString(Summary(r))
	b.WriteString("\n\n")

	b.WriteString("entry points:\n")
	for _, id := range sortedCopy(r.EntryPoints) {
		b.WriteString("  " + id + "\n")
	}
	for _, id := range r.MissingEntries {
		b.WriteString("  " + id + " (missing)\n")
	}

	b.WriteString("\nincluded:\n")
	writeGroupedSymbols(&b, r.IncludedByFile, table)

	b.WriteString("\nunused:\n")
	writeGroupedSymbols(&b, r.UnusedByFile, table)

	return b.String()
}

func writeGroupedSymbols(b *strings.Builder, byFile map[string][]string, table *graph.Table) {
	for _, fileKey := range sortedKeys(byFile) {
		b.WriteString("  " + fileKey + ":\n")
		for _, id := range byFile[fileKey] {
			sym, ok := table.Get(id)
			typeText := ""
			if ok && sym.TypeText != "" {
				typeText = " : " + sym.TypeText
			}
			b.WriteString("    " + id + typeText + "\n")
		}
	}
}

// jsonFileSummary is one entry of §6.3's fileAnalysis object.
type jsonFileSummary struct {
	TotalSymbols    int     `json:"totalSymbols"`
	IncludedSymbols int     `json:"includedSymbols"`
	UnusedSymbols   int     `json:"unusedSymbols"`
	RemovalRate     float64 `json:"removalRate"`
}

// jsonReport mirrors spec.md §6.3's exact top-level key names.
type jsonReport struct {
	Timestamp       string                     `json:"timestamp"`
	EntryPoints     []string                   `json:"entry_points"`
	Statistics      jsonStatistics             `json:"statistics"`
	IncludedSymbols []string                   `json:"includedSymbols"`
	UnusedSymbols   []string                   `json:"unusedSymbols"`
	FileAnalysis    map[string]jsonFileSummary `json:"fileAnalysis"`
}

type jsonStatistics struct {
	Total       int     `json:"total"`
	Included    int     `json:"included"`
	Unused      int     `json:"unused"`
	RemovalRate float64 `json:"removal_rate"`
}

// JSON renders r per spec.md §6.3. timestamp is injected by the caller
// (ISO 8601) since this package performs no wall-clock reads.
func JSON(r *shake.Result, timestamp string) ([]byte, error) {
	fileAnalysis := make(map[string]jsonFileSummary)
	fileKeys := make(map[string]struct{})
	for k := range r.IncludedByFile {
		fileKeys[k] = struct{}{}
	}
	for k := range r.UnusedByFile {
		fileKeys[k] = struct{}{}
	}
	for fileKey := range fileKeys {
		included := len(r.IncludedByFile[fileKey])
		unused := len(r.UnusedByFile[fileKey])
		total := included + unused
		rate := 0.0
		if total > 0 {
			rate = round2(100 * float64(unused) / float64(total))
		}
		fileAnalysis[fileKey] = jsonFileSummary{
			TotalSymbols:    total,
			IncludedSymbols: included,
			UnusedSymbols:   unused,
			RemovalRate:     rate,
		}
	}

	out := jsonReport{
		Timestamp:       timestamp,
		EntryPoints:     append([]string(nil), r.EntryPoints...),
		IncludedSymbols: sortedSetKeys(r.Included),
		UnusedSymbols:   sortedSetKeys(r.Unused),
		FileAnalysis:    fileAnalysis,
		Statistics: jsonStatistics{
			Total:       r.Statistics.Total,
			Included:    r.Statistics.Included,
			Unused:      r.Statistics.Unused,
			RemovalRate: r.Statistics.RemovalRate,
		},
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		return nil, fmt.Errorf("report: encode json: %w", err)
	}
	return buf.Bytes(), nil
}

// Markdown renders the same content as Detailed, as headings and tables.
func Markdown(r *shake.Result, table *graph.Table) string {
	var b strings.Builder
	s := r.Statistics

	b.WriteString("# Dependency Analysis\n\n")
	b.WriteString("| total | included | unused | removal_rate |\n")
	b.WriteString("|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %.2f%% |\n\n", s.Total, s.Included, s.Unused, s.RemovalRate)

	b.WriteString("## Entry points\n\n")
	for _, id := range sortedCopy(r.EntryPoints) {
		b.WriteString("- " + id + "\n")
	}
	for _, id := range r.MissingEntries {
		b.WriteString("- " + id + " _(missing)_\n")
	}

	b.WriteString("\n## Included\n\n")
	writeMarkdownGroup(&b, r.IncludedByFile, table)

	b.WriteString("\n## Unused\n\n")
	writeMarkdownGroup(&b, r.UnusedByFile, table)

	return b.String()
}

func writeMarkdownGroup(b *strings.Builder, byFile map[string][]string, table *graph.Table) {
	for _, fileKey := range sortedKeys(byFile) {
		fmt.Fprintf(b, "### %s\n\n", fileKey)
		b.WriteString("| symbol | type |\n|---|---|\n")
		for _, id := range byFile[fileKey] {
			typeText := ""
			if sym, ok := table.Get(id); ok {
				typeText = sym.TypeText
			}
			fmt.Fprintf(b, "| %s | %s |\n", id, typeText)
		}
		b.WriteString("\n")
	}
}

// DOT renders r as a graphviz digraph per spec.md §6.4's exact grammar.
func DOT(r *shake.Result, table *graph.Table, opts Options) string {
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = 100
	}

	var nodeIDs []string
	if opts.IncludedOnly {
		nodeIDs = sortedSetKeys(r.Included)
	} else {
		nodeIDs = append(sortedSetKeys(r.Included), sortedSetKeys(r.Unused)...)
		sort.Strings(nodeIDs)
	}
	if len(nodeIDs) > opts.MaxNodes {
		nodeIDs = nodeIDs[:opts.MaxNodes]
	}
	present := make(map[string]struct{}, len(nodeIDs))
	for _, id := range nodeIDs {
		present[id] = struct{}{}
	}

	var b strings.Builder
	b.WriteString("digraph Dependencies {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node[shape=box,style=filled];\n")

	for _, id := range nodeIDs {
		_, included := r.Included[id]
		color := "lightcoral"
		if included {
			color = "lightgreen"
		}
		label := localName(id)
		fmt.Fprintf(&b, "  %q [label=%q, fillcolor=%s];\n", id, escapeLabel(label), color)
	}

	for _, id := range nodeIDs {
		for _, dep := range table.Dependencies(id) {
			if _, ok := present[dep]; !ok {
				continue
			}
			fmt.Fprintf(&b, "  %q -> %q;\n", id, dep)
		}
	}

	b.WriteString("}\n")
	return b.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

func localName(id string) string {
	idx := strings.LastIndex(id, ":")
	if idx < 0 {
		return id
	}
	return id[idx+1:]
}

// AdjacencyList renders every symbol in included ∪ unused, its sorted
// dependency ids (or "(none)"), sorted by local name.
func AdjacencyList(r *shake.Result, table *graph.Table) string {
	ids := append(sortedSetKeys(r.Included), sortedSetKeys(r.Unused)...)
	sort.Slice(ids, func(i, j int) bool {
		return localName(ids[i]) < localName(ids[j])
	})

	var b strings.Builder
	for _, id := range ids {
		sym, ok := table.Get(id)
		if ok {
			fmt.Fprintf(&b, "%s (%s:%d)\n", id, sym.FileKey, sym.Location.Start.Line)
		} else {
			fmt.Fprintf(&b, "%s\n", id)
		}
		deps := table.Dependencies(id)
		if len(deps) == 0 {
			b.WriteString("  (none)\n")
			continue
		}
		for _, dep := range deps {
			b.WriteString("  " + dep + "\n")
		}
	}
	return b.String()
}

// FindCircularDependencies exposes graph.Table's cycle detection.
func FindCircularDependencies(table *graph.Table) [][]string {
	return table.FindCycles()
}

// Impact is the result of ImpactAnalysisOf, which wraps reverse_closure({id})
// per spec.md §4.6.
type Impact struct {
	Direct []string
	All    []string
	Count  int
}

// ImpactAnalysisOf computes the direct and transitive dependents of id.
func ImpactAnalysisOf(table *graph.Table, id string) Impact {
	direct := table.Dependents(id)
	all := sortedSetKeys(table.ReverseClosure([]string{id}))
	// ReverseClosure includes id itself; the impact set is its dependents.
	filtered := all[:0:0]
	for _, candidate := range all {
		if candidate != id {
			filtered = append(filtered, candidate)
		}
	}
	return Impact{Direct: direct, All: filtered, Count: len(filtered)}
}

// LargestSymbol is one entry of FindLargestSymbols' ranking.
type LargestSymbol struct {
	ID    string
	Count int
}

// FindLargestSymbols returns the top-k symbols ranked by |dependencies|,
// ties broken by id.
func FindLargestSymbols(table *graph.Table, k int) []LargestSymbol {
	all := table.AllSymbols()
	ranked := make([]LargestSymbol, len(all))
	for i, sym := range all {
		ranked[i] = LargestSymbol{ID: sym.FullyQualifiedID, Count: len(sym.Dependencies)}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].ID < ranked[j].ID
	})
	if k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedSetKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedCopy(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}

func round2(v float64) float64 {
	shifted := v*100 + 0.5
	return float64(int64(shifted)) / 100
}
