package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aaamil13/symgraph/internal/report"
	"github.com/aaamil13/symgraph/internal/shake"
)

var (
	flagGraphEntries      []string
	flagGraphDOT          bool
	flagGraphMaxNodes     int
	flagGraphIncludedOnly bool
)

var graphCmd = &cobra.Command{
	Use:   "graph <path>",
	Short: "Render a project's dependency graph as DOT or an adjacency list",
	Args:  cobra.ExactArgs(1),
	RunE:  runGraph,
}

func init() {
	graphCmd.Flags().StringSliceVar(&flagGraphEntries, "entry", nil, "entry-point symbol id (repeatable); omit to treat every exported symbol as live")
	graphCmd.Flags().BoolVar(&flagGraphDOT, "dot", false, "render Graphviz DOT instead of a plain adjacency list")
	graphCmd.Flags().IntVar(&flagGraphMaxNodes, "max-nodes", 100, "cap on the number of DOT nodes rendered")
	graphCmd.Flags().BoolVar(&flagGraphIncludedOnly, "included-only", false, "omit unused symbols from DOT output")
}

func runGraph(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	c, err := openCache()
	if err != nil {
		return fmt.Errorf("opening extraction cache: %w", err)
	}
	defer c.Close()

	result, err := runAnalysis(context.Background(), args[0], cfg, c)
	if err != nil {
		return err
	}

	entries := flagGraphEntries
	if len(entries) == 0 {
		for _, sym := range result.Table.AllSymbols() {
			if sym.IsExported {
				entries = append(entries, sym.FullyQualifiedID)
			}
		}
	}
	shaken := shake.Shake(result.Table, entries)

	if flagGraphDOT {
		opts := report.Options{MaxNodes: flagGraphMaxNodes, IncludedOnly: flagGraphIncludedOnly}
		fmt.Println(report.DOT(shaken, result.Table, opts))
		return nil
	}

	fmt.Println(report.AdjacencyList(shaken, result.Table))
	return nil
}
