package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aaamil13/symgraph/internal/report"
	"github.com/aaamil13/symgraph/internal/store"
)

var flagReportTop int

var reportCmd = &cobra.Command{
	Use:   "report <path>",
	Short: "Render the last analyze snapshot for a project without re-scanning it",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().IntVar(&flagReportTop, "top", 10, "number of largest symbols (by dependency count) to list")
}

func runReport(cmd *cobra.Command, args []string) error {
	projectPath := args[0]

	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return err
	}

	s, err := store.Open(flagStoreDBPath)
	if err != nil {
		return fmt.Errorf("opening snapshot store: %w", err)
	}
	defer s.Close()

	table, found, err := s.LoadAnalysis(absPath)
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}
	if !found {
		return fmt.Errorf("no saved snapshot for %s: run `symgraph analyze` first", absPath)
	}

	files := table.AllFiles()
	symbols := table.AllSymbols()
	fmt.Println("Project:", absPath)
	fmt.Println("Files:  ", len(files))
	fmt.Println("Symbols:", len(symbols))

	largest := report.FindLargestSymbols(table, flagReportTop)
	if len(largest) == 0 {
		return nil
	}
	fmt.Printf("\nTop %d symbols by dependency count:\n", len(largest))
	for _, ls := range largest {
		fmt.Printf("  %-40s %d\n", ls.ID, ls.Count)
	}
	return nil
}
