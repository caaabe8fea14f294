package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aaamil13/symgraph/internal/fsutil"
	"github.com/aaamil13/symgraph/internal/store"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <path>",
	Short: "Analyze a project and persist the resulting symbol graph",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	projectPath := "."
	if len(args) == 1 {
		projectPath = args[0]
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Println("Analyzing project:", projectPath)

	c, err := openCache()
	if err != nil {
		return fmt.Errorf("opening extraction cache: %w", err)
	}
	defer c.Close()

	result, err := runAnalysis(context.Background(), projectPath, cfg, c)
	if err != nil {
		return err
	}

	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return err
	}
	if err := fsutil.EnsureDir(filepath.Dir(flagStoreDBPath)); err != nil {
		return fmt.Errorf("creating snapshot store directory: %w", err)
	}
	s, err := store.Open(flagStoreDBPath)
	if err != nil {
		return fmt.Errorf("opening snapshot store: %w", err)
	}
	defer s.Close()

	if err := s.SaveAnalysis(absPath, result.Table); err != nil {
		return fmt.Errorf("saving analysis: %w", err)
	}

	stats := result.Statistics
	fmt.Println("Files:  ", stats.TotalFiles)
	fmt.Println("Symbols:", stats.TotalSymbols)
	fmt.Println("Imports:", stats.TotalImports)
	fmt.Println("Edges:  ", stats.TotalEdges)
	if len(result.Diagnostics) > 0 {
		fmt.Printf("%d file(s) produced recoverable diagnostics:\n", len(result.Diagnostics))
		for _, d := range result.Diagnostics {
			fmt.Println(" -", d)
		}
	}

	return nil
}
