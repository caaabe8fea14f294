package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aaamil13/symgraph/internal/report"
)

var cyclesCmd = &cobra.Command{
	Use:   "cycles <path>",
	Short: "Find circular dependency chains in a project's symbol graph",
	Args:  cobra.ExactArgs(1),
	RunE:  runCycles,
}

func runCycles(cmd *cobra.Command, args []string) error {
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

	cycles := report.FindCircularDependencies(result.Table)
	if len(cycles) == 0 {
		fmt.Println("No circular dependencies found.")
		return nil
	}

	for _, cycle := range cycles {
		fmt.Println(strings.Join(cycle, " -> "))
	}
	return nil
}
