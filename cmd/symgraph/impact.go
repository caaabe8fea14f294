package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aaamil13/symgraph/internal/report"
	"github.com/aaamil13/symgraph/internal/vcs"
)

var flagImpactSince string

var impactCmd = &cobra.Command{
	Use:   "impact <path> [id...]",
	Short: "Report what a symbol (or a git revision's changes) transitively affects",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runImpact,
}

func init() {
	impactCmd.Flags().StringVar(&flagImpactSince, "since", "", "git revision to diff against HEAD, seeding entry points from changed symbols")
}

func runImpact(cmd *cobra.Command, args []string) error {
	projectPath := args[0]
	ids := args[1:]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	c, err := openCache()
	if err != nil {
		return fmt.Errorf("opening extraction cache: %w", err)
	}
	defer c.Close()

	result, err := runAnalysis(context.Background(), projectPath, cfg, c)
	if err != nil {
		return err
	}

	if flagImpactSince != "" {
		hunks, err := vcs.DiffSince(projectPath, flagImpactSince)
		if err != nil {
			return fmt.Errorf("diffing since %s: %w", flagImpactSince, err)
		}
		ids = vcs.ChangedSymbols(result.Table, hunks)
		if len(ids) == 0 {
			fmt.Println("No changed symbols found since", flagImpactSince)
			return nil
		}
	}

	if len(ids) == 0 {
		return fmt.Errorf("impact requires at least one symbol id or --since <rev>")
	}

	for _, id := range ids {
		impact := report.ImpactAnalysisOf(result.Table, id)
		fmt.Printf("%s: %d direct dependent(s), %d total\n", id, len(impact.Direct), impact.Count)
		for _, dep := range impact.Direct {
			fmt.Println("  -", dep)
		}
	}
	return nil
}
