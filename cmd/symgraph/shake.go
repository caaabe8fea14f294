package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aaamil13/symgraph/internal/report"
	"github.com/aaamil13/symgraph/internal/shake"
)

var (
	flagShakeEntries []string
	flagShakeFormat  string
)

var shakeCmd = &cobra.Command{
	Use:   "shake <path>",
	Short: "Run tree-shaking from a set of entry points and report the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runShake,
}

func init() {
	shakeCmd.Flags().StringSliceVar(&flagShakeEntries, "entry", nil, "entry-point symbol id (repeatable)")
	shakeCmd.Flags().StringVar(&flagShakeFormat, "format", "summary", "output format: summary|detailed|json|markdown")
}

func runShake(cmd *cobra.Command, args []string) error {
	if len(flagShakeEntries) == 0 {
		return fmt.Errorf("shake requires at least one --entry id")
	}

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

	shaken := shake.Shake(result.Table, flagShakeEntries)

	switch flagShakeFormat {
	case "summary":
		fmt.Println(report.Summary(shaken))
	case "detailed":
		fmt.Println(report.Detailed(shaken, result.Table))
	case "markdown":
		fmt.Println(report.Markdown(shaken, result.Table))
	case "json":
		out, err := report.JSON(shaken, time.Now().UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("rendering json: %w", err)
		}
		fmt.Println(string(out))
	default:
		return fmt.Errorf("unknown format %q: want summary|detailed|json|markdown", flagShakeFormat)
	}

	return nil
}
