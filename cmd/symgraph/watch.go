package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aaamil13/symgraph/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <path>",
	Short: "Analyze a project once, then keep its symbol graph current as files change",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	projectPath := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	c, err := openCache()
	if err != nil {
		return fmt.Errorf("opening extraction cache: %w", err)
	}
	defer c.Close()

	fmt.Println("Performing initial analysis of", projectPath)
	result, err := runAnalysis(context.Background(), projectPath, cfg, c)
	if err != nil {
		return err
	}
	fmt.Printf("Initial analysis complete: %d files, %d symbols\n", result.Statistics.TotalFiles, result.Statistics.TotalSymbols)

	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return err
	}

	w, err := watch.New(absPath, result.Table, cfg.Resolve(), func(fileKey string, err error) {
		if err != nil {
			fmt.Printf("refresh failed for %s: %v\n", fileKey, err)
			return
		}
		fmt.Println("refreshed:", fileKey)
	})
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	w.WithCache(c)
	if err := w.Start(); err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}

	fmt.Println("Watching for changes. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\nStopping watcher...")
	return w.Stop()
}
