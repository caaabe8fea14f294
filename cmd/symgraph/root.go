package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aaamil13/symgraph/internal/cache"
	"github.com/aaamil13/symgraph/internal/config"
	"github.com/aaamil13/symgraph/internal/extract"
	"github.com/aaamil13/symgraph/internal/fsutil"
	"github.com/aaamil13/symgraph/internal/project"
)

var (
	flagConfigFile  string
	flagWorkerCount int
	flagIncludeSys  bool
	flagIncludeNM   bool
	flagFollowTypes bool
	flagStoreDBPath string
	flagCacheDir    string
)

var rootCmd = &cobra.Command{
	Use:           "symgraph",
	Short:         "Whole-project symbol and dependency graph analyzer",
	Long:          "symgraph builds a project-wide graph of top-level symbols and their dependencies, then answers tree-shaking, cycle, and impact-analysis questions over it.",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", ".symgraph.yaml", "path to a symgraph config file")
	rootCmd.PersistentFlags().IntVar(&flagWorkerCount, "worker-count", 0, "concurrent extraction workers (0 = use config default)")
	rootCmd.PersistentFlags().BoolVar(&flagIncludeSys, "include-system-symbols", true, "include dependencies on system/standard-library modules")
	rootCmd.PersistentFlags().BoolVar(&flagIncludeNM, "include-node-modules", true, "include dependencies on third-party modules")
	rootCmd.PersistentFlags().BoolVar(&flagFollowTypes, "follow-type-only-imports", false, "track dependencies to declarations referenced only as types")
	rootCmd.PersistentFlags().StringVar(&flagStoreDBPath, "db", ".symgraph/analysis.db", "snapshot store path")
	rootCmd.PersistentFlags().StringVar(&flagCacheDir, "cache-dir", ".symgraph/cache", "content-hash extraction cache directory")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(shakeCmd)
	rootCmd.AddCommand(cyclesCmd)
	rootCmd.AddCommand(impactCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(watchCmd)
}

// loadConfig builds the layered Config for the current invocation, binding
// the persistent flags viper should prefer over environment/file values.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(rootCmd.PersistentFlags(), flagConfigFile)
	if err != nil {
		return config.Config{}, err
	}
	if flagWorkerCount > 0 {
		cfg.WorkerCount = flagWorkerCount
	}
	flags := rootCmd.PersistentFlags()
	if flags.Changed("include-system-symbols") {
		cfg.IncludeSystemSymbols = flagIncludeSys
	}
	if flags.Changed("include-node-modules") {
		cfg.IncludeNodeModules = flagIncludeNM
	}
	if flags.Changed("follow-type-only-imports") {
		cfg.FollowTypeOnlyImports = flagFollowTypes
	}
	return cfg, nil
}

// openCache opens the on-disk content-hash extraction cache shared by every
// command so repeated runs against an unchanged file skip re-parsing it. A
// caller that doesn't want the cache (e.g. a test building its own fixture
// directory each time) may pass nil in its place to runAnalysis.
func openCache() (*cache.Cache, error) {
	if err := fsutil.EnsureDir(flagCacheDir); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return cache.Open(cache.Options{Dir: flagCacheDir})
}

// runAnalysis gathers every source file under projectPath and runs
// ProjectAnalyzer over it with cfg's resolver policy. c, if non-nil, lets
// the analyzer skip re-extracting a file whose content it has already
// cached.
func runAnalysis(ctx context.Context, projectPath string, cfg config.Config, c *cache.Cache) (*project.Result, error) {
	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, fmt.Errorf("resolving project path: %w", err)
	}

	ignore, err := fsutil.NewIgnoreMatcher(absPath)
	if err != nil {
		return nil, fmt.Errorf("building ignore matcher: %w", err)
	}

	var files []project.SourceFile
	err = fsutil.WalkProject(absPath, ignore, func(path string) error {
		rel, relErr := filepath.Rel(absPath, path)
		if relErr != nil {
			rel = path
		}
		if matchesAnyGlob(rel, cfg.ExcludeGlobs) || !matchesAnyGlob(rel, cfg.IncludeGlobs) {
			return nil
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		files = append(files, project.SourceFile{
			FileKey: extract.FileKeyForPath(path),
			Path:    path,
			Content: content,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking project: %w", err)
	}

	analyzer := project.New(project.Options{
		WorkerCount: cfg.WorkerCount,
		Resolve:     cfg.Resolve(),
	}).WithCache(c)
	return analyzer.Analyze(ctx, files)
}

// matchesAnyGlob reports whether relPath matches one of patterns, each a
// config include/exclude glob of the form "**/*.ts" or "**/node_modules/**".
// Path/filepath.Match has no "**" support, so a leading "**/" and a
// trailing "/**" are stripped before matching the remaining literal
// fragment against relPath's components; an empty pattern list matches
// everything (the all-inclusive default for include_globs with no filter).
func matchesAnyGlob(relPath string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	relPath = filepath.ToSlash(relPath)
	for _, pattern := range patterns {
		fragment := strings.TrimSuffix(strings.TrimPrefix(pattern, "**/"), "/**")
		if ok, _ := filepath.Match(fragment, filepath.Base(relPath)); ok {
			return true
		}
		if strings.Contains(relPath, fragment) {
			return true
		}
	}
	return false
}
