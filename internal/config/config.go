// Package config implements the layered configuration `cmd/symgraph`
// reads before building an analyzer: flags override environment variables
// (prefixed SYMGRAPH_) which override a `.symgraph.yaml` project file which
// override the defaults below. The teacher's go.mod already declared
// spf13/viper and spf13/cobra without ever wiring either; this package is
// the first caller of viper in the tree, styled after how
// mvp-joe-canopy/cmd/canopy wires spf13/pflag-backed flags into its
// commands.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aaamil13/symgraph/internal/resolve"
)

// Config is the resolved set of knobs SPEC_FULL.md names: the resolver
// policy spec.md §4.3 step 7 describes, worker concurrency, report
// defaults, the project root, and file-selection globs.
type Config struct {
	IncludeSystemSymbols  bool
	IncludeNodeModules    bool
	FollowTypeOnlyImports bool

	WorkerCount int

	ReportFormat   string
	ReportMaxNodes int

	ProjectRoot  string
	IncludeGlobs []string
	ExcludeGlobs []string
}

// Resolve translates the resolver-relevant fields into resolve.Options.
func (c Config) Resolve() resolve.Options {
	return resolve.Options{
		IncludeSystemSymbols:  c.IncludeSystemSymbols,
		IncludeNodeModules:    c.IncludeNodeModules,
		SystemModulePrefixes:  []string{"node:"},
		FollowTypeOnlyImports: c.FollowTypeOnlyImports,
	}
}

// Defaults is the configuration a project gets when no flag, environment
// variable, or config file says otherwise.
func Defaults() Config {
	return Config{
		IncludeSystemSymbols:  true,
		IncludeNodeModules:    true,
		FollowTypeOnlyImports: false,
		WorkerCount:           4,
		ReportFormat:          "summary",
		ReportMaxNodes:        100,
		ProjectRoot:           ".",
		IncludeGlobs:          []string{"**/*.ts", "**/*.tsx", "**/*.js", "**/*.jsx"},
		ExcludeGlobs:          []string{"**/node_modules/**", "**/*.d.ts"},
	}
}

const envPrefix = "SYMGRAPH"

// Load builds a Config with precedence flags > SYMGRAPH_* environment
// variables > configPath (a YAML file, read if present) > Defaults. flags
// may be nil, in which case only environment and file layers apply.
// configPath not existing is not an error — it just means that layer
// contributes nothing.
func Load(flags *pflag.FlagSet, configPath string) (Config, error) {
	v := viper.New()
	d := Defaults()

	v.SetDefault("include_system_symbols", d.IncludeSystemSymbols)
	v.SetDefault("include_node_modules", d.IncludeNodeModules)
	v.SetDefault("follow_type_only_imports", d.FollowTypeOnlyImports)
	v.SetDefault("worker_count", d.WorkerCount)
	v.SetDefault("report_format", d.ReportFormat)
	v.SetDefault("report_max_nodes", d.ReportMaxNodes)
	v.SetDefault("project_root", d.ProjectRoot)
	v.SetDefault("include_globs", d.IncludeGlobs)
	v.SetDefault("exclude_globs", d.ExcludeGlobs)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
					return Config{}, fmt.Errorf("config: reading %s: %w", configPath, err)
				}
			}
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("config: binding flags: %w", err)
		}
	}

	return Config{
		IncludeSystemSymbols:  v.GetBool("include_system_symbols"),
		IncludeNodeModules:    v.GetBool("include_node_modules"),
		FollowTypeOnlyImports: v.GetBool("follow_type_only_imports"),
		WorkerCount:           v.GetInt("worker_count"),
		ReportFormat:          v.GetString("report_format"),
		ReportMaxNodes:        v.GetInt("report_max_nodes"),
		ProjectRoot:           v.GetString("project_root"),
		IncludeGlobs:          v.GetStringSlice("include_globs"),
		ExcludeGlobs:          v.GetStringSlice("exclude_globs"),
	}, nil
}
