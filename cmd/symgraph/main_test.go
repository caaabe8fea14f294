package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaamil13/symgraph/internal/config"
)

func TestRootCmd_RegistersEverySubcommand(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"analyze", "report", "shake", "cycles", "impact", "graph", "watch"} {
		assert.True(t, names[want], "expected subcommand %q to be registered", want)
	}
}

func TestMatchesAnyGlob_EmptyPatternsMatchEverything(t *testing.T) {
	assert.True(t, matchesAnyGlob("widget.ts", nil))
}

func TestMatchesAnyGlob_MatchesExtensionPattern(t *testing.T) {
	assert.True(t, matchesAnyGlob("src/widget.ts", []string{"**/*.ts"}))
	assert.False(t, matchesAnyGlob("src/widget.css", []string{"**/*.ts"}))
}

func TestMatchesAnyGlob_MatchesDirectoryFragment(t *testing.T) {
	assert.True(t, matchesAnyGlob("node_modules/lodash/index.js", []string{"**/node_modules/**"}))
	assert.False(t, matchesAnyGlob("src/index.js", []string{"**/node_modules/**"}))
}

func TestRunAnalysis_GathersAndAnalyzesProjectSourceFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "math.ts"), []byte(`export function square(n: number): number { return n * n; }`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte(`not source`), 0o644))

	result, err := runAnalysis(context.Background(), dir, config.Defaults(), nil)
	require.NoError(t, err)

	_, ok := result.Table.Get("math:square")
	assert.True(t, ok)
	assert.Equal(t, 1, result.Statistics.TotalFiles)
}
