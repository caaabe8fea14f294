package project_test

import (
	"context"
	"testing"

	"github.com/aaamil13/symgraph/internal/cache"
	"github.com/aaamil13/symgraph/internal/project"
	"github.com/aaamil13/symgraph/internal/resolve"
	"github.com/aaamil13/symgraph/internal/symerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_BuildsGraphAcrossFiles(t *testing.T) {
	files := []project.SourceFile{
		{
			FileKey: "math",
			Path:    "src/math.ts",
			Content: []byte(`export function square(n: number): number { return n * n; }`),
		},
		{
			FileKey: "app",
			Path:    "src/app.ts",
			Content: []byte(`
import { square } from './math';

export function run(n: number): number {
  return square(n);
}
`),
		},
	}

	analyzer := project.New(project.Options{WorkerCount: 2, Resolve: resolve.DefaultOptions()})
	result, err := analyzer.Analyze(context.Background(), files)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Empty(t, result.Diagnostics)
	assert.Equal(t, 2, result.Statistics.TotalFiles)
	assert.Equal(t, 1, result.Statistics.TotalImports)

	run, ok := result.Table.Get("app:run")
	require.True(t, ok)
	assert.Contains(t, run.Dependencies, "math:square")
}

func TestAnalyze_EmptyFileListIsInvalidInput(t *testing.T) {
	analyzer := project.New(project.Options{Resolve: resolve.DefaultOptions()})
	_, err := analyzer.Analyze(context.Background(), nil)

	require.Error(t, err)
	var invalid *symerr.InvalidInput
	require.ErrorAs(t, err, &invalid)
}

func TestAnalyze_RecoversFromUnrecognizedExtension(t *testing.T) {
	files := []project.SourceFile{
		{FileKey: "ok", Path: "src/ok.ts", Content: []byte(`export const x = 1;`)},
		{FileKey: "bad", Path: "src/bad.txt", Content: []byte(`not source`)},
	}

	analyzer := project.New(project.Options{Resolve: resolve.DefaultOptions()})
	result, err := analyzer.Analyze(context.Background(), files)
	require.NoError(t, err)

	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, 1, result.Statistics.TotalFiles)
}

func TestAnalyze_StrictModeFailsOnDiagnostics(t *testing.T) {
	files := []project.SourceFile{
		{FileKey: "bad", Path: "src/bad.txt", Content: []byte(`not source`)},
	}

	analyzer := project.New(project.Options{Strict: true, Resolve: resolve.DefaultOptions()})
	_, err := analyzer.Analyze(context.Background(), files)

	require.Error(t, err)
	var hasDiag *symerr.HasDiagnostics
	require.ErrorAs(t, err, &hasDiag)
}

func TestAnalyze_ReusesCachedExtractionOnSecondRun(t *testing.T) {
	c, err := cache.Open(cache.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	files := []project.SourceFile{
		{FileKey: "math", Path: "src/math.ts", Content: []byte(`export function square(n: number): number { return n * n; }`)},
	}

	analyzer := project.New(project.Options{Resolve: resolve.DefaultOptions()}).WithCache(c)

	first, err := analyzer.Analyze(context.Background(), files)
	require.NoError(t, err)
	_, ok := first.Table.Get("math:square")
	require.True(t, ok)

	second, err := analyzer.Analyze(context.Background(), files)
	require.NoError(t, err)
	sym, ok := second.Table.Get("math:square")
	require.True(t, ok)
	assert.Equal(t, "math:square", sym.FullyQualifiedID)
}
