// Package project implements the ProjectAnalyzer of spec.md §4.4: it drives
// extraction across every root source file — in bounded concurrency, one
// goroutine per in-flight file via golang.org/x/sync/errgroup — then
// serializes the resulting FileSymbols into a single graph.Table, since
// insert_file mutates shared maps and cannot run concurrently (spec.md §5).
package project

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/aaamil13/symgraph/internal/cache"
	"github.com/aaamil13/symgraph/internal/extract"
	"github.com/aaamil13/symgraph/internal/graph"
	"github.com/aaamil13/symgraph/internal/logging"
	"github.com/aaamil13/symgraph/internal/resolve"
	"github.com/aaamil13/symgraph/internal/symbols"
	"github.com/aaamil13/symgraph/internal/symerr"
	"github.com/aaamil13/symgraph/internal/tscheck"
	"github.com/aaamil13/symgraph/internal/tsparse"
)

// SourceFile is one already-loaded root source file; file I/O is a caller
// concern (spec.md §1 scopes it out of the core).
type SourceFile struct {
	FileKey string
	Path    string
	Content []byte
}

// Options configures one analysis run.
type Options struct {
	// WorkerCount bounds concurrent per-file extraction; 0 means 1.
	WorkerCount int
	// Strict, when true, turns any non-empty diagnostics list into a fatal
	// HasDiagnostics error.
	Strict bool
	Resolve resolve.Options
}

// Statistics is the spec.md §4.4 summary record.
type Statistics struct {
	TotalFiles   int
	TotalSymbols int
	TotalImports int
	TotalEdges   int
	PerFile      map[string]int
}

// Result is the populated ProjectSymbolTable plus its statistics and
// recoverable diagnostics (spec.md §6.2's ProjectAnalysisResult).
type Result struct {
	Table       *graph.Table
	Diagnostics []error
	Statistics  Statistics
}

// Analyzer drives extraction over a set of source files.
type Analyzer struct {
	Options  Options
	Provider *tsparse.Provider
	Cache    *cache.Cache // optional; nil disables the content-hash cache
	log      *logging.Logger
}

// New builds an Analyzer with the given options.
func New(opts Options) *Analyzer {
	if opts.WorkerCount <= 0 {
		opts.WorkerCount = 1
	}
	return &Analyzer{
		Options:  opts,
		Provider: tsparse.NewProvider(),
		log:      logging.New("project"),
	}
}

// WithCache attaches a content-hash cache; Analyze consults it before
// extracting a file and populates it afterward. A nil cache (the default)
// simply disables the optimization.
func (a *Analyzer) WithCache(c *cache.Cache) *Analyzer {
	a.Cache = c
	return a
}

// extractResult holds one file's outcome: either a FileSymbols ready for
// insertion, or a recoverable diagnostic (the file is then dropped, per
// spec.md §7's file-granularity recovery policy).
type extractResult struct {
	fileKey string
	fs      *symbols.FileSymbols
	diag    error
}

// Analyze runs SymbolExtractor over every file and assembles a graph.Table.
func (a *Analyzer) Analyze(ctx context.Context, files []SourceFile) (*Result, error) {
	if len(files) == 0 {
		return nil, &symerr.InvalidInput{Reason: "no root files supplied"}
	}

	results := make([]*extractResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, a.Options.WorkerCount)

	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return &symerr.Cancelled{Stage: "extraction"}
			}
			defer func() { <-sem }()

			select {
			case <-gctx.Done():
				return &symerr.Cancelled{Stage: "extraction"}
			default:
			}

			res, err := a.extractOne(file)
			if err != nil {
				a.log.Warn("file extraction failed", "path", file.Path, "error", err)
				results[i] = &extractResult{fileKey: file.FileKey, diag: err}
				return nil // recoverable: dropped below, not fatal to the group.
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	table := graph.New()
	var diagnostics []error
	perFile := make(map[string]int)
	totalImports := 0

	for _, res := range results {
		if res == nil {
			continue
		}
		if res.diag != nil {
			diagnostics = append(diagnostics, res.diag)
			continue
		}
		if err := table.InsertFile(res.fs); err != nil {
			return nil, err
		}
		perFile[res.fileKey] = len(res.fs.AllSymbols())
		totalImports += len(res.fs.Imports())
	}

	if a.Options.Strict && len(diagnostics) > 0 {
		return nil, &symerr.HasDiagnostics{Count: len(diagnostics)}
	}

	stats := Statistics{
		TotalFiles:   len(table.AllFiles()),
		TotalSymbols: len(table.AllSymbols()),
		TotalImports: totalImports,
		TotalEdges:   countEdges(table),
		PerFile:      perFile,
	}

	return &Result{Table: table, Diagnostics: diagnostics, Statistics: stats}, nil
}

func countEdges(table *graph.Table) int {
	total := 0
	for _, sym := range table.AllSymbols() {
		total += len(table.Dependencies(sym.FullyQualifiedID))
	}
	return total
}

func (a *Analyzer) extractOne(file SourceFile) (*extractResult, error) {
	var hash string
	if a.Cache != nil {
		hash = cache.ContentHash(file.Content)
		if fs, found, err := a.Cache.Get(hash, file.FileKey); err == nil && found {
			return &extractResult{fileKey: file.FileKey, fs: fs}, nil
		} else if err != nil {
			a.log.Warn("cache lookup failed", "path", file.Path, "error", err)
		}
	}

	dialect, ok := tsparse.DialectForPath(file.Path)
	if !ok {
		return nil, &symerr.InvalidInput{Reason: "unrecognized source extension", Path: file.Path}
	}

	parsed, err := a.Provider.Parse(dialect, file.Content)
	if err != nil {
		return nil, &symerr.CheckerError{Path: file.Path, Err: err}
	}
	defer parsed.Close()

	ex := extract.New(a.Options.Resolve)
	prog := tscheck.NewProgram(file.FileKey, file.Path, parsed)
	fileSymbols := ex.Extract(prog)

	if a.Cache != nil {
		if err := a.Cache.Put(hash, fileSymbols); err != nil {
			a.log.Warn("cache store failed", "path", file.Path, "error", err)
		}
	}

	return &extractResult{fileKey: file.FileKey, fs: fileSymbols}, nil
}

// FileKeysSorted returns PerFile's keys in sorted order, for callers that
// need a deterministic iteration over a plain map.
func (s Statistics) FileKeysSorted() []string {
	keys := make([]string, 0, len(s.PerFile))
	for k := range s.PerFile {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
