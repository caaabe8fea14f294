// Package tsparse provides the typed-syntax-tree layer spec.md §6.1 assumes
// as an external collaborator: a pool of tree-sitter parsers over the
// TypeScript/TSX/JavaScript grammars, producing a *sitter.Tree plus the
// source bytes every downstream package (internal/tscheck, internal/extract)
// walks.
package tsparse

import (
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Dialect identifies which grammar a file should be parsed with.
type Dialect string

const (
	DialectTypeScript Dialect = "typescript"
	DialectTSX        Dialect = "tsx"
	DialectJavaScript Dialect = "javascript"
)

// DialectForPath picks a Dialect from a file's extension, per spec.md §1's
// source-set definition.
func DialectForPath(path string) (Dialect, bool) {
	switch {
	case hasSuffix(path, ".tsx"):
		return DialectTSX, true
	case hasSuffix(path, ".ts"):
		return DialectTypeScript, true
	case hasSuffix(path, ".jsx"), hasSuffix(path, ".js"), hasSuffix(path, ".mjs"), hasSuffix(path, ".cjs"):
		return DialectJavaScript, true
	default:
		return "", false
	}
}

func hasSuffix(s, suffix string) bool {
	if len(s) < len(suffix) {
		return false
	}
	return s[len(s)-len(suffix):] == suffix
}

// ParseError is a single syntax error tree-sitter's error-recovery surfaced.
type ParseError struct {
	Message string
	Line    int
	Column  int
	Byte    uint32
}

// Result wraps a successful parse: the tree, the exact bytes it was built
// from (node text is always sliced from this, never re-read from disk), and
// any recovered syntax errors. Callers must call Close when done with it.
type Result struct {
	Tree       *sitter.Tree
	Dialect    Dialect
	Source     []byte
	RootNode   *sitter.Node
	Errors     []ParseError
}

// Close releases the underlying tree-sitter tree.
func (r *Result) Close() {
	if r.Tree != nil {
		r.Tree.Close()
	}
}

// HasErrors reports whether the parse recovered from at least one syntax
// error.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// Provider is a pool of tree-sitter parsers, one grammar per supported
// Dialect, safe for concurrent use by ProjectAnalyzer's bounded worker pool.
type Provider struct {
	grammars map[Dialect]*sitter.Language
	pool     sync.Pool
}

// NewProvider builds a Provider with the three grammars spec.md §1 needs
// already registered.
func NewProvider() *Provider {
	p := &Provider{
		grammars: map[Dialect]*sitter.Language{
			DialectTypeScript: typescript.GetLanguage(),
			DialectTSX:        tsx.GetLanguage(),
			DialectJavaScript: javascript.GetLanguage(),
		},
	}
	p.pool = sync.Pool{New: func() interface{} { return sitter.NewParser() }}
	return p
}

// Parse parses source under dialect and returns the resulting tree.
func (p *Provider) Parse(dialect Dialect, source []byte) (*Result, error) {
	grammar, ok := p.grammars[dialect]
	if !ok {
		return nil, fmt.Errorf("tsparse: unsupported dialect %q", dialect)
	}

	parser := p.pool.Get().(*sitter.Parser)
	defer p.pool.Put(parser)
	parser.SetLanguage(grammar)

	tree := parser.Parse(nil, source)
	if tree == nil {
		return nil, fmt.Errorf("tsparse: parser returned no tree for dialect %q", dialect)
	}

	root := tree.RootNode()
	result := &Result{
		Tree:     tree,
		Dialect:  dialect,
		Source:   source,
		RootNode: root,
	}
	if root.HasError() {
		result.Errors = collectErrors(root)
	}
	return result, nil
}

// ParseFile picks the Dialect from path's extension and parses source.
func (p *Provider) ParseFile(path string, source []byte) (*Result, error) {
	dialect, ok := DialectForPath(path)
	if !ok {
		return nil, fmt.Errorf("tsparse: %s has no recognized source extension", path)
	}
	return p.Parse(dialect, source)
}

func collectErrors(root *sitter.Node) []ParseError {
	var errs []ParseError
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "ERROR" || n.IsMissing() {
			errs = append(errs, ParseError{
				Message: fmt.Sprintf("syntax error at %s", n.Type()),
				Line:    int(n.StartPoint().Row) + 1,
				Column:  int(n.StartPoint().Column) + 1,
				Byte:    n.StartByte(),
			})
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return errs
}
