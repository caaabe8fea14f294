// Package symbols defines the data model of spec.md §3: Symbol, Import,
// FileSymbols, and the per-project aggregate. A Symbol's dependencies are
// filled by the resolver through AddDependency during extraction; its
// dependents are filled by the graph package when files are inserted, and
// the graph package prunes both sets when a file is removed.
package symbols

// Position is a single point in source text.
type Position struct {
	Byte   int `json:"byte"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

// SourceLocation is a half-open [Start,End) byte range. The extractor
// records line/column for the start only; End carries the end byte and
// repeats Start's line and column.
type SourceLocation struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Kind is the closed set of top-level declaration kinds spec.md §3 names.
type Kind string

const (
	KindTypeAlias    Kind = "type-alias"
	KindInterface    Kind = "interface"
	KindClass        Kind = "class"
	KindEnum         Kind = "enum"
	KindFunction     Kind = "function"
	KindConst        Kind = "const"
	KindLet          Kind = "let"
	KindVar          Kind = "var"
	KindModuleBlock  Kind = "module-block"
)

// DeclRef is an opaque handle to the node in the typed syntax tree a Symbol
// originated from. Concrete checker adapters (internal/tscheck) supply the
// implementation; internal/graph never inspects it, and this package reads
// it only through DeclKind, in EffectiveKind.
type DeclRef interface {
	// DeclKind is the syntactic tag of the declaration node; it is not used
	// for identity or equality anywhere in the graph.
	DeclKind() string
}

// Symbol is a single top-level named declaration, per spec.md §3.
//
// Invariants (enforced by internal/graph, not by this type itself):
//   - FullyQualifiedID is unique within a project.
//   - Dependencies/Dependents never contain the symbol's own id.
//   - Every id in either set refers to a Symbol that exists in the table.
type Symbol struct {
	Name             string
	FullyQualifiedID string
	Kind             Kind
	TypeText         string
	DeclarationRef   DeclRef
	IsExported       bool
	Documentation    string
	Location         SourceLocation
	FileKey          string

	Dependencies map[string]struct{}
	Dependents   map[string]struct{}
}

// NewSymbol builds a Symbol with its identity derived per spec.md §6.5
// (fileKey ":" name) and empty dependency/dependent sets.
func NewSymbol(fileKey, name string, kind Kind) *Symbol {
	return &Symbol{
		Name:             name,
		FullyQualifiedID: fileKey + ":" + name,
		Kind:             kind,
		FileKey:          fileKey,
		Dependencies:     make(map[string]struct{}),
		Dependents:       make(map[string]struct{}),
	}
}

// AddDependency records that s depends on targetID, unless targetID equals
// s's own id (self-loops are never recorded, spec.md §3/§4.3).
func (s *Symbol) AddDependency(targetID string) {
	if targetID == s.FullyQualifiedID {
		return
	}
	s.Dependencies[targetID] = struct{}{}
}

// EffectiveKind returns the kind downstream consumers (reports, diagrams)
// should display: a const/let/var whose initializer is a function or arrow
// literal reports as function, even though Kind itself (the storage form)
// stays const/let/var (spec.md §4.2).
func (s *Symbol) EffectiveKind() Kind {
	if s.DeclarationRef != nil {
		switch s.DeclarationRef.DeclKind() {
		case "arrow_function", "function_expression", "function", "generator_function":
			return KindFunction
		}
	}
	return s.Kind
}

// ImportStyle is the closed set of import forms spec.md §3 defines.
type ImportStyle string

const (
	ImportDefault   ImportStyle = "default"
	ImportNamed     ImportStyle = "named"
	ImportNamespace ImportStyle = "namespace"
)

// Import is a per-file record translating a local identifier to the module
// it came from and the name it had there. Imports are not Symbols.
type Import struct {
	LocalName    string
	FromModule   string // as written in source
	Normalized   string // final path component / bare specifier, see §4.2
	Style        ImportStyle
	OriginalName string // "default" for default imports, "*" for namespace
}

// FileSymbols is the per-file grouping spec.md §3 describes: ordered maps
// so that report output is stable (insertion order is observable).
type FileSymbols struct {
	FileKey string

	exportOrder []string
	exports     map[string]*Symbol

	internalOrder []string
	internal      map[string]*Symbol

	importOrder []string
	imports     map[string]*Import
}

// NewFileSymbols creates an empty FileSymbols for fileKey.
func NewFileSymbols(fileKey string) *FileSymbols {
	return &FileSymbols{
		FileKey:  fileKey,
		exports:  make(map[string]*Symbol),
		internal: make(map[string]*Symbol),
		imports:  make(map[string]*Import),
	}
}

// AddExport registers sym under its local name in the exports map, in
// insertion order.
func (fs *FileSymbols) AddExport(sym *Symbol) {
	if _, exists := fs.exports[sym.Name]; !exists {
		fs.exportOrder = append(fs.exportOrder, sym.Name)
	}
	fs.exports[sym.Name] = sym
}

// AddInternal registers sym under its local name in the internal map, in
// insertion order.
func (fs *FileSymbols) AddInternal(sym *Symbol) {
	if _, exists := fs.internal[sym.Name]; !exists {
		fs.internalOrder = append(fs.internalOrder, sym.Name)
	}
	fs.internal[sym.Name] = sym
}

// AddImport registers imp under its local name, in insertion order.
func (fs *FileSymbols) AddImport(imp *Import) {
	if _, exists := fs.imports[imp.LocalName]; !exists {
		fs.importOrder = append(fs.importOrder, imp.LocalName)
	}
	fs.imports[imp.LocalName] = imp
}

// Exports returns every exported Symbol in insertion order.
func (fs *FileSymbols) Exports() []*Symbol {
	out := make([]*Symbol, 0, len(fs.exportOrder))
	for _, name := range fs.exportOrder {
		out = append(out, fs.exports[name])
	}
	return out
}

// Internal returns every non-exported Symbol in insertion order.
func (fs *FileSymbols) Internal() []*Symbol {
	out := make([]*Symbol, 0, len(fs.internalOrder))
	for _, name := range fs.internalOrder {
		out = append(out, fs.internal[name])
	}
	return out
}

// AllSymbols returns exports followed by internal symbols, both in
// insertion order.
func (fs *FileSymbols) AllSymbols() []*Symbol {
	out := fs.Exports()
	return append(out, fs.Internal()...)
}

// Imports returns every Import in insertion order.
func (fs *FileSymbols) Imports() []*Import {
	out := make([]*Import, 0, len(fs.importOrder))
	for _, name := range fs.importOrder {
		out = append(out, fs.imports[name])
	}
	return out
}

// Import looks up an Import by the local name it introduces.
func (fs *FileSymbols) Import(localName string) (*Import, bool) {
	imp, ok := fs.imports[localName]
	return imp, ok
}

// SymbolByName looks up a Symbol (export or internal) by its local name.
func (fs *FileSymbols) SymbolByName(name string) (*Symbol, bool) {
	if s, ok := fs.exports[name]; ok {
		return s, true
	}
	s, ok := fs.internal[name]
	return s, ok
}
