// Package extract implements the SymbolExtractor of spec.md §4.2: given one
// parsed source file, produce its FileSymbols in two passes — top-level
// declaration collection (and import-table construction), then per-symbol
// dependency discovery via internal/resolve.
package extract

import (
	"path"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/aaamil13/symgraph/internal/resolve"
	"github.com/aaamil13/symgraph/internal/symbols"
	"github.com/aaamil13/symgraph/internal/tscheck"
)

// Extractor drives both passes of SymbolExtractor.
type Extractor struct {
	Resolver *resolve.Resolver
}

// New builds an Extractor with the given dependency-resolution policy.
func New(opts resolve.Options) *Extractor {
	return &Extractor{Resolver: resolve.New(opts)}
}

// Extract runs Pass 1 and Pass 2 over prog, returning the file's FileSymbols.
func (e *Extractor) Extract(prog *tscheck.Program) *symbols.FileSymbols {
	fs := symbols.NewFileSymbols(prog.FileKey)

	// Pass 1: declarations + imports.
	stmts := prog.TopLevelStatements()
	type produced struct {
		sym  *symbols.Symbol
		decl *sitter.Node
	}
	var all []produced

	for _, stmt := range stmts {
		if stmt.Kind == tscheck.StmtImport {
			e.collectImports(stmt.Node, prog, fs)
			continue
		}

		for _, nv := range prog.DeclaredNames(stmt) {
			declNode, kind := declarationNodeAndKind(stmt, nv.Node, prog)
			if nv.Name == "" {
				continue // anonymous default export of a literal: skipped silently.
			}

			sym := symbols.NewSymbol(prog.FileKey, nv.Name, kind)
			sym.IsExported = stmt.IsExported
			sym.TypeText = declTypeText(stmt, nv.Node, prog)
			sym.Documentation = documentationFor(stmt, nv.Node, prog)
			sym.DeclarationRef = &tscheck.Decl{
				NameNode: nv.Node,
				Owner:    declNode,
				OwnerTag: declNode.Type(),
				FileKey:  prog.FileKey,
			}
			loc := locationOf(prog, declNode)
			sym.Location = loc

			if stmt.IsExported {
				fs.AddExport(sym)
			} else {
				fs.AddInternal(sym)
			}
			all = append(all, produced{sym: sym, decl: declNode})
		}
	}

	// Pass 2: dependency discovery.
	for _, p := range all {
		e.Resolver.DiscoverDependencies(p.sym, p.decl, prog, fs)
	}

	return fs
}

// declarationNodeAndKind returns the subtree Pass 2 should walk for this
// declared name, and the symbol's storage kind. For a variable whose
// initializer is a function/arrow literal, the returned node is the literal
// itself (spec.md §4.2), so Pass 2 finds its parameters and body directly.
func declarationNodeAndKind(stmt tscheck.Stmt, nameNode *sitter.Node, prog *tscheck.Program) (*sitter.Node, symbols.Kind) {
	switch stmt.Kind {
	case tscheck.StmtFunction:
		return stmt.Node, symbols.KindFunction
	case tscheck.StmtClass:
		return stmt.Node, symbols.KindClass
	case tscheck.StmtInterface:
		return stmt.Node, symbols.KindInterface
	case tscheck.StmtTypeAlias:
		return stmt.Node, symbols.KindTypeAlias
	case tscheck.StmtEnum:
		return stmt.Node, symbols.KindEnum
	case tscheck.StmtModuleBlock:
		return stmt.Node, symbols.KindModuleBlock
	case tscheck.StmtLexical, tscheck.StmtVar:
		declarator := nameNode.Parent() // variable_declarator
		kind := storageKind(stmt.Node)
		if declarator != nil {
			if value := declarator.ChildByFieldName("value"); value != nil && isFunctionLiteral(value) {
				return value, kind
			}
		}
		if declarator != nil {
			return declarator, kind
		}
		return stmt.Node, kind
	default:
		return stmt.Node, symbols.KindVar
	}
}

func isFunctionLiteral(n *sitter.Node) bool {
	switch n.Type() {
	case "arrow_function", "function_expression", "function", "generator_function":
		return true
	default:
		return false
	}
}

func storageKind(n *sitter.Node) symbols.Kind {
	for i := 0; i < int(n.ChildCount()); i++ {
		switch n.Child(i).Type() {
		case "const":
			return symbols.KindConst
		case "let":
			return symbols.KindLet
		case "var":
			return symbols.KindVar
		}
	}
	if n.Type() == "variable_declaration" {
		return symbols.KindVar
	}
	return symbols.KindLet
}

func declTypeText(stmt tscheck.Stmt, nameNode *sitter.Node, prog *tscheck.Program) string {
	decl := &tscheck.Decl{Owner: stmt.Node, OwnerTag: stmt.Node.Type()}
	switch stmt.Kind {
	case tscheck.StmtLexical, tscheck.StmtVar:
		decl.Owner = nameNode.Parent()
		decl.OwnerTag = stmt.Node.Type()
	case tscheck.StmtFunction:
		decl.OwnerTag = "function_declaration"
	case tscheck.StmtTypeAlias:
		decl.OwnerTag = "type_alias_declaration"
	}
	return prog.TypeToString(decl)
}

func documentationFor(stmt tscheck.Stmt, nameNode *sitter.Node, prog *tscheck.Program) string {
	decl := &tscheck.Decl{Owner: stmt.Node}
	return prog.DocumentationOf(decl)
}

func locationOf(prog *tscheck.Program, n *sitter.Node) symbols.SourceLocation {
	startByte, endByte := prog.NodeByteRange(n)
	startLine, startCol := prog.NodePosition(n)
	return symbols.SourceLocation{
		Start: symbols.Position{Byte: int(startByte), Line: startLine, Column: startCol},
		End:   symbols.Position{Byte: int(endByte), Line: startLine, Column: startCol},
	}
}

// collectImports parses one import_statement node into zero or more Import
// records, per spec.md §4.2's three forms.
func (e *Extractor) collectImports(n *sitter.Node, prog *tscheck.Program, fs *symbols.FileSymbols) {
	sourceNode := n.ChildByFieldName("source")
	if sourceNode == nil {
		return
	}
	fromModule := unquote(nodeText(prog, sourceNode))
	normalized := NormalizeModuleSpecifier(prog.FilePath, fromModule)

	clause := findChildOfAnyType(n, "import_clause")
	if clause == nil {
		return // bare `import 'module'` side-effect import: no local bindings.
	}

	for i := 0; i < int(clause.NamedChildCount()); i++ {
		part := clause.NamedChild(i)
		switch part.Type() {
		case "identifier":
			// default import: `import X from 'm'`
			fs.AddImport(&symbols.Import{
				LocalName:    nodeText(prog, part),
				FromModule:   fromModule,
				Normalized:   normalized,
				Style:        symbols.ImportDefault,
				OriginalName: "default",
			})
		case "namespace_import":
			if ident := lastNamedChild(part); ident != nil {
				fs.AddImport(&symbols.Import{
					LocalName:    nodeText(prog, ident),
					FromModule:   fromModule,
					Normalized:   normalized,
					Style:        symbols.ImportNamespace,
					OriginalName: "*",
				})
			}
		case "named_imports":
			for j := 0; j < int(part.NamedChildCount()); j++ {
				spec := part.NamedChild(j)
				if spec.Type() != "import_specifier" {
					continue
				}
				nameNode := spec.ChildByFieldName("name")
				aliasNode := spec.ChildByFieldName("alias")
				if nameNode == nil {
					continue
				}
				original := nodeText(prog, nameNode)
				local := original
				if aliasNode != nil {
					local = nodeText(prog, aliasNode)
				}
				fs.AddImport(&symbols.Import{
					LocalName:    local,
					FromModule:   fromModule,
					Normalized:   normalized,
					Style:        symbols.ImportNamed,
					OriginalName: original,
				})
			}
		}
	}
}

func nodeText(prog *tscheck.Program, n *sitter.Node) string {
	start, end := prog.NodeByteRange(n)
	return string(prog.Result.Source[start:end])
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"' || s[0] == '`') {
		return s[1 : len(s)-1]
	}
	return s
}

func findChildOfAnyType(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if n.NamedChild(i).Type() == typ {
			return n.NamedChild(i)
		}
	}
	return nil
}

func lastNamedChild(n *sitter.Node) *sitter.Node {
	count := int(n.NamedChildCount())
	if count == 0 {
		return nil
	}
	return n.NamedChild(count - 1)
}

// NormalizeModuleSpecifier implements spec.md §4.2's import normalization:
// a relative specifier is joined against the importing file's directory
// (currentFilePath) and reduced to its final path component with a
// .ts/.tsx/.js/.jsx suffix stripped; a bare/absolute specifier passes
// through unchanged. This is the sole cross-file linkage mechanism (§9
// notes its basename-collision weakness).
func NormalizeModuleSpecifier(currentFilePath, specifier string) string {
	if !strings.HasPrefix(specifier, ".") {
		return specifier
	}
	dir := path.Dir(currentFilePath)
	joined := path.Join(dir, specifier)
	return FileKeyForPath(joined)
}

// FileKeyForPath derives the file_key spec.md §6.5 assigns a project file:
// the basename without its .ts/.tsx/.js/.jsx extension.
func FileKeyForPath(filePath string) string {
	base := path.Base(filePath)
	for _, ext := range []string{".tsx", ".ts", ".jsx", ".js"} {
		if strings.HasSuffix(base, ext) {
			return strings.TrimSuffix(base, ext)
		}
	}
	return base
}
