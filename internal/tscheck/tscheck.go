// Package tscheck is the concrete implementation of spec.md §6.1's
// "type-checker contract": given one parsed file, it answers the exact
// questions the core asks of an external checker — iterate top-level
// statements, resolve an identifier to its declaration, stringify a
// declaration's type, fetch its documentation, classify nodes — without
// performing full type inference. It is a lexical-scope walk over the
// tree-sitter tree, not a type checker; spec.md §1 treats the real checker
// as an external oracle this package stands in for.
package tscheck

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/aaamil13/symgraph/internal/tsparse"
)

// StmtKind tags a top-level statement with the syntactic category
// internal/extract's Pass 1 switches on.
type StmtKind string

const (
	StmtFunction     StmtKind = "function"
	StmtClass        StmtKind = "class"
	StmtInterface    StmtKind = "interface"
	StmtTypeAlias    StmtKind = "type-alias"
	StmtEnum         StmtKind = "enum"
	StmtLexical      StmtKind = "lexical" // const/let
	StmtVar          StmtKind = "var"
	StmtImport       StmtKind = "import"
	StmtModuleBlock  StmtKind = "module-block" // namespace / ambient module
	StmtOther        StmtKind = "other"
)

// Stmt is one top-level statement, already unwrapped from any enclosing
// export_statement.
type Stmt struct {
	Kind       StmtKind
	Node       *sitter.Node // the declaration node itself (post-export-unwrap)
	IsExported bool
	IsDefault  bool
}

// Decl is the opaque declaration handle tscheck hands back from Resolve; it
// implements symbols.DeclRef.
type Decl struct {
	// NameNode is the identifier node that introduced the binding.
	NameNode *sitter.Node
	// Owner is the broader syntactic node the name belongs to (the
	// function_declaration, variable_declarator, parameter, etc.) — used by
	// TypeToString/DocumentationOf/predicates to look at siblings.
	Owner    *sitter.Node
	OwnerTag string
	FileKey  string
}

// DeclKind implements symbols.DeclRef.
func (d *Decl) DeclKind() string { return d.OwnerTag }

// Program wraps one parsed file and answers the checker-contract questions
// for every node inside it.
type Program struct {
	// FileKey is the flat symbol-identity token (spec.md §6.5): basename
	// without extension.
	FileKey string
	// FilePath is the file's path as the caller supplied it (the CLI and
	// watcher pass absolute paths), used only
	// for resolving relative import specifiers against the file's actual
	// directory (§4.2); it plays no part in symbol identity.
	FilePath string
	Result   *tsparse.Result

	bindingsCache map[uint32]map[string]*Decl
}

// NewProgram builds a Program over an already-parsed file. fileKey is the
// flat identity token; filePath is the caller-supplied path (absolute or
// project-relative) used for import-specifier normalization.
func NewProgram(fileKey, filePath string, result *tsparse.Result) *Program {
	return &Program{
		FileKey:       fileKey,
		FilePath:      filePath,
		Result:        result,
		bindingsCache: make(map[uint32]map[string]*Decl),
	}
}

func (p *Program) src() []byte { return p.Result.Source }

func (p *Program) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(p.src()[n.StartByte():n.EndByte()])
}

// ---- 6.1 source-location queries ----

// NodePosition returns n's start (line, column), 1-based.
func (p *Program) NodePosition(n *sitter.Node) (line, column int) {
	pt := n.StartPoint()
	return int(pt.Row) + 1, int(pt.Column) + 1
}

// NodeByteRange returns n's [start, end) byte offsets.
func (p *Program) NodeByteRange(n *sitter.Node) (start, end uint32) {
	return n.StartByte(), n.EndByte()
}

// ---- 6.1 top-level statement iterator ----

// TopLevelStatements returns the file's top-level statements in source
// order, unwrapping export_statement wrappers (including `export default`)
// so callers see the underlying declaration directly.
func (p *Program) TopLevelStatements() []Stmt {
	root := p.Result.RootNode
	var out []Stmt
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		out = append(out, p.classifyTopLevel(child))
	}
	return out
}

func (p *Program) classifyTopLevel(n *sitter.Node) Stmt {
	isExported := false
	isDefault := false
	node := n

	if n.Type() == "export_statement" {
		isExported = true
		isDefault = hasChildOfType(n, "default")
		if decl := n.ChildByFieldName("declaration"); decl != nil {
			node = decl
		} else if value := n.ChildByFieldName("value"); value != nil {
			node = value
		}
	}

	return Stmt{
		Kind:       stmtKindOf(node),
		Node:       node,
		IsExported: isExported,
		IsDefault:  isDefault,
	}
}

func stmtKindOf(n *sitter.Node) StmtKind {
	switch n.Type() {
	case "function_declaration", "generator_function_declaration":
		return StmtFunction
	case "class_declaration", "abstract_class_declaration":
		return StmtClass
	case "interface_declaration":
		return StmtInterface
	case "type_alias_declaration":
		return StmtTypeAlias
	case "enum_declaration":
		return StmtEnum
	case "lexical_declaration":
		return StmtLexical
	case "variable_declaration":
		return StmtVar
	case "import_statement":
		return StmtImport
	case "module", "internal_module", "ambient_declaration":
		return StmtModuleBlock
	default:
		return StmtOther
	}
}

func hasChildOfType(n *sitter.Node, typ string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == typ {
			return true
		}
	}
	return false
}

// ---- declaration name extraction (used by internal/extract) ----

// DeclaredNames returns every (name, nameNode) pair a top-level statement
// introduces: one for function/class/interface/type-alias/enum, one per
// variable_declarator for lexical/var statements.
func (p *Program) DeclaredNames(stmt Stmt) []struct {
	Name string
	Node *sitter.Node
} {
	var out []struct {
		Name string
		Node *sitter.Node
	}
	switch stmt.Kind {
	case StmtFunction, StmtClass, StmtInterface, StmtTypeAlias, StmtEnum:
		if name := stmt.Node.ChildByFieldName("name"); name != nil {
			out = append(out, struct {
				Name string
				Node *sitter.Node
			}{p.text(name), name})
		}
	case StmtLexical, StmtVar:
		for i := 0; i < int(stmt.Node.NamedChildCount()); i++ {
			decl := stmt.Node.NamedChild(i)
			if decl.Type() != "variable_declarator" {
				continue
			}
			nameNode := decl.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			// destructuring patterns are not single named declarations;
			// skip them (spec.md §4.2 only names simple bindings).
			if nameNode.Type() != "identifier" {
				continue
			}
			out = append(out, struct {
				Name string
				Node *sitter.Node
			}{p.text(nameNode), nameNode})
		}
	}
	return out
}

// ---- 6.1 resolve ----

// Resolve finds the declaration that introduced the binding identifierNode
// refers to, by walking up enclosing scopes. Returns false if no binding is
// found in this file (the identifier is a free reference — a global, a
// third-party symbol, or an import, which the caller resolves separately).
func (p *Program) Resolve(identifierNode *sitter.Node) (*Decl, bool) {
	name := p.text(identifierNode)
	scope := identifierNode.Parent()
	for scope != nil {
		if isScopeNode(scope.Type()) {
			bindings := p.bindingsFor(scope)
			if decl, ok := bindings[name]; ok {
				return decl, true
			}
		}
		scope = scope.Parent()
	}
	return nil, false
}

func isScopeNode(t string) bool {
	switch t {
	case "program", "statement_block", "function_declaration", "function",
		"function_expression", "arrow_function", "generator_function",
		"generator_function_declaration", "method_definition", "for_statement",
		"for_in_statement", "catch_clause", "class_body":
		return true
	default:
		return false
	}
}

func (p *Program) bindingsFor(scope *sitter.Node) map[string]*Decl {
	key := scope.StartByte()
	if cached, ok := p.bindingsCache[key]; ok {
		return cached
	}
	bindings := make(map[string]*Decl)
	p.collectBindings(scope, bindings)
	p.bindingsCache[key] = bindings
	return bindings
}

func (p *Program) collectBindings(scope *sitter.Node, out map[string]*Decl) {
	switch scope.Type() {
	case "function_declaration", "function", "function_expression",
		"arrow_function", "generator_function", "generator_function_declaration",
		"method_definition":
		params := scope.ChildByFieldName("parameters")
		if params != nil {
			p.collectParamBindings(params, out)
		}
	case "for_statement":
		if init := scope.ChildByFieldName("initializer"); init != nil {
			p.collectStatementBindings(init, out)
		}
	case "for_in_statement":
		if left := scope.ChildByFieldName("left"); left != nil && left.Type() == "identifier" {
			out[p.text(left)] = &Decl{NameNode: left, Owner: scope, OwnerTag: "let", FileKey: p.FileKey}
		}
	case "catch_clause":
		if param := scope.ChildByFieldName("parameter"); param != nil && param.Type() == "identifier" {
			out[p.text(param)] = &Decl{NameNode: param, Owner: scope, OwnerTag: "let", FileKey: p.FileKey}
		}
	default:
		// program / statement_block / class_body: scan direct named
		// children for declarations and bindings they introduce.
		for i := 0; i < int(scope.NamedChildCount()); i++ {
			p.collectStatementBindings(scope.NamedChild(i), out)
		}
	}
}

func (p *Program) collectStatementBindings(n *sitter.Node, out map[string]*Decl) {
	node := n
	ownerTag := n.Type()
	if n.Type() == "export_statement" {
		if decl := n.ChildByFieldName("declaration"); decl != nil {
			node = decl
			ownerTag = decl.Type()
		} else {
			return
		}
	}

	switch node.Type() {
	case "function_declaration", "generator_function_declaration",
		"class_declaration", "abstract_class_declaration",
		"interface_declaration", "type_alias_declaration", "enum_declaration":
		if name := node.ChildByFieldName("name"); name != nil {
			out[p.text(name)] = &Decl{NameNode: name, Owner: node, OwnerTag: ownerTag, FileKey: p.FileKey}
		}
	case "lexical_declaration", "variable_declaration":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			decl := node.NamedChild(i)
			if decl.Type() != "variable_declarator" {
				continue
			}
			nameNode := decl.ChildByFieldName("name")
			if nameNode != nil && nameNode.Type() == "identifier" {
				out[p.text(nameNode)] = &Decl{NameNode: nameNode, Owner: decl, OwnerTag: ownerTag, FileKey: p.FileKey}
			}
		}
	case "method_definition", "public_field_definition", "field_definition":
		// class members live in their own property namespace; they never
		// shadow an outer identifier the way a local variable would, so
		// they are intentionally not added to the enclosing scope here.
	}
}

func (p *Program) collectParamBindings(params *sitter.Node, out map[string]*Decl) {
	for i := 0; i < int(params.NamedChildCount()); i++ {
		param := params.NamedChild(i)
		var nameNode *sitter.Node
		switch param.Type() {
		case "identifier":
			nameNode = param
		case "required_parameter", "optional_parameter":
			pattern := param.ChildByFieldName("pattern")
			if pattern != nil && pattern.Type() == "identifier" {
				nameNode = pattern
			}
		case "rest_pattern":
			if param.NamedChildCount() > 0 && param.NamedChild(0).Type() == "identifier" {
				nameNode = param.NamedChild(0)
			}
		case "assignment_pattern":
			left := param.ChildByFieldName("left")
			if left != nil && left.Type() == "identifier" {
				nameNode = left
			}
		}
		if nameNode != nil {
			out[p.text(nameNode)] = &Decl{NameNode: nameNode, Owner: param, OwnerTag: "parameter", FileKey: p.FileKey}
		}
	}
}

// ---- 6.1 type/documentation ----

// TypeToString renders the declared type of decl as written, or "" if none
// is annotated (spec.md does not require inference, only the text the
// author wrote).
func (p *Program) TypeToString(decl *Decl) string {
	switch decl.OwnerTag {
	case "parameter":
		if t := decl.Owner.ChildByFieldName("type"); t != nil {
			return strings.TrimSpace(strings.TrimPrefix(p.text(t), ":"))
		}
	case "lexical_declaration", "variable_declaration", "const", "let", "var":
		if t := decl.Owner.ChildByFieldName("type"); t != nil {
			return strings.TrimSpace(strings.TrimPrefix(p.text(t), ":"))
		}
	case "function_declaration", "generator_function_declaration":
		if t := decl.Owner.ChildByFieldName("return_type"); t != nil {
			return strings.TrimSpace(strings.TrimPrefix(p.text(t), ":"))
		}
	case "type_alias_declaration":
		if t := decl.Owner.ChildByFieldName("value"); t != nil {
			return p.text(t)
		}
	}
	return ""
}

// DocumentationOf returns the nearest preceding block/line comment
// immediately above decl.Owner, or "" if none.
func (p *Program) DocumentationOf(decl *Decl) string {
	target := decl.Owner
	if target == nil {
		return ""
	}
	// a top-level export wraps target; the comment sits before the wrapper
	if parent := target.Parent(); parent != nil && parent.Type() == "export_statement" {
		target = parent
	}

	var comments []string
	prev := target.PrevSibling()
	for prev != nil && (prev.Type() == "comment") {
		comments = append([]string{p.text(prev)}, comments...)
		prev = prev.PrevSibling()
	}
	return strings.TrimSpace(strings.Join(comments, "\n"))
}

// ---- 6.1 predicates ----

func (p *Program) IsParameter(decl *Decl) bool         { return decl.OwnerTag == "parameter" }
func (p *Program) IsPropertySignature(decl *Decl) bool { return decl.OwnerTag == "property_signature" }
func (p *Program) IsPropertyDeclaration(decl *Decl) bool {
	return decl.OwnerTag == "public_field_definition" || decl.OwnerTag == "field_definition"
}
func (p *Program) IsTypeAlias(decl *Decl) bool { return decl.OwnerTag == "type_alias_declaration" }
func (p *Program) IsInterface(decl *Decl) bool { return decl.OwnerTag == "interface_declaration" }
func (p *Program) IsClass(decl *Decl) bool {
	return decl.OwnerTag == "class_declaration" || decl.OwnerTag == "abstract_class_declaration"
}

func (p *Program) IsFunctionLike(n *sitter.Node) bool {
	switch n.Type() {
	case "function_declaration", "function", "function_expression", "arrow_function",
		"generator_function", "generator_function_declaration", "method_definition":
		return true
	default:
		return false
	}
}

func (p *Program) IsVariableDeclaration(n *sitter.Node) bool {
	return n.Type() == "lexical_declaration" || n.Type() == "variable_declaration"
}

func (p *Program) IsIdentifier(n *sitter.Node) bool {
	return n.Type() == "identifier" || n.Type() == "shorthand_property_identifier" || n.Type() == "type_identifier"
}

func (p *Program) IsPropertyAccess(n *sitter.Node) bool {
	parent := n.Parent()
	if parent == nil {
		return false
	}
	if parent.Type() == "member_expression" {
		prop := parent.ChildByFieldName("property")
		return prop != nil && prop.StartByte() == n.StartByte() && prop.EndByte() == n.EndByte()
	}
	return n.Type() == "property_identifier"
}

// IsTypePosition reports whether n occurs inside a type annotation, type
// parameter, or other type-only syntax rather than a value expression.
func (p *Program) IsTypePosition(n *sitter.Node) bool {
	cur := n
	for cur != nil {
		switch cur.Type() {
		case "type_annotation", "type_arguments", "type_parameters",
			"union_type", "intersection_type", "generic_type", "predefined_type",
			"type_alias_declaration", "interface_declaration", "type_identifier",
			"index_signature", "property_signature", "method_signature":
			return true
		case "statement_block", "function_declaration", "arrow_function",
			"call_expression", "program":
			return false
		}
		cur = cur.Parent()
	}
	return false
}

// ---- 6.1 declaration's owning file ----

// DeclFile returns the file key of the file that introduced decl. Every Decl this
// package produces is local to its own Program, so it is always FileKey;
// cross-file resolution (imports) is the import table's job, owned by
// internal/extract and internal/resolve.
func (p *Program) DeclFile(decl *Decl) string { return decl.FileKey }
