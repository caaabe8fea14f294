// Package resolve implements the DependencyResolver of spec.md §4.3: the
// nine-step identifier classification that turns a raw identifier
// occurrence inside a symbol's declaration subtree into either nothing (the
// reference is a parameter, a shadowed local, a property access, a
// self-reference, or excluded by policy) or a fully-qualified dependency id
// recorded on that symbol.
package resolve

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/aaamil13/symgraph/internal/symbols"
	"github.com/aaamil13/symgraph/internal/tscheck"
)

// Options configures the policy knobs spec.md §4.3 step 7 names.
type Options struct {
	// IncludeSystemSymbols, when false, rejects dependencies whose owning
	// module is classified System.
	IncludeSystemSymbols bool
	// IncludeNodeModules, when false, rejects dependencies whose owning
	// module is classified ThirdParty.
	IncludeNodeModules bool
	// SystemModulePrefixes lists specifier prefixes treated as the
	// standard-library root (e.g. "node:", "@types/node").
	SystemModulePrefixes []string
	// FollowTypeOnlyImports, when true, disables step 6's drop of
	// dependencies from a value-level symbol to a declaration referenced
	// purely as a type (spec.md §9's type-position policy). Off by default:
	// types carry no runtime cost, so tree-shaking-style analysis ignores
	// them unless a caller explicitly wants the fuller graph.
	FollowTypeOnlyImports bool
}

// DefaultOptions matches a typical project: everything included, type-only
// references dropped per the default tree-shaking policy.
func DefaultOptions() Options {
	return Options{
		IncludeSystemSymbols:  true,
		IncludeNodeModules:    true,
		SystemModulePrefixes:  []string{"node:"},
		FollowTypeOnlyImports: false,
	}
}

// ModuleClass is the three-way classification of step 7.
type ModuleClass string

const (
	ModuleSystem     ModuleClass = "system"
	ModuleThirdParty ModuleClass = "third-party"
	ModuleProject    ModuleClass = "project"
)

// ClassifyModule classifies a module specifier per spec.md §4.3 step 7.
func (o Options) ClassifyModule(fromModule string) ModuleClass {
	for _, prefix := range o.SystemModulePrefixes {
		if len(fromModule) >= len(prefix) && fromModule[:len(prefix)] == prefix {
			return ModuleSystem
		}
	}
	if len(fromModule) > 0 && (fromModule[0] == '.' || fromModule[0] == '/') {
		return ModuleProject
	}
	return ModuleThirdParty
}

// Resolver walks a symbol's declaration subtree and populates its
// dependencies set.
type Resolver struct {
	Options Options
}

// New builds a Resolver with the given policy.
func New(opts Options) *Resolver {
	return &Resolver{Options: opts}
}

// LocalScope is the pre-collected shadow-name sets spec.md §4.3 requires
// before scanning a symbol's subtree.
type LocalScope struct {
	Functions map[string]struct{}
	Variables map[string]struct{}
}

func (s LocalScope) shadows(name string) bool {
	if _, ok := s.Functions[name]; ok {
		return true
	}
	_, ok := s.Variables[name]
	return ok
}

// CollectLocalScope walks subtree, gathering every parameter name of
// enclosing function-likes, every name introduced by a nested variable
// declaration, and every nested function declaration name — the shadow set
// spec.md §4.3 uses before scanning for dependencies.
func CollectLocalScope(subtree *sitter.Node, prog *tscheck.Program) LocalScope {
	scope := LocalScope{Functions: make(map[string]struct{}), Variables: make(map[string]struct{})}
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "required_parameter", "optional_parameter":
			if pattern := n.ChildByFieldName("pattern"); pattern != nil && pattern.Type() == "identifier" {
				scope.Variables[textOf(prog, pattern)] = struct{}{}
			}
		case "identifier":
			if n.Parent() != nil && n.Parent().Type() == "formal_parameters" {
				scope.Variables[textOf(prog, n)] = struct{}{}
			}
		case "function_declaration", "generator_function_declaration":
			if name := n.ChildByFieldName("name"); name != nil {
				scope.Functions[textOf(prog, name)] = struct{}{}
			}
		case "variable_declarator":
			if name := n.ChildByFieldName("name"); name != nil && name.Type() == "identifier" {
				scope.Variables[textOf(prog, name)] = struct{}{}
			}
		case "catch_clause":
			if param := n.ChildByFieldName("parameter"); param != nil && param.Type() == "identifier" {
				scope.Variables[textOf(prog, param)] = struct{}{}
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(subtree)
	return scope
}

func textOf(prog *tscheck.Program, n *sitter.Node) string {
	start, end := prog.NodeByteRange(n)
	return string(prog.Result.Source[start:end])
}

// DiscoverDependencies is Pass 2 of spec.md §4.2: it walks sym's
// declaration subtree and records every dependency id the nine-step
// classification allows.
func (r *Resolver) DiscoverDependencies(sym *symbols.Symbol, subtree *sitter.Node, prog *tscheck.Program, fs *symbols.FileSymbols) {
	scope := CollectLocalScope(subtree, prog)
	type nodeKey struct {
		start, end uint32
		typ        string
	}
	visited := make(map[nodeKey]struct{})

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		key := nodeKey{start: n.StartByte(), end: n.EndByte(), typ: n.Type()}
		if _, seen := visited[key]; seen {
			return
		}
		visited[key] = struct{}{}

		if prog.IsIdentifier(n) {
			r.classify(n, sym, subtree, prog, fs, scope)
		}

		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(subtree)
}

func (r *Resolver) classify(n *sitter.Node, sym *symbols.Symbol, subtree *sitter.Node, prog *tscheck.Program, fs *symbols.FileSymbols, scope LocalScope) {
	// Step 1: property-access position.
	if prog.IsPropertyAccess(n) {
		return
	}

	name := textOf(prog, n)

	// Step 2: resolve via the type checker (same-file scope) or the
	// file's import table (a cross-file binding the checker would also
	// resolve to a declaration — here, the import statement itself).
	localDecl, localOK := prog.Resolve(n)
	imp, impOK := fs.Import(name)
	if !localOK && !impOK {
		return
	}

	if localOK {
		// Step 3: parameter.
		if prog.IsParameter(localDecl) {
			return
		}
	}

	// Step 4: shadowing by textual name.
	if scope.shadows(name) {
		return
	}

	if localOK {
		// Step 5: self-reference — the declaration is the symbol currently
		// being analyzed.
		if localDecl.Owner != nil && subtree != nil &&
			localDecl.Owner.StartByte() == subtree.StartByte() && localDecl.Owner.EndByte() == subtree.EndByte() {
			return
		}

		// Step 6: type-only declaration referenced from a type position,
		// unless the caller opted into tracking them too.
		if !r.Options.FollowTypeOnlyImports && prog.IsTypePosition(n) &&
			(prog.IsTypeAlias(localDecl) || prog.IsInterface(localDecl) || prog.IsClass(localDecl) ||
				prog.IsPropertySignature(localDecl) || prog.IsPropertyDeclaration(localDecl)) {
			return
		}

		// Step 7: local declarations are always project-local; no rejection.
		// Step 8: compute id from the current file.
		id := prog.FileKey + ":" + name
		sym.AddDependency(id)
		return
	}

	// impOK branch: dependency introduced via an import.
	class := r.Options.ClassifyModule(imp.FromModule)
	if class == ModuleSystem && !r.Options.IncludeSystemSymbols {
		return
	}
	if class == ModuleThirdParty && !r.Options.IncludeNodeModules {
		return
	}

	// Step 8: id from the normalized module + original exported name.
	id := imp.Normalized + ":" + imp.OriginalName
	sym.AddDependency(id)
}
