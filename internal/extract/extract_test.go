package extract_test

import (
	"testing"

	"github.com/aaamil13/symgraph/internal/extract"
	"github.com/aaamil13/symgraph/internal/resolve"
	"github.com/aaamil13/symgraph/internal/symbols"
	"github.com/aaamil13/symgraph/internal/tscheck"
	"github.com/aaamil13/symgraph/internal/tsparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func programFor(t *testing.T, fileKey, filePath, source string) *tscheck.Program {
	t.Helper()
	p := tsparse.NewProvider()
	result, err := p.Parse(tsparse.DialectTypeScript, []byte(source))
	require.NoError(t, err)
	t.Cleanup(result.Close)
	return tscheck.NewProgram(fileKey, filePath, result)
}

func TestExtract_ExportedAndInternalDeclarations(t *testing.T) {
	prog := programFor(t, "widget", "src/widget.ts", `
export function render(): string {
  return "ok";
}

function helperOnly() {
  return 1;
}

export const VERSION: string = "1.0";
`)

	ex := extract.New(resolve.DefaultOptions())
	fs := ex.Extract(prog)

	exports := fs.Exports()
	require.Len(t, exports, 2)
	assert.Equal(t, "render", exports[0].Name)
	assert.True(t, exports[0].IsExported)
	assert.Equal(t, symbols.KindFunction, exports[0].Kind)

	assert.Equal(t, "VERSION", exports[1].Name)
	assert.Equal(t, symbols.KindConst, exports[1].Kind)
	assert.Equal(t, "string", exports[1].TypeText)

	internal := fs.Internal()
	require.Len(t, internal, 1)
	assert.Equal(t, "helperOnly", internal[0].Name)
	assert.False(t, internal[0].IsExported)
}

func TestExtract_VariableWithArrowLiteralReportsFunctionKind(t *testing.T) {
	prog := programFor(t, "util", "src/util.ts", `
export const double = (x: number) => x * 2;
`)

	ex := extract.New(resolve.DefaultOptions())
	fs := ex.Extract(prog)

	exports := fs.Exports()
	require.Len(t, exports, 1)
	assert.Equal(t, symbols.KindConst, exports[0].Kind)
	assert.Equal(t, symbols.KindFunction, exports[0].EffectiveKind())
}

func TestExtract_BuildsImportTable(t *testing.T) {
	prog := programFor(t, "app", "src/app.ts", `
import Default from './default-export';
import { helper as h, other } from './helpers';
import * as ns from './namespace-module';
`)

	ex := extract.New(resolve.DefaultOptions())
	fs := ex.Extract(prog)

	imports := fs.Imports()
	require.Len(t, imports, 4)

	def, ok := fs.Import("Default")
	require.True(t, ok)
	assert.Equal(t, symbols.ImportDefault, def.Style)
	assert.Equal(t, "default", def.OriginalName)
	assert.Equal(t, "default-export", def.Normalized)

	h, ok := fs.Import("h")
	require.True(t, ok)
	assert.Equal(t, symbols.ImportNamed, h.Style)
	assert.Equal(t, "helper", h.OriginalName)

	other, ok := fs.Import("other")
	require.True(t, ok)
	assert.Equal(t, "other", other.OriginalName)

	ns, ok := fs.Import("ns")
	require.True(t, ok)
	assert.Equal(t, symbols.ImportNamespace, ns.Style)
	assert.Equal(t, "*", ns.OriginalName)
}

func TestExtract_DependencyDiscoveryWiresLocalReference(t *testing.T) {
	prog := programFor(t, "pkg", "src/pkg.ts", `
function base(): number {
  return 1;
}

export function derived(): number {
  return base() + 1;
}
`)

	ex := extract.New(resolve.DefaultOptions())
	fs := ex.Extract(prog)

	derived, ok := fs.SymbolByName("derived")
	require.True(t, ok)
	assert.Contains(t, derived.Dependencies, "pkg:base")
}

func TestNormalizeModuleSpecifier(t *testing.T) {
	assert.Equal(t, "helpers", extract.NormalizeModuleSpecifier("src/app.ts", "./helpers"))
	assert.Equal(t, "utils", extract.NormalizeModuleSpecifier("src/nested/app.ts", "../utils"))
	assert.Equal(t, "lodash", extract.NormalizeModuleSpecifier("src/app.ts", "lodash"))
}
