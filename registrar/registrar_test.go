package registrar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivet-lang/rivetc/ast"
	"github.com/rivet-lang/rivetc/registrar"
	"github.com/rivet-lang/rivetc/report"
	"github.com/rivet-lang/rivetc/sema"
	"github.com/rivet-lang/rivetc/sym"
)

// run registers decls as a single package-scope compilation and returns the
// context and handler for inspection.
func run(t *testing.T, decls []ast.Decl) (*sema.CompilerContext, *report.Handler) {
	t.Helper()
	ctx := sema.NewCompilerContext(sema.Prefs{})
	h := report.NewHandler(nil)
	file := &ast.SourceFile{Path: "test.rv", Decls: decls}

	registrar.New(ctx, h).Files([]*ast.SourceFile{file})
	return ctx, h
}

func pkgScope(ctx *sema.CompilerContext) *sym.Scope {
	return ctx.Pool.At(ctx.PkgSym).Scope
}

func TestRegisterConstDecl(t *testing.T) {
	t.Parallel()

	decl := &ast.ConstDecl{Name: "Max", Value: &ast.Lit{Kind: ast.LitInteger, IntValue: "42"}}
	ctx, h := run(t, []ast.Decl{decl})
	assert.False(t, h.HasErrors())

	require.False(t, decl.Sym.Nil())
	id, ok := pkgScope(ctx).Lookup("Max")
	require.True(t, ok)
	assert.Equal(t, decl.Sym, id)
	assert.Equal(t, sym.KindConst, ctx.Pool.At(id).Kind)
}

func TestRegisterDuplicateNameInSameScopeIsAnError(t *testing.T) {
	t.Parallel()

	a := &ast.ConstDecl{Name: "Max", Value: &ast.Lit{Kind: ast.LitInteger, IntValue: "1"}}
	b := &ast.ConstDecl{Name: "Max", Value: &ast.Lit{Kind: ast.LitInteger, IntValue: "2"}}
	_, h := run(t, []ast.Decl{a, b})
	assert.True(t, h.HasErrors())
}

func TestRegisterStructDecl_FieldsBecomeArgSymbols(t *testing.T) {
	t.Parallel()

	field := &ast.StructFieldDecl{Name: "n", Type: ast.TypeNode{}}
	decl := &ast.StructDecl{Name: "Point", Decls: []ast.Decl{field}}
	ctx, h := run(t, []ast.Decl{decl})
	require.False(t, h.HasErrors())

	structSym := ctx.Pool.At(decl.Sym)
	assert.Equal(t, sym.KindType, structSym.Kind)
	assert.Equal(t, sym.TypeKindStruct, structSym.TypeKind)
	require.Len(t, structSym.Fields, 1)
	assert.Equal(t, field.Sym, structSym.Fields[0])
	assert.Equal(t, sym.KindArg, ctx.Pool.At(field.Sym).Kind)
}

func TestRegisterModDecl_NestedDeclVisibleInModuleScope(t *testing.T) {
	t.Parallel()

	inner := &ast.ConstDecl{Name: "Inner", Value: &ast.Lit{Kind: ast.LitInteger, IntValue: "1"}}
	mod := &ast.ModDecl{Name: "m", Decls: []ast.Decl{inner}}
	ctx, h := run(t, []ast.Decl{mod})
	require.False(t, h.HasErrors())

	modSym := ctx.Pool.At(mod.Sym)
	require.NotNil(t, modSym.Scope)
	id, ok := modSym.Scope.Lookup("Inner")
	require.True(t, ok)
	assert.Equal(t, inner.Sym, id)

	// Inner is only visible through the module's own scope, not the
	// enclosing package scope.
	_, ok = pkgScope(ctx).Lookup("Inner")
	assert.False(t, ok)
}

func TestRegisterEnumDecl_VariantsAreConstSymbols(t *testing.T) {
	t.Parallel()

	decl := &ast.EnumDecl{Name: "Color", Variants: []string{"Red", "Green"}}
	ctx, h := run(t, []ast.Decl{decl})
	require.False(t, h.HasErrors())

	enumSym := ctx.Pool.At(decl.Sym)
	require.Len(t, enumSym.Fields, 2)
	for _, vid := range enumSym.Fields {
		v := ctx.Pool.At(vid)
		assert.Equal(t, sym.KindConst, v.Kind)
		assert.True(t, sym.Equal(sym.Named(decl.Sym), v.ValueType))
	}
}

func TestRegisterFnDecl(t *testing.T) {
	t.Parallel()

	decl := &ast.FnDecl{Name: "f"}
	ctx, h := run(t, []ast.Decl{decl})
	require.False(t, h.HasErrors())

	require.False(t, decl.Sym.Nil())
	assert.Equal(t, sym.KindFn, ctx.Pool.At(decl.Sym).Kind)
}

func TestRegisterExtendDecl_DoesNotDescendHere(t *testing.T) {
	t.Parallel()

	// `extend` methods are registered by the resolver once the extended
	// type is known (see registrar.go's ExtendDecl case); the registrar
	// pass alone must not error out or register anything for it.
	method := &ast.FnDecl{Name: "m"}
	decl := &ast.ExtendDecl{Decls: []ast.Decl{method}}
	_, h := run(t, []ast.Decl{decl})
	assert.False(t, h.HasErrors())
	assert.True(t, method.Sym.Nil())
}
