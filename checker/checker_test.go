package checker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivet-lang/rivetc/ast"
	"github.com/rivet-lang/rivetc/checker"
	"github.com/rivet-lang/rivetc/registrar"
	"github.com/rivet-lang/rivetc/report"
	"github.com/rivet-lang/rivetc/resolver"
	"github.com/rivet-lang/rivetc/sema"
	"github.com/rivet-lang/rivetc/sym"
	"github.com/rivet-lang/rivetc/token"
)

// run registers, resolves and checks decls as a single package-scope
// compilation, mirroring how cmd/rivetc chains the three passes.
func run(t *testing.T, decls []ast.Decl) (*sema.CompilerContext, *report.Handler) {
	t.Helper()
	ctx := sema.NewCompilerContext(sema.Prefs{})
	h := report.NewHandler(nil)
	file := &ast.SourceFile{Path: "test.rv", Decls: decls}

	reg := registrar.New(ctx, h)
	reg.Files([]*ast.SourceFile{file})
	require.Zero(t, h.NumErrors(), "registrar reported errors")

	resolver.New(ctx, h, reg).Files([]*ast.SourceFile{file})
	require.Zero(t, h.NumErrors(), "resolver reported errors")

	checker.New(ctx, h).Files([]*ast.SourceFile{file})
	return ctx, h
}

func primitiveType(k token.Kind) ast.TypeNode {
	return ast.TypeNode{Kind: ast.TypeNodePrimitive, Primitive: k}
}

func namedType(name string) ast.TypeNode {
	return ast.TypeNode{Kind: ast.TypeNodeNamed, Segments: []string{name}}
}

func intLit(v string) *ast.Lit {
	return &ast.Lit{Kind: ast.LitInteger, IntValue: v}
}

func TestCheckFnDecl_ReturnTypeMatches(t *testing.T) {
	t.Parallel()

	// fn f() i32 { 1 + 2 }
	body := &ast.Block{HasTail: true, Tail: &ast.Binary{Op: token.Plus, LHS: intLit("1"), RHS: intLit("2")}}
	fn := &ast.FnDecl{Name: "f", HasRet: true, Ret: primitiveType(token.KeyI32), Body: body, HasBody: true}

	_, h := run(t, []ast.Decl{fn})
	assert.False(t, h.HasErrors())
}

func TestCheckFnDecl_ReturnTypeMismatchIsAnError(t *testing.T) {
	t.Parallel()

	// fn f() i32 { "oops" }
	body := &ast.Block{HasTail: true, Tail: &ast.Lit{Kind: ast.LitString, StrValue: "oops"}}
	fn := &ast.FnDecl{Name: "f", HasRet: true, Ret: primitiveType(token.KeyI32), Body: body, HasBody: true}

	_, h := run(t, []ast.Decl{fn})
	assert.True(t, h.HasErrors())
}

func TestCheckReturnStmt_MatchesDeclaredType(t *testing.T) {
	t.Parallel()

	// fn f() i32 { return 1 }
	ret := &ast.ReturnStmt{HasValue: true, Value: intLit("1")}
	body := &ast.Block{Stmts: []ast.Stmt{ret}}
	fn := &ast.FnDecl{Name: "f", HasRet: true, Ret: primitiveType(token.KeyI32), Body: body, HasBody: true}

	_, h := run(t, []ast.Decl{fn})
	assert.False(t, h.HasErrors())
}

func TestCheckReturnStmt_WrongTypeIsAnError(t *testing.T) {
	t.Parallel()

	ret := &ast.ReturnStmt{HasValue: true, Value: &ast.Lit{Kind: ast.LitString, StrValue: "oops"}}
	body := &ast.Block{Stmts: []ast.Stmt{ret}}
	fn := &ast.FnDecl{Name: "f", HasRet: true, Ret: primitiveType(token.KeyI32), Body: body, HasBody: true}

	_, h := run(t, []ast.Decl{fn})
	assert.True(t, h.HasErrors())
}

func TestCheckLetStmt_InfersTypeFromInit(t *testing.T) {
	t.Parallel()

	// fn f() i32 {
	//     let x = 1
	//     x
	// }
	let := &ast.LetStmt{Names: []string{"x"}, HasType: []bool{false}, Init: intLit("1")}
	body := &ast.Block{Stmts: []ast.Stmt{let}, HasTail: true, Tail: &ast.Ident{Name: "x"}}
	fn := &ast.FnDecl{Name: "f", HasRet: true, Ret: primitiveType(token.KeyI32), Body: body, HasBody: true}

	ctx, h := run(t, []ast.Decl{fn})
	require.False(t, h.HasErrors())

	xID, ok := body.Scope.Lookup("x")
	require.True(t, ok)
	xSym := ctx.Pool.At(xID)
	assert.True(t, sym.Equal(ctx.WellKnown.I32, xSym.ObjType))
}

func TestCheckLetStmt_DeclaredTypeMismatchIsAnError(t *testing.T) {
	t.Parallel()

	let := &ast.LetStmt{
		Names: []string{"x"}, HasType: []bool{true}, Types: []ast.TypeNode{primitiveType(token.KeyI32)},
		Init: &ast.Lit{Kind: ast.LitString, StrValue: "oops"},
	}
	body := &ast.Block{Stmts: []ast.Stmt{let}}
	fn := &ast.FnDecl{Name: "f", Body: body, HasBody: true}

	_, h := run(t, []ast.Decl{fn})
	assert.True(t, h.HasErrors())
}

// Regression test: an `if let x = e { ... }` guard condition checks to the
// unwrapped binding's own type, not bool (see checker.checkCond).
func TestCheckIf_GuardConditionIsNotTreatedAsBool(t *testing.T) {
	t.Parallel()

	guard := &ast.Guard{Name: "x", Init: intLit("1")}
	thenBody := &ast.Block{HasTail: true, Tail: &ast.Ident{Name: "x"}}
	elseBody := &ast.Block{HasTail: true, Tail: intLit("0")}
	ifExpr := &ast.If{Branches: []ast.IfBranch{
		{Cond: guard, Body: thenBody, Kind: token.KeyIf},
		{IsElse: true, Body: elseBody, Kind: token.KeyElse},
	}}
	body := &ast.Block{HasTail: true, Tail: ifExpr}
	fn := &ast.FnDecl{Name: "f", HasRet: true, Ret: primitiveType(token.KeyI32), Body: body, HasBody: true}

	_, h := run(t, []ast.Decl{fn})
	assert.False(t, h.HasErrors())
}

func TestCheckIf_NonBooleanConditionIsAnError(t *testing.T) {
	t.Parallel()

	thenBody := &ast.Block{HasTail: true, Tail: intLit("1")}
	ifExpr := &ast.If{Branches: []ast.IfBranch{{Cond: intLit("1"), Body: thenBody, Kind: token.KeyIf}}}
	body := &ast.Block{HasTail: true, Tail: ifExpr}
	fn := &ast.FnDecl{Name: "f", Body: body, HasBody: true}

	_, h := run(t, []ast.Decl{fn})
	assert.True(t, h.HasErrors())
}

// diagSink records every diagnostic it receives, for tests that need to
// inspect warnings (report.Handler itself only counts errors).
type diagSink struct{ diags []report.Diagnostic }

func (s *diagSink) Report(d report.Diagnostic) { s.diags = append(s.diags, d) }

func (s *diagSink) hasWarning() bool {
	for _, d := range s.diags {
		if d.Severity == report.SeverityWarning {
			return true
		}
	}
	return false
}

func runCapture(t *testing.T, decls []ast.Decl) *diagSink {
	t.Helper()
	ctx := sema.NewCompilerContext(sema.Prefs{})
	sink := &diagSink{}
	h := report.NewHandler(sink)
	file := &ast.SourceFile{Path: "test.rv", Decls: decls}

	reg := registrar.New(ctx, h)
	reg.Files([]*ast.SourceFile{file})
	require.Zero(t, h.NumErrors())

	resolver.New(ctx, h, reg).Files([]*ast.SourceFile{file})
	require.Zero(t, h.NumErrors())

	checker.New(ctx, h).Files([]*ast.SourceFile{file})
	return sink
}

// Regression test: an `unsafe` block containing no actual unsafe operation
// is flagged as unnecessary, and an enclosing unsafe block's own operation
// counter must not be clobbered by checking a nested non-unsafe block first
// (see checker.checkBlock).
func TestCheckBlock_EmptyUnsafeBlockWarns(t *testing.T) {
	t.Parallel()

	inner := &ast.Block{HasTail: true, Tail: intLit("1")}
	outer := &ast.Block{IsUnsafe: true, HasTail: true, Tail: inner}
	fn := &ast.FnDecl{Name: "f", Body: outer, HasBody: true}

	sink := runCapture(t, []ast.Decl{fn})
	assert.True(t, sink.hasWarning())
}

func TestCheckSelector_PrivateFieldFromOutsideIsAnError(t *testing.T) {
	t.Parallel()

	// struct Point { n: i32 (private) }
	// fn f(p: Point) i32 { p.n }
	field := &ast.StructFieldDecl{DeclBase: ast.DeclBase{Vis: sym.Private}, Name: "n", Type: primitiveType(token.KeyI32)}
	structDecl := &ast.StructDecl{Name: "Point", Decls: []ast.Decl{field}}

	sel := &ast.Selector{X: &ast.Ident{Name: "p"}, Name: "n"}
	body := &ast.Block{HasTail: true, Tail: sel}
	fn := &ast.FnDecl{
		Name: "f",
		Args: []ast.FnArg{{Name: "p", Type: namedType("Point")}},
		Body: body, HasBody: true,
	}

	_, h := run(t, []ast.Decl{structDecl, fn})
	assert.True(t, h.HasErrors())
}
