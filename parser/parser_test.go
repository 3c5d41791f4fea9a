package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivet-lang/rivetc/ast"
	"github.com/rivet-lang/rivetc/lexer"
	"github.com/rivet-lang/rivetc/parser"
	"github.com/rivet-lang/rivetc/report"
	"github.com/rivet-lang/rivetc/sema"
	"github.com/rivet-lang/rivetc/token"
)

// parse lexes and parses src as a complete file, failing the test if the
// lexer itself reported an error (a parser test exercises parsing, not
// lexing).
func parse(t *testing.T, src string) (*ast.SourceFile, *report.Handler) {
	t.Helper()
	h := report.NewHandler(nil)
	ctx := sema.NewCompilerContext(sema.Prefs{})
	toks := lexer.Lex(h, "test.rv", []byte(src))
	require.Zero(t, h.NumErrors(), "unexpected lexical errors")
	file := parser.ParseFile(ctx, h, "test.rv", toks)
	return file, h
}

func TestParseFnDecl_EmptyBody(t *testing.T) {
	t.Parallel()

	file, h := parse(t, "fn f() void {}")
	require.False(t, h.HasErrors())
	require.Len(t, file.Decls, 1)

	fn, ok := file.Decls[0].(*ast.FnDecl)
	require.True(t, ok)
	assert.Equal(t, "f", fn.Name)
	assert.True(t, fn.HasBody)
	assert.Equal(t, ast.TypeNodePrimitive, fn.Ret.Kind)
	assert.Equal(t, token.KeyVoid, fn.Ret.Primitive)
}

func TestParseFnDecl_ArgsAndReturnType(t *testing.T) {
	t.Parallel()

	file, h := parse(t, "pub fn add(a: i32, b: i32) i32 { a + b }")
	require.False(t, h.HasErrors())
	require.Len(t, file.Decls, 1)

	fn := file.Decls[0].(*ast.FnDecl)
	require.Len(t, fn.Args, 2)
	assert.Equal(t, "a", fn.Args[0].Name)
	assert.Equal(t, "b", fn.Args[1].Name)
	assert.True(t, fn.HasBody)
	assert.True(t, fn.Body.HasTail)

	bin, ok := fn.Body.Tail.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, token.Plus, bin.Op)
}

func TestParseFnDecl_MethodReceiver(t *testing.T) {
	t.Parallel()

	file, h := parse(t, "fn get(&self) i32 { self.n }")
	require.False(t, h.HasErrors())

	fn := file.Decls[0].(*ast.FnDecl)
	assert.True(t, fn.IsMethod)
	assert.True(t, fn.SelfIsRef)
	assert.False(t, fn.SelfIsMut)
}

func TestParseStructDecl_FieldsAndVisibility(t *testing.T) {
	t.Parallel()

	file, h := parse(t, "struct Point { pub x: i32; y: i32; }")
	require.False(t, h.HasErrors())

	sd := file.Decls[0].(*ast.StructDecl)
	assert.Equal(t, "Point", sd.Name)
	require.Len(t, sd.Decls, 2)

	x := sd.Decls[0].(*ast.StructFieldDecl)
	assert.Equal(t, "x", x.Name)

	y := sd.Decls[1].(*ast.StructFieldDecl)
	assert.Equal(t, "y", y.Name)
}

func TestParseEnumDecl_Variants(t *testing.T) {
	t.Parallel()

	file, h := parse(t, "enum Color { Red, Green, Blue }")
	require.False(t, h.HasErrors())

	ed := file.Decls[0].(*ast.EnumDecl)
	assert.Equal(t, []string{"Red", "Green", "Blue"}, ed.Variants)
}

func TestParseLetStmt_DeclaredAndInferredTypes(t *testing.T) {
	t.Parallel()

	file, h := parse(t, "fn f() void { let x: i32 = 1; let y = 2; }")
	require.False(t, h.HasErrors())

	fn := file.Decls[0].(*ast.FnDecl)
	require.Len(t, fn.Body.Stmts, 2)

	first := fn.Body.Stmts[0].(*ast.LetStmt)
	assert.Equal(t, []string{"x"}, first.Names)
	assert.True(t, first.HasType[0])

	second := fn.Body.Stmts[1].(*ast.LetStmt)
	assert.Equal(t, []string{"y"}, second.Names)
	assert.False(t, second.HasType[0])
}

func TestParseIfExpr_WithElse(t *testing.T) {
	t.Parallel()

	file, h := parse(t, "fn f() i32 { if (true) { 1 } else { 0 } }")
	require.False(t, h.HasErrors())

	fn := file.Decls[0].(*ast.FnDecl)
	ifExpr, ok := fn.Body.Tail.(*ast.If)
	require.True(t, ok)
	require.Len(t, ifExpr.Branches, 2)
	assert.False(t, ifExpr.Branches[0].IsElse)
	assert.True(t, ifExpr.Branches[1].IsElse)
}

// Regression test: `<<`/`>>` are never collapsed into a single Lshift/Rshift
// token by the lexer, so the parser itself must reassemble a genuine shift
// operator out of two adjacent Lt/Gt tokens (see parser.parseShiftExpr).
func TestParseShiftExpr_AssembledFromAdjacentTokens(t *testing.T) {
	t.Parallel()

	file, h := parse(t, "fn f() i32 { 1 << 2 }")
	require.False(t, h.HasErrors())

	fn := file.Decls[0].(*ast.FnDecl)
	bin, ok := fn.Body.Tail.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, token.Lshift, bin.Op)
}

func TestParseDocComment_AttachedToDecl(t *testing.T) {
	t.Parallel()

	file, h := parse(t, "/// does a thing\nfn f() void {}")
	require.False(t, h.HasErrors())

	fn := file.Decls[0].(*ast.FnDecl)
	assert.Equal(t, "does a thing", fn.Attrs().DocComment)
}

func TestParseExternDeclWithReference_IsAnError(t *testing.T) {
	t.Parallel()

	_, h := parse(t, `extern "C" fn f(x: &i32) void;`)
	assert.True(t, h.HasErrors())
}

func TestParseMalformedDecl_ReportsErrorWithoutPanicking(t *testing.T) {
	t.Parallel()

	_, h := parse(t, "fn () {}")
	assert.True(t, h.HasErrors())
}
