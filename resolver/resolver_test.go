package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivet-lang/rivetc/ast"
	"github.com/rivet-lang/rivetc/registrar"
	"github.com/rivet-lang/rivetc/report"
	"github.com/rivet-lang/rivetc/resolver"
	"github.com/rivet-lang/rivetc/sema"
	"github.com/rivet-lang/rivetc/sym"
	"github.com/rivet-lang/rivetc/token"
)

// run registers and resolves decls as a single package-scope compilation,
// mirroring how a driver chains registrar.Files -> resolver.Files (spec.md
// §4.2/§4.3).
func run(t *testing.T, decls []ast.Decl) (*sema.CompilerContext, *report.Handler) {
	t.Helper()
	ctx := sema.NewCompilerContext(sema.Prefs{})
	h := report.NewHandler(nil)
	file := &ast.SourceFile{Path: "test.rv", Decls: decls}

	reg := registrar.New(ctx, h)
	reg.Files([]*ast.SourceFile{file})
	require.Zero(t, h.NumErrors(), "registrar reported errors")

	resolver.New(ctx, h, reg).Files([]*ast.SourceFile{file})
	return ctx, h
}

func namedType(name string) ast.TypeNode {
	return ast.TypeNode{Kind: ast.TypeNodeNamed, Segments: []string{name}}
}

func primitiveType(k token.Kind) ast.TypeNode {
	return ast.TypeNode{Kind: ast.TypeNodePrimitive, Primitive: k}
}

func TestResolveConstDecl(t *testing.T) {
	t.Parallel()

	t.Run("typed", func(t *testing.T) {
		t.Parallel()
		decl := &ast.ConstDecl{
			Name: "Max", HasType: true, Type: primitiveType(token.KeyI32),
			Value: &ast.Lit{Kind: ast.LitInteger, IntValue: "42"},
		}
		ctx, h := run(t, []ast.Decl{decl})
		assert.False(t, h.HasErrors())
		assert.True(t, sym.Equal(ctx.WellKnown.I32, ctx.Pool.At(decl.Sym).ValueType))
	})

	t.Run("untyped leaves ValueType zero for the checker", func(t *testing.T) {
		t.Parallel()
		decl := &ast.ConstDecl{
			Name:  "Answer",
			Value: &ast.Lit{Kind: ast.LitInteger, IntValue: "42"},
		}
		ctx, h := run(t, []ast.Decl{decl})
		assert.False(t, h.HasErrors())
		assert.True(t, ctx.Pool.At(decl.Sym).ValueType.IsZero())
	})
}

func TestResolveStructDecl_ForwardReferencedFieldType(t *testing.T) {
	t.Parallel()

	// struct A { b: B } struct B { n: i32 }
	// A's field references B, declared later in the same file (spec.md
	// §4.2's "registrar runs one pass over every decl before any is
	// resolved" makes this legal).
	fieldA := &ast.StructFieldDecl{Name: "b", Type: namedType("B")}
	structA := &ast.StructDecl{Name: "A", Decls: []ast.Decl{fieldA}}
	fieldB := &ast.StructFieldDecl{Name: "n", Type: primitiveType(token.KeyI32)}
	structB := &ast.StructDecl{Name: "B", Decls: []ast.Decl{fieldB}}

	ctx, h := run(t, []ast.Decl{structA, structB})
	require.False(t, h.HasErrors())

	aFieldType := ctx.Pool.At(fieldA.Sym).ArgType
	require.Equal(t, sym.TagNamed, aFieldType.Tag)
	assert.Equal(t, structB.Sym, aFieldType.Named)
}

func TestResolveTypeAlias(t *testing.T) {
	t.Parallel()

	t.Run("forward reference resolves lazily", func(t *testing.T) {
		t.Parallel()
		// type Size = Count; const N: Size = 1; type Count = i32;
		aliasSize := &ast.TypeDecl{Name: "Size", Base: namedType("Count")}
		constN := &ast.ConstDecl{
			Name: "N", HasType: true, Type: namedType("Size"),
			Value: &ast.Lit{Kind: ast.LitInteger, IntValue: "1"},
		}
		aliasCount := &ast.TypeDecl{Name: "Count", Base: primitiveType(token.KeyI32)}

		ctx, h := run(t, []ast.Decl{aliasSize, constN, aliasCount})
		require.False(t, h.HasErrors())
		assert.True(t, sym.Equal(ctx.WellKnown.I32, ctx.Pool.At(constN.Sym).ValueType))
	})

	t.Run("cycle is rejected", func(t *testing.T) {
		t.Parallel()
		a := &ast.TypeDecl{Name: "A", Base: namedType("B")}
		b := &ast.TypeDecl{Name: "B", Base: namedType("A")}
		_, h := run(t, []ast.Decl{a, b})
		assert.True(t, h.HasErrors())
	})
}

func TestResolveFnDecl_ArgTypePropagatesToBodyScope(t *testing.T) {
	t.Parallel()

	// fn add(x: i32, y: i32) i32 { x }
	body := &ast.Block{HasTail: true, Tail: &ast.Ident{Name: "x"}}
	fn := &ast.FnDecl{
		Name: "add",
		Args: []ast.FnArg{
			{Name: "x", Type: primitiveType(token.KeyI32)},
			{Name: "y", Type: primitiveType(token.KeyI32)},
		},
		HasRet: true, Ret: primitiveType(token.KeyI32),
		Body: body, HasBody: true,
	}

	ctx, h := run(t, []ast.Decl{fn})
	require.False(t, h.HasErrors())

	xObjID, ok := body.Scope.Lookup("x")
	require.True(t, ok)
	xObj := ctx.Pool.At(xObjID)
	assert.True(t, sym.Equal(ctx.WellKnown.I32, xObj.ObjType))

	tailIdent := body.Tail.(*ast.Ident)
	assert.Equal(t, xObjID, tailIdent.Sym)
	assert.True(t, tailIdent.IsObj)
}

func TestResolveFnDecl_UndeclaredIdentIsAnError(t *testing.T) {
	t.Parallel()

	body := &ast.Block{HasTail: true, Tail: &ast.Ident{Name: "nope"}}
	fn := &ast.FnDecl{Name: "f", HasRet: false, Body: body, HasBody: true}

	_, h := run(t, []ast.Decl{fn})
	assert.True(t, h.HasErrors())
}

func TestResolveStructMethod_SelfAndSiblingConst(t *testing.T) {
	t.Parallel()

	// struct Point {
	//     n: i32
	//     const Zero: i32 = 0
	//     fn value(self) i32 { self.n }
	//     fn zero() i32 { Zero }
	// }
	field := &ast.StructFieldDecl{Name: "n", Type: primitiveType(token.KeyI32)}
	zeroConst := &ast.ConstDecl{
		Name: "Zero", HasType: true, Type: primitiveType(token.KeyI32),
		Value: &ast.Lit{Kind: ast.LitInteger, IntValue: "0"},
	}
	valueBody := &ast.Block{HasTail: true, Tail: &ast.Selector{X: &ast.Self{}, Name: "n"}}
	valueFn := &ast.FnDecl{
		Name: "value", IsMethod: true, SelfIsRef: false,
		Body: valueBody, HasBody: true,
	}
	zeroBody := &ast.Block{HasTail: true, Tail: &ast.Ident{Name: "Zero"}}
	zeroFn := &ast.FnDecl{Name: "zero", Body: zeroBody, HasBody: true}

	structDecl := &ast.StructDecl{
		Name:  "Point",
		Decls: []ast.Decl{field, zeroConst, valueFn, zeroFn},
	}

	_, h := run(t, []ast.Decl{structDecl})
	require.False(t, h.HasErrors())

	selfExpr := valueBody.Tail.(*ast.Selector).X.(*ast.Self)
	require.NotEqual(t, sym.ID{}, selfExpr.Sym)

	zeroIdent := zeroBody.Tail.(*ast.Ident)
	assert.Equal(t, zeroConst.Sym, zeroIdent.Sym)
	assert.False(t, zeroIdent.IsObj)
}

func TestResolveSelfTy_OnlyInsideATypeBody(t *testing.T) {
	t.Parallel()

	t.Run("inside struct, resolves to the enclosing type", func(t *testing.T) {
		t.Parallel()
		body := &ast.Block{HasTail: true, Tail: &ast.SelfTy{}}
		fn := &ast.FnDecl{Name: "make", IsMethod: true, Body: body, HasBody: true}
		structDecl := &ast.StructDecl{Name: "Box", Decls: []ast.Decl{fn}}

		_, h := run(t, []ast.Decl{structDecl})
		require.False(t, h.HasErrors())
		selfTy := body.Tail.(*ast.SelfTy)
		assert.Equal(t, structDecl.Sym, selfTy.Sym)
	})

	t.Run("at package level, reports an error", func(t *testing.T) {
		t.Parallel()
		body := &ast.Block{HasTail: true, Tail: &ast.SelfTy{}}
		fn := &ast.FnDecl{Name: "make", Body: body, HasBody: true}

		_, h := run(t, []ast.Decl{fn})
		assert.True(t, h.HasErrors())
	})
}

func TestResolveExtendDecl_MethodSeesTargetAsSelf(t *testing.T) {
	t.Parallel()

	// struct Box { n: i32 }
	// extend Box { fn get(self) i32 { self.n } }
	field := &ast.StructFieldDecl{Name: "n", Type: primitiveType(token.KeyI32)}
	structDecl := &ast.StructDecl{Name: "Box", Decls: []ast.Decl{field}}

	getBody := &ast.Block{HasTail: true, Tail: &ast.Selector{X: &ast.SelfTy{}, Name: "n"}}
	getFn := &ast.FnDecl{Name: "get", IsMethod: true, Body: getBody, HasBody: true}
	extendDecl := &ast.ExtendDecl{Target: namedType("Box"), Decls: []ast.Decl{getFn}}

	_, h := run(t, []ast.Decl{structDecl, extendDecl})
	require.False(t, h.HasErrors())

	selfTy := getBody.Tail.(*ast.Selector).X.(*ast.SelfTy)
	assert.Equal(t, structDecl.Sym, selfTy.Sym)
}

func TestResolvePath_ExternPackage(t *testing.T) {
	t.Parallel()

	t.Run("undeclared package is an error", func(t *testing.T) {
		t.Parallel()
		body := &ast.Block{HasTail: true, Tail: &ast.Path{
			Left: &ast.Ident{Name: "nope"}, FieldName: "Thing",
		}}
		fn := &ast.FnDecl{Name: "f", Body: body, HasBody: true}
		_, h := run(t, []ast.Decl{fn})
		assert.True(t, h.HasErrors())
	})

	t.Run("declared but missing member is an error", func(t *testing.T) {
		t.Parallel()
		extPkg := &ast.ExternPkgDecl{Name: "io"}
		body := &ast.Block{HasTail: true, Tail: &ast.Path{
			Left: &ast.Ident{Name: "io"}, FieldName: "Missing",
		}}
		fn := &ast.FnDecl{Name: "f", Body: body, HasBody: true}
		_, h := run(t, []ast.Decl{extPkg, fn})
		assert.True(t, h.HasErrors())
	})
}

func TestResolveGuard_BindsNameIntoBranchBody(t *testing.T) {
	t.Parallel()

	// fn f() i32 {
	//     if (let x = 1) { x } else { 0 }
	// }
	guard := &ast.Guard{Name: "x", Init: &ast.Lit{Kind: ast.LitInteger, IntValue: "1"}}
	thenBody := &ast.Block{HasTail: true, Tail: &ast.Ident{Name: "x"}}
	elseBody := &ast.Block{HasTail: true, Tail: &ast.Lit{Kind: ast.LitInteger, IntValue: "0"}}
	ifExpr := &ast.If{Branches: []ast.IfBranch{
		{Cond: guard, Body: thenBody, Kind: token.KeyIf},
		{IsElse: true, Body: elseBody, Kind: token.KeyElse},
	}}
	body := &ast.Block{HasTail: true, Tail: ifExpr}
	fn := &ast.FnDecl{Name: "f", HasRet: true, Ret: primitiveType(token.KeyI32), Body: body, HasBody: true}

	_, h := run(t, []ast.Decl{fn})
	require.False(t, h.HasErrors())

	require.NotEqual(t, sym.ID{}, guard.Sym)
	xIdent := thenBody.Tail.(*ast.Ident)
	assert.Equal(t, guard.Sym, xIdent.Sym)
}

func TestResolveGuard_NotVisibleOutsideBranch(t *testing.T) {
	t.Parallel()

	guard := &ast.Guard{Name: "x", Init: &ast.Lit{Kind: ast.LitInteger, IntValue: "1"}}
	thenBody := &ast.Block{HasTail: true, Tail: &ast.Ident{Name: "x"}}
	ifExpr := &ast.If{Branches: []ast.IfBranch{{Cond: guard, Body: thenBody, Kind: token.KeyIf}}}
	// Referencing the guard's name after the if: must fail.
	afterStmt := &ast.ExprStmt{X: &ast.Ident{Name: "x"}}
	body := &ast.Block{Stmts: []ast.Stmt{&ast.ExprStmt{X: ifExpr}, afterStmt}}
	fn := &ast.FnDecl{Name: "f", Body: body, HasBody: true}

	_, h := run(t, []ast.Decl{fn})
	assert.True(t, h.HasErrors())
}

func TestResolveForInStmt_BindsLoopVariable(t *testing.T) {
	t.Parallel()

	loopBody := &ast.Block{HasTail: true, Tail: &ast.Ident{Name: "item"}}
	forInStmt := &ast.ForInStmt{Names: []string{"item"}, Iterable: &ast.Ident{Name: "xs"}, Body: loopBody}
	xsArg := ast.FnArg{Name: "xs", Type: ast.TypeNode{
		Kind: ast.TypeNodeSlice,
		Elem: &ast.TypeNode{Kind: ast.TypeNodePrimitive, Primitive: token.KeyI32},
	}}
	fn := &ast.FnDecl{
		Name: "f", Args: []ast.FnArg{xsArg},
		Body:    &ast.Block{Stmts: []ast.Stmt{forInStmt}},
		HasBody: true,
	}

	_, h := run(t, []ast.Decl{fn})
	require.False(t, h.HasErrors())
	require.Len(t, forInStmt.Syms, 1)

	itemIdent := loopBody.Tail.(*ast.Ident)
	assert.Equal(t, forInStmt.Syms[0], itemIdent.Sym)
}

func TestResolveLetStmt_BindsEachName(t *testing.T) {
	t.Parallel()

	letStmt := &ast.LetStmt{
		Names: []string{"a", "b"}, IsMut: []bool{false, true},
		HasType: []bool{false, false},
		Init:    &ast.Tuple{Elems: []ast.Expr{&ast.Lit{Kind: ast.LitInteger, IntValue: "1"}, &ast.Lit{Kind: ast.LitInteger, IntValue: "2"}}},
	}
	useA := &ast.ExprStmt{X: &ast.Ident{Name: "a"}}
	body := &ast.Block{Stmts: []ast.Stmt{letStmt, useA}}
	fn := &ast.FnDecl{Name: "f", Body: body, HasBody: true}

	_, h := run(t, []ast.Decl{fn})
	require.False(t, h.HasErrors())
	require.Len(t, letStmt.Syms, 2)

	usedIdent := useA.X.(*ast.Ident)
	assert.Equal(t, letStmt.Syms[0], usedIdent.Sym)
}

func TestResolveErrTypeUse_RestrictedToIsComparison(t *testing.T) {
	t.Parallel()

	t.Run("bare use outside is comparison is rejected", func(t *testing.T) {
		t.Parallel()
		errDecl := &ast.ErrTypeDecl{Name: "MyError"}
		// let x: MyError = ... is illegal: errtype only valid in raise/is.
		letStmt := &ast.LetStmt{
			Names: []string{"x"}, IsMut: []bool{false}, HasType: []bool{true},
			Types: []ast.TypeNode{namedType("MyError")},
			Init:  &ast.Lit{Kind: ast.LitNone},
		}
		body := &ast.Block{Stmts: []ast.Stmt{letStmt}}
		fn := &ast.FnDecl{Name: "f", Body: body, HasBody: true}

		_, h := run(t, []ast.Decl{errDecl, fn})
		assert.True(t, h.HasErrors())
	})

	t.Run("use inside an is comparison is allowed", func(t *testing.T) {
		t.Parallel()
		errDecl := &ast.ErrTypeDecl{Name: "MyError"}
		isExpr := &ast.Binary{
			Op: token.KeyIs, LHS: &ast.Ident{Name: "e"},
			RHS: &ast.TypePat{Typ: namedType("MyError")},
		}
		body := &ast.Block{Stmts: []ast.Stmt{&ast.ExprStmt{X: isExpr}}}
		eArg := ast.FnArg{Name: "e", Type: primitiveType(token.KeyI32)}
		fn := &ast.FnDecl{Name: "f", Args: []ast.FnArg{eArg}, Body: body, HasBody: true}

		_, h := run(t, []ast.Decl{errDecl, fn})
		assert.False(t, h.HasErrors())
	})
}

func TestResolveLabelAndGoto(t *testing.T) {
	t.Parallel()

	t.Run("goto finds a preceding label", func(t *testing.T) {
		t.Parallel()
		label := &ast.LabelStmt{Name: "retry"}
		gotoStmt := &ast.GotoStmt{Name: "retry"}
		body := &ast.Block{Stmts: []ast.Stmt{label, gotoStmt}}
		fn := &ast.FnDecl{Name: "f", Body: body, HasBody: true}

		_, h := run(t, []ast.Decl{fn})
		require.False(t, h.HasErrors())
		assert.Equal(t, label.Sym, gotoStmt.Sym)
	})

	t.Run("goto with no matching label is an error", func(t *testing.T) {
		t.Parallel()
		gotoStmt := &ast.GotoStmt{Name: "nowhere"}
		body := &ast.Block{Stmts: []ast.Stmt{gotoStmt}}
		fn := &ast.FnDecl{Name: "f", Body: body, HasBody: true}

		_, h := run(t, []ast.Decl{fn})
		assert.True(t, h.HasErrors())
	})
}

func TestResolveCallErrorHandler_BindsCaughtVar(t *testing.T) {
	t.Parallel()

	// might_fail() catch |err| err
	call := &ast.Call{
		Callee: &ast.Ident{Name: "mightFail"},
		Handler: &ast.CallErrorHandler{
			HasVar: true, VarName: "err", Handler: &ast.Ident{Name: "err"},
		},
	}
	fnSig := &ast.FnDecl{Name: "mightFail", HasRet: true, Ret: primitiveType(token.KeyI32)}
	body := &ast.Block{Stmts: []ast.Stmt{&ast.ExprStmt{X: call}}}
	caller := &ast.FnDecl{Name: "f", Body: body, HasBody: true}

	_, h := run(t, []ast.Decl{fnSig, caller})
	require.False(t, h.HasErrors())

	require.NotEqual(t, sym.ID{}, call.Handler.Sym)
	caughtIdent := call.Handler.Handler.(*ast.Ident)
	assert.Equal(t, call.Handler.Sym, caughtIdent.Sym)
}
