package parser

import (
	"github.com/rivet-lang/rivetc/ast"
	"github.com/rivet-lang/rivetc/token"
)

// parseStmt parses one statement (spec.md §3.4). `if`/`match` used as a
// statement at the end of a block become the block's tail value instead of
// being wrapped in an ExprStmt — that splitting happens one layer up, in
// parseBlockBody/parseBlockExpr, by inspecting the returned *ast.ExprStmt.
func (p *Parser) parseStmt() ast.Stmt {
	pos := p.tok.Pos

	if p.tok.Kind == token.Name && p.peek(1).Kind == token.Colon {
		name := p.parseName()
		p.expect(token.Colon)
		return &ast.LabelStmt{StmtBase: ast.StmtBase{Pos: pos}, Name: name}
	}

	switch p.tok.Kind {
	case token.KeyUnsafe, token.LBrace:
		body := p.parseBlockBody(pos)
		return &ast.BlockStmt{StmtBase: ast.StmtBase{Pos: pos}, Body: body}

	case token.KeyLoop:
		p.next()
		body := p.parseStmtAsExpr()
		return &ast.LoopStmt{StmtBase: ast.StmtBase{Pos: pos}, Body: body}

	case token.KeyWhile:
		p.next()
		if p.tok.Kind == token.LBrace {
			body := p.parseStmtAsExpr()
			return &ast.WhileStmt{StmtBase: ast.StmtBase{Pos: pos}, Body: body}
		}
		p.expect(token.LParen)
		cond := p.parseCondExpr()
		hasContinueExpr := false
		var continueExpr ast.Expr
		if p.accept(token.Comma) {
			hasContinueExpr = true
			continueExpr = p.parseExpr()
		}
		p.expect(token.RParen)
		body := p.parseStmtAsExpr()
		return &ast.WhileStmt{
			StmtBase: ast.StmtBase{Pos: pos}, HasCond: true, Cond: cond, Body: body,
			HasContinueExpr: hasContinueExpr, ContinueExpr: continueExpr,
		}

	case token.KeyFor:
		p.next()
		p.expect(token.LParen)
		var names []string
		names = append(names, p.parseName())
		if p.accept(token.Comma) {
			names = append(names, p.parseName())
		}
		p.expect(token.KeyIn)
		iterable := p.parseExpr()
		p.expect(token.RParen)
		body := p.parseStmtAsExpr()
		return &ast.ForInStmt{StmtBase: ast.StmtBase{Pos: pos}, Names: names, Iterable: iterable, Body: body}

	case token.KeyGoto:
		p.next()
		name := p.parseName()
		p.expect(token.Semicolon)
		return &ast.GotoStmt{StmtBase: ast.StmtBase{Pos: pos}, Name: name}

	case token.KeyContinue, token.KeyBreak:
		kind := ast.BranchContinue
		if p.tok.Kind == token.KeyBreak {
			kind = ast.BranchBreak
		}
		p.next()
		hasName := false
		var name string
		if p.tok.Kind == token.Name {
			hasName = true
			name = p.parseName()
		}
		p.expect(token.Semicolon)
		return &ast.BranchStmt{StmtBase: ast.StmtBase{Pos: pos}, Kind: kind, HasName: hasName, Name: name}

	case token.KeyReturn:
		p.next()
		hasValue := p.tok.Kind != token.Semicolon
		var value ast.Expr
		if hasValue {
			value = p.parseExpr()
		}
		p.expect(token.Semicolon)
		return &ast.ReturnStmt{StmtBase: ast.StmtBase{Pos: pos}, Value: value, HasValue: hasValue}

	case token.KeyRaise:
		p.next()
		value := p.parseExpr()
		p.expect(token.Semicolon)
		return &ast.RaiseStmt{StmtBase: ast.StmtBase{Pos: pos}, Value: value}

	case token.KeyLet:
		return p.parseLetStmt(pos)
	}

	expr := p.parseExpr()
	if assign, ok := p.tryParseAssign(expr, pos); ok {
		return assign
	}
	if !((p.insideBlock && p.tok.Kind == token.RBrace) || isBranchingExpr(expr)) {
		p.expect(token.Semicolon)
	}
	return &ast.ExprStmt{StmtBase: ast.StmtBase{Pos: expr.Position()}, X: expr}
}

// parseStmtAsExpr parses a statement that is itself used as a loop body
// (spec.md §3.4's `while`/`for`/`loop` all take a statement — ordinarily a
// Block — as their body); the body is unwrapped to an Expr for use as the
// corresponding *ast.WhileStmt/ForInStmt/LoopStmt Body field.
func (p *Parser) parseStmtAsExpr() ast.Expr {
	st := p.parseStmt()
	switch s := st.(type) {
	case *ast.BlockStmt:
		return s.Body
	case *ast.ExprStmt:
		return s.X
	default:
		// Any other statement kind used directly as a loop body is wrapped
		// in a single-statement block so callers always see an Expr.
		return &ast.Block{ExprBase: ast.ExprBase{Pos: st.Position()}, Stmts: []ast.Stmt{st}}
	}
}

var assignOps = map[token.Kind]bool{
	token.Assign: true,
}

// tryParseAssign recognizes `lhs = rhs` / `lhs op= rhs` once the LHS has
// already been parsed as a full expression (spec.md §3.4's Assign kind).
// Compound assignment operators are lexed as their plain binary-operator
// token followed by `=`— there is no dedicated "PlusAssign" token kind in
// this core's lexer contract, so the parser recognizes the pair here.
func (p *Parser) tryParseAssign(lhs ast.Expr, pos token.Position) (ast.Stmt, bool) {
	if p.tok.Kind == token.Assign {
		p.next()
		rhs := p.parseExpr()
		p.expect(token.Semicolon)
		return &ast.AssignStmt{StmtBase: ast.StmtBase{Pos: pos}, Left: lhs, Op: token.Invalid, Right: rhs}, true
	}
	if op, ok := compoundAssignOp(p.tok.Kind); ok && p.peek(1).Kind == token.Assign {
		p.next()
		p.next()
		rhs := p.parseExpr()
		p.expect(token.Semicolon)
		return &ast.AssignStmt{StmtBase: ast.StmtBase{Pos: pos}, Left: lhs, Op: op, Right: rhs}, true
	}
	return nil, false
}

func compoundAssignOp(k token.Kind) (token.Kind, bool) {
	switch k {
	case token.Plus, token.Minus, token.Mult, token.Div, token.Mod,
		token.Amp, token.Pipe, token.Xor:
		return k, true
	default:
		return token.Invalid, false
	}
}

// isBranchingExpr reports whether expr is an `if`/`match` expression, which
// (per spec.md §4.1) never requires a trailing `;` when used as a
// statement.
func isBranchingExpr(e ast.Expr) bool {
	switch e.(type) {
	case *ast.If, *ast.Match:
		return true
	default:
		return false
	}
}

// parseLetStmt parses `let [mut] name[: T] [= init];`, including the
// tuple/array-destructuring form `let (a, b) = e;` (spec.md §3.4).
func (p *Parser) parseLetStmt(pos token.Position) ast.Stmt {
	p.expect(token.KeyLet)
	var names []string
	var isMut []bool
	var hasType []bool
	var types []ast.TypeNode

	parseOne := func() {
		m := p.accept(token.KeyMut)
		n := p.parseName()
		var t ast.TypeNode
		ht := false
		if p.accept(token.Colon) {
			ht = true
			t = p.parseType()
		}
		names = append(names, n)
		isMut = append(isMut, m)
		hasType = append(hasType, ht)
		types = append(types, t)
	}

	if p.accept(token.LParen) {
		for {
			parseOne()
			if !p.accept(token.Comma) {
				break
			}
		}
		p.expect(token.RParen)
	} else {
		parseOne()
	}

	var init ast.Expr
	if p.accept(token.Assign) {
		init = p.parseExpr()
	}
	p.expect(token.Semicolon)
	return &ast.LetStmt{
		StmtBase: ast.StmtBase{Pos: pos}, Names: names, IsMut: isMut,
		HasType: hasType, Types: types, Init: init,
	}
}
