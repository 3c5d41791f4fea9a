package parser

import (
	"github.com/rivet-lang/rivetc/ast"
	"github.com/rivet-lang/rivetc/token"
)

// parseExpr is the entry point of the Pratt-style precedence chain
// described in spec.md §4.1, lowest precedence first: orelse, or, and,
// equality, relational, shift/bitwise, additive, multiplicative, unary,
// primary with postfix chain. `orelse` (SPEC_FULL §4) sits below `or`/`and`:
// it unwraps an optional/result on its left against a fallback on its
// right, an orthogonal concern to boolean combination.
func (p *Parser) parseExpr() ast.Expr { return p.parseOrElseExpr() }

func (p *Parser) parseOrElseExpr() ast.Expr {
	left := p.parseOrExpr()
	for p.tok.Kind == token.KeyOrElse {
		op := p.tok.Kind
		pos := left.Position()
		p.next()
		right := p.parseOrExpr()
		left = &ast.Binary{ExprBase: ast.ExprBase{Pos: pos}, Op: op, LHS: left, RHS: right}
	}
	return left
}

func (p *Parser) parseOrExpr() ast.Expr {
	left := p.parseAndExpr()
	for p.tok.Kind == token.KeyOr {
		op := p.tok.Kind
		pos := left.Position()
		p.next()
		right := p.parseAndExpr()
		left = &ast.Binary{ExprBase: ast.ExprBase{Pos: pos}, Op: op, LHS: left, RHS: right}
	}
	return left
}

func (p *Parser) parseAndExpr() ast.Expr {
	left := p.parseEqualityExpr()
	for p.tok.Kind == token.KeyAnd {
		op := p.tok.Kind
		pos := left.Position()
		p.next()
		right := p.parseEqualityExpr()
		left = &ast.Binary{ExprBase: ast.ExprBase{Pos: pos}, Op: op, LHS: left, RHS: right}
	}
	return left
}

func (p *Parser) parseEqualityExpr() ast.Expr {
	left := p.parseRelationalExpr()
	for p.tok.Kind == token.Eq || p.tok.Kind == token.Ne {
		op := p.tok.Kind
		pos := left.Position()
		p.next()
		right := p.parseRelationalExpr()
		left = &ast.Binary{ExprBase: ast.ExprBase{Pos: pos}, Op: op, LHS: left, RHS: right}
	}
	return left
}

func (p *Parser) parseRelationalExpr() ast.Expr {
	left := p.parseShiftExpr()
	for {
		switch p.tok.Kind {
		case token.Gt, token.Lt, token.Ge, token.Le, token.KeyIn:
			op := p.tok.Kind
			pos := left.Position()
			p.next()
			right := p.parseShiftExpr()
			left = &ast.Binary{ExprBase: ast.ExprBase{Pos: pos}, Op: op, LHS: left, RHS: right}
		case token.Bang:
			if p.peek(1).Kind == token.KeyIn {
				pos := left.Position()
				p.next()
				p.next()
				right := p.parseShiftExpr()
				left = &ast.Binary{ExprBase: ast.ExprBase{Pos: pos}, Op: token.KeyNotIn, LHS: left, RHS: right}
				continue
			}
			if p.peek(1).Kind == token.KeyIs {
				pos := left.Position()
				p.next()
				p.next()
				right := p.parseTypePat()
				left = &ast.Binary{ExprBase: ast.ExprBase{Pos: pos}, Op: token.KeyNotIs, LHS: left, RHS: right}
				continue
			}
			return left
		case token.KeyIs:
			pos := left.Position()
			p.next()
			right := p.parseTypePat()
			left = &ast.Binary{ExprBase: ast.ExprBase{Pos: pos}, Op: token.KeyIs, LHS: left, RHS: right}
		default:
			return left
		}
	}
}

// parseCondExpr parses the condition of an `if`/`while`, which may be an
// ordinary expression or a guard binding (spec.md §3.3's Guard): `let [mut]
// name = init`, optionally followed by `; extra` checked in the scope where
// name is already bound.
func (p *Parser) parseCondExpr() ast.Expr {
	if p.tok.Kind != token.KeyLet {
		return p.parseExpr()
	}
	pos := p.tok.Pos
	p.next()
	isMut := p.accept(token.KeyMut)
	name := p.parseName()
	p.expect(token.Assign)
	init := p.parseExpr()
	guard := &ast.Guard{ExprBase: ast.ExprBase{Pos: pos}, Name: name, IsMut: isMut, Init: init}
	if p.accept(token.Semicolon) {
		extra := p.parseExpr()
		return &ast.Binary{ExprBase: ast.ExprBase{Pos: pos}, Op: token.KeyAnd, LHS: guard, RHS: extra}
	}
	return guard
}

func (p *Parser) parseTypePat() ast.Expr {
	pos := p.tok.Pos
	t := p.parseType()
	return &ast.TypePat{ExprBase: ast.ExprBase{Pos: pos}, Typ: t}
}

func (p *Parser) parseShiftExpr() ast.Expr {
	left := p.parseAdditiveExpr()
	for {
		switch p.tok.Kind {
		case token.Lt, token.Gt:
			// `<<`/`>>` recognized only when the two angle tokens are
			// immediately adjacent (spec.md §4.1's tie-break vs comparisons).
			next := p.peek(1)
			if next.Kind != p.tok.Kind || next.Pos.Offset != p.tok.Pos.Offset+1 {
				return left
			}
			op := token.Lshift
			if p.tok.Kind == token.Gt {
				op = token.Rshift
			}
			pos := left.Position()
			p.next()
			p.next()
			right := p.parseAdditiveExpr()
			left = &ast.Binary{ExprBase: ast.ExprBase{Pos: pos}, Op: op, LHS: left, RHS: right}
		case token.Amp, token.Pipe, token.Xor:
			op := p.tok.Kind
			pos := left.Position()
			p.next()
			right := p.parseAdditiveExpr()
			left = &ast.Binary{ExprBase: ast.ExprBase{Pos: pos}, Op: op, LHS: left, RHS: right}
		default:
			return left
		}
	}
}

func (p *Parser) parseAdditiveExpr() ast.Expr {
	left := p.parseMultiplicativeExpr()
	for p.tok.Kind == token.Plus || p.tok.Kind == token.Minus {
		op := p.tok.Kind
		pos := left.Position()
		p.next()
		right := p.parseMultiplicativeExpr()
		left = &ast.Binary{ExprBase: ast.ExprBase{Pos: pos}, Op: op, LHS: left, RHS: right}
	}
	return left
}

func (p *Parser) parseMultiplicativeExpr() ast.Expr {
	left := p.parseUnaryExpr()
	for p.tok.Kind == token.Mult || p.tok.Kind == token.Div || p.tok.Kind == token.Mod {
		op := p.tok.Kind
		pos := left.Position()
		p.next()
		right := p.parseUnaryExpr()
		left = &ast.Binary{ExprBase: ast.ExprBase{Pos: pos}, Op: op, LHS: left, RHS: right}
	}
	return left
}

func (p *Parser) parseUnaryExpr() ast.Expr {
	switch p.tok.Kind {
	case token.Amp, token.Bang, token.BitNot, token.Inc, token.Dec, token.Minus:
		op := p.tok.Kind
		pos := p.tok.Pos
		p.next()
		x := p.parseUnaryExpr()
		return &ast.Unary{ExprBase: ast.ExprBase{Pos: pos}, Op: op, X: x}
	default:
		return p.parsePrimaryExpr()
	}
}

// parsePrimaryExpr parses one primary expression followed by its postfix
// chain (spec.md §4.1's Postfix chain rule).
func (p *Parser) parsePrimaryExpr() ast.Expr {
	expr := p.parsePrimaryHead()
	return p.parsePostfixChain(expr)
}

func (p *Parser) parsePrimaryHead() ast.Expr {
	pos := p.tok.Pos
	switch p.tok.Kind {
	case token.KeyTrue, token.KeyFalse, token.Char, token.Number, token.String,
		token.KeyNone, token.KeySelf, token.KeySelfTy:
		return p.parseLiteral()
	case token.Dollar:
		p.next()
		switch {
		case p.tok.Kind == token.KeyIf:
			return p.parseIfExpr(true)
		case p.accept(token.KeyMatch):
			return p.parseMatchExpr(true)
		default:
			return p.parseIdent(true)
		}
	case token.Dot:
		if p.peek(1).Kind == token.Name {
			p.next()
			name := p.parseName()
			return &ast.EnumVariant{ExprBase: ast.ExprBase{Pos: pos}, Name: name}
		}
	case token.KeyIf:
		return p.parseIfExpr(false)
	case token.KeyMatch:
		p.next()
		return p.parseMatchExpr(false)
	case token.LParen:
		p.next()
		e := p.parseExpr()
		if p.accept(token.Comma) {
			elems := []ast.Expr{e}
			for {
				elems = append(elems, p.parseExpr())
				if !p.accept(token.Comma) {
					break
				}
			}
			p.expect(token.RParen)
			if len(elems) > 8 {
				p.h.Errorf(pos, "tuples can have a maximum of 8 expressions")
			}
			return &ast.Tuple{ExprBase: ast.ExprBase{Pos: pos}, Elems: elems}
		}
		p.expect(token.RParen)
		return &ast.Par{ExprBase: ast.ExprBase{Pos: pos}, X: e}
	case token.KeyUnsafe, token.LBrace:
		return p.parseBlockExpr()
	case token.KeyCast:
		p.next()
		p.expect(token.LParen)
		x := p.parseExpr()
		p.expect(token.Comma)
		t := p.parseType()
		p.expect(token.RParen)
		return &ast.Cast{ExprBase: ast.ExprBase{Pos: pos}, X: x, To: t}
	case token.KeyGo:
		p.next()
		return &ast.Go{ExprBase: ast.ExprBase{Pos: pos}, X: p.parseExpr()}
	case token.KeyTry:
		p.next()
		return &ast.Try{ExprBase: ast.ExprBase{Pos: pos}, X: p.parseExpr()}
	case token.LBracket:
		p.next()
		var elems []ast.Expr
		if p.tok.Kind != token.RBracket {
			for {
				elems = append(elems, p.parseExpr())
				if !p.accept(token.Comma) {
					break
				}
			}
		}
		p.expect(token.RBracket)
		return &ast.Array{ExprBase: ast.ExprBase{Pos: pos}, Elems: elems}
	case token.KeyPkg:
		p.next()
		return &ast.Pkg{ExprBase: ast.ExprBase{Pos: pos}}
	case token.Name:
		if p.peek(1).Kind == token.Char {
			if p.tok.Lexeme != "b" {
				p.h.Errorf(pos, "only `b` is recognized as a valid prefix for a character literal")
			}
			return p.parseCharLiteral()
		}
		if p.peek(1).Kind == token.String {
			if p.tok.Lexeme != "b" && p.tok.Lexeme != "r" {
				p.h.Errorf(pos, "only `b` and `r` are recognized as valid prefixes for a string literal")
			}
			return p.parseStringLiteral()
		}
		if p.peek(1).Kind == token.Bang {
			return p.parseBuiltinCall()
		}
		return p.parseIdent(false)
	}
	p.h.Errorf(pos, "expected expression, found %s", p.tok)
	p.next()
	return p.emptyExpr()
}

func (p *Parser) parseBuiltinCall() ast.Expr {
	pos := p.tok.Pos
	name := p.parseName()
	p.expect(token.Bang)
	p.expect(token.LParen)
	var args []ast.Expr
	var typeArg *ast.TypeNode
	if name == "sizeof" || name == "default" {
		t := p.parseType()
		typeArg = &t
	} else if p.tok.Kind != token.RParen {
		for {
			args = append(args, p.parseExpr())
			if !p.accept(token.Comma) {
				break
			}
		}
	}
	p.expect(token.RParen)
	return &ast.BuiltinCall{ExprBase: ast.ExprBase{Pos: pos}, Name: name, Args: args, TypeArg: typeArg}
}

// parsePostfixChain applies spec.md §4.1's postfix-chain loop to expr.
func (p *Parser) parsePostfixChain(expr ast.Expr) ast.Expr {
	for {
		pos := expr.Position()
		switch {
		case p.tok.Kind == token.LBrace:
			p.next()
			var fields []ast.StructLitField
			if p.tok.Kind != token.RBrace {
				for {
					fp := p.tok.Pos
					name := p.parseName()
					p.expect(token.Colon)
					val := p.parseExpr()
					fields = append(fields, ast.StructLitField{Name: name, Value: val, Pos: fp})
					if !p.accept(token.Comma) {
						break
					}
				}
			}
			p.expect(token.RBrace)
			expr = &ast.StructLit{ExprBase: ast.ExprBase{Pos: pos}, Target: expr, Fields: fields}
		case p.tok.Kind == token.Inc || p.tok.Kind == token.Dec:
			op := p.tok.Kind
			p.next()
			expr = &ast.Postfix{ExprBase: ast.ExprBase{Pos: pos}, Op: op, X: expr}
		case p.accept(token.LParen):
			expr = p.parseCallTail(expr, pos)
		case p.accept(token.Dot):
			switch {
			case p.accept(token.Mult):
				expr = &ast.Indirect{ExprBase: ast.ExprBase{Pos: pos}, X: expr}
			case p.accept(token.Question):
				expr = &ast.NoneCheck{ExprBase: ast.ExprBase{Pos: pos}, X: expr}
			default:
				name := p.parseName()
				expr = &ast.Selector{ExprBase: ast.ExprBase{Pos: pos}, X: expr, Name: name}
			}
		case p.tok.Kind == token.DoubleColon:
			p.next()
			name := p.parseName()
			expr = &ast.Path{ExprBase: ast.ExprBase{Pos: pos}, Left: expr, FieldName: name}
		case p.accept(token.LBracket):
			expr = p.parseIndexTail(expr, pos)
		case p.tok.Kind == token.DotDot:
			p.next()
			inclusive := p.accept(token.Assign)
			end := p.parseExpr()
			expr = &ast.Range{ExprBase: ast.ExprBase{Pos: pos}, Start: expr, End: end, HasStart: true, HasEnd: true, Inclusive: inclusive}
		default:
			return expr
		}
	}
}

func (p *Parser) parseCallTail(callee ast.Expr, pos token.Position) ast.Expr {
	var args []ast.CallArg
	if p.tok.Kind != token.RParen {
		expectingNamed := false
		for {
			if p.tok.Kind == token.Name && p.peek(1).Kind == token.Colon {
				namePos := p.tok.Pos
				name := p.parseName()
				p.expect(token.Colon)
				val := p.parseExpr()
				args = append(args, ast.CallArg{Value: val, Pos: namePos, IsNamed: true, Name: name})
				expectingNamed = true
			} else {
				if expectingNamed {
					p.h.Errorf(p.tok.Pos, "expected named argument, found expression")
				}
				val := p.parseExpr()
				args = append(args, ast.CallArg{Value: val, Pos: val.Position()})
			}
			if !p.accept(token.Comma) {
				break
			}
		}
	}
	p.expect(token.RParen)
	var handler *ast.CallErrorHandler
	if p.accept(token.KeyCatch) {
		h := &ast.CallErrorHandler{}
		if p.accept(token.Pipe) {
			h.HasVar = true
			h.VarName = p.parseName()
			p.expect(token.Pipe)
		}
		h.Handler = p.parseExpr()
		handler = h
	}
	return &ast.Call{ExprBase: ast.ExprBase{Pos: pos}, Callee: callee, Args: args, Handler: handler}
}

// parseIndexTail parses an index/slice subscript: `[e]`, `[a..b]`,
// `[a..=b]`, `[..b]`, `[a..]` (spec.md §4.1's Postfix chain rule — every
// range form the general infix `..`/`..=` operator supports is also valid
// inside a subscript).
func (p *Parser) parseIndexTail(x ast.Expr, pos token.Position) ast.Expr {
	if p.tok.Kind == token.DotDot {
		p.next()
		inclusive := p.accept(token.Assign)
		end := p.parseExpr()
		p.expect(token.RBracket)
		idx := &ast.Range{ExprBase: ast.ExprBase{Pos: end.Position()}, End: end, HasEnd: true, Inclusive: inclusive}
		return &ast.Index{ExprBase: ast.ExprBase{Pos: pos}, X: x, Index: idx}
	}
	first := p.parseExpr()
	var idx ast.Expr = first
	if p.tok.Kind == token.DotDot {
		p.next()
		inclusive := p.accept(token.Assign)
		if p.tok.Kind != token.RBracket {
			end := p.parseExpr()
			idx = &ast.Range{ExprBase: ast.ExprBase{Pos: first.Position()}, Start: first, End: end, HasStart: true, HasEnd: true, Inclusive: inclusive}
		} else {
			idx = &ast.Range{ExprBase: ast.ExprBase{Pos: first.Position()}, Start: first, HasStart: true}
		}
	}
	p.expect(token.RBracket)
	return &ast.Index{ExprBase: ast.ExprBase{Pos: pos}, X: x, Index: idx}
}

func (p *Parser) parseBlockExpr() ast.Expr {
	pos := p.tok.Pos
	isUnsafe := p.accept(token.KeyUnsafe)
	p.expect(token.LBrace)
	oldInsideBlock := p.insideBlock
	p.insideBlock = true

	var stmts []ast.Stmt
	var tail ast.Expr
	hasTail := false
	for !p.accept(token.RBrace) {
		st := p.parseStmt()
		if es, ok := st.(*ast.ExprStmt); ok && p.prev.Kind != token.Semicolon && p.tok.Kind == token.RBrace {
			tail = es.X
			hasTail = true
			continue
		}
		stmts = append(stmts, st)
	}
	p.insideBlock = oldInsideBlock
	return &ast.Block{ExprBase: ast.ExprBase{Pos: pos}, IsUnsafe: isUnsafe, Stmts: stmts, Tail: tail, HasTail: hasTail}
}

func (p *Parser) parseIfExpr(isComptime bool) ast.Expr {
	pos := p.tok.Pos
	var branches []ast.IfBranch
	keyword := token.KeyIf
	for {
		p.expect(keyword)
		p.expect(token.LParen)
		cond := p.parseCondExpr()
		p.expect(token.RParen)
		body := p.parseExpr()
		branches = append(branches, ast.IfBranch{Cond: cond, Body: body, Kind: keyword})
		if isComptime {
			if p.tok.Kind == token.Dollar && p.peek(1).Kind == token.KeyElif {
				p.next()
				keyword = token.KeyElif
				continue
			}
		} else if p.tok.Kind == token.KeyElif {
			keyword = token.KeyElif
			continue
		}
		break
	}
	elseKeyword := token.KeyElse
	if isComptime {
		if p.tok.Kind == token.Dollar && p.peek(1).Kind == token.KeyElse {
			p.next()
			p.next()
			body := p.parseExpr()
			branches = append(branches, ast.IfBranch{Body: body, IsElse: true, Kind: elseKeyword})
		}
	} else if p.accept(token.KeyElse) {
		body := p.parseExpr()
		branches = append(branches, ast.IfBranch{Body: body, IsElse: true, Kind: elseKeyword})
	}
	return &ast.If{ExprBase: ast.ExprBase{Pos: pos}, IsComptime: isComptime, Branches: branches}
}

func (p *Parser) parseMatchExpr(isComptime bool) ast.Expr {
	pos := p.tok.Pos
	p.expect(token.LParen)
	subject := p.parseExpr()
	p.expect(token.RParen)
	isTypeMatch := p.accept(token.KeyIs)
	p.expect(token.LBrace)
	var arms []ast.MatchArm
	for {
		isElse := p.accept(token.KeyElse)
		var pats []ast.Expr
		if !isElse {
			for {
				if isTypeMatch {
					pats = append(pats, p.parseTypePat())
				} else {
					pats = append(pats, p.parseExpr())
				}
				if !p.accept(token.Comma) {
					break
				}
			}
		}
		p.expect(token.Arrow)
		body := p.parseExpr()
		arms = append(arms, ast.MatchArm{Patterns: pats, IsElse: isElse, Body: body})
		if !p.accept(token.Comma) {
			break
		}
		if p.tok.Kind == token.RBrace {
			break
		}
	}
	p.expect(token.RBrace)
	return &ast.Match{ExprBase: ast.ExprBase{Pos: pos}, IsComptime: isComptime, Subject: subject, IsTypeMatch: isTypeMatch, Arms: arms}
}

func (p *Parser) parseLiteral() ast.Expr {
	pos := p.tok.Pos
	switch p.tok.Kind {
	case token.KeyTrue, token.KeyFalse:
		v := p.tok.Kind == token.KeyTrue
		p.next()
		return &ast.Lit{ExprBase: ast.ExprBase{Pos: pos}, Kind: ast.LitBool, BoolValue: v}
	case token.Char:
		return p.parseCharLiteral()
	case token.Number:
		return p.parseNumberLiteral()
	case token.String:
		return p.parseStringLiteral()
	case token.KeySelf:
		p.next()
		return &ast.Self{ExprBase: ast.ExprBase{Pos: pos}}
	case token.KeySelfTy:
		p.next()
		return &ast.SelfTy{ExprBase: ast.ExprBase{Pos: pos}}
	case token.KeyNone:
		p.next()
		return &ast.Lit{ExprBase: ast.ExprBase{Pos: pos}, Kind: ast.LitNone}
	}
	p.h.Errorf(pos, "expected literal, found %s", p.tok)
	return p.emptyExpr()
}

func (p *Parser) parseNumberLiteral() ast.Expr {
	pos := p.tok.Pos
	lit := p.tok.Lexeme
	isFloat := containsAny(lit, ".eE")
	if len(lit) > 1 && lit[0] == '0' && (lit[1] == 'x' || lit[1] == 'X') {
		isFloat = false
	}
	p.next()
	if isFloat {
		return &ast.Lit{ExprBase: ast.ExprBase{Pos: pos}, Kind: ast.LitFloat, FloatValue: lit}
	}
	return &ast.Lit{ExprBase: ast.ExprBase{Pos: pos}, Kind: ast.LitInteger, IntValue: lit}
}

func containsAny(s, chars string) bool {
	for _, c := range s {
		for _, want := range chars {
			if c == want {
				return true
			}
		}
	}
	return false
}

func (p *Parser) parseCharLiteral() ast.Expr {
	isByte := false
	if p.tok.Kind == token.Name {
		isByte = p.tok.Lexeme == "b"
		p.next()
	}
	lit := p.tok.Lexeme
	pos := p.tok.Pos
	p.expect(token.Char)
	var r rune
	if len(lit) > 0 {
		r = []rune(lit)[0]
	}
	return &ast.Lit{ExprBase: ast.ExprBase{Pos: pos}, Kind: ast.LitChar, CharValue: r, IsByte: isByte}
}

func (p *Parser) parseStringLiteral() ast.Expr {
	isRaw := false
	isByte := false
	if p.tok.Kind == token.Name {
		isRaw = p.tok.Lexeme == "r"
		isByte = p.tok.Lexeme == "b"
		p.next()
	}
	lit := p.tok.Lexeme
	pos := p.tok.Pos
	p.expect(token.String)
	for p.tok.Kind == token.String {
		lit += p.tok.Lexeme
		p.next()
	}
	return &ast.Lit{ExprBase: ast.ExprBase{Pos: pos}, Kind: ast.LitString, StrValue: lit, IsRaw: isRaw, IsByte: isByte}
}

func (p *Parser) parseIdent(isComptime bool) ast.Expr {
	pos := p.tok.Pos
	name := p.parseName()
	return &ast.Ident{ExprBase: ast.ExprBase{Pos: pos}, Name: name, IsComptime: isComptime}
}
