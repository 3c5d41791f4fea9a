package parser

import (
	"strings"

	"github.com/rivet-lang/rivetc/ast"
	"github.com/rivet-lang/rivetc/sym"
	"github.com/rivet-lang/rivetc/token"
)

// parseDeclPrefix parses the common prefix shared by every declaration
// (spec.md §3.4): an optional doc-comment block, an optional attribute
// block, an optional visibility qualifier, and an optional `unsafe`.
func (p *Parser) parseDeclPrefix() (ast.Attributes, sym.Visibility, bool) {
	attrs := p.parseAttrs()
	vis := p.parseVis()
	isUnsafe := p.accept(token.KeyUnsafe)
	return attrs, vis, isUnsafe
}

func (p *Parser) parseDocComment() string {
	var lines []string
	for p.tok.Kind == token.DocComment {
		lines = append(lines, p.tok.Lexeme)
		p.next()
	}
	return strings.Join(lines, "\n")
}

// parseAttrs parses the doc-comment block followed by zero or more
// `#[name; name(args); if(cond)]` attribute blocks.
func (p *Parser) parseAttrs() ast.Attributes {
	doc := p.parseDocComment()
	attrs := ast.Attributes{DocComment: doc}
	for p.accept(token.Hash) {
		p.expect(token.LBracket)
		for {
			pos := p.tok.Pos
			if p.accept(token.KeyIf) {
				p.expect(token.LParen)
				cond := p.parseExpr()
				p.expect(token.RParen)
				attrs.Items = append(attrs.Items, ast.Attribute{Name: "if", Args: []string{exprSummary(cond)}, Pos: pos})
			} else {
				attrs.Items = append(attrs.Items, ast.Attribute{Name: p.parseName(), Pos: pos})
			}
			if !p.accept(token.Semicolon) {
				break
			}
		}
		p.expect(token.RBracket)
	}
	return attrs
}

// exprSummary renders a condition expression's identifier name for
// attribute-argument bookkeeping; `if(cond)` conditions are ordinary
// identifiers in practice (feature flags), and the checker re-resolves them
// against the real Expr stored by the caller rather than this string.
func exprSummary(e ast.Expr) string {
	if id, ok := e.(*ast.Ident); ok {
		return id.Name
	}
	return ""
}

func (p *Parser) parseVis() sym.Visibility {
	if p.accept(token.KeyPub) {
		if p.accept(token.LParen) {
			p.expect(token.KeyPkg)
			p.expect(token.RParen)
			return sym.PublicInPkg
		}
		return sym.Public
	}
	return sym.Private
}

// parseDecl parses one declaration at the current nesting level (spec.md
// §3.4). The doc-comment/attribute/visibility/unsafe prefix is always
// consumed first; which declaration head follows determines which of those
// modifiers are legal.
func (p *Parser) parseDecl() ast.Decl {
	attrs, vis, isUnsafe := p.parseDeclPrefix()
	pos := p.tok.Pos

	switch {
	case p.accept(token.KeyExtern):
		return p.parseExternDecl(attrs, vis, isUnsafe, pos)
	case p.accept(token.KeyConst):
		if isUnsafe {
			p.h.Errorf(pos, "constants cannot be declared unsafe")
		}
		name := p.parseName()
		p.expect(token.Colon)
		typ := p.parseType()
		p.expect(token.Assign)
		val := p.parseExpr()
		p.expect(token.Semicolon)
		d := &ast.ConstDecl{Name: name, HasType: true, Type: typ, Value: val}
		d.Pos, d.Vis = pos, vis
		*d.Attrs() = attrs
		return d
	case p.accept(token.KeyStatic):
		if isUnsafe {
			p.h.Errorf(pos, "static values cannot be declared unsafe")
		}
		isMut := p.accept(token.KeyMut)
		name := p.parseName()
		p.expect(token.Colon)
		typ := p.parseType()
		p.expect(token.Assign)
		val := p.parseExpr()
		p.expect(token.Semicolon)
		d := &ast.StaticDecl{IsMut: isMut, Name: name, Type: typ, Value: val}
		d.Pos, d.Vis = pos, vis
		*d.Attrs() = attrs
		return d
	case p.accept(token.KeyMod):
		if isUnsafe {
			p.h.Errorf(pos, "modules cannot be declared unsafe")
		}
		name := p.parseName()
		oldPkgLevel := p.isPkgLevel
		p.isPkgLevel = false
		p.expect(token.LBrace)
		var decls []ast.Decl
		for !p.accept(token.RBrace) {
			decls = append(decls, p.parseDecl())
		}
		p.isPkgLevel = oldPkgLevel
		d := &ast.ModDecl{Name: name, Decls: decls}
		d.Pos, d.Vis = pos, vis
		*d.Attrs() = attrs
		return d
	case p.accept(token.KeyType):
		if isUnsafe {
			p.h.Errorf(pos, "type aliases cannot be declared unsafe")
		}
		name := p.parseName()
		p.expect(token.Assign)
		base := p.parseType()
		p.expect(token.Semicolon)
		d := &ast.TypeDecl{Name: name, Base: base}
		d.Pos, d.Vis = pos, vis
		*d.Attrs() = attrs
		return d
	case p.accept(token.KeyErrType):
		if isUnsafe {
			p.h.Errorf(pos, "error types cannot be declared unsafe")
		}
		name := p.parseName()
		var decls []ast.Decl
		if p.accept(token.LBrace) {
			for !p.accept(token.RBrace) {
				decls = append(decls, p.parseDecl())
			}
		} else {
			p.expect(token.Semicolon)
		}
		d := &ast.ErrTypeDecl{Name: name, Decls: decls}
		d.Pos, d.Vis = pos, vis
		*d.Attrs() = attrs
		return d
	case p.accept(token.KeyTrait):
		if isUnsafe {
			p.h.Errorf(pos, "traits cannot be declared unsafe")
		}
		return p.parseTraitDecl(attrs, vis, pos)
	case p.accept(token.KeyUnion):
		if isUnsafe {
			p.h.Errorf(pos, "unions cannot be declared unsafe")
		}
		return p.parseUnionDecl(attrs, vis, pos)
	case p.accept(token.KeyStruct):
		if isUnsafe {
			p.h.Errorf(pos, "structs cannot be declared unsafe")
		}
		return p.parseStructDecl(attrs, vis, pos)
	case p.insideStructDecl && (p.tok.Kind == token.KeyMut || p.tok.Kind == token.Name):
		return p.parseStructField(attrs, vis, pos)
	case p.accept(token.KeyEnum):
		if isUnsafe {
			p.h.Errorf(pos, "enums cannot be declared unsafe")
		}
		return p.parseEnumDecl(attrs, vis, pos)
	case p.accept(token.KeyExtend):
		if isUnsafe {
			p.h.Errorf(pos, "`extend`s cannot be unsafe")
		}
		return p.parseExtendDecl(attrs, pos)
	case p.accept(token.KeyFn):
		return p.parseFnDecl(attrs, vis, isUnsafe)
	case p.accept(token.KeyTest):
		desc := p.tok.Lexeme
		p.expect(token.String)
		body := p.parseBlockBody(pos)
		d := &ast.TestDecl{Description: desc, Body: body}
		d.Pos = pos
		*d.Attrs() = attrs
		return d
	default:
		p.h.Errorf(pos, "expected declaration, found %s", p.tok)
		if p.tok.Kind != token.EOF {
			p.next()
		}
		d := &ast.EmptyDecl{}
		d.Pos = pos
		return d
	}
}

func (p *Parser) parseExternDecl(attrs ast.Attributes, vis sym.Visibility, isUnsafe bool, pos token.Position) ast.Decl {
	if p.insideExtern {
		p.h.Errorf(pos, "`extern` declarations cannot be nested")
	} else if vis != sym.Private {
		p.h.Errorf(pos, "`extern` declarations cannot be declared public")
	} else if isUnsafe {
		p.h.Errorf(pos, "`extern` declarations cannot be declared unsafe")
	} else if !p.isPkgLevel {
		p.h.Errorf(pos, "extern packages or functions can only be declared at the package level")
	}
	p.insideExtern = true
	defer func() { p.insideExtern = false }()

	if p.accept(token.KeyPkg) {
		name := p.parseName()
		p.expect(token.Semicolon)
		d := &ast.ExternPkgDecl{Name: name}
		d.Pos = pos
		*d.Attrs() = attrs
		return d
	}

	abiTok := p.tok
	p.expect(token.String)
	abi := abiTok.Lexeme

	var protos []ast.ExternFnProto
	if p.accept(token.LBrace) {
		for !p.accept(token.RBrace) {
			p.expect(token.KeyFn)
			protos = append(protos, p.parseExternProto())
			p.expect(token.Semicolon)
		}
	} else {
		p.expect(token.KeyFn)
		protos = append(protos, p.parseExternProto())
		p.expect(token.Semicolon)
	}
	d := &ast.ExternDecl{ABI: abi, Protos: protos}
	d.Pos = pos
	*d.Attrs() = attrs
	return d
}

func (p *Parser) parseExternProto() ast.ExternFnProto {
	pos := p.tok.Pos
	name := p.parseName()
	p.expect(token.LParen)
	var args []ast.FnArg
	isVararg := false
	for p.tok.Kind != token.RParen {
		if p.accept(token.DotDot) {
			p.expect(token.DotDot)
			isVararg = true
			break
		}
		argPos := p.tok.Pos
		argName := p.parseName()
		p.expect(token.Colon)
		argTyp := p.parseType()
		args = append(args, ast.FnArg{Name: argName, Type: argTyp, Pos: argPos})
		if !p.accept(token.Comma) {
			break
		}
	}
	p.expect(token.RParen)
	hasRet := p.tok.Kind != token.Semicolon && p.tok.Kind != token.LBrace
	var ret ast.TypeNode
	if hasRet {
		ret = p.parseType()
	}
	return ast.ExternFnProto{Pos: pos, Name: name, Args: args, Ret: ret, HasRet: hasRet, IsVararg: isVararg}
}

func (p *Parser) parseTraitDecl(attrs ast.Attributes, vis sym.Visibility, pos token.Position) ast.Decl {
	name := p.parseName()
	oldInsideTrait := p.insideTrait
	p.insideTrait = true
	p.expect(token.LBrace)
	var decls []ast.Decl
	for !p.accept(token.RBrace) {
		memberAttrs := p.parseAttrs()
		if len(memberAttrs.Items) > 0 {
			p.h.Errorf(pos, "attributes should be applied to a function or method")
		}
		if p.accept(token.KeyPub) {
			p.h.Errorf(p.prev.Pos, "unnecessary visibility qualifier")
		}
		memberUnsafe := p.accept(token.KeyUnsafe)
		p.expect(token.KeyFn)
		fn := p.parseFnDecl(memberAttrs, sym.Public, memberUnsafe)
		decls = append(decls, fn)
	}
	p.insideTrait = oldInsideTrait
	d := &ast.TraitDecl{Name: name, Decls: decls}
	d.Pos, d.Vis = pos, vis
	*d.Attrs() = attrs
	return d
}

func (p *Parser) parseUnionDecl(attrs ast.Attributes, vis sym.Visibility, pos token.Position) ast.Decl {
	name := p.parseName()
	p.expect(token.LBrace)
	var variants []ast.TypeNode
	for {
		variants = append(variants, p.parseType())
		if !p.accept(token.Comma) {
			break
		}
	}
	var decls []ast.Decl
	if p.accept(token.Semicolon) {
		for p.tok.Kind != token.RBrace {
			decls = append(decls, p.parseDecl())
		}
	}
	p.expect(token.RBrace)
	d := &ast.UnionDecl{Name: name, Variants: variants, Decls: decls}
	d.Pos, d.Vis = pos, vis
	*d.Attrs() = attrs
	return d
}

func (p *Parser) parseStructDecl(attrs ast.Attributes, vis sym.Visibility, pos token.Position) ast.Decl {
	oldInsideStruct := p.insideStructDecl
	p.insideStructDecl = true
	name := p.parseName()
	p.expect(token.LBrace)
	var decls []ast.Decl
	for p.tok.Kind != token.RBrace {
		if p.accept(token.BitNot) {
			dp := p.prev.Pos
			p.expect(token.KeySelf)
			body := p.parseBlockBody(dp)
			dd := &ast.DestructorDecl{Body: body}
			dd.Pos = dp
			decls = append(decls, dd)
		} else {
			decls = append(decls, p.parseDecl())
		}
	}
	p.expect(token.RBrace)
	p.insideStructDecl = oldInsideStruct
	d := &ast.StructDecl{Name: name, Decls: decls}
	d.Pos, d.Vis = pos, vis
	*d.Attrs() = attrs
	return d
}

func (p *Parser) parseStructField(attrs ast.Attributes, vis sym.Visibility, pos token.Position) ast.Decl {
	isMut := p.accept(token.KeyMut)
	name := p.parseName()
	p.expect(token.Colon)
	typ := p.parseType()
	hasDefault := p.accept(token.Assign)
	var def ast.Expr
	if hasDefault {
		def = p.parseExpr()
	}
	p.expect(token.Semicolon)
	d := &ast.StructFieldDecl{Name: name, Type: typ, IsMut: isMut, HasDefault: hasDefault, Default: def}
	d.Pos, d.Vis = pos, vis
	*d.Attrs() = attrs
	return d
}

func (p *Parser) parseEnumDecl(attrs ast.Attributes, vis sym.Visibility, pos token.Position) ast.Decl {
	name := p.parseName()
	p.expect(token.LBrace)
	var variants []string
	for {
		variants = append(variants, p.parseName())
		if !p.accept(token.Comma) {
			break
		}
	}
	var decls []ast.Decl
	if p.accept(token.Semicolon) {
		for p.tok.Kind != token.RBrace {
			decls = append(decls, p.parseDecl())
		}
	}
	p.expect(token.RBrace)
	d := &ast.EnumDecl{Name: name, Variants: variants, Decls: decls}
	d.Pos, d.Vis = pos, vis
	*d.Attrs() = attrs
	return d
}

func (p *Parser) parseExtendDecl(attrs ast.Attributes, pos token.Position) ast.Decl {
	target := p.parseType()
	p.expect(token.LBrace)
	var decls []ast.Decl
	for !p.accept(token.RBrace) {
		decls = append(decls, p.parseDecl())
	}
	d := &ast.ExtendDecl{Target: target, Decls: decls}
	d.Pos = pos
	*d.Attrs() = attrs
	return d
}

// parseFnDecl parses a function/method declaration (spec.md §3.4), grounded
// in the receiver-sniffing rule: `self`, `&self`, or `&mut self` as the
// first parameter marks this Fn as a method.
func (p *Parser) parseFnDecl(attrs ast.Attributes, vis sym.Visibility, isUnsafe bool) *ast.FnDecl {
	pos := p.tok.Pos
	name := p.parseName()

	var args []ast.FnArg
	isMethod, selfIsRef, selfIsMut := false, false, false
	hasNamedArgs := false

	p.expect(token.LParen)
	if p.tok.Kind != token.RParen {
		if p.isReceiverStart() {
			isMethod = true
			selfIsRef = p.accept(token.Amp)
			selfIsMut = p.accept(token.KeyMut)
			p.expect(token.KeySelf)
			if p.tok.Kind != token.RParen {
				p.expect(token.Comma)
			}
		}
		for p.tok.Kind != token.RParen {
			argPos := p.tok.Pos
			p.accept(token.KeyMut)
			argName := p.parseName()
			p.expect(token.Colon)
			argTyp := p.parseType()
			hasDefault := p.accept(token.Assign)
			var def ast.Expr
			if hasDefault {
				def = p.parseExpr()
				hasNamedArgs = true
			}
			args = append(args, ast.FnArg{Name: argName, Type: argTyp, HasDefault: hasDefault, Default: def, Pos: argPos})
			if !p.accept(token.Comma) {
				break
			}
		}
	}
	p.expect(token.RParen)

	isResult := p.accept(token.Bang)
	retPos := p.tok.Pos
	inner := p.parseType()
	retTyp := inner
	if isResult {
		retTyp = ast.TypeNode{Pos: retPos, Kind: ast.TypeNodeResult, Elem: &inner}
	}
	fn := &ast.FnDecl{
		IsUnsafe: isUnsafe, Name: name, Args: args,
		HasRet: true, Ret: retTyp, IsMethod: isMethod,
		SelfIsRef: selfIsRef, SelfIsMut: selfIsMut, HasNamedArgs: hasNamedArgs,
	}
	fn.Pos, fn.Vis = pos, vis
	*fn.Attrs() = attrs

	if p.tok.Kind == token.Semicolon && p.insideTrait {
		fn.HasBody = false
		p.next()
		return fn
	}
	if p.insideExtern {
		if p.tok.Kind == token.LBrace {
			p.h.Errorf(pos, "extern functions cannot have a body")
		}
		fn.HasBody = false
		return fn
	}
	fn.Body = p.parseBlockBody(pos)
	fn.HasBody = true
	return fn
}

func (p *Parser) isReceiverStart() bool {
	if p.tok.Kind == token.KeySelf {
		return true
	}
	if p.tok.Kind == token.Amp && p.peek(1).Kind == token.KeySelf {
		return true
	}
	if p.tok.Kind == token.Amp && p.peek(1).Kind == token.KeyMut && p.peek(2).Kind == token.KeySelf {
		return true
	}
	return false
}

// parseBlockBody parses `{ stmts... }` into a *ast.Block, splitting a
// trailing unterminated ExprStmt into the tail value (spec.md §4.1).
func (p *Parser) parseBlockBody(pos token.Position) *ast.Block {
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
