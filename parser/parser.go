// Package parser implements the recursive-descent parser described in
// spec.md §4.1: given a [token.Stream] and a [sema.CompilerContext], it
// produces one [ast.SourceFile] per input, with every diagnostic routed
// through a [report.Handler] instead of stopping at the first error.
package parser

import (
	"github.com/rivet-lang/rivetc/ast"
	"github.com/rivet-lang/rivetc/report"
	"github.com/rivet-lang/rivetc/sema"
	"github.com/rivet-lang/rivetc/token"
)

// Parser holds the one-token (plus arbitrary-k peek) lookahead state for a
// single file. A Parser is not reused across files.
type Parser struct {
	ctx *sema.CompilerContext
	h   *report.Handler

	toks token.Stream
	tok  token.Token // current token
	prev token.Token // previously consumed token

	file string

	insideExtern     bool
	insideTrait      bool
	insideStructDecl bool
	insideBlock      bool
	isPkgLevel       bool
}

// New creates a parser over toks, reporting diagnostics to h.
func New(ctx *sema.CompilerContext, h *report.Handler, file string, toks token.Stream) *Parser {
	p := &Parser{ctx: ctx, h: h, toks: toks, file: file, isPkgLevel: true}
	p.tok = p.toks.Next()
	return p
}

// ParseFile parses one complete source file's declarations.
func ParseFile(ctx *sema.CompilerContext, h *report.Handler, file string, toks token.Stream) *ast.SourceFile {
	p := New(ctx, h, file, toks)
	return p.parseSourceFile()
}

func (p *Parser) parseSourceFile() *ast.SourceFile {
	var decls []ast.Decl
	for p.tok.Kind != token.EOF {
		decls = append(decls, p.parseDecl())
	}
	return &ast.SourceFile{Path: p.file, Decls: decls}
}

// ---- token plumbing -----------------------------------------------------

func (p *Parser) next() {
	p.prev = p.tok
	p.tok = p.toks.Next()
}

func (p *Parser) peek(k int) token.Token { return p.toks.Peek(k) }

func (p *Parser) accept(k token.Kind) bool {
	if p.tok.Kind == k {
		p.next()
		return true
	}
	return false
}

func (p *Parser) expect(k token.Kind) token.Token {
	if p.tok.Kind != k {
		p.h.Errorf(p.tok.Pos, "expected %s, found %s", k, p.tok)
		if p.tok.Kind == token.EOF {
			return p.tok
		}
		p.next()
		return p.tok
	}
	t := p.tok
	p.next()
	return t
}

func (p *Parser) parseName() string {
	if p.tok.Kind != token.Name {
		p.h.Errorf(p.tok.Pos, "expected identifier, found %s", p.tok)
		name := p.tok.Lexeme
		if p.tok.Kind != token.EOF {
			p.next()
		}
		return name
	}
	name := p.tok.Lexeme
	p.next()
	return name
}

// emptyExpr stands in for a missing expression after a reported parse
// error, so callers can keep building a well-typed tree instead of
// threading nil through every Expr field.
func (p *Parser) emptyExpr() ast.Expr {
	return &ast.Lit{ExprBase: ast.ExprBase{Pos: p.tok.Pos}, Kind: ast.LitVoid}
}
