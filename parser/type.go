package parser

import (
	"github.com/rivet-lang/rivetc/ast"
	"github.com/rivet-lang/rivetc/token"
)

// primitiveKeywordKind maps a primitive-type keyword to the TypeNodePrimitive
// it produces (spec.md §4.1 Types). Unlike the original this core is
// distilled from, primitive keywords are NOT special-cased as bare Ident
// names: the lexer classifies them as their own token.Kind up front (see
// package token), so the parser only needs a membership test here.
var primitiveKeywordKind = map[token.Kind]bool{
	token.KeyU8: true, token.KeyU16: true, token.KeyU32: true, token.KeyU64: true,
	token.KeyI8: true, token.KeyI16: true, token.KeyI32: true, token.KeyI64: true,
	token.KeyUsize: true, token.KeyIsize: true,
	token.KeyF32: true, token.KeyF64: true,
	token.KeyBool: true, token.KeyRune: true, token.KeyStr: true,
	token.KeyPtr: true, token.KeyVoid: true, token.KeyCVoid: true,
}

// parseType parses one syntactic type reference (spec.md §4.1 Types).
func (p *Parser) parseType() ast.TypeNode {
	pos := p.tok.Pos
	switch {
	case p.accept(token.Amp):
		elem := p.parseType()
		if p.insideExtern {
			p.h.Errorf(pos, "cannot use references inside `extern` blocks")
			p.h.Helpf("use pointers instead")
		} else if elem.Kind == ast.TypeNodeRef {
			p.h.Errorf(pos, "multi-level references are not allowed")
		} else if elem.Kind == ast.TypeNodePtr {
			p.h.Errorf(pos, "cannot use references with pointers")
		}
		return ast.TypeNode{Pos: pos, Kind: ast.TypeNodeRef, Elem: &elem}

	case p.accept(token.Mult):
		elem := p.parseType()
		if elem.Kind == ast.TypeNodeRef {
			p.h.Errorf(pos, "cannot use pointers with references")
		}
		return ast.TypeNode{Pos: pos, Kind: ast.TypeNodePtr, Elem: &elem}

	case p.accept(token.LBracket):
		elem := p.parseType()
		if p.accept(token.Semicolon) {
			size := p.parseExpr()
			p.expect(token.RBracket)
			return ast.TypeNode{Pos: pos, Kind: ast.TypeNodeArray, Elem: &elem, ArraySize: size}
		}
		p.expect(token.RBracket)
		return ast.TypeNode{Pos: pos, Kind: ast.TypeNodeSlice, Elem: &elem}

	case p.accept(token.LParen):
		var elems []ast.TypeNode
		for {
			elems = append(elems, p.parseType())
			if !p.accept(token.Comma) {
				break
			}
		}
		if len(elems) > 8 {
			p.h.Errorf(pos, "tuples can have a maximum of 8 types")
			p.h.Helpf("you can use a struct instead")
		}
		p.expect(token.RParen)
		return ast.TypeNode{Pos: pos, Kind: ast.TypeNodeTuple, Elems: elems}

	case p.accept(token.Question):
		elem := p.parseType()
		if elem.Kind == ast.TypeNodePtr {
			p.h.Errorf(pos, "pointers cannot be optional")
			p.h.NoteAt(pos, "by default pointers can contain the value `none`")
		} else if elem.Kind == ast.TypeNodeOptional {
			p.h.Errorf(pos, "optional multi-level types are not allowed")
		}
		return ast.TypeNode{Pos: pos, Kind: ast.TypeNodeOptional, Elem: &elem}

	case p.accept(token.KeySelfTy):
		return ast.TypeNode{Pos: pos, Kind: ast.TypeNodeSelfTy}

	case p.tok.Kind == token.KeyPkg:
		if p.peek(1).Kind == token.DoubleColon {
			p.next()
			return p.parseQualifiedType(pos, []string{"pkg"})
		}
		p.h.Errorf(pos, "expected type, found keyword `pkg`")
		p.next()
		return ast.TypeNode{Pos: pos, Kind: ast.TypeNodeInvalid}

	case p.tok.Kind == token.Name:
		if p.peek(1).Kind == token.DoubleColon {
			name := p.parseName()
			return p.parseQualifiedType(pos, []string{name})
		}
		name := p.parseName()
		return ast.TypeNode{Pos: pos, Kind: ast.TypeNodeNamed, Segments: []string{name}}

	case primitiveKeywordKind[p.tok.Kind]:
		if p.tok.Kind == token.KeyCVoid && !p.insideExtern {
			p.h.Errorf(pos, "`c_void` can only be used inside `extern` declarations")
		}
		kw := p.tok.Kind
		p.next()
		return ast.TypeNode{Pos: pos, Kind: ast.TypeNodePrimitive, Primitive: kw}

	default:
		p.h.Errorf(pos, "expected type, found %s", p.tok)
		p.next()
		return ast.TypeNode{Pos: pos, Kind: ast.TypeNodeInvalid}
	}
}

func (p *Parser) parseQualifiedType(pos token.Position, segments []string) ast.TypeNode {
	for p.accept(token.DoubleColon) {
		segments = append(segments, p.parseName())
	}
	return ast.TypeNode{Pos: pos, Kind: ast.TypeNodeNamed, Segments: segments}
}
