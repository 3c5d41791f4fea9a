package resolver

import (
	"fmt"

	"github.com/rivet-lang/rivetc/ast"
	"github.com/rivet-lang/rivetc/sym"
	"github.com/rivet-lang/rivetc/token"
)

// resolveType rewrites t's syntactic shape into its canonical interned
// sym.Type, memoizing the result on t.Resolved so re-resolving an
// already-resolved node (e.g. a type node shared by a TypeDecl and its every
// later reference) is a no-op (spec.md §8's round-trip invariant).
func (r *Resolver) resolveType(t *ast.TypeNode) sym.Type {
	if t == nil {
		return sym.Type{}
	}
	if !t.Resolved.IsZero() {
		return t.Resolved
	}

	var result sym.Type
	switch t.Kind {
	case ast.TypeNodeRef:
		result = sym.Ref(r.resolveType(t.Elem))

	case ast.TypeNodePtr:
		result = sym.Ptr(r.resolveType(t.Elem))

	case ast.TypeNodeSlice:
		result = r.ctx.Universe.AddOrGetSlice(r.resolveType(t.Elem))

	case ast.TypeNodeArray:
		elem := r.resolveType(t.Elem)
		if t.ArraySize != nil {
			r.resolveExpr(t.ArraySize)
		}
		result = r.ctx.Universe.AddOrGetArray(elem, arraySizeKey(t.ArraySize))

	case ast.TypeNodeTuple:
		elems := make([]sym.Type, len(t.Elems))
		for i := range t.Elems {
			elems[i] = r.resolveType(&t.Elems[i])
		}
		result = r.ctx.Universe.AddOrGetTuple(elems)

	case ast.TypeNodeOptional:
		elem := r.resolveType(t.Elem)
		if elem.Tag == sym.TagPtr {
			r.h.Errorf(t.Pos, "pointers cannot be optional")
		}
		result = sym.Optional(elem)

	case ast.TypeNodeResult:
		result = sym.Result(r.resolveType(t.Elem))

	case ast.TypeNodeSelfTy:
		if !r.hasSelfSym {
			r.h.Errorf(t.Pos, "cannot resolve type for `Self` here")
			result = sym.Unknown(t)
		} else {
			result = sym.Named(r.selfSym)
		}

	case ast.TypeNodePkg:
		// Never actually constructed: `pkg::X` parses to TypeNodeNamed with
		// Segments[0] == "pkg" (see parser/type.go); kept only so this
		// switch stays exhaustive over TypeNodeKind.
		result = sym.Unknown(t)

	case ast.TypeNodeNamed:
		result = r.resolveNamedType(t)

	case ast.TypeNodePrimitive:
		result = r.primitiveType(t.Primitive)

	default:
		r.h.Errorf(t.Pos, "internal: resolver has no case for type node kind %d", t.Kind)
		result = sym.Unknown(t)
	}

	t.Resolved = result
	return result
}

// resolveNamedType resolves a bare or `::`-qualified name to the symbol it
// names (spec.md §4.3): the first segment walks curSymScope's full
// containing-scope chain (`pkg` selects the package root instead), every
// further segment is a findMember step against the previous segment's own
// scope.
func (r *Resolver) resolveNamedType(t *ast.TypeNode) sym.Type {
	segs := t.Segments
	if len(segs) == 0 {
		r.h.Errorf(t.Pos, "internal: named type node has no segments")
		return sym.Unknown(t)
	}

	var curID sym.ID
	i := 1
	if segs[0] == "pkg" {
		if len(segs) < 2 {
			r.h.Errorf(t.Pos, "expected a type name after `pkg::`")
			return sym.Unknown(t)
		}
		curID = r.ctx.PkgSym
	} else {
		id, ok := r.curSymScope.LookupChain(segs[0])
		if !ok {
			r.h.Errorf(t.Pos, "cannot find type `%s` in this scope", segs[0])
			return sym.Unknown(t)
		}
		curID = id
	}

	curSymPtr := r.ctx.Pool.At(curID)
	for ; i < len(segs); i++ {
		id, ok := r.findMember(curSymPtr, segs[i], t.Pos)
		if !ok {
			return sym.Unknown(t)
		}
		curID = id
		curSymPtr = r.ctx.Pool.At(curID)
	}

	if curSymPtr == nil || curSymPtr.Kind != sym.KindType {
		kind, name := sym.KindInvalid, segs[len(segs)-1]
		if curSymPtr != nil {
			kind, name = curSymPtr.Kind, curSymPtr.Name
		}
		r.h.Errorf(t.Pos, "expected a type, found %s `%s`", kind, name)
		return sym.Unknown(t)
	}
	return r.finishNamedType(curID, curSymPtr, t.Pos)
}

// finishNamedType transparently unaliases s if it is a TypeKindAlias
// (resolving its underlying TypeNode on demand if necessary) and enforces
// the "errtype only inside raise or is/!is" restriction (spec.md §4.3).
func (r *Resolver) finishNamedType(id sym.ID, s *sym.Symbol, pos token.Position) sym.Type {
	r.disallowErrTypeUse(s.TypeKind, pos)

	if s.TypeKind != sym.TypeKindAlias {
		return sym.Named(id)
	}
	target := s.Alias
	if target.IsZero() {
		if decl, ok := r.aliasDecls[id]; ok {
			target = r.resolveAliasDecl(decl)
		}
	}
	if target.IsZero() {
		return sym.Named(id)
	}
	return target
}

// disallowErrTypeUse rejects a bare `errtype` type reference anywhere except
// inside an `is`/`!is` comparison or a type-match pattern (spec.md §4.3).
func (r *Resolver) disallowErrTypeUse(kind sym.TypeKind, pos token.Position) {
	if !r.insideIsCmp && kind == sym.TypeKindErrType {
		r.h.Errorf(pos, "`errtype` can only be used in a `raise` or an `is`/`!is` comparison")
	}
}

func (r *Resolver) primitiveType(k token.Kind) sym.Type {
	w := r.ctx.WellKnown
	switch k {
	case token.KeyVoid:
		return w.Void
	case token.KeyNone:
		return w.None
	case token.KeyCVoid:
		return w.CVoid
	case token.KeyBool:
		return w.Bool
	case token.KeyRune:
		return w.Rune
	case token.KeyStr:
		return w.Str
	case token.KeyPtr:
		return w.Ptr
	case token.KeyU8:
		return w.U8
	case token.KeyU16:
		return w.U16
	case token.KeyU32:
		return w.U32
	case token.KeyU64:
		return w.U64
	case token.KeyUsize:
		return w.Usize
	case token.KeyI8:
		return w.I8
	case token.KeyI16:
		return w.I16
	case token.KeyI32:
		return w.I32
	case token.KeyI64:
		return w.I64
	case token.KeyIsize:
		return w.Isize
	case token.KeyF32:
		return w.F32
	case token.KeyF64:
		return w.F64
	default:
		return sym.Unknown(k)
	}
}

// arraySizeKey canonicalizes an array type's size expression for interning
// (spec.md §3.5, §8 invariant 4). Only integer literals get a value-based
// key; any other expression (a const reference, arithmetic) would need the
// comptime evaluator this core's scope excludes (spec.md's Design Notes), so
// it is keyed on its own source position instead — every distinct
// occurrence gets its own array symbol rather than being falsely merged
// with an unrelated occurrence of the same text.
func arraySizeKey(e ast.Expr) string {
	if e == nil {
		return ""
	}
	if lit, ok := e.(*ast.Lit); ok && lit.Kind == ast.LitInteger {
		return lit.IntValue
	}
	pos := e.Position()
	return fmt.Sprintf("@%s:%d:%d", pos.File, pos.Line, pos.Col)
}
