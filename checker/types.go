package checker

import (
	"github.com/rivet-lang/rivetc/sym"
	"github.com/rivet-lang/rivetc/token"
)

// symOf returns the TypeKind-bearing symbol t names, or nil if t does not
// name one (a Ref/Ptr/Optional/Result/Fn wrapper, or an unresolved
// placeholder). This is the Go stand-in for original_source's
// `Type.get_sym()`.
func (c *Checker) symOf(t sym.Type) *sym.Symbol {
	if t.Tag != sym.TagNamed {
		return nil
	}
	return c.ctx.Pool.At(t.Named)
}

// checkTypesNote reports a type mismatch at pos, with a trailing note giving
// the declaration context (original_source/src/checker.py wraps
// check_types in a try/except that adds exactly this kind of note at every
// call site; Go has no exception to catch, so the note is folded directly
// into the one error path instead).
func (c *Checker) checkTypesNote(got, expected sym.Type, pos token.Position, ctxKind, ctxName string) bool {
	if c.checkTypes(got, expected, pos) {
		return true
	}
	c.h.Notef("in %s `%s`", ctxKind, ctxName)
	return false
}

// checkTypes reports "expected type `%s`, found `%s`" at pos when got is not
// compatible with expected (spec.md §4.5), special-casing `none` so the
// message reads `?T` rather than the bare well-known `none` type's name.
func (c *Checker) checkTypes(got, expected sym.Type, pos token.Position) bool {
	if c.checkCompatibleTypes(got, expected) {
		return true
	}
	gotStr := c.typeString(got)
	if sym.Equal(got, c.ctx.WellKnown.None) && expected.Tag != sym.TagOptional {
		gotStr = "?" + c.typeString(expected)
	}
	c.h.Errorf(pos, "expected type `%s`, found `%s`", c.typeString(expected), gotStr)
	return false
}

// checkCompatibleTypes implements spec.md §4.5's eleven ordered rules.
func (c *Checker) checkCompatibleTypes(got, expected sym.Type) bool {
	// Rule 1: Ptr(T) accepts none.
	if expected.Tag == sym.TagPtr && sym.Equal(got, c.ctx.WellKnown.None) {
		return true
	}
	// Rule 2: Ref and non-Ref, Ptr and non-Ptr, are incompatible both ways.
	if (expected.Tag == sym.TagRef) != (got.Tag == sym.TagRef) {
		return false
	}
	if (expected.Tag == sym.TagPtr) != (got.Tag == sym.TagPtr) {
		return false
	}

	// Rule 3: Fn vs Fn, structural equality.
	if expected.Tag == sym.TagFn && got.Tag == sym.TagFn {
		return sym.Equal(expected, got)
	}

	// Rule 4: Ref(A) vs Ref(B).
	if expected.Tag == sym.TagRef && got.Tag == sym.TagRef {
		return sym.Equal(*expected.Elem, *got.Elem)
	}
	// Rule 5: Ptr(A) vs Ptr(B), or A == c_void (opaque pointer).
	if expected.Tag == sym.TagPtr && got.Tag == sym.TagPtr {
		if sym.Equal(*expected.Elem, c.ctx.WellKnown.CVoid) {
			return true
		}
		return sym.Equal(*expected.Elem, *got.Elem)
	}

	// Rule 6: Optional(A) vs Optional(B).
	if expected.Tag == sym.TagOptional && got.Tag == sym.TagOptional {
		return sym.Equal(*expected.Elem, *got.Elem)
	}
	// Rule 7: Optional(A) vs non-optional B.
	if expected.Tag == sym.TagOptional && got.Tag != sym.TagOptional {
		if sym.Equal(got, c.ctx.WellKnown.None) || sym.Equal(got, c.ctx.WellKnown.NoReturn) {
			return true
		}
		return sym.Equal(*expected.Elem, got)
	}

	expSym, gotSym := c.symOf(expected), c.symOf(got)
	if expSym != nil && gotSym != nil {
		// Rule 8: Array, equal element type and equal size expression.
		if expSym.TypeKind == sym.TypeKindArray && gotSym.TypeKind == sym.TypeKindArray {
			return sym.Equal(*expSym.Shape.Elem, *gotSym.Shape.Elem) &&
				expSym.Shape.ArraySizeKey == gotSym.Shape.ArraySizeKey
		}
		// Rule 9: Slice, equal element type.
		if expSym.TypeKind == sym.TypeKindSlice && gotSym.TypeKind == sym.TypeKindSlice {
			return sym.Equal(*expSym.Shape.Elem, *gotSym.Shape.Elem)
		}
		// Rule 10: Tuple, same arity, pairwise equal.
		if expSym.TypeKind == sym.TypeKindTuple && gotSym.TypeKind == sym.TypeKindTuple {
			if len(expSym.Shape.Elems) != len(gotSym.Shape.Elems) {
				return false
			}
			for i := range expSym.Shape.Elems {
				if !sym.Equal(expSym.Shape.Elems[i], gotSym.Shape.Elems[i]) {
					return false
				}
			}
			return true
		}
	}

	// Rule 11: otherwise, underlying named-symbol identity.
	return expected.Tag == sym.TagNamed && got.Tag == sym.TagNamed && expected.Named == got.Named
}

// typeString renders t for a diagnostic message. Unlike original_source's
// Type classes, sym.Type has no Stringer of its own (it is a plain
// structural value compared by [sym.Equal], not formatted) — names come
// from the symbol a Named type points to, recursively for wrapper shapes.
func (c *Checker) typeString(t sym.Type) string {
	switch t.Tag {
	case sym.TagRef:
		return "&" + c.typeString(*t.Elem)
	case sym.TagPtr:
		return "*" + c.typeString(*t.Elem)
	case sym.TagSlice:
		return "[" + c.typeString(*t.Elem) + "]"
	case sym.TagArray:
		return "[" + c.typeString(*t.Elem) + "; " + t.ArraySizeKey + "]"
	case sym.TagOptional:
		return "?" + c.typeString(*t.Elem)
	case sym.TagResult:
		return "!" + c.typeString(*t.Elem)
	case sym.TagTuple:
		s := "("
		for i, e := range t.Elems {
			if i > 0 {
				s += ", "
			}
			s += c.typeString(e)
		}
		return s + ")"
	case sym.TagFn:
		s := "fn("
		for i, e := range t.Elems {
			if i > 0 {
				s += ", "
			}
			s += c.typeString(e)
		}
		return s + ") " + c.typeString(*t.FnRet)
	case sym.TagNamed:
		if sm := c.ctx.Pool.At(t.Named); sm != nil {
			return sm.Name
		}
		return "<unknown>"
	default:
		return "<unresolved>"
	}
}
