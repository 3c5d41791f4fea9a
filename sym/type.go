package sym

// Tag is the closed variant over semantic types from spec.md §3.5.
type Tag int

const (
	TagInvalid Tag = iota
	TagRef
	TagPtr
	TagArray
	TagSlice
	TagTuple
	TagOptional
	TagResult
	TagFn
	TagNamed
	TagUnknown
)

func (t Tag) String() string {
	switch t {
	case TagRef:
		return "ref"
	case TagPtr:
		return "ptr"
	case TagArray:
		return "array"
	case TagSlice:
		return "slice"
	case TagTuple:
		return "tuple"
	case TagOptional:
		return "optional"
	case TagResult:
		return "result"
	case TagFn:
		return "fn"
	case TagNamed:
		return "named"
	case TagUnknown:
		return "unknown"
	default:
		return "<invalid type>"
	}
}

// Type is the closed sum from spec.md §3.5. Only the fields relevant to Tag
// are meaningful.
//
// Type is a plain comparable-by-value-shape struct, not an interface: the
// parser, resolver and checker all build and compare Types by value, and
// the handful of variants (Ref/Ptr/Array/Slice/Tuple/Optional/Result/Fn/
// Named/Unknown) are exhaustively switched on wherever behavior depends on
// shape, per the Design Notes' guidance to prefer tagged-variant matching
// over dynamic dispatch.
type Type struct {
	Tag Tag

	// Ref, Ptr, Array, Slice, Optional, Result share a single child type.
	Elem *Type

	// Array additionally carries its (unevaluated) size expression. The
	// comptime evaluator that would reduce this to a constant is out of
	// this core's scope (spec.md's Design Notes); the checker only needs
	// structural equality of the size expression for interning and for
	// rule 8 of check_compatible_types, so this is carried as an opaque
	// key rather than an ast.Expr to avoid a package cycle between sym and
	// ast. Callers that need the real expression for diagnostics look it
	// up in the ArraySize of the originating ast.TypeNode.
	ArraySizeKey string

	// Tuple and Fn-args share a slice of children.
	Elems []Type

	// Fn.
	FnRet *Type

	// Named points at the symbol this type refers to: a user struct,
	// union, enum, trait, alias, errtype, or an interned array/slice/tuple
	// shape symbol (TypeKindArray/Slice/Tuple).
	Named ID

	// Unknown holds whatever the resolver attached to a type it could not
	// resolve (the originating *ast.TypeNode or *ast.TypeDecl, or the
	// primitive's token.Kind). It is opaque to this package for the same
	// reason ArraySizeKey is: avoiding an ast<->sym import cycle. Nothing
	// reads the value back; only the TagUnknown tag is inspected.
	Unknown any
}

// Ref returns &T.
func Ref(elem Type) Type { return Type{Tag: TagRef, Elem: &elem} }

// Ptr returns *T.
func Ptr(elem Type) Type { return Type{Tag: TagPtr, Elem: &elem} }

// Slice returns [T].
func Slice(elem Type) Type { return Type{Tag: TagSlice, Elem: &elem} }

// Array returns [T; sizeKey].
func Array(elem Type, sizeKey string) Type {
	return Type{Tag: TagArray, Elem: &elem, ArraySizeKey: sizeKey}
}

// Tuple returns (T0, T1, ...).
func Tuple(elems []Type) Type { return Type{Tag: TagTuple, Elems: elems} }

// Optional returns ?T.
func Optional(elem Type) Type { return Type{Tag: TagOptional, Elem: &elem} }

// Result returns !T.
func Result(elem Type) Type { return Type{Tag: TagResult, Elem: &elem} }

// Fn returns a function type.
func Fn(args []Type, ret Type) Type { return Type{Tag: TagFn, Elems: args, FnRet: &ret} }

// Named returns a reference to a user or interned-shape symbol.
func Named(id ID) Type { return Type{Tag: TagNamed, Named: id} }

// Unknown returns a placeholder type wrapping an unresolved syntactic type
// expression, per spec.md §3.5's "After resolution, no Unknown(_) remains
// in a well-formed program" invariant.
func Unknown(expr any) Type { return Type{Tag: TagUnknown, Unknown: expr} }

// IsUnknown reports whether t is still an unresolved placeholder.
func (t Type) IsUnknown() bool { return t.Tag == TagUnknown }

// IsZero reports whether t is the Type zero value (never assigned).
func (t Type) IsZero() bool { return t.Tag == TagInvalid }

// Equal implements structural equality between types, used by interning
// keys, [Equal], and rule 11 of check_compatible_types ("underlying
// named-symbol identity").
func Equal(a, b Type) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case TagRef, TagPtr, TagSlice, TagOptional, TagResult:
		return Equal(*a.Elem, *b.Elem)
	case TagArray:
		return a.ArraySizeKey == b.ArraySizeKey && Equal(*a.Elem, *b.Elem)
	case TagTuple:
		if len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !Equal(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	case TagFn:
		if len(a.Elems) != len(b.Elems) || !Equal(*a.FnRet, *b.FnRet) {
			return false
		}
		for i := range a.Elems {
			if !Equal(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	case TagNamed:
		return a.Named == b.Named
	case TagUnknown:
		return false // never legitimately compared; see spec.md §3.5.
	default:
		return true // both TagInvalid
	}
}
