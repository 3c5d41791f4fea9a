package sym

import "strconv"

// Universe is the process-wide (per-compilation) interner described in
// spec.md's glossary: it canonicalizes tuple, array and slice shapes to a
// single TypeKindTuple/Array/Slice [Symbol], so that two occurrences of the
// same shape are pointer-identical (spec.md §8 invariant 4).
//
// Interning maps a structural key to a canonical symbol, per the Design
// Notes ("insertion into a universe-scoped mapping from structural key to
// canonical symbol. Keys must be hashable"). Type itself is not a
// comparable Go value (it embeds slices), so keys are a deterministic
// string encoding of the shape instead of the Type value itself.
type Universe struct {
	Scope *Scope // the root/top-level symbol scope (spec.md's universe map)
	pool  *Pool

	tuples map[string]ID
	arrays map[string]ID
	slices map[string]ID
}

// NewUniverse creates an empty universe backed by pool, with scope as its
// top-level (package) scope.
func NewUniverse(pool *Pool, scope *Scope) *Universe {
	return &Universe{
		Scope:  scope,
		pool:   pool,
		tuples: make(map[string]ID),
		arrays: make(map[string]ID),
		slices: make(map[string]ID),
	}
}

// AddOrGetSlice interns a [T] shape, returning a Type naming the canonical
// TypeKindSlice symbol.
func (u *Universe) AddOrGetSlice(elem Type) Type {
	key := encodeTypeKey(elem)
	if id, ok := u.slices[key]; ok {
		return Named(id)
	}
	id := u.pool.New(Symbol{
		Kind:     KindType,
		Name:     "[" + key + "]",
		Vis:      Public,
		TypeKind: TypeKindSlice,
		Shape:    Slice(elem),
	})
	u.slices[key] = id
	return Named(id)
}

// AddOrGetArray interns a [T; sizeKey] shape.
func (u *Universe) AddOrGetArray(elem Type, sizeKey string) Type {
	key := encodeTypeKey(elem) + ";" + sizeKey
	if id, ok := u.arrays[key]; ok {
		return Named(id)
	}
	id := u.pool.New(Symbol{
		Kind:     KindType,
		Name:     "[" + key + "]",
		Vis:      Public,
		TypeKind: TypeKindArray,
		Shape:    Array(elem, sizeKey),
	})
	u.arrays[key] = id
	return Named(id)
}

// AddOrGetTuple interns a (T0, T1, ...) shape. Callers are responsible for
// enforcing the 8-element maximum (spec.md §6) before calling this.
func (u *Universe) AddOrGetTuple(elems []Type) Type {
	key := ""
	for i, e := range elems {
		if i > 0 {
			key += ","
		}
		key += encodeTypeKey(e)
	}
	if id, ok := u.tuples[key]; ok {
		return Named(id)
	}
	id := u.pool.New(Symbol{
		Kind:     KindType,
		Name:     "(" + key + ")",
		Vis:      Public,
		TypeKind: TypeKindTuple,
		Shape:    Tuple(elems),
	})
	u.tuples[key] = id
	return Named(id)
}

// encodeTypeKey deterministically encodes a type's shape for use as a
// hashable interning key (Design Notes: "structural equality uses element
// identity (interned children)" — a Named id is already canonical, so two
// equal shapes always encode to the same key).
func encodeTypeKey(t Type) string {
	switch t.Tag {
	case TagRef:
		return "&" + encodeTypeKey(*t.Elem)
	case TagPtr:
		return "*" + encodeTypeKey(*t.Elem)
	case TagSlice:
		return "[]" + encodeTypeKey(*t.Elem)
	case TagArray:
		return "[" + t.ArraySizeKey + "]" + encodeTypeKey(*t.Elem)
	case TagOptional:
		return "?" + encodeTypeKey(*t.Elem)
	case TagResult:
		return "!" + encodeTypeKey(*t.Elem)
	case TagTuple:
		s := "("
		for i, e := range t.Elems {
			if i > 0 {
				s += ","
			}
			s += encodeTypeKey(e)
		}
		return s + ")"
	case TagFn:
		s := "fn("
		for i, e := range t.Elems {
			if i > 0 {
				s += ","
			}
			s += encodeTypeKey(e)
		}
		return s + ")" + encodeTypeKey(*t.FnRet)
	case TagNamed:
		return "#" + strconv.FormatUint(uint64(t.Named), 10)
	default:
		return "?unknown"
	}
}
