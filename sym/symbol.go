// Package sym implements the hierarchical symbol table described in
// spec.md §3.6: packages, modules, functions, types, constants, statics,
// local objects, labels and arguments, each carrying a name, a visibility,
// and a non-owning reference to its parent.
//
// Symbols are allocated from a per-compilation [Pool] and referenced by
// [ID], a compressed arena pointer (github.com/rivet-lang/rivetc/internal/arena),
// not a Go pointer: this is what keeps the symbol graph's parent
// back-references and every node's resolved-symbol slot acyclic for the
// garbage collector, per the teacher's arena-of-nodes strategy (see
// DESIGN.md).
package sym

import (
	"github.com/rivet-lang/rivetc/internal/arena"
	"github.com/rivet-lang/rivetc/token"
)

// ID is a stable, non-owning reference to a [Symbol] inside the [Pool] that
// allocated it. The zero ID is nil (spec.md's Design Notes: "stable
// identifiers... acyclic... no dangling-reference concerns").
type ID = arena.Pointer[Symbol]

// Kind is the closed sum of symbol variants from spec.md §3.6.
type Kind int

const (
	KindInvalid Kind = iota
	KindPackage
	KindModule
	KindFn
	KindType
	KindConst
	KindStatic
	KindObject
	KindLabel
	KindArg
)

func (k Kind) String() string {
	switch k {
	case KindPackage:
		return "package"
	case KindModule:
		return "module"
	case KindFn:
		return "function"
	case KindType:
		return "type"
	case KindConst:
		return "constant"
	case KindStatic:
		return "static"
	case KindObject:
		return "object"
	case KindLabel:
		return "label"
	case KindArg:
		return "argument"
	default:
		return "<invalid symbol>"
	}
}

// TypeKind narrows a KindType symbol, per spec.md §3.6.
type TypeKind int

const (
	TypeKindInvalid TypeKind = iota
	TypeKindStruct
	TypeKindUnion
	TypeKindEnum
	TypeKindAlias
	TypeKindArray
	TypeKindSlice
	TypeKindTuple
	TypeKindTrait
	TypeKindErrType
)

// Visibility is the closed sum from spec.md §3.6.
type Visibility int

const (
	Private Visibility = iota
	PublicInPkg
	Public
)

func (v Visibility) String() string {
	switch v {
	case Private:
		return "private"
	case PublicInPkg:
		return "pub(pkg)"
	case Public:
		return "pub"
	default:
		return "<invalid visibility>"
	}
}

// FnSig carries the function-specific fields from spec.md §3.4/§4.1: method
// receiver flags and the ordered, possibly-defaulted argument list.
type FnSig struct {
	Args         []ID // KindArg symbols, in declaration order
	Ret          Type
	IsMethod     bool
	SelfIsRef    bool
	SelfIsMut    bool
	HasNamedArgs bool
	IsUnsafe     bool
	IsExtern     bool
	ExternABI    string
}

// Symbol is the closed variant over spec.md §3.6's symbol kinds. Only the
// fields relevant to Kind (and, for KindType, TypeKind) are meaningful; the
// rest are left at their zero value.
//
// Symbol is a plain value type: it is stored inline in a [Pool]'s arena and
// referenced elsewhere by [ID], never copied out and mutated independently
// (an implementation detail, not a documented invariant, but violating it
// will silently desync the symbol graph).
type Symbol struct {
	Kind Kind
	Name string
	Vis  Visibility
	Pos  token.Position

	// Parent is a non-owning back-reference to the enclosing symbol.
	// Nil (zero ID) only for the universe/package root.
	Parent ID

	// Scope is non-nil for symbols that own a child scope: KindPackage,
	// KindModule, and KindType when TypeKind is one of
	// Struct/Union/Enum/Trait.
	Scope *Scope

	// KindType fields.
	TypeKind TypeKind
	// Fields holds, in declaration order, the KindArg-shaped field symbols
	// of a TypeKindStruct, or the KindConst variant symbols of a
	// TypeKindEnum. It stays empty for a TypeKindUnion, whose variants have
	// no symbols of their own.
	Fields []ID
	// Alias is the aliased type for TypeKindAlias; it is transparently
	// unaliased by the resolver (spec.md §4.3).
	Alias Type
	// Shape is the structural type this symbol canonicalizes for
	// TypeKindArray/Slice/Tuple (spec.md §3.5, §8 invariant 4).
	Shape Type
	// HasDestructor records whether a `~self { ... }` destructor was
	// declared in this type's body.
	HasDestructor bool
	Destructor    ID

	// KindFn fields.
	Fn *FnSig

	// KindConst / KindStatic fields.
	ValueType Type
	IsMut     bool // KindStatic only

	// KindObject (local variable / self receiver) fields.
	ObjType Type
	ObjMut  bool

	// KindArg (function parameter) fields.
	ArgType      Type
	HasDefault   bool
	DefaultIsSet bool

	// KindType == ErrType: no extra fields; an errtype symbol only ever
	// carries a name, per spec.md's Errtype glossary entry.
}

// IsScopeOwner reports whether this symbol owns a child [Scope].
func (s *Symbol) IsScopeOwner() bool {
	return s.Scope != nil
}
