package ast

import (
	"github.com/rivet-lang/rivetc/sym"
	"github.com/rivet-lang/rivetc/token"
)

// TypeNode is the syntactic form of a type reference, as produced by the
// parser's type grammar (spec.md §4.1 Types) before the resolver rewrites
// it to its canonical interned [sym.Type] form. A TypeNode's Resolved field
// starts as sym.Type{} (the zero/invalid tag) and is filled in exactly once
// by the resolver; re-resolving an already-resolved TypeNode is a no-op
// (spec.md §8's round-trip invariant).
type TypeNode struct {
	Pos      token.Position
	Kind     TypeNodeKind
	Resolved sym.Type

	Elem *TypeNode // Ref/Ptr/Slice/Array/Optional
	// ArraySize is the unevaluated size expression of an Array type node.
	ArraySize Expr
	Elems     []TypeNode // Tuple
	// Name/Path identify a named type: either a bare Name, or a qualified
	// reference built by repeated `::`. Segments has length 1 for a bare
	// name.
	Segments []string
	// Primitive is set when Kind is TypeNodePrimitive, naming which
	// primitive keyword was used (spec.md §4.1).
	Primitive token.Kind
}

// TypeNodeKind is the closed sum over spec.md §4.1's type grammar.
type TypeNodeKind int

const (
	TypeNodeInvalid TypeNodeKind = iota
	TypeNodeRef
	TypeNodePtr
	TypeNodeSlice
	TypeNodeArray
	TypeNodeTuple
	TypeNodeOptional
	TypeNodeResult
	TypeNodeSelfTy
	TypeNodePkg
	TypeNodeNamed // bare or qualified (::) name
	TypeNodePrimitive
)
