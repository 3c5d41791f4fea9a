// Package sema defines the CompilerContext collaborator that spec.md §6
// says the parser, resolver and checker all consume: well-known primitive
// types, the universe symbol table, user preferences, and the primitive
// type predicates (is_int, is_signed_int, is_unsigned_int).
//
// Building one of these is the one piece of setup every phase needs before
// it can run; nothing in this package parses source or walks an AST.
package sema

import (
	"github.com/rivet-lang/rivetc/sym"
)

// Prefs carries user preferences — in particular the list of source file
// paths to compile. Loading this from a config file or flags is owned by an
// external CLI collaborator (spec.md §1); Prefs is a plain value the caller
// builds and hands in.
type Prefs struct {
	Inputs []string
}

// WellKnown bundles the handles to every primitive type named in spec.md
// §6, pre-resolved so the resolver can map a primitive-type keyword straight
// to its canonical Type without a scope lookup.
type WellKnown struct {
	Void     sym.Type
	None     sym.Type
	CVoid    sym.Type
	Bool     sym.Type
	Rune     sym.Type
	Str      sym.Type
	Ptr      sym.Type
	NoReturn sym.Type

	U8, U16, U32, U64, Usize sym.Type
	I8, I16, I32, I64, Isize sym.Type
	F32, F64                 sym.Type
}

// CompilerContext is the input bundle described in spec.md §6: the package
// root symbol, the universe interner, well-known primitive types, user
// preferences, and the primitive-type predicates.
type CompilerContext struct {
	Prefs Prefs

	Pool     *sym.Pool
	Universe *sym.Universe
	PkgSym   sym.ID

	WellKnown WellKnown
}

// NewCompilerContext builds a fresh context: a root package symbol, an
// empty universe, and every well-known primitive type registered into that
// universe's top-level scope under its canonical keyword spelling.
func NewCompilerContext(prefs Prefs) *CompilerContext {
	pool := &sym.Pool{}
	rootScope := sym.NewScope(pool, nil, sym.ID{}, false)

	pkgID := pool.New(sym.Symbol{
		Kind:  sym.KindPackage,
		Name:  "pkg",
		Vis:   sym.Public,
		Scope: rootScope,
	})
	rootScope = sym.NewScope(pool, nil, pkgID, false)
	pool.At(pkgID).Scope = rootScope

	universe := sym.NewUniverse(pool, rootScope)

	ctx := &CompilerContext{
		Prefs:    prefs,
		Pool:     pool,
		Universe: universe,
		PkgSym:   pkgID,
	}
	ctx.registerWellKnownTypes()
	return ctx
}

func (c *CompilerContext) registerPrimitive(name string, kind sym.TypeKind) sym.Type {
	id, err := c.Universe.Scope.Add(sym.Symbol{
		Kind:     sym.KindType,
		Name:     name,
		Vis:      sym.Public,
		TypeKind: kind,
	})
	if err != nil {
		// Well-known types are registered exactly once at construction
		// time; a collision here means this function was called twice.
		panic(err)
	}
	return sym.Named(id)
}

func (c *CompilerContext) registerWellKnownTypes() {
	w := &c.WellKnown
	w.Void = c.registerPrimitive("void", sym.TypeKindAlias)
	w.None = c.registerPrimitive("none", sym.TypeKindAlias)
	w.CVoid = c.registerPrimitive("c_void", sym.TypeKindAlias)
	w.Bool = c.registerPrimitive("bool", sym.TypeKindAlias)
	w.Rune = c.registerPrimitive("rune", sym.TypeKindAlias)
	w.Str = c.registerPrimitive("str", sym.TypeKindAlias)
	w.Ptr = c.registerPrimitive("ptr", sym.TypeKindAlias)
	w.NoReturn = c.registerPrimitive("NoReturn", sym.TypeKindAlias)

	w.U8 = c.registerPrimitive("u8", sym.TypeKindAlias)
	w.U16 = c.registerPrimitive("u16", sym.TypeKindAlias)
	w.U32 = c.registerPrimitive("u32", sym.TypeKindAlias)
	w.U64 = c.registerPrimitive("u64", sym.TypeKindAlias)
	w.Usize = c.registerPrimitive("usize", sym.TypeKindAlias)
	w.I8 = c.registerPrimitive("i8", sym.TypeKindAlias)
	w.I16 = c.registerPrimitive("i16", sym.TypeKindAlias)
	w.I32 = c.registerPrimitive("i32", sym.TypeKindAlias)
	w.I64 = c.registerPrimitive("i64", sym.TypeKindAlias)
	w.Isize = c.registerPrimitive("isize", sym.TypeKindAlias)
	w.F32 = c.registerPrimitive("f32", sym.TypeKindAlias)
	w.F64 = c.registerPrimitive("f64", sym.TypeKindAlias)
}

// IsInt reports whether t names one of the built-in integer types.
func (c *CompilerContext) IsInt(t sym.Type) bool {
	return c.IsSignedInt(t) || c.IsUnsignedInt(t)
}

// IsSignedInt reports whether t names one of i8/i16/i32/i64/isize.
func (c *CompilerContext) IsSignedInt(t sym.Type) bool {
	w := c.WellKnown
	for _, cand := range [...]sym.Type{w.I8, w.I16, w.I32, w.I64, w.Isize} {
		if sym.Equal(t, cand) {
			return true
		}
	}
	return false
}

// IsUnsignedInt reports whether t names one of u8/u16/u32/u64/usize.
func (c *CompilerContext) IsUnsignedInt(t sym.Type) bool {
	w := c.WellKnown
	for _, cand := range [...]sym.Type{w.U8, w.U16, w.U32, w.U64, w.Usize} {
		if sym.Equal(t, cand) {
			return true
		}
	}
	return false
}

// IsFloat reports whether t names f32 or f64.
func (c *CompilerContext) IsFloat(t sym.Type) bool {
	return sym.Equal(t, c.WellKnown.F32) || sym.Equal(t, c.WellKnown.F64)
}
