package ast

import (
	"github.com/rivet-lang/rivetc/sym"
	"github.com/rivet-lang/rivetc/token"
)

// Decl is the closed sum over spec.md §3.4's declaration kinds.
type Decl interface {
	Position() token.Position
	Attrs() *Attributes
	declNode()
}

// Attributes is the `#[name; name(arg); if(cond)]` block and the doc-comment
// block that may precede any declaration (spec.md §3.4's parse-prefix order
// and SPEC_FULL's supplemented doc-comment/attribute handling). Both are
// optional and recorded verbatim; attribute semantics (e.g. `if(cond)`
// conditional compilation) are resolved by the checker, not the parser.
type Attributes struct {
	DocComment string
	Items      []Attribute
}

// Attribute is one `name` or `name(args...)` entry of an attribute block.
type Attribute struct {
	Name string
	Args []string
	Pos  token.Position
}

// DeclBase is embedded by every concrete Decl.
type DeclBase struct {
	Pos     token.Position
	attrs   Attributes
	Vis     sym.Visibility
}

func (d *DeclBase) Position() token.Position { return d.Pos }
func (d *DeclBase) Attrs() *Attributes       { return &d.attrs }
func (*DeclBase) declNode()                  {}

// EmptyDecl is a bare `;` at declaration level, kept so the parser never
// needs to special-case it away (spec.md §3.4).
type EmptyDecl struct{ DeclBase }

// ExternPkgDecl is `extern pkg name;`, declaring a dependency on another
// compiled package without importing any symbols (spec.md §3.4). Sym is
// filled in by the registrar: an empty-scope KindModule placeholder, so a
// later `name::member` path resolves to "no such member" rather than
// "undeclared external package" (spec.md §4.3).
type ExternPkgDecl struct {
	DeclBase
	Name string
	Sym  sym.ID
}

// ExternFnProto is one function prototype inside an `extern (ABI) { ... }`
// block: name, parameter types, return type, variadic flag.
type ExternFnProto struct {
	Pos      token.Position
	Name     string
	Args     []FnArg
	Ret      TypeNode
	HasRet   bool
	IsVararg bool
	Sym      sym.ID
}

// ExternDecl is `extern (ABI) { prototypes... }` (spec.md §3.4).
type ExternDecl struct {
	DeclBase
	ABI    string
	Protos []ExternFnProto
}

// ConstDecl is `const NAME[: T] = expr`.
type ConstDecl struct {
	DeclBase
	Name     string
	HasType  bool
	Type     TypeNode
	Value    Expr
	Sym      sym.ID
}

// StaticDecl is `static [mut] NAME: T = expr`.
type StaticDecl struct {
	DeclBase
	IsMut bool
	Name  string
	Type  TypeNode
	Value Expr
	Sym   sym.ID
}

// ModDecl is `mod name { decls... }`, a nested namespace (spec.md §3.4).
type ModDecl struct {
	DeclBase
	Name  string
	Decls []Decl
	Sym   sym.ID
}

// TypeDecl is `type NAME = T;`, an alias to some other type (spec.md §3.4).
type TypeDecl struct {
	DeclBase
	Name string
	Base TypeNode
	Sym  sym.ID
}

// ErrTypeDecl is `errtype NAME { ... }`, the distinguished error-kind type
// that may only appear in `raise` or an `is`/`!is` comparison (spec.md §4.3).
type ErrTypeDecl struct {
	DeclBase
	Name  string
	Decls []Decl
	Sym   sym.ID
}

// TraitDecl is `trait NAME { decls... }`.
type TraitDecl struct {
	DeclBase
	Name  string
	Decls []Decl
	Sym   sym.ID
}

// UnionDecl is `union NAME { variants... decls... }`: each variant is an
// arbitrary member type (spec.md §3.4's "Union (variants + decls)") — not
// necessarily another named type, but any type expressible in the type
// grammar (primitives, tuples, pointers, and so on).
type UnionDecl struct {
	DeclBase
	Name     string
	Variants []TypeNode
	Decls    []Decl
	Sym      sym.ID
}

// EnumDecl is `enum NAME { Name0, Name1, ... decls... }`, a fieldless
// closed set of named variants plus associated functions (spec.md §3.4).
type EnumDecl struct {
	DeclBase
	Name     string
	Variants []string
	Decls    []Decl
	Sym      sym.ID
}

// StructFieldDecl is one field of a struct, itself a child declaration
// (spec.md §3.4: "fields are child decls").
type StructFieldDecl struct {
	DeclBase
	Name       string
	Type       TypeNode
	IsMut      bool
	HasDefault bool
	Default    Expr
	Sym        sym.ID
}

// StructDecl is `struct NAME { decls... }`, where field declarations are
// interleaved with associated functions among Decls.
type StructDecl struct {
	DeclBase
	Name  string
	Decls []Decl
	Sym   sym.ID
}

// ExtendDecl is `extend T { decls... }`, opening a named (or interned
// Array/Slice/Tuple) type to add associated functions and methods without
// declaring a new type (spec.md §4.3).
type ExtendDecl struct {
	DeclBase
	Target TypeNode
	Decls  []Decl
}

// FnArg is one function parameter.
type FnArg struct {
	Name       string
	Type       TypeNode
	HasDefault bool
	Default    Expr
	Pos        token.Position
	Sym        sym.ID
}

// FnDecl is a function or method declaration (spec.md §3.4): `fn NAME(args)
// [T] { body }` or `fn NAME(args) [T];` (no body — valid only inside a
// trait or extern block). IsMethod/SelfIsRef/SelfIsMut describe the
// receiver form when this Fn is nested in a Struct/Union/Enum/Trait/Extend.
type FnDecl struct {
	DeclBase
	IsUnsafe     bool
	Name         string
	Args         []FnArg
	HasRet       bool
	Ret          TypeNode
	Body         *Block
	HasBody      bool
	IsMethod     bool
	SelfIsRef    bool
	SelfIsMut    bool
	HasNamedArgs bool
	Sym          sym.ID
}

// DestructorDecl is `~self { body }`, the supplemented destructor form
// (SPEC_FULL §4) found inside a Struct declaration.
type DestructorDecl struct {
	DeclBase
	Body *Block
	Sym  sym.ID
}

// TestDecl is `test "description" { body }` (SPEC_FULL §4): type-checked
// like any other function body but never lowered to a callable symbol, per
// this front end's scope (code generation is out of scope).
type TestDecl struct {
	DeclBase
	Description string
	Body        *Block
}

// SourceFile is the root parse unit: one input file's declarations
// (spec.md §3.4/§6).
type SourceFile struct {
	Path  string
	Decls []Decl
}
