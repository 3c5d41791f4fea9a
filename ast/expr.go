// Package ast defines the typed AST produced by the parser and decorated in
// place by the resolver and checker (spec.md §3.3, §3.4). Every expression,
// statement, declaration and type node is a member of a small closed sum,
// matched exhaustively wherever behavior depends on shape — the idiomatic
// stand-in for the dynamic-AST-dispatch style of the language this front
// end was distilled from (spec.md's Design Notes).
//
// AST nodes are plain Go struct pointers forming an ordinary owned tree; the
// mutable "decoration" slots the later passes fill in (a resolved symbol, an
// inferred type) live inline on each node, exactly as the Design Notes
// suggest, and are written exactly once per node.
package ast

import (
	"github.com/rivet-lang/rivetc/sym"
	"github.com/rivet-lang/rivetc/token"
)

// Expr is the closed sum over spec.md §3.3's expression kinds.
type Expr interface {
	Position() token.Position
	Type() sym.Type
	SetType(sym.Type)
	exprNode()
}

// ExprBase is embedded by every concrete Expr to provide the position and
// the "initially-null inferred type slot" spec.md §3.3 requires of every
// expression.
type ExprBase struct {
	Pos token.Position
	Typ sym.Type
}

func (e *ExprBase) Position() token.Position { return e.Pos }
func (e *ExprBase) Type() sym.Type           { return e.Typ }
func (e *ExprBase) SetType(t sym.Type)       { e.Typ = t }
func (*ExprBase) exprNode()                  {}

// LitKind distinguishes the literal categories of spec.md §3.3.
type LitKind int

const (
	LitVoid LitKind = iota
	LitNone
	LitBool
	LitChar
	LitInteger
	LitFloat
	LitString
)

// Lit is a literal expression. BoolValue/CharValue/IntValue/FloatValue/
// StrValue hold the category named by Kind; IsByte marks a `b'x'` char or
// `b"..."` byte-string literal; IsRaw marks a raw `r"..."` string (no escape
// processing).
type Lit struct {
	ExprBase
	Kind       LitKind
	BoolValue  bool
	CharValue  rune
	IntValue   string // decimal/hex/octal/binary text, unevaluated
	FloatValue string
	StrValue   string
	IsByte     bool
	IsRaw      bool
}

// Tuple is a tuple literal `(e0, e1, ...)`, at most 8 elements (spec.md §6).
type Tuple struct {
	ExprBase
	Elems []Expr
}

// Array is an array literal `[e0, e1, ...]`.
type Array struct {
	ExprBase
	Elems []Expr
}

// StructLitField is one `name: value` entry of a struct literal.
type StructLitField struct {
	Name  string
	Value Expr
	Pos   token.Position
}

// StructLit is a struct literal `Target{ field: value, ... }`.
type StructLit struct {
	ExprBase
	Target Expr
	Fields []StructLitField
}

// Self is the `self` receiver expression. Sym is filled in by the resolver
// (spec.md §4.3): the lexically-bound `self` Object.
type Self struct {
	ExprBase
	Sym sym.ID
}

// SelfTy is the `Self` type-as-expression form (used in e.g. `Self{...}`
// inside an extend/struct body). Sym is filled in by the resolver: the
// enclosing type symbol, valid only where a self_sym is in scope.
type SelfTy struct {
	ExprBase
	Sym sym.ID
}

// Pkg is the `pkg` root-package expression.
type Pkg struct{ ExprBase }

// Ident is a bare identifier, optionally comptime (`$name`). Sym and IsObj
// are filled in by the resolver (spec.md §4.3): IsObj is true when Sym
// names a lexically-scoped Object or Label rather than a scope-graph
// symbol.
type Ident struct {
	ExprBase
	Name       string
	IsComptime bool
	Sym        sym.ID
	IsObj      bool
}

// EnumVariant is the `.Name` anonymous-enum-variant sugar, resolved against
// the expected type (spec.md §4.1 Primary).
type EnumVariant struct {
	ExprBase
	Name string
	Sym  sym.ID
}

// Unary is a prefix unary expression: `&`, `!`, `~`, `++`, `--`, unary `-`.
type Unary struct {
	ExprBase
	Op token.Kind
	X  Expr
}

// Binary is an infix binary expression.
type Binary struct {
	ExprBase
	Op       token.Kind
	LHS, RHS Expr
}

// Postfix is a postfix `++`/`--` expression.
type Postfix struct {
	ExprBase
	Op token.Kind
	X  Expr
}

// Par is a parenthesized expression `(e)`.
type Par struct {
	ExprBase
	X Expr
}

// Cast is `cast(e, T)`.
type Cast struct {
	ExprBase
	X    Expr
	To   TypeNode
}

// NoneCheck is `e.?`.
type NoneCheck struct {
	ExprBase
	X Expr
}

// Indirect is `e.*`.
type Indirect struct {
	ExprBase
	X Expr
}

// Guard is `let [mut] x = e`, used as a condition expression that both
// evaluates e and binds its unwrapped (non-none/non-error) value to x in
// the following block (spec.md §3.3).
type Guard struct {
	ExprBase
	Name  string
	IsMut bool
	Init  Expr
	Sym   sym.ID
}

// Range is `a..b`, `a..=b`, `..b`, `a..`, with optional endpoints.
type Range struct {
	ExprBase
	Start, End         Expr
	HasStart, HasEnd   bool
	Inclusive          bool
}

// Index is `e[index]`, where index may itself be a Range.
type Index struct {
	ExprBase
	X     Expr
	Index Expr
}

// Selector is `e.name`.
type Selector struct {
	ExprBase
	X    Expr
	Name string
	// Sym is filled in by the checker when `name` resolves to a field; it
	// stays zero for a method or any other member.
	Sym sym.ID
}

// Path is `e::name`.
type Path struct {
	ExprBase
	Left      Expr
	FieldName string
	Sym       sym.ID
}

// CallArg is one call argument, named iff Name != "".
type CallArg struct {
	Value   Expr
	Pos     token.Position
	IsNamed bool
	Name    string
}

// CallErrorHandler is the `catch [|name|] expr` clause of a call. Sym is
// filled in by the resolver when HasVar: the Object bound to VarName for the
// duration of Handler (spec.md §4.3).
type CallErrorHandler struct {
	HasVar  bool
	VarName string
	Handler Expr
	Sym     sym.ID
}

// Call is `callee(args...) [catch ...]`.
type Call struct {
	ExprBase
	Callee  Expr
	Args    []CallArg
	Handler *CallErrorHandler
	// Sym is filled in by the checker: the resolved callable symbol.
	Sym sym.ID
}

// BuiltinCall is `name!(args)`. TypeArg is set instead of Args for the
// type-taking builtins (`sizeof`, `default`).
type BuiltinCall struct {
	ExprBase
	Name    string
	Args    []Expr
	TypeArg *TypeNode
}

// Try is `try e`.
type Try struct {
	ExprBase
	X Expr
}

// Go is `go e`.
type Go struct {
	ExprBase
	X Expr
}

// Block is `{ stmts... [tail] }` or `unsafe { stmts... [tail] }`. Per
// spec.md §4.1's Primary rule, the block is value-producing iff its last
// statement is an ExprStmt not terminated by `;`; that trailing expression
// is split out into Tail/HasTail rather than left in Stmts.
type Block struct {
	ExprBase
	IsUnsafe bool
	Stmts    []Stmt
	Tail     Expr
	HasTail  bool
	Scope    *sym.Scope
}

// IfBranch is one `if (c) e`/`elif (c) e`/`else e` arm. Kind names which
// introducing keyword this arm used (KeyIf/KeyElif/KeyElse); IsComptime
// marks a `$if`/`$elif`/`$else` chain (spec.md §4.1).
type IfBranch struct {
	Cond    Expr // nil when IsElse
	Body    Expr
	IsElse  bool
	Kind    token.Kind
}

// If is a chain of branches.
type If struct {
	ExprBase
	IsComptime bool
	Branches   []IfBranch
	// BranchIdx selects the taken branch for a comptime if; set by the
	// comptime-evaluation collaborator, out of this core's scope
	// (spec.md's Design Notes Open Question).
	BranchIdx int
}

// MatchArm is one `pat, pat => body` arm of a match expression. When the
// enclosing Match IsTypeMatch, Patterns are parsed as TypeNodes wrapped in
// TypePat; otherwise they are ordinary expressions.
type MatchArm struct {
	Patterns []Expr
	IsElse   bool
	Body     Expr
}

// TypePat wraps a type used as a match pattern (`match (e) is { T => ... }`).
type TypePat struct {
	ExprBase
	Typ TypeNode
}

// Match is `match (e) [is] { arms... }`.
type Match struct {
	ExprBase
	IsComptime  bool
	Subject     Expr
	IsTypeMatch bool
	Arms        []MatchArm
}
