package ast

import (
	"github.com/rivet-lang/rivetc/sym"
	"github.com/rivet-lang/rivetc/token"
)

// Stmt is the closed sum over spec.md §3.4's statement kinds. Unlike Expr,
// statements never carry an inferred type of their own; the checker
// validates each kind by its own rule instead of a shared Type() slot.
type Stmt interface {
	Position() token.Position
	stmtNode()
}

type StmtBase struct {
	Pos token.Position
}

func (s *StmtBase) Position() token.Position { return s.Pos }
func (*StmtBase) stmtNode()                  {}

// LetStmt is `let [mut] name[: T] = init` (or the no-initializer tuple/array
// destructuring form, spec.md §3.4). Syms is filled in by the resolver.
type LetStmt struct {
	StmtBase
	Names   []string
	IsMut   []bool
	HasType []bool
	Types   []TypeNode
	Init    Expr
	Syms    []sym.ID
}

// AssignStmt is `left = right` or `left op= right`. Op names the
// compound-assignment operator, or is token.Invalid for plain `=`.
type AssignStmt struct {
	StmtBase
	Left  Expr
	Op    token.Kind
	Right Expr
}

// ExprStmt is a bare expression used for its side effects, terminated by
// `;`. A trailing expression without `;` at the end of a block is instead
// lifted into Block.Tail (spec.md §4.1) and is never wrapped in an
// ExprStmt.
type ExprStmt struct {
	StmtBase
	X Expr
}

// WhileStmt is `while (cond) body` or the infinite `while { body }` form
// (HasCond false).
type WhileStmt struct {
	StmtBase
	HasCond bool
	Cond    Expr
	Body    Expr
	// ContinueExpr is the optional `while (cond, continueExpr) body` C-style
	// increment clause (spec.md §4.1).
	HasContinueExpr bool
	ContinueExpr    Expr
}

// ForInStmt is `for (name[, name2] in iterable) body`.
type ForInStmt struct {
	StmtBase
	Names    []string
	Iterable Expr
	Body     Expr
	Syms     []sym.ID
}

// LoopStmt is `loop { body }`, an unconditional loop exited only via
// break/goto (spec.md §3.4).
type LoopStmt struct {
	StmtBase
	Body Expr
}

// LabelStmt declares a branch target `name:` (spec.md's supplemented
// label/goto support).
type LabelStmt struct {
	StmtBase
	Name string
	Sym  sym.ID
}

// GotoStmt is `goto name`.
type GotoStmt struct {
	StmtBase
	Name string
	Sym  sym.ID
}

// BranchKind distinguishes break/continue.
type BranchKind int

const (
	BranchBreak BranchKind = iota
	BranchContinue
)

// BranchStmt is `break` or `continue`, each optionally naming an enclosing
// loop label.
type BranchStmt struct {
	StmtBase
	Kind    BranchKind
	HasName bool
	Name    string
}

// ReturnStmt is `return [value];`. `return` is parsed only in statement
// position; there is no return expression node.
type ReturnStmt struct {
	StmtBase
	Value    Expr
	HasValue bool
}

// RaiseStmt is `raise e` used as a statement.
type RaiseStmt struct {
	StmtBase
	Value Expr
}

// BlockStmt wraps a Block expression used purely for its side effects (no
// tail value consumed).
type BlockStmt struct {
	StmtBase
	Body *Block
}
