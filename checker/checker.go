// Package checker implements the third and final pass described in spec.md
// §4.4/§4.5: given an AST whose identifiers and types the resolver has
// already bound, it types every expression, validates calls and operators
// against the rules of §4.4, and enforces §4.5's type-compatibility rules.
//
// Unlike the resolver, the checker never creates symbols or scopes; it only
// reads the symbol graph the registrar built and fills in decoration
// fields: an expression's Expr.Typ (via SetType), a Selector's Sym for a
// field access, a `let` binding's ObjType, and an untyped const's
// ValueType.
//
// State mirrors original_source/src/checker.py's Checker.__init__:
//   - expectedType propagates downward into literal/struct-field/argument
//     type inference, saved and restored around every sub-expression that
//     needs a different expectation than its parent.
//   - curFn is the enclosing function's symbol (for `return`/`raise`
//     checks); nil (zero ID) outside of any function body.
//   - curSym is the enclosing module/type, for privacy checks identical in
//     shape to the resolver's own curSym.
//   - insideUnsafe/unsafeOperations track nested `unsafe` blocks: entering
//     one is save-restore, and whether anything inside actually needed it is
//     counted so an empty `unsafe` block can be flagged as unnecessary.
package checker

import (
	"github.com/rivet-lang/rivetc/ast"
	"github.com/rivet-lang/rivetc/report"
	"github.com/rivet-lang/rivetc/sema"
	"github.com/rivet-lang/rivetc/sym"
)

// Checker owns the current-function/current-container/expected-type cursor
// state threaded through a single check pass; everything else is read from
// ctx.
type Checker struct {
	ctx *sema.CompilerContext
	h   *report.Handler

	curFn  sym.ID
	curSym sym.ID

	expectedType sym.Type

	insideUnsafe     bool
	unsafeOperations int
}

// New creates a Checker that types expressions and validates declarations
// against ctx's symbol pool, reporting failures to h.
func New(ctx *sema.CompilerContext, h *report.Handler) *Checker {
	return &Checker{ctx: ctx, h: h, curSym: ctx.PkgSym}
}

// Files type-checks every declaration of every file (spec.md §4.4).
// unsafeOperations resets per file, matching original_source's check_files
// (it is otherwise only ever read and reset around a single Block).
func (c *Checker) Files(files []*ast.SourceFile) {
	for _, f := range files {
		c.unsafeOperations = 0
		c.checkDeclList(f.Decls)
	}
}

func (c *Checker) checkDeclList(decls []ast.Decl) {
	for _, d := range decls {
		c.checkDecl(d)
	}
}

// isGatedKind reports false for the kinds that never consult an `if`
// attribute: a test always runs, an extern
// package declares no body to gate, and a destructor's visibility is
// whatever its owning type already decided (original_source/src/checker.py's
// check_decl special-cases exactly these three).
func isGatedKind(d ast.Decl) bool {
	switch d.(type) {
	case *ast.TestDecl, *ast.ExternPkgDecl, *ast.DestructorDecl:
		return false
	default:
		return true
	}
}

func (c *Checker) checkDecl(d ast.Decl) {
	shouldCheck := !isGatedKind(d) || c.shouldCheckDecl(d.Attrs())

	switch dd := d.(type) {
	case *ast.EmptyDecl:
		// Nothing to check.

	case *ast.ExternPkgDecl:
		// No body of its own to type-check.

	case *ast.ExternDecl:
		// An extern prototype declares no body and no default-argument
		// expressions worth checking (original_source/src/checker.py's
		// check_decl has no ExternFnProto case of its own either).

	case *ast.ConstDecl:
		if shouldCheck {
			c.expectedType = sym.Type{}
			if dd.HasType {
				c.expectedType = dd.Type.Resolved
			}
			t := c.checkExpr(dd.Value)
			c.expectedType = sym.Type{}
			if s := c.ctx.Pool.At(dd.Sym); s != nil {
				if dd.HasType {
					c.checkTypesNote(t, dd.Type.Resolved, dd.Value.Position(), "const", dd.Name)
				} else {
					s.ValueType = t
				}
			}
		}

	case *ast.StaticDecl:
		if shouldCheck {
			c.expectedType = dd.Type.Resolved
			t := c.checkExpr(dd.Value)
			c.expectedType = sym.Type{}
			c.checkTypesNote(t, dd.Type.Resolved, dd.Value.Position(), "static", dd.Name)
		}

	case *ast.ModDecl:
		if shouldCheck {
			saved := c.curSym
			c.curSym = dd.Sym
			c.checkDeclList(dd.Decls)
			c.curSym = saved
		}

	case *ast.TypeDecl:
		// A type alias has no body of its own to check.

	case *ast.ErrTypeDecl:
		if shouldCheck {
			saved := c.curSym
			c.curSym = dd.Sym
			c.checkDeclList(dd.Decls)
			c.curSym = saved
		}

	case *ast.TraitDecl:
		if shouldCheck {
			c.checkDeclList(dd.Decls)
		}

	case *ast.UnionDecl:
		if shouldCheck {
			saved := c.curSym
			c.curSym = dd.Sym
			c.checkDeclList(dd.Decls)
			c.curSym = saved
		}

	case *ast.EnumDecl:
		if shouldCheck {
			saved := c.curSym
			c.curSym = dd.Sym
			c.checkDeclList(dd.Decls)
			c.curSym = saved
		}

	case *ast.StructFieldDecl:
		if shouldCheck && dd.HasDefault {
			c.expectedType = dd.Type.Resolved
			t := c.checkExpr(dd.Default)
			c.expectedType = sym.Type{}
			c.checkTypesNote(t, dd.Type.Resolved, dd.Default.Position(), "field", dd.Name)
		}

	case *ast.StructDecl:
		if shouldCheck {
			saved := c.curSym
			c.curSym = dd.Sym
			c.checkDeclList(dd.Decls)
			c.curSym = saved
		}

	case *ast.ExtendDecl:
		if shouldCheck {
			c.checkDeclList(dd.Decls)
		}

	case *ast.TestDecl:
		if dd.Body != nil {
			c.checkFnBody(dd.Body)
		}

	case *ast.FnDecl:
		if shouldCheck {
			c.checkFnDecl(dd)
		}

	case *ast.DestructorDecl:
		if dd.Body != nil {
			c.checkFnBody(dd.Body)
		}

	default:
		c.h.Errorf(d.Position(), "internal: checker has no case for %T", d)
	}
}

func (c *Checker) checkFnDecl(dd *ast.FnDecl) {
	for i := range dd.Args {
		arg := &dd.Args[i]
		if arg.HasDefault {
			c.expectedType = arg.Type.Resolved
			t := c.checkExpr(arg.Default)
			c.expectedType = sym.Type{}
			c.checkTypesNote(t, arg.Type.Resolved, arg.Default.Position(), "argument", arg.Name)
		}
	}

	savedFn := c.curFn
	c.curFn = dd.Sym
	if dd.HasBody && dd.Body != nil {
		c.checkFnBody(dd.Body)
	}
	c.curFn = savedFn
}

// checkFnBody checks a function/test/destructor body exactly like any other
// Block expression, since the registrar/resolver already gave it its scope.
func (c *Checker) checkFnBody(b *ast.Block) {
	c.checkExpr(b)
}

// shouldCheckDecl evaluates attrs' `#[if(cond)]` conditional-compilation
// gate, a decision the resolver defers to this pass (see DESIGN.md): cond is
// checked against the same comptime-constant whitelist `$name` identifiers
// use, since this core does not model a real build-target evaluator (the
// Design Notes exclude a comptime evaluator from this scope). A recognized
// name is treated as satisfied so the body still gets fully checked; only
// the literal `false` actually gates a declaration out.
func (c *Checker) shouldCheckDecl(attrs *ast.Attributes) bool {
	for _, a := range attrs.Items {
		if a.Name != "if" || len(a.Args) != 1 {
			continue
		}
		cond := a.Args[0]
		switch {
		case cond == "false":
			return false
		case cond == "true":
			// satisfied, keep checking the rest of the attribute list.
		case !isKnownComptimeConstant(cond):
			c.h.Errorf(a.Pos, "unknown comptime constant `%s` in `if` attribute", cond)
		}
	}
	return true
}

// knownComptimeConstants duplicates resolver's whitelist of the same name
// (see resolver/expr.go): both passes need it independently (the resolver
// for `$name` identifiers, the checker for `if` attributes) and the list is
// four entries, not worth a shared package for.
var knownComptimeConstants = map[string]bool{
	"os":      true,
	"arch":    true,
	"debug":   true,
	"release": true,
}

func isKnownComptimeConstant(name string) bool {
	return knownComptimeConstants[name]
}

