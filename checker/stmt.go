package checker

import (
	"github.com/rivet-lang/rivetc/ast"
	"github.com/rivet-lang/rivetc/sym"
)

func (c *Checker) checkStmt(s ast.Stmt) {
	switch ss := s.(type) {
	case *ast.LetStmt:
		c.checkLetStmt(ss)

	case *ast.AssignStmt:
		c.checkAssignStmt(ss)

	case *ast.ExprStmt:
		c.checkExprStmt(ss)

	case *ast.WhileStmt:
		if ss.HasCond {
			c.checkCond(ss.Cond)
		}
		if ss.HasContinueExpr {
			c.checkExpr(ss.ContinueExpr)
		}
		c.checkExpr(ss.Body)

	case *ast.ForInStmt:
		c.checkForInStmt(ss)

	case *ast.LoopStmt:
		c.checkExpr(ss.Body)

	case *ast.LabelStmt:
		// Already resolved; nothing left to check.

	case *ast.GotoStmt:
		// Already resolved; nothing left to check.

	case *ast.BranchStmt:
		// `break`/`continue` carry no value to type.

	case *ast.ReturnStmt:
		c.checkReturnStmt(ss)

	case *ast.RaiseStmt:
		c.checkRaiseStmt(ss)

	case *ast.BlockStmt:
		c.checkExpr(ss.Body)

	default:
		c.h.Errorf(s.Position(), "internal: checker has no case for %T", s)
	}
}

func (c *Checker) checkLetStmt(ls *ast.LetStmt) {
	if len(ls.Names) == 1 {
		saved := c.expectedType
		if ls.HasType[0] {
			c.expectedType = ls.Types[0].Resolved
		} else {
			c.expectedType = sym.Type{}
		}
		initT := c.checkExpr(ls.Init)
		c.expectedType = saved

		var declT sym.Type
		if ls.HasType[0] {
			declT = ls.Types[0].Resolved
			c.checkTypesNote(initT, declT, ls.Init.Position(), "variable", ls.Names[0])
		} else {
			declT = initT
		}
		if len(ls.Syms) > 0 {
			if sm := c.ctx.Pool.At(ls.Syms[0]); sm != nil {
				sm.ObjType = declT
			}
		}
		return
	}

	// Tuple-destructuring form: `let a, b = e`.
	initT := c.checkExpr(ls.Init)
	elemSym := c.symOf(initT)
	var elems []sym.Type
	if elemSym != nil && elemSym.TypeKind == sym.TypeKindTuple {
		elems = elemSym.Shape.Elems
	}
	if len(elems) != len(ls.Names) {
		c.h.Errorf(ls.Init.Position(), "expected a tuple of %d elements, found `%s`", len(ls.Names), c.typeString(initT))
		return
	}
	for i, name := range ls.Names {
		declT := elems[i]
		if i < len(ls.HasType) && ls.HasType[i] {
			c.checkTypesNote(elems[i], ls.Types[i].Resolved, ls.Init.Position(), "variable", name)
			declT = ls.Types[i].Resolved
		}
		if i < len(ls.Syms) {
			if sm := c.ctx.Pool.At(ls.Syms[i]); sm != nil {
				sm.ObjType = declT
			}
		}
	}
}

func (c *Checker) checkAssignStmt(as *ast.AssignStmt) {
	lt := c.checkExpr(as.Left)
	saved := c.expectedType
	c.expectedType = lt
	rt := c.checkExpr(as.Right)
	c.expectedType = saved
	c.checkTypes(rt, lt, as.Right.Position())
}

// checkExprStmt warns when a call or builtin call with a non-void,
// non-diverging type is used purely for its side effects. Other expression
// kinds used as statements are not flagged, and a Result or Optional call
// type is compared as is, without unwrapping it first.
func (c *Checker) checkExprStmt(es *ast.ExprStmt) {
	t := c.checkExpr(es.X)
	w := c.ctx.WellKnown
	if sym.Equal(t, w.Void) || sym.Equal(t, w.CVoid) || sym.Equal(t, w.NoReturn) {
		return
	}
	switch es.X.(type) {
	case *ast.Call, *ast.BuiltinCall:
		c.h.Warnf(es.Pos, "expression evaluated but not used")
	}
}

func (c *Checker) checkForInStmt(fs *ast.ForInStmt) {
	w := c.ctx.WellKnown
	iterT := c.checkExpr(fs.Iterable)
	var elemT sym.Type

	if _, ok := fs.Iterable.(*ast.Range); ok {
		elemT = w.I32
	} else if s := c.symOf(iterT); s != nil && (s.TypeKind == sym.TypeKindArray || s.TypeKind == sym.TypeKindSlice) {
		elemT = *s.Shape.Elem
	} else {
		c.h.Errorf(fs.Iterable.Position(), "type `%s` cannot be iterated with `for`", c.typeString(iterT))
		elemT = w.Void
	}

	for i, id := range fs.Syms {
		if sm := c.ctx.Pool.At(id); sm != nil {
			if len(fs.Names) == 2 && i == 0 {
				sm.ObjType = w.Usize
			} else {
				sm.ObjType = elemT
			}
		}
	}
	c.checkExpr(fs.Body)
}

func (c *Checker) checkReturnStmt(rs *ast.ReturnStmt) {
	w := c.ctx.WellKnown
	fn := c.ctx.Pool.At(c.curFn)
	retT := w.Void
	if fn != nil && fn.Fn != nil {
		retT = fn.Fn.Ret
	}
	expected := retT
	if expected.Tag == sym.TagResult {
		expected = *expected.Elem
	}
	if rs.HasValue {
		saved := c.expectedType
		c.expectedType = expected
		t := c.checkExpr(rs.Value)
		c.expectedType = saved
		if !sym.Equal(t, retT) {
			c.checkTypesNote(t, expected, rs.Value.Position(), "function", nameOf(fn))
		}
	} else if !sym.Equal(expected, w.Void) {
		c.h.Errorf(rs.Pos, "expected a return value of type `%s`", c.typeString(expected))
	}
}

func (c *Checker) checkRaiseStmt(rst *ast.RaiseStmt) {
	fn := c.ctx.Pool.At(c.curFn)
	if fn == nil || fn.Fn == nil || fn.Fn.Ret.Tag != sym.TagResult {
		c.h.Errorf(rst.Pos, "`raise` can only be used inside a function that returns a result")
		c.checkExpr(rst.Value)
		return
	}
	t := c.checkExpr(rst.Value)
	s := c.symOf(t)
	if s == nil || s.TypeKind != sym.TypeKindErrType {
		c.h.Errorf(rst.Value.Position(), "expected an errtype value, found `%s`", c.typeString(t))
	}
}
