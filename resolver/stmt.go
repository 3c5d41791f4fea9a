package resolver

import (
	"github.com/rivet-lang/rivetc/ast"
	"github.com/rivet-lang/rivetc/sym"
)

func (r *Resolver) resolveStmt(s ast.Stmt) {
	switch ss := s.(type) {
	case *ast.LetStmt:
		r.resolveLetStmt(ss)

	case *ast.AssignStmt:
		r.resolveExpr(ss.Left)
		r.resolveExpr(ss.Right)

	case *ast.ExprStmt:
		r.resolveExpr(ss.X)

	case *ast.WhileStmt:
		r.resolveWhileStmt(ss)

	case *ast.ForInStmt:
		r.resolveForInStmt(ss)

	case *ast.LoopStmt:
		r.resolveExpr(ss.Body)

	case *ast.LabelStmt:
		scope := r.lookupScope()
		id, err := scope.Add(sym.Symbol{Kind: sym.KindLabel, Name: ss.Name, Pos: ss.Pos})
		if err != nil {
			r.h.Errorf(ss.Pos, "%s", err)
			return
		}
		ss.Sym = id

	case *ast.GotoStmt:
		scope := r.lookupScope()
		id, ok := scope.Lookup(ss.Name)
		if !ok {
			r.h.Errorf(ss.Pos, "cannot find label `%s` in this scope", ss.Name)
			return
		}
		if s := r.ctx.Pool.At(id); s == nil || s.Kind != sym.KindLabel {
			r.h.Errorf(ss.Pos, "`%s` is not a label", ss.Name)
			return
		}
		ss.Sym = id

	case *ast.BranchStmt:
		// HasName/Name carry no Sym slot to resolve against (ast.BranchStmt
		// has none): a named break/continue target is not checked against
		// the enclosing loop labels here or in the checker.

	case *ast.ReturnStmt:
		if ss.HasValue {
			r.resolveExpr(ss.Value)
		}

	case *ast.RaiseStmt:
		r.resolveExpr(ss.Value)

	case *ast.BlockStmt:
		r.resolveBlockExpr(ss.Body)

	default:
		r.h.Errorf(s.Position(), "internal: resolver has no case for %T", s)
	}
}

func (r *Resolver) resolveLetStmt(s *ast.LetStmt) {
	if s.Init != nil {
		r.resolveExpr(s.Init)
	}
	scope := r.lookupScope()
	for i, name := range s.Names {
		var t sym.Type
		if s.HasType[i] {
			t = r.resolveType(&s.Types[i])
		}
		id, err := scope.Add(sym.Symbol{Kind: sym.KindObject, Name: name, Pos: s.Pos, ObjMut: s.IsMut[i], ObjType: t})
		if err != nil {
			r.h.Errorf(s.Pos, "%s", err)
			continue
		}
		s.Syms = append(s.Syms, id)
	}
}

func (r *Resolver) resolveForInStmt(s *ast.ForInStmt) {
	r.resolveExpr(s.Iterable)
	saved := r.curScope
	newScope := sym.NewScope(r.ctx.Pool, r.curScope, sym.ID{}, true)
	for _, name := range s.Names {
		id, err := newScope.Add(sym.Symbol{Kind: sym.KindObject, Name: name, Pos: s.Pos})
		if err != nil {
			r.h.Errorf(s.Pos, "%s", err)
			continue
		}
		s.Syms = append(s.Syms, id)
	}
	r.curScope = newScope
	r.resolveExpr(s.Body)
	r.curScope = saved
}

func (r *Resolver) resolveWhileStmt(s *ast.WhileStmt) {
	saved := r.curScope
	if s.HasCond {
		r.bindCond(s.Cond)
	}
	if s.HasContinueExpr {
		r.resolveExpr(s.ContinueExpr)
	}
	r.resolveExpr(s.Body)
	r.curScope = saved
}
