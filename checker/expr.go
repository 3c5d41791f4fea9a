package checker

import (
	"fmt"

	"github.com/rivet-lang/rivetc/ast"
	"github.com/rivet-lang/rivetc/sym"
	"github.com/rivet-lang/rivetc/token"
)

// lookupField scans container's own Fields slice for name (struct fields and
// enum/union variant payloads are registered there directly, bypassing
// Scope.Add — see sym.Symbol.Fields).
func (c *Checker) lookupField(container *sym.Symbol, name string) (sym.ID, bool) {
	if container == nil {
		return sym.ID{}, false
	}
	for _, fid := range container.Fields {
		if f := c.ctx.Pool.At(fid); f != nil && f.Name == name {
			return fid, true
		}
	}
	return sym.ID{}, false
}

// lookupMember looks up name in container's own scope — methods, consts and
// nested types, none of which live in Fields.
func (c *Checker) lookupMember(container *sym.Symbol, name string) (sym.ID, bool) {
	if container == nil || container.Scope == nil {
		return sym.ID{}, false
	}
	return container.Scope.Lookup(name)
}

// checkFieldVisibility mirrors resolver.checkVisibility for a struct field:
// a private field is only reachable from the symbol that declared it.
func (c *Checker) checkFieldVisibility(f *sym.Symbol, pos token.Position) {
	if f.Vis == sym.Private && f.Parent != c.curSym {
		c.h.Errorf(pos, "field `%s` of type `%s` is private", f.Name, nameOf(c.ctx.Pool.At(f.Parent)))
	}
}

// fnType builds the Fn-shaped Type a reference to fn symbol s has as a
// value (spec.md §4.4's Path/Selector/Ident rules for a function name).
func (c *Checker) fnType(s *sym.Symbol) sym.Type {
	if s == nil || s.Fn == nil {
		return sym.Type{}
	}
	args := make([]sym.Type, len(s.Fn.Args))
	for i, id := range s.Fn.Args {
		if as := c.ctx.Pool.At(id); as != nil {
			args[i] = as.ArgType
		}
	}
	return sym.Fn(args, s.Fn.Ret)
}

// insideUnsafeBlock reports whether the current point sits inside an
// `unsafe` block, recording the check as one of the block's unsafe
// operations so an empty `unsafe` block can later be flagged as pointless
// (spec.md §4.4's Block rule).
func (c *Checker) insideUnsafeBlock() bool {
	c.unsafeOperations++
	return c.insideUnsafe
}

func nameOf(s *sym.Symbol) string {
	if s == nil {
		return "?"
	}
	return s.Name
}

func (c *Checker) checkExpr(e ast.Expr) sym.Type {
	if e == nil {
		return sym.Type{}
	}
	w := c.ctx.WellKnown

	switch ee := e.(type) {
	case *ast.Lit:
		return c.checkLit(ee)

	case *ast.Tuple:
		elems := make([]sym.Type, len(ee.Elems))
		for i, el := range ee.Elems {
			elems[i] = c.checkExpr(el)
		}
		t := c.ctx.Universe.AddOrGetTuple(elems)
		ee.SetType(t)
		return t

	case *ast.Array:
		saved := c.expectedType
		elemTyp := w.Void
		for i, el := range ee.Elems {
			t := c.checkExpr(el)
			if i == 0 {
				elemTyp = t
				c.expectedType = elemTyp
			}
		}
		t := c.ctx.Universe.AddOrGetArray(elemTyp, fmt.Sprintf("%d", len(ee.Elems)))
		c.expectedType = saved
		ee.SetType(t)
		return t

	case *ast.StructLit:
		return c.checkStructLit(ee)

	case *ast.Self:
		t := sym.Type{}
		if s := c.ctx.Pool.At(ee.Sym); s != nil {
			t = s.ObjType
		}
		ee.SetType(t)
		return t

	case *ast.SelfTy:
		// original_source's own check_expr leaves SelfTyExpr as a `void_t`
		// TODO; Self's own symbol is already resolved here, so use it.
		t := w.Void
		if !(ee.Sym == sym.ID{}) {
			t = sym.Named(ee.Sym)
		}
		ee.SetType(t)
		return t

	case *ast.Pkg:
		ee.SetType(w.Void)
		return w.Void

	case *ast.Ident:
		return c.checkIdent(ee)

	case *ast.EnumVariant:
		return c.checkEnumVariant(ee)

	case *ast.Unary:
		return c.checkUnary(ee)

	case *ast.Binary:
		return c.checkBinary(ee)

	case *ast.Postfix:
		t := c.checkExpr(ee.X)
		if ee.Op == token.Inc || ee.Op == token.Dec {
			if !c.ctx.IsInt(t) {
				c.h.Errorf(ee.Pos, "operator `%s` can only be used with numeric values", ee.Op)
			}
		}
		ee.SetType(t)
		return t

	case *ast.Par:
		if _, ok := ee.X.(*ast.Par); ok {
			c.h.Warnf(ee.Pos, "redundant parentheses are used")
		}
		t := c.checkExpr(ee.X)
		ee.SetType(t)
		return t

	case *ast.Cast:
		saved := c.expectedType
		c.expectedType = ee.To.Resolved
		c.checkExpr(ee.X)
		c.expectedType = saved
		ee.SetType(ee.To.Resolved)
		return ee.To.Resolved

	case *ast.NoneCheck:
		t := c.checkExpr(ee.X)
		var result sym.Type
		if t.Tag == sym.TagOptional {
			result = *t.Elem
		} else {
			c.h.Errorf(ee.Pos, "cannot check a non-optional value")
			result = w.Void
		}
		ee.SetType(result)
		return result

	case *ast.Indirect:
		return c.checkIndirect(ee)

	case *ast.Guard:
		t := c.checkExpr(ee.Init)
		if t.Tag == sym.TagOptional {
			t = *t.Elem
		} else if t.Tag == sym.TagResult {
			t = *t.Elem
		}
		if s := c.ctx.Pool.At(ee.Sym); s != nil {
			s.ObjType = t
		}
		ee.SetType(t)
		return t

	case *ast.Range:
		if ee.HasStart {
			c.checkExpr(ee.Start)
		}
		if ee.HasEnd {
			c.checkExpr(ee.End)
		}
		return sym.Type{}

	case *ast.Index:
		return c.checkIndex(ee)

	case *ast.Selector:
		return c.checkSelector(ee)

	case *ast.Path:
		return c.checkPath(ee)

	case *ast.Call:
		return c.checkCallExpr(ee)

	case *ast.BuiltinCall:
		return c.checkBuiltinCall(ee)

	case *ast.Try:
		t := c.checkExpr(ee.X)
		var result sym.Type
		if t.Tag == sym.TagResult {
			result = *t.Elem
		} else {
			c.h.Errorf(ee.Pos, "expected a result value")
			result = w.Void
		}
		ee.SetType(result)
		return result

	case *ast.Go:
		c.checkExpr(ee.X)
		ee.SetType(w.Void)
		return w.Void

	case *ast.Block:
		return c.checkBlock(ee)

	case *ast.If:
		return c.checkIf(ee)

	case *ast.TypePat:
		t := ee.Typ.Resolved
		ee.SetType(t)
		return t

	case *ast.Match:
		return c.checkMatch(ee)

	default:
		c.h.Errorf(e.Position(), "internal: checker has no case for %T", e)
		return sym.Type{}
	}
}

// checkLit implements spec.md §4.4's literal typing rule: int/float widen to
// expectedType when it names a compatible numeric type, otherwise default to
// i32/f64.
func (c *Checker) checkLit(l *ast.Lit) sym.Type {
	w := c.ctx.WellKnown
	var t sym.Type
	switch l.Kind {
	case ast.LitVoid:
		t = w.Void
	case ast.LitNone:
		t = w.None
	case ast.LitBool:
		t = w.Bool
	case ast.LitChar:
		if l.IsByte {
			t = w.U8
		} else {
			t = w.Rune
		}
	case ast.LitInteger:
		if !c.expectedType.IsZero() && (c.ctx.IsInt(c.expectedType) || c.ctx.IsFloat(c.expectedType)) {
			t = c.expectedType
		} else {
			t = w.I32
		}
	case ast.LitFloat:
		if !c.expectedType.IsZero() && c.ctx.IsFloat(c.expectedType) {
			t = c.expectedType
		} else {
			t = w.F64
		}
	case ast.LitString:
		if l.IsByte {
			t = c.ctx.Universe.AddOrGetArray(w.U8, fmt.Sprintf("%d", len(l.StrValue)))
		} else {
			t = w.Str
		}
	default:
		t = w.Void
	}
	l.SetType(t)
	return t
}

func (c *Checker) checkStructLit(sl *ast.StructLit) sym.Type {
	w := c.ctx.WellKnown
	var targetID sym.ID
	switch tgt := sl.Target.(type) {
	case *ast.SelfTy:
		targetID = tgt.Sym
	case *ast.Ident:
		targetID = tgt.Sym
	case *ast.Path:
		targetID = tgt.Sym
	default:
		c.h.Errorf(sl.Target.Position(), "expected identifier or path expression")
		sl.SetType(w.Void)
		return w.Void
	}

	s := c.ctx.Pool.At(targetID)
	t := sym.Named(targetID)
	sl.SetType(t)

	if s == nil {
		return t
	}
	if s.TypeKind != sym.TypeKindStruct {
		c.h.Errorf(sl.Pos, "expected struct, found %s `%s`", s.Kind, s.Name)
		return t
	}
	for i := range sl.Fields {
		f := &sl.Fields[i]
		fieldID, ok := c.lookupField(s, f.Name)
		if !ok {
			c.h.Errorf(f.Pos, "struct `%s` has no field `%s`", s.Name, f.Name)
			continue
		}
		field := c.ctx.Pool.At(fieldID)
		saved := c.expectedType
		c.expectedType = field.ArgType
		fv := c.checkExpr(f.Value)
		c.expectedType = saved
		if !c.checkTypes(fv, field.ArgType, f.Value.Position()) {
			c.h.Notef("in field `%s` of struct `%s`", field.Name, s.Name)
		}
	}
	return t
}

func (c *Checker) checkIdent(id *ast.Ident) sym.Type {
	w := c.ctx.WellKnown
	var t sym.Type
	switch {
	case id.IsComptime:
		t = w.Str
	case id.IsObj:
		if s := c.ctx.Pool.At(id.Sym); s != nil {
			t = s.ObjType
		}
	default:
		s := c.ctx.Pool.At(id.Sym)
		if s == nil {
			t = w.Void
			break
		}
		switch s.Kind {
		case sym.KindFn:
			t = c.fnType(s)
		case sym.KindConst:
			t = s.ValueType
		case sym.KindStatic:
			if s.IsMut && !c.insideUnsafeBlock() {
				c.h.Errorf(id.Pos, "use of mutable static is unsafe and requires `unsafe` block")
				c.h.Notef("mutable statics can be mutated by multiple threads: aliasing violations or data races will cause undefined behavior")
			}
			t = s.ValueType
		default:
			t = w.Void
		}
	}
	id.SetType(t)
	return t
}

func (c *Checker) checkEnumVariant(ev *ast.EnumVariant) sym.Type {
	w := c.ctx.WellKnown
	t := w.Void
	es := c.symOf(c.expectedType)
	if es == nil {
		c.h.Errorf(ev.Pos, "cannot infer enum type for `.%s`", ev.Name)
	} else if es.TypeKind != sym.TypeKindEnum {
		c.h.Errorf(ev.Pos, "`%s` is not an enum", es.Name)
	} else if id, ok := c.lookupField(es, ev.Name); ok {
		ev.Sym = id
		t = c.expectedType
	} else {
		c.h.Errorf(ev.Pos, "enum `%s` has no variant `%s`", es.Name, ev.Name)
	}
	ev.SetType(t)
	return t
}

func (c *Checker) checkUnary(u *ast.Unary) sym.Type {
	t := c.checkExpr(u.X)
	w := c.ctx.WellKnown
	switch u.Op {
	case token.Bang:
		if !sym.Equal(t, w.Bool) {
			c.h.Errorf(u.Pos, "operator `!` can only be used with boolean values")
		}
	case token.BitNot:
		if !c.ctx.IsInt(t) {
			c.h.Errorf(u.Pos, "operator `~` can only be used with numeric values")
		}
	case token.Minus:
		if c.ctx.IsUnsignedInt(t) {
			c.h.Errorf(u.Pos, "cannot apply unary operator `-` to type `%s`", c.typeString(t))
			c.h.Notef("unsigned values cannot be negated")
		} else if !c.ctx.IsSignedInt(t) {
			c.h.Errorf(u.Pos, "operator `-` can only be used with signed values")
		}
	case token.Inc, token.Dec:
		if !c.ctx.IsInt(t) {
			c.h.Errorf(u.Pos, "operator `%s` can only be used with numeric values", u.Op)
		}
	case token.Amp:
		right := u.X
		if p, ok := right.(*ast.Par); ok {
			right = p.X
		}
		if idx, ok := right.(*ast.Index); ok {
			if idx.X.Type().Tag == sym.TagPtr {
				c.h.Errorf(u.Pos, "cannot reference a pointer indexing")
			}
		} else if t.Tag == sym.TagRef {
			c.h.Errorf(u.Pos, "cannot take the address of other reference")
		}
		if c.expectedType.Tag == sym.TagPtr {
			t = sym.Ptr(t)
		} else {
			t = sym.Ref(t)
		}
	}
	u.SetType(t)
	return t
}

func (c *Checker) checkBinary(b *ast.Binary) sym.Type {
	w := c.ctx.WellKnown
	ltyp := c.checkExpr(b.LHS)
	rtyp := c.checkExpr(b.RHS)

	switch b.Op {
	case token.Plus, token.Minus, token.Mult, token.Div, token.Mod, token.Xor, token.Amp, token.Pipe:
		if ltyp.Tag == sym.TagPtr {
			isMinus := b.Op == token.Minus
			bothPtr := rtyp.Tag == sym.TagPtr
			if (bothPtr && !isMinus) || (!bothPtr && b.Op != token.Plus && b.Op != token.Minus) {
				c.h.Errorf(b.Pos, "invalid operator `%s` to `%s` and `%s`", b.Op, c.typeString(ltyp), c.typeString(rtyp))
			} else if (b.Op == token.Plus || b.Op == token.Minus) && !c.insideUnsafeBlock() {
				c.h.Errorf(b.Pos, "pointer arithmetic is only allowed inside `unsafe` block")
			}
		} else if ltyp.Tag == sym.TagRef {
			c.h.Errorf(b.Pos, "cannot use arithmetic operations with references")
		}
	}

	returnType := ltyp
	switch b.Op {
	case token.KeyAnd, token.KeyOr:
		if !sym.Equal(ltyp, w.Bool) {
			c.h.Errorf(b.LHS.Position(), "non-boolean expression in left operand for `%s`", b.Op)
		} else if !sym.Equal(rtyp, w.Bool) {
			c.h.Errorf(b.RHS.Position(), "non-boolean expression in right operand for `%s`", b.Op)
		} else if lb, ok := b.LHS.(*ast.Binary); ok && (lb.Op == token.KeyAnd || lb.Op == token.KeyOr) && lb.Op != b.Op {
			c.h.Errorf(b.Pos, "ambiguous boolean expression")
			c.h.Helpf("use `()` to ensure correct order of operations")
		}
	case token.KeyOrElse:
		if ltyp.Tag == sym.TagOptional {
			if !sym.Equal(*ltyp.Elem, rtyp) && !sym.Equal(rtyp, w.NoReturn) {
				c.h.Errorf(b.RHS.Position(), "expected type `%s`, found `%s`", c.typeString(*ltyp.Elem), c.typeString(rtyp))
				c.h.Notef("in right operand for operator `orelse`")
			}
		} else {
			c.h.Errorf(b.Pos, "expected optional value in left operand for operator `orelse`")
		}
	}

	if sym.Equal(ltyp, w.Bool) && sym.Equal(rtyp, w.Bool) {
		switch b.Op {
		case token.Eq, token.Ne, token.KeyAnd, token.KeyOr, token.Pipe, token.Amp:
		default:
			c.h.Errorf(b.Pos, "boolean values only support `==`, `!=`, `and`, `or`, `&` and `|`")
		}
	} else if sym.Equal(ltyp, w.Str) && sym.Equal(rtyp, w.Str) {
		switch b.Op {
		case token.Eq, token.Ne, token.Lt, token.Gt, token.Le, token.Ge:
		default:
			c.h.Errorf(b.Pos, "string values only support `==`, `!=`, `<`, `>`, `<=` and `>=`")
		}
	}

	// `is`/`!is` compares a runtime value against a type pattern: rtyp names
	// the pattern, not a value this operand must be *assignable to*, so the
	// usual compatibility check does not apply here.
	if b.Op != token.KeyIs && b.Op != token.KeyNotIs {
		c.checkTypes(rtyp, returnType, b.RHS.Position())
	}

	var t sym.Type
	if token.IsRelational(b.Op) || b.Op == token.Eq || b.Op == token.Ne {
		t = w.Bool
	} else {
		t = returnType
	}
	b.SetType(t)
	return t
}

func (c *Checker) checkIndirect(ind *ast.Indirect) sym.Type {
	w := c.ctx.WellKnown
	ltyp := c.checkExpr(ind.X)
	var t sym.Type
	if ltyp.Tag != sym.TagPtr && ltyp.Tag != sym.TagRef {
		c.h.Errorf(ind.Pos, "invalid indirect for `%s`", c.typeString(ltyp))
		t = w.Void
	} else if ltyp.Tag == sym.TagPtr && !c.insideUnsafeBlock() {
		c.h.Errorf(ind.Pos, "dereference of pointer is unsafe and requires `unsafe` block")
		t = *ltyp.Elem
	} else if sym.Equal(*ltyp.Elem, w.CVoid) {
		c.h.Errorf(ind.Pos, "invalid indirect for `*c_void`")
		c.h.Helpf("consider casting this to another pointer type, e.g. `*u8`")
		t = w.Void
	} else {
		t = *ltyp.Elem
	}
	ind.SetType(t)
	return t
}

func (c *Checker) checkIndex(ix *ast.Index) sym.Type {
	w := c.ctx.WellKnown
	ltyp := c.checkExpr(ix.X)
	leftSym := c.symOf(ltyp)
	idxT := c.checkExpr(ix.Index)
	_, isRange := ix.Index.(*ast.Range)

	var t sym.Type
	if leftSym != nil && (leftSym.TypeKind == sym.TypeKindArray || leftSym.TypeKind == sym.TypeKindSlice) {
		if !c.ctx.IsUnsignedInt(idxT) {
			c.h.Errorf(ix.Index.Position(), "expected unsigned integer type, found %s", c.typeString(idxT))
		}
		switch {
		case isRange && leftSym.TypeKind == sym.TypeKindSlice:
			t = ltyp
		case isRange:
			t = c.ctx.Universe.AddOrGetSlice(*leftSym.Shape.Elem)
		default:
			t = *leftSym.Shape.Elem
		}
	} else {
		if ltyp.Tag != sym.TagPtr && !sym.Equal(ltyp, w.Str) {
			c.h.Errorf(ix.Pos, "type `%s` does not support indexing", c.typeString(ltyp))
			c.h.Notef("only `str`, pointers, arrays and slices supports indexing")
		} else if !c.ctx.IsUnsignedInt(idxT) {
			c.h.Errorf(ix.Index.Position(), "expected unsigned integer type, found %s", c.typeString(idxT))
		} else if ltyp.Tag == sym.TagPtr {
			if !c.insideUnsafeBlock() {
				c.h.Errorf(ix.Pos, "pointer indexing is only allowed inside `unsafe` blocks")
			} else if isRange {
				c.h.Errorf(ix.Index.Position(), "cannot slice a pointer")
			}
		}

		if sym.Equal(ltyp, w.Str) {
			if isRange {
				t = w.Str
			} else {
				t = w.U8
			}
		} else if ltyp.Elem != nil {
			t = *ltyp.Elem
		} else {
			t = w.Void
		}
	}
	ix.SetType(t)
	return t
}

func (c *Checker) checkSelector(sel *ast.Selector) sym.Type {
	w := c.ctx.WellKnown
	t := w.Void
	ltyp := c.checkExpr(sel.X)
	leftSym := c.symOf(ltyp)

	switch {
	case ltyp.Tag == sym.TagOptional:
		c.h.Errorf(sel.Pos, "fields of an optional value cannot be accessed directly")
		c.h.Helpf("handle it with `.?` or `orelse`")
	case ltyp.Tag == sym.TagPtr:
		c.h.Errorf(sel.Pos, "fields of a pointer value cannot be accessed directly")
		c.h.Helpf("use the dereference operator instead: `ptr_value.*.%s`", sel.Name)
	case leftSym != nil && (leftSym.TypeKind == sym.TypeKindArray || leftSym.TypeKind == sym.TypeKindSlice) && sel.Name == "len":
		t = w.Usize
	case leftSym != nil:
		if fieldID, ok := c.lookupField(leftSym, sel.Name); ok {
			field := c.ctx.Pool.At(fieldID)
			c.checkFieldVisibility(field, sel.Pos)
			sel.Sym = fieldID
			t = field.ArgType
		} else if memberID, ok := c.lookupMember(leftSym, sel.Name); ok {
			m := c.ctx.Pool.At(memberID)
			if m.Kind == sym.KindFn {
				if m.Fn != nil && m.Fn.IsMethod {
					c.h.Errorf(sel.Pos, "cannot take value of method `%s`", sel.Name)
					c.h.Helpf("use parentheses to call the method: `%s()`", sel.Name)
				} else {
					c.h.Errorf(sel.Pos, "cannot take value of associated function `%s` from value", sel.Name)
					c.h.Helpf("use `%s::%s` instead", leftSym.Name, sel.Name)
					t = c.fnType(m)
				}
			} else {
				c.h.Errorf(sel.Pos, "cannot take value of %s `%s::%s`", m.Kind, leftSym.Name, sel.Name)
			}
		} else {
			c.h.Errorf(sel.Pos, "type `%s` has no field `%s`", leftSym.Name, sel.Name)
		}
	}
	sel.SetType(t)
	return t
}

func (c *Checker) checkPath(p *ast.Path) sym.Type {
	w := c.ctx.WellKnown
	t := w.Void
	s := c.ctx.Pool.At(p.Sym)
	if s != nil {
		switch s.Kind {
		case sym.KindFn:
			if s.Fn != nil && s.Fn.IsMethod {
				c.h.Errorf(p.Pos, "cannot take value of method `%s`", p.FieldName)
			}
			t = c.fnType(s)
		case sym.KindConst:
			t = s.ValueType
		case sym.KindStatic:
			if s.IsMut && !c.insideUnsafeBlock() {
				c.h.Errorf(p.Pos, "use of mutable static is unsafe and requires `unsafe` block")
				c.h.Notef("mutable statics can be mutated by multiple threads: aliasing violations or data races will cause undefined behavior")
			}
			t = s.ValueType
		case sym.KindType:
			t = sym.Named(p.Sym)
		}
	}
	p.SetType(t)
	return t
}

func (c *Checker) checkCallExpr(call *ast.Call) sym.Type {
	w := c.ctx.WellKnown
	call.SetType(w.Void)

	left := call.Callee
	inParens := false
	if par, ok := left.(*ast.Par); ok {
		if _, ok2 := par.X.(*ast.Selector); ok2 {
			left = par.X
			inParens = true
		}
	}

	ret := w.Void
	switch lf := left.(type) {
	case *ast.Ident:
		s := c.ctx.Pool.At(lf.Sym)
		switch {
		case s != nil && s.Kind == sym.KindFn:
			call.Sym = lf.Sym
			ret = c.checkCall(s, call)
		case s != nil && s.Kind == sym.KindType && s.TypeKind == sym.TypeKindErrType:
			call.Sym = lf.Sym
			ret = c.checkErrTypeCtor(lf.Sym, call)
		case lf.IsObj:
			ot := lf.Type()
			if ot.Tag == sym.TagFn {
				ret = *ot.FnRet
				for _, a := range call.Args {
					c.checkExpr(a.Value)
				}
			} else {
				c.h.Errorf(lf.Pos, "expected function, found %s", c.typeString(ot))
			}
		}

	case *ast.Selector:
		ltyp := c.checkExpr(lf.X)
		leftSym := c.symOf(ltyp)
		if leftSym == nil {
			break
		}
		if memberID, ok := c.lookupMember(leftSym, lf.Name); ok {
			m := c.ctx.Pool.At(memberID)
			if m.Kind != sym.KindFn {
				c.h.Errorf(lf.Pos, "expected method, found %s", m.Kind)
				break
			}
			if m.Fn == nil || !m.Fn.IsMethod {
				c.h.Errorf(lf.Pos, "`%s` is not a method", lf.Name)
				break
			}
			switch {
			case ltyp.Tag == sym.TagOptional:
				c.h.Errorf(lf.Pos, "optional value cannot be called directly")
				c.h.Helpf("use the none-check syntax: `foo.?.method()`")
				c.h.Helpf("or use `orelse`: `(foo orelse 5).method()`")
			case ltyp.Tag == sym.TagPtr:
				if m.Fn.SelfIsRef {
					c.h.Errorf(call.Pos, "cannot use pointers as references")
					c.h.Helpf("consider casting this pointer to a reference")
				} else {
					c.h.Errorf(call.Pos, "unexpected pointer type as receiver")
					c.h.Helpf("consider dereferencing this pointer")
				}
			default:
				call.Sym = memberID
				ret = c.checkCall(m, call)
			}
		} else if fieldID, ok := c.lookupField(leftSym, lf.Name); ok {
			f := c.ctx.Pool.At(fieldID)
			if f.ArgType.Tag == sym.TagFn {
				if inParens {
					call.Sym = fieldID
					ret = c.checkCall(f, call)
				} else {
					c.h.Errorf(lf.Pos, "type `%s` has no method `%s`", leftSym.Name, lf.Name)
					c.h.Helpf("to call the function stored in `%s`, surround the field access with parentheses", lf.Name)
				}
			} else {
				c.h.Errorf(lf.Pos, "field `%s` of type `%s` is not function type", lf.Name, leftSym.Name)
			}
		} else {
			c.h.Errorf(lf.Pos, "type `%s` has no method `%s`", leftSym.Name, lf.Name)
		}

	case *ast.Path:
		s := c.ctx.Pool.At(lf.Sym)
		if s != nil && s.Kind == sym.KindFn {
			call.Sym = lf.Sym
			ret = c.checkCall(s, call)
		} else if s != nil && s.Kind == sym.KindType && s.TypeKind == sym.TypeKindErrType {
			call.Sym = lf.Sym
			ret = c.checkErrTypeCtor(lf.Sym, call)
		} else {
			c.h.Errorf(call.Pos, "expected function, found %s", nameOf(s))
		}

	default:
		c.h.Errorf(call.Pos, "invalid expression used in call expression")
	}

	call.SetType(ret)

	if call.Handler != nil {
		if ret.Tag == sym.TagResult {
			if call.Handler.Handler != nil {
				c.checkExpr(call.Handler.Handler)
			}
		} else {
			c.h.Errorf(call.Pos, "call does not return a result value")
		}
	} else if ret.Tag == sym.TagResult {
		c.h.Errorf(call.Pos, "call returns a result")
		c.h.Notef("should handle this with `catch` or propagate with `.!`")
	}

	return ret
}

// checkCall validates and types a resolved call against info's signature
// (spec.md §4.4's Call rule). Per-argument compatibility is only checked for
// the last argument for a non-extern callee, matching
// original_source/src/checker.py's own check_call.
func (c *Checker) checkCall(info *sym.Symbol, call *ast.Call) sym.Type {
	if info.Fn == nil {
		return sym.Type{}
	}
	ret := info.Fn.Ret

	if info.Fn.IsUnsafe && !c.insideUnsafeBlock() {
		c.h.Warnf(call.Pos, "%s `%s` should be called inside `unsafe` block", info.Kind, info.Name)
	}

	fnArgsLen := len(info.Fn.Args)

	errNamed := false
	for i := range call.Args {
		arg := &call.Args[i]
		if !arg.IsNamed {
			continue
		}
		found := false
		for _, aid := range info.Fn.Args {
			as := c.ctx.Pool.At(aid)
			if as == nil || as.Name != arg.Name {
				continue
			}
			found = true
			if !as.HasDefault {
				c.h.Errorf(arg.Pos, "argument `%s` is not optional", arg.Name)
			}
		}
		if !found {
			errNamed = true
			c.h.Errorf(arg.Pos, "%s `%s` does not have an argument called `%s`", info.Kind, info.Name, arg.Name)
		}
	}
	if errNamed {
		return ret
	}

	argsLen := len(call.Args)
	if argsLen < fnArgsLen {
		allDefaulted := true
		for i := argsLen; i < fnArgsLen; i++ {
			as := c.ctx.Pool.At(info.Fn.Args[i])
			if as == nil || !as.HasDefault {
				allDefaulted = false
				break
			}
		}
		if !allDefaulted {
			c.h.Errorf(call.Pos, "too few arguments to %s `%s`", info.Kind, info.Name)
			c.h.Notef("expected %d argument(s), found %d", fnArgsLen, argsLen)
			return ret
		}
	} else if argsLen > fnArgsLen {
		c.h.Errorf(call.Pos, "too many arguments to %s `%s`", info.Kind, info.Name)
		c.h.Notef("expected %d argument(s), found %d", fnArgsLen, argsLen)
		return ret
	}

	saved := c.expectedType
	for i := range call.Args {
		if i >= fnArgsLen {
			break
		}
		argSym := c.ctx.Pool.At(info.Fn.Args[i])
		var argT sym.Type
		if argSym != nil {
			argT = argSym.ArgType
		}
		c.expectedType = argT
		callArgT := c.checkExpr(call.Args[i].Value)
		c.expectedType = saved

		if !info.Fn.IsExtern && i >= fnArgsLen-1 {
			if !c.checkTypes(callArgT, argT, call.Args[i].Pos) {
				c.h.Notef("in argument `%s` of %s `%s`", nameOf(argSym), info.Kind, info.Name)
			}
		}
	}
	return ret
}

func (c *Checker) checkErrTypeCtor(id sym.ID, call *ast.Call) sym.Type {
	t := sym.Named(id)
	if len(call.Args) == 1 {
		msgT := c.checkExpr(call.Args[0].Value)
		if !sym.Equal(msgT, c.ctx.WellKnown.Str) {
			c.h.Errorf(call.Args[0].Pos, "expected string value, found `%s`", c.typeString(msgT))
		}
	} else if len(call.Args) != 0 {
		c.h.Errorf(call.Pos, "expected 1 argument, found %d", len(call.Args))
	}
	return t
}

func (c *Checker) checkBuiltinCall(bc *ast.BuiltinCall) sym.Type {
	w := c.ctx.WellKnown
	ret := w.Void
	switch bc.Name {
	case "trace", "assert":
		// Nothing to validate statically.
	case "compile_warn":
		if len(bc.Args) > 0 {
			if lit, ok := bc.Args[0].(*ast.Lit); ok {
				c.h.Warnf(bc.Pos, "%s", lit.StrValue)
			}
		}
	case "compile_error":
		if len(bc.Args) > 0 {
			if lit, ok := bc.Args[0].(*ast.Lit); ok {
				c.h.Errorf(bc.Pos, "%s", lit.StrValue)
			}
		}
	case "sizeof":
		ret = w.Usize
	case "default":
		if bc.TypeArg != nil {
			ret = bc.TypeArg.Resolved
		}
	default:
		c.h.Errorf(bc.Pos, "unknown builtin function `%s`", bc.Name)
	}
	for _, a := range bc.Args {
		c.checkExpr(a)
	}
	bc.SetType(ret)
	return ret
}

// checkBlock checks a block's statements and tail, isolating the
// insideUnsafe/unsafeOperations cursor around an `unsafe` block so a nested
// non-unsafe block neither inherits nor clobbers an enclosing unsafe block's
// operation count (original_source/src/checker.py resets its own
// inside_unsafe flag unconditionally after every block, which loses the
// outer block's nesting state; this restores it instead).
func (c *Checker) checkBlock(b *ast.Block) sym.Type {
	savedUnsafe := c.insideUnsafe
	var savedOps int
	if b.IsUnsafe {
		if c.insideUnsafe {
			c.h.Warnf(b.Pos, "unnecesary `unsafe` block")
		}
		savedOps = c.unsafeOperations
		c.unsafeOperations = 0
		c.insideUnsafe = true
	}

	for _, st := range b.Stmts {
		c.checkStmt(st)
	}
	var t sym.Type
	if b.HasTail {
		t = c.checkExpr(b.Tail)
	} else {
		t = c.ctx.WellKnown.Void
	}

	if b.IsUnsafe {
		if c.unsafeOperations == 0 {
			c.h.Warnf(b.Pos, "unnecesary `unsafe` block")
		}
		c.unsafeOperations = savedOps
	}
	c.insideUnsafe = savedUnsafe
	b.SetType(t)
	return t
}

// checkCond checks an if/while condition, which may be a bare boolean
// expression or a `let x = e` Guard (optionally followed by `and extra`)
// whose own type is the unwrapped binding, not bool — mirroring
// resolver.bindCond's same two shapes.
func (c *Checker) checkCond(cond ast.Expr) {
	w := c.ctx.WellKnown
	switch cc := cond.(type) {
	case *ast.Guard:
		c.checkExpr(cc)
	case *ast.Binary:
		if cc.Op == token.KeyAnd {
			if g, ok := cc.LHS.(*ast.Guard); ok {
				c.checkExpr(g)
				extraT := c.checkExpr(cc.RHS)
				if !sym.Equal(extraT, w.Bool) {
					c.h.Errorf(cc.RHS.Position(), "non-boolean expression used as condition")
				}
				return
			}
		}
		t := c.checkExpr(cond)
		if !sym.Equal(t, w.Bool) {
			c.h.Errorf(cond.Position(), "non-boolean expression used as condition")
		}
	default:
		t := c.checkExpr(cond)
		if !sym.Equal(t, w.Bool) {
			c.h.Errorf(cond.Position(), "non-boolean expression used as condition")
		}
	}
}

func (c *Checker) checkIf(i *ast.If) sym.Type {
	w := c.ctx.WellKnown
	if i.IsComptime {
		t := w.Void
		if i.BranchIdx >= 0 && i.BranchIdx < len(i.Branches) {
			t = c.checkExpr(i.Branches[i.BranchIdx].Body)
		}
		i.SetType(t)
		return t
	}
	t := w.Void
	for idx := range i.Branches {
		br := &i.Branches[idx]
		if !br.IsElse {
			c.checkCond(br.Cond)
		}
		bt := c.checkExpr(br.Body)
		if idx == 0 {
			t = bt
		}
	}
	i.SetType(t)
	return t
}

func (c *Checker) checkMatch(m *ast.Match) sym.Type {
	c.checkExpr(m.Subject)
	t := c.ctx.WellKnown.Void
	for i := range m.Arms {
		arm := &m.Arms[i]
		for _, p := range arm.Patterns {
			c.checkExpr(p)
		}
		bt := c.checkExpr(arm.Body)
		if i == 0 {
			t = bt
		}
	}
	m.SetType(t)
	return t
}
