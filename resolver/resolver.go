// Package resolver implements the second name-binding pass described in
// spec.md §4.3: it walks every declaration the registrar has already turned
// into a [sym.Symbol], rewrites each syntactic [ast.TypeNode] to its
// canonical interned [sym.Type], and binds every identifier, `self`/`Self`
// expression and `::`-path to the symbol it refers to.
//
// The resolver tracks two pieces of "current container" state as it
// descends, mirroring original_source/src/resolver.py's cur_sym/self_sym:
//
//   - curSym/curSymScope is the nearest enclosing Mod/Struct/Union/Enum/
//     ErrType (a Trait or Extend body leaves it unchanged). A lexical scope
//     lookup that misses its own chain checks curSymScope exactly once more
//     (sym.Scope.Lookup already implements this, since the registrar wired
//     curSymScope in as the lexical chain's non-lexical terminal parent).
//   - selfSym is the type `Self`/`self` resolve against: set while resolving
//     a Struct/Union/Enum/Extend body, unset otherwise.
package resolver

import (
	"github.com/rivet-lang/rivetc/ast"
	"github.com/rivet-lang/rivetc/registrar"
	"github.com/rivet-lang/rivetc/report"
	"github.com/rivet-lang/rivetc/sema"
	"github.com/rivet-lang/rivetc/sym"
	"github.com/rivet-lang/rivetc/token"
)

// Resolver owns the current-container/current-scope cursor state threaded
// through a single resolve pass; everything else is read from ctx/reg.
type Resolver struct {
	ctx *sema.CompilerContext
	h   *report.Handler
	reg *registrar.Registrar

	curSym      sym.ID
	curSymScope *sym.Scope

	hasSelfSym bool
	selfSym    sym.ID

	// curScope is the currently active lexical scope while resolving a
	// function/test/destructor body; nil outside of any body.
	curScope *sym.Scope

	// insideIsCmp is true only while resolving the TypeNode of an `is`/
	// `!is` comparison or a type-match pattern, the one place spec.md §4.3
	// allows an `errtype` name to appear as a type.
	insideIsCmp bool

	// aliasDecls lets an out-of-order reference to a `type NAME = T;` alias
	// resolve its target on demand, rather than requiring aliases to be
	// declared before their first use. Populated once by collectAliasDecls
	// before any file is resolved; deliberately does not descend into
	// ExtendDecl bodies, since an extend target's own scope does not exist
	// until resolveExtendDecl runs (see DESIGN.md).
	aliasDecls    map[sym.ID]*ast.TypeDecl
	aliasVisiting map[sym.ID]bool
}

// New creates a Resolver that rewrites TypeNodes and binds identifiers
// against ctx's symbol pool, registering `extend` methods through reg as it
// discovers their target symbol, and reporting failures to h.
func New(ctx *sema.CompilerContext, h *report.Handler, reg *registrar.Registrar) *Resolver {
	return &Resolver{
		ctx:           ctx,
		h:             h,
		reg:           reg,
		aliasDecls:    make(map[sym.ID]*ast.TypeDecl),
		aliasVisiting: make(map[sym.ID]bool),
	}
}

// Files resolves every declaration of every file, in package scope (spec.md
// §4.3). Multiple files share the package's symbol table, exactly as in the
// registrar's own Files pass.
func (r *Resolver) Files(files []*ast.SourceFile) {
	r.curSym = r.ctx.PkgSym
	r.curSymScope = r.ctx.Pool.At(r.ctx.PkgSym).Scope

	for _, f := range files {
		r.collectAliasDecls(f.Decls)
	}
	for _, f := range files {
		r.resolveDeclList(f.Decls)
	}
}

func (r *Resolver) collectAliasDecls(decls []ast.Decl) {
	for _, d := range decls {
		switch dd := d.(type) {
		case *ast.ModDecl:
			r.collectAliasDecls(dd.Decls)
		case *ast.ErrTypeDecl:
			r.collectAliasDecls(dd.Decls)
		case *ast.TraitDecl:
			r.collectAliasDecls(dd.Decls)
		case *ast.UnionDecl:
			r.collectAliasDecls(dd.Decls)
		case *ast.EnumDecl:
			r.collectAliasDecls(dd.Decls)
		case *ast.StructDecl:
			r.collectAliasDecls(dd.Decls)
		case *ast.TypeDecl:
			r.aliasDecls[dd.Sym] = dd
		}
	}
}

func (r *Resolver) resolveDeclList(decls []ast.Decl) {
	for _, d := range decls {
		r.resolveDecl(d)
	}
}

// enterContainer reassigns curSym/curSymScope for the duration of fn, per
// spec.md §4.3's Mod/Struct/Union/Enum/ErrType rule; the caller supplies the
// already-resolved type/module symbol and its own scope.
func (r *Resolver) enterContainer(id sym.ID, scope *sym.Scope, fn func()) {
	savedSym, savedScope := r.curSym, r.curSymScope
	r.curSym, r.curSymScope = id, scope
	fn()
	r.curSym, r.curSymScope = savedSym, savedScope
}

// enterSelf sets selfSym for the duration of fn (Struct/Union/Enum/Extend),
// restoring the previous value afterward rather than original_source's
// unconditional reset to "none" — a deliberate fix so a type declared
// (nested) inside another type's body still sees its own Self correctly
// once the outer type's processing resumes (see DESIGN.md).
func (r *Resolver) enterSelf(id sym.ID, fn func()) {
	savedHas, saved := r.hasSelfSym, r.selfSym
	r.hasSelfSym, r.selfSym = true, id
	fn()
	r.hasSelfSym, r.selfSym = savedHas, saved
}

func (r *Resolver) resolveDecl(d ast.Decl) {
	switch dd := d.(type) {
	case *ast.EmptyDecl, *ast.ExternPkgDecl:
		// Nothing to resolve.

	case *ast.ExternDecl:
		for i := range dd.Protos {
			r.resolveExternProto(&dd.Protos[i])
		}

	case *ast.ConstDecl:
		r.resolveExpr(dd.Value)
		if dd.HasType {
			t := r.resolveType(&dd.Type)
			if s := r.ctx.Pool.At(dd.Sym); s != nil {
				s.ValueType = t
			}
		}
		// Without an explicit type, ValueType stays the zero Type until the
		// checker infers it from Value, mirroring an untyped `let` (spec.md
		// §3.6).

	case *ast.StaticDecl:
		t := r.resolveType(&dd.Type)
		r.resolveExpr(dd.Value)
		if s := r.ctx.Pool.At(dd.Sym); s != nil {
			s.ValueType = t
		}

	case *ast.ModDecl:
		modSym := r.ctx.Pool.At(dd.Sym)
		r.enterContainer(dd.Sym, modSym.Scope, func() { r.resolveDeclList(dd.Decls) })

	case *ast.TypeDecl:
		r.resolveAliasDecl(dd)

	case *ast.ErrTypeDecl:
		s := r.ctx.Pool.At(dd.Sym)
		r.enterContainer(dd.Sym, s.Scope, func() { r.resolveDeclList(dd.Decls) })

	case *ast.TraitDecl:
		// A trait does not reassign cur_sym/self_sym: its methods still
		// fall back to whatever container held the trait (spec.md §4.3).
		r.resolveDeclList(dd.Decls)

	case *ast.UnionDecl:
		s := r.ctx.Pool.At(dd.Sym)
		r.enterContainer(dd.Sym, s.Scope, func() {
			r.enterSelf(dd.Sym, func() {
				for i := range dd.Variants {
					r.resolveType(&dd.Variants[i])
				}
				r.resolveDeclList(dd.Decls)
			})
		})

	case *ast.EnumDecl:
		s := r.ctx.Pool.At(dd.Sym)
		r.enterContainer(dd.Sym, s.Scope, func() {
			r.enterSelf(dd.Sym, func() { r.resolveDeclList(dd.Decls) })
		})

	case *ast.StructFieldDecl:
		t := r.resolveType(&dd.Type)
		if dd.HasDefault {
			r.resolveExpr(dd.Default)
		}
		if s := r.ctx.Pool.At(dd.Sym); s != nil {
			s.ArgType = t
		}

	case *ast.StructDecl:
		s := r.ctx.Pool.At(dd.Sym)
		r.enterContainer(dd.Sym, s.Scope, func() {
			r.enterSelf(dd.Sym, func() { r.resolveDeclList(dd.Decls) })
		})

	case *ast.ExtendDecl:
		r.resolveExtendDecl(dd)

	case *ast.FnDecl:
		r.resolveFnDecl(dd)

	case *ast.DestructorDecl:
		if dd.Body != nil {
			r.resolveFnBody(dd.Body)
		}

	case *ast.TestDecl:
		if dd.Body != nil {
			r.resolveFnBody(dd.Body)
		}

	default:
		r.h.Errorf(d.Position(), "internal: resolver has no case for %T", d)
	}
}

func (r *Resolver) resolveExternProto(proto *ast.ExternFnProto) {
	for i := range proto.Args {
		t := r.resolveType(&proto.Args[i].Type)
		if s := r.ctx.Pool.At(proto.Args[i].Sym); s != nil {
			s.ArgType = t
		}
	}
	var ret sym.Type
	if proto.HasRet {
		ret = r.resolveType(&proto.Ret)
	} else {
		ret = r.ctx.WellKnown.Void
	}
	if s := r.ctx.Pool.At(proto.Sym); s != nil && s.Fn != nil {
		s.Fn.Ret = ret
	}
}

// resolveAliasDecl resolves a `type NAME = T;`'s underlying TypeNode at most
// once, guarding against a cyclic chain of aliases (spec.md §4.3).
func (r *Resolver) resolveAliasDecl(dd *ast.TypeDecl) sym.Type {
	if !dd.Base.Resolved.IsZero() {
		return dd.Base.Resolved
	}
	if r.aliasVisiting[dd.Sym] {
		r.h.Errorf(dd.Pos, "cyclic type alias `%s`", dd.Name)
		return sym.Unknown(dd)
	}
	r.aliasVisiting[dd.Sym] = true
	t := r.resolveType(&dd.Base)
	delete(r.aliasVisiting, dd.Sym)
	if s := r.ctx.Pool.At(dd.Sym); s != nil {
		s.Alias = t
	}
	return t
}

// resolveExtendDecl resolves the `extend T { ... }` target, lazily giving an
// interned Array/Slice/Tuple shape symbol a scope the first time it is
// extended, registers the block's methods against it through the registrar,
// then resolves those methods with selfSym set to the target (cur_sym is
// left unchanged, matching original_source/src/resolver.py's ExtendDecl,
// which never reassigns cur_sym — only self_sym).
func (r *Resolver) resolveExtendDecl(dd *ast.ExtendDecl) {
	t := r.resolveType(&dd.Target)
	if t.Tag != sym.TagNamed {
		r.h.Errorf(dd.Pos, "cannot extend a non-named type")
		return
	}
	targetSym := r.ctx.Pool.At(t.Named)
	if targetSym == nil {
		return
	}
	if targetSym.Scope == nil {
		targetSym.Scope = sym.NewScope(r.ctx.Pool, r.ctx.Universe.Scope, t.Named, false)
	}
	r.reg.RegisterExtendDecls(t.Named, targetSym.Scope, r.curSymScope, dd.Decls)
	r.enterSelf(t.Named, func() {
		r.resolveDeclList(dd.Decls)
	})
}

func (r *Resolver) resolveFnDecl(dd *ast.FnDecl) {
	for i := range dd.Args {
		arg := &dd.Args[i]
		t := r.resolveType(&arg.Type)
		if s := r.ctx.Pool.At(arg.Sym); s != nil {
			s.ArgType = t
		}
		if dd.Body != nil && dd.Body.Scope != nil {
			dd.Body.Scope.UpdateTyp(arg.Name, t)
		}
		if arg.HasDefault {
			r.resolveExpr(arg.Default)
		}
	}
	var ret sym.Type
	if dd.HasRet {
		ret = r.resolveType(&dd.Ret)
	} else {
		ret = r.ctx.WellKnown.Void
	}
	if s := r.ctx.Pool.At(dd.Sym); s != nil && s.Fn != nil {
		s.Fn.Ret = ret
	}
	if dd.HasBody && dd.Body != nil {
		r.resolveFnBody(dd.Body)
	}
}

// resolveFnBody resolves a function/test/destructor body using the scope
// the registrar already created for it — unlike a nested block, this scope
// is reused directly, never wrapped in an extra lexical layer, since that is
// where the registrar bound the argument/self objects (spec.md §4.2/§4.3).
func (r *Resolver) resolveFnBody(b *ast.Block) {
	saved := r.curScope
	if b.Scope != nil {
		r.curScope = b.Scope
	}
	for _, st := range b.Stmts {
		r.resolveStmt(st)
	}
	if b.HasTail {
		r.resolveExpr(b.Tail)
	}
	r.curScope = saved
}

// checkVisibility reports a privacy violation when id names a private
// symbol found outside the symbol that declares it (spec.md §4.3: "sym.vis
// == Private and sym.parent != cur_sym").
func (r *Resolver) checkVisibility(id sym.ID, pos token.Position) {
	s := r.ctx.Pool.At(id)
	if s != nil && s.Vis == sym.Private && s.Parent != r.curSym {
		r.h.Errorf(pos, "%s `%s` is private", s.Kind, s.Name)
	}
}

// findMember looks up name directly in container's own scope (no parent
// walk — module/type scopes are never lexical) and checks its visibility
// (spec.md §4.3's find_symbol).
func (r *Resolver) findMember(container *sym.Symbol, name string, pos token.Position) (sym.ID, bool) {
	if container != nil && container.Scope != nil {
		if id, ok := container.Scope.Lookup(name); ok {
			r.checkVisibility(id, pos)
			return id, true
		}
	}
	kind := sym.KindInvalid
	cname := "?"
	if container != nil {
		kind, cname = container.Kind, container.Name
	}
	r.h.Errorf(pos, "could not find `%s` in %s `%s`", name, kind, cname)
	return sym.ID{}, false
}
