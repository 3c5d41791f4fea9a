// Package registrar implements the first of the two name-binding passes
// described in spec.md §4.2: a single walk over every parsed declaration
// that creates the corresponding [sym.Symbol], attaches it to its parent
// scope, and descends into children. It runs once per compilation, before
// the resolver, and never inspects a TypeNode's syntactic shape — that is
// the resolver's job (spec.md §4.3).
package registrar

import (
	"github.com/rivet-lang/rivetc/ast"
	"github.com/rivet-lang/rivetc/report"
	"github.com/rivet-lang/rivetc/sema"
	"github.com/rivet-lang/rivetc/sym"
	"github.com/rivet-lang/rivetc/token"
)

// Registrar owns no state of its own beyond the compilation context and
// diagnostic sink; every other piece of state (current scope, current
// lexical fallback scope, current parent symbol) is threaded explicitly
// through the recursive walk, mirroring the teacher's single-owner-per-pass
// style.
type Registrar struct {
	ctx *sema.CompilerContext
	h   *report.Handler
}

// New creates a Registrar that will allocate symbols out of ctx.Pool and
// report duplicate-name errors to h.
func New(ctx *sema.CompilerContext, h *report.Handler) *Registrar {
	return &Registrar{ctx: ctx, h: h}
}

// Files registers every declaration of every file against the package
// scope. Multiple files of the same compilation share that single scope,
// so a `mod`/`struct`/... declared in one file collides, correctly, with
// one declared in another (spec.md §4.2's "duplicate names within a scope
// fail with redefinition").
func (r *Registrar) Files(files []*ast.SourceFile) {
	pkgScope := r.ctx.Pool.At(r.ctx.PkgSym).Scope
	for _, f := range files {
		r.declList(f.Decls, pkgScope, pkgScope, r.ctx.PkgSym)
	}
}

// add wraps scope.Add, turning a collision into a diagnostic at pos rather
// than a Go error value threaded through every call site.
func (r *Registrar) add(scope *sym.Scope, s sym.Symbol) sym.ID {
	id, err := scope.Add(s)
	if err != nil {
		r.h.Errorf(s.Pos, "%s", err)
		return sym.ID{}
	}
	return id
}

// declList registers each declaration in decls. scope is the structural
// (module/type) scope new top-level symbols attach to; curSymScope is the
// scope a nested function body's argument/local scope falls back to, on a
// lexical-lookup miss, for one further (non-recursive) check — the scope
// owned by whatever symbol is the current "container" in the sense
// spec.md §4.3's resolver tracks as cur_sym. Entering a Mod, Struct,
// Union or Enum reassigns cur_sym (so curSymScope becomes that type's own
// scope: a method can bare-name-reference a sibling associated const or
// function); entering a Trait does not (a trait's own methods still fall
// back to whatever container held the trait), matching
// original_source/src/resolver.py's resolve_decl exactly.
func (r *Registrar) declList(decls []ast.Decl, scope, curSymScope *sym.Scope, parent sym.ID) {
	for _, d := range decls {
		r.decl(d, scope, curSymScope, parent)
	}
}

func (r *Registrar) decl(d ast.Decl, scope, curSymScope *sym.Scope, parent sym.ID) {
	switch dd := d.(type) {
	case *ast.EmptyDecl:
		// nothing to register.

	case *ast.ExternPkgDecl:
		// Registered as an empty-scope module placeholder so that a later
		// `name::member` path distinguishes "no such member in this
		// package" from "undeclared external package" (spec.md §4.3's
		// resolve_path_expr fallback).
		epScope := sym.NewScope(r.ctx.Pool, nil, sym.ID{}, false)
		dd.Sym = r.add(scope, sym.Symbol{
			Kind: sym.KindModule, Name: dd.Name, Vis: sym.Public, Pos: dd.Pos, Parent: parent, Scope: epScope,
		})

	case *ast.ExternDecl:
		for i := range dd.Protos {
			r.registerExternProto(&dd.Protos[i], dd.ABI, scope, parent)
		}

	case *ast.ConstDecl:
		dd.Sym = r.add(scope, sym.Symbol{
			Kind: sym.KindConst, Name: dd.Name, Vis: dd.Vis, Pos: dd.Pos, Parent: parent,
		})

	case *ast.StaticDecl:
		dd.Sym = r.add(scope, sym.Symbol{
			Kind: sym.KindStatic, Name: dd.Name, Vis: dd.Vis, Pos: dd.Pos, Parent: parent, IsMut: dd.IsMut,
		})

	case *ast.ModDecl:
		modScope := sym.NewScope(r.ctx.Pool, scope, sym.ID{}, false)
		id := r.add(scope, sym.Symbol{
			Kind: sym.KindModule, Name: dd.Name, Vis: dd.Vis, Pos: dd.Pos, Parent: parent, Scope: modScope,
		})
		dd.Sym = id
		// A module reassigns cur_sym, so its own scope becomes the
		// fallback target for any function nested directly inside it.
		r.declList(dd.Decls, modScope, modScope, id)

	case *ast.TypeDecl:
		dd.Sym = r.add(scope, sym.Symbol{
			Kind: sym.KindType, TypeKind: sym.TypeKindAlias, Name: dd.Name, Vis: dd.Vis, Pos: dd.Pos, Parent: parent,
		})

	case *ast.ErrTypeDecl:
		id := r.add(scope, sym.Symbol{
			Kind: sym.KindType, TypeKind: sym.TypeKindErrType, Name: dd.Name, Vis: dd.Vis, Pos: dd.Pos, Parent: parent,
		})
		dd.Sym = id
		typeScope := sym.NewScope(r.ctx.Pool, scope, id, false)
		r.ctx.Pool.At(id).Scope = typeScope
		// An errtype behaves like Struct/Union/Enum for this purpose: it
		// reassigns cur_sym for its own associated declarations.
		r.declList(dd.Decls, typeScope, typeScope, id)

	case *ast.TraitDecl:
		typeScope := sym.NewScope(r.ctx.Pool, scope, sym.ID{}, false)
		id := r.add(scope, sym.Symbol{
			Kind: sym.KindType, TypeKind: sym.TypeKindTrait, Name: dd.Name, Vis: dd.Vis, Pos: dd.Pos, Parent: parent, Scope: typeScope,
		})
		dd.Sym = id
		// A trait does NOT reassign cur_sym in the reference resolver: its
		// methods still fall back to whatever container held the trait.
		r.declList(dd.Decls, typeScope, curSymScope, id)

	case *ast.UnionDecl:
		typeScope := sym.NewScope(r.ctx.Pool, scope, sym.ID{}, false)
		id := r.add(scope, sym.Symbol{
			Kind: sym.KindType, TypeKind: sym.TypeKindUnion, Name: dd.Name, Vis: dd.Vis, Pos: dd.Pos, Parent: parent, Scope: typeScope,
		})
		dd.Sym = id
		// Variants are anonymous member types, not named constructors:
		// each one's TypeNode.Resolved slot is filled in place by the
		// resolver, so no per-variant symbol is needed here. Union
		// reassigns cur_sym, same as Struct/Enum.
		r.declList(dd.Decls, typeScope, typeScope, id)

	case *ast.EnumDecl:
		typeScope := sym.NewScope(r.ctx.Pool, scope, sym.ID{}, false)
		id := r.add(scope, sym.Symbol{
			Kind: sym.KindType, TypeKind: sym.TypeKindEnum, Name: dd.Name, Vis: dd.Vis, Pos: dd.Pos, Parent: parent, Scope: typeScope,
		})
		dd.Sym = id
		enumSym := r.ctx.Pool.At(id)
		for _, variant := range dd.Variants {
			vid := r.add(typeScope, sym.Symbol{
				Kind: sym.KindConst, Name: variant, Vis: sym.Public, Pos: dd.Pos, Parent: id, ValueType: sym.Named(id),
			})
			enumSym.Fields = append(enumSym.Fields, vid)
		}
		r.declList(dd.Decls, typeScope, typeScope, id)

	case *ast.StructDecl:
		typeScope := sym.NewScope(r.ctx.Pool, scope, sym.ID{}, false)
		id := r.add(scope, sym.Symbol{
			Kind: sym.KindType, TypeKind: sym.TypeKindStruct, Name: dd.Name, Vis: dd.Vis, Pos: dd.Pos, Parent: parent, Scope: typeScope,
		})
		dd.Sym = id
		structSym := r.ctx.Pool.At(id)
		for _, inner := range dd.Decls {
			if field, ok := inner.(*ast.StructFieldDecl); ok {
				fid := r.ctx.Pool.New(sym.Symbol{
					Kind: sym.KindArg, Name: field.Name, Vis: field.Vis, Pos: field.Pos, Parent: id,
					HasDefault: field.HasDefault, ObjMut: field.IsMut,
				})
				field.Sym = fid
				structSym.Fields = append(structSym.Fields, fid)
				continue
			}
			// Struct reassigns cur_sym, same as Union/Enum.
			r.decl(inner, typeScope, typeScope, id)
		}

	case *ast.ExtendDecl:
		// The extended type is not known until its TypeNode is resolved,
		// so method registration for `extend` happens in the resolver
		// (spec.md §4.3), not here. Descending now would register
		// methods into a scope nobody can later find through the
		// extended type's own symbol.

	case *ast.FnDecl:
		r.registerFn(dd, scope, curSymScope, parent)

	case *ast.DestructorDecl:
		fnSym := &sym.FnSig{IsMethod: true, SelfIsRef: true, SelfIsMut: true}
		id := r.ctx.Pool.New(sym.Symbol{Kind: sym.KindFn, Name: "~self", Vis: sym.Private, Pos: dd.Pos, Parent: parent, Fn: fnSym})
		dd.Sym = id
		if parentSym := r.ctx.Pool.At(parent); parentSym != nil {
			parentSym.HasDestructor = true
			parentSym.Destructor = id
		}
		if dd.Body != nil {
			dd.Body.Scope = sym.NewScope(r.ctx.Pool, curSymScope, id, true)
			r.addSelf(dd.Body.Scope, true, true, parent, dd.Pos)
		}

	case *ast.TestDecl:
		if dd.Body != nil {
			dd.Body.Scope = sym.NewScope(r.ctx.Pool, curSymScope, sym.ID{}, true)
		}

	default:
		r.h.Errorf(d.Position(), "internal: registrar has no case for %T", d)
	}
}

func (r *Registrar) registerExternProto(proto *ast.ExternFnProto, abi string, scope *sym.Scope, parent sym.ID) {
	fnSym := &sym.FnSig{IsExtern: true, ExternABI: abi}
	id := r.add(scope, sym.Symbol{Kind: sym.KindFn, Name: proto.Name, Vis: sym.Public, Pos: proto.Pos, Parent: parent, Fn: fnSym})
	proto.Sym = id
	for i := range proto.Args {
		argID := r.ctx.Pool.New(sym.Symbol{
			Kind: sym.KindArg, Name: proto.Args[i].Name, Pos: proto.Args[i].Pos, Parent: id,
			HasDefault: proto.Args[i].HasDefault,
		})
		proto.Args[i].Sym = argID
		fnSym.Args = append(fnSym.Args, argID)
	}
}

// registerFn creates the KindFn symbol for dd, its argument symbols, and
// (for a method with a body) the lexical body scope plus a synthesized
// hidden `self` Object (spec.md §4.2). A body-less `fn` (only legal inside
// a `trait` or `extern` block, spec.md §3.4) gets argument symbols but no
// scope, since the resolver has no body to walk.
func (r *Registrar) registerFn(dd *ast.FnDecl, scope, curSymScope *sym.Scope, parent sym.ID) {
	fnSym := &sym.FnSig{
		IsMethod: dd.IsMethod, SelfIsRef: dd.SelfIsRef, SelfIsMut: dd.SelfIsMut,
		HasNamedArgs: dd.HasNamedArgs, IsUnsafe: dd.IsUnsafe,
	}
	id := r.add(scope, sym.Symbol{Kind: sym.KindFn, Name: dd.Name, Vis: dd.Vis, Pos: dd.Pos, Parent: parent, Fn: fnSym})
	dd.Sym = id

	var bodyScope *sym.Scope
	if dd.HasBody && dd.Body != nil {
		bodyScope = sym.NewScope(r.ctx.Pool, curSymScope, id, true)
		dd.Body.Scope = bodyScope
		if dd.IsMethod {
			r.addSelf(bodyScope, dd.SelfIsRef, dd.SelfIsMut, parent, dd.Pos)
		}
	}

	for i := range dd.Args {
		arg := &dd.Args[i]
		argID := r.ctx.Pool.New(sym.Symbol{
			Kind: sym.KindArg, Name: arg.Name, Pos: arg.Pos, Parent: id, HasDefault: arg.HasDefault,
		})
		arg.Sym = argID
		fnSym.Args = append(fnSym.Args, argID)
		if bodyScope != nil {
			if err := bodyScope.Add(sym.Symbol{Kind: sym.KindObject, Name: arg.Name, Pos: arg.Pos, Parent: id}); err != nil {
				r.h.Errorf(arg.Pos, "%s", err)
			}
		}
	}
}

// RegisterExtendDecls registers the methods of an `extend` block against
// targetScope, the scope owned by the type symbol `extend` resolved its
// target to (spec.md §4.3's "each inner method is registered against the
// interned symbol with a synthesized self object"). The resolver calls
// this once it has resolved the ExtendDecl's Target TypeNode to a
// concrete symbol — the registrar could not do this itself in its own
// pass, since at registration time an extend target may name a type not
// yet seen, or an interned Array/Slice/Tuple shape that does not exist
// until the resolver interns it.
func (r *Registrar) RegisterExtendDecls(target sym.ID, targetScope, curSymScope *sym.Scope, decls []ast.Decl) {
	r.declList(decls, targetScope, curSymScope, target)
}

// addSelf binds the hidden `self` receiver Object into a method's body
// scope, typed `Self` or `&Self` per the receiver form (spec.md §4.2).
// selfType names the enclosing struct/union/enum/trait symbol directly:
// the registrar already knows it, since the type's own symbol was created
// before its methods were descended into.
func (r *Registrar) addSelf(scope *sym.Scope, isRef, isMut bool, typeSym sym.ID, pos token.Position) {
	t := sym.Named(typeSym)
	if isRef {
		t = sym.Ref(t)
	}
	if err := scope.Add(sym.Symbol{Kind: sym.KindObject, Name: "self", Pos: pos, Parent: typeSym, ObjType: t, ObjMut: isMut}); err != nil {
		r.h.Errorf(pos, "%s", err)
	}
}
