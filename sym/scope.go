package sym

import (
	"fmt"

	"github.com/tidwall/btree"
)

// Scope is a name→symbol map attached to a [Symbol] that owns it (spec.md
// §3.6). Lexical scopes (function bodies, blocks, for-loops) fall through
// to their parent on a lookup miss; type and module scopes do not.
//
// Names are kept in a [btree.Map] rather than a plain Go map so that
// diagnostics which enumerate a scope (e.g. "no such field; did you mean
// one of: ...") get a deterministic, already-sorted iteration order without
// re-sorting on every report.
type Scope struct {
	pool    *Pool
	parent  *Scope
	lexical bool
	owner   ID
	names   btree.Map[string, ID]
}

// NewScope creates a scope owned by owner. If lexical is true, [Scope.Lookup]
// continues into parent on a miss; otherwise (module/type scopes) it does
// not, per spec.md §3.6.
func NewScope(pool *Pool, parent *Scope, owner ID, lexical bool) *Scope {
	return &Scope{pool: pool, parent: parent, lexical: lexical, owner: owner}
}

// Parent returns the lexically or structurally enclosing scope, or nil at
// the universe root.
func (s *Scope) Parent() *Scope { return s.parent }

// Owner returns the symbol this scope is attached to.
func (s *Scope) Owner() ID { return s.owner }

// Pool returns the symbol pool backing this scope's (and every ancestor
// scope's) symbols.
func (s *Scope) Pool() *Pool { return s.pool }

// Add creates sym, attaches it to this scope under sym.Name, and returns
// its new ID. It fails with a redefinition error if the name already
// exists directly in this scope (spec.md §4.2): shadowing an outer scope's
// name is fine, only same-scope collisions are rejected.
func (s *Scope) Add(newSym Symbol) (ID, error) {
	if _, ok := s.names.Get(newSym.Name); ok {
		return ID{}, fmt.Errorf("redefinition of %q in this scope", newSym.Name)
	}
	id := s.pool.New(newSym)
	s.names.Set(newSym.Name, id)
	return id, nil
}

// Lookup finds name, walking to the parent scope only if this scope is
// lexical (spec.md §3.6: "type/module scopes do NOT fall through").
func (s *Scope) Lookup(name string) (ID, bool) {
	for scope := s; scope != nil; scope = nextScope(scope) {
		if id, ok := scope.names.Get(name); ok {
			return id, true
		}
		if !scope.lexical {
			break
		}
	}
	return ID{}, false
}

// LookupChain finds name by walking every structurally enclosing scope —
// this scope, then its parent, then that parent's parent, and so on up to
// the package root — regardless of each scope's own lexical flag. A type
// or module scope's own lexicality only governs whether a LOCAL OBJECT
// lookup may fall through it (see [Scope.Lookup]); a bare type name or a
// `::`-path's leftmost identifier is visible from any declaration nested
// inside the scope that declares it, however deeply, so that lookup always
// continues up the full containment chain (spec.md §4.3's cur_sym.lookup,
// which is itself a chain-following Symbol method, not a single-scope
// check — see DESIGN.md).
func (s *Scope) LookupChain(name string) (ID, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if id, ok := scope.names.Get(name); ok {
			return id, true
		}
	}
	return ID{}, false
}

func nextScope(s *Scope) *Scope {
	if !s.lexical {
		return nil
	}
	return s.parent
}

// Exists reports whether name is declared directly in this scope (no
// parent walk, regardless of lexicality).
func (s *Scope) Exists(name string) bool {
	_, ok := s.names.Get(name)
	return ok
}

// UpdateTyp rewrites the ObjType of the KindObject symbol named name,
// directly in this scope. The resolver uses it to give a function body's
// argument objects their resolved parameter types.
func (s *Scope) UpdateTyp(name string, t Type) bool {
	id, ok := s.names.Get(name)
	if !ok {
		return false
	}
	symPtr := s.pool.At(id)
	if symPtr == nil || symPtr.Kind != KindObject {
		return false
	}
	symPtr.ObjType = t
	return true
}

// Get dereferences id through this scope's pool.
func (s *Scope) Get(id ID) *Symbol {
	return s.pool.At(id)
}

// Len returns the number of names declared directly in this scope.
func (s *Scope) Len() int { return s.names.Len() }

// Names iterates every name declared directly in this scope, in sorted
// order, stopping early if fn returns false.
func (s *Scope) Names(fn func(name string, id ID) bool) {
	s.names.Scan(fn)
}
