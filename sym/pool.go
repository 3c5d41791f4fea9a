package sym

import "github.com/rivet-lang/rivetc/internal/arena"

// Pool is the per-compilation arena backing every [Symbol] allocated during
// registration (spec.md §4.2). All [Scope]s in a single [sema.CompilerContext]
// share one Pool, which is what lets a child symbol's [ID] outlive the Go
// call stack that created it and be dereferenced later by the resolver and
// checker.
type Pool struct {
	arena arena.Arena[Symbol]
}

// New allocates sym in the pool and returns a stable [ID] for it.
func (p *Pool) New(s Symbol) ID {
	return p.arena.New(s)
}

// At dereferences id. At returns nil for a nil id; dereferencing a nil id
// via [ID.In] directly panics, so prefer this accessor outside of hot
// loops where the panic is itself the desired bounds check.
func (p *Pool) At(id ID) *Symbol {
	if id.Nil() {
		return nil
	}
	return id.In(&p.arena)
}
