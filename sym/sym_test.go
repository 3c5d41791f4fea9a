package sym_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivet-lang/rivetc/sym"
)

func TestScopeAddAndLookup(t *testing.T) {
	t.Parallel()

	pool := &sym.Pool{}
	scope := sym.NewScope(pool, nil, sym.ID{}, false)

	id, err := scope.Add(sym.Symbol{Kind: sym.KindConst, Name: "Max"})
	require.NoError(t, err)

	got, ok := scope.Lookup("Max")
	require.True(t, ok)
	assert.Equal(t, id, got)
}

func TestScopeAddDuplicateNameIsAnError(t *testing.T) {
	t.Parallel()

	pool := &sym.Pool{}
	scope := sym.NewScope(pool, nil, sym.ID{}, false)

	_, err := scope.Add(sym.Symbol{Kind: sym.KindConst, Name: "Max"})
	require.NoError(t, err)

	_, err = scope.Add(sym.Symbol{Kind: sym.KindConst, Name: "Max"})
	assert.Error(t, err)
}

func TestScopeLookup_LexicalFallsThroughToParent(t *testing.T) {
	t.Parallel()

	pool := &sym.Pool{}
	outer := sym.NewScope(pool, nil, sym.ID{}, false)
	_, err := outer.Add(sym.Symbol{Kind: sym.KindConst, Name: "X"})
	require.NoError(t, err)

	inner := sym.NewScope(pool, outer, sym.ID{}, true)
	_, ok := inner.Lookup("X")
	assert.True(t, ok, "a lexical scope should fall through to its parent")
}

func TestScopeLookup_NonLexicalDoesNotFallThrough(t *testing.T) {
	t.Parallel()

	pool := &sym.Pool{}
	outer := sym.NewScope(pool, nil, sym.ID{}, false)
	_, err := outer.Add(sym.Symbol{Kind: sym.KindConst, Name: "X"})
	require.NoError(t, err)

	// A module/type scope (lexical=false) must not see names from its
	// structurally enclosing scope.
	inner := sym.NewScope(pool, outer, sym.ID{}, false)
	_, ok := inner.Lookup("X")
	assert.False(t, ok)
}

func TestScopeLookup_ShadowingInnerNameWins(t *testing.T) {
	t.Parallel()

	pool := &sym.Pool{}
	outer := sym.NewScope(pool, nil, sym.ID{}, false)
	outerID, err := outer.Add(sym.Symbol{Kind: sym.KindConst, Name: "X"})
	require.NoError(t, err)

	inner := sym.NewScope(pool, outer, sym.ID{}, true)
	innerID, err := inner.Add(sym.Symbol{Kind: sym.KindConst, Name: "X"})
	require.NoError(t, err)
	assert.NotEqual(t, outerID, innerID)

	got, ok := inner.Lookup("X")
	require.True(t, ok)
	assert.Equal(t, innerID, got)
}

func TestPoolAt_NilIDReturnsNil(t *testing.T) {
	t.Parallel()

	pool := &sym.Pool{}
	assert.Nil(t, pool.At(sym.ID{}))
}

func TestPoolAt_RoundTripsAllocatedSymbol(t *testing.T) {
	t.Parallel()

	pool := &sym.Pool{}
	id := pool.New(sym.Symbol{Kind: sym.KindFn, Name: "f"})
	got := pool.At(id)
	require.NotNil(t, got)
	assert.Equal(t, "f", got.Name)
}

func TestTypeEqual(t *testing.T) {
	t.Parallel()

	i32Sym := sym.ID{}
	assert.True(t, sym.Equal(sym.Named(i32Sym), sym.Named(i32Sym)))
	assert.False(t, sym.Equal(sym.Ptr(sym.Named(i32Sym)), sym.Named(i32Sym)))
	assert.True(t, sym.Equal(sym.Ptr(sym.Named(i32Sym)), sym.Ptr(sym.Named(i32Sym))))
	assert.True(t, sym.Equal(sym.Array(sym.Named(i32Sym), "4"), sym.Array(sym.Named(i32Sym), "4")))
	assert.False(t, sym.Equal(sym.Array(sym.Named(i32Sym), "4"), sym.Array(sym.Named(i32Sym), "8")))
}

func TestTypeIsZeroAndIsUnknown(t *testing.T) {
	t.Parallel()

	var zero sym.Type
	assert.True(t, zero.IsZero())
	assert.False(t, zero.IsUnknown())

	unk := sym.Unknown(nil)
	assert.True(t, unk.IsUnknown())
	assert.False(t, unk.IsZero())
}
