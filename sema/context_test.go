package sema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivet-lang/rivetc/sema"
	"github.com/rivet-lang/rivetc/sym"
)

func TestNewCompilerContext_RegistersWellKnownTypesInUniverseScope(t *testing.T) {
	t.Parallel()

	ctx := sema.NewCompilerContext(sema.Prefs{Inputs: []string{"a.rv"}})
	require.NotNil(t, ctx.Pool)
	require.NotNil(t, ctx.Universe)
	assert.Equal(t, []string{"a.rv"}, ctx.Prefs.Inputs)

	id, ok := ctx.Universe.Scope.Lookup("i32")
	require.True(t, ok)
	assert.True(t, sym.Equal(sym.Named(id), ctx.WellKnown.I32))
}

func TestNewCompilerContext_PkgSymOwnsAnEmptyScope(t *testing.T) {
	t.Parallel()

	ctx := sema.NewCompilerContext(sema.Prefs{})
	pkg := ctx.Pool.At(ctx.PkgSym)
	require.NotNil(t, pkg)
	assert.Equal(t, sym.KindPackage, pkg.Kind)
	require.NotNil(t, pkg.Scope)
	assert.Equal(t, 0, pkg.Scope.Len())
}

func TestIsInt(t *testing.T) {
	t.Parallel()

	ctx := sema.NewCompilerContext(sema.Prefs{})
	assert.True(t, ctx.IsInt(ctx.WellKnown.I32))
	assert.True(t, ctx.IsInt(ctx.WellKnown.U8))
	assert.False(t, ctx.IsInt(ctx.WellKnown.F32))
	assert.False(t, ctx.IsInt(ctx.WellKnown.Bool))
}

func TestIsSignedAndUnsignedInt(t *testing.T) {
	t.Parallel()

	ctx := sema.NewCompilerContext(sema.Prefs{})
	assert.True(t, ctx.IsSignedInt(ctx.WellKnown.I64))
	assert.False(t, ctx.IsUnsignedInt(ctx.WellKnown.I64))
	assert.True(t, ctx.IsUnsignedInt(ctx.WellKnown.Usize))
	assert.False(t, ctx.IsSignedInt(ctx.WellKnown.Usize))
}

func TestIsFloat(t *testing.T) {
	t.Parallel()

	ctx := sema.NewCompilerContext(sema.Prefs{})
	assert.True(t, ctx.IsFloat(ctx.WellKnown.F32))
	assert.True(t, ctx.IsFloat(ctx.WellKnown.F64))
	assert.False(t, ctx.IsFloat(ctx.WellKnown.I32))
}
