package symtab_test

import (
	"testing"

	"github.com/nanolang/nano/lang/symtab"
	"github.com/stretchr/testify/require"
)

func TestDeclareAndLookupGlobalScope(t *testing.T) {
	tab := symtab.New()
	tab.Declare("x", symtab.Number)

	sym, ok := tab.Lookup("x")
	require.True(t, ok)
	require.Equal(t, "x", sym.Name)
	require.Equal(t, symtab.Number, sym.Type)
	require.Equal(t, 0, sym.Depth)
}

func TestLookupMissingReturnsFalse(t *testing.T) {
	tab := symtab.New()
	_, ok := tab.Lookup("nope")
	require.False(t, ok)
}

func TestRedeclarationInSameScopeOverwrites(t *testing.T) {
	tab := symtab.New()
	tab.Declare("x", symtab.Number)
	tab.Declare("x", symtab.String)

	sym, ok := tab.Lookup("x")
	require.True(t, ok)
	require.Equal(t, symtab.String, sym.Type)
}

func TestInnerScopeShadowsOuter(t *testing.T) {
	tab := symtab.New()
	tab.Declare("x", symtab.Number)
	tab.EnterScope()
	tab.Declare("x", symtab.String)

	sym, ok := tab.Lookup("x")
	require.True(t, ok)
	require.Equal(t, symtab.String, sym.Type)
	require.Equal(t, 1, sym.Depth)

	tab.ExitScope()
	sym, ok = tab.Lookup("x")
	require.True(t, ok)
	require.Equal(t, symtab.Number, sym.Type)
	require.Equal(t, 0, sym.Depth)
}

func TestExitScopeDoesNotMutateOuterScope(t *testing.T) {
	tab := symtab.New()
	tab.Declare("x", symtab.Number)
	tab.EnterScope()
	tab.Declare("y", symtab.Boolean)
	tab.ExitScope()

	_, ok := tab.Lookup("y")
	require.False(t, ok, "inner-scope binding must not leak after exit")

	sym, ok := tab.Lookup("x")
	require.True(t, ok)
	require.Equal(t, symtab.Number, sym.Type)
}

func TestExitingGlobalScopeIsNoOp(t *testing.T) {
	tab := symtab.New()
	tab.Declare("x", symtab.Number)
	tab.ExitScope()
	tab.ExitScope()

	require.Equal(t, 0, tab.Depth())
	_, ok := tab.Lookup("x")
	require.True(t, ok)
}

func TestIsDeclaredInCurrentScope(t *testing.T) {
	tab := symtab.New()
	tab.Declare("x", symtab.Number)
	tab.EnterScope()

	require.False(t, tab.IsDeclaredInCurrentScope("x"))
	tab.Declare("y", symtab.Number)
	require.True(t, tab.IsDeclaredInCurrentScope("y"))
}

func TestCurrentScopeSymbolsOnlyInnermost(t *testing.T) {
	tab := symtab.New()
	tab.Declare("x", symtab.Number)
	tab.EnterScope()
	tab.Declare("y", symtab.String)

	syms := tab.CurrentScopeSymbols()
	require.Len(t, syms, 1)
	require.Equal(t, "y", syms[0].Name)
}

func TestAllSymbolsAcrossScopes(t *testing.T) {
	tab := symtab.New()
	tab.Declare("x", symtab.Number)
	tab.EnterScope()
	tab.Declare("y", symtab.String)

	syms := tab.AllSymbols()
	require.Len(t, syms, 2)
}

func TestResetClearsEverything(t *testing.T) {
	tab := symtab.New()
	tab.Declare("x", symtab.Number)
	tab.EnterScope()
	tab.Declare("y", symtab.String)

	tab.Reset()
	require.Equal(t, 0, tab.Depth())
	_, ok := tab.Lookup("x")
	require.False(t, ok)
	_, ok = tab.Lookup("y")
	require.False(t, ok)
}
