package filter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnd_FlattensAndDropsNil(t *testing.T) {
	e := And(Eq("a", 1), nil, And(Eq("b", 2), Eq("c", 3)))
	and, ok := e.(AndExpr)
	require.True(t, ok)
	require.Len(t, and.Exprs, 3)
}

func TestAnd_NothingPoisonsConjunction(t *testing.T) {
	e := And(Eq("a", 1), Nothing())
	require.IsType(t, NothingExpr{}, e)
}

func TestAnd_SingleOperandCollapses(t *testing.T) {
	require.Equal(t, Eq("a", 1), And(Eq("a", 1)))
}

func TestOr_DropsNothingTerms(t *testing.T) {
	e := Or(Nothing(), Eq("a", 1), Nothing())
	require.Equal(t, Eq("a", 1), e)
}

func TestOr_EmptyMatchesNothing(t *testing.T) {
	require.IsType(t, NothingExpr{}, Or())
	require.IsType(t, NothingExpr{}, Or(Nothing(), Nothing()))
}

func TestOr_Flattens(t *testing.T) {
	e := Or(Eq("a", 1), Or(Eq("b", 2), Eq("c", 3)))
	or, ok := e.(OrExpr)
	require.True(t, ok)
	require.Len(t, or.Exprs, 3)
}
