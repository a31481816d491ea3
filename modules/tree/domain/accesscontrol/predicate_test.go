package accesscontrol

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/routenest/routenest/pkg/filter"
)

func collectTerms(t *testing.T, e filter.Expr) []filter.Expr {
	t.Helper()
	if or, ok := e.(filter.OrExpr); ok {
		return or.Exprs
	}
	return []filter.Expr{e}
}

func TestPredicate_FullIdentity(t *testing.T) {
	p := Principal{
		UserID: "stephan",
		Roles:  []string{"ROLE_USER"},
		Groups: []string{"friends", "family"},
	}
	terms := collectTerms(t, Predicate(PermissionRead, true, p))

	require.Len(t, terms, 6)
	require.Contains(t, terms, filter.Eq("accessControl.owner", "stephan"))
	require.Contains(t, terms, filter.Eq("accessControl.read.guest", true))
	require.Contains(t, terms, filter.Contains("accessControl.read.users", "stephan"))
	require.Contains(t, terms, filter.Contains("accessControl.read.roles", "ROLE_USER"))
	require.Contains(t, terms, filter.Contains("accessControl.read.groups", "friends"))
	require.Contains(t, terms, filter.Contains("accessControl.read.groups", "family"))
}

func TestPredicate_ExcludesPublicWhenNotRequested(t *testing.T) {
	p := Principal{UserID: "stephan"}
	terms := collectTerms(t, Predicate(PermissionRead, false, p))
	for _, term := range terms {
		require.NotEqual(t, filter.Eq("accessControl.read.guest", true), term)
	}
}

func TestPredicate_EmptyRolesGroupsContributeNoTerms(t *testing.T) {
	p := Principal{UserID: "stephan"}
	terms := collectTerms(t, Predicate(PermissionWrite, false, p))
	require.Len(t, terms, 2)
}

func TestPredicate_AnonymousPublicOnly(t *testing.T) {
	e := Predicate(PermissionRead, true, Principal{})
	require.Equal(t, filter.Eq("accessControl.read.guest", true), e)
}

func TestPredicate_NoIdentityMatchesNothing(t *testing.T) {
	e := Predicate(PermissionRead, false, Principal{})
	require.IsType(t, filter.NothingExpr{}, e)
}

func TestPredicate_AndCombinable(t *testing.T) {
	p := Principal{UserID: "stephan"}
	e := filter.And(filter.Eq("id", "42"), Predicate(PermissionRead, false, p))
	and, ok := e.(filter.AndExpr)
	require.True(t, ok)
	require.Len(t, and.Exprs, 2)
}

func TestPredicateAny_CombinesAcrossPermissions(t *testing.T) {
	p := Principal{UserID: "stephan"}
	e := PredicateAny([]Permission{PermissionRead, PermissionWrite}, false, p)
	terms := collectTerms(t, e)
	require.Contains(t, terms, filter.Contains("accessControl.read.users", "stephan"))
	require.Contains(t, terms, filter.Contains("accessControl.write.users", "stephan"))
}

func TestPermissionFieldKey(t *testing.T) {
	require.Equal(t, "administration", PermissionAdministration.FieldKey())
	require.True(t, PermissionWrite.Valid())
	require.False(t, Permission("BOGUS").Valid())
}
