package accesscontrol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHasPermission_OwnerAlwaysGranted(t *testing.T) {
	acl := New("anna")
	for _, p := range Permissions() {
		require.True(t, acl.HasPermission(p, "anna", nil, nil), "owner must hold %s", p)
	}
}

func TestHasPermission_DeniesByDefault(t *testing.T) {
	acl := New("anna")
	require.False(t, acl.HasPermission(PermissionRead, "stephan", nil, nil))
	require.False(t, acl.HasPermission(PermissionRead, "", nil, nil))
}

func TestHasPermission_UserRoleGroupGrants(t *testing.T) {
	acl := New("anna")
	acl.AddUser("bob", PermissionRead)
	acl.AddRole("ROLE_EDITOR", PermissionWrite)
	acl.AddGroup("friends", PermissionRead, PermissionWrite)

	require.True(t, acl.HasPermission(PermissionRead, "bob", nil, nil))
	require.False(t, acl.HasPermission(PermissionWrite, "bob", nil, nil))

	require.True(t, acl.HasPermission(PermissionWrite, "carol", []string{"ROLE_EDITOR"}, nil))
	require.False(t, acl.HasPermission(PermissionRead, "carol", []string{"ROLE_EDITOR"}, nil))

	require.True(t, acl.HasPermission(PermissionWrite, "stephan", nil, []string{"friends"}))
	require.True(t, acl.HasPermission(PermissionRead, "stephan", nil, []string{"friends"}))
	require.False(t, acl.HasPermission(PermissionDelete, "stephan", nil, []string{"friends"}))
}

func TestHasPermission_GuestGrantsEveryone(t *testing.T) {
	acl := New("anna")
	acl.Set(PermissionRead).SetGuest(true)

	require.True(t, acl.HasPermission(PermissionRead, "anyone", nil, nil))
	require.True(t, acl.HasPermission(PermissionRead, "", nil, nil))
	require.False(t, acl.HasPermission(PermissionWrite, "anyone", nil, nil))
}

func TestAddUser_NeverStoresOwner(t *testing.T) {
	acl := New("anna")
	acl.AddUser("anna", PermissionRead, PermissionWrite)
	require.Empty(t, acl.Set(PermissionRead).Users())
	require.Empty(t, acl.Set(PermissionWrite).Users())
}

func TestMutators_SetIdempotent(t *testing.T) {
	acl := New("anna")
	acl.AddUser("bob", PermissionRead)
	acl.AddUser("bob", PermissionRead)
	require.Equal(t, []string{"bob"}, acl.Set(PermissionRead).Users())

	acl.RemoveUser("bob", PermissionRead)
	acl.RemoveUser("bob", PermissionRead)
	require.Empty(t, acl.Set(PermissionRead).Users())

	acl.RemoveRole("absent", PermissionRead)
	require.Empty(t, acl.Set(PermissionRead).Roles())
}

func TestEnsureAdminAccess_AllFiveSetsIdempotent(t *testing.T) {
	acl := New("anna")
	acl.EnsureAdminAccess("ROLE_ADMIN")
	acl.EnsureAdminAccess("ROLE_ADMIN")
	for _, p := range Permissions() {
		require.Equal(t, []string{"ROLE_ADMIN"}, acl.Set(p).Roles(), "permission %s", p)
	}
}

func TestWithOwner_ForcesOwnerAndStripsFromSets(t *testing.T) {
	supplied := New("someone-else")
	supplied.AddUser("stephan", PermissionRead)
	supplied.AddUser("bob", PermissionRead)

	merged := supplied.WithOwner("stephan")
	require.Equal(t, "stephan", merged.Owner())
	require.Equal(t, []string{"bob"}, merged.Set(PermissionRead).Users())
	require.True(t, merged.HasPermission(PermissionAdministration, "stephan", nil, nil))

	// The source is untouched.
	require.Equal(t, "someone-else", supplied.Owner())
	require.Contains(t, supplied.Set(PermissionRead).Users(), "stephan")
}

func TestNewAuthorizationSet_Dedups(t *testing.T) {
	s := NewAuthorizationSet(false, []string{"a", "a", "", "b"}, nil, nil)
	require.Equal(t, []string{"a", "b"}, s.Users())
}
