package accesscontrol

import "strings"

// Permission is one of the five independent permission kinds a node grants.
// The set is closed; persistence and predicate translation enumerate it.
type Permission string

const (
	PermissionAdministration Permission = "ADMINISTRATION"
	PermissionCreate         Permission = "CREATE"
	PermissionDelete         Permission = "DELETE"
	PermissionRead           Permission = "READ"
	PermissionWrite          Permission = "WRITE"
)

func Permissions() []Permission {
	return []Permission{
		PermissionAdministration,
		PermissionCreate,
		PermissionDelete,
		PermissionRead,
		PermissionWrite,
	}
}

func (p Permission) Valid() bool {
	switch p {
	case PermissionAdministration, PermissionCreate, PermissionDelete, PermissionRead, PermissionWrite:
		return true
	}
	return false
}

// FieldKey is the permission's segment in logical predicate field paths,
// e.g. "accessControl.read.users".
func (p Permission) FieldKey() string {
	return strings.ToLower(string(p))
}
