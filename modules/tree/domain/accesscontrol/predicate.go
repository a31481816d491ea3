package accesscontrol

import "github.com/routenest/routenest/pkg/filter"

// Logical field paths over which permission predicates are expressed. The
// persistence layer maps them to columns; nothing here knows about SQL.
const FieldOwner = "accessControl.owner"

func GuestField(p Permission) string  { return "accessControl." + p.FieldKey() + ".guest" }
func UsersField(p Permission) string  { return "accessControl." + p.FieldKey() + ".users" }
func RolesField(p Permission) string  { return "accessControl." + p.FieldKey() + ".roles" }
func GroupsField(p Permission) string { return "accessControl." + p.FieldKey() + ".groups" }

// Predicate builds the storage filter for "principal holds p on this node".
// It is the OR of the owner match, the public grant (only when includePublic),
// the user grant, and one term per role and group. An identity with no usable
// terms yields a predicate that matches nothing: deny by default.
func Predicate(p Permission, includePublic bool, principal Principal) filter.Expr {
	terms := make([]filter.Expr, 0, 3+len(principal.Roles)+len(principal.Groups))
	if principal.UserID != "" {
		terms = append(terms, filter.Eq(FieldOwner, principal.UserID))
	}
	if includePublic {
		terms = append(terms, filter.Eq(GuestField(p), true))
	}
	if principal.UserID != "" {
		terms = append(terms, filter.Contains(UsersField(p), principal.UserID))
	}
	for _, role := range principal.Roles {
		terms = append(terms, filter.Contains(RolesField(p), role))
	}
	for _, group := range principal.Groups {
		terms = append(terms, filter.Contains(GroupsField(p), group))
	}
	return filter.Or(terms...)
}

// PredicateAny builds the filter for "principal holds any of perms".
func PredicateAny(perms []Permission, includePublic bool, principal Principal) filter.Expr {
	terms := make([]filter.Expr, 0, len(perms))
	for _, p := range perms {
		terms = append(terms, Predicate(p, includePublic, principal))
	}
	return filter.Or(terms...)
}
