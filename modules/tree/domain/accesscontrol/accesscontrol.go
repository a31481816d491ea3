package accesscontrol

import "slices"

// Principal is a requester identity: user id plus roles carried by the
// caller and group memberships resolved by an external collaborator.
type Principal struct {
	UserID string
	Roles  []string
	Groups []string
}

func (p Principal) Anonymous() bool {
	return p.UserID == ""
}

// AuthorizationSet holds one permission's grants: a public flag plus
// deduplicated, unordered sets of user ids, role names and group ids.
type AuthorizationSet struct {
	guest  bool
	users  []string
	roles  []string
	groups []string
}

func NewAuthorizationSet(guest bool, users, roles, groups []string) *AuthorizationSet {
	return &AuthorizationSet{
		guest:  guest,
		users:  dedup(users),
		roles:  dedup(roles),
		groups: dedup(groups),
	}
}

func (s *AuthorizationSet) Guest() bool      { return s.guest }
func (s *AuthorizationSet) Users() []string  { return slices.Clone(s.users) }
func (s *AuthorizationSet) Roles() []string  { return slices.Clone(s.roles) }
func (s *AuthorizationSet) Groups() []string { return slices.Clone(s.groups) }

func (s *AuthorizationSet) SetGuest(guest bool) { s.guest = guest }

func (s *AuthorizationSet) AddUser(id string)     { s.users = addMember(s.users, id) }
func (s *AuthorizationSet) AddRole(name string)   { s.roles = addMember(s.roles, name) }
func (s *AuthorizationSet) AddGroup(id string)    { s.groups = addMember(s.groups, id) }
func (s *AuthorizationSet) RemoveUser(id string)  { s.users = removeMember(s.users, id) }
func (s *AuthorizationSet) RemoveRole(name string) {
	s.roles = removeMember(s.roles, name)
}
func (s *AuthorizationSet) RemoveGroup(id string) { s.groups = removeMember(s.groups, id) }

// Allows reports whether the identity is granted by this set. The guest flag
// counts only when public access is being considered.
func (s *AuthorizationSet) Allows(userID string, roles, groups []string, includePublic bool) bool {
	if includePublic && s.guest {
		return true
	}
	if userID != "" && slices.Contains(s.users, userID) {
		return true
	}
	for _, r := range roles {
		if slices.Contains(s.roles, r) {
			return true
		}
	}
	for _, g := range groups {
		if slices.Contains(s.groups, g) {
			return true
		}
	}
	return false
}

func (s *AuthorizationSet) clone() *AuthorizationSet {
	return &AuthorizationSet{
		guest:  s.guest,
		users:  slices.Clone(s.users),
		roles:  slices.Clone(s.roles),
		groups: slices.Clone(s.groups),
	}
}

// AccessControl is a node's embedded access-control value: an owner who
// implicitly holds every permission, plus one AuthorizationSet per
// permission kind. The owner is never stored inside any set.
type AccessControl struct {
	owner string
	sets  map[Permission]*AuthorizationSet
}

// New returns an AccessControl where only the owner has access.
func New(owner string) *AccessControl {
	return &AccessControl{
		owner: owner,
		sets:  make(map[Permission]*AuthorizationSet, len(Permissions())),
	}
}

func (a *AccessControl) Owner() string { return a.owner }

// Set returns the AuthorizationSet for the permission, creating an empty one
// on first use.
func (a *AccessControl) Set(p Permission) *AuthorizationSet {
	if s, ok := a.sets[p]; ok {
		return s
	}
	s := &AuthorizationSet{}
	a.sets[p] = s
	return s
}

// SetAuthorizationSet replaces one permission's grants, stripping the owner.
func (a *AccessControl) SetAuthorizationSet(p Permission, s *AuthorizationSet) {
	c := s.clone()
	c.RemoveUser(a.owner)
	a.sets[p] = c
}

// HasPermission reports whether the identity holds the permission: the owner
// always does; otherwise the permission's set decides, public grants
// included.
func (a *AccessControl) HasPermission(p Permission, userID string, roles, groups []string) bool {
	if userID != "" && userID == a.owner {
		return true
	}
	return a.Set(p).Allows(userID, roles, groups, true)
}

// EnsureAdminAccess idempotently adds the role to all five permission sets.
func (a *AccessControl) EnsureAdminAccess(adminRole string) {
	for _, p := range Permissions() {
		a.Set(p).AddRole(adminRole)
	}
}

// AddUser grants the user the given permissions. The owner is never added to
// a set; ownership already implies everything.
func (a *AccessControl) AddUser(userID string, perms ...Permission) {
	if userID == a.owner {
		return
	}
	for _, p := range perms {
		a.Set(p).AddUser(userID)
	}
}

func (a *AccessControl) RemoveUser(userID string, perms ...Permission) {
	for _, p := range perms {
		a.Set(p).RemoveUser(userID)
	}
}

func (a *AccessControl) AddRole(role string, perms ...Permission) {
	for _, p := range perms {
		a.Set(p).AddRole(role)
	}
}

func (a *AccessControl) RemoveRole(role string, perms ...Permission) {
	for _, p := range perms {
		a.Set(p).RemoveRole(role)
	}
}

func (a *AccessControl) AddGroup(groupID string, perms ...Permission) {
	for _, p := range perms {
		a.Set(p).AddGroup(groupID)
	}
}

func (a *AccessControl) RemoveGroup(groupID string, perms ...Permission) {
	for _, p := range perms {
		a.Set(p).RemoveGroup(groupID)
	}
}

func (a *AccessControl) Clone() *AccessControl {
	c := New(a.owner)
	for p, s := range a.sets {
		c.sets[p] = s.clone()
	}
	return c
}

// WithOwner returns a copy owned by ownerID with ownerID stripped from every
// set. This is the merge rule for caller-supplied ACLs: the requester is
// forced in as owner and therefore holds all permissions.
func (a *AccessControl) WithOwner(ownerID string) *AccessControl {
	c := a.Clone()
	c.owner = ownerID
	for _, s := range c.sets {
		s.RemoveUser(ownerID)
	}
	return c
}

func dedup(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func addMember(members []string, v string) []string {
	if v == "" || slices.Contains(members, v) {
		return members
	}
	return append(members, v)
}

func removeMember(members []string, v string) []string {
	i := slices.Index(members, v)
	if i < 0 {
		return members
	}
	return slices.Delete(members, i, i+1)
}
