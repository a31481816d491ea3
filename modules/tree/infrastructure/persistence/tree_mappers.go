package persistence

import (
	"database/sql"

	"github.com/go-faster/errors"

	"github.com/routenest/routenest/modules/tree/domain/accesscontrol"
	"github.com/routenest/routenest/modules/tree/domain/node"
	"github.com/routenest/routenest/modules/tree/infrastructure/persistence/models"
)

func modelSet(m *models.TreeNode, p accesscontrol.Permission) *models.AuthorizationSet {
	switch p {
	case accesscontrol.PermissionAdministration:
		return &m.Administration
	case accesscontrol.PermissionCreate:
		return &m.Create
	case accesscontrol.PermissionDelete:
		return &m.Delete
	case accesscontrol.PermissionRead:
		return &m.Read
	case accesscontrol.PermissionWrite:
		return &m.Write
	}
	return nil
}

func toDomainAccessControl(m *models.TreeNode) *accesscontrol.AccessControl {
	acl := accesscontrol.New(m.Owner)
	for _, p := range accesscontrol.Permissions() {
		s := modelSet(m, p)
		acl.SetAuthorizationSet(p, accesscontrol.NewAuthorizationSet(s.Guest, s.Users, s.Roles, s.Groups))
	}
	return acl
}

func toDomainTreeNode(m *models.TreeNode) (node.Node, error) {
	acl := toDomainAccessControl(m)
	opts := []node.Option{
		node.WithID(m.ID),
		node.WithParentID(m.ParentID),
		node.WithCreatedAt(m.CreatedAt),
		node.WithUpdatedAt(m.UpdatedAt),
		node.WithModifiedBy(m.ModifiedBy),
	}

	switch node.Kind(m.Kind) {
	case node.KindBranch:
		return node.NewBranch(m.Name.String, acl, m.CreatedBy, opts...)
	case node.KindLeaf:
		if m.ContentID == nil {
			return nil, errors.Errorf("leaf node %s has no content id", m.ID)
		}
		l, err := node.NewLeaf(*m.ContentID, acl, m.CreatedBy, opts...)
		if err != nil {
			return nil, err
		}
		l.SetDisplayedOnMap(m.DisplayedOnMap.Bool)
		return l, nil
	}
	return nil, errors.Errorf("unknown node kind %q for node %s", m.Kind, m.ID)
}

func toDBTreeNode(n node.Node) (*models.TreeNode, error) {
	m := &models.TreeNode{
		ID:         n.ID(),
		Kind:       string(n.Kind()),
		ParentID:   n.ParentID(),
		Owner:      n.AccessControl().Owner(),
		CreatedAt:  n.CreatedAt(),
		UpdatedAt:  n.UpdatedAt(),
		CreatedBy:  n.CreatedBy(),
		ModifiedBy: n.ModifiedBy(),
	}
	for _, p := range accesscontrol.Permissions() {
		s := n.AccessControl().Set(p)
		*modelSet(m, p) = models.AuthorizationSet{
			Guest:  s.Guest(),
			Users:  s.Users(),
			Roles:  s.Roles(),
			Groups: s.Groups(),
		}
	}

	switch v := n.(type) {
	case *node.Branch:
		m.Name = sql.NullString{String: v.Name(), Valid: true}
	case *node.Leaf:
		contentID := v.ContentID()
		m.ContentID = &contentID
		m.DisplayedOnMap = sql.NullBool{Bool: v.DisplayedOnMap(), Valid: true}
	default:
		return nil, errors.Errorf("unknown node type %T", n)
	}
	return m, nil
}

func toDomainSettings(m *models.TreeNodeSettings) *node.Settings {
	return node.NewSettings(
		m.NodeID,
		m.UserID,
		node.WithSettingsID(m.ID),
		node.WithVersion(m.Version),
		node.WithOpen(m.Open),
		node.WithDisplayed(m.Displayed),
	)
}

func toDBSettings(s *node.Settings) *models.TreeNodeSettings {
	return &models.TreeNodeSettings{
		ID:        s.ID(),
		Version:   s.Version(),
		NodeID:    s.NodeID(),
		UserID:    s.UserID(),
		Open:      s.Open(),
		Displayed: s.Displayed(),
	}
}

// aclColumnValues flattens the grant sets in permission order for positional
// binding. The order must match treeNodeACLColumns.
func aclColumnValues(acl *accesscontrol.AccessControl) []any {
	args := make([]any, 0, 4*len(accesscontrol.Permissions()))
	for _, p := range accesscontrol.Permissions() {
		s := acl.Set(p)
		args = append(args, s.Guest(), s.Users(), s.Roles(), s.Groups())
	}
	return args
}
