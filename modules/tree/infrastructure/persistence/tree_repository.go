package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/routenest/routenest/modules/tree/adapters"
	"github.com/routenest/routenest/modules/tree/domain/accesscontrol"
	"github.com/routenest/routenest/modules/tree/domain/node"
	"github.com/routenest/routenest/modules/tree/infrastructure/persistence/models"
	"github.com/routenest/routenest/pkg/composables"
	"github.com/routenest/routenest/pkg/filter"
	"github.com/routenest/routenest/pkg/repo"
)

// cascadeConcurrency bounds the statement fan-out over siblings of one level.
const cascadeConcurrency = 8

const (
	treeNodeReturning = `id, kind, parent_id, name, content_id, displayed_on_map, owner,
            administration_guest, administration_users, administration_roles, administration_groups,
            create_guest, create_users, create_roles, create_groups,
            delete_guest, delete_users, delete_roles, delete_groups,
            read_guest, read_users, read_roles, read_groups,
            write_guest, write_users, write_roles, write_groups,
            created_at, updated_at, created_by, modified_by`

	treeNodeFindQuery = `
        SELECT
            n.id,
            n.kind,
            n.parent_id,
            n.name,
            n.content_id,
            n.displayed_on_map,
            n.owner,
            n.administration_guest, n.administration_users, n.administration_roles, n.administration_groups,
            n.create_guest, n.create_users, n.create_roles, n.create_groups,
            n.delete_guest, n.delete_users, n.delete_roles, n.delete_groups,
            n.read_guest, n.read_users, n.read_roles, n.read_groups,
            n.write_guest, n.write_users, n.write_roles, n.write_groups,
            n.created_at,
            n.updated_at,
            n.created_by,
            n.modified_by
        FROM tree_nodes n`

	// Branches keep their name; a leaf has none, so renaming a leaf only
	// touches the audit columns and the variant hook carries the new name to
	// the content store.
	treeNodeRenameQuery = `
        UPDATE tree_nodes SET
            name = CASE WHEN kind = 'branch' THEN $2 ELSE name END,
            updated_at = now(),
            modified_by = $3
        WHERE id = $1 AND %s
        RETURNING ` + treeNodeReturning

	// The owner column is deliberately absent from the assignment list:
	// ownership survives every access control update.
	treeNodeACLUpdateQuery = `
        UPDATE tree_nodes SET
            administration_guest = $2,
            administration_users = $3,
            administration_roles = $4,
            administration_groups = $5,
            create_guest = $6,
            create_users = $7,
            create_roles = $8,
            create_groups = $9,
            delete_guest = $10,
            delete_users = $11,
            delete_roles = $12,
            delete_groups = $13,
            read_guest = $14,
            read_users = $15,
            read_roles = $16,
            read_groups = $17,
            write_guest = $18,
            write_users = $19,
            write_roles = $20,
            write_groups = $21,
            updated_at = now(),
            modified_by = $22
        WHERE id = $1 AND %s
        RETURNING ` + treeNodeReturning

	treeNodeDeleteQuery = `DELETE FROM tree_nodes WHERE id = $1 AND %s RETURNING ` + treeNodeReturning

	treeNodeDeleteByParentsQuery = `DELETE FROM tree_nodes WHERE parent_id = ANY($1) RETURNING ` + treeNodeReturning
)

var treeNodeInsertFields = []string{
	"id", "kind", "parent_id", "name", "content_id", "displayed_on_map", "owner",
	"administration_guest", "administration_users", "administration_roles", "administration_groups",
	"create_guest", "create_users", "create_roles", "create_groups",
	"delete_guest", "delete_users", "delete_roles", "delete_groups",
	"read_guest", "read_users", "read_roles", "read_groups",
	"write_guest", "write_users", "write_roles", "write_groups",
	"created_at", "updated_at", "created_by", "modified_by",
}

var treeNodeInsertQuery = repo.Insert("tree_nodes", treeNodeInsertFields)

type PgTreeRepository struct {
	registry  *adapters.Registry
	settings  node.SettingsRepository
	adminRole string
	log       *logrus.Logger
}

// NewTreeRepository builds the Postgres tree engine. When adminRole is not
// empty it is granted on every permission set of newly created nodes, so
// administrators never lose reach over user-created subtrees.
func NewTreeRepository(registry *adapters.Registry, settings node.SettingsRepository, adminRole string, log *logrus.Logger) node.Repository {
	return &PgTreeRepository{
		registry:  registry,
		settings:  settings,
		adminRole: adminRole,
		log:       log,
	}
}

func scanTreeNode(row pgx.Row) (*models.TreeNode, error) {
	var m models.TreeNode
	if err := row.Scan(
		&m.ID,
		&m.Kind,
		&m.ParentID,
		&m.Name,
		&m.ContentID,
		&m.DisplayedOnMap,
		&m.Owner,
		&m.Administration.Guest, &m.Administration.Users, &m.Administration.Roles, &m.Administration.Groups,
		&m.Create.Guest, &m.Create.Users, &m.Create.Roles, &m.Create.Groups,
		&m.Delete.Guest, &m.Delete.Users, &m.Delete.Roles, &m.Delete.Groups,
		&m.Read.Guest, &m.Read.Users, &m.Read.Roles, &m.Read.Groups,
		&m.Write.Guest, &m.Write.Users, &m.Write.Roles, &m.Write.Groups,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.CreatedBy,
		&m.ModifiedBy,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

func (g *PgTreeRepository) findOne(ctx context.Context, query string, args ...any) (node.Node, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	m, err := scanTreeNode(tx.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, node.ErrNotFoundOrForbidden
		}
		return nil, errors.Wrap(err, "failed to query tree node")
	}
	return toDomainTreeNode(m)
}

func (g *PgTreeRepository) queryMany(ctx context.Context, query string, args ...any) ([]node.Node, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query tree nodes")
	}
	defer rows.Close()

	var out []node.Node
	for rows.Next() {
		m, err := scanTreeNode(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan tree node")
		}
		n, err := toDomainTreeNode(m)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (g *PgTreeRepository) insert(ctx context.Context, n node.Node) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	m, err := toDBTreeNode(n)
	if err != nil {
		return err
	}
	args := []any{m.ID, m.Kind, m.ParentID, m.Name, m.ContentID, m.DisplayedOnMap, m.Owner}
	args = append(args, aclColumnValues(n.AccessControl())...)
	args = append(args, m.CreatedAt, m.UpdatedAt, m.CreatedBy, m.ModifiedBy)
	if _, err := tx.Exec(ctx, treeNodeInsertQuery, args...); err != nil {
		return errors.Wrap(err, "failed to insert tree node")
	}
	return nil
}

// aclForNewNode gates creation on WRITE over the parent and resolves the
// newborn's access control. A supplied ACL is honored, with the requester
// forced in as owner, only when the requester also administers the parent;
// everything else gets the requester-owns-all default.
func (g *PgTreeRepository) aclForNewNode(ctx context.Context, parentID *uuid.UUID, principal accesscontrol.Principal, supplied *accesscontrol.AccessControl) (*accesscontrol.AccessControl, error) {
	if principal.Anonymous() {
		return nil, errors.Wrap(node.ErrValidation, "a requester identity is required")
	}
	acl := accesscontrol.New(principal.UserID)
	if parentID != nil {
		parent, err := g.FindByID(ctx, *parentID, accesscontrol.PermissionWrite, principal, true)
		if err != nil {
			return nil, err
		}
		if supplied != nil && parent.AccessControl().HasPermission(accesscontrol.PermissionAdministration, principal.UserID, principal.Roles, principal.Groups) {
			acl = supplied.WithOwner(principal.UserID)
		}
	}
	if g.adminRole != "" {
		acl.EnsureAdminAccess(g.adminRole)
	}
	return acl, nil
}

func (g *PgTreeRepository) CreateBranch(ctx context.Context, name string, parentID *uuid.UUID, principal accesscontrol.Principal, acl *accesscontrol.AccessControl) (*node.Branch, error) {
	effective, err := g.aclForNewNode(ctx, parentID, principal, acl)
	if err != nil {
		return nil, err
	}
	b, err := node.NewBranch(name, effective, principal.UserID, node.WithParentID(parentID))
	if err != nil {
		return nil, err
	}
	if err := g.insert(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (g *PgTreeRepository) CreateLeaf(ctx context.Context, contentID uuid.UUID, parentID *uuid.UUID, displayedOnMap bool, principal accesscontrol.Principal) (*node.Leaf, error) {
	acl, err := g.aclForNewNode(ctx, parentID, principal, nil)
	if err != nil {
		return nil, err
	}
	l, err := node.NewLeaf(contentID, acl, principal.UserID, node.WithParentID(parentID))
	if err != nil {
		return nil, err
	}
	l.SetDisplayedOnMap(displayedOnMap)
	if err := g.insert(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (g *PgTreeRepository) FindByID(ctx context.Context, id uuid.UUID, permission accesscontrol.Permission, principal accesscontrol.Principal, includePublic bool) (node.Node, error) {
	b := newSQLPredicate(nodeFieldMap("n"), 2)
	cond, err := b.Render(accesscontrol.Predicate(permission, includePublic, principal))
	if err != nil {
		return nil, err
	}
	query := repo.Join(treeNodeFindQuery, repo.JoinWhere("n.id = $1", cond))
	return g.findOne(ctx, query, append([]any{id}, b.Args()...)...)
}

func (g *PgTreeRepository) FindChildren(ctx context.Context, parentID *uuid.UUID, permission accesscontrol.Permission, principal accesscontrol.Principal, includePublic bool) ([]node.Node, error) {
	perm := accesscontrol.Predicate(permission, includePublic, principal)
	if parentID == nil {
		// A missing parent matches only a null parent_id, never any parent.
		b := newSQLPredicate(nodeFieldMap("n"), 1)
		cond, err := b.Render(filter.And(filter.IsNull("parentId"), perm))
		if err != nil {
			return nil, err
		}
		return g.queryMany(ctx, repo.Join(treeNodeFindQuery, repo.JoinWhere(cond)), b.Args()...)
	}
	b := newSQLPredicate(nodeFieldMap("n"), 2)
	cond, err := b.Render(perm)
	if err != nil {
		return nil, err
	}
	query := repo.Join(treeNodeFindQuery, repo.JoinWhere("n.parent_id = $1", cond))
	return g.queryMany(ctx, query, append([]any{*parentID}, b.Args()...)...)
}

// findChildrenOf lists children of the given parents structurally, without a
// permission filter. Cascades use it so that an unauthorized intermediate
// branch does not hide its subtree.
func (g *PgTreeRepository) findChildrenOf(ctx context.Context, parentIDs []uuid.UUID) ([]node.Node, error) {
	return g.queryMany(ctx, treeNodeFindQuery+" WHERE n.parent_id = ANY($1)", parentIDs)
}

// runHook executes a variant hook after the document change is already
// committed. Hook failures are logged and metered, never propagated: the
// stored tree is the source of truth and is not rolled back.
func (g *PgTreeRepository) runHook(ctx context.Context, n node.Node, hook string, fn func(adapters.Adapter) error) {
	if err := fn(g.registry.Resolve(n.Kind())); err != nil {
		hookFailures.WithLabelValues(string(n.Kind()), hook).Inc()
		g.log.WithError(err).WithFields(logrus.Fields{
			"nodeId": n.ID(),
			"hook":   hook,
		}).Warn("variant hook failed")
	}
}

func (g *PgTreeRepository) Rename(ctx context.Context, id uuid.UUID, newName string, principal accesscontrol.Principal) (node.Node, error) {
	if newName == "" {
		return nil, errors.Wrap(node.ErrValidation, "name is required")
	}
	b := newSQLPredicate(nodeFieldMap(""), 4)
	cond, err := b.Render(accesscontrol.Predicate(accesscontrol.PermissionWrite, true, principal))
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(treeNodeRenameQuery, cond)
	n, err := g.findOne(ctx, query, append([]any{id, newName, principal.UserID}, b.Args()...)...)
	if err != nil {
		return nil, err
	}
	g.runHook(ctx, n, "rename", func(a adapters.Adapter) error {
		return a.OnRename(ctx, n, newName, principal)
	})
	return n, nil
}

func (g *PgTreeRepository) UpdateAccessControl(ctx context.Context, id uuid.UUID, acl *accesscontrol.AccessControl, principal accesscontrol.Principal, recursive bool) (node.Node, error) {
	if acl == nil {
		return nil, errors.Wrap(node.ErrValidation, "access control is required")
	}
	updated, err := g.applyAccessControl(ctx, id, acl, principal)
	if err != nil {
		return nil, err
	}
	if _, isBranch := updated.(*node.Branch); recursive && isBranch {
		g.cascadeAccessControl(ctx, updated.ID(), acl, principal)
	}
	return updated, nil
}

// applyAccessControl runs the conditional single-document update: the grant
// columns change only when the requester administers the node, in the same
// statement that checks it. No returned row means absent or forbidden.
func (g *PgTreeRepository) applyAccessControl(ctx context.Context, id uuid.UUID, acl *accesscontrol.AccessControl, principal accesscontrol.Principal) (node.Node, error) {
	b := newSQLPredicate(nodeFieldMap(""), 23)
	cond, err := b.Render(accesscontrol.Predicate(accesscontrol.PermissionAdministration, true, principal))
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(treeNodeACLUpdateQuery, cond)
	args := append([]any{id}, aclColumnValues(acl)...)
	args = append(args, principal.UserID)
	args = append(args, b.Args()...)
	n, err := g.findOne(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	g.runHook(ctx, n, "accessControlChange", func(a adapters.Adapter) error {
		return a.OnAccessControlChange(ctx, n, n.AccessControl(), principal)
	})
	return n, nil
}

// cascadeAccessControl walks the subtree level by level. Children are listed
// structurally and the conditional update skips the ones the requester does
// not administer. Recursion continues below a skipped branch: a reachable
// grandchild is still updated even when its parent was not.
func (g *PgTreeRepository) cascadeAccessControl(ctx context.Context, rootID uuid.UUID, acl *accesscontrol.AccessControl, principal accesscontrol.Principal) {
	level := []uuid.UUID{rootID}
	for len(level) > 0 {
		children, err := g.findChildrenOf(ctx, level)
		if err != nil {
			cascadeFailures.WithLabelValues("access_control").Inc()
			g.log.WithError(err).Warn("access control cascade aborted")
			return
		}
		next := make([]uuid.UUID, 0, len(children))
		var wg errgroup.Group
		wg.SetLimit(cascadeConcurrency)
		for _, child := range children {
			child := child
			if child.Kind() == node.KindBranch {
				next = append(next, child.ID())
			}
			wg.Go(func() error {
				if _, err := g.applyAccessControl(ctx, child.ID(), acl, principal); err != nil && !errors.Is(err, node.ErrNotFoundOrForbidden) {
					cascadeFailures.WithLabelValues("access_control").Inc()
					g.log.WithError(err).WithField("nodeId", child.ID()).Warn("access control cascade failed for node")
				}
				return nil
			})
		}
		_ = wg.Wait()
		level = next
	}
}

func (g *PgTreeRepository) Remove(ctx context.Context, id uuid.UUID, principal accesscontrol.Principal) (node.Node, error) {
	b := newSQLPredicate(nodeFieldMap(""), 2)
	cond, err := b.Render(accesscontrol.Predicate(accesscontrol.PermissionDelete, true, principal))
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(treeNodeDeleteQuery, cond)
	removed, err := g.findOne(ctx, query, append([]any{id}, b.Args()...)...)
	if err != nil {
		return nil, err
	}
	g.runHook(ctx, removed, "remove", func(a adapters.Adapter) error {
		return a.OnRemove(ctx, removed, principal)
	})
	if err := g.settings.DeleteByNodeIDs(ctx, []uuid.UUID{removed.ID()}); err != nil {
		cascadeFailures.WithLabelValues("remove").Inc()
		g.log.WithError(err).WithField("nodeId", removed.ID()).Warn("failed to delete node settings")
	}
	if _, isBranch := removed.(*node.Branch); isBranch {
		g.cascadeRemove(ctx, removed.ID(), principal)
	}
	return removed, nil
}

// cascadeRemove deletes descendants level by level without further permission
// checks: DELETE on a branch is authority over its whole subtree.
func (g *PgTreeRepository) cascadeRemove(ctx context.Context, rootID uuid.UUID, principal accesscontrol.Principal) {
	level := []uuid.UUID{rootID}
	for len(level) > 0 {
		removed, err := g.queryMany(ctx, treeNodeDeleteByParentsQuery, level)
		if err != nil {
			cascadeFailures.WithLabelValues("remove").Inc()
			g.log.WithError(err).Warn("remove cascade aborted")
			return
		}
		if len(removed) == 0 {
			return
		}
		ids := make([]uuid.UUID, 0, len(removed))
		next := make([]uuid.UUID, 0, len(removed))
		var wg errgroup.Group
		wg.SetLimit(cascadeConcurrency)
		for _, n := range removed {
			n := n
			ids = append(ids, n.ID())
			if n.Kind() == node.KindBranch {
				next = append(next, n.ID())
			}
			wg.Go(func() error {
				g.runHook(ctx, n, "remove", func(a adapters.Adapter) error {
					return a.OnRemove(ctx, n, principal)
				})
				return nil
			})
		}
		_ = wg.Wait()
		if err := g.settings.DeleteByNodeIDs(ctx, ids); err != nil {
			cascadeFailures.WithLabelValues("remove").Inc()
			g.log.WithError(err).Warn("failed to delete descendant settings")
		}
		level = next
	}
}

func (g *PgTreeRepository) LoadTree(ctx context.Context, principal accesscontrol.Principal, openAll, includePublic bool) ([]*node.TreeNode, error) {
	roots, err := g.FindChildren(ctx, nil, accesscontrol.PermissionRead, principal, includePublic)
	if err != nil {
		return nil, err
	}
	out := make([]*node.TreeNode, 0, len(roots))
	for _, r := range roots {
		// Only branches root the forest; a parentless leaf belongs to no tree.
		if r.Kind() != node.KindBranch {
			continue
		}
		tn, err := g.materialize(ctx, r, principal, openAll, includePublic)
		if err != nil {
			return nil, err
		}
		out = append(out, tn)
	}
	node.SortTreeNodes(out)
	return out, nil
}

func (g *PgTreeRepository) materialize(ctx context.Context, n node.Node, principal accesscontrol.Principal, openAll, includePublic bool) (*node.TreeNode, error) {
	adapter := g.registry.Resolve(n.Kind())

	// Anonymous requesters get the variant default without persisting a row.
	var st *node.Settings
	if principal.Anonymous() {
		st = adapter.DefaultSettings(n, principal.UserID)
		if openAll && n.Kind() == node.KindBranch {
			st.SetOpen(true)
		}
	} else {
		var err error
		st, err = g.settings.GetOrCreate(ctx, adapter.DefaultSettings(n, principal.UserID))
		if err != nil {
			return nil, errors.Wrap(err, "failed to load node settings")
		}
		if openAll && n.Kind() == node.KindBranch && !st.Open() {
			st.SetOpen(true)
			if st, err = g.settings.Save(ctx, st); err != nil {
				return nil, errors.Wrap(err, "failed to persist forced open flag")
			}
		}
	}

	tn := &node.TreeNode{
		Node:     n,
		Name:     adapter.DisplayName(ctx, n, principal),
		Settings: st,
	}
	if n.Kind() == node.KindBranch && st.Open() {
		id := n.ID()
		children, err := g.FindChildren(ctx, &id, accesscontrol.PermissionRead, principal, includePublic)
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			child, err := g.materialize(ctx, c, principal, openAll, includePublic)
			if err != nil {
				return nil, err
			}
			tn.Children = append(tn.Children, child)
		}
		node.SortTreeNodes(tn.Children)
	}
	return tn, nil
}

func (g *PgTreeRepository) OpenBranch(ctx context.Context, settingsID uuid.UUID) (*node.Settings, error) {
	st, err := g.settings.GetByID(ctx, settingsID)
	if err != nil {
		return nil, err
	}
	st.SetOpen(true)
	return g.settings.Save(ctx, st)
}

func (g *PgTreeRepository) CloseBranch(ctx context.Context, branchID uuid.UUID, userID string) (*node.Settings, error) {
	st, err := g.settings.GetOrCreate(ctx, node.NewSettings(branchID, userID))
	if err != nil {
		return nil, err
	}
	st.SetOpen(false)
	return g.settings.Save(ctx, st)
}
