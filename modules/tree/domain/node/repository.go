package node

import (
	"context"

	"github.com/google/uuid"

	"github.com/routenest/routenest/modules/tree/domain/accesscontrol"
)

// TreeNode is a materialized view node: the stored document joined with the
// requester's settings row, the resolved display name and the ordered,
// open-gated children.
type TreeNode struct {
	Node     Node
	Name     string
	Settings *Settings
	Children []*TreeNode
}

// Repository is the permission-scoped tree engine. Every read is filtered by
// a permission predicate; absent and unauthorized are indistinguishable.
// Recursive operations (ACL cascade, subtree delete, gated materialization)
// span multiple documents without a transaction: per-document atomicity is
// the only guarantee, and partial cascade failures are observable but never
// rolled back.
type Repository interface {
	// CreateBranch requires WRITE on the parent when parentID is given. The
	// supplied ACL is honored, with the requester forced as owner, only when
	// the requester also holds ADMINISTRATION on the parent; otherwise the
	// new branch defaults to requester-owns-all.
	CreateBranch(ctx context.Context, name string, parentID *uuid.UUID, principal accesscontrol.Principal, acl *accesscontrol.AccessControl) (*Branch, error)

	// CreateLeaf hangs a content reference into the tree under the same
	// parent WRITE gate. The leaf's ACL defaults to requester-owns-all.
	CreateLeaf(ctx context.Context, contentID uuid.UUID, parentID *uuid.UUID, displayedOnMap bool, principal accesscontrol.Principal) (*Leaf, error)

	FindByID(ctx context.Context, id uuid.UUID, permission accesscontrol.Permission, principal accesscontrol.Principal, includePublic bool) (Node, error)

	// FindChildren with a nil parentID matches only root nodes, never "any
	// parent".
	FindChildren(ctx context.Context, parentID *uuid.UUID, permission accesscontrol.Permission, principal accesscontrol.Principal, includePublic bool) ([]Node, error)

	// Rename requires WRITE and updates the single node document
	// atomically; the variant's rename hook then runs best-effort.
	Rename(ctx context.Context, id uuid.UUID, newName string, principal accesscontrol.Principal) (Node, error)

	// UpdateAccessControl requires ADMINISTRATION on the target and always
	// preserves the stored owner. With recursive set on a branch it cascades
	// level by level, skipping children the requester is not authorized on.
	UpdateAccessControl(ctx context.Context, id uuid.UUID, acl *accesscontrol.AccessControl, principal accesscontrol.Principal, recursive bool) (Node, error)

	// Remove requires DELETE on the target. DELETE on a branch implies
	// cascading authority: every descendant and all settings rows go with
	// it, without per-descendant permission checks.
	Remove(ctx context.Context, id uuid.UUID, principal accesscontrol.Principal) (Node, error)

	// LoadTree returns the forest of root branches readable by the
	// principal. A branch's children are materialized only when its
	// per-user open flag is set, unless openAll forces (and persists) the
	// flag on every visited branch.
	LoadTree(ctx context.Context, principal accesscontrol.Principal, openAll, includePublic bool) ([]*TreeNode, error)

	OpenBranch(ctx context.Context, settingsID uuid.UUID) (*Settings, error)

	// CloseBranch addresses by (branch, user) and upserts a default-closed
	// row when none exists.
	CloseBranch(ctx context.Context, branchID uuid.UUID, userID string) (*Settings, error)
}

type SettingsRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Settings, error)
	// GetOrCreate inserts def unless a row for its (node, user) pair exists,
	// and returns the stored row either way.
	GetOrCreate(ctx context.Context, def *Settings) (*Settings, error)
	Save(ctx context.Context, settings *Settings) (*Settings, error)
	DeleteByNodeIDs(ctx context.Context, nodeIDs []uuid.UUID) error
}
