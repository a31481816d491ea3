// Package content defines the outbound collaborator owning the items that
// leaf nodes wrap. The tree engine never stores content itself; the leaf
// variant handler propagates renames, ACL changes and removals through this
// interface.
package content

import (
	"context"

	"github.com/google/uuid"

	"github.com/routenest/routenest/modules/tree/domain/accesscontrol"
)

type Content struct {
	ID    uuid.UUID
	Name  string
	Owner string
}

// Store is implemented by the external content service. Update calls return
// false when the content exists but the principal is not allowed to touch
// it; the distinction matters only for logging, never for the tree result.
type Store interface {
	FindByID(ctx context.Context, contentID uuid.UUID, requesterID string) (*Content, error)
	UpdateName(ctx context.Context, contentID uuid.UUID, name string, principal accesscontrol.Principal) (bool, error)
	UpdateAccessControl(ctx context.Context, contentID uuid.UUID, acl *accesscontrol.AccessControl, principal accesscontrol.Principal) (bool, error)
	RemoveByID(ctx context.Context, contentID uuid.UUID, principal accesscontrol.Principal) (bool, error)
}
