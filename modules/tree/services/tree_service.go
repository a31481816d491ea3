package services

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/routenest/routenest/modules/tree/domain/accesscontrol"
	"github.com/routenest/routenest/modules/tree/domain/node"
	"github.com/routenest/routenest/pkg/composables"
	"github.com/routenest/routenest/pkg/eventbus"
)

// GroupResolver looks up the group memberships of a user. Group management
// lives outside this module; the tree only consumes the membership view.
type GroupResolver interface {
	GroupsOf(ctx context.Context, userID string) ([]string, error)
}

// TreeService is the transport-free façade over the tree engine. It resolves
// the requester identity into a principal, wraps creations in a transaction
// and publishes domain events after successful operations.
type TreeService struct {
	repo      node.Repository
	groups    GroupResolver
	publisher eventbus.EventBus
	log       *logrus.Logger
}

func NewTreeService(repo node.Repository, groups GroupResolver, publisher eventbus.EventBus, log *logrus.Logger) *TreeService {
	return &TreeService{
		repo:      repo,
		groups:    groups,
		publisher: publisher,
		log:       log,
	}
}

// principal resolves the caller into a full identity. A failed group lookup
// fails the operation: permissions computed against a partial identity would
// silently deny grants the caller actually holds.
func (s *TreeService) principal(ctx context.Context, userID string, roles []string) (accesscontrol.Principal, error) {
	p := accesscontrol.Principal{UserID: userID, Roles: roles}
	if p.Anonymous() || s.groups == nil {
		return p, nil
	}
	groups, err := s.groups.GroupsOf(ctx, userID)
	if err != nil {
		return p, errors.Wrap(err, "failed to resolve group membership")
	}
	p.Groups = groups
	return p, nil
}

func (s *TreeService) CreateBranch(ctx context.Context, name string, parentID *uuid.UUID, userID string, roles []string, acl *accesscontrol.AccessControl) (*node.Branch, error) {
	principal, err := s.principal(ctx, userID, roles)
	if err != nil {
		return nil, err
	}
	var created *node.Branch
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		created, err = s.repo.CreateBranch(txCtx, name, parentID, principal, acl)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(node.NewCreatedEvent(created, userID))
	return created, nil
}

func (s *TreeService) CreateLeaf(ctx context.Context, contentID uuid.UUID, parentID *uuid.UUID, displayedOnMap bool, userID string, roles []string) (*node.Leaf, error) {
	principal, err := s.principal(ctx, userID, roles)
	if err != nil {
		return nil, err
	}
	var created *node.Leaf
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		created, err = s.repo.CreateLeaf(txCtx, contentID, parentID, displayedOnMap, principal)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(node.NewCreatedEvent(created, userID))
	return created, nil
}

func (s *TreeService) GetNode(ctx context.Context, id uuid.UUID, userID string, roles []string, includePublic bool) (node.Node, error) {
	principal, err := s.principal(ctx, userID, roles)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id, accesscontrol.PermissionRead, principal, includePublic)
}

// LoadTree materializes the requester's view of the forest. It deliberately
// runs without a transaction: settings rows are created lazily while walking
// and a concurrent change surfaces in the next load.
func (s *TreeService) LoadTree(ctx context.Context, userID string, roles []string, openAll, includePublic bool) ([]*node.TreeNode, error) {
	principal, err := s.principal(ctx, userID, roles)
	if err != nil {
		return nil, err
	}
	return s.repo.LoadTree(ctx, principal, openAll, includePublic)
}

func (s *TreeService) RenameNode(ctx context.Context, id uuid.UUID, newName, userID string, roles []string) (node.Node, error) {
	principal, err := s.principal(ctx, userID, roles)
	if err != nil {
		return nil, err
	}
	renamed, err := s.repo.Rename(ctx, id, newName, principal)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(node.NewRenamedEvent(renamed, newName, userID))
	return renamed, nil
}

// UpdateAccessControl changes the target's grants and, when recursive,
// cascades over the subtree. The cascade is fire-and-forget per descendant;
// a successful return only guarantees the target itself.
func (s *TreeService) UpdateAccessControl(ctx context.Context, id uuid.UUID, acl *accesscontrol.AccessControl, recursive bool, userID string, roles []string) (node.Node, error) {
	principal, err := s.principal(ctx, userID, roles)
	if err != nil {
		return nil, err
	}
	updated, err := s.repo.UpdateAccessControl(ctx, id, acl, principal, recursive)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(node.NewAccessControlUpdatedEvent(updated, recursive, userID))
	return updated, nil
}

func (s *TreeService) RemoveNode(ctx context.Context, id uuid.UUID, userID string, roles []string) (node.Node, error) {
	principal, err := s.principal(ctx, userID, roles)
	if err != nil {
		return nil, err
	}
	removed, err := s.repo.Remove(ctx, id, principal)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(node.NewRemovedEvent(removed, userID))
	return removed, nil
}

func (s *TreeService) OpenBranch(ctx context.Context, settingsID uuid.UUID) (*node.Settings, error) {
	settings, err := s.repo.OpenBranch(ctx, settingsID)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(node.NewBranchToggledEvent(settings, true))
	return settings, nil
}

func (s *TreeService) CloseBranch(ctx context.Context, branchID uuid.UUID, userID string) (*node.Settings, error) {
	settings, err := s.repo.CloseBranch(ctx, branchID, userID)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(node.NewBranchToggledEvent(settings, false))
	return settings, nil
}
