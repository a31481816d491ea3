package adapters

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/routenest/routenest/modules/tree/domain/accesscontrol"
	"github.com/routenest/routenest/modules/tree/domain/content"
	"github.com/routenest/routenest/modules/tree/domain/node"
)

// LeafAdapter propagates node mutations into the externally-owned content
// item a leaf wraps.
type LeafAdapter struct {
	store content.Store
	log   *logrus.Logger
}

func NewLeafAdapter(store content.Store, log *logrus.Logger) *LeafAdapter {
	return &LeafAdapter{store: store, log: log}
}

func (a *LeafAdapter) leaf(n node.Node) (*node.Leaf, error) {
	l, ok := n.(*node.Leaf)
	if !ok {
		return nil, errors.Errorf("leaf adapter invoked for %s node %s", n.Kind(), n.ID())
	}
	return l, nil
}

func (a *LeafAdapter) OnRename(ctx context.Context, n node.Node, newName string, principal accesscontrol.Principal) error {
	l, err := a.leaf(n)
	if err != nil {
		return err
	}
	ok, err := a.store.UpdateName(ctx, l.ContentID(), newName, principal)
	if err != nil {
		return errors.Wrap(err, "failed to rename content")
	}
	if !ok {
		a.log.WithFields(logrus.Fields{
			"contentId": l.ContentID(),
			"userId":    principal.UserID,
		}).Warn("content store rejected rename")
	}
	return nil
}

func (a *LeafAdapter) OnAccessControlChange(ctx context.Context, n node.Node, acl *accesscontrol.AccessControl, principal accesscontrol.Principal) error {
	l, err := a.leaf(n)
	if err != nil {
		return err
	}
	ok, err := a.store.UpdateAccessControl(ctx, l.ContentID(), acl, principal)
	if err != nil {
		return errors.Wrap(err, "failed to update content access control")
	}
	if !ok {
		a.log.WithFields(logrus.Fields{
			"contentId": l.ContentID(),
			"userId":    principal.UserID,
		}).Warn("content store rejected access control update")
	}
	return nil
}

func (a *LeafAdapter) OnRemove(ctx context.Context, n node.Node, principal accesscontrol.Principal) error {
	l, err := a.leaf(n)
	if err != nil {
		return err
	}
	ok, err := a.store.RemoveByID(ctx, l.ContentID(), principal)
	if err != nil {
		return errors.Wrap(err, "failed to remove content")
	}
	if !ok {
		a.log.WithFields(logrus.Fields{
			"contentId": l.ContentID(),
			"userId":    principal.UserID,
		}).Warn("content store rejected removal")
	}
	return nil
}

// DefaultSettings seeds the per-user displayed flag from the leaf's
// map-display default.
func (a *LeafAdapter) DefaultSettings(n node.Node, userID string) *node.Settings {
	displayed := false
	if l, ok := n.(*node.Leaf); ok {
		displayed = l.DisplayedOnMap()
	}
	return node.NewSettings(n.ID(), userID, node.WithDisplayed(displayed))
}

// DisplayName resolves the leaf's name from its content. A failed or
// forbidden content read must not break a listing, so it falls back to the
// content id.
func (a *LeafAdapter) DisplayName(ctx context.Context, n node.Node, principal accesscontrol.Principal) string {
	l, ok := n.(*node.Leaf)
	if !ok {
		return ""
	}
	c, err := a.store.FindByID(ctx, l.ContentID(), principal.UserID)
	if err != nil || c == nil {
		return l.ContentID().String()
	}
	return c.Name
}
