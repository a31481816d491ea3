package adapters

import (
	"context"

	"github.com/routenest/routenest/modules/tree/domain/accesscontrol"
	"github.com/routenest/routenest/modules/tree/domain/node"
)

// BranchAdapter is a pass-through: branches own no external state, so every
// hook is a no-op.
type BranchAdapter struct{}

func NewBranchAdapter() *BranchAdapter {
	return &BranchAdapter{}
}

func (a *BranchAdapter) OnRename(ctx context.Context, n node.Node, newName string, principal accesscontrol.Principal) error {
	return nil
}

func (a *BranchAdapter) OnAccessControlChange(ctx context.Context, n node.Node, acl *accesscontrol.AccessControl, principal accesscontrol.Principal) error {
	return nil
}

func (a *BranchAdapter) OnRemove(ctx context.Context, n node.Node, principal accesscontrol.Principal) error {
	return nil
}

// DefaultSettings starts a branch closed for every user.
func (a *BranchAdapter) DefaultSettings(n node.Node, userID string) *node.Settings {
	return node.NewSettings(n.ID(), userID)
}

func (a *BranchAdapter) DisplayName(ctx context.Context, n node.Node, principal accesscontrol.Principal) string {
	if b, ok := n.(*node.Branch); ok {
		return b.Name()
	}
	return ""
}
