// Package adapters dispatches node-kind-specific behavior. The kind set is
// closed; a registry missing a kind is a deployment bug and fails at
// construction, never per call.
package adapters

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/routenest/routenest/modules/tree/domain/accesscontrol"
	"github.com/routenest/routenest/modules/tree/domain/content"
	"github.com/routenest/routenest/modules/tree/domain/node"
)

// Adapter hooks node mutations into variant-specific side effects and
// supplies per-variant defaults. Hooks run after the node document is
// already written or removed; their failures are surfaced to the caller for
// logging and metering but never roll anything back.
type Adapter interface {
	OnRename(ctx context.Context, n node.Node, newName string, principal accesscontrol.Principal) error
	OnAccessControlChange(ctx context.Context, n node.Node, acl *accesscontrol.AccessControl, principal accesscontrol.Principal) error
	OnRemove(ctx context.Context, n node.Node, principal accesscontrol.Principal) error
	DefaultSettings(n node.Node, userID string) *node.Settings
	DisplayName(ctx context.Context, n node.Node, principal accesscontrol.Principal) string
}

type Registry struct {
	adapters map[node.Kind]Adapter
}

// New builds a registry and verifies it covers every node kind.
func New(adapters map[node.Kind]Adapter) *Registry {
	for _, k := range node.Kinds() {
		if _, ok := adapters[k]; !ok {
			panic(fmt.Sprintf("adapters: no adapter registered for node kind %q", k))
		}
	}
	return &Registry{adapters: adapters}
}

// Default wires the standard branch and leaf adapters.
func Default(store content.Store, log *logrus.Logger) *Registry {
	return New(map[node.Kind]Adapter{
		node.KindBranch: NewBranchAdapter(),
		node.KindLeaf:   NewLeafAdapter(store, log),
	})
}

// Resolve is total over the closed kind set; New guarantees coverage.
func (r *Registry) Resolve(k node.Kind) Adapter {
	a, ok := r.adapters[k]
	if !ok {
		panic(fmt.Sprintf("adapters: unregistered node kind %q", k))
	}
	return a
}
