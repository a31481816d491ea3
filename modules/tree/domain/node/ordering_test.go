package node

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/routenest/routenest/modules/tree/domain/accesscontrol"
)

func branchNode(t *testing.T, name string) *TreeNode {
	t.Helper()
	b, err := NewBranch(name, accesscontrol.New("anna"), "anna")
	require.NoError(t, err)
	return &TreeNode{Node: b, Name: name}
}

func leafNode(t *testing.T, name string) *TreeNode {
	t.Helper()
	l, err := NewLeaf(uuid.New(), accesscontrol.New("anna"), "anna")
	require.NoError(t, err)
	return &TreeNode{Node: l, Name: name}
}

func names(nodes []*TreeNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func TestSortTreeNodes_BranchesBeforeLeaves(t *testing.T) {
	nodes := []*TreeNode{
		leafNode(t, "Alps crossing"),
		branchNode(t, "Winter"),
		leafNode(t, "baltic loop"),
		branchNode(t, "alps"),
	}
	SortTreeNodes(nodes)
	require.Equal(t, []string{"alps", "Winter", "Alps crossing", "baltic loop"}, names(nodes))
}

func TestSortTreeNodes_CaseInsensitiveWithinKind(t *testing.T) {
	nodes := []*TreeNode{
		branchNode(t, "zephyr"),
		branchNode(t, "Alpha"),
		branchNode(t, "beta"),
	}
	SortTreeNodes(nodes)
	require.Equal(t, []string{"Alpha", "beta", "zephyr"}, names(nodes))
}
