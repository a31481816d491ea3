package node

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

func kindRank(k Kind) int {
	if k == KindBranch {
		return 0
	}
	return 1
}

// SortTreeNodes orders siblings for display: branches before leaves, and
// within a kind case-insensitively by name.
func SortTreeNodes(nodes []*TreeNode) {
	c := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(nodes, func(i, j int) bool {
		ri, rj := kindRank(nodes[i].Node.Kind()), kindRank(nodes[j].Node.Kind())
		if ri != rj {
			return ri < rj
		}
		return c.CompareString(nodes[i].Name, nodes[j].Name) < 0
	})
}
