package analysis

import (
	"slices"

	"github.com/matzehuels/cptree/pkg/tree"
)

// EliminateSubsumed removes groups that exist only because an enclosing
// group repeats. A node is subsumed when its parent belongs to some group of
// height two or more; such nodes are dropped from their groups, and groups
// left with fewer than two members disappear.
func EliminateSubsumed[G any, PG grouping[G]](t *tree.Tree, groups []G) []G {
	groups = filterUnique[G, PG](groups)

	maxHeight := 0
	for i := range groups {
		g := PG(&groups[i]).group()
		slices.Sort(g.Nodes)
		maxHeight = max(maxHeight, g.Height)
	}

	byHeight := make([][]int, maxHeight+1)
	member := make(map[int]bool)
	for i := range groups {
		g := PG(&groups[i]).group()
		byHeight[g.Height] = append(byHeight[g.Height], i)
		for _, n := range g.Nodes {
			member[n] = true
		}
	}

	var subsumed []int
	for h := 2; h <= maxHeight; h++ {
		for _, gi := range byHeight[h] {
			for _, n := range PG(&groups[gi]).group().Nodes {
				for k := range t.NumChildren(n) {
					if c := t.Child(n, k); member[c] {
						subsumed = append(subsumed, c)
					}
				}
			}
		}
	}
	slices.Sort(subsumed)
	subsumed = slices.Compact(subsumed)

	for i := range groups {
		g := PG(&groups[i]).group()
		g.Nodes = slices.DeleteFunc(g.Nodes, func(n int) bool {
			_, found := slices.BinarySearch(subsumed, n)
			return found
		})
	}
	return filterUnique[G, PG](groups)
}

// filterUnique drops groups with fewer than two members.
func filterUnique[G any, PG grouping[G]](groups []G) []G {
	return slices.DeleteFunc(groups, func(g G) bool {
		return PG(&g).group().Count() < 2
	})
}
