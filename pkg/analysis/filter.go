package analysis

import (
	"fmt"
	"slices"
	"strings"
)

// SortKey selects the order of filtered groups.
type SortKey int

const (
	SortBySize SortKey = iota
	SortByCount
	SortByHeight
)

var sortKeyNames = [...]string{"size", "count", "height"}

func (k SortKey) String() string {
	if int(k) < len(sortKeyNames) {
		return sortKeyNames[k]
	}
	return fmt.Sprintf("sortkey(%d)", int(k))
}

// ParseSortKey converts "size", "count" or "height" into a SortKey.
func ParseSortKey(s string) (SortKey, error) {
	for i, n := range sortKeyNames {
		if strings.EqualFold(n, s) {
			return SortKey(i), nil
		}
	}
	return SortBySize, fmt.Errorf("unknown sort key %q", s)
}

// Filter selects and orders groups for display.
type Filter struct {
	MinHeight int
	MinCount  int
	SortBy    SortKey
}

// DefaultFilter hides single-level subtrees and unique groups.
func DefaultFilter() Filter {
	return Filter{MinHeight: 2, MinCount: 2, SortBy: SortBySize}
}

// Apply returns the groups passing the filter, ordered by the sort key in
// decreasing order. The input is not modified.
func Apply[G any, PG grouping[G]](f Filter, groups []G) []G {
	var out []G
	for i := range groups {
		g := PG(&groups[i]).group()
		if g.Height >= f.MinHeight && g.Count() >= f.MinCount {
			out = append(out, groups[i])
		}
	}
	key := func(g *Group) int {
		switch f.SortBy {
		case SortByCount:
			return g.Count()
		case SortByHeight:
			return g.Height
		}
		return g.Size
	}
	slices.SortStableFunc(out, func(a, b G) int {
		return key(PG(&b).group()) - key(PG(&a).group())
	})
	return out
}
