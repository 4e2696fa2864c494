package analysis

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/matzehuels/cptree/pkg/execution"
	"github.com/matzehuels/cptree/pkg/tree"
)

// LabelMode selects how branch labels take part in subtree identity.
type LabelMode int

const (
	// LabelsIgnore compares structure and status only.
	LabelsIgnore LabelMode = iota
	// LabelsFull also compares the complete normalized branch labels.
	LabelsFull
	// LabelsVars compares only the variable each branch label refers to.
	LabelsVars
)

var labelModeNames = [...]string{"ignore", "full", "vars"}

func (m LabelMode) String() string {
	if int(m) < len(labelModeNames) {
		return labelModeNames[m]
	}
	return fmt.Sprintf("labelmode(%d)", int(m))
}

// ParseLabelMode converts "ignore", "full" or "vars" into a LabelMode.
func ParseLabelMode(s string) (LabelMode, error) {
	for i, n := range labelModeNames {
		if strings.EqualFold(n, s) {
			return LabelMode(i), nil
		}
	}
	return LabelsIgnore, fmt.Errorf("unknown label mode %q", s)
}

// SubtreeGroup is a set of nodes whose subtrees are identical.
type SubtreeGroup struct {
	Group
}

// FindIdentical assigns every node a canonical id so that two nodes share an
// id exactly when their subtrees are identical, and returns the classes with
// more than one member. Groups are ordered by decreasing size, then by first
// member. The caller must hold the tree lock.
func FindIdentical(ex *execution.Execution, mode LabelMode) []SubtreeGroup {
	t := ex.Tree
	in := newInterner()
	ids := make(map[int]int)
	sizes := make(map[int]int)
	heights := make(map[int]int)
	var key []byte

	t.PostOrder(t.Root(), nil, func(i int) {
		n := t.Node(i)
		key = key[:0]
		key = append(key, byte(n.Status()))
		key = binary.AppendUvarint(key, uint64(n.NumChildren()))
		if mode != LabelsIgnore {
			label := execution.NormalizeLabel(ex.Label(i))
			if mode == LabelsVars {
				label = execution.ExtractVar(label)
			}
			key = binary.AppendUvarint(key, uint64(len(label)))
			key = append(key, label...)
		}
		size, height := 1, 0
		for k := range n.NumChildren() {
			c := t.Child(i, k)
			key = binary.AppendUvarint(key, uint64(ids[c]))
			size += sizes[c]
			height = max(height, heights[c])
		}
		ids[i] = in.intern(key)
		sizes[i] = size
		heights[i] = height + 1
	})

	classes := make(map[int][]int)
	for node, id := range ids {
		classes[id] = append(classes[id], node)
	}
	var groups []SubtreeGroup
	for _, nodes := range classes {
		if len(nodes) < 2 {
			continue
		}
		sort.Ints(nodes)
		groups = append(groups, SubtreeGroup{Group{
			Nodes:  nodes,
			Size:   sizes[nodes[0]],
			Height: heights[nodes[0]],
		}})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Size != groups[j].Size {
			return groups[i].Size > groups[j].Size
		}
		return groups[i].Nodes[0] < groups[j].Nodes[0]
	})
	return groups
}

// interner maps byte keys to dense ids. Keys are bucketed by their xxhash
// digest and compared in full on collision.
type interner struct {
	buckets map[uint64][]int
	keys    [][]byte
}

func newInterner() *interner {
	return &interner{buckets: make(map[uint64][]int)}
}

func (in *interner) intern(key []byte) int {
	h := xxhash.Sum64(key)
	for _, id := range in.buckets[h] {
		if bytes.Equal(in.keys[id], key) {
			return id
		}
	}
	id := len(in.keys)
	in.keys = append(in.keys, bytes.Clone(key))
	in.buckets[h] = append(in.buckets[h], id)
	return id
}
