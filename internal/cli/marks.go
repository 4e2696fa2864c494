package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cptree/pkg/errors"
	"github.com/matzehuels/cptree/pkg/execution"
	"github.com/matzehuels/cptree/pkg/tree"
)

// markOpts holds the flags of layout and render that label and mark nodes.
type markOpts struct {
	labelBranches bool // label every node with its branching decision
	path          int  // node whose path from the root is marked; -1 for none
}

func (m *markOpts) addFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&m.labelBranches, "label-branches", false, "label every node with its branching decision")
	cmd.Flags().IntVar(&m.path, "path", -1, "mark and label the path from the root to this node")
}

func (m markOpts) set() bool { return m.labelBranches || m.path >= 0 }

// apply labels and marks ex's tree. Hidden ancestors of the path node are
// expanded. The tree lock must be held.
func (m markOpts) apply(ex *execution.Execution) error {
	t := ex.Tree
	if m.path >= t.Len() {
		return errors.New(errors.ErrCodeNotFound, "--path %d: the tree has %d nodes", m.path, t.Len())
	}
	if m.labelBranches {
		t.LabelBranches(t.Root(), ex.Label)
	}
	if m.path >= 0 {
		t.PathUp(m.path)
		t.UnhideToRoot(m.path)
		if !m.labelBranches {
			t.LabelPath(m.path, ex.Label)
		}
	}
	return nil
}

// pathString lists the alternatives taken along the marked path, starting
// at the root, e.g. "1.0.2".
func pathString(t *tree.Tree) string {
	var alts []string
	for i := t.Root(); ; {
		k := t.PathAlternative(i)
		if k < 0 {
			break
		}
		alts = append(alts, strconv.Itoa(k))
		i = t.Child(i, k)
	}
	return strings.Join(alts, ".")
}
