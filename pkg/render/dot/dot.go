// Package dot renders search trees as Graphviz node-link diagrams.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/cptree/pkg/execution"
	"github.com/matzehuels/cptree/pkg/tree"
)

// Options configures diagram rendering.
type Options struct {
	// Detailed adds the node index and the first info line to each label.
	Detailed bool
	// MaxDepth stops the drawing below this depth. Zero draws everything.
	MaxDepth int
	// Annotations adds extra text to the label of selected nodes, such as
	// the sizes of a pentagon.
	Annotations map[int]string
}

type nodeStyle struct {
	shape, fill string
}

var styles = map[tree.Status]nodeStyle{
	tree.Solved:       {"diamond", "#4caf50"},
	tree.Failed:       {"box", "#e53935"},
	tree.Branch:       {"circle", "#1e88e5"},
	tree.Undetermined: {"circle", "white"},
	tree.Stop:         {"octagon", "#8e24aa"},
	tree.Unstop:       {"octagon", "#ce93d8"},
	tree.Skipped:      {"box", "#bdbdbd"},
	tree.Merging:      {"pentagon", "#fb8c00"},
}

// ToDOT converts the tree of ex to Graphviz DOT format. Hidden nodes are
// drawn as triangles and their subtrees are omitted; edges carry the branch
// labels. The caller must not hold the tree's write lock.
func ToDOT(ex *execution.Execution, opts Options) string {
	t := ex.Tree
	t.RLock()
	defer t.RUnlock()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=filled, fontsize=10, width=0.3, height=0.3, fixedsize=false];\n")
	buf.WriteString("  edge [fontsize=9, arrowhead=none];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	var edges []string
	t.PreOrder(t.Root(), func(i int) bool {
		n := t.Node(i)
		fmt.Fprintf(&buf, "  n%d [%s];\n", i, strings.Join(attrs(ex, i, opts), ", "))
		if p := n.Parent(); p >= 0 {
			e := fmt.Sprintf("  n%d -> n%d", p, i)
			if l := edgeLabel(ex, i); l != "" {
				e += fmt.Sprintf(" [label=%q]", l)
			}
			edges = append(edges, e+";")
		}
		if n.IsHidden() {
			return false
		}
		return opts.MaxDepth == 0 || t.Depth(i) < opts.MaxDepth
	})

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.String()
}

// edgeLabel returns the display label of i when the tree carries display
// labels, and the branching decision of i otherwise.
func edgeLabel(ex *execution.Execution, i int) string {
	if t := ex.Tree; t.HasLabels() {
		l, _ := t.Label(i)
		return l
	}
	return ex.Label(i)
}

func attrs(ex *execution.Execution, i int, opts Options) []string {
	n := ex.Tree.Node(i)
	st := styles[n.Status()]
	if n.IsHidden() {
		st.shape = "triangle"
	}
	label := ""
	if opts.Detailed {
		label = strconv.Itoa(i)
		if info := ex.Info(i); info != "" {
			label += "\n" + strings.SplitN(info, "\n", 2)[0]
		}
	}
	if a, ok := opts.Annotations[i]; ok {
		if label != "" {
			label += "\n"
		}
		label += a
	}
	out := []string{
		"shape=" + st.shape,
		fmt.Sprintf("fillcolor=%q", st.fill),
		fmt.Sprintf("label=%q", label),
	}
	if n.IsHighlighted() || n.IsOnPath() {
		out = append(out, "penwidth=3")
	}
	return out
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
