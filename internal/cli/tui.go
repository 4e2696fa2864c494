package cli

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/cptree/pkg/diff"
	"github.com/matzehuels/cptree/pkg/execution"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	infoBoxStyle      = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// =============================================================================
// PentagonBrowser - Interactive navigation through comparison results
// =============================================================================

// PentagonBrowser is the bubbletea model for stepping through the pentagons
// of a comparison. The selected pentagon and its ancestors are marked as the
// current path in the merged tree.
type PentagonBrowser struct {
	res    *diff.Result
	order  []diff.Pentagon
	bySize bool
	Cursor int
	Height int
	Offset int
}

func newPentagonBrowser(res *diff.Result, bySize bool) PentagonBrowser {
	m := PentagonBrowser{res: res, Height: 10}
	m.setOrder(bySize, -1)
	m.markPath(-1)
	return m
}

func (m PentagonBrowser) Init() tea.Cmd {
	return nil
}

func (m PentagonBrowser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		prev := m.current()
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "down", "j", "n":
			if next := m.res.Next(m.Cursor); next >= 0 {
				m.Cursor = next
			}
		case "up", "k", "p":
			if p := m.res.Prev(m.Cursor); p >= 0 {
				m.Cursor = p
			}
		case "s":
			m.setOrder(!m.bySize, prev)
		}
		m.scroll()
		m.markPath(prev)
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-16, 3)
		m.scroll()
	}
	return m, nil
}

func (m PentagonBrowser) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("%s vs %s", m.res.Left.Title, m.res.Right.Title)))
	b.WriteString("\n")
	order := "traversal order"
	if m.bySize {
		order = "size difference"
	}
	b.WriteString(listDimStyle.Render("↑/↓ navigate  s sort (" + order + ")  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.order))
	for i := m.Offset; i < end; i++ {
		p := m.order[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%snode %-8d left %-6d right %-6d diff %d", cursor, p.Node, p.Left, p.Right, p.SizeDiff())
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.order))))
	b.WriteString("\n\n")

	if len(m.order) > 0 {
		p := m.order[m.Cursor]
		m.res.Merged.Tree.RLock()
		path := pathLabels(m.res.Merged, p.Node)
		m.res.Merged.Tree.RUnlock()
		if len(path) > 0 {
			b.WriteString(StyleDim.Render("path: ") + StyleValue.Render(strings.Join(path, " "+iconArrow+" ")))
			b.WriteString("\n")
		}
		switch {
		case p.Domains != "":
			b.WriteString(infoBoxStyle.Render(strings.TrimSuffix(p.Domains, "\n")))
			b.WriteString("\n")
		case p.Info != "":
			b.WriteString(infoBoxStyle.Render(p.Info))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m *PentagonBrowser) current() int {
	if m.Cursor < len(m.order) {
		return m.order[m.Cursor].Node
	}
	return -1
}

// setOrder switches the view order and keeps node selected if present.
func (m *PentagonBrowser) setOrder(bySize bool, node int) {
	m.bySize = bySize
	if bySize {
		m.order = m.res.SortedBySizeDiff()
	} else {
		m.order = m.res.Pentagons
	}
	if i := slices.IndexFunc(m.order, func(p diff.Pentagon) bool { return p.Node == node }); i >= 0 {
		m.Cursor = i
	}
}

func (m *PentagonBrowser) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// markPath moves the path mark of the merged tree from prev to the current
// pentagon.
func (m *PentagonBrowser) markPath(prev int) {
	cur := m.current()
	if cur == prev || cur < 0 {
		return
	}
	t := m.res.Merged.Tree
	t.Lock()
	defer t.Unlock()
	if prev >= 0 {
		t.UnPathUp(prev)
	}
	t.PathUp(cur)
}

// pathLabels returns the branch labels from the root down to node.
func pathLabels(ex *execution.Execution, node int) []string {
	var labels []string
	for j := node; j >= 0; j = ex.Tree.Parent(j) {
		if l := ex.Label(j); l != "" {
			labels = append(labels, l)
		}
	}
	slices.Reverse(labels)
	return labels
}
