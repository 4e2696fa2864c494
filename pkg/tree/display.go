package tree

// DirtyUp marks node i and its ancestors dirty, stopping at the first
// ancestor that is already dirty.
func (t *Tree) DirtyUp(i int) {
	n := t.arena.Node(i)
	n.SetFlag(FlagDirty, true)
	for p := n.Parent(); p >= 0; p = t.arena.Parent(p) {
		pn := t.arena.Node(p)
		if pn.IsDirty() {
			return
		}
		pn.SetFlag(FlagDirty, true)
	}
}

func (t *Tree) setHidden(i int, hidden bool) {
	n := t.arena.Node(i)
	if n.IsHidden() == hidden {
		return
	}
	n.SetFlag(FlagHidden, hidden)
	if hidden {
		n.SetFlag(FlagChildrenLayoutDone, false)
	}
	t.DirtyUp(i)
}

// ToggleHidden collapses or expands node i. Leaves cannot be hidden.
func (t *Tree) ToggleHidden(i int) {
	if t.arena.NumChildren(i) == 0 {
		return
	}
	t.setHidden(i, !t.arena.Node(i).IsHidden())
}

// HideFailed collapses every branch below i whose subtree is closed and holds
// no solution. With onlyDirty set, clean subtrees are not revisited.
func (t *Tree) HideFailed(i int, onlyDirty bool) {
	t.PreOrder(i, func(j int) bool {
		n := t.arena.Node(j)
		if n.IsHidden() {
			return false
		}
		if n.Status() == Branch && !n.HasSolvedChildren() && !n.HasOpenChildren() && n.NumChildren() > 0 {
			t.setHidden(j, true)
			return false
		}
		if onlyDirty && !n.IsDirty() {
			return false
		}
		return n.HasSolvedChildren() || n.HasOpenChildren()
	})
	t.DirtyUp(i)
}

// UnhideAll expands every hidden node below i.
func (t *Tree) UnhideAll(i int) {
	t.PreOrder(i, func(j int) bool {
		t.setHidden(j, false)
		return true
	})
}

// UnhideToRoot expands every hidden ancestor of node i.
func (t *Tree) UnhideToRoot(i int) {
	for p := t.arena.Parent(i); p >= 0; p = t.arena.Parent(p) {
		t.setHidden(p, false)
	}
}

// IsVisible reports whether no ancestor of node i is hidden.
func (t *Tree) IsVisible(i int) bool {
	for p := t.arena.Parent(i); p >= 0; p = t.arena.Parent(p) {
		if t.arena.Node(p).IsHidden() {
			return false
		}
	}
	return true
}

// ComputeSizeBuckets stores the log10 size bucket of every subtree below root
// and returns the subtree sizes indexed by node.
func (t *Tree) ComputeSizeBuckets(root int) map[int]int {
	sizes := make(map[int]int)
	t.PostOrder(root, nil, func(i int) {
		s := 1
		for k := range t.arena.NumChildren(i) {
			s += sizes[t.arena.Child(i, k)]
		}
		sizes[i] = s
		t.arena.Node(i).setSizeBucket(sizeBucket(s))
	})
	return sizes
}

// HideBySize collapses every branch below root whose subtree holds fewer
// than threshold nodes.
func (t *Tree) HideBySize(root, threshold int) {
	sizes := t.ComputeSizeBuckets(root)
	t.PreOrder(root, func(i int) bool {
		if i != root && t.arena.NumChildren(i) > 0 && sizes[i] < threshold {
			t.setHidden(i, true)
			return false
		}
		return true
	})
}

// HighlightSubtrees highlights the given nodes and clears every other
// highlight. With hideOthers set, subtrees that contain no highlighted node
// are collapsed.
func (t *Tree) HighlightSubtrees(nodes []int, hideOthers bool) {
	root := t.Root()
	t.UnhideAll(root)
	t.PreOrder(root, func(i int) bool {
		n := t.arena.Node(i)
		if n.IsHighlighted() {
			n.SetFlag(FlagHighlighted, false)
			t.DirtyUp(i)
		}
		return true
	})
	for _, i := range nodes {
		t.arena.Node(i).SetFlag(FlagHighlighted, true)
		t.DirtyUp(i)
	}
	if !hideOthers {
		return
	}
	// containsHighlight[i] is true when i or a descendant is highlighted.
	contains := make(map[int]bool)
	t.PostOrder(root, func(i int) bool {
		return !t.arena.Node(i).IsHighlighted()
	}, func(i int) {
		n := t.arena.Node(i)
		if n.IsHighlighted() {
			contains[i] = true
			return
		}
		for k := range n.NumChildren() {
			if contains[t.arena.Child(i, k)] {
				contains[i] = true
				return
			}
		}
		if i != root && n.NumChildren() > 0 {
			t.setHidden(i, true)
		}
	})
}

// PathUp marks node i and its ancestors as lying on the current path.
func (t *Tree) PathUp(i int) {
	for j := i; j >= 0; j = t.arena.Parent(j) {
		t.arena.Node(j).SetFlag(FlagOnPath, true)
		t.DirtyUp(j)
	}
}

// UnPathUp clears the path mark of node i and its ancestors.
func (t *Tree) UnPathUp(i int) {
	for j := i; j >= 0; j = t.arena.Parent(j) {
		t.arena.Node(j).SetFlag(FlagOnPath, false)
		t.DirtyUp(j)
	}
}

// PathAlternative returns the position of the child of i that lies on the
// current path, or -1.
func (t *Tree) PathAlternative(i int) int {
	for k := range t.arena.NumChildren(i) {
		if t.arena.Node(t.arena.Child(i, k)).IsOnPath() {
			return k
		}
	}
	return -1
}

// ToggleStop switches a branch node between stop and unstop.
func (t *Tree) ToggleStop(i int) {
	switch t.arena.Node(i).Status() {
	case Branch, Unstop:
		t.SetStatus(i, Stop)
	case Stop:
		t.SetStatus(i, Unstop)
	}
}

// UnstopAll turns every stop node below i into an unstop node.
func (t *Tree) UnstopAll(i int) {
	t.PreOrder(i, func(j int) bool {
		if t.arena.Node(j).Status() == Stop {
			t.SetStatus(j, Unstop)
		}
		return true
	})
}

// Bookmark toggles the bookmark flag of node i.
func (t *Tree) Bookmark(i int) {
	n := t.arena.Node(i)
	n.SetFlag(FlagBookmarked, !n.IsBookmarked())
	t.DirtyUp(i)
}

// LabelBranches labels every node below i with labelOf. If i already carries
// a label, the labels below i are removed instead.
func (t *Tree) LabelBranches(i int, labelOf func(int) string) {
	_, clearing := t.labels[i]
	t.PreOrder(i, func(j int) bool {
		switch {
		case clearing:
			t.ClearLabel(j)
		case j != t.Root():
			t.SetLabel(j, labelOf(j))
		}
		return true
	})
}

// LabelPath labels node i and its ancestors with labelOf, or removes their
// labels if i is already labeled.
func (t *Tree) LabelPath(i int, labelOf func(int) string) {
	_, clearing := t.labels[i]
	for j := i; j >= 0 && j != t.Root(); j = t.arena.Parent(j) {
		if clearing {
			t.ClearLabel(j)
		} else {
			t.SetLabel(j, labelOf(j))
		}
	}
}
