package tree

// GatherStats recomputes the statistics by walking the whole tree. It is the
// reference the incrementally maintained counters are checked against.
func (t *Tree) GatherStats() Statistics {
	var s Statistics
	heights := t.Heights(t.Root())
	s.MaxDepth = heights[t.Root()]
	t.PreOrder(t.Root(), func(i int) bool {
		switch t.arena.Node(i).Status() {
		case Solved:
			s.Solutions++
		case Failed, Skipped:
			s.Failures++
		case Branch, Stop, Unstop:
			s.Choices++
		case Undetermined:
			s.Undetermined++
		}
		return true
	})
	return s
}

// ResetStats replaces the incremental counters with a full recount.
func (t *Tree) ResetStats() {
	t.stats = t.GatherStats()
}
