package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/cptree/pkg/execution"
	"github.com/matzehuels/cptree/pkg/tree"
)

// WriteJSON encodes ex as a search log and writes it to w.
//
// Node ids are renumbered from the tree indices so that merged trees, whose
// entries come from two runs, still get unique ids. Undetermined nodes are
// implied by their parent's child count and are not written. With restarts,
// the synthetic tree root is omitted and each restart root is written as a
// root of its own.
func WriteJSON(ex *execution.Execution, w io.Writer) error {
	t := ex.Tree
	t.RLock()
	out := searchLog{
		Title:    ex.Title,
		Restarts: ex.Restarts,
		Nodes:    []node{},
	}
	for _, id := range ex.Data.Nogoods() {
		if out.NogoodClauses == nil {
			out.NogoodClauses = make(map[int64]string)
		}
		out.NogoodClauses[id], _ = ex.Data.Nogood(id)
	}

	t.PreOrder(t.Root(), func(i int) bool {
		n := t.Node(i)
		if n.Status() == tree.Undetermined {
			return false
		}
		if ex.Restarts && i == t.Root() {
			return true
		}
		nd := node{
			ID:     uint64(i) + 1,
			Kids:   n.NumChildren(),
			Status: n.Status(),
		}
		if p := n.Parent(); p >= 0 && !(ex.Restarts && p == t.Root()) {
			pid := uint64(p) + 1
			nd.PID = &pid
			nd.Alt = t.Alternative(i)
		} else if ex.Restarts {
			nd.Restart = t.Alternative(i)
		}
		if e := ex.Data.Entry(i); e != nil {
			nd.Thread = e.ThreadID
			nd.Label = e.Label
			nd.Nogood = e.Nogood
			nd.Info = e.Info
			nd.Nogoods = e.NogoodIDs
			nd.Solution = e.Solution
		}
		out.Nodes = append(out.Nodes, nd)
		return true
	})
	t.RUnlock()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes ex to a JSON file at path.
func ExportJSON(ex *execution.Execution, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := WriteJSON(ex, f); err != nil {
		return err
	}
	return f.Close()
}
