// Package execution binds a search tree to the solver data recorded for each
// of its nodes.
//
// An [Execution] is one solver run: its [tree.Tree] plus a [Data] table that
// maps tree indices (gids) to the [Entry] received from the solver. Entries
// carry branch labels, nogood references and free-form info strings.
package execution

import (
	"sort"

	"github.com/google/uuid"

	"github.com/matzehuels/cptree/pkg/tree"
)

// Entry is the solver-side record of one search node.
type Entry struct {
	SID       uint64      `json:"id"`
	ParentSID uint64      `json:"pid"`
	Alt       int         `json:"alt"`
	Kids      int         `json:"kids"`
	Status    tree.Status `json:"status"`
	ThreadID  int         `json:"thread,omitempty"`
	RestartID int         `json:"restart,omitempty"`
	Label     string      `json:"label,omitempty"`
	Nogood    string      `json:"nogood,omitempty"`
	Info      string      `json:"info,omitempty"`
	// NogoodIDs lists the nogoods the solver cited as responsible for
	// closing this node.
	NogoodIDs []int64 `json:"nogoods,omitempty"`
	Solution  string  `json:"solution,omitempty"`
}

// Data maps tree indices to solver entries. It is guarded by the lock of
// the tree it belongs to.
type Data struct {
	entries map[int]*Entry
	bySID   map[uint64]int
	nogoods map[int64]string
}

// NewData returns an empty table.
func NewData() *Data {
	return &Data{
		entries: make(map[int]*Entry),
		bySID:   make(map[uint64]int),
		nogoods: make(map[int64]string),
	}
}

// Link associates the entry e with tree index gid.
func (d *Data) Link(gid int, e *Entry) {
	d.entries[gid] = e
	if _, ok := d.bySID[e.SID]; !ok {
		d.bySID[e.SID] = gid
	}
}

// Entry returns the entry linked to gid, or nil.
func (d *Data) Entry(gid int) *Entry { return d.entries[gid] }

// GID returns the tree index of the node with solver id sid.
func (d *Data) GID(sid uint64) (int, bool) {
	gid, ok := d.bySID[sid]
	return gid, ok
}

// Len returns the number of linked entries.
func (d *Data) Len() int { return len(d.entries) }

// Label returns the branch label of gid, or "".
func (d *Data) Label(gid int) string {
	if e := d.entries[gid]; e != nil {
		return e.Label
	}
	return ""
}

// Info returns the info string of gid, or "".
func (d *Data) Info(gid int) string {
	if e := d.entries[gid]; e != nil {
		return e.Info
	}
	return ""
}

// SetNogood stores the clause text of nogood id.
func (d *Data) SetNogood(id int64, clause string) { d.nogoods[id] = clause }

// Nogood returns the clause text of nogood id.
func (d *Data) Nogood(id int64) (string, bool) {
	s, ok := d.nogoods[id]
	return s, ok
}

// Nogoods returns the known nogood ids in ascending order.
func (d *Data) Nogoods() []int64 {
	ids := make([]int64, 0, len(d.nogoods))
	for id := range d.nogoods {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Execution is one recorded solver run.
type Execution struct {
	ID       uuid.UUID
	Title    string
	Restarts bool
	Tree     *tree.Tree
	Data     *Data
}

// New returns an execution with an empty tree.
func New(title string, restarts bool) *Execution {
	return &Execution{
		ID:       uuid.New(),
		Title:    title,
		Restarts: restarts,
		Tree:     tree.New(),
		Data:     NewData(),
	}
}

// Label returns the branch label of node gid.
func (e *Execution) Label(gid int) string { return e.Data.Label(gid) }

// Info returns the info string of node gid.
func (e *Execution) Info(gid int) string { return e.Data.Info(gid) }
