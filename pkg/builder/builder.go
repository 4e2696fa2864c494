// Package builder grows an execution's search tree from a stream of solver
// node messages.
//
// Messages may arrive out of order when the solver runs several threads: a
// node can be reported before its parent. Such messages wait in a per-thread
// delay queue and are retried whenever the tree changes or a cooldown
// expires. Anomalies in the stream are logged and never abort the build.
package builder

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cptree/pkg/execution"
	"github.com/matzehuels/cptree/pkg/observability"
	"github.com/matzehuels/cptree/pkg/tree"
)

// NoParent is the parent id of a root message.
const NoParent = ^uint64(0)

// MessageType distinguishes the protocol messages.
type MessageType int

const (
	// MsgNode describes one search node.
	MsgNode MessageType = iota
	// MsgStart announces a new execution.
	MsgStart
	// MsgDone ends the stream.
	MsgDone
)

// Message is one protocol message from the solver.
type Message struct {
	Type      MessageType
	ID        uint64
	PID       uint64
	Alt       int
	Kids      int
	Status    tree.Status
	ThreadID  int
	RestartID int
	Label     string
	Nogood    string
	Info      string
	NogoodIDs []int64
	Solution  string
}

// Options tunes the builder.
type Options struct {
	// Cooldown is how long the builder waits for new messages before it
	// retries the delay queues.
	Cooldown time.Duration
	// MaxRetries bounds the retry passes made after the stream ends.
	MaxRetries int
}

// DefaultOptions returns the standard builder settings.
func DefaultOptions() Options {
	return Options{Cooldown: 10 * time.Millisecond, MaxRetries: 3}
}

// Builder applies messages to one execution.
type Builder struct {
	ex     *execution.Execution
	opts   Options
	logger *log.Logger

	delayed map[int][]Message
	// restartRoots maps restart ids to the node that roots them.
	restartRoots map[int]int
	rootSeen     bool
}

// New creates a builder for ex. A nil logger uses log.Default().
func New(ex *execution.Execution, opts Options, logger *log.Logger) *Builder {
	def := DefaultOptions()
	if opts.Cooldown <= 0 {
		opts.Cooldown = def.Cooldown
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = def.MaxRetries
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Builder{
		ex:           ex,
		opts:         opts,
		logger:       logger,
		delayed:      make(map[int][]Message),
		restartRoots: make(map[int]int),
	}
}

// Pending returns the number of messages still waiting for their parent.
func (b *Builder) Pending() int {
	n := 0
	for _, q := range b.delayed {
		n += len(q)
	}
	return n
}

// Run consumes messages until the channel closes, a done message arrives or
// ctx is cancelled.
func (b *Builder) Run(ctx context.Context, in <-chan Message) error {
	timer := time.NewTimer(b.opts.Cooldown)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-in:
			if !ok || msg.Type == MsgDone {
				b.finish(ctx)
				return nil
			}
			b.Handle(ctx, msg)
		case <-timer.C:
			b.retry(ctx)
			timer.Reset(b.opts.Cooldown)
		}
	}
}

// Build applies a complete list of messages.
func (b *Builder) Build(ctx context.Context, msgs []Message) error {
	for _, m := range msgs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if m.Type == MsgDone {
			break
		}
		b.Handle(ctx, m)
	}
	b.finish(ctx)
	return nil
}

// Handle applies a single message, delaying it if its parent is unknown.
func (b *Builder) Handle(ctx context.Context, msg Message) {
	if msg.Type == MsgStart {
		b.logger.Debug("execution started", "title", b.ex.Title)
		return
	}
	t := b.ex.Tree
	t.Lock()
	inserted := b.insert(ctx, msg)
	t.Unlock()
	if !inserted {
		b.delayed[msg.ThreadID] = append(b.delayed[msg.ThreadID], msg)
		observability.Builder().OnNodeDelayed(ctx, msg.ThreadID)
		return
	}
	b.retry(ctx)
}

// retry drains every delay queue from the front until no message can be
// placed.
func (b *Builder) retry(ctx context.Context) {
	if b.Pending() == 0 {
		return
	}
	t := b.ex.Tree
	t.Lock()
	defer t.Unlock()
	for progress := true; progress; {
		progress = false
		for thread, q := range b.delayed {
			kept := q[:0]
			for _, m := range q {
				if b.insert(ctx, m) {
					progress = true
					continue
				}
				kept = append(kept, m)
			}
			if len(kept) == 0 {
				delete(b.delayed, thread)
			} else {
				b.delayed[thread] = kept
			}
		}
	}
}

func (b *Builder) finish(ctx context.Context) {
	for range b.opts.MaxRetries {
		if b.Pending() == 0 {
			break
		}
		b.retry(ctx)
	}
	for _, q := range b.delayed {
		for _, m := range q {
			b.logger.Warn("dropping node with unknown parent", "id", m.ID, "pid", m.PID, "thread", m.ThreadID)
			observability.Builder().OnNodeDropped(ctx, "orphan")
		}
	}
	clear(b.delayed)
}

// insert applies msg and reports whether its parent was available. The tree
// lock must be held.
func (b *Builder) insert(ctx context.Context, msg Message) bool {
	t, data := b.ex.Tree, b.ex.Data

	if gid, ok := data.GID(msg.ID); ok {
		b.upgrade(ctx, gid, msg)
		return true
	}

	var gid int
	if msg.PID == NoParent {
		var ok bool
		if gid, ok = b.placeRoot(ctx, msg); !ok {
			return true
		}
	} else {
		pgid, ok := data.GID(msg.PID)
		if !ok {
			return false
		}
		if msg.Alt < 0 || msg.Alt >= t.NumChildren(pgid) {
			b.logger.Debug("alternative out of range", "id", msg.ID, "pid", msg.PID, "alt", msg.Alt)
			observability.Builder().OnNodeDropped(ctx, "alt")
			return true
		}
		gid = t.Child(pgid, msg.Alt)
		if t.Node(gid).Status() != tree.Undetermined {
			b.logger.Debug("slot already filled", "id", msg.ID, "pid", msg.PID, "alt", msg.Alt)
			observability.Builder().OnNodeDropped(ctx, "occupied")
			return true
		}
	}

	t.SetNumberOfChildren(gid, msg.Kids)
	t.SetStatus(gid, msg.Status)
	data.Link(gid, entryOf(msg))
	observability.Builder().OnNodeInserted(ctx, msg.Status.String())
	return true
}

// placeRoot returns the tree node a root message describes. Without
// restarts this is the tree root; with restarts every restart gets a fresh
// child of the tree root.
func (b *Builder) placeRoot(ctx context.Context, msg Message) (int, bool) {
	t := b.ex.Tree
	if !b.ex.Restarts {
		if b.rootSeen {
			b.logger.Debug("second root without restarts", "id", msg.ID)
			observability.Builder().OnNodeDropped(ctx, "root")
			return 0, false
		}
		b.rootSeen = true
		return t.Root(), true
	}
	if _, ok := b.restartRoots[msg.RestartID]; ok {
		b.logger.Debug("duplicate restart root", "restart", msg.RestartID)
		observability.Builder().OnNodeDropped(ctx, "root")
		return 0, false
	}
	if !b.rootSeen {
		b.rootSeen = true
		t.SetStatus(t.Root(), tree.Branch)
	}
	gid := t.AddChild(t.Root())
	b.restartRoots[msg.RestartID] = gid
	return gid, true
}

// upgrade handles a message for a node that already exists. Only skipped
// nodes may be refined; anything else is a duplicate. A skipped node that
// turns out to be a branch gets the children the new message declares.
func (b *Builder) upgrade(ctx context.Context, gid int, msg Message) {
	t := b.ex.Tree
	n := t.Node(gid)
	if n.Status() == tree.Skipped && (msg.Status == tree.Failed || msg.Status == tree.Branch) {
		if msg.Status == tree.Branch {
			for range msg.Kids - n.NumChildren() {
				t.AddChild(gid)
			}
		}
		t.SetStatus(gid, msg.Status)
		b.ex.Data.Link(gid, entryOf(msg))
		observability.Builder().OnNodeInserted(ctx, msg.Status.String())
		return
	}
	b.logger.Debug("duplicate node", "id", msg.ID, "status", msg.Status)
	observability.Builder().OnNodeDropped(ctx, "duplicate")
}

func entryOf(m Message) *execution.Entry {
	return &execution.Entry{
		SID:       m.ID,
		ParentSID: m.PID,
		Alt:       m.Alt,
		Kids:      m.Kids,
		Status:    m.Status,
		ThreadID:  m.ThreadID,
		RestartID: m.RestartID,
		Label:     m.Label,
		Nogood:    m.Nogood,
		Info:      m.Info,
		NogoodIDs: m.NogoodIDs,
		Solution:  m.Solution,
	}
}
