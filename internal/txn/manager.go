package txn

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/dannyswat/htmledit/internal/dom"
	"github.com/dannyswat/htmledit/internal/log"
)

// DefaultMaxUndo is the default number of deltas kept on the undo stack.
const DefaultMaxUndo = 100

// Option configures a Manager.
type Option func(*Manager)

// WithMaxUndo sets the maximum undo depth.
func WithMaxUndo(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxUndo = n
		}
	}
}

// WithAuthor sets the author recorded on deltas.
func WithAuthor(author string) Option {
	return func(m *Manager) {
		m.author = author
	}
}

// WithDestroyedCheck installs the function consulted after every primitive.
func WithDestroyedCheck(fn func() bool) Option {
	return func(m *Manager) {
		m.destroyed = fn
	}
}

type listenerEntry struct {
	id    int
	kinds map[MutationKind]bool
	fn    Listener
}

// Manager owns the undo history of one document and performs its mutations.
type Manager struct {
	root      *html.Node
	tracker   *Tracker
	destroyed func() bool
	author    string
	maxUndo   int

	listeners  []listenerEntry
	nextID     int
	observer   Listener
	open       *Delta
	depth      int
	undoStack  []*Delta
	redoStack  []*Delta
	replaying  bool
	mergeNext  bool
	lastCommit *Delta
}

// NewManager creates a manager for the document rooted at root.
func NewManager(root *html.Node, opts ...Option) *Manager {
	m := &Manager{
		root:      root,
		tracker:   NewTracker(),
		destroyed: func() bool { return false },
		maxUndo:   DefaultMaxUndo,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Root returns the document root.
func (m *Manager) Root() *html.Node { return m.root }

// Tracker returns the live point tracker.
func (m *Manager) Tracker() *Tracker { return m.tracker }

// AddListener registers a listener for the given kinds (all kinds when none are given).
// Listeners stand in for script-visible mutation events.
func (m *Manager) AddListener(fn Listener, kinds ...MutationKind) func() {
	m.nextID++
	entry := listenerEntry{id: m.nextID, fn: fn}
	if len(kinds) > 0 {
		entry.kinds = make(map[MutationKind]bool, len(kinds))
		for _, k := range kinds {
			entry.kinds[k] = true
		}
	}
	m.listeners = append(m.listeners, entry)
	id := entry.id
	return func() {
		for i, l := range m.listeners {
			if l.id == id {
				m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
				return
			}
		}
	}
}

// HasListeners reports whether any listener observes kind.
func (m *Manager) HasListeners(kind MutationKind) bool {
	for _, l := range m.listeners {
		if l.kinds == nil || l.kinds[kind] {
			return true
		}
	}
	return false
}

// SetObserver installs the editor's own observer. It runs before listeners and is not
// reported by HasListeners.
func (m *Manager) SetObserver(fn Listener) {
	m.observer = fn
}

func (m *Manager) notify(mu Mutation) error {
	if m.observer != nil {
		m.observer(mu)
	}
	if !m.replaying {
		for _, l := range append([]listenerEntry(nil), m.listeners...) {
			if l.kinds == nil || l.kinds[mu.Kind] {
				l.fn(mu)
			}
			if m.destroyed() {
				return ErrDestroyed
			}
		}
	}
	if m.destroyed() {
		return ErrDestroyed
	}
	return nil
}

// Begin opens (or nests into) a batch. Only the outermost Begin/Commit pair records a delta.
func (m *Manager) Begin(name string, selection []PathRange) {
	m.depth++
	if m.depth > 1 {
		return
	}
	m.open = &Delta{
		ID:              uuid.NewString(),
		Name:            name,
		BaseHash:        m.hash(),
		SelectionBefore: selection,
		Timestamp:       time.Now().Unix(),
		Author:          m.author,
	}
}

// Commit closes the batch opened by Begin. Empty deltas are dropped.
func (m *Manager) Commit(selection []PathRange) (*Delta, error) {
	if m.depth == 0 {
		return nil, ErrNoBatch
	}
	m.depth--
	if m.depth > 0 {
		return nil, nil
	}
	d := m.open
	m.open = nil
	if len(d.Operations) == 0 {
		return nil, nil
	}
	d.SelectionAfter = selection
	d.ResultHash = m.hash()
	if m.mergeNext && m.lastCommit != nil && len(m.undoStack) > 0 && m.undoStack[len(m.undoStack)-1] == m.lastCommit {
		if merged, ok := MergeDeltas(m.lastCommit, d); ok {
			m.undoStack[len(m.undoStack)-1] = merged
			m.lastCommit = merged
			m.redoStack = nil
			m.mergeNext = false
			return merged, nil
		}
	}
	m.mergeNext = false
	m.undoStack = append(m.undoStack, d)
	if len(m.undoStack) > m.maxUndo {
		m.undoStack = m.undoStack[len(m.undoStack)-m.maxUndo:]
	}
	m.redoStack = nil
	m.lastCommit = d
	return d, nil
}

// MergeWithPrevious asks the next Commit to coalesce with the previous delta when possible.
func (m *Manager) MergeWithPrevious() {
	m.mergeNext = true
}

// InBatch reports whether a batch is open.
func (m *Manager) InBatch() bool { return m.depth > 0 }

func (m *Manager) CanUndo() bool { return len(m.undoStack) > 0 }

func (m *Manager) CanRedo() bool { return len(m.redoStack) > 0 }

// Undo reverts the most recent delta and returns it.
func (m *Manager) Undo() (*Delta, error) {
	if len(m.undoStack) == 0 {
		return nil, ErrNothingToUndo
	}
	d := m.undoStack[len(m.undoStack)-1]
	if h := m.hash(); h != d.ResultHash {
		return nil, fmt.Errorf("undo %s: %w: expected %s, got %s", d.Name, ErrHashMismatch, d.ResultHash, h)
	}
	m.replaying = true
	defer func() { m.replaying = false }()
	for i := len(d.Operations) - 1; i >= 0; i-- {
		inv, err := invertOp(d.Operations[i])
		if err != nil {
			return nil, fmt.Errorf("undo %s: %w", d.Name, err)
		}
		if err := m.applyRecorded(inv); err != nil {
			return nil, fmt.Errorf("undo %s op %d (%s): %w", d.Name, i, inv.Type, err)
		}
	}
	m.undoStack = m.undoStack[:len(m.undoStack)-1]
	m.redoStack = append(m.redoStack, d)
	m.lastCommit = nil
	return d, nil
}

// Redo re-applies the most recently undone delta and returns it.
func (m *Manager) Redo() (*Delta, error) {
	if len(m.redoStack) == 0 {
		return nil, ErrNothingToRedo
	}
	d := m.redoStack[len(m.redoStack)-1]
	if h := m.hash(); h != d.BaseHash {
		return nil, fmt.Errorf("redo %s: %w: expected %s, got %s", d.Name, ErrHashMismatch, d.BaseHash, h)
	}
	m.replaying = true
	defer func() { m.replaying = false }()
	for i, op := range d.Operations {
		if err := m.applyRecorded(op); err != nil {
			return nil, fmt.Errorf("redo %s op %d (%s): %w", d.Name, i, op.Type, err)
		}
	}
	m.redoStack = m.redoStack[:len(m.redoStack)-1]
	m.undoStack = append(m.undoStack, d)
	m.lastCommit = nil
	return d, nil
}

// applyRecorded replays op through applyOp. Tracked points are reset by the caller.
func (m *Manager) applyRecorded(op Operation) error {
	return applyOp(m.root, op)
}

func (m *Manager) hash() string {
	s, err := dom.RenderNode(m.root)
	if err != nil {
		return ""
	}
	return hashString(s)
}

func hashString(s string) string {
	h := sha256.New()
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}

func (m *Manager) record(op Operation) {
	if m.open == nil || m.replaying {
		return
	}
	m.open.Operations = append(m.open.Operations, op)
}

func (m *Manager) path(n *html.Node) dom.NodePath {
	p, err := dom.GetPath(m.root, n)
	if err != nil {
		log.Warn(log.CatTxn, "node outside of document", "node", dom.Describe(n), "error", err)
		return nil
	}
	return p
}

// PathPointOf converts a point to its path form against the current tree.
func (m *Manager) PathPointOf(p dom.Point) (PathPoint, error) {
	path, err := dom.GetPath(m.root, p.Container)
	if err != nil {
		return PathPoint{}, err
	}
	return PathPoint{Path: path, Offset: p.Offset}, nil
}

// PointOf resolves a path point against the current tree.
func (m *Manager) PointOf(pp PathPoint) (dom.Point, error) {
	n, err := dom.GetNode(m.root, pp.Path)
	if err != nil {
		return dom.Point{}, err
	}
	p := dom.Point{Container: n, Offset: pp.Offset}
	if !p.IsValid() {
		return dom.Point{}, fmt.Errorf("%w: %s", ErrInvalidPoint, p)
	}
	return p, nil
}

func render(n *html.Node) string {
	s, err := dom.RenderNode(n)
	if err != nil {
		return ""
	}
	return s
}
