// Package htmledit is the editing engine of an HTML rich-text editor. It turns editing
// intents (type, delete, Enter, indent, lists, alignment) into undoable mutations of an
// x/net/html tree while keeping whitespace, line structure and the caret consistent.
package htmledit

import (
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"

	"github.com/dannyswat/htmledit/internal/dom"
	"github.com/dannyswat/htmledit/internal/log"
	"github.com/dannyswat/htmledit/internal/txn"
	"github.com/dannyswat/htmledit/internal/ws"
)

// Editor edits one document. It is not safe for concurrent use; listeners registered
// with AddMutationListener run synchronously inside its mutations.
type Editor struct {
	doc  *html.Node
	host *html.Node
	opts Options

	tx     *txn.Manager
	ws     *ws.Service
	sel    *Selection
	tracer trace.Tracer

	destroyed bool
	// nesting counts open top-level actions on the document.
	nesting int
	top     *topLevelData
	typing  typingState
	// typingRun is set while consecutive InsertText actions may share an undo step.
	typingRun bool
	// paddingBR is the <br> inserted to give an empty editor a line.
	paddingBR *html.Node
}

// New creates an editor over doc. The editing host is the first contenteditable element,
// or <body> when there is none.
func New(doc *html.Node, opts ...Option) (*Editor, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", ErrInvalidArgument)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	host := findHost(doc)
	if host == nil {
		return nil, fmt.Errorf("%w: document has no body", ErrInvalidArgument)
	}
	e := &Editor{doc: doc, host: host, opts: o, tracer: o.Tracer}
	txOpts := []txn.Option{
		txn.WithDestroyedCheck(func() bool { return e.destroyed }),
		txn.WithAuthor(o.Author),
	}
	if o.MaxUndo > 0 {
		txOpts = append(txOpts, txn.WithMaxUndo(o.MaxUndo))
	}
	e.tx = txn.NewManager(doc, txOpts...)
	e.tx.SetObserver(e.observeMutation)
	e.ws = ws.New(e.tx, host, ws.WithGraphemeDeletion(o.WhitespaceCompat))
	e.sel = newSelection(e.tx.Tracker())
	e.sel.onChange = e.selectionChanged
	e.sel.Collapse(dom.PointAtStart(host).Normalized())
	return e, nil
}

// NewFromHTML parses src and creates an editor over it.
func NewFromHTML(src string, opts ...Option) (*Editor, error) {
	doc, err := dom.ParseHTML(src)
	if err != nil {
		return nil, err
	}
	return New(doc, opts...)
}

func findHost(doc *html.Node) *html.Node {
	for n := doc; n != nil; n = dom.NextNode(n, doc) {
		if n.Type == html.ElementNode && dom.FindEditingHost(n) == n {
			return n
		}
	}
	return dom.Body(doc)
}

func (e *Editor) Document() *html.Node { return e.doc }

// Host returns the editing host.
func (e *Editor) Host() *html.Node { return e.host }

func (e *Editor) Selection() *Selection { return e.sel }

func (e *Editor) Options() Options { return e.opts }

// Destroy tears the editor down. Actions in progress stop with ErrEditorDestroyed.
func (e *Editor) Destroy() {
	e.destroyed = true
}

func (e *Editor) IsDestroyed() bool { return e.destroyed }

// AddMutationListener registers fn for the given mutation kinds (all when none are
// given). Listeners may mutate the tree or destroy the editor. The returned function
// removes the listener.
func (e *Editor) AddMutationListener(fn txn.Listener, kinds ...txn.MutationKind) func() {
	return e.tx.AddListener(fn, kinds...)
}

// Transactions exposes the transaction manager, which performs every mutation.
func (e *Editor) Transactions() *txn.Manager { return e.tx }

// HTML renders the children of the editing host.
func (e *Editor) HTML() (string, error) {
	return dom.RenderChildren(e.host)
}

// DocumentHTML renders the whole document.
func (e *Editor) DocumentHTML() (string, error) {
	return dom.RenderNode(e.doc)
}

// SetSelection replaces the selection. Every boundary must be inside the editing host.
func (e *Editor) SetSelection(ranges ...dom.Range) error {
	for _, r := range ranges {
		if !r.IsPositioned() || !r.Start.IsValid() || !r.End.IsValid() {
			return fmt.Errorf("%w: range %s", ErrInvalidArgument, r)
		}
		if !dom.IsInclusiveAncestor(e.host, r.Start.Container) || !dom.IsInclusiveAncestor(e.host, r.End.Container) {
			return fmt.Errorf("%w: range %s", ErrNotInEditingHost, r)
		}
	}
	e.sel.SetRanges(ranges...)
	e.sel.SetInterlinePosition(InterlineUnset)
	return nil
}

// selectionChanged drops pending typing styles when the caret is moved from outside an
// action.
func (e *Editor) selectionChanged() {
	if e.top == nil {
		e.typing.clear()
		e.typingRun = false
	}
}

func (e *Editor) setInterline(p InterlinePosition) {
	e.sel.SetInterlinePosition(p)
	if e.top != nil {
		e.top.didExplicitlySetInterline = true
	}
}

// collapseSelection puts the caret at p, moved into an adjacent text node when possible.
func (e *Editor) collapseSelection(p dom.Point) {
	if !p.IsSet() {
		return
	}
	e.sel.Collapse(p.Normalized())
}

// caret returns the start of the selection and whether there is one.
func (e *Editor) caret() (dom.Point, error) {
	if e.sel.RangeCount() == 0 {
		return dom.Point{}, ErrNoSelection
	}
	p := e.sel.Start()
	if !p.IsSet() {
		return dom.Point{}, fmt.Errorf("%w: unset selection", ErrInvalidArgument)
	}
	return p, nil
}

// isEditablePoint reports whether p's container is editable inside the host.
func (e *Editor) isEditablePoint(p dom.Point) bool {
	return p.IsSet() && dom.IsEditable(p.Container, e.host)
}

// selectionIsEditable reports whether every boundary of the selection is editable.
func (e *Editor) selectionIsEditable() bool {
	if e.sel.RangeCount() == 0 {
		return false
	}
	for _, r := range e.sel.Ranges() {
		if !e.isEditablePoint(r.Start) || !e.isEditablePoint(r.End) {
			return false
		}
	}
	return true
}

// Undo reverts the last recorded action and restores the selection it started with.
func (e *Editor) Undo() error {
	if e.top != nil {
		return ErrActionInProgress
	}
	e.typingRun = false
	d, err := e.tx.Undo()
	if err != nil {
		return err
	}
	e.sel.restore(e.tx, d.SelectionBefore)
	e.paddingBR = nil
	log.Debug(log.CatTxn, "undo", "delta", d.ID, "name", d.Name)
	return nil
}

// Redo re-applies the last undone action and restores the selection it ended with.
func (e *Editor) Redo() error {
	if e.top != nil {
		return ErrActionInProgress
	}
	e.typingRun = false
	d, err := e.tx.Redo()
	if err != nil {
		return err
	}
	e.sel.restore(e.tx, d.SelectionAfter)
	e.paddingBR = nil
	log.Debug(log.CatTxn, "redo", "delta", d.ID, "name", d.Name)
	return nil
}

func (e *Editor) CanUndo() bool { return e.tx.CanUndo() }

func (e *Editor) CanRedo() bool { return e.tx.CanRedo() }

// warn logs a failure that does not stop the action. Fatal errors are returned so the
// caller can abort.
func (e *Editor) warn(cat log.Category, msg string, err error) error {
	if err == nil {
		return nil
	}
	if isFatal(err) {
		return err
	}
	log.WarnErr(cat, msg, err)
	return nil
}

// isEmptyEditorWithPaddingBR reports whether the host holds only the padding <br>.
func (e *Editor) isEmptyEditorWithPaddingBR() bool {
	if e.paddingBR == nil || e.paddingBR.Parent == nil {
		return false
	}
	for c := e.host.FirstChild; c != nil; c = c.NextSibling {
		if c == e.paddingBR {
			continue
		}
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) == "" {
			continue
		}
		if c.Type == html.CommentNode {
			continue
		}
		return false
	}
	return true
}
