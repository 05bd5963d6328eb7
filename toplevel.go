package htmledit

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dannyswat/htmledit/internal/dom"
	"github.com/dannyswat/htmledit/internal/log"
	"github.com/dannyswat/htmledit/internal/txn"
)

// topLevelData lives for one bracketed top-level action.
type topLevelData struct {
	subAction SubAction
	direction Direction

	// selectedRange is the selection before the action, kept live.
	selectedRange dom.Range
	// changedRange covers every mutation made during the action.
	changedRange dom.Range
	untrack      []func()

	cachedStyles []cachedStyle

	didDeleteSelection         bool
	didDeleteNonCollapsedRange bool
	didDeleteEmptyParentBlocks bool
	didNormalizeWhitespaces    bool
	didExplicitlySetInterline  bool
	// keepCaretWrappers keeps emptied inline ancestors of the caret.
	keepCaretWrappers bool
	// newBlock is a block created by the action that must end up holding the caret.
	newBlock *html.Node
	// lineBreaks are the <br> elements ending the lines a block action collected.
	lineBreaks []*html.Node
	result   EditResult
	span     trace.Span
}

// BeginTopLevelAction opens the bracket every edit runs in: it snapshots the selection,
// caches inline styles and opens an undo batch.
func (e *Editor) BeginTopLevelAction(ctx context.Context, sub SubAction, dir Direction) error {
	if e.destroyed {
		return ErrEditorDestroyed
	}
	if sub < 0 || sub >= subActionCount {
		return fmt.Errorf("%w: sub-action %d", ErrInvalidArgument, sub)
	}
	if e.top != nil {
		return ErrActionInProgress
	}
	_, span := e.tracer.Start(ctx, "htmledit."+sub.String(), trace.WithAttributes(
		attribute.String("htmledit.subaction", sub.String()),
		attribute.String("htmledit.direction", dir.String()),
	))
	top := &topLevelData{subAction: sub, direction: dir, span: span}
	if e.sel.RangeCount() > 0 {
		top.selectedRange = dom.Range{Start: e.sel.Start(), End: e.sel.End()}
	}
	tracker := e.tx.Tracker()
	top.untrack = append(top.untrack, tracker.TrackRange(&top.selectedRange), tracker.TrackRange(&top.changedRange))
	if sub.traits().cachesInlineStyles {
		top.cachedStyles = e.cacheInlineStyles()
	}
	if sub != SubActionInsertText {
		e.typingRun = false
	}
	e.top = top
	e.nesting++
	e.tx.Begin(sub.String(), e.sel.pathRanges(e.tx))
	log.Debug(log.CatBracket, "begin", "subaction", sub, "direction", dir, "selection", top.selectedRange)
	return nil
}

// EndTopLevelAction runs the post-processing steps, commits the undo batch and closes
// the bracket.
func (e *Editor) EndTopLevelAction(ctx context.Context) error {
	top := e.top
	if top == nil {
		return fmt.Errorf("%w: no top-level action", ErrInvalidArgument)
	}
	var err error
	if e.destroyed {
		err = ErrEditorDestroyed
	} else if !top.subAction.traits().skipCleanup {
		err = e.finishTopLevelAction(top)
	}
	for _, u := range top.untrack {
		u()
	}
	e.nesting--
	e.top = nil
	d, commitErr := e.tx.Commit(e.sel.pathRanges(e.tx))
	if err == nil && commitErr != nil {
		err = commitErr
	}
	top.span.SetAttributes(attribute.String("htmledit.result", top.result.String()))
	if d != nil {
		top.span.SetAttributes(
			attribute.String("htmledit.delta", d.ID),
			attribute.Int("htmledit.operations", len(d.Operations)),
		)
	}
	if err != nil {
		top.span.RecordError(err)
		top.span.SetStatus(codes.Error, err.Error())
	}
	top.span.End()
	log.Debug(log.CatBracket, "end", "subaction", top.subAction, "result", top.result, "changed", top.changedRange)
	return err
}

// runAction brackets fn as one top-level action. A call made while an action is open,
// from a mutation listener, runs inside the open action.
func (e *Editor) runAction(ctx context.Context, sub SubAction, dir Direction, fn func() (EditResult, error)) (EditResult, error) {
	if e.top != nil {
		return fn()
	}
	if err := e.BeginTopLevelAction(ctx, sub, dir); err != nil {
		return Canceled, err
	}
	res, err := fn()
	if err != nil && !isFatal(err) && e.top.changedRange.IsPositioned() {
		log.WarnErr(log.CatBracket, "action failed after mutating", err, "subaction", sub)
	}
	e.top.result = res
	endErr := e.EndTopLevelAction(ctx)
	if err != nil {
		return res, err
	}
	return res, endErr
}

// observeMutation widens the changed range of the open action.
func (e *Editor) observeMutation(m txn.Mutation) {
	top := e.top
	if top == nil {
		return
	}
	var r dom.Range
	switch m.Kind {
	case txn.NodeInserted, txn.NodeMoved, txn.AttributeChanged, txn.NodesJoined:
		if m.Node == nil || m.Node.Parent == nil {
			return
		}
		r = dom.SelectNode(m.Node)
	case txn.NodeRemoved:
		r = dom.CollapsedAt(dom.Point{Container: m.Parent, Offset: m.Offset})
	case txn.CharacterDataChanged:
		end := min(m.Offset+m.Length, len(m.Node.Data))
		r = dom.Range{Start: dom.Point{Container: m.Node, Offset: m.Offset}, End: dom.Point{Container: m.Node, Offset: end}}
	case txn.NodeSplit:
		if m.Node.Parent == nil || m.Other == nil || m.Other.Parent == nil {
			return
		}
		r = dom.Range{Start: dom.PointBefore(m.Node), End: dom.PointAfter(m.Other)}
	default:
		return
	}
	if !dom.IsInclusiveAncestor(e.doc, r.Start.Container) || !dom.IsInclusiveAncestor(e.doc, r.End.Container) {
		return
	}
	top.changedRange = top.changedRange.Union(r)
}

// finishTopLevelAction runs the cleanup steps in order. Failures are logged and the
// remaining steps still run, except for fatal errors.
func (e *Editor) finishTopLevelAction(top *topLevelData) error {
	traits := top.subAction.traits()
	if !top.changedRange.IsPositioned() {
		if !top.didExplicitlySetInterline && e.sel.IsCollapsed() {
			e.updateInterlineFromCaret()
		}
		return nil
	}

	// (a) widen the changed range
	if traits.extent == extendToAdjacentWhitespace {
		top.changedRange = extendOverAdjacentWhitespace(top.changedRange)
	} else {
		top.changedRange = dom.Range{
			Start: e.hardLineStart(top.changedRange.Start),
			End:   e.hardLineEnd(top.changedRange.End),
		}
	}

	// (b) the caret needs a line after a ranged deletion
	if top.didDeleteNonCollapsedRange && !top.didDeleteEmptyParentBlocks {
		if err := e.warn(log.CatBracket, "insert br for empty line", e.insertBRIfLineIsEmpty()); err != nil {
			return err
		}
	}

	// (c) padding in emptied list items and table cells
	if err := e.warn(log.CatBracket, "pad list items and cells", e.padEmptyItemsAndCells(top.changedRange)); err != nil {
		return err
	}

	// (d) join adjacent text nodes
	if !traits.keepsTextNodes {
		if err := e.warn(log.CatBracket, "join text nodes", e.joinAdjacentTextNodes(top.changedRange)); err != nil {
			return err
		}
	}

	// (e) strip empty nodes
	if err := e.warn(log.CatBracket, "remove empty nodes", e.removeEmptyNodes(top.changedRange)); err != nil {
		return err
	}

	// (f) whitespace around the edit points
	if traits.normalizesWhitespace && !top.didNormalizeWhitespaces {
		points := []dom.Point{e.sel.Start(), top.selectedRange.Start}
		if !top.selectedRange.Collapsed() {
			points = append(points, top.selectedRange.End)
		}
		for _, p := range points {
			if !p.IsValid() || !dom.IsInclusiveAncestor(e.host, p.Container) {
				continue
			}
			if err := e.warn(log.CatWS, "normalize whitespace", e.ws.NormalizeAround(p)); err != nil {
				return err
			}
		}
	}

	// (g) keep the caret in a block created by the action
	if nb := top.newBlock; nb != nil && nb.Parent != nil && e.sel.IsCollapsed() && !dom.IsInclusiveAncestor(nb, e.sel.Start().Container) {
		e.collapseSelection(firstCaretPointIn(nb))
	}

	// (h) move the caret somewhere good and pad an empty last line
	if e.sel.IsCollapsed() && !top.didDeleteEmptyParentBlocks && traits.adjustsCaret {
		if err := e.warn(log.CatBracket, "adjust caret", e.adjustCaretPositionAndEnsurePaddingBR(top.direction)); err != nil {
			return err
		}
	}

	// (i) keep the styles the caret was in for the next typed text
	if traits.cachesInlineStyles {
		e.restoreCachedStyles(top.cachedStyles)
	}

	// (j) changed range hook
	if e.opts.OnChangedRange != nil {
		e.opts.OnChangedRange(top.changedRange)
	}

	// (k) an empty editor keeps one line
	if err := e.warn(log.CatBracket, "pad empty editor", e.ensurePaddingBRForEmptyEditor()); err != nil {
		return err
	}

	// (l) interline position
	if !top.didExplicitlySetInterline && e.sel.IsCollapsed() {
		e.updateInterlineFromCaret()
	}
	if e.destroyed {
		return ErrEditorDestroyed
	}
	return nil
}

// scopeOf returns the block whose subtree cleanup steps visit for r.
func (e *Editor) scopeOf(r dom.Range) *html.Node {
	if !r.IsPositioned() {
		return e.host
	}
	common := r.CommonAncestor()
	if common == nil || !dom.IsInclusiveAncestor(e.host, common) {
		return e.host
	}
	block := e.ws.BlockOf(common)
	if block != e.host && block.Parent != nil {
		// siblings of the block may have been emptied as well
		return e.ws.BlockOf(block.Parent)
	}
	return block
}

// padEmptyItemsAndCells gives emptied list items and table cells a padding <br>.
func (e *Editor) padEmptyItemsAndCells(r dom.Range) error {
	scope := e.scopeOf(r)
	var targets []*html.Node
	for n := scope; n != nil; n = dom.NextNode(n, scope) {
		if !dom.IsListItem(n) && !dom.IsTableCell(n) {
			continue
		}
		if !r.IntersectsNode(n) && !dom.IsInclusiveAncestor(n, r.Start.Container) {
			continue
		}
		if dom.IsEditable(n, e.host) && dom.IsEmptyNode(n, 0) && !hasChildElement(n) {
			targets = append(targets, n)
		}
	}
	for _, n := range targets {
		if err := e.tx.InsertNode(dom.NewElement(atom.Br), dom.PointAtEnd(n)); err != nil {
			return err
		}
	}
	return nil
}

func hasChildElement(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return true
		}
	}
	return false
}

// joinAdjacentTextNodes merges sibling text nodes inside the changed scope.
func (e *Editor) joinAdjacentTextNodes(r dom.Range) error {
	scope := e.scopeOf(r)
	var pairs [][2]*html.Node
	for n := scope; n != nil; n = dom.NextNode(n, scope) {
		if n.Type == html.TextNode && n.NextSibling != nil && n.NextSibling.Type == html.TextNode &&
			dom.IsEditable(n.Parent, e.host) {
			pairs = append(pairs, [2]*html.Node{n, n.NextSibling})
		}
	}
	// right to left so that a node joined into its left sibling is never used again
	for i := len(pairs) - 1; i >= 0; i-- {
		left, right := pairs[i][0], pairs[i][1]
		if left.Parent == nil || right.Parent != left.Parent || left.NextSibling != right {
			continue
		}
		if _, err := e.tx.JoinNodes(left, right); err != nil {
			return err
		}
	}
	return nil
}

// removeEmptyNodes deletes empty text nodes and empty inline containers in the scope.
func (e *Editor) removeEmptyNodes(r dom.Range) error {
	scope := e.scopeOf(r)
	var caretAt *html.Node
	if e.top != nil && e.top.keepCaretWrappers && e.sel.RangeCount() > 0 {
		caretAt = e.sel.Start().Container
	}
	var doomed []*html.Node
	var walk func(n *html.Node) bool
	// walk reports whether n is removable once its empty children are gone.
	walk = func(n *html.Node) bool {
		allEmpty := true
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				continue
			}
			allEmpty = false
		}
		switch {
		case n == scope || !dom.IsEditable(n, e.host) || n == e.host:
			return false
		case n.Type == html.TextNode:
			if n.Data == "" {
				doomed = append(doomed, n)
				return true
			}
			return false
		case n.Type != html.ElementNode:
			return false
		case dom.IsBlock(n) || dom.IsVoid(n) || dom.IsReplaced(n) || !allEmpty:
			return false
		case dom.IsElement(n, atom.A) && dom.HasAttr(n, "name"):
			return false
		case caretAt != nil && dom.IsInclusiveAncestor(n, caretAt):
			return false
		}
		doomed = append(doomed, n)
		return true
	}
	walk(scope)
	// children were appended before their parents; remove the outermost only
	for _, n := range doomed {
		if n.Parent == nil || containsAny(doomed, n) {
			continue
		}
		if err := e.tx.DeleteNode(n); err != nil {
			return err
		}
	}
	return nil
}

// containsAny reports whether a strict ancestor of n is in set.
func containsAny(set []*html.Node, n *html.Node) bool {
	for _, x := range set {
		if x != n && dom.IsAncestor(x, n) {
			return true
		}
	}
	return false
}
