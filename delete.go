package htmledit

import (
	"context"
	"fmt"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dannyswat/htmledit/internal/dom"
	"github.com/dannyswat/htmledit/internal/log"
	"github.com/dannyswat/htmledit/internal/txn"
	"github.com/dannyswat/htmledit/internal/ws"
)

// DeleteSelection deletes the selected content, or the content next to a collapsed caret
// in dir. strip controls whether inline wrappers emptied by a ranged deletion go too.
func (e *Editor) DeleteSelection(ctx context.Context, dir Direction, strip StripWrappers) (EditResult, error) {
	if e.sel.RangeCount() == 0 {
		return Canceled, ErrNoSelection
	}
	return e.runAction(ctx, SubActionDeleteSelectedContent, dir, func() (EditResult, error) {
		if !e.selectionIsEditable() {
			return Canceled, nil
		}
		if strip == NoStrip && e.top != nil {
			e.top.keepCaretWrappers = true
		}
		h := &deleteHandler{e: e, dir: dir, strip: strip}
		return h.run()
	})
}

// deleteHandler runs one deletion. It is rebuilt for every call.
type deleteHandler struct {
	e     *Editor
	dir   Direction
	strip StripWrappers
	// wasCollapsed is whether the selection was collapsed before any extension.
	wasCollapsed bool
	// deletedInvisibleBR is set once an invisible <br> has been consumed and the
	// deletion restarted.
	deletedInvisibleBR bool
}

func (h *deleteHandler) run() (EditResult, error) {
	e := h.e
	if e.destroyed {
		return Canceled, ErrEditorDestroyed
	}
	if e.isEmptyEditorWithPaddingBR() {
		return Canceled, nil
	}
	if cells := selectedTableCells(e.sel.Ranges()); len(cells) > 0 {
		return h.deleteTableCellContents(cells)
	}
	h.wasCollapsed = e.sel.IsCollapsed()
	if h.wasCollapsed {
		p, err := e.caret()
		if err != nil {
			return Canceled, err
		}
		if block := e.scanEmptyBlockInclusiveAncestor(p.Container); block != nil {
			d := &emptyBlockDeleter{e: e, block: block}
			return d.run(h.dir)
		}
		if h.dir != h.dir.characterStep() {
			r := h.extendForDirection(p)
			if r.Collapsed() {
				h.dir = h.dir.characterStep()
			} else {
				e.sel.SetRanges(r)
			}
		}
	} else if h.dir != DirectionNone {
		if n := selectedAtomicNode(e.sel.Range(0)); n != nil && e.sel.RangeCount() == 1 {
			log.Debug(log.CatDelete, "collapse to atomic node", "node", dom.Describe(n))
			if h.dir.IsBackward() {
				e.collapseAt(dom.PointAfter(n))
			} else {
				e.collapseAt(dom.PointBefore(n))
			}
			h.dir = h.dir.characterStep()
		}
	}

	if e.sel.IsCollapsed() {
		if h.dir == DirectionNone {
			return Canceled, nil
		}
		return h.deleteAroundCollapsedCaret()
	}
	return h.deleteNonCollapsedRanges()
}

// extendForDirection returns the range a word or line deletion removes from p.
func (h *deleteHandler) extendForDirection(p dom.Point) dom.Range {
	e := h.e
	switch h.dir {
	case DirectionToBeginningOfLine:
		return dom.NewRange(e.hardLineStart(p), p)
	case DirectionToEndOfLine:
		return dom.NewRange(p, e.hardLineEnd(p))
	case DirectionPreviousWord:
		return dom.NewRange(h.wordBoundary(p, true), p)
	case DirectionNextWord:
		return dom.NewRange(p, h.wordBoundary(p, false))
	}
	return dom.CollapsedAt(p)
}

// wordBoundary walks visible characters from p inside its block: whitespace first, then
// one run of word characters or one punctuation character.
func (h *deleteHandler) wordBoundary(p dom.Point, backward bool) dom.Point {
	e := h.e
	inWord := false
	for i := 0; i < maxLineScan; i++ {
		r := e.caretScan(p, backward)
		if r.Kind != ws.KindText {
			return p
		}
		c, _ := utf8.DecodeRuneInString(r.Content.Data[r.Point.Offset:])
		word := unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_'
		space := dom.IsASCIIWhitespace(c) || c == '\u00a0'
		switch {
		case space && inWord:
			return p
		case space:
		case word:
			inWord = true
		case inWord:
			return p
		default:
			// a lone punctuation character is a word of its own
			return edgeOf(r, backward)
		}
		p = edgeOf(r, backward)
	}
	return p
}

func edgeOf(r ws.ScanResult, backward bool) dom.Point {
	if backward {
		return r.Point
	}
	return r.End
}

// selectedAtomicNode returns the node r selects exactly when it is deleted as a unit.
func selectedAtomicNode(r dom.Range) *html.Node {
	if r.Start.Container != r.End.Container || r.Start.InText() || r.End.Offset != r.Start.Offset+1 {
		return nil
	}
	n := r.Start.Child()
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	if dom.IsVoid(n) || dom.IsReplaced(n) || dom.IsHR(n) || contentEditableFalse(n) {
		return n
	}
	return nil
}

func contentEditableFalse(n *html.Node) bool {
	v, ok := dom.Attr(n, "contenteditable")
	return ok && v == "false"
}

// deleteAroundCollapsedCaret removes the visible thing next to the caret.
func (h *deleteHandler) deleteAroundCollapsedCaret() (EditResult, error) {
	e := h.e
	p, err := e.caret()
	if err != nil {
		return Canceled, err
	}
	backward := h.dir.IsBackward()
	found := e.caretScan(p, backward)
	log.Debug(log.CatDelete, "scan", "kind", found.Kind, "backward", backward, "at", p)

	switch found.Kind {
	case ws.KindBR:
		if h.consumesInvisibleBR(found.Content) {
			if h.deletedInvisibleBR && e.tx.HasListeners(txn.NodeRemoved) {
				return Canceled, fmt.Errorf("%w: invisible <br> reappeared at %s", ErrUnexpectedDOMTree, p)
			}
			if !h.deletedInvisibleBR {
				at, err := e.ws.DeleteNode(found.Content)
				if err != nil {
					return Canceled, err
				}
				h.deletedInvisibleBR = true
				e.collapseSelection(at)
				res, err := h.run()
				if res != Handled && err == nil {
					// the invisible break is gone either way
					res = Handled
				}
				return res, err
			}
		}
		return h.deleteAtomic(found.Content)
	case ws.KindText:
		if !dom.IsEditable(found.Content, e.host) {
			return Canceled, nil
		}
		at, err := e.ws.DeleteCharacter(found, !backward)
		if err != nil {
			return Canceled, err
		}
		e.collapseSelection(at)
		if e.top != nil {
			e.top.didNormalizeWhitespaces = true
		}
		return Handled, nil
	case ws.KindSpecial:
		return h.deleteAtomic(found.Content)
	case ws.KindHR:
		return h.deleteHR(found.Content, p)
	case ws.KindOtherBlockBoundary, ws.KindCurrentBlockBoundary:
		j := &blockJoiner{deleteHandler: h}
		if found.Kind == ws.KindOtherBlockBoundary {
			j.mode = joinOtherBlock
		} else {
			j.mode = joinCurrentBlock
		}
		return j.runCollapsed(p, found)
	}
	return Canceled, nil
}

// consumesInvisibleBR reports whether br is removed silently before the deletion is
// retried. Going backward the caret sits on the line br starts, so br is what gets deleted.
func (h *deleteHandler) consumesInvisibleBR(br *html.Node) bool {
	return !h.dir.IsBackward() && !h.e.ws.IsVisibleBR(br)
}

// deleteAtomic removes a single atomic node or visible <br> next to the caret.
func (h *deleteHandler) deleteAtomic(n *html.Node) (EditResult, error) {
	e := h.e
	if n.Parent == nil || !dom.IsEditable(n.Parent, e.host) {
		return Canceled, nil
	}
	at, err := e.ws.DeleteNode(n)
	if err != nil {
		return Canceled, err
	}
	e.collapseSelection(at)
	return Handled, nil
}

// deleteHR applies the <hr> rule: a backward deletion first moves the caret after the
// rule and only a second one removes it.
func (h *deleteHandler) deleteHR(hr *html.Node, p dom.Point) (EditResult, error) {
	e := h.e
	if e.opts.AlwaysDeleteHR || !h.dir.IsBackward() || h.caretSticksAfterHR(hr, p) {
		return h.deleteAtomic(hr)
	}
	log.Debug(log.CatDelete, "move caret after hr", "hr", dom.Describe(hr))
	if next := hr.NextSibling; dom.IsBR(next) && dom.IsEditable(next, e.host) {
		if _, err := e.ws.DeleteNode(next); err != nil {
			if err := e.warn(log.CatDelete, "delete br after hr", err); err != nil {
				return Canceled, err
			}
		}
	}
	e.collapseAt(dom.PointAfter(hr))
	e.setInterline(InterlineBefore)
	return Handled, nil
}

func (h *deleteHandler) caretSticksAfterHR(hr *html.Node, p dom.Point) bool {
	ep := p.ContainerElementPoint()
	return ep.Container == hr.Parent && ep.Offset == dom.Index(hr)+1 &&
		h.e.sel.InterlinePosition() == InterlineBefore
}

// selectedTableCells returns the cells when every range selects exactly one whole cell.
func selectedTableCells(ranges []dom.Range) []*html.Node {
	if len(ranges) < 2 {
		return nil
	}
	cells := make([]*html.Node, 0, len(ranges))
	for _, r := range ranges {
		if r.Start.Container != r.End.Container || r.Start.InText() || r.End.Offset != r.Start.Offset+1 {
			return nil
		}
		c := r.Start.Child()
		if !dom.IsTableCell(c) {
			return nil
		}
		cells = append(cells, c)
	}
	return cells
}

// deleteTableCellContents empties each selected cell and leaves a padding <br> in it.
func (h *deleteHandler) deleteTableCellContents(cells []*html.Node) (EditResult, error) {
	e := h.e
	for _, cell := range cells {
		if !dom.IsEditable(cell, e.host) {
			continue
		}
		for c := cell.LastChild; c != nil; {
			prev := c.PrevSibling
			if err := e.tx.DeleteNode(c); err != nil {
				return Canceled, err
			}
			c = prev
		}
		if err := e.tx.InsertNode(dom.NewElement(atom.Br), dom.PointAtStart(cell)); err != nil {
			return Canceled, err
		}
	}
	e.collapseAt(dom.PointAtStart(cells[0]))
	return Handled, nil
}

// deleteNonCollapsedRanges deletes every selected range. A single range crossing blocks
// also joins its edge blocks.
func (h *deleteHandler) deleteNonCollapsedRanges() (EditResult, error) {
	e := h.e
	ranges := e.sel.Ranges()
	if len(ranges) > 1 {
		return h.deleteRangesWithoutJoin(ranges)
	}
	r := h.extendOverInvisible(ranges[0])
	if e.top != nil {
		e.top.didDeleteNonCollapsedRange = true
	}
	j := &blockJoiner{deleteHandler: h}
	return j.runNonCollapsed(r)
}

// deleteRangesWithoutJoin deletes the contents of several ranges, last first.
func (h *deleteHandler) deleteRangesWithoutJoin(ranges []dom.Range) (EditResult, error) {
	e := h.e
	tracked := make([]dom.Range, len(ranges))
	copy(tracked, ranges)
	for i := range tracked {
		defer e.tx.Tracker().TrackRange(&tracked[i])()
	}
	for i := len(tracked) - 1; i >= 0; i-- {
		if _, err := h.deleteRangeContents(tracked[i]); err != nil {
			return Canceled, err
		}
	}
	if e.top != nil {
		e.top.didDeleteNonCollapsedRange = true
	}
	e.collapseSelection(tracked[0].Start)
	return Handled, nil
}

// extendOverInvisible widens r over invisible whitespace and an invisible trailing <br>
// at its edges.
func (h *deleteHandler) extendOverInvisible(r dom.Range) dom.Range {
	e := h.e
	if prev := e.ws.ScanPrevious(r.Start); prev.Kind == ws.KindText && dom.ComparePoints(prev.End, r.Start) < 0 {
		r.Start = prev.End
	}
	next := e.ws.ScanNext(r.End)
	switch {
	case next.Kind == ws.KindText && dom.ComparePoints(next.Point, r.End) > 0:
		r.End = next.Point
	case next.Kind == ws.KindBR && !e.ws.IsVisibleBR(next.Content) && dom.IsEditable(next.Content, e.host) &&
		e.ws.BlockOf(next.Content) == e.ws.BlockOf(r.End.Container):
		r.End = dom.PointAfter(next.Content)
	}
	return r
}

// deletion summarizes what a ranged deletion removed.
type deletion struct {
	any     bool
	visible bool
}

func (d *deletion) note(visible bool) {
	d.any = true
	d.visible = d.visible || visible
}

func (d *deletion) merge(o deletion) {
	d.any = d.any || o.any
	d.visible = d.visible || o.visible
}

// deleteRangeContents removes everything inside r without joining blocks. Table
// structure is kept: cells crossed by the range are only emptied.
func (h *deleteHandler) deleteRangeContents(r dom.Range) (removed deletion, err error) {
	e := h.e
	defer e.tx.Tracker().TrackRange(&r)()
	if r.Collapsed() {
		return removed, nil
	}
	if r.Start.Container == r.End.Container {
		if r.Start.InText() {
			removed.note(textIsVisible(e, r))
			_, err := e.ws.DeleteTextRange(r.Start, r.End)
			return removed, err
		}
		for _, c := range childrenBetween(r.Start.Container, r.Start.Offset, r.End.Offset) {
			removed.note(e.ws.IsVisibleContent(c))
			if err := e.tx.DeleteNode(c); err != nil {
				return removed, err
			}
		}
		return removed, nil
	}

	if r.End.InText() && r.End.Offset > 0 {
		t := r.End.Container
		removed.note(textIsVisible(e, dom.Range{Start: dom.PointAtStart(t), End: r.End}))
		if _, err := e.ws.DeleteTextRange(dom.PointAtStart(t), r.End); err != nil {
			return removed, err
		}
	}
	if r.Start.InText() && r.Start.Offset < len(r.Start.Container.Data) {
		t := r.Start.Container
		removed.note(textIsVisible(e, dom.Range{Start: r.Start, End: dom.PointAtEnd(t)}))
		if _, err := e.ws.DeleteTextRange(r.Start, dom.PointAtEnd(t)); err != nil {
			return removed, err
		}
	}
	for _, n := range r.TopLevelNodes() {
		if n.Parent == nil || !dom.IsEditable(n.Parent, e.host) {
			continue
		}
		if dom.IsCharacterData(n) && !r.ContainsNode(n) {
			continue
		}
		if dom.IsAnyTableElementButNotTable(n) {
			v, err := h.clearTableElement(n, r)
			removed.merge(v)
			if err != nil {
				return removed, err
			}
			continue
		}
		if !r.ContainsNode(n) {
			continue
		}
		removed.note(e.ws.IsVisibleContent(n))
		if err := e.tx.DeleteNode(n); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// clearTableElement empties the cells of a table element inside r.
func (h *deleteHandler) clearTableElement(n *html.Node, r dom.Range) (deletion, error) {
	e := h.e
	var cells []*html.Node
	if dom.IsTableCellOrCaption(n) {
		cells = append(cells, n)
	} else {
		for c := n; c != nil; c = dom.NextNode(c, n) {
			if dom.IsTableCellOrCaption(c) {
				cells = append(cells, c)
			}
		}
	}
	var removed deletion
	for _, cell := range cells {
		if !r.ContainsNode(cell) {
			continue
		}
		for c := cell.LastChild; c != nil; {
			prev := c.PrevSibling
			removed.note(e.ws.IsVisibleContent(c))
			if err := e.tx.DeleteNode(c); err != nil {
				return removed, err
			}
			c = prev
		}
	}
	return removed, nil
}

func childrenBetween(parent *html.Node, from, to int) []*html.Node {
	var out []*html.Node
	i := 0
	for c := parent.FirstChild; c != nil && i < to; c = c.NextSibling {
		if i >= from {
			out = append(out, c)
		}
		i++
	}
	return out
}

// textIsVisible reports whether a text range inside one node holds a visible character.
func textIsVisible(e *Editor, r dom.Range) bool {
	t := r.Start.Container
	s := t.Data[r.Start.Offset:r.End.Offset]
	if dom.IsPreformatted(t) {
		return s != ""
	}
	if !dom.IsASCIIWhitespaceOnly(s) {
		return true
	}
	found := e.ws.ScanNext(r.Start)
	return found.Kind == ws.KindText && found.Content == t && found.Point.Offset < r.End.Offset
}
