package htmledit

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dannyswat/htmledit/internal/dom"
	"github.com/dannyswat/htmledit/internal/log"
	"github.com/dannyswat/htmledit/internal/ws"
)

// interlineAt computes the interline position for a caret at p. ok is false when the
// surroundings do not decide it.
func interlineAt(p dom.Point) (pos InterlinePosition, ok bool) {
	ep := p.ContainerElementPoint()
	if ep.InText() {
		return InterlineUnset, false
	}
	if prev := ep.PreviousChild(); dom.IsBR(prev) || dom.IsBlock(prev) {
		return InterlineBefore, true
	}
	if next := ep.Child(); dom.IsBlock(next) {
		return InterlineAfter, true
	}
	return InterlineUnset, false
}

func (e *Editor) updateInterlineFromCaret() {
	if pos, ok := interlineAt(e.sel.Start()); ok {
		e.sel.SetInterlinePosition(pos)
	}
}

// adjustCaretPositionAndEnsurePaddingBR moves a collapsed caret to a point where typed
// text would render and gives an empty line a padding <br>.
func (e *Editor) adjustCaretPositionAndEnsurePaddingBR(dir Direction) error {
	p, err := e.caret()
	if err != nil {
		return err
	}
	for !dom.IsEditable(p.Container, e.host) {
		if p.Container.Parent == nil {
			return nil
		}
		p = dom.PointBefore(p.Container)
	}
	block := e.ws.BlockOf(p.Container)
	if block != e.host && dom.IsEmptyNode(block, 0) && canHoldPaddingBR(block) {
		ep := p.ContainerElementPoint()
		if !dom.IsCharacterData(ep.Container) && dom.CanContainTag(ep.Container, atom.Br) {
			log.Debug(log.CatBracket, "pad empty block", "block", dom.Describe(block))
			return e.tx.InsertNode(dom.NewElement(atom.Br), ep)
		}
	}
	if p.InText() && !p.IsStartOfContainer() && !p.IsEndOfContainer() {
		return nil
	}
	ep := p.ContainerElementPoint()
	prev, next := ep.PreviousChild(), ep.Child()
	if dom.IsBR(prev) && e.ws.BlockOf(prev) == block {
		if !e.ws.IsVisibleBR(prev) {
			if err := e.tx.InsertNode(dom.NewElement(atom.Br), ep); err != nil {
				return err
			}
			e.collapseAt(ep)
			e.setInterline(InterlineBefore)
			return nil
		}
		if dom.IsBR(next) && !e.ws.IsVisibleBR(next) {
			e.setInterline(InterlineBefore)
			return nil
		}
	}
	if p.InText() || isCaretNeighbor(prev) || isCaretNeighbor(next) {
		return nil
	}

	leaf := e.caretLeafNear(ep, block, dir.IsBackward())
	if leaf == nil {
		return nil
	}
	switch {
	case dom.IsBR(leaf) || dom.IsVoid(leaf) || dom.IsReplaced(leaf):
		if dir.IsBackward() && !dom.IsBR(leaf) {
			e.collapseAt(dom.PointAfter(leaf))
		} else {
			e.collapseAt(dom.PointBefore(leaf))
		}
	case dom.IsCharacterData(leaf):
		if dom.ComparePoints(dom.PointBefore(leaf), ep) < 0 {
			e.collapseAt(dom.PointAtEnd(leaf))
		} else {
			e.collapseAt(dom.PointAtStart(leaf))
		}
	case dom.IsContainer(leaf):
		e.collapseAt(dom.PointAtStart(leaf))
	}
	return nil
}

// collapseAt puts the caret at p exactly, without moving it into text.
func (e *Editor) collapseAt(p dom.Point) {
	e.sel.Collapse(p)
}

// isCaretNeighbor reports whether a caret next to n renders next to it.
func isCaretNeighbor(n *html.Node) bool {
	return dom.IsBR(n) || dom.IsText(n) || dom.IsImage(n) || dom.IsHR(n)
}

// caretLeafNear finds the closest editable leaf to p in block, preferring dir and never
// crossing into a different table element.
func (e *Editor) caretLeafNear(p dom.Point, block *html.Node, backward bool) *html.Node {
	find := func(back bool) *html.Node {
		var n *html.Node
		if back {
			n = leafBefore(p, block)
		} else {
			n = leafAfter(p, block)
		}
		for n != nil {
			if dom.IsEditable(n, e.host) && tableContext(n) == tableContext(p.Container) &&
				(n.Type != html.TextNode || e.ws.IsVisibleText(n)) && n.Type != html.CommentNode {
				return n
			}
			if back {
				n = dom.PreviousLeaf(n, block)
			} else {
				n = dom.NextLeaf(n, block)
			}
		}
		return nil
	}
	if n := find(backward); n != nil {
		return n
	}
	return find(!backward)
}

// insertBRIfLineIsEmpty gives the caret a line after a ranged deletion left it between
// two block boundaries.
func (e *Editor) insertBRIfLineIsEmpty() error {
	p, err := e.caret()
	if err != nil || !e.sel.IsCollapsed() {
		return nil
	}
	if !e.ws.ScanPrevious(p).ReachedBlockBoundary() || !e.ws.ScanNext(p).ReachedBlockBoundary() {
		return nil
	}
	ep := p.ContainerElementPoint()
	if ep.InText() || !dom.CanContainTag(ep.Container, atom.Br) || !dom.IsEditable(ep.Container, e.host) {
		return nil
	}
	if err := e.tx.InsertNode(dom.NewElement(atom.Br), ep); err != nil {
		return err
	}
	e.collapseAt(ep)
	return nil
}

// ensurePaddingBRForEmptyEditor gives an editing host without content a padding <br>.
func (e *Editor) ensurePaddingBRForEmptyEditor() error {
	if e.paddingBR != nil && e.paddingBR.Parent != nil {
		return nil
	}
	for c := e.host.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.CommentNode:
		case c.Type == html.TextNode && dom.IsASCIIWhitespaceOnly(c.Data) && !dom.IsPreformatted(c):
		default:
			return nil
		}
	}
	if !canHoldPaddingBR(e.host) || !dom.IsEditable(e.host, e.host) {
		return nil
	}
	br := dom.NewElement(atom.Br)
	if err := e.tx.InsertNode(br, dom.PointAtEnd(e.host)); err != nil {
		return err
	}
	e.paddingBR = br
	e.collapseAt(dom.PointBefore(br))
	return nil
}

// caretScan scans from p in the direction of a deletion.
func (e *Editor) caretScan(p dom.Point, backward bool) ws.ScanResult {
	if backward {
		return e.ws.ScanPrevious(p)
	}
	return e.ws.ScanNext(p)
}
