package htmledit

import (
	"context"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dannyswat/htmledit/internal/dom"
	"github.com/dannyswat/htmledit/internal/log"
	"github.com/dannyswat/htmledit/internal/ws"
)

// InsertParagraphSeparator splits the block at the caret the way Enter does. A selection
// is deleted first.
func (e *Editor) InsertParagraphSeparator(ctx context.Context) (EditResult, error) {
	if e.sel.RangeCount() == 0 {
		return Canceled, ErrNoSelection
	}
	return e.runAction(ctx, SubActionInsertParagraphSeparator, DirectionNone, func() (EditResult, error) {
		if !e.selectionIsEditable() {
			return Canceled, nil
		}
		if !e.sel.IsCollapsed() {
			if _, err := e.DeleteSelection(ctx, DirectionNone, Strip); err != nil {
				return Canceled, err
			}
		}
		p, err := e.caret()
		if err != nil {
			return Canceled, err
		}
		if cite := e.closestAncestor(p.Container, dom.IsMailCite); cite != nil {
			res, err := e.splitMailCite(cite, p)
			if err != nil || res == Handled {
				return res, err
			}
		}
		return e.insertParagraph()
	})
}

// InsertLineBreak inserts a <br> at the caret. A selection is deleted first.
func (e *Editor) InsertLineBreak(ctx context.Context) (EditResult, error) {
	if e.sel.RangeCount() == 0 {
		return Canceled, ErrNoSelection
	}
	return e.runAction(ctx, SubActionInsertLineBreak, DirectionNone, func() (EditResult, error) {
		if !e.selectionIsEditable() {
			return Canceled, nil
		}
		if !e.sel.IsCollapsed() {
			if _, err := e.DeleteSelection(ctx, DirectionNone, Strip); err != nil {
				return Canceled, err
			}
		}
		p, err := e.caret()
		if err != nil {
			return Canceled, err
		}
		if _, err := e.insertBRElement(p); err != nil {
			return Canceled, err
		}
		return Handled, nil
	})
}

func (e *Editor) insertParagraph() (EditResult, error) {
	p, err := e.caret()
	if err != nil {
		return Canceled, err
	}
	block := e.ws.BlockOf(p.Container)
	if e.prefersBR(block) {
		return e.insertBRAtCaret()
	}
	sep := e.opts.ParagraphSeparator
	if block == e.host {
		if _, err := e.formatBlock(sep.blockAtom()); err != nil {
			return Canceled, err
		}
		// the split below decides which half holds the caret
		if e.top != nil {
			e.top.newBlock = nil
		}
		if p, err = e.caret(); err != nil {
			return Canceled, err
		}
		if block = e.ws.BlockOf(p.Container); block == e.host {
			log.Warn(log.CatBlock, "no paragraph was created around the caret")
			return e.insertBRAtCaret()
		}
	}
	if dom.IsEmptyNode(block, 0) {
		ep := p.ContainerElementPoint()
		if !dom.CanContainTag(ep.Container, atom.Br) {
			ep = dom.PointAtEnd(block)
		}
		if err := e.tx.InsertNode(dom.NewElement(atom.Br), ep); err != nil {
			return Canceled, err
		}
	}
	log.Debug(log.CatBlock, "insert paragraph", "block", dom.Describe(block))
	switch {
	case dom.IsListItem(block):
		return e.splitListItem(block)
	case dom.IsHeader(block):
		return e.splitHeader(block)
	case dom.IsParagraph(block), dom.IsDiv(block) && sep != SeparatorBR:
		return e.splitParagraph(block)
	}
	return e.insertBRAtCaret()
}

// prefersBR reports whether Enter in block inserts a <br> instead of a new paragraph.
func (e *Editor) prefersBR(block *html.Node) bool {
	if !dom.IsBlock(block) {
		return true
	}
	if block == e.host {
		return e.opts.ParagraphSeparator == SeparatorBR || !dom.CanContainTag(e.host, atom.P)
	}
	for x := block; x != nil; x = x.Parent {
		if isSingleLineContainer(x) || dom.IsBlock(x) && dom.CanContainTag(x, atom.P) {
			return false
		}
		if x == e.host {
			break
		}
	}
	return true
}

func isSingleLineContainer(n *html.Node) bool {
	return dom.IsParagraph(n) || dom.IsHeader(n) || dom.IsListItem(n) ||
		dom.IsAnyElement(n, atom.Div, atom.Pre, atom.Address)
}

func (e *Editor) insertBRAtCaret() (EditResult, error) {
	p, err := e.caret()
	if err != nil {
		return Canceled, err
	}
	if _, err := e.insertBRElement(p); err != nil {
		return Canceled, err
	}
	return Handled, nil
}

// insertBRElement inserts a <br> at p, splitting a link around p, and puts the caret on
// the line the break starts.
func (e *Editor) insertBRElement(p dom.Point) (*html.Node, error) {
	betweenBlocks := e.ws.ScanPrevious(p).ReachedBlockBoundary() && e.ws.ScanNext(p).ReachedBlockBoundary()
	if link := e.closestAncestor(p.Container, dom.IsLink); link != nil && dom.IsEditable(link.Parent, e.host) {
		at, err := e.ws.PrepareToSplit(p)
		if err != nil {
			return nil, err
		}
		left, right, err := e.ws.SplitDeep(link, at)
		if err != nil {
			return nil, err
		}
		if right != nil {
			p = dom.PointBefore(right)
		} else {
			p = dom.PointAfter(left)
		}
	}
	br := dom.NewElement(atom.Br)
	if err := e.ws.InsertElement(br, p); err != nil {
		return nil, err
	}
	if betweenBlocks {
		e.collapseAt(dom.PointBefore(br))
		e.setInterline(InterlineBefore)
		return br, nil
	}
	after := dom.PointAfter(br)
	if next := e.ws.ScanNext(after); next.Kind == ws.KindBR && br.NextSibling != next.Content {
		if err := e.tx.MoveNode(next.Content, after); err != nil {
			return br, err
		}
	}
	if dom.IsBlock(br.NextSibling) {
		e.setInterline(InterlineBefore)
	} else {
		e.setInterline(InterlineAfter)
	}
	e.collapseAt(dom.PointAfter(br))
	return br, nil
}

// splitPoint moves p out of a link it is at the edge of.
func (e *Editor) splitPoint(p dom.Point) dom.Point {
	link := e.closestAncestor(p.Container, dom.IsLink)
	if link == nil {
		return p
	}
	switch {
	case isAtStartOf(p, link):
		return dom.PointBefore(link)
	case isAtEndOf(p, link):
		return dom.PointAfter(link)
	}
	return p
}

// splitBlockAt splits block at p. A half that would not exist is created as an empty
// copy of block, so both halves are returned.
func (e *Editor) splitBlockAt(block *html.Node, p dom.Point) (left, right *html.Node, err error) {
	at, err := e.ws.PrepareToSplit(p)
	if err != nil {
		return nil, nil, err
	}
	left, right, err = e.ws.SplitDeep(block, at)
	if err != nil {
		return nil, nil, err
	}
	switch {
	case left == nil:
		left = dom.CloneShallow(block)
		if err := e.tx.InsertNode(left, dom.PointBefore(right)); err != nil {
			return nil, nil, err
		}
	case right == nil:
		right = dom.CloneShallow(block)
		if err := e.tx.InsertNode(right, dom.PointAfter(left)); err != nil {
			return nil, nil, err
		}
	}
	if dom.HasAttr(right, "id") {
		if err := e.tx.RemoveAttribute(right, "id"); err != nil {
			return left, right, err
		}
	}
	return left, right, nil
}

// ensurePaddingBR gives a block without visible content a <br> so it keeps its line.
func (e *Editor) ensurePaddingBR(block *html.Node) error {
	if e.hasVisibleContent(block) || !canHoldPaddingBR(block) {
		return nil
	}
	for c := block.FirstChild; c != nil; c = c.NextSibling {
		if dom.IsBR(c) {
			return nil
		}
	}
	return e.tx.InsertNode(dom.NewElement(atom.Br), dom.PointAtEnd(block))
}

// splitParagraph splits a <p> or <div> at the caret and moves the caret to the start of
// the new right half.
func (e *Editor) splitParagraph(block *html.Node) (EditResult, error) {
	p, err := e.caret()
	if err != nil {
		return Canceled, err
	}
	p = e.splitPoint(p)
	var lineBreak *html.Node
	if prev := e.ws.ScanPrevious(p); prev.Kind == ws.KindBR && e.ws.IsVisibleBR(prev.Content) {
		lineBreak = prev.Content
	}
	left, right, err := e.splitBlockAt(block, p)
	if err != nil {
		return Canceled, err
	}
	// a break that ended a blank line now ends the left half and would vanish
	if lineBreak != nil && dom.IsInclusiveAncestor(left, lineBreak) && !e.ws.IsVisibleBR(lineBreak) {
		if err := e.tx.InsertNode(dom.NewElement(atom.Br), dom.PointAfter(lineBreak)); err != nil {
			return Canceled, err
		}
	}
	return e.finishSplit(left, right)
}

func (e *Editor) finishSplit(left, right *html.Node) (EditResult, error) {
	if err := e.ensurePaddingBR(left); err != nil {
		return Canceled, err
	}
	if err := e.ensurePaddingBR(right); err != nil {
		return Canceled, err
	}
	e.collapseAt(firstCaretPointIn(right))
	return Handled, nil
}

// splitHeader splits a header at the caret. When nothing follows the caret, a new
// paragraph is opened after the header instead of a second header.
func (e *Editor) splitHeader(header *html.Node) (EditResult, error) {
	p, err := e.caret()
	if err != nil {
		return Canceled, err
	}
	left, right, err := e.splitBlockAt(header, e.splitPoint(p))
	if err != nil {
		return Canceled, err
	}
	if e.hasVisibleContent(right) {
		return e.finishSplit(left, right)
	}
	if err := e.tx.DeleteNode(right); err != nil {
		return Canceled, err
	}
	para := dom.NewElement(e.opts.ParagraphSeparator.blockAtom())
	if err := e.tx.InsertNode(para, dom.PointAfter(left)); err != nil {
		return Canceled, err
	}
	e.noteNewBlock(para)
	return e.finishSplit(left, para)
}

// splitListItem splits a list item at the caret. Enter in an empty last item leaves the
// list instead.
func (e *Editor) splitListItem(li *html.Node) (EditResult, error) {
	list := li.Parent
	if dom.IsList(list) && !e.hasVisibleContent(li) && nextNonBlankSibling(li) == nil {
		return e.leaveList(li)
	}
	p, err := e.caret()
	if err != nil {
		return Canceled, err
	}
	left, right, err := e.splitBlockAt(li, e.splitPoint(p))
	if err != nil {
		return Canceled, err
	}
	if !e.hasVisibleContent(right) {
		switch right.DataAtom {
		case atom.Dt:
			right, err = renameElement(e, right, atom.Dd)
		case atom.Dd:
			right, err = renameElement(e, right, atom.Dt)
		}
		if err != nil {
			return Canceled, err
		}
	}
	return e.finishSplit(left, right)
}

// leaveList handles Enter in an empty last list item. A nested item moves up one level
// unless the preference closes the list; otherwise the item becomes a paragraph after
// the outermost list.
func (e *Editor) leaveList(li *html.Node) (EditResult, error) {
	list := li.Parent
	nested := dom.IsList(list.Parent) || dom.IsListItem(list.Parent)
	if nested && !e.opts.ReturnInEmptyListItemClosesList {
		if err := e.liftListItem(li, false); err != nil {
			return Canceled, err
		}
		if li.Parent != nil {
			e.collapseAt(firstCaretPointIn(li))
		}
		return Handled, nil
	}
	outer := list
	for x := list.Parent; x != nil && x != e.host && (dom.IsList(x) || dom.IsListItem(x)); x = x.Parent {
		if dom.IsList(x) {
			outer = x
		}
	}
	if !dom.IsEditable(outer.Parent, e.host) {
		return Canceled, nil
	}
	para := dom.NewElement(e.opts.ParagraphSeparator.blockAtom())
	if err := e.tx.InsertNode(para, dom.PointAfter(outer)); err != nil {
		return Canceled, err
	}
	if err := e.tx.DeleteNode(li); err != nil {
		return Canceled, err
	}
	if list.Parent != nil && !hasListItem(list) {
		if err := e.tx.DeleteNode(list); err != nil {
			return Canceled, err
		}
	}
	if err := e.tx.InsertNode(dom.NewElement(atom.Br), dom.PointAtStart(para)); err != nil {
		return Canceled, err
	}
	e.noteNewBlock(para)
	e.collapseAt(dom.PointAtStart(para))
	return Handled, nil
}
