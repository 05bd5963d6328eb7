package htmledit

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dannyswat/htmledit/internal/dom"
	"github.com/dannyswat/htmledit/internal/log"
)

const emptyBlockOptions = dom.IgnoreSingleBR | dom.ListItemIsVisible | dom.TableCellIsVisible

// scanEmptyBlockInclusiveAncestor returns the highest empty block holding n below the
// editing host, or nil. Table elements stop the walk.
func (e *Editor) scanEmptyBlockInclusiveAncestor(n *html.Node) *html.Node {
	if !dom.IsBlock(e.host) {
		return nil
	}
	var found *html.Node
	for x := e.ws.BlockOf(n); x != nil && x != e.host; x = x.Parent {
		if !dom.IsBlock(x) {
			continue
		}
		if dom.IsAnyTableElement(x) || !dom.IsEmptyNode(x, emptyBlockOptions) {
			break
		}
		found = x
	}
	if found == nil || found.Parent == nil || !dom.IsEditable(found.Parent, e.host) || !dom.IsEditable(found, e.host) {
		return nil
	}
	return found
}

// emptyBlockDeleter removes an empty block around the caret.
type emptyBlockDeleter struct {
	e     *Editor
	block *html.Node
}

// danglingListItem reports whether block is the first item of a list that is not
// nested in another list.
func (d *emptyBlockDeleter) danglingListItem() bool {
	b := d.block
	return dom.IsListItem(b) && b.Parent != nil && dom.IsList(b.Parent) &&
		firstNonBlank(b.Parent) == b &&
		b.Parent.Parent != nil && !dom.IsList(b.Parent.Parent)
}

// firstNonBlank skips whitespace text and comments at the start of n.
func firstNonBlank(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !isBlank(c) {
			return c
		}
	}
	return nil
}

// caretAfterDeletion computes where the caret goes once the block is gone.
func (d *emptyBlockDeleter) caretAfterDeletion(dir Direction) (dom.Point, bool) {
	e := d.e
	b := d.block
	switch {
	case dir == DirectionNone:
		return dom.Point{}, false
	case !dir.IsBackward():
		if next := e.editableLeafAfter(b); next != nil {
			return startOfLeaf(next), true
		}
	default:
		if prev := e.editableLeafBefore(b); prev != nil {
			return endOfLeaf(prev), true
		}
	}
	return dom.PointAfter(b), true
}

func (e *Editor) editableLeafAfter(n *html.Node) *html.Node {
	for x := dom.NextLeaf(n, e.host); x != nil; x = dom.NextLeaf(x, e.host) {
		if x.Type != html.CommentNode && dom.IsEditable(x, e.host) {
			return x
		}
	}
	return nil
}

func (e *Editor) editableLeafBefore(n *html.Node) *html.Node {
	for x := dom.PreviousLeaf(n, e.host); x != nil; x = dom.PreviousLeaf(x, e.host) {
		if x.Type != html.CommentNode && dom.IsEditable(x, e.host) {
			return x
		}
	}
	return nil
}

func (d *emptyBlockDeleter) run(dir Direction) (EditResult, error) {
	e := d.e
	b := d.block
	log.Debug(log.CatDelete, "delete empty block", "block", dom.Describe(b), "direction", dir)
	if d.danglingListItem() {
		list := b.Parent
		br := dom.NewElement(atom.Br)
		if !dom.CanContainTag(list.Parent, atom.Br) {
			return Canceled, nil
		}
		if err := e.tx.InsertNode(br, dom.PointBefore(list)); err != nil {
			return Canceled, err
		}
		if err := e.tx.DeleteNode(b); err != nil {
			return Canceled, err
		}
		if !hasListItem(list) && list.Parent != nil {
			if err := e.tx.DeleteNode(list); err != nil {
				return Canceled, err
			}
		}
		e.collapseAt(dom.PointAfter(br))
		if e.top != nil {
			e.top.didDeleteEmptyParentBlocks = true
		}
		return Handled, nil
	}

	caret, move := d.caretAfterDeletion(dir)
	if move {
		defer e.tx.Tracker().Track(&caret)()
	}
	if err := e.tx.DeleteNode(b); err != nil {
		return Canceled, err
	}
	if move {
		e.collapseSelection(caret)
	}
	if e.top != nil {
		e.top.didDeleteEmptyParentBlocks = true
	}
	return Handled, nil
}

// targetRange is the range run would remove, without mutating.
func (d *emptyBlockDeleter) targetRange(dir Direction) dom.Range {
	e := d.e
	b := d.block
	if d.danglingListItem() || dir == DirectionNone {
		return dom.SelectNode(b)
	}
	if !dir.IsBackward() {
		if next := e.editableLeafAfter(b); next != nil {
			return dom.NewRange(dom.PointBefore(b), startOfLeaf(next))
		}
		return dom.SelectNode(b)
	}
	if prev := e.editableLeafBefore(b); prev != nil {
		return dom.NewRange(endOfLeaf(prev), dom.PointAfter(b))
	}
	return dom.SelectNode(b)
}

func hasListItem(list *html.Node) bool {
	for c := list.FirstChild; c != nil; c = c.NextSibling {
		if dom.IsListItem(c) {
			return true
		}
	}
	return false
}
