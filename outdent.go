package htmledit

import (
	"context"

	"golang.org/x/net/html"

	"github.com/dannyswat/htmledit/internal/dom"
	"github.com/dannyswat/htmledit/internal/log"
)

// Outdent undoes one level of indentation of the selected lines.
func (e *Editor) Outdent(ctx context.Context) (EditResult, error) {
	if e.sel.RangeCount() == 0 {
		return Canceled, ErrNoSelection
	}
	return e.runAction(ctx, SubActionOutdent, DirectionNone, func() (EditResult, error) {
		if !e.canHandleBlockAction() {
			return Canceled, nil
		}
		nodes, err := e.prepareBlockTargets(SubActionOutdent)
		if err != nil {
			return Canceled, err
		}
		o := &outdenter{e: e}
		return o.run(nodes)
	})
}

// outdenter accumulates runs of nodes sharing the ancestor that indents them and
// outdents each run as a whole.
type outdenter struct {
	e *Editor

	// pending is the indenting ancestor of the run first..last.
	pending     *html.Node
	first, last *html.Node
	changed     bool
}

func (o *outdenter) run(nodes []*html.Node) (EditResult, error) {
	e := o.e
	for _, n := range nodes {
		if n.Parent == nil || !dom.IsEditable(n, e.host) {
			continue
		}
		if o.pending != nil && dom.IsAncestor(o.pending, n) {
			o.last = n
			continue
		}
		if err := o.flush(); err != nil {
			return Canceled, err
		}
		if err := o.outdentNode(n); err != nil {
			return Canceled, err
		}
	}
	if err := o.flush(); err != nil {
		return Canceled, err
	}
	if !o.changed {
		return Canceled, nil
	}
	return Handled, nil
}

// isIndenting reports whether x indents its contents.
func (o *outdenter) isIndenting(x *html.Node) bool {
	if dom.IsBlockquote(x) && !dom.IsMailCite(x) {
		return true
	}
	return o.e.opts.UseCSS && dom.IsBlock(x) && startMargin(x) > 0
}

// outdentNode handles a node that is not part of the pending run.
func (o *outdenter) outdentNode(n *html.Node) error {
	e := o.e
	switch {
	case dom.IsBlockquote(n) && !dom.IsMailCite(n):
		o.changed = true
		return e.removeBlockContainer(n)
	case o.e.opts.UseCSS && dom.IsBlock(n) && startMargin(n) > 0:
		o.changed = true
		return e.changeStartMargin(n, -1)
	case dom.IsListItem(n) && dom.IsList(n.Parent):
		o.changed = true
		return e.liftListItem(n, false)
	case dom.IsList(n) && dom.IsList(n.Parent):
		o.changed = true
		return o.liftNestedList(n)
	}
	for x := n.Parent; x != nil && x != e.host && dom.IsEditable(x, e.host); x = x.Parent {
		if o.isIndenting(x) {
			o.pending, o.first, o.last = x, n, n
			return nil
		}
		if dom.IsListItem(x) && dom.IsList(x.Parent) {
			o.changed = true
			return e.liftListItem(x, false)
		}
	}
	return nil
}

// liftNestedList moves the items of a list nested directly in another list up into the
// outer list.
func (o *outdenter) liftNestedList(list *html.Node) error {
	e := o.e
	for c := list.FirstChild; c != nil; {
		next := c.NextSibling
		if dom.IsListItem(c) || dom.IsList(c) {
			if err := e.liftListItemOrList(c); err != nil {
				return err
			}
		}
		c = next
	}
	if list.Parent != nil && firstNonBlank(list) == nil {
		return e.tx.DeleteNode(list)
	}
	return nil
}

func (e *Editor) liftListItemOrList(n *html.Node) error {
	if dom.IsListItem(n) {
		return e.liftListItem(n, false)
	}
	piece, err := e.isolateInList(n)
	if err != nil {
		return err
	}
	if err := e.tx.MoveNode(n, dom.PointBefore(piece)); err != nil {
		return err
	}
	if piece.Parent != nil && firstNonBlank(piece) == nil {
		return e.tx.DeleteNode(piece)
	}
	return nil
}

// flush outdents the pending run: the indenting ancestor is split so the run is alone in
// its middle piece, whose indentation is then removed.
func (o *outdenter) flush() error {
	if o.pending == nil {
		return nil
	}
	e := o.e
	block, first, last := o.pending, o.first, o.last
	o.pending, o.first, o.last = nil, nil, nil
	if block.Parent == nil || first.Parent == nil || last.Parent == nil {
		return nil
	}
	middle, err := e.splitRangeOffFromBlock(block, first, last)
	if err != nil {
		return err
	}
	log.Debug(log.CatIndent, "outdent run", "block", dom.Describe(middle))
	o.changed = true
	if dom.IsBlockquote(middle) && !dom.IsMailCite(middle) {
		return e.removeBlockContainer(middle)
	}
	return e.changeStartMargin(middle, -1)
}

// splitRangeOffFromBlock splits block before first and after last and returns the piece
// holding first..last.
func (e *Editor) splitRangeOffFromBlock(block, first, last *html.Node) (*html.Node, error) {
	_, middle, err := e.ws.SplitDeep(block, dom.PointBefore(first))
	if err != nil {
		return nil, err
	}
	left, _, err := e.ws.SplitDeep(middle, dom.PointAfter(last))
	if err != nil {
		return nil, err
	}
	return left, nil
}
