package htmledit

import (
	"context"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dannyswat/htmledit/internal/dom"
	"github.com/dannyswat/htmledit/internal/log"
)

func isAbsolutelyPositioned(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && dom.StyleValue(n, "position") == "absolute"
}

// SetAbsolutePosition moves the selected lines into a <div> positioned absolutely above
// every other positioned element of the editing host.
func (e *Editor) SetAbsolutePosition(ctx context.Context) (EditResult, error) {
	if e.sel.RangeCount() == 0 {
		return Canceled, ErrNoSelection
	}
	return e.runAction(ctx, SubActionSetPositionToAbsolute, DirectionNone, func() (EditResult, error) {
		if !e.canHandleBlockAction() {
			return Canceled, nil
		}
		if e.closestAncestor(e.sel.Start().Container, isAbsolutelyPositioned) != nil {
			return Ignored, nil
		}
		nodes, err := e.prepareBlockTargets(SubActionSetPositionToAbsolute)
		if err != nil {
			return Canceled, err
		}
		var div *html.Node
		if e.isTrivialTargets(nodes) {
			if div, err = e.createBlockForEmptyLine(nodes, atom.Div, 0); err != nil {
				return Canceled, err
			}
		} else if div, err = e.moveIntoPositionedDiv(nodes); err != nil {
			return Canceled, err
		}
		if div == nil {
			return Canceled, nil
		}
		return e.dropLineBreaksOfWrappedLines(Handled, e.makeAbsolute(div))
	})
}

// moveIntoPositionedDiv moves nodes into one new <div>. List items keep a list of their
// type around them.
func (e *Editor) moveIntoPositionedDiv(nodes []*html.Node) (*html.Node, error) {
	var div, list *html.Node
	for _, n := range nodes {
		if n.Parent == nil || !dom.IsEditable(n, e.host) || div == nil && isBlank(n) {
			continue
		}
		if div == nil {
			var err error
			if div, err = e.insertElementWithSplitting(atom.Div, dom.PointBefore(n)); err != nil {
				return nil, err
			}
			e.noteNewBlock(div)
		}
		if dom.IsListItem(n) && dom.IsList(n.Parent) {
			if list == nil || list.DataAtom != n.Parent.DataAtom {
				list = dom.NewElement(n.Parent.DataAtom)
				if err := e.tx.InsertNode(list, dom.PointAtEnd(div)); err != nil {
					return nil, err
				}
			}
			if err := e.moveInto(n, list); err != nil {
				return nil, err
			}
			continue
		}
		list = nil
		if err := e.moveInto(n, div); err != nil {
			return nil, err
		}
	}
	return div, nil
}

// makeAbsolute positions el absolutely. Offsets already set on el are kept.
func (e *Editor) makeAbsolute(el *html.Node) error {
	z := 0
	for n := e.host.FirstChild; n != nil; n = dom.NextNode(n, e.host) {
		if n == el || !isAbsolutelyPositioned(n) {
			continue
		}
		if v, err := strconv.Atoi(dom.StyleValue(n, "z-index")); err == nil && v > z {
			z = v
		}
	}
	log.Debug(log.CatIndent, "set absolute position", "element", dom.Describe(el), "z-index", z+1)
	if err := e.setStyle(el, "position", "absolute"); err != nil {
		return err
	}
	for _, prop := range []string{"top", "left"} {
		if dom.StyleValue(el, prop) == "" {
			if err := e.setStyle(el, prop, "0px"); err != nil {
				return err
			}
		}
	}
	return e.setStyle(el, "z-index", strconv.Itoa(z+1))
}

// SetStaticPosition returns the absolutely positioned element around the caret to the
// normal flow. A <div> left without attributes is replaced by its contents.
func (e *Editor) SetStaticPosition(ctx context.Context) (EditResult, error) {
	if e.sel.RangeCount() == 0 {
		return Canceled, ErrNoSelection
	}
	return e.runAction(ctx, SubActionSetPositionToStatic, DirectionNone, func() (EditResult, error) {
		if !e.canHandleBlockAction() {
			return Canceled, nil
		}
		el := e.closestAncestor(e.sel.Start().Container, isAbsolutelyPositioned)
		if el == nil || !dom.IsEditable(el, e.host) {
			return Canceled, nil
		}
		for _, prop := range []string{"position", "top", "left", "z-index"} {
			if err := e.setStyle(el, prop, ""); err != nil {
				return Canceled, err
			}
		}
		if dom.IsDiv(el) && len(el.Attr) == 0 {
			if err := e.removeBlockContainer(el); err != nil {
				return Canceled, err
			}
		}
		return Handled, nil
	})
}
