package htmledit

import (
	"context"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dannyswat/htmledit/internal/dom"
	"github.com/dannyswat/htmledit/internal/log"
)

// Indent indents the selected lines: list items are nested one level deeper, other
// content goes into a <blockquote>, or gets a larger start margin in CSS mode.
func (e *Editor) Indent(ctx context.Context) (EditResult, error) {
	if e.sel.RangeCount() == 0 {
		return Canceled, ErrNoSelection
	}
	return e.runAction(ctx, SubActionIndent, DirectionNone, func() (EditResult, error) {
		if !e.canHandleBlockAction() {
			return Canceled, nil
		}
		nodes, err := e.prepareBlockTargets(SubActionIndent)
		if err != nil {
			return Canceled, err
		}
		if e.opts.UseCSS {
			return e.dropLineBreaksOfWrappedLines(e.indentWithCSS(nodes))
		}
		return e.dropLineBreaksOfWrappedLines(e.indentWithHTML(nodes))
	})
}

func (e *Editor) indentWithHTML(nodes []*html.Node) (EditResult, error) {
	if e.isTrivialTargets(nodes) {
		if _, err := e.createBlockForEmptyLine(nodes, atom.Blockquote, 0); err != nil {
			return Canceled, err
		}
		return Handled, nil
	}
	var quote *html.Node
	for _, n := range nodes {
		if n.Parent == nil || !dom.IsEditable(n, e.host) {
			continue
		}
		if isNestableListChild(n) {
			quote = nil
			if err := e.indentListChild(n); err != nil {
				return Canceled, err
			}
			continue
		}
		if quote == nil || !followsDirectly(quote, n) {
			if isBlank(n) {
				continue
			}
			var err error
			if quote, err = e.insertElementWithSplitting(atom.Blockquote, dom.PointBefore(n)); err != nil {
				return Canceled, err
			}
		}
		if err := e.moveInto(n, quote); err != nil {
			return Canceled, err
		}
	}
	return Handled, nil
}

func (e *Editor) indentWithCSS(nodes []*html.Node) (EditResult, error) {
	if e.isTrivialTargets(nodes) {
		div, err := e.createBlockForEmptyLine(nodes, atom.Div, 0)
		if err != nil {
			return Canceled, err
		}
		return Handled, e.changeStartMargin(div, 1)
	}
	var div *html.Node
	for _, n := range nodes {
		if n.Parent == nil || !dom.IsEditable(n, e.host) {
			continue
		}
		switch {
		case isNestableListChild(n):
			div = nil
			if err := e.indentListChild(n); err != nil {
				return Canceled, err
			}
		case dom.IsBlock(n) && !dom.IsAnyTableElementButNotTable(n):
			div = nil
			if err := e.changeStartMargin(n, 1); err != nil {
				return Canceled, err
			}
		default:
			if div == nil || !followsDirectly(div, n) {
				if isBlank(n) {
					continue
				}
				var err error
				if div, err = e.insertElementWithSplitting(atom.Div, dom.PointBefore(n)); err != nil {
					return Canceled, err
				}
				if err := e.changeStartMargin(div, 1); err != nil {
					return Canceled, err
				}
			}
			if err := e.moveInto(n, div); err != nil {
				return Canceled, err
			}
		}
	}
	return Handled, nil
}

// isNestableListChild is a list item or a nested list directly inside a list.
func isNestableListChild(n *html.Node) bool {
	return (dom.IsListItem(n) || dom.IsList(n)) && dom.IsList(n.Parent)
}

// indentListChild nests n one level deeper by moving it into a sibling list of its
// parent's type, creating one when neither neighbor is such a list.
func (e *Editor) indentListChild(n *html.Node) error {
	list := n.Parent
	if prev := previousNonBlankSibling(n); dom.IsList(prev) && prev.DataAtom == list.DataAtom {
		log.Debug(log.CatIndent, "nest into previous list", "node", dom.Describe(n))
		return e.moveInto(n, prev)
	}
	if next := nextNonBlankSibling(n); dom.IsList(next) && next.DataAtom == list.DataAtom {
		log.Debug(log.CatIndent, "nest into next list", "node", dom.Describe(n))
		return e.tx.MoveNode(n, dom.PointAtStart(next))
	}
	nested := dom.NewElement(list.DataAtom)
	if err := e.tx.InsertNode(nested, dom.PointBefore(n)); err != nil {
		return err
	}
	return e.moveInto(n, nested)
}
