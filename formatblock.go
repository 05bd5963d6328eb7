package htmledit

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dannyswat/htmledit/internal/dom"
	"github.com/dannyswat/htmledit/internal/log"
)

var formatBlockCommandTags = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Pre: true, atom.Address: true, atom.Blockquote: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
}

// FormatBlock makes the selected lines blocks of tag. An empty tag or "normal" removes
// the format blocks around them.
func (e *Editor) FormatBlock(ctx context.Context, tag string) (EditResult, error) {
	tag = strings.ToLower(strings.Trim(strings.TrimSpace(tag), "<>"))
	var a atom.Atom
	if tag != "" && tag != "normal" {
		a = atom.Lookup([]byte(tag))
		if !formatBlockCommandTags[a] {
			return Canceled, fmt.Errorf("%w: format block %q", ErrInvalidArgument, tag)
		}
	}
	if e.sel.RangeCount() == 0 {
		return Canceled, ErrNoSelection
	}
	return e.runAction(ctx, SubActionCreateOrRemoveBlock, DirectionNone, func() (EditResult, error) {
		if !e.canHandleBlockAction() {
			return Canceled, nil
		}
		return e.formatBlock(a)
	})
}

// formatBlock runs inside an open action. A zero tag removes format blocks.
func (e *Editor) formatBlock(tag atom.Atom) (EditResult, error) {
	nodes, err := e.prepareBlockTargets(SubActionCreateOrRemoveBlock)
	if err != nil {
		return Canceled, err
	}
	if tag == 0 {
		return e.removeFormatBlocks(nodes)
	}
	if e.isTrivialTargets(nodes) {
		if _, err := e.createBlockForEmptyLine(nodes, tag, 0); err != nil {
			return Canceled, err
		}
		return Handled, nil
	}
	if tag == atom.Blockquote {
		return e.dropLineBreaksOfWrappedLines(e.wrapInBlockquote(nodes))
	}
	var cur *html.Node
	queue := nodes
	for i := 0; i < len(queue); i++ {
		n := queue[i]
		if n.Parent == nil || !dom.IsEditable(n, e.host) {
			continue
		}
		switch {
		case dom.IsFormatBlock(n) && !hasBlockChild(n) && !dom.IsList(n) && !dom.IsListItem(n):
			cur = nil
			if n.DataAtom == tag {
				continue
			}
			renamed, err := renameElement(e, n, tag)
			if err != nil {
				return Canceled, err
			}
			e.noteNewBlock(renamed)
		case dom.IsBlock(n) && dom.IsContainer(n):
			cur = nil
			queue = append(queue[:i+1], append(dom.Children(n), queue[i+1:]...)...)
		case dom.IsBR(n):
			if cur != nil {
				cur = nil
				if err := e.tx.DeleteNode(n); err != nil {
					return Canceled, err
				}
				continue
			}
			block, err := e.insertElementWithSplitting(tag, dom.PointBefore(n))
			if err != nil {
				return Canceled, err
			}
			e.noteNewBlock(block)
			if err := e.moveInto(n, block); err != nil {
				return Canceled, err
			}
		case dom.IsBlock(n):
			cur = nil
		default:
			if cur == nil || !followsDirectly(cur, n) {
				if isBlank(n) || n.Type == html.TextNode && !e.ws.IsVisibleText(n) {
					continue
				}
				if cur, err = e.insertElementWithSplitting(tag, dom.PointBefore(n)); err != nil {
					return Canceled, err
				}
				e.noteNewBlock(cur)
			}
			if err := e.moveInto(n, cur); err != nil {
				return Canceled, err
			}
		}
	}
	return e.dropLineBreaksOfWrappedLines(Handled, nil)
}

func (e *Editor) noteNewBlock(b *html.Node) {
	if e.top != nil && e.top.newBlock == nil {
		e.top.newBlock = b
	}
}

func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if dom.IsBlock(c) {
			return true
		}
	}
	return false
}

// wrapInBlockquote moves each run of adjacent targets into a new <blockquote>.
func (e *Editor) wrapInBlockquote(nodes []*html.Node) (EditResult, error) {
	var quote *html.Node
	for _, n := range nodes {
		if n.Parent == nil || !dom.IsEditable(n, e.host) {
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
			e.noteNewBlock(quote)
		}
		if err := e.moveInto(n, quote); err != nil {
			return Canceled, err
		}
	}
	return Handled, nil
}

// removeFormatBlocks replaces the format blocks holding the targets by their contents.
// Lists, tables and generic containers are searched for format blocks.
func (e *Editor) removeFormatBlocks(nodes []*html.Node) (EditResult, error) {
	isRemovable := func(n *html.Node) bool {
		return dom.IsFormatBlock(n) && !dom.IsDiv(n) && !dom.IsBlockquote(n) && !dom.IsList(n) && !dom.IsListItem(n)
	}
	done := false
	queue := nodes
	for i := 0; i < len(queue); i++ {
		n := queue[i]
		if n.Parent == nil || !dom.IsEditable(n, e.host) {
			continue
		}
		target := n
		switch {
		case isRemovable(n):
		case dom.IsBlock(n) && dom.IsContainer(n):
			queue = append(queue[:i+1], append(dom.Children(n), queue[i+1:]...)...)
			continue
		default:
			target = e.closestAncestor(n, isRemovable)
		}
		if target == nil || target.Parent == nil || !dom.IsEditable(target.Parent, e.host) {
			continue
		}
		log.Debug(log.CatBlock, "remove format block", "block", dom.Describe(target))
		if err := e.removeBlockContainer(target); err != nil {
			return Canceled, err
		}
		done = true
	}
	if !done {
		return Canceled, nil
	}
	return Handled, nil
}
