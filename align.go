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

// Align sets the alignment of the selected lines to "left", "right", "center" or
// "justify". An empty alignment clears it.
func (e *Editor) Align(ctx context.Context, align string) (EditResult, error) {
	align = strings.ToLower(strings.TrimSpace(align))
	switch align {
	case "", "left", "right", "center", "justify":
	default:
		return Canceled, fmt.Errorf("%w: alignment %q", ErrInvalidArgument, align)
	}
	if e.sel.RangeCount() == 0 {
		return Canceled, ErrNoSelection
	}
	return e.runAction(ctx, SubActionSetOrClearAlignment, DirectionNone, func() (EditResult, error) {
		if !e.canHandleBlockAction() {
			return Canceled, nil
		}
		nodes, err := e.prepareBlockTargets(SubActionSetOrClearAlignment)
		if err != nil {
			return Canceled, err
		}
		if e.isTrivialTargets(nodes) {
			div, err := e.createBlockForEmptyLine(nodes, atom.Div, 0)
			if err != nil {
				return Canceled, err
			}
			return Handled, e.setBlockAlignment(div, align)
		}
		var div *html.Node
		for _, n := range nodes {
			if n.Parent == nil || !dom.IsEditable(n, e.host) {
				continue
			}
			switch {
			case dom.IsBlock(n) && !dom.IsList(n) && !dom.IsAnyTableElementButNotTable(n) || dom.IsTableCell(n):
				div = nil
				err = e.setBlockAlignment(n, align)
			case dom.IsBR(n):
				if div != nil && followsDirectly(div, n) {
					err = e.moveInto(n, div)
				}
				div = nil
			case dom.IsList(n) || dom.IsAnyTableElementButNotTable(n):
				div = nil
			default:
				if div == nil || !followsDirectly(div, n) {
					if isBlank(n) {
						continue
					}
					if div, err = e.insertElementWithSplitting(atom.Div, dom.PointBefore(n)); err != nil {
						return Canceled, err
					}
					if err := e.setBlockAlignment(div, align); err != nil {
						return Canceled, err
					}
				}
				err = e.moveInto(n, div)
			}
			if err != nil {
				return Canceled, err
			}
		}
		return e.dropLineBreaksOfWrappedLines(Handled, nil)
	})
}

// setBlockAlignment aligns block and strips the alignment of its descendants so the new
// one applies.
func (e *Editor) setBlockAlignment(block *html.Node, align string) error {
	if err := e.clearDescendantAlignment(block); err != nil {
		return err
	}
	log.Debug(log.CatIndent, "align", "block", dom.Describe(block), "align", align)
	if e.opts.UseCSS {
		if dom.HasAttr(block, "align") {
			if err := e.tx.RemoveAttribute(block, "align"); err != nil {
				return err
			}
		}
		if dom.IsTable(block) {
			margin := ""
			if align == "center" {
				margin = "auto"
			}
			if err := e.setStyle(block, "margin-left", margin); err != nil {
				return err
			}
			if err := e.setStyle(block, "margin-right", margin); err != nil {
				return err
			}
		}
		return e.setStyle(block, "text-align", align)
	}
	if dom.StyleValue(block, "text-align") != "" {
		if err := e.setStyle(block, "text-align", ""); err != nil {
			return err
		}
	}
	if align == "" {
		if !dom.HasAttr(block, "align") {
			return nil
		}
		return e.tx.RemoveAttribute(block, "align")
	}
	if align == "justify" && !dom.IsDiv(block) {
		return e.setStyle(block, "text-align", align)
	}
	return e.tx.SetAttribute(block, "align", align)
}

// clearDescendantAlignment removes align attributes and text-align styles below block,
// unwrapping <center> elements. Tables keep their own alignment.
func (e *Editor) clearDescendantAlignment(block *html.Node) error {
	for c := block.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type != html.ElementNode || dom.IsTable(c) || !dom.IsEditable(c, e.host) {
			c = next
			continue
		}
		if err := e.clearDescendantAlignment(c); err != nil {
			return err
		}
		if dom.IsElement(c, atom.Center) {
			if err := e.removeBlockContainer(c); err != nil {
				return err
			}
			c = next
			continue
		}
		if dom.HasAttr(c, "align") && dom.IsBlock(c) {
			if err := e.tx.RemoveAttribute(c, "align"); err != nil {
				return err
			}
		}
		if dom.StyleValue(c, "text-align") != "" {
			if err := e.setStyle(c, "text-align", ""); err != nil {
				return err
			}
		}
		c = next
	}
	return nil
}

// Alignment reports the alignment of the block holding the caret. An align attribute of
// "justify" is only honored on <div>.
func (e *Editor) Alignment() (string, error) {
	p, err := e.caret()
	if err != nil {
		return "", err
	}
	for x := p.Container; x != nil; x = x.Parent {
		if x.Type != html.ElementNode {
			continue
		}
		if v := dom.StyleValue(x, "text-align"); v != "" {
			return normalizeAlignment(v), nil
		}
		if v, ok := dom.Attr(x, "align"); ok && dom.IsBlock(x) {
			v = strings.ToLower(v)
			if v != "justify" || dom.IsDiv(x) {
				return normalizeAlignment(v), nil
			}
		}
		if dom.IsElement(x, atom.Center) {
			return "center", nil
		}
		if x == e.host {
			break
		}
	}
	return "left", nil
}

func normalizeAlignment(v string) string {
	switch v {
	case "start", "-moz-left", "-webkit-left":
		return "left"
	case "end", "-moz-right", "-webkit-right":
		return "right"
	case "middle", "-moz-center", "-webkit-center":
		return "center"
	}
	return v
}
