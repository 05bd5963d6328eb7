package htmledit

import (
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dannyswat/htmledit/internal/dom"
	"github.com/dannyswat/htmledit/internal/log"
)

// canHandleBlockAction reports whether a block action may run on the selection.
func (e *Editor) canHandleBlockAction() bool {
	return e.sel.RangeCount() > 0 && e.selectionIsEditable()
}

// prepareBlockTargets extends the selection to hard lines and collects the targets.
func (e *Editor) prepareBlockTargets(sub SubAction) ([]*html.Node, error) {
	if e.top != nil {
		e.top.lineBreaks = e.lineBreaksEndingSelection()
	}
	ranges := e.blockActionRanges()
	nodes, err := e.collectTargets(ranges, sub, false)
	if err != nil || e.top == nil || len(e.top.lineBreaks) == 0 {
		return nodes, err
	}
	// a line's own break stays behind and is dropped once the line is wrapped
	out := nodes[:0]
	for _, n := range nodes {
		if !containsNode(e.top.lineBreaks, n) {
			out = append(out, n)
		}
	}
	return out, nil
}

func containsNode(nodes []*html.Node, n *html.Node) bool {
	for _, x := range nodes {
		if x == n {
			return true
		}
	}
	return false
}

// lineBreaksEndingSelection returns the <br> ending the last line of each selection
// range when that line has content.
func (e *Editor) lineBreaksEndingSelection() []*html.Node {
	var brs []*html.Node
	for _, r := range e.sel.Ranges() {
		br := e.lineBreakAfter(r.End)
		if br == nil || e.ws.ScanPrevious(dom.PointBefore(br)).ReachedBlockBoundary() {
			continue
		}
		brs = append(brs, br)
	}
	return brs
}

// dropLineBreaksOfWrappedLines removes the <br> elements that ended the collected lines
// once those lines are wrapped. A break left at the end of a new block ends nothing, and
// a break left at the start of the following line would render as a blank line.
func (e *Editor) dropLineBreaksOfWrappedLines(res EditResult, err error) (EditResult, error) {
	if err != nil || res != Handled || e.top == nil {
		return res, err
	}
	brs := e.top.lineBreaks
	e.top.lineBreaks = nil
	for _, br := range brs {
		if br.Parent == nil || !dom.IsInclusiveAncestor(e.host, br) || !dom.IsEditable(br.Parent, e.host) {
			continue
		}
		startsLine := e.ws.ScanPrevious(dom.PointBefore(br)).ReachedBlockBoundary()
		if startsLine != e.ws.IsVisibleBR(br) {
			continue
		}
		log.Debug(log.CatBlock, "drop line break of wrapped line", "br", dom.Describe(br))
		if err := e.tx.DeleteNode(br); err != nil {
			return Canceled, err
		}
	}
	return res, nil
}

// splitAncestorsFor splits the ancestors of p until a container that may hold tag is
// found, and returns the point in it where an element of tag goes.
func (e *Editor) splitAncestorsFor(tag atom.Atom, p dom.Point) (dom.Point, error) {
	at, err := e.ws.PrepareToSplit(p)
	if err != nil {
		return p, err
	}
	var target *html.Node
	for x := at.Container; x != nil; x = x.Parent {
		if x.Type == html.ElementNode && dom.CanContainTag(x, tag) {
			target = x
			break
		}
		if x == e.host {
			break
		}
	}
	if target == nil || !dom.IsEditable(target, e.host) {
		return at, fmt.Errorf("%w: no ancestor of %s can hold <%s>", ErrFailed, at, tag)
	}
	if target == at.Container {
		return at, nil
	}
	child := dom.ChildContaining(target, at.Container)
	left, right, err := e.ws.SplitDeep(child, at)
	if err != nil {
		return at, err
	}
	switch {
	case left == nil:
		return dom.PointBefore(right), nil
	case right == nil:
		return dom.PointAfter(left), nil
	}
	return dom.PointBefore(right), nil
}

// insertElementWithSplitting creates an element of tag at p, splitting ancestors that
// cannot hold it.
func (e *Editor) insertElementWithSplitting(tag atom.Atom, p dom.Point) (*html.Node, error) {
	at, err := e.splitAncestorsFor(tag, p)
	if err != nil {
		return nil, err
	}
	el := dom.NewElement(tag)
	if err := e.tx.InsertNode(el, at); err != nil {
		return nil, err
	}
	log.Debug(log.CatBlock, "inserted element", "tag", tag, "at", at)
	return el, nil
}

// isTrivialTargets reports whether nodes hold nothing but line breaks, empty inline
// elements and invisible text.
func (e *Editor) isTrivialTargets(nodes []*html.Node) bool {
	for _, n := range nodes {
		switch {
		case dom.IsBR(n), dom.IsEmptyInline(n):
		case n.Type == html.TextNode && !e.ws.IsVisibleText(n):
		case n.Type == html.CommentNode:
		default:
			return false
		}
	}
	return true
}

// createBlockForEmptyLine replaces the trivial nodes of an empty line by a new element
// of tag holding a padding <br>, and puts the caret in it. inner, when set, is created
// inside the new element and receives the caret.
func (e *Editor) createBlockForEmptyLine(nodes []*html.Node, tag, inner atom.Atom) (*html.Node, error) {
	p, err := e.caret()
	if err != nil {
		return nil, err
	}
	block, err := e.insertElementWithSplitting(tag, p)
	if err != nil {
		return nil, err
	}
	holder := block
	if inner != 0 {
		holder = dom.NewElement(inner)
		if err := e.tx.InsertNode(holder, dom.PointAtStart(block)); err != nil {
			return nil, err
		}
	}
	if err := e.tx.InsertNode(dom.NewElement(atom.Br), dom.PointAtStart(holder)); err != nil {
		return nil, err
	}
	for _, n := range nodes {
		if n.Parent == nil || !dom.IsEditable(n.Parent, e.host) || dom.IsInclusiveAncestor(n, block) {
			continue
		}
		if err := e.tx.DeleteNode(n); err != nil {
			return nil, err
		}
	}
	if e.top != nil {
		e.top.newBlock = holder
	}
	e.collapseAt(dom.PointAtStart(holder))
	return block, nil
}

// removeBlockContainer replaces el by its children, adding line breaks where the
// removed block boundaries separated inline content.
func (e *Editor) removeBlockContainer(el *html.Node) error {
	if el.Parent == nil {
		return nil
	}
	first, last := firstNonBlank(el), lastNonBlank(el)
	prev, next := previousNonBlankSibling(el), nextNonBlankSibling(el)
	inline := func(n *html.Node) bool { return n != nil && !dom.IsBlock(n) }
	if first == nil {
		if inline(prev) && !dom.IsBR(prev) && inline(next) {
			if err := e.tx.InsertNode(dom.NewElement(atom.Br), dom.PointAtStart(el)); err != nil {
				return err
			}
		}
	} else {
		if inline(prev) && !dom.IsBR(prev) && inline(first) {
			if err := e.tx.InsertNode(dom.NewElement(atom.Br), dom.PointAtStart(el)); err != nil {
				return err
			}
		}
		if inline(next) && inline(last) && !dom.IsBR(last) {
			if err := e.tx.InsertNode(dom.NewElement(atom.Br), dom.PointAtEnd(el)); err != nil {
				return err
			}
		}
	}
	if err := e.tx.MoveChildren(el, dom.PointBefore(el)); err != nil {
		return err
	}
	return e.tx.DeleteNode(el)
}

func lastNonBlank(n *html.Node) *html.Node {
	for c := n.LastChild; c != nil; c = c.PrevSibling {
		if !isBlank(c) {
			return c
		}
	}
	return nil
}

func previousNonBlankSibling(n *html.Node) *html.Node {
	for c := n.PrevSibling; c != nil; c = c.PrevSibling {
		if !isBlank(c) {
			return c
		}
	}
	return nil
}

func nextNonBlankSibling(n *html.Node) *html.Node {
	for c := n.NextSibling; c != nil; c = c.NextSibling {
		if !isBlank(c) {
			return c
		}
	}
	return nil
}

// isBlank is a comment or a whitespace-only text node.
func isBlank(n *html.Node) bool {
	return n.Type == html.CommentNode || n.Type == html.TextNode && dom.IsASCIIWhitespaceOnly(n.Data) && !dom.IsPreformatted(n)
}

// followsDirectly reports whether n comes right after prev, ignoring blank nodes.
func followsDirectly(prev, n *html.Node) bool {
	return prev != nil && prev.Parent != nil && previousNonBlankSibling(n) == prev
}

// moveInto appends n to container.
func (e *Editor) moveInto(n, container *html.Node) error {
	return e.tx.MoveNode(n, dom.PointAtEnd(container))
}
