package htmledit

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dannyswat/htmledit/internal/dom"
	"github.com/dannyswat/htmledit/internal/ws"
)

// maxLineScan bounds how many visible things a hard-line walk visits.
const maxLineScan = 1 << 16

// hardLineStart returns the start of the hard line containing p: the point just after
// the nearest <br> or block boundary before it.
func (e *Editor) hardLineStart(p dom.Point) dom.Point {
	for i := 0; i < maxLineScan; i++ {
		r := e.ws.ScanPrevious(p)
		switch r.Kind {
		case ws.KindText:
			p = dom.PointAtStart(r.Content)
		case ws.KindSpecial:
			p = r.Point
		default:
			return p
		}
	}
	return p
}

// hardLineEnd returns the end of the hard line containing p: the point just before the
// nearest <br> or block boundary after it.
func (e *Editor) hardLineEnd(p dom.Point) dom.Point {
	for i := 0; i < maxLineScan; i++ {
		r := e.ws.ScanNext(p)
		switch r.Kind {
		case ws.KindText:
			p = dom.PointAtEnd(r.Content)
		case ws.KindSpecial:
			p = r.End
		default:
			return p
		}
	}
	return p
}

// lineBreakAfter returns the <br> ending the hard line at p, if any.
func (e *Editor) lineBreakAfter(p dom.Point) *html.Node {
	r := e.ws.ScanNext(e.hardLineEnd(p))
	if r.Kind == ws.KindBR {
		return r.Content
	}
	return nil
}

// extendOverAdjacentWhitespace widens r over whitespace touching its boundaries inside
// their text nodes.
func extendOverAdjacentWhitespace(r dom.Range) dom.Range {
	if r.Start.InText() {
		t := r.Start.Container
		for r.Start.Offset > 0 {
			c, size := r.Start.PreviousRune()
			if !dom.IsASCIIWhitespace(c) && c != '\u00a0' {
				break
			}
			r.Start = dom.Point{Container: t, Offset: r.Start.Offset - size}
		}
	}
	if r.End.InText() {
		t := r.End.Container
		for r.End.Offset < len(t.Data) {
			c, size := r.End.NextRune()
			if !dom.IsASCIIWhitespace(c) && c != '\u00a0' {
				break
			}
			r.End = dom.Point{Container: t, Offset: r.End.Offset + size}
		}
	}
	return r
}

// tableContext is the nearest inclusive ancestor of n that is a table element.
func tableContext(n *html.Node) *html.Node {
	for x := n; x != nil; x = x.Parent {
		if dom.IsAnyTableElement(x) {
			return x
		}
	}
	return nil
}

// inDifferentTableElements reports whether a and b sit in different table structures.
func inDifferentTableElements(a, b *html.Node) bool {
	return tableContext(a) != tableContext(b)
}

// isAtStartOf reports whether nothing of ancestor precedes p.
func isAtStartOf(p dom.Point, ancestor *html.Node) bool {
	for p.IsSet() {
		if p.Offset != 0 {
			return false
		}
		if p.Container == ancestor {
			return true
		}
		p = dom.PointBefore(p.Container)
	}
	return false
}

// isAtEndOf reports whether nothing of ancestor follows p.
func isAtEndOf(p dom.Point, ancestor *html.Node) bool {
	for p.IsSet() {
		if p.Offset != dom.Length(p.Container) {
			return false
		}
		if p.Container == ancestor {
			return true
		}
		p = dom.PointAfter(p.Container)
	}
	return false
}

// leafBefore returns the last leaf before p inside root.
func leafBefore(p dom.Point, root *html.Node) *html.Node {
	if p.InText() {
		return dom.PreviousLeaf(p.Container, root)
	}
	if prev := p.PreviousChild(); prev != nil {
		return dom.LastLeaf(prev)
	}
	if p.Container == root {
		return nil
	}
	return dom.PreviousLeaf(p.Container, root)
}

// leafAfter returns the first leaf after p inside root.
func leafAfter(p dom.Point, root *html.Node) *html.Node {
	if p.InText() {
		return dom.NextLeaf(p.Container, root)
	}
	if next := p.Child(); next != nil {
		return dom.FirstLeaf(next)
	}
	if p.Container == root {
		return nil
	}
	return dom.NextLeaf(p.Container, root)
}

// startOfLeaf is the caret position at the beginning of a leaf.
func startOfLeaf(n *html.Node) dom.Point {
	switch {
	case dom.IsCharacterData(n):
		return dom.PointAtStart(n)
	case dom.IsContainer(n) && !dom.IsReplaced(n):
		return dom.PointAtStart(n)
	}
	return dom.PointBefore(n)
}

// endOfLeaf is the caret position at the end of a leaf.
func endOfLeaf(n *html.Node) dom.Point {
	switch {
	case dom.IsCharacterData(n):
		return dom.PointAtEnd(n)
	case dom.IsContainer(n) && !dom.IsReplaced(n):
		return dom.PointAtEnd(n)
	}
	return dom.PointAfter(n)
}

// firstCaretPointIn returns the start of n's first leaf.
func firstCaretPointIn(n *html.Node) dom.Point {
	return startOfLeaf(dom.FirstLeaf(n))
}

// closestAncestor returns the nearest inclusive ancestor of n below the host matching fn.
func (e *Editor) closestAncestor(n *html.Node, fn func(*html.Node) bool) *html.Node {
	for x := n; x != nil && x != e.host; x = x.Parent {
		if x.Type == html.ElementNode && fn(x) {
			return x
		}
	}
	return nil
}

// hasVisibleContent reports whether n renders anything besides padding.
func (e *Editor) hasVisibleContent(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if e.ws.IsVisibleContent(c) {
			return true
		}
	}
	return false
}

// canHoldPaddingBR reports whether a padding <br> may be appended to n.
func canHoldPaddingBR(n *html.Node) bool {
	return dom.CanContainTag(n, atom.Br) && !dom.IsVoid(n)
}
