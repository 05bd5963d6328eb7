package dom

import (
	"fmt"

	"golang.org/x/net/html"
)

// Range is an ordered pair of boundary points.
type Range struct {
	Start Point
	End   Point
}

// CollapsedAt returns a collapsed range at p.
func CollapsedAt(p Point) Range {
	return Range{Start: p, End: p}
}

// NewRange orders the two points into a range.
func NewRange(a, b Point) Range {
	if ComparePoints(a, b) > 0 {
		a, b = b, a
	}
	return Range{Start: a, End: b}
}

// SelectNode returns the range around n in its parent.
func SelectNode(n *html.Node) Range {
	return Range{Start: PointBefore(n), End: PointAfter(n)}
}

// SelectContents returns the range covering all of n's content.
func SelectContents(n *html.Node) Range {
	return Range{Start: PointAtStart(n), End: PointAtEnd(n)}
}

func (r Range) Collapsed() bool {
	return r.Start.Equal(r.End)
}

// IsPositioned reports whether both boundaries are set.
func (r Range) IsPositioned() bool {
	return r.Start.IsSet() && r.End.IsSet()
}

// Contains reports whether p lies within the range, boundaries included.
func (r Range) Contains(p Point) bool {
	return ComparePoints(r.Start, p) <= 0 && ComparePoints(p, r.End) <= 0
}

// ContainsNode reports whether n is entirely inside the range.
func (r Range) ContainsNode(n *html.Node) bool {
	if n.Parent == nil {
		return false
	}
	return ComparePoints(r.Start, PointBefore(n)) <= 0 && ComparePoints(PointAfter(n), r.End) <= 0
}

// IntersectsNode reports whether any part of n lies within the range.
func (r Range) IntersectsNode(n *html.Node) bool {
	if n.Parent == nil {
		return true
	}
	return ComparePoints(PointBefore(n), r.End) < 0 && ComparePoints(r.Start, PointAfter(n)) < 0
}

// CommonAncestor returns the nearest node containing both boundaries.
func (r Range) CommonAncestor() *html.Node {
	return CommonAncestor(r.Start.Container, r.End.Container)
}

// Union returns the smallest range covering both r and o.
func (r Range) Union(o Range) Range {
	if !r.IsPositioned() {
		return o
	}
	if !o.IsPositioned() {
		return r
	}
	out := r
	if ComparePoints(o.Start, out.Start) < 0 {
		out.Start = o.Start
	}
	if ComparePoints(o.End, out.End) > 0 {
		out.End = o.End
	}
	return out
}

func (r Range) String() string {
	return fmt.Sprintf("[%s - %s]", r.Start, r.End)
}

// TopLevelNodes returns, in document order, the nodes entirely or partially inside the
// range that have no ancestor also inside it. Nodes that are ancestors of both boundaries
// are not included.
func (r Range) TopLevelNodes() []*html.Node {
	if !r.IsPositioned() || r.Collapsed() {
		return nil
	}
	common := r.CommonAncestor()
	var nodes []*html.Node
	for n := common.FirstChild; n != nil; {
		if !r.IntersectsNode(n) {
			n = NextNodeSkippingChildren(n, common)
			continue
		}
		if r.ContainsNode(n) || n.FirstChild == nil {
			nodes = append(nodes, n)
			n = NextNodeSkippingChildren(n, common)
			continue
		}
		// partially selected container: a boundary is inside it.
		if IsCharacterData(n) {
			nodes = append(nodes, n)
			n = NextNodeSkippingChildren(n, common)
			continue
		}
		n = n.FirstChild
	}
	if len(nodes) == 0 && IsCharacterData(common) {
		nodes = append(nodes, common)
	}
	return nodes
}
