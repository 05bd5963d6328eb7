package dom

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Point is a DOM boundary point. For character data the offset is a byte offset into
// Data that always sits on a rune boundary; for other nodes it is a child index.
type Point struct {
	Container *html.Node
	Offset    int
}

// PointBefore is the point in n's parent just before n.
func PointBefore(n *html.Node) Point {
	if n == nil || n.Parent == nil {
		return Point{}
	}
	return Point{Container: n.Parent, Offset: Index(n)}
}

// PointAfter is the point in n's parent just after n.
func PointAfter(n *html.Node) Point {
	if n == nil || n.Parent == nil {
		return Point{}
	}
	return Point{Container: n.Parent, Offset: Index(n) + 1}
}

func PointAtStart(n *html.Node) Point {
	return Point{Container: n, Offset: 0}
}

func PointAtEnd(n *html.Node) Point {
	return Point{Container: n, Offset: Length(n)}
}

// IsSet reports whether the point refers to a container.
func (p Point) IsSet() bool {
	return p.Container != nil
}

// IsValid reports whether the offset is within the container's length.
func (p Point) IsValid() bool {
	return p.Container != nil && p.Offset >= 0 && p.Offset <= Length(p.Container)
}

func (p Point) InText() bool {
	return IsText(p.Container)
}

func (p Point) IsStartOfContainer() bool {
	return p.Offset == 0
}

func (p Point) IsEndOfContainer() bool {
	return p.Offset == Length(p.Container)
}

// Child returns the child at the offset (the node after the point), nil in text.
func (p Point) Child() *html.Node {
	if p.Container == nil || IsCharacterData(p.Container) {
		return nil
	}
	return ChildAt(p.Container, p.Offset)
}

// PreviousChild returns the child just before the point, nil in text.
func (p Point) PreviousChild() *html.Node {
	if p.Container == nil || IsCharacterData(p.Container) || p.Offset == 0 {
		return nil
	}
	return ChildAt(p.Container, p.Offset-1)
}

func (p Point) Equal(q Point) bool {
	return p.Container == q.Container && p.Offset == q.Offset
}

// NextRune returns the rune after the point and its encoded size.
func (p Point) NextRune() (rune, int) {
	if !p.InText() || p.Offset >= len(p.Container.Data) {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(p.Container.Data[p.Offset:])
}

// PreviousRune returns the rune before the point and its encoded size.
func (p Point) PreviousRune() (rune, int) {
	if !p.InText() || p.Offset <= 0 {
		return utf8.RuneError, 0
	}
	return utf8.DecodeLastRuneInString(p.Container.Data[:p.Offset])
}

// Normalized moves a point at a text node's edge in an element to the element offset
// next to it when the point's container is an element whose adjacent child is text.
// Points in text are returned unchanged.
func (p Point) Normalized() Point {
	if !p.IsSet() || IsCharacterData(p.Container) {
		return p
	}
	if prev := p.PreviousChild(); IsText(prev) {
		return Point{Container: prev, Offset: len(prev.Data)}
	}
	if next := p.Child(); IsText(next) {
		return Point{Container: next, Offset: 0}
	}
	return p
}

// ContainerElementPoint converts a point at a text node's edge to the parent offset.
func (p Point) ContainerElementPoint() Point {
	if !p.InText() {
		return p
	}
	switch {
	case p.Offset == 0:
		return PointBefore(p.Container)
	case p.Offset == len(p.Container.Data):
		return PointAfter(p.Container)
	}
	return p
}

func (p Point) String() string {
	if p.Container == nil {
		return "(unset)"
	}
	return fmt.Sprintf("(%s, %d)", Describe(p.Container), p.Offset)
}

// ComparePoints returns -1, 0 or 1 as a is before, equal to, or after b.
func ComparePoints(a, b Point) int {
	if a.Container == b.Container {
		return compareInts(a.Offset, b.Offset)
	}
	if child := ChildContaining(a.Container, b.Container); child != nil {
		if Index(child) < a.Offset {
			return 1
		}
		return -1
	}
	if child := ChildContaining(b.Container, a.Container); child != nil {
		if Index(child) < b.Offset {
			return -1
		}
		return 1
	}
	return CompareNodeOrder(a.Container, b.Container)
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
