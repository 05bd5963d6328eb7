package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"pgregory.net/rapid"
)

func parseBody(t testing.TB, src string) *html.Node {
	doc, err := ParseHTML(src)
	require.NoError(t, err)
	return Body(doc)
}

// allPoints lists every boundary point below root.
func allPoints(root *html.Node) []Point {
	var pts []Point
	for n := root; n != nil; n = NextNode(n, root) {
		for off := 0; off <= Length(n); off++ {
			pts = append(pts, Point{Container: n, Offset: off})
		}
	}
	return pts
}

func TestPointNeighbours(t *testing.T) {
	body := parseBody(t, `<p>ab</p><p>c</p>`)
	first := body.FirstChild

	assert.Equal(t, Point{Container: body, Offset: 0}, PointBefore(first))
	assert.Equal(t, Point{Container: body, Offset: 1}, PointAfter(first))
	assert.False(t, PointBefore(NewElement(0)).IsSet())
	assert.False(t, PointAfter(nil).IsSet())

	p := PointAtStart(body)
	assert.Equal(t, first, p.Child())
	assert.Nil(t, p.PreviousChild())
	assert.True(t, PointAtEnd(body).IsEndOfContainer())

	text := first.FirstChild
	norm := PointAfter(first).Normalized()
	assert.Equal(t, PointAfter(first), norm, "points between elements stay put")
	norm = PointAtEnd(first).Normalized()
	assert.Equal(t, Point{Container: text, Offset: 2}, norm)
	assert.Equal(t, PointAfter(text), norm.ContainerElementPoint())
}

func TestPointRunes(t *testing.T) {
	body := parseBody(t, `<p>aé</p>`)
	text := body.FirstChild.FirstChild

	r, size := Point{Container: text, Offset: 1}.NextRune()
	assert.Equal(t, 'é', r)
	assert.Equal(t, 2, size)

	r, size = PointAtEnd(text).PreviousRune()
	assert.Equal(t, 'é', r)
	assert.Equal(t, 2, size)
}

func TestComparePoints(t *testing.T) {
	body := parseBody(t, `<div><p>ab</p>x</div>`)
	div := body.FirstChild
	p := div.FirstChild
	text := p.FirstChild

	assert.Equal(t, -1, ComparePoints(PointAtStart(div), Point{Container: text, Offset: 1}))
	assert.Equal(t, 1, ComparePoints(Point{Container: div, Offset: 1}, Point{Container: text, Offset: 2}))
	assert.Equal(t, 0, ComparePoints(PointAtEnd(p), PointAtEnd(p)))
}

func TestComparePointsIsAnOrder(t *testing.T) {
	body := parseBody(t, `<div><p>ab<b>c</b></p><ul><li>d</li><li></li></ul>e</div><p>f<br>g</p>`)
	pts := allPoints(body)

	rapid.Check(t, func(t *rapid.T) {
		a := rapid.SampledFrom(pts).Draw(t, "a")
		b := rapid.SampledFrom(pts).Draw(t, "b")
		c := rapid.SampledFrom(pts).Draw(t, "c")

		if got, back := ComparePoints(a, b), ComparePoints(b, a); got != -back {
			t.Fatalf("compare(%s, %s)=%d but reverse=%d", a, b, got, back)
		}
		if ComparePoints(a, b) <= 0 && ComparePoints(b, c) <= 0 && ComparePoints(a, c) > 0 {
			t.Fatalf("not transitive: %s <= %s <= %s", a, b, c)
		}
		r := NewRange(a, b)
		if ComparePoints(r.Start, r.End) > 0 {
			t.Fatalf("range %s is inverted", r)
		}
		if !r.Contains(a) || !r.Contains(b) {
			t.Fatalf("range %s does not contain its ends", r)
		}
	})
}

func TestRangeTopLevelNodes(t *testing.T) {
	body := parseBody(t, `<p>ab</p><p>cd</p><p>ef</p>`)
	first := body.FirstChild.FirstChild
	last := body.LastChild.FirstChild

	r := NewRange(Point{Container: first, Offset: 1}, Point{Container: last, Offset: 1})
	var got []string
	for _, n := range r.TopLevelNodes() {
		got = append(got, Describe(n))
	}
	assert.Equal(t, []string{`#text("ab")`, "<p>", `#text("ef")`}, got)
	assert.Empty(t, CollapsedAt(PointAtStart(body)).TopLevelNodes())

	u := CollapsedAt(PointAtStart(body)).Union(SelectNode(body.LastChild))
	assert.Equal(t, PointAtStart(body), u.Start)
	assert.Equal(t, PointAfter(body.LastChild), u.End)
}
