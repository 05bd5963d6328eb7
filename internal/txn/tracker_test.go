package txn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html/atom"
	"pgregory.net/rapid"

	"github.com/dannyswat/htmledit/internal/dom"
)

func TestTrackerText(t *testing.T) {
	m, body := newTestManager(t, `<p>abcd</p>`)
	text := body.FirstChild.FirstChild

	before := dom.Point{Container: text, Offset: 1}
	inside := dom.Point{Container: text, Offset: 2}
	after := dom.Point{Container: text, Offset: 4}
	for _, p := range []*dom.Point{&before, &inside, &after} {
		defer m.Tracker().Track(p)()
	}

	require.NoError(t, m.InsertText(text, 1, "XY"))
	assert.Equal(t, 1, before.Offset, "a point at the insertion offset stays before the new text")
	assert.Equal(t, 4, inside.Offset)
	assert.Equal(t, 6, after.Offset)

	require.NoError(t, m.DeleteText(text, 2, 3))
	assert.Equal(t, 1, before.Offset)
	assert.Equal(t, 2, inside.Offset, "a point inside the deleted text moves to its start")
	assert.Equal(t, 3, after.Offset)
}

func TestTrackerNodeRemoval(t *testing.T) {
	m, body := newTestManager(t, `<p>ab</p><p>cd</p>`)
	first := body.FirstChild
	inRemoved := dom.Point{Container: first.FirstChild, Offset: 1}
	atEnd := dom.PointAtEnd(body)
	defer m.Tracker().Track(&inRemoved)()
	defer m.Tracker().Track(&atEnd)()

	require.NoError(t, m.DeleteNode(first))
	assert.Equal(t, dom.PointAtStart(body), inRemoved)
	assert.Equal(t, dom.PointAtEnd(body), atEnd)
}

func TestTrackerSplitAndJoin(t *testing.T) {
	m, body := newTestManager(t, `<p>abcd</p>`)
	text := body.FirstChild.FirstChild
	p := dom.Point{Container: text, Offset: 3}
	untrack := m.Tracker().Track(&p)

	right, err := m.SplitNode(dom.Point{Container: text, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, dom.Point{Container: right, Offset: 1}, p)

	_, err = m.JoinNodes(text, right)
	require.NoError(t, err)
	assert.Equal(t, dom.Point{Container: text, Offset: 3}, p)

	untrack()
	untrack()
	assert.Equal(t, 0, m.Tracker().Len())
}

func TestTrackerMoveKeepsInnerPoints(t *testing.T) {
	m, body := newTestManager(t, `<p>ab</p><p>cd</p>`)
	first := body.FirstChild
	inner := dom.Point{Container: first.FirstChild, Offset: 1}
	defer m.Tracker().Track(&inner)()

	require.NoError(t, m.MoveNode(first, dom.PointAtEnd(body)))
	assert.Equal(t, first.FirstChild, inner.Container)
	assert.Equal(t, 1, inner.Offset)
	assert.Equal(t, first, body.LastChild)
}

// TestTrackerPointsStayValid applies random mutations and checks that every tracked
// point still refers to an attached node with an offset in range.
func TestTrackerPointsStayValid(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		m, body := newTestManager(t, `<div><p>hello</p><p>big <b>bold</b> world</p><ul><li>one</li><li>two</li></ul></div>`)
		root := body.FirstChild

		var tracked []*dom.Point
		for n := root; n != nil; n = dom.NextNode(n, root) {
			for off := 0; off <= dom.Length(n); off++ {
				p := &dom.Point{Container: n, Offset: off}
				m.Tracker().Track(p)
				tracked = append(tracked, p)
			}
		}

		steps := rapid.IntRange(1, 12).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			var nodes, texts []*dom.Point
			for n := root.FirstChild; n != nil; n = dom.NextNode(n, root) {
				pt := &dom.Point{Container: n}
				nodes = append(nodes, pt)
				if dom.IsText(n) {
					texts = append(texts, pt)
				}
			}
			switch rapid.IntRange(0, 4).Draw(rt, "op") {
			case 0:
				if len(texts) == 0 {
					continue
				}
				tn := rapid.SampledFrom(texts).Draw(rt, "text").Container
				off := rapid.IntRange(0, len(tn.Data)).Draw(rt, "offset")
				require.NoError(rt, m.InsertText(tn, off, "xy"))
			case 1:
				if len(texts) == 0 {
					continue
				}
				tn := rapid.SampledFrom(texts).Draw(rt, "text").Container
				off := rapid.IntRange(0, len(tn.Data)).Draw(rt, "offset")
				n := rapid.IntRange(0, len(tn.Data)-off).Draw(rt, "length")
				require.NoError(rt, m.DeleteText(tn, off, n))
			case 2:
				if len(nodes) == 0 {
					continue
				}
				n := rapid.SampledFrom(nodes).Draw(rt, "node").Container
				require.NoError(rt, m.DeleteNode(n))
			case 3:
				if len(nodes) == 0 {
					continue
				}
				n := rapid.SampledFrom(nodes).Draw(rt, "node").Container
				require.NoError(rt, m.MoveNode(n, dom.PointAtEnd(root)))
			case 4:
				require.NoError(rt, m.InsertNode(dom.NewElement(atom.Hr), dom.PointAtStart(root)))
			}
		}

		for _, p := range tracked {
			if !p.IsValid() {
				rt.Fatalf("tracked point %s is out of range", p)
			}
			if !dom.IsInclusiveAncestor(body, p.Container) {
				rt.Fatalf("tracked point %s is detached", p)
			}
		}
	})
}
