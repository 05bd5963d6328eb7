package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/dannyswat/htmledit/internal/dom"
	"github.com/dannyswat/htmledit/internal/txn"
)

const nb = "\u00a0"

func newTestService(t *testing.T, src string, opts ...Option) (*Service, *html.Node) {
	t.Helper()
	doc, err := dom.ParseHTML(src)
	require.NoError(t, err)
	body := dom.Body(doc)
	return New(txn.NewManager(doc), body, opts...), body
}

func render(t *testing.T, n *html.Node) string {
	t.Helper()
	s, err := dom.RenderChildren(n)
	require.NoError(t, err)
	return s
}

func TestGenerateSequence(t *testing.T) {
	tests := []struct {
		name       string
		n          int
		prev, next Neighbor
		want       string
	}{
		{"empty", 0, NeighborVisible, NeighborVisible, ""},
		{"single between text", 1, NeighborVisible, NeighborVisible, " "},
		{"single at line end", 1, NeighborVisible, NeighborNone, nb},
		{"single at line start", 1, NeighborNone, NeighborVisible, nb},
		{"pair between text", 2, NeighborVisible, NeighborVisible, nb + " "},
		{"pair at line end", 2, NeighborVisible, NeighborNone, nb + nb},
		{"three", 3, NeighborVisible, NeighborVisible, nb + " " + nb},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateSequence(tt.n, tt.prev, tt.next))
		})
	}
}

func TestScanNext(t *testing.T) {
	s, body := newTestService(t, `<p>a<br>b</p><p>c<img>d</p><p>e<b>f</b></p><p>g</p>`)
	ps := dom.Children(body)
	at := func(i int) dom.Point { return dom.PointAtEnd(ps[i].FirstChild) }

	r := s.ScanNext(at(0))
	assert.Equal(t, KindBR, r.Kind)
	assert.True(t, r.ReachedLineBoundary())

	r = s.ScanNext(at(1))
	assert.Equal(t, KindSpecial, r.Kind)

	r = s.ScanNext(at(2))
	require.Equal(t, KindText, r.Kind)
	assert.Equal(t, "f", r.Content.Data)
	assert.Equal(t, 0, r.Point.Offset)
	assert.Equal(t, 1, r.End.Offset)

	r = s.ScanNext(at(3))
	assert.Equal(t, KindCurrentBlockBoundary, r.Kind)
	assert.Equal(t, ps[3], r.Content)
	assert.True(t, r.ReachedBlockBoundary())
}

func TestScanPrevious(t *testing.T) {
	s, body := newTestService(t, `<div><hr>x</div><p>  a  b</p>`)
	div := body.FirstChild
	text := body.LastChild.FirstChild

	r := s.ScanPrevious(dom.PointAtStart(div.LastChild))
	assert.Equal(t, KindHR, r.Kind)

	r = s.ScanPrevious(dom.PointAtStart(text))
	assert.Equal(t, KindCurrentBlockBoundary, r.Kind)

	// the leading run renders nothing, so it is skipped
	r = s.ScanPrevious(dom.Point{Container: text, Offset: 2})
	assert.Equal(t, KindCurrentBlockBoundary, r.Kind)

	r = s.ScanPrevious(dom.Point{Container: text, Offset: 5})
	require.Equal(t, KindText, r.Kind)
	assert.Equal(t, 3, r.Point.Offset)
	assert.Equal(t, 5, r.End.Offset)
}

func TestIsVisibleBR(t *testing.T) {
	s, body := newTestService(t, `<p>a<br>b</p><p>a<br></p><p><br><br></p>`)
	ps := dom.Children(body)

	assert.True(t, s.IsVisibleBR(ps[0].FirstChild.NextSibling))
	assert.False(t, s.IsVisibleBR(ps[1].LastChild))
	assert.True(t, s.IsVisibleBR(ps[2].FirstChild))
	assert.False(t, s.IsVisibleBR(ps[2].LastChild))
	assert.False(t, s.IsVisibleBR(dom.NewElement(0)))
}

func TestIsVisibleText(t *testing.T) {
	s, body := newTestService(t, `<p> </p><p>a <b> </b></p><pre> </pre><p>a `+nb+`</p>`)
	ps := dom.Children(body)

	assert.False(t, s.IsVisibleText(ps[0].FirstChild))
	assert.False(t, s.IsVisibleText(ps[1].LastChild.FirstChild), "collapses into the preceding space")
	assert.True(t, s.IsVisibleText(ps[2].FirstChild))
	assert.True(t, s.IsVisibleText(ps[3].FirstChild))
	assert.True(t, s.IsVisibleContent(ps[3]))
	assert.False(t, s.IsVisibleContent(ps[0].FirstChild))
}

func TestInsertTextKeepsSpacesVisible(t *testing.T) {
	s, body := newTestService(t, `<p>ab</p><p>c</p>`)
	first := body.FirstChild.FirstChild
	second := body.LastChild.FirstChild

	r, err := s.InsertText(dom.Point{Container: first, Offset: 1}, " ")
	require.NoError(t, err)
	assert.Equal(t, "a b", first.Data)
	assert.Equal(t, 1, r.Start.Offset)
	assert.Equal(t, 2, r.End.Offset)

	_, err = s.InsertText(dom.PointAtEnd(second), " ")
	require.NoError(t, err)
	assert.Equal(t, "c"+nb, second.Data, "a trailing space would collapse")

	r, err = s.InsertText(dom.PointAtStart(body.FirstChild), "x")
	require.NoError(t, err)
	assert.Equal(t, "xa b", first.Data)
	assert.Equal(t, first, r.Start.Container)
}

func TestDeleteTextRangeKeepsSpaceWidth(t *testing.T) {
	s, body := newTestService(t, `<p>a bc d</p>`)
	text := body.FirstChild.FirstChild

	p, err := s.DeleteTextRange(dom.Point{Container: text, Offset: 2}, dom.Point{Container: text, Offset: 4})
	require.NoError(t, err)
	assert.Equal(t, 3, p.Offset, "after the rewritten NBSP")
	assert.Equal(t, "a"+nb+" d", text.Data, "two spaces meet and both stay visible")
}

func TestDeleteCharacterGraphemes(t *testing.T) {
	const family = "\U0001F468\u200d\U0001F469"
	s, body := newTestService(t, `<p>a`+family+`</p>`)
	text := body.FirstChild.FirstChild

	found := s.ScanPrevious(dom.PointAtEnd(text))
	require.Equal(t, KindText, found.Kind)
	_, err := s.DeleteCharacter(found, false)
	require.NoError(t, err)
	assert.Equal(t, "a\U0001F468\u200d", text.Data, "backspace removes one code point")

	s, body = newTestService(t, `<p>a`+family+`</p>`, WithGraphemeDeletion(true))
	text = body.FirstChild.FirstChild
	found = s.ScanPrevious(dom.PointAtEnd(text))
	_, err = s.DeleteCharacter(found, false)
	require.NoError(t, err)
	assert.Equal(t, "a", text.Data)
}

func TestSplitDeep(t *testing.T) {
	s, body := newTestService(t, `<div><b>ab</b>c</div>`)
	div := body.FirstChild
	text := div.FirstChild.FirstChild

	left, right, err := s.SplitDeep(div, dom.Point{Container: text, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, div, left)
	require.NotNil(t, right)
	assert.Equal(t, `<div><b>a</b></div><div><b>b</b>c</div>`, render(t, body))

	left, right, err = s.SplitDeep(div, dom.PointAtStart(div.FirstChild.FirstChild))
	require.NoError(t, err)
	assert.Nil(t, left)
	assert.Equal(t, div, right)

	left, right, err = s.SplitDeep(div, dom.PointAtEnd(div))
	require.NoError(t, err)
	assert.Equal(t, div, left)
	assert.Nil(t, right)

	_, _, err = s.SplitDeep(div, dom.PointAtStart(body))
	assert.ErrorIs(t, err, txn.ErrInvalidPoint)
}

func TestDeleteNodeJoinsText(t *testing.T) {
	s, body := newTestService(t, `<p>a<img>b</p>`)
	p := body.FirstChild

	at, err := s.DeleteNode(p.FirstChild.NextSibling)
	require.NoError(t, err)
	assert.Equal(t, `<p>ab</p>`, render(t, body))
	assert.Equal(t, p.FirstChild, at.Container)
	assert.Equal(t, 1, at.Offset)
}
