package marker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dannyswat/htmledit/internal/dom"
)

func TestRoundTrip(t *testing.T) {
	tests := []string{
		"<p>a[]b</p>",
		"<p>a[b]c</p>",
		"<p>[abc]</p>",
		"<p>a[b</p><p>c]d</p>",
		"<p>{}<br/></p>",
		"<p>a</p>{}<p>b</p>",
		"<ul><li>a[]</li><li>[b]</li></ul>",
		"no markers",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			doc, ranges, err := Parse(src)
			require.NoError(t, err)
			got, err := Render(dom.Body(doc), ranges)
			require.NoError(t, err)
			assert.Equal(t, src, got)
		})
	}
}

func TestParseRanges(t *testing.T) {
	doc, ranges, err := Parse("<p>ab[cd]ef</p>")
	require.NoError(t, err)
	require.Len(t, ranges, 1)
	r := ranges[0]
	require.True(t, r.Start.InText())
	assert.Equal(t, "abcdef", r.Start.Container.Data)
	assert.Equal(t, 2, r.Start.Offset)
	assert.Equal(t, 4, r.End.Offset)

	s, err := dom.RenderChildren(dom.Body(doc))
	require.NoError(t, err)
	assert.Equal(t, "<p>abcdef</p>", s)
}

func TestParseNodeMarkers(t *testing.T) {
	doc, ranges, err := Parse("<p>{<b>x</b>}</p>")
	require.NoError(t, err)
	require.Len(t, ranges, 1)
	p := dom.Body(doc).FirstChild
	assert.Equal(t, dom.Point{Container: p, Offset: 0}, ranges[0].Start)
	assert.Equal(t, dom.Point{Container: p, Offset: 1}, ranges[0].End)
	assert.Equal(t, 1, dom.ChildCount(p), "marker-only text nodes are removed")
}

func TestParseMultipleRanges(t *testing.T) {
	_, ranges, err := Parse("<p>[a]</p><p>[b]</p>")
	require.NoError(t, err)
	assert.Len(t, ranges, 2)
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"closing first":     "<p>a]b</p>",
		"unterminated":      "<p>a[b</p>",
		"two openings":      "<p>[a[b]</p>",
		"brace inside text": "<p>a{b}c</p>",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := Parse(src)
			assert.Error(t, err)
		})
	}
}

func TestRawTextIsLeftAlone(t *testing.T) {
	doc, ranges, err := Parse("<p>a</p><script>x[0]</script>")
	require.NoError(t, err)
	assert.Empty(t, ranges)
	s, err := dom.RenderChildren(dom.Body(doc))
	require.NoError(t, err)
	assert.Contains(t, s, "x[0]")
}

func TestRenderSkipsOutsideBoundaries(t *testing.T) {
	doc, _, err := Parse("<p>a</p><p>b</p>")
	require.NoError(t, err)
	body := dom.Body(doc)
	second := body.LastChild
	r := dom.NewRange(dom.PointAtStart(body.FirstChild.FirstChild), dom.PointAtEnd(second.FirstChild))
	got, err := Render(second, []dom.Range{r})
	require.NoError(t, err)
	assert.Equal(t, "b]", got)
}
