package htmledit

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertParagraphSeparator(t *testing.T) {
	tests := []struct {
		name string
		src  string
		opts []Option
		want string
	}{
		{name: "middle of paragraph", src: "<p>ab[]cd</p>", want: "<p>ab</p><p>cd</p>"},
		{name: "end of paragraph", src: "<p>ab[]</p>", want: "<p>ab</p><p><br/></p>"},
		{name: "start of paragraph", src: "<p>[]ab</p>", want: "<p><br/></p><p>ab</p>"},
		{name: "end of header", src: "<h1>ab[]</h1>", want: "<h1>ab</h1><div><br/></div>"},
		{
			name: "end of header with p separator",
			src:  "<h1>ab[]</h1>",
			opts: []Option{WithParagraphSeparator(SeparatorP)},
			want: "<h1>ab</h1><p><br/></p>",
		},
		{name: "middle of header", src: "<h2>ab[]cd</h2>", want: "<h2>ab</h2><h2>cd</h2>"},
		{name: "list item", src: "<ul><li>a[]</li></ul>", want: "<ul><li>a</li><li><br/></li></ul>"},
		{name: "replaces selection", src: "<p>a[bc]d</p>", want: "<p>a</p><p>d</p>"},
		{
			name: "br separator in host",
			src:  "ab[]cd",
			opts: []Option{WithParagraphSeparator(SeparatorBR)},
			want: "ab<br/>cd",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEditor(t, tt.src, tt.opts...)
			res, err := e.InsertParagraphSeparator(context.Background())
			require.NoError(t, err)
			assert.Equal(t, Handled, res)
			assert.Equal(t, tt.want, editorHTML(t, e))
		})
	}
}

func TestInsertParagraphSeparatorMovesCaretToNewBlock(t *testing.T) {
	e := newTestEditor(t, "<p>ab[]cd</p>")
	_, err := e.InsertParagraphSeparator(context.Background())
	require.NoError(t, err)
	_, err = e.InsertText(context.Background(), SubActionInsertText, "X")
	require.NoError(t, err)
	assert.Equal(t, "<p>ab</p><p>Xcd</p>", editorHTML(t, e))
}

func TestInsertParagraphSeparatorWrapsHostText(t *testing.T) {
	ctx := context.Background()

	e := newTestEditor(t, "ab[]cd")
	_, err := e.InsertParagraphSeparator(ctx)
	require.NoError(t, err)
	assert.Equal(t, "<div>ab</div><div>[]cd</div>", editorMarkup(t, e))
	_, err = e.InsertText(ctx, SubActionInsertText, "X")
	require.NoError(t, err)
	assert.Equal(t, "<div>ab</div><div>Xcd</div>", editorHTML(t, e))

	e = newTestEditor(t, "abcd[]")
	_, err = e.InsertParagraphSeparator(ctx)
	require.NoError(t, err)
	_, err = e.InsertText(ctx, SubActionInsertText, "X")
	require.NoError(t, err)
	got := editorHTML(t, e)
	assert.True(t, strings.HasPrefix(got, "<div>abcd</div><div>X"), got)
}

func TestEnterInEmptyListItemLeavesList(t *testing.T) {
	ctx := context.Background()
	e := newTestEditor(t, "<ul><li>a[]</li></ul>")
	_, err := e.InsertParagraphSeparator(ctx)
	require.NoError(t, err)
	_, err = e.InsertParagraphSeparator(ctx)
	require.NoError(t, err)
	assert.Equal(t, "<ul><li>a</li></ul><div><br/></div>", editorHTML(t, e))
}

func TestEnterInEmptyNestedListItem(t *testing.T) {
	ctx := context.Background()

	e := newTestEditor(t, "<ul><li>a</li><ul><li>b</li><li>[]<br></li></ul></ul>",
		WithReturnInEmptyListItemClosesList(false))
	_, err := e.InsertParagraphSeparator(ctx)
	require.NoError(t, err)
	got := editorHTML(t, e)
	assert.Contains(t, got, "<ul><li>b</li></ul>")
	assert.NotContains(t, got, "<div>", "the item moves up one level instead of leaving")

	e = newTestEditor(t, "<ul><li>a</li><ul><li>b</li><li>[]<br></li></ul></ul>")
	_, err = e.InsertParagraphSeparator(ctx)
	require.NoError(t, err)
	got = editorHTML(t, e)
	assert.True(t, strings.HasSuffix(got, "</ul><div><br/></div>"), got)
}

func TestEnterInDefinitionTermStartsDescription(t *testing.T) {
	e := newTestEditor(t, "<dl><dt>a[]</dt></dl>")
	_, err := e.InsertParagraphSeparator(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "<dl><dt>a</dt><dd><br/></dd></dl>", editorHTML(t, e))
}

func TestEnterSplitsMailCite(t *testing.T) {
	e := newTestEditor(t, `<blockquote type="cite">ab[]cd</blockquote>`)
	res, err := e.InsertParagraphSeparator(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Handled, res)
	got := editorHTML(t, e)
	assert.Equal(t, 2, strings.Count(got, "<blockquote"), got)
	assert.Contains(t, got, "</blockquote><br/><blockquote")
}

func TestInsertLineBreak(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{name: "middle", src: "<p>ab[]cd</p>", want: "<p>ab<br/>cd</p>"},
		{name: "end gets a padding br", src: "<p>ab[]</p>", want: "<p>ab<br/><br/></p>"},
		{name: "splits a link", src: `<p><a href="x">ab[]cd</a></p>`, want: `<p><a href="x">ab</a><br/><a href="x">cd</a></p>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEditor(t, tt.src)
			res, err := e.InsertLineBreak(context.Background())
			require.NoError(t, err)
			assert.Equal(t, Handled, res)
			assert.Equal(t, tt.want, editorHTML(t, e))
		})
	}
}

func TestInsertLineBreakSetsInterlinePosition(t *testing.T) {
	e := newTestEditor(t, "<p>ab[]cd</p>")
	_, err := e.InsertLineBreak(context.Background())
	require.NoError(t, err)
	assert.Equal(t, InterlineAfter, e.Selection().InterlinePosition())
}

func TestEnterInsideLinkSplitsLink(t *testing.T) {
	e := newTestEditor(t, `<p><a href="x">ab[]cd</a></p>`)
	res, err := e.InsertParagraphSeparator(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Handled, res)
	got := editorHTML(t, e)
	assert.Equal(t, 2, strings.Count(got, `<a href="x">`), got)
	assert.Equal(t, 2, strings.Count(got, "<p>"), got)
	assert.Contains(t, got, ">ab</a>")
	assert.Contains(t, got, ">cd</a>")
}
