package htmledit

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeList(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		tag    string
		bullet string
		want   string
	}{
		{name: "paragraph", src: "<p>[]a</p>", tag: "ul", want: "<ul><li>a</li></ul>"},
		{name: "two paragraphs", src: "<p>[a</p><p>b]</p>", tag: "ol", want: "<ol><li>a</li><li>b</li></ol>"},
		{name: "change type", src: "<ul><li>[]a</li></ul>", tag: "ol", want: "<ol><li>a</li></ol>"},
		{name: "bullet type", src: "<p>[]a</p>", tag: "ol", bullet: "A", want: `<ol type="A"><li>a</li></ol>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEditor(t, tt.src)
			res, err := e.MakeOrChangeList(context.Background(), tt.tag, tt.bullet, false)
			require.NoError(t, err)
			assert.Equal(t, Handled, res)
			assert.Equal(t, tt.want, editorHTML(t, e))
		})
	}
}

func TestBlockActionTakesLineBreakWithLine(t *testing.T) {
	list := func(e *Editor) (EditResult, error) {
		return e.MakeOrChangeList(context.Background(), "ul", "", false)
	}
	heading := func(e *Editor) (EditResult, error) { return e.FormatBlock(context.Background(), "h1") }
	indent := func(e *Editor) (EditResult, error) { return e.Indent(context.Background()) }

	tests := []struct {
		name   string
		src    string
		action func(*Editor) (EditResult, error)
		want   string
	}{
		{name: "list in host", src: "a[]b<br>cd", action: list, want: "<ul><li>ab</li></ul>cd"},
		{name: "list in paragraph", src: "<p>a[]b<br>cd</p>", action: list, want: "<ul><li>ab</li></ul><p>cd</p>"},
		{name: "heading in host", src: "a[]b<br>cd", action: heading, want: "<h1>ab</h1>cd"},
		{name: "indent in host", src: "a[]b<br>cd", action: indent, want: "<blockquote>ab</blockquote>cd"},
		{name: "blank line stays", src: "a[]b<br><br>cd", action: list, want: "<ul><li>ab</li></ul><br/>cd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEditor(t, tt.src)
			res, err := tt.action(e)
			require.NoError(t, err)
			assert.Equal(t, Handled, res)
			assert.Equal(t, tt.want, editorHTML(t, e))
		})
	}
}

func TestMakeDefinitionList(t *testing.T) {
	e := newTestEditor(t, "<p>[]a</p>")
	_, err := e.MakeOrChangeList(context.Background(), "dl", "", false)
	require.NoError(t, err)
	assert.Contains(t, editorHTML(t, e), "<dl><dd>a</dd></dl>")
}

func TestMakeListRejectsUnknownTag(t *testing.T) {
	e := newTestEditor(t, "<p>[]a</p>")
	_, err := e.MakeOrChangeList(context.Background(), "menu", "", false)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestMakeListOnEmptyLine(t *testing.T) {
	e := newTestEditor(t, "<p>a</p><p>[]<br></p>")
	_, err := e.MakeOrChangeList(context.Background(), "ul", "", false)
	require.NoError(t, err)
	got := editorHTML(t, e)
	assert.Contains(t, got, "<ul><li><br/></li></ul>")
	assert.True(t, strings.HasPrefix(got, "<p>a</p>"), got)
}

func TestRemoveList(t *testing.T) {
	e := newTestEditor(t, "<ul><li>[]a</li><li>b</li></ul>")
	res, err := e.RemoveList(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Handled, res)
	got := editorHTML(t, e)
	assert.Contains(t, got, "<ul><li>b</li></ul>", "the other item stays listed")
	assert.True(t, strings.HasPrefix(got, "a"), got)

	e = newTestEditor(t, "<p>[]a</p>")
	res, err = e.RemoveList(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Canceled, res)
}

func TestMakeListThenUndo(t *testing.T) {
	e := newTestEditor(t, "<p>[a</p><p>b]</p>")
	before := editorHTML(t, e)
	_, err := e.MakeOrChangeList(context.Background(), "ul", "", false)
	require.NoError(t, err)
	require.NoError(t, e.Undo())
	assert.Equal(t, before, editorHTML(t, e))
}

func TestIndentOutdent(t *testing.T) {
	ctx := context.Background()

	e := newTestEditor(t, "<p>[]a</p>")
	res, err := e.Indent(ctx)
	require.NoError(t, err)
	assert.Equal(t, Handled, res)
	assert.Equal(t, "<blockquote><p>a</p></blockquote>", editorHTML(t, e))

	res, err = e.Outdent(ctx)
	require.NoError(t, err)
	assert.Equal(t, Handled, res)
	assert.Equal(t, "<p>a</p>", editorHTML(t, e))

	res, err = e.Outdent(ctx)
	require.NoError(t, err)
	assert.Equal(t, Canceled, res, "nothing left to outdent")
}

func TestIndentListItem(t *testing.T) {
	ctx := context.Background()
	e := newTestEditor(t, "<ul><li>a</li><li>[]b</li></ul>")
	_, err := e.Indent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "<ul><li>a</li><ul><li>b</li></ul></ul>", editorHTML(t, e))

	_, err = e.Outdent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "<ul><li>a</li><li>b</li></ul>", editorHTML(t, e))
}

func TestIndentWithCSS(t *testing.T) {
	ctx := context.Background()
	e := newTestEditor(t, "<p>[]a</p>", WithCSS(true))
	_, err := e.Indent(ctx)
	require.NoError(t, err)
	assert.Equal(t, `<p style="margin-left: 40px;">a</p>`, editorHTML(t, e))

	_, err = e.Indent(ctx)
	require.NoError(t, err)
	assert.Equal(t, `<p style="margin-left: 80px;">a</p>`, editorHTML(t, e))

	_, err = e.Outdent(ctx)
	require.NoError(t, err)
	_, err = e.Outdent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "<p>a</p>", editorHTML(t, e))
}

func TestIndentRightToLeftUsesMarginRight(t *testing.T) {
	e := newTestEditor(t, `<p dir="rtl">[]a</p>`, WithCSS(true))
	_, err := e.Indent(context.Background())
	require.NoError(t, err)
	assert.Contains(t, editorHTML(t, e), "margin-right: 40px;")
}

func TestAlign(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		align string
		css   bool
		want  string
	}{
		{name: "attribute", src: "<p>[]a</p>", align: "center", want: `<p align="center">a</p>`},
		{name: "css", src: "<p>[]a</p>", align: "right", css: true, want: `<p style="text-align: right;">a</p>`},
		{name: "justify on paragraph", src: "<p>[]a</p>", align: "justify", want: `<p style="text-align: justify;">a</p>`},
		{name: "clear", src: `<p align="center">[]a</p>`, align: "", want: "<p>a</p>"},
		{name: "inline content gets a div", src: "[]a", align: "center", want: `<div align="center">a</div>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEditor(t, tt.src, WithCSS(tt.css))
			res, err := e.Align(context.Background(), tt.align)
			require.NoError(t, err)
			assert.Equal(t, Handled, res)
			assert.Equal(t, tt.want, editorHTML(t, e))
		})
	}
}

func TestAlignment(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{src: "<p>[]a</p>", want: "left"},
		{src: `<p align="right">[]a</p>`, want: "right"},
		{src: `<p style="text-align: center">[]a</p>`, want: "center"},
		{src: `<p align="justify">[]a</p>`, want: "left"},
		{src: `<div align="justify">[]a</div>`, want: "justify"},
		{src: `<center>[]a</center>`, want: "center"},
		{src: `<p style="text-align: -webkit-right">[]a</p>`, want: "right"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e := newTestEditor(t, tt.src)
			got, err := e.Alignment()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAlignRejectsUnknownValue(t *testing.T) {
	e := newTestEditor(t, "<p>[]a</p>")
	_, err := e.Align(context.Background(), "diagonal")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFormatBlock(t *testing.T) {
	tests := []struct {
		name string
		src  string
		tag  string
		want string
	}{
		{name: "rename paragraph", src: "<p>[]a</p>", tag: "h1", want: "<h1>a</h1>"},
		{name: "angle brackets", src: "<p>[]a</p>", tag: "<pre>", want: "<pre>a</pre>"},
		{name: "wrap inline content", src: "[]a", tag: "p", want: "<p>a</p>"},
		{name: "blockquote wraps", src: "<p>[]a</p>", tag: "blockquote", want: "<blockquote><p>a</p></blockquote>"},
		{name: "remove", src: "<h2>[]a</h2>", tag: "", want: "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEditor(t, tt.src)
			res, err := e.FormatBlock(context.Background(), tt.tag)
			require.NoError(t, err)
			assert.Equal(t, Handled, res)
			assert.Equal(t, tt.want, editorHTML(t, e))
		})
	}
}

func TestFormatBlockRejectsInlineTag(t *testing.T) {
	e := newTestEditor(t, "<p>[]a</p>")
	_, err := e.FormatBlock(context.Background(), "span")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAbsolutePosition(t *testing.T) {
	ctx := context.Background()
	e := newTestEditor(t, `<div style="position: absolute; z-index: 5;">x</div><p>[]a</p>`)

	res, err := e.SetAbsolutePosition(ctx)
	require.NoError(t, err)
	assert.Equal(t, Handled, res)
	got := editorHTML(t, e)
	assert.Contains(t, got, `<div style="position: absolute; top: 0px; left: 0px; z-index: 6;"><p>a</p></div>`)

	res, err = e.SetAbsolutePosition(ctx)
	require.NoError(t, err)
	assert.Equal(t, Ignored, res, "already positioned")

	res, err = e.SetStaticPosition(ctx)
	require.NoError(t, err)
	assert.Equal(t, Handled, res)
	assert.Equal(t, `<div style="position: absolute; z-index: 5;">x</div><p>a</p>`, editorHTML(t, e))

	res, err = e.SetStaticPosition(ctx)
	require.NoError(t, err)
	assert.Equal(t, Canceled, res)
}

func TestBlockActionOnNonEditableIsCanceled(t *testing.T) {
	e := newTestEditor(t, `<p contenteditable="false">[]a</p>`)
	res, err := e.Indent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Canceled, res)
}
