package htmledit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dannyswat/htmledit/internal/dom"
)

func TestInsertText(t *testing.T) {
	tests := []struct {
		name string
		src  string
		text string
		want string
	}{
		{name: "at caret", src: "<p>a[]c</p>", text: "b", want: "<p>abc</p>"},
		{name: "replaces selection", src: "<p>a[bc]d</p>", text: "X", want: "<p>aXd</p>"},
		{name: "line feed becomes br", src: "<p>a[]</p>", text: "x\ny", want: "<p>ax<br/>y</p>"},
		{name: "line feed kept in pre", src: "<pre>a[]</pre>", text: "x\ny", want: "<pre>ax\ny</pre>"},
		{name: "trailing space is visible", src: "<p>a[]</p>", text: " ", want: "<p>a&nbsp;</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEditor(t, tt.src)
			res, err := e.InsertText(context.Background(), SubActionInsertText, tt.text)
			require.NoError(t, err)
			assert.Equal(t, Handled, res)
			assert.Equal(t, tt.want, editorHTML(t, e))
		})
	}
}

func TestInsertTextRejectsOtherSubActions(t *testing.T) {
	e := newTestEditor(t, "<p>a[]</p>")
	_, err := e.InsertText(context.Background(), SubActionIndent, "x")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestInsertEmptyTextIsCanceled(t *testing.T) {
	e := newTestEditor(t, "<p>a[]</p>")
	res, err := e.InsertText(context.Background(), SubActionInsertText, "")
	require.NoError(t, err)
	assert.Equal(t, Canceled, res)
	assert.False(t, e.CanUndo())
}

func TestTypingUndoesAsOneStep(t *testing.T) {
	ctx := context.Background()
	e := newTestEditor(t, "<p>a[]</p>")
	for _, s := range []string{"b", "c", "d"} {
		_, err := e.InsertText(ctx, SubActionInsertText, s)
		require.NoError(t, err)
	}
	assert.Equal(t, "<p>abcd</p>", editorHTML(t, e))

	require.NoError(t, e.Undo())
	assert.Equal(t, "<p>a</p>", editorHTML(t, e))
	assert.False(t, e.CanUndo())

	require.NoError(t, e.Redo())
	assert.Equal(t, "<p>abcd</p>", editorHTML(t, e))
}

func TestTypingRunEndsWhenCaretMoves(t *testing.T) {
	ctx := context.Background()
	e := newTestEditor(t, "<p>a[]</p>")
	_, err := e.InsertText(ctx, SubActionInsertText, "b")
	require.NoError(t, err)

	text := e.Host().FirstChild.FirstChild
	require.NoError(t, e.SetSelection(dom.CollapsedAt(dom.PointAtEnd(text))))
	_, err = e.InsertText(ctx, SubActionInsertText, "c")
	require.NoError(t, err)

	require.NoError(t, e.Undo())
	assert.Equal(t, "<p>ab</p>", editorHTML(t, e))
	require.NoError(t, e.Undo())
	assert.Equal(t, "<p>a</p>", editorHTML(t, e))
}

func TestTypingRunEndsAtOtherAction(t *testing.T) {
	ctx := context.Background()
	e := newTestEditor(t, "<p>ab[]</p>")
	_, err := e.InsertText(ctx, SubActionInsertText, "c")
	require.NoError(t, err)
	_, err = e.DeleteSelection(ctx, DirectionPrevious, Strip)
	require.NoError(t, err)
	_, err = e.InsertText(ctx, SubActionInsertText, "d")
	require.NoError(t, err)
	assert.Equal(t, "<p>abd</p>", editorHTML(t, e))

	require.NoError(t, e.Undo())
	assert.Equal(t, "<p>ab</p>", editorHTML(t, e))
}

func TestCompositionIsNotMerged(t *testing.T) {
	ctx := context.Background()
	e := newTestEditor(t, "<p>a[]</p>")
	_, err := e.InsertText(ctx, SubActionInsertTextComingFromIME, "b")
	require.NoError(t, err)
	_, err = e.InsertText(ctx, SubActionInsertTextComingFromIME, "c")
	require.NoError(t, err)
	require.NoError(t, e.Undo())
	assert.Equal(t, "<p>ab</p>", editorHTML(t, e))
}

func TestTypingKeepsInlineStyleAfterDeletion(t *testing.T) {
	ctx := context.Background()
	e := newTestEditor(t, "<p>a<b>[x]</b></p>")
	_, err := e.DeleteSelection(ctx, DirectionNone, Strip)
	require.NoError(t, err)
	_, err = e.InsertText(ctx, SubActionInsertText, "y")
	require.NoError(t, err)
	assert.Equal(t, "<p>a<b>y</b></p>", editorHTML(t, e))
}
