package main

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScript(t *testing.T) {
	s, err := loadScript(strings.NewReader(`
name: typing
actions:
  - action: insert-text
    text: "hello"
  - action: delete
    direction: previous-word
    strip: false
  - action: list
    tag: ol
    repeat: 2
`))
	require.NoError(t, err)
	assert.Equal(t, "typing", s.Name)
	require.Len(t, s.Actions, 3)
	assert.Equal(t, "hello", s.Actions[0].Text)
	require.NotNil(t, s.Actions[1].Strip)
	assert.False(t, *s.Actions[1].Strip)
	assert.Equal(t, 2, s.Actions[2].Repeat)
}

func TestLoadScriptErrors(t *testing.T) {
	tests := map[string]string{
		"empty":           "",
		"unknown action":  "actions:\n  - action: explode\n",
		"unknown key":     "actions:\n  - action: delete\n    speed: 3\n",
		"negative repeat": "actions:\n  - action: delete\n    repeat: -1\n",
		"not yaml":        "actions: [",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := loadScript(strings.NewReader(src))
			assert.Error(t, err)
		})
	}
}

func TestActionHandlersCoverDocumentedActions(t *testing.T) {
	for _, name := range []string{
		"delete", "insert-text", "insert-paragraph", "insert-line-break", "list", "remove-list",
		"indent", "outdent", "align", "format-block", "position", "undo", "redo",
	} {
		assert.Contains(t, actionHandlers, name)
	}
}

func mustScript(t *testing.T, src string) *Script {
	t.Helper()
	s, err := loadScript(strings.NewReader(src))
	require.NoError(t, err)
	return s
}

func TestRunScript(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		doc     string
		markers bool
		want    string
	}{
		{
			name:    "delete defaults to backspace",
			script:  "actions:\n  - action: delete\n",
			doc:     "<p>ab[]c</p>",
			markers: true,
			want:    "<p>a[]c</p>",
		},
		{
			name:   "repeat",
			script: "actions:\n  - action: delete\n    repeat: 2\n",
			doc:    "<p>abc[]</p>",
			want:   "<p>a</p>",
		},
		{
			name:   "type then undo",
			script: "actions:\n  - action: insert-text\n    text: xy\n  - action: undo\n",
			doc:    "<p>a[]</p>",
			want:   "<p>a</p>",
		},
		{
			name:   "undo with nothing recorded",
			script: "actions:\n  - action: undo\n  - action: redo\n",
			doc:    "<p>a[]</p>",
			want:   "<p>a</p>",
		},
		{
			name:   "list",
			script: "actions:\n  - action: list\n",
			doc:    "<p>[]a</p>",
			want:   "<ul><li>a</li></ul>",
		},
		{
			name:   "align",
			script: "actions:\n  - action: align\n    value: center\n",
			doc:    "<p>[]a</p>",
			want:   `<p align="center">a</p>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runScript(context.Background(), DefaultConfig(), mustScript(t, tt.script), tt.doc, tt.markers)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.After)
		})
	}
}

func TestRunScriptKeepsBefore(t *testing.T) {
	out, err := runScript(context.Background(), DefaultConfig(),
		mustScript(t, "actions:\n  - action: insert-text\n    text: b\n"), "<p>a[]</p>", false)
	require.NoError(t, err)
	assert.Equal(t, "<p>a</p>", out.Before)
	assert.Equal(t, "<p>ab</p>", out.After)
}

func TestRunScriptErrors(t *testing.T) {
	ctx := context.Background()

	_, err := runScript(ctx, DefaultConfig(), mustScript(t, "actions:\n  - action: delete\n    direction: up\n"), "<p>a[]</p>", false)
	assert.ErrorContains(t, err, "unknown direction")

	_, err = runScript(ctx, DefaultConfig(), mustScript(t, "actions:\n  - action: position\n    value: floating\n"), "<p>a[]</p>", false)
	assert.ErrorContains(t, err, "unknown position")

	_, err = runScript(ctx, DefaultConfig(), mustScript(t, "actions:\n  - action: delete\n"), "<p>a]b</p>", false)
	assert.Error(t, err, "bad markers")

	c := DefaultConfig()
	c.ParagraphSeparator = "section"
	_, err = runScript(ctx, c, mustScript(t, "actions:\n  - action: delete\n"), "<p>a[]</p>", false)
	assert.ErrorContains(t, err, "paragraph_separator")
}

func TestFormatDiff(t *testing.T) {
	assert.Equal(t, "<p>a</p>", formatDiff("<p>a</p>", "<p>a</p>"))
	got := formatDiff("<p>abc</p>", "<p>abd</p>")
	assert.Contains(t, got, "[-c-]")
	assert.Contains(t, got, "{+d+}")
}
