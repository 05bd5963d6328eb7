package txn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffTextGranularity(t *testing.T) {
	tests := []struct {
		name      string
		oldHTML   string
		newHTML   string
		expectOps []OpType
	}{
		{
			name:      "Append Text",
			oldHTML:   "<p>Hello</p>",
			newHTML:   "<p>Hello World</p>",
			expectOps: []OpType{OpInsertText},
		},
		{
			name:      "Prepend Text",
			oldHTML:   "<p>World</p>",
			newHTML:   "<p>Hello World</p>",
			expectOps: []OpType{OpInsertText},
		},
		{
			name:      "Insert Middle",
			oldHTML:   "<p>Hello World</p>",
			newHTML:   "<p>Hello Go World</p>",
			expectOps: []OpType{OpInsertText},
		},
		{
			name:      "Delete End",
			oldHTML:   "<p>Hello World</p>",
			newHTML:   "<p>Hello</p>",
			expectOps: []OpType{OpDeleteText},
		},
		{
			name:      "Delete Middle",
			oldHTML:   "<p>Hello Go World</p>",
			newHTML:   "<p>Hello World</p>",
			expectOps: []OpType{OpDeleteText},
		},
		{
			name:      "Replace Middle",
			oldHTML:   "<p>Hello Old World</p>",
			newHTML:   "<p>Hello New World</p>",
			expectOps: []OpType{OpDeleteText, OpInsertText},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta, err := DiffHTML(tt.oldHTML, tt.newHTML, "test")
			require.NoError(t, err)

			got := make([]OpType, 0, len(delta.Operations))
			for _, op := range delta.Operations {
				got = append(got, op.Type)
			}
			require.Equal(t, tt.expectOps, got, "operations: %+v", delta.Operations)
		})
	}
}

func TestDiffSimple(t *testing.T) {
	tests := []struct {
		name    string
		oldHTML string
		newHTML string
		wantOps int
	}{
		{
			name:    "No changes",
			oldHTML: "<div><p>Hello</p></div>",
			newHTML: "<div><p>Hello</p></div>",
			wantOps: 0,
		},
		{
			name:    "Attribute change",
			oldHTML: `<div class="a"></div>`,
			newHTML: `<div class="b"></div>`,
			wantOps: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta, err := DiffHTML(tt.oldHTML, tt.newHTML, "tester")
			require.NoError(t, err)
			assert.Len(t, delta.Operations, tt.wantOps)
			assert.Equal(t, "tester", delta.Author)
			assert.NotEmpty(t, delta.BaseHash)
		})
	}
}

func TestDiffTextKeepsRuneBoundaries(t *testing.T) {
	delta, err := DiffHTML("<p>café</p>", "<p>cafè</p>", "test")
	require.NoError(t, err)
	require.Len(t, delta.Operations, 2)
	assert.Equal(t, "é", delta.Operations[0].OldValue)
	assert.Equal(t, "è", delta.Operations[1].NewValue)
}
