package txn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dannyswat/htmledit/internal/dom"
)

func TestMergeDeltas(t *testing.T) {
	prev := &Delta{
		ID: "1", Name: "insertText", BaseHash: "h0", ResultHash: "h1",
		Operations: []Operation{{Type: OpInsertText, Path: dom.NodePath{0, 1, 0}, Position: 2, NewValue: "ab"}},
	}
	next := &Delta{
		ID: "2", Name: "insertText", BaseHash: "h1", ResultHash: "h2",
		Operations: []Operation{
			{Type: OpInsertText, Path: dom.NodePath{0, 1, 0}, Position: 4, NewValue: "c"},
			{Type: OpInsertText, Path: dom.NodePath{0, 1, 0}, Position: 9, NewValue: "d"},
		},
	}

	merged, ok := MergeDeltas(prev, next)
	require.True(t, ok)
	assert.Equal(t, "1", merged.ID)
	assert.Equal(t, "h0", merged.BaseHash)
	assert.Equal(t, "h2", merged.ResultHash)
	require.Len(t, merged.Operations, 2)
	assert.Equal(t, "abc", merged.Operations[0].NewValue)
	assert.Equal(t, "d", merged.Operations[1].NewValue)
	assert.Equal(t, "ab", prev.Operations[0].NewValue, "prev is not modified")
}

func TestMergeDeltasRefuses(t *testing.T) {
	prev := &Delta{Name: "insertText", ResultHash: "h1"}

	_, ok := MergeDeltas(prev, &Delta{Name: "insertText", BaseHash: "other"})
	assert.False(t, ok, "chain broken")
	_, ok = MergeDeltas(prev, &Delta{Name: "deleteSelection", BaseHash: "h1"})
	assert.False(t, ok, "different action")
	_, ok = MergeDeltas(nil, prev)
	assert.False(t, ok)
}
