package txn

import (
	"fmt"
	"strings"
)

// MergeDeltas coalesces next into prev so that both undo as one step. It refuses when
// next does not start from prev's result or the deltas come from different actions.
// Adjacent text insertions into the same node are folded into one operation.
func MergeDeltas(prev, next *Delta) (*Delta, bool) {
	if prev == nil || next == nil {
		return nil, false
	}
	if prev.ResultHash != next.BaseHash || prev.Name != next.Name {
		return nil, false
	}
	merged := &Delta{
		ID:              prev.ID,
		Name:            prev.Name,
		BaseHash:        prev.BaseHash,
		ResultHash:      next.ResultHash,
		SelectionBefore: prev.SelectionBefore,
		SelectionAfter:  next.SelectionAfter,
		Timestamp:       next.Timestamp,
		Author:          prev.Author,
	}
	ops := make([]Operation, len(prev.Operations), len(prev.Operations)+len(next.Operations))
	copy(ops, prev.Operations)
	for _, op := range next.Operations {
		if n := len(ops); n > 0 && canCoalesce(ops[n-1], op) {
			ops[n-1].NewValue += op.NewValue
			continue
		}
		ops = append(ops, op)
	}
	merged.Operations = ops
	return merged, true
}

// canCoalesce reports whether b continues the text inserted by a.
func canCoalesce(a, b Operation) bool {
	return a.Type == OpInsertText && b.Type == OpInsertText &&
		pathKey(a) == pathKey(b) && b.Position == a.Position+len(a.NewValue)
}

func pathKey(op Operation) string {
	return strings.Trim(fmt.Sprint(op.Path), "[]")
}
