package txn

import (
	"golang.org/x/net/html"

	"github.com/dannyswat/htmledit/internal/dom"
)

// Tracker keeps registered points valid across mutations, following the DOM rules for
// live ranges. Points that are not registered must be re-derived after a mutation.
type Tracker struct {
	points map[*dom.Point]int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{points: make(map[*dom.Point]int)}
}

// Track registers p and returns a function that unregisters it.
// Registering the same point twice requires two calls to the returned functions.
func (t *Tracker) Track(p *dom.Point) func() {
	t.points[p]++
	done := false
	return func() {
		if done {
			return
		}
		done = true
		if t.points[p] <= 1 {
			delete(t.points, p)
			return
		}
		t.points[p]--
	}
}

// TrackRange registers both boundaries of r.
func (t *Tracker) TrackRange(r *dom.Range) func() {
	untrackStart := t.Track(&r.Start)
	untrackEnd := t.Track(&r.End)
	return func() {
		untrackStart()
		untrackEnd()
	}
}

// Len returns the number of tracked points.
func (t *Tracker) Len() int {
	return len(t.points)
}

func (t *Tracker) nodeInserted(parent *html.Node, index int) {
	for p := range t.points {
		if p.Container == parent && p.Offset > index {
			p.Offset++
		}
	}
}

func (t *Tracker) nodeRemoved(node, parent *html.Node, index int) {
	for p := range t.points {
		switch {
		case p.Container == nil:
		case dom.IsInclusiveAncestor(node, p.Container):
			p.Container = parent
			p.Offset = index
		case p.Container == parent && p.Offset > index:
			p.Offset--
		}
	}
}

// nodeMoved keeps points inside the moved node attached to it.
func (t *Tracker) nodeMoved(oldParent *html.Node, oldIndex int, newParent *html.Node, newIndex int) {
	for p := range t.points {
		if p.Container == oldParent && p.Offset > oldIndex {
			p.Offset--
		}
	}
	for p := range t.points {
		if p.Container == newParent && p.Offset > newIndex {
			p.Offset++
		}
	}
}

func (t *Tracker) textInserted(node *html.Node, offset, length int) {
	for p := range t.points {
		if p.Container == node && p.Offset > offset {
			p.Offset += length
		}
	}
}

func (t *Tracker) textDeleted(node *html.Node, offset, length int) {
	for p := range t.points {
		if p.Container != node {
			continue
		}
		switch {
		case p.Offset > offset+length:
			p.Offset -= length
		case p.Offset > offset:
			p.Offset = offset
		}
	}
}

// nodeSplit handles a split of left at offset into left and a new right sibling.
func (t *Tracker) nodeSplit(left, right *html.Node, offset int) {
	parent := left.Parent
	leftIndex := dom.Index(left)
	for p := range t.points {
		switch {
		case p.Container == left && p.Offset > offset:
			p.Container = right
			p.Offset -= offset
		case p.Container == parent && p.Offset > leftIndex:
			p.Offset++
		}
	}
}

// nodesJoined handles right (formerly at rightIndex in parent) being merged into left,
// whose original length was leftLength.
func (t *Tracker) nodesJoined(left, right, parent *html.Node, leftLength, rightIndex int) {
	for p := range t.points {
		switch {
		case p.Container == right:
			p.Container = left
			p.Offset += leftLength
		case p.Container == parent && p.Offset == rightIndex:
			p.Container = left
			p.Offset = leftLength
		case p.Container == parent && p.Offset > rightIndex:
			p.Offset--
		}
	}
}
