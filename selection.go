package htmledit

import (
	"golang.org/x/net/html"

	"github.com/dannyswat/htmledit/internal/dom"
	"github.com/dannyswat/htmledit/internal/txn"
)

// InterlinePosition says which line a caret at a line wrap belongs to.
type InterlinePosition int

const (
	InterlineUnset InterlinePosition = iota
	// InterlineBefore sticks the caret to the end of the preceding line.
	InterlineBefore
	// InterlineAfter sticks the caret to the start of the following line.
	InterlineAfter
)

func (p InterlinePosition) String() string {
	switch p {
	case InterlineBefore:
		return "before"
	case InterlineAfter:
		return "after"
	}
	return "unset"
}

// Selection is an ordered set of ranges kept live across every mutation the editor makes.
type Selection struct {
	tracker   *txn.Tracker
	ranges    []*dom.Range
	untrack   []func()
	interline InterlinePosition
	// onChange runs after the ranges are replaced.
	onChange func()
}

func newSelection(tracker *txn.Tracker) *Selection {
	return &Selection{tracker: tracker}
}

func (s *Selection) RangeCount() int { return len(s.ranges) }

// Range returns a copy of the i-th range.
func (s *Selection) Range(i int) dom.Range {
	if i < 0 || i >= len(s.ranges) {
		return dom.Range{}
	}
	return *s.ranges[i]
}

// Ranges returns copies of all ranges in order.
func (s *Selection) Ranges() []dom.Range {
	out := make([]dom.Range, len(s.ranges))
	for i, r := range s.ranges {
		out[i] = *r
	}
	return out
}

// IsCollapsed reports whether the selection is a single caret.
func (s *Selection) IsCollapsed() bool {
	return len(s.ranges) == 1 && s.ranges[0].Collapsed()
}

// Start is the start of the first range.
func (s *Selection) Start() dom.Point {
	if len(s.ranges) == 0 {
		return dom.Point{}
	}
	return s.ranges[0].Start
}

// End is the end of the last range.
func (s *Selection) End() dom.Point {
	if len(s.ranges) == 0 {
		return dom.Point{}
	}
	return s.ranges[len(s.ranges)-1].End
}

func (s *Selection) InterlinePosition() InterlinePosition { return s.interline }

func (s *Selection) SetInterlinePosition(p InterlinePosition) {
	s.interline = p
}

// SetRanges replaces the selection. Unpositioned ranges are dropped.
func (s *Selection) SetRanges(ranges ...dom.Range) {
	s.clear()
	for _, r := range ranges {
		if !r.IsPositioned() {
			continue
		}
		rr := dom.NewRange(r.Start, r.End)
		s.ranges = append(s.ranges, &rr)
		s.untrack = append(s.untrack, s.tracker.TrackRange(&rr))
	}
	if s.onChange != nil {
		s.onChange()
	}
}

// Collapse makes the selection a caret at p.
func (s *Selection) Collapse(p dom.Point) {
	s.SetRanges(dom.CollapsedAt(p))
}

// SelectNode selects n as a whole.
func (s *Selection) SelectNode(n *html.Node) {
	s.SetRanges(dom.SelectNode(n))
}

// RemoveAllRanges empties the selection.
func (s *Selection) RemoveAllRanges() {
	s.SetRanges()
}

func (s *Selection) clear() {
	for _, u := range s.untrack {
		u()
	}
	s.ranges = nil
	s.untrack = nil
}

// pathRanges converts the ranges to path form for the undo log.
func (s *Selection) pathRanges(tx *txn.Manager) []txn.PathRange {
	var out []txn.PathRange
	for _, r := range s.ranges {
		start, err := tx.PathPointOf(r.Start)
		if err != nil {
			continue
		}
		end, err := tx.PathPointOf(r.End)
		if err != nil {
			continue
		}
		out = append(out, txn.PathRange{Start: start, End: end})
	}
	return out
}

// restore sets the selection from path form, skipping ranges that no longer resolve.
func (s *Selection) restore(tx *txn.Manager, ranges []txn.PathRange) {
	var out []dom.Range
	for _, pr := range ranges {
		start, err := tx.PointOf(pr.Start)
		if err != nil {
			continue
		}
		end, err := tx.PointOf(pr.End)
		if err != nil {
			continue
		}
		out = append(out, dom.Range{Start: start, End: end})
	}
	s.SetRanges(out...)
}
