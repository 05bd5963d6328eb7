package ws

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
	"golang.org/x/net/html"

	"github.com/dannyswat/htmledit/internal/dom"
	"github.com/dannyswat/htmledit/internal/txn"
)

// DeleteTextRange deletes [start,end) of one text node and rewrites the whitespace the
// deletion brings together so it keeps its rendered width. It returns the point where
// the text was removed.
func (s *Service) DeleteTextRange(start, end dom.Point) (dom.Point, error) {
	t := start.Container
	if !start.InText() || end.Container != t || start.Offset > end.Offset {
		return start, fmt.Errorf("%w: text range %s-%s", txn.ErrInvalidPoint, start, end)
	}
	if start.Offset == end.Offset {
		return start, nil
	}
	before, after := 0, 0
	if rs, _ := runAt(t, start.Offset); rs < start.Offset {
		before = s.runWidth(t, rs, start.Offset)
	}
	if _, re := runAt(t, end.Offset); re > end.Offset {
		after = s.runWidth(t, end.Offset, re)
	}
	p := start
	defer s.tx.Tracker().Track(&p)()
	if err := s.tx.DeleteText(t, start.Offset, end.Offset-start.Offset); err != nil {
		return p, err
	}
	if err := s.normalizeWithWidths(p, before, after); err != nil {
		return p, err
	}
	return p, nil
}

// CharacterRange returns the text a character deletion of found removes. Collapsible
// whitespace is removed as a whole sequence. Forward deletion removes a grapheme
// cluster; backward deletion removes a single code point unless grapheme deletion is
// enabled.
func (s *Service) CharacterRange(found ScanResult, forward bool) (dom.Range, error) {
	if found.Kind != KindText || !found.Point.InText() {
		return dom.Range{}, fmt.Errorf("%w: no character to delete", txn.ErrInvalidPoint)
	}
	t := found.Content
	start, end := found.Point.Offset, found.End.Offset
	r, _ := utf8.DecodeRuneInString(t.Data[start:])
	if !isSpaceLike(r) && (forward || s.graphemes) {
		start, end = graphemeAt(t.Data, start, end)
	}
	return dom.Range{
		Start: dom.Point{Container: t, Offset: start},
		End:   dom.Point{Container: t, Offset: end},
	}, nil
}

// DeleteCharacter removes the character found by a text scan.
func (s *Service) DeleteCharacter(found ScanResult, forward bool) (dom.Point, error) {
	r, err := s.CharacterRange(found, forward)
	if err != nil {
		return found.Point, err
	}
	return s.DeleteTextRange(r.Start, r.End)
}

// graphemeAt widens [start,end) to the grapheme clusters it touches.
func graphemeAt(text string, start, end int) (int, int) {
	g := uniseg.NewGraphemes(text)
	from, to := start, end
	for g.Next() {
		a, b := g.Positions()
		if b <= start {
			continue
		}
		if a >= end {
			break
		}
		from, to = min(from, a), max(to, b)
	}
	return from, to
}

// DeleteNode removes n, joins the text nodes it separated and rewrites the whitespace
// that meets at the join. It returns the point where n was.
func (s *Service) DeleteNode(n *html.Node) (dom.Point, error) {
	if n == nil || n.Parent == nil {
		return dom.Point{}, fmt.Errorf("%w: detached node", txn.ErrInvalidNode)
	}
	var before, after int
	prev, next := n.PrevSibling, n.NextSibling
	if prev != nil && prev.Type == html.TextNode {
		ps, pe := runAt(prev, len(prev.Data))
		before = s.runWidth(prev, ps, pe)
	}
	if next != nil && next.Type == html.TextNode {
		ns, ne := runAt(next, 0)
		after = s.runWidth(next, ns, ne)
	}
	p := dom.PointBefore(n)
	defer s.tx.Tracker().Track(&p)()
	if err := s.tx.DeleteNode(n); err != nil {
		return p, err
	}
	if prev != nil && next != nil && prev.Type == html.TextNode && next.Type == html.TextNode && prev.Parent == next.Parent {
		joined, err := s.tx.JoinNodes(prev, next)
		if err != nil {
			return p, err
		}
		p = joined
	}
	if err := s.normalizeWithWidths(p, before, after); err != nil {
		return p, err
	}
	return p, nil
}

// textInsertionPoint resolves p to a text node offset, creating an empty text node when
// no adjacent text exists.
func (s *Service) textInsertionPoint(p dom.Point) (dom.Point, error) {
	if p.InText() {
		return p, nil
	}
	if prev := p.PreviousChild(); prev != nil && prev.Type == html.TextNode {
		return dom.PointAtEnd(prev), nil
	}
	if next := p.Child(); next != nil && next.Type == html.TextNode {
		return dom.PointAtStart(next), nil
	}
	t := dom.NewText("")
	if err := s.tx.InsertNode(t, p); err != nil {
		return p, err
	}
	return dom.PointAtStart(t), nil
}

// InsertText inserts text at p. Spaces in the inserted text are made visible and the
// whitespace around the insertion keeps its rendered width. It returns the range
// covering the inserted text.
func (s *Service) InsertText(p dom.Point, text string) (dom.Range, error) {
	at, err := s.textInsertionPoint(p)
	if err != nil {
		return dom.Range{}, err
	}
	if text == "" {
		return dom.CollapsedAt(at), nil
	}
	t := at.Container
	before, after := s.edgeWidths(at)
	start, end := at, dom.Point{Container: t, Offset: at.Offset}
	defer s.tx.Tracker().Track(&start)()
	defer s.tx.Tracker().Track(&end)()
	if err := s.tx.InsertText(t, at.Offset, text); err != nil {
		return dom.Range{}, err
	}
	end.Offset = at.Offset + len(text)
	if dom.IsPreformatted(t) || !strings.ContainsFunc(text+t.Data, isSpaceLike) {
		return dom.Range{Start: start, End: end}, nil
	}

	type span struct{ start, end, width int }
	var runs []span
	lo, _ := runAt(t, start.Offset)
	_, hi := runAt(t, end.Offset)
	for i := lo; i < hi; {
		r, size := utf8.DecodeRuneInString(t.Data[i:])
		if !isSpaceLike(r) {
			i += size
			continue
		}
		rs, re := i, i
		for re < hi {
			r2, size2 := utf8.DecodeRuneInString(t.Data[re:])
			if !isSpaceLike(r2) {
				break
			}
			re += size2
		}
		from, to := max(rs, start.Offset), min(re, end.Offset)
		w := 0
		if from < to {
			w = utf8.RuneCountInString(t.Data[from:to])
		}
		if rs < start.Offset {
			w += before
		}
		if re > end.Offset {
			w += after
		}
		runs = append(runs, span{rs, re, w})
		i = re
	}
	for i := len(runs) - 1; i >= 0; i-- {
		w := runs[i].width
		if w == 0 {
			w = -1
		}
		if err := s.rewriteRun(t, runs[i].start, runs[i].end, w); err != nil {
			return dom.Range{}, err
		}
	}
	return dom.Range{Start: start, End: end}, nil
}

// InsertElement inserts el at p, splitting a text node when p is inside one, and keeps
// the whitespace on both sides visible.
func (s *Service) InsertElement(el *html.Node, p dom.Point) error {
	at, err := s.PrepareToSplit(p)
	if err != nil {
		return err
	}
	if at.InText() {
		t := at.Container
		switch at.Offset {
		case 0:
			at = dom.PointBefore(t)
		case len(t.Data):
			at = dom.PointAfter(t)
		default:
			right, err := s.tx.SplitNode(at)
			if err != nil {
				return err
			}
			at = dom.PointBefore(right)
		}
	}
	return s.tx.InsertNode(el, at)
}

// PrepareToSplit rewrites the whitespace around p so that both halves keep their
// rendered spaces once a line or block boundary is put at p. It returns p adjusted for
// the rewrite.
func (s *Service) PrepareToSplit(p dom.Point) (dom.Point, error) {
	if !p.InText() || dom.IsPreformatted(p.Container) {
		return p, nil
	}
	t := p.Container
	rs, re := runAt(t, p.Offset)
	if rs == re {
		return p, nil
	}
	total := s.runWidth(t, rs, re)
	if total == 0 {
		return p, nil
	}
	leftWidth := visualUnits(t.Data[rs:p.Offset])
	rightWidth := visualUnits(t.Data[p.Offset:re])
	if s.contentBefore(dom.Point{Container: t, Offset: rs}) == NeighborNone {
		leftWidth = 0
	}
	if s.contentAfter(dom.Point{Container: t, Offset: re}) == NeighborNone {
		rightWidth = 0
	}
	at := p
	defer s.tx.Tracker().Track(&at)()
	if rightWidth > 0 {
		seq := GenerateSequence(rightWidth, NeighborNone, s.neighborAfter(dom.Point{Container: t, Offset: re}))
		if seq != t.Data[p.Offset:re] {
			if err := s.tx.ReplaceText(t, p.Offset, re-p.Offset, seq); err != nil {
				return at, err
			}
		}
	}
	if leftWidth > 0 {
		seq := GenerateSequence(leftWidth, s.neighborBefore(dom.Point{Container: t, Offset: rs}), NeighborNone)
		if seq != t.Data[rs:at.Offset] {
			if err := s.tx.ReplaceText(t, rs, at.Offset-rs, seq); err != nil {
				return at, err
			}
		}
	}
	return at, nil
}

// visualUnits counts NBSPs and ASCII whitespace sequences in a run.
func visualUnits(run string) int {
	n := 0
	inASCII := false
	for _, r := range run {
		if r == nbsp {
			n++
			inASCII = false
			continue
		}
		if !inASCII {
			n++
		}
		inASCII = true
	}
	return n
}
