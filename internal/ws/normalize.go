package ws

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/dannyswat/htmledit/internal/dom"
)

// Neighbor classifies what sits next to a whitespace run.
type Neighbor int

const (
	NeighborNone Neighbor = iota
	NeighborSpace
	NeighborVisible
)

// GenerateSequence returns n visible whitespace characters that survive HTML whitespace
// collapsing given what precedes and follows them.
func GenerateSequence(n int, prev, next Neighbor) string {
	if n <= 0 {
		return ""
	}
	if n == 1 {
		if prev == NeighborVisible && next == NeighborVisible {
			return " "
		}
		return string(nbsp)
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			b.WriteRune(nbsp)
		} else {
			b.WriteByte(' ')
		}
	}
	out := b.String()
	if n%2 == 0 && next != NeighborVisible {
		out = out[:len(out)-1] + string(nbsp)
	}
	return out
}

func isSpaceLike(r rune) bool {
	return r == nbsp || dom.IsASCIIWhitespace(r)
}

// runAt returns the maximal run of spaces and NBSPs in t touching offset.
func runAt(t *html.Node, offset int) (start, end int) {
	start, end = offset, offset
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(t.Data[:start])
		if !isSpaceLike(r) {
			break
		}
		start -= size
	}
	for end < len(t.Data) {
		r, size := utf8.DecodeRuneInString(t.Data[end:])
		if !isSpaceLike(r) {
			break
		}
		end += size
	}
	return start, end
}

// walk visits characters before or after p on the same line. visit returns the
// neighbor to report and true to stop; line boundaries report NeighborNone and atomic
// inline content reports NeighborVisible.
func (s *Service) walk(p dom.Point, forward bool, visit func(r rune, pre bool) (Neighbor, bool)) Neighbor {
	if !p.IsSet() {
		return NeighborNone
	}
	block := s.BlockOf(p.Container)
	c := cursorAt(p)
	if p.InText() {
		if nb, ok := visitText(p.Container, p.Offset, forward, visit); ok {
			return nb
		}
		if forward {
			c = cursor{parent: p.Container.Parent, child: p.Container.NextSibling}
		}
	}
	for {
		var n *html.Node
		switch {
		case forward:
			n = c.child
		case c.child != nil:
			n = c.child.PrevSibling
		default:
			n = c.parent.LastChild
		}
		if n == nil {
			if c.parent == block || c.parent == s.host || c.parent.Parent == nil || dom.IsBlock(c.parent) {
				return NeighborNone
			}
			if forward {
				c = cursor{parent: c.parent.Parent, child: c.parent.NextSibling}
			} else {
				c = cursor{parent: c.parent.Parent, child: c.parent}
			}
			continue
		}
		switch {
		case n.Type == html.TextNode:
			off := 0
			if !forward {
				off = len(n.Data)
			}
			if nb, ok := visitText(n, off, forward, visit); ok {
				return nb
			}
		case n.Type != html.ElementNode:
		case dom.IsBR(n) || dom.IsHR(n) || dom.IsBlock(n):
			return NeighborNone
		case s.isAtomic(n):
			return NeighborVisible
		default:
			if forward {
				c = cursor{parent: n, child: n.FirstChild}
			} else {
				c = cursor{parent: n, child: nil}
			}
			continue
		}
		if forward {
			c = cursor{parent: c.parent, child: n.NextSibling}
		} else {
			c = cursor{parent: c.parent, child: n}
		}
	}
}

func visitText(t *html.Node, offset int, forward bool, visit func(r rune, pre bool) (Neighbor, bool)) (Neighbor, bool) {
	pre := dom.IsPreformatted(t)
	if forward {
		for i := offset; i < len(t.Data); {
			r, size := utf8.DecodeRuneInString(t.Data[i:])
			if nb, ok := visit(r, pre); ok {
				return nb, true
			}
			i += size
		}
		return NeighborNone, false
	}
	for i := offset; i > 0; {
		r, size := utf8.DecodeLastRuneInString(t.Data[:i])
		if nb, ok := visit(r, pre); ok {
			return nb, true
		}
		i -= size
	}
	return NeighborNone, false
}

func skipCollapsible(r rune, pre bool) (Neighbor, bool) {
	if pre || !dom.IsASCIIWhitespace(r) {
		return NeighborVisible, true
	}
	return NeighborNone, false
}

func immediate(r rune, pre bool) (Neighbor, bool) {
	if !pre && dom.IsASCIIWhitespace(r) {
		return NeighborSpace, true
	}
	return NeighborVisible, true
}

// contentBefore reports whether visible inline content precedes p on its line,
// ignoring collapsible whitespace.
func (s *Service) contentBefore(p dom.Point) Neighbor {
	return s.walk(p, false, skipCollapsible)
}

func (s *Service) contentAfter(p dom.Point) Neighbor {
	return s.walk(p, true, skipCollapsible)
}

func (s *Service) neighborBefore(p dom.Point) Neighbor {
	return s.walk(p, false, immediate)
}

func (s *Service) neighborAfter(p dom.Point) Neighbor {
	return s.walk(p, true, immediate)
}

// runWidth returns how many spaces the run [start,end) of t renders as: one per NBSP
// and one per ASCII whitespace sequence that has content on both sides.
func (s *Service) runWidth(t *html.Node, start, end int) int {
	if start >= end {
		return 0
	}
	if dom.IsPreformatted(t) {
		return utf8.RuneCountInString(t.Data[start:end])
	}
	width := 0
	for i := start; i < end; {
		r, size := utf8.DecodeRuneInString(t.Data[i:])
		if r == nbsp {
			width++
			i += size
			continue
		}
		j := i + size
		for j < end {
			r2, size2 := utf8.DecodeRuneInString(t.Data[j:])
			if !dom.IsASCIIWhitespace(r2) {
				break
			}
			j += size2
		}
		if s.contentBefore(dom.Point{Container: t, Offset: i}) != NeighborNone &&
			s.contentAfter(dom.Point{Container: t, Offset: j}) != NeighborNone {
			width++
		}
		i = j
	}
	return width
}

// rewriteRun replaces the run [start,end) of t with a sequence of width visible spaces.
// A width below zero recomputes the width from the current tree.
func (s *Service) rewriteRun(t *html.Node, start, end, width int) error {
	if start >= end || dom.IsPreformatted(t) {
		return nil
	}
	if width < 0 {
		width = s.runWidth(t, start, end)
	}
	if width == 0 {
		return nil
	}
	prev := s.neighborBefore(dom.Point{Container: t, Offset: start})
	next := s.neighborAfter(dom.Point{Container: t, Offset: end})
	seq := GenerateSequence(width, prev, next)
	old := t.Data[start:end]
	if seq == old {
		return nil
	}
	if utf8.RuneCountInString(old) != width {
		return s.tx.ReplaceText(t, start, end-start, seq)
	}
	oldRunes, newRunes := []rune(old), []rune(seq)
	offsets := make([]int, len(oldRunes))
	pos := start
	for i, r := range oldRunes {
		offsets[i] = pos
		pos += utf8.RuneLen(r)
	}
	for i := len(oldRunes) - 1; i >= 0; i-- {
		if oldRunes[i] == newRunes[i] {
			continue
		}
		if err := s.tx.ReplaceText(t, offsets[i], utf8.RuneLen(oldRunes[i]), string(newRunes[i])); err != nil {
			return err
		}
	}
	return nil
}

// NormalizeAround rewrites the whitespace runs touching p so that every space that
// renders keeps rendering. Invisible runs are left alone. It is idempotent.
func (s *Service) NormalizeAround(p dom.Point) error {
	return s.normalizeWithWidths(p, -1, -1)
}

// normalizeWithWidths rewrites the runs touching p. When p is inside a text node the
// run there gets before+after as its width; at an element point the run ending the
// previous text child gets before and the run starting the next one gets after.
// Negative widths are recomputed.
func (s *Service) normalizeWithWidths(p dom.Point, before, after int) error {
	if !p.IsSet() {
		return nil
	}
	if p.InText() {
		t := p.Container
		width := -1
		if before > 0 || after > 0 {
			width = max(before, 0) + max(after, 0)
		}
		start, end := runAt(t, p.Offset)
		if err := s.rewriteRun(t, start, end, width); err != nil {
			return err
		}
		if p.Offset == 0 && t.PrevSibling != nil && t.PrevSibling.Type == html.TextNode {
			prev := t.PrevSibling
			ps, pe := runAt(prev, len(prev.Data))
			if err := s.rewriteRun(prev, ps, pe, -1); err != nil {
				return err
			}
		}
		if p.Offset == len(t.Data) && t.NextSibling != nil && t.NextSibling.Type == html.TextNode {
			next := t.NextSibling
			ns, ne := runAt(next, 0)
			return s.rewriteRun(next, ns, ne, -1)
		}
		return nil
	}
	if prev := p.PreviousChild(); prev != nil && prev.Type == html.TextNode {
		ps, pe := runAt(prev, len(prev.Data))
		w := -1
		if before > 0 {
			w = before
		}
		if err := s.rewriteRun(prev, ps, pe, w); err != nil {
			return err
		}
	}
	if next := p.Child(); next != nil && next.Type == html.TextNode {
		ns, ne := runAt(next, 0)
		w := -1
		if after > 0 {
			w = after
		}
		return s.rewriteRun(next, ns, ne, w)
	}
	return nil
}

// edgeWidths returns the rendered widths of the whitespace ending at p and starting at
// p. A run spanning p is counted once, on the before side.
func (s *Service) edgeWidths(p dom.Point) (before, after int) {
	if p.InText() {
		t := p.Container
		start, end := runAt(t, p.Offset)
		if start < p.Offset {
			return s.runWidth(t, start, end), 0
		}
		return 0, s.runWidth(t, start, end)
	}
	if prev := p.PreviousChild(); prev != nil && prev.Type == html.TextNode {
		ps, pe := runAt(prev, len(prev.Data))
		before = s.runWidth(prev, ps, pe)
	}
	if next := p.Child(); next != nil && next.Type == html.TextNode {
		ns, ne := runAt(next, 0)
		after = s.runWidth(next, ns, ne)
	}
	return before, after
}

// IsVisibleBR reports whether br produces a line break. A <br> whose next visible thing
// is a block boundary only pads the line it ends and renders nothing.
func (s *Service) IsVisibleBR(br *html.Node) bool {
	if br == nil || br.Parent == nil {
		return false
	}
	next := s.ScanNext(dom.PointAfter(br))
	return !next.ReachedBlockBoundary() && next.Kind != KindNone
}

// IsVisibleText reports whether t renders any character.
func (s *Service) IsVisibleText(t *html.Node) bool {
	if t == nil || t.Type != html.TextNode || t.Data == "" {
		return false
	}
	if dom.IsPreformatted(t) {
		return true
	}
	for i := 0; i < len(t.Data); {
		r, size := utf8.DecodeRuneInString(t.Data[i:])
		if !dom.IsASCIIWhitespace(r) {
			return true
		}
		start, end := runAt(t, i)
		if s.runWidth(t, start, end) > 0 {
			return true
		}
		i += size
	}
	return false
}

// IsVisibleContent reports whether n renders something: visible text, a visible break,
// atomic inline content or a block.
func (s *Service) IsVisibleContent(n *html.Node) bool {
	switch {
	case n == nil:
		return false
	case n.Type == html.TextNode:
		return s.IsVisibleText(n)
	case n.Type != html.ElementNode:
		return false
	case dom.IsBR(n):
		return s.IsVisibleBR(n)
	case dom.IsBlock(n) || s.isAtomic(n):
		return true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if s.IsVisibleContent(c) {
			return true
		}
	}
	return false
}
