// Package ws answers whitespace visibility questions about an editable tree and keeps
// whitespace visible across edits by rewriting runs of spaces and NBSPs.
package ws

import (
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/dannyswat/htmledit/internal/dom"
	"github.com/dannyswat/htmledit/internal/txn"
)

const nbsp = '\u00a0'

// Kind classifies the next visible thing found by a scan.
type Kind int

const (
	KindNone Kind = iota
	KindText
	KindBR
	KindSpecial
	KindHR
	KindCurrentBlockBoundary
	KindOtherBlockBoundary
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindText:
		return "text"
	case KindBR:
		return "br"
	case KindSpecial:
		return "special"
	case KindHR:
		return "hr"
	case KindCurrentBlockBoundary:
		return "current-block-boundary"
	case KindOtherBlockBoundary:
		return "other-block-boundary"
	default:
		return "unknown"
	}
}

// ScanResult describes what a scan found. For KindText, Point and End delimit the
// visible character (or collapsible whitespace unit) in Content. For boundaries, Content
// is the block element whose edge was reached.
type ScanResult struct {
	Kind    Kind
	Content *html.Node
	Point   dom.Point
	End     dom.Point
}

// ReachedBlockBoundary reports whether the scan hit the current block or another block.
func (r ScanResult) ReachedBlockBoundary() bool {
	return r.Kind == KindCurrentBlockBoundary || r.Kind == KindOtherBlockBoundary
}

// ReachedLineBoundary reports a block boundary, a <br> or nothing.
func (r ScanResult) ReachedLineBoundary() bool {
	return r.ReachedBlockBoundary() || r.Kind == KindBR || r.Kind == KindNone
}

// Option configures a Service.
type Option func(*Service)

// WithGraphemeDeletion makes single-character deletion remove whole grapheme clusters.
func WithGraphemeDeletion(enabled bool) Option {
	return func(s *Service) {
		s.graphemes = enabled
	}
}

// Service scans and normalizes whitespace inside one editing host.
type Service struct {
	tx        *txn.Manager
	host      *html.Node
	graphemes bool
}

// New creates a whitespace service that mutates through tx.
func New(tx *txn.Manager, host *html.Node, opts ...Option) *Service {
	s := &Service{tx: tx, host: host}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Host returns the editing host.
func (s *Service) Host() *html.Node { return s.host }

// BlockOf returns the nearest inclusive block ancestor of n inside the host, or the host.
func (s *Service) BlockOf(n *html.Node) *html.Node {
	for x := n; x != nil; x = x.Parent {
		if x == s.host {
			return x
		}
		if dom.IsBlock(x) && !dom.IsHR(x) {
			return x
		}
	}
	return s.host
}

// isAtomic reports whether an element is scanned as a single special unit.
func (s *Service) isAtomic(n *html.Node) bool {
	return dom.IsReplaced(n) || dom.IsVoid(n) || !dom.IsEditable(n, s.host)
}

// cursor is a position between children: before child in parent (child nil = at end).
type cursor struct {
	parent *html.Node
	child  *html.Node
}

func cursorAt(p dom.Point) cursor {
	if dom.IsCharacterData(p.Container) {
		return cursor{parent: p.Container.Parent, child: p.Container}
	}
	return cursor{parent: p.Container, child: p.Child()}
}

// ScanPrevious finds the nearest visible thing before p within p's block.
func (s *Service) ScanPrevious(p dom.Point) ScanResult {
	if !p.IsSet() {
		return ScanResult{}
	}
	block := s.BlockOf(p.Container)
	if p.InText() {
		if r, ok := s.previousVisibleInText(p.Container, p.Offset); ok {
			return r
		}
	}
	c := cursorAt(p)
	for {
		var prev *html.Node
		if c.child != nil {
			prev = c.child.PrevSibling
		} else {
			prev = c.parent.LastChild
		}
		if prev == nil {
			if c.parent == block || c.parent == s.host || c.parent.Parent == nil {
				return ScanResult{Kind: KindCurrentBlockBoundary, Content: block, Point: dom.PointAtStart(c.parent), End: dom.PointAtStart(c.parent)}
			}
			if dom.IsBlock(c.parent) {
				// an unexpected block between the point and its block: treat as its edge
				return ScanResult{Kind: KindCurrentBlockBoundary, Content: c.parent, Point: dom.PointAtStart(c.parent), End: dom.PointAtStart(c.parent)}
			}
			c = cursor{parent: c.parent.Parent, child: c.parent}
			continue
		}
		if r, ok, descend := s.classify(prev, false); ok {
			return r
		} else if descend {
			c = cursor{parent: prev, child: nil}
			continue
		}
		c = cursor{parent: c.parent, child: prev}
	}
}

// ScanNext finds the nearest visible thing after p within p's block.
func (s *Service) ScanNext(p dom.Point) ScanResult {
	if !p.IsSet() {
		return ScanResult{}
	}
	block := s.BlockOf(p.Container)
	c := cursorAt(p)
	if p.InText() {
		if r, ok := s.nextVisibleInText(p.Container, p.Offset); ok {
			return r
		}
		c = cursor{parent: p.Container.Parent, child: p.Container.NextSibling}
	}
	for {
		next := c.child
		if next == nil {
			if c.parent == block || c.parent == s.host || c.parent.Parent == nil {
				end := dom.PointAtEnd(c.parent)
				return ScanResult{Kind: KindCurrentBlockBoundary, Content: block, Point: end, End: end}
			}
			if dom.IsBlock(c.parent) {
				end := dom.PointAtEnd(c.parent)
				return ScanResult{Kind: KindCurrentBlockBoundary, Content: c.parent, Point: end, End: end}
			}
			c = cursor{parent: c.parent.Parent, child: c.parent.NextSibling}
			continue
		}
		if r, ok, descend := s.classify(next, true); ok {
			return r
		} else if descend {
			c = cursor{parent: next, child: next.FirstChild}
			continue
		}
		c = cursor{parent: c.parent, child: next.NextSibling}
	}
}

// classify examines a sibling met while scanning. It returns a result when n is a stop,
// or descend when n is an inline container to walk into.
func (s *Service) classify(n *html.Node, forward bool) (r ScanResult, ok bool, descend bool) {
	switch n.Type {
	case html.TextNode:
		var found bool
		if forward {
			r, found = s.nextVisibleInText(n, 0)
		} else {
			r, found = s.previousVisibleInText(n, len(n.Data))
		}
		return r, found, false
	case html.ElementNode:
	default:
		return ScanResult{}, false, false
	}
	switch {
	case dom.IsBR(n):
		return ScanResult{Kind: KindBR, Content: n, Point: dom.PointBefore(n), End: dom.PointAfter(n)}, true, false
	case dom.IsHR(n):
		return ScanResult{Kind: KindHR, Content: n, Point: dom.PointBefore(n), End: dom.PointAfter(n)}, true, false
	case dom.IsBlock(n):
		return ScanResult{Kind: KindOtherBlockBoundary, Content: n, Point: dom.PointBefore(n), End: dom.PointAfter(n)}, true, false
	case s.isAtomic(n):
		return ScanResult{Kind: KindSpecial, Content: n, Point: dom.PointBefore(n), End: dom.PointAfter(n)}, true, false
	}
	return ScanResult{}, false, true
}

func (s *Service) previousVisibleInText(t *html.Node, offset int) (ScanResult, bool) {
	pre := dom.IsPreformatted(t)
	for i := offset; i > 0; {
		r, size := utf8.DecodeLastRuneInString(t.Data[:i])
		start := i - size
		if pre || !dom.IsASCIIWhitespace(r) {
			return ScanResult{Kind: KindText, Content: t, Point: dom.Point{Container: t, Offset: start}, End: dom.Point{Container: t, Offset: i}}, true
		}
		runStart := start
		for runStart > 0 {
			pr, psize := utf8.DecodeLastRuneInString(t.Data[:runStart])
			if !dom.IsASCIIWhitespace(pr) {
				break
			}
			runStart -= psize
		}
		if s.visibleCollapsibleRun(dom.Point{Container: t, Offset: runStart}, dom.Point{Container: t, Offset: i}) {
			return ScanResult{Kind: KindText, Content: t, Point: dom.Point{Container: t, Offset: runStart}, End: dom.Point{Container: t, Offset: i}}, true
		}
		i = runStart
	}
	return ScanResult{}, false
}

func (s *Service) nextVisibleInText(t *html.Node, offset int) (ScanResult, bool) {
	pre := dom.IsPreformatted(t)
	for i := offset; i < len(t.Data); {
		r, size := utf8.DecodeRuneInString(t.Data[i:])
		if pre || !dom.IsASCIIWhitespace(r) {
			return ScanResult{Kind: KindText, Content: t, Point: dom.Point{Container: t, Offset: i}, End: dom.Point{Container: t, Offset: i + size}}, true
		}
		runEnd := i + size
		for runEnd < len(t.Data) {
			nr, nsize := utf8.DecodeRuneInString(t.Data[runEnd:])
			if !dom.IsASCIIWhitespace(nr) {
				break
			}
			runEnd += nsize
		}
		if s.visibleCollapsibleRun(dom.Point{Container: t, Offset: i}, dom.Point{Container: t, Offset: runEnd}) {
			return ScanResult{Kind: KindText, Content: t, Point: dom.Point{Container: t, Offset: i}, End: dom.Point{Container: t, Offset: runEnd}}, true
		}
		i = runEnd
	}
	return ScanResult{}, false
}

// visibleCollapsibleRun reports whether an ASCII whitespace run renders as a space: it
// needs inline content before it on the same line and inline content after it.
func (s *Service) visibleCollapsibleRun(start, end dom.Point) bool {
	return s.contentBefore(start) != NeighborNone && s.contentAfter(end) != NeighborNone
}
