package ws

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/dannyswat/htmledit/internal/dom"
	"github.com/dannyswat/htmledit/internal/txn"
)

// SplitDeep splits p's container and every ancestor below and including ancestor at p.
// It returns the two halves of ancestor: left is nil when p is at the start of ancestor
// and right is nil when p is at its end. Only ancestor itself is reported; inner nodes
// are split along the way.
func (s *Service) SplitDeep(ancestor *html.Node, p dom.Point) (left, right *html.Node, err error) {
	if !p.IsValid() || !dom.IsInclusiveAncestor(ancestor, p.Container) {
		return nil, nil, fmt.Errorf("%w: split %s at %s", txn.ErrInvalidPoint, dom.Describe(ancestor), p)
	}
	if atEdge(p, ancestor, false) {
		return nil, ancestor, nil
	}
	if atEdge(p, ancestor, true) {
		return ancestor, nil, nil
	}
	for {
		c := p.Container
		if c != ancestor {
			switch p.Offset {
			case 0:
				p = dom.PointBefore(c)
				continue
			case dom.Length(c):
				p = dom.PointAfter(c)
				continue
			}
		}
		r, err := s.tx.SplitNode(p)
		if err != nil {
			return nil, nil, err
		}
		if c == ancestor {
			return ancestor, r, nil
		}
		p = dom.PointBefore(r)
	}
}

// atEdge reports whether nothing of ancestor lies before (or after, when end is set) p.
func atEdge(p dom.Point, ancestor *html.Node, end bool) bool {
	for p.IsSet() {
		edge := 0
		if end {
			edge = dom.Length(p.Container)
		}
		if p.Offset != edge {
			return false
		}
		if p.Container == ancestor {
			return true
		}
		if end {
			p = dom.PointAfter(p.Container)
		} else {
			p = dom.PointBefore(p.Container)
		}
	}
	return false
}

// lineEnd finds the first <br> or block inside n, in document order.
func lineEnd(n *html.Node) *html.Node {
	for d := n.FirstChild; d != nil; d = dom.NextNode(d, n) {
		if dom.IsBR(d) || dom.IsBlock(d) {
			return d
		}
	}
	return nil
}

// lineNodes splits inline containers around the end of the line starting at from and
// returns the children of from's container that make up the line together with the <br>
// ending it, if any.
func (s *Service) lineNodes(from dom.Point) (nodes []*html.Node, br *html.Node, err error) {
	for c := from.Child(); c != nil; c = c.NextSibling {
		switch {
		case dom.IsBR(c):
			return nodes, c, nil
		case dom.IsBlock(c):
			return nodes, nil, nil
		case c.Type != html.ElementNode || s.isAtomic(c):
			nodes = append(nodes, c)
			continue
		}
		end := lineEnd(c)
		if end == nil {
			nodes = append(nodes, c)
			continue
		}
		if dom.IsBR(end) {
			if _, _, err := s.SplitDeep(c, dom.PointAfter(end)); err != nil {
				return nodes, nil, err
			}
			return append(nodes, c), end, nil
		}
		left, _, err := s.SplitDeep(c, dom.PointBefore(end))
		if err != nil {
			return nodes, nil, err
		}
		if left != nil {
			nodes = append(nodes, left)
		}
		return nodes, nil, nil
	}
	return nodes, nil, nil
}

// MoveLine moves the inline content of the line that starts at from (a point between
// children of a block) to dest and removes the <br> that ended it. The returned seam is
// the position in front of the moved content.
func (s *Service) MoveLine(from, dest dom.Point) (seam dom.Point, moved bool, err error) {
	seam = dest
	defer s.tx.Tracker().Track(&seam)()
	nodes, br, err := s.lineNodes(from)
	if err != nil {
		return seam, false, err
	}
	// leading collapsible whitespace of the line would become visible after the move
	for len(nodes) > 0 && dom.IsText(nodes[0]) && !dom.IsPreformatted(nodes[0]) {
		t := nodes[0]
		lead := len(t.Data) - len(trimLeftASCIISpace(t.Data))
		if lead == 0 {
			break
		}
		if lead == len(t.Data) {
			if err := s.tx.DeleteNode(t); err != nil {
				return seam, false, err
			}
			nodes = nodes[1:]
			continue
		}
		if err := s.tx.DeleteText(t, 0, lead); err != nil {
			return seam, false, err
		}
		break
	}
	at := seam
	for _, n := range nodes {
		if err := s.tx.MoveNode(n, at); err != nil {
			return seam, moved, err
		}
		moved = true
		at = dom.PointAfter(n)
	}
	if br != nil && br.Parent != nil {
		if err := s.tx.DeleteNode(br); err != nil {
			return seam, moved, err
		}
		moved = true
	}
	if moved {
		if err := s.NormalizeAround(seam); err != nil {
			return seam, moved, err
		}
	}
	return seam, moved, nil
}

func trimLeftASCIISpace(s string) string {
	for len(s) > 0 && dom.IsASCIIWhitespace(rune(s[0])) {
		s = s[1:]
	}
	return s
}
