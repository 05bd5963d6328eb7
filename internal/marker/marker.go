// Package marker reads and writes HTML with the selection written inline. "[" and "]"
// mark boundaries inside text; "{" and "}" mark boundaries between nodes and must open or
// close a text node. An opening marker starts a range and the next closing marker ends it.
package marker

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dannyswat/htmledit/internal/dom"
)

// anchor survives the removal of marker characters: a text offset, or the position
// before next (at the end of parent when next is nil).
type anchor struct {
	text   *html.Node
	offset int
	parent *html.Node
	next   *html.Node
}

func (a anchor) point() dom.Point {
	if a.text != nil {
		return dom.Point{Container: a.text, Offset: a.offset}
	}
	if a.next == nil || a.next.Parent != a.parent {
		return dom.PointAtEnd(a.parent)
	}
	return dom.PointBefore(a.next)
}

// Parse parses src as a document and strips the markers inside <body>.
func Parse(src string) (*html.Node, []dom.Range, error) {
	doc, err := dom.ParseHTML(src)
	if err != nil {
		return nil, nil, err
	}
	body := dom.Body(doc)
	if body == nil {
		return nil, nil, fmt.Errorf("marker: document has no body")
	}
	ranges, err := Strip(body)
	if err != nil {
		return nil, nil, err
	}
	return doc, ranges, nil
}

// Strip removes the markers below root and returns the ranges they describe.
func Strip(root *html.Node) ([]dom.Range, error) {
	var (
		anchors []anchor
		opening []bool
		empty   []*html.Node
	)
	var texts []*html.Node
	for n := root.FirstChild; n != nil; n = dom.NextNode(n, root) {
		if n.Type == html.TextNode && !isRawText(n.Parent) {
			texts = append(texts, n)
		}
	}
	for _, t := range texts {
		var b strings.Builder
		var local []anchor
		var localOpen []bool
		leading := true
		for i, r := range t.Data {
			switch r {
			case '[', ']':
				local = append(local, anchor{text: t, offset: b.Len()})
				localOpen = append(localOpen, r == '[')
			case '{', '}':
				switch {
				case leading:
					local = append(local, anchor{parent: t.Parent, next: t})
				case strings.Trim(t.Data[i:], "{}") == "":
					local = append(local, anchor{parent: t.Parent, next: t.NextSibling})
				default:
					return nil, fmt.Errorf("marker: %q inside text %q", r, t.Data)
				}
				localOpen = append(localOpen, r == '{')
			default:
				leading = false
				b.WriteRune(r)
			}
		}
		if len(local) == 0 {
			continue
		}
		t.Data = b.String()
		if t.Data == "" {
			empty = append(empty, t)
			for i := range local {
				if local[i].text == t {
					local[i] = anchor{parent: t.Parent, next: t.NextSibling}
				} else if local[i].next == t {
					local[i].next = t.NextSibling
				}
			}
		}
		anchors = append(anchors, local...)
		opening = append(opening, localOpen...)
	}
	for _, t := range empty {
		t.Parent.RemoveChild(t)
	}

	var ranges []dom.Range
	for i := 0; i < len(anchors); i++ {
		if !opening[i] {
			return nil, fmt.Errorf("marker: closing marker without an opening one")
		}
		if i+1 >= len(anchors) || opening[i+1] {
			return nil, fmt.Errorf("marker: unterminated range")
		}
		ranges = append(ranges, dom.NewRange(anchors[i].point(), anchors[i+1].point()))
		i++
	}
	return ranges, nil
}

func isRawText(n *html.Node) bool {
	return dom.IsAnyElement(n, atom.Script, atom.Style, atom.Textarea, atom.Title)
}

type mark struct {
	offset int
	seq    int
	text   string
}

// Render renders the children of root with the ranges written as markers. Boundaries
// outside root are left out.
func Render(root *html.Node, ranges []dom.Range) (string, error) {
	clone := dom.CloneDeep(root)
	mapping := map[*html.Node]*html.Node{root: clone}
	for a, b := root.FirstChild, clone.FirstChild; a != nil && b != nil; a, b = dom.NextNode(a, root), dom.NextNode(b, clone) {
		mapping[a] = b
	}

	marks := map[*html.Node][]mark{}
	add := func(p dom.Point, seq int, open bool) {
		c, ok := mapping[p.Container]
		if !ok {
			return
		}
		var s string
		switch {
		case c.Type == html.TextNode && open:
			s = "["
		case c.Type == html.TextNode:
			s = "]"
		case open:
			s = "{"
		default:
			s = "}"
		}
		marks[c] = append(marks[c], mark{offset: p.Offset, seq: seq, text: s})
	}
	for i, r := range ranges {
		add(r.Start, 2*i, true)
		add(r.End, 2*i+1, false)
	}

	for c, ms := range marks {
		// Later offsets first so earlier ones stay valid; at one offset, later marks first.
		sort.Slice(ms, func(i, j int) bool {
			if ms[i].offset != ms[j].offset {
				return ms[i].offset > ms[j].offset
			}
			return ms[i].seq > ms[j].seq
		})
		for _, m := range ms {
			if c.Type == html.TextNode {
				off := min(m.offset, len(c.Data))
				c.Data = c.Data[:off] + m.text + c.Data[off:]
				continue
			}
			t := dom.NewText(m.text)
			c.InsertBefore(t, dom.ChildAt(c, m.offset))
		}
	}
	return dom.RenderChildren(clone)
}
