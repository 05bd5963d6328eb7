package htmledit

import (
	"context"

	"golang.org/x/net/html"

	"github.com/dannyswat/htmledit/internal/dom"
	"github.com/dannyswat/htmledit/internal/log"
	"github.com/dannyswat/htmledit/internal/ws"
)

// CollectEditTargetNodes splits the selection at its hard-line edges and returns the
// nodes an action of kind sub applies to, in document order. It runs inside the open
// action, or in a bracket of its own.
func (e *Editor) CollectEditTargetNodes(ctx context.Context, sub SubAction, includeNonEditable bool) ([]*html.Node, error) {
	var nodes []*html.Node
	_, err := e.runAction(ctx, sub, DirectionNone, func() (EditResult, error) {
		ranges := e.blockActionRanges()
		if len(ranges) == 0 {
			return Canceled, ErrNoSelection
		}
		var err error
		nodes, err = e.collectTargets(ranges, sub, includeNonEditable)
		return Handled, err
	})
	return nodes, err
}

// blockActionRanges returns the selection extended to the lines and blocks it touches.
func (e *Editor) blockActionRanges() []dom.Range {
	ranges := e.sel.Ranges()
	for i, r := range ranges {
		ranges[i] = dom.Range{Start: e.blockActionStart(r.Start), End: e.blockActionEnd(r.End)}
	}
	return ranges
}

// blockActionStart moves p to the start of its hard line, then out of every inline or
// block container it starts.
func (e *Editor) blockActionStart(p dom.Point) dom.Point {
	p = e.hardLineStart(p)
	for {
		c := p.Container
		if c == e.host || c.Parent == nil || !dom.IsEditable(c.Parent, e.host) {
			return p
		}
		switch {
		case dom.IsCharacterData(c) || !dom.IsBlock(c):
			if p.Offset != 0 {
				return p
			}
		default:
			if s := e.ws.ScanPrevious(p); s.Kind != ws.KindCurrentBlockBoundary || s.Content != c {
				return p
			}
		}
		p = dom.PointBefore(c)
	}
}

// blockActionEnd is blockActionStart for the end of a range.
func (e *Editor) blockActionEnd(p dom.Point) dom.Point {
	p = e.hardLineEnd(p)
	if br := e.ws.ScanNext(p); br.Kind == ws.KindBR {
		p = br.End
	}
	for {
		c := p.Container
		if c == e.host || c.Parent == nil || !dom.IsEditable(c.Parent, e.host) {
			return p
		}
		switch {
		case dom.IsCharacterData(c) || !dom.IsBlock(c):
			if p.Offset != dom.Length(c) {
				return p
			}
		default:
			if s := e.ws.ScanNext(p); s.Kind != ws.KindCurrentBlockBoundary || s.Content != c {
				return p
			}
		}
		p = dom.PointAfter(c)
	}
}

// highestInlineAncestor returns the outermost inline element holding n below its block.
func (e *Editor) highestInlineAncestor(n *html.Node) *html.Node {
	var found *html.Node
	for x := n; x != nil && x != e.host; x = x.Parent {
		if x.Type != html.ElementNode {
			continue
		}
		if dom.IsBlock(x) || !dom.IsEditable(x, e.host) {
			break
		}
		found = x
	}
	return found
}

// splitAtRangeEdges splits text and inline ancestors at both edges of r so its top-level
// nodes start and end exactly at the range boundaries. r must be tracked by the caller.
func (e *Editor) splitAtRangeEdges(r *dom.Range) error {
	for _, end := range []bool{true, false} {
		edge := func() dom.Point {
			if end {
				return r.End
			}
			return r.Start
		}
		if p := edge(); p.InText() && p.Offset > 0 && p.Offset < len(p.Container.Data) {
			if _, err := e.tx.SplitNode(p); err != nil {
				return err
			}
		}
		p := edge().ContainerElementPoint()
		hi := e.highestInlineAncestor(p.Container)
		if hi == nil {
			continue
		}
		if _, _, err := e.ws.SplitDeep(hi, p); err != nil {
			return err
		}
	}
	return nil
}

// collectTargets prepares ranges and collects the top-level nodes for sub.
func (e *Editor) collectTargets(ranges []dom.Range, sub SubAction, includeNonEditable bool) ([]*html.Node, error) {
	for i := range ranges {
		defer e.tx.Tracker().TrackRange(&ranges[i])()
	}
	for i := range ranges {
		if err := e.splitAtRangeEdges(&ranges[i]); err != nil {
			return nil, err
		}
	}
	var nodes []*html.Node
	seen := make(map[*html.Node]bool)
	for _, r := range ranges {
		top := r.TopLevelNodes()
		if len(top) == 0 && r.Collapsed() {
			if c := r.Start.Child(); c != nil {
				top = []*html.Node{c}
			}
		}
		for _, n := range top {
			if seen[n] {
				continue
			}
			if !includeNonEditable && !dom.IsEditable(n, e.host) {
				continue
			}
			seen[n] = true
			nodes = append(nodes, n)
		}
	}

	switch sub {
	case SubActionCreateOrRemoveBlock:
		nodes = expandNodes(nodes, dom.IsListItem, e.host, includeNonEditable)
		nodes = e.dropInvisibleText(nodes)
	case SubActionCreateOrChangeList:
		nodes = expandNodes(nodes, dom.IsAnyTableElementButNotTable, e.host, includeNonEditable)
		nodes = e.diveIntoSingleWrapper(nodes)
	case SubActionOutdent, SubActionIndent, SubActionSetPositionToAbsolute:
		nodes = expandNodes(nodes, dom.IsAnyTableElementButNotTable, e.host, includeNonEditable)
	}
	if sub == SubActionOutdent && !e.opts.UseCSS {
		nodes = expandNodes(nodes, isPlainDiv, e.host, includeNonEditable)
	}
	if sub.traits().splitsAtLineBreaks {
		var err error
		nodes, err = e.splitAtEveryBR(nodes)
		if err != nil {
			return nodes, err
		}
	}
	log.Debug(log.CatBlock, "collected targets", "subaction", sub, "count", len(nodes))
	return nodes, nil
}

func isPlainDiv(n *html.Node) bool {
	return dom.IsDiv(n)
}

// expandNodes replaces every node matching fn by its children.
func expandNodes(nodes []*html.Node, fn func(*html.Node) bool, host *html.Node, includeNonEditable bool) []*html.Node {
	out := make([]*html.Node, 0, len(nodes))
	for _, n := range nodes {
		if !fn(n) {
			out = append(out, n)
			continue
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if includeNonEditable || dom.IsEditable(c, host) {
				out = append(out, c)
			}
		}
	}
	return out
}

func (e *Editor) dropInvisibleText(nodes []*html.Node) []*html.Node {
	out := nodes[:0]
	for _, n := range nodes {
		if n.Type == html.TextNode && !e.ws.IsVisibleText(n) {
			continue
		}
		if n.Type == html.CommentNode {
			continue
		}
		out = append(out, n)
	}
	return out
}

// diveIntoSingleWrapper replaces a lone div, blockquote or list wrapper with the contents
// of its innermost single-child wrapper, or with that wrapper when it is a list.
func (e *Editor) diveIntoSingleWrapper(nodes []*html.Node) []*html.Node {
	if len(nodes) != 1 || !isListWrapper(nodes[0]) {
		return nodes
	}
	deepest := nodes[0]
	for {
		child := singleEditableElementChild(deepest, e.host)
		if child == nil || !isListWrapper(child) {
			break
		}
		deepest = child
	}
	if dom.IsList(deepest) {
		return []*html.Node{deepest}
	}
	var out []*html.Node
	for c := deepest.FirstChild; c != nil; c = c.NextSibling {
		if dom.IsEditable(c, e.host) {
			out = append(out, c)
		}
	}
	return out
}

func isListWrapper(n *html.Node) bool {
	return dom.IsDiv(n) || dom.IsBlockquote(n) || dom.IsList(n)
}

// singleEditableElementChild returns n's only child element when every other child is
// blank text or a comment.
func singleEditableElementChild(n, host *html.Node) *html.Node {
	var only *html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.CommentNode:
		case c.Type == html.TextNode && dom.IsASCIIWhitespaceOnly(c.Data):
		case c.Type == html.ElementNode && only == nil && dom.IsEditable(c, host):
			only = c
		default:
			return nil
		}
	}
	return only
}

// splitAtEveryBR splits each collected inline container holding line breaks into one
// piece per line. The breaks become top-level targets between the pieces.
func (e *Editor) splitAtEveryBR(nodes []*html.Node) ([]*html.Node, error) {
	out := make([]*html.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Type != html.ElementNode || dom.IsBlock(n) || dom.IsBR(n) || !hasBRDescendant(n) {
			out = append(out, n)
			continue
		}
		rest := n
		for rest != nil {
			br := firstBRDescendant(rest)
			if br == nil {
				out = append(out, rest)
				break
			}
			left, right, err := e.ws.SplitDeep(rest, dom.PointAfter(br))
			if err != nil {
				return out, err
			}
			if left != nil {
				if err := e.tx.MoveNode(br, dom.PointAfter(left)); err != nil {
					return out, err
				}
				if left.FirstChild != nil {
					out = append(out, left)
				}
			}
			out = append(out, br)
			rest = right
		}
	}
	return out, nil
}

func hasBRDescendant(n *html.Node) bool {
	return firstBRDescendant(n) != nil
}

func firstBRDescendant(n *html.Node) *html.Node {
	for x := n.FirstChild; x != nil; x = dom.NextNode(x, n) {
		if dom.IsBR(x) {
			return x
		}
	}
	return nil
}
