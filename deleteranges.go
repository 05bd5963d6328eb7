package htmledit

import (
	"golang.org/x/net/html"

	"github.com/dannyswat/htmledit/internal/dom"
	"github.com/dannyswat/htmledit/internal/ws"
)

// ComputeDeletionRanges returns the ranges DeleteSelection would remove for ranges (the
// current selection when none are given) without changing the document. A collapsed
// result means nothing would be removed.
func (e *Editor) ComputeDeletionRanges(dir Direction, ranges ...dom.Range) ([]dom.Range, error) {
	if e.destroyed {
		return nil, ErrEditorDestroyed
	}
	if len(ranges) == 0 {
		ranges = e.sel.Ranges()
	}
	if len(ranges) == 0 {
		return nil, ErrNoSelection
	}
	for _, r := range ranges {
		if !r.IsPositioned() {
			return nil, ErrInvalidArgument
		}
	}
	h := &deleteHandler{e: e, dir: dir}
	return h.computeRanges(ranges), nil
}

func (h *deleteHandler) computeRanges(ranges []dom.Range) []dom.Range {
	e := h.e
	out := make([]dom.Range, len(ranges))
	copy(out, ranges)
	for _, r := range ranges {
		if !e.isEditablePoint(r.Start) || !e.isEditablePoint(r.End) {
			return out
		}
	}
	if e.isEmptyEditorWithPaddingBR() {
		return out
	}
	if cells := selectedTableCells(ranges); len(cells) > 0 {
		for i, c := range cells {
			out[i] = dom.SelectContents(c)
		}
		return out
	}
	if len(ranges) > 1 {
		return out
	}

	r := ranges[0]
	if r.Collapsed() {
		p := r.Start
		if block := e.scanEmptyBlockInclusiveAncestor(p.Container); block != nil {
			d := &emptyBlockDeleter{e: e, block: block}
			return []dom.Range{d.targetRange(h.dir)}
		}
		if h.dir != h.dir.characterStep() {
			ext := h.extendForDirection(p)
			if !ext.Collapsed() {
				return []dom.Range{h.extendOverInvisible(ext)}
			}
			h.dir = h.dir.characterStep()
		}
		if h.dir == DirectionNone {
			return out
		}
		return []dom.Range{h.collapsedTarget(p, false)}
	}
	if h.dir != DirectionNone {
		if n := selectedAtomicNode(r); n != nil {
			p := dom.PointBefore(n)
			if h.dir.IsBackward() {
				p = dom.PointAfter(n)
			}
			h.dir = h.dir.characterStep()
			return []dom.Range{h.collapsedTarget(p, false)}
		}
	}
	return []dom.Range{h.extendOverInvisible(r)}
}

// collapsedTarget mirrors deleteAroundCollapsedCaret. consumedBR is set after an
// invisible <br> has been accounted for.
func (h *deleteHandler) collapsedTarget(p dom.Point, consumedBR bool) dom.Range {
	e := h.e
	backward := h.dir.IsBackward()
	found := e.caretScan(p, backward)
	switch found.Kind {
	case ws.KindBR:
		if !consumedBR && h.consumesInvisibleBR(found.Content) {
			rest := h.collapsedTarget(edgeOf(found, backward), true)
			return dom.SelectNode(found.Content).Union(rest)
		}
		return h.atomicTarget(found.Content, p)
	case ws.KindText:
		if !e.isEditablePoint(found.Point) {
			return dom.CollapsedAt(p)
		}
		r, err := e.ws.CharacterRange(found, !backward)
		if err != nil {
			return dom.CollapsedAt(p)
		}
		return r
	case ws.KindSpecial:
		return h.atomicTarget(found.Content, p)
	case ws.KindHR:
		if e.opts.AlwaysDeleteHR || !backward || h.caretSticksAfterHR(found.Content, p) {
			return h.atomicTarget(found.Content, p)
		}
		if next := found.Content.NextSibling; dom.IsBR(next) && e.isEditablePoint(dom.PointBefore(next)) {
			return dom.SelectNode(next)
		}
		return dom.CollapsedAt(dom.PointAfter(found.Content))
	case ws.KindOtherBlockBoundary, ws.KindCurrentBlockBoundary:
		j := &blockJoiner{deleteHandler: h, mode: joinCurrentBlock}
		if found.Kind == ws.KindOtherBlockBoundary {
			j.mode = joinOtherBlock
		}
		return j.targetRange(p, found)
	}
	return dom.CollapsedAt(p)
}

// atomicTarget selects n when the deletion may remove it.
func (h *deleteHandler) atomicTarget(n *html.Node, p dom.Point) dom.Range {
	if n.Parent == nil || !dom.IsEditable(n.Parent, h.e.host) {
		return dom.CollapsedAt(p)
	}
	return dom.SelectNode(n)
}

// targetRange mirrors runCollapsed: the range from the end of the left content to the
// start of the right content.
func (j *blockJoiner) targetRange(p dom.Point, found ws.ScanResult) dom.Range {
	if !j.prepareCollapsed(p, found) {
		return dom.CollapsedAt(p)
	}
	if j.mode == deleteBRElement {
		return dom.SelectNode(j.br)
	}
	if a, res := newAncestorBlockJoiner(j.e, j.left, j.right); a == nil {
		if res == Ignored {
			return j.leafTarget(p)
		}
		return dom.CollapsedAt(p)
	}
	return dom.NewRange(endOfLeaf(j.left), startOfLeaf(j.right))
}

// leafTarget mirrors deleteLeafInOtherBlock.
func (j *blockJoiner) leafTarget(p dom.Point) dom.Range {
	e := j.e
	backward := j.dir.IsBackward()
	leaf := j.right
	if backward {
		leaf = j.left
	}
	if leaf == nil || leaf.Parent == nil || !dom.IsEditable(leaf, e.host) {
		return dom.CollapsedAt(p)
	}
	if leaf.Type != html.TextNode {
		return j.atomicTarget(leaf, p)
	}
	edge := dom.PointAtStart(leaf)
	if backward {
		edge = dom.PointAtEnd(leaf)
	}
	found := e.caretScan(edge, backward)
	if found.Kind != ws.KindText || found.Content != leaf {
		return dom.CollapsedAt(p)
	}
	r, err := e.ws.CharacterRange(found, !backward)
	if err != nil {
		return dom.CollapsedAt(p)
	}
	return r
}
