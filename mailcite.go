package htmledit

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dannyswat/htmledit/internal/dom"
	"github.com/dannyswat/htmledit/internal/log"
	"github.com/dannyswat/htmledit/internal/ws"
)

// splitMailCite ends the quoted mail text at p: the citation is split and a line break
// between the halves takes the caret.
func (e *Editor) splitMailCite(cite *html.Node, p dom.Point) (EditResult, error) {
	if cite.Parent == nil || !dom.IsEditable(cite.Parent, e.host) {
		return Ignored, nil
	}
	if next := e.ws.ScanNext(p); next.Kind == ws.KindBR && dom.IsAncestor(cite, next.Content) {
		p = dom.PointAfter(next.Content)
	}
	at, err := e.ws.PrepareToSplit(p)
	if err != nil {
		return Canceled, err
	}
	left, right, err := e.ws.SplitDeep(cite, at)
	if err != nil {
		return Canceled, err
	}
	log.Debug(log.CatBlock, "split mail cite", "cite", dom.Describe(cite))
	if left != nil && dom.IsElement(left, atom.Span) && dom.IsBlock(left) {
		if err := e.tx.InsertNode(dom.NewElement(atom.Br), dom.PointAtEnd(left)); err != nil {
			return Canceled, err
		}
	}

	seam := dom.PointAfter(left)
	if left == nil {
		seam = dom.PointBefore(right)
	}
	br := dom.NewElement(atom.Br)
	if err := e.tx.InsertNode(br, seam); err != nil {
		return Canceled, err
	}

	if !dom.IsBlock(cite) {
		before := e.ws.ScanPrevious(dom.PointBefore(br))
		if before.Kind == ws.KindText || before.Kind == ws.KindSpecial {
			after := e.ws.ScanNext(dom.PointAfter(br))
			if after.Kind == ws.KindText || after.Kind == ws.KindSpecial || after.Kind == ws.KindCurrentBlockBoundary {
				if err := e.tx.InsertNode(dom.NewElement(atom.Br), dom.PointBefore(br)); err != nil {
					return Canceled, err
				}
			}
		}
	}
	e.collapseAt(dom.PointBefore(br))

	for _, half := range []*html.Node{left, right} {
		if half == nil || half.Parent == nil || e.hasVisibleContent(half) {
			continue
		}
		if err := e.tx.DeleteNode(half); err != nil {
			return Canceled, err
		}
	}
	return Handled, nil
}
