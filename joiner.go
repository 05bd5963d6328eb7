package htmledit

import (
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dannyswat/htmledit/internal/dom"
	"github.com/dannyswat/htmledit/internal/log"
	"github.com/dannyswat/htmledit/internal/ws"
)

type joinMode int

const (
	joinCurrentBlock joinMode = iota
	joinOtherBlock
	deleteBRElement
	joinBlocksInSameParent
	deleteContentInRanges
	deleteNonCollapsedRanges
)

func (m joinMode) String() string {
	switch m {
	case joinCurrentBlock:
		return "join-current-block"
	case joinOtherBlock:
		return "join-other-block"
	case deleteBRElement:
		return "delete-br"
	case joinBlocksInSameParent:
		return "join-blocks-in-same-parent"
	case deleteContentInRanges:
		return "delete-content-in-ranges"
	case deleteNonCollapsedRanges:
		return "delete-non-collapsed-ranges"
	}
	return "unknown"
}

// blockJoiner deletes across a block boundary.
type blockJoiner struct {
	*deleteHandler
	mode joinMode

	left, right *html.Node
	// br is the line break deleted instead of joining in deleteBRElement mode.
	br *html.Node
}

// prepareCollapsed picks the leaves on both sides of the boundary found from the caret.
// It returns false when there is nothing that may be joined.
func (j *blockJoiner) prepareCollapsed(p dom.Point, found ws.ScanResult) bool {
	e := j.e
	backward := j.dir.IsBackward()
	if j.mode == joinOtherBlock {
		if opposite := e.caretScan(p, !backward); opposite.Kind == ws.KindBR && dom.IsEditable(opposite.Content, e.host) {
			j.br = opposite.Content
			j.mode = deleteBRElement
			return true
		}
	}
	caretSide := p.Container
	var other *html.Node
	switch {
	case j.mode == joinOtherBlock && backward:
		other = j.skipComments(dom.LastLeaf(found.Content), true)
	case j.mode == joinOtherBlock:
		other = j.skipComments(dom.FirstLeaf(found.Content), false)
	case backward:
		other = j.skipComments(dom.PreviousLeaf(found.Content, e.host), true)
	default:
		other = j.skipComments(dom.NextLeaf(found.Content, e.host), false)
	}
	if backward {
		j.left, j.right = other, caretSide
	} else {
		j.left, j.right = caretSide, other
	}
	if j.left == nil || j.right == nil {
		return false
	}
	if !dom.IsEditable(j.left, e.host) || !dom.IsEditable(j.right, e.host) {
		return false
	}
	return !inDifferentTableElements(j.left, j.right)
}

func (j *blockJoiner) skipComments(n *html.Node, backward bool) *html.Node {
	for n != nil && n.Type == html.CommentNode {
		if backward {
			n = dom.PreviousLeaf(n, j.e.host)
		} else {
			n = dom.NextLeaf(n, j.e.host)
		}
	}
	return n
}

// runCollapsed joins the caret's block with the block before or after it.
func (j *blockJoiner) runCollapsed(p dom.Point, found ws.ScanResult) (EditResult, error) {
	e := j.e
	if !j.prepareCollapsed(p, found) {
		log.Debug(log.CatJoin, "nothing to join", "mode", j.mode, "at", p)
		return Canceled, nil
	}
	log.Debug(log.CatJoin, "join", "mode", j.mode, "left", dom.Describe(j.left), "right", dom.Describe(j.right))
	if j.mode == deleteBRElement {
		return j.deleteBR()
	}
	a, res := newAncestorBlockJoiner(e, j.left, j.right)
	if a == nil {
		if res == Ignored {
			return j.deleteLeafInOtherBlock()
		}
		return res, nil
	}
	seam, res, err := a.run()
	if err != nil {
		return res, err
	}
	switch res {
	case Ignored:
		return j.deleteLeafInOtherBlock()
	case Handled:
		if seam.IsSet() {
			e.collapseSelection(seam)
		}
	}
	return res, nil
}

// deleteLeafInOtherBlock deletes from the leaf across the boundary when the blocks were
// not joined: one character of a text leaf, or the whole leaf otherwise.
func (j *blockJoiner) deleteLeafInOtherBlock() (EditResult, error) {
	e := j.e
	backward := j.dir.IsBackward()
	leaf := j.right
	if backward {
		leaf = j.left
	}
	if leaf == nil || leaf.Parent == nil || !dom.IsEditable(leaf, e.host) {
		return Canceled, nil
	}
	log.Debug(log.CatJoin, "blocks not joined, delete leaf", "leaf", dom.Describe(leaf))
	if leaf.Type != html.TextNode {
		return j.deleteAtomic(leaf)
	}
	edge := dom.PointAtStart(leaf)
	if backward {
		edge = dom.PointAtEnd(leaf)
	}
	found := e.caretScan(edge, backward)
	if found.Kind != ws.KindText || found.Content != leaf {
		return Canceled, nil
	}
	at, err := e.ws.DeleteCharacter(found, !backward)
	if err != nil {
		return Canceled, err
	}
	e.collapseSelection(at)
	return Handled, nil
}

// deleteBR removes the break sitting between the caret and the other block.
func (j *blockJoiner) deleteBR() (EditResult, error) {
	e := j.e
	at, err := e.ws.DeleteNode(j.br)
	if err != nil {
		return Canceled, err
	}
	switch {
	case j.dir.IsBackward() && j.left != nil && j.left.Parent != nil:
		e.collapseSelection(endOfLeaf(j.left))
	case !j.dir.IsBackward() && j.right != nil && j.right.Parent != nil:
		e.collapseSelection(startOfLeaf(j.right))
	default:
		e.collapseSelection(at)
	}
	return Handled, nil
}

// runNonCollapsed deletes r and joins the blocks it started and ended in.
func (j *blockJoiner) runNonCollapsed(r dom.Range) (EditResult, error) {
	e := j.e
	defer e.tx.Tracker().TrackRange(&r)()
	lb, rb := e.ws.BlockOf(r.Start.Container), e.ws.BlockOf(r.End.Container)
	switch {
	case r.Start.Container == r.End.Container || lb == rb:
		j.mode = deleteContentInRanges
	case inDifferentTableElements(r.Start.Container, r.End.Container):
		// no join across table structure, only a plain deletion
		j.mode = deleteContentInRanges
	case lb.Parent == rb.Parent && lb.DataAtom == rb.DataAtom && lb.DataAtom != 0 &&
		(dom.IsParagraph(lb) || dom.IsListItem(lb) || dom.IsHeader(lb)):
		j.mode = joinBlocksInSameParent
	default:
		j.mode = deleteNonCollapsedRanges
	}
	log.Debug(log.CatJoin, "ranged delete", "mode", j.mode, "range", r)

	removed, err := j.deleteRangeContents(r)
	if err != nil {
		return Canceled, err
	}
	switch j.mode {
	case joinBlocksInSameParent:
		if err := j.joinSiblings(lb, rb); err != nil {
			return Canceled, err
		}
	case deleteNonCollapsedRanges:
		if removed.any && !removed.visible && !j.wasCollapsed {
			log.Debug(log.CatJoin, "only invisible content removed, blocks stay apart")
			break
		}
		if a, _ := newAncestorBlockJoiner(e, r.Start.Container, r.End.Container); a != nil {
			if _, _, err := a.run(); err != nil {
				return Canceled, err
			}
		}
	}
	e.collapseSelection(r.Start)
	return Handled, nil
}

// joinSiblings concatenates two same-type sibling blocks.
func (j *blockJoiner) joinSiblings(lb, rb *html.Node) error {
	e := j.e
	if lb.Parent == nil || rb.Parent == nil {
		return nil
	}
	if lb.NextSibling == rb {
		seam, err := e.tx.JoinNodes(lb, rb)
		if err != nil {
			return err
		}
		return e.warn(log.CatJoin, "normalize join seam", e.ws.NormalizeAround(seam))
	}
	if a, _ := newAncestorBlockJoiner(e, lb, rb); a != nil {
		_, _, err := a.run()
		return err
	}
	return nil
}

// ancestorBlockJoiner joins the blocks containing two content nodes.
type ancestorBlockJoiner struct {
	e           *Editor
	left, right *html.Node
}

// newAncestorBlockJoiner returns nil and the result to report when the blocks of
// leftContent and rightContent cannot be joined.
func newAncestorBlockJoiner(e *Editor, leftContent, rightContent *html.Node) (*ancestorBlockJoiner, EditResult) {
	lb, rb := e.ws.BlockOf(leftContent), e.ws.BlockOf(rightContent)
	switch {
	case dom.IsStructuralRoot(lb) && dom.IsStructuralRoot(rb):
		return nil, Canceled
	case dom.IsAnyTableElement(lb) || dom.IsAnyTableElement(rb):
		return nil, Canceled
	case lb == rb:
		return nil, Ignored
	case dom.IsListItem(rb) && rb.Parent == lb, dom.IsListItem(lb) && lb.Parent == rb:
		return nil, Canceled
	}
	if !dom.IsEditable(lb, e.host) || !dom.IsEditable(rb, e.host) {
		return nil, Canceled
	}
	if dom.IsListItem(lb) && dom.IsListItem(rb) && lb.Parent != rb.Parent &&
		dom.IsList(lb.Parent) && dom.IsList(rb.Parent) {
		ll, rl := lb.Parent, rb.Parent
		if !dom.IsAncestor(ll, rl) && !dom.IsAncestor(rl, ll) && dom.IsEditable(ll, e.host) && dom.IsEditable(rl, e.host) {
			lb, rb = ll, rl
		}
	}
	return &ancestorBlockJoiner{e: e, left: lb, right: rb}, Handled
}

// run merges the right block into the left one. seam is where the moved content begins.
func (a *ancestorBlockJoiner) run() (seam dom.Point, res EditResult, err error) {
	deletedBR := false
	switch {
	case dom.IsAncestor(a.left, a.right):
		child := dom.ChildContaining(a.left, a.right)
		dest := dom.PointBefore(child)
		deletedBR, err = a.deleteInvisibleBRBefore(&dest)
		if err != nil {
			return seam, Canceled, err
		}
		seam, res, err = a.moveFirstLine(dom.PointAtStart(a.right), dest, a.left)
	case dom.IsAncestor(a.right, a.left):
		dest := dom.PointAtEnd(a.left)
		deletedBR, err = a.deleteInvisibleBRBefore(&dest)
		if err != nil {
			return seam, Canceled, err
		}
		from := dom.PointAfter(dom.ChildContaining(a.right, a.left))
		seam, res, err = a.moveFirstLine(from, dest, nil)
	default:
		dest := dom.PointAtEnd(a.left)
		deletedBR, err = a.deleteInvisibleBRBefore(&dest)
		if err != nil {
			return seam, Canceled, err
		}
		seam, res, err = a.mergeSiblings(dest)
	}
	if err == nil && res != Handled && deletedBR {
		res = Handled
	}
	log.Debug(log.CatJoin, "joined blocks", "left", dom.Describe(a.left), "right", dom.Describe(a.right), "result", res)
	return seam, res, err
}

// deleteInvisibleBRBefore removes an invisible <br> ending the line at dest.
func (a *ancestorBlockJoiner) deleteInvisibleBRBefore(dest *dom.Point) (bool, error) {
	e := a.e
	found := e.ws.ScanPrevious(*dest)
	if found.Kind != ws.KindBR || !dom.IsEditable(found.Content, e.host) {
		return false, nil
	}
	br := found.Content
	if e.ws.IsVisibleBR(br) {
		return false, nil
	}
	defer e.tx.Tracker().Track(dest)()
	if err := e.tx.DeleteNode(br); err != nil {
		return false, err
	}
	return true, nil
}

// moveFirstLine moves the first line at from to dest and removes the blocks it emptied,
// never climbing to keep, which is an ancestor of dest.
func (a *ancestorBlockJoiner) moveFirstLine(from, dest dom.Point, keep *html.Node) (dom.Point, EditResult, error) {
	e := a.e
	seam, moved, err := e.ws.MoveLine(from, dest)
	if err != nil {
		return seam, Canceled, err
	}
	defer e.tx.Tracker().Track(&seam)()
	deleted, err := a.deleteEmptyBlockChain(a.right, keep)
	if err != nil {
		return seam, Canceled, err
	}
	if !moved && !deleted {
		return seam, Ignored, nil
	}
	return seam, Handled, nil
}

// mergeSiblings merges a right block that is not related to the left block.
func (a *ancestorBlockJoiner) mergeSiblings(dest dom.Point) (dom.Point, EditResult, error) {
	e := a.e
	lb, rb := a.left, a.right
	if dom.IsList(lb) && dom.IsList(rb) && lb.DataAtom != rb.DataAtom {
		renamed, err := renameElement(e, rb, lb.DataAtom)
		if err != nil {
			return dest, Canceled, err
		}
		rb, a.right = renamed, renamed
	}
	if lb.DataAtom != rb.DataAtom || lb.DataAtom == 0 {
		return a.moveFirstLine(dom.PointAtStart(rb), dest, nil)
	}
	seam := dest
	defer e.tx.Tracker().Track(&seam)()
	if rb.FirstChild == nil {
		return seam, Ignored, nil
	}
	if err := e.tx.MoveChildren(rb, dest); err != nil {
		return seam, Canceled, err
	}
	if _, err := a.deleteEmptyBlockChain(rb, nil); err != nil {
		return seam, Canceled, err
	}
	if err := e.warn(log.CatJoin, "normalize join seam", e.ws.NormalizeAround(seam)); err != nil {
		return seam, Canceled, err
	}
	if dom.IsList(lb) {
		// items keep their own caret
		return dom.Point{}, Handled, nil
	}
	return seam, Handled, nil
}

// deleteEmptyBlockChain deletes b when a join emptied it, and then each empty ancestor
// up to the host or keep.
func (a *ancestorBlockJoiner) deleteEmptyBlockChain(b, keep *html.Node) (bool, error) {
	e := a.e
	deleted := false
	for b != nil && b.Parent != nil && b != e.host && !dom.IsInclusiveAncestor(b, keep) {
		if !dom.IsEmptyNode(b, dom.IgnoreSingleBR|dom.TableCellIsVisible) || dom.IsAnyTableElement(b) || !dom.IsEditable(b.Parent, e.host) {
			break
		}
		parent := b.Parent
		if err := e.tx.DeleteNode(b); err != nil {
			return deleted, err
		}
		deleted = true
		b = parent
	}
	return deleted, nil
}

// renameElement replaces el with an element named tag holding its attributes and children.
func renameElement(e *Editor, el *html.Node, tag atom.Atom) (*html.Node, error) {
	if el.Parent == nil {
		return nil, fmt.Errorf("%w: rename detached %s", ErrInvalidArgument, dom.Describe(el))
	}
	if el.DataAtom == tag {
		return el, nil
	}
	repl := dom.CloneShallow(el)
	repl.DataAtom = tag
	repl.Data = tag.String()
	if err := e.tx.InsertNode(repl, dom.PointBefore(el)); err != nil {
		return nil, err
	}
	if err := e.tx.MoveChildren(el, dom.PointAtStart(repl)); err != nil {
		return nil, err
	}
	if err := e.tx.DeleteNode(el); err != nil {
		return nil, err
	}
	return repl, nil
}
