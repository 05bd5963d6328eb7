package htmledit

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dannyswat/htmledit/internal/dom"
	"github.com/dannyswat/htmledit/internal/log"
)

// MakeOrChangeList turns the selected lines into a list of tag ("ul", "ol" or "dl") or
// changes the type of the lists they are in. A non-empty bulletType becomes the type
// attribute of the lists. selectAll applies the change to the whole list around the
// caret.
func (e *Editor) MakeOrChangeList(ctx context.Context, tag, bulletType string, selectAll bool) (EditResult, error) {
	listTag := atom.Lookup([]byte(strings.ToLower(tag)))
	if listTag != atom.Ul && listTag != atom.Ol && listTag != atom.Dl {
		return Canceled, fmt.Errorf("%w: list tag %q", ErrInvalidArgument, tag)
	}
	if e.sel.RangeCount() == 0 {
		return Canceled, ErrNoSelection
	}
	return e.runAction(ctx, SubActionCreateOrChangeList, DirectionNone, func() (EditResult, error) {
		if !e.canHandleBlockAction() {
			return Canceled, nil
		}
		if selectAll {
			if list := e.closestAncestor(e.sel.Start().Container, dom.IsList); list != nil && dom.IsEditable(list, e.host) {
				e.sel.SelectNode(list)
			}
		}
		m := &listMaker{e: e, listTag: listTag, itemTag: itemTagFor(listTag), bulletType: bulletType}
		return m.run()
	})
}

func itemTagFor(list atom.Atom) atom.Atom {
	if list == atom.Dl {
		return atom.Dd
	}
	return atom.Li
}

// listMaker converts collected nodes into one list per run of adjacent nodes.
type listMaker struct {
	e          *Editor
	listTag    atom.Atom
	itemTag    atom.Atom
	bulletType string

	curList *html.Node
	curItem *html.Node
}

func (m *listMaker) run() (EditResult, error) {
	e := m.e
	nodes, err := e.prepareBlockTargets(SubActionCreateOrChangeList)
	if err != nil {
		return Canceled, err
	}
	if e.isTrivialTargets(nodes) {
		list, err := e.createBlockForEmptyLine(nodes, m.listTag, m.itemTag)
		if err != nil {
			return Canceled, err
		}
		return Handled, m.setBulletType(list)
	}
	queue := nodes
	for i := 0; i < len(queue); i++ {
		n := queue[i]
		if n.Parent == nil || !dom.IsEditable(n, e.host) {
			continue
		}
		if !m.continues(n) {
			m.curList, m.curItem = nil, nil
		}
		switch {
		case dom.IsList(n):
			err = m.convertList(n)
		case dom.IsListItem(n):
			err = m.convertItem(n)
		case (dom.IsDiv(n) || dom.IsBlockquote(n)) && !dom.IsMailCite(n):
			var children []*html.Node
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				children = append(children, c)
			}
			queue = append(queue[:i+1], append(children, queue[i+1:]...)...)
			m.curItem = nil
			err = e.unwrap(n)
		case dom.IsFormatBlock(n):
			err = m.paragraphToItem(n)
		case dom.IsBR(n):
			m.curItem = nil
			if m.curList != nil {
				err = e.tx.DeleteNode(n)
			}
		case dom.IsAnyTableElement(n):
			m.curList, m.curItem = nil, nil
		case dom.IsBlock(n):
			m.curItem = nil
			err = m.appendInline(n)
			m.curItem = nil
		default:
			if n.Type != html.ElementNode && !e.ws.IsVisibleText(n) && m.curItem == nil {
				continue
			}
			err = m.appendInline(n)
		}
		if err != nil {
			return Canceled, err
		}
	}
	return e.dropLineBreaksOfWrappedLines(Handled, nil)
}

// continues reports whether n can join the list opened for the previous nodes.
func (m *listMaker) continues(n *html.Node) bool {
	if m.curList == nil || m.curList.Parent == nil {
		return false
	}
	if n.Parent == m.curList || m.curItem != nil && n.Parent == m.curItem {
		return true
	}
	for x := n; x != nil && x.Parent != nil; x = x.Parent {
		if followsDirectly(m.curList, x) {
			return true
		}
		if previousNonBlankSibling(x) != nil {
			return false
		}
		if p := x.Parent; dom.IsBlock(p) && !dom.IsList(p) || p == m.e.host {
			return false
		}
	}
	return false
}

func (m *listMaker) openList(before *html.Node) error {
	list, err := m.e.insertElementWithSplitting(m.listTag, dom.PointBefore(before))
	if err != nil {
		return err
	}
	m.curList, m.curItem = list, nil
	if m.e.top != nil && m.e.top.newBlock == nil {
		m.e.top.newBlock = list
	}
	return m.setBulletType(list)
}

func (m *listMaker) setBulletType(list *html.Node) error {
	if m.bulletType != "" {
		return m.e.tx.SetAttribute(list, "type", m.bulletType)
	}
	if dom.HasAttr(list, "type") {
		return m.e.tx.RemoveAttribute(list, "type")
	}
	return nil
}

// convertList renames a list to the target type, merging it into the open list.
func (m *listMaker) convertList(n *html.Node) error {
	e := m.e
	list, err := renameElement(e, n, m.listTag)
	if err != nil {
		return err
	}
	if m.curList != nil && m.curList != list && followsDirectly(m.curList, list) {
		if err := e.tx.MoveChildren(list, dom.PointAtEnd(m.curList)); err != nil {
			return err
		}
		if err := e.tx.DeleteNode(list); err != nil {
			return err
		}
		list = m.curList
	}
	m.curList, m.curItem = list, nil
	if err := m.convertItemTags(list); err != nil {
		return err
	}
	return m.setBulletType(list)
}

// convertItemTags renames the items of list to the item tag of its type.
func (m *listMaker) convertItemTags(list *html.Node) error {
	for c := list.FirstChild; c != nil; {
		next := c.NextSibling
		if dom.IsListItem(c) && !m.itemTagFits(c) {
			if _, err := renameElement(m.e, c, m.itemTag); err != nil {
				return err
			}
		}
		c = next
	}
	return nil
}

// itemTagFits reports whether item may stay as it is in a list of the target type.
func (m *listMaker) itemTagFits(item *html.Node) bool {
	if m.listTag == atom.Dl {
		return item.DataAtom == atom.Dd || item.DataAtom == atom.Dt
	}
	return item.DataAtom == atom.Li
}

// convertItem moves a list item into a list of the target type.
func (m *listMaker) convertItem(item *html.Node) error {
	e := m.e
	if !dom.IsList(item.Parent) {
		return m.paragraphToItem(item)
	}
	if item.Parent.DataAtom != m.listTag {
		piece, err := e.isolateInList(item)
		if err != nil {
			return err
		}
		if m.curList != nil && followsDirectly(m.curList, piece) {
			if err := e.moveInto(item, m.curList); err != nil {
				return err
			}
			if err := e.tx.DeleteNode(piece); err != nil {
				return err
			}
		} else {
			renamed, err := renameElement(e, piece, m.listTag)
			if err != nil {
				return err
			}
			m.curList = renamed
			if err := m.setBulletType(renamed); err != nil {
				return err
			}
		}
	} else if m.curList == nil {
		m.curList = item.Parent
		if err := m.setBulletType(m.curList); err != nil {
			return err
		}
	} else if item.Parent != m.curList {
		if err := e.moveInto(item, m.curList); err != nil {
			return err
		}
	}
	m.curItem = nil
	if !m.itemTagFits(item) {
		_, err := renameElement(e, item, m.itemTag)
		return err
	}
	return nil
}

// paragraphToItem turns a format block into an item of the open list.
func (m *listMaker) paragraphToItem(n *html.Node) error {
	e := m.e
	if m.curList == nil {
		if err := m.openList(n); err != nil {
			return err
		}
	}
	item, err := renameElement(e, n, m.itemTag)
	if err != nil {
		return err
	}
	m.curItem = nil
	if item.Parent == m.curList {
		return nil
	}
	return e.moveInto(item, m.curList)
}

// appendInline moves inline content into the current item, opening a list and an item
// as needed.
func (m *listMaker) appendInline(n *html.Node) error {
	e := m.e
	if m.curList == nil {
		if err := m.openList(n); err != nil {
			return err
		}
	}
	if m.curItem == nil || m.curItem.Parent != m.curList {
		item := dom.NewElement(m.itemTag)
		if err := e.tx.InsertNode(item, dom.PointAtEnd(m.curList)); err != nil {
			return err
		}
		m.curItem = item
	}
	return e.moveInto(n, m.curItem)
}

// RemoveList lifts the selected list items out of every list holding them.
func (e *Editor) RemoveList(ctx context.Context) (EditResult, error) {
	if e.sel.RangeCount() == 0 {
		return Canceled, ErrNoSelection
	}
	return e.runAction(ctx, SubActionRemoveList, DirectionNone, func() (EditResult, error) {
		if !e.canHandleBlockAction() {
			return Canceled, nil
		}
		nodes, err := e.prepareBlockTargets(SubActionRemoveList)
		if err != nil {
			return Canceled, err
		}
		var targets []*html.Node
		seen := make(map[*html.Node]bool)
		for _, n := range nodes {
			if !dom.IsList(n) && !dom.IsListItem(n) {
				n = e.closestAncestor(n, dom.IsListItem)
			}
			if n == nil || seen[n] {
				continue
			}
			seen[n] = true
			targets = append(targets, n)
		}
		if len(targets) == 0 {
			return Canceled, nil
		}
		for _, n := range targets {
			if n.Parent == nil || !dom.IsEditable(n, e.host) {
				continue
			}
			if dom.IsList(n) {
				err = e.destroyList(n)
			} else {
				err = e.liftListItem(n, true)
			}
			if err != nil {
				return Canceled, err
			}
		}
		return Handled, nil
	})
}

// destroyList lifts every item out of list and its nested lists, then removes it.
func (e *Editor) destroyList(list *html.Node) error {
	for c := list.FirstChild; c != nil; {
		next := c.NextSibling
		var err error
		switch {
		case dom.IsListItem(c):
			err = e.liftListItem(c, true)
		case dom.IsList(c):
			err = e.destroyList(c)
		}
		if err != nil {
			return err
		}
		c = next
	}
	if list.Parent == nil {
		return nil
	}
	return e.unwrap(list)
}

// isolateInList splits the list holding item so item is alone in its piece, which is
// returned.
func (e *Editor) isolateInList(item *html.Node) (*html.Node, error) {
	if previousNonBlankSibling(item) != nil {
		if _, err := e.tx.SplitNode(dom.PointBefore(item)); err != nil {
			return nil, err
		}
	}
	if nextNonBlankSibling(item) != nil {
		if _, err := e.tx.SplitNode(dom.PointAfter(item)); err != nil {
			return nil, err
		}
	}
	return item.Parent, nil
}

// liftListItem moves li out of its list, one level or out of every list. An item that
// leaves its last list is replaced by its contents.
func (e *Editor) liftListItem(li *html.Node, all bool) error {
	for dom.IsList(li.Parent) {
		piece, err := e.isolateInList(li)
		if err != nil {
			return err
		}
		dest := dom.PointBefore(piece)
		if outer := piece.Parent; dom.IsListItem(outer) {
			dest = dom.PointAfter(outer)
		}
		log.Debug(log.CatList, "lift list item", "item", dom.Describe(li), "to", dest)
		if err := e.tx.MoveNode(li, dest); err != nil {
			return err
		}
		if piece.Parent != nil && firstNonBlank(piece) == nil {
			if err := e.tx.DeleteNode(piece); err != nil {
				return err
			}
		}
		if list := li.Parent; dom.IsList(list) && (list.DataAtom == atom.Dl) != (li.DataAtom != atom.Li) {
			if li, err = renameElement(e, li, itemTagFor(list.DataAtom)); err != nil {
				return err
			}
		}
		if !all {
			break
		}
	}
	if dom.IsList(li.Parent) {
		return nil
	}
	return e.removeBlockContainer(li)
}

// unwrap replaces el by its children.
func (e *Editor) unwrap(el *html.Node) error {
	if err := e.tx.MoveChildren(el, dom.PointBefore(el)); err != nil {
		return err
	}
	return e.tx.DeleteNode(el)
}
