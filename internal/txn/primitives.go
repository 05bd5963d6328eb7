package txn

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/dannyswat/htmledit/internal/dom"
)

// InsertNode inserts the detached node n at point at, which must be in an element.
func (m *Manager) InsertNode(n *html.Node, at dom.Point) error {
	if n == nil || n.Parent != nil {
		return fmt.Errorf("insert %s: %w", dom.Describe(n), ErrInvalidNode)
	}
	if !at.IsValid() || dom.IsCharacterData(at.Container) {
		return fmt.Errorf("insert %s at %s: %w", dom.Describe(n), at, ErrInvalidPoint)
	}
	parent := at.Container
	if ref := dom.ChildAt(parent, at.Offset); ref != nil {
		parent.InsertBefore(n, ref)
	} else {
		parent.AppendChild(n)
	}
	m.tracker.nodeInserted(parent, at.Offset)
	m.record(Operation{
		Type:     OpInsertNode,
		Path:     m.path(parent),
		Position: at.Offset,
		NodeData: render(n),
	})
	return m.notify(Mutation{Kind: NodeInserted, Node: n, Parent: parent, Offset: at.Offset})
}

// DeleteNode removes n from the tree.
func (m *Manager) DeleteNode(n *html.Node) error {
	if n == nil || n.Parent == nil {
		return fmt.Errorf("delete %s: %w", dom.Describe(n), ErrInvalidNode)
	}
	parent := n.Parent
	index := dom.Index(n)
	m.record(Operation{
		Type:     OpDeleteNode,
		Path:     m.path(n),
		NodeData: render(n),
	})
	parent.RemoveChild(n)
	m.tracker.nodeRemoved(n, parent, index)
	return m.notify(Mutation{Kind: NodeRemoved, Node: n, Parent: parent, Offset: index})
}

// MoveNode moves n to point at. Points inside n stay inside n.
func (m *Manager) MoveNode(n *html.Node, at dom.Point) error {
	if n == nil || n.Parent == nil {
		return fmt.Errorf("move %s: %w", dom.Describe(n), ErrInvalidNode)
	}
	if !at.IsValid() || dom.IsCharacterData(at.Container) || dom.IsInclusiveAncestor(n, at.Container) {
		return fmt.Errorf("move %s to %s: %w", dom.Describe(n), at, ErrInvalidPoint)
	}
	oldParent := n.Parent
	oldIndex := dom.Index(n)
	newIndex := at.Offset
	if at.Container == oldParent && oldIndex < newIndex {
		newIndex--
	}
	if at.Container == oldParent && oldIndex == newIndex {
		return nil
	}
	fromPath := m.path(n)
	oldParent.RemoveChild(n)
	if ref := dom.ChildAt(at.Container, newIndex); ref != nil {
		at.Container.InsertBefore(n, ref)
	} else {
		at.Container.AppendChild(n)
	}
	m.tracker.nodeMoved(oldParent, oldIndex, at.Container, newIndex)
	m.record(Operation{
		Type:     OpMoveNode,
		Path:     fromPath,
		ToPath:   m.path(at.Container),
		Position: newIndex,
	})
	return m.notify(Mutation{Kind: NodeMoved, Node: n, Parent: at.Container, Offset: newIndex})
}

// MoveChildren moves every child of from to point at, preserving order.
func (m *Manager) MoveChildren(from *html.Node, at dom.Point) error {
	dest := at
	untrack := m.tracker.Track(&dest)
	defer untrack()
	for from.FirstChild != nil {
		c := from.FirstChild
		if err := m.MoveNode(c, dest); err != nil {
			return err
		}
		if c.Parent == from {
			return fmt.Errorf("move children of %s: %w", dom.Describe(from), ErrInvalidNode)
		}
		dest = dom.PointAfter(c)
	}
	return nil
}

// SplitNode splits the container of at. The original node keeps the content before the
// point and a new following sibling receives the rest. It returns the new node.
func (m *Manager) SplitNode(at dom.Point) (*html.Node, error) {
	left := at.Container
	if !at.IsValid() || left.Parent == nil {
		return nil, fmt.Errorf("split at %s: %w", at, ErrInvalidPoint)
	}
	var right *html.Node
	if dom.IsCharacterData(left) {
		right = &html.Node{Type: left.Type, Data: left.Data[at.Offset:]}
		left.Data = left.Data[:at.Offset]
	} else {
		right = dom.CloneShallow(left)
		child := dom.ChildAt(left, at.Offset)
		for child != nil {
			next := child.NextSibling
			left.RemoveChild(child)
			right.AppendChild(child)
			child = next
		}
	}
	left.Parent.InsertBefore(right, left.NextSibling)
	m.tracker.nodeSplit(left, right, at.Offset)
	m.record(Operation{
		Type:     OpSplitNode,
		Path:     m.path(left),
		Position: at.Offset,
		Attr:     copyAttrs(right.Attr),
	})
	if err := m.notify(Mutation{Kind: NodeSplit, Node: left, Other: right, Parent: left.Parent, Offset: at.Offset}); err != nil {
		return right, err
	}
	return right, nil
}

// JoinNodes appends the content of right into left and removes right. Both must have the
// same parent and the same node type; right is moved next to left first if needed.
// It returns the point in left where right's content begins.
func (m *Manager) JoinNodes(left, right *html.Node) (dom.Point, error) {
	if left == nil || right == nil || left == right || left.Parent == nil || left.Parent != right.Parent ||
		left.Type != right.Type {
		return dom.Point{}, fmt.Errorf("join %s and %s: %w", dom.Describe(left), dom.Describe(right), ErrInvalidNode)
	}
	if left.NextSibling != right {
		if err := m.MoveNode(right, dom.PointAfter(left)); err != nil {
			return dom.Point{}, err
		}
	}
	parent := left.Parent
	rightIndex := dom.Index(right)
	leftLength := dom.Length(left)
	m.record(Operation{
		Type:     OpJoinNodes,
		Path:     m.path(left),
		Position: leftLength,
		Attr:     copyAttrs(right.Attr),
	})
	if dom.IsCharacterData(left) {
		left.Data += right.Data
	} else {
		for c := right.FirstChild; c != nil; c = right.FirstChild {
			right.RemoveChild(c)
			left.AppendChild(c)
		}
	}
	parent.RemoveChild(right)
	m.tracker.nodesJoined(left, right, parent, leftLength, rightIndex)
	joined := dom.Point{Container: left, Offset: leftLength}
	if err := m.notify(Mutation{Kind: NodesJoined, Node: left, Other: right, Parent: parent, Offset: leftLength}); err != nil {
		return joined, err
	}
	return joined, nil
}

// SetAttribute sets key on el.
func (m *Manager) SetAttribute(el *html.Node, key, val string) error {
	if el == nil || el.Type != html.ElementNode {
		return fmt.Errorf("set attribute %s: %w", key, ErrInvalidNode)
	}
	old, existed := dom.Attr(el, key)
	if existed && old == val {
		return nil
	}
	dom.SetAttr(el, key, val)
	m.record(Operation{
		Type:     OpUpdateAttr,
		Path:     m.path(el),
		Key:      key,
		OldValue: old,
		NewValue: val,
		Existed:  existed,
	})
	return m.notify(Mutation{Kind: AttributeChanged, Node: el, Parent: el.Parent})
}

// RemoveAttribute removes key from el when present.
func (m *Manager) RemoveAttribute(el *html.Node, key string) error {
	if el == nil || el.Type != html.ElementNode {
		return fmt.Errorf("remove attribute %s: %w", key, ErrInvalidNode)
	}
	old, existed := dom.Attr(el, key)
	if !existed {
		return nil
	}
	dom.RemoveAttr(el, key)
	m.record(Operation{
		Type:     OpRemoveAttr,
		Path:     m.path(el),
		Key:      key,
		OldValue: old,
	})
	return m.notify(Mutation{Kind: AttributeChanged, Node: el, Parent: el.Parent})
}

// InsertText inserts s into the text node at offset.
func (m *Manager) InsertText(node *html.Node, offset int, s string) error {
	if !dom.IsCharacterData(node) {
		return fmt.Errorf("insert text into %s: %w", dom.Describe(node), ErrInvalidNode)
	}
	if offset < 0 || offset > len(node.Data) {
		return fmt.Errorf("insert text at %d in %s: %w", offset, dom.Describe(node), ErrInvalidPoint)
	}
	if s == "" {
		return nil
	}
	node.Data = node.Data[:offset] + s + node.Data[offset:]
	m.tracker.textInserted(node, offset, len(s))
	m.record(Operation{
		Type:     OpInsertText,
		Path:     m.path(node),
		Position: offset,
		NewValue: s,
	})
	return m.notify(Mutation{Kind: CharacterDataChanged, Node: node, Parent: node.Parent, Offset: offset, Length: len(s)})
}

// DeleteText removes length bytes at offset from the text node.
func (m *Manager) DeleteText(node *html.Node, offset, length int) error {
	if !dom.IsCharacterData(node) {
		return fmt.Errorf("delete text from %s: %w", dom.Describe(node), ErrInvalidNode)
	}
	if offset < 0 || length < 0 || offset+length > len(node.Data) {
		return fmt.Errorf("delete text [%d,%d) in %s: %w", offset, offset+length, dom.Describe(node), ErrInvalidPoint)
	}
	if length == 0 {
		return nil
	}
	old := node.Data[offset : offset+length]
	node.Data = node.Data[:offset] + node.Data[offset+length:]
	m.tracker.textDeleted(node, offset, length)
	m.record(Operation{
		Type:     OpDeleteText,
		Path:     m.path(node),
		Position: offset,
		OldValue: old,
	})
	return m.notify(Mutation{Kind: CharacterDataChanged, Node: node, Parent: node.Parent, Offset: offset})
}

// ReplaceText replaces length bytes at offset with s. The new text is inserted before the
// old text is removed, so tracked points inside or at the end of the replaced text end up
// after the new text and points at offset stay before it.
func (m *Manager) ReplaceText(node *html.Node, offset, length int, s string) error {
	if err := m.InsertText(node, offset, s); err != nil {
		return err
	}
	return m.DeleteText(node, offset+len(s), length)
}

func copyAttrs(attrs []html.Attribute) []html.Attribute {
	if len(attrs) == 0 {
		return nil
	}
	return append([]html.Attribute(nil), attrs...)
}
