package txn

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dannyswat/htmledit/internal/dom"
)

// Patch applies the changes in delta to baseHTML.
func Patch(baseHTML string, delta *Delta) (string, error) {
	doc, err := dom.ParseHTML(baseHTML)
	if err != nil {
		return "", err
	}
	rendered, err := dom.RenderNode(doc)
	if err != nil {
		return "", err
	}
	if delta.BaseHash != "" && hashString(rendered) != delta.BaseHash {
		return "", fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, delta.BaseHash, hashString(rendered))
	}
	for i, op := range delta.Operations {
		if err := applyOp(doc, op); err != nil {
			return "", fmt.Errorf("failed to apply op %d (%s): %w", i, op.Type, err)
		}
	}
	return dom.RenderNode(doc)
}

func applyOp(root *html.Node, op Operation) error {
	switch op.Type {
	case OpInsertText, OpDeleteText:
		node, err := dom.GetNode(root, op.Path)
		if err != nil {
			return err
		}
		if !dom.IsCharacterData(node) {
			return fmt.Errorf("target node for %s is not a text node (type=%d)", op.Type, node.Type)
		}
		if op.Position < 0 || op.Position > len(node.Data) {
			return fmt.Errorf("%s offset %d out of range", op.Type, op.Position)
		}
		if op.Type == OpInsertText {
			node.Data = node.Data[:op.Position] + op.NewValue + node.Data[op.Position:]
			return nil
		}
		end := op.Position + len(op.OldValue)
		if end > len(node.Data) || node.Data[op.Position:end] != op.OldValue {
			return fmt.Errorf("DELETE_TEXT old value mismatch at %d: want %q", op.Position, op.OldValue)
		}
		node.Data = node.Data[:op.Position] + node.Data[end:]

	case OpUpdateAttr, OpRemoveAttr:
		node, err := dom.GetNode(root, op.Path)
		if err != nil {
			return err
		}
		if node.Type != html.ElementNode {
			return fmt.Errorf("target node for %s is not an element node", op.Type)
		}
		if op.Type == OpRemoveAttr {
			dom.RemoveAttr(node, op.Key)
		} else {
			dom.SetAttr(node, op.Key, op.NewValue)
		}

	case OpInsertNode:
		parent, err := dom.GetNode(root, op.Path)
		if err != nil {
			return err
		}
		newNode, err := parseNodeData(op.NodeData, parent)
		if err != nil {
			return err
		}
		insertChildAt(parent, newNode, op.Position)

	case OpDeleteNode:
		node, err := dom.GetNode(root, op.Path)
		if err != nil {
			return err
		}
		if node.Parent == nil {
			return errors.New("cannot delete root node or orphan")
		}
		node.Parent.RemoveChild(node)

	case OpMoveNode:
		node, err := dom.GetNode(root, op.Path)
		if err != nil {
			return err
		}
		if node.Parent == nil {
			return errors.New("cannot move root node or orphan")
		}
		node.Parent.RemoveChild(node)
		parent, err := dom.GetNode(root, op.ToPath)
		if err != nil {
			return err
		}
		insertChildAt(parent, node, op.Position)

	case OpSplitNode:
		left, err := dom.GetNode(root, op.Path)
		if err != nil {
			return err
		}
		if left.Parent == nil || op.Position < 0 || op.Position > dom.Length(left) {
			return fmt.Errorf("cannot split %s at %d", dom.Describe(left), op.Position)
		}
		var right *html.Node
		if dom.IsCharacterData(left) {
			right = &html.Node{Type: left.Type, Data: left.Data[op.Position:]}
			left.Data = left.Data[:op.Position]
		} else {
			right = dom.CloneShallow(left)
			right.Attr = copyAttrs(op.Attr)
			for c := dom.ChildAt(left, op.Position); c != nil; {
				next := c.NextSibling
				left.RemoveChild(c)
				right.AppendChild(c)
				c = next
			}
		}
		left.Parent.InsertBefore(right, left.NextSibling)

	case OpJoinNodes:
		left, err := dom.GetNode(root, op.Path)
		if err != nil {
			return err
		}
		right := left.NextSibling
		if right == nil || right.Type != left.Type {
			return fmt.Errorf("cannot join %s with %s", dom.Describe(left), dom.Describe(right))
		}
		if dom.IsCharacterData(left) {
			left.Data += right.Data
		} else {
			for c := right.FirstChild; c != nil; c = right.FirstChild {
				right.RemoveChild(c)
				left.AppendChild(c)
			}
		}
		left.Parent.RemoveChild(right)

	default:
		return fmt.Errorf("unknown operation type: %s", op.Type)
	}

	return nil
}

// invertOp returns the operation that undoes op when applied to the state right after op.
func invertOp(op Operation) (Operation, error) {
	switch op.Type {
	case OpInsertNode:
		return Operation{Type: OpDeleteNode, Path: childPath(op.Path, op.Position), NodeData: op.NodeData}, nil
	case OpDeleteNode:
		if len(op.Path) == 0 {
			return Operation{}, errors.New("cannot invert deletion of the root")
		}
		parent, index := splitPath(op.Path)
		return Operation{Type: OpInsertNode, Path: parent, Position: index, NodeData: op.NodeData}, nil
	case OpMoveNode:
		if len(op.Path) == 0 {
			return Operation{}, errors.New("cannot invert move of the root")
		}
		parent, index := splitPath(op.Path)
		return Operation{Type: OpMoveNode, Path: childPath(op.ToPath, op.Position), ToPath: parent, Position: index}, nil
	case OpUpdateAttr:
		if !op.Existed {
			return Operation{Type: OpRemoveAttr, Path: op.Path, Key: op.Key, OldValue: op.NewValue}, nil
		}
		return Operation{Type: OpUpdateAttr, Path: op.Path, Key: op.Key, OldValue: op.NewValue, NewValue: op.OldValue, Existed: true}, nil
	case OpRemoveAttr:
		return Operation{Type: OpUpdateAttr, Path: op.Path, Key: op.Key, NewValue: op.OldValue}, nil
	case OpInsertText:
		return Operation{Type: OpDeleteText, Path: op.Path, Position: op.Position, OldValue: op.NewValue}, nil
	case OpDeleteText:
		return Operation{Type: OpInsertText, Path: op.Path, Position: op.Position, NewValue: op.OldValue}, nil
	case OpSplitNode:
		return Operation{Type: OpJoinNodes, Path: op.Path, Position: op.Position, Attr: op.Attr}, nil
	case OpJoinNodes:
		return Operation{Type: OpSplitNode, Path: op.Path, Position: op.Position, Attr: op.Attr}, nil
	}
	return Operation{}, fmt.Errorf("unknown operation type: %s", op.Type)
}

func parseNodeData(data string, context *html.Node) (*html.Node, error) {
	if context.Type != html.ElementNode {
		context = dom.NewElement(atom.Body)
	}
	nodes, err := html.ParseFragment(strings.NewReader(data), context)
	if err != nil {
		return nil, fmt.Errorf("failed to parse node data: %w", err)
	}
	if len(nodes) == 0 {
		// ParseFragment drops empty text; recreate it.
		return dom.NewText(""), nil
	}
	return nodes[0], nil
}

func insertChildAt(parent, child *html.Node, index int) {
	if ref := dom.ChildAt(parent, index); ref != nil {
		parent.InsertBefore(child, ref)
	} else {
		parent.AppendChild(child)
	}
}

func childPath(parent dom.NodePath, index int) dom.NodePath {
	p := make(dom.NodePath, len(parent), len(parent)+1)
	copy(p, parent)
	return append(p, index)
}

func splitPath(p dom.NodePath) (dom.NodePath, int) {
	parent := make(dom.NodePath, len(p)-1)
	copy(parent, p[:len(p)-1])
	return parent, p[len(p)-1]
}
