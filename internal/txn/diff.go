package txn

import (
	"fmt"
	"time"

	"golang.org/x/net/html"

	"github.com/dannyswat/htmledit/internal/dom"
)

// DiffHTML calculates the operations needed to transform oldHTML into newHTML.
func DiffHTML(oldHTML, newHTML, author string) (*Delta, error) {
	oldDoc, err := dom.ParseHTML(oldHTML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse old HTML: %w", err)
	}
	newDoc, err := dom.ParseHTML(newHTML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse new HTML: %w", err)
	}
	rendered, err := dom.RenderNode(oldDoc)
	if err != nil {
		return nil, err
	}
	ops, err := Diff(oldDoc, newDoc)
	if err != nil {
		return nil, err
	}
	return &Delta{
		Name:       "diff",
		BaseHash:   hashString(rendered),
		Operations: ops,
		Timestamp:  time.Now().Unix(),
		Author:     author,
	}, nil
}

// Diff returns operations that turn the tree at oldRoot into the tree at newRoot when
// applied in order. Paths refer to the tree being transformed.
func Diff(oldRoot, newRoot *html.Node) ([]Operation, error) {
	return diffNodes(oldRoot, newRoot, dom.NodePath{})
}

// diffNodes compares two nodes that occupy the same position.
func diffNodes(oldNode, newNode *html.Node, path dom.NodePath) ([]Operation, error) {
	var ops []Operation

	if oldNode.Type == html.ElementNode {
		ops = append(ops, diffAttributes(oldNode, newNode, path)...)
	}

	if dom.IsCharacterData(oldNode) {
		ops = append(ops, diffText(oldNode.Data, newNode.Data, path)...)
		return ops, nil
	}

	childOps, err := diffChildren(oldNode, newNode, path)
	if err != nil {
		return nil, err
	}
	return append(ops, childOps...), nil
}

// diffText emits at most one deletion and one insertion around the common prefix/suffix.
func diffText(oldText, newText string, path dom.NodePath) []Operation {
	if oldText == newText {
		return nil
	}
	prefix := 0
	for prefix < len(oldText) && prefix < len(newText) && oldText[prefix] == newText[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(oldText)-prefix && suffix < len(newText)-prefix &&
		oldText[len(oldText)-1-suffix] == newText[len(newText)-1-suffix] {
		suffix++
	}
	// keep both cut points on rune boundaries
	for prefix > 0 && !isRuneStart(oldText, prefix) {
		prefix--
	}
	for suffix > 0 && (!isRuneStart(oldText, len(oldText)-suffix) || !isRuneStart(newText, len(newText)-suffix)) {
		suffix--
	}
	var ops []Operation
	if removed := oldText[prefix : len(oldText)-suffix]; removed != "" {
		ops = append(ops, Operation{Type: OpDeleteText, Path: path, Position: prefix, OldValue: removed})
	}
	if added := newText[prefix : len(newText)-suffix]; added != "" {
		ops = append(ops, Operation{Type: OpInsertText, Path: path, Position: prefix, NewValue: added})
	}
	return ops
}

func isRuneStart(s string, i int) bool {
	return i >= len(s) || s[i]&0xC0 != 0x80
}

func diffAttributes(oldNode, newNode *html.Node, path dom.NodePath) []Operation {
	var ops []Operation
	for _, a := range oldNode.Attr {
		vNew, exists := dom.Attr(newNode, a.Key)
		switch {
		case !exists:
			ops = append(ops, Operation{Type: OpRemoveAttr, Path: path, Key: a.Key, OldValue: a.Val})
		case vNew != a.Val:
			ops = append(ops, Operation{Type: OpUpdateAttr, Path: path, Key: a.Key, OldValue: a.Val, NewValue: vNew, Existed: true})
		}
	}
	for _, a := range newNode.Attr {
		if !dom.HasAttr(oldNode, a.Key) {
			ops = append(ops, Operation{Type: OpUpdateAttr, Path: path, Key: a.Key, NewValue: a.Val})
		}
	}
	return ops
}

func sameKind(a, b *html.Node) bool {
	if a.Type != b.Type {
		return false
	}
	return a.Type != html.ElementNode || a.Data == b.Data
}

// diffChildren matches children by index. Nodes of a different kind at the same index are
// replaced; extra old children are deleted from the end; extra new children are appended.
func diffChildren(oldNode, newNode *html.Node, parentPath dom.NodePath) ([]Operation, error) {
	var ops []Operation

	oldChildren := dom.Children(oldNode)
	newChildren := dom.Children(newNode)

	commonLen := min(len(oldChildren), len(newChildren))

	for i := 0; i < commonLen; i++ {
		childPath := childPath(parentPath, i)
		if !sameKind(oldChildren[i], newChildren[i]) {
			ops = append(ops, Operation{Type: OpDeleteNode, Path: childPath, NodeData: render(oldChildren[i])})
			ops = append(ops, Operation{Type: OpInsertNode, Path: parentPath, Position: i, NodeData: render(newChildren[i])})
			continue
		}
		childOps, err := diffNodes(oldChildren[i], newChildren[i], childPath)
		if err != nil {
			return nil, err
		}
		ops = append(ops, childOps...)
	}

	// Delete from the end so earlier indices stay valid.
	for i := len(oldChildren) - 1; i >= commonLen; i-- {
		ops = append(ops, Operation{Type: OpDeleteNode, Path: childPath(parentPath, i), NodeData: render(oldChildren[i])})
	}

	for i := commonLen; i < len(newChildren); i++ {
		nodeHTML, err := dom.RenderNode(newChildren[i])
		if err != nil {
			return nil, err
		}
		ops = append(ops, Operation{Type: OpInsertNode, Path: parentPath, Position: i, NodeData: nodeHTML})
	}

	return ops, nil
}
