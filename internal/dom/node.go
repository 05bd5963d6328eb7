// Package dom provides the content-node view of an x/net/html tree used by the editor:
// classification predicates, boundary points, ranges and child-index paths.
package dom

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NodePath represents the traversal steps from the root to a target node.
// Example: [0, 1, 3] means root -> child[0] -> child[1] -> child[3]
type NodePath []int

// ParseHTML parses a string into an HTML node tree.
// Parse always produces html/head/body, which gives the editor a body to use as editing host.
func ParseHTML(content string) (*html.Node, error) {
	return html.Parse(strings.NewReader(content))
}

// RenderNode converts a node tree back to a string.
func RenderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderChildren renders the children of n, i.e. its inner HTML.
func RenderChildren(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// Body returns the <body> element of a parsed document, or nil.
func Body(doc *html.Node) *html.Node {
	for n := doc; n != nil; n = NextNode(n, doc) {
		if IsElement(n, atom.Body) {
			return n
		}
	}
	return nil
}

// GetNode traverses the tree using the provided path to find a specific node.
func GetNode(root *html.Node, path NodePath) (*html.Node, error) {
	current := root
	for i, index := range path {
		child := ChildAt(current, index)
		if child == nil {
			return nil, fmt.Errorf("node not found at path %v (failed at index %d, step %d)", path, index, i)
		}
		current = child
	}
	return current, nil
}

// GetPath finds the path from root to the target node.
func GetPath(root, target *html.Node) (NodePath, error) {
	var path NodePath
	for current := target; current != root; current = current.Parent {
		parent := current.Parent
		if parent == nil {
			return nil, errors.New("target node is not a descendant of root")
		}
		index := Index(current)
		if index == -1 {
			return nil, errors.New("integrity error: child not found in parent's list")
		}
		path = append(path, index)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// ChildAt finds the Nth child of a node.
// html.Node's children are a linked list (FirstChild, NextSibling).
func ChildAt(parent *html.Node, index int) *html.Node {
	if parent == nil || index < 0 {
		return nil
	}
	count := 0
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if count == index {
			return c
		}
		count++
	}
	return nil
}

// Index returns the index of n within its parent, or -1 for an orphan.
func Index(n *html.Node) int {
	if n == nil || n.Parent == nil {
		return -1
	}
	count := 0
	for c := n.Parent.FirstChild; c != nil; c = c.NextSibling {
		if c == n {
			return count
		}
		count++
	}
	return -1
}

// ChildCount returns the number of children of n.
func ChildCount(n *html.Node) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count++
	}
	return count
}

// Children returns the children of n as a slice.
func Children(n *html.Node) []*html.Node {
	var children []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, c)
	}
	return children
}

// Length is the DOM length of n: byte length for character data, child count otherwise.
func Length(n *html.Node) int {
	if n == nil {
		return 0
	}
	if IsCharacterData(n) {
		return len(n.Data)
	}
	return ChildCount(n)
}

// IsInclusiveAncestor reports whether ancestor is n or one of its ancestors.
func IsInclusiveAncestor(ancestor, n *html.Node) bool {
	if ancestor == nil {
		return false
	}
	for x := n; x != nil; x = x.Parent {
		if x == ancestor {
			return true
		}
	}
	return false
}

// IsAncestor reports whether ancestor is a proper ancestor of n.
func IsAncestor(ancestor, n *html.Node) bool {
	return n != nil && IsInclusiveAncestor(ancestor, n.Parent)
}

// ChildContaining returns the child of ancestor that is an inclusive ancestor of n.
func ChildContaining(ancestor, n *html.Node) *html.Node {
	for x := n; x != nil; x = x.Parent {
		if x.Parent == ancestor {
			return x
		}
	}
	return nil
}

// CommonAncestor returns the nearest inclusive ancestor shared by a and b.
func CommonAncestor(a, b *html.Node) *html.Node {
	for x := a; x != nil; x = x.Parent {
		if IsInclusiveAncestor(x, b) {
			return x
		}
	}
	return nil
}

// Ancestors returns the inclusive ancestors of n from n upwards.
func Ancestors(n *html.Node) []*html.Node {
	var chain []*html.Node
	for x := n; x != nil; x = x.Parent {
		chain = append(chain, x)
	}
	return chain
}

// CompareNodeOrder returns -1 if a precedes b in tree order, 1 if it follows, 0 if equal.
// An ancestor precedes its descendants.
func CompareNodeOrder(a, b *html.Node) int {
	if a == b {
		return 0
	}
	chainA := Ancestors(a)
	chainB := Ancestors(b)
	i, j := len(chainA)-1, len(chainB)-1
	if chainA[i] != chainB[j] {
		// Disconnected trees: order them by address-independent rule.
		return -1
	}
	for i >= 0 && j >= 0 && chainA[i] == chainB[j] {
		i--
		j--
	}
	if i < 0 {
		return -1
	}
	if j < 0 {
		return 1
	}
	if Index(chainA[i]) < Index(chainB[j]) {
		return -1
	}
	return 1
}

// NextNode returns the node following n in pre-order, staying within root.
func NextNode(n, root *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	return NextNodeSkippingChildren(n, root)
}

// NextNodeSkippingChildren returns the pre-order successor of n's subtree within root.
func NextNodeSkippingChildren(n, root *html.Node) *html.Node {
	for x := n; x != nil && x != root; x = x.Parent {
		if x.NextSibling != nil {
			return x.NextSibling
		}
	}
	return nil
}

// PreviousNode returns the node preceding n in pre-order, staying within root.
func PreviousNode(n, root *html.Node) *html.Node {
	if n == root {
		return nil
	}
	if n.PrevSibling != nil {
		x := n.PrevSibling
		for x.LastChild != nil {
			x = x.LastChild
		}
		return x
	}
	if n.Parent == root {
		return nil
	}
	return n.Parent
}

// FirstLeaf returns the deepest first descendant of n (n itself if it has no children).
func FirstLeaf(n *html.Node) *html.Node {
	for n != nil && n.FirstChild != nil {
		n = n.FirstChild
	}
	return n
}

// LastLeaf returns the deepest last descendant of n.
func LastLeaf(n *html.Node) *html.Node {
	for n != nil && n.LastChild != nil {
		n = n.LastChild
	}
	return n
}

// NextLeaf returns the first leaf after n's subtree within root.
func NextLeaf(n, root *html.Node) *html.Node {
	next := NextNodeSkippingChildren(n, root)
	if next == nil {
		return nil
	}
	return FirstLeaf(next)
}

// PreviousLeaf returns the last leaf before n within root.
func PreviousLeaf(n, root *html.Node) *html.Node {
	for x := n; x != nil && x != root; x = x.Parent {
		if x.PrevSibling != nil {
			return LastLeaf(x.PrevSibling)
		}
	}
	return nil
}

// NewElement creates a detached element for the given tag.
func NewElement(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

// NewElementNamed creates a detached element from a tag name.
func NewElementNamed(tag string) *html.Node {
	tag = strings.ToLower(tag)
	return &html.Node{Type: html.ElementNode, DataAtom: atom.Lookup([]byte(tag)), Data: tag}
}

// NewText creates a detached text node.
func NewText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// CloneShallow copies n without children or tree links.
func CloneShallow(n *html.Node) *html.Node {
	c := &html.Node{Type: n.Type, DataAtom: n.DataAtom, Data: n.Data, Namespace: n.Namespace}
	if len(n.Attr) > 0 {
		c.Attr = append([]html.Attribute(nil), n.Attr...)
	}
	return c
}

// CloneDeep copies n and all descendants.
func CloneDeep(n *html.Node) *html.Node {
	c := CloneShallow(n)
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.AppendChild(CloneDeep(ch))
	}
	return c
}

// Describe returns a short debug label such as "<p>" or "#text(ab)".
func Describe(n *html.Node) string {
	if n == nil {
		return "<nil>"
	}
	switch n.Type {
	case html.TextNode:
		return fmt.Sprintf("#text(%q)", n.Data)
	case html.ElementNode:
		return "<" + n.Data + ">"
	case html.CommentNode:
		return "#comment"
	case html.DocumentNode:
		return "#document"
	default:
		return "#node"
	}
}
