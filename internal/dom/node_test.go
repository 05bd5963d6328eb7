package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestPathing(t *testing.T) {
	doc, err := ParseHTML(`<html><head></head><body><div><p>Hello</p></div></body></html>`)
	require.NoError(t, err)

	// root -> html (0) -> body (1) -> div (0) -> p (0) -> text (0)
	targetPath := NodePath{0, 1, 0, 0, 0}

	node, err := GetNode(doc, targetPath)
	require.NoError(t, err)
	require.Equal(t, html.TextNode, node.Type)
	assert.Equal(t, "Hello", node.Data)

	path, err := GetPath(doc, node)
	require.NoError(t, err)
	assert.Equal(t, targetPath, path)
}

func TestGetNodeOutOfRange(t *testing.T) {
	doc, err := ParseHTML(`<p>Hello</p>`)
	require.NoError(t, err)

	_, err = GetNode(doc, NodePath{0, 1, 7})
	require.Error(t, err)
}

func TestTreeWalk(t *testing.T) {
	doc, err := ParseHTML(`<div><p>a<b>b</b></p><p>c</p></div>`)
	require.NoError(t, err)
	div := Body(doc).FirstChild

	var seen []string
	for n := div.FirstChild; n != nil; n = NextNode(n, div) {
		seen = append(seen, Describe(n))
	}
	assert.Equal(t, []string{"<p>", `#text("a")`, "<b>", `#text("b")`, "<p>", `#text("c")`}, seen)

	assert.Equal(t, `#text("a")`, Describe(FirstLeaf(div)))
	assert.Equal(t, `#text("c")`, Describe(LastLeaf(div)))
	assert.Equal(t, 2, ChildCount(div))
	assert.Equal(t, 1, Index(div.LastChild))
	assert.Equal(t, -1, Index(NewElement(0)))
}

func TestCompareNodeOrder(t *testing.T) {
	doc, err := ParseHTML(`<p id="a">x</p><p id="b">y</p>`)
	require.NoError(t, err)
	body := Body(doc)
	a, b := body.FirstChild, body.LastChild

	assert.Equal(t, -1, CompareNodeOrder(a, b))
	assert.Equal(t, 1, CompareNodeOrder(b, a))
	assert.Equal(t, 0, CompareNodeOrder(a, a))
	assert.Equal(t, -1, CompareNodeOrder(a, a.FirstChild))
	assert.Equal(t, body, CommonAncestor(a.FirstChild, b.FirstChild))
}
