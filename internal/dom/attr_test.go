package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/net/html/atom"
)

func TestStyleValue(t *testing.T) {
	el := NewElement(atom.Div)
	SetAttr(el, "style", "Margin-Left: 40PX; color:red;;bogus")

	assert.Equal(t, "40px", StyleValue(el, "margin-left"))
	assert.Equal(t, "red", StyleValue(el, "color"))
	assert.Equal(t, "", StyleValue(el, "padding"))
}

func TestWithStyle(t *testing.T) {
	el := NewElement(atom.Div)
	SetAttr(el, "style", "color: red; text-align: left;")

	assert.Equal(t, "color: red; text-align: center;", WithStyle(el, "text-align", "center"))
	assert.Equal(t, "color: red;", WithStyle(el, "text-align", ""))
	assert.Equal(t, "color: red; text-align: left; margin-left: 40px;", WithStyle(el, "margin-left", "40px"))
	assert.Equal(t, "", WithStyle(NewElement(atom.P), "color", ""))
}

func TestAttributes(t *testing.T) {
	a, b := NewElement(atom.P), NewElement(atom.P)
	SetAttr(a, "class", "x")
	assert.True(t, HasAttr(a, "class"))
	assert.False(t, SameAttributes(a, b))

	SetAttr(b, "class", "x")
	assert.True(t, SameAttributes(a, b))

	SetAttr(a, "class", "y")
	assert.Equal(t, "y", AttrVal(a, "class"))
	RemoveAttr(a, "class")
	_, ok := Attr(a, "class")
	assert.False(t, ok)
}

func TestIsEmptyNode(t *testing.T) {
	body := parseBody(t, `<p> </p><p><br></p><p><br><br></p><ul><li></li></ul><pre> </pre><p><img></p>`)
	nodes := Children(body)

	assert.True(t, IsEmptyNode(nodes[0], 0))
	assert.False(t, IsEmptyNode(nodes[1], 0))
	assert.True(t, IsEmptyNode(nodes[1], IgnoreSingleBR))
	assert.False(t, IsEmptyNode(nodes[2], IgnoreSingleBR))
	assert.True(t, IsEmptyNode(nodes[3], 0))
	assert.False(t, IsEmptyNode(nodes[3], ListItemIsVisible))
	assert.False(t, IsEmptyNode(nodes[4], 0))
	assert.False(t, IsEmptyNode(nodes[5], 0))
}
