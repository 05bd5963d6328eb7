package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var blockTags = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Body: true, atom.Caption: true, atom.Center: true, atom.Col: true,
	atom.Colgroup: true, atom.Dd: true, atom.Details: true, atom.Dialog: true,
	atom.Dir: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Fieldset: true, atom.Figcaption: true, atom.Figure: true, atom.Footer: true,
	atom.Form: true, atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true, atom.Head: true, atom.Header: true,
	atom.Hgroup: true, atom.Hr: true, atom.Html: true, atom.Legend: true,
	atom.Li: true, atom.Listing: true, atom.Main: true, atom.Menu: true,
	atom.Nav: true, atom.Ol: true, atom.P: true, atom.Pre: true,
	atom.Section: true, atom.Summary: true, atom.Table: true, atom.Tbody: true,
	atom.Td: true, atom.Tfoot: true, atom.Th: true, atom.Thead: true,
	atom.Tr: true, atom.Ul: true, atom.Xmp: true,
}

var voidTags = map[atom.Atom]bool{
	atom.Area: true, atom.Base: true, atom.Br: true, atom.Col: true,
	atom.Embed: true, atom.Hr: true, atom.Img: true, atom.Input: true,
	atom.Link: true, atom.Meta: true, atom.Source: true, atom.Track: true,
	atom.Wbr: true,
}

// replaced content is atomic for editing even when the element has children.
var replacedTags = map[atom.Atom]bool{
	atom.Img: true, atom.Input: true, atom.Embed: true, atom.Object: true,
	atom.Iframe: true, atom.Video: true, atom.Audio: true, atom.Canvas: true,
	atom.Select: true, atom.Textarea: true, atom.Button: true, atom.Svg: true,
	atom.Math: true, atom.Meter: true, atom.Progress: true, atom.Wbr: true,
}

var formatBlockTags = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Footer: true, atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true, atom.Header: true,
	atom.Hgroup: true, atom.Main: true, atom.Nav: true, atom.P: true,
	atom.Pre: true, atom.Section: true,
}

// phrasingOnly elements may only contain inline content.
var phrasingOnly = map[atom.Atom]bool{
	atom.P: true, atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.H5: true, atom.H6: true, atom.Pre: true, atom.Address: true,
	atom.Dt: true, atom.Caption: true, atom.Legend: true, atom.Summary: true,
}

// IsElement reports whether n is an element with the given tag.
func IsElement(n *html.Node, a atom.Atom) bool {
	return n != nil && n.Type == html.ElementNode && n.DataAtom == a
}

// IsAnyElement reports whether n is an element whose tag is one of tags.
func IsAnyElement(n *html.Node, tags ...atom.Atom) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, a := range tags {
		if n.DataAtom == a {
			return true
		}
	}
	return false
}

func IsText(n *html.Node) bool {
	return n != nil && n.Type == html.TextNode
}

// IsCharacterData reports whether n carries its content in Data (text and comments).
func IsCharacterData(n *html.Node) bool {
	return n != nil && (n.Type == html.TextNode || n.Type == html.CommentNode)
}

func IsContent(n *html.Node) bool {
	return n != nil && (n.Type == html.ElementNode || n.Type == html.TextNode || n.Type == html.CommentNode)
}

// IsBlock classifies n by tag, overridden by an inline display declaration.
func IsBlock(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	switch StyleValue(n, "display") {
	case "block", "list-item", "table", "flex", "grid", "flow-root", "table-row", "table-cell":
		return true
	case "inline", "inline-block", "inline-flex", "inline-grid", "inline-table", "contents":
		return false
	}
	return blockTags[n.DataAtom]
}

// IsInline reports whether n is inline content (text, comment or a non-block element).
func IsInline(n *html.Node) bool {
	return IsContent(n) && !IsBlock(n)
}

func IsBR(n *html.Node) bool { return IsElement(n, atom.Br) }

func IsHR(n *html.Node) bool { return IsElement(n, atom.Hr) }

func IsImage(n *html.Node) bool { return IsElement(n, atom.Img) }

func IsList(n *html.Node) bool { return IsAnyElement(n, atom.Ul, atom.Ol, atom.Dl) }

func IsListItem(n *html.Node) bool { return IsAnyElement(n, atom.Li, atom.Dd, atom.Dt) }

func IsDiv(n *html.Node) bool { return IsElement(n, atom.Div) }

func IsBlockquote(n *html.Node) bool { return IsElement(n, atom.Blockquote) }

func IsParagraph(n *html.Node) bool { return IsElement(n, atom.P) }

// IsAnyTableElement covers every element that belongs to table structure.
func IsAnyTableElement(n *html.Node) bool {
	return IsAnyElement(n, atom.Table, atom.Thead, atom.Tbody, atom.Tfoot, atom.Tr,
		atom.Td, atom.Th, atom.Caption, atom.Col, atom.Colgroup)
}

// IsAnyTableElementButNotTable is a table-structure element other than <table> itself.
func IsAnyTableElementButNotTable(n *html.Node) bool {
	return IsAnyTableElement(n) && !IsElement(n, atom.Table)
}

func IsTable(n *html.Node) bool { return IsElement(n, atom.Table) }

func IsTableCell(n *html.Node) bool { return IsAnyElement(n, atom.Td, atom.Th) }

// IsTableCellOrCaption is a cell-like container that holds flow content.
func IsTableCellOrCaption(n *html.Node) bool {
	return IsAnyElement(n, atom.Td, atom.Th, atom.Caption)
}

func IsHeader(n *html.Node) bool {
	return IsAnyElement(n, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6)
}

// IsFormatBlock reports whether n is a format-block element (p, div, headers, pre, ...).
func IsFormatBlock(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && formatBlockTags[n.DataAtom]
}

// IsLink is an <a> with an href attribute.
func IsLink(n *html.Node) bool {
	return IsElement(n, atom.A) && HasAttr(n, "href")
}

// IsMailCite is a quoted-mail wrapper: <blockquote type=cite> or <span _moz_quote=true>.
func IsMailCite(n *html.Node) bool {
	if IsBlockquote(n) {
		return strings.EqualFold(AttrVal(n, "type"), "cite")
	}
	if n != nil && n.Type == html.ElementNode {
		return strings.EqualFold(AttrVal(n, "_moz_quote"), "true")
	}
	return false
}

// IsVoid reports whether n is an element that cannot have children.
func IsVoid(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && voidTags[n.DataAtom]
}

// IsReplaced reports whether n renders as a single atomic box.
func IsReplaced(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && replacedTags[n.DataAtom]
}

// IsContainer reports whether n may have children.
func IsContainer(n *html.Node) bool {
	return n != nil && (n.Type == html.ElementNode && !voidTags[n.DataAtom] || n.Type == html.DocumentNode)
}

// IsStructuralRoot covers html, head and body.
func IsStructuralRoot(n *html.Node) bool {
	return IsAnyElement(n, atom.Html, atom.Head, atom.Body)
}

// IsInlineStyle is an element that only carries inline presentation.
func IsInlineStyle(n *html.Node) bool {
	return IsAnyElement(n, atom.B, atom.I, atom.U, atom.S, atom.Strike, atom.Em,
		atom.Strong, atom.Code, atom.Sub, atom.Sup, atom.Font, atom.Span, atom.Small,
		atom.Big, atom.Tt, atom.Mark, atom.Var, atom.Kbd, atom.Samp, atom.Cite,
		atom.Abbr, atom.Q, atom.Ins, atom.Del)
}

// CanContainTag reports whether an element may hold a child with the given tag.
// It is the subset of the HTML content model the editor needs.
func CanContainTag(parent *html.Node, child atom.Atom) bool {
	if parent == nil {
		return false
	}
	if parent.Type == html.DocumentNode {
		return child == atom.Html
	}
	if parent.Type != html.ElementNode || voidTags[parent.DataAtom] || replacedTags[parent.DataAtom] {
		return false
	}
	childIsBlock := blockTags[child]
	switch parent.DataAtom {
	case atom.Ul, atom.Ol, atom.Menu, atom.Dir:
		return child == atom.Li || child == atom.Ul || child == atom.Ol
	case atom.Dl:
		return child == atom.Dd || child == atom.Dt || child == atom.Div || child == atom.Dl
	case atom.Table:
		return child == atom.Caption || child == atom.Colgroup || child == atom.Thead ||
			child == atom.Tbody || child == atom.Tfoot || child == atom.Tr
	case atom.Thead, atom.Tbody, atom.Tfoot:
		return child == atom.Tr
	case atom.Tr:
		return child == atom.Td || child == atom.Th
	case atom.Colgroup:
		return child == atom.Col
	case atom.Html:
		return child == atom.Head || child == atom.Body
	case atom.A:
		return child != atom.A && !childIsBlock
	}
	switch child {
	case atom.Li:
		return false
	case atom.Dd, atom.Dt:
		return parent.DataAtom == atom.Div && IsElement(parent.Parent, atom.Dl)
	case atom.Tr, atom.Td, atom.Th, atom.Tbody, atom.Thead, atom.Tfoot, atom.Caption, atom.Col, atom.Colgroup:
		return false
	case atom.Html, atom.Head, atom.Body:
		return false
	}
	if phrasingOnly[parent.DataAtom] || !blockTags[parent.DataAtom] {
		return !childIsBlock
	}
	return true
}

// CanContainText reports whether text may be placed directly in n.
func CanContainText(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode || !IsContainer(n) || IsReplaced(n) {
		return false
	}
	switch n.DataAtom {
	case atom.Ul, atom.Ol, atom.Dl, atom.Table, atom.Thead, atom.Tbody, atom.Tfoot,
		atom.Tr, atom.Colgroup, atom.Html, atom.Head, atom.Menu, atom.Dir:
		return false
	}
	return true
}

// CanContain reports whether parent may hold child.
func CanContain(parent, child *html.Node) bool {
	switch {
	case child == nil:
		return false
	case child.Type == html.TextNode:
		return CanContainText(parent)
	case child.Type == html.CommentNode:
		return IsContainer(parent)
	case child.Type == html.ElementNode:
		if child.DataAtom == 0 {
			return CanContainText(parent)
		}
		if IsBlock(child) && !blockTags[child.DataAtom] {
			return IsContainer(parent) && blockTags[parent.DataAtom] && !phrasingOnly[parent.DataAtom]
		}
		return CanContainTag(parent, child.DataAtom)
	}
	return false
}

// IsEmptyInline is an inline container with no children.
func IsEmptyInline(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && !IsBlock(n) && IsContainer(n) &&
		!IsReplaced(n) && n.FirstChild == nil
}
