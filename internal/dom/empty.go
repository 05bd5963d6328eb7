package dom

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// EmptyOption tunes IsEmptyNode.
type EmptyOption uint8

const (
	// IgnoreSingleBR treats one <br> as no content (a padding line break).
	IgnoreSingleBR EmptyOption = 1 << iota
	// ListItemIsVisible treats descendant list items as content.
	ListItemIsVisible
	// TableCellIsVisible treats descendant table cells as content.
	TableCellIsVisible
)

// IsEmptyNode reports whether n has no visible content. Whitespace-only text outside
// preformatted content is invisible.
func IsEmptyNode(n *html.Node, opts EmptyOption) bool {
	seenBR := false
	return isEmptyNode(n, opts, &seenBR, true)
}

func isEmptyNode(n *html.Node, opts EmptyOption, seenBR *bool, root bool) bool {
	switch n.Type {
	case html.TextNode:
		if n.Data == "" {
			return true
		}
		return IsASCIIWhitespaceOnly(n.Data) && !IsPreformatted(n)
	case html.ElementNode:
	default:
		return true
	}
	if IsVoid(n) || IsReplaced(n) {
		if !root && IsBR(n) && opts&IgnoreSingleBR != 0 && !*seenBR {
			*seenBR = true
			return true
		}
		return false
	}
	if !root {
		if opts&ListItemIsVisible != 0 && IsListItem(n) {
			return false
		}
		if opts&TableCellIsVisible != 0 && IsTableCell(n) {
			return false
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !isEmptyNode(c, opts, seenBR, false) {
			return false
		}
	}
	return true
}

// IsASCIIWhitespace reports whether r is collapsible HTML whitespace.
func IsASCIIWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

// IsASCIIWhitespaceOnly reports whether s consists only of collapsible whitespace.
func IsASCIIWhitespaceOnly(s string) bool {
	for _, r := range s {
		if !IsASCIIWhitespace(r) {
			return false
		}
	}
	return true
}

// IsPreformatted reports whether whitespace in n is preserved.
func IsPreformatted(n *html.Node) bool {
	for x := n; x != nil; x = x.Parent {
		if x.Type != html.ElementNode {
			continue
		}
		switch StyleValue(x, "white-space") {
		case "pre", "pre-wrap", "break-spaces", "pre-line":
			return true
		case "normal", "nowrap":
			return false
		}
		if x.DataAtom == atom.Pre || x.DataAtom == atom.Textarea || x.DataAtom == atom.Listing || x.DataAtom == atom.Xmp {
			return true
		}
	}
	return false
}
