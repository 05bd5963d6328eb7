package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// contentEditableState returns "true", "false" or "" (inherit) for an element.
func contentEditableState(n *html.Node) string {
	v, ok := Attr(n, "contenteditable")
	if !ok {
		return ""
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "true", "plaintext-only":
		return "true"
	case "false":
		return "false"
	}
	return ""
}

// FindEditingHost returns the outermost contenteditable element containing n, or nil.
func FindEditingHost(n *html.Node) *html.Node {
	var host *html.Node
	for x := n; x != nil; x = x.Parent {
		if x.Type != html.ElementNode {
			continue
		}
		switch contentEditableState(x) {
		case "true":
			host = x
		case "false":
			host = nil
		}
	}
	return host
}

// IsEditable reports whether n is inside host and not inside a contenteditable=false island.
func IsEditable(n, host *html.Node) bool {
	if n == nil || host == nil || !IsInclusiveAncestor(host, n) {
		return false
	}
	for x := n; x != nil && x != host; x = x.Parent {
		if x.Type == html.ElementNode && contentEditableState(x) == "false" {
			return false
		}
	}
	return true
}

// IsEditableElementInHost reports whether n is an editable element other than host itself.
func IsEditableElementInHost(n, host *html.Node) bool {
	return n != host && n != nil && n.Type == html.ElementNode && IsEditable(n, host)
}
