package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// AttrVal returns the value of key, or "" when absent.
func AttrVal(n *html.Node, key string) string {
	v, _ := Attr(n, key)
	return v
}

// Attr returns the value of key and whether it is present.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func HasAttr(n *html.Node, key string) bool {
	_, ok := Attr(n, key)
	return ok
}

// SetAttr sets key on n directly, without recording it.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr removes key from n directly, without recording it.
func RemoveAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// SameAttributes reports whether a and b carry the same attribute set, ignoring order.
func SameAttributes(a, b *html.Node) bool {
	if len(a.Attr) != len(b.Attr) {
		return false
	}
	for _, attr := range a.Attr {
		v, ok := Attr(b, attr.Key)
		if !ok || v != attr.Val {
			return false
		}
	}
	return true
}

// StyleDecl is one declaration of an inline style attribute.
type StyleDecl struct {
	Property string
	Value    string
}

// ParseStyle splits a style attribute value into declarations.
func ParseStyle(style string) []StyleDecl {
	var decls []StyleDecl
	for _, part := range strings.Split(style, ";") {
		prop, val, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.TrimSpace(val)
		if prop == "" {
			continue
		}
		decls = append(decls, StyleDecl{Property: prop, Value: val})
	}
	return decls
}

// FormatStyle joins declarations back into an attribute value.
func FormatStyle(decls []StyleDecl) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.Property+": "+d.Value+";")
	}
	return strings.Join(parts, " ")
}

// StyleValue returns the lower-cased value of an inline style property of n.
func StyleValue(n *html.Node, prop string) string {
	style, ok := Attr(n, "style")
	if !ok {
		return ""
	}
	value := ""
	for _, d := range ParseStyle(style) {
		if d.Property == prop {
			value = strings.ToLower(d.Value)
		}
	}
	return value
}

// WithStyle returns the style attribute value of n with prop set to value.
// An empty value removes the property.
func WithStyle(n *html.Node, prop, value string) string {
	style, _ := Attr(n, "style")
	decls := ParseStyle(style)
	out := decls[:0]
	replaced := false
	for _, d := range decls {
		if d.Property != prop {
			out = append(out, d)
			continue
		}
		if value != "" && !replaced {
			out = append(out, StyleDecl{Property: prop, Value: value})
			replaced = true
		}
	}
	if value != "" && !replaced {
		out = append(out, StyleDecl{Property: prop, Value: value})
	}
	return FormatStyle(out)
}
