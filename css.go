package htmledit

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/dannyswat/htmledit/internal/dom"
	"github.com/dannyswat/htmledit/internal/log"
)

// marginSteps is the indentation step per CSS unit.
var marginSteps = map[string]float64{
	"px": 40,
	"em": 1,
	"ex": 1,
	"in": 0.5,
	"cm": 1,
	"mm": 10,
	"pt": 36,
	"pc": 3,
	"%":  4,
}

// startMarginProperty is margin-right for right-to-left content, else margin-left.
func startMarginProperty(n *html.Node) string {
	for x := n; x != nil; x = x.Parent {
		if x.Type != html.ElementNode {
			continue
		}
		if d := strings.ToLower(dom.StyleValue(x, "direction")); d != "" {
			if d == "rtl" {
				return "margin-right"
			}
			return "margin-left"
		}
		if d, ok := dom.Attr(x, "dir"); ok {
			if strings.EqualFold(d, "rtl") {
				return "margin-right"
			}
			return "margin-left"
		}
	}
	return "margin-left"
}

// parseLength splits a CSS length such as "40px" into its value and unit.
func parseLength(s string) (float64, string) {
	s = strings.TrimSpace(strings.ToLower(s))
	i := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.' && r != '-' && r != '+'
	})
	if i < 0 {
		i = len(s)
	}
	v, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0, ""
	}
	return v, s[i:]
}

// startMargin returns n's start margin in its own unit.
func startMargin(n *html.Node) float64 {
	v, _ := parseLength(dom.StyleValue(n, startMarginProperty(n)))
	return v
}

// setStyle writes value for prop in el's style attribute, dropping the attribute when
// nothing is left.
func (e *Editor) setStyle(el *html.Node, prop, value string) error {
	style := dom.WithStyle(el, prop, value)
	if style == "" {
		if !dom.HasAttr(el, "style") {
			return nil
		}
		return e.tx.RemoveAttribute(el, "style")
	}
	if style == dom.AttrVal(el, "style") {
		return nil
	}
	return e.tx.SetAttribute(el, "style", style)
}

// changeStartMargin moves el's start margin by steps indentation steps. A <div> left
// without attributes is replaced by its contents.
func (e *Editor) changeStartMargin(el *html.Node, steps int) error {
	prop := startMarginProperty(el)
	v, unit := parseLength(dom.StyleValue(el, prop))
	step, ok := marginSteps[unit]
	if !ok {
		unit, step = "px", marginSteps["px"]
		v = 0
	}
	v += float64(steps) * step
	value := ""
	if v > 0 {
		value = strconv.FormatFloat(v, 'f', -1, 64) + unit
	}
	log.Debug(log.CatIndent, "change margin", "element", dom.Describe(el), "property", prop, "value", value)
	if err := e.setStyle(el, prop, value); err != nil {
		return err
	}
	if value == "" && dom.IsDiv(el) && len(el.Attr) == 0 {
		return e.removeBlockContainer(el)
	}
	return nil
}
