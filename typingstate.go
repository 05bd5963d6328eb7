package htmledit

import (
	"golang.org/x/net/html"

	"github.com/dannyswat/htmledit/internal/dom"
)

// typingState holds inline style elements the next inserted text is wrapped in.
type typingState struct {
	// pending is ordered outermost first. Each entry is a childless clone.
	pending []*html.Node
}

func (t *typingState) clear() {
	t.pending = nil
}

func (t *typingState) push(el *html.Node) {
	t.pending = append(t.pending, el)
}

// cachedStyle is an inline style element the caret was inside of before an action.
type cachedStyle struct {
	tag   string
	attrs []html.Attribute
}

// cacheInlineStyles records the inline style ancestors of the caret, outermost first.
func (e *Editor) cacheInlineStyles() []cachedStyle {
	if e.sel.RangeCount() == 0 {
		return nil
	}
	var out []cachedStyle
	for n := e.sel.Start().Container; n != nil && n != e.host; n = n.Parent {
		if dom.IsBlock(n) {
			break
		}
		if dom.IsInlineStyle(n) {
			out = append(out, cachedStyle{tag: n.Data, attrs: append([]html.Attribute(nil), n.Attr...)})
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// restoreCachedStyles queues the cached styles the caret is no longer inside of, so text
// typed next keeps the formatting it would have had before the action.
func (e *Editor) restoreCachedStyles(cached []cachedStyle) {
	if len(cached) == 0 || !e.sel.IsCollapsed() {
		return
	}
	current := e.cacheInlineStyles()
	for _, c := range cached {
		if containsStyle(current, c) || containsStyle(pendingStyles(e.typing.pending), c) {
			continue
		}
		el := dom.NewElementNamed(c.tag)
		el.Attr = append([]html.Attribute(nil), c.attrs...)
		e.typing.push(el)
	}
}

func pendingStyles(pending []*html.Node) []cachedStyle {
	out := make([]cachedStyle, 0, len(pending))
	for _, n := range pending {
		out = append(out, cachedStyle{tag: n.Data, attrs: n.Attr})
	}
	return out
}

func containsStyle(set []cachedStyle, c cachedStyle) bool {
	for _, s := range set {
		if s.tag != c.tag || len(s.attrs) != len(c.attrs) {
			continue
		}
		same := true
		for i := range s.attrs {
			if s.attrs[i] != c.attrs[i] {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}
