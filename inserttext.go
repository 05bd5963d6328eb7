package htmledit

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dannyswat/htmledit/internal/dom"
	"github.com/dannyswat/htmledit/internal/log"
)

// InsertText inserts text at the caret, replacing the selection. sub is
// SubActionInsertText for typing or SubActionInsertTextComingFromIME for composition.
// Line feeds become <br> elements outside preformatted text. Pending typing styles wrap
// the inserted text. Consecutive typed text undoes as one step.
func (e *Editor) InsertText(ctx context.Context, sub SubAction, text string) (EditResult, error) {
	if sub != SubActionInsertText && sub != SubActionInsertTextComingFromIME {
		return Canceled, fmt.Errorf("%w: %s is not a text insertion", ErrInvalidArgument, sub)
	}
	if e.sel.RangeCount() == 0 {
		return Canceled, ErrNoSelection
	}
	continuing := e.typingRun
	mergeable := false
	res, err := e.runAction(ctx, sub, DirectionNone, func() (EditResult, error) {
		if !e.selectionIsEditable() {
			return Canceled, nil
		}
		deleted := false
		if !e.sel.IsCollapsed() {
			if _, err := e.DeleteSelection(ctx, DirectionNone, NoStrip); err != nil {
				return Canceled, err
			}
			deleted = true
		}
		if text == "" {
			return Canceled, nil
		}
		p, err := e.caret()
		if err != nil {
			return Canceled, err
		}
		if !p.InText() && !dom.CanContainText(p.Container) {
			return Canceled, nil
		}
		styled := len(e.typing.pending) > 0
		if p, err = e.applyTypingStyles(p); err != nil {
			return Canceled, err
		}
		if p, err = e.insertLines(p, text); err != nil {
			return Canceled, err
		}
		e.collapseAt(p)
		mergeable = sub == SubActionInsertText && !deleted && !styled && !strings.Contains(text, "\n")
		if mergeable && continuing && e.top != nil && e.top.subAction == SubActionInsertText {
			e.tx.MergeWithPrevious()
		}
		return Handled, nil
	})
	e.typingRun = err == nil && res == Handled && mergeable
	return res, err
}

// applyTypingStyles wraps an empty text node in clones of the pending style elements at
// p and returns the point inside it.
func (e *Editor) applyTypingStyles(p dom.Point) (dom.Point, error) {
	pending := e.typing.pending
	if len(pending) == 0 {
		return p, nil
	}
	e.typing.clear()
	var outer, inner *html.Node
	for _, el := range pending {
		c := dom.CloneShallow(el)
		if outer == nil {
			outer = c
		} else {
			inner.AppendChild(c)
		}
		inner = c
	}
	t := dom.NewText("")
	inner.AppendChild(t)
	log.Debug(log.CatBlock, "apply typing styles", "outer", dom.Describe(outer), "count", len(pending))
	if err := e.ws.InsertElement(outer, p); err != nil {
		return p, err
	}
	return dom.PointAtStart(t), nil
}

// insertLines inserts text at p and returns the point after it.
func (e *Editor) insertLines(p dom.Point, text string) (dom.Point, error) {
	pre := dom.IsPreformatted(p.Container)
	if pre {
		r, err := e.ws.InsertText(p, text)
		return r.End, err
	}
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			br := dom.NewElement(atom.Br)
			if err := e.ws.InsertElement(br, p); err != nil {
				return p, err
			}
			p = dom.PointAfter(br)
		}
		if line == "" {
			continue
		}
		r, err := e.ws.InsertText(p, line)
		if err != nil {
			return p, err
		}
		p = r.End
	}
	return p, nil
}
