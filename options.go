package htmledit

import (
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/net/html/atom"

	"github.com/dannyswat/htmledit/internal/dom"
)

// ParagraphSeparator selects what Enter produces in the editing host.
type ParagraphSeparator string

const (
	SeparatorBR  ParagraphSeparator = "br"
	SeparatorP   ParagraphSeparator = "p"
	SeparatorDiv ParagraphSeparator = "div"
)

// ParseParagraphSeparator accepts "br", "p" or "div".
func ParseParagraphSeparator(s string) (ParagraphSeparator, bool) {
	switch ParagraphSeparator(s) {
	case SeparatorBR, SeparatorP, SeparatorDiv:
		return ParagraphSeparator(s), true
	}
	return "", false
}

func (s ParagraphSeparator) atom() atom.Atom {
	switch s {
	case SeparatorDiv:
		return atom.Div
	case SeparatorBR:
		return atom.Br
	default:
		return atom.P
	}
}

// blockAtom is the block element created for a new paragraph; <br> mode uses <p>.
func (s ParagraphSeparator) blockAtom() atom.Atom {
	if s == SeparatorDiv {
		return atom.Div
	}
	return atom.P
}

// Options holds the editor preferences.
type Options struct {
	ParagraphSeparator ParagraphSeparator
	// UseCSS makes indent, outdent and alignment write inline styles instead of
	// <blockquote> wrappers and align attributes.
	UseCSS bool
	// WhitespaceCompat deletes whole grapheme clusters on backspace.
	WhitespaceCompat bool
	// AlwaysDeleteHR deletes an <hr> on backspace without first moving the caret past it.
	AlwaysDeleteHR bool
	// ReturnInEmptyListItemClosesList makes Enter in an empty last list item leave the
	// list instead of outdenting nested items first.
	ReturnInEmptyListItemClosesList bool
	MaxUndo                         int
	Author                          string
	Tracer                          trace.Tracer
	// OnChangedRange receives the range touched by each top-level action.
	OnChangedRange func(dom.Range)
}

// Option configures an Editor.
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		ParagraphSeparator:              SeparatorDiv,
		ReturnInEmptyListItemClosesList: true,
		Tracer:                          noop.NewTracerProvider().Tracer("htmledit"),
	}
}

func WithParagraphSeparator(sep ParagraphSeparator) Option {
	return func(o *Options) {
		o.ParagraphSeparator = sep
	}
}

func WithCSS(enabled bool) Option {
	return func(o *Options) {
		o.UseCSS = enabled
	}
}

func WithWhitespaceCompat(enabled bool) Option {
	return func(o *Options) {
		o.WhitespaceCompat = enabled
	}
}

func WithAlwaysDeleteHR(enabled bool) Option {
	return func(o *Options) {
		o.AlwaysDeleteHR = enabled
	}
}

func WithReturnInEmptyListItemClosesList(enabled bool) Option {
	return func(o *Options) {
		o.ReturnInEmptyListItemClosesList = enabled
	}
}

// WithMaxUndo bounds the undo history.
func WithMaxUndo(n int) Option {
	return func(o *Options) {
		o.MaxUndo = n
	}
}

// WithAuthor is recorded on every undo delta.
func WithAuthor(author string) Option {
	return func(o *Options) {
		o.Author = author
	}
}

// WithTracer sets the tracer used for top-level action spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *Options) {
		if t != nil {
			o.Tracer = t
		}
	}
}

// WithChangedRangeHook installs a callback run with the changed range at the end of
// every top-level action.
func WithChangedRangeHook(fn func(dom.Range)) Option {
	return func(o *Options) {
		o.OnChangedRange = fn
	}
}
