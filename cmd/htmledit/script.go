package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dannyswat/htmledit"
)

// Script is an edit script: actions run in order against one document.
type Script struct {
	Name    string   `yaml:"name"`
	Actions []Action `yaml:"actions"`
}

// Action is one step of a script. Which fields apply depends on Action.
type Action struct {
	Action    string `yaml:"action"`
	Direction string `yaml:"direction,omitempty"`
	// Strip removes inline wrappers emptied by a deletion; defaults to true.
	Strip     *bool  `yaml:"strip,omitempty"`
	Text      string `yaml:"text,omitempty"`
	IME       bool   `yaml:"ime,omitempty"`
	Tag       string `yaml:"tag,omitempty"`
	Bullet    string `yaml:"bullet,omitempty"`
	SelectAll bool   `yaml:"select_all,omitempty"`
	Value     string `yaml:"value,omitempty"`
	Repeat    int    `yaml:"repeat,omitempty"`
}

// loadScript decodes a YAML script. Unknown keys are rejected.
func loadScript(r io.Reader) (*Script, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var s Script
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("script is empty")
		}
		return nil, fmt.Errorf("parsing script: %w", err)
	}
	for i, a := range s.Actions {
		if _, ok := actionHandlers[a.Action]; !ok {
			return nil, fmt.Errorf("action %d: unknown action %q", i+1, a.Action)
		}
		if a.Repeat < 0 {
			return nil, fmt.Errorf("action %d: negative repeat", i+1)
		}
	}
	return &s, nil
}

type actionHandler func(ctx context.Context, e *htmledit.Editor, a Action) (htmledit.EditResult, error)

var actionHandlers = map[string]actionHandler{
	"delete": func(ctx context.Context, e *htmledit.Editor, a Action) (htmledit.EditResult, error) {
		dir := htmledit.DirectionPrevious
		if a.Direction != "" {
			var ok bool
			if dir, ok = htmledit.ParseDirection(a.Direction); !ok {
				return htmledit.Canceled, fmt.Errorf("unknown direction %q", a.Direction)
			}
		}
		strip := htmledit.Strip
		if a.Strip != nil && !*a.Strip {
			strip = htmledit.NoStrip
		}
		return e.DeleteSelection(ctx, dir, strip)
	},
	"insert-text": func(ctx context.Context, e *htmledit.Editor, a Action) (htmledit.EditResult, error) {
		sub := htmledit.SubActionInsertText
		if a.IME {
			sub = htmledit.SubActionInsertTextComingFromIME
		}
		return e.InsertText(ctx, sub, a.Text)
	},
	"insert-paragraph": func(ctx context.Context, e *htmledit.Editor, _ Action) (htmledit.EditResult, error) {
		return e.InsertParagraphSeparator(ctx)
	},
	"insert-line-break": func(ctx context.Context, e *htmledit.Editor, _ Action) (htmledit.EditResult, error) {
		return e.InsertLineBreak(ctx)
	},
	"list": func(ctx context.Context, e *htmledit.Editor, a Action) (htmledit.EditResult, error) {
		tag := a.Tag
		if tag == "" {
			tag = "ul"
		}
		return e.MakeOrChangeList(ctx, tag, a.Bullet, a.SelectAll)
	},
	"remove-list": func(ctx context.Context, e *htmledit.Editor, _ Action) (htmledit.EditResult, error) {
		return e.RemoveList(ctx)
	},
	"indent": func(ctx context.Context, e *htmledit.Editor, _ Action) (htmledit.EditResult, error) {
		return e.Indent(ctx)
	},
	"outdent": func(ctx context.Context, e *htmledit.Editor, _ Action) (htmledit.EditResult, error) {
		return e.Outdent(ctx)
	},
	"align": func(ctx context.Context, e *htmledit.Editor, a Action) (htmledit.EditResult, error) {
		return e.Align(ctx, a.Value)
	},
	"format-block": func(ctx context.Context, e *htmledit.Editor, a Action) (htmledit.EditResult, error) {
		return e.FormatBlock(ctx, a.Tag)
	},
	"position": func(ctx context.Context, e *htmledit.Editor, a Action) (htmledit.EditResult, error) {
		switch strings.ToLower(a.Value) {
		case "absolute":
			return e.SetAbsolutePosition(ctx)
		case "static", "":
			return e.SetStaticPosition(ctx)
		}
		return htmledit.Canceled, fmt.Errorf("unknown position %q", a.Value)
	},
	"undo": func(_ context.Context, e *htmledit.Editor, _ Action) (htmledit.EditResult, error) {
		if !e.CanUndo() {
			return htmledit.Canceled, nil
		}
		return htmledit.Handled, e.Undo()
	},
	"redo": func(_ context.Context, e *htmledit.Editor, _ Action) (htmledit.EditResult, error) {
		if !e.CanRedo() {
			return htmledit.Canceled, nil
		}
		return htmledit.Handled, e.Redo()
	},
}
