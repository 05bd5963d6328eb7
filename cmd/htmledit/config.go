package main

import (
	"fmt"

	"github.com/dannyswat/htmledit"
)

// Config is the preference file, htmledit.yaml by default. Every key can also be set
// through an HTMLEDIT_ environment variable, e.g. HTMLEDIT_PARAGRAPH_SEPARATOR=p.
type Config struct {
	ParagraphSeparator string      `mapstructure:"paragraph_separator"`
	UseCSS             bool        `mapstructure:"use_css"`
	WhitespaceCompat   bool        `mapstructure:"whitespace_compat"`
	AlwaysDeleteHR     bool        `mapstructure:"always_delete_hr"`
	ReturnClosesList   bool        `mapstructure:"return_closes_list"`
	MaxUndo            int         `mapstructure:"max_undo"`
	Author             string      `mapstructure:"author"`
	LogLevel           string      `mapstructure:"log_level"`
	Trace              TraceConfig `mapstructure:"trace"`
}

// TraceConfig selects where action spans go.
type TraceConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Exporter is "stdout" or "file".
	Exporter string `mapstructure:"exporter"`
	FilePath string `mapstructure:"file_path"`
}

// DefaultConfig matches the editor defaults.
func DefaultConfig() Config {
	return Config{
		ParagraphSeparator: string(htmledit.SeparatorDiv),
		ReturnClosesList:   true,
		MaxUndo:            100,
		Author:             "htmledit",
		LogLevel:           "warn",
		Trace:              TraceConfig{Exporter: "stdout"},
	}
}

// editorOptions converts the preferences into editor options.
func (c Config) editorOptions() ([]htmledit.Option, error) {
	sep, ok := htmledit.ParseParagraphSeparator(c.ParagraphSeparator)
	if !ok {
		return nil, fmt.Errorf("invalid paragraph_separator %q: want br, p or div", c.ParagraphSeparator)
	}
	if c.MaxUndo < 0 {
		return nil, fmt.Errorf("invalid max_undo %d", c.MaxUndo)
	}
	return []htmledit.Option{
		htmledit.WithParagraphSeparator(sep),
		htmledit.WithCSS(c.UseCSS),
		htmledit.WithWhitespaceCompat(c.WhitespaceCompat),
		htmledit.WithAlwaysDeleteHR(c.AlwaysDeleteHR),
		htmledit.WithReturnInEmptyListItemClosesList(c.ReturnClosesList),
		htmledit.WithMaxUndo(c.MaxUndo),
		htmledit.WithAuthor(c.Author),
	}, nil
}
