package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/dannyswat/htmledit"
	"github.com/dannyswat/htmledit/internal/dom"
	"github.com/dannyswat/htmledit/internal/log"
	"github.com/dannyswat/htmledit/internal/marker"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Apply an edit script to a document",
	Long: `Apply the actions of a YAML edit script to an HTML document.

The selection is written into the document with markers: "[" and "]" inside text,
"{" and "}" between nodes. "[]" is a caret.

Examples:
  htmledit run --script edits.yaml --in doc.html
  htmledit run --script edits.yaml --in doc.html --out result.html --diff
  htmledit run --script edits.yaml --in doc.html --markers

Script format:
  actions:
    - action: delete          # direction: previous (default), next, previous-word, ...
    - action: insert-text
      text: "hello"
    - action: insert-paragraph
    - action: list
      tag: ol
    - action: align
      value: center`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringP("script", "s", "", "edit script (required)")
	runCmd.Flags().StringP("in", "i", "", "input document (required)")
	runCmd.Flags().StringP("out", "o", "", "write the result here instead of stdout")
	runCmd.Flags().Bool("diff", false, "print a diff of the editing host before and after")
	runCmd.Flags().Bool("markers", false, "write the final selection into the output")
	_ = runCmd.MarkFlagRequired("script")
	_ = runCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(runCmd)
}

// runOutput is what a script run produced.
type runOutput struct {
	Before string
	After  string
}

func runRun(cmd *cobra.Command, _ []string) error {
	scriptPath, _ := cmd.Flags().GetString("script")
	inPath, _ := cmd.Flags().GetString("in")
	outPath, _ := cmd.Flags().GetString("out")
	showDiff, _ := cmd.Flags().GetBool("diff")
	markers, _ := cmd.Flags().GetBool("markers")

	f, err := os.Open(scriptPath)
	if err != nil {
		return fmt.Errorf("opening script: %w", err)
	}
	script, err := loadScript(f)
	_ = f.Close()
	if err != nil {
		return err
	}
	src, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inPath, err)
	}

	tr, err := newTracing(cfg.Trace, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if err := tr.Shutdown(context.Background()); err != nil {
			log.WarnErr(log.CatCLI, "shutting down tracing", err)
		}
	}()

	out, err := runScript(cmd.Context(), cfg, script, string(src), markers, htmledit.WithTracer(tr.tracer))
	if err != nil {
		return err
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(out.After), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}
	} else if !showDiff {
		fmt.Fprintln(cmd.OutOrStdout(), out.After)
	}
	if showDiff {
		fmt.Fprintln(cmd.OutOrStdout(), formatDiff(out.Before, out.After))
	}
	return nil
}

// runScript applies script to the document src. The result is the editing host's
// content, with the final selection as markers when withMarkers is set.
func runScript(ctx context.Context, c Config, script *Script, src string, withMarkers bool, extra ...htmledit.Option) (runOutput, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	opts, err := c.editorOptions()
	if err != nil {
		return runOutput{}, err
	}
	doc, ranges, err := marker.Parse(src)
	if err != nil {
		return runOutput{}, err
	}
	e, err := htmledit.New(doc, append(opts, extra...)...)
	if err != nil {
		return runOutput{}, err
	}
	if len(ranges) > 0 {
		if err := e.SetSelection(ranges...); err != nil {
			return runOutput{}, err
		}
	}
	before, err := e.HTML()
	if err != nil {
		return runOutput{}, err
	}

	for i, a := range script.Actions {
		handler := actionHandlers[a.Action]
		if handler == nil {
			return runOutput{}, fmt.Errorf("action %d: unknown action %q", i+1, a.Action)
		}
		for n := 0; n < max(a.Repeat, 1); n++ {
			res, err := handler(ctx, e, a)
			if err != nil {
				return runOutput{}, fmt.Errorf("action %d (%s): %w", i+1, a.Action, err)
			}
			log.Info(log.CatCLI, "action done", "index", i+1, "action", a.Action, "result", res.String())
		}
	}

	var after string
	if withMarkers {
		after, err = marker.Render(e.Host(), e.Selection().Ranges())
	} else {
		after, err = dom.RenderChildren(e.Host())
	}
	if err != nil {
		return runOutput{}, err
	}
	return runOutput{Before: before, After: after}, nil
}

// formatDiff marks deletions as [-text-] and insertions as {+text+}.
func formatDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	dmp.DiffCleanupSemantic(diffs)

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			b.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			b.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			b.WriteString("{+" + d.Text + "+}")
		}
	}
	return b.String()
}
