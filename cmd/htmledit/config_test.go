package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dannyswat/htmledit"
	"github.com/dannyswat/htmledit/internal/txn"
)

func TestEditorOptions(t *testing.T) {
	opts, err := DefaultConfig().editorOptions()
	require.NoError(t, err)
	assert.NotEmpty(t, opts)

	c := DefaultConfig()
	c.ParagraphSeparator = "span"
	_, err = c.editorOptions()
	assert.Error(t, err)

	c = DefaultConfig()
	c.MaxUndo = -1
	_, err = c.editorOptions()
	assert.Error(t, err)
}

func TestTracingDisabled(t *testing.T) {
	tr, err := newTracing(TraceConfig{}, &bytes.Buffer{})
	require.NoError(t, err)
	require.NotNil(t, tr.tracer)
	assert.Nil(t, tr.provider)
	assert.NoError(t, tr.Shutdown(context.Background()))
}

func TestTracingStdout(t *testing.T) {
	var buf bytes.Buffer
	tr, err := newTracing(TraceConfig{Enabled: true, Exporter: "stdout"}, &buf)
	require.NoError(t, err)
	c := DefaultConfig()
	_, err = runScript(context.Background(), c, mustScript(t, "actions:\n  - action: delete\n"), "<p>ab[]</p>", false, htmledit.WithTracer(tr.tracer))
	require.NoError(t, err)
	require.NoError(t, tr.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "htmledit.delete")
}

func TestTracingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spans.json")
	tr, err := newTracing(TraceConfig{Enabled: true, Exporter: "file", FilePath: path}, &bytes.Buffer{})
	require.NoError(t, err)
	_, err = runScript(context.Background(), DefaultConfig(), mustScript(t, "actions:\n  - action: indent\n"), "<p>[]a</p>", false, htmledit.WithTracer(tr.tracer))
	require.NoError(t, err)
	require.NoError(t, tr.Shutdown(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "htmledit.indent")
}

func TestTracingErrors(t *testing.T) {
	_, err := newTracing(TraceConfig{Enabled: true, Exporter: "file"}, &bytes.Buffer{})
	assert.Error(t, err)
	_, err = newTracing(TraceConfig{Enabled: true, Exporter: "zipkin"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestOpsCommand(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "old.html")
	newPath := filepath.Join(dir, "new.html")
	require.NoError(t, os.WriteFile(oldPath, []byte("<p>abc</p>"), 0o644))
	require.NoError(t, os.WriteFile(newPath, []byte("<p>abXc</p>"), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"ops", "--old", oldPath, "--new", newPath})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, execute())

	var d txn.Delta
	require.NoError(t, json.Unmarshal(out.Bytes(), &d))
	require.NotEmpty(t, d.Operations)
	assert.Equal(t, txn.OpInsertText, d.Operations[0].Type)
	assert.Equal(t, "X", d.Operations[0].NewValue)
	assert.NotEqual(t, d.BaseHash, d.ResultHash)
}
