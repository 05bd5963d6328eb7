package htmledit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/dannyswat/htmledit/internal/txn"
)

func newRecordingTracer(t *testing.T) (*tracetest.SpanRecorder, Option) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return sr, WithTracer(tp.Tracer("htmledit-test"))
}

func spanAttrs(s sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := map[attribute.Key]attribute.Value{}
	for _, kv := range s.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestActionSpan(t *testing.T) {
	sr, opt := newRecordingTracer(t)
	e := newTestEditor(t, "<p>ab[]c</p>", opt)

	_, err := e.DeleteSelection(context.Background(), DirectionPrevious, Strip)
	require.NoError(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	s := spans[0]
	assert.Equal(t, "htmledit.delete", s.Name())
	attrs := spanAttrs(s)
	assert.Equal(t, "delete", attrs["htmledit.subaction"].AsString())
	assert.Equal(t, "previous", attrs["htmledit.direction"].AsString())
	assert.Equal(t, "handled", attrs["htmledit.result"].AsString())
	assert.NotEmpty(t, attrs["htmledit.delta"].AsString())
	assert.Positive(t, attrs["htmledit.operations"].AsInt64())
	assert.NotEqual(t, codes.Error, s.Status().Code)
}

func TestNestedActionHasOneSpan(t *testing.T) {
	sr, opt := newRecordingTracer(t)
	e := newTestEditor(t, "<p>a[bc]d</p>", opt)

	// the replaced selection is deleted inside the insertion
	_, err := e.InsertText(context.Background(), SubActionInsertText, "x")
	require.NoError(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "htmledit.insert-text", spans[0].Name())
}

func TestFailedActionSpanRecordsError(t *testing.T) {
	sr, opt := newRecordingTracer(t)
	e := newTestEditor(t, "<p>ab[]c</p>", opt)
	e.AddMutationListener(func(txn.Mutation) { e.Destroy() })

	_, err := e.DeleteSelection(context.Background(), DirectionPrevious, Strip)
	require.ErrorIs(t, err, ErrEditorDestroyed)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.NotEmpty(t, spans[0].Events(), "the error is recorded as an event")
}

func TestWithNilTracerKeepsDefault(t *testing.T) {
	e := newTestEditor(t, "<p>ab[]c</p>", WithTracer(nil))
	_, err := e.DeleteSelection(context.Background(), DirectionPrevious, Strip)
	require.NoError(t, err)
}
