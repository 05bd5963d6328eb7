package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const serviceName = "htmledit"

// tracing owns the tracer provider of one command run.
type tracing struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	closer   io.Closer
}

// newTracing builds a provider from cfg. When tracing is disabled the tracer is a no-op.
func newTracing(cfg TraceConfig, stdout io.Writer) (*tracing, error) {
	if !cfg.Enabled {
		return &tracing{tracer: noop.NewTracerProvider().Tracer(serviceName)}, nil
	}

	t := &tracing{}
	var w io.Writer
	switch cfg.Exporter {
	case "stdout", "":
		w = stdout
	case "file":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("trace.file_path required for file exporter")
		}
		f, err := os.Create(cfg.FilePath)
		if err != nil {
			return nil, fmt.Errorf("create trace file: %w", err)
		}
		w = f
		t.closer = f
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s", cfg.Exporter)
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	t.provider = sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSyncer(exporter),
	)
	t.tracer = t.provider.Tracer(serviceName)
	return t, nil
}

// Shutdown flushes pending spans.
func (t *tracing) Shutdown(ctx context.Context) error {
	var err error
	if t.provider != nil {
		err = t.provider.Shutdown(ctx)
	}
	if t.closer != nil {
		if cerr := t.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
