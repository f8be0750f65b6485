// Package telemetry wires the process-wide slog logger and, when an OTLP
// endpoint is configured, OpenTelemetry traces and logs.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"greenearth/internal/config"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const ServiceName = "greenearth"

// ParseLevel maps LOG_LEVEL values onto slog levels. Unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup installs the default slog logger writing text to w, plus an OTLP
// exporter pipeline and a blob log sink when configured. The returned shutdown
// flushes everything that was started and should be deferred by the caller.
func Setup(ctx context.Context, cfg *config.Config, w io.Writer) (shutdown func(context.Context) error, err error) {
	level := ParseLevel(cfg.Logging.Level)
	handlers := fanout{slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})}

	var closers []func(context.Context) error
	shutdown = func(ctx context.Context) error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i](ctx))
		}
		return errors.Join(errs...)
	}
	defer func() {
		if err != nil {
			_ = shutdown(ctx)
		}
	}()

	if endpoint := cfg.Tracing.Endpoint; endpoint != "" {
		res, err := resource.New(ctx, resource.WithAttributes(
			attribute.String("service.name", ServiceName),
		))
		if err != nil {
			return shutdown, fmt.Errorf("build otel resource: %w", err)
		}

		traceExporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
		if err != nil {
			return shutdown, fmt.Errorf("create trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(traceExporter),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.TraceContext{})
		closers = append(closers, tp.Shutdown)

		logExporter, err := otlploghttp.New(ctx, otlploghttp.WithEndpointURL(endpoint))
		if err != nil {
			return shutdown, fmt.Errorf("create log exporter: %w", err)
		}
		lp := sdklog.NewLoggerProvider(
			sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
			sdklog.WithResource(res),
		)
		global.SetLoggerProvider(lp)
		closers = append(closers, lp.Shutdown)
		handlers = append(handlers, otelslog.NewHandler(ServiceName, otelslog.WithLoggerProvider(lp)))
	}

	if cfg.Logging.BlobContainer != "" {
		sink, err := NewBlobSink(ctx, BlobSinkConfig{
			AccountName: cfg.Cache.AzureAccountName,
			AccountKey:  cfg.Cache.AzureAccountKey,
			Container:   cfg.Logging.BlobContainer,
			Level:       level,
		})
		if err != nil {
			return shutdown, fmt.Errorf("create blob log sink: %w", err)
		}
		closers = append(closers, func(context.Context) error { return sink.Close() })
		handlers = append(handlers, sink)
	}

	var handler slog.Handler = handlers
	if len(handlers) == 1 {
		handler = handlers[0]
	}
	slog.SetDefault(slog.New(handler))
	return shutdown, nil
}
