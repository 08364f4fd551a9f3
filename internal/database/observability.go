package database

import (
	"context"
	"time"

	"github.com/gochi-demo/user-rest-api/internal/apperr"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/gochi-demo/user-rest-api/internal/database"

type observer struct {
	tracer   trace.Tracer
	queries  metric.Int64Counter
	failures metric.Int64Counter
	latency  metric.Float64Histogram
	slow     time.Duration
	system   string
}

// Option configures a SQLUserStore.
type Option func(*observer)

// WithTracer replaces the global OpenTelemetry tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *observer) { o.tracer = tracer }
}

// WithMeter records query metrics on meter instead of the global one.
func WithMeter(meter metric.Meter) Option {
	return func(o *observer) { o.instrument(meter) }
}

// WithSlowQueryThreshold sets the duration after which a statement is
// logged as slow.
func WithSlowQueryThreshold(d time.Duration) Option {
	return func(o *observer) { o.slow = d }
}

func newObserver(system string, opts ...Option) *observer {
	o := &observer{
		tracer: otel.Tracer(instrumentationName),
		slow:   200 * time.Millisecond,
		system: system,
	}
	o.instrument(otel.Meter(instrumentationName))
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *observer) instrument(meter metric.Meter) {
	o.queries, _ = meter.Int64Counter("users.store.queries",
		metric.WithDescription("Statements executed against the users table"),
		metric.WithUnit("{query}"),
	)
	o.failures, _ = meter.Int64Counter("users.store.errors",
		metric.WithDescription("Statements that failed with a storage error"),
		metric.WithUnit("{error}"),
	)
	o.latency, _ = meter.Float64Histogram("users.store.duration",
		metric.WithDescription("Statement duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500),
	)
}

// begin starts a span for operation. The returned func ends it and records
// the outcome; not-found and duplicate results are expected outcomes, not
// failures.
func (o *observer) begin(ctx context.Context, operation string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := o.tracer.Start(ctx, "users."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", o.system),
			attribute.String("db.operation", operation),
			attribute.String("db.sql.table", "users"),
		),
	)

	return ctx, func(err error) {
		elapsed := time.Since(start)
		attrs := metric.WithAttributes(
			attribute.String("db.operation", operation),
			attribute.String("db.system", o.system),
		)
		o.queries.Add(ctx, 1, attrs)
		o.latency.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)

		if err != nil && apperr.IsStorage(err) {
			o.failures.Add(ctx, 1, attrs)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			log.Ctx(ctx).Error().Err(err).Str("operation", operation).Dur("duration", elapsed).Msg("query failed")
		} else if elapsed > o.slow {
			log.Ctx(ctx).Warn().Str("operation", operation).Dur("duration", elapsed).Msg("slow query")
		}
		span.End()
	}
}
