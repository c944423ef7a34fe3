// Package observe provides observability primitives for the kirana server:
// OpenTelemetry metrics with a Prometheus exporter bridge, lightweight
// tracing, and HTTP middleware tying them to structured logs.
//
// A package-level default [Metrics] instance ([DefaultMetrics]) is provided
// for convenience; tests should use [NewMetrics] with their own
// [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope for all kirana metrics.
const meterName = "github.com/kiranavoice/kirana"

// Metrics holds the metric instruments for the command-understanding
// pipeline and its HTTP surface. All fields are safe for concurrent use.
type Metrics struct {
	// InterpretDuration tracks end-to-end pipeline latency in seconds.
	InterpretDuration metric.Float64Histogram

	// ModelDuration tracks statistical classifier inference latency in
	// seconds. The model is the only non-trivial compute in the pipeline.
	ModelDuration metric.Float64Histogram

	// Commands counts interpreted utterances. Attributes: "intent"
	// (ADD/SALE/CHECK/UNKNOWN) and "resolved" (item lookup outcome).
	Commands metric.Int64Counter

	// UnresolvedItems counts utterances whose item token matched nothing
	// above the similarity floor.
	UnresolvedItems metric.Int64Counter

	// ResolverScore records the similarity score of each resolution
	// attempt, accepted or not.
	ResolverScore metric.Float64Histogram

	// ClassifierDegraded is 1 while the server runs without a statistical
	// model (rule-only mode), 0 otherwise.
	ClassifierDegraded metric.Int64UpDownCounter

	// HTTPRequestDuration tracks request processing time in seconds.
	// Attributes: "method", "path", "status".
	HTTPRequestDuration metric.Float64Histogram
}

// NewMetrics creates all instruments on mp. Pass nil to use the global
// meter provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(meterName)

	var (
		m   Metrics
		err error
	)
	if m.InterpretDuration, err = meter.Float64Histogram(
		"kirana.interpret.duration",
		metric.WithDescription("End-to-end command interpretation latency"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.ModelDuration, err = meter.Float64Histogram(
		"kirana.model.duration",
		metric.WithDescription("Statistical intent model inference latency"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.Commands, err = meter.Int64Counter(
		"kirana.commands",
		metric.WithDescription("Interpreted utterances by intent and resolution outcome"),
	); err != nil {
		return nil, err
	}
	if m.UnresolvedItems, err = meter.Int64Counter(
		"kirana.resolver.unresolved",
		metric.WithDescription("Utterances whose item token could not be resolved"),
	); err != nil {
		return nil, err
	}
	if m.ResolverScore, err = meter.Float64Histogram(
		"kirana.resolver.score",
		metric.WithDescription("Similarity score of item resolution attempts"),
	); err != nil {
		return nil, err
	}
	if m.ClassifierDegraded, err = meter.Int64UpDownCounter(
		"kirana.classifier.degraded",
		metric.WithDescription("1 while running rule-only (no statistical model)"),
	); err != nil {
		return nil, err
	}
	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"kirana.http.request.duration",
		metric.WithDescription("HTTP request processing time"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	return &m, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the process-wide [Metrics] instance, creating it on
// the global meter provider on first use. Call [InitProvider] before the
// first use so instruments land on the real provider.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		m, err := NewMetrics(nil)
		if err != nil {
			// Instrument creation only fails on invalid names; keep a
			// zero Metrics whose nil instruments are guarded by the
			// record helpers.
			m = &Metrics{}
		}
		defaultMetrics = m
	})
	return defaultMetrics
}

// RecordCommand records one interpreted utterance. Nil-safe so callers can
// pass an unconfigured *Metrics in tests.
func (m *Metrics) RecordCommand(ctx context.Context, intentLabel string, resolved bool) {
	if m == nil || m.Commands == nil {
		return
	}
	m.Commands.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("intent", intentLabel),
			attribute.Bool("resolved", resolved),
		),
	)
}

// RecordResolution records the similarity score of a resolution attempt and
// bumps the unresolved counter when the item stayed unmatched.
func (m *Metrics) RecordResolution(ctx context.Context, score float64, resolved bool) {
	if m == nil {
		return
	}
	if m.ResolverScore != nil {
		m.ResolverScore.Record(ctx, score)
	}
	if !resolved && m.UnresolvedItems != nil {
		m.UnresolvedItems.Add(ctx, 1)
	}
}

// RecordInterpretDuration records pipeline latency. Nil-safe.
func (m *Metrics) RecordInterpretDuration(ctx context.Context, seconds float64) {
	if m == nil || m.InterpretDuration == nil {
		return
	}
	m.InterpretDuration.Record(ctx, seconds)
}

// RecordModelDuration records classifier inference latency. Nil-safe.
func (m *Metrics) RecordModelDuration(ctx context.Context, seconds float64) {
	if m == nil || m.ModelDuration == nil {
		return
	}
	m.ModelDuration.Record(ctx, seconds)
}

// SetDegraded marks the rule-only gauge. Call once at startup.
func (m *Metrics) SetDegraded(ctx context.Context, degraded bool) {
	if m == nil || m.ClassifierDegraded == nil {
		return
	}
	if degraded {
		m.ClassifierDegraded.Add(ctx, 1)
	}
}
