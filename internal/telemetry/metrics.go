package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/taskscope"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Authorization metrics
	AuthzDecisionsTotal metric.Int64Counter
	AuthzErrorsTotal    metric.Int64Counter

	// Task metrics
	TaskMutationsTotal metric.Int64Counter
	TasksListed        metric.Int64Histogram

	// Audit metrics
	AuditWriteErrorsTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// RecordDecision counts an authorization decision.
func (m *Metrics) RecordDecision(ctx context.Context, action, role string, allowed bool) {
	m.AuthzDecisionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("role", role),
		attribute.Bool("allowed", allowed),
	))
}

// RecordMutation counts an applied task mutation.
func (m *Metrics) RecordMutation(ctx context.Context, kind string) {
	m.TaskMutationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.AuthzDecisionsTotal, _ = meter.Int64Counter(
		"taskscope.authz.decisions.total",
		metric.WithDescription("Total number of authorization decisions"),
		metric.WithUnit("{decision}"),
	)

	m.AuthzErrorsTotal, _ = meter.Int64Counter(
		"taskscope.authz.errors.total",
		metric.WithDescription("Total number of authorization checks that failed to resolve organization scope"),
		metric.WithUnit("{error}"),
	)

	m.TaskMutationsTotal, _ = meter.Int64Counter(
		"taskscope.tasks.mutations.total",
		metric.WithDescription("Total number of applied task mutations"),
		metric.WithUnit("{mutation}"),
	)

	m.TasksListed, _ = meter.Int64Histogram(
		"taskscope.tasks.listed",
		metric.WithDescription("Number of tasks returned per listing"),
		metric.WithUnit("{task}"),
	)

	m.AuditWriteErrorsTotal, _ = meter.Int64Counter(
		"taskscope.audit.write_errors.total",
		metric.WithDescription("Total number of audit entries that could not be recorded"),
		metric.WithUnit("{error}"),
	)

	return m
}
