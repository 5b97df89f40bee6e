package metrics

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the pipeline's metric instruments.
type AppMetrics struct {
	ExternalRequestsTotal     metric.Int64Counter
	GenerationDurationSeconds metric.Float64Histogram
	DenylistReportsTotal      metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments only once.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("TripAdviserBot")
		var err error
		m := &AppMetrics{}

		m.ExternalRequestsTotal, err = meter.Int64Counter(
			"external_requests_total",
			metric.WithDescription("Total number of external service requests issued by the pipeline"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create external_requests_total: %v", err)
		}

		m.GenerationDurationSeconds, err = meter.Float64Histogram(
			"itinerary_generation_duration_seconds",
			metric.WithDescription("Duration of full itinerary pipeline runs in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itinerary_generation_duration_seconds: %v", err)
		}

		m.DenylistReportsTotal, err = meter.Int64Counter(
			"denylist_reports_total",
			metric.WithDescription("Total number of user-reported bad POIs"),
			metric.WithUnit("{report}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create denylist_reports_total: %v", err)
		}

		appMetrics = m
	})
}

// ObserveGenerationDuration records one completed pipeline run. Safe to call
// before InitAppMetrics; the observation is simply dropped.
func ObserveGenerationDuration(ctx context.Context, d time.Duration) {
	if appMetrics == nil {
		return
	}
	appMetrics.GenerationDurationSeconds.Record(ctx, d.Seconds())
}

// CountExternalRequest increments the external request counter for one
// outbound call, labelled with the target service name.
func CountExternalRequest(ctx context.Context, service string) {
	if appMetrics == nil {
		return
	}
	appMetrics.ExternalRequestsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("service", service)))
}

// CountDenylistReport increments the report counter.
func CountDenylistReport(ctx context.Context) {
	if appMetrics == nil {
		return
	}
	appMetrics.DenylistReportsTotal.Add(ctx, 1)
}
