package httpaccess

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/kbukum/httpaccess/httpaccess"

// Metric names.
const (
	MetricClientBuilds       = "httpaccess.client.builds"
	MetricClientBuildTime    = "httpaccess.client.build.duration"
	MetricClientAcquisitions = "httpaccess.client.acquisitions"
	MetricReleases           = "httpaccess.connection.releases"
	MetricPoolRejections     = "httpaccess.pool.rejections"
)

type metrics struct {
	builds       metric.Int64Counter
	buildTime    metric.Float64Histogram
	acquisitions metric.Int64Counter
	releases     metric.Int64Counter
	rejections   metric.Int64Counter
}

func newMetrics(provider metric.MeterProvider) (*metrics, error) {
	meter := provider.Meter(instrumentationName)

	builds, err := meter.Int64Counter(MetricClientBuilds,
		metric.WithDescription("HTTP clients constructed, by slot and pooling"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricClientBuilds, err)
	}

	buildTime, err := meter.Float64Histogram(MetricClientBuildTime,
		metric.WithDescription("Time spent constructing HTTP clients"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricClientBuildTime, err)
	}

	acquisitions, err := meter.Int64Counter(MetricClientAcquisitions,
		metric.WithDescription("Clients handed out, by slot and bypass decision"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricClientAcquisitions, err)
	}

	releases, err := meter.Int64Counter(MetricReleases,
		metric.WithDescription("Connection releases, by pooling"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricReleases, err)
	}

	rejections, err := meter.Int64Counter(MetricPoolRejections,
		metric.WithDescription("Dials refused because the connection pool stayed full"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricPoolRejections, err)
	}

	return &metrics{
		builds:       builds,
		buildTime:    buildTime,
		acquisitions: acquisitions,
		releases:     releases,
		rejections:   rejections,
	}, nil
}

func (m *metrics) recordBuild(slot Slot, pooled bool, took time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("slot", slot.String()),
		attribute.Bool("pooled", pooled),
	)
	ctx := context.Background()
	m.builds.Add(ctx, 1, attrs)
	m.buildTime.Record(ctx, took.Seconds(), attrs)
}

func (m *metrics) recordAcquire(ctx context.Context, slot Slot, bypassed bool) {
	m.acquisitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("slot", slot.String()),
		attribute.Bool("bypassed", bypassed),
	))
}

func (m *metrics) recordRelease(ctx context.Context, pooled bool) {
	m.releases.Add(ctx, 1, metric.WithAttributes(attribute.Bool("pooled", pooled)))
}

func (m *metrics) recordPoolRejection() {
	m.rejections.Add(context.Background(), 1)
}
