package lock

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// meterProvider is satisfied by *metric.MeterProvider and by
// noop.MeterProvider in tests.
type meterProvider = metric.MeterProvider

type lockMetrics struct {
	events metric.Int64Counter
}

func newLockMetrics(mp meterProvider) (*lockMetrics, error) {
	if mp == nil {
		mp = noop.NewMeterProvider()
	}
	meter := mp.Meter("github.com/aegiskit/aegis/pkg/lock")
	events, err := meter.Int64Counter(
		"lock.events",
		metric.WithDescription("count of lock lifecycle events by name"),
	)
	if err != nil {
		return nil, err
	}
	return &lockMetrics{events: events}, nil
}

func (m *lockMetrics) record(event string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("event", event),
	))
}
