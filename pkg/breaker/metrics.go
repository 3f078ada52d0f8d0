package breaker

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// meterProvider is satisfied by *metric.MeterProvider and by
// noop.MeterProvider in tests.
type meterProvider = metric.MeterProvider

type breakerMetrics struct {
	transitions metric.Int64Counter
}

func newBreakerMetrics(mp meterProvider) (*breakerMetrics, error) {
	if mp == nil {
		mp = noop.NewMeterProvider()
	}
	meter := mp.Meter("github.com/aegiskit/aegis/pkg/breaker")
	transitions, err := meter.Int64Counter(
		"breaker.state_transitions",
		metric.WithDescription("count of breaker state transitions by event"),
	)
	if err != nil {
		return nil, err
	}
	return &breakerMetrics{transitions: transitions}, nil
}

func (m *breakerMetrics) record(event string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("event", event),
	))
}
