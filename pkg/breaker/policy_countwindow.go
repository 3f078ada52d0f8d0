package breaker

import (
	"encoding/json"
	"time"
)

// CountWindowMetrics is a fixed-capacity ring buffer of recent outcomes
// (true = success, false = failure).
type CountWindowMetrics struct {
	Samples []bool
	Head    int
}

func (m CountWindowMetrics) push(size int, ok bool) CountWindowMetrics {
	if size <= 0 {
		size = 1
	}
	samples := make([]bool, len(m.Samples))
	copy(samples, m.Samples)
	if len(samples) < size {
		samples = append(samples, ok)
		return CountWindowMetrics{Samples: samples, Head: 0}
	}
	samples[m.Head] = ok
	return CountWindowMetrics{Samples: samples, Head: (m.Head + 1) % size}
}

func (m CountWindowMetrics) failureRatio() (ratio float64, total int) {
	total = len(m.Samples)
	if total == 0 {
		return 0, 0
	}
	failures := 0
	for _, ok := range m.Samples {
		if !ok {
			failures++
		}
	}
	return float64(failures) / float64(total), total
}

// CountWindow trips when the failure ratio over a bounded ring buffer
// of outcomes exceeds FailureThreshold, once at least
// MinimumNumberOfCalls observations have been collected.
type CountWindow struct {
	Size                 int
	MinimumNumberOfCalls int
	FailureThreshold     float64
}

var _ Policy = (*CountWindow)(nil)

func (p *CountWindow) Name() string { return "count_window" }

func (p *CountWindow) InitialMetrics() Metrics { return CountWindowMetrics{} }

func (p *CountWindow) TrackSuccess(m Metrics, _ time.Time) Metrics {
	return m.(CountWindowMetrics).push(p.Size, true)
}

func (p *CountWindow) TrackFailure(m Metrics, _ time.Time) Metrics {
	return m.(CountWindowMetrics).push(p.Size, false)
}

func (p *CountWindow) WhenClosed(m Metrics) bool {
	cm := m.(CountWindowMetrics)
	ratio, total := cm.failureRatio()
	if total < p.MinimumNumberOfCalls {
		return false
	}
	return ratio > p.FailureThreshold
}

func (p *CountWindow) WhenHalfOpened(m Metrics) HalfOpenDecision {
	cm := m.(CountWindowMetrics)
	if len(cm.Samples) > 0 && !cm.Samples[(cm.Head-1+len(cm.Samples))%len(cm.Samples)] {
		return HalfOpenReopen
	}
	if len(cm.Samples) >= p.MinimumNumberOfCalls {
		ratio, _ := cm.failureRatio()
		if ratio <= p.FailureThreshold {
			return HalfOpenClose
		}
		return HalfOpenReopen
	}
	return HalfOpenContinue
}

func (p *CountWindow) IsEqual(a, b Metrics) bool {
	am, bm := a.(CountWindowMetrics), b.(CountWindowMetrics)
	if am.Head != bm.Head || len(am.Samples) != len(bm.Samples) {
		return false
	}
	for i := range am.Samples {
		if am.Samples[i] != bm.Samples[i] {
			return false
		}
	}
	return true
}

func (p *CountWindow) DecodeMetrics(raw []byte) (Metrics, error) {
	var cm CountWindowMetrics
	if err := json.Unmarshal(raw, &cm); err != nil {
		return nil, err
	}
	return cm, nil
}
