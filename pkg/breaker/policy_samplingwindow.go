package breaker

import (
	"encoding/json"
	"time"
)

// Bucket aggregates outcomes observed within one sampleTimeSpan slice
// of the window.
type Bucket struct {
	StartedAt time.Time
	Failures  int
	Successes int
}

// SamplingWindowMetrics is an ordered set of time buckets covering at
// most TimeSpan of wall-clock time.
type SamplingWindowMetrics struct {
	Buckets []Bucket
}

func (m SamplingWindowMetrics) record(now time.Time, sampleSpan, timeSpan time.Duration, failure bool) SamplingWindowMetrics {
	if sampleSpan <= 0 {
		sampleSpan = time.Second
	}
	start := now.Truncate(sampleSpan)

	buckets := make([]Bucket, 0, len(m.Buckets)+1)
	cutoff := now.Add(-timeSpan)
	for _, b := range m.Buckets {
		if b.StartedAt.After(cutoff) {
			buckets = append(buckets, b)
		}
	}

	if n := len(buckets); n > 0 && buckets[n-1].StartedAt.Equal(start) {
		if failure {
			buckets[n-1].Failures++
		} else {
			buckets[n-1].Successes++
		}
		return SamplingWindowMetrics{Buckets: buckets}
	}

	nb := Bucket{StartedAt: start}
	if failure {
		nb.Failures = 1
	} else {
		nb.Successes = 1
	}
	buckets = append(buckets, nb)
	return SamplingWindowMetrics{Buckets: buckets}
}

func (m SamplingWindowMetrics) totals() (failures, total int) {
	for _, b := range m.Buckets {
		failures += b.Failures
		total += b.Failures + b.Successes
	}
	return failures, total
}

// SamplingWindow trips when the failure ratio across time buckets
// spanning TimeSpan exceeds FailureThreshold, once at least
// MinimumRPS*TimeSpan.Seconds() observations have landed.
type SamplingWindow struct {
	TimeSpan         time.Duration
	SampleTimeSpan   time.Duration
	MinimumRPS       float64
	FailureThreshold float64
}

var _ Policy = (*SamplingWindow)(nil)

func (p *SamplingWindow) Name() string { return "sampling_window" }

func (p *SamplingWindow) InitialMetrics() Metrics { return SamplingWindowMetrics{} }

func (p *SamplingWindow) TrackSuccess(m Metrics, now time.Time) Metrics {
	return m.(SamplingWindowMetrics).record(now, p.SampleTimeSpan, p.TimeSpan, false)
}

func (p *SamplingWindow) TrackFailure(m Metrics, now time.Time) Metrics {
	return m.(SamplingWindowMetrics).record(now, p.SampleTimeSpan, p.TimeSpan, true)
}

func (p *SamplingWindow) minimumObservations() int {
	return int(p.MinimumRPS * p.TimeSpan.Seconds())
}

func (p *SamplingWindow) WhenClosed(m Metrics) bool {
	failures, total := m.(SamplingWindowMetrics).totals()
	if total < p.minimumObservations() {
		return false
	}
	return float64(failures)/float64(total) > p.FailureThreshold
}

func (p *SamplingWindow) WhenHalfOpened(m Metrics) HalfOpenDecision {
	sm := m.(SamplingWindowMetrics)
	if n := len(sm.Buckets); n > 0 && sm.Buckets[n-1].Failures > 0 {
		return HalfOpenReopen
	}
	failures, total := sm.totals()
	if total < p.minimumObservations() {
		return HalfOpenContinue
	}
	if float64(failures)/float64(total) > p.FailureThreshold {
		return HalfOpenReopen
	}
	return HalfOpenClose
}

func (p *SamplingWindow) IsEqual(a, b Metrics) bool {
	am, bm := a.(SamplingWindowMetrics), b.(SamplingWindowMetrics)
	if len(am.Buckets) != len(bm.Buckets) {
		return false
	}
	for i := range am.Buckets {
		if am.Buckets[i] != bm.Buckets[i] {
			return false
		}
	}
	return true
}

func (p *SamplingWindow) DecodeMetrics(raw []byte) (Metrics, error) {
	var sm SamplingWindowMetrics
	if err := json.Unmarshal(raw, &sm); err != nil {
		return nil, err
	}
	return sm, nil
}
