package breaker

import (
	"encoding/json"
	"time"
)

// ConsecutiveMetrics tracks the current run-length of same-outcome
// results since the last reset.
type ConsecutiveMetrics struct {
	FailureStreak int
	SuccessStreak int
}

// Consecutive trips on a consecutive failure streak and recovers on a
// consecutive success streak.
type Consecutive struct {
	FailureThreshold int
	SuccessThreshold int
}

var _ Policy = (*Consecutive)(nil)

func (p *Consecutive) Name() string { return "consecutive" }

func (p *Consecutive) InitialMetrics() Metrics { return ConsecutiveMetrics{} }

func (p *Consecutive) TrackSuccess(m Metrics, _ time.Time) Metrics {
	cm := m.(ConsecutiveMetrics)
	cm.SuccessStreak++
	cm.FailureStreak = 0
	return cm
}

func (p *Consecutive) TrackFailure(m Metrics, _ time.Time) Metrics {
	cm := m.(ConsecutiveMetrics)
	cm.FailureStreak++
	cm.SuccessStreak = 0
	return cm
}

func (p *Consecutive) WhenClosed(m Metrics) bool {
	return m.(ConsecutiveMetrics).FailureStreak >= p.FailureThreshold
}

func (p *Consecutive) WhenHalfOpened(m Metrics) HalfOpenDecision {
	cm := m.(ConsecutiveMetrics)
	if cm.FailureStreak > 0 {
		return HalfOpenReopen
	}
	if cm.SuccessStreak >= p.SuccessThreshold {
		return HalfOpenClose
	}
	return HalfOpenContinue
}

func (p *Consecutive) IsEqual(a, b Metrics) bool {
	return a.(ConsecutiveMetrics) == b.(ConsecutiveMetrics)
}

func (p *Consecutive) DecodeMetrics(raw []byte) (Metrics, error) {
	var cm ConsecutiveMetrics
	if err := json.Unmarshal(raw, &cm); err != nil {
		return nil, err
	}
	return cm, nil
}
