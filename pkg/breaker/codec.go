package breaker

import (
	"encoding/json"
	"time"
)

// wireState is the JSON shape persisted as stateJSON: a tagged status
// plus the policy-opaque metrics blob, so any store can persist it as
// a single column or document field.
type wireState struct {
	Status    Status          `json:"status"`
	Attempt   int             `json:"attempt"`
	StartedAt time.Time       `json:"startedAt"`
	Metrics   json.RawMessage `json:"metrics"`
}

// EncodeState serializes s for storage as stateJSON.
func EncodeState(s State) ([]byte, error) {
	metrics, err := json.Marshal(s.Metrics)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireState{
		Status:    s.Status,
		Attempt:   s.Attempt,
		StartedAt: s.StartedAt,
		Metrics:   metrics,
	})
}

// DecodeState rehydrates a stored stateJSON blob, using policy to
// recover the concrete Metrics type. raw == nil returns false with a
// zero State, signalling the key has never been persisted.
func DecodeState(raw []byte, policy Policy) (State, bool, error) {
	if raw == nil {
		return State{}, false, nil
	}
	var w wireState
	if err := json.Unmarshal(raw, &w); err != nil {
		return State{}, false, err
	}
	metrics, err := policy.DecodeMetrics(w.Metrics)
	if err != nil {
		return State{}, false, err
	}
	return State{Status: w.Status, Attempt: w.Attempt, StartedAt: w.StartedAt, Metrics: metrics}, true, nil
}
