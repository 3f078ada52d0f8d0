package backoff

import (
	"math"
	"time"
)

// Constant always returns delay, regardless of attempt.
func Constant(delay time.Duration) Policy {
	return PolicyFunc(func(_ int, _ error) time.Duration { return delay })
}

// Linear returns clamp(min + slope*attempt, min, max).
func Linear(min, max time.Duration, slope time.Duration) Policy {
	if max < min {
		max = min
	}
	return PolicyFunc(func(attempt int, _ error) time.Duration {
		if attempt < 0 {
			attempt = 0
		}
		d := min + time.Duration(attempt)*slope
		return clampDuration(d, min, max)
	})
}

// Exponential returns min(max, min*multiplier^attempt). multiplier
// defaults to 2 when <= 0.
func Exponential(min, max time.Duration, multiplier float64) Policy {
	if max < min {
		max = min
	}
	if multiplier <= 0 {
		multiplier = 2
	}
	return PolicyFunc(func(attempt int, _ error) time.Duration {
		if attempt < 0 {
			attempt = 0
		}
		raw := float64(min) * math.Pow(multiplier, float64(attempt))
		if math.IsNaN(raw) || math.IsInf(raw, 1) || raw < 0 {
			return max
		}
		d := time.Duration(raw)
		return clampDuration(d, min, max)
	})
}

// Polynomial returns min(max, min*attempt^degree).
func Polynomial(min, max time.Duration, degree float64) Policy {
	if max < min {
		max = min
	}
	return PolicyFunc(func(attempt int, _ error) time.Duration {
		if attempt < 1 {
			attempt = 1
		}
		raw := float64(min) * math.Pow(float64(attempt), degree)
		if math.IsNaN(raw) || math.IsInf(raw, 1) || raw < 0 {
			return max
		}
		d := time.Duration(raw)
		return clampDuration(d, min, max)
	})
}

// Dynamic builds a Policy whose parameters are re-selected on every call
// by inspecting the error: selectPolicy is invoked with (attempt, err) and must
// return the Policy to delegate to for this call. Use this to, for
// instance, back off more aggressively for a rate-limit error than for a
// transient network error.
func Dynamic(selectPolicy func(attempt int, err error) Policy) Policy {
	return PolicyFunc(func(attempt int, err error) time.Duration {
		p := selectPolicy(attempt, err)
		if p == nil {
			return 0
		}
		return p.Next(attempt, err)
	})
}
