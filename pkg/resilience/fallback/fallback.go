// Package fallback implements the Fallback resilience middleware: on a
// failure the configured ErrorPolicy allows, resolve a (possibly lazy)
// substitute value instead of propagating the error.
package fallback

import (
	"github.com/aegiskit/aegis/pkg/pipeline"
	"github.com/aegiskit/aegis/pkg/resilience"
	"github.com/aegiskit/aegis/pkg/task"
)

// Resolver lazily produces the fallback value. It receives the ctx the
// failing attempt ran under and the error that triggered the fallback,
// so it can itself be cancellation-aware or error-dependent.
type Resolver[T any] func(ctx *pipeline.Ctx, cause error) (T, error)

// Value returns a Resolver that always yields the same value,
// regardless of the triggering error.
func Value[T any](v T) Resolver[T] {
	return func(_ *pipeline.Ctx, _ error) (T, error) { return v, nil }
}

type config[T any] struct {
	errorPolicy resilience.ErrorPolicy[T]
	onFallback  resilience.OnFallback
}

func defaultConfig[T any]() config[T] {
	return config[T]{errorPolicy: resilience.DefaultErrorPolicy[T]}
}

// Option configures a Fallback middleware.
type Option[T any] func(*config[T])

// WithErrorPolicy overrides which outcomes trigger the fallback.
func WithErrorPolicy[T any](p resilience.ErrorPolicy[T]) Option[T] {
	return func(c *config[T]) {
		if p != nil {
			c.errorPolicy = p
		}
	}
}

// WithOnFallback registers a callback fired just before the fallback
// value is resolved.
func WithOnFallback[T any](f resilience.OnFallback) Option[T] {
	return func(c *config[T]) { c.onFallback = f }
}

// New builds a Fallback middleware around resolve.
func New[T any](resolve Resolver[T], opts ...Option[T]) task.Middleware[T] {
	cfg := defaultConfig[T]()
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(ctx *pipeline.Ctx, next task.Thunk[T]) (T, error) {
		val, err := next(ctx)
		if !cfg.errorPolicy(val, err) {
			return val, err
		}
		if cfg.onFallback != nil {
			cfg.onFallback(err)
		}
		return resolve(ctx, err)
	}
}
