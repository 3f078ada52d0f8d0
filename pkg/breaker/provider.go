package breaker

import (
	"context"
	"log/slog"
	"time"

	"github.com/aegiskit/aegis/pkg/backoff"
	"github.com/aegiskit/aegis/pkg/keyspace"
	"github.com/aegiskit/aegis/pkg/xlog"
)

var defaultNamespace = keyspace.MustNew("breaker")

// EventFunc receives every event a Handle dispatches.
type EventFunc func(event string, payload any)

// Provider constructs circuit breaker Handles bound to a key,
// namespace, and adapter. Providers are effectively immutable after
// construction.
type Provider struct {
	adapter         Adapter
	namespace       *keyspace.Namespace
	onEvent         EventFunc
	logger          xlog.Logger
	metrics         *breakerMetrics
	defaultPolicy   Policy
	defaultWait     backoff.Policy
	defaultSlowCall time.Duration
	defaultTrigger  Trigger
	errorPolicy     func(error) bool
}

// Option configures a Provider.
type Option func(*Provider)

// WithNamespace overrides the key namespace (default "breaker").
func WithNamespace(ns *keyspace.Namespace) Option {
	return func(p *Provider) { p.namespace = ns }
}

// WithDefaultPolicy sets the Policy used when Create is called without
// WithPolicy.
func WithDefaultPolicy(policy Policy) Option {
	return func(p *Provider) { p.defaultPolicy = policy }
}

// WithDefaultBackoff sets the Open→HalfOpen wait policy used when
// Create is called without WithBackoff.
func WithDefaultBackoff(wait backoff.Policy) Option {
	return func(p *Provider) { p.defaultWait = wait }
}

// WithDefaultSlowCallTime sets the threshold RunOrFail uses to
// classify a call as slow.
func WithDefaultSlowCallTime(d time.Duration) Option {
	return func(p *Provider) { p.defaultSlowCall = d }
}

// WithDefaultTrigger sets which outcomes (error, slow call, or both)
// count toward failure tracking.
func WithDefaultTrigger(t Trigger) Option {
	return func(p *Provider) { p.defaultTrigger = t }
}

// WithErrorPolicy sets the predicate that decides whether a thrown
// error counts as a tracked failure (false means the error is
// policy-filtered and counts as success).
func WithErrorPolicy(fn func(error) bool) Option {
	return func(p *Provider) { p.errorPolicy = fn }
}

// WithEventFunc registers a callback invoked on every dispatched event.
func WithEventFunc(fn EventFunc) Option {
	return func(p *Provider) { p.onEvent = fn }
}

// WithLogger attaches a Logger that records every dispatched event at
// Debug level, independent of any WithEventFunc callback.
func WithLogger(logger xlog.Logger) Option {
	return func(p *Provider) { p.logger = logger }
}

// WithMeterProvider attaches an otel MeterProvider; the Provider emits
// a breaker.state_transitions counter tagged by event name. A nil or
// absent provider keeps metrics a no-op.
func WithMeterProvider(mp meterProvider) Option {
	return func(p *Provider) {
		m, err := newBreakerMetrics(mp)
		if err == nil {
			p.metrics = m
		}
	}
}

// NewProvider builds a Provider over adapter.
func NewProvider(adapter Adapter, opts ...Option) (*Provider, error) {
	if adapter == nil {
		return nil, ErrNilAdapter
	}
	p := &Provider{
		adapter:         adapter,
		namespace:       defaultNamespace,
		defaultWait:     backoff.Constant(60 * time.Second),
		defaultSlowCall: 0,
		defaultTrigger:  TriggerOnlyError,
		errorPolicy:     func(error) bool { return true },
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics == nil {
		p.metrics, _ = newBreakerMetrics(nil)
	}
	return p, nil
}

// CreateOption configures a single Create call.
type CreateOption func(*createConfig)

type createConfig struct {
	policy      Policy
	wait        backoff.Policy
	slowCall    time.Duration
	trigger     Trigger
	errorPolicy func(error) bool
}

// WithPolicy overrides the provider's default Policy for this Handle.
func WithPolicy(policy Policy) CreateOption {
	return func(c *createConfig) { c.policy = policy }
}

// WithBackoff overrides the provider's default Open→HalfOpen wait
// policy for this Handle.
func WithBackoff(wait backoff.Policy) CreateOption {
	return func(c *createConfig) { c.wait = wait }
}

// WithSlowCallTime overrides the provider's default slow-call threshold
// for this Handle.
func WithSlowCallTime(d time.Duration) CreateOption {
	return func(c *createConfig) { c.slowCall = d }
}

// WithTrigger overrides the provider's default Trigger for this
// Handle.
func WithTrigger(t Trigger) CreateOption {
	return func(c *createConfig) { c.trigger = t }
}

// WithCallErrorPolicy overrides the provider's default error policy for
// this Handle.
func WithCallErrorPolicy(fn func(error) bool) CreateOption {
	return func(c *createConfig) { c.errorPolicy = fn }
}

// Create builds a Handle bound to key.
func (p *Provider) Create(key string, opts ...CreateOption) (*Handle, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	cfg := createConfig{
		policy:      p.defaultPolicy,
		wait:        p.defaultWait,
		slowCall:    p.defaultSlowCall,
		trigger:     p.defaultTrigger,
		errorPolicy: p.errorPolicy,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.policy == nil {
		return nil, ErrNilPolicy
	}
	if cfg.errorPolicy == nil {
		cfg.errorPolicy = func(error) bool { return true }
	}

	ns := p.namespace
	if ns == nil {
		ns = defaultNamespace
	}
	k, err := ns.NewKey(key)
	if err != nil {
		return nil, err
	}

	return &Handle{
		provider:    p,
		key:         key,
		prefixed:    k.Prefixed(),
		policy:      cfg.policy,
		wait:        cfg.wait,
		slowCall:    cfg.slowCall,
		trigger:     cfg.trigger,
		errorPolicy: cfg.errorPolicy,
	}, nil
}

func (p *Provider) emit(event string, payload any) {
	p.metrics.record(event)
	if p.logger != nil {
		p.logger.Debug(context.Background(), "breaker event",
			slog.String(xlog.KeyComponent, "breaker"),
			slog.String(xlog.KeyOperation, event),
		)
	}
	if p.onEvent != nil {
		p.onEvent(event, payload)
	}
}
