package lock

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aegiskit/aegis/pkg/keyspace"
	"github.com/aegiskit/aegis/pkg/xlog"
)

// EventFunc is invoked whenever a Handle operation produces a
// lifecycle event (see the Event* constants in events.go). name is the
// event name, payload is operation-specific (typically the Handle).
type EventFunc func(event string, payload any)

// Provider mints lock Handles bound to a shared Adapter, namespace, and
// default timing parameters.
type Provider struct {
	adapter                 Adapter
	namespace               *keyspace.Namespace
	onEvent                 EventFunc
	logger                  xlog.Logger
	metrics                 *lockMetrics
	defaultTTL              time.Duration
	defaultBlockingInterval time.Duration
	defaultBlockingTime     time.Duration
	newLockID               func() string
}

// Option configures a Provider.
type Option func(*Provider)

// WithNamespace sets the keyspace namespace every lock key is prefixed
// with.
func WithNamespace(ns *keyspace.Namespace) Option {
	return func(p *Provider) { p.namespace = ns }
}

// WithDefaultTTL sets the TTL used when Create is called without
// CreateOption WithTTL. Zero means locks never expire on their own.
func WithDefaultTTL(d time.Duration) Option {
	return func(p *Provider) { p.defaultTTL = d }
}

// WithDefaultBlockingInterval sets the poll interval AcquireBlocking uses
// when no per-call interval is given.
func WithDefaultBlockingInterval(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.defaultBlockingInterval = d
		}
	}
}

// WithDefaultBlockingTime sets the deadline AcquireBlocking uses when no
// per-call blockingTime is given.
func WithDefaultBlockingTime(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.defaultBlockingTime = d
		}
	}
}

// WithEventFunc registers a callback fired on every lock lifecycle
// event.
func WithEventFunc(f EventFunc) Option {
	return func(p *Provider) { p.onEvent = f }
}

// WithLogger attaches a Logger that records every lock lifecycle event
// at Debug level, independent of any WithEventFunc callback.
func WithLogger(logger xlog.Logger) Option {
	return func(p *Provider) { p.logger = logger }
}

// WithLockIDFunc overrides how a Handle's unique owner identity is
// generated. Defaults to uuid.NewString.
func WithLockIDFunc(f func() string) Option {
	return func(p *Provider) {
		if f != nil {
			p.newLockID = f
		}
	}
}

// WithMeterProvider attaches an otel MeterProvider; the Provider emits
// a lock.events counter tagged by event name. A nil or absent provider
// keeps metrics a no-op.
func WithMeterProvider(mp meterProvider) Option {
	return func(p *Provider) {
		m, err := newLockMetrics(mp)
		if err == nil {
			p.metrics = m
		}
	}
}

// NewProvider builds a Provider over adapter. Returns ErrNilAdapter if
// adapter is nil.
func NewProvider(adapter Adapter, opts ...Option) (*Provider, error) {
	if adapter == nil {
		return nil, ErrNilAdapter
	}
	p := &Provider{
		adapter:                 adapter,
		defaultBlockingInterval: 100 * time.Millisecond,
		defaultBlockingTime:     10 * time.Second,
		newLockID:               uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics == nil {
		p.metrics, _ = newLockMetrics(nil)
	}
	return p, nil
}

// CreateOption configures a single Create call.
type CreateOption func(*createConfig)

type createConfig struct {
	ttl time.Duration
}

// WithTTL overrides the provider's default TTL for this lock only.
func WithTTL(d time.Duration) CreateOption {
	return func(c *createConfig) { c.ttl = d }
}

// Create mints a new Handle for key. It does not contact the adapter;
// call Acquire (or one of its variants) to actually take the lock.
func (p *Provider) Create(key string, opts ...CreateOption) (*Handle, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrEmptyKey
	}
	cfg := createConfig{ttl: p.defaultTTL}
	for _, opt := range opts {
		opt(&cfg)
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
		provider: p,
		key:      key,
		prefixed: k.Prefixed(),
		lockID:   p.newLockID(),
		ttl:      cfg.ttl,
	}, nil
}

// defaultNamespace is used when a Provider is built without
// WithNamespace.
var defaultNamespace = keyspace.MustNew("lock")

func (p *Provider) emit(event string, payload any) {
	p.metrics.record(event)
	if p.logger != nil {
		p.logger.Debug(context.Background(), "lock event",
			slog.String(xlog.KeyComponent, "lock"),
			slog.String(xlog.KeyOperation, event),
		)
	}
	if p.onEvent != nil {
		p.onEvent(event, payload)
	}
}
