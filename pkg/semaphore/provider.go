package semaphore

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aegiskit/aegis/pkg/keyspace"
	"github.com/aegiskit/aegis/pkg/xlog"
)

var defaultNamespace = keyspace.MustNew("semaphore")

// EventFunc receives every event a Handle dispatches.
type EventFunc func(event string, payload any)

// Provider constructs semaphore Handles bound to a key, namespace, and
// adapter. Providers are effectively immutable after construction.
type Provider struct {
	adapter                 Adapter
	namespace               *keyspace.Namespace
	onEvent                 EventFunc
	logger                  xlog.Logger
	defaultTTL              time.Duration
	defaultLimit            int
	defaultBlockingInterval time.Duration
	defaultBlockingTime     time.Duration
	newSlotID               func() string
}

// Option configures a Provider.
type Option func(*Provider)

// WithNamespace overrides the key namespace (default "semaphore").
func WithNamespace(ns *keyspace.Namespace) Option {
	return func(p *Provider) { p.namespace = ns }
}

// WithDefaultTTL sets the TTL used when Create is called without
// WithTTL. Zero means no expiration.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(p *Provider) { p.defaultTTL = ttl }
}

// WithDefaultLimit sets the limit used when Create is called without
// WithLimit.
func WithDefaultLimit(limit int) Option {
	return func(p *Provider) { p.defaultLimit = limit }
}

// WithDefaultBlockingInterval sets the poll interval AcquireBlocking uses
// when called without an explicit interval.
func WithDefaultBlockingInterval(d time.Duration) Option {
	return func(p *Provider) { p.defaultBlockingInterval = d }
}

// WithDefaultBlockingTime sets the deadline AcquireBlocking uses when
// called without an explicit blockingTime.
func WithDefaultBlockingTime(d time.Duration) Option {
	return func(p *Provider) { p.defaultBlockingTime = d }
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

// WithSlotIDFunc overrides the slot id generator (default uuid.NewString).
func WithSlotIDFunc(fn func() string) Option {
	return func(p *Provider) { p.newSlotID = fn }
}

// NewProvider builds a Provider over adapter.
func NewProvider(adapter Adapter, opts ...Option) (*Provider, error) {
	if adapter == nil {
		return nil, ErrNilAdapter
	}
	p := &Provider{
		adapter:                 adapter,
		namespace:               defaultNamespace,
		defaultBlockingInterval: 100 * time.Millisecond,
		defaultBlockingTime:     10 * time.Second,
		defaultLimit:            1,
		newSlotID:               uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// CreateOption configures a single Create call.
type CreateOption func(*createConfig)

type createConfig struct {
	ttl     time.Duration
	limit   int
	slotID  string
	hasTTL  bool
	hasLim  bool
}

// WithTTL overrides the provider's default TTL for this Handle.
func WithTTL(ttl time.Duration) CreateOption {
	return func(c *createConfig) { c.ttl = ttl; c.hasTTL = true }
}

// WithLimit overrides the provider's default limit for this Handle.
func WithLimit(limit int) CreateOption {
	return func(c *createConfig) { c.limit = limit; c.hasLim = true }
}

// WithSlotID pins the Handle's slotId instead of generating one.
func WithSlotID(slotID string) CreateOption {
	return func(c *createConfig) { c.slotID = slotID }
}

// Create builds a Handle bound to key.
func (p *Provider) Create(key string, opts ...CreateOption) (*Handle, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	cfg := createConfig{ttl: p.defaultTTL, limit: p.defaultLimit}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.limit <= 0 {
		return nil, ErrZeroLimit
	}

	ns := p.namespace
	if ns == nil {
		ns = defaultNamespace
	}
	k, err := ns.NewKey(key)
	if err != nil {
		return nil, err
	}

	slotID := cfg.slotID
	if slotID == "" {
		slotID = p.newSlotID()
	}

	return &Handle{
		provider: p,
		key:      key,
		prefixed: k.Prefixed(),
		slotID:   slotID,
		limit:    cfg.limit,
		ttl:      cfg.ttl,
	}, nil
}

func (p *Provider) emit(event string, payload any) {
	if p.logger != nil {
		p.logger.Debug(context.Background(), "semaphore event",
			slog.String(xlog.KeyComponent, "semaphore"),
			slog.String(xlog.KeyOperation, event),
		)
	}
	if p.onEvent != nil {
		p.onEvent(event, payload)
	}
}
