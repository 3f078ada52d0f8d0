package main

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aegiskit/aegis/pkg/breaker"
	"github.com/aegiskit/aegis/pkg/breaker/breakermemory"
	"github.com/aegiskit/aegis/pkg/breaker/breakerredis"
	"github.com/aegiskit/aegis/pkg/cache"
	"github.com/aegiskit/aegis/pkg/cache/cachememory"
	"github.com/aegiskit/aegis/pkg/cache/cacheredis"
	"github.com/aegiskit/aegis/pkg/keyspace"
	"github.com/aegiskit/aegis/pkg/lock"
	"github.com/aegiskit/aegis/pkg/lock/lockmemory"
	"github.com/aegiskit/aegis/pkg/lock/lockredis"
	"github.com/aegiskit/aegis/pkg/semaphore"
	"github.com/aegiskit/aegis/pkg/semaphore/semmemory"
	"github.com/aegiskit/aegis/pkg/semaphore/semredis"
	"github.com/aegiskit/aegis/pkg/xconf"
	"github.com/aegiskit/aegis/pkg/xlog"
)

// toolConfig is the shape distctl reads from a koanf-backed config file
// (or takes from defaultToolConfig when none is given).
type toolConfig struct {
	Backend    string        `koanf:"backend"`
	RedisAddr  string        `koanf:"redis_addr"`
	Namespace  string        `koanf:"namespace"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
	LogLevel   string        `koanf:"log_level"`
}

func defaultToolConfig() toolConfig {
	return toolConfig{
		Backend:    "memory",
		Namespace:  "distctl",
		DefaultTTL: time.Minute,
		LogLevel:   "info",
	}
}

// loadToolConfig reads path (yaml or json, autodetected by extension) via
// xconf when path is non-empty; an empty path keeps the defaults.
func loadToolConfig(path string) (toolConfig, error) {
	cfg := defaultToolConfig()
	if path == "" {
		return cfg, nil
	}
	c, err := xconf.New(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if err := c.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// toolkit bundles the four primitives distctl operates, all sharing one
// namespace and backend.
type toolkit struct {
	lock     *lock.Provider
	semaphor *semaphore.Provider
	breaker  *breaker.Provider
	cache    *cache.Cache
}

func buildToolkit(cfg toolConfig, logger xlog.Logger) (*toolkit, error) {
	ns := keyspace.MustNew(cfg.Namespace)

	switch cfg.Backend {
	case "", "memory":
		return &toolkit{
			lock: mustLockProvider(lockmemory.New(), ns, cfg, logger),
			semaphor: mustSemaphoreProvider(semmemory.New(), ns, cfg, logger),
			breaker:  mustBreakerProvider(breakermemory.New(), ns, cfg, logger),
			cache:    mustCache(cachememoryAdapter(), ns, cfg, logger),
		}, nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("backend %q requires redis_addr", cfg.Backend)
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{cfg.RedisAddr}})
		return &toolkit{
			lock: mustLockProvider(lockredis.New(client), ns, cfg, logger),
			semaphor: mustSemaphoreProvider(semredis.New(client), ns, cfg, logger),
			breaker:  mustBreakerProvider(breaker.Promote(breakerredis.New(client)), ns, cfg, logger),
			cache:    mustCache(cacheredis.New(client), ns, cfg, logger),
		}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want memory or redis)", cfg.Backend)
	}
}

func cachememoryAdapter() cache.Adapter {
	a, err := cachememory.NewLRU(10_000)
	if err != nil {
		panic(fmt.Sprintf("distctl: building default cachememory.LRU: %v", err))
	}
	return a
}

func mustLockProvider(adapter lock.Adapter, ns *keyspace.Namespace, cfg toolConfig, logger xlog.Logger) *lock.Provider {
	p, err := lock.NewProvider(adapter,
		lock.WithNamespace(ns),
		lock.WithDefaultTTL(cfg.DefaultTTL),
		lock.WithLogger(logger),
	)
	if err != nil {
		panic(fmt.Sprintf("distctl: building lock.Provider: %v", err))
	}
	return p
}

func mustSemaphoreProvider(adapter semaphore.Adapter, ns *keyspace.Namespace, cfg toolConfig, logger xlog.Logger) *semaphore.Provider {
	p, err := semaphore.NewProvider(adapter,
		semaphore.WithNamespace(ns),
		semaphore.WithDefaultTTL(cfg.DefaultTTL),
		semaphore.WithLogger(logger),
	)
	if err != nil {
		panic(fmt.Sprintf("distctl: building semaphore.Provider: %v", err))
	}
	return p
}

func mustBreakerProvider(adapter breaker.Adapter, ns *keyspace.Namespace, cfg toolConfig, logger xlog.Logger) *breaker.Provider {
	p, err := breaker.NewProvider(adapter,
		breaker.WithNamespace(ns),
		breaker.WithDefaultPolicy(&breaker.Consecutive{FailureThreshold: 5, SuccessThreshold: 1}),
		breaker.WithLogger(logger),
	)
	if err != nil {
		panic(fmt.Sprintf("distctl: building breaker.Provider: %v", err))
	}
	return p
}

func mustCache(adapter cache.Adapter, ns *keyspace.Namespace, cfg toolConfig, logger xlog.Logger) *cache.Cache {
	c, err := cache.New(adapter,
		cache.WithNamespace(ns),
		cache.WithDefaultTTL(cfg.DefaultTTL),
		cache.WithLogger(logger),
	)
	if err != nil {
		panic(fmt.Sprintf("distctl: building cache.Cache: %v", err))
	}
	return c
}
