// Package lockredis implements lock.Adapter over go-redsync, the same
// Redlock client the ambient stack already depends on for distributed
// mutexes. Unlike the database-backed adapters, Redis exposes SET NX PX
// and a Lua-scripted compare-and-delete natively, so this adapter talks
// to redsync directly instead of going through the DatabaseAdapter
// promotion.
package lockredis

import (
	"context"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/redis/go-redis/v9"

	rsredis "github.com/go-redsync/redsync/v4/redis"
	goredislib "github.com/go-redsync/redsync/v4/redis/goredis/v9"

	"github.com/aegiskit/aegis/pkg/lock"
)

// Adapter is a lock.Adapter backed by one or more Redis nodes via
// redsync (Redlock across nodes when more than one client is supplied).
type Adapter struct {
	client redis.UniversalClient
	rs     *redsync.Redsync
}

// New builds an Adapter from a single Redis client.
func New(client redis.UniversalClient) *Adapter {
	return NewRedlock(client)
}

// NewRedlock builds an Adapter running the Redlock algorithm across
// every supplied client, requiring a majority to agree.
func NewRedlock(clients ...redis.UniversalClient) *Adapter {
	pools := make([]rsredis.Pool, len(clients))
	for i, c := range clients {
		pools[i] = goredislib.NewPool(c)
	}
	a := &Adapter{rs: redsync.New(pools...)}
	if len(clients) > 0 {
		a.client = clients[0]
	}
	return a
}

var _ lock.Adapter = (*Adapter)(nil)

func (a *Adapter) newMutex(key, owner string, ttl time.Duration) *redsync.Mutex {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return a.rs.NewMutex(key,
		redsync.WithExpiry(ttl),
		redsync.WithGenValueFunc(func() (string, error) { return owner, nil }),
	)
}

func (a *Adapter) Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	mutex := a.newMutex(key, owner, ttl)
	if err := mutex.TryLockContext(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		return false, nil
	}
	return true, nil
}

func (a *Adapter) Release(ctx context.Context, key, owner string) (lock.ReleaseResult, error) {
	st, err := a.State(ctx, key)
	if err != nil {
		return lock.NotFound, err
	}
	if st == nil {
		return lock.NotFound, nil
	}
	if st.Owner != owner {
		return lock.UnownedRelease, nil
	}

	mutex := a.newMutex(key, owner, 0)
	ok, err := mutex.UnlockContext(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return lock.NotFound, ctxErr
		}
		return lock.NotFound, nil
	}
	if !ok {
		return lock.NotFound, nil
	}
	return lock.Released, nil
}

func (a *Adapter) ForceRelease(ctx context.Context, key string) (bool, error) {
	n, err := a.client.Del(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (a *Adapter) Refresh(ctx context.Context, key, owner string, ttl time.Duration) (lock.RefreshResult, error) {
	st, err := a.State(ctx, key)
	if err != nil {
		return lock.RefreshUnowned, err
	}
	if st == nil || st.Owner != owner {
		return lock.RefreshUnowned, nil
	}

	mutex := a.newMutex(key, owner, ttl)
	ok, err := mutex.ExtendContext(ctx)
	if err != nil || !ok {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return lock.RefreshUnowned, ctxErr
		}
		return lock.RefreshUnowned, nil
	}
	return lock.Refreshed, nil
}

func (a *Adapter) State(ctx context.Context, key string) (*lock.State, error) {
	owner, err := a.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var expiration time.Time
	if ttl, err := a.client.PTTL(ctx, key).Result(); err == nil && ttl > 0 {
		expiration = time.Now().Add(ttl)
	}
	return &lock.State{Owner: owner, Expiration: expiration}, nil
}
