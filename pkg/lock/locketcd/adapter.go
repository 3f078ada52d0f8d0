// Package locketcd implements lock.Adapter over etcd's
// concurrency.Session/concurrency.Mutex primitives. A lock's lifetime is
// governed by its session's lease rather than a literal TTL countdown:
// ttl, in whole seconds (30 when under one second), becomes the
// session's lease TTL, which the session keeps alive; the session dies
// (and so releases every lock held under it) if this process stops
// renewing the lease.
package locketcd

import (
	"context"
	"sync"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.etcd.io/etcd/client/v3/concurrency"

	"github.com/aegiskit/aegis/pkg/lock"
)

type held struct {
	owner   string
	session *concurrency.Session
	mutex   *concurrency.Mutex
}

// Adapter is a lock.Adapter backed by etcd. Because a concurrency.Mutex
// is a stateful client-side object spanning Lock to Unlock, the adapter
// tracks one in flight per key; a second Acquire for a key already held
// by this process instance returns false rather than attempting a
// reentrant lock.
type Adapter struct {
	client *clientv3.Client

	mu     sync.Mutex
	active map[string]*held
}

// New builds an Adapter over an already-connected etcd client.
func New(client *clientv3.Client) *Adapter {
	return &Adapter{client: client, active: make(map[string]*held)}
}

var _ lock.Adapter = (*Adapter)(nil)

func (a *Adapter) Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	a.mu.Lock()
	if _, exists := a.active[key]; exists {
		a.mu.Unlock()
		return false, nil
	}
	a.mu.Unlock()

	seconds := int(ttl.Seconds())
	if seconds <= 0 {
		seconds = 30
	}
	session, err := concurrency.NewSession(a.client, concurrency.WithTTL(seconds), concurrency.WithContext(context.Background()))
	if err != nil {
		return false, err
	}

	mutex := concurrency.NewMutex(session, key)
	if err := mutex.TryLock(ctx); err != nil {
		_ = session.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		return false, nil
	}

	// Record the owner alongside the mutex's own key so State can
	// report it; the value lives on the same lease as the mutex, so it
	// disappears the moment the session (and therefore the lock) does.
	if _, err := a.client.Put(ctx, ownerKey(key), owner, clientv3.WithLease(session.Lease())); err != nil {
		_ = mutex.Unlock(context.Background())
		_ = session.Close()
		return false, err
	}

	a.mu.Lock()
	a.active[key] = &held{owner: owner, session: session, mutex: mutex}
	a.mu.Unlock()
	return true, nil
}

func (a *Adapter) Release(ctx context.Context, key, owner string) (lock.ReleaseResult, error) {
	a.mu.Lock()
	h, exists := a.active[key]
	a.mu.Unlock()

	if !exists {
		return lock.NotFound, nil
	}
	if h.owner != owner {
		return lock.UnownedRelease, nil
	}

	err := h.mutex.Unlock(ctx)
	_ = h.session.Close()
	a.mu.Lock()
	delete(a.active, key)
	a.mu.Unlock()
	if err != nil {
		return lock.NotFound, err
	}
	return lock.Released, nil
}

func (a *Adapter) ForceRelease(ctx context.Context, key string) (bool, error) {
	a.mu.Lock()
	h, exists := a.active[key]
	if exists {
		delete(a.active, key)
	}
	a.mu.Unlock()
	if exists {
		_ = h.mutex.Unlock(context.Background())
		_ = h.session.Close()
	}

	resp, err := a.client.Delete(ctx, ownerKey(key))
	if err != nil {
		return false, err
	}
	return resp.Deleted > 0 || exists, nil
}

func (a *Adapter) Refresh(ctx context.Context, key, owner string, _ time.Duration) (lock.RefreshResult, error) {
	a.mu.Lock()
	h, exists := a.active[key]
	a.mu.Unlock()

	if !exists || h.owner != owner {
		return lock.RefreshUnowned, nil
	}
	select {
	case <-h.session.Done():
		return lock.RefreshUnexpirable, nil
	default:
		return lock.Refreshed, nil
	}
}

func (a *Adapter) State(ctx context.Context, key string) (*lock.State, error) {
	resp, err := a.client.Get(ctx, ownerKey(key))
	if err != nil {
		return nil, err
	}
	if len(resp.Kvs) == 0 {
		return nil, nil
	}
	kv := resp.Kvs[0]

	var expiration time.Time
	if ttlResp, err := a.client.TimeToLive(ctx, clientv3.LeaseID(kv.Lease)); err == nil && ttlResp.TTL > 0 {
		expiration = time.Now().Add(time.Duration(ttlResp.TTL) * time.Second)
	}
	return &lock.State{Owner: string(kv.Value), Expiration: expiration}, nil
}

func ownerKey(key string) string { return key + "/owner" }
