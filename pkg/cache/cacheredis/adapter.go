// Package cacheredis implements cache.Adapter over a single Redis key
// per cache key, using SET/GETDEL natively where Redis already offers
// the right primitive, and falling back to small Lua scripts for the
// conditional Add/Update and the atomic Increment-with-TTL-preserved,
// the same way pkg/semaphore's semredis linearizes its own conditional
// writes.
package cacheredis

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aegiskit/aegis/pkg/cache"
)

var addScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
if ARGV[2] == '0' then
	redis.call('SET', KEYS[1], ARGV[1])
else
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
end
return 1
`)

var updateScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
if ARGV[2] == '0' then
	redis.call('SET', KEYS[1], ARGV[1])
else
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
end
return 1
`)

var incrByScript = redis.NewScript(`
local existed = redis.call('EXISTS', KEYS[1]) == 1
local ttl = -1
if existed then
	ttl = redis.call('PTTL', KEYS[1])
end
local cur = redis.call('INCRBY', KEYS[1], ARGV[1])
if ARGV[2] ~= '0' then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
elseif existed and ttl > 0 then
	redis.call('PEXPIRE', KEYS[1], ttl)
end
return cur
`)

// Adapter is a cache.Adapter backed by Redis.
type Adapter struct {
	client redis.UniversalClient
}

// New builds an Adapter over client.
func New(client redis.UniversalClient) *Adapter {
	return &Adapter{client: client}
}

var _ cache.Adapter = (*Adapter)(nil)

func ttlMillis(ttl time.Duration) string {
	if ttl <= 0 {
		return "0"
	}
	return strconv.FormatInt(ttl.Milliseconds(), 10)
}

func (a *Adapter) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := a.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (a *Adapter) GetAndRemove(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := a.client.GetDel(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (a *Adapter) Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	res, err := addScript.Run(ctx, a.client, []string{key}, value, ttlMillis(ttl)).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (a *Adapter) Put(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	existed, err := a.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if ttl > 0 {
		err = a.client.Set(ctx, key, value, ttl).Err()
	} else {
		err = a.client.Set(ctx, key, value, 0).Err()
	}
	if err != nil {
		return false, err
	}
	return existed == 1, nil
}

func (a *Adapter) Update(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	res, err := updateScript.Run(ctx, a.client, []string{key}, value, ttlMillis(ttl)).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (a *Adapter) Remove(ctx context.Context, key string) (bool, error) {
	n, err := a.client.Del(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (a *Adapter) RemoveMany(ctx context.Context, keys []string) (bool, error) {
	if len(keys) == 0 {
		return false, nil
	}
	n, err := a.client.Del(ctx, keys...).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (a *Adapter) RemoveAll(ctx context.Context) error {
	_, err := a.removeByPrefix(ctx, "")
	return err
}

func (a *Adapter) RemoveByKeyPrefix(ctx context.Context, prefix string) (int, error) {
	return a.removeByPrefix(ctx, prefix)
}

func (a *Adapter) removeByPrefix(ctx context.Context, prefix string) (int, error) {
	var cursor uint64
	match := prefix + "*"
	total := 0
	for {
		keys, next, err := a.client.Scan(ctx, cursor, match, 256).Result()
		if err != nil {
			return total, err
		}
		if len(keys) > 0 {
			n, err := a.client.Del(ctx, keys...).Result()
			if err != nil {
				return total, err
			}
			total += int(n)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return total, nil
}

func (a *Adapter) Increment(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	cur, err := incrByScript.Run(ctx, a.client, []string{key}, delta, ttlMillis(ttl)).Int64()
	if err != nil {
		if isNotIntegerErr(err) {
			return 0, cache.ErrNotInteger
		}
		return 0, err
	}
	return cur, nil
}

func isNotIntegerErr(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "not an integer")
}
