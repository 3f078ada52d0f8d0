// Package semredis implements semaphore.Adapter over a single Redis
// hash per key, using Lua scripts so the count-then-insert-under-limit
// check and the slot write are linearized server-side exactly as the
// teacher's xdlock Redis adapter linearizes lock acquisition.
package semredis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aegiskit/aegis/pkg/semaphore"
)

// limitField is the reserved hash field this adapter uses to remember a
// key's configured limit alongside its per-slot expirations.
const limitField = "__limit__"

var acquireScript = redis.NewScript(`
local key = KEYS[1]
local slotId = ARGV[1]
local limit = tonumber(ARGV[2])
local expVal = ARGV[3]
local now = tonumber(ARGV[4])

local existing = redis.call('HGET', key, slotId)
if existing then
	local exp = tonumber(existing)
	if exp == 0 or exp > now then
		return 0
	end
end

local fields = redis.call('HGETALL', key)
local count = 0
for i = 1, #fields, 2 do
	local id = fields[i]
	if id ~= slotId and id ~= '__limit__' then
		local exp = tonumber(fields[i + 1])
		if exp == 0 or exp > now then
			count = count + 1
		end
	end
end
if count >= limit then
	return 0
end

redis.call('HSET', key, slotId, expVal, '__limit__', tostring(limit))
return 1
`)

var refreshScript = redis.NewScript(`
local key = KEYS[1]
local slotId = ARGV[1]
local expVal = ARGV[2]

if redis.call('HEXISTS', key, slotId) == 0 then
	return 0
end
redis.call('HSET', key, slotId, expVal)
return 1
`)

// Adapter is a semaphore.Adapter backed by Redis.
type Adapter struct {
	client redis.UniversalClient
}

// New builds an Adapter over client.
func New(client redis.UniversalClient) *Adapter {
	return &Adapter{client: client}
}

var _ semaphore.Adapter = (*Adapter)(nil)

func (a *Adapter) Acquire(ctx context.Context, key, slotID string, limit int, ttl time.Duration) (bool, error) {
	expVal := expFieldValue(ttl)
	res, err := acquireScript.Run(ctx, a.client, []string{key}, slotID, limit, expVal, time.Now().UnixNano()).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (a *Adapter) Release(ctx context.Context, key, slotID string) (bool, error) {
	n, err := a.client.HDel(ctx, key, slotID).Result()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if remaining, err := a.client.HLen(ctx, key).Result(); err == nil && remaining <= 1 {
		// only the reserved limit field (or nothing) is left behind
		a.client.Del(ctx, key)
	}
	return true, nil
}

func (a *Adapter) ForceReleaseAll(ctx context.Context, key string) (bool, error) {
	n, err := a.client.Del(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (a *Adapter) Refresh(ctx context.Context, key, slotID string, ttl time.Duration) (bool, error) {
	res, err := refreshScript.Run(ctx, a.client, []string{key}, slotID, expFieldValue(ttl)).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (a *Adapter) State(ctx context.Context, key string) (*semaphore.State, error) {
	fields, err := a.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	st := &semaphore.State{}
	for id, raw := range fields {
		if id == limitField {
			if limit, err := strconv.Atoi(raw); err == nil {
				st.Limit = limit
			}
			continue
		}
		nanos, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		slot := semaphore.Slot{SlotID: id}
		if nanos != 0 {
			slot.Expiration = time.Unix(0, nanos)
		}
		st.AcquiredSlots = append(st.AcquiredSlots, slot)
	}
	return st, nil
}

func expFieldValue(ttl time.Duration) string {
	if ttl <= 0 {
		return "0"
	}
	return strconv.FormatInt(time.Now().Add(ttl).UnixNano(), 10)
}
