// Package breakerredis implements breaker.DatabaseAdapter over a
// single Redis string per key holding the breaker's serialized state.
//
// A circuit breaker's atomic update is an arbitrary Go closure over a
// Policy, not a single conditional write a Lua script could run
// end-to-end. AtomicUpdate instead does the same GET/transform/CAS loop
// as breakersql, using a small Lua script (the same linearization
// pkg/semaphore's semredis uses for its own conditional writes) to make
// the final compare-and-set step atomic server-side, retrying on a
// lost race.
package breakerredis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/aegiskit/aegis/pkg/breaker"
)

// MaxAttempts bounds the compare-and-set retry loop.
const MaxAttempts = 50

// casScript sets key to newVal only if its current value still equals
// expectedVal (or the key is still absent, when expectedExists is
// "0"). It returns an empty string on success. When the compare fails it
// returns the value actually observed, or the literal 'absent' when the
// key was expected to exist but is gone.
var casScript = redis.NewScript(`
local key = KEYS[1]
local expectedExists = ARGV[1]
local expectedVal = ARGV[2]
local newVal = ARGV[3]

local current = redis.call('GET', key)

if expectedExists == '1' then
	if current == false or current ~= expectedVal then
		if current == false then
			return 'absent'
		end
		return current
	end
else
	if current ~= false then
		return current
	end
end

redis.call('SET', key, newVal)
return ''
`)

// Adapter is a breaker.DatabaseAdapter backed by Redis.
type Adapter struct {
	client redis.UniversalClient
}

// New builds an Adapter over client.
func New(client redis.UniversalClient) *Adapter {
	return &Adapter{client: client}
}

var _ breaker.DatabaseAdapter = (*Adapter)(nil)

func (a *Adapter) Find(ctx context.Context, key string) ([]byte, error) {
	val, err := a.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (a *Adapter) AtomicUpdate(ctx context.Context, key string, transform breaker.RawTransform) ([]byte, error) {
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		raw, err := a.Find(ctx, key)
		if err != nil {
			return nil, err
		}

		next, err := transform(raw)
		if err != nil {
			return nil, err
		}

		existsFlag := "1"
		expected := string(raw)
		if raw == nil {
			existsFlag = "0"
			expected = ""
		}

		res, err := casScript.Run(ctx, a.client, []string{key}, existsFlag, expected, string(next)).Text()
		if err != nil && err != redis.Nil {
			return nil, err
		}
		if res == "" {
			return next, nil
		}
		// lost the race; retry with whatever is now current
	}
	return nil, breaker.ErrConcurrentUpdate
}
