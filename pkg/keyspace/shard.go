package keyspace

import "github.com/cespare/xxhash/v2"

// ShardKey derives a stable shard index in [0, shards) from a key's
// Prefixed form. It is used by callers that want to distribute a family
// of hot keys (e.g. a high-contention semaphore) across multiple Redis
// Cluster slots or physically separate stores while keeping each logical
// key pinned to a single shard across the process lifetime.
//
// shards <= 0 always returns 0.
func ShardKey(k Key, shards int) int {
	if shards <= 0 {
		return 0
	}
	sum := xxhash.Sum64String(k.Prefixed())
	return int(sum % uint64(shards))
}
