package cache

// Event names dispatched by Cache operations via the EventFunc,
// matching spec event names CACHE_*.
const (
	EventHit     = "CACHE_HIT"
	EventMiss    = "CACHE_MISS"
	EventWritten = "CACHE_WRITTEN"
	EventUpdated = "CACHE_UPDATED"
	EventRemoved = "CACHE_REMOVED"
	EventCleared = "CACHE_CLEARED"
)
