package scoring

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// CacheTTL is how long a computed score stays reusable. Identical input
// from the same owner within the window returns the cached result
// verbatim without consuming quota.
const CacheTTL = 24 * time.Hour

// DailyQuota is the number of non-cached computations allowed per owner
// per calendar day.
const DailyQuota = 3

// ScoreCache stores computed results keyed by input signature.
// Implementations must be safe for concurrent use.
type ScoreCache interface {
	// Get returns the cached result for the signature if one exists and
	// its TTL has not elapsed at now.
	Get(signature string, now time.Time) (*Result, bool)

	// Set stores the result under the signature, stamped at now.
	Set(signature string, result *Result, now time.Time)

	// Sweep removes entries whose TTL elapsed before now and reports how
	// many were dropped.
	Sweep(now time.Time) int
}

// QuotaCounter tracks non-cached computations per owner per day.
// Implementations must be safe for concurrent use.
type QuotaCounter interface {
	// Count returns the computations recorded for the owner on the given day.
	Count(ownerKey, day string) int

	// Increment records one computation for the owner on the given day.
	Increment(ownerKey, day string)

	// Sweep drops counters for days other than the given one.
	Sweep(day string)
}

// cacheEntry pairs a result with its insertion time.
type cacheEntry struct {
	result   *Result
	storedAt time.Time
}

// MemoryScoreCache is the process-local ScoreCache implementation.
// Not shared across instances behind a load balancer; each process caches
// independently.
type MemoryScoreCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	logger  *slog.Logger
}

// NewMemoryScoreCache creates an empty score cache.
// If logger is nil, the default logger is used.
func NewMemoryScoreCache(logger *slog.Logger) *MemoryScoreCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryScoreCache{
		entries: make(map[string]cacheEntry),
		logger:  logger.With("component", "score_cache"),
	}
}

// Ensure MemoryScoreCache implements the ScoreCache interface
var _ ScoreCache = (*MemoryScoreCache)(nil)

// Get implements ScoreCache.Get.
func (c *MemoryScoreCache) Get(signature string, now time.Time) (*Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[signature]
	if !ok {
		return nil, false
	}

	if now.Sub(entry.storedAt) > CacheTTL {
		delete(c.entries, signature)
		return nil, false
	}

	// Copy so callers cannot mutate the cached value.
	result := *entry.result
	return &result, true
}

// Set implements ScoreCache.Set.
func (c *MemoryScoreCache) Set(signature string, result *Result, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := *result
	c.entries[signature] = cacheEntry{result: &stored, storedAt: now}
}

// Sweep implements ScoreCache.Sweep.
func (c *MemoryScoreCache) Sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for signature, entry := range c.entries {
		if now.Sub(entry.storedAt) > CacheTTL {
			delete(c.entries, signature)
			removed++
		}
	}
	return removed
}

// Run sweeps expired entries at the given interval until the context is
// canceled, bounding memory growth.
func (c *MemoryScoreCache) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := c.Sweep(now); removed > 0 {
				c.logger.Debug("swept expired score cache entries", "removed", removed)
			}
		}
	}
}

// MemoryQuotaCounter is the process-local QuotaCounter implementation.
type MemoryQuotaCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewMemoryQuotaCounter creates an empty quota counter.
func NewMemoryQuotaCounter() *MemoryQuotaCounter {
	return &MemoryQuotaCounter{counts: make(map[string]int)}
}

// Ensure MemoryQuotaCounter implements the QuotaCounter interface
var _ QuotaCounter = (*MemoryQuotaCounter)(nil)

func quotaKey(ownerKey, day string) string {
	return day + "_" + ownerKey
}

// Count implements QuotaCounter.Count.
func (q *MemoryQuotaCounter) Count(ownerKey, day string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.counts[quotaKey(ownerKey, day)]
}

// Increment implements QuotaCounter.Increment.
func (q *MemoryQuotaCounter) Increment(ownerKey, day string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.counts[quotaKey(ownerKey, day)]++
}

// Sweep implements QuotaCounter.Sweep: counters from any day other than
// the one given are dropped.
func (q *MemoryQuotaCounter) Sweep(day string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for key := range q.counts {
		if len(key) < len(day) || key[:len(day)] != day {
			delete(q.counts, key)
		}
	}
}

// Run drops prior-day counters at the given interval until the context
// is canceled, so quota state never outlives the day it tracks.
func (q *MemoryQuotaCounter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			q.Sweep(now.UTC().Format("2006-01-02"))
		}
	}
}
