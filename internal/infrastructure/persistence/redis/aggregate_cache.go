package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/grade-portal/grade-portal/internal/domain/grading"
	"github.com/grade-portal/grade-portal/internal/domain/record"
)

// ══════════════════════════════════════════════════════════════════════════════
// AGGREGATE CACHE
// ══════════════════════════════════════════════════════════════════════════════

// Key patterns for aggregate cache entries.
const (
	// keyTopPerformers caches a ranked performer list per limit.
	keyTopPerformers = "aggregate:top:"

	// keyGradeDistribution caches the portal-wide grade distribution.
	keyGradeDistribution = "aggregate:distribution"

	// keyClassAverages caches the per-subject class averages.
	keyClassAverages = "aggregate:class_averages"

	// TTLAggregate bounds staleness between mark writes and cached reads.
	TTLAggregate = 5 * time.Minute
)

// AggregateCache caches aggregation query results. Mark writes invalidate
// every aggregate key, so a stale entry survives at most TTLAggregate on a
// missed invalidation.
type AggregateCache struct {
	cache *Cache
}

// NewAggregateCache creates a new AggregateCache.
func NewAggregateCache(cache *Cache) *AggregateCache {
	return &AggregateCache{cache: cache}
}

// GetTopPerformers returns the cached performer list for the given limit.
// Returns ErrCacheMiss when no entry exists.
func (ac *AggregateCache) GetTopPerformers(ctx context.Context, limit int) ([]record.TopPerformer, error) {
	var performers []record.TopPerformer
	if err := ac.cache.Get(ctx, topPerformersKey(limit), &performers); err != nil {
		return nil, err
	}
	return performers, nil
}

// SetTopPerformers caches the performer list for the given limit.
func (ac *AggregateCache) SetTopPerformers(ctx context.Context, limit int, performers []record.TopPerformer) error {
	return ac.cache.Set(ctx, topPerformersKey(limit), performers, TTLAggregate)
}

// GetGradeDistribution returns the cached grade distribution.
// Returns ErrCacheMiss when no entry exists.
func (ac *AggregateCache) GetGradeDistribution(ctx context.Context) (map[grading.Grade]int, error) {
	var distribution map[grading.Grade]int
	if err := ac.cache.Get(ctx, keyGradeDistribution, &distribution); err != nil {
		return nil, err
	}
	return distribution, nil
}

// SetGradeDistribution caches the grade distribution.
func (ac *AggregateCache) SetGradeDistribution(ctx context.Context, distribution map[grading.Grade]int) error {
	return ac.cache.Set(ctx, keyGradeDistribution, distribution, TTLAggregate)
}

// GetClassAverages returns the cached per-subject averages.
// Returns ErrCacheMiss when no entry exists.
func (ac *AggregateCache) GetClassAverages(ctx context.Context) ([]record.SubjectAverage, error) {
	var averages []record.SubjectAverage
	if err := ac.cache.Get(ctx, keyClassAverages, &averages); err != nil {
		return nil, err
	}
	return averages, nil
}

// SetClassAverages caches the per-subject averages.
func (ac *AggregateCache) SetClassAverages(ctx context.Context, averages []record.SubjectAverage) error {
	return ac.cache.Set(ctx, keyClassAverages, averages, TTLAggregate)
}

// Invalidate drops every cached aggregate. Called after any mark write.
func (ac *AggregateCache) Invalidate(ctx context.Context) error {
	if err := ac.cache.DeleteByPattern(ctx, keyTopPerformers+"*"); err != nil {
		return err
	}
	return ac.cache.Delete(ctx, keyGradeDistribution, keyClassAverages)
}

func topPerformersKey(limit int) string {
	return fmt.Sprintf("%s%d", keyTopPerformers, limit)
}
