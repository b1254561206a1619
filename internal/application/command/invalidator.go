package command

import "context"

// AggregateInvalidator drops cached aggregation results after a write that
// changes them. A nil invalidator means caching is disabled.
type AggregateInvalidator interface {
	Invalidate(ctx context.Context) error
}

// invalidateAggregates best-effort drops the aggregate cache. The write has
// already committed, so a failed invalidation only costs a TTL of staleness.
func invalidateAggregates(ctx context.Context, cache AggregateInvalidator) {
	if cache == nil {
		return
	}
	_ = cache.Invalidate(ctx)
}
