package fieldstore

import (
	"context"

	"go.uber.org/zap"

	"github.com/driftline/foundry/pkg/errors"
	"github.com/driftline/foundry/pkg/metrics"
)

// Record is one live entity instance: an identity plus the three tier
// adapters bound to it. A Record never holds field values itself; values
// live only inside the tiers. Records are minted and deduplicated by a
// Registry so concurrent callers share cache state.
type Record struct {
	id      ID
	schema  *Schema
	local   *LocalFieldCache
	dist    *DistributedCache
	persist *PersistentStore
	log     *zap.Logger
}

// GetOption adjusts a single read.
type GetOption func(*getOptions)

type getOptions struct {
	noCache bool
}

// WithoutCache skips the local tier on the read path. The slower tiers and
// the cache-fill on the way back up still run.
func WithoutCache() GetOption {
	return func(o *getOptions) { o.noCache = true }
}

// ID returns the record's identity.
func (r *Record) ID() ID { return r.id }

// Schema returns the record's field table.
func (r *Record) Schema() *Schema { return r.schema }

// Local exposes the in-process tier, primarily for tests and diagnostics.
func (r *Record) Local() *LocalFieldCache { return r.local }

// GetField resolves a single field through the tier cascade.
func (r *Record) GetField(ctx context.Context, field string, opts ...GetOption) (any, error) {
	values, err := r.GetFields(ctx, []string{field}, opts...)
	if err != nil {
		return nil, err
	}
	return values[field], nil
}

// GetFields resolves fields tier by tier: local cache, then distributed
// cache, then the persistent store, filling faster tiers on the way back
// up. A distributed failure is logged and degraded past; a persistent
// failure aborts the read. Fields missing everywhere are simply absent from
// the result.
func (r *Record) GetFields(ctx context.Context, fields []string, opts ...GetOption) (map[string]any, error) {
	timer := metrics.CascadeTimer("get")
	defer timer.ObserveDuration()

	var o getOptions
	for _, opt := range opts {
		opt(&o)
	}

	if _, err := r.schema.resolve(fields); err != nil {
		return nil, err
	}

	result := make(map[string]any, len(fields))
	remaining := fields

	if !o.noCache {
		found := r.local.GetMany(remaining)
		for field, value := range found {
			result[field] = value
		}
		metrics.TierReads("local", len(found), len(remaining)-len(found))
		remaining = subtract(remaining, found)
	}

	if len(remaining) > 0 && r.dist.Available() {
		found, err := r.dist.GetMany(ctx, remaining)
		if err != nil {
			// Soft miss: every remaining field falls through to the
			// authoritative tier.
			metrics.SoftFailure("distributed")
			r.log.Warn("distributed cache read failed", zap.Error(err))
		} else {
			for field, value := range found {
				result[field] = value
			}
			r.local.SetMany(found)
			metrics.TierReads("distributed", len(found), len(remaining)-len(found))
			remaining = subtract(remaining, found)
		}
	}

	if len(remaining) > 0 {
		found, exists, err := r.persist.GetFields(ctx, remaining)
		if err != nil {
			return nil, err
		}
		metrics.TierReads("persistent", len(found), len(remaining)-len(found))
		if exists && len(found) > 0 {
			for field, value := range found {
				result[field] = value
			}
			r.local.SetMany(found)

			// Best-effort cache fill; the caller does not depend on it.
			latch := NewJoinLatch()
			latch.Add()
			go func() {
				defer latch.Done()
				if fillErr := r.dist.SetMany(ctx, found); fillErr != nil {
					metrics.SoftFailure("distributed")
					r.log.Warn("distributed cache fill failed", zap.Error(fillErr))
				}
			}()
			latch.Wait()
		}
	}

	return result, nil
}

// SetField writes a single field through the cascade.
func (r *Record) SetField(ctx context.Context, field string, value any) error {
	return r.SetFields(ctx, map[string]any{field: value})
}

// SetFields writes fields authoritative-first: the persistent store must
// accept the update before any cache is touched, so no write exists that
// the source of truth does not know about. The distributed write then runs
// concurrently with the local update; a distributed failure falls back to
// invalidation, and only a failed invalidation surfaces to the caller.
func (r *Record) SetFields(ctx context.Context, values map[string]any) error {
	timer := metrics.CascadeTimer("set")
	defer timer.ObserveDuration()

	if len(values) == 0 {
		return nil
	}

	if err := r.persist.SetFields(ctx, values); err != nil {
		return err
	}

	var distErr error
	latch := NewJoinLatch()
	latch.Add()
	go func() {
		defer latch.Done()
		distErr = r.dist.SetMany(ctx, values)
	}()

	r.local.SetMany(values)
	latch.Wait()

	if distErr != nil {
		if errors.IsFallback(distErr) {
			metrics.SoftFailure("distributed")
			return distErr
		}
		// The stale keys were invalidated; the next read repairs them.
		metrics.SoftFailure("distributed")
		r.log.Warn("distributed cache write failed, keys invalidated", zap.Error(distErr))
	}
	return nil
}

// HasField reports whether the field holds a value in any tier.
func (r *Record) HasField(ctx context.Context, field string) (bool, error) {
	return r.HasFields(ctx, []string{field})
}

// HasFields short-circuits true as soon as one tier holds every requested
// field. When no single tier does, it falls back to a per-field AND over
// all tiers, so fields scattered across tiers still count as present.
func (r *Record) HasFields(ctx context.Context, fields []string) (bool, error) {
	timer := metrics.CascadeTimer("has")
	defer timer.ObserveDuration()

	specs, err := r.schema.resolve(fields)
	if err != nil {
		return false, err
	}
	if len(specs) == 0 {
		return false, nil
	}

	if len(r.local.GetMany(fields)) == len(fields) {
		return true, nil
	}

	if ok, distErr := r.dist.HasMany(ctx, fields); distErr != nil {
		metrics.SoftFailure("distributed")
		r.log.Warn("distributed cache existence check failed", zap.Error(distErr))
	} else if ok {
		return true, nil
	}

	if ok, persistErr := r.persist.HasFields(ctx, fields); persistErr != nil {
		return false, persistErr
	} else if ok {
		return true, nil
	}

	for _, field := range fields {
		present, fieldErr := r.fieldPresent(ctx, field)
		if fieldErr != nil {
			return false, fieldErr
		}
		if !present {
			return false, nil
		}
	}
	return true, nil
}

func (r *Record) fieldPresent(ctx context.Context, field string) (bool, error) {
	if r.local.Has(field) {
		return true, nil
	}
	if ok, err := r.dist.Has(ctx, field); err != nil {
		metrics.SoftFailure("distributed")
		r.log.Warn("distributed cache existence check failed", zap.Error(err))
	} else if ok {
		return true, nil
	}
	return r.persist.HasField(ctx, field)
}

// Flush evicts the named fields (or everything) from both cache tiers
// concurrently, then applies the authoritative deletion. Cache failures are
// best-effort and logged; the persistent store's verdict is the one
// returned.
func (r *Record) Flush(ctx context.Context, fields ...string) error {
	timer := metrics.CascadeTimer("flush")
	defer timer.ObserveDuration()

	latch := NewJoinLatch()

	latch.Add()
	go func() {
		defer latch.Done()
		r.local.Flush(fields...)
	}()

	latch.Add()
	go func() {
		defer latch.Done()
		if n, err := r.dist.Flush(ctx, fields...); err != nil {
			metrics.SoftFailure("distributed")
			r.log.Warn("distributed cache flush failed", zap.Error(err))
		} else if n > 0 {
			r.log.Debug("distributed cache flushed", zap.Int64("keys", n))
		}
	}()

	latch.Wait()
	return r.persist.Flush(ctx, fields...)
}

// subtract returns the fields not resolved yet, preserving request order.
func subtract(fields []string, resolved map[string]any) []string {
	if len(resolved) == 0 {
		return fields
	}
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		if _, ok := resolved[field]; !ok {
			out = append(out, field)
		}
	}
	return out
}
