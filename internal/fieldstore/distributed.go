package fieldstore

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/driftline/foundry/internal/cache"
	"github.com/driftline/foundry/pkg/errors"
)

// distKeyFormat is the shared-cache key layout for one field of one record.
const distKeyFormat = "model:%s:%s:fields:%s"

// DistributedCache adapts the shared cache Store to per-field access for a
// single record: it derives keys, applies the schema's distributed codecs,
// and attaches the configured TTL to every write.
//
// A store that is absent or not ready makes every operation a no-op miss —
// an expected degraded state, not an error.
type DistributedCache struct {
	store  cache.Store
	schema *Schema
	id     string
	ttl    time.Duration
}

// NewDistributedCache builds the distributed tier adapter for one record.
// The store may be nil when the deployment runs without a shared cache.
func NewDistributedCache(store cache.Store, schema *Schema, id ID, ttl time.Duration) *DistributedCache {
	return &DistributedCache{
		store:  store,
		schema: schema,
		id:     id.Hex(),
		ttl:    ttl,
	}
}

// Available reports whether the backing store can serve requests right now.
func (d *DistributedCache) Available() bool {
	return d.store != nil && d.store.Ready()
}

// Key derives the shared-cache key for one field.
func (d *DistributedCache) Key(field string) string {
	return fmt.Sprintf(distKeyFormat, d.schema.Collection(), d.id, field)
}

// RootPattern is the wildcard matching every key of this record.
func (d *DistributedCache) RootPattern() string {
	return fmt.Sprintf("model:%s:%s:*", d.schema.Collection(), d.id)
}

// Get fetches a single field value.
func (d *DistributedCache) Get(ctx context.Context, field string) (any, bool, error) {
	values, err := d.GetMany(ctx, []string{field})
	if err != nil {
		return nil, false, err
	}
	v, ok := values[field]
	return v, ok, nil
}

// GetMany batch-fetches fields in one round trip, decoding each present
// value with its field codec. Backend failures come back as soft errors for
// the orchestrator to log and degrade past.
func (d *DistributedCache) GetMany(ctx context.Context, fields []string) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	if !d.Available() || len(fields) == 0 {
		return out, nil
	}

	specs, err := d.schema.resolve(fields)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(specs))
	keyed := make([]FieldSpec, 0, len(specs))
	for _, spec := range specs {
		if !spec.DistributedEnabled() {
			continue
		}
		keys = append(keys, d.Key(spec.Name))
		keyed = append(keyed, spec)
	}
	if len(keys) == 0 {
		return out, nil
	}

	raw, err := d.store.GetMany(ctx, keys)
	if err != nil {
		return nil, errors.Soft("distributed.get", err)
	}

	for i, spec := range keyed {
		payload, ok := raw[keys[i]]
		if !ok {
			continue
		}
		value, decodeErr := spec.Codec.FromDistributed(string(payload))
		if decodeErr != nil {
			// A corrupt entry is treated as a miss so the authoritative
			// tier can repair it on the fill path.
			return nil, errors.Soft("distributed.get", decodeErr)
		}
		out[spec.Name] = value
	}
	return out, nil
}

// Set stores one field value.
func (d *DistributedCache) Set(ctx context.Context, field string, value any) error {
	return d.SetMany(ctx, map[string]any{field: value})
}

// SetMany encodes and stores a batch of fields, refreshing the TTL on every
// key. If the write fails, the same keys are flushed so a stale value is
// never left behind; a failure of that fallback, too, is surfaced as a
// FallbackFailure because staleness is then only bounded by the TTL.
func (d *DistributedCache) SetMany(ctx context.Context, values map[string]any) error {
	if !d.Available() || len(values) == 0 {
		return nil
	}

	payload := make(map[string][]byte, len(values))
	keys := make([]string, 0, len(values))
	for field, value := range values {
		spec, err := d.schema.Field(field)
		if err != nil {
			return err
		}
		if !spec.DistributedEnabled() || value == nil {
			continue
		}
		encoded, err := spec.Codec.ToDistributed(value)
		if err != nil {
			return errors.Config("distributed.set", fmt.Sprintf("field %q: %v", field, err))
		}
		key := d.Key(field)
		payload[key] = []byte(encoded)
		keys = append(keys, key)
	}
	if len(payload) == 0 {
		return nil
	}

	if err := d.store.SetMany(ctx, payload, d.ttl); err != nil {
		if flushErr := d.store.Delete(ctx, keys...); flushErr != nil {
			return errors.Fallback("distributed.set", multierr.Append(err, flushErr))
		}
		return errors.Soft("distributed.set", err)
	}
	return nil
}

// Has reports whether a single field is cached.
func (d *DistributedCache) Has(ctx context.Context, field string) (bool, error) {
	return d.HasMany(ctx, []string{field})
}

// HasMany reports whether every requested field is cached: the existing-key
// count must equal the request count.
func (d *DistributedCache) HasMany(ctx context.Context, fields []string) (bool, error) {
	if !d.Available() || len(fields) == 0 {
		return false, nil
	}

	specs, err := d.schema.resolve(fields)
	if err != nil {
		return false, err
	}

	keys := make([]string, 0, len(specs))
	for _, spec := range specs {
		if !spec.DistributedEnabled() {
			return false, nil
		}
		keys = append(keys, d.Key(spec.Name))
	}

	count, err := d.store.Exists(ctx, keys...)
	if err != nil {
		return false, errors.Soft("distributed.has", err)
	}
	return count == int64(len(keys)), nil
}

// Flush deletes the named fields' keys, or, with no fields, every key under
// the record's wildcard root. It reports the number of keys removed.
func (d *DistributedCache) Flush(ctx context.Context, fields ...string) (int64, error) {
	if !d.Available() {
		return 0, nil
	}

	var keys []string
	if len(fields) == 0 {
		expanded, err := d.store.Keys(ctx, d.RootPattern())
		if err != nil {
			return 0, errors.Soft("distributed.flush", err)
		}
		keys = expanded
	} else {
		specs, err := d.schema.resolve(fields)
		if err != nil {
			return 0, err
		}
		keys = make([]string, 0, len(specs))
		for _, spec := range specs {
			keys = append(keys, d.Key(spec.Name))
		}
	}
	if len(keys) == 0 {
		return 0, nil
	}

	if err := d.store.Delete(ctx, keys...); err != nil {
		return 0, errors.Soft("distributed.flush", err)
	}
	return int64(len(keys)), nil
}
