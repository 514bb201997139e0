package fieldstore

import "sync"

// LocalFieldCache is the in-process tier: a per-record field map with no
// expiry, emptied only by explicit flush. Fields marked SkipLocal are
// invisible here — gets report absent and sets are dropped — and a disabled
// cache behaves as permanently empty.
type LocalFieldCache struct {
	schema  *Schema
	enabled bool

	mu     sync.RWMutex
	values map[string]any
}

// NewLocalFieldCache builds the local tier for one record. The enabled flag
// is the process-wide kill switch threaded down from configuration.
func NewLocalFieldCache(schema *Schema, enabled bool) *LocalFieldCache {
	return &LocalFieldCache{
		schema:  schema,
		enabled: enabled,
		values:  make(map[string]any),
	}
}

// Get returns the cached value for a field, if any.
func (c *LocalFieldCache) Get(field string) (any, bool) {
	if !c.usable(field) {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[field]
	return v, ok
}

// GetMany returns the cached subset of the requested fields; missing fields
// have no entry in the result.
func (c *LocalFieldCache) GetMany(fields []string) map[string]any {
	out := make(map[string]any, len(fields))
	if !c.enabled {
		return out
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, field := range fields {
		if !c.fieldEnabled(field) {
			continue
		}
		if v, ok := c.values[field]; ok {
			out[field] = v
		}
	}
	return out
}

// Set stores a value. Disabled fields are silently dropped.
func (c *LocalFieldCache) Set(field string, value any) {
	if !c.usable(field) {
		return
	}
	c.mu.Lock()
	c.values[field] = value
	c.mu.Unlock()
}

// SetMany stores every enabled field from the map.
func (c *LocalFieldCache) SetMany(values map[string]any) {
	if !c.enabled || len(values) == 0 {
		return
	}
	c.mu.Lock()
	for field, value := range values {
		if c.fieldEnabled(field) {
			c.values[field] = value
		}
	}
	c.mu.Unlock()
}

// Has reports whether the field currently holds a cached value.
func (c *LocalFieldCache) Has(field string) bool {
	if !c.usable(field) {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.values[field]
	return ok
}

// Flush drops the named fields, or every field when none are given.
func (c *LocalFieldCache) Flush(fields ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(fields) == 0 {
		c.values = make(map[string]any)
		return
	}
	for _, field := range fields {
		delete(c.values, field)
	}
}

// Len reports the number of cached fields.
func (c *LocalFieldCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}

func (c *LocalFieldCache) usable(field string) bool {
	return c.enabled && c.fieldEnabled(field)
}

func (c *LocalFieldCache) fieldEnabled(field string) bool {
	spec, err := c.schema.Field(field)
	if err != nil {
		return false
	}
	return spec.CacheEnabled()
}
