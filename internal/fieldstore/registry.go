package fieldstore

import (
	"container/list"
	"sync"

	"github.com/driftline/foundry/pkg/metrics"
)

// Registry hands out at most one live Record per identity for one entity
// type, so two concurrent callers never hold divergent local cache state
// for the same row. Keys are the canonical lowercase hex id form.
//
// A registry is unbounded by default, matching the assumption of a bounded
// live entity population; MaxEntries turns on least-recently-used eviction
// for long-running processes that cannot make that assumption.
type Registry struct {
	store  *Store
	schema *Schema
	max    int

	mu      sync.Mutex
	records map[string]*registryEntry
	order   *list.List // front = most recently used
}

type registryEntry struct {
	record  *Record
	element *list.Element
}

// RegistryOption adjusts registry construction.
type RegistryOption func(*Registry)

// WithMaxEntries bounds the registry to n live records, evicting the least
// recently used record beyond that.
func WithMaxEntries(n int) RegistryOption {
	return func(r *Registry) { r.max = n }
}

// NewRegistry builds a registry minting Records of the given schema against
// the store's tiers.
func NewRegistry(store *Store, schema *Schema, opts ...RegistryOption) *Registry {
	r := &Registry{
		store:   store,
		schema:  schema,
		records: make(map[string]*registryEntry),
		order:   list.New(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create returns the Record registered for the id, minting one if none
// exists. It is idempotent: a second Create for the same identity returns
// the existing Record and ignores the seed values.
func (r *Registry) Create(id ID, seed map[string]any) *Record {
	key := id.Hex()

	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.records[key]; ok {
		r.order.MoveToFront(entry.element)
		return entry.record
	}

	record := r.store.newRecord(r.schema, id, seed)
	entry := &registryEntry{record: record}
	entry.element = r.order.PushFront(key)
	r.records[key] = entry

	if r.max > 0 && len(r.records) > r.max {
		r.evictOldestLocked()
	}

	metrics.RegistrySize.WithLabelValues(r.schema.Collection()).Set(float64(len(r.records)))
	return record
}

// Get returns the registered Record for the id, if any.
func (r *Registry) Get(id ID) (*Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.records[id.Hex()]
	if !ok {
		return nil, false
	}
	r.order.MoveToFront(entry.element)
	return entry.record, true
}

// Has reports whether a Record is registered for the id.
func (r *Registry) Has(id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.records[id.Hex()]
	return ok
}

// Len reports the number of live records.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Clear drops every registered Record, optionally flushing each record's
// local field cache first so stale values cannot survive via references the
// caller still holds.
func (r *Registry) Clear(flushLocal bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if flushLocal {
		for _, entry := range r.records {
			entry.record.local.Flush()
		}
	}
	r.records = make(map[string]*registryEntry)
	r.order.Init()
	metrics.RegistrySize.WithLabelValues(r.schema.Collection()).Set(0)
}

// evictOldestLocked removes the least recently used record. Caller holds
// r.mu.
func (r *Registry) evictOldestLocked() {
	oldest := r.order.Back()
	if oldest == nil {
		return
	}
	key := oldest.Value.(string)
	if entry, ok := r.records[key]; ok {
		entry.record.local.Flush()
		delete(r.records, key)
	}
	r.order.Remove(oldest)
}
