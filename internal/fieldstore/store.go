package fieldstore

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/driftline/foundry/internal/cache"
	"github.com/driftline/foundry/pkg/errors"
)

const defaultDistributedTTL = 300 * time.Second

// Config carries the shared tier handles and policy for a Store. Everything
// is explicit construction state; there are no package-level connections.
type Config struct {
	// DB is the authoritative persistent store. Required.
	DB *gorm.DB

	// Cache is the shared distributed cache. Optional; when nil or not
	// ready every distributed operation degrades to a miss.
	Cache cache.Store

	// TTL applied to every distributed-cache key on write. Defaults to
	// five minutes.
	TTL time.Duration

	// DisableLocalCache is the process-wide kill switch for the in-process
	// tier.
	DisableLocalCache bool

	// Logger receives soft-failure diagnostics. Defaults to zap.NewNop.
	Logger *zap.Logger
}

// Store owns the process-wide tier handles and mints Records bound to them.
// One Store serves every entity type; per-type behavior comes from the
// Schema each Record carries.
type Store struct {
	db    *gorm.DB
	cache cache.Store
	ttl   time.Duration
	local bool
	log   *zap.Logger
}

// New validates the configuration and builds a Store.
func New(cfg Config) (*Store, error) {
	if cfg.DB == nil {
		return nil, errors.Config("store", "persistent database handle is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultDistributedTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Store{
		db:    cfg.DB,
		cache: cfg.Cache,
		ttl:   cfg.TTL,
		local: !cfg.DisableLocalCache,
		log:   cfg.Logger,
	}, nil
}

// TTL reports the distributed-cache expiry applied on writes.
func (s *Store) TTL() time.Duration { return s.ttl }

// CacheReady reports whether the distributed tier can currently serve.
func (s *Store) CacheReady() bool {
	return s.cache != nil && s.cache.Ready()
}

// newRecord wires the three tier adapters for one identity. Seed values,
// when present, pre-warm the local tier so hot paths skip the first read.
func (s *Store) newRecord(schema *Schema, id ID, seed map[string]any) *Record {
	r := &Record{
		id:      id,
		schema:  schema,
		local:   NewLocalFieldCache(schema, s.local),
		dist:    NewDistributedCache(s.cache, schema, id, s.ttl),
		persist: NewPersistentStore(s.db, schema, id),
		log:     s.log.With(zap.String("collection", schema.Collection()), zap.String("id", id.Hex())),
	}
	if len(seed) > 0 {
		r.local.SetMany(seed)
	}
	return r
}
