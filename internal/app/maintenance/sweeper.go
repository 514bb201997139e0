package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/driftline/foundry/internal/cache"
	"github.com/driftline/foundry/internal/models"
	"github.com/driftline/foundry/pkg/logger"
)

const (
	defaultCacheSpec   = "@hourly"
	defaultSessionSpec = "@hourly"
)

// Sweeper runs background maintenance: purging expired rows from the
// database-backed cache store and deleting expired sessions. Both jobs only
// bound table growth; reads already treat expired rows as absent.
type Sweeper struct {
	db    *gorm.DB
	store *cache.DatabaseStore
	cron  *cron.Cron
	now   func() time.Time
	log   *zap.Logger

	cacheSchedule   string
	sessionSchedule string
}

// Option customises the Sweeper.
type Option func(*Sweeper)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(s *Sweeper) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithNow overrides the clock used for expiry comparisons.
func WithNow(now func() time.Time) Option {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCacheSchedule overrides the cron specification for the cache purge.
func WithCacheSchedule(spec string) Option {
	return func(s *Sweeper) {
		if spec != "" {
			s.cacheSchedule = spec
		}
	}
}

// WithSessionSchedule overrides the cron specification for session cleanup.
func WithSessionSchedule(spec string) Option {
	return func(s *Sweeper) {
		if spec != "" {
			s.sessionSchedule = spec
		}
	}
}

// NewSweeper constructs a Sweeper. A nil store skips the cache purge job; a
// nil db skips session cleanup.
func NewSweeper(db *gorm.DB, store *cache.DatabaseStore, opts ...Option) *Sweeper {
	s := &Sweeper{
		db:              db,
		store:           store,
		now:             time.Now,
		cacheSchedule:   defaultCacheSpec,
		sessionSchedule: defaultSessionSpec,
		log:             logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.cron == nil {
		s.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return s
}

// Start registers the jobs with the cron scheduler and launches it.
func (s *Sweeper) Start() error {
	if s.store != nil {
		if _, err := s.cron.AddFunc(s.cacheSchedule, func() {
			if n, err := s.store.PurgeExpired(context.Background(), s.now()); err != nil {
				s.log.Warn("cache purge failed", zap.Error(err))
			} else if n > 0 {
				s.log.Debug("cache entries purged", zap.Int64("rows", n))
			}
		}); err != nil {
			return err
		}
	}

	if s.db != nil {
		if _, err := s.cron.AddFunc(s.sessionSchedule, func() {
			if _, err := CleanupSessions(context.Background(), s.db, s.now()); err != nil {
				s.log.Warn("session cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	s.cron.Start()
	return nil
}

// Stop halts the scheduler, waiting for running jobs to complete.
func (s *Sweeper) Stop() context.Context {
	if s.cron == nil {
		return context.Background()
	}
	return s.cron.Stop()
}

// RunOnce executes all configured routines sequentially; used in tests and
// during graceful shutdown.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error
	if s.store != nil {
		if _, err := s.store.PurgeExpired(ctx, s.now()); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if s.db != nil {
		if _, err := CleanupSessions(ctx, s.db, s.now()); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// CleanupSessions removes sessions whose expiry has passed.
func CleanupSessions(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at < ?", now).
		Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
