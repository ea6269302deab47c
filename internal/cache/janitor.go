package cache

import (
	"context"
	"time"

	"github.com/Camalot9/picasaweb-go/internal/logger"
)

// DefaultSweepInterval is how often the janitor reclaims expired entries.
const DefaultSweepInterval = 30 * time.Minute

// Sweeper is a store that can reclaim expired entries in bulk. FileStore
// implements it; backends with native expiry do not need to.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// Janitor periodically sweeps a store. Reads judge freshness on their own,
// the janitor only reclaims the space stale entries occupy.
type Janitor struct {
	store    Sweeper
	log      logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewJanitor creates a janitor for store. A zero interval means
// DefaultSweepInterval.
func NewJanitor(store Sweeper, log logger.Logger, interval time.Duration) *Janitor {
	if interval == 0 {
		interval = DefaultSweepInterval
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Janitor{
		store:    store,
		log:      log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start sweeps once immediately, then periodically until Stop is called or
// ctx is cancelled.
func (j *Janitor) Start(ctx context.Context) {
	if err := j.sweep(ctx); err != nil {
		j.log.Warn("initial cache sweep failed", logger.Error(err))
	}

	ticker := time.NewTicker(j.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := j.sweep(ctx); err != nil {
					j.log.Error("cache sweep failed", logger.Error(err))
				}
			case <-j.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the janitor.
func (j *Janitor) Stop() {
	close(j.stopCh)
}

func (j *Janitor) sweep(ctx context.Context) error {
	removed, err := j.store.Sweep(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		j.log.Info("swept expired cache entries", logger.Int("removed", removed))
	}
	return nil
}
