package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SnapshotPurger removes session snapshots that have been idle since a cutoff
type SnapshotPurger interface {
	PurgeIdleSessions(ctx context.Context, cutoff time.Time) (int64, error)
}

// PurgeConfig holds configuration for the snapshot purge scheduler
type PurgeConfig struct {
	// Interval is how often the purge runs
	Interval time.Duration
	// MaxIdle is how long a session may stay untouched before its
	// snapshots are removed
	MaxIdle time.Duration
}

// DefaultPurgeConfig returns default purge configuration
func DefaultPurgeConfig() PurgeConfig {
	return PurgeConfig{
		Interval: time.Hour,
		MaxIdle:  30 * 24 * time.Hour,
	}
}

// PurgeScheduler periodically deletes idle session snapshots so abandoned
// carts and favorites do not accumulate forever.
type PurgeScheduler struct {
	config PurgeConfig
	purger SnapshotPurger
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewPurgeScheduler creates a new purge scheduler
func NewPurgeScheduler(config PurgeConfig, purger SnapshotPurger, logger *zap.Logger) *PurgeScheduler {
	if config.Interval <= 0 {
		config.Interval = DefaultPurgeConfig().Interval
	}
	if config.MaxIdle <= 0 {
		config.MaxIdle = DefaultPurgeConfig().MaxIdle
	}
	return &PurgeScheduler{
		config: config,
		purger: purger,
		logger: logger.Named("scheduler.purge"),
	}
}

// Start begins the periodic purge loop
func (s *PurgeScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Snapshot purge scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("max_idle", s.config.MaxIdle),
	)

	return nil
}

// Stop stops the purge loop, waiting for an in-flight run to finish
func (s *PurgeScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Snapshot purge scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *PurgeScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// RunOnce executes a single purge pass immediately
func (s *PurgeScheduler) RunOnce(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.config.MaxIdle)
	return s.purger.PurgeIdleSessions(ctx, cutoff)
}

func (s *PurgeScheduler) runOnce(ctx context.Context) {
	removed, err := s.RunOnce(ctx)
	if err != nil {
		s.logger.Warn("Snapshot purge failed", zap.Error(err))
		return
	}
	if removed > 0 {
		s.logger.Info("Purged idle session snapshots", zap.Int64("removed", removed))
	}
}
