package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// SessionCleaner removes expired sessions and reports how many it removed
type SessionCleaner interface {
	CleanExpiredSessions() int
}

// SweeperConfig holds configuration for the session sweeper
type SweeperConfig struct {
	// Schedule is a cron spec, e.g. "@every 1m" or "*/5 * * * *"
	Schedule string
}

// DefaultSweeperConfig returns default sweeper configuration
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		Schedule: "@every 1m",
	}
}

// SessionSweeper periodically clears expired sessions from the session table
type SessionSweeper struct {
	sessions SessionCleaner
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewSessionSweeper creates a sweeper. It does not run until Start is called.
func NewSessionSweeper(sessions SessionCleaner, cfg SweeperConfig, logger *slog.Logger) *SessionSweeper {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSweeperConfig().Schedule
	}
	return &SessionSweeper{
		sessions: sessions,
		schedule: cfg.Schedule,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start schedules the sweep and starts the scheduler
func (s *SessionSweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.Sweep); err != nil {
		return fmt.Errorf("failed to schedule session sweep %q: %w", s.schedule, err)
	}
	s.cron.Start()

	s.logger.Info("session sweeper started", slog.String("schedule", s.schedule))
	return nil
}

// Stop stops scheduling sweeps and waits for a running sweep to finish
// or ctx to expire
func (s *SessionSweeper) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("session sweeper stopped")
	case <-ctx.Done():
		s.logger.Warn("session sweeper stop timed out")
	}
}

// Sweep removes expired sessions once
func (s *SessionSweeper) Sweep() {
	removed := s.sessions.CleanExpiredSessions()
	if removed > 0 {
		s.logger.Info("expired sessions removed", slog.Int("count", removed))
	}
}
