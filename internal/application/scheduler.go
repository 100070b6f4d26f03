package application

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/BellezaEmporium/galaxy-integration-ead/internal/ports"
)

// Scheduler rate-limits reconciliation passes: at most one pass in
// flight, and consecutive passes separated by a minimum interval.
// Transitions found by a pass are delivered to the notifier one by one.
type Scheduler struct {
	reconciler *Reconciler
	notifier   ports.LocalStateNotifier
	clock      ports.Clock
	interval   time.Duration
	logger     zerolog.Logger

	mu         sync.Mutex
	lastRun    time.Time
	inProgress bool
}

func NewScheduler(reconciler *Reconciler, notifier ports.LocalStateNotifier, clock ports.Clock, interval time.Duration) *Scheduler {
	return &Scheduler{
		reconciler: reconciler,
		notifier:   notifier,
		clock:      clock,
		interval:   interval,
		logger:     log.With().Str("component", "scheduler").Logger(),
	}
}

// MaybeRun performs a reconciliation pass unless one is already in
// flight or the previous pass finished less than the minimum interval
// ago. It reports whether a pass ran.
func (s *Scheduler) MaybeRun(ctx context.Context) bool {
	s.mu.Lock()
	if s.inProgress {
		s.mu.Unlock()
		return false
	}
	if !s.lastRun.IsZero() && s.clock.Now().Sub(s.lastRun) < s.interval {
		s.mu.Unlock()
		return false
	}
	s.inProgress = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inProgress = false
		s.mu.Unlock()
	}()

	_, changes := s.reconciler.Refresh(ctx)
	for _, change := range changes {
		s.logger.Info().
			Str("game_id", string(change.GameID)).
			Str("state", change.State.String()).
			Msg("local game changed")
		if s.notifier != nil {
			s.notifier.LocalGameChanged(change)
		}
	}

	s.mu.Lock()
	s.lastRun = s.clock.Now()
	s.mu.Unlock()
	return true
}
