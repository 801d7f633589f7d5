package bridge

import (
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	obs "github.com/house-360-vn/virtual-studio-web-remove-background/internal/infrastructure/observability"
)

// Supervisor drives reconnect attempts after connectivity loss. At most one
// attempt is ever pending: a fresh disconnect signal while a retry is
// already scheduled replaces the timer instead of stacking a second one.
// Failed attempts escalate the delay; a successful connect resets it.
type Supervisor struct {
	log     zerolog.Logger
	met     *obs.Metrics
	connect func() error

	mu      sync.Mutex
	pending *time.Timer
	bo      *backoff.ExponentialBackOff
	stopped bool
}

func NewSupervisor(log zerolog.Logger, met *obs.Metrics, initial, max time.Duration, connect func() error) *Supervisor {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initial
	bo.MaxInterval = max
	bo.MaxElapsedTime = 0 // keep retrying until stopped
	bo.Reset()
	return &Supervisor{log: log, met: met, connect: connect, bo: bo}
}

// Kick runs an immediate connection attempt, used for the initial connect.
func (s *Supervisor) Kick() {
	go s.attempt()
}

// ScheduleReconnect arms a single reconnect attempt, replacing any pending
// one.
func (s *Supervisor) ScheduleReconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.pending != nil {
		s.pending.Stop()
	}
	delay := s.bo.NextBackOff()
	s.pending = time.AfterFunc(delay, s.attempt)
	s.log.Info().Dur("delay", delay).Msg("reconnect: attempt scheduled")
}

func (s *Supervisor) attempt() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	s.mu.Unlock()

	s.met.ReconnectsTotal.Inc()
	if err := s.connect(); err != nil {
		s.log.Warn().Err(err).Msg("reconnect: attempt failed")
		s.ScheduleReconnect()
		return
	}
	s.mu.Lock()
	s.bo.Reset()
	s.mu.Unlock()
	s.log.Info().Msg("reconnect: session established")
}

// Stop cancels any pending attempt; the supervisor is done after this.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}
