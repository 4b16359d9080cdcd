package orchestrator

import (
	"sync"
	"time"

	"github.com/adaptix/adaptix/internal/signals"
)

const updateBuffer = 8

// Session is the explicit per-visitor context: it owns one Optimizer, the
// latest observed inputs, and the current profile. The profile is re-derived
// on a fixed interval and on every Observe call; consumers either pull
// snapshots or listen on the push channel. One Session never models more
// than one visitor.
type Session struct {
	id       string
	opt      *Optimizer
	interval time.Duration

	mu       sync.RWMutex
	inputs   Inputs
	observed bool
	current  signals.OptimizationProfile
	lastSeen time.Time

	updates chan signals.OptimizationProfile
	done    chan struct{}
	closed  sync.Once
}

// NewSession starts the refresh ticker immediately; callers must Close the
// session when the visitor goes away.
func NewSession(id string, opt *Optimizer, interval time.Duration) *Session {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	s := &Session{
		id:       id,
		opt:      opt,
		interval: interval,
		lastSeen: time.Now(),
		updates:  make(chan signals.OptimizationProfile, updateBuffer),
		done:     make(chan struct{}),
	}
	go s.refreshLoop()
	return s
}

func (s *Session) ID() string {
	return s.id
}

// Observe stores fresh inputs, recomputes the profile immediately and
// returns it.
func (s *Session) Observe(in Inputs) signals.OptimizationProfile {
	s.mu.Lock()
	s.inputs = in
	s.observed = true
	s.lastSeen = time.Now()
	s.mu.Unlock()

	return s.recompute()
}

// Snapshot returns the current profile without recomputing. The second
// return is false until the first Observe.
func (s *Session) Snapshot() (signals.OptimizationProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.observed {
		return signals.OptimizationProfile{}, false
	}
	return s.current, true
}

// Updates is the optional push channel. Sends never block: when a consumer
// lags, intermediate profiles are dropped — only the latest state matters.
func (s *Session) Updates() <-chan signals.OptimizationProfile {
	return s.updates
}

// RecordOutcome feeds an adjustment outcome into this session's engine.
func (s *Session) RecordOutcome(adj signals.AdjustmentSet, after signals.UXMetrics) {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
	s.opt.RecordOutcome(adj, after)
}

// Optimizer exposes the session's engine facade.
func (s *Session) Optimizer() *Optimizer {
	return s.opt
}

// LastSeen reports the last Observe/RecordOutcome time, for idle eviction.
func (s *Session) LastSeen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

// Close stops the refresh loop. Idempotent.
func (s *Session) Close() {
	s.closed.Do(func() {
		close(s.done)
	})
}

func (s *Session) refreshLoop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.RLock()
			observed := s.observed
			s.mu.RUnlock()
			if observed {
				s.recompute()
			}
		}
	}
}

func (s *Session) recompute() signals.OptimizationProfile {
	s.mu.Lock()
	in := s.inputs
	s.mu.Unlock()

	profile := s.opt.Optimize(s.id, in)

	s.mu.Lock()
	s.current = profile
	s.mu.Unlock()

	select {
	case s.updates <- profile:
	default:
	}
	return profile
}
