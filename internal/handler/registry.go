package handler

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/adaptix/adaptix/internal/orchestrator"
)

// Registry owns the live per-visitor sessions. Each session gets its own
// engine stack so adaptation histories never cross talk between visitors.
// Idle sessions are swept on a timer.
type Registry struct {
	factory     func(id string) *orchestrator.Session
	idleTimeout time.Duration

	sessions sync.Map // sessionID -> *orchestrator.Session

	done chan struct{}
	once sync.Once
}

func NewRegistry(factory func(id string) *orchestrator.Session, idleTimeout time.Duration) *Registry {
	r := &Registry{
		factory:     factory,
		idleTimeout: idleTimeout,
		done:        make(chan struct{}),
	}
	go r.sweepLoop()
	return r
}

// Get returns the session for the given ID, creating it on first use.
func (r *Registry) Get(sessionID string) *orchestrator.Session {
	if existing, ok := r.sessions.Load(sessionID); ok {
		return existing.(*orchestrator.Session)
	}

	created := r.factory(sessionID)
	actual, loaded := r.sessions.LoadOrStore(sessionID, created)
	if loaded {
		// Lost the race; discard ours.
		created.Close()
	}
	return actual.(*orchestrator.Session)
}

// Lookup returns the session only if it already exists.
func (r *Registry) Lookup(sessionID string) (*orchestrator.Session, bool) {
	existing, ok := r.sessions.Load(sessionID)
	if !ok {
		return nil, false
	}
	return existing.(*orchestrator.Session), true
}

func (r *Registry) sweepLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

func (r *Registry) sweep() {
	cutoff := time.Now().Add(-r.idleTimeout)
	evicted := 0
	r.sessions.Range(func(key, value interface{}) bool {
		sess := value.(*orchestrator.Session)
		if sess.LastSeen().Before(cutoff) {
			sess.Close()
			r.sessions.Delete(key)
			evicted++
		}
		return true
	})
	if evicted > 0 {
		log.Debug().Int("count", evicted).Msg("Evicted idle sessions")
	}
}

// Close stops the sweeper and closes every live session.
func (r *Registry) Close() {
	r.once.Do(func() {
		close(r.done)
	})
	r.sessions.Range(func(key, value interface{}) bool {
		value.(*orchestrator.Session).Close()
		r.sessions.Delete(key)
		return true
	})
}
