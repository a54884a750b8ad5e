// Package session tracks concurrently-running gating sessions (a Program
// Filter or an Airtime Tracker fed by a caller's packet loop), so
// cmd/tsgate can run more than one sid/eid pair at once. Adapted from the
// teacher's internal/stream.Manager, generalized from "live stream" to
// "gating session".
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Runner is anything a session drives to completion: gate.Filter and
// airtime.Tracker are both fed packets by a caller-supplied loop, so the
// registry only needs to track lifecycle, not the packet loop itself.
type Runner interface {
	// Run drives the session to completion or until ctx is canceled.
	Run(ctx context.Context) error
}

// Session represents one running gating session.
type Session struct {
	Name      string
	StartedAt time.Time
	cancel    context.CancelFunc
	done      chan struct{}
	err       error
}

// Err returns the error Run finished with, if any. It is only meaningful
// after Wait has returned.
func (s *Session) Err() error {
	return s.err
}

// Registry manages the lifecycle of active gating sessions.
type Registry struct {
	log      *slog.Logger
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates a Registry. If log is nil, slog.Default() is used.
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		log:      log.With("component", "session-registry"),
		sessions: make(map[string]*Session),
	}
}

// Start registers and runs r under name, returning an error immediately if
// a session with that name already exists. r.Run is driven in a background
// goroutine; the session is removed from the registry when it completes.
func (r *Registry) Start(ctx context.Context, name string, run Runner) (*Session, error) {
	r.mu.Lock()
	if _, exists := r.sessions[name]; exists {
		r.mu.Unlock()
		r.log.Warn("session already exists, rejecting duplicate", "name", name)
		return nil, errAlreadyRunning(name)
	}

	sessCtx, cancel := context.WithCancel(ctx)
	s := &Session{
		Name:      name,
		StartedAt: time.Now(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	r.sessions[name] = s
	r.mu.Unlock()

	r.log.Info("session started", "name", name)

	go func() {
		s.err = run.Run(sessCtx)
		close(s.done)

		r.mu.Lock()
		delete(r.sessions, name)
		r.mu.Unlock()

		if s.err != nil {
			r.log.Warn("session ended with error", "name", name, "error", s.err)
		} else {
			r.log.Info("session ended", "name", name)
		}
	}()

	return s, nil
}

// Stop cancels the named session's context. It does not block for the
// session to actually finish; use Session.Wait for that.
func (r *Registry) Stop(name string) {
	r.mu.RLock()
	s, ok := r.sessions[name]
	r.mu.RUnlock()
	if ok {
		s.cancel()
	}
}

// Wait blocks until the session finishes.
func (s *Session) Wait() {
	<-s.done
}

// List returns all currently active sessions.
func (r *Registry) List() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}
