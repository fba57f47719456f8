// Scentwise - Adaptive Fragrance Interview and Recommendation Service
// Copyright 2026 Scentwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scentwise/scentwise

package quiz

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scentwise/scentwise/internal/logging"
	"github.com/scentwise/scentwise/internal/metrics"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Session pairs a flow with its identity and lifetime bookkeeping. The
// embedded mutex serializes all flow access for one session, so concurrent
// requests against the same session never interleave partial updates.
type Session struct {
	mu sync.Mutex

	ID        string
	Flow      *Flow
	CreatedAt time.Time
	LastSeen  time.Time
}

// SessionStore holds in-memory interview sessions with idle expiry. A
// background sweeper evicts sessions idle past the TTL.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	ttl   time.Duration
	sweep time.Duration
	now   func() time.Time
}

// NewSessionStore creates a store. Run must be started for expiry to work.
func NewSessionStore(ttl, sweepInterval time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		sweep:    sweepInterval,
		now:      time.Now,
	}
}

// Create starts a new session with a fresh flow.
func (s *SessionStore) Create() *Session {
	now := s.now()
	sess := &Session{
		ID:        uuid.New().String(),
		Flow:      NewFlow(),
		CreatedAt: now,
		LastSeen:  now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	active := len(s.sessions)
	s.mu.Unlock()

	metrics.SessionsCreated.Inc()
	metrics.SessionsActive.Set(float64(active))
	logging.Debug().Str("session_id", sess.ID).Msg("Session created")
	return sess
}

// Get returns the live session for id, refreshing its idle timer. The
// session's Flow may be mutated by concurrent Update calls; callers that
// read flow state outside the session lock use View instead.
func (s *SessionStore) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	sess.mu.Lock()
	sess.LastSeen = s.now()
	sess.mu.Unlock()
	return sess, nil
}

// View returns a deep copy of the session's flow taken under the session
// lock, refreshing the idle timer. The copy stays consistent no matter
// what concurrent updates do to the live flow.
func (s *SessionStore) View(id string) (*Flow, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.LastSeen = s.now()
	return sess.Flow.Clone(), nil
}

// Update runs fn while holding the session's lock, refreshing its idle
// timer. fn must not call back into the store.
func (s *SessionStore) Update(id string, fn func(*Flow)) error {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.LastSeen = s.now()
	fn(sess.Flow)
	return nil
}

// Delete removes a session.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	active := len(s.sessions)
	s.mu.Unlock()
	metrics.SessionsActive.Set(float64(active))
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Serve sweeps expired sessions until the context is cancelled. It satisfies
// suture's Service interface so the supervisor restarts it on panic.
func (s *SessionStore) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.sweep)
	defer ticker.Stop()

	logging.Info().
		Dur("ttl", s.ttl).
		Dur("sweep_interval", s.sweep).
		Msg("Session sweeper started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.evictExpired()
		}
	}
}

func (s *SessionStore) evictExpired() {
	cutoff := s.now().Add(-s.ttl)
	var expired []string

	s.mu.Lock()
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.LastSeen.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			expired = append(expired, id)
		}
	}
	active := len(s.sessions)
	s.mu.Unlock()

	if len(expired) > 0 {
		metrics.SessionsExpired.Add(float64(len(expired)))
		metrics.SessionsActive.Set(float64(active))
		logging.Debug().Int("count", len(expired)).Msg("Expired idle sessions")
	}
}

// String implements fmt.Stringer for supervisor logs.
func (s *SessionStore) String() string {
	return "session-sweeper"
}
