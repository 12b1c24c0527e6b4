package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the per-browser calculator state.
type Session struct {
	ID        string
	Quotation *Quotation
	Material  string
	LastSeen  time.Time
}

// SessionStore owns every live session. Sessions idle longer than ttl are
// dropped the next time the store is touched.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates a store. A zero ttl keeps sessions forever.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Ensure returns the id of a live session, creating one when id is empty,
// unknown or expired.
func (s *SessionStore) Ensure(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()
	if sess, ok := s.sessions[id]; ok {
		sess.LastSeen = s.now()
		return id
	}
	sess := &Session{
		ID:        uuid.NewString(),
		Quotation: NewQuotation(),
		LastSeen:  s.now(),
	}
	s.sessions[sess.ID] = sess
	return sess.ID
}

// Update runs fn with exclusive access to the session. It reports false when
// the session does not exist.
func (s *SessionStore) Update(id string, fn func(*Session)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	sess.LastSeen = s.now()
	fn(sess)
	return true
}

// Snapshot returns the session's quotation items and selected material.
func (s *SessionStore) Snapshot(id string) (items []LineItem, material string, ok bool) {
	ok = s.Update(id, func(sess *Session) {
		items = sess.Quotation.Items()
		material = sess.Material
	})
	return items, material, ok
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) pruneLocked() {
	if s.ttl <= 0 {
		return
	}
	cutoff := s.now().Add(-s.ttl)
	for id, sess := range s.sessions {
		if sess.LastSeen.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}
