package service

import (
	"sync"
	"time"

	"github.com/brgyhealth/bhc_api/internal/models"
	"github.com/brgyhealth/bhc_api/internal/utils"
)

// SessionStore holds in-progress registration sessions in memory. Sessions
// are short-lived scratch state; abandoned ones are purged by the janitor
// worker.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.RegistrationSession
}

// NewSessionStore creates an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*models.RegistrationSession),
	}
}

// Create allocates a new session in the upload state.
func (s *SessionStore) Create() (*models.RegistrationSession, error) {
	id, err := utils.GenerateSessionID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &models.RegistrationSession{
		ID:        id,
		State:     models.StateUpload,
		Form:      models.NewRegistrationForm(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess.Clone(), nil
}

// Get returns a snapshot of the session with the given id. The live record
// is only ever touched under the store lock; callers read and marshal the
// copy freely while writers keep mutating the original.
func (s *SessionStore) Get(id string) (*models.RegistrationSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, utils.ErrSessionNotFound
	}
	return sess.Clone(), nil
}

// Update runs fn against the live session under the store lock so concurrent
// writers (user edits racing automated resolution) serialize; the most
// recent write wins. The returned session is a snapshot like Get's.
func (s *SessionStore) Update(id string, fn func(*models.RegistrationSession) error) (*models.RegistrationSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, utils.ErrSessionNotFound
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	sess.UpdatedAt = time.Now()
	return sess.Clone(), nil
}

// Delete removes a session.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Sweep removes sessions idle longer than ttl and returns how many were
// purged. Called by the janitor worker.
func (s *SessionStore) Sweep(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for id, sess := range s.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			purged++
		}
	}
	return purged
}

// Count returns the number of live sessions.
func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
