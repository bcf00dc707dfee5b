// Package session holds the bearer token for the portal client. The token is
// a single mutable value read concurrently by in-flight requests, so access
// goes through a mutex, and changes are mirrored to durable storage.
package session

import (
	"sync"

	"github.com/noah-isme/studentlink-portal/internal/models"
)

// Store persists the session between process runs.
type Store interface {
	Load() (*State, error)
	Save(*State) error
	Clear() error
}

// State is the durable part of a session.
type State struct {
	Token string       `json:"token"`
	User  *models.User `json:"user,omitempty"`
}

// Session is the process-wide auth handle passed into the API client and the
// realtime adapter.
type Session struct {
	mu    sync.RWMutex
	token string
	user  *models.User
	store Store
}

// New builds a session backed by the given store. A nil store keeps the
// session memory-only.
func New(store Store) *Session {
	return &Session{store: store}
}

// Restore loads persisted state, if any. A missing session file is not an
// error; the session just stays unauthenticated.
func (s *Session) Restore() error {
	if s.store == nil {
		return nil
	}
	state, err := s.store.Load()
	if err != nil {
		return err
	}
	if state == nil {
		return nil
	}
	s.mu.Lock()
	s.token = state.Token
	s.user = state.User
	s.mu.Unlock()
	return nil
}

// Token returns the current bearer token, empty when unauthenticated.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the cached authenticated user, nil when unknown.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// SetToken replaces the held token and mirrors it to storage.
func (s *Session) SetToken(token string) error {
	s.mu.Lock()
	s.token = token
	state := &State{Token: s.token, User: s.user}
	s.mu.Unlock()
	return s.persist(state)
}

// SetUser caches the authenticated user alongside the token.
func (s *Session) SetUser(user *models.User) error {
	s.mu.Lock()
	s.user = user
	state := &State{Token: s.token, User: s.user}
	s.mu.Unlock()
	return s.persist(state)
}

// Clear drops the token and user and removes persisted state. Called on
// logout and on any 401 response.
func (s *Session) Clear() error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	if s.store == nil {
		return nil
	}
	return s.store.Clear()
}

func (s *Session) persist(state *State) error {
	if s.store == nil {
		return nil
	}
	return s.store.Save(state)
}
