package state

import (
	"fmt"
	"sync"
	"time"
)

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Session             Session
	Studios             Studios
	LastUpdated         time.Time
	LastPollError       error
	ConsecutiveFailures int // Number of consecutive background refresh failures
}

// IsOffline returns true when the studio service has been unreachable for
// multiple background refreshes.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to session and studio state.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// NewStore returns a Store whose session starts with token, typically the
// access token persisted from an earlier run.
func NewStore(token string) *Store {
	s := &Store{}
	s.snapshot.Session.Token = token
	return s
}

// UpdateSession applies fn to the session under the write lock.
func (s *Store) UpdateSession(fn func(Session) Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Session = fn(s.snapshot.Session.clone())
	s.snapshot.LastUpdated = time.Now()
}

// UpdateStudios applies fn to the studio state under the write lock.
func (s *Store) UpdateStudios(fn func(Studios) Studios) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Studios = fn(s.snapshot.Studios.clone())
	s.snapshot.LastUpdated = time.Now()
}

// RecordPoll tracks the outcome of a background refresh. A nil err resets the
// failure count.
func (s *Store) RecordPoll(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.snapshot.LastPollError = err
		s.snapshot.ConsecutiveFailures++
		return
	}
	s.snapshot.LastPollError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Reset drops all studio data and the session, as after logout or expiry.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Session = s.snapshot.Session.LoggedOut()
	s.snapshot.Studios = Studios{}
	s.snapshot.LastPollError = nil
	s.snapshot.ConsecutiveFailures = 0
	s.snapshot.LastUpdated = time.Now()
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Session = s.snapshot.Session.clone()
	snap.Studios = s.snapshot.Studios.clone()
	if s.snapshot.LastPollError != nil {
		snap.LastPollError = fmt.Errorf("%w", s.snapshot.LastPollError)
	}
	return snap
}
