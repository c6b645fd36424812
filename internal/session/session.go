// Package session tracks the authenticated parent account a device is
// bound to. All local sync state belongs to exactly one owner; a change
// of owner wipes that state rather than merging two owners' data.
package session

import (
	"sync"

	"kidsync/internal/credentials"
)

// Session holds the signed-in owner for the lifetime of an app session.
// It satisfies the sync engine's Session contract.
type Session struct {
	mu      sync.RWMutex
	ownerID string
	token   string
}

// FromCredentials builds a session from resolved credentials. An
// unresolved credential set produces an unauthenticated session.
func FromCredentials(creds *credentials.Credentials) *Session {
	if creds == nil || creds.Source == credentials.SourceNone {
		return &Session{}
	}
	return &Session{
		ownerID: creds.OwnerID,
		token:   creds.Token,
	}
}

// CurrentOwnerID returns the signed-in owner, with ok=false when nobody
// is authenticated.
func (s *Session) CurrentOwnerID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ownerID, s.ownerID != ""
}

// Token returns the API token for the signed-in owner
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Switch signs in a new owner and reports whether the owner actually
// changed. When it did, the caller must wipe the previous owner's local
// state before any sync runs for the new owner.
func (s *Session) Switch(ownerID, token string) (previous string, changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous = s.ownerID
	changed = previous != "" && previous != ownerID

	s.ownerID = ownerID
	s.token = token
	return previous, changed
}

// SignOut clears the session
func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ownerID = ""
	s.token = ""
}
