// Package session holds the decoded identity derived from the stored
// credential artifact and answers role-membership queries for the
// authorization gate. It is an explicit service object: every component that
// needs the session receives the Store, nothing reads ambient global state.
package session

import (
	"sync"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/minimart/console/internal/authz"
)

// Identity is the in-memory session derived from a valid credential artifact.
type Identity struct {
	// Subject is the account identifier carried in the token (the email).
	Subject string
	// FullName is only known from a login response; restored sessions
	// leave it empty because the token does not carry it.
	FullName string
	Roles    []authz.Role
	// ExpiresAt mirrors the token expiry when the token carries one.
	ExpiresAt *time.Time
}

// Store owns the credential slot and the current session. All methods are
// safe for concurrent use.
type Store struct {
	tokens TokenStore
	lg     *zap.Logger
	now    func() time.Time

	mu      sync.RWMutex
	current *Identity
	token   string
}

// NewStore creates a Store over the given credential slot.
func NewStore(tokens TokenStore, lg *zap.Logger) *Store {
	return &Store{
		tokens: tokens,
		lg:     lg,
		now:    time.Now,
	}
}

// Restore rebuilds the session from the persisted credential artifact, if one
// is held. Any failure (unreadable slot, malformed token, expired token,
// unknown role) degrades silently to logged-out; an expired credential is a
// normal condition, not an error the user should see. A failed decode also
// clears the slot so the next start does not retry it.
func (s *Store) Restore() {
	token, ok, err := s.tokens.Load()
	if err != nil {
		s.lg.Warn("load stored credential", zap.Error(err))
		return
	}
	if !ok {
		return
	}

	id, err := decodeIdentity(token, s.now())
	if err != nil {
		s.lg.Debug("discarding stored credential", zap.Error(err))
		if err := s.tokens.Clear(); err != nil {
			s.lg.Warn("clear stored credential", zap.Error(err))
		}
		return
	}

	s.mu.Lock()
	s.current = &id
	s.token = token
	s.mu.Unlock()
	s.lg.Debug("session restored", zap.String("subject", id.Subject))
}

// Login persists the credential artifact and installs the identity returned
// by the authentication endpoint. The caller has already validated the
// credentials against the backend.
func (s *Store) Login(token string, id Identity) error {
	if err := s.tokens.Save(token); err != nil {
		return errors.Wrap(err, "persist credential")
	}
	s.mu.Lock()
	s.current = &id
	s.token = token
	s.mu.Unlock()
	return nil
}

// Logout clears both the persisted credential and the in-memory session.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.current = nil
	s.token = ""
	s.mu.Unlock()
	if err := s.tokens.Clear(); err != nil {
		return errors.Wrap(err, "clear credential")
	}
	return nil
}

// Current returns the active identity. ok is false when logged out.
func (s *Store) Current() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Identity{}, false
	}
	return *s.current, true
}

// HasRole reports whether a session exists and holds the given role. It never
// errors: no session simply means no role.
func (s *Store) HasRole(r authz.Role) bool {
	return s.Roles().Has(r)
}

// Roles returns the held role set for the authorization gate, or nil when no
// session exists. A session with an empty role set returns an empty, non-nil
// set: still authenticated, but shut out of every role-gated view.
func (s *Store) Roles() authz.RoleSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	return authz.NewRoleSet(s.current.Roles...)
}

// Token returns the raw credential artifact for the auth transport.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}
