package session

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/sprava/spravaterm/internal/bus"
	"github.com/sprava/spravaterm/internal/store"
	"go.uber.org/zap"
)

// Identity is the authenticated user.
type Identity struct {
	UserID   int64
	Username string
}

// Session holds the process-wide credential and identity. Exactly one lives
// per client process; the transport and every authenticated call read from
// it. Only Login and Logout mutate the credential.
type Session struct {
	mu       sync.RWMutex
	token    string
	identity Identity

	db     *store.DB
	bus    *bus.Bus
	logger *zap.Logger
}

// New creates an empty session backed by the given state store.
func New(db *store.DB, b *bus.Bus, logger *zap.Logger) *Session {
	return &Session{db: db, bus: b, logger: logger}
}

// Restore loads a persisted credential and identity at startup. A missing
// credential is not an error; the session just stays unauthenticated.
func (s *Session) Restore() error {
	token, err := s.db.GetState(store.KeyCredential)
	if err == store.ErrNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore credential: %w", err)
	}

	s.mu.Lock()
	s.token = token
	if v, err := s.db.GetState(store.KeyUserID); err == nil {
		s.identity.UserID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, err := s.db.GetState(store.KeyUsername); err == nil {
		s.identity.Username = v
	}
	s.mu.Unlock()

	s.logger.Info("session restored", zap.Int64("user_id", s.identity.UserID))
	return nil
}

// Login stores a fresh credential and identity, both in memory and durably.
func (s *Session) Login(token string, id Identity) error {
	if err := s.db.SetState(store.KeyCredential, token); err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}
	if err := s.db.SetState(store.KeyUserID, strconv.FormatInt(id.UserID, 10)); err != nil {
		return fmt.Errorf("persist user id: %w", err)
	}
	if err := s.db.SetState(store.KeyUsername, id.Username); err != nil {
		return fmt.Errorf("persist username: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.identity = id
	s.mu.Unlock()

	s.bus.Publish(bus.Event{Kind: bus.KindSessionLoggedIn, Timestamp: time.Now(), Payload: id})
	return nil
}

// Logout clears the credential and identity. Also the recovery path when
// the transport reports the credential rejected.
func (s *Session) Logout() error {
	for _, key := range []string{store.KeyCredential, store.KeyUserID, store.KeyUsername} {
		if err := s.db.DeleteState(key); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
	}

	s.mu.Lock()
	s.token = ""
	s.identity = Identity{}
	s.mu.Unlock()

	s.bus.Publish(bus.Event{Kind: bus.KindSessionLoggedOut, Timestamp: time.Now()})
	return nil
}

// Token returns the current credential, or empty when unauthenticated.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsAuthenticated reports whether a credential is set.
func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

// Identity returns the authenticated user. Zero value when unauthenticated.
func (s *Session) Identity() Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}
