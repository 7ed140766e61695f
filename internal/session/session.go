// Package session owns the bearer token for the lifetime of the process.
//
// The token is read from the credential store once, when the session is
// opened. After that the session is the only writer of the store: login
// establishes a token, a rejected identity invalidates it and account
// deletion terminates it.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/Rorical/katabasis/internal/credential"
	"github.com/Rorical/katabasis/internal/models"
)

var ErrEmptyToken = errors.New("empty access token")

// Session is the injected holder of the current credential.
type Session struct {
	store credential.Store
	log   *zap.Logger

	mu    sync.RWMutex
	token string
}

// Claims is what can be read from a JWT access token without verifying it.
// It is only used for display.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// Open reads the stored token once.
func Open(store credential.Store, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	token, ok, err := store.Get(credential.TokenKey)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		token = ""
	}
	return &Session{store: store, log: log, token: token}, nil
}

// Token returns the bearer token and whether one is present.
func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

func (s *Session) Authenticated() bool {
	_, ok := s.Token()
	return ok
}

// Establish persists a freshly issued token.
func (s *Session) Establish(token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Set(credential.TokenKey, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	s.token = token
	s.log.Info("session established")
	return nil
}

// Invalidate discards a token the server no longer recognizes. The in-memory
// token is dropped even when the store cannot be updated.
func (s *Session) Invalidate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	if err := s.store.Delete(credential.TokenKey); err != nil {
		s.log.Error("failed to delete stored token", zap.Error(err))
		return fmt.Errorf("delete token: %w", err)
	}
	s.log.Info("session invalidated")
	return nil
}

// Terminate wipes the whole credential store after the account is gone.
func (s *Session) Terminate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	if err := s.store.Clear(); err != nil {
		s.log.Error("failed to clear credential store", zap.Error(err))
		return fmt.Errorf("clear credentials: %w", err)
	}
	s.log.Info("session terminated")
	return nil
}

// Claims decodes the token payload when the token happens to be a JWT.
// Opaque tokens report false.
func (s *Session) Claims() (Claims, bool) {
	token, ok := s.Token()
	if !ok {
		return Claims{}, false
	}

	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}, false
	}

	var c Claims
	if sub, err := mc.GetSubject(); err == nil {
		c.Subject = sub
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, c.Subject != "" || !c.ExpiresAt.IsZero()
}

// Guard picks the view to enter. It never touches the network: a present
// token is necessary but not sufficient, the first exchange validates it.
func Guard(s *Session) models.View {
	if s == nil || !s.Authenticated() {
		return models.ViewLogin
	}
	return models.ViewChat
}
