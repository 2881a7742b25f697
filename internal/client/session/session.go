// Package session holds the logged-in user's profile and token, mirrored
// between memory and durable storage.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/scrollr/scrollr/internal/models"
)

// Durable storage keys. Both are written on login and cleared on logout.
const (
	KeyUser  = "user"
	KeyToken = "token"
)

var (
	// ErrNotHydrated means Hydrate has not run yet; protected views should
	// render a loading state rather than redirect.
	ErrNotHydrated = errors.New("session not hydrated")
	// ErrLoginRequired means there is no usable session.
	ErrLoginRequired = errors.New("login required")
)

// Store is durable key/value storage.
type Store interface {
	Get(key string) (string, bool, error)
	Put(pairs map[string]string) error
	Delete(keys ...string) error
}

// Session is the client's auth state.
type Session struct {
	mu       sync.RWMutex
	store    Store
	user     *models.AuthResponse
	hydrated bool
	now      func() time.Time
}

func New(store Store) *Session {
	return &Session{store: store, now: time.Now}
}

// Hydrate loads the persisted session once. The two keys live and die
// together: a profile without a token, a token without a profile, a
// profile that no longer decodes or an already expired token clears both.
func (s *Session) Hydrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hydrated {
		return nil
	}

	rawUser, hasUser, err := s.store.Get(KeyUser)
	if err != nil {
		return err
	}
	token, hasToken, err := s.store.Get(KeyToken)
	if err != nil {
		return err
	}

	var u models.AuthResponse
	switch {
	case !hasUser && !hasToken:
	case !hasUser || !hasToken || token == "",
		json.Unmarshal([]byte(rawUser), &u) != nil,
		expired(token, s.now()):
		if err := s.store.Delete(KeyUser, KeyToken); err != nil {
			return fmt.Errorf("clear stale session: %w", err)
		}
	default:
		u.Token = token
		s.user = &u
	}

	s.hydrated = true
	return nil
}

// Login persists data and makes it the current session.
func (s *Session) Login(data *models.AuthResponse) error {
	if data == nil || data.Token == "" {
		return errors.New("login: response has no token")
	}
	profile := *data
	profile.Token = ""
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("login: encode user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Put(map[string]string{KeyUser: string(raw), KeyToken: data.Token}); err != nil {
		return fmt.Errorf("login: persist: %w", err)
	}
	u := *data
	s.user = &u
	s.hydrated = true
	return nil
}

// Logout clears durable and in-memory state.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = nil
	if err := s.store.Delete(KeyUser, KeyToken); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// User returns a copy of the current profile, or nil.
func (s *Session) User() *models.AuthResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token returns the bearer token of the current session, or "".
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return ""
	}
	return s.user.Token
}

func (s *Session) Hydrated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hydrated
}

// Guard admits a protected view only when the session is hydrated and
// both a durable token and an in-memory user are present.
func (s *Session) Guard() (*models.AuthResponse, error) {
	if !s.Hydrated() {
		return nil, ErrNotHydrated
	}
	token, ok, err := s.store.Get(KeyToken)
	if err != nil {
		return nil, err
	}
	user := s.User()
	if !ok || token == "" || user == nil {
		return nil, ErrLoginRequired
	}
	return user, nil
}

// expired reports whether token carries an exp claim in the past. The
// signature is not checked; only the server can do that.
func expired(token string, now time.Time) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	return claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time)
}
