package session

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrollr/scrollr/internal/client/storage"
	"github.com/scrollr/scrollr/internal/models"
)

func openStore(t *testing.T) *storage.Storage {
	t.Helper()
	s, err := storage.Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func tokenExpiringAt(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("whatever"))
	require.NoError(t, err)
	return tok
}

func profile(token string) *models.AuthResponse {
	return &models.AuthResponse{ID: "u1", Username: "alice", Email: "alice@example.com", Token: token}
}

func TestGuard_BeforeHydrate(t *testing.T) {
	s := New(openStore(t))

	_, err := s.Guard()
	assert.ErrorIs(t, err, ErrNotHydrated)
	assert.False(t, s.Hydrated())

	require.NoError(t, s.Hydrate())
	_, err = s.Guard()
	assert.ErrorIs(t, err, ErrLoginRequired)
}

func TestLogin_PersistsAcrossSessions(t *testing.T) {
	store := openStore(t)
	token := tokenExpiringAt(t, time.Now().Add(time.Hour))

	first := New(store)
	require.NoError(t, first.Hydrate())
	require.NoError(t, first.Login(profile(token)))

	user, err := first.Guard()
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, token, first.Token())

	raw, ok, err := store.Get(KeyUser)
	require.NoError(t, err)
	require.True(t, ok)
	var persisted models.AuthResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	assert.Equal(t, "u1", persisted.ID)

	second := New(store)
	require.NoError(t, second.Hydrate())
	user, err = second.Guard()
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, token, second.Token())
}

func TestLogout_ClearsBothKeys(t *testing.T) {
	store := openStore(t)
	s := New(store)
	require.NoError(t, s.Hydrate())
	require.NoError(t, s.Login(profile(tokenExpiringAt(t, time.Now().Add(time.Hour)))))

	require.NoError(t, s.Logout())

	for _, key := range []string{KeyUser, KeyToken} {
		_, ok, err := store.Get(key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
	assert.Nil(t, s.User())
	assert.Empty(t, s.Token())
	_, err := s.Guard()
	assert.ErrorIs(t, err, ErrLoginRequired)

	fresh := New(store)
	require.NoError(t, fresh.Hydrate())
	_, err = fresh.Guard()
	assert.ErrorIs(t, err, ErrLoginRequired)
}

func TestHydrate_DropsExpiredToken(t *testing.T) {
	store := openStore(t)
	seed := New(store)
	require.NoError(t, seed.Login(profile(tokenExpiringAt(t, time.Now().Add(-time.Minute)))))

	s := New(store)
	require.NoError(t, s.Hydrate())

	_, err := s.Guard()
	assert.ErrorIs(t, err, ErrLoginRequired)
	_, ok, err := store.Get(KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHydrate_DropsCorruptProfile(t *testing.T) {
	store := openStore(t)
	require.NoError(t, store.Put(map[string]string{KeyUser: "{not json", KeyToken: "t"}))

	s := New(store)
	require.NoError(t, s.Hydrate())
	assert.Nil(t, s.User())
	_, ok, err := store.Get(KeyUser)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGuard_RequiresDurableToken(t *testing.T) {
	store := openStore(t)
	s := New(store)
	require.NoError(t, s.Login(profile(tokenExpiringAt(t, time.Now().Add(time.Hour)))))

	// another process logged out underneath us
	require.NoError(t, store.Delete(KeyToken))

	_, err := s.Guard()
	assert.ErrorIs(t, err, ErrLoginRequired)
}

func TestLogin_RequiresToken(t *testing.T) {
	s := New(openStore(t))
	assert.Error(t, s.Login(profile("")))
	assert.Error(t, s.Login(nil))
}

func TestLogin_ProfileDoesNotCarryToken(t *testing.T) {
	store := openStore(t)
	token := tokenExpiringAt(t, time.Now().Add(time.Hour))
	require.NoError(t, New(store).Login(profile(token)))

	raw, ok, err := store.Get(KeyUser)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, raw, token)

	// with the token key gone nothing can resurrect the token
	require.NoError(t, store.Delete(KeyToken))
	s := New(store)
	require.NoError(t, s.Hydrate())
	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())
}

func TestHydrate_ClearsHalfSession(t *testing.T) {
	tests := []struct {
		name  string
		pairs map[string]string
	}{
		{name: "token without user", pairs: map[string]string{KeyToken: "orphan"}},
		{name: "user without token", pairs: map[string]string{KeyUser: `{"_id":"u1","username":"alice"}`}},
		{name: "empty token", pairs: map[string]string{KeyUser: `{"_id":"u1","username":"alice"}`, KeyToken: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := openStore(t)
			require.NoError(t, store.Put(tt.pairs))

			s := New(store)
			require.NoError(t, s.Hydrate())
			assert.Nil(t, s.User())
			assert.Empty(t, s.Token())

			for _, key := range []string{KeyUser, KeyToken} {
				_, ok, err := store.Get(key)
				require.NoError(t, err)
				assert.False(t, ok, key)
			}
		})
	}
}
