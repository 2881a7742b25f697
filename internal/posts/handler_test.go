package posts

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrollr/scrollr/internal/logging"
	"github.com/scrollr/scrollr/internal/middleware"
	"github.com/scrollr/scrollr/internal/models"
	"github.com/scrollr/scrollr/internal/store"
)

func TestHandler_WithoutUser(t *testing.T) {
	s := store.NewMemoryStore()
	h := NewHandler(NewService(s, s, nil, logging.Discard()), logging.Discard())

	tests := []struct {
		name    string
		handler http.HandlerFunc
		req     *http.Request
	}{
		{name: "create", handler: h.Create, req: httptest.NewRequest(http.MethodPost, "/api/posts", strings.NewReader(`{"text":"hi"}`))},
		{name: "delete", handler: h.Delete, req: httptest.NewRequest(http.MethodDelete, "/api/posts/p1", nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, tt.req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			var body models.MessageResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, middleware.ErrNoToken.Message, body.Message)
		})
	}

	posts, err := s.ListPosts(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	require.NoError(t, err)
	assert.Empty(t, posts)
}
