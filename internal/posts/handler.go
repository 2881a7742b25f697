package posts

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scrollr/scrollr/internal/httpx"
	"github.com/scrollr/scrollr/internal/logging"
	"github.com/scrollr/scrollr/internal/middleware"
	"github.com/scrollr/scrollr/internal/models"
)

// Handler holds post HTTP handlers.
type Handler struct {
	svc *Service
	log logging.Logger
}

func NewHandler(svc *Service, log logging.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Create stores a post for the authenticated user.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, r, h.log, middleware.ErrNoToken)
		return
	}

	var req models.CreatePostRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	post, err := h.svc.Create(r.Context(), user, req.Text)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, post)
}

// List returns the whole feed. No authentication required.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.List(r.Context())
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}
	httpx.WriteJSON(w, http.StatusOK, posts)
}

// Delete removes a post owned by the authenticated user.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, r, h.log, middleware.ErrNoToken)
		return
	}

	if err := h.svc.Delete(r.Context(), user.ID, chi.URLParam(r, "postId")); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "Post deleted")
}
