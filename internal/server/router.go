// Package server wires the HTTP routes and middleware.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/scrollr/scrollr/internal/auth"
	"github.com/scrollr/scrollr/internal/logging"
	"github.com/scrollr/scrollr/internal/middleware"
	"github.com/scrollr/scrollr/internal/posts"
)

// Deps are the services the router dispatches to.
type Deps struct {
	Auth           *auth.Service
	Posts          *posts.Service
	Log            logging.Logger
	AllowedOrigins []string
}

// NewRouter builds the API router.
func NewRouter(d Deps) http.Handler {
	authHandler := auth.NewHandler(d.Auth, d.Log)
	postHandler := posts.NewHandler(d.Posts, d.Log)
	requireAuth := middleware.RequireAuth(d.Auth, d.Log)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("API is running..."))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.With(requireAuth).Get("/me", authHandler.Me)
	})

	r.Route("/api/posts", func(r chi.Router) {
		r.Get("/", postHandler.List)
		r.With(requireAuth).Post("/", postHandler.Create)
		r.With(requireAuth).Delete("/{postId}", postHandler.Delete)
	})

	return r
}
