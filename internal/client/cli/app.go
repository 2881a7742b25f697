// Package cli is the scrollr terminal client.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/scrollr/scrollr/internal/client/api"
	"github.com/scrollr/scrollr/internal/client/session"
	"github.com/scrollr/scrollr/internal/client/storage"
	"github.com/scrollr/scrollr/internal/logging"
	"github.com/scrollr/scrollr/internal/models"
)

// API is everything the commands call on the server.
type API interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Me(ctx context.Context) (*models.AuthResponse, error)
	ListPosts(ctx context.Context) ([]models.Post, error)
	CreatePost(ctx context.Context, text string) (*models.Post, error)
	DeletePost(ctx context.Context, id string) (string, error)
}

// App carries the open session and API client for one command run.
type App struct {
	APIURL      string
	SessionPath string

	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
	log    logging.Logger

	storage *storage.Storage
	session *session.Session
	api     API
}

func NewApp(in io.Reader, out io.Writer, log logging.Logger) *App {
	return &App{in: in, reader: bufio.NewReader(in), out: out, log: log}
}

// open hydrates the session from SessionPath and builds the API client.
func (a *App) open() error {
	st, err := storage.Open(a.SessionPath)
	if err != nil {
		return err
	}
	sess := session.New(st)
	if err := sess.Hydrate(); err != nil {
		_ = st.Close()
		return fmt.Errorf("load session: %w", err)
	}
	a.storage = st
	a.session = sess
	a.api = api.NewClient(a.APIURL, sess)
	return nil
}

func (a *App) close() error {
	if a.storage == nil {
		return nil
	}
	err := a.storage.Close()
	a.storage = nil
	return err
}

// requireUser returns the logged-in profile or a message telling the user
// to log in.
func (a *App) requireUser() (*models.AuthResponse, error) {
	user, err := a.session.Guard()
	if errors.Is(err, session.ErrLoginRequired) {
		return nil, errors.New("not logged in; run `scrollr login` first")
	}
	return user, err
}

// apiFailure turns an API error into the message shown to the user. A 401
// means the stored token is no longer accepted, so the session is dropped.
func (a *App) apiFailure(ctx context.Context, err error) error {
	if errors.Is(err, api.ErrUnauthorized) && a.session.User() != nil {
		if lerr := a.session.Logout(); lerr != nil {
			a.log.Warn(ctx, "clear rejected session", "err", lerr)
		}
		return fmt.Errorf("%s; you have been logged out", api.MessageOf(err))
	}
	a.log.Info(ctx, "api request failed", "err", err)
	return errors.New(api.MessageOf(err))
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
