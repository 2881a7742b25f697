// Package views holds the client screens as plain state machines: each
// view keeps its own fields, talks to the API and reports an error string
// for display.
package views

import (
	"context"
	"errors"
	"strings"

	"github.com/scrollr/scrollr/internal/client/api"
	"github.com/scrollr/scrollr/internal/models"
)

// ErrIncomplete is returned by Submit when CanSubmit is false.
var ErrIncomplete = errors.New("all fields are required")

// AuthAPI is the part of the API the login and signup views call.
type AuthAPI interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
}

// SessionWriter stores a successful login.
type SessionWriter interface {
	Login(data *models.AuthResponse) error
}

// LoginForm is the login screen.
type LoginForm struct {
	Email    string
	Password string
	Error    string
}

// CanSubmit is false until every field is filled in.
func (f *LoginForm) CanSubmit() bool {
	return strings.TrimSpace(f.Email) != "" && f.Password != ""
}

// Submit logs in and stores the session. On failure Error holds the
// server's message.
func (f *LoginForm) Submit(ctx context.Context, client AuthAPI, sess SessionWriter) (*models.AuthResponse, error) {
	f.Error = ""
	if !f.CanSubmit() {
		return nil, ErrIncomplete
	}
	resp, err := client.Login(ctx, models.LoginRequest{Email: strings.TrimSpace(f.Email), Password: f.Password})
	if err != nil {
		f.Error = api.MessageOf(err)
		return nil, err
	}
	if err := sess.Login(resp); err != nil {
		f.Error = api.FallbackMessage
		return nil, err
	}
	return resp, nil
}

// SignupForm is the signup screen.
type SignupForm struct {
	Username string
	Email    string
	Password string
	Avatar   string
	Error    string
}

// CanSubmit is false until username, email and password are filled in.
func (f *SignupForm) CanSubmit() bool {
	return strings.TrimSpace(f.Username) != "" && strings.TrimSpace(f.Email) != "" && f.Password != ""
}

// Submit registers and stores the session.
func (f *SignupForm) Submit(ctx context.Context, client AuthAPI, sess SessionWriter) (*models.AuthResponse, error) {
	f.Error = ""
	if !f.CanSubmit() {
		return nil, ErrIncomplete
	}
	resp, err := client.Signup(ctx, models.SignupRequest{
		Username: strings.TrimSpace(f.Username),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
		Avatar:   strings.TrimSpace(f.Avatar),
	})
	if err != nil {
		f.Error = api.MessageOf(err)
		return nil, err
	}
	if err := sess.Login(resp); err != nil {
		f.Error = api.FallbackMessage
		return nil, err
	}
	return resp, nil
}
