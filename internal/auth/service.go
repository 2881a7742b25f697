package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/scrollr/scrollr/internal/apperr"
	"github.com/scrollr/scrollr/internal/logging"
	"github.com/scrollr/scrollr/internal/models"
	"github.com/scrollr/scrollr/internal/store"
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Service registers and authenticates users and resolves bearer tokens.
type Service struct {
	users    UserStore
	tokens   *TokenIssuer
	log      logging.Logger
	hashCost int
}

type Option func(*Service)

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

func NewService(users UserStore, tokens *TokenIssuer, log logging.Logger, opts ...Option) *Service {
	s := &Service{users: users, tokens: tokens, log: log, hashCost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a user after checking that neither the email nor the
// username is taken, and returns the public profile with a fresh token.
func (s *Service) Register(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" || email == "" || req.Password == "" {
		return nil, ErrSignupFields
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Internal(err)
	}

	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return nil, ErrDuplicateUsername
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Internal(err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, ErrInvalidUserData.Wrap(err)
		}
		return nil, apperr.Internal(err)
	}

	user, err := s.users.CreateUser(ctx, &models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
		Avatar:   strings.TrimSpace(req.Avatar),
	})
	switch {
	case errors.Is(err, store.ErrDuplicateEmail):
		return nil, ErrDuplicateEmail.Wrap(err)
	case errors.Is(err, store.ErrDuplicateUsername):
		return nil, ErrDuplicateUsername.Wrap(err)
	case err != nil:
		return nil, apperr.Internal(err)
	}

	token, err := s.tokens.IssueToken(user.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return models.NewAuthResponse(user, token), nil
}

// Authenticate looks the user up by email and checks the password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}

	token, err := s.tokens.IssueToken(user.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	s.log.Info(ctx, "user logged in", "user_id", user.ID, "username", user.Username)
	return models.NewAuthResponse(user, token), nil
}

// UserFromToken verifies a bearer token and loads the user it names.
func (s *Service) UserFromToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	userID, err := s.tokens.VerifyToken(token)
	if err != nil {
		return nil, ErrTokenInvalid.Wrap(err)
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrTokenInvalid.Wrap(err)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return user, nil
}
