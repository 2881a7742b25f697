package auth

import (
	"github.com/scrollr/scrollr/internal/apperr"
	"github.com/scrollr/scrollr/internal/middleware"
)

var (
	ErrSignupFields      = apperr.New(apperr.KindInvalidInput, "Username, email and password are required")
	ErrDuplicateEmail    = apperr.New(apperr.KindInvalidInput, "Email already registered")
	ErrDuplicateUsername = apperr.New(apperr.KindInvalidInput, "Username already taken")
	ErrInvalidUserData   = apperr.New(apperr.KindInvalidInput, "Invalid user data")

	ErrMissingFields   = apperr.New(apperr.KindInvalidInput, "Email and password are required")
	ErrAccountNotFound = apperr.New(apperr.KindUnauthorized, "Account not found. Please sign up first.")
	ErrBadCredentials  = apperr.New(apperr.KindUnauthorized, "Invalid password. Please try again.")

	ErrNoToken      = middleware.ErrNoToken
	ErrTokenInvalid = apperr.New(apperr.KindUnauthorized, "Not authorized, token failed")
)
