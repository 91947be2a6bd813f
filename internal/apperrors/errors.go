package apperrors

import (
	"errors"
)

// Session lifecycle error taxonomy
// These are the only errors allowed to cross the service boundary:
// anything else must be logged and replaced with ErrUnexpected
var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user does not exist")

	ErrCredentialsNotValid = errors.New("credentials are not valid")
	ErrRefreshTokenInvalid = errors.New("invalid refresh token")

	ErrUnexpected = errors.New("an unexpected error occurred")
)

// Stable outcome codes returned to clients
const (
	CodeUserNotFound        = "1"
	CodeCredentialsNotValid = "2"
	CodeRefreshTokenInvalid = "3"
	CodeUnexpected          = "4"
	CodeUserAlreadyExists   = "5"
)

// Code maps a taxonomy error to its outcome code
// Unknown errors are reported as unexpected so internals never leak to clients
func Code(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return CodeUserNotFound
	case errors.Is(err, ErrCredentialsNotValid):
		return CodeCredentialsNotValid
	case errors.Is(err, ErrRefreshTokenInvalid):
		return CodeRefreshTokenInvalid
	case errors.Is(err, ErrUserAlreadyExists):
		return CodeUserAlreadyExists
	default:
		return CodeUnexpected
	}
}
