package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/nkiryanov/authd/internal/models"
)

// UserRepo is the session store: it owns user records and the single
// refresh token embedded in each of them
type UserRepo interface {
	// Create user with empty inactive refresh token
	// If user with the email exists already has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, email string, passwordHash string, salt string) (models.User, error)

	// Get user by id, email or the current refresh token value
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByRefreshToken(ctx context.Context, value string) (models.User, error)

	// Overwrite the stored refresh token unconditionally
	// Used on login: whatever session existed before is invalidated
	SetRefreshToken(ctx context.Context, userID uuid.UUID, token models.RefreshToken) error

	// Replace the stored refresh token only if it is still active and its
	// value equals current (compare-and-set)
	// Must return apperrors.ErrRefreshTokenInvalid if the stored token
	// changed since it was read, so concurrent refreshes cannot both win
	RotateRefreshToken(ctx context.Context, userID uuid.UUID, current string, next models.RefreshToken) error

	// Set the stored refresh token inactive
	// Idempotent: deactivating an already inactive token is not an error
	// If user not found must return apperrors.ErrUserNotFound
	DeactivateRefreshToken(ctx context.Context, userID uuid.UUID) error
}
