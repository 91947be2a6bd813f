package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/authd/internal/apperrors"
	"github.com/nkiryanov/authd/internal/models"
	"github.com/nkiryanov/authd/internal/service/auth/tokenmanager"
)

// brokenRepo fails every call with a raw infrastructure error
type brokenRepo struct {
	err error
}

func (r brokenRepo) CreateUser(ctx context.Context, email string, passwordHash string, salt string) (models.User, error) {
	return models.User{}, r.err
}

func (r brokenRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	return models.User{}, r.err
}

func (r brokenRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return models.User{}, r.err
}

func (r brokenRepo) GetUserByRefreshToken(ctx context.Context, value string) (models.User, error) {
	return models.User{}, r.err
}

func (r brokenRepo) SetRefreshToken(ctx context.Context, userID uuid.UUID, token models.RefreshToken) error {
	return r.err
}

func (r brokenRepo) RotateRefreshToken(ctx context.Context, userID uuid.UUID, current string, next models.RefreshToken) error {
	return r.err
}

func (r brokenRepo) DeactivateRefreshToken(ctx context.Context, userID uuid.UUID) error {
	return r.err
}

// Whatever breaks underneath, callers observe only ErrUnexpected:
// the real cause stays in the logs
func Test_Auth_UnexpectedErrorsNeverLeak(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("connection refused: 10.0.0.5:5432")

	tm, err := tokenmanager.New(tokenmanager.Config{SecretKey: "secret"})
	require.NoError(t, err)

	s, err := NewService(Config{}, tm, brokenRepo{err: storeErr}, nil)
	require.NoError(t, err)

	t.Run("register", func(t *testing.T) {
		_, err := s.Register(t.Context(), "a@x.com", "pw1")

		require.ErrorIs(t, err, apperrors.ErrUnexpected)
		require.NotContains(t, err.Error(), "connection refused", "store internals must not leak")
	})

	t.Run("login", func(t *testing.T) {
		_, err := s.Login(t.Context(), "a@x.com", "pw1")

		require.ErrorIs(t, err, apperrors.ErrUnexpected)
		require.NotContains(t, err.Error(), "connection refused", "store internals must not leak")
	})

	t.Run("refresh", func(t *testing.T) {
		_, err := s.Refresh(t.Context(), "some-refresh-value")

		require.ErrorIs(t, err, apperrors.ErrUnexpected)
		require.NotContains(t, err.Error(), "connection refused", "store internals must not leak")
	})

	t.Run("signout", func(t *testing.T) {
		err := s.SignOut(t.Context(), uuid.New())

		require.ErrorIs(t, err, apperrors.ErrUnexpected)
		require.NotContains(t, err.Error(), "connection refused", "store internals must not leak")
	})
}
