package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/authd/internal/apperrors"
	"github.com/nkiryanov/authd/internal/models"
)

type UserRepo struct {
	DB DBTX
}

const createUser = `-- name: CreateUser
INSERT INTO users (email, password_hash, salt)
VALUES ($1, $2, $3)
RETURNING id, created_at, email, password_hash, salt, refresh_token, refresh_active, refresh_expires_at
`

func (r *UserRepo) CreateUser(ctx context.Context, email string, passwordHash string, salt string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, createUser, email, passwordHash, salt)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
			return user, apperrors.ErrUserAlreadyExists
		}
	}

	return user, err
}

const getUserByID = `-- name: getUserByID
SELECT id, created_at, email, password_hash, salt, refresh_token, refresh_active, refresh_expires_at
FROM users
WHERE id = $1
`

func (r *UserRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByID, userID)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return user, apperrors.ErrUserNotFound
	}

	return user, err
}

const getUserByEmail = `-- name: getUserByEmail
SELECT id, created_at, email, password_hash, salt, refresh_token, refresh_active, refresh_expires_at
FROM users
WHERE email = $1
`

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByEmail, email)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return user, apperrors.ErrUserNotFound
	}

	return user, err
}

const getUserByRefreshToken = `-- name: getUserByRefreshToken
SELECT id, created_at, email, password_hash, salt, refresh_token, refresh_active, refresh_expires_at
FROM users
WHERE refresh_token = $1 AND refresh_token <> ''
`

// Match by value only: active flag and expiration are checked by the caller,
// so a rejected token is indistinguishable from a missing one to clients
func (r *UserRepo) GetUserByRefreshToken(ctx context.Context, value string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByRefreshToken, value)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return user, apperrors.ErrUserNotFound
	}

	return user, err
}

const setRefreshToken = `-- name: setRefreshToken
UPDATE users
SET refresh_token = $2, refresh_active = $3, refresh_expires_at = $4
WHERE id = $1
RETURNING id
`

func (r *UserRepo) SetRefreshToken(ctx context.Context, userID uuid.UUID, token models.RefreshToken) error {
	rows, _ := r.DB.Query(ctx, setRefreshToken, userID, token.Value, token.Active, token.ExpiresAt)
	_, err := pgx.CollectOneRow(rows, pgx.RowTo[uuid.UUID])

	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrUserNotFound
	}

	return err
}

const rotateRefreshToken = `-- name: rotateRefreshToken
UPDATE users
SET refresh_token = $3, refresh_expires_at = $4
WHERE id = $1 AND refresh_token = $2 AND refresh_active
RETURNING id
`

// Compare-and-set: the update applies only if the stored token is still
// active and equals the value the caller read
// If a concurrent rotation landed first the match fails and the caller
// must treat its token as invalid
func (r *UserRepo) RotateRefreshToken(ctx context.Context, userID uuid.UUID, current string, next models.RefreshToken) error {
	rows, _ := r.DB.Query(ctx, rotateRefreshToken, userID, current, next.Value, next.ExpiresAt)
	_, err := pgx.CollectOneRow(rows, pgx.RowTo[uuid.UUID])

	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrRefreshTokenInvalid
	}

	return err
}

const deactivateRefreshToken = `-- name: deactivateRefreshToken
UPDATE users
SET refresh_active = false
WHERE id = $1
RETURNING id
`

func (r *UserRepo) DeactivateRefreshToken(ctx context.Context, userID uuid.UUID) error {
	rows, _ := r.DB.Query(ctx, deactivateRefreshToken, userID)
	_, err := pgx.CollectOneRow(rows, pgx.RowTo[uuid.UUID])

	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrUserNotFound
	}

	return err
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.CreatedAt, &u.Email, &u.PasswordHash, &u.Salt,
		&u.Refresh.Value, &u.Refresh.Active, &u.Refresh.ExpiresAt,
	)
	return u, err
}
