package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/authd/internal/apperrors"
	"github.com/nkiryanov/authd/internal/logger"
	"github.com/nkiryanov/authd/internal/models"
	"github.com/nkiryanov/authd/internal/repository"
)

const (
	defaultAccessHeaderName = "Authorization"
	defaultAccessAuthScheme = "Bearer"
	defaultSaltLength       = 16
)

type Config struct {
	// Hasher to use during registration or login
	// Argon2Hasher is used if not set
	Hasher PasswordHasher

	// Salt length in random bytes, generated per user on registration
	SaltLength int
}

// TokenManager issues token material for the session lifecycle
type TokenManager interface {
	IssueAccess(user models.User) (models.IssuedToken, error)
	IssueRefresh() (models.IssuedToken, error)
	ParseAccess(access string) (uuid.UUID, error)
}

// AuthService drives the session lifecycle: login issues a token pair and
// overwrites any previous session, refresh rotates the stored token, and
// sign out revokes it
//
// Only taxonomy errors from apperrors cross this boundary: everything else
// is logged with its cause and returned as apperrors.ErrUnexpected
type AuthService struct {
	// Manager to issue tokens (access and refresh)
	token TokenManager

	// hasher to hash or compare user passwords
	hasher PasswordHasher

	// Session store with the user records
	users repository.UserRepo

	saltLen int
	logger  logger.Logger
}

func NewService(cfg Config, token TokenManager, users repository.UserRepo, l logger.Logger) (*AuthService, error) {
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = Argon2Hasher{}
	}

	if cfg.SaltLength == 0 {
		cfg.SaltLength = defaultSaltLength
	}

	if token == nil || users == nil {
		return nil, errors.New("token manager and user repo must not be nil")
	}

	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &AuthService{
		token:   token,
		hasher:  hasher,
		users:   users,
		saltLen: cfg.SaltLength,
		logger:  l,
	}, nil
}

// Register creates a user with a fresh salt and an inactive empty refresh
// token. It does not log the user in: a session starts on Login only.
func (s *AuthService) Register(ctx context.Context, email string, password string) (models.User, error) {
	salt, err := s.newSalt()
	if err != nil {
		return models.User{}, s.guard("register", err)
	}

	hash := s.hasher.Hash(password, salt)

	user, err := s.users.CreateUser(ctx, email, hash, salt)
	if err != nil {
		return models.User{}, s.guard("register", err)
	}

	return user, nil
}

// Login verifies the credentials and starts a new session
// Whatever refresh token existed before is overwritten: login always wins,
// so at most one session per user is valid at any time
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.TokenPair, error) {
	var pair models.TokenPair

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return pair, s.guard("login", err)
	}

	if !s.hasher.Verify(password, user.Salt, user.PasswordHash) {
		return pair, apperrors.ErrCredentialsNotValid
	}

	refresh, err := s.token.IssueRefresh()
	if err != nil {
		return pair, s.guard("login", err)
	}

	err = s.users.SetRefreshToken(ctx, user.ID, models.RefreshToken{
		Value:     refresh.Value,
		Active:    true,
		ExpiresAt: refresh.ExpiresAt,
	})
	if err != nil {
		return pair, s.guard("login", err)
	}

	access, err := s.token.IssueAccess(user)
	if err != nil {
		return pair, s.guard("login", err)
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh exchanges a valid refresh token for a new token pair
// The stored token is rotated: the presented value is good for one use only
//
// Every rejection (unknown, inactive, expired, lost rotation race) collapses
// to ErrRefreshTokenInvalid so callers cannot probe token state
func (s *AuthService) Refresh(ctx context.Context, refreshValue string) (models.TokenPair, error) {
	var pair models.TokenPair

	if refreshValue == "" {
		return pair, apperrors.ErrRefreshTokenInvalid
	}

	user, err := s.users.GetUserByRefreshToken(ctx, refreshValue)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return pair, apperrors.ErrRefreshTokenInvalid
		}
		return pair, s.guard("refresh", err)
	}

	if !user.Refresh.Valid(time.Now()) {
		return pair, apperrors.ErrRefreshTokenInvalid
	}

	refresh, err := s.token.IssueRefresh()
	if err != nil {
		return pair, s.guard("refresh", err)
	}

	// Compare-and-set in the store: if a concurrent refresh rotated the
	// token between our read and this write, the presented value is stale
	// and the whole operation fails as invalid
	err = s.users.RotateRefreshToken(ctx, user.ID, refreshValue, models.RefreshToken{
		Value:     refresh.Value,
		Active:    true,
		ExpiresAt: refresh.ExpiresAt,
	})
	if err != nil {
		return pair, s.guard("refresh", err)
	}

	access, err := s.token.IssueAccess(user)
	if err != nil {
		return pair, s.guard("refresh", err)
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// SignOut revokes the user's session by deactivating the stored refresh token
// Idempotent: signing out an already inactive session succeeds silently
func (s *AuthService) SignOut(ctx context.Context, userID uuid.UUID) error {
	err := s.users.DeactivateRefreshToken(ctx, userID)
	if err != nil {
		return s.guard("signout", err)
	}

	return nil
}

// Auth resolves the user from the request's access token
// Used by middleware to protect endpoints that need an identity (sign out)
func (s *AuthService) Auth(ctx context.Context, r *http.Request) (models.User, error) {
	header := r.Header.Get(defaultAccessHeaderName)

	access, found := strings.CutPrefix(header, defaultAccessAuthScheme+" ")
	if !found || access == "" {
		return models.User{}, apperrors.ErrCredentialsNotValid
	}

	userID, err := s.token.ParseAccess(access)
	if err != nil {
		return models.User{}, apperrors.ErrCredentialsNotValid
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return models.User{}, s.guard("auth", err)
	}

	return user, nil
}

func (s *AuthService) newSalt() (string, error) {
	b := make([]byte, s.saltLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("error while generating salt. Err: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// guard is the catch-all boundary of the lifecycle operations
// Taxonomy errors are expected control flow and pass through unchanged,
// anything else is logged with full detail and replaced by ErrUnexpected
func (s *AuthService) guard(op string, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrUserAlreadyExists),
		errors.Is(err, apperrors.ErrUserNotFound),
		errors.Is(err, apperrors.ErrCredentialsNotValid),
		errors.Is(err, apperrors.ErrRefreshTokenInvalid):
		return err
	default:
		s.logger.Error("unexpected auth failure", "op", op, "error", err.Error())
		return apperrors.ErrUnexpected
	}
}
