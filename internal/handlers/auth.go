package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/authd/internal/apperrors"
	"github.com/nkiryanov/authd/internal/handlers/middleware"
	"github.com/nkiryanov/authd/internal/handlers/render"
	"github.com/nkiryanov/authd/internal/models"
)

// Auth service the handlers require
type AuthService interface {
	// Register user with email and password
	// Has to return apperrors.ErrUserAlreadyExists if the email is taken
	Register(ctx context.Context, email string, password string) (models.User, error)

	// Login user with email and password
	// Has to return apperrors.ErrUserNotFound or apperrors.ErrCredentialsNotValid
	Login(ctx context.Context, email string, password string) (models.TokenPair, error)

	// Refresh tokens using refresh token
	// Any rejection has to be apperrors.ErrRefreshTokenInvalid
	Refresh(ctx context.Context, refreshValue string) (models.TokenPair, error)

	// Revoke the user's session, idempotent
	SignOut(ctx context.Context, userID uuid.UUID) error
}

// TokenPairResponse is the success payload of login and refresh
type TokenPairResponse struct {
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

func tokenPairResponse(pair models.TokenPair) TokenPairResponse {
	return TokenPairResponse{
		AccessToken:      pair.Access.Value,
		AccessExpiresAt:  pair.Access.ExpiresAt,
		RefreshToken:     pair.Refresh.Value,
		RefreshExpiresAt: pair.Refresh.ExpiresAt,
	}
}

type AuthHandler struct {
	authService AuthService
}

func NewAuth(auth AuthService) *AuthHandler {
	return &AuthHandler{authService: auth}
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	type RegisterRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
	}
	type RegisterSuccessResponse struct {
		Message string `json:"message"`
	}

	data, err := render.BindAndValidate[RegisterRequest](w, r)
	if err != nil {
		return
	}

	_, err = h.authService.Register(r.Context(), data.Email, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, apperrors.Code(err), "User already exists", http.StatusConflict)
		default:
			render.ServiceError(w, apperrors.CodeUnexpected, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSONWithStatus(w, RegisterSuccessResponse{Message: "User registered successfully"}, http.StatusCreated)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	data, err := render.BindAndValidate[LoginRequest](w, r)
	if err != nil {
		return
	}

	pair, err := h.authService.Login(r.Context(), data.Email, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, apperrors.Code(err), "User does not exist", http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrCredentialsNotValid):
			render.ServiceError(w, apperrors.Code(err), "Credentials are not valid", http.StatusUnauthorized)
		default:
			render.ServiceError(w, apperrors.CodeUnexpected, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, tokenPairResponse(pair))
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	type RefreshRequest struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}

	data, err := render.BindAndValidate[RefreshRequest](w, r)
	if err != nil {
		return
	}

	pair, err := h.authService.Refresh(r.Context(), data.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrRefreshTokenInvalid):
			render.ServiceError(w, apperrors.Code(err), "Invalid refresh token", http.StatusUnauthorized)
		default:
			render.ServiceError(w, apperrors.CodeUnexpected, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, tokenPairResponse(pair))
}

// signOut expects the auth middleware to have resolved the user already
func (h *AuthHandler) signOut(w http.ResponseWriter, r *http.Request) {
	type SignOutSuccessResponse struct {
		Message string `json:"message"`
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		render.ServiceError(w, apperrors.CodeCredentialsNotValid, "Unauthorized", http.StatusUnauthorized)
		return
	}

	err := h.authService.SignOut(r.Context(), user.ID)
	if err != nil {
		render.ServiceError(w, apperrors.CodeUnexpected, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, SignOutSuccessResponse{Message: "User signed out successfully"})
}
