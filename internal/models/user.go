package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	CreatedAt    time.Time
	Email        string
	PasswordHash string
	Salt         string

	// The single refresh token owned by the user
	// It is overwritten on every login and rotated on every refresh,
	// so at most one session per user is valid at any time
	Refresh RefreshToken
}
