package models

import (
	"time"
)

// RefreshToken is the stored state of a user session.
// An empty Value with Active=false means the user has no session.
// Expiration is not self-revoking: Active may still be true after
// ExpiresAt has passed, callers must check both.
type RefreshToken struct {
	Value     string
	Active    bool
	ExpiresAt time.Time
}

// Valid reports whether the token may be accepted for a refresh at the given moment
func (t RefreshToken) Valid(now time.Time) bool {
	return t.Active && t.Value != "" && now.Before(t.ExpiresAt)
}

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair issued by TokenManager, AuthService
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
