package tokenmanager

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/authd/internal/models"
)

func mustParseTime(value string) time.Time {
	dt, err := time.Parse("2006-01-02 15:04:05Z07:00", value)
	if err != nil {
		panic(err)
	}
	return dt
}

func Test_TokenManager(t *testing.T) {
	t.Parallel()

	testUser := models.User{
		ID:           uuid.New(),
		CreatedAt:    mustParseTime("2024-01-01 19:00:01Z"),
		Email:        "testuser@example.com",
		PasswordHash: "hashed_password",
		Salt:         "salt",
	}

	newManager := func(t *testing.T, accessTTL time.Duration, refreshTTL time.Duration) *TokenManager {
		m, err := New(Config{
			SecretKey:  "test-secret-key",
			AccessTTL:  accessTTL,
			RefreshTTL: refreshTTL,
		})
		require.NoError(t, err, "token manager should be created without errors")
		return m
	}

	t.Run("new defaults", func(t *testing.T) {
		m, err := New(Config{SecretKey: "secret"})
		require.NoError(t, err, "token manager should be created without errors")

		require.Equal(t, "secret", m.key, "secret key should be set")
		require.Equal(t, defaultAccessTokenTTL, m.accessTTL, "default access token TTL should be set")
		require.Equal(t, defaultRefreshTokenTTL, m.refreshTTL, "default refresh token TTL")
		require.Equal(t, defaultSigningMethod, m.alg.Alg(), "default signing method should be set")
		require.Equal(t, defaultRefreshLength, m.refreshLen, "default refresh length should be set")
	})

	t.Run("new fail without secret", func(t *testing.T) {
		_, err := New(Config{})

		require.Error(t, err, "empty secret key should not be accepted")
	})

	t.Run("IssueAccess", func(t *testing.T) {
		t.Run("return signed token", func(t *testing.T) {
			m := newManager(t, 15*time.Minute, 24*time.Hour)

			access, err := m.IssueAccess(testUser)

			require.NoError(t, err)
			assert.NotEmpty(t, access.Value, "access token should not be empty")
			assert.WithinDuration(t, time.Now().Add(15*time.Minute), access.ExpiresAt, time.Second)
		})

		t.Run("access claims", func(t *testing.T) {
			m := newManager(t, 15*time.Minute, 24*time.Hour)

			access, err := m.IssueAccess(testUser)
			require.NoError(t, err)

			// Parse and verify the access token
			token, err := jwt.ParseWithClaims(access.Value, &AccessTokenClaims{}, func(token *jwt.Token) (any, error) {
				return []byte("test-secret-key"), nil
			})
			require.NoError(t, err)
			require.True(t, token.Valid, "access token should be valid")

			claims, ok := token.Claims.(*AccessTokenClaims)
			require.True(t, ok, "claims should be of type AccessTokenClaims")
			assert.Equal(t, testUser.ID, claims.UserID, "user ID in token should match")
			assert.Equal(t, testUser.Email, claims.Email, "email in token should match")
			assert.NotEmpty(t, claims.ID, "token has to has jti")
			assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second, "issued at should be close to now")
			assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, time.Second, "expires at should be 15 minutes from now")

			assert.WithinDuration(t, access.ExpiresAt, claims.ExpiresAt.Time, 0, "expires at should match issued token")
		})

		t.Run("generate different tokens", func(t *testing.T) {
			m := newManager(t, 15*time.Minute, 24*time.Hour)

			first, err := m.IssueAccess(testUser)
			require.NoError(t, err)
			second, err := m.IssueAccess(testUser)
			require.NoError(t, err)

			assert.NotEqual(t, first.Value, second.Value, "access tokens should be different")
		})
	})

	t.Run("IssueRefresh", func(t *testing.T) {
		t.Run("return opaque token", func(t *testing.T) {
			m := newManager(t, 15*time.Minute, 24*time.Hour)

			refresh, err := m.IssueRefresh()

			require.NoError(t, err)
			assert.Len(t, refresh.Value, defaultRefreshLength*2, "hex encoded value should be twice the byte length")
			assert.WithinDuration(t, time.Now().Add(24*time.Hour), refresh.ExpiresAt, time.Second)
		})

		t.Run("configured length", func(t *testing.T) {
			m, err := New(Config{SecretKey: "secret", RefreshLength: 16})
			require.NoError(t, err)

			refresh, err := m.IssueRefresh()

			require.NoError(t, err)
			assert.Len(t, refresh.Value, 32)
		})

		t.Run("never repeats", func(t *testing.T) {
			m := newManager(t, 15*time.Minute, 24*time.Hour)

			first, err := m.IssueRefresh()
			require.NoError(t, err)
			second, err := m.IssueRefresh()
			require.NoError(t, err)

			assert.NotEqual(t, first.Value, second.Value, "refresh tokens should be different")
		})
	})

	t.Run("ParseAccess", func(t *testing.T) {
		t.Run("parse own token ok", func(t *testing.T) {
			m := newManager(t, 15*time.Minute, 24*time.Hour)
			access, err := m.IssueAccess(testUser)
			require.NoError(t, err)

			userID, err := m.ParseAccess(access.Value)

			require.NoError(t, err)
			require.Equal(t, testUser.ID, userID)
		})

		t.Run("fail if signed with other key", func(t *testing.T) {
			other, err := New(Config{SecretKey: "other-secret"})
			require.NoError(t, err)
			access, err := other.IssueAccess(testUser)
			require.NoError(t, err)

			m := newManager(t, 15*time.Minute, 24*time.Hour)
			_, err = m.ParseAccess(access.Value)

			require.Error(t, err, "token signed with another key should not be valid")
		})

		t.Run("fail if expired", func(t *testing.T) {
			m := newManager(t, -time.Minute, 24*time.Hour)
			access, err := m.IssueAccess(testUser)
			require.NoError(t, err)

			_, err = m.ParseAccess(access.Value)

			require.Error(t, err, "expired token should not be valid")
		})

		t.Run("fail on garbage", func(t *testing.T) {
			m := newManager(t, 15*time.Minute, 24*time.Hour)

			_, err := m.ParseAccess("not-a-jwt")

			require.Error(t, err)
		})
	})
}
