package auth

import (
	"crypto/subtle"
	"encoding/base64"

	"golang.org/x/crypto/argon2"
)

// Interface to create or compare user password hashes
// The salt is stored next to the hash on the user record, so hashing is
// deterministic for a given (password, salt) pair
type PasswordHasher interface {
	// Hash the password with the given salt
	Hash(password string, salt string) string

	// Verify reports whether the password and salt produce the known hash
	// Must be protected against timing attacks
	// Never fails: malformed input simply does not match
	Verify(password string, salt string, hash string) bool
}

// Argon2id parameters, per the x/crypto argon2 docs recommendation
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// Argon2Hasher derives an argon2id key from the password and salt
// Used as the default hasher if the caller provides none
type Argon2Hasher struct{}

func (h Argon2Hasher) Hash(password string, salt string) string {
	key := argon2.IDKey([]byte(password), []byte(salt), argonTime, argonMemory, argonThreads, argonKeyLen)
	return base64.RawStdEncoding.EncodeToString(key)
}

func (h Argon2Hasher) Verify(password string, salt string, hash string) bool {
	known, err := base64.RawStdEncoding.DecodeString(hash)
	if err != nil {
		return false
	}

	got := argon2.IDKey([]byte(password), []byte(salt), argonTime, argonMemory, argonThreads, argonKeyLen)
	return subtle.ConstantTimeCompare(got, known) == 1
}
