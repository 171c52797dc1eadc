// Package cryptox implements password hashing for stored credentials.
package cryptox

import (
	"crypto/subtle"

	"github.com/tijori/tijori/internal/common"
	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. Changing them invalidates existing hashes.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32

	// SaltSize is the length of the per-user random salt.
	SaltSize = 16
)

// DerivePasswordHash returns the argon2id hash of password under salt.
func DerivePasswordHash(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// HashPassword generates a fresh salt and hashes password with it.
// The password buffer is wiped before returning.
func HashPassword(password []byte) (hash, salt []byte) {
	defer common.WipeByteArray(password)

	salt = common.GenerateRandByteArray(SaltSize)
	return DerivePasswordHash(password, salt), salt
}

// VerifyPassword reports whether candidate hashes to hash under salt.
// The comparison is constant-time. The candidate buffer is wiped.
func VerifyPassword(candidate, salt, hash []byte) bool {
	defer common.WipeByteArray(candidate)

	return subtle.ConstantTimeCompare(DerivePasswordHash(candidate, salt), hash) == 1
}
