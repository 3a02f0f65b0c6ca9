// Package auth implements the credential store and the session
// manager: scrypt password hashing, opaque session tokens and their
// durable lifecycle.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters. Deliberately slow; do not lower for tests, the
// suite uses short inputs and stays fast enough.
const (
	scryptN   = 16384
	scryptR   = 8
	scryptP   = 1
	keyLength = 32
	saltBytes = 16
)

// HashPassword derives a salted scrypt digest and encodes it as
// "hex(hash).hex(salt)".
func HashPassword(plain string) (string, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key, err := scrypt.Key([]byte(plain), salt, scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(key) + "." + hex.EncodeToString(salt), nil
}

// VerifyPassword recomputes the digest of candidate under the stored
// salt and compares in constant time. Malformed stored values verify
// false rather than erroring, so a corrupt row behaves like a wrong
// password.
func VerifyPassword(stored, candidate string) bool {
	hashHex, saltHex, ok := strings.Cut(stored, ".")
	if !ok {
		return false
	}
	hash, err := hex.DecodeString(hashHex)
	if err != nil {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	key, err := scrypt.Key([]byte(candidate), salt, scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(hash, key) == 1
}
