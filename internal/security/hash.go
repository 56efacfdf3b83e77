package security

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrEmptySecret = errors.New("secret must not be empty")

// TokenHash derives the at-rest form of a high-entropy secret
// (refresh and reset tokens). SHA-256 is deliberate: these secrets
// are 48+ random bytes, so a fast equality-comparable digest is
// enough and keeps lookups indexable.
func TokenHash(raw string) (string, error) {
	if raw == "" {
		return "", ErrEmptySecret
	}
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:]), nil
}

// HashSecret is the slow, per-secret-salted hash for low-entropy
// inputs: passwords and 6-digit OTP codes.
func HashSecret(raw string, cost int) (string, error) {
	if raw == "" {
		return "", ErrEmptySecret
	}
	b, err := bcrypt.GenerateFromPassword([]byte(raw), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CompareSecret(hash, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}
