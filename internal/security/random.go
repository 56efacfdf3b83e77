package security

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

const refreshTokenBytes = 48

// NewRefreshSecret returns a fresh 48-byte random secret, hex-encoded.
func NewRefreshSecret() (string, error) {
	return NewRandomToken(refreshTokenBytes)
}

func NewRandomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// NewOTP generates a 6-digit verification code from 4 random bytes.
// The modulo bias over 1e6 is negligible for a rate-limited,
// attempt-capped code.
func NewOTP() (string, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint32(buf[:]) % 1_000_000
	return fmt.Sprintf("%06d", n), nil
}
