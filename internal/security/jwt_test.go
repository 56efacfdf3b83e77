package security

import (
	"errors"
	"testing"
	"time"
)

func newTestJWTManager(accessTTL, sessionTTL time.Duration) *JWTManager {
	return NewJWTManager(
		"access-secret-at-least-32-characters!",
		"session-secret-at-least-32-characters",
		accessTTL, sessionTTL,
	)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newTestJWTManager(15*time.Minute, time.Hour)
	raw, err := m.SignAccessToken("user-1", "a@b.dev", "user")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := m.ParseAccessToken(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "a@b.dev" || claims.Role != "user" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAccessTokenExpiry(t *testing.T) {
	m := newTestJWTManager(-time.Minute, time.Hour)
	raw, err := m.SignAccessToken("user-1", "a@b.dev", "user")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.ParseAccessToken(raw); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestAccessTokenWrongSecret(t *testing.T) {
	m := newTestJWTManager(15*time.Minute, time.Hour)
	raw, err := m.SignAccessToken("user-1", "a@b.dev", "user")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	other := NewJWTManager(
		"another-secret-also-32-characters!!!",
		"session-secret-at-least-32-characters",
		15*time.Minute, time.Hour,
	)
	if _, err := other.ParseAccessToken(raw); !errors.Is(err, ErrTokenSignature) {
		t.Fatalf("expected ErrTokenSignature, got %v", err)
	}
}

func TestSessionTokenKeysAreIndependent(t *testing.T) {
	m := newTestJWTManager(15*time.Minute, 7*24*time.Hour)
	raw, err := m.SignSessionToken(SessionUser{ID: "user-1", Email: "a@b.dev", Name: "A", Role: "user"})
	if err != nil {
		t.Fatalf("sign session: %v", err)
	}
	claims, err := m.ParseSessionToken(raw)
	if err != nil {
		t.Fatalf("parse session: %v", err)
	}
	if claims.User.ID != "user-1" || claims.User.Email != "a@b.dev" {
		t.Fatalf("unexpected session user: %+v", claims.User)
	}
	// A session token must never pass as an access token.
	if _, err := m.ParseAccessToken(raw); err == nil {
		t.Fatal("session token accepted as access token")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	m := newTestJWTManager(15*time.Minute, time.Hour)
	if _, err := m.ParseAccessToken("not-a-jwt"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
