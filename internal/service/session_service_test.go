package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/authhybrid/backend/internal/domain"
	"github.com/authhybrid/backend/internal/security"
)

func newSessionServiceForTest() *SessionService {
	jwt := security.NewJWTManager(
		"access-secret-at-least-32-characters!",
		"session-secret-at-least-32-characters",
		15*time.Minute, 7*24*time.Hour,
	)
	cookies := security.NewCookieManager(false, 30*24*time.Hour, 7*24*time.Hour)
	return NewSessionService(jwt, cookies)
}

func TestSessionStampAndVerify(t *testing.T) {
	svc := newSessionServiceForTest()
	user := &domain.User{ID: "u1", Email: "s@example.dev", Name: "S", Role: "user"}

	rec := httptest.NewRecorder()
	svc.Stamp(rec, user)

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == security.SessionCookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("session cookie not set")
	}
	if !sessionCookie.HttpOnly {
		t.Fatal("session cookie must be http-only")
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(sessionCookie)
	got := svc.Verify(r)
	if got == nil {
		t.Fatal("stamped session did not verify")
	}
	if got.ID != "u1" || got.Email != "s@example.dev" {
		t.Fatalf("unexpected session user: %+v", got)
	}
}

func TestSessionVerifyRejectsMissingOrForged(t *testing.T) {
	svc := newSessionServiceForTest()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if svc.Verify(r) != nil {
		t.Fatal("missing cookie verified")
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: security.SessionCookieName, Value: "forged"})
	if svc.Verify(r) != nil {
		t.Fatal("forged cookie verified")
	}
}

func TestSessionClear(t *testing.T) {
	svc := newSessionServiceForTest()
	rec := httptest.NewRecorder()
	svc.Clear(rec)

	for _, c := range rec.Result().Cookies() {
		if c.Name == security.SessionCookieName {
			if c.MaxAge != -1 || c.Value != "" {
				t.Fatalf("session cookie not cleared: %+v", c)
			}
			return
		}
	}
	t.Fatal("no clearing cookie emitted")
}
