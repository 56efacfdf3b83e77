package security

import (
	"net/http"
	"time"
)

const (
	RefreshCookieName = "refreshToken"
	SessionCookieName = "auth-session"
)

// CookieManager centralizes the cookie profiles: HTTP-only, lax,
// path "/", secure in production.
type CookieManager struct {
	Secure     bool
	refreshTTL time.Duration
	sessionTTL time.Duration
}

func NewCookieManager(secure bool, refreshTTL, sessionTTL time.Duration) *CookieManager {
	return &CookieManager{Secure: secure, refreshTTL: refreshTTL, sessionTTL: sessionTTL}
}

// SetRefreshCookie delivers the raw refresh secret; it never appears
// in a response body.
func (m *CookieManager) SetRefreshCookie(w http.ResponseWriter, raw string) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    raw,
		Path:     "/",
		MaxAge:   int(m.refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *CookieManager) ClearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *CookieManager) SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.sessionTTL.Seconds()),
		Expires:  time.Now().Add(m.sessionTTL),
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *CookieManager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func GetCookie(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
