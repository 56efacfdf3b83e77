package service

import (
	"net/http"

	"github.com/authhybrid/backend/internal/domain"
	"github.com/authhybrid/backend/internal/security"
)

// SessionService stamps and reads the optional auth-session cookie.
// Its lifecycle is independent of the access/refresh pair: a missing
// or broken session simply means anonymous, never an error.
type SessionService struct {
	jwt     *security.JWTManager
	cookies *security.CookieManager
}

func NewSessionService(jwt *security.JWTManager, cookies *security.CookieManager) *SessionService {
	return &SessionService{jwt: jwt, cookies: cookies}
}

// Stamp signs and sets the session cookie mirroring the identity.
// Failure to sign is swallowed; the session is a convenience, not a
// credential the flows depend on.
func (s *SessionService) Stamp(w http.ResponseWriter, user *domain.User) {
	token, err := s.jwt.SignSessionToken(security.SessionUser{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	})
	if err != nil {
		return
	}
	s.cookies.SetSessionCookie(w, token)
}

func (s *SessionService) Clear(w http.ResponseWriter) {
	s.cookies.ClearSessionCookie(w)
}

// Verify returns the stamped identity, or nil for anonymous.
func (s *SessionService) Verify(r *http.Request) *security.SessionUser {
	raw := security.GetCookie(r, security.SessionCookieName)
	if raw == "" {
		return nil
	}
	claims, err := s.jwt.ParseSessionToken(raw)
	if err != nil {
		return nil
	}
	return &claims.User
}
