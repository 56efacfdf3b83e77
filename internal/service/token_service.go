package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/authhybrid/backend/internal/apperr"
	"github.com/authhybrid/backend/internal/config"
	"github.com/authhybrid/backend/internal/domain"
	"github.com/authhybrid/backend/internal/observability"
	"github.com/authhybrid/backend/internal/repository"
	"github.com/authhybrid/backend/internal/security"

	"gorm.io/gorm"
)

// ClientMeta is the request fingerprint stored alongside issued
// refresh secrets.
type ClientMeta struct {
	UserAgent string
	IP        string
}

// TokenService is the token factory and rotation engine: stateless
// signed access tokens plus server-tracked refresh secrets.
type TokenService struct {
	cfg           *config.Config
	jwt           *security.JWTManager
	refreshTokens repository.RefreshTokenRepository
	users         repository.UserRepository
	logger        *slog.Logger
}

func NewTokenService(
	cfg *config.Config,
	jwt *security.JWTManager,
	refreshTokens repository.RefreshTokenRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *TokenService {
	return &TokenService{
		cfg:           cfg,
		jwt:           jwt,
		refreshTokens: refreshTokens,
		users:         users,
		logger:        logger,
	}
}

// Issue signs an access token and mints a fresh refresh secret for
// the user. Only the secret's hash is persisted; the raw value goes
// out exactly once, in the refresh cookie.
func (s *TokenService) Issue(ctx context.Context, user *domain.User, meta ClientMeta) (accessToken, refreshRaw string, err error) {
	accessToken, err = s.jwt.SignAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return "", "", apperr.Internal(err)
	}
	refreshRaw, err = security.NewRefreshSecret()
	if err != nil {
		return "", "", apperr.Internal(err)
	}
	hash, err := security.TokenHash(refreshRaw)
	if err != nil {
		return "", "", apperr.Internal(err)
	}
	row := &domain.RefreshToken{
		TokenHash: hash,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.cfg.RefreshTokenTTL),
		UserAgent: meta.UserAgent,
		IPAddress: meta.IP,
	}
	if err := s.refreshTokens.Create(row); err != nil {
		return "", "", apperr.Internal(err)
	}
	return accessToken, refreshRaw, nil
}

// Verify resolves a raw refresh secret to its owner. Revoked and
// expired rows behave exactly like absent ones.
func (s *TokenService) Verify(ctx context.Context, raw string) (*domain.User, error) {
	if raw == "" {
		return nil, apperr.Auth("No refresh token")
	}
	hash, err := security.TokenHash(raw)
	if err != nil {
		return nil, apperr.Auth("Invalid or expired refresh token")
	}
	row, err := s.refreshTokens.FindActiveByHash(hash, time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Auth("Invalid or expired refresh token")
		}
		return nil, apperr.Internal(err)
	}
	user, err := s.users.FindByID(row.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Auth("Invalid or expired refresh token")
		}
		return nil, apperr.Internal(err)
	}
	return user, nil
}

// Rotate retires the presented secret and mints its replacement in a
// single transaction. Revoking an already-revoked row is a no-op and
// rotation still proceeds; that reuse is logged and counted so
// operators can spot a possibly stolen secret, but no further action
// is taken here.
func (s *TokenService) Rotate(ctx context.Context, user *domain.User, oldRaw string, meta ClientMeta) (accessToken, refreshRaw string, err error) {
	oldHash, err := security.TokenHash(oldRaw)
	if err != nil {
		return "", "", apperr.Auth("Invalid or expired refresh token")
	}
	accessToken, err = s.jwt.SignAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return "", "", apperr.Internal(err)
	}
	refreshRaw, err = security.NewRefreshSecret()
	if err != nil {
		return "", "", apperr.Internal(err)
	}
	newHash, err := security.TokenHash(refreshRaw)
	if err != nil {
		return "", "", apperr.Internal(err)
	}
	replacement := &domain.RefreshToken{
		TokenHash: newHash,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.cfg.RefreshTokenTTL),
		UserAgent: meta.UserAgent,
		IPAddress: meta.IP,
	}
	revoked, err := s.refreshTokens.Rotate(oldHash, replacement)
	if err != nil {
		return "", "", apperr.Internal(err)
	}
	if revoked == 0 {
		observability.AuditCtx(ctx, "auth.refresh.reused", "user_id", user.ID)
		observability.RecordRefreshReuse(ctx)
		s.logger.WarnContext(ctx, "rotation presented an already-revoked refresh secret",
			slog.String("user_id", user.ID))
	}
	return accessToken, refreshRaw, nil
}

// RevokeByRaw retires the single presented secret. Unknown or
// already-revoked secrets are fine: logout is idempotent.
func (s *TokenService) RevokeByRaw(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	hash, err := security.TokenHash(raw)
	if err != nil {
		return nil
	}
	if _, err := s.refreshTokens.RevokeByHash(hash); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// RevokeAll force-logs-out every device for the user.
func (s *TokenService) RevokeAll(ctx context.Context, userID string) error {
	if err := s.refreshTokens.RevokeAllByUser(userID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}
