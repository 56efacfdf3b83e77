package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/authhybrid/backend/internal/apperr"
	"github.com/authhybrid/backend/internal/config"
	"github.com/authhybrid/backend/internal/domain"
	"github.com/authhybrid/backend/internal/mail"
	"github.com/authhybrid/backend/internal/observability"
	"github.com/authhybrid/backend/internal/repository"
	"github.com/authhybrid/backend/internal/security"

	"gorm.io/gorm"
)

const resetTokenBytes = 32

// PasswordResetService manages single-use, hashed, time-boxed reset
// tokens. Requests are enumeration-resistant: the response is the
// same whether or not the address exists.
type PasswordResetService struct {
	cfg    *config.Config
	resets repository.PasswordResetRepository
	users  repository.UserRepository
	mailer mail.Mailer
	logger *slog.Logger
}

func NewPasswordResetService(
	cfg *config.Config,
	resets repository.PasswordResetRepository,
	users repository.UserRepository,
	mailer mail.Mailer,
	logger *slog.Logger,
) *PasswordResetService {
	return &PasswordResetService{cfg: cfg, resets: resets, users: users, mailer: mailer, logger: logger}
}

// Request issues a reset token for the address if an account exists.
// It always succeeds from the caller's perspective; for unknown
// addresses nothing is stored and nothing is sent.
func (s *PasswordResetService) Request(ctx context.Context, email string, meta ClientMeta) error {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return apperr.Validation("Email is required")
	}

	user, err := s.users.FindByEmail(normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordPasswordResetEvent(ctx, "request", "unknown_email")
			return nil
		}
		return apperr.Internal(err)
	}

	// Single active token: every outstanding row dies first.
	if err := s.resets.MarkAllUsedByUser(user.ID); err != nil {
		return apperr.Internal(err)
	}

	raw, err := security.NewRandomToken(resetTokenBytes)
	if err != nil {
		return apperr.Internal(err)
	}
	hash, err := security.TokenHash(raw)
	if err != nil {
		return apperr.Internal(err)
	}
	row := &domain.PasswordReset{
		TokenHash: hash,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.cfg.ResetTokenTTL),
		UserAgent: meta.UserAgent,
		IPAddress: meta.IP,
	}
	if err := s.resets.Create(row); err != nil {
		return apperr.Internal(err)
	}

	resetURL := s.cfg.FrontendURL + "/reset-password?token=" + url.QueryEscape(raw) +
		"&email=" + url.QueryEscape(normalized)
	displayName := strings.TrimSpace(user.Name)
	if displayName == "" {
		displayName = strings.SplitN(user.Email, "@", 2)[0]
	}
	if err := s.mailer.SendPasswordReset(ctx, normalized, displayName, resetURL); err != nil {
		observability.RecordMailDelivery(ctx, "password_reset", "error")
		s.logger.ErrorContext(ctx, "failed to send password reset email",
			slog.String("user_id", user.ID), slog.String("error", err.Error()))
	} else {
		observability.RecordMailDelivery(ctx, "password_reset", "sent")
	}
	observability.RecordPasswordResetEvent(ctx, "request", "success")
	observability.AuditCtx(ctx, "auth.password_reset.requested", "user_id", user.ID)
	return nil
}

// Consume redeems a raw reset token. One transaction sets the new
// bcrypt hash, burns the token, and revokes every active refresh
// token for the user; the confirmation email afterwards is
// best-effort.
func (s *PasswordResetService) Consume(ctx context.Context, rawToken, newPassword string) error {
	if rawToken == "" || newPassword == "" {
		return apperr.Validation("Token and new password are required")
	}
	if len(newPassword) < 8 {
		return apperr.Validation("Password must be at least 8 characters long")
	}

	hash, err := security.TokenHash(rawToken)
	if err != nil {
		return apperr.Validation("Invalid or expired token")
	}
	row, err := s.resets.FindLatestByHash(hash)
	if err != nil {
		if errors.Is(err, repository.ErrResetNotFound) {
			observability.RecordPasswordResetEvent(ctx, "consume", "invalid")
			return apperr.Validation("Invalid or expired token")
		}
		return apperr.Internal(err)
	}
	if row.Used || time.Now().After(row.ExpiresAt) {
		observability.RecordPasswordResetEvent(ctx, "consume", "invalid")
		return apperr.Validation("Invalid or expired token")
	}

	user, err := s.users.FindByID(row.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Validation("Invalid token")
		}
		return apperr.Internal(err)
	}

	newHash, err := security.HashSecret(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := s.resets.Consume(row.ID, user.ID, newHash); err != nil {
		if errors.Is(err, repository.ErrResetNotFound) {
			observability.RecordPasswordResetEvent(ctx, "consume", "invalid")
			return apperr.Validation("Invalid or expired token")
		}
		return apperr.Internal(err)
	}
	observability.RecordPasswordResetEvent(ctx, "consume", "success")
	observability.AuditCtx(ctx, "auth.password_reset.consumed", "user_id", user.ID)

	if sendErr := s.mailer.SendPasswordChanged(ctx, user.Email, user.Name); sendErr != nil {
		observability.RecordMailDelivery(ctx, "password_changed", "error")
		s.logger.WarnContext(ctx, "failed to send password change confirmation email",
			slog.String("user_id", user.ID), slog.String("error", sendErr.Error()))
	} else {
		observability.RecordMailDelivery(ctx, "password_changed", "sent")
	}
	return nil
}
