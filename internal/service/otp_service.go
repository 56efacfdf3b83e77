package service

import (
	"context"
	"errors"
	"log/slog"
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

// OTPService issues and verifies one-time email verification codes.
// Codes are bcrypt-hashed at rest, time-boxed, and attempt-capped; at
// most one active code exists per user at any time.
type OTPService struct {
	cfg    *config.Config
	otps   repository.EmailOTPRepository
	users  repository.UserRepository
	mailer mail.Mailer
	logger *slog.Logger
}

func NewOTPService(
	cfg *config.Config,
	otps repository.EmailOTPRepository,
	users repository.UserRepository,
	mailer mail.Mailer,
	logger *slog.Logger,
) *OTPService {
	return &OTPService{cfg: cfg, otps: otps, users: users, mailer: mailer, logger: logger}
}

// Issue revokes any prior active code for the user, persists a fresh
// hashed code, and sends the raw code out-of-band. The raw code never
// touches storage. A failed send revokes the orphaned code so the
// caller can safely report failure.
func (s *OTPService) Issue(ctx context.Context, userID, email, name string) error {
	normalized := strings.ToLower(strings.TrimSpace(email))

	// Single-active-code invariant holds on every issuance path, not
	// just resend; on first issue this is a vacuous update.
	if err := s.otps.RevokeActiveByUser(normalized, userID); err != nil {
		return apperr.Internal(err)
	}

	code, err := security.NewOTP()
	if err != nil {
		return apperr.Internal(err)
	}
	hash, err := security.HashSecret(code, s.cfg.BcryptCost)
	if err != nil {
		return apperr.Internal(err)
	}
	row := &domain.EmailOTP{
		Email:     normalized,
		UserID:    userID,
		OTPHash:   hash,
		ExpiresAt: time.Now().Add(s.cfg.OTPExpiry),
	}
	if err := s.otps.Create(row); err != nil {
		return apperr.Internal(err)
	}

	if err := s.mailer.SendOTP(ctx, normalized, name, code); err != nil {
		observability.RecordMailDelivery(ctx, "otp", "error")
		// The stored code is unreachable without its email; revoke it
		// so the user is not left with a live secret they never saw.
		if revokeErr := s.otps.RevokeActiveByUser(normalized, userID); revokeErr != nil {
			s.logger.ErrorContext(ctx, "failed to revoke otp after send failure",
				slog.String("user_id", userID), slog.String("error", revokeErr.Error()))
		}
		return apperr.Wrap(apperr.KindUpstream, "Failed to send OTP email", err)
	}
	observability.RecordMailDelivery(ctx, "otp", "sent")
	observability.RecordOTPEvent(ctx, "issue", "success")
	return nil
}

// Verify checks a candidate code. Missing/expired records and
// mismatches are validation failures; an attempt-capped record is
// rate-limited and dead until a new code is issued. Success marks the
// code used and flips the user's verified flag in one transaction,
// then sends a best-effort confirmation email.
func (s *OTPService) Verify(ctx context.Context, email, userID, candidate string) error {
	normalized := strings.ToLower(strings.TrimSpace(email))

	row, err := s.otps.FindLatestActive(normalized, userID, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			observability.RecordOTPEvent(ctx, "verify", "invalid")
			return apperr.Validation("Invalid or expired OTP!")
		}
		return apperr.Internal(err)
	}

	if row.Attempts >= s.cfg.OTPMaxAttempts {
		observability.RecordOTPEvent(ctx, "verify", "rate_limited")
		return apperr.RateLimited("Too many failed attempts. Request a new OTP.")
	}

	if !security.CompareSecret(row.OTPHash, candidate) {
		if err := s.otps.IncrementAttempts(row.ID); err != nil {
			return apperr.Internal(err)
		}
		observability.RecordOTPEvent(ctx, "verify", "mismatch")
		return apperr.Validation("Invalid OTP!")
	}

	if err := s.otps.Consume(row.ID, userID); err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			// Lost the race to a concurrent verify of the same code.
			return apperr.Validation("Invalid or expired OTP!")
		}
		return apperr.Internal(err)
	}
	observability.RecordOTPEvent(ctx, "verify", "success")
	observability.AuditCtx(ctx, "auth.email.verified", "user_id", userID)

	// Post-commit, best-effort: a failed confirmation email never
	// unwinds the verification.
	user, err := s.users.FindByID(userID)
	if err == nil {
		if sendErr := s.mailer.SendVerificationSuccess(ctx, user.Email, user.Name); sendErr != nil {
			observability.RecordMailDelivery(ctx, "verification_success", "error")
			s.logger.WarnContext(ctx, "failed to send verification success email",
				slog.String("user_id", userID), slog.String("error", sendErr.Error()))
		} else {
			observability.RecordMailDelivery(ctx, "verification_success", "sent")
		}
	}
	return nil
}

// Resend revokes outstanding codes and issues a new one. Verified
// addresses are refused; missing users are a 404.
func (s *OTPService) Resend(ctx context.Context, email, userID string) error {
	user, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("User not found!")
		}
		return apperr.Internal(err)
	}
	if user.IsEmailVerified {
		return apperr.Validation("Email already verified!")
	}
	// Issue revokes prior active codes itself; the user's stored email
	// wins over whatever the client sent.
	if err := s.Issue(ctx, user.ID, user.Email, user.Name); err != nil {
		return err
	}
	observability.RecordOTPEvent(ctx, "resend", "success")
	return nil
}
