package mail

import (
	"context"
	"log/slog"
)

// LogMailer is the development fallback when SMTP is not configured.
// It writes the would-be email, including the raw secret, to the log.
// Config validation rejects this mode in production.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendOTP(ctx context.Context, to, name, otp string) error {
	m.logger.InfoContext(ctx, "dev email: otp code",
		slog.String("to", to),
		slog.String("name", name),
		slog.String("otp", otp),
	)
	return nil
}

func (m *LogMailer) SendVerificationSuccess(ctx context.Context, to, name string) error {
	m.logger.InfoContext(ctx, "dev email: verification success", slog.String("to", to))
	return nil
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, to, name, resetURL string) error {
	m.logger.InfoContext(ctx, "dev email: password reset",
		slog.String("to", to),
		slog.String("reset_url", resetURL),
	)
	return nil
}

func (m *LogMailer) SendPasswordChanged(ctx context.Context, to, name string) error {
	m.logger.InfoContext(ctx, "dev email: password changed", slog.String("to", to))
	return nil
}

