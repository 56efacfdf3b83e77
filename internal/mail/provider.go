package mail

import (
	"log/slog"

	"github.com/authhybrid/backend/internal/config"
)

// New picks the SMTP mailer when SMTP_* is configured and falls back
// to the logging mailer otherwise.
func New(cfg *config.Config, logger *slog.Logger) Mailer {
	if cfg.SMTPConfigured() {
		return NewSMTPMailer(cfg, logger)
	}
	logger.Warn("smtp not configured, emails will be logged instead of sent")
	return NewLogMailer(logger)
}
