package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"time"

	gomail "github.com/go-mail/mail"

	"github.com/authhybrid/backend/internal/config"
)

// SMTPMailer sends notifications over an authenticated SMTP connection.
type SMTPMailer struct {
	cfg    *config.Config
	dialer *gomail.Dialer
	logger *slog.Logger
}

// NewSMTPMailer builds a mailer from the SMTP_* settings. Port 465
// uses implicit TLS; any other port negotiates STARTTLS.
func NewSMTPMailer(cfg *config.Config, logger *slog.Logger) *SMTPMailer {
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	d.Timeout = 10 * time.Second
	d.TLSConfig = &tls.Config{ServerName: cfg.SMTPHost}
	if cfg.SMTPPort == 465 {
		d.SSL = true
	}
	return &SMTPMailer{cfg: cfg, dialer: d, logger: logger}
}

func (m *SMTPMailer) SendOTP(ctx context.Context, to, name, otp string) error {
	msg := otpMessage(m.cfg.AppName, name, otp, int(m.cfg.OTPExpiry.Minutes()))
	return m.send(ctx, to, msg)
}

func (m *SMTPMailer) SendVerificationSuccess(ctx context.Context, to, name string) error {
	msg := verificationSuccessMessage(m.cfg.AppName, m.cfg.FrontendURL, name, to)
	return m.send(ctx, to, msg)
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, name, resetURL string) error {
	msg := passwordResetMessage(m.cfg.AppName, name, to, resetURL, int(m.cfg.ResetTokenTTL.Minutes()))
	return m.send(ctx, to, msg)
}

func (m *SMTPMailer) SendPasswordChanged(ctx context.Context, to, name string) error {
	msg := passwordChangedMessage(m.cfg.AppName, m.cfg.FrontendURL, name, to)
	return m.send(ctx, to, msg)
}

func (m *SMTPMailer) send(ctx context.Context, to string, msg message) error {
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.cfg.MailFrom)
	gm.SetHeader("To", to)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Text)
	gm.AddAlternative("text/html", msg.HTML)

	// go-mail dials synchronously; run it off-goroutine so a hung SMTP
	// server cannot outlive the caller's context.
	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(gm)
	}()
	select {
	case err := <-done:
		if err != nil {
			m.logger.ErrorContext(ctx, "smtp send failed",
				slog.String("to", to),
				slog.String("subject", msg.Subject),
				slog.String("error", err.Error()),
			)
			return fmt.Errorf("smtp send: %w", err)
		}
		m.logger.InfoContext(ctx, "email sent",
			slog.String("to", to),
			slog.String("subject", msg.Subject),
		)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send: %w", ctx.Err())
	}
}
