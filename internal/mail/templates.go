package mail

import (
	"fmt"
	"html"
	"strings"
)

const buttonStyle = "display:inline-block;padding:12px 24px;background-color:#2563eb;color:white;text-decoration:none;border-radius:4px;font-weight:bold;"

type message struct {
	Subject string
	HTML    string
	Text    string
}

func safeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "User"
	}
	return html.EscapeString(name)
}

func otpMessage(appName, name, otp string, expiryMinutes int) message {
	n := safeName(name)
	code := html.EscapeString(otp)
	htmlBody := fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:600px;">
  <h2 style="color:#2563eb;">Hello %s,</h2>
  <p>Your verification code is:</p>
  <div style="font-size:24px;font-weight:bold;letter-spacing:2px;padding:15px;background:#f3f4f6;border-radius:8px;display:inline-block;margin:10px 0;">%s</div>
  <p>This code will expire in %d minutes.</p>
  <p><em>If you didn't request this, please ignore this email.</em></p>
</div>`, n, code, expiryMinutes)
	text := fmt.Sprintf("Hello %s,\n\nYour verification code is: %s\n\nThis code expires in %d minutes.\n\nIf you didn't request this, please ignore this email.", n, otp, expiryMinutes)
	return message{
		Subject: appName + " - Your OTP Code",
		HTML:    htmlBody,
		Text:    text,
	}
}

func verificationSuccessMessage(appName, frontendURL, name, email string) message {
	n := safeName(name)
	e := html.EscapeString(email)
	loginURL := frontendURL + "/login"
	htmlBody := fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:600px;">
  <h2 style="color:#2563eb;">Congratulations %s!</h2>
  <p>Your email <strong>%s</strong> has been successfully verified.</p>
  <p>You can now access all features of %s.</p>
  <a href="%s" style="%s">Login to Your Account</a>
  <p>Or copy this link to your browser:<br><a href="%s">%s</a></p>
</div>`, n, e, appName, loginURL, buttonStyle, loginURL, loginURL)
	text := fmt.Sprintf("Hello %s,\n\nYour email %s has been successfully verified.\n\nYou can now login at: %s", n, email, loginURL)
	return message{
		Subject: appName + " - Email Verified Successfully",
		HTML:    htmlBody,
		Text:    text,
	}
}

func passwordResetMessage(appName, name, email, resetURL string, ttlMinutes int) message {
	n := safeName(name)
	e := html.EscapeString(email)
	u := html.EscapeString(resetURL)
	htmlBody := fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:600px;">
  <h2 style="color:#2563eb;">Hello %s,</h2>
  <p>We received a request to reset the password for <strong>%s</strong>.</p>
  <p>Click the button below to reset your password. This link is valid for %d minutes.</p>
  <p><a href="%s" style="%s">Reset password</a></p>
  <p>If the button doesn't work, copy and paste this link into your browser:</p>
  <p><a href="%s">%s</a></p>
  <p><em>If you didn't request this, just ignore this email. No changes were made.</em></p>
</div>`, n, e, ttlMinutes, u, buttonStyle, u, u)
	text := fmt.Sprintf("You requested a password reset for %s.\n\nOpen this link to reset your password (valid for %d minutes):\n\n%s\n\nIf you did not request this, ignore this email.", email, ttlMinutes, resetURL)
	return message{
		Subject: appName + " - Password Reset Request",
		HTML:    htmlBody,
		Text:    text,
	}
}

func passwordChangedMessage(appName, frontendURL, name, email string) message {
	n := safeName(name)
	e := html.EscapeString(email)
	loginURL := frontendURL + "/auth/login"
	htmlBody := fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:600px;">
  <h2 style="color:#2563eb;">Hi %s,</h2>
  <p>Your password for <strong>%s</strong> has just been changed.</p>
  <p>If you made this change, you can safely ignore this email. If you did NOT change your password, please reset it immediately and contact support.</p>
  <p><a href="%s" style="%s">Login</a></p>
</div>`, n, e, loginURL, buttonStyle)
	text := fmt.Sprintf("Hello %s,\n\nYour password for %s was changed. If this was not you, reset your password immediately or contact support.\n\nLogin: %s", n, email, loginURL)
	return message{
		Subject: appName + " - Your password was changed",
		HTML:    htmlBody,
		Text:    text,
	}
}
