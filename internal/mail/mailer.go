package mail

import "context"

//go:generate mockgen -destination gomock/mailer.go -package gomock github.com/authhybrid/backend/internal/mail Mailer

// Mailer delivers account lifecycle notifications. Implementations must
// be safe for concurrent use.
type Mailer interface {
	// SendOTP delivers a verification code to the address.
	SendOTP(ctx context.Context, to, name, otp string) error
	// SendVerificationSuccess confirms that the address was verified.
	SendVerificationSuccess(ctx context.Context, to, name string) error
	// SendPasswordReset delivers a reset link for the address.
	SendPasswordReset(ctx context.Context, to, name, resetURL string) error
	// SendPasswordChanged notifies the user that their password changed.
	SendPasswordChanged(ctx context.Context, to, name string) error
}
