package service

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/authhybrid/backend/internal/apperr"
	mailgomock "github.com/authhybrid/backend/internal/mail/gomock"
)

func tokenFromResetURL(t *testing.T, resetURL string) string {
	t.Helper()
	u, err := url.Parse(resetURL)
	if err != nil {
		t.Fatalf("parse reset url %q: %v", resetURL, err)
	}
	token := u.Query().Get("token")
	if token == "" {
		t.Fatalf("no token in reset url %q", resetURL)
	}
	return token
}

func TestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	f := newServiceFixture(t)
	ctrl := gomock.NewController(t)
	mailer := mailgomock.NewMockMailer(ctrl)
	svc := NewPasswordResetService(f.cfg, f.resets, f.users, mailer, f.logger)

	// No expectations on the mailer: nothing may be sent.
	if err := svc.Request(context.Background(), "ghost@example.dev", ClientMeta{}); err != nil {
		t.Fatalf("unknown email must not error: %v", err)
	}

	var count int64
	if err := f.db.Table("password_resets").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatal("a reset row was created for an unknown address")
	}
}

func TestPasswordResetRequiresEmail(t *testing.T) {
	f := newServiceFixture(t)
	ctrl := gomock.NewController(t)
	mailer := mailgomock.NewMockMailer(ctrl)
	svc := NewPasswordResetService(f.cfg, f.resets, f.users, mailer, f.logger)

	err := svc.Request(context.Background(), "   ", ClientMeta{})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPasswordResetFullFlow(t *testing.T) {
	f := newServiceFixture(t)
	ctrl := gomock.NewController(t)
	mailer := mailgomock.NewMockMailer(ctrl)
	svc := NewPasswordResetService(f.cfg, f.resets, f.users, mailer, f.logger)
	tokens := newTokenServiceForTest(t, f)
	user := f.createUser(t, "forgot@example.dev", "oldpassword", true)
	ctx := context.Background()

	// A live session that the reset must kill.
	_, refreshRaw, err := tokens.Issue(ctx, user, ClientMeta{})
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}

	var resetURL string
	mailer.EXPECT().
		SendPasswordReset(gomock.Any(), user.Email, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _, u string) error {
			resetURL = u
			return nil
		})
	if err := svc.Request(ctx, "Forgot@Example.dev", ClientMeta{IP: "10.0.0.1"}); err != nil {
		t.Fatalf("request: %v", err)
	}
	if !strings.HasPrefix(resetURL, f.cfg.FrontendURL+"/reset-password?") {
		t.Fatalf("unexpected reset url %q", resetURL)
	}
	raw := tokenFromResetURL(t, resetURL)

	mailer.EXPECT().SendPasswordChanged(gomock.Any(), user.Email, gomock.Any()).Return(nil)
	if err := svc.Consume(ctx, raw, "newpassword1"); err != nil {
		t.Fatalf("consume: %v", err)
	}

	fresh, err := f.users.FindByID(user.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(*fresh.PasswordHash), []byte("newpassword1")) != nil {
		t.Fatal("new password not set")
	}
	if bcrypt.CompareHashAndPassword([]byte(*fresh.PasswordHash), []byte("oldpassword")) == nil {
		t.Fatal("old password still valid")
	}
	if _, err := tokens.Verify(ctx, refreshRaw); apperr.KindOf(err) != apperr.KindAuth {
		t.Fatalf("refresh secret survived password reset: %v", err)
	}
	// The token is single-use.
	if err := svc.Consume(ctx, raw, "anotherpassword"); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("token redeemed twice: %v", err)
	}
}

func TestPasswordResetNewRequestSupersedesOld(t *testing.T) {
	f := newServiceFixture(t)
	ctrl := gomock.NewController(t)
	mailer := mailgomock.NewMockMailer(ctrl)
	svc := NewPasswordResetService(f.cfg, f.resets, f.users, mailer, f.logger)
	user := f.createUser(t, "again@example.dev", "oldpassword", true)
	ctx := context.Background()

	var firstURL, secondURL string
	mailer.EXPECT().
		SendPasswordReset(gomock.Any(), user.Email, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _, u string) error {
			firstURL = u
			return nil
		})
	if err := svc.Request(ctx, user.Email, ClientMeta{}); err != nil {
		t.Fatalf("first request: %v", err)
	}
	mailer.EXPECT().
		SendPasswordReset(gomock.Any(), user.Email, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _, u string) error {
			secondURL = u
			return nil
		})
	if err := svc.Request(ctx, user.Email, ClientMeta{}); err != nil {
		t.Fatalf("second request: %v", err)
	}

	oldToken := tokenFromResetURL(t, firstURL)
	if err := svc.Consume(ctx, oldToken, "newpassword1"); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("superseded token redeemed: %v", err)
	}
	mailer.EXPECT().SendPasswordChanged(gomock.Any(), user.Email, gomock.Any()).Return(nil)
	if err := svc.Consume(ctx, tokenFromResetURL(t, secondURL), "newpassword1"); err != nil {
		t.Fatalf("latest token refused: %v", err)
	}
}

func TestPasswordResetConsumeValidation(t *testing.T) {
	f := newServiceFixture(t)
	ctrl := gomock.NewController(t)
	mailer := mailgomock.NewMockMailer(ctrl)
	svc := NewPasswordResetService(f.cfg, f.resets, f.users, mailer, f.logger)
	ctx := context.Background()

	cases := []struct {
		name     string
		token    string
		password string
		message  string
	}{
		{"missing token", "", "newpassword1", "Token and new password are required"},
		{"missing password", "some-token", "", "Token and new password are required"},
		{"short password", "some-token", "short", "Password must be at least 8 characters long"},
		{"unknown token", "never-issued", "newpassword1", "Invalid or expired token"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := svc.Consume(ctx, c.token, c.password)
			if apperr.KindOf(err) != apperr.KindValidation || apperr.ClientMessage(err) != c.message {
				t.Fatalf("got %v, want message %q", err, c.message)
			}
		})
	}
}
