package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/authhybrid/backend/internal/config"
	"github.com/authhybrid/backend/internal/domain"
	"github.com/authhybrid/backend/internal/repository"
)

type serviceFixture struct {
	db       *gorm.DB
	cfg      *config.Config
	users    repository.UserRepository
	accounts repository.AccountRepository
	refresh  repository.RefreshTokenRepository
	otps     repository.EmailOTPRepository
	resets   repository.PasswordResetRepository
	logger   *slog.Logger
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Account{},
		&domain.RefreshToken{},
		&domain.EmailOTP{},
		&domain.PasswordReset{},
		&domain.Conversation{},
		&domain.ConversationParticipant{},
		&domain.Message{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return &serviceFixture{
		db: db,
		cfg: &config.Config{
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 30 * 24 * time.Hour,
			SessionTTL:      7 * 24 * time.Hour,
			OTPExpiry:       15 * time.Minute,
			OTPMaxAttempts:  5,
			ResetTokenTTL:   time.Hour,
			BcryptCost:      bcrypt.MinCost,
			FrontendURL:     "http://localhost:3000",
		},
		users:    repository.NewUserRepository(db),
		accounts: repository.NewAccountRepository(db),
		refresh:  repository.NewRefreshTokenRepository(db),
		otps:     repository.NewEmailOTPRepository(db),
		resets:   repository.NewPasswordResetRepository(db),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (f *serviceFixture) createUser(t *testing.T, email, password string, verified bool) *domain.User {
	t.Helper()
	user := &domain.User{Email: email, Name: "Fixture User", Role: "user", IsEmailVerified: verified}
	user.ID = fmt.Sprintf("user-%s", strings.SplitN(email, "@", 2)[0])
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("hash password: %v", err)
		}
		h := string(hash)
		user.PasswordHash = &h
	}
	account := &domain.Account{Provider: domain.ProviderCredentials, ProviderAccountID: email}
	if err := f.users.CreateWithAccount(user, account); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

// fakeGitHubClient is a canned GitHub API for tests.
type fakeGitHubClient struct {
	profile      *GitHubProfile
	profileErr   error
	primaryEmail string
	emailErr     error
}

func (f *fakeGitHubClient) FetchProfile(ctx context.Context, accessToken string) (*GitHubProfile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profile, nil
}

func (f *fakeGitHubClient) FetchPrimaryEmail(ctx context.Context, accessToken string) (string, error) {
	if f.emailErr != nil {
		return "", f.emailErr
	}
	return f.primaryEmail, nil
}
