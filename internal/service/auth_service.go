package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/authhybrid/backend/internal/apperr"
	"github.com/authhybrid/backend/internal/domain"
	"github.com/authhybrid/backend/internal/observability"
	"github.com/authhybrid/backend/internal/repository"
	"github.com/authhybrid/backend/internal/security"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthResult is what a successful credential or OAuth authentication
// yields: the identity plus both halves of the token pair. RefreshRaw
// is delivered only via the HTTP-only cookie.
type AuthResult struct {
	User        *domain.User
	AccessToken string
	RefreshRaw  string
}

// GoogleInput is the payload the frontend relays after a Google
// sign-in.
type GoogleInput struct {
	Email    string
	Name     string
	GoogleID string
	Image    string
}

// GitHubInput carries whatever the frontend learned from GitHub; a
// provider access token lets the backend fill in the gaps itself.
type GitHubInput struct {
	Email       string
	Name        string
	GitHubID    string
	Image       string
	AccessToken string
}

// AuthService implements registration and the three login paths
// (credentials, Google, GitHub).
type AuthService struct {
	users    repository.UserRepository
	accounts repository.AccountRepository
	tokens   *TokenService
	otps     *OTPService
	github   GitHubClient
	bcrypt   int
	logger   *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	accounts repository.AccountRepository,
	tokens *TokenService,
	otps *OTPService,
	github GitHubClient,
	bcryptCost int,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		accounts: accounts,
		tokens:   tokens,
		otps:     otps,
		github:   github,
		bcrypt:   bcryptCost,
		logger:   logger,
	}
}

// Register creates an unverified credentials user and sends the first
// verification code. The user row survives an OTP delivery failure;
// the orphaned code does not.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" || password == "" {
		return nil, apperr.Validation("Email and password required!")
	}

	if _, err := s.users.FindByEmail(normalized); err == nil {
		return nil, apperr.Conflict("User already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal(err)
	}

	passwordHash, err := security.HashSecret(password, s.bcrypt)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        normalized,
		Name:         strings.TrimSpace(name),
		PasswordHash: &passwordHash,
		Role:         "user",
	}
	account := &domain.Account{
		Provider:          domain.ProviderCredentials,
		ProviderAccountID: normalized,
	}
	if err := s.users.CreateWithAccount(user, account); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("User already exists")
		}
		return nil, apperr.Internal(err)
	}
	observability.AuditCtx(ctx, "auth.register", "user_id", user.ID)

	if err := s.otps.Issue(ctx, user.ID, user.Email, user.Name); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates a credentials user. Unknown email (or an
// OAuth-only account with no password) reads as not-found; a wrong
// password is an auth failure; an unverified email is forbidden.
func (s *AuthService) Login(ctx context.Context, email, password string, meta ClientMeta) (*AuthResult, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" || password == "" {
		return nil, apperr.Validation("Email and password are required!")
	}

	user, err := s.users.FindByEmail(normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordAuthLogin(ctx, domain.ProviderCredentials, "not_found")
			return nil, apperr.NotFound("Invalid email or password.")
		}
		return nil, apperr.Internal(err)
	}
	if user.PasswordHash == nil {
		observability.RecordAuthLogin(ctx, domain.ProviderCredentials, "not_found")
		return nil, apperr.NotFound("Invalid email or password.")
	}
	if !security.CompareSecret(*user.PasswordHash, password) {
		observability.RecordAuthLogin(ctx, domain.ProviderCredentials, "bad_password")
		return nil, apperr.Auth("Invalid credentials.")
	}
	if !user.IsEmailVerified {
		observability.RecordAuthLogin(ctx, domain.ProviderCredentials, "unverified")
		return nil, apperr.Forbidden("Email not verified. Please verify your email first.")
	}

	access, refreshRaw, err := s.tokens.Issue(ctx, user, meta)
	if err != nil {
		return nil, err
	}
	observability.RecordAuthLogin(ctx, domain.ProviderCredentials, "success")
	observability.AuditCtx(ctx, "auth.login", "user_id", user.ID, "provider", domain.ProviderCredentials)
	return &AuthResult{User: user, AccessToken: access, RefreshRaw: refreshRaw}, nil
}

// GoogleOAuth signs a Google identity in, creating the user on first
// contact. Google addresses arrive verified.
func (s *AuthService) GoogleOAuth(ctx context.Context, in GoogleInput, meta ClientMeta) (*AuthResult, error) {
	normalized := strings.ToLower(strings.TrimSpace(in.Email))
	if normalized == "" || in.GoogleID == "" {
		return nil, apperr.Validation("Email and Google ID are required")
	}
	user, err := s.findOrCreateOAuthUser(ctx, normalized, in.Name, in.Image, domain.ProviderGoogle, in.GoogleID)
	if err != nil {
		return nil, err
	}
	access, refreshRaw, err := s.tokens.Issue(ctx, user, meta)
	if err != nil {
		return nil, err
	}
	observability.RecordAuthLogin(ctx, domain.ProviderGoogle, "success")
	observability.AuditCtx(ctx, "auth.login", "user_id", user.ID, "provider", domain.ProviderGoogle)
	return &AuthResult{User: user, AccessToken: access, RefreshRaw: refreshRaw}, nil
}

// GitHubOAuth signs a GitHub identity in. A provider access token is
// exchanged for the profile and, when needed, the primary verified
// email; a rejected token is an auth failure, a transport failure
// degrades to whatever the request body supplied.
func (s *AuthService) GitHubOAuth(ctx context.Context, in GitHubInput, meta ClientMeta) (*AuthResult, error) {
	if in.GitHubID == "" && in.AccessToken == "" {
		return nil, apperr.Validation("GitHub ID or access token is required")
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	var profile *GitHubProfile
	if in.AccessToken != "" {
		p, err := s.github.FetchProfile(ctx, in.AccessToken)
		switch {
		case errors.Is(err, ErrGitHubUnauthorized):
			observability.RecordAuthLogin(ctx, domain.ProviderGitHub, "bad_token")
			return nil, apperr.Auth("Invalid GitHub access token")
		case err != nil:
			s.logger.WarnContext(ctx, "github profile fetch failed", slog.String("error", err.Error()))
		default:
			profile = p
		}
	}
	if email == "" && in.AccessToken != "" {
		fetched, err := s.github.FetchPrimaryEmail(ctx, in.AccessToken)
		if err != nil {
			s.logger.WarnContext(ctx, "github emails fetch failed", slog.String("error", err.Error()))
		} else {
			email = strings.ToLower(fetched)
		}
	}
	if email == "" {
		return nil, apperr.Validation("Email is required for GitHub authentication. Please ensure you've granted email access permissions.")
	}

	providerAccountID := in.GitHubID
	name := strings.TrimSpace(in.Name)
	avatar := in.Image
	if profile != nil {
		if providerAccountID == "" {
			providerAccountID = profile.ID
		}
		if name == "" {
			name = profile.Name
		}
		if name == "" {
			name = profile.Login
		}
		if avatar == "" {
			avatar = profile.AvatarURL
		}
	}
	if providerAccountID == "" {
		return nil, apperr.Upstream("Failed to fetch GitHub profile")
	}
	if name == "" {
		name = "GitHub User"
	}

	user, err := s.findOrCreateOAuthUser(ctx, email, name, avatar, domain.ProviderGitHub, providerAccountID)
	if err != nil {
		return nil, err
	}
	access, refreshRaw, err := s.tokens.Issue(ctx, user, meta)
	if err != nil {
		return nil, err
	}
	observability.RecordAuthLogin(ctx, domain.ProviderGitHub, "success")
	observability.AuditCtx(ctx, "auth.login", "user_id", user.ID, "provider", domain.ProviderGitHub)
	return &AuthResult{User: user, AccessToken: access, RefreshRaw: refreshRaw}, nil
}

// findOrCreateOAuthUser resolves the email to an existing user
// (linking the provider on first sight) or creates a verified user
// plus its provider account atomically.
func (s *AuthService) findOrCreateOAuthUser(ctx context.Context, email, name, avatar, provider, providerAccountID string) (*domain.User, error) {
	user, err := s.users.FindByEmail(email)
	switch {
	case err == nil:
		if linkErr := s.accounts.EnsureLink(user.ID, provider, providerAccountID); linkErr != nil {
			if errors.Is(linkErr, gorm.ErrDuplicatedKey) {
				return nil, apperr.Conflict("User already exists")
			}
			return nil, apperr.Internal(linkErr)
		}
		return user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = &domain.User{
			ID:              uuid.NewString(),
			Email:           email,
			Name:            name,
			AvatarURL:       avatar,
			Role:            "user",
			IsEmailVerified: true,
		}
		account := &domain.Account{Provider: provider, ProviderAccountID: providerAccountID}
		if createErr := s.users.CreateWithAccount(user, account); createErr != nil {
			if errors.Is(createErr, gorm.ErrDuplicatedKey) {
				return nil, apperr.Conflict("User already exists")
			}
			return nil, apperr.Internal(createErr)
		}
		observability.AuditCtx(ctx, "auth.oauth.user_created", "user_id", user.ID, "provider", provider)
		return user, nil
	default:
		return nil, apperr.Internal(err)
	}
}
