package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/authhybrid/backend/internal/config"
	"github.com/authhybrid/backend/internal/domain"
	"github.com/authhybrid/backend/internal/health"
	"github.com/authhybrid/backend/internal/http/handler"
	"github.com/authhybrid/backend/internal/http/middleware"
	mailgomock "github.com/authhybrid/backend/internal/mail/gomock"
	"github.com/authhybrid/backend/internal/repository"
	"github.com/authhybrid/backend/internal/security"
	"github.com/authhybrid/backend/internal/service"
)

type testServer struct {
	handler http.Handler
	mailer  *mailgomock.MockMailer
	db      *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
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

	cfg := &config.Config{
		AccessTokenTTL:      15 * time.Minute,
		RefreshTokenTTL:     30 * 24 * time.Hour,
		SessionTTL:          7 * 24 * time.Hour,
		OTPExpiry:           15 * time.Minute,
		OTPMaxAttempts:      5,
		ResetTokenTTL:       time.Hour,
		BcryptCost:          bcrypt.MinCost,
		FrontendURL:         "http://localhost:3000",
		AuthRateLimitPerMin: 1000,
		APIRateLimitPerMin:  1000,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctrl := gomock.NewController(t)
	mailer := mailgomock.NewMockMailer(ctrl)

	users := repository.NewUserRepository(db)
	accounts := repository.NewAccountRepository(db)
	refreshRepo := repository.NewRefreshTokenRepository(db)
	otpRepo := repository.NewEmailOTPRepository(db)
	resetRepo := repository.NewPasswordResetRepository(db)
	convRepo := repository.NewConversationRepository(db)
	msgRepo := repository.NewMessageRepository(db)

	jwtMgr := security.NewJWTManager(
		"access-secret-at-least-32-characters!",
		"session-secret-at-least-32-characters",
		cfg.AccessTokenTTL, cfg.SessionTTL,
	)
	cookies := security.NewCookieManager(false, cfg.RefreshTokenTTL, cfg.SessionTTL)

	tokens := service.NewTokenService(cfg, jwtMgr, refreshRepo, users, logger)
	otps := service.NewOTPService(cfg, otpRepo, users, mailer, logger)
	resets := service.NewPasswordResetService(cfg, resetRepo, users, mailer, logger)
	auth := service.NewAuthService(users, accounts, tokens, otps, service.NewGitHubClient(), cfg.BcryptCost, logger)
	sessions := service.NewSessionService(jwtMgr, cookies)
	convs := service.NewConversationService(convRepo, users)
	msgs := service.NewMessageService(msgRepo, convRepo)

	h := New(Dependencies{
		UserHandler:         handler.NewUserHandler(auth, otps, sessions, cookies),
		AuthHandler:         handler.NewAuthHandler(auth, tokens, sessions, cookies),
		PasswordHandler:     handler.NewPasswordHandler(resets),
		ProfileHandler:      handler.NewProfileHandler(users),
		ConversationHandler: handler.NewConversationHandler(convs, msgs),
		HealthHandler:       handler.NewHealthHandler(health.NewProbeRunner(time.Second, health.NewDBChecker(db))),
		JWTManager:          jwtMgr,
		CORSOrigins:         []string{"http://localhost:3000"},
		AuthRateLimitRPM:    cfg.AuthRateLimitPerMin,
		APIRateLimitRPM:     cfg.APIRateLimitPerMin,
		Limiter:             middleware.NewLocalFixedWindowLimiter(),
		LimiterMode:         middleware.FailClosed,
	})
	return &testServer{handler: h, mailer: mailer, db: db}
}

func (s *testServer) do(t *testing.T, method, path string, body any, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	r := httptest.NewRequest(method, path, rd)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	for _, m := range mutate {
		m(r)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, r)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return m
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestCredentialLifecycle(t *testing.T) {
	s := newTestServer(t)

	var otp string
	s.mailer.EXPECT().
		SendOTP(gomock.Any(), "lifecycle@example.dev", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _, code string) error {
			otp = code
			return nil
		})

	rec := s.do(t, http.MethodPost, "/register", map[string]string{
		"name": "Life Cycle", "email": "Lifecycle@Example.dev", "password": "password123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	userObj, _ := body["user"].(map[string]any)
	userID, _ := userObj["id"].(string)
	if userID == "" {
		t.Fatalf("no user id in register response: %v", body)
	}
	if userObj["email"] != "lifecycle@example.dev" {
		t.Fatalf("email not normalized: %v", userObj)
	}

	// Login before verification is forbidden.
	rec = s.do(t, http.MethodPost, "/login", map[string]string{
		"email": "lifecycle@example.dev", "password": "password123",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("pre-verify login: %d %s", rec.Code, rec.Body.String())
	}
	if decodeBody(t, rec)["error"] != "Email not verified. Please verify your email first." {
		t.Fatalf("unexpected error body: %s", rec.Body.String())
	}

	s.mailer.EXPECT().SendVerificationSuccess(gomock.Any(), "lifecycle@example.dev", gomock.Any()).Return(nil)
	rec = s.do(t, http.MethodPost, "/verify-otp", map[string]string{
		"otp": otp, "email": "lifecycle@example.dev", "userId": userID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("verify-otp: %d %s", rec.Code, rec.Body.String())
	}
	if decodeBody(t, rec)["message"] != "Email verified successfully!" {
		t.Fatalf("unexpected verify body: %s", rec.Body.String())
	}

	rec = s.do(t, http.MethodPost, "/login", map[string]string{
		"email": "lifecycle@example.dev", "password": "password123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}
	body = decodeBody(t, rec)
	access, _ := body["accessToken"].(string)
	if access == "" {
		t.Fatal("no access token in login response")
	}
	refreshCookie := cookieByName(rec, security.RefreshCookieName)
	if refreshCookie == nil || !refreshCookie.HttpOnly {
		t.Fatal("refresh cookie missing or not http-only")
	}
	if strings.Contains(rec.Body.String(), refreshCookie.Value) {
		t.Fatal("raw refresh secret leaked into response body")
	}
	if cookieByName(rec, security.SessionCookieName) == nil {
		t.Fatal("session cookie not stamped on login")
	}

	// The access token opens the authenticated surface.
	rec = s.do(t, http.MethodGet, "/me", nil, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+access)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("/me: %d %s", rec.Code, rec.Body.String())
	}

	// Rotation: the old cookie dies, the new one works.
	rec = s.do(t, http.MethodPost, "/auth/refresh", nil, func(r *http.Request) {
		r.AddCookie(refreshCookie)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: %d %s", rec.Code, rec.Body.String())
	}
	rotated := cookieByName(rec, security.RefreshCookieName)
	if rotated == nil || rotated.Value == refreshCookie.Value {
		t.Fatal("refresh did not rotate the cookie")
	}

	rec = s.do(t, http.MethodPost, "/auth/logout", nil, func(r *http.Request) {
		r.AddCookie(rotated)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: %d %s", rec.Code, rec.Body.String())
	}
	cleared := cookieByName(rec, security.RefreshCookieName)
	if cleared == nil || cleared.MaxAge != -1 {
		t.Fatal("logout did not clear the refresh cookie")
	}

	// The revoked secret is dead.
	rec = s.do(t, http.MethodPost, "/auth/refresh", nil, func(r *http.Request) {
		r.AddCookie(rotated)
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("refresh after logout: %d %s", rec.Code, rec.Body.String())
	}
}

func TestRefreshWithoutCookie(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/auth/refresh", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got %d", rec.Code)
	}
	if decodeBody(t, rec)["error"] != "No refresh token" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestPasswordResetEnumerationResistance(t *testing.T) {
	s := newTestServer(t)

	s.mailer.EXPECT().
		SendOTP(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil)
	rec := s.do(t, http.MethodPost, "/register", map[string]string{
		"email": "known@example.dev", "password": "password123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d", rec.Code)
	}

	s.mailer.EXPECT().
		SendPasswordReset(gomock.Any(), "known@example.dev", gomock.Any(), gomock.Any()).
		Return(nil)
	known := s.do(t, http.MethodPost, "/password/request-password-reset", map[string]string{"email": "known@example.dev"})
	unknown := s.do(t, http.MethodPost, "/password/request-password-reset", map[string]string{"email": "ghost@example.dev"})

	if known.Code != http.StatusOK || unknown.Code != http.StatusOK {
		t.Fatalf("status divergence: %d vs %d", known.Code, unknown.Code)
	}
	if known.Body.String() != unknown.Body.String() {
		t.Fatalf("body divergence: %q vs %q", known.Body.String(), unknown.Body.String())
	}
}

func TestAuthenticatedSurfaceRequiresBearer(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/me", "/conversations/"} {
		rec := s.do(t, http.MethodGet, path, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s without token: %d", path, rec.Code)
		}
	}

	rec := s.do(t, http.MethodGet, "/me", nil, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer garbage")
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: %d", rec.Code)
	}
}

func TestSecurityHeadersPresent(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health: %d", rec.Code)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("missing X-Content-Type-Options")
	}
	if rec.Header().Get("X-Frame-Options") == "" {
		t.Fatal("missing X-Frame-Options")
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodOptions, "/login", nil, func(r *http.Request) {
		r.Header.Set("Origin", "http://localhost:3000")
		r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight: %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Fatalf("allow-origin: %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatal("credentials not allowed")
	}

	rec = s.do(t, http.MethodOptions, "/login", nil, func(r *http.Request) {
		r.Header.Set("Origin", "https://evil.example")
		r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	})
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("unknown origin allowed")
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK || decodeBody(t, rec)["status"] != "OK" {
		t.Fatalf("health: %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/health/ready", nil)
	if rec.Code != http.StatusOK || decodeBody(t, rec)["status"] != "ready" {
		t.Fatalf("ready: %d %s", rec.Code, rec.Body.String())
	}
}

func TestConversationRoutes(t *testing.T) {
	s := newTestServer(t)

	// Seed two verified users directly; the HTTP flow is covered
	// elsewhere.
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	h := string(hash)
	a := &domain.User{ID: "user-a", Email: "a@example.dev", PasswordHash: &h, Role: "user", IsEmailVerified: true}
	b := &domain.User{ID: "user-b", Email: "b@example.dev", PasswordHash: &h, Role: "user", IsEmailVerified: true}
	for _, u := range []*domain.User{a, b} {
		if err := s.db.Create(u).Error; err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	login := s.do(t, http.MethodPost, "/login", map[string]string{"email": "a@example.dev", "password": "password123"})
	if login.Code != http.StatusOK {
		t.Fatalf("login: %d %s", login.Code, login.Body.String())
	}
	access, _ := decodeBody(t, login)["accessToken"].(string)
	withToken := func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+access) }

	rec := s.do(t, http.MethodPost, "/conversations/", map[string]any{"participantIds": []string{"user-b"}}, withToken)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create conversation: %d %s", rec.Code, rec.Body.String())
	}
	conv, _ := decodeBody(t, rec)["conversation"].(map[string]any)
	convID, _ := conv["id"].(string)
	if convID == "" {
		t.Fatalf("no conversation id: %s", rec.Body.String())
	}

	rec = s.do(t, http.MethodPost, "/conversations/"+convID+"/messages", map[string]string{"body": "hello"}, withToken)
	if rec.Code != http.StatusCreated {
		t.Fatalf("send message: %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/conversations/"+convID+"/messages", nil, withToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("list messages: %d %s", rec.Code, rec.Body.String())
	}
	msgs, _ := decodeBody(t, rec)["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}

	rec = s.do(t, http.MethodPost, "/conversations/"+convID+"/read", nil, withToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("mark read: %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/conversations/", nil, withToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("list conversations: %d %s", rec.Code, rec.Body.String())
	}
	convs, _ := decodeBody(t, rec)["conversations"].([]any)
	if len(convs) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(convs))
	}
}
