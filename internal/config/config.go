package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env      string
	HTTPPort string

	DatabaseURL string
	RedisAddr   string

	AccessTokenSecret string
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	SessionSecret     string
	SessionTTL        time.Duration

	OTPExpiry        time.Duration
	OTPMaxAttempts   int
	ResetTokenTTL    time.Duration
	BcryptCost       int
	FrontendURL      string
	CORSExtraOrigins []string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string
	AppName  string

	AuthRateLimitPerMin int
	APIRateLimitPerMin  int

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsExportInterval time.Duration
	OTELTraceSamplingRatio    float64
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELLogsEnabled           bool
	OTELLogLevel              string
}

func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")

	// ACCESS_TOKEN_SECRET with JWT_SECRET as the legacy fallback name.
	accessSecret := os.Getenv("ACCESS_TOKEN_SECRET")
	if accessSecret == "" {
		accessSecret = os.Getenv("JWT_SECRET")
	}
	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		sessionSecret = os.Getenv("JWT_SECRET")
	}

	cfg := &Config{
		Env:               env,
		HTTPPort:          getEnv("HTTP_PORT", "4000"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		AccessTokenSecret: accessSecret,
		SessionSecret:     sessionSecret,
		SessionTTL:        7 * 24 * time.Hour,
		OTPMaxAttempts:    5,
		ResetTokenTTL:     time.Hour,
		BcryptCost:        getEnvInt("BCRYPT_SALT_ROUNDS", 10),
		FrontendURL:       strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		CORSExtraOrigins:  splitCSV(os.Getenv("CORS_EXTRA_ORIGINS")),
		SMTPHost:          os.Getenv("SMTP_HOST"),
		SMTPPort:          getEnvInt("SMTP_PORT", 587),
		SMTPUser:          os.Getenv("SMTP_USER"),
		SMTPPass:          os.Getenv("SMTP_PASS"),
		MailFrom:          getEnv("MAIL_FROM", "Authentication Service <no-reply@localhost>"),
		AppName:           getEnv("APP_NAME", "Authentication Service"),

		AuthRateLimitPerMin: getEnvInt("AUTH_RATE_LIMIT_PER_MIN", 30),
		APIRateLimitPerMin:  getEnvInt("API_RATE_LIMIT_PER_MIN", 120),

		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "hybrid-auth-backend"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", env),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELTraceSamplingRatio:   getEnvFloat("OTEL_TRACE_SAMPLING_RATIO", 1.0),
		OTELMetricsEnabled:       getEnvBool("OTEL_METRICS_ENABLED", false),
		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", false),
		OTELLogsEnabled:          getEnvBool("OTEL_LOGS_ENABLED", false),
		OTELLogLevel:             strings.ToLower(getEnv("OTEL_LOG_LEVEL", "info")),
	}

	accessTTL, err := time.ParseDuration(getEnv("ACCESS_TOKEN_EXPIRES", "15m"))
	if err != nil {
		return nil, fmt.Errorf("parse ACCESS_TOKEN_EXPIRES: %w", err)
	}
	cfg.AccessTokenTTL = accessTTL

	// The TLL spelling is load-bearing: deployments have set it since
	// the first release.
	refreshDays := getEnvInt("REFRESH_TOKEN_TLL_DAYS", 30)
	cfg.RefreshTokenTTL = time.Duration(refreshDays) * 24 * time.Hour

	otpMinutes := getEnvInt("OTP_EXPIRY_MINUTES", 15)
	cfg.OTPExpiry = time.Duration(otpMinutes) * time.Minute

	metricsInterval, err := time.ParseDuration(getEnv("OTEL_METRICS_EXPORT_INTERVAL", "10s"))
	if err != nil {
		return nil, fmt.Errorf("parse OTEL_METRICS_EXPORT_INTERVAL: %w", err)
	}
	cfg.OTELMetricsExportInterval = metricsInterval

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if len(c.AccessTokenSecret) < 32 {
		errs = append(errs, "ACCESS_TOKEN_SECRET (or JWT_SECRET) must be at least 32 chars")
	}
	if len(c.SessionSecret) < 32 {
		errs = append(errs, "SESSION_SECRET (or JWT_SECRET) must be at least 32 chars")
	}
	if c.AccessTokenTTL <= 0 || c.AccessTokenTTL > time.Hour {
		errs = append(errs, "ACCESS_TOKEN_EXPIRES must be between 1s and 1h")
	}
	if c.RefreshTokenTTL <= 0 || c.RefreshTokenTTL > 90*24*time.Hour {
		errs = append(errs, "REFRESH_TOKEN_TLL_DAYS must be between 1 and 90")
	}
	if c.OTPExpiry <= 0 || c.OTPExpiry > time.Hour {
		errs = append(errs, "OTP_EXPIRY_MINUTES must be between 1 and 60")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 15 {
		errs = append(errs, "BCRYPT_SALT_ROUNDS must be between 4 and 15")
	}
	if c.AuthRateLimitPerMin <= 0 {
		errs = append(errs, "AUTH_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.APIRateLimitPerMin <= 0 {
		errs = append(errs, "API_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.SMTPHost != "" && (c.SMTPUser == "" || c.SMTPPass == "") {
		errs = append(errs, "SMTP_USER and SMTP_PASS are required when SMTP_HOST is set")
	}
	if c.IsProduction() && c.SMTPHost == "" {
		errs = append(errs, "SMTP_HOST is required in production")
	}
	if (c.OTELMetricsEnabled || c.OTELTracingEnabled || c.OTELLogsEnabled) && c.OTELExporterOTLPEndpoint == "" {
		errs = append(errs, "OTEL_EXPORTER_OTLP_ENDPOINT is required when OTel is enabled")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be between 0 and 1")
	}
	if !isValidLogLevel(c.OTELLogLevel) {
		errs = append(errs, "OTEL_LOG_LEVEL must be one of debug, info, warn, error")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "production")
}

// SMTPConfigured reports whether a real mail transport is available.
// Without it the mailer degrades to logging (non-production only).
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPass != ""
}

// AllowedOrigins is the CORS allow-list: the frontend plus any
// configured extras and the local dev origin.
func (c *Config) AllowedOrigins() []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, 2+len(c.CORSExtraOrigins))
	for _, o := range append([]string{c.FrontendURL, "http://localhost:3000"}, c.CORSExtraOrigins...) {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		out = append(out, o)
	}
	return out
}

func isValidLogLevel(v string) bool {
	switch strings.ToLower(v) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}
