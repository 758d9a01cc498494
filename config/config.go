package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppEnv      string
	Port        string
	CORSOrigins []string

	// TrustedProxies may set X-Forwarded-For. Empty means the socket address is the client IP.
	TrustedProxies []string

	// Database
	DBDriver   string // postgres | sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBDSN      string // sqlite file path or full DSN override

	// Security
	JWTSecret        string
	JWTExpiry        time.Duration
	OTPTTL           time.Duration
	OTPRetention     time.Duration
	AllowAdminSignup bool
	RateLimitRPS     float64
	RateLimitBurst   int

	// Email
	MailDriver   string // smtp | resend | log
	SMTPHost     string
	SMTPPort     string
	SMTPEmail    string
	SMTPPassword string
	ResendAPIKey string
	EmailFrom    string

	// Storage
	StorageDriver  string // supabase | s3 | empty (uploads disabled)
	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string
	S3Region       string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string
	S3Endpoint     string

	// OAuth
	GoogleClientID string

	// Observability
	SentryDSN string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		AppEnv:      envString("APP_ENV", "development"),
		Port:        envString("PORT", "8080"),
		CORSOrigins: envList("CORS_ORIGINS", []string{"http://localhost:3000"}),

		TrustedProxies: envList("TRUSTED_PROXIES", nil),

		DBDriver:   envString("DB_DRIVER", "postgres"),
		DBHost:     envString("DB_HOST", "localhost"),
		DBPort:     envString("DB_PORT", "5432"),
		DBUser:     envString("DB_USER", "postgres"),
		DBPassword: envString("DB_PASSWORD", ""),
		DBName:     envString("DB_NAME", "elearning"),
		DBDSN:      envString("DB_DSN", ""),

		JWTSecret:        envRequired("JWT_SECRET"),
		JWTExpiry:        envDuration("JWT_EXPIRY", time.Hour),
		OTPTTL:           envDuration("OTP_TTL", time.Hour),
		OTPRetention:     envDuration("OTP_RETENTION", 24*time.Hour),
		AllowAdminSignup: envBool("ALLOW_ADMIN_SIGNUP", false),
		RateLimitRPS:     envFloat("RATE_LIMIT_RPS", 1),
		RateLimitBurst:   envInt("RATE_LIMIT_BURST", 10),

		MailDriver:   envString("MAIL_DRIVER", "log"),
		SMTPHost:     envString("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     envString("SMTP_PORT", "587"),
		SMTPEmail:    envString("SMTP_EMAIL", ""),
		SMTPPassword: envString("SMTP_PASSWORD", ""),
		ResendAPIKey: envString("RESEND_API_KEY", ""),
		EmailFrom:    envString("EMAIL_FROM", "noreply@example.com"),

		StorageDriver:  envString("STORAGE_DRIVER", ""),
		SupabaseURL:    envString("SUPABASE_URL", ""),
		SupabaseKey:    envString("SUPABASE_KEY", ""),
		SupabaseBucket: envString("SUPABASE_BUCKET", "uploads"),
		S3Region:       envString("S3_REGION", ""),
		S3Bucket:       envString("S3_BUCKET", ""),
		S3AccessKey:    envString("S3_ACCESS_KEY", ""),
		S3SecretKey:    envString("S3_SECRET_KEY", ""),
		S3Endpoint:     envString("S3_ENDPOINT", ""),

		GoogleClientID: envString("GOOGLE_CLIENT_ID", ""),
		SentryDSN:      envString("SENTRY_DSN", ""),
	}

	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction refuses to boot with the development mail driver in production.
func validateProduction(cfg *Config) {
	if cfg.MailDriver == "log" {
		slog.Error("production deployment requires MAIL_DRIVER=smtp or MAIL_DRIVER=resend")
		os.Exit(1)
	}
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("config invalid float, using default", "key", key, "value", v, "default", def)
		return def
	}
	return f
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}
