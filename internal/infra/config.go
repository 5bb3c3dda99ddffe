package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	// AuthJWTPublicKey is the PEM-encoded RSA public key used to verify
	// bearer tokens issued by the identity provider.
	AuthJWTPublicKey string

	// ModalBaseURL is the account/app prefix of the compute endpoints,
	// e.g. "https://acme--pixgen-gpu". Function name and environment
	// suffix are appended per request.
	ModalBaseURL       string
	ModalDev           bool
	ModalWebhookSecret string
	WebhookBaseURL     string

	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseBucket     string

	FrontendURL string
	GeoIPDBPath string

	DispatchWorkers int
	DispatchBuffer  int
	DispatchTimeout time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		AuthJWTPublicKey:   os.Getenv("AUTH_JWT_PUBLIC_KEY"),
		ModalBaseURL:       os.Getenv("MODAL_BASE_URL"),
		ModalDev:           strings.EqualFold(os.Getenv("MODAL_DEV"), "true"),
		ModalWebhookSecret: os.Getenv("MODAL_WEBHOOK_SECRET"),
		WebhookBaseURL:     os.Getenv("WEBHOOK_BASE_URL"),
		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_KEY"),
		SupabaseBucket:     getEnv("SUPABASE_BUCKET", "training-archives"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3000"),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		DispatchWorkers:    getEnvInt("DISPATCH_WORKERS", 8),
		DispatchBuffer:     getEnvInt("DISPATCH_BUFFER", 256),
		DispatchTimeout:    time.Second * time.Duration(getEnvInt("DISPATCH_TIMEOUT_SECONDS", 60)),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.AuthJWTPublicKey == "" {
		return nil, fmt.Errorf("AUTH_JWT_PUBLIC_KEY is required")
	}
	if cfg.ModalBaseURL == "" {
		return nil, fmt.Errorf("MODAL_BASE_URL is required")
	}
	if cfg.WebhookBaseURL == "" {
		return nil, fmt.Errorf("WEBHOOK_BASE_URL is required")
	}
	if cfg.ModalWebhookSecret == "" {
		return nil, fmt.Errorf("MODAL_WEBHOOK_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
