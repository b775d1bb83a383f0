package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DBUrl       string
	JWTSecret   string
	JWKSUrl     string
	FrontendURL string
	// SMTP Configuration (email channel)
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromEmail string
	// Push gateway (push channel)
	PushGatewayURL string
	PushServerKey  string
	// SMS gateway (sms channel)
	SMSGatewayURL string
	SMSAccountID  string
	SMSAuthToken  string
	SMSFromNumber string
	// Redis Configuration (rate limiting)
	RedisURL      string
	RedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitGlobalThreshold int
	// Scheduled-notification sweep interval
	SweepIntervalMinutes int
}

// LoadConfig reads the environment. Required secrets fail fast here rather
// than defaulting silently and breaking at first use.
func LoadConfig() (*Config, error) {
	// Only effective locally; ignored in production when no .env exists.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DBUrl:       getEnv("DATABASE_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWKSUrl:     strings.TrimRight(getEnv("JWKS_URL", ""), "/"),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		// SMTP Configuration
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail: getEnv("SMTP_FROM_EMAIL", "noreply@talentbridge.example"),
		// Push gateway
		PushGatewayURL: getEnv("PUSH_GATEWAY_URL", ""),
		PushServerKey:  getEnv("PUSH_SERVER_KEY", ""),
		// SMS gateway
		SMSGatewayURL: getEnv("SMS_GATEWAY_URL", ""),
		SMSAccountID:  getEnv("SMS_ACCOUNT_ID", ""),
		SMSAuthToken:  getEnv("SMS_AUTH_TOKEN", ""),
		SMSFromNumber: getEnv("SMS_FROM_NUMBER", ""),
		// Redis Configuration
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		// Rate Limiting Configuration
		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
		// Sweep Configuration
		SweepIntervalMinutes: getEnvInt("SWEEP_INTERVAL_MINUTES", 1),
	}

	if cfg.DBUrl == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" && cfg.JWKSUrl == "" {
		return nil, fmt.Errorf("either JWT_SECRET or JWKS_URL must be configured")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}
