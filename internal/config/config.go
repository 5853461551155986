package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	Redis RedisConfig
	SMTP  SMTPConfig

	Invite    InviteConfig
	RateLimit RateLimitConfig

	Bootstrap BootstrapConfig
}

// RedisConfig configures the transient key-value store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SMTPConfig configures the outbound email transport.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// InviteConfig configures the invitation flow.
type InviteConfig struct {
	// RedirectURL is the base URL embedded in invitation join links.
	RedirectURL string
	// OrgDisplayName appears in the invitation email footer.
	OrgDisplayName string
	// TTLSeconds bounds how long a pending invitation stays redeemable.
	TTLSeconds int
}

// RateLimitConfig throttles invitation acceptance. Codes are 6 digits, so
// unthrottled guessing would be practical.
type RateLimitConfig struct {
	InviteAcceptEnabled bool
	InviteAcceptRate    float64
	InviteAcceptBurst   int
}

type BootstrapConfig struct {
	EnsureDefaultOrgAndAdmin bool
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:      getenv("APP_SERVICE", "tenantry"),
		AppVersion:   getenv("APP_VERSION", "0.1.0"),
		Environment:  getenv("ENVIRONMENT", "development"),
		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "postgres"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 10),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 50),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),

		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", "localhost:6379"),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getenvInt("REDIS_DB", 0),
		},
		SMTP: SMTPConfig{
			Host:     getenv("SMTP_HOST", ""),
			Port:     getenvInt("SMTP_PORT", 587),
			Username: getenv("SMTP_USERNAME", ""),
			Password: getenv("SMTP_PASSWORD", ""),
			From:     getenv("SMTP_FROM", "no-reply@tenantry.dev"),
		},
		Invite: InviteConfig{
			RedirectURL:    strings.TrimRight(getenv("INVITE_REDIRECT_URL", "http://localhost:3000"), "/"),
			OrgDisplayName: getenv("INVITE_ORG_DISPLAY_NAME", "Tenantry"),
			TTLSeconds:     getenvInt("INVITE_TTL_SECONDS", 86400),
		},
		RateLimit: RateLimitConfig{
			InviteAcceptEnabled: getenvBool("RATE_LIMIT_INVITE_ACCEPT", true),
			InviteAcceptRate:    getenvFloat("RATE_LIMIT_INVITE_ACCEPT_RATE", 0.2),
			InviteAcceptBurst:   getenvInt("RATE_LIMIT_INVITE_ACCEPT_BURST", 5),
		},
		Bootstrap: BootstrapConfig{
			EnsureDefaultOrgAndAdmin: getenvBool("BOOTSTRAP_DEFAULT_ORG_AND_ADMIN", true),
		},
	}

	return cfg
}

func getenv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		log.Printf("config: invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return value
}

func getenvFloat(key string, fallback float64) float64 {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		log.Printf("config: invalid %s=%q, using %g", key, raw, fallback)
		return fallback
	}
	return value
}

func getenvBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}
