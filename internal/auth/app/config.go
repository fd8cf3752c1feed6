package app

import (
	"os"
	"strconv"
	"time"

	"github.com/halcyondigital/accounts/internal/auth/ratelimit"
)

type Config struct {
	Issuer string // Issuer claim for session tokens and TOTP enrollment label

	DatabaseFile        string        // Path to SQLite database file (default: ./accounts.db)
	PepperFile          string        // Path to file containing pepper for password hashing (default: ./pepper)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
	SessionTTL          time.Duration // Session token lifetime (default: 12h)

	// Fixed-window budgets for the abuse-prone account actions. Keyed per
	// IP for registration and sign-in, per account for two-factor verify.
	RegisterLimit ratelimit.Config
	LoginLimit    ratelimit.Config
	VerifyLimit   ratelimit.Config
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:              getEnvOrDefault("ACCOUNTS_ISSUER", "accounts"),
		DatabaseFile:        getEnvOrDefault("ACCOUNTS_DATABASE_FILE", "accounts.db"),
		PepperFile:          getEnvOrDefault("ACCOUNTS_PEPPER_FILE", "pepper"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		SessionTTL:          getEnvDurationOrDefault("ACCOUNTS_SESSION_TTL", 12*time.Hour),

		RegisterLimit: ratelimit.Config{
			Max:    getEnvIntOrDefault("ACCOUNTS_REGISTER_LIMIT_MAX", 10),
			Window: getEnvDurationOrDefault("ACCOUNTS_REGISTER_LIMIT_WINDOW", time.Hour),
		},
		LoginLimit: ratelimit.Config{
			Max:    getEnvIntOrDefault("ACCOUNTS_LOGIN_LIMIT_MAX", 10),
			Window: getEnvDurationOrDefault("ACCOUNTS_LOGIN_LIMIT_WINDOW", 15*time.Minute),
		},
		VerifyLimit: ratelimit.Config{
			Max:    getEnvIntOrDefault("ACCOUNTS_VERIFY_LIMIT_MAX", 5),
			Window: getEnvDurationOrDefault("ACCOUNTS_VERIFY_LIMIT_WINDOW", 5*time.Minute),
		},
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
