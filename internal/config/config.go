package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	BaseURL string

	DBDriver    string // "postgres" or "sqlite"
	DatabaseURL string
	SQLitePath  string

	SecretKey   string
	TokenMaxAge time.Duration

	DefaultFromEmail string
	SendGridAPIKey   string // empty: emails are only logged

	StorageBackend string // "s3" or "local"
	BucketName     string
	MediaRoot      string

	RedisURL string // empty: sessions kept in memory

	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectURL   string

	AdminEmail    string // with AdminPassword: staff user ensured at startup
	AdminPassword string

	LogLevel string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file, using environment variables")
	}

	cfg := &Config{
		Port:               str("PORT", "8080"),
		BaseURL:            str("BASE_URL", "http://localhost:8080"),
		DBDriver:           str("DB_DRIVER", "postgres"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		SQLitePath:         str("SQLITE_PATH", "recruit.db"),
		SecretKey:          os.Getenv("SECRET_KEY"),
		TokenMaxAge:        seconds("TOKEN_MAX_AGE", 604800),
		DefaultFromEmail:   str("DEFAULT_FROM_EMAIL", "noreply@example.com"),
		SendGridAPIKey:     os.Getenv("SENDGRID_API_KEY"),
		StorageBackend:     str("STORAGE_BACKEND", "local"),
		BucketName:         os.Getenv("BUCKET_NAME"),
		MediaRoot:          str("MEDIA_ROOT", "./media"),
		RedisURL:           os.Getenv("REDIS_URL"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		OAuthRedirectURL:   str("OAUTH_REDIRECT_URL", "http://localhost:8080/callback"),
		AdminEmail:         os.Getenv("ADMIN_EMAIL"),
		AdminPassword:      os.Getenv("ADMIN_PASSWORD"),
		LogLevel:           str("LOG_LEVEL", "info"),
	}

	if cfg.SecretKey == "" {
		return nil, errors.New("config: SECRET_KEY is required")
	}
	if (cfg.AdminEmail == "") != (cfg.AdminPassword == "") {
		return nil, errors.New("config: ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	if cfg.StorageBackend == "s3" && cfg.BucketName == "" {
		return nil, errors.New("config: BUCKET_NAME is required for the s3 storage backend")
	}
	return cfg, nil
}

// SlogLevel maps LOG_LEVEL onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func str(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func seconds(key string, def int) time.Duration {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		n = def
	}
	return time.Duration(n) * time.Second
}
