package config

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	pkgconfig "github.com/Skotchmaster/edu_platform/pkg/config"
)

type Config struct {
	ServiceName string
	ServerAddr  string
	DatabaseURL string

	JWTSecret        string
	JWTRefreshSecret string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration

	RefreshCookieName string
	CookieSecure      bool
	AuthUsersFile     string

	KafkaBrokers   []string
	KafkaAuthTopic string

	LogLevel      string
	PurgeInterval time.Duration
	SeedData      bool
}

// Load reads the environment, after merging a .env file from the working
// directory when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("dotenv_error", "error", err)
	}

	cfg := &Config{
		ServiceName: pkgconfig.EnvDefault("SERVICE_NAME", "edu-auth"),
		ServerAddr:  pkgconfig.EnvDefault("SERVER_ADDR", ":8080"),
		DatabaseURL: pkgconfig.EnvDefault("DATABASE_URL", "sqlite://edu_platform.db"),

		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTRefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
		AccessTokenTTL:   pkgconfig.EnvDurationDefault("ACCESS_TOKEN_TTL", 24*time.Hour),
		RefreshTokenTTL:  pkgconfig.EnvDurationDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		RefreshCookieName: pkgconfig.EnvDefault("REFRESH_COOKIE_NAME", "edu_refresh"),
		CookieSecure:      pkgconfig.EnvBoolDefault("COOKIE_SECURE", false),
		AuthUsersFile:     os.Getenv("AUTH_USERS_FILE"),

		KafkaBrokers:   pkgconfig.CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaAuthTopic: pkgconfig.EnvDefault("KAFKA_AUTH_TOPIC", "auth_events"),

		LogLevel:      pkgconfig.EnvDefault("LOG_LEVEL", "info"),
		PurgeInterval: pkgconfig.EnvDurationDefault("PURGE_INTERVAL", time.Hour),
		SeedData:      pkgconfig.EnvBoolDefault("SEED_DATA", true),
	}
	if cfg.JWTRefreshSecret == "" {
		cfg.JWTRefreshSecret = cfg.JWTSecret
	}
	return cfg, nil
}

// MustValidate stops the process when a required setting is missing.
func (c *Config) MustValidate() {
	pkgconfig.MustNonEmpty(c.JWTSecret, "JWT_SECRET")
	pkgconfig.MustNonEmpty(c.DatabaseURL, "DATABASE_URL")
}
