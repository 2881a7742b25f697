package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port           string
	MongoURI       string
	MongoDB        string
	UserStore      string
	PostgresDSN    string
	RedisAddr      string
	RedisPassword  string
	FeedCacheTTL   time.Duration
	JWTSecret      string
	TokenTTL       time.Duration
	AllowedOrigins []string
	LogLevel       string
	LogFormat      string
}

const (
	UserStoreMongo    = "mongo"
	UserStorePostgres = "postgres"
)

// Load reads an optional .env file from the working directory and then
// builds the config from the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the config from the process environment only.
func FromEnv() (*Config, error) {
	feedTTL, err := getduration("FEED_CACHE_TTL", 30*time.Second)
	if err != nil {
		return nil, err
	}
	tokenTTL, err := getduration("TOKEN_TTL", 30*24*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:           getenv("PORT", "5000"),
		MongoURI:       getenv("MONGO_URI", ""),
		MongoDB:        getenv("MONGO_DB", "scrollr"),
		UserStore:      strings.ToLower(getenv("USER_STORE", UserStoreMongo)),
		PostgresDSN:    getenv("POSTGRES_DSN", ""),
		RedisAddr:      getenv("REDIS_ADDR", ""),
		RedisPassword:  getenv("REDIS_PASSWORD", ""),
		FeedCacheTTL:   feedTTL,
		JWTSecret:      getenv("JWT_SECRET", ""),
		TokenTTL:       tokenTTL,
		AllowedOrigins: splitList(getenv("ALLOWED_ORIGINS", "http://localhost:5173")),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogFormat:      getenv("LOG_FORMAT", "text"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first missing or inconsistent setting.
func (c *Config) Validate() error {
	switch {
	case c.MongoURI == "":
		return errors.New("config: MONGO_URI is required")
	case c.JWTSecret == "":
		return errors.New("config: JWT_SECRET is required")
	case c.UserStore != UserStoreMongo && c.UserStore != UserStorePostgres:
		return fmt.Errorf("config: USER_STORE must be %q or %q, got %q", UserStoreMongo, UserStorePostgres, c.UserStore)
	case c.UserStore == UserStorePostgres && c.PostgresDSN == "":
		return errors.New("config: POSTGRES_DSN is required when USER_STORE=postgres")
	case c.TokenTTL <= 0:
		return errors.New("config: TOKEN_TTL must be positive")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Client holds the terminal client's settings.
type Client struct {
	APIURL      string
	SessionPath string
	LogLevel    string
}

// LoadClient reads the SCROLLR_* variables, honoring a .env file like
// Load does.
func LoadClient() (*Client, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	path := getenv("SCROLLR_SESSION", "")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("config: locate home directory: %w", err)
		}
		path = filepath.Join(home, ".scrollr", "session.db")
	}
	return &Client{
		APIURL:      getenv("SCROLLR_API", "http://localhost:5000"),
		SessionPath: path,
		LogLevel:    getenv("SCROLLR_LOG_LEVEL", "warn"),
	}, nil
}
