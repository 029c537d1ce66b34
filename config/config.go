package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "recipekeeper-dev-secret"

// Database drivers understood by database.New.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	Env Environment

	// Server configuration
	ServerPort      string
	ServerHost      string
	APIPrefix       string
	ShutdownTimeout time.Duration
	LogLevel        string
	CORSOrigins     []string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// JWT configuration
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Rate limiting
	RecipeCreateLimit int
	AuthLimit         int
	RateLimitWindow   time.Duration

	// Recipe cache and ingest queue
	CacheTTL       time.Duration
	IngestQueueKey string

	// Object storage for recipe images
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PublicURL string
}

// LoadConfig reads .env files, environment variables and secrets, applies
// defaults and validates the result.
func LoadConfig() (*Config, error) {
	loadDotEnv()

	env := GetEnvironment()
	cfg, err := loadFromEnv(env)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads .env.local then .env. Values already in the environment
// win, and missing files are ignored.
func loadDotEnv() {
	for _, name := range []string{".env.local", ".env"} {
		if _, err := os.Stat(name); err == nil {
			_ = godotenv.Load(name)
		}
	}
}

func loadFromEnv(env Environment) (*Config, error) {
	cfg := &Config{
		Env:        env,
		ServerPort: getEnv("SERVER_PORT", "8080"),
		ServerHost: getEnv("SERVER_HOST", "0.0.0.0"),
		APIPrefix:  getEnv("API_PREFIX", "/api/v1"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getSecret(env, "db_user", "postgres"),
		DBPassword: getSecret(env, "db_password", ""),
		DBName:     getEnv("DB_NAME", "recipekeeper"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "recipekeeper.db"),

		RedisURL:      getSecret(env, "redis_url", "redis://localhost:6379/0"),
		RedisPassword: getSecret(env, "redis_password", ""),

		JWTSecret: getSecret(env, "jwt_secret", DefaultJWTSecret),

		IngestQueueKey: getEnv("INGEST_QUEUE_KEY", "recipes:ingest"),

		S3Bucket:    getEnv("S3_BUCKET_NAME", ""),
		S3Region:    getEnv("AWS_REGION", "us-east-1"),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3PublicURL: strings.TrimRight(getEnv("S3_PUBLIC_URL", ""), "/"),
	}

	cfg.CORSOrigins = splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"))

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.RecipeCreateLimit, err = getInt("RATE_LIMIT_RECIPES", 30); err != nil {
		return nil, err
	}
	if cfg.AuthLimit, err = getInt("RATE_LIMIT_AUTH", 10); err != nil {
		return nil, err
	}
	if cfg.RateLimitWindow, err = getDuration("RATE_LIMIT_WINDOW", time.Minute); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.AccessTokenTTL, err = getDuration("ACCESS_TOKEN_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RefreshTokenTTL, err = getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// PostgresDSN builds a key/value connection string understood by both
// gorm's postgres driver and lib/pq.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// StorageEnabled reports whether image uploads can be served.
func (c *Config) StorageEnabled() bool {
	return c.S3Bucket != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

// getSecret prefers the upper-cased environment variable, then a Docker
// secret file. CI never reads secret files.
func getSecret(env Environment, name, fallback string) string {
	if v := getEnv(strings.ToUpper(name), ""); v != "" {
		return v
	}
	if env != CI {
		if v := readSecret(name); v != "" {
			return v
		}
	}
	return fallback
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func getInt(key string, fallback int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
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
