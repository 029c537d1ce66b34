package config

import (
	"errors"
	"fmt"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks cfg against the requirements of its environment and
// reports every problem found, joined into one error.
func ValidateConfig(cfg *Config) error {
	var errs []error
	fail := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	if cfg.ServerPort == "" {
		fail("SERVER_PORT", "is required")
	}

	switch cfg.DBDriver {
	case DriverPostgres:
		if cfg.DBHost == "" {
			fail("DB_HOST", "is required for postgres")
		}
		if cfg.DBName == "" {
			fail("DB_NAME", "is required for postgres")
		}
		if cfg.DBUser == "" {
			fail("db_user", "is required for postgres")
		}
		if cfg.Env == Production && cfg.DBPassword == "" {
			fail("db_password", "secret is required in production")
		}
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			fail("SQLITE_PATH", "is required for sqlite")
		}
		if cfg.Env == Production {
			fail("DB_DRIVER", "sqlite is not supported in production")
		}
	default:
		fail("DB_DRIVER", fmt.Sprintf("unknown driver %q", cfg.DBDriver))
	}

	if cfg.RedisURL == "" {
		fail("redis_url", "is required")
	}

	if cfg.JWTSecret == "" {
		fail("jwt_secret", "is required")
	} else if cfg.Env == Production && cfg.JWTSecret == DefaultJWTSecret {
		fail("jwt_secret", "the default secret cannot be used in production")
	}
	if cfg.AccessTokenTTL <= 0 {
		fail("ACCESS_TOKEN_TTL", "must be positive")
	}
	if cfg.RefreshTokenTTL < cfg.AccessTokenTTL {
		fail("REFRESH_TOKEN_TTL", "must not be shorter than ACCESS_TOKEN_TTL")
	}

	if cfg.RecipeCreateLimit <= 0 {
		fail("RATE_LIMIT_RECIPES", "must be positive")
	}
	if cfg.AuthLimit <= 0 {
		fail("RATE_LIMIT_AUTH", "must be positive")
	}
	if cfg.RateLimitWindow <= 0 {
		fail("RATE_LIMIT_WINDOW", "must be positive")
	}
	if cfg.CacheTTL < 0 {
		fail("CACHE_TTL", "must not be negative")
	}
	if cfg.IngestQueueKey == "" {
		fail("INGEST_QUEUE_KEY", "is required")
	}

	return errors.Join(errs...)
}
