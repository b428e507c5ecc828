package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration. One value is constructed at
// startup and passed explicitly into every component; there is no ambient
// singleton.
type Config struct {
	// Server configuration
	Server struct {
		Port    string
		Env     string
		Timeout time.Duration
		BaseURL string
	}

	// Database configuration
	Database struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
		MaxConns int
		Timeout  time.Duration
	}

	// Redis configuration (summary read cache)
	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	// JWT configuration
	JWT struct {
		Secret string
		Expiry time.Duration
	}

	// Logging configuration
	Logging struct {
		Level  string
		Format string
	}

	// Moral check (pre-submission AI screening)
	MoralCheck struct {
		Enabled bool
		// EnableOrgs restricts the check to the named organizations when
		// non-empty; an empty list means all organizations.
		EnableOrgs []string
		ServiceURL string
		Timeout    time.Duration
	}

	// Captcha gate on public submissions
	Captcha struct {
		Enabled bool
		// ForceForEveryone disables the admin bypass for both the captcha
		// gate and the moral check.
		ForceForEveryone bool
	}

	// Rate limiting for public submission routes
	RateLimit struct {
		Enabled bool
		Limit   float64
		Burst   int
	}

	// Cache settings for aggregate reads
	Cache struct {
		Enabled bool
		TTL     time.Duration
	}
}

// New builds a Config from environment variables, loading .env if present.
func New() *Config {
	godotenv.Load()

	cfg := &Config{}

	cfg.Server.Port = getEnvString("PORT", "8081")
	cfg.Server.Env = getEnvString("APP_ENV", "development")
	cfg.Server.Timeout = getEnvDuration("SERVER_TIMEOUT", 30*time.Second)
	cfg.Server.BaseURL = getEnvString("BASE_URL", "http://localhost:"+cfg.Server.Port)

	cfg.Database.Host = getEnvString("DB_HOST", "localhost")
	cfg.Database.Port = getEnvString("DB_PORT", "5432")
	cfg.Database.User = getEnvString("DB_USER", "postgres")
	cfg.Database.Password = getEnvString("DB_PASSWORD", "postgres")
	cfg.Database.Name = getEnvString("DB_NAME", "dataset-feedback")
	cfg.Database.SSLMode = getEnvString("DB_SSL_MODE", "disable")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 20)
	cfg.Database.Timeout = getEnvDuration("DB_TIMEOUT", 5*time.Second)

	cfg.Redis.Addr = getEnvString("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvString("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.JWT.Secret = getEnvString("JWT_SECRET", "default-jwt-secret-do-not-use-in-production")
	cfg.JWT.Expiry = getEnvDuration("JWT_EXPIRY", 24*time.Hour)

	cfg.Logging.Level = getEnvString("LOG_LEVEL", "info")
	cfg.Logging.Format = getEnvString("LOG_FORMAT", "json")

	cfg.MoralCheck.Enabled = getEnvBool("MORAL_CHECK_ENABLED", false)
	cfg.MoralCheck.EnableOrgs = getEnvStringSlice("MORAL_CHECK_ENABLE_ORGS", nil)
	cfg.MoralCheck.ServiceURL = getEnvString("MORAL_CHECK_SERVICE_URL", "")
	cfg.MoralCheck.Timeout = getEnvDuration("MORAL_CHECK_TIMEOUT", 30*time.Second)

	cfg.Captcha.Enabled = getEnvBool("CAPTCHA_ENABLED", false)
	cfg.Captcha.ForceForEveryone = getEnvBool("CAPTCHA_FORCE_FOR_EVERYONE", false)

	cfg.RateLimit.Enabled = getEnvBool("RATE_LIMIT_ENABLED", true)
	cfg.RateLimit.Limit = float64(getEnvInt("RATE_LIMIT", 5))
	cfg.RateLimit.Burst = getEnvInt("RATE_LIMIT_BURST", 10)

	cfg.Cache.Enabled = getEnvBool("CACHE_ENABLED", true)
	cfg.Cache.TTL = getEnvDuration("CACHE_TTL", 5*time.Minute)

	return cfg
}

// MoralCheckEnabledFor reports whether the moral check applies to the given
// organization name.
func (c *Config) MoralCheckEnabledFor(orgName string) bool {
	if !c.MoralCheck.Enabled {
		return false
	}
	if len(c.MoralCheck.EnableOrgs) == 0 {
		return true
	}
	for _, name := range c.MoralCheck.EnableOrgs {
		if name == orgName {
			return true
		}
	}
	return false
}

// Helper functions to read environment variables with default values

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
