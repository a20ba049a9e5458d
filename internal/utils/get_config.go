package utils

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	AppPort string `yaml:"APP_PORT"`

	// Database configuration
	DBDriver   string `yaml:"DB_DRIVER"`
	DBUser     string `yaml:"DB_USER"`
	DBName     string `yaml:"DB_NAME"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBPort     string `yaml:"DB_PORT"`
	DBHost     string `yaml:"DB_HOST"`
	DBTimeZone string `yaml:"DB_TIMEZONE"`
	SQLitePath string `yaml:"SQLITE_PATH"`

	// Token issuer configuration
	Auth0Domain  string `yaml:"AUTH0_DOMAIN"`
	APIAudience  string `yaml:"API_AUDIENCE"`
	Algorithms   string `yaml:"ALGORITHMS"`
	JWKSCacheTTL string `yaml:"JWKS_CACHE_TTL"`

	// HTTP middleware configuration
	CORSAllowOrigins    string `yaml:"CORS_ALLOW_ORIGINS"`
	RateLimitMax        string `yaml:"RATE_LIMIT_MAX"`
	RateLimitExpiration string `yaml:"RATE_LIMIT_EXPIRATION"`

	// Redis configuration, optional
	RedisAddr     string `yaml:"REDIS_ADDR"`
	RedisPassword string `yaml:"REDIS_PASSWORD"`

	// Logging configuration
	LogLevel string `yaml:"LOG_LEVEL"`
	LogFile  string `yaml:"LOG_FILE"`
}

func defaultConfig() Config {
	return Config{
		AppPort:             "5000",
		DBDriver:            "postgres",
		DBTimeZone:          "UTC",
		SQLitePath:          "drinks.db",
		APIAudience:         "drinks",
		Algorithms:          "RS256",
		JWKSCacheTTL:        "10m",
		CORSAllowOrigins:    "*",
		RateLimitMax:        "10",
		RateLimitExpiration: "1s",
		LogLevel:            "info",
		LogFile:             "./logs/app.log",
	}
}

// LoadConfig builds the configuration from defaults, the optional YAML file at
// path, an optional .env file and finally the process environment.
func LoadConfig(path string) (Config, error) {
	config := defaultConfig()

	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("reading %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(file, &config); err != nil {
				return Config{}, fmt.Errorf("parsing %s: %w", path, err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	for key, field := range config.fields() {
		if value, ok := os.LookupEnv(key); ok {
			*field = value
		}
	}

	if err := config.validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c *Config) fields() map[string]*string {
	return map[string]*string{
		"APP_PORT":              &c.AppPort,
		"DB_DRIVER":             &c.DBDriver,
		"DB_USER":               &c.DBUser,
		"DB_NAME":               &c.DBName,
		"DB_PASSWORD":           &c.DBPassword,
		"DB_PORT":               &c.DBPort,
		"DB_HOST":               &c.DBHost,
		"DB_TIMEZONE":           &c.DBTimeZone,
		"SQLITE_PATH":           &c.SQLitePath,
		"AUTH0_DOMAIN":          &c.Auth0Domain,
		"API_AUDIENCE":          &c.APIAudience,
		"ALGORITHMS":            &c.Algorithms,
		"JWKS_CACHE_TTL":        &c.JWKSCacheTTL,
		"CORS_ALLOW_ORIGINS":    &c.CORSAllowOrigins,
		"RATE_LIMIT_MAX":        &c.RateLimitMax,
		"RATE_LIMIT_EXPIRATION": &c.RateLimitExpiration,
		"REDIS_ADDR":            &c.RedisAddr,
		"REDIS_PASSWORD":        &c.RedisPassword,
		"LOG_LEVEL":             &c.LogLevel,
		"LOG_FILE":              &c.LogFile,
	}
}

func (c Config) validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if _, err := time.ParseDuration(c.JWKSCacheTTL); err != nil {
		return fmt.Errorf("invalid JWKS_CACHE_TTL: %w", err)
	}
	if _, err := time.ParseDuration(c.RateLimitExpiration); err != nil {
		return fmt.Errorf("invalid RATE_LIMIT_EXPIRATION: %w", err)
	}
	if _, err := strconv.Atoi(c.RateLimitMax); err != nil {
		return fmt.Errorf("invalid RATE_LIMIT_MAX: %w", err)
	}
	return nil
}

// GetConfig returns the raw value for key, or "" for unknown keys.
func (c Config) GetConfig(key string) string {
	if field, ok := c.fields()[key]; ok {
		return *field
	}
	return ""
}

func (c Config) AllowedAlgorithms() []string {
	var algorithms []string
	for _, alg := range strings.Split(c.Algorithms, ",") {
		if alg = strings.TrimSpace(alg); alg != "" {
			algorithms = append(algorithms, alg)
		}
	}
	return algorithms
}

func (c Config) KeySetTTL() time.Duration {
	ttl, _ := time.ParseDuration(c.JWKSCacheTTL)
	return ttl
}

func (c Config) RateLimit() (int, time.Duration) {
	limit, _ := strconv.Atoi(c.RateLimitMax)
	expiration, _ := time.ParseDuration(c.RateLimitExpiration)
	return limit, expiration
}
