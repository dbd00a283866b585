// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Cache drivers accepted by LOOKUP_CACHE_DRIVER.
const (
	CacheDriverNone   = "none"
	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"
)

// DefaultProviderURL is the getAddress.io API root.
const DefaultProviderURL = "https://api.getAddress.io"

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// LookupConfig provides the address provider settings. Both keys are
// process-wide and read-only after Load.
type LookupConfig interface {
	GetProviderURL() string
	GetProviderAPIKey() string
	GetProviderAdminKey() string
	GetLookupTimeout() time.Duration
	IsLookupConfigured() bool
}

// RateLimitConfig provides per-IP limits for the lookup endpoint.
type RateLimitConfig interface {
	GetLookupRatePerMinute() float64
	GetLookupRateBurst() int
}

// CacheConfig provides settings for the optional lookup cache.
type CacheConfig interface {
	GetCacheDriver() string
	GetCacheTTL() time.Duration
	GetRedisURL() string
	GetRedisTLSInsecure() bool
}

// FormsConfig provides the location of the form definitions file.
type FormsConfig interface {
	GetFormsFile() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                 string
	HTTPAddr            string
	CORSAllowAll        bool
	CORSOrigins         []string
	CORSAllowCreds      bool
	ProviderURL         string
	ProviderAPIKey      string
	ProviderAdminKey    string
	LookupTimeout       time.Duration
	LookupRatePerMinute float64
	LookupRateBurst     int
	CacheDriver         string
	CacheTTL            time.Duration
	RedisURL            string
	RedisTLSInsecure    bool
	FormsFile           string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// LookupConfig implementation
func (c *Config) GetProviderURL() string          { return c.ProviderURL }
func (c *Config) GetProviderAPIKey() string       { return c.ProviderAPIKey }
func (c *Config) GetProviderAdminKey() string     { return c.ProviderAdminKey }
func (c *Config) GetLookupTimeout() time.Duration { return c.LookupTimeout }
func (c *Config) IsLookupConfigured() bool {
	return c.ProviderAPIKey != "" && c.ProviderAdminKey != ""
}

// RateLimitConfig implementation
func (c *Config) GetLookupRatePerMinute() float64 { return c.LookupRatePerMinute }
func (c *Config) GetLookupRateBurst() int         { return c.LookupRateBurst }

// CacheConfig implementation
func (c *Config) GetCacheDriver() string     { return c.CacheDriver }
func (c *Config) GetCacheTTL() time.Duration { return c.CacheTTL }
func (c *Config) GetRedisURL() string        { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool  { return c.RedisTLSInsecure }

// FormsConfig implementation
func (c *Config) GetFormsFile() string { return c.FormsFile }

// Load reads configuration from environment variables, after loading a
// .env file when one is present. Missing provider keys are not an error:
// lookups then report "not configured".
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                 getEnv("APP_ENV", "development"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		CORSAllowAll:        corsAllowAll,
		CORSOrigins:         corsOrigins,
		CORSAllowCreds:      strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		ProviderURL:         strings.TrimRight(getEnv("GETADDRESS_BASE_URL", DefaultProviderURL), "/"),
		ProviderAPIKey:      strings.TrimSpace(getEnv("GETADDRESS_API_KEY", "")),
		ProviderAdminKey:    strings.TrimSpace(getEnv("GETADDRESS_ADMIN_KEY", "")),
		LookupTimeout:       mustDuration(getEnv("LOOKUP_TIMEOUT", "5s")),
		LookupRatePerMinute: mustFloat(getEnv("LOOKUP_RATE_PER_MINUTE", "30")),
		LookupRateBurst:     mustInt(getEnv("LOOKUP_RATE_BURST", "10")),
		CacheDriver:         strings.ToLower(strings.TrimSpace(getEnv("LOOKUP_CACHE_DRIVER", CacheDriverNone))),
		CacheTTL:            mustDuration(getEnv("LOOKUP_CACHE_TTL", "24h")),
		RedisURL:            getEnv("REDIS_URL", ""),
		RedisTLSInsecure:    strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		FormsFile:           getEnv("FORMS_FILE", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.LookupTimeout <= 0 {
		return fmt.Errorf("LOOKUP_TIMEOUT must be a positive duration")
	}
	if c.ProviderURL == "" {
		return fmt.Errorf("GETADDRESS_BASE_URL cannot be empty")
	}
	switch c.CacheDriver {
	case CacheDriverNone, CacheDriverMemory:
	case CacheDriverRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when LOOKUP_CACHE_DRIVER is redis")
		}
	default:
		return fmt.Errorf("unknown LOOKUP_CACHE_DRIVER %q", c.CacheDriver)
	}
	if c.CacheDriver != CacheDriverNone && c.CacheTTL <= 0 {
		return fmt.Errorf("LOOKUP_CACHE_TTL must be a positive duration")
	}
	if c.LookupRatePerMinute <= 0 || c.LookupRateBurst <= 0 {
		return fmt.Errorf("LOOKUP_RATE_PER_MINUTE and LOOKUP_RATE_BURST must be positive")
	}
	if c.CORSAllowAll && c.CORSAllowCreds {
		return fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
