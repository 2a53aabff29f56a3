package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all configuration for the application
type Config struct {
	App    AppConfig
	RDAP   RDAPConfig
	Whois  WhoisConfig
	Retry  RetryConfig
	Lookup LookupConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	ListenAddr string
	LogLevel   string
}

// RDAPConfig holds structured-registry client configuration
type RDAPConfig struct {
	BaseURL string
	Timeout time.Duration
}

// WhoisConfig holds legacy WHOIS client configuration
type WhoisConfig struct {
	Timeout   time.Duration
	RateLimit int
}

// RetryConfig holds backoff tuning for rate-limited lookups
type RetryConfig struct {
	Attempts     int
	InitialDelay time.Duration
	Multiplier   float64
}

// LookupConfig holds classification and batch tuning
type LookupConfig struct {
	DefaultConcurrency int
	ShortBodyThreshold int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment variables")
	}

	config := &Config{}

	config.App = AppConfig{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
	}

	httpTimeout, err := time.ParseDuration(getEnv("HTTP_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	config.RDAP = RDAPConfig{
		BaseURL: getEnv("RDAP_BASE_URL", "https://rdap.org"),
		Timeout: httpTimeout,
	}

	whoisTimeout, err := time.ParseDuration(getEnv("WHOIS_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid WHOIS_TIMEOUT: %w", err)
	}
	whoisRateLimit, err := strconv.Atoi(getEnv("WHOIS_RATE_LIMIT", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid WHOIS_RATE_LIMIT: %w", err)
	}
	config.Whois = WhoisConfig{
		Timeout:   whoisTimeout,
		RateLimit: whoisRateLimit,
	}

	retryAttempts, err := strconv.Atoi(getEnv("RETRY_ATTEMPTS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid RETRY_ATTEMPTS: %w", err)
	}
	retryDelay, err := time.ParseDuration(getEnv("RETRY_INITIAL_DELAY", "1s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RETRY_INITIAL_DELAY: %w", err)
	}
	retryMultiplier, err := strconv.ParseFloat(getEnv("RETRY_MULTIPLIER", "2"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RETRY_MULTIPLIER: %w", err)
	}
	config.Retry = RetryConfig{
		Attempts:     retryAttempts,
		InitialDelay: retryDelay,
		Multiplier:   retryMultiplier,
	}

	defaultConcurrency, err := strconv.Atoi(getEnv("DEFAULT_CONCURRENCY", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_CONCURRENCY: %w", err)
	}
	shortBodyThreshold, err := strconv.Atoi(getEnv("SHORT_BODY_THRESHOLD", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHORT_BODY_THRESHOLD: %w", err)
	}
	config.Lookup = LookupConfig{
		DefaultConcurrency: defaultConcurrency,
		ShortBodyThreshold: shortBodyThreshold,
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errors []string

	if err := c.validateApp(); err != nil {
		errors = append(errors, fmt.Sprintf("application: %v", err))
	}
	if err := c.validateClients(); err != nil {
		errors = append(errors, fmt.Sprintf("clients: %v", err))
	}
	if err := c.validateRetry(); err != nil {
		errors = append(errors, fmt.Sprintf("retry: %v", err))
	}
	if err := c.validateLookup(); err != nil {
		errors = append(errors, fmt.Sprintf("lookup: %v", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

func (c *Config) validateApp() error {
	validLogLevels := []string{"debug", "info", "warn", "error", "fatal"}
	validLogLevel := false
	for _, level := range validLogLevels {
		if c.App.LogLevel == level {
			validLogLevel = true
			break
		}
	}
	if !validLogLevel {
		return fmt.Errorf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", "))
	}

	if c.App.ListenAddr == "" {
		return fmt.Errorf("LISTEN_ADDR is required")
	}

	return nil
}

func (c *Config) validateClients() error {
	if c.RDAP.BaseURL == "" {
		return fmt.Errorf("RDAP_BASE_URL is required")
	}
	if !strings.HasPrefix(c.RDAP.BaseURL, "http://") && !strings.HasPrefix(c.RDAP.BaseURL, "https://") {
		return fmt.Errorf("RDAP_BASE_URL must be an http(s) URL")
	}
	if c.RDAP.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be greater than 0")
	}
	if c.Whois.Timeout <= 0 {
		return fmt.Errorf("WHOIS_TIMEOUT must be greater than 0")
	}
	if c.Whois.RateLimit < 0 || c.Whois.RateLimit > 600 {
		return fmt.Errorf("WHOIS_RATE_LIMIT must be between 0 and 600")
	}

	return nil
}

func (c *Config) validateRetry() error {
	if c.Retry.Attempts < 1 || c.Retry.Attempts > 10 {
		return fmt.Errorf("RETRY_ATTEMPTS must be between 1 and 10")
	}
	if c.Retry.InitialDelay <= 0 {
		return fmt.Errorf("RETRY_INITIAL_DELAY must be greater than 0")
	}
	if c.Retry.Multiplier < 1 {
		return fmt.Errorf("RETRY_MULTIPLIER must be at least 1")
	}

	return nil
}

func (c *Config) validateLookup() error {
	if c.Lookup.DefaultConcurrency < 1 || c.Lookup.DefaultConcurrency > 10 {
		return fmt.Errorf("DEFAULT_CONCURRENCY must be between 1 and 10")
	}
	if c.Lookup.ShortBodyThreshold < 1 {
		return fmt.Errorf("SHORT_BODY_THRESHOLD must be greater than 0")
	}

	return nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
