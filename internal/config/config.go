package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/healthylinkx/chatbot/internal/directory"
	"github.com/healthylinkx/chatbot/internal/llm"
	"github.com/healthylinkx/chatbot/pkg/icron"
	"github.com/healthylinkx/chatbot/pkg/log"
)

// Config holds all application configuration
// Supports environment variables (and an optional .env file) with sensible defaults
//
// Environment Variables:
// Model Configuration: see llm.Config
//
// Agent Configuration:
// - AGENT_MAX_TOOL_ROUNDS: tool round-trips per invocation (default: 10)
// - AGENT_MAX_ATTEMPTS: model call attempts on throttling (default: 5)
// - AGENT_BASE_DELAY_MS: backoff base delay in milliseconds (default: 100)
// - TOOL_RESULT_LIMIT: max doctors returned per search (default: 10)
//
// Directory Configuration:
// - DIRECTORY_DRIVER: sqlite or mysql (default: sqlite)
// - DIRECTORY_DSN: database DSN or sqlite file (default: /app/data/healthylinkx.db)
// - DIRECTORY_MIGRATE: apply embedded schema and seed (default: true)
//
// Cache Configuration:
// - REDIS_ADDR: redis host:port, empty disables caching (default: empty)
// - REDIS_PASSWORD, REDIS_DB
// - CACHE_TTL: cached result lifetime (default: 10m)
//
// System Configuration:
// - ENV_FILE: optional dotenv file (default: .env)
// - HTTP_ADDR: listen address (default: :8080)
// - HEALTH_CRON: directory probe schedule (default: @every 1m)
// - LOG_LEVEL: debug, info, warn or error (default: info)
type Config struct {
	// Model Configuration
	Model llm.Config `json:"model"`

	// Agent Configuration
	Agent AgentConfig `json:"agent"`

	// Directory Configuration
	Directory DirectoryConfig `json:"directory"`

	// Cache Configuration
	Cache CacheConfig `json:"cache"`

	HTTP   HTTPConfig   `json:"http"`
	Health HealthConfig `json:"health"`
	Log    LogConfig    `json:"log"`
}

// AgentConfig holds the orchestration loop limits
type AgentConfig struct {
	MaxToolRounds   int `json:"max_tool_rounds"`
	MaxAttempts     int `json:"max_attempts"`
	BaseDelayMillis int `json:"base_delay_ms"`
	ResultLimit     int `json:"result_limit"`
}

func (c AgentConfig) BaseDelay() time.Duration {
	return time.Duration(c.BaseDelayMillis) * time.Millisecond
}

// DirectoryConfig selects the doctors database
type DirectoryConfig struct {
	Driver  string `json:"driver"`
	DSN     string `json:"-"`
	Migrate bool   `json:"migrate"`
}

// CacheConfig holds the optional redis cache settings
type CacheConfig struct {
	Addr     string        `json:"addr"`
	Password string        `json:"-"`
	DB       int           `json:"db"`
	TTL      time.Duration `json:"ttl"`
}

func (c CacheConfig) Enabled() bool {
	return c.Addr != ""
}

type HTTPConfig struct {
	Addr string `json:"addr"`
	// ChatTimeout bounds one /chat request including every tool round.
	ChatTimeout time.Duration `json:"chat_timeout"`
}

type HealthConfig struct {
	CronExpr string `json:"cron_expr"`
}

type LogConfig struct {
	Level string `json:"level"`
}

// Option is a function type for configuring Config
type Option func(*Config)

// NewFromEnv creates a new Config instance with values from environment variables and options
func NewFromEnv(opts ...Option) (*Config, error) {
	// Variables already set in the environment win over the file.
	envFile := getEnvString("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("Failed to load env file %s: %v", envFile, err)
	}

	config := &Config{
		Model: llm.Config{
			ModelID:          getEnvString("MODEL_ID", "anthropic.claude-3-haiku-20240307-v1:0"),
			Region:           getEnvString("AWS_REGION", "us-east-1"),
			AnthropicVersion: getEnvString("ANTHROPIC_VERSION", llm.DefaultAnthropicVersion),
			MaxTokens:        int64(getEnvInt("MODEL_MAX_TOKENS", 300)),
			Temperature:      getEnvFloat("MODEL_TEMPERATURE", 1.0),
			Timeout:          getEnvInt("MODEL_TIMEOUT", 60),
		},
		Agent: AgentConfig{
			MaxToolRounds:   getEnvInt("AGENT_MAX_TOOL_ROUNDS", 10),
			MaxAttempts:     getEnvInt("AGENT_MAX_ATTEMPTS", 5),
			BaseDelayMillis: getEnvInt("AGENT_BASE_DELAY_MS", 100),
			ResultLimit:     getEnvInt("TOOL_RESULT_LIMIT", 10),
		},
		Directory: DirectoryConfig{
			Driver:  strings.ToLower(getEnvString("DIRECTORY_DRIVER", directory.DriverSQLite)),
			DSN:     getEnvString("DIRECTORY_DSN", "/app/data/healthylinkx.db"),
			Migrate: getEnvBool("DIRECTORY_MIGRATE", true),
		},
		Cache: CacheConfig{
			Addr:     getEnvString("REDIS_ADDR", ""),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("CACHE_TTL", 10*time.Minute),
		},
		HTTP: HTTPConfig{
			Addr:        getEnvString("HTTP_ADDR", ":8080"),
			ChatTimeout: getEnvDuration("CHAT_TIMEOUT", 2*time.Minute),
		},
		Health: HealthConfig{
			CronExpr: getEnvString("HEALTH_CRON", "@every 1m"),
		},
		Log: LogConfig{
			Level: getEnvString("LOG_LEVEL", "info"),
		},
	}

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	// Validate required configuration
	if err := config.validate(); err != nil {
		return nil, err
	}

	log.Info("Config: model=%s region=%s directory=%s cache=%t http=%s",
		config.Model.ModelID, config.Model.Region, config.Directory.Driver, config.Cache.Enabled(), config.HTTP.Addr)
	return config, nil
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if err := c.Model.Validate(); err != nil {
		return fmt.Errorf("model config: %w", err)
	}
	if c.Agent.MaxToolRounds < 1 {
		return fmt.Errorf("AGENT_MAX_TOOL_ROUNDS must be greater than 0")
	}
	if c.Agent.MaxAttempts < 1 {
		return fmt.Errorf("AGENT_MAX_ATTEMPTS must be greater than 0")
	}
	if c.Agent.BaseDelayMillis < 0 {
		return fmt.Errorf("AGENT_BASE_DELAY_MS must not be negative")
	}
	if c.Agent.ResultLimit < 1 {
		return fmt.Errorf("TOOL_RESULT_LIMIT must be greater than 0")
	}
	switch c.Directory.Driver {
	case directory.DriverSQLite, directory.DriverMySQL:
	default:
		return fmt.Errorf("unsupported DIRECTORY_DRIVER %q", c.Directory.Driver)
	}
	if strings.TrimSpace(c.Directory.DSN) == "" {
		return fmt.Errorf("DIRECTORY_DSN is required")
	}
	if c.Cache.Enabled() && c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	if c.HTTP.ChatTimeout <= 0 {
		return fmt.Errorf("CHAT_TIMEOUT must be positive")
	}
	if _, err := icron.Parse(c.Health.CronExpr); err != nil {
		return fmt.Errorf("HEALTH_CRON: %w", err)
	}
	return nil
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat gets a float value from environment variables with default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean value from environment variables with default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("10m") or plain seconds ("600")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
