// Package config provides configuration management for pubglens.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/pubglens/internal/logging"
)

// Platforms accepted by the PUBG API as shard names.
var Platforms = []string{"steam", "kakao", "psn", "xbox", "console", "stadia"}

// Config holds all configuration values for the application.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	PUBG    PUBGConfig    `koanf:"pubg"`
	AI      AIConfig      `koanf:"ai"`
	Redis   RedisConfig   `koanf:"redis"`
	Discord DiscordConfig `koanf:"discord"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	SecretKey       string        `koanf:"secret_key"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	// RequestTimeout bounds handler work and must stay below WriteTimeout.
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	// Per-IP request budget for /api routes; analyze routes get a fifth of it.
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	PageMatchLimit    int           `koanf:"page_match_limit"`
}

// PUBGConfig configures the upstream stats client.
type PUBGConfig struct {
	APIKey            string        `koanf:"api_key"`
	BaseURL           string        `koanf:"base_url"`
	DefaultPlatform   string        `koanf:"default_platform"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerMinute int           `koanf:"requests_per_minute"`
}

// AIConfig configures the analysis providers. Providers join the fallback
// chain in the fixed order Gemini, Ollama, OpenAI when configured.
type AIConfig struct {
	Language        string        `koanf:"language"`
	Temperature     float64       `koanf:"temperature"`
	MaxTokens       int           `koanf:"max_tokens"`
	BreakerFailures int           `koanf:"breaker_failures"`
	BreakerCooldown time.Duration `koanf:"breaker_cooldown"`
	Gemini          GeminiConfig  `koanf:"gemini"`
	Ollama          OllamaConfig  `koanf:"ollama"`
	OpenAI          OpenAIConfig  `koanf:"openai"`
}

type GeminiConfig struct {
	APIKey  string        `koanf:"api_key"`
	BaseURL string        `koanf:"base_url"`
	Model   string        `koanf:"model"`
	Timeout time.Duration `koanf:"timeout"`
}

type OllamaConfig struct {
	Enabled bool          `koanf:"enabled"`
	URL     string        `koanf:"url"`
	Model   string        `koanf:"model"`
	Timeout time.Duration `koanf:"timeout"`
}

type OpenAIConfig struct {
	APIKey  string        `koanf:"api_key"`
	URL     string        `koanf:"url"`
	Model   string        `koanf:"model"`
	Timeout time.Duration `koanf:"timeout"`
}

// RedisConfig configures the optional response cache. An empty URL
// disables caching.
type RedisConfig struct {
	URL       string        `koanf:"url"`
	KeyPrefix string        `koanf:"key_prefix"`
	PlayerTTL time.Duration `koanf:"player_ttl"`
	StatsTTL  time.Duration `koanf:"stats_ttl"`
	MatchTTL  time.Duration `koanf:"match_ttl"`
}

// DiscordConfig configures analysis sharing. An empty webhook URL disables it.
type DiscordConfig struct {
	WebhookURL string `koanf:"webhook_url"`
	Username   string `koanf:"username"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      120 * time.Second,
			RequestTimeout:    100 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 60,
			RateLimitWindow:   time.Minute,
			PageMatchLimit:    5,
		},
		PUBG: PUBGConfig{
			BaseURL:           "https://api.pubg.com",
			DefaultPlatform:   "steam",
			Timeout:           15 * time.Second,
			RequestsPerMinute: 10,
		},
		AI: AIConfig{
			Language:        "English",
			Temperature:     0.7,
			MaxTokens:       1500,
			BreakerFailures: 3,
			BreakerCooldown: 2 * time.Minute,
			Gemini: GeminiConfig{
				BaseURL: "https://generativelanguage.googleapis.com/v1beta",
				Model:   "gemini-1.5-flash",
				Timeout: 30 * time.Second,
			},
			Ollama: OllamaConfig{
				Enabled: true,
				URL:     "http://localhost:11434",
				Model:   "qwen2:0.5b",
				Timeout: 30 * time.Second,
			},
			OpenAI: OpenAIConfig{
				URL:     "https://api.openai.com/v1/chat/completions",
				Model:   "gpt-3.5-turbo",
				Timeout: 30 * time.Second,
			},
		},
		Redis: RedisConfig{
			KeyPrefix: "pubglens:",
			PlayerTTL: 10 * time.Minute,
			StatsTTL:  5 * time.Minute,
			MatchTTL:  24 * time.Hour,
		},
		Discord: DiscordConfig{
			Username: "pubglens",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// envKeys maps environment variable names onto configuration paths.
// Variables not listed here are ignored.
var envKeys = map[string]string{
	"LISTEN_ADDR":                "server.addr",
	"SECRET_KEY":                 "server.secret_key",
	"REQUEST_TIMEOUT":            "server.request_timeout",
	"WRITE_TIMEOUT":              "server.write_timeout",
	"CORS_ORIGINS":               "server.cors_origins",
	"RATE_LIMIT_REQUESTS":        "server.rate_limit_requests",
	"RATE_LIMIT_WINDOW":          "server.rate_limit_window",
	"PAGE_MATCH_LIMIT":           "server.page_match_limit",
	"PUBG_API_KEY":               "pubg.api_key",
	"PUBG_BASE_URL":              "pubg.base_url",
	"PUBG_PLATFORM":              "pubg.default_platform",
	"PUBG_TIMEOUT":               "pubg.timeout",
	"PUBG_RATE_LIMIT_PER_MINUTE": "pubg.requests_per_minute",
	"AI_LANGUAGE":                "ai.language",
	"AI_TEMPERATURE":             "ai.temperature",
	"AI_MAX_TOKENS":              "ai.max_tokens",
	"AI_BREAKER_FAILURES":        "ai.breaker_failures",
	"AI_BREAKER_COOLDOWN":        "ai.breaker_cooldown",
	"GEMINI_API_KEY":             "ai.gemini.api_key",
	"GEMINI_BASE_URL":            "ai.gemini.base_url",
	"GEMINI_MODEL":               "ai.gemini.model",
	"GEMINI_TIMEOUT":             "ai.gemini.timeout",
	"OLLAMA_ENABLED":             "ai.ollama.enabled",
	"OLLAMA_URL":                 "ai.ollama.url",
	"OLLAMA_MODEL":               "ai.ollama.model",
	"OLLAMA_TIMEOUT":             "ai.ollama.timeout",
	"OPENAI_API_KEY":             "ai.openai.api_key",
	"OPENAI_API_URL":             "ai.openai.url",
	"OPENAI_MODEL":               "ai.openai.model",
	"OPENAI_TIMEOUT":             "ai.openai.timeout",
	"REDIS_URL":                  "redis.url",
	"REDIS_KEY_PREFIX":           "redis.key_prefix",
	"DISCORD_WEBHOOK_URL":        "discord.webhook_url",
	"DISCORD_USERNAME":           "discord.username",
	"LOG_LEVEL":                  "logging.level",
	"LOG_FORMAT":                 "logging.format",
	"LOG_CALLER":                 "logging.caller",
}

func envTransform(key string) string {
	return envKeys[key]
}

// listPaths are the slice fields that arrive from the environment as
// comma-separated strings.
var listPaths = []string{"server.cors_origins"}

func splitListFields(k *koanf.Koanf) error {
	for _, path := range listPaths {
		raw, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		var items []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				items = append(items, p)
			}
		}
		if err := k.Set(path, items); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}

// Load builds the configuration from defaults, an optional YAML file named
// by CONFIG_FILE, and environment variables, in that order of precedence.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	if err := splitListFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	cfg.PUBG.DefaultPlatform = strings.ToLower(cfg.PUBG.DefaultPlatform)

	return cfg, nil
}

// Validate checks that all required configuration values are set.
func (c *Config) Validate() error {
	var errs []string

	if c.PUBG.APIKey == "" {
		errs = append(errs, "PUBG_API_KEY is missing")
	}

	if c.Server.SecretKey == "" {
		errs = append(errs, "SECRET_KEY is missing")
	}

	if c.AI.Gemini.APIKey == "" && c.AI.OpenAI.APIKey == "" {
		errs = append(errs, "at least one of GEMINI_API_KEY or OPENAI_API_KEY is required")
	}

	if !ValidPlatform(c.PUBG.DefaultPlatform) {
		errs = append(errs, fmt.Sprintf("PUBG_PLATFORM %q is not one of %s", c.PUBG.DefaultPlatform, strings.Join(Platforms, ", ")))
	}

	if c.Server.WriteTimeout > 0 && (c.Server.RequestTimeout <= 0 || c.Server.RequestTimeout >= c.Server.WriteTimeout) {
		errs = append(errs, fmt.Sprintf("REQUEST_TIMEOUT %v must be positive and shorter than WRITE_TIMEOUT %v", c.Server.RequestTimeout, c.Server.WriteTimeout))
	}

	if c.PUBG.RequestsPerMinute <= 0 {
		errs = append(errs, "PUBG_RATE_LIMIT_PER_MINUTE must be positive")
	}

	if len(errs) > 0 {
		for _, e := range errs {
			logging.Error().Str("problem", e).Msg("config error")
		}
		return errors.New("configuration validation failed: " + strings.Join(errs, "; "))
	}

	return nil
}

// ValidPlatform reports whether p is a known PUBG shard.
func ValidPlatform(p string) bool {
	return slices.Contains(Platforms, p)
}

// ProviderNames lists the providers that join the fallback chain, in chain
// order.
func (c AIConfig) ProviderNames() []string {
	var names []string
	if c.Gemini.APIKey != "" {
		names = append(names, "gemini")
	}
	if c.Ollama.Enabled && c.Ollama.URL != "" {
		names = append(names, "ollama")
	}
	if c.OpenAI.APIKey != "" {
		names = append(names, "openai")
	}
	return names
}
