package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/voyora/tripweaver/pkg/util"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	LLM     LLMConfig     `yaml:"llm"`
	Advisor AdvisorConfig `yaml:"advisor"`
	Catalog CatalogConfig `yaml:"catalog"`
	Engine  EngineConfig  `yaml:"engine"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// LLMConfig contains ChatGPT/OpenAI settings for the decision oracle.
type LLMConfig struct {
	APIKey      string  `yaml:"apiKey"`
	BaseURL     string  `yaml:"baseUrl"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
}

// AdvisorConfig controls the decision advisor and its cache.
type AdvisorConfig struct {
	Prompt      string        `yaml:"prompt"`
	CallCap     int           `yaml:"callCap"`
	CallTimeout time.Duration `yaml:"callTimeout"`
	CacheTTL    time.Duration `yaml:"cacheTtl"`
	Redis       RedisConfig   `yaml:"redis"`
}

// RedisConfig contains connection information for cache storage.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// CatalogConfig controls candidate-set storage.
type CatalogConfig struct {
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// EngineConfig exposes the scheduling constants operators most often tune.
// Everything else keeps its package default.
type EngineConfig struct {
	DayStartClock        string  `yaml:"dayStartClock"`
	DayEndClock          string  `yaml:"dayEndClock"`
	GapFillMinutes       int     `yaml:"gapFillMinutes"`
	ClosingBufferMinutes int     `yaml:"closingBufferMinutes"`
	AirportBufferMinutes int     `yaml:"airportBufferMinutes"`
	OperatingRadiusKm    float64 `yaml:"operatingRadiusKm"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitCSV(v)
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("ADVISOR_PROMPT"); v != "" {
		cfg.Advisor.Prompt = v
	}
	if v := os.Getenv("ADVISOR_CALL_CAP"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Advisor.CallCap = parsed
		}
	}
	if v := os.Getenv("ADVISOR_CALL_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Advisor.CallTimeout = parsed
		}
	}
	if v := os.Getenv("ADVISOR_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Advisor.CacheTTL = parsed
		}
	}
	if v := os.Getenv("ADVISOR_REDIS_ENABLED"); v != "" {
		cfg.Advisor.Redis.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("ADVISOR_REDIS_ADDR"); v != "" {
		cfg.Advisor.Redis.Addr = v
	}
	if v := os.Getenv("CATALOG_POSTGRES_DSN"); v != "" {
		cfg.Catalog.Postgres.DSN = v
	}
	if v := os.Getenv("CATALOG_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Catalog.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("CATALOG_POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Catalog.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("ENGINE_DAY_START"); v != "" {
		cfg.Engine.DayStartClock = v
	}
	if v := os.Getenv("ENGINE_DAY_END"); v != "" {
		cfg.Engine.DayEndClock = v
	}
	if v := os.Getenv("ENGINE_GAP_FILL_MINUTES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Engine.GapFillMinutes = parsed
		}
	}
	if v := os.Getenv("ENGINE_OPERATING_RADIUS_KM"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Engine.OperatingRadiusKm = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/itineraries/generate",
				},
			},
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
		},
		Advisor: AdvisorConfig{
			Prompt:      "You are a pragmatic travel-planning assistant. You are given one ambiguous scheduling question and a closed set of options. Choose exactly one option.",
			CallCap:     5,
			CallTimeout: 10 * time.Second,
			CacheTTL:    6 * time.Hour,
			Redis: RedisConfig{
				Enabled: false,
				Addr:    "",
			},
		},
		Catalog: CatalogConfig{
			Postgres: PostgresConfig{
				DSN:      "",
				MaxConns: 4,
				MinConns: 0,
			},
		},
		Engine: EngineConfig{
			DayStartClock:        "09:00",
			DayEndClock:          "22:00",
			GapFillMinutes:       45,
			ClosingBufferMinutes: 30,
			AirportBufferMinutes: 120,
			OperatingRadiusKm:    60,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.Advisor.Prompt == "" {
		return errors.New("advisor.prompt cannot be empty")
	}
	if c.Advisor.CallCap < 0 {
		return errors.New("advisor.callCap cannot be negative")
	}
	if c.Advisor.CallTimeout <= 0 {
		return errors.New("advisor.callTimeout must be positive")
	}
	if c.Advisor.CacheTTL < 0 {
		return errors.New("advisor.cacheTtl cannot be negative")
	}
	if c.Advisor.Redis.Enabled && strings.TrimSpace(c.Advisor.Redis.Addr) == "" {
		return errors.New("advisor.redis.addr cannot be empty when redis cache is enabled")
	}
	start, err := util.ParseClock(c.Engine.DayStartClock)
	if err != nil {
		return fmt.Errorf("engine.dayStartClock: %w", err)
	}
	end, err := util.ParseClock(c.Engine.DayEndClock)
	if err != nil {
		return fmt.Errorf("engine.dayEndClock: %w", err)
	}
	if start >= end {
		return errors.New("engine.dayStartClock must be before engine.dayEndClock")
	}
	if c.Engine.GapFillMinutes <= 0 {
		return errors.New("engine.gapFillMinutes must be positive")
	}
	if c.Engine.ClosingBufferMinutes < 0 {
		return errors.New("engine.closingBufferMinutes cannot be negative")
	}
	if c.Engine.AirportBufferMinutes <= 0 {
		return errors.New("engine.airportBufferMinutes must be positive")
	}
	if c.Engine.OperatingRadiusKm <= 0 {
		return errors.New("engine.operatingRadiusKm must be positive")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	return nil
}
