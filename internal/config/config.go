package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "POETRY"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`

	// Take the client address from X-Forwarded-For / X-Real-IP. Only
	// enable behind a proxy that overwrites those headers.
	TrustProxyHeaders bool `mapstructure:"trust_proxy_headers"`
}

func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

type LLMConfig struct {
	// openai, azure, ollama, cohere, gemini or static
	Provider       string  `mapstructure:"provider"`
	APIKey         string  `mapstructure:"api_key"`
	APIEndpoint    string  `mapstructure:"endpoint"`
	Model          string  `mapstructure:"model"`
	DeploymentName string  `mapstructure:"deployment"`
	APIVersion     string  `mapstructure:"api_version"`
	Temperature    float64 `mapstructure:"temperature"`
	MaxTokens      int64   `mapstructure:"max_tokens"`

	// Completion returned verbatim by the static provider
	StaticResponse string `mapstructure:"static_response"`
}

type AnalysisConfig struct {
	// Zero means poems of any length are accepted
	MaxPoemLength   int  `mapstructure:"max_poem_length"`
	StripCodeFences bool `mapstructure:"strip_code_fences"`
	StrictSchema    bool `mapstructure:"strict_schema"`
}

type RateLimitConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	Backend           string `mapstructure:"backend"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
	Burst             int    `mapstructure:"burst"`
	RedisURL          string `mapstructure:"redis_url"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var providers = map[string]bool{
	"openai": true,
	"azure":  true,
	"ollama": true,
	"cohere": true,
	"gemini": true,
	"static": true,
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.trust_proxy_headers", false)

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.endpoint", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.deployment", "gpt-4o")
	v.SetDefault("llm.api_version", "2023-05-15")
	v.SetDefault("llm.temperature", 0)
	v.SetDefault("llm.max_tokens", 0)
	v.SetDefault("llm.static_response", "")

	v.SetDefault("analysis.max_poem_length", 0)
	v.SetDefault("analysis.strip_code_fences", false)
	v.SetDefault("analysis.strict_schema", false)

	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.backend", "memory")
	v.SetDefault("ratelimit.requests_per_minute", 20)
	v.SetDefault("ratelimit.burst", 5)
	v.SetDefault("ratelimit.redis_url", "redis://localhost:6379/0")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// LoadConfig reads configuration from the optional YAML file at path and
// from the environment. Environment variables win over the file.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// unprefixed names kept for deployments configured the old way
	_ = v.BindEnv("llm.api_key", envPrefix+"_LLM_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("server.port", envPrefix+"_SERVER_PORT", "SERVER_PORT")
	_ = v.BindEnv("server.host", envPrefix+"_SERVER_HOST", "SERVER_HOST")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Info("configuration loaded successfully", "provider", cfg.LLM.Provider, "file", v.ConfigFileUsed())
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if !providers[c.LLM.Provider] {
		errs = append(errs, fmt.Errorf("unknown llm provider %q", c.LLM.Provider))
	}
	switch c.LLM.Provider {
	case "openai", "azure", "cohere", "gemini":
		if c.LLM.APIKey == "" {
			errs = append(errs, fmt.Errorf("llm.api_key is required for provider %q", c.LLM.Provider))
		}
	}
	if c.LLM.Provider == "azure" && c.LLM.APIEndpoint == "" {
		errs = append(errs, errors.New("llm.endpoint is required for provider \"azure\""))
	}
	if c.Analysis.MaxPoemLength < 0 {
		errs = append(errs, errors.New("analysis.max_poem_length must not be negative"))
	}
	if c.RateLimit.Enabled {
		switch c.RateLimit.Backend {
		case "memory", "redis":
		default:
			errs = append(errs, fmt.Errorf("unknown ratelimit backend %q", c.RateLimit.Backend))
		}
		if c.RateLimit.RequestsPerMinute <= 0 {
			errs = append(errs, errors.New("ratelimit.requests_per_minute must be positive"))
		}
	}

	return errors.Join(errs...)
}
