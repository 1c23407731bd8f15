// Package config provides configuration loading and validation for the CLI, server and worker.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/llm"
	"github.com/jonathan/resume-screener/internal/ner"
	"github.com/jonathan/resume-screener/internal/server/ratelimit"
	"github.com/jonathan/resume-screener/internal/skills"
	"github.com/jonathan/resume-screener/internal/source"
	"github.com/jonathan/resume-screener/internal/worker"
)

const (
	// AppName names the default config file and the binary
	AppName = "resume-screener"
	// EnvPrefix prefixes environment overrides, e.g. SCREENER_SERVER_PORT
	EnvPrefix = "SCREENER"
)

// Store drivers
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
)

// Config is the full application configuration.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Vocabulary VocabularyConfig `mapstructure:"vocabulary"`
	Skills     SkillsConfig     `mapstructure:"skills"`
	NER        NERConfig        `mapstructure:"ner"`
	Server     ServerConfig     `mapstructure:"server"`
	Store      StoreConfig      `mapstructure:"store"`
	S3         source.S3Config  `mapstructure:"s3"`
	AMQP       AMQPConfig       `mapstructure:"amqp"`
	Worker     WorkerConfig     `mapstructure:"worker"`
}

type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

type VocabularyConfig struct {
	Path string `mapstructure:"path"` // empty selects the embedded default
}

type SkillsConfig struct {
	MatchMode string `mapstructure:"match_mode"`
}

type NERConfig struct {
	Provider string       `mapstructure:"provider"`
	Gemini   GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type ServerConfig struct {
	Port               int    `mapstructure:"port"`
	MaxUploadMB        int    `mapstructure:"max_upload_mb"`
	JWTSecret          string `mapstructure:"jwt_secret"` // empty disables auth
	JWTExpirationHours int    `mapstructure:"jwt_expiration_hours"`
	PasswordHash       string `mapstructure:"password_hash"` // bcrypt; empty disables POST /auth/token
	BcryptCost         int    `mapstructure:"bcrypt_cost"`
	AllowedOrigin      string `mapstructure:"allowed_origin"`

	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	PerMinute       int      `mapstructure:"per_minute"`
	UploadPerMinute int      `mapstructure:"upload_per_minute"`
	Whitelist       []string `mapstructure:"whitelist"`
}

type StoreConfig struct {
	Driver      string `mapstructure:"driver"`
	Path        string `mapstructure:"path"`
	DatabaseURL string `mapstructure:"database_url"`
}

type AMQPConfig struct {
	URL      string `mapstructure:"url"`
	Queue    string `mapstructure:"queue"`
	Exchange string `mapstructure:"exchange"`
}

type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// SetDefaults registers every key with its default value. Keys must be known to
// viper for environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
	v.SetDefault("vocabulary.path", "")
	v.SetDefault("skills.match_mode", string(skills.ModeSubstring))
	v.SetDefault("ner.provider", string(ner.ProviderProse))
	v.SetDefault("ner.gemini.api_key", "")
	v.SetDefault("ner.gemini.model", llm.DefaultModel)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_mb", 16)
	v.SetDefault("server.jwt_secret", "")
	v.SetDefault("server.jwt_expiration_hours", 24)
	v.SetDefault("server.password_hash", "")
	v.SetDefault("server.bcrypt_cost", DefaultBcryptCost)
	v.SetDefault("server.allowed_origin", "*")
	v.SetDefault("server.rate_limit.enabled", true)
	v.SetDefault("server.rate_limit.per_minute", 120)
	v.SetDefault("server.rate_limit.upload_per_minute", 30)
	v.SetDefault("server.rate_limit.whitelist", []string{})
	v.SetDefault("store.driver", StoreFile)
	v.SetDefault("store.path", db.DefaultFilePath)
	v.SetDefault("store.database_url", "")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.queue", worker.DefaultQueue)
	v.SetDefault("amqp.exchange", worker.DefaultExchange)
	v.SetDefault("worker.concurrency", worker.DefaultConcurrency)
}

// NewViper returns a viper instance with defaults and SCREENER_ environment overrides.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadDotEnv loads .env files into the process environment. Missing files are ignored.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		_ = godotenv.Load()
		return
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// ReadFile reads configuration into v. An explicit file must exist; otherwise
// resume-screener.{yaml,json,...} in the working directory is used when present.
func ReadFile(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(AppName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if _, err := skills.ParseMode(c.Skills.MatchMode); err != nil {
		return fmt.Errorf("config error: skills.match_mode: %w", err)
	}

	switch ner.Provider(c.NER.Provider) {
	case ner.ProviderProse, ner.ProviderNone, "":
	case ner.ProviderGemini:
		if c.NER.Gemini.APIKey == "" {
			return fmt.Errorf("config error: 'ner.gemini.api_key' is required when ner.provider is gemini")
		}
	default:
		return fmt.Errorf("config error: unknown ner.provider %q", c.NER.Provider)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: 'server.port' must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.MaxUploadMB < 1 {
		return fmt.Errorf("config error: 'server.max_upload_mb' must be positive")
	}

	if _, err := c.Passwords(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.Server.PasswordHash != "" && c.Server.JWTSecret == "" {
		return fmt.Errorf("config error: 'server.password_hash' requires 'server.jwt_secret'")
	}

	if rl := c.Server.RateLimit; rl.Enabled && (rl.PerMinute < 1 || rl.UploadPerMinute < 1) {
		return fmt.Errorf("config error: 'server.rate_limit' limits must be positive when enabled")
	}

	switch c.Store.Driver {
	case StoreFile, "":
	case StorePostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("config error: 'store.database_url' is required for the postgres driver")
		}
	default:
		return fmt.Errorf("config error: unknown store.driver %q", c.Store.Driver)
	}

	if c.Worker.Concurrency < 0 {
		return fmt.Errorf("config error: 'worker.concurrency' must be non-negative")
	}
	return nil
}

// MatchMode returns the parsed skill match mode
func (c *Config) MatchMode() skills.Mode {
	mode, _ := skills.ParseMode(c.Skills.MatchMode)
	return mode
}

// NERSettings returns the recogniser settings
func (c *Config) NERSettings() ner.Config {
	return ner.Config{
		Provider:     ner.Provider(c.NER.Provider),
		GeminiAPIKey: c.NER.Gemini.APIKey,
		GeminiModel:  c.NER.Gemini.Model,
	}
}

// WorkerSettings returns the queue consumer settings
func (c *Config) WorkerSettings() worker.Config {
	return worker.Config{
		URL:         c.AMQP.URL,
		Queue:       c.AMQP.Queue,
		Exchange:    c.AMQP.Exchange,
		Concurrency: c.Worker.Concurrency,
	}
}

// RateLimitSettings returns the API rate limiter settings
func (c *Config) RateLimitSettings() *ratelimit.Config {
	rl := c.Server.RateLimit
	if !rl.Enabled {
		return nil
	}
	cfg := ratelimit.DefaultConfig(rl.PerMinute, rl.UploadPerMinute)
	for _, client := range rl.Whitelist {
		cfg.Whitelist[client] = true
	}
	return cfg
}

// MaxUploadBytes returns the upload limit in bytes
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}
