// Package config manages application configuration
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const devSecretKey = "dev-secret-change-me"

// Storage backends
const (
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port           string
	Environment    string // "development" or "production"
	AllowedOrigins []string

	// Persistence
	Storage     string
	DatabaseURL string

	// Presentation cache
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Security
	SecretKey       string // For JWT signing
	SessionDuration time.Duration

	// Text-generation providers
	LLMTimeout    time.Duration
	LLMMaxRetries int
	LLMMaxTokens  int

	// Rewrite legacy presentation rows after normalizing them
	NormalizeRewrite bool

	// Initial account
	InitAdmin InitAdmin
}

// InitAdmin describes the account created on first start.
type InitAdmin struct {
	Username string
	Password string
	Email    string
	Sudo     bool
}

// Enabled reports whether an explicit admin was configured.
func (a InitAdmin) Enabled() bool {
	return a.Username != "" && a.Password != ""
}

// Load reads configuration from environment variables (and an optional .env file)
// with sensible defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
	}

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("SLIDEOMNI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Unprefixed names kept for existing deployments
	_ = v.BindEnv("secret_key", "SLIDEOMNI_SECRET_KEY", "JWT_SECRET")
	_ = v.BindEnv("init_admin.user", "INIT_ADMIN_USER")
	_ = v.BindEnv("init_admin.pass", "INIT_ADMIN_PASS")
	_ = v.BindEnv("init_admin.email", "INIT_ADMIN_EMAIL")
	_ = v.BindEnv("init_admin.sudo", "INIT_ADMIN_SUDO")

	cfg := &Config{
		Port:             v.GetString("port"),
		Environment:      v.GetString("env"),
		AllowedOrigins:   splitList(v.GetString("allowed_origins")),
		Storage:          strings.ToLower(v.GetString("storage")),
		DatabaseURL:      v.GetString("database_url"),
		RedisAddr:        v.GetString("redis_addr"),
		RedisPassword:    v.GetString("redis_password"),
		RedisDB:          v.GetInt("redis_db"),
		CacheTTL:         v.GetDuration("cache_ttl"),
		SecretKey:        v.GetString("secret_key"),
		SessionDuration:  v.GetDuration("session_duration"),
		LLMTimeout:       v.GetDuration("llm_timeout"),
		LLMMaxRetries:    v.GetInt("llm_max_retries"),
		LLMMaxTokens:     v.GetInt("llm_max_tokens"),
		NormalizeRewrite: v.GetBool("normalize_rewrite"),
		InitAdmin: InitAdmin{
			Username: v.GetString("init_admin.user"),
			Password: v.GetString("init_admin.pass"),
			Email:    v.GetString("init_admin.email"),
			Sudo:     v.GetBool("init_admin.sudo"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("env", "development")
	v.SetDefault("allowed_origins", "http://localhost:*")
	v.SetDefault("storage", StorageSQLite)
	v.SetDefault("database_url", "slideomni.db")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("cache_ttl", "10m")
	v.SetDefault("secret_key", devSecretKey)
	v.SetDefault("session_duration", "1h")
	v.SetDefault("llm_timeout", "60s")
	v.SetDefault("llm_max_retries", 2)
	v.SetDefault("llm_max_tokens", 4096)
	v.SetDefault("normalize_rewrite", true)
}

// Validate checks settings that would otherwise fail at request time
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageSQLite, StorageMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage)
	}
	if c.SessionDuration <= 0 {
		return errors.New("session duration must be positive")
	}
	if c.SecretKey == "" {
		return errors.New("secret key is required")
	}
	if c.IsProduction() && c.SecretKey == devSecretKey {
		return errors.New("secret key must be set in production")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
