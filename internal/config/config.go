package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// FileName is the config file nestegg looks for, without extension.
const FileName = "nestegg"

// Session store backends.
const (
	SessionStoreCookie = "cookie"
	SessionStoreRedis  = "redis"
)

// Config holds application configuration
type Config struct {
	DatabaseURL    string `toml:"database_url" validate:"required"`
	SecretKey      string `toml:"secret_key" validate:"required,min=16"`
	Port           string `toml:"port" validate:"required,numeric"`
	SecureCookies  bool   `toml:"secure_cookies"`
	SessionStore   string `toml:"session_store" validate:"oneof=cookie redis"`
	RedisAddr      string `toml:"redis_addr,omitempty" validate:"omitempty,hostname_port"`
	SessionTTL     string `toml:"session_ttl" validate:"duration"`
	MetricsEnabled bool   `toml:"metrics_enabled"`
}

// Overrides are values supplied by command flags; empty fields are ignored.
type Overrides struct {
	DatabaseURL  string
	Port         string
	SessionStore string
	RedisAddr    string
}

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("toml"), ",")
		return name
	})

	_ = validate.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		d, err := time.ParseDuration(fl.Field().String())
		return err == nil && d > 0
	})

	// redis_addr is mandatory once the redis backend is selected
	validate.RegisterStructValidation(func(sl validator.StructLevel) {
		cfg := sl.Current().Interface().(Config)
		if cfg.SessionStore == SessionStoreRedis && cfg.RedisAddr == "" {
			sl.ReportError(cfg.RedisAddr, "redis_addr", "RedisAddr", "required_for_redis", "")
		}
	}, Config{})
}

// Default returns the configuration used when no source sets a value.
func Default() Config {
	return Config{
		Port:           "3000",
		SecureCookies:  true, // Default to secure (safe for production/HTTPS proxies)
		SessionStore:   SessionStoreCookie,
		SessionTTL:     "720h",
		MetricsEnabled: true,
	}
}

// Load loads configuration from multiple sources with priority:
// 1. Command flags
// 2. Config file (./nestegg.toml or $XDG_CONFIG_HOME/nestegg/nestegg.toml)
// 3. Environment variables
func Load() (*Config, error) {
	return LoadWithOverrides(Overrides{})
}

// LoadWithOverrides loads config and applies flag overrides
func LoadWithOverrides(o Overrides) (*Config, error) {
	v := newBaseViper()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	return buildConfig(v, o), nil
}

// Dir returns the XDG config directory for nestegg.
func Dir() string {
	// Manual implementation to support testing (xdg library caches at init)
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configHome = filepath.Join(home, ".config")
		}
	}
	if configHome == "" {
		return ""
	}
	return filepath.Join(configHome, "nestegg")
}

func newBaseViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName(FileName)
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	if dir := Dir(); dir != "" {
		v.AddConfigPath(dir)
	}
	return v
}

// setting binds one config key to its environment fallback.
type setting struct {
	key   string
	env   string
	apply func(cfg *Config, raw string)
}

var settings = []setting{
	{"database_url", "DATABASE_URL", func(c *Config, s string) { c.DatabaseURL = s }},
	{"secret_key", "SECRET_KEY", func(c *Config, s string) { c.SecretKey = s }},
	{"port", "PORT", func(c *Config, s string) { c.Port = s }},
	{"secure_cookies", "SECURE_COOKIES", func(c *Config, s string) { c.SecureCookies = parseBool(s) }},
	{"session_store", "SESSION_STORE", func(c *Config, s string) { c.SessionStore = strings.ToLower(s) }},
	{"redis_addr", "REDIS_ADDR", func(c *Config, s string) { c.RedisAddr = s }},
	{"session_ttl", "SESSION_TTL", func(c *Config, s string) { c.SessionTTL = s }},
	{"metrics_enabled", "METRICS_ENABLED", func(c *Config, s string) { c.MetricsEnabled = parseBool(s) }},
}

func buildConfig(v *viper.Viper, o Overrides) *Config {
	cfg := Default()

	for _, s := range settings {
		switch {
		case v.IsSet(s.key):
			// Config file wins over the environment
			s.apply(&cfg, v.GetString(s.key))
		case os.Getenv(s.env) != "":
			s.apply(&cfg, os.Getenv(s.env))
		}
	}

	// Apply overrides (flags) last
	if o.DatabaseURL != "" {
		cfg.DatabaseURL = o.DatabaseURL
	}
	if o.Port != "" {
		cfg.Port = o.Port
	}
	if o.SessionStore != "" {
		cfg.SessionStore = strings.ToLower(o.SessionStore)
	}
	if o.RedisAddr != "" {
		cfg.RedisAddr = o.RedisAddr
	}

	return &cfg
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Validate checks the configuration is usable by the server.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationError(validationErrors[0])
		}
		return err
	}
	return nil
}

func formatValidationError(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", fe.Field())
	case "min":
		return fmt.Errorf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Errorf("%s must be one of: %s", fe.Field(), fe.Param())
	case "duration":
		return fmt.Errorf("%s must be a positive duration such as 720h", fe.Field())
	case "required_for_redis":
		return errors.New("redis_addr is required when session_store is redis")
	default:
		return fmt.Errorf("%s is invalid", fe.Field())
	}
}

// TTL returns the parsed session lifetime.
func (c Config) TTL() time.Duration {
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(Default().SessionTTL)
	}
	return d
}

// Masked returns a copy safe to print: the secret key and database password
// are hidden.
func (c Config) Masked() Config {
	if c.SecretKey != "" {
		c.SecretKey = mask(c.SecretKey)
	}
	if u, err := url.Parse(c.DatabaseURL); err == nil && u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "xxxxx")
			c.DatabaseURL = u.String()
		}
	}
	return c
}

func mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}

// Encode writes the configuration as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// WriteFile writes cfg to path as TOML, refusing to replace an existing file
// unless force is set.
func WriteFile(path string, cfg Config, force bool) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config dir: %w", err)
		}
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return cfg.Encode(f)
}
