package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ManuelReschke/HookFox/internal/pkg/env"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"

	DefaultLogsLimit = 50
)

// Config is read once at startup and handed to every component that needs it.
type Config struct {
	AppEnv string `validate:"required"`
	Host   string
	Port   string `validate:"required,numeric"`

	WebhookSecret string `validate:"required"`
	AdminToken    string `validate:"required"`

	DBDriver    string `validate:"oneof=sqlite postgres mysql"`
	DBPath      string `validate:"required_if=DBDriver sqlite"`
	DatabaseURL string `validate:"required_unless=DBDriver sqlite"`

	EnableTestEndpoint bool
	// capped at repository.MaxRecentLimit by the logs handler
	LogsDefaultLimit   int `validate:"min=1"`
	AdminRateLimit     int `validate:"min=0"`

	CacheHost     string
	CachePort     int `validate:"min=0,max=65535"`
	CachePassword string

	// ProxyHeader, when set, is trusted for the client IP (e.g. X-Forwarded-For).
	ProxyHeader  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

var validate = validator.New()

// Load builds the configuration from the environment. env.SetupEnvFile
// should have run before.
func Load() (*Config, error) {
	appEnv := env.GetEnv("APP_ENV", "prod")
	cfg := &Config{
		AppEnv:             appEnv,
		Host:               env.GetEnv("APP_HOST", "0.0.0.0"),
		Port:               env.GetEnv("APP_PORT", env.GetEnv("PORT", "8080")),
		WebhookSecret:      strings.TrimSpace(env.GetEnv("AC_WEBHOOK_SECRET", "")),
		AdminToken:         strings.TrimSpace(env.GetEnv("ADMIN_TOKEN", "")),
		DBDriver:           strings.ToLower(env.GetEnv("DB_DRIVER", DriverSQLite)),
		DBPath:             env.GetEnv("DB_PATH", "data/webhook_data.db"),
		DatabaseURL:        env.GetEnv("DATABASE_URL", ""),
		EnableTestEndpoint: env.GetEnvBool("ENABLE_TEST_ENDPOINT", appEnv == "dev"),
		LogsDefaultLimit:   env.GetEnvInt("LOGS_DEFAULT_LIMIT", DefaultLogsLimit),
		AdminRateLimit:     env.GetEnvInt("ADMIN_RATE_LIMIT", 30),
		CacheHost:          env.GetEnv("CACHE_HOST", ""),
		CachePort:          env.GetEnvInt("CACHE_PORT", 6379),
		CachePassword:      env.GetEnv("CACHE_PASSWORD", ""),
		ProxyHeader:        env.GetEnv("PROXY_HEADER", ""),
		ReadTimeout:        time.Duration(env.GetEnvInt("READ_TIMEOUT", 15)) * time.Second,
		WriteTimeout:       time.Duration(env.GetEnvInt("WRITE_TIMEOUT", 15)) * time.Second,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadStorage reads only the database settings. Used by the CLIs that do
// not serve HTTP.
func LoadStorage() (*Config, error) {
	cfg := &Config{
		AppEnv:      env.GetEnv("APP_ENV", "prod"),
		DBDriver:    strings.ToLower(env.GetEnv("DB_DRIVER", DriverSQLite)),
		DBPath:      env.GetEnv("DB_PATH", "data/webhook_data.db"),
		DatabaseURL: env.GetEnv("DATABASE_URL", ""),
	}
	if err := describe(validate.StructPartial(cfg, "DBDriver", "DBPath", "DatabaseURL")); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid field as one error.
func (c *Config) Validate() error {
	return describe(validate.Struct(c))
}

func describe(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", envName(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// Addr is the listen address for fiber.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func (c *Config) IsDev() bool {
	return c.AppEnv == "dev"
}

func envName(field string) string {
	switch field {
	case "AppEnv":
		return "APP_ENV"
	case "Port":
		return "APP_PORT"
	case "WebhookSecret":
		return "AC_WEBHOOK_SECRET"
	case "AdminToken":
		return "ADMIN_TOKEN"
	case "DBDriver":
		return "DB_DRIVER"
	case "DBPath":
		return "DB_PATH"
	case "DatabaseURL":
		return "DATABASE_URL"
	case "LogsDefaultLimit":
		return "LOGS_DEFAULT_LIMIT"
	case "AdminRateLimit":
		return "ADMIN_RATE_LIMIT"
	case "CachePort":
		return "CACHE_PORT"
	default:
		return field
	}
}
