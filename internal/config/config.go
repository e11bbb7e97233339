// AngelaMos | 2026
// config.go

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/mailsfinder/admin-console/internal/rbac"
)

const (
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
	SourceDemo     = "demo"

	minEncryptionSecretLength = 16
)

type Config struct {
	App       AppConfig       `koanf:"app"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	Bootstrap BootstrapConfig `koanf:"bootstrap"`
	JWT       JWTConfig       `koanf:"jwt"`
	Admins    []AdminConfig   `koanf:"admins"`
	Ledger    LedgerConfig    `koanf:"ledger"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
	Log       LogConfig       `koanf:"log"`
	Otel      OtelConfig      `koanf:"otel"`
	Metrics   MetricsConfig   `koanf:"metrics"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig points at the product database replica. It is only
// required when the bootstrap source is postgres.
type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
}

type RedisConfig struct {
	URL          string        `koanf:"url"`
	Namespace    string        `koanf:"namespace"`
	PoolSize     int           `koanf:"pool_size"`
	MinIdleConns int           `koanf:"min_idle_conns"`
	PingTimeout  time.Duration `koanf:"ping_timeout"`
}

type BootstrapConfig struct {
	Source  string        `koanf:"source"`
	URL     string        `koanf:"url"`
	Token   string        `koanf:"token"`
	Timeout time.Duration `koanf:"timeout"`
	Seed    uint64        `koanf:"seed"`
}

type JWTConfig struct {
	PrivateKeyPath    string        `koanf:"private_key_path"`
	PublicKeyPath     string        `koanf:"public_key_path"`
	AccessTokenExpire time.Duration `koanf:"access_token_expire"`
	Issuer            string        `koanf:"issuer"`
	Audience          string        `koanf:"audience"`
}

// AdminConfig is one console operator. PasswordHash is an argon2id
// encoded hash produced by `api -hash-password`.
type AdminConfig struct {
	ID           string `koanf:"id"`
	Name         string `koanf:"name"`
	Email        string `koanf:"email"`
	Role         string `koanf:"role"`
	PasswordHash string `koanf:"password_hash"`
}

type LedgerConfig struct {
	EncryptionSecret string `koanf:"encryption_secret"`
}

type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Burst    int           `koanf:"burst"`
	Login    int           `koanf:"login"`
	PerAdmin int           `koanf:"per_admin"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKeyReplacer), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	c := &Config{}
	if err := k.Unmarshal("", c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":        "Admin Console",
		"app.version":     "1.0.0",
		"app.environment": "development",

		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",

		"database.max_open_conns":     5,
		"database.max_idle_conns":     2,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",

		"redis.namespace":      "admin-console",
		"redis.pool_size":      10,
		"redis.min_idle_conns": 2,
		"redis.ping_timeout":   "5s",

		"bootstrap.source":  SourceHTTP,
		"bootstrap.url":     "https://server.mailsfinder.com",
		"bootstrap.timeout": "10s",
		"bootstrap.seed":    42,

		"jwt.access_token_expire": "8h",
		"jwt.issuer":              "admin-console",
		"jwt.audience":            "admin-console-api",
		"jwt.private_key_path":    "keys/private.pem",
		"jwt.public_key_path":     "keys/public.pem",

		"rate_limit.requests":  300,
		"rate_limit.window":    "1m",
		"rate_limit.burst":     50,
		"rate_limit.login":     10,
		"rate_limit.per_admin": 120,

		"cors.allowed_origins": []string{"http://localhost:5173"},
		"cors.allowed_methods": []string{
			"GET",
			"POST",
			"PUT",
			"DELETE",
			"OPTIONS",
		},
		"cors.allowed_headers": []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
		},
		"cors.allow_credentials": true,
		"cors.max_age":           300,

		"log.level":  "info",
		"log.format": "json",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "admin-console",

		"metrics.enabled": true,
		"metrics.path":    "/metrics",
	}

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

var envKeyMap = map[string]string{
	"DATABASE_URL":                "database.url",
	"REDIS_URL":                   "redis.url",
	"REDIS_NAMESPACE":             "redis.namespace",
	"ENVIRONMENT":                 "app.environment",
	"HOST":                        "server.host",
	"PORT":                        "server.port",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
	"BOOTSTRAP_SOURCE":            "bootstrap.source",
	"BOOTSTRAP_URL":               "bootstrap.url",
	"API_BASE_URL":                "bootstrap.url",
	"BOOTSTRAP_TOKEN":             "bootstrap.token",
	"BOOTSTRAP_TIMEOUT":           "bootstrap.timeout",
	"LEDGER_ENCRYPTION_SECRET":    "ledger.encryption_secret",
	"JWT_PRIVATE_KEY_PATH":        "jwt.private_key_path",
	"JWT_PUBLIC_KEY_PATH":         "jwt.public_key_path",
	"JWT_ACCESS_TOKEN_EXPIRE":     "jwt.access_token_expire",
	"JWT_ISSUER":                  "jwt.issuer",
	"JWT_AUDIENCE":                "jwt.audience",
	"RATE_LIMIT_REQUESTS":         "rate_limit.requests",
	"RATE_LIMIT_WINDOW":           "rate_limit.window",
	"RATE_LIMIT_BURST":            "rate_limit.burst",
	"RATE_LIMIT_LOGIN":            "rate_limit.login",
	"RATE_LIMIT_PER_ADMIN":        "rate_limit.per_admin",
	"OTEL_ENDPOINT":               "otel.endpoint",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"OTEL_SERVICE_NAME":           "otel.service_name",
	"OTEL_ENABLED":                "otel.enabled",
	"OTEL_INSECURE":               "otel.insecure",
	"OTEL_SAMPLE_RATE":            "otel.sample_rate",
	"METRICS_ENABLED":             "metrics.enabled",
}

func envKeyReplacer(s string) string {
	if mapped, ok := envKeyMap[s]; ok {
		return mapped
	}
	return ""
}

func validate(c *Config) error {
	if c.Redis.URL == "" {
		return errors.New("REDIS_URL is required")
	}

	if len(c.Ledger.EncryptionSecret) < minEncryptionSecretLength {
		return fmt.Errorf(
			"LEDGER_ENCRYPTION_SECRET must be at least %d characters",
			minEncryptionSecretLength,
		)
	}

	switch c.Bootstrap.Source {
	case SourceHTTP:
		if c.Bootstrap.URL == "" {
			return errors.New("BOOTSTRAP_URL is required for the http source")
		}
	case SourcePostgres:
		if c.Database.URL == "" {
			return errors.New("DATABASE_URL is required for the postgres source")
		}
	case SourceDemo:
	default:
		return fmt.Errorf("unknown bootstrap source %q", c.Bootstrap.Source)
	}

	if c.JWT.PrivateKeyPath == "" {
		return errors.New("JWT_PRIVATE_KEY_PATH is required")
	}

	if c.JWT.PublicKeyPath == "" {
		return errors.New("JWT_PUBLIC_KEY_PATH is required")
	}

	seen := make(map[string]bool, len(c.Admins))
	for i, a := range c.Admins {
		if a.ID == "" || a.Email == "" || a.PasswordHash == "" {
			return fmt.Errorf("admins[%d]: id, email and password_hash are required", i)
		}
		if _, err := rbac.ParseRole(a.Role); err != nil {
			return fmt.Errorf("admins[%d]: %w", i, err)
		}
		if seen[a.Email] {
			return fmt.Errorf("admins[%d]: duplicate email %s", i, a.Email)
		}
		seen[a.Email] = true
	}

	if c.CORS.AllowCredentials {
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "*" {
				return errors.New(
					"CORS wildcard '*' cannot be used with AllowCredentials",
				)
			}
		}
	}

	if c.App.Environment == "production" {
		if c.Otel.Enabled && c.Otel.Insecure {
			return errors.New("OTEL_INSECURE must be false in production")
		}
		if len(c.Admins) == 0 {
			return errors.New("at least one admin is required in production")
		}
	}

	if c.Server.ReadTimeout <= 0 {
		return errors.New("server.read_timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return errors.New("server.write_timeout must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
