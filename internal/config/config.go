// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

// Package config loads SchoolHub settings from defaults, a YAML file, the
// environment and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/internal/xdg"
)

// EnvPrefix prefixes every SchoolHub environment variable.
const EnvPrefix = "SCHOOLHUB_"

// Backend names accepted by auth.refresh_store and cache.backend.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config is the resolved configuration.
type Config struct {
	HTTP     HTTP
	Metrics  Metrics
	Log      Log
	Database Database
	Auth     Auth
	Redis    Redis
	Cache    Cache
	Sentry   Sentry
	Uploads  Uploads
}

// HTTP configures the API listener.
type HTTP struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Metrics configures the observability listener. An empty Addr disables it.
type Metrics struct {
	Addr string
}

// Log configures the process logger.
type Log struct {
	Format string
	Level  string
}

// Database configures the PostgreSQL pool.
type Database struct {
	URL            string
	ConnectTimeout time.Duration
}

// Auth configures token issuance and the refresh-session backend.
type Auth struct {
	Secret       string
	Issuer       string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	RefreshStore string
}

// Redis configures the shared Redis client.
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Cache configures the course lookup cache.
type Cache struct {
	Backend   string
	CourseTTL time.Duration
}

// Sentry configures error reporting. An empty DSN disables it.
type Sentry struct {
	DSN         string
	Environment string
}

// Uploads configures accepted submission files.
type Uploads struct {
	AllowedExtensions []string
}

var defaults = map[string]any{
	"http.addr":                  ":8080",
	"http.shutdown_timeout":      "15s",
	"metrics.addr":               "127.0.0.1:9100",
	"log.format":                 "json",
	"log.level":                  "info",
	"database.url":               "",
	"database.connect_timeout":   "30s",
	"auth.secret":                "",
	"auth.issuer":                "schoolhub",
	"auth.access_ttl":            "60m",
	"auth.refresh_ttl":           "168h",
	"auth.refresh_store":         BackendMemory,
	"redis.addr":                 "localhost:6379",
	"redis.password":             "",
	"redis.db":                   0,
	"cache.backend":              BackendMemory,
	"cache.course_ttl":           "300s",
	"sentry.dsn":                 "",
	"sentry.environment":         "development",
	"uploads.allowed_extensions": ".pdf,.doc,.docx,.txt,.zip",
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"addr":         "http.addr",
	"metrics-addr": "metrics.addr",
	"log-format":   "log.format",
	"log-level":    "log.level",
	"database-url": "database.url",
}

// Options tells Load where to look.
type Options struct {
	// File is the YAML file to read. Empty means the XDG default, which may
	// be absent.
	File string
	// EnvFiles are dotenv files loaded into the process environment first.
	// Missing files are ignored.
	EnvFiles []string
	// Flags are command-line overrides; only flags named in the flag table
	// are read.
	Flags *pflag.FlagSet
}

// RegisterFlags adds the overridable flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("addr", ":8080", "HTTP listen address")
	fs.String("metrics-addr", "127.0.0.1:9100", "metrics and health listen address (empty disables)")
	fs.String("log-format", "json", "log format (json or text)")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.String("database-url", "", "PostgreSQL connection URL")
}

// Load resolves the configuration. It does not validate it.
func Load(opts Options) (*Config, error) {
	for _, path := range opts.EnvFiles {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, oops.Code("CONFIG_ENV_FILE").With("path", path).Wrap(err)
		}
	}

	k := koanf.New(".")
	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, oops.Code("CONFIG_DEFAULTS").With("key", key).Wrap(err)
		}
	}

	path, explicit := opts.File, opts.File != ""
	if !explicit {
		path = xdg.ConfigFile()
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, oops.Code("CONFIG_FILE").With("path", path).Wrap(err)
		}
	}

	if err := k.Load(env.Provider("DATABASE_URL", ".", func(s string) string {
		if s == "DATABASE_URL" {
			return "database.url"
		}
		return ""
	}), nil); err != nil {
		return nil, oops.Code("CONFIG_ENV").Wrap(err)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, oops.Code("CONFIG_ENV").Wrap(err)
	}

	if opts.Flags != nil {
		provider := posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS").Wrap(err)
		}
	}

	return &Config{
		HTTP: HTTP{
			Addr:            k.String("http.addr"),
			ShutdownTimeout: k.Duration("http.shutdown_timeout"),
		},
		Metrics: Metrics{Addr: k.String("metrics.addr")},
		Log: Log{
			Format: k.String("log.format"),
			Level:  k.String("log.level"),
		},
		Database: Database{
			URL:            k.String("database.url"),
			ConnectTimeout: k.Duration("database.connect_timeout"),
		},
		Auth: Auth{
			Secret:       k.String("auth.secret"),
			Issuer:       k.String("auth.issuer"),
			AccessTTL:    k.Duration("auth.access_ttl"),
			RefreshTTL:   k.Duration("auth.refresh_ttl"),
			RefreshStore: strings.ToLower(k.String("auth.refresh_store")),
		},
		Redis: Redis{
			Addr:     k.String("redis.addr"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
		},
		Cache: Cache{
			Backend:   strings.ToLower(k.String("cache.backend")),
			CourseTTL: k.Duration("cache.course_ttl"),
		},
		Sentry: Sentry{
			DSN:         k.String("sentry.dsn"),
			Environment: k.String("sentry.environment"),
		},
		Uploads: Uploads{AllowedExtensions: extensions(k.Get("uploads.allowed_extensions"))},
	}, nil
}

// envKey maps SCHOOLHUB_AUTH_ACCESS_TTL to auth.access_ttl: the first
// underscore after the prefix separates the section.
func envKey(name string) string {
	return strings.Replace(strings.ToLower(strings.TrimPrefix(name, EnvPrefix)), "_", ".", 1)
}

// extensions accepts a YAML list or a comma-separated string and normalizes
// each entry to a lower-case, dot-prefixed extension.
func extensions(raw any) []string {
	var values []string
	switch v := raw.(type) {
	case string:
		values = []string{v}
	case []string:
		values = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				values = append(values, s)
			}
		}
	}

	var out []string
	for _, value := range values {
		for _, ext := range strings.Split(value, ",") {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			if !slices.Contains(out, ext) {
				out = append(out, ext)
			}
		}
	}
	return out
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	invalid := func(key, format string, args ...any) error {
		return oops.Code("CONFIG_INVALID").With("key", key).Errorf(format, args...)
	}
	switch {
	case c.Database.URL == "":
		return invalid("database.url", "database URL is required")
	case len(c.Auth.Secret) < auth.MinSecretLength:
		return invalid("auth.secret", "auth secret must be at least %d bytes", auth.MinSecretLength)
	case c.Auth.AccessTTL <= 0:
		return invalid("auth.access_ttl", "access token TTL must be positive")
	case c.Auth.RefreshTTL <= 0:
		return invalid("auth.refresh_ttl", "refresh token TTL must be positive")
	case !slices.Contains([]string{BackendMemory, BackendRedis, BackendPostgres}, c.Auth.RefreshStore):
		return invalid("auth.refresh_store", "unknown refresh store %q", c.Auth.RefreshStore)
	case !slices.Contains([]string{BackendMemory, BackendRedis}, c.Cache.Backend):
		return invalid("cache.backend", "unknown cache backend %q", c.Cache.Backend)
	case c.Cache.CourseTTL <= 0:
		return invalid("cache.course_ttl", "course cache TTL must be positive")
	case c.Log.Format != "json" && c.Log.Format != "text":
		return invalid("log.format", "log format must be json or text")
	case c.HTTP.Addr == "":
		return invalid("http.addr", "HTTP address is required")
	case len(c.Uploads.AllowedExtensions) == 0:
		return invalid("uploads.allowed_extensions", "at least one upload extension is required")
	}
	return nil
}

// UsesRedis reports whether any component needs a Redis client.
func (c *Config) UsesRedis() bool {
	return c.Auth.RefreshStore == BackendRedis || c.Cache.Backend == BackendRedis
}
