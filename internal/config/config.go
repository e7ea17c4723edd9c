// Package config loads process configuration from CAMPREG_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"
)

// devSecret signs tokens when running with CAMPREG_DEV and no secret.
const devSecret = "campreg-dev-secret"

const (
	KVMemory = "memory"
	KVRedis  = "redis"

	SourceLocal  = "local"
	SourceRemote = "remote"
)

type Config struct {
	Addr      string `env:"CAMPREG_ADDR" envDefault:":8080"`
	DBPath    string `env:"CAMPREG_DB_PATH" envDefault:"campreg.db"`
	JWTSecret string `env:"CAMPREG_JWT_SECRET"`
	Dev       bool   `env:"CAMPREG_DEV" envDefault:"false"`

	LogLevel  string `env:"CAMPREG_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"CAMPREG_LOG_FORMAT" envDefault:"json"`

	KVBackend     string `env:"CAMPREG_KV_BACKEND" envDefault:"memory"`
	RedisAddr     string `env:"CAMPREG_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"CAMPREG_REDIS_PASSWORD"`
	RedisDB       int    `env:"CAMPREG_REDIS_DB" envDefault:"0"`

	Source        string        `env:"CAMPREG_SOURCE" envDefault:"local"`
	RemoteURL     string        `env:"CAMPREG_REMOTE_URL"`
	RemoteToken   string        `env:"CAMPREG_REMOTE_TOKEN"`
	RemoteTimeout time.Duration `env:"CAMPREG_REMOTE_TIMEOUT" envDefault:"10s"`
	RemoteRetries int           `env:"CAMPREG_REMOTE_RETRIES" envDefault:"0"`

	Locale          string        `env:"CAMPREG_LOCALE" envDefault:"ar"`
	RefreshInterval time.Duration `env:"CAMPREG_REFRESH_INTERVAL" envDefault:"0s"`
	CampCacheTTL    time.Duration `env:"CAMPREG_CAMP_CACHE_TTL" envDefault:"0s"`
	PhoneCC         string        `env:"CAMPREG_PHONE_CC" envDefault:"970"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks cross-field rules and fills the development secret.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		if c.Dev {
			c.JWTSecret = devSecret
		} else {
			errs = append(errs, errors.New("CAMPREG_JWT_SECRET is required outside dev mode"))
		}
	}
	switch c.KVBackend {
	case KVMemory, KVRedis:
	default:
		errs = append(errs, fmt.Errorf("CAMPREG_KV_BACKEND must be memory or redis, got %q", c.KVBackend))
	}
	switch c.Source {
	case SourceLocal:
	case SourceRemote:
		if c.RemoteURL == "" {
			errs = append(errs, errors.New("CAMPREG_REMOTE_URL is required with CAMPREG_SOURCE=remote"))
		}
	default:
		errs = append(errs, fmt.Errorf("CAMPREG_SOURCE must be local or remote, got %q", c.Source))
	}
	if c.RemoteRetries < 0 {
		errs = append(errs, errors.New("CAMPREG_REMOTE_RETRIES must not be negative"))
	}
	if _, err := language.Parse(c.Locale); err != nil {
		errs = append(errs, fmt.Errorf("CAMPREG_LOCALE: %w", err))
	}
	return errors.Join(errs...)
}

// Language returns the configured locale tag (Arabic when unparseable).
func (c Config) Language() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Arabic
	}
	return tag
}
