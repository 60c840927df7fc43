package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration, loaded from the environment.
type Config struct {
	Env  string `env:"ENV" envDefault:"development"`
	Port string `env:"PORT" envDefault:"3000"`

	DatabaseDSN string `env:"DATABASE_DSN,required"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// SessionSecret signs cookie-backed sessions. Required even for the
	// redis backend so the backends can be swapped without a config change.
	SessionSecret  string `env:"SESSION_SECRET,required"`
	SessionBackend string `env:"SESSION_BACKEND" envDefault:"redis"`

	MediaEndpoint  string `env:"MEDIA_ENDPOINT"`
	MediaAccessKey string `env:"MEDIA_ACCESS_KEY"`
	MediaSecretKey string `env:"MEDIA_SECRET_KEY"`
	MediaBucket    string `env:"MEDIA_BUCKET" envDefault:"sneakers"`
	MediaUseSSL    bool   `env:"MEDIA_USE_SSL" envDefault:"true"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	if cfg.SessionBackend != "redis" && cfg.SessionBackend != "cookie" {
		return Config{}, fmt.Errorf("config: unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}

	return cfg, nil
}

// Production reports whether the app runs with production hardening
// (Secure cookies, terse error pages).
func (c Config) Production() bool {
	return c.Env == "production"
}
