// Package config loads launcher settings service configuration from the
// environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/CreativeUnicorns/launcherprefs"
	"github.com/CreativeUnicorns/launcherprefs/cache"
	"github.com/CreativeUnicorns/launcherprefs/encryption"
	"github.com/CreativeUnicorns/launcherprefs/settings"
	"github.com/CreativeUnicorns/launcherprefs/storage"
	"github.com/CreativeUnicorns/launcherprefs/widgets"
)

// Config holds every LAUNCHERPREFS_* setting.
type Config struct {
	ListenAddr string `env:"LAUNCHERPREFS_LISTEN_ADDR" envDefault:":8080"`
	LogLevel   string `env:"LAUNCHERPREFS_LOG_LEVEL"   envDefault:"info"`

	StorageDriver string `env:"LAUNCHERPREFS_STORAGE"     envDefault:"sqlite"`
	StorageDSN    string `env:"LAUNCHERPREFS_STORAGE_DSN" envDefault:"launcher_settings.db"`

	CacheDriver   string        `env:"LAUNCHERPREFS_CACHE"          envDefault:"none"`
	CacheTTL      time.Duration `env:"LAUNCHERPREFS_CACHE_TTL"      envDefault:"24h"`
	RedisAddr     string        `env:"LAUNCHERPREFS_REDIS_ADDR"     envDefault:"localhost:6379"`
	RedisPassword string        `env:"LAUNCHERPREFS_REDIS_PASSWORD"`
	RedisDB       int           `env:"LAUNCHERPREFS_REDIS_DB"       envDefault:"0"`

	ScreenWidth  float64 `env:"LAUNCHERPREFS_SCREEN_WIDTH"  envDefault:"1080"`
	ScreenHeight float64 `env:"LAUNCHERPREFS_SCREEN_HEIGHT" envDefault:"2400"`
	CellSize     float64 `env:"LAUNCHERPREFS_CELL_SIZE"     envDefault:"100"`
	MinGap       float64 `env:"LAUNCHERPREFS_MIN_GAP"       envDefault:"30"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that env cannot express as types.
func (c Config) Validate() error {
	if _, err := launcherprefs.ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.StorageDriver {
	case storage.DriverMemory, storage.DriverSQLite, storage.DriverPostgres:
	default:
		return fmt.Errorf("%w: LAUNCHERPREFS_STORAGE %q", launcherprefs.ErrInvalidInput, c.StorageDriver)
	}
	switch c.CacheDriver {
	case cache.DriverNone, cache.DriverMemory, cache.DriverRedis:
	default:
		return fmt.Errorf("%w: LAUNCHERPREFS_CACHE %q", launcherprefs.ErrInvalidInput, c.CacheDriver)
	}
	if c.MinGap <= 0 || c.MinGap > 180 {
		return fmt.Errorf("%w: LAUNCHERPREFS_MIN_GAP %g not in (0, 180]", launcherprefs.ErrInvalidInput, c.MinGap)
	}
	return c.Metrics().Validate()
}

// Metrics returns the widget screen metrics.
func (c Config) Metrics() widgets.Metrics {
	return widgets.Metrics{ScreenWidth: c.ScreenWidth, ScreenHeight: c.ScreenHeight, CellSize: c.CellSize}
}

// Logger returns the default logger at the configured level.
func (c Config) Logger() launcherprefs.Logger {
	logger := launcherprefs.NewDefaultLogger()
	if level, err := launcherprefs.ParseLogLevel(c.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	return logger
}

// Open builds the storage and cache backends and opens the launcher.
func (c Config) Open(ctx context.Context, logger launcherprefs.Logger) (*settings.Launcher, error) {
	st, err := storage.Open(c.StorageDriver, c.StorageDSN)
	if err != nil {
		return nil, err
	}
	ca, err := cache.Open(c.CacheDriver, cache.RedisOptions{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB})
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	opts := []launcherprefs.Option{
		launcherprefs.WithStorage(st),
		launcherprefs.WithCacheTTL(c.CacheTTL),
		launcherprefs.WithLogger(logger),
	}
	if ca != nil {
		opts = append(opts, launcherprefs.WithCache(ca))
	}
	enc, err := launcherprefs.NewEncryptionAdapter()
	switch {
	case err == nil:
		opts = append(opts, launcherprefs.WithEncryption(enc))
	case errors.Is(err, encryption.ErrKeyNotFound):
		logger.Warn("Sensitive settings stored unencrypted", "reason", err)
	default:
		closeAll(st, ca)
		return nil, err
	}

	// settings.Open closes the registry, and with it both backends, on failure.
	return settings.Open(ctx, settings.Options{Metrics: c.Metrics(), MinGap: c.MinGap}, opts...)
}

func closeAll(st launcherprefs.Storage, ca launcherprefs.Cache) {
	_ = st.Close()
	if ca != nil {
		_ = ca.Close()
	}
}
