package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/wire"

	"barcache/internal/cache"
	"barcache/internal/format"
	"barcache/internal/journal"
	"barcache/internal/slogx"
	"barcache/internal/provider"
)

// App holds the dependencies built by Wire.
type App struct {
	Config *Config
	Log    *slog.Logger
	Runner *Runner
}

// ProviderSet is everything InitializeApp needs.
var ProviderSet = wire.NewSet(
	ProvideConfig,
	ProvideLogger,
	ProvideCodec,
	ProvideJournal,
	ProvideLoader,
	ProvideVendor,
	NewRunner,
	wire.Struct(new(App), "*"),
)

// ProvideConfig loads and validates config (for Wire).
func ProvideConfig() (*Config, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// ProvideLogger builds the process logger and installs it as slog's default.
func ProvideLogger(cfg *Config) *slog.Logger {
	log := slogx.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)
	return log
}

// ProvideCodec creates the partition codec from SAVE_FORMAT (for Wire).
func ProvideCodec(cfg *Config) (format.Codec, error) {
	c := format.NewCodec(cfg.SaveFormat)
	if c == nil {
		return nil, fmt.Errorf("unsupported SAVE_FORMAT %q (use: csv, parquet, json)", cfg.SaveFormat)
	}
	return c, nil
}

// ProvideJournal opens the fetch journal under DATA_DIR; the cleanup closes it.
func ProvideJournal(cfg *Config, log *slog.Logger) (*journal.Store, func(), error) {
	j, err := journal.OpenInRoot(cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open fetch journal: %w", err)
	}
	cleanup := func() {
		if err := j.Close(); err != nil {
			log.Warn("close fetch journal", "error", err)
		}
	}
	return j, cleanup, nil
}

// ProvideLoader builds the cache loader rooted at DATA_DIR.
func ProvideLoader(cfg *Config, codec format.Codec, j *journal.Store, log *slog.Logger) (*cache.Loader, error) {
	return cache.NewLoader(cache.Config{
		Root:          cfg.DataDir,
		Codec:         codec,
		Journal:       j,
		NegativeCache: cfg.NegativeCache,
		Logger:        log,
	})
}

// ProvideVendor creates the configured vendor; the cleanup closes it.
func ProvideVendor(cfg *Config, log *slog.Logger) (provider.Vendor, func(), error) {
	v, err := CreateVendor(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := v.Close(); err != nil {
			log.Warn("close vendor", "vendor", v.Name(), "error", err)
		}
	}
	return v, cleanup, nil
}
