// Package config loads process settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/DoyleJ11/fa-bid-backend/internal/command"
	"github.com/DoyleJ11/fa-bid-backend/internal/reminder"
	"github.com/DoyleJ11/fa-bid-backend/internal/store"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	DiscordToken     string
	CommandPrefix    string
	StoreKind        store.Kind
	DataFile         string
	DatabaseURL      string
	ReminderInterval time.Duration
	HTTPAddr         string
	Console          bool
	LogLevel         zapcore.Level
	LogFormat        string
}

// Load reads files (default ".env") if present, then the environment.
// Variables already set in the environment win over file values.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: reading %s: %w", ErrInvalid, f, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, which is os.LookupEnv outside tests.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	get := func(k, d string) string {
		if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return d
	}

	cfg := Config{
		DiscordToken:  get("DISCORD_TOKEN", ""),
		CommandPrefix: get("COMMAND_PREFIX", command.DefaultPrefix),
		StoreKind:     store.Kind(strings.ToLower(get("DRAFT_STORE", string(store.KindFile)))),
		DataFile:      get("DRAFT_DATA_FILE", DefaultDataFile(lookup)),
		DatabaseURL:   get("DATABASE_URL", ""),
		LogFormat:     strings.ToLower(get("LOG_FORMAT", "json")),
	}

	// HTTP_ADDR may be set to empty to turn the API off.
	cfg.HTTPAddr = ":8080"
	if v, ok := lookup("HTTP_ADDR"); ok {
		cfg.HTTPAddr = strings.TrimSpace(v)
	}

	var err error
	if cfg.ReminderInterval, err = time.ParseDuration(get("REMINDER_INTERVAL", reminder.DefaultInterval.String())); err != nil || cfg.ReminderInterval <= 0 {
		return Config{}, fmt.Errorf("%w: REMINDER_INTERVAL must be a positive duration", ErrInvalid)
	}
	if cfg.Console, err = strconv.ParseBool(get("CONSOLE", "false")); err != nil {
		return Config{}, fmt.Errorf("%w: CONSOLE: %w", ErrInvalid, err)
	}
	if cfg.LogLevel, err = zapcore.ParseLevel(get("LOG_LEVEL", "info")); err != nil {
		return Config{}, fmt.Errorf("%w: LOG_LEVEL: %w", ErrInvalid, err)
	}

	switch cfg.StoreKind {
	case store.KindFile:
	case store.KindPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("%w: DATABASE_URL is required when DRAFT_STORE=postgres", ErrInvalid)
		}
	default:
		return Config{}, fmt.Errorf("%w: DRAFT_STORE must be file or postgres, got %q", ErrInvalid, cfg.StoreKind)
	}

	switch cfg.LogFormat {
	case "console", "json":
	default:
		return Config{}, fmt.Errorf("%w: LOG_FORMAT must be console or json, got %q", ErrInvalid, cfg.LogFormat)
	}

	if cfg.DiscordToken == "" && cfg.HTTPAddr == "" && !cfg.Console {
		return Config{}, fmt.Errorf("%w: nothing to serve; set DISCORD_TOKEN, HTTP_ADDR or CONSOLE", ErrInvalid)
	}
	return cfg, nil
}

// DefaultDataFile is the snapshot path the older bot used:
// %APPDATA%/JuntaBot/draft-bot-data.json.
func DefaultDataFile(lookup func(string) (string, bool)) string {
	if appData, ok := lookup("APPDATA"); ok && appData != "" {
		return filepath.Join(appData, "JuntaBot", "draft-bot-data.json")
	}
	home, ok := lookup("HOME")
	if !ok || home == "" {
		home, _ = os.UserHomeDir()
	}
	return filepath.Join(home, "AppData", "Roaming", "JuntaBot", "draft-bot-data.json")
}

func (c Config) StoreOptions() store.Options {
	return store.Options{Kind: c.StoreKind, Path: c.DataFile, DatabaseURL: c.DatabaseURL}
}

// NewLogger builds the process logger.
func (c Config) NewLogger() (*zap.Logger, error) {
	var zc zap.Config
	if c.LogFormat == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(c.LogLevel)
	return zc.Build()
}
