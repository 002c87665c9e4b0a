package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	defaultConfigFile   = "agenda.toml"
	defaultHTTPAddr     = ":8080"
	defaultLogLevel     = "info"
	defaultLocalDBPath  = "data/agenda_rural.db"
	defaultGeminiModel  = "gemini-3-flash-preview"
	defaultTimezone     = "America/Sao_Paulo"
	defaultCacheTTL     = 24 * time.Hour
	defaultReload       = 15 * time.Minute
	defaultShutdownWait = 30 * time.Second
)

// Config keeps runtime settings for the agenda.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	DatabaseURL     string
	LocalDBPath     string
	TelegramToken   string
	GeminiAPIKey    string
	GeminiModel     string
	RedisAddr       string
	AdviceCacheTTL  time.Duration
	ReloadInterval  time.Duration
	ReloadAt        string
	Location        *time.Location
	ShutdownTimeout time.Duration
}

// fileConfig mirrors the optional TOML file. Empty values keep the defaults.
type fileConfig struct {
	HTTPAddr               string `toml:"http_addr"`
	LogLevel               string `toml:"log_level"`
	DatabaseURL            string `toml:"database_url"`
	LocalDBPath            string `toml:"local_db_path"`
	TelegramToken          string `toml:"telegram_token"`
	GeminiAPIKey           string `toml:"gemini_api_key"`
	GeminiModel            string `toml:"gemini_model"`
	RedisAddr              string `toml:"redis_addr"`
	AdviceCacheTTLMinutes  int    `toml:"advice_cache_ttl_minutes"`
	ReloadIntervalMinutes  int    `toml:"reload_interval_minutes"`
	ReloadAt               string `toml:"reload_at"`
	Timezone               string `toml:"timezone"`
	ShutdownTimeoutSeconds int    `toml:"shutdown_timeout_seconds"`
}

// Load reads the optional config file and then environment variables, which
// take precedence, with sane defaults.
func Load() (Config, error) {
	path := strings.TrimSpace(os.Getenv("AGENDA_CONFIG"))
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	file, err := loadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			file = fileConfig{}
		} else {
			return Config{}, err
		}
	}

	return fromSources(file, os.Getenv)
}

func loadFile(path string) (fileConfig, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse config %q: %w", path, err)
	}
	return fc, nil
}

func fromSources(file fileConfig, getenv func(string) string) (Config, error) {
	env := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return strings.TrimSpace(fallback)
	}

	cfg := Config{
		HTTPAddr:      env("HTTP_ADDR", file.HTTPAddr),
		LogLevel:      strings.ToLower(env("LOG_LEVEL", file.LogLevel)),
		DatabaseURL:   env("DATABASE_URL", file.DatabaseURL),
		LocalDBPath:   env("LOCAL_DB_PATH", file.LocalDBPath),
		TelegramToken: env("TELEGRAM_TOKEN", file.TelegramToken),
		GeminiAPIKey:  env("GEMINI_API_KEY", env("API_KEY", file.GeminiAPIKey)),
		GeminiModel:   env("GEMINI_MODEL", file.GeminiModel),
		RedisAddr:     env("REDIS_ADDR", file.RedisAddr),
		ReloadAt:      env("RELOAD_AT", file.ReloadAt),
	}

	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = defaultHTTPAddr
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.LocalDBPath == "" {
		cfg.LocalDBPath = defaultLocalDBPath
	}
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = defaultGeminiModel
	}

	var err error
	if cfg.AdviceCacheTTL, err = minutes(getenv("ADVICE_CACHE_TTL_MINUTES"), file.AdviceCacheTTLMinutes, defaultCacheTTL); err != nil {
		return cfg, fmt.Errorf("ADVICE_CACHE_TTL_MINUTES: %w", err)
	}
	if cfg.ReloadInterval, err = minutes(getenv("RELOAD_INTERVAL_MINUTES"), file.ReloadIntervalMinutes, defaultReload); err != nil {
		return cfg, fmt.Errorf("RELOAD_INTERVAL_MINUTES: %w", err)
	}
	if cfg.ShutdownTimeout, err = seconds(getenv("SHUTDOWN_TIMEOUT_SECONDS"), file.ShutdownTimeoutSeconds, defaultShutdownWait); err != nil {
		return cfg, fmt.Errorf("SHUTDOWN_TIMEOUT_SECONDS: %w", err)
	}

	if cfg.ReloadAt != "" {
		if _, err := time.Parse("15:04", cfg.ReloadAt); err != nil {
			return cfg, fmt.Errorf("RELOAD_AT must be HH:MM: %w", err)
		}
	}

	tz := env("TIMEZONE", file.Timezone)
	if tz == "" {
		tz = defaultTimezone
	}
	cfg.Location, err = time.LoadLocation(tz)
	if err != nil {
		return cfg, fmt.Errorf("load timezone %q: %w", tz, err)
	}

	return cfg, nil
}

func minutes(raw string, fromFile int, fallback time.Duration) (time.Duration, error) {
	n, err := positiveInt(raw, fromFile)
	if err != nil || n == 0 {
		return fallback, err
	}
	return time.Duration(n) * time.Minute, nil
}

func seconds(raw string, fromFile int, fallback time.Duration) (time.Duration, error) {
	n, err := positiveInt(raw, fromFile)
	if err != nil || n == 0 {
		return fallback, err
	}
	return time.Duration(n) * time.Second, nil
}

// positiveInt prefers the environment value over the file value. Zero means unset.
func positiveInt(raw string, fromFile int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if fromFile < 0 {
			return 0, fmt.Errorf("must be positive, got %d", fromFile)
		}
		return fromFile, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", raw, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}

// RemoteEnabled reports whether a remote store is configured.
func (c Config) RemoteEnabled() bool { return c.DatabaseURL != "" }

// BotEnabled reports whether the Telegram surface should start.
func (c Config) BotEnabled() bool { return c.TelegramToken != "" }
