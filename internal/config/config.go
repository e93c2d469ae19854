// Package config provides Viper-based configuration loading for the battleship server.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. BATTLESHIP_SERVER_PORT
const EnvPrefix = "BATTLESHIP"

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the "host:port" listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// GameConfig holds match rules
type GameConfig struct {
	// ChallengeTTL is how long a challenge waits for its target
	ChallengeTTL time.Duration `mapstructure:"challenge_ttl"`
	// RoomCodeLength is the number of characters in a private room code
	RoomCodeLength int `mapstructure:"room_code_length"`
	// Fleet lists ship sizes; their sum is the number of hits that wins
	Fleet []int `mapstructure:"fleet"`
}

// StorageConfig selects where live sessions are kept
type StorageConfig struct {
	// Type is "memory" or "redis"
	Type       string        `mapstructure:"type"`
	RedisURL   string        `mapstructure:"redis_url"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

// SettlementConfig selects where finished matches are reported
type SettlementConfig struct {
	// Backend is "none" (log only) or "redis"
	Backend  string        `mapstructure:"backend"`
	RedisURL string        `mapstructure:"redis_url"`
	Stream   string        `mapstructure:"stream"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// LoggingConfig holds structured logging settings
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error"
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "text"
	Format string `mapstructure:"format"`
}

// SlogLevel converts the configured level for slog
func (l LoggingConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config is the top-level application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Game       GameConfig       `mapstructure:"game"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Settlement SettlementConfig `mapstructure:"settlement"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// Validate checks all configuration invariants, reporting every violation
func (c Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGame(c.Game); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSettlement(c.Settlement); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var errs []string
	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", s.Port))
	}
	if s.ReadTimeout < 0 {
		errs = append(errs, "server.read_timeout must not be negative")
	}
	if s.WriteTimeout < 0 {
		errs = append(errs, "server.write_timeout must not be negative")
	}
	if s.ShutdownTimeout <= 0 {
		errs = append(errs, "server.shutdown_timeout must be positive")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateGame(g GameConfig) error {
	var errs []string
	if g.ChallengeTTL <= 0 {
		errs = append(errs, "game.challenge_ttl must be positive")
	}
	if g.RoomCodeLength < 4 || g.RoomCodeLength > 16 {
		errs = append(errs, fmt.Sprintf("game.room_code_length must be 4-16, got %d", g.RoomCodeLength))
	}
	if len(g.Fleet) == 0 {
		errs = append(errs, "game.fleet must list at least one ship")
	}
	total := 0
	for _, size := range g.Fleet {
		if size < 1 {
			errs = append(errs, fmt.Sprintf("game.fleet ship sizes must be positive, got %d", size))
		}
		total += size
	}
	if total > 100 {
		errs = append(errs, fmt.Sprintf("game.fleet covers %d cells, more than the board holds", total))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	var errs []string
	switch s.Type {
	case "memory":
	case "redis":
		if s.RedisURL == "" {
			errs = append(errs, "storage.redis_url is required when storage.type is redis")
		}
		if s.SessionTTL <= 0 {
			errs = append(errs, "storage.session_ttl must be positive")
		}
	default:
		errs = append(errs, fmt.Sprintf("storage.type must be one of [memory, redis], got %q", s.Type))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateSettlement(s SettlementConfig) error {
	var errs []string
	switch s.Backend {
	case "none":
	case "redis":
		if s.RedisURL == "" {
			errs = append(errs, "settlement.redis_url is required when settlement.backend is redis")
		}
		if s.Stream == "" {
			errs = append(errs, "settlement.stream must not be empty")
		}
	default:
		errs = append(errs, fmt.Sprintf("settlement.backend must be one of [none, redis], got %q", s.Backend))
	}
	if s.Timeout <= 0 {
		errs = append(errs, "settlement.timeout must be positive")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, text], got %q", l.Format)
	}
	return nil
}

// Load reads defaults, the optional YAML file at path and BATTLESHIP_ environment
// overrides, then validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration used when nothing is overridden
func Default() Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := LoadFromViper(v)
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("game.challenge_ttl", 30*time.Second)
	v.SetDefault("game.room_code_length", 5)
	v.SetDefault("game.fleet", []int{5, 4, 3, 3, 2})
	v.SetDefault("storage.type", "memory")
	v.SetDefault("storage.redis_url", "")
	v.SetDefault("storage.session_ttl", 6*time.Hour)
	v.SetDefault("settlement.backend", "none")
	v.SetDefault("settlement.redis_url", "")
	v.SetDefault("settlement.stream", "battleship:settlements")
	v.SetDefault("settlement.timeout", 5*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
