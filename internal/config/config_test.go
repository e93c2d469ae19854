package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Game: GameConfig{
			ChallengeTTL:   30 * time.Second,
			RoomCodeLength: 5,
			Fleet:          []int{5, 4, 3, 3, 2},
		},
		Storage: StorageConfig{
			Type:       "memory",
			SessionTTL: 6 * time.Hour,
		},
		Settlement: SettlementConfig{
			Backend: "none",
			Stream:  "battleship:settlements",
			Timeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func TestValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Game.ChallengeTTL)
	assert.Equal(t, 5, cfg.Game.RoomCodeLength)
	assert.Equal(t, []int{5, 4, 3, 3, 2}, cfg.Game.Fleet)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, 6*time.Hour, cfg.Storage.SessionTTL)
	assert.Equal(t, "none", cfg.Settlement.Backend)
	assert.Equal(t, "battleship:settlements", cfg.Settlement.Stream)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestServerAddr(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr())
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", LoggingConfig{Level: "debug"}.SlogLevel().String())
	assert.Equal(t, "INFO", LoggingConfig{Level: "info"}.SlogLevel().String())
	assert.Equal(t, "WARN", LoggingConfig{Level: "warn"}.SlogLevel().String())
	assert.Equal(t, "ERROR", LoggingConfig{Level: "error"}.SlogLevel().String())
}

func TestRedisBackendNeedsURL(t *testing.T) {
	cfg := validConfig()
	cfg.Settlement.Backend = "redis"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "settlement.redis_url")

	cfg.Settlement.RedisURL = "redis://localhost:6379"
	assert.NoError(t, cfg.Validate())
}

func TestUnknownBackend(t *testing.T) {
	cfg := validConfig()
	cfg.Settlement.Backend = "kafka"
	assert.ErrorContains(t, cfg.Validate(), "settlement.backend")
}

func TestRedisStorageNeedsURL(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Type = "redis"
	assert.ErrorContains(t, cfg.Validate(), "storage.redis_url")

	cfg.Storage.RedisURL = "redis://localhost:6379"
	assert.NoError(t, cfg.Validate())

	cfg.Storage.SessionTTL = 0
	assert.ErrorContains(t, cfg.Validate(), "storage.session_ttl")
}

func TestUnknownStorageType(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Type = "postgres"
	assert.ErrorContains(t, cfg.Validate(), "storage.type")
}

func TestFleetValidation(t *testing.T) {
	tests := []struct {
		name  string
		fleet []int
		valid bool
	}{
		{"classic", []int{5, 4, 3, 3, 2}, true},
		{"single ship", []int{1}, true},
		{"empty", nil, false},
		{"zero size", []int{5, 0}, false},
		{"overflows board", []int{50, 51}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Game.Fleet = tt.fleet
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, "game.fleet")
			}
		})
	}
}

func TestValidateReportsEveryViolation(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Logging.Level = "loud"
	cfg.Game.ChallengeTTL = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "game.challenge_ttl")
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "battleship.yaml")
	content := `
server:
  port: 9090
game:
  challenge_ttl: 45s
  fleet: [3, 2]
settlement:
  backend: redis
  redis_url: redis://cache:6379
logging:
  level: debug
  format: text
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 45*time.Second, cfg.Game.ChallengeTTL)
	assert.Equal(t, []int{3, 2}, cfg.Game.Fleet)
	assert.Equal(t, "redis", cfg.Settlement.Backend)
	assert.Equal(t, "redis://cache:6379", cfg.Settlement.RedisURL)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, 5, cfg.Game.RoomCodeLength, "unset keys keep defaults")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading config file")
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("BATTLESHIP_SERVER_PORT", "7070")
	t.Setenv("BATTLESHIP_GAME_CHALLENGE_TTL", "10s")
	t.Setenv("BATTLESHIP_LOGGING_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Game.ChallengeTTL)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadRejectsInvalidEnvironment(t *testing.T) {
	t.Setenv("BATTLESHIP_SETTLEMENT_BACKEND", "carrier-pigeon")

	_, err := Load("")
	assert.ErrorContains(t, err, "configuration validation failed")
}

func TestPropertyValidPortRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		port := rapid.IntRange(1, 65535).Draw(t, "port")
		cfg := validConfig()
		cfg.Server.Port = port
		if err := cfg.Validate(); err != nil {
			t.Fatalf("valid port %d rejected: %v", port, err)
		}
	})
}

func TestPropertyInvalidPortRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		port := rapid.OneOf(
			rapid.IntRange(-1000, 0),
			rapid.IntRange(65536, 100000),
		).Draw(t, "port")
		cfg := validConfig()
		cfg.Server.Port = port
		if cfg.Validate() == nil {
			t.Fatalf("invalid port %d accepted", port)
		}
	})
}

func TestPropertyFleetWithinBoard(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		fleet := rapid.SliceOfN(rapid.IntRange(1, 10), 1, 10).Draw(t, "fleet")
		cfg := validConfig()
		cfg.Game.Fleet = fleet
		if err := cfg.Validate(); err != nil {
			t.Fatalf("fleet %v rejected: %v", fleet, err)
		}
	})
}
