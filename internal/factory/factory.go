package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/battleship-go2/internal/arena"
	"github.com/mcoot/battleship-go2/internal/config"
	"github.com/mcoot/battleship-go2/internal/dependencies/clock"
	"github.com/mcoot/battleship-go2/internal/dependencies/random"
	"github.com/mcoot/battleship-go2/internal/model"
	"github.com/mcoot/battleship-go2/internal/realtime"
	"github.com/mcoot/battleship-go2/internal/services/challenge"
	"github.com/mcoot/battleship-go2/internal/services/game"
	"github.com/mcoot/battleship-go2/internal/services/lobby"
	"github.com/mcoot/battleship-go2/internal/services/matchmaking"
	"github.com/mcoot/battleship-go2/internal/services/presence"
	"github.com/mcoot/battleship-go2/internal/services/snapshot"
	"github.com/mcoot/battleship-go2/internal/settlement"
	redissettlement "github.com/mcoot/battleship-go2/internal/settlement/redis"
	"github.com/mcoot/battleship-go2/internal/storage"
	"github.com/mcoot/battleship-go2/internal/storage/memory"
	redisstorage "github.com/mcoot/battleship-go2/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Transport
	Hub *realtime.Hub

	// Services
	Presence       *presence.Directory
	Queue          *matchmaking.Queue
	GameController *game.Controller
	Broker         *challenge.Broker
	LobbyController *lobby.Controller
	Broadcaster    *snapshot.Broadcaster
	Coordinator    *arena.Coordinator
	Settler        settlement.Settler

	closers []io.Closer
}

// New creates a new application with all dependencies wired from configuration
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	// Use no-op logger if not provided
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var closers []io.Closer

	// Create storage based on type
	var store storage.Storage
	switch cfg.Storage.Type {
	case "", StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.Storage.RedisURL
		if cfg.Storage.SessionTTL > 0 {
			redisCfg.SessionTTL = cfg.Storage.SessionTTL
		}
		redisStore, err := redisstorage.New(redisCfg)
		if err != nil {
			return nil, fmt.Errorf("connecting session storage: %w", err)
		}
		if err := purgeStale(redisStore, logger); err != nil {
			_ = redisStore.Close()
			return nil, err
		}
		store = redisStore
		closers = append(closers, redisStore)
	default:
		return nil, errors.New("invalid storage type: must be 'memory' or 'redis'")
	}

	// Create settlement sink based on backend
	var settler settlement.Settler
	switch cfg.Settlement.Backend {
	case "", settlement.BackendNone:
		settler = settlement.NewLogSettler(logger)
	case settlement.BackendRedis:
		pubCfg := redissettlement.DefaultConfig()
		pubCfg.URL = cfg.Settlement.RedisURL
		if cfg.Settlement.Stream != "" {
			pubCfg.Stream = cfg.Settlement.Stream
		}
		publisher, err := redissettlement.New(pubCfg, logger)
		if err != nil {
			closeAll(closers)
			return nil, err
		}
		settler = publisher
		closers = append(closers, publisher)
	default:
		closeAll(closers)
		return nil, errors.New("invalid settlement backend: must be 'none' or 'redis'")
	}

	app := newWithDependencies(store, clock.New(), random.New(), settler, options(cfg), logger)
	app.closers = closers
	return app, nil
}

// Options carries the rule settings that vary between deployments and tests
type Options struct {
	ChallengeTTL      time.Duration
	RoomCodeLength    int
	Fleet             model.Fleet
	SettlementTimeout time.Duration
}

func options(cfg config.Config) Options {
	return Options{
		ChallengeTTL:      cfg.Game.ChallengeTTL,
		RoomCodeLength:    cfg.Game.RoomCodeLength,
		Fleet:             model.Fleet(cfg.Game.Fleet),
		SettlementTimeout: cfg.Settlement.Timeout,
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	settler settlement.Settler,
	opts Options,
	logger *slog.Logger,
) *App {
	hub := realtime.NewHub(logger)

	presenceDir := presence.New(logger)
	gameController := game.NewController(store, hub, settler, clk, logger, game.Options{
		Fleet:             opts.Fleet,
		SettlementTimeout: opts.SettlementTimeout,
	})
	queue := matchmaking.New(gameController, logger)

	ttl := opts.ChallengeTTL
	if ttl <= 0 {
		ttl = challenge.DefaultTTL
	}
	broker := challenge.New(presenceDir, hub, clk, ttl, logger)
	lobbyController := lobby.NewController(gameController, broker, hub, rnd, opts.RoomCodeLength, logger)
	broadcaster := snapshot.NewBroadcaster(presenceDir, store, hub, logger)

	coordinator := arena.New(arena.Services{
		Presence:    presenceDir,
		Queue:       queue,
		Lobby:       lobbyController,
		Broker:      broker,
		Games:       gameController,
		Broadcaster: broadcaster,
	}, hub, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		Hub:            hub,
		Presence:       presenceDir,
		Queue:          queue,
		GameController: gameController,
		Broker:         broker,
		LobbyController: lobbyController,
		Broadcaster:    broadcaster,
		Coordinator:    coordinator,
		Settler:        settler,
	}
}

// Close drops every client, waits for in-flight settlements and releases
// backend connections
func (a *App) Close() error {
	a.Hub.Close()
	a.GameController.WaitForSettlements()
	return closeAll(a.closers)
}

// purgeStale drops sessions a previous process left in shared storage
func purgeStale(store *redisstorage.Storage, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	removed, err := store.Purge(ctx)
	if err != nil {
		return fmt.Errorf("purging stale sessions: %w", err)
	}
	if removed > 0 {
		logger.Warn("purged stale sessions from previous run", slog.Int("keys", removed))
	}
	return nil
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
