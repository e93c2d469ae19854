package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/battleship-go2/internal/model"
	"github.com/mcoot/battleship-go2/internal/settlement"
)

// Stream entry fields
const (
	fieldRoom       = "room"
	fieldWinnerID   = "winner_id"
	fieldWinner     = "winner"
	fieldLoser      = "loser"
	fieldFinishedAt = "finished_at"
)

// Publisher appends finished matches to a Redis stream
type Publisher struct {
	client *redis.Client
	cfg    Config
	logger *slog.Logger
}

// Ensure Publisher implements Settler
var _ settlement.Settler = (*Publisher)(nil)

// New connects to Redis and verifies the connection
func New(cfg Config, logger *slog.Logger) (*Publisher, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse settlement redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping settlement redis: %w", err)
	}

	return NewWithClient(client, cfg, logger), nil
}

// NewWithClient creates a Publisher with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config, logger *slog.Logger) *Publisher {
	if cfg.Stream == "" {
		cfg.Stream = DefaultStream
	}
	return &Publisher{
		client: client,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "settlement")),
	}
}

// Close closes the Redis connection
func (p *Publisher) Close() error {
	return p.client.Close()
}

// Settle appends one entry for the match to the stream
func (p *Publisher) Settle(ctx context.Context, result model.MatchResult) error {
	args := &redis.XAddArgs{
		Stream: p.cfg.Stream,
		MaxLen: p.cfg.MaxLen,
		Values: map[string]any{
			fieldRoom:       string(result.Room),
			fieldWinnerID:   string(result.WinnerID),
			fieldWinner:     result.Winner,
			fieldLoser:      result.Loser,
			fieldFinishedAt: result.FinishedAt.UTC().Format(time.RFC3339Nano),
		},
	}

	id, err := p.client.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("publish settlement for %s: %w", result.Room, err)
	}

	p.logger.Info("settlement published",
		slog.String("stream", p.cfg.Stream),
		slog.String("entry", id),
		slog.String("room", string(result.Room)),
		slog.String("winner", result.Winner))
	return nil
}
