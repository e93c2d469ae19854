package settlement

import (
	"context"
	"log/slog"

	"github.com/mcoot/battleship-go2/internal/model"
)

// Backends accepted by settlement.backend
const (
	BackendNone  = "none"
	BackendRedis = "redis"
)

// Settler notifies the off-band payment service of a finished match.
// Callers treat it as fire-and-forget: errors are logged, never retried.
type Settler interface {
	Settle(ctx context.Context, result model.MatchResult) error
}

// LogSettler records results in the log only
type LogSettler struct {
	logger *slog.Logger
}

// Ensure LogSettler implements Settler
var _ Settler = (*LogSettler)(nil)

// NewLogSettler creates a settler for deployments without a payment sink
func NewLogSettler(logger *slog.Logger) *LogSettler {
	return &LogSettler{logger: logger.With(slog.String("component", "settlement"))}
}

func (s *LogSettler) Settle(ctx context.Context, result model.MatchResult) error {
	s.logger.Info("match settled",
		slog.String("room", string(result.Room)),
		slog.String("winner", result.Winner),
		slog.String("loser", result.Loser))
	return nil
}
