package matchmaking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/battleship-go2/internal/model"
	"github.com/mcoot/battleship-go2/internal/services/game"
)

// maxRoomAttempts bounds the suffixes tried when a pair rematches while
// their earlier session is still live
const maxRoomAttempts = 64

// Queue is the single-slot quick-match queue.
// At most one player waits; the next distinct arrival is paired with them.
type Queue struct {
	mu      sync.Mutex
	waiting *model.Player

	games  *game.Controller
	logger *slog.Logger
}

// New creates an empty Queue
func New(games *game.Controller, logger *slog.Logger) *Queue {
	return &Queue{
		games:  games,
		logger: logger.With(slog.String("component", "matchmaking")),
	}
}

// RoomID names the session created for a quick match
func RoomID(player1, player2 model.Identity) model.RoomCode {
	return model.RoomCode(fmt.Sprintf("game_%s_%s", player1, player2))
}

// EnqueueOrMatch parks the player in the empty slot, or pairs them with the
// player already waiting. The waiting player becomes player1 and moves first.
// Returns the new session, or nil when the player was parked.
func (q *Queue) EnqueueOrMatch(ctx context.Context, player model.Player) (*model.Session, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.waiting == nil || q.waiting.ID == player.ID {
		q.waiting = &player
		q.logger.Debug("player waiting for match",
			slog.String("identity", string(player.ID)),
			slog.String("name", player.Name))
		return nil, nil
	}

	opponent := *q.waiting
	session, err := q.startSession(ctx, opponent, player)
	if err != nil {
		return nil, err
	}
	q.waiting = nil

	q.logger.Info("quick match paired",
		slog.String("room", string(session.Code)),
		slog.String("player1", opponent.Name),
		slog.String("player2", player.Name))
	return session, nil
}

func (q *Queue) startSession(ctx context.Context, player1, player2 model.Player) (*model.Session, error) {
	base := RoomID(player1.ID, player2.ID)
	code := base
	for attempt := 1; attempt <= maxRoomAttempts; attempt++ {
		session, err := q.games.StartSession(ctx, code, player1, player2)
		if !errors.Is(err, model.ErrRoomCodeTaken) {
			return session, err
		}
		q.logger.Debug("quick match room id taken", slog.String("room", string(code)))
		code = model.RoomCode(fmt.Sprintf("%s_%d", base, attempt+1))
	}
	return nil, fmt.Errorf("no free quick match room after %d attempts: %w", maxRoomAttempts, model.ErrRoomCodeTaken)
}

// Remove clears the slot if the identity holds it
func (q *Queue) Remove(id model.Identity) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.waiting == nil || q.waiting.ID != id {
		return false
	}
	q.waiting = nil
	return true
}

// Waiting returns the identity currently parked in the slot
func (q *Queue) Waiting() (model.Identity, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.waiting == nil {
		return "", false
	}
	return q.waiting.ID, true
}
