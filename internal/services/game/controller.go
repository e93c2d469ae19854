package game

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/battleship-go2/internal/dependencies/clock"
	"github.com/mcoot/battleship-go2/internal/model"
	"github.com/mcoot/battleship-go2/internal/realtime"
	"github.com/mcoot/battleship-go2/internal/settlement"
	"github.com/mcoot/battleship-go2/internal/storage"
)

// DefaultSettlementTimeout bounds a single settlement call
const DefaultSettlementTimeout = 5 * time.Second

// Options tunes the turn engine
type Options struct {
	Fleet             model.Fleet
	SettlementTimeout time.Duration
}

// DefaultOptions returns the classic fleet and the default settlement timeout
func DefaultOptions() Options {
	return Options{
		Fleet:             model.DefaultFleet(),
		SettlementTimeout: DefaultSettlementTimeout,
	}
}

// Controller owns session state: seating, turn order, hit counting and teardown.
// Every read-modify-write of a session happens under mu, so concurrent joins
// and fires against the same room are serialized.
type Controller struct {
	mu sync.Mutex

	storage  storage.Storage
	sender   realtime.Sender
	settler  settlement.Settler
	clock    clock.Clock
	logger   *slog.Logger
	options  Options
	settling sync.WaitGroup
}

// NewController creates a new GameController
func NewController(
	storage storage.Storage,
	sender realtime.Sender,
	settler settlement.Settler,
	clock clock.Clock,
	logger *slog.Logger,
	options Options,
) *Controller {
	if len(options.Fleet) == 0 {
		options.Fleet = model.DefaultFleet()
	}
	if options.SettlementTimeout <= 0 {
		options.SettlementTimeout = DefaultSettlementTimeout
	}
	return &Controller{
		storage: storage,
		sender:  sender,
		settler: settler,
		clock:   clock,
		logger:  logger.With(slog.String("component", "game")),
		options: options,
	}
}

// HitsToWin is the number of hits that ends a match
func (c *Controller) HitsToWin() int {
	return c.options.Fleet.CellTotal()
}

// OpenSession creates a waiting session hosted by the given player.
// Returns ErrRoomCodeTaken if the code is already live.
func (c *Controller) OpenSession(ctx context.Context, code model.RoomCode, host model.Player) (*model.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	exists, err := c.storage.SessionExists(ctx, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, model.ErrRoomCodeTaken
	}

	now := c.clock.Now()
	session := &model.Session{
		Code:        code,
		Player1:     host,
		CurrentTurn: host.ID,
		Hits:        map[model.Identity]int{host.ID: 0},
		Status:      model.SessionWaiting,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := c.storage.SaveSession(ctx, session); err != nil {
		c.logger.Error("failed to save session",
			slog.String("room", string(code)),
			slog.String("error", err.Error()))
		return nil, err
	}

	c.logger.Info("session opened",
		slog.String("room", string(code)),
		slog.String("host", host.Name))
	return session, nil
}

// StartSession creates an already active session between two players.
// player1 moves first. Both players are sent match_found.
func (c *Controller) StartSession(ctx context.Context, code model.RoomCode, player1, player2 model.Player) (*model.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	exists, err := c.storage.SessionExists(ctx, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, model.ErrRoomCodeTaken
	}

	now := c.clock.Now()
	session := &model.Session{
		Code:        code,
		Player1:     player1,
		Player2:     &player2,
		CurrentTurn: player1.ID,
		Hits:        map[model.Identity]int{player1.ID: 0, player2.ID: 0},
		Status:      model.SessionActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	c.logger.Info("session started",
		slog.String("room", string(code)),
		slog.String("player1", player1.Name),
		slog.String("player2", player2.Name))
	c.announceMatch(session)
	return session, nil
}

// JoinSession seats the guest in a waiting session and activates it.
// The check and the seat are atomic: of two concurrent joins exactly one
// succeeds and the other sees ErrRoomFull.
func (c *Controller) JoinSession(ctx context.Context, code model.RoomCode, guest model.Player) (*model.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, err := c.storage.GetSession(ctx, code)
	if errors.Is(err, model.ErrSessionNotFound) {
		return nil, model.ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}

	if session.Status != model.SessionWaiting || session.Player2 != nil || session.Player1.ID == guest.ID {
		return nil, model.ErrRoomFull
	}

	session.Player2 = &guest
	session.Hits[guest.ID] = 0
	session.Status = model.SessionActive
	session.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	c.logger.Info("session joined",
		slog.String("room", string(code)),
		slog.String("host", session.Player1.Name),
		slog.String("guest", guest.Name))
	c.announceMatch(session)
	return session, nil
}

// RoomOpen returns true if the room exists and is waiting for a guest
func (c *Controller) RoomOpen(ctx context.Context, code model.RoomCode) (bool, error) {
	session, err := c.storage.GetSession(ctx, code)
	if errors.Is(err, model.ErrSessionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return session.Status == model.SessionWaiting, nil
}

// GetSession retrieves a session by room code
func (c *Controller) GetSession(ctx context.Context, code model.RoomCode) (*model.Session, error) {
	return c.storage.GetSession(ctx, code)
}

// FireMissile resolves one shot. Shots that arrive out of turn, against an
// unknown or inactive room, or outside the board are ignored without any event.
// Returns true when the shot ended the match.
func (c *Controller) FireMissile(ctx context.Context, attacker model.Identity, code model.RoomCode, target int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, err := c.storage.GetSession(ctx, code)
	if errors.Is(err, model.ErrSessionNotFound) {
		c.ignore("unknown room", attacker, code)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	switch {
	case session.Status != model.SessionActive:
		c.ignore("session not active", attacker, code)
		return false, nil
	case session.CurrentTurn != attacker:
		c.ignore("not attacker's turn", attacker, code)
		return false, nil
	case !model.InRange(target):
		c.ignore("target out of range", attacker, code)
		return false, nil
	}

	defender := session.Opponent(attacker)
	isHit := defender.Board.Occupied(target)

	c.sendBoth(session, model.Event{
		Name: model.EventMissileResult,
		Payload: model.MissileResultPayload{
			TargetIndex: target,
			IsHit:       isHit,
			AttackerID:  attacker,
		},
	})

	if isHit {
		session.Hits[attacker]++
		if session.Hits[attacker] >= c.HitsToWin() {
			return true, c.finish(ctx, session, attacker)
		}
	}

	session.CurrentTurn = defender.ID
	session.UpdatedAt = c.clock.Now()
	if err := c.storage.SaveSession(ctx, session); err != nil {
		return false, err
	}

	c.sendBoth(session, model.Event{
		Name:    model.EventTurnUpdate,
		Payload: model.TurnUpdatePayload{CurrentTurnID: defender.ID},
	})
	return false, nil
}

// finish must be called with mu held
func (c *Controller) finish(ctx context.Context, session *model.Session, winnerID model.Identity) error {
	winner := session.Seat(winnerID)
	loser := session.Opponent(winnerID)
	session.Status = model.SessionFinished

	c.sendBoth(session, model.Event{
		Name: model.EventGameOver,
		Payload: model.GameOverPayload{
			WinnerID:   winner.ID,
			WinnerName: winner.Name,
			LoserName:  loser.Name,
		},
	})

	result := model.MatchResult{
		Room:       session.Code,
		WinnerID:   winner.ID,
		Winner:     winner.Name,
		Loser:      loser.Name,
		FinishedAt: c.clock.Now(),
	}
	c.settle(result)

	c.logger.Info("game completed",
		slog.String("room", string(session.Code)),
		slog.String("winner", winner.Name),
		slog.String("loser", loser.Name),
		slog.Int("hits", session.Hits[winnerID]))

	return c.storage.DeleteSession(ctx, session.Code)
}

// settle hands the result to the settler on its own goroutine
func (c *Controller) settle(result model.MatchResult) {
	c.settling.Add(1)
	go func() {
		defer c.settling.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.options.SettlementTimeout)
		defer cancel()

		if err := c.settler.Settle(ctx, result); err != nil {
			c.logger.Error("settlement failed",
				slog.String("room", string(result.Room)),
				slog.String("winner", result.Winner),
				slog.String("error", err.Error()))
		}
	}()
}

// WaitForSettlements blocks until in-flight settlement calls return
func (c *Controller) WaitForSettlements() {
	c.settling.Wait()
}

// RemoveSessionsFor deletes every session the identity is seated in, waiting
// or active. The remaining player is not notified.
func (c *Controller) RemoveSessionsFor(ctx context.Context, id model.Identity) ([]model.RoomCode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sessions, err := c.storage.SessionsFor(ctx, id)
	if err != nil {
		return nil, err
	}

	removed := make([]model.RoomCode, 0, len(sessions))
	for _, session := range sessions {
		if err := c.storage.DeleteSession(ctx, session.Code); err != nil {
			return removed, err
		}
		removed = append(removed, session.Code)
		c.logger.Info("session abandoned",
			slog.String("room", string(session.Code)),
			slog.String("status", string(session.Status)),
			slog.String("identity", string(id)))
	}
	return removed, nil
}

// announceMatch sends match_found to both players of a freshly active session
func (c *Controller) announceMatch(session *model.Session) {
	p1, p2 := session.Player1, *session.Player2
	c.sender.Send(p1.ID, model.Event{
		Name: model.EventMatchFound,
		Payload: model.MatchFoundPayload{
			OpponentName: p2.Name,
			YourTurn:     session.CurrentTurn == p1.ID,
			RoomID:       session.Code,
		},
	})
	c.sender.Send(p2.ID, model.Event{
		Name: model.EventMatchFound,
		Payload: model.MatchFoundPayload{
			OpponentName: p1.Name,
			YourTurn:     session.CurrentTurn == p2.ID,
			RoomID:       session.Code,
		},
	})
}

func (c *Controller) sendBoth(session *model.Session, event model.Event) {
	for _, id := range session.Participants() {
		c.sender.Send(id, event)
	}
}

func (c *Controller) ignore(reason string, attacker model.Identity, code model.RoomCode) {
	c.logger.Debug("missile ignored",
		slog.String("reason", reason),
		slog.String("identity", string(attacker)),
		slog.String("room", string(code)))
}
