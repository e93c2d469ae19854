package lobby

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/battleship-go2/internal/dependencies/random"
	"github.com/mcoot/battleship-go2/internal/model"
	"github.com/mcoot/battleship-go2/internal/realtime"
	"github.com/mcoot/battleship-go2/internal/services/challenge"
	"github.com/mcoot/battleship-go2/internal/services/game"
)

const (
	// DefaultCodeLength is the length of generated room codes
	DefaultCodeLength = 5

	// maxCodeAttempts bounds the collision retry loop
	maxCodeAttempts = 64
)

// Messages reported to a player whose join failed
const (
	RoomNotFoundMessage = "Room not found!"
	RoomFullMessage     = "Room is already full!"
)

// Controller manages private rooms addressed by a short code
type Controller struct {
	games      *game.Controller
	broker     *challenge.Broker
	sender     realtime.Sender
	random     random.Random
	codeLength int
	logger     *slog.Logger
}

// NewController creates a new LobbyController
func NewController(
	games *game.Controller,
	broker *challenge.Broker,
	sender realtime.Sender,
	random random.Random,
	codeLength int,
	logger *slog.Logger,
) *Controller {
	if codeLength <= 0 {
		codeLength = DefaultCodeLength
	}
	return &Controller{
		games:      games,
		broker:     broker,
		sender:     sender,
		random:     random,
		codeLength: codeLength,
		logger:     logger.With(slog.String("component", "lobby")),
	}
}

// CreateLobby opens a waiting room hosted by the player under a fresh code.
// If the host has an outstanding challenge, its target is sent the code.
func (c *Controller) CreateLobby(ctx context.Context, host model.Player) (*model.Session, error) {
	var session *model.Session
	for attempt := 0; session == nil; attempt++ {
		if attempt == maxCodeAttempts {
			return nil, fmt.Errorf("no free room code after %d attempts: %w", attempt, model.ErrRoomCodeTaken)
		}

		code := model.RoomCode(c.random.String(c.codeLength, random.RoomCodeAlphabet))
		opened, err := c.games.OpenSession(ctx, code, host)
		if errors.Is(err, model.ErrRoomCodeTaken) {
			c.logger.Debug("room code collision", slog.String("room", string(code)))
			continue
		}
		if err != nil {
			return nil, err
		}
		session = opened
	}

	c.sender.Send(host.ID, model.Event{
		Name:    model.EventLobbyCreated,
		Payload: model.LobbyCreatedPayload{RoomCode: session.Code},
	})
	c.broker.ConsumeForHost(host.Name, session.Code)
	return session, nil
}

// JoinLobby seats the player as guest. Failures are reported to the player
// as lobby_error and returned.
func (c *Controller) JoinLobby(ctx context.Context, guest model.Player, code model.RoomCode) (*model.Session, error) {
	session, err := c.games.JoinSession(ctx, code, guest)
	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		c.reject(guest.ID, RoomNotFoundMessage)
		return nil, err
	case errors.Is(err, model.ErrRoomFull):
		c.reject(guest.ID, RoomFullMessage)
		return nil, err
	case err != nil:
		return nil, err
	}
	return session, nil
}

// ValidateRoom tells the requester whether the code names a joinable room.
// Nothing is reserved.
func (c *Controller) ValidateRoom(ctx context.Context, requester model.Identity, code model.RoomCode) (bool, error) {
	open, err := c.games.RoomOpen(ctx, code)
	if err != nil {
		return false, err
	}
	c.sender.Send(requester, model.Event{
		Name:    model.EventRoomValidationResult,
		Payload: model.RoomValidationPayload{Exists: open},
	})
	return open, nil
}

func (c *Controller) reject(id model.Identity, message string) {
	c.sender.Send(id, model.Event{
		Name:    model.EventLobbyError,
		Payload: model.LobbyErrorPayload{Message: message},
	})
}
