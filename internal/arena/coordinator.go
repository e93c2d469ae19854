package arena

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/mcoot/battleship-go2/internal/model"
	"github.com/mcoot/battleship-go2/internal/realtime"
	"github.com/mcoot/battleship-go2/internal/services/challenge"
	"github.com/mcoot/battleship-go2/internal/services/game"
	"github.com/mcoot/battleship-go2/internal/services/lobby"
	"github.com/mcoot/battleship-go2/internal/services/matchmaking"
	"github.com/mcoot/battleship-go2/internal/services/presence"
	"github.com/mcoot/battleship-go2/internal/services/snapshot"
)

// Messages reported for malformed entries
const (
	InvalidNameMessage  = "Username is required!"
	InvalidBoardMessage = "Board must have exactly 100 cells!"
	MalformedMessage    = "Malformed request!"
)

const inboxSize = 1024

// ErrStopped is returned by Flush once the loop has exited
var ErrStopped = errors.New("arena stopped")

type commandKind int

const (
	commandInbound commandKind = iota
	commandDisconnect
	commandExpire
	commandFlush
)

type command struct {
	kind       commandKind
	id         model.Identity
	event      model.EventName
	data       json.RawMessage
	from       string
	generation uint64
	done       chan struct{}
}

// Services bundles the registries the coordinator drives
type Services struct {
	Presence    *presence.Directory
	Queue       *matchmaking.Queue
	Lobby       *lobby.Controller
	Broker      *challenge.Broker
	Games       *game.Controller
	Broadcaster *snapshot.Broadcaster
}

// Coordinator serializes every client event, disconnect and challenge expiry
// onto one goroutine. Handlers run to completion before the next command.
type Coordinator struct {
	services Services
	sender   realtime.Sender
	logger   *slog.Logger

	inbox chan command
	done  chan struct{}
}

// Ensure Coordinator handles transport traffic
var _ realtime.Handler = (*Coordinator)(nil)

// New creates a Coordinator and routes challenge expiry through its loop
func New(services Services, sender realtime.Sender, logger *slog.Logger) *Coordinator {
	c := &Coordinator{
		services: services,
		sender:   sender,
		logger:   logger.With(slog.String("component", "arena")),
		inbox:    make(chan command, inboxSize),
		done:     make(chan struct{}),
	}
	services.Broker.SetExpiryHandler(func(from string, generation uint64) {
		c.submit(command{kind: commandExpire, from: from, generation: generation})
	})
	return c
}

// Run processes commands until the context is cancelled
func (c *Coordinator) Run(ctx context.Context) {
	c.logger.Info("arena started")
	defer close(c.done)

	for {
		select {
		case cmd := <-c.inbox:
			c.handle(ctx, cmd)
		case <-ctx.Done():
			c.logger.Info("arena stopped", slog.Int("pending", len(c.inbox)))
			return
		}
	}
}

// submit queues a command, dropping it once the loop has stopped
func (c *Coordinator) submit(cmd command) bool {
	select {
	case c.inbox <- cmd:
		return true
	case <-c.done:
		return false
	}
}

// Connected is called when the transport accepts a connection
func (c *Coordinator) Connected(id model.Identity) {
	c.logger.Debug("connection opened", slog.String("identity", string(id)))
}

// Inbound queues a client event
func (c *Coordinator) Inbound(id model.Identity, event model.EventName, data json.RawMessage) {
	c.submit(command{kind: commandInbound, id: id, event: event, data: data})
}

// Disconnected queues the cleanup cascade for a closed connection
func (c *Coordinator) Disconnected(id model.Identity) {
	c.submit(command{kind: commandDisconnect, id: id})
}

// Flush blocks until every command submitted before it has been handled
func (c *Coordinator) Flush(ctx context.Context) error {
	done := make(chan struct{})
	if !c.submit(command{kind: commandFlush, done: done}) {
		return ErrStopped
	}
	select {
	case <-done:
		return nil
	case <-c.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) handle(ctx context.Context, cmd command) {
	switch cmd.kind {
	case commandInbound:
		c.dispatch(ctx, cmd.id, cmd.event, cmd.data)
	case commandDisconnect:
		c.disconnect(ctx, cmd.id)
	case commandExpire:
		if c.services.Broker.Expire(cmd.from, cmd.generation) {
			c.broadcast(ctx)
		}
	case commandFlush:
		close(cmd.done)
	}
}

func (c *Coordinator) dispatch(ctx context.Context, id model.Identity, event model.EventName, data json.RawMessage) {
	var err error
	switch event {
	case model.EventRegisterUser:
		err = c.registerUser(ctx, id, data)
	case model.EventFindMatch:
		err = c.findMatch(ctx, id, data)
	case model.EventCreateLobby:
		err = c.createLobby(ctx, id, data)
	case model.EventJoinLobby:
		err = c.joinLobby(ctx, id, data)
	case model.EventValidateRoom:
		err = c.validateRoom(ctx, id, data)
	case model.EventSendChallenge:
		err = c.sendChallenge(ctx, id, data)
	case model.EventAcceptChallenge:
		err = c.acceptChallenge(ctx, data)
	case model.EventFireMissile:
		err = c.fireMissile(ctx, id, data)
	default:
		c.logger.Debug("unknown event dropped",
			slog.String("identity", string(id)),
			slog.String("event", string(event)))
		return
	}

	if err != nil {
		name, _ := c.services.Presence.NameOf(id)
		c.logger.Debug("event rejected",
			slog.String("identity", string(id)),
			slog.String("name", name),
			slog.String("event", string(event)),
			slog.Any("error", err))
	}
}

func decode[T any](data json.RawMessage) (T, error) {
	var payload T
	if len(data) == 0 {
		return payload, errors.New("missing payload")
	}
	err := json.Unmarshal(data, &payload)
	return payload, err
}

func (c *Coordinator) registerUser(ctx context.Context, id model.Identity, data json.RawMessage) error {
	payload, err := decode[model.RegisterUserPayload](data)
	if err != nil {
		return err
	}
	if _, err := c.services.Presence.Register(id, payload.Username); err != nil {
		c.reportEntryError(id, err)
		return err
	}
	c.broadcast(ctx)
	return nil
}

func (c *Coordinator) findMatch(ctx context.Context, id model.Identity, data json.RawMessage) error {
	payload, err := decode[model.FindMatchPayload](data)
	if err != nil {
		c.reportEntryError(id, err)
		return err
	}
	player, err := c.entrant(id, payload.Username, payload.Board)
	if err != nil {
		return err
	}
	if _, err := c.services.Queue.EnqueueOrMatch(ctx, player); err != nil {
		return err
	}
	c.broadcast(ctx)
	return nil
}

func (c *Coordinator) createLobby(ctx context.Context, id model.Identity, data json.RawMessage) error {
	payload, err := decode[model.CreateLobbyPayload](data)
	if err != nil {
		c.reportEntryError(id, err)
		return err
	}
	player, err := c.entrant(id, payload.Username, payload.Board)
	if err != nil {
		return err
	}
	if _, err := c.services.Lobby.CreateLobby(ctx, player); err != nil {
		return err
	}
	c.broadcast(ctx)
	return nil
}

func (c *Coordinator) joinLobby(ctx context.Context, id model.Identity, data json.RawMessage) error {
	payload, err := decode[model.JoinLobbyPayload](data)
	if err != nil {
		c.reportEntryError(id, err)
		return err
	}
	player, err := c.entrant(id, payload.Username, payload.Board)
	if err != nil {
		return err
	}
	if _, err := c.services.Lobby.JoinLobby(ctx, player, payload.RoomCode); err != nil {
		return err
	}
	c.broadcast(ctx)
	return nil
}

func (c *Coordinator) validateRoom(ctx context.Context, id model.Identity, data json.RawMessage) error {
	payload, err := decode[model.ValidateRoomPayload](data)
	if err != nil {
		return err
	}
	_, err = c.services.Lobby.ValidateRoom(ctx, id, payload.RoomCode)
	return err
}

func (c *Coordinator) sendChallenge(ctx context.Context, id model.Identity, data json.RawMessage) error {
	payload, err := decode[model.SendChallengePayload](data)
	if err != nil {
		return err
	}
	if err := c.services.Broker.SendChallenge(id, payload.From, payload.To); err != nil {
		if errors.Is(err, model.ErrInvalidName) {
			c.reportEntryError(id, err)
		}
		return err
	}
	c.broadcast(ctx)
	return nil
}

func (c *Coordinator) acceptChallenge(ctx context.Context, data json.RawMessage) error {
	payload, err := decode[model.AcceptChallengePayload](data)
	if err != nil {
		return err
	}
	if c.services.Broker.AcceptChallenge(payload.Host, payload.Guest) {
		c.broadcast(ctx)
	}
	return nil
}

func (c *Coordinator) fireMissile(ctx context.Context, id model.Identity, data json.RawMessage) error {
	payload, err := decode[model.FireMissilePayload](data)
	if err != nil {
		return err
	}
	over, err := c.services.Games.FireMissile(ctx, id, payload.RoomID, payload.TargetIndex)
	if err != nil {
		return err
	}
	if over {
		c.broadcast(ctx)
	}
	return nil
}

// disconnect tears down everything the identity holds, then broadcasts once.
// An opponent left in an active match is not told; the match simply vanishes.
func (c *Coordinator) disconnect(ctx context.Context, id model.Identity) {
	name, registered := c.services.Presence.Unregister(id)
	dequeued := c.services.Queue.Remove(id)

	removed, err := c.services.Games.RemoveSessionsFor(ctx, id)
	if err != nil {
		c.logger.Error("failed to remove sessions",
			slog.String("identity", string(id)),
			slog.Any("error", err))
	}

	if registered {
		if _, stillOnline := c.services.Presence.FindByName(name); !stillOnline {
			c.services.Broker.DropFrom(name)
		}
	}

	c.logger.Info("connection closed",
		slog.String("identity", string(id)),
		slog.String("name", name),
		slog.Bool("dequeued", dequeued),
		slog.Int("sessions_removed", len(removed)),
		slog.Int("online", c.services.Presence.Count()))
	c.broadcast(ctx)
}

// entrant validates the name and board carried by an entry event
func (c *Coordinator) entrant(id model.Identity, username string, board model.Board) (model.Player, error) {
	player, err := model.NewPlayer(id, username, board)
	if err != nil {
		c.reportEntryError(id, err)
		return model.Player{}, err
	}
	return player, nil
}

func (c *Coordinator) reportEntryError(id model.Identity, err error) {
	var message string
	switch {
	case errors.Is(err, model.ErrInvalidName):
		message = InvalidNameMessage
	case errors.Is(err, model.ErrInvalidBoard):
		message = InvalidBoardMessage
	default:
		message = MalformedMessage
	}
	c.sender.Send(id, model.Event{
		Name:    model.EventLobbyError,
		Payload: model.LobbyErrorPayload{Message: message},
	})
}

func (c *Coordinator) broadcast(ctx context.Context) {
	_ = c.services.Broadcaster.Broadcast(ctx)
}
