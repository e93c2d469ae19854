package snapshot

import (
	"context"
	"log/slog"

	"github.com/mcoot/battleship-go2/internal/model"
	"github.com/mcoot/battleship-go2/internal/realtime"
	"github.com/mcoot/battleship-go2/internal/services/presence"
	"github.com/mcoot/battleship-go2/internal/storage"
)

// Broadcaster derives the lobby snapshot and pushes it to every connection
type Broadcaster struct {
	presence *presence.Directory
	storage  storage.Storage
	sender   realtime.Sender
	logger   *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(presence *presence.Directory, storage storage.Storage, sender realtime.Sender, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		presence: presence,
		storage:  storage,
		sender:   sender,
		logger:   logger.With(slog.String("component", "snapshot")),
	}
}

// Build derives the current snapshot. Rooms and battles follow room code order.
func (b *Broadcaster) Build(ctx context.Context) (model.LobbySnapshot, error) {
	sessions, err := b.storage.ListSessions(ctx)
	if err != nil {
		return model.LobbySnapshot{}, err
	}

	snapshot := model.LobbySnapshot{
		Users:         b.presence.Names(),
		OpenRooms:     []model.OpenRoom{},
		ActiveBattles: []model.ActiveBattle{},
	}
	for _, session := range sessions {
		switch session.Status {
		case model.SessionWaiting:
			snapshot.OpenRooms = append(snapshot.OpenRooms, model.OpenRoom{
				Code: session.Code,
				Host: session.Player1.Name,
			})
		case model.SessionActive:
			snapshot.ActiveBattles = append(snapshot.ActiveBattles, model.ActiveBattle{
				Player1: session.Player1.Name,
				Player2: session.Player2.Name,
			})
		}
	}
	return snapshot, nil
}

// Broadcast sends lobby_state_update with a fresh snapshot to every connection
func (b *Broadcaster) Broadcast(ctx context.Context) error {
	snapshot, err := b.Build(ctx)
	if err != nil {
		b.logger.Error("failed to build lobby snapshot", slog.Any("error", err))
		return err
	}

	b.sender.Broadcast(model.Event{Name: model.EventLobbyStateUpdate, Payload: snapshot})
	b.logger.Debug("lobby snapshot broadcast",
		slog.Int("users", len(snapshot.Users)),
		slog.Int("open_rooms", len(snapshot.OpenRooms)),
		slog.Int("active_battles", len(snapshot.ActiveBattles)))
	return nil
}
