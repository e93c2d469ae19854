package storage

import (
	"context"

	"github.com/mcoot/battleship-go2/internal/model"
)

// Storage defines the interface for live session state.
// Implementations hand out copies, so callers must Save after mutating.
type Storage interface {
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, code model.RoomCode) (*model.Session, error)
	DeleteSession(ctx context.Context, code model.RoomCode) error
	SessionExists(ctx context.Context, code model.RoomCode) (bool, error)

	// ListSessions returns every live session ordered by code
	ListSessions(ctx context.Context) ([]*model.Session, error)

	// SessionsFor returns the sessions the identity is seated in, ordered by code
	SessionsFor(ctx context.Context, id model.Identity) ([]*model.Session, error)
}
