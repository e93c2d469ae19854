package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/battleship-go2/internal/model"
	"github.com/mcoot/battleship-go2/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	sessions map[model.RoomCode]*model.Session
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		sessions: make(map[model.RoomCode]*model.Session),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Code] = clone(session)
	return nil
}

func (s *Storage) GetSession(ctx context.Context, code model.RoomCode) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[code]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return clone(session), nil
}

func (s *Storage) DeleteSession(ctx context.Context, code model.RoomCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, code)
	return nil
}

func (s *Storage) SessionExists(ctx context.Context, code model.RoomCode) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[code]
	return ok, nil
}

func (s *Storage) ListSessions(ctx context.Context) ([]*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(*model.Session) bool { return true }), nil
}

func (s *Storage) SessionsFor(ctx context.Context, id model.Identity) ([]*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(session *model.Session) bool { return session.HasPlayer(id) }), nil
}

// collect must be called with the lock held
func (s *Storage) collect(keep func(*model.Session) bool) []*model.Session {
	result := make([]*model.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		if keep(session) {
			result = append(result, clone(session))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result
}

// clone copies the mutable parts of a session; boards are read-only after entry and stay shared
func clone(session *model.Session) *model.Session {
	c := *session
	if session.Player2 != nil {
		p2 := *session.Player2
		c.Player2 = &p2
	}
	c.Hits = make(map[model.Identity]int, len(session.Hits))
	for id, hits := range session.Hits {
		c.Hits[id] = hits
	}
	return &c
}
