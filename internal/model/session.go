package model

import "time"

// RoomCode identifies a session; players address rooms by it
type RoomCode string

// SessionStatus is the lifecycle state of a session
type SessionStatus string

const (
	SessionWaiting  SessionStatus = "waiting"  // host seated, waiting for a guest
	SessionActive   SessionStatus = "active"   // both seated, turns in progress
	SessionFinished SessionStatus = "finished" // terminal, removed from storage
)

// Session is the authoritative state of one match
type Session struct {
	Code        RoomCode
	Player1     Player
	Player2     *Player // nil while waiting
	CurrentTurn Identity
	Hits        map[Identity]int
	Status      SessionStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasPlayer returns true if the identity is seated in this session
func (s *Session) HasPlayer(id Identity) bool {
	if s.Player1.ID == id {
		return true
	}
	return s.Player2 != nil && s.Player2.ID == id
}

// Opponent returns the other seated player, or nil
func (s *Session) Opponent(id Identity) *Player {
	switch {
	case s.Player1.ID == id:
		return s.Player2
	case s.Player2 != nil && s.Player2.ID == id:
		return &s.Player1
	default:
		return nil
	}
}

// Seat returns the seated player with the given identity, or nil
func (s *Session) Seat(id Identity) *Player {
	if s.Player1.ID == id {
		return &s.Player1
	}
	if s.Player2 != nil && s.Player2.ID == id {
		return s.Player2
	}
	return nil
}

// Participants returns the identities of all seated players
func (s *Session) Participants() []Identity {
	ids := []Identity{s.Player1.ID}
	if s.Player2 != nil {
		ids = append(ids, s.Player2.ID)
	}
	return ids
}

// MatchResult is the outcome handed to settlement once a session finishes
type MatchResult struct {
	Room       RoomCode
	WinnerID   Identity
	Winner     string
	Loser      string
	FinishedAt time.Time
}
