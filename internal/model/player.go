package model

import "strings"

// Identity is an opaque handle for one live connection.
// It is minted by the transport and only valid while the connection is open.
type Identity string

// Player is a participant entering a match
type Player struct {
	ID    Identity
	Name  string // normalized display name
	Board Board
}

// NormalizeName trims whitespace and case-folds a display name
func NormalizeName(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NewPlayer builds a Player with a normalized name and a validated board
func NewPlayer(id Identity, rawName string, board Board) (Player, error) {
	name := NormalizeName(rawName)
	if name == "" {
		return Player{}, ErrInvalidName
	}
	if err := board.Validate(); err != nil {
		return Player{}, err
	}
	return Player{ID: id, Name: name, Board: board}, nil
}
