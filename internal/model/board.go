package model

import (
	"bytes"
	"encoding/json"
)

// BoardCells is the number of cells on a 10x10 board
const BoardCells = 100

var jsonNull = []byte("null")

// Board is a player's fleet layout: one entry per cell, row-major.
// A null entry is water; any other JSON value is the ship tag occupying the cell.
// Tags are carried as-is and never interpreted.
type Board []json.RawMessage

// ShipTag encodes a string tag for a board cell
func ShipTag(tag string) json.RawMessage {
	encoded, _ := json.Marshal(tag)
	return encoded
}

// Validate checks the board has exactly BoardCells entries
func (b Board) Validate() error {
	if len(b) != BoardCells {
		return ErrInvalidBoard
	}
	return nil
}

// InRange returns true if the index addresses a cell on the board
func InRange(index int) bool {
	return index >= 0 && index < BoardCells
}

// Occupied returns true if a ship occupies the cell at index
func (b Board) Occupied(index int) bool {
	if index < 0 || index >= len(b) {
		return false
	}
	return occupied(b[index])
}

// ShipCells counts the occupied cells
func (b Board) ShipCells() int {
	count := 0
	for _, cell := range b {
		if occupied(cell) {
			count++
		}
	}
	return count
}

func occupied(cell json.RawMessage) bool {
	trimmed := bytes.TrimSpace(cell)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, jsonNull)
}
