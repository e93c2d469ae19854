package response

import "github.com/mcoot/battleship-go2/internal/model"

// Health is the response for the health endpoint
type Health struct {
	Status string `json:"status"`
}

// Lobby is the live lobby snapshot
type Lobby = model.LobbySnapshot

// RoomStatus reports whether a room code is joinable
type RoomStatus struct {
	Code   string `json:"code"`
	Exists bool   `json:"exists"`
}
