package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/battleship-go2/internal/api/response"
	"github.com/mcoot/battleship-go2/internal/model"
	"github.com/mcoot/battleship-go2/internal/services/game"
	"github.com/mcoot/battleship-go2/internal/services/snapshot"
)

// maxCodeLength bounds room codes accepted from the path
const maxCodeLength = 64

// LobbyHandler serves read-only views of the lobby
type LobbyHandler struct {
	broadcaster    *snapshot.Broadcaster
	gameController *game.Controller
}

// NewLobbyHandler creates a new LobbyHandler
func NewLobbyHandler(broadcaster *snapshot.Broadcaster, gameController *game.Controller) *LobbyHandler {
	return &LobbyHandler{
		broadcaster:    broadcaster,
		gameController: gameController,
	}
}

// Snapshot handles GET /api/v1/lobby
func (h *LobbyHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.broadcaster.Build(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

// Room handles GET /api/v1/rooms/{code}
// It answers the same question as validate_room and reserves nothing.
func (h *LobbyHandler) Room(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	if code == "" || len(code) > maxCodeLength {
		WriteError(w, NewInvalidRequestError("invalid room code"))
		return
	}

	open, err := h.gameController.RoomOpen(r.Context(), model.RoomCode(code))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RoomStatus{Code: code, Exists: open})
}
