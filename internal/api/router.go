package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/battleship-go2/internal/api/handler"
	"github.com/mcoot/battleship-go2/internal/api/middleware"
	"github.com/mcoot/battleship-go2/internal/api/response"
	basemiddleware "github.com/mcoot/battleship-go2/internal/middleware"
	"github.com/mcoot/battleship-go2/internal/realtime"
	"github.com/mcoot/battleship-go2/internal/services/game"
	"github.com/mcoot/battleship-go2/internal/services/snapshot"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	Broadcaster    *snapshot.Broadcaster
	GameController *game.Controller
	Hub            *realtime.Hub
	Handler        realtime.Handler
}

// NewRouter creates a new router serving the JSON API and the websocket endpoint
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	lobbyHandler := handler.NewLobbyHandler(cfg.Broadcaster, cfg.GameController)

	loggingMiddleware := basemiddleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	api.HandleFunc("/lobby", lobbyHandler.Snapshot).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}", lobbyHandler.Room).Methods(http.MethodGet)

	// Websocket transport
	wsHandler := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		realtime.ServeWS(w, req, cfg.Hub, cfg.Handler, cfg.Logger)
	})
	wsRecovery := basemiddleware.Recovery(cfg.Logger, basemiddleware.DefaultPanicHandler)
	r.Handle("/ws", wsRecovery(loggingMiddleware(wsHandler))).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
