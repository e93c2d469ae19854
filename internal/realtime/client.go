package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mcoot/battleship-go2/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer
	pongWait = 60 * time.Second

	// Time between keepalive pings, shorter than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Largest inbound frame accepted
	maxMessageSize = 16 * 1024

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler receives the lifecycle and inbound traffic of every connection
type Handler interface {
	Connected(id model.Identity)
	Inbound(id model.Identity, event model.EventName, data json.RawMessage)
	Disconnected(id model.Identity)
}

// Client represents a connected websocket client
type Client struct {
	id          model.Identity
	conn        *websocket.Conn
	send        chan []byte
	connectedAt time.Time
}

// NewClient creates a client for an upgraded connection with a fresh identity
func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		id:          model.Identity(uuid.NewString()),
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// ID returns the identity minted for this connection
func (c *Client) ID() model.Identity {
	return c.id
}

// ServeWS upgrades the request and pumps frames until the peer goes away
func ServeWS(w http.ResponseWriter, r *http.Request, hub *Hub, handler Handler, logger *slog.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := NewClient(conn)
	hub.Register(client)
	handler.Connected(client.id)

	go client.writePump()
	client.readPump(handler, logger)

	hub.Unregister(client.id)
	handler.Disconnected(client.id)
}

// readPump dispatches inbound frames until the connection fails
func (c *Client) readPump(handler Handler, logger *slog.Logger) {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket read error",
					slog.String("identity", string(c.id)),
					slog.Any("error", err))
			}
			return
		}

		env, err := Decode(frame)
		if err != nil || env.Event == "" {
			logger.Debug("malformed frame dropped", slog.String("identity", string(c.id)))
			continue
		}
		handler.Inbound(c.id, env.Event, env.Data)
	}
}

// writePump drains the send buffer and keeps the connection alive
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
