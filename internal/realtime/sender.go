package realtime

import "github.com/mcoot/battleship-go2/internal/model"

// Sender delivers outbound events to live connections.
// Sends to an identity that is no longer connected are dropped.
type Sender interface {
	Send(to model.Identity, event model.Event)
	Broadcast(event model.Event)
}
