package realtime

import (
	"encoding/json"

	"github.com/mcoot/battleship-go2/internal/model"
)

// Envelope is the JSON frame exchanged in both directions
type Envelope struct {
	Event model.EventName `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Encode wraps an outbound event in an envelope
func Encode(event model.Event) ([]byte, error) {
	var data json.RawMessage
	if event.Payload != nil {
		raw, err := json.Marshal(event.Payload)
		if err != nil {
			return nil, err
		}
		data = raw
	}
	return json.Marshal(Envelope{Event: event.Name, Data: data})
}

// Decode parses an inbound frame
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}
