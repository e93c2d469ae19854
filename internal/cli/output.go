package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mcoot/battleship-go2/internal/api/response"
	"github.com/mcoot/battleship-go2/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
	errW   io.Writer
}

// NewOutput creates a new Output formatter writing to stdout
func NewOutput(format string) *Output {
	return newOutputTo(format, os.Stdout, os.Stderr)
}

func newOutputTo(format string, w, errW io.Writer) *Output {
	return &Output{format: format, w: w, errW: errW}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(o.errW, string(data))
	} else {
		fmt.Fprintf(o.errW, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	if line, ok := data.(EventLine); ok {
		// One event per line so the stream can be piped
		encoded, _ := json.Marshal(line)
		fmt.Fprintln(o.w, string(encoded))
		return
	}
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Health:
		o.printHealth(v)
	case response.Lobby:
		o.printLobby(v)
	case response.RoomStatus:
		o.printRoomStatus(v)
	case EventLine:
		o.printEventLine(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// EventLine is one received websocket event
type EventLine struct {
	Time  time.Time       `json:"time"`
	Event model.EventName `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func (o *Output) printHealth(h response.Health) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
}

func (o *Output) printLobby(l response.Lobby) {
	fmt.Fprintf(o.w, "Online (%d):\n", len(l.Users))
	for _, name := range l.Users {
		fmt.Fprintf(o.w, "  - %s\n", name)
	}

	fmt.Fprintf(o.w, "Open Rooms (%d):\n", len(l.OpenRooms))
	for _, room := range l.OpenRooms {
		fmt.Fprintf(o.w, "  - %s hosted by %s\n", room.Code, room.Host)
	}

	fmt.Fprintf(o.w, "Active Battles (%d):\n", len(l.ActiveBattles))
	for _, battle := range l.ActiveBattles {
		fmt.Fprintf(o.w, "  - %s vs %s\n", battle.Player1, battle.Player2)
	}
}

func (o *Output) printRoomStatus(r response.RoomStatus) {
	if r.Exists {
		fmt.Fprintf(o.w, "Room %s is open\n", r.Code)
	} else {
		fmt.Fprintf(o.w, "Room %s not found or already full\n", r.Code)
	}
}

func (o *Output) printEventLine(e EventLine) {
	timestamp := e.Time.Format("2006-01-02 15:04:05")
	// Truncate data if it's too long for display
	displayData := string(e.Data)
	if len(displayData) > 100 {
		displayData = displayData[:100] + "..."
	}
	// Remove newlines for cleaner display
	displayData = strings.ReplaceAll(displayData, "\n", " ")
	fmt.Fprintf(o.w, "[%s] %s: %s\n", timestamp, e.Event, displayData)
}
