package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/mcoot/battleship-go2/internal/model"
	"github.com/mcoot/battleship-go2/internal/realtime"
)

func newEventsCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Register and stream real-time events",
		Long: `Connect to the websocket, register under a display name and print every
event the server sends.

Events include:
  - lobby_state_update: Players, open rooms or battles changed
  - receive_challenge: Another player challenged you
  - challenge_expired / challenge_withdrawn: A challenge timed out
  - lobby_error: A request was rejected

Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return errors.New("--name is required")
			}
			return streamEvents(name)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name to register")

	return cmd
}

func streamEvents(name string) error {
	conn, err := client.Dial()
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	out := NewOutput(cfg.Output)

	if err := conn.Send(model.EventRegisterUser, model.RegisterUserPayload{Username: name}); err != nil {
		return err
	}
	if cfg.Output != "json" {
		out.PrintMessage(fmt.Sprintf("Connected as %s", name))
	}

	return receiveUntil(conn, func(env realtime.Envelope) bool {
		out.Print(EventLine{Time: time.Now(), Event: env.Event, Data: env.Data})
		return false
	})
}

// receiveUntil dispatches events until handle returns true, the server closes
// the connection or the user interrupts
func receiveUntil(conn *Connection, handle func(realtime.Envelope) bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Unblock the read loop on interrupt
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		env, err := conn.Receive()
		if err != nil {
			// Context cancellation is expected
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				if cfg.Output != "json" {
					fmt.Println("\nDisconnected")
				}
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}
		if handle(env) {
			return nil
		}
	}
}
