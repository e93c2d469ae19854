package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/battleship-go2/internal/dependencies/random"
	"github.com/mcoot/battleship-go2/internal/model"
	"github.com/mcoot/battleship-go2/internal/realtime"
	"github.com/mcoot/battleship-go2/internal/services/bot"
)

func newPlayCmd() *cobra.Command {
	var (
		name string
		room string
		host bool
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play one match with a bot that places ships and fires at random",
		Long: `Connect, register and enter a match. Without flags the bot joins the
quick match queue; --host opens a private room and --room joins one.
The bot fires at random untried cells until the match ends.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return errors.New("--name is required")
			}
			if host && room != "" {
				return errors.New("--host and --room are mutually exclusive")
			}
			return playMatch(name, room, host)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name to register")
	cmd.Flags().StringVar(&room, "room", "", "Private room code to join")
	cmd.Flags().BoolVar(&host, "host", false, "Open a private room and wait for a guest")

	return cmd
}

func playMatch(name, room string, host bool) error {
	conn, err := client.Dial()
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	out := NewOutput(cfg.Output)
	strategy := bot.NewRandomStrategy(random.New())
	pilot := bot.NewPilot(strategy)
	board := strategy.Layout(model.DefaultFleet())

	if err := conn.Send(model.EventRegisterUser, model.RegisterUserPayload{Username: name}); err != nil {
		return err
	}

	switch {
	case host:
		err = conn.Send(model.EventCreateLobby, model.CreateLobbyPayload{Username: name, Board: board})
	case room != "":
		err = conn.Send(model.EventJoinLobby, model.JoinLobbyPayload{Username: name, Board: board, RoomCode: model.RoomCode(room)})
	default:
		err = conn.Send(model.EventFindMatch, model.FindMatchPayload{Username: name, Board: board})
	}
	if err != nil {
		return err
	}

	fire := func(target int, ok bool) {
		if !ok {
			return
		}
		if err := conn.Send(model.EventFireMissile, model.FireMissilePayload{RoomID: pilot.Room(), TargetIndex: target}); err != nil {
			out.PrintError(err)
		}
	}

	var failure error
	err = receiveUntil(conn, func(env realtime.Envelope) bool {
		if cfg.Verbose || cfg.Output == "json" {
			out.Print(EventLine{Time: time.Now(), Event: env.Event, Data: env.Data})
		}

		switch env.Event {
		case model.EventLobbyCreated:
			var p model.LobbyCreatedPayload
			if decodeInto(env.Data, &p) {
				out.PrintMessage(fmt.Sprintf("Room %s created, waiting for a guest", p.RoomCode))
			}
		case model.EventLobbyError:
			var p model.LobbyErrorPayload
			if decodeInto(env.Data, &p) {
				failure = errors.New(p.Message)
			}
			return true
		case model.EventMatchFound:
			var p model.MatchFoundPayload
			if decodeInto(env.Data, &p) {
				out.PrintMessage(fmt.Sprintf("Matched against %s in %s", p.OpponentName, p.RoomID))
				fire(pilot.MatchFound(p))
			}
		case model.EventMissileResult:
			var p model.MissileResultPayload
			if decodeInto(env.Data, &p) {
				pilot.MissileResult(p)
			}
		case model.EventTurnUpdate:
			var p model.TurnUpdatePayload
			if decodeInto(env.Data, &p) {
				fire(pilot.TurnUpdate(p))
			}
		case model.EventGameOver:
			var p model.GameOverPayload
			if decodeInto(env.Data, &p) {
				pilot.GameOver(p)
				out.PrintMessage(fmt.Sprintf("Game over: %s beat %s (%d hits)", p.WinnerName, p.LoserName, pilot.Hits()))
			}
			return true
		}
		return false
	})
	if err != nil {
		return err
	}
	return failure
}

func decodeInto(data json.RawMessage, v any) bool {
	return json.Unmarshal(data, v) == nil
}
