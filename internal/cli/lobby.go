package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/battleship-go2/internal/api/response"
)

func newLobbyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lobby",
		Short: "Show online players, open rooms and active battles",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Lobby

			if err := client.Get("/api/v1/lobby", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "room <code>",
		Short: "Check whether a private room can be joined",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.RoomStatus

			if err := client.Get("/api/v1/rooms/"+args[0], &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
