package command

import (
	"fmt"
	"strings"

	"github.com/naviohq/navio/internal/db"
	"github.com/naviohq/navio/internal/realtime"
	"github.com/naviohq/navio/internal/types"
	"github.com/spf13/cobra"
)

// NewReactCmd creates the react command.
func NewReactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "react <message-id> <emoji>",
		Short: "Add an emoji reaction to a message",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			messageID := strings.TrimSpace(strings.TrimPrefix(args[0], "#"))
			msg, err := db.GetMessage(ctx.DB, messageID)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if msg == nil {
				return writeCommandError(cmd, fmt.Errorf("message %s not found", messageID))
			}

			event, err := db.AppendEvent(ctx.DB, types.Event{
				MessageID: msg.ID,
				Actor:     ctx.Config.UserID,
				Kind:      types.EventEmoji,
				Payload:   args[1],
			})
			if err != nil {
				return writeCommandError(cmd, err)
			}

			ctx.Bus.Publish(realtime.Change{
				Kind:  realtime.ChangeEvent,
				Topic: msg.ID,
				Event: &event,
			})

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", args[1], msg.ID)
			return nil
		},
	}
	return cmd
}
