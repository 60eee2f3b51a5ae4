package command

import (
	"github.com/naviohq/navio/internal/chat"
	"github.com/naviohq/navio/internal/core"
	"github.com/naviohq/navio/internal/logging"
	"github.com/naviohq/navio/internal/realtime"
	"github.com/spf13/cobra"
)

// NewChatCmd creates the chat command.
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [room]",
		Short: "Open a room in the interactive view",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			if err := logging.Init(ctx.Config.StateDir); err != nil {
				return writeCommandError(cmd, err)
			}

			ref := ""
			if len(args) > 0 {
				ref = args[0]
			}
			room, err := ctx.ResolveRoom(ref)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			last, _ := cmd.Flags().GetInt("last")

			// Another process writing the store shows up as a bus
			// refresh via the db file watcher.
			watcher, err := realtime.NewWatcher(core.DBPath(ctx.Config.StateDir), func() {
				publishLatest(ctx, room.ID)
			})
			if err == nil {
				defer watcher.Close()
			}

			return chat.Run(chat.Options{
				DB:      ctx.DB,
				Config:  ctx.Config,
				Backend: ctx.Backend,
				Bus:     ctx.Bus,
				Room:    *room,
				Last:    last,
			})
		},
	}

	cmd.Flags().Int("last", 50, "number of messages to load")
	return cmd
}
