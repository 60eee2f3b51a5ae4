package command

import (
	"encoding/json"
	"fmt"

	"github.com/naviohq/navio/internal/db"
	"github.com/spf13/cobra"
)

// NewNotifsCmd creates the notifications command.
func NewNotifsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifs",
		Short: "Show queued notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			all, _ := cmd.Flags().GetBool("all")
			markSeen, _ := cmd.Flags().GetBool("seen")

			notifs, err := db.GetNotifications(ctx.DB, ctx.Config.UserID, !all)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				if err := json.NewEncoder(cmd.OutOrStdout()).Encode(notifs); err != nil {
					return err
				}
			} else if len(notifs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No new notifications.")
			} else {
				for _, n := range notifs {
					fmt.Fprintf(cmd.OutOrStdout(), "%-18s %-10s %s (%s)\n", n.ID, n.Kind, n.Body, formatRelative(n.CreatedAt))
				}
			}

			if markSeen {
				if err := db.MarkNotificationsSeen(ctx.DB, ctx.Config.UserID); err != nil {
					return writeCommandError(cmd, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().Bool("all", false, "include already-seen notifications")
	cmd.Flags().Bool("seen", false, "mark listed notifications as seen")
	return cmd
}
