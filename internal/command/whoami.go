package command

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewWhoamiCmd creates the whoami command.
func NewWhoamiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			user, err := ctx.Backend.Identity.CurrentUser(context.Background())
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if user == nil {
				return writeCommandError(cmd, fmt.Errorf("not signed in. Run 'nv init' first"))
			}

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(user)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "@%s (%s)\n", ctx.Config.Username, user.ID)
			if user.Email != "" {
				confirmed := "unconfirmed"
				if user.EmailConfirmed {
					confirmed = "confirmed"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", user.Email, confirmed)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "role: %s\n", ctx.Config.Role)
			return nil
		},
	}
	return cmd
}
