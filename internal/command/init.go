package command

import (
	"fmt"
	"strings"

	"github.com/naviohq/navio/internal/core"
	"github.com/naviohq/navio/internal/db"
	"github.com/naviohq/navio/internal/types"
	"github.com/spf13/cobra"
)

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <username>",
		Short: "Initialize the workspace and sign in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := strings.ToLower(strings.TrimSpace(args[0]))
			if username == "" {
				return writeCommandError(cmd, fmt.Errorf("username required"))
			}

			email, _ := cmd.Flags().GetString("email")
			displayName, _ := cmd.Flags().GetString("name")
			role, _ := cmd.Flags().GetString("role")
			stateDir, _ := cmd.Flags().GetString("state-dir")

			if stateDir == "" {
				var err error
				stateDir, err = core.DefaultStateDir()
				if err != nil {
					return writeCommandError(cmd, err)
				}
			}

			conn, err := db.Open(core.DBPath(stateDir))
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer conn.Close()

			existing, err := core.ReadConfig()
			if err != nil {
				return writeCommandError(cmd, err)
			}
			userID := core.MustGUID("usr")
			if existing != nil && existing.UserID != "" {
				userID = existing.UserID
			}

			if err := db.UpsertProfile(conn, types.Profile{
				UserID:      userID,
				Email:       email,
				DisplayName: displayName,
			}); err != nil {
				return writeCommandError(cmd, err)
			}

			config := core.Config{
				UserID:      userID,
				Username:    username,
				DisplayName: displayName,
				Email:       email,
				Role:        role,
				StateDir:    stateDir,
			}
			if err := core.WriteConfig(config); err != nil {
				return writeCommandError(cmd, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized workspace for @%s (%s)\n", username, userID)
			fmt.Fprintf(cmd.OutOrStdout(), "State dir: %s\n", stateDir)
			return nil
		},
	}

	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("name", "", "display name")
	cmd.Flags().String("role", "ops", "room role (shipper|carrier|ops|finance|viewer)")
	cmd.Flags().String("state-dir", "", "override the state directory")
	return cmd
}
