package command

import (
	"encoding/json"
	"fmt"

	"github.com/naviohq/navio/internal/db"
	"github.com/naviohq/navio/internal/types"
	"github.com/naviohq/navio/internal/workspace"
	"github.com/spf13/cobra"
)

// NewTabsCmd creates the tabs command.
func NewTabsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tabs",
		Short: "Show or edit the synced workspace tabs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			stored, err := db.GetTabState(ctx.DB, ctx.Config.UserID)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				fmt.Fprintln(cmd.OutOrStdout(), stored)
				return nil
			}

			var state types.WorkspaceState
			if stored != "" {
				if err := json.Unmarshal([]byte(stored), &state); err != nil {
					return writeCommandError(cmd, err)
				}
			}
			if len(state.Tabs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No open tabs.")
				return nil
			}
			for _, tab := range state.Tabs {
				marker := " "
				if state.ActiveTabID != nil && tab.ID == *state.ActiveTabID {
					marker = "*"
				}
				pin := ""
				if tab.Pinned {
					pin = " 📌"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-14s %-6s %s%s\n", marker, tab.ID, tab.Kind, tab.Title, pin)
			}
			return nil
		},
	}

	cmd.AddCommand(newTabsOpenCmd(), newTabsCloseCmd())
	return cmd
}

// withTabSession runs fn against a workspace session backed by the
// profile field and flushes the result.
func withTabSession(ctx *CommandContext, fn func(*workspace.Manager)) error {
	stored, err := db.GetTabState(ctx.DB, ctx.Config.UserID)
	if err != nil {
		return err
	}
	session := workspace.NewSession(ctx.Config.UserID, stored, ctx.Bus, func(userID, state string) error {
		return db.SetTabState(ctx.DB, userID, state)
	})
	fn(session.Manager)
	session.Close()
	return nil
}

func newTabsOpenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open <title>",
		Short: "Open a workspace tab",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			kind, _ := cmd.Flags().GetString("kind")
			pinned, _ := cmd.Flags().GetBool("pin")

			var id string
			err = withTabSession(ctx, func(m *workspace.Manager) {
				id = m.Open(types.Tab{
					Kind:   types.TabKind(kind),
					Title:  args[0],
					Pinned: pinned,
				})
			})
			if err != nil {
				return writeCommandError(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().String("kind", string(types.TabKindCells), "tab kind (cells|docs|board)")
	cmd.Flags().Bool("pin", false, "pin the tab")
	return cmd
}

func newTabsCloseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close <tab-id>",
		Short: "Close a workspace tab",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			err = withTabSession(ctx, func(m *workspace.Manager) {
				m.Close(args[0])
			})
			if err != nil {
				return writeCommandError(cmd, err)
			}
			return nil
		},
	}
	return cmd
}
