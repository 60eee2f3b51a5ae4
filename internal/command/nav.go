package command

import (
	"encoding/json"
	"fmt"

	"github.com/naviohq/navio/internal/nav"
	"github.com/naviohq/navio/internal/types"
	"github.com/spf13/cobra"
)

// NewNavCmd creates the navigation history command.
func NewNavCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nav",
		Short: "Show or move the session navigation history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			history := openHistory(ctx)
			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(types.HistoryState{
					Back:    history.Back(),
					Forward: history.Forward(),
					Current: history.Current(),
				})
			}

			if history.Current() == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No navigation history.")
				return nil
			}
			for _, path := range history.Back() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", path)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "> %s\n", history.Current())
			forward := history.Forward()
			for i := len(forward) - 1; i >= 0; i-- {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s (forward)\n", forward[i])
			}
			return nil
		},
	}

	cmd.AddCommand(newNavGoCmd(), newNavBackCmd(), newNavForwardCmd())
	return cmd
}

func openHistory(ctx *CommandContext) *nav.History {
	return nav.New(nav.NewFileStorage(ctx.Config.StateDir))
}

func newNavGoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "go <path>",
		Short: "Navigate to a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			history := openHistory(ctx)
			history.Navigate(args[0])
			fmt.Fprintln(cmd.OutOrStdout(), history.Current())
			return nil
		},
	}
}

func newNavBackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "back",
		Short: "Go back one entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			history := openHistory(ctx)
			target := history.GoBack()
			if target == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to go back to.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), target)
			return nil
		},
	}
}

func newNavForwardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forward",
		Short: "Go forward one entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			history := openHistory(ctx)
			target := history.GoForward()
			if target == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to go forward to.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), target)
			return nil
		},
	}
}
