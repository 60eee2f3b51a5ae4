package command

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/naviohq/navio/internal/card"
	"github.com/naviohq/navio/internal/codec"
	"github.com/naviohq/navio/internal/db"
	"github.com/naviohq/navio/internal/events"
	"github.com/naviohq/navio/internal/types"
	"github.com/spf13/cobra"
)

// NewMsgCmd creates the message detail command.
func NewMsgCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "msg <message-id>",
		Short: "Show a message with its reactions and receipts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			msg, err := db.GetMessage(ctx.DB, args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if msg == nil {
				return writeCommandError(cmd, fmt.Errorf("message not found: %s", args[0]))
			}

			members, err := db.GetMembers(ctx.DB, msg.RoomID)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			names := make(map[string]string, len(members))
			for _, m := range members {
				name := m.DisplayName
				if name == "" {
					name = m.Username
				}
				names[m.UserID] = name
			}

			agg := events.NewAggregator(ctx.Bus,
				func(id string) ([]types.Event, error) {
					return db.GetEventsForMessage(ctx.DB, id)
				},
				func(actorID string) (string, bool) {
					name, ok := names[actorID]
					return name, ok
				},
				nil)
			defer agg.Close()
			if err := agg.SetMessage(msg.ID); err != nil {
				return writeCommandError(cmd, err)
			}
			summary := agg.Summary()

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(struct {
					Message types.Message  `json:"message"`
					Summary events.Summary `json:"summary"`
				}{*msg, summary})
			}

			printMessageDetail(cmd, ctx, *msg, names, summary)
			return nil
		},
	}
	return cmd
}

func printMessageDetail(cmd *cobra.Command, ctx *CommandContext, msg types.Message, names map[string]string, summary events.Summary) {
	out := cmd.OutOrStdout()
	author := names[msg.Author]
	if author == "" {
		author = msg.Author
	}
	fmt.Fprintf(out, "%s · %s · %s\n", msg.ID, author, msg.CreatedAt)

	env := codec.Decode(msg.Body)
	if env.ReplyTo != nil {
		fmt.Fprintf(out, "  ↪ reply to %s\n", *env.ReplyTo)
	}
	if env.VisibleText != "" {
		text := env.VisibleText
		if env.Edited {
			text += " (edited)"
		}
		for _, line := range strings.Split(text, "\n") {
			fmt.Fprintf(out, "  %s\n", line)
		}
	}
	for _, c := range env.Cards {
		view := card.Render(c, card.Role(ctx.Config.Role))
		fmt.Fprintf(out, "  ▣ %s\n", view.Title)
	}
	for _, a := range env.Attachments {
		label := a.Name
		if a.URL == "" {
			label += " (upload failed)"
		}
		fmt.Fprintf(out, "  📎 %s\n", label)
	}

	for _, emoji := range summary.ReactionOrder {
		fmt.Fprintf(out, "%s %s\n", emoji, actorNames(summary.Reactions[emoji]))
	}
	if len(summary.Receipts) > 0 {
		fmt.Fprintf(out, "seen by %s\n", actorNames(summary.Receipts))
	}
	if len(summary.Pins) > 0 {
		fmt.Fprintf(out, "pinned by %s\n", actorNames(summary.Pins))
	}
	if len(summary.Stars) > 0 {
		fmt.Fprintf(out, "starred by %s\n", actorNames(summary.Stars))
	}
}

func actorNames(actors []types.Actor) string {
	parts := make([]string, len(actors))
	for i, a := range actors {
		parts[i] = a.Name
	}
	return strings.Join(parts, ", ")
}
