package command

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/naviohq/navio/internal/codec"
	"github.com/naviohq/navio/internal/composer"
	"github.com/naviohq/navio/internal/db"
	"github.com/spf13/cobra"
)

// NewPostCmd creates the post command.
func NewPostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post <text>",
		Short: "Post a message to a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			roomRef, _ := cmd.Flags().GetString("room")
			replyTo, _ := cmd.Flags().GetString("reply-to")

			room, err := ctx.ResolveRoom(roomRef)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			members, err := db.GetMembers(ctx.DB, room.ID)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			comp := composer.New()
			text := args[0]
			comp.SetText(text, len([]rune(text)))
			for _, member := range members {
				if strings.Contains(text, "@"+member.Username) {
					comp.AddMention(member.Username, member.UserID)
				}
			}

			if replyTo != "" {
				trimmed := strings.TrimSpace(strings.TrimPrefix(replyTo, "#"))
				target, err := db.GetMessage(ctx.DB, trimmed)
				if err != nil {
					return writeCommandError(cmd, err)
				}
				if target == nil {
					return writeCommandError(cmd, fmt.Errorf("message %s not found", trimmed))
				}
				comp.SetReply(target)
			}

			submitter := &composer.Submitter{
				Identity: ctx.Backend.Identity,
				Objects:  ctx.Backend.Objects,
				Store:    dbSubmitStore{ctx.DB},
				Bus:      ctx.Bus,
			}

			msg, err := submitter.Submit(context.Background(), *room, comp)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if msg == nil {
				return writeCommandError(cmd, fmt.Errorf("nothing to send"))
			}

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(msg)
			}
			env := codec.Decode(msg.Body)
			fmt.Fprintf(cmd.OutOrStdout(), "%s → %s: %s\n", msg.ID, room.Name, env.VisibleText)
			return nil
		},
	}

	cmd.Flags().String("room", "", "target room (guid or name)")
	cmd.Flags().String("reply-to", "", "message to reply to")
	return cmd
}
