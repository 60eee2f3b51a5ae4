package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/naviohq/navio/internal/card"
	"github.com/naviohq/navio/internal/codec"
	"github.com/naviohq/navio/internal/db"
	"github.com/naviohq/navio/internal/nav"
	"github.com/spf13/cobra"
)

// historyNavigator routes card navigation actions into the session
// history stack, so "open" actions land where nv nav can retrace them.
type historyNavigator struct {
	history *nav.History
}

func (n historyNavigator) NavigateTo(path string) {
	n.history.Navigate(path)
}

// NewActCmd creates the card action command.
func NewActCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "act <message-id> <action>",
		Short: "Run a card action on a message",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			cardIndex, _ := cmd.Flags().GetInt("card")
			amount, _ := cmd.Flags().GetFloat64("amount")
			assignee, _ := cmd.Flags().GetString("assignee")

			history := openHistory(ctx)
			payload := card.Payload{Amount: amount, Assignee: assignee}
			if err := runCardAction(ctx, historyNavigator{history}, args[0], args[1], cardIndex, payload); err != nil {
				return writeCommandError(cmd, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s → %s\n", args[1], args[0])
			if current := history.Current(); current != "" {
				fmt.Fprintln(cmd.OutOrStdout(), current)
			}
			return nil
		},
	}

	cmd.Flags().Int("card", 0, "card index within the message")
	cmd.Flags().Float64("amount", 0, "amount for counter_offer")
	cmd.Flags().String("assignee", "", "user guid for reassign_task / remind_approval")
	return cmd
}

// runCardAction checks the action against the viewer's role-scoped
// vocabulary and hands it to the dispatcher. Dispatch itself never
// returns an error; only lookup and authorization failures surface here.
func runCardAction(ctx *CommandContext, navigator card.Navigator, messageID, action string, cardIndex int, payload card.Payload) error {
	msg, err := db.GetMessage(ctx.DB, messageID)
	if err != nil {
		return err
	}
	if msg == nil {
		return fmt.Errorf("message not found: %s", messageID)
	}

	env := codec.Decode(msg.Body)
	if len(env.Cards) == 0 {
		return fmt.Errorf("message %s has no cards", msg.ID)
	}
	if cardIndex < 0 || cardIndex >= len(env.Cards) {
		return fmt.Errorf("message %s has %d card(s)", msg.ID, len(env.Cards))
	}
	c := env.Cards[cardIndex]

	allowed := card.ActionsFor(c, card.Role(ctx.Config.Role))
	permitted := false
	for _, a := range allowed {
		if a == action {
			permitted = true
			break
		}
	}
	if !permitted {
		return fmt.Errorf("action %s not available on %s for role %s (have: %s)",
			action, c.CardType(), ctx.Config.Role, strings.Join(allowed, ", "))
	}

	payload.MessageID = msg.ID
	dispatcher := card.NewDispatcher(ctx.Backend.Identity, db.NewStore(ctx.DB), navigator)
	dispatcher.Dispatch(context.Background(), action, c, payload)
	return nil
}
