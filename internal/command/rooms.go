package command

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/naviohq/navio/internal/db"
	"github.com/naviohq/navio/internal/types"
	"github.com/spf13/cobra"
)

// NewRoomsCmd creates the rooms listing command.
func NewRoomsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "List rooms you are a member of",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			rooms, err := db.ListRooms(ctx.DB, ctx.Config.UserID)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(rooms)
			}
			if len(rooms) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No rooms. Use 'nv room new' to create one.")
				return nil
			}
			for _, room := range rooms {
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %-9s %s\n", room.ID, room.Kind, room.Name)
			}
			return nil
		},
	}
	return cmd
}

// NewRoomCmd creates the room management command.
func NewRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Manage rooms",
	}
	cmd.AddCommand(newRoomNewCmd(), newRoomDMCmd(), newRoomInviteCmd())
	return cmd
}

func newRoomNewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a group room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			kindFlag, _ := cmd.Flags().GetString("kind")
			kind := types.RoomKind(kindFlag)
			if kind != types.RoomKindChat && kind != types.RoomKindShipment {
				return writeCommandError(cmd, fmt.Errorf("unknown room kind: %s", kindFlag))
			}

			self := types.Member{
				UserID:      ctx.Config.UserID,
				Username:    ctx.Config.Username,
				DisplayName: ctx.Config.DisplayName,
			}
			room, err := ctx.Backend.Procedures.CreateGroupRoom(context.Background(), args[0], kind, []types.Member{self})
			if err != nil {
				return writeCommandError(cmd, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s room %s (%s)\n", room.Kind, room.Name, room.ID)
			return nil
		},
	}
	cmd.Flags().String("kind", string(types.RoomKindChat), "room kind (chat|shipment)")
	return cmd
}

func newRoomDMCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dm <username>",
		Short: "Open (or create) a direct room with a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			self := types.Member{
				UserID:      ctx.Config.UserID,
				Username:    ctx.Config.Username,
				DisplayName: ctx.Config.DisplayName,
			}
			other := types.Member{
				UserID:   "usr-" + args[0],
				Username: args[0],
			}
			room, err := ctx.Backend.Procedures.GetOrCreateDirectRoom(context.Background(), self, other)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", room.Name, room.ID)
			return nil
		},
	}
	return cmd
}

func newRoomInviteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invite <room> <username>",
		Short: "Add a member to a room",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			room, err := ctx.ResolveRoom(args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}

			userID, _ := cmd.Flags().GetString("user-id")
			if userID == "" {
				userID = "usr-" + args[1]
			}
			if err := db.AddMember(ctx.DB, types.Member{
				RoomID:   room.ID,
				UserID:   userID,
				Username: args[1],
			}); err != nil {
				return writeCommandError(cmd, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added @%s to %s\n", args[1], room.Name)
			return nil
		},
	}
	cmd.Flags().String("user-id", "", "explicit user guid for the invitee")
	return cmd
}
