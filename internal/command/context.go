package command

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/naviohq/navio/internal/backend"
	"github.com/naviohq/navio/internal/core"
	"github.com/naviohq/navio/internal/db"
	"github.com/naviohq/navio/internal/realtime"
	"github.com/naviohq/navio/internal/types"
	"github.com/spf13/cobra"
)

// CommandContext provides shared command resources.
type CommandContext struct {
	Config   core.Config
	DB       *sql.DB
	Bus      *realtime.Bus
	Backend  *backend.Backend
	JSONMode bool
}

// GetContext opens the workspace for a command. The caller closes DB.
func GetContext(cmd *cobra.Command) (*CommandContext, error) {
	jsonMode, _ := cmd.Flags().GetBool("json")

	config, err := core.ReadConfig()
	if err != nil {
		return nil, err
	}
	if config == nil {
		return nil, fmt.Errorf("workspace not initialized. Run 'nv init' first")
	}

	stateDir := config.StateDir
	if stateDir == "" {
		stateDir, err = core.DefaultStateDir()
		if err != nil {
			return nil, err
		}
		config.StateDir = stateDir
	}

	conn, err := db.Open(core.DBPath(stateDir))
	if err != nil {
		return nil, err
	}

	bus := realtime.NewBus()
	return &CommandContext{
		Config:   *config,
		DB:       conn,
		Bus:      bus,
		Backend:  backend.NewLocal(config, conn, stateDir),
		JSONMode: jsonMode,
	}, nil
}

// ResolveRoom accepts a room guid or a room name.
func (ctx *CommandContext) ResolveRoom(ref string) (*types.Room, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		ref = ctx.Config.DefaultRoom
	}
	if ref == "" {
		return nil, fmt.Errorf("no room given and no default_room configured")
	}

	room, err := db.GetRoom(ctx.DB, ref)
	if err != nil {
		return nil, err
	}
	if room != nil {
		return room, nil
	}

	rooms, err := db.ListRooms(ctx.DB, ctx.Config.UserID)
	if err != nil {
		return nil, err
	}
	for _, candidate := range rooms {
		if strings.EqualFold(candidate.Name, ref) {
			found := candidate
			return &found, nil
		}
	}
	return nil, fmt.Errorf("room not found: %s", ref)
}

func writeCommandError(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
	return err
}
