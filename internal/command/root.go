package command

import (
	"os"

	"github.com/spf13/cobra"
)

const AppName = "nv"

// Version is overwritten at build time using -ldflags.
var Version = "dev"

func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "Navio - freight logistics chat workspace",
		Long:          "Navio is the terminal client for the Navio freight-logistics chat workspace.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().Bool("json", false, "output in JSON format")

	cmd.AddCommand(
		NewInitCmd(),
		NewChatCmd(),
		NewPostCmd(),
		NewReactCmd(),
		NewMsgCmd(),
		NewActCmd(),
		NewNavCmd(),
		NewRoomsCmd(),
		NewRoomCmd(),
		NewTabsCmd(),
		NewNotifsCmd(),
		NewWhoamiCmd(),
	)

	return cmd
}

func Execute() error {
	return NewRootCmd(Version).Execute()
}
