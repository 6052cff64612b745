package main

import (
	"os"

	"github.com/mattsolo1/grove-core/cli"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-notetree/cmd"
	cmdconfig "github.com/mattsolo1/grove-notetree/cmd/config"
)

func main() {
	rt := &cmdconfig.Runtime{}

	rootCmd := cli.NewStandardCommand(
		"nt",
		"A folder-backed notes tree with an editor sidebar",
	)
	cmdconfig.AddGlobalFlags(rootCmd, rt)

	rootCmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		// This runs once before any subcommand
		return rt.Init(c)
	}

	// Add subcommands
	rootCmd.AddCommand(cmd.NewInitCmd(rt))
	rootCmd.AddCommand(cmd.NewListCmd(rt))
	rootCmd.AddCommand(cmd.NewAddCmd(rt))
	rootCmd.AddCommand(cmd.NewMkdirCmd(rt))
	rootCmd.AddCommand(cmd.NewRemoveCmd(rt))
	rootCmd.AddCommand(cmd.NewMoveCmd(rt))
	rootCmd.AddCommand(cmd.NewSettingsCmd(rt))
	rootCmd.AddCommand(cmd.NewDoctorCmd(rt))
	rootCmd.AddCommand(cmd.NewTuiCmd(rt))
	rootCmd.AddCommand(cmd.NewVersionCmd())

	err := rootCmd.Execute()
	if ferr := rt.Finish(); ferr != nil {
		rt.Entry().WithError(ferr).Warn("failed to report metrics")
	}
	if err != nil {
		os.Exit(1)
	}
}
