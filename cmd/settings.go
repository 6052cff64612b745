package cmd

import (
	"context"
	"fmt"

	grovelogging "github.com/mattsolo1/grove-core/logging"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	cmdconfig "github.com/mattsolo1/grove-notetree/cmd/config"
)

var settingsUlog = grovelogging.NewUnifiedLogger("grove-notetree.cmd.settings")

// NewSettingsCmd creates the `nt settings` command group.
func NewSettingsCmd(rt *cmdconfig.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or edit settings",
	}
	cmd.AddCommand(newSettingsShowCmd(rt))
	cmd.AddCommand(newSettingsPathCmd(rt))
	cmd.AddCommand(newSettingsEditCmd(rt))
	return cmd
}

func newSettingsShowCmd(rt *cmdconfig.Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(rt.Store.AllSettings())
			if err != nil {
				return fmt.Errorf("failed to marshal settings: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newSettingsPathCmd(rt *cmdconfig.Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the settings file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), rt.Store.ConfigFile())
			return nil
		},
	}
}

func newSettingsEditCmd(rt *cmdconfig.Runtime) *cobra.Command {
	var noEdit bool

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Open the settings file in your editor, creating it if needed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.Service(rt.ExternalHost(!noEdit))
			if err != nil {
				return err
			}
			path, err := svc.OpenSettings(context.Background())
			if err != nil {
				return err
			}
			settingsUlog.Info("Settings file").
				Field("path", path).
				Pretty(path).
				PrettyOnly().
				Emit()
			return nil
		},
	}

	cmd.Flags().BoolVar(&noEdit, "no-edit", false, "Only create the file")
	return cmd
}
