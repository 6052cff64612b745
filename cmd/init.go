package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	cmdconfig "github.com/mattsolo1/grove-notetree/cmd/config"
	"github.com/mattsolo1/grove-notetree/pkg/config"
)

func NewInitCmd(rt *cmdconfig.Runtime) *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the settings file and the notes root",
		Long: `Initialize nt by writing a settings file and creating the notes root.

This command will:
- Write the settings file if it does not exist yet
- Record --root as notes.root_dir when given
- Create the notes root directory`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if root != "" {
				rt.Store.Set(config.KeyRootDir, root)
				if err := rt.Store.Write(); err != nil {
					return err
				}
			} else if _, err := rt.Store.EnsureFile(); err != nil {
				return err
			}

			svc, err := rt.Service(rt.ExternalHost(false))
			if err != nil {
				return err
			}
			notesRoot, err := svc.EnsureRoot()
			if err != nil {
				return fmt.Errorf("could not create notes root: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Settings: %s\n", rt.Store.ConfigFile())
			fmt.Fprintf(out, "Notes root: %s\n", notesRoot)
			fmt.Fprintln(out, "\nReady to use! Try 'nt add' to create your first note.")
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "Notes root directory to record in the settings file")

	return cmd
}
