package cmd

import (
	"context"
	"fmt"

	grovelogging "github.com/mattsolo1/grove-core/logging"
	"github.com/spf13/cobra"

	cmdconfig "github.com/mattsolo1/grove-notetree/cmd/config"
)

var mkdirUlog = grovelogging.NewUnifiedLogger("grove-notetree.cmd.mkdir")

func NewMkdirCmd(rt *cmdconfig.Runtime) *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "mkdir [name]",
		Short: "Create a folder",
		Long: `Create a folder at the notes root.

--in is honoured only when notes.nested_folders is enabled.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			name, err := nameArg(cmd, args, "Folder name")
			if err != nil {
				return err
			}

			svc, err := rt.Service(rt.ExternalHost(false))
			if err != nil {
				return err
			}
			target, err := resolveNode(svc, parent)
			if err != nil {
				return err
			}

			node, err := svc.AddFolder(ctx, target, name)
			if err != nil {
				return err
			}
			if node == nil {
				return nil
			}

			mkdirUlog.Success("Folder created").
				Field("path", node.Path).
				Pretty(fmt.Sprintf("Created: %s/", relPath(svc, node.Path))).
				PrettyOnly().
				Emit()
			return nil
		},
	}

	cmd.Flags().StringVar(&parent, "in", "", "Parent folder, relative to the notes root")

	return cmd
}
