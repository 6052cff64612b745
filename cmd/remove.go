package cmd

import (
	"context"
	"fmt"

	grovelogging "github.com/mattsolo1/grove-core/logging"
	"github.com/spf13/cobra"

	cmdconfig "github.com/mattsolo1/grove-notetree/cmd/config"
)

var removeUlog = grovelogging.NewUnifiedLogger("grove-notetree.cmd.remove")

func NewRemoveCmd(rt *cmdconfig.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove <path>",
		Aliases: []string{"rm"},
		Short:   "Delete a note or folder",
		Long: `Delete a note, or a folder with everything in it.

There is no confirmation and no undo.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, err := rt.Service(rt.ExternalHost(false))
			if err != nil {
				return err
			}
			node, err := resolveNode(svc, args[0])
			if err != nil {
				return err
			}
			if node == nil {
				return fmt.Errorf("refusing to delete the notes root")
			}

			if err := svc.DeleteEntry(ctx, node); err != nil {
				return err
			}
			removeUlog.Success("Deleted").
				Field("path", node.Path).
				Pretty(fmt.Sprintf("Deleted: %s", args[0])).
				PrettyOnly().
				Emit()
			return nil
		},
	}
	return cmd
}
