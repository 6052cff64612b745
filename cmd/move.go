package cmd

import (
	"context"
	"fmt"

	grovelogging "github.com/mattsolo1/grove-core/logging"
	"github.com/spf13/cobra"

	cmdconfig "github.com/mattsolo1/grove-notetree/cmd/config"
)

var moveUlog = grovelogging.NewUnifiedLogger("grove-notetree.cmd.move")

func NewMoveCmd(rt *cmdconfig.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rename <path> [new-name]",
		Aliases: []string{"mv"},
		Short:   "Rename a note or folder in place",
		Long: `Rename a note or folder without moving it to another folder.

A note renamed without an extension gets the default extension appended
(notes.append_extension_on_rename).

Examples:
  nt mv work/todo.md done       # work/done.md
  nt mv work job                # folder rename`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			newName, err := nameArg(cmd, args[1:], "New name")
			if err != nil {
				return err
			}

			svc, err := rt.Service(rt.ExternalHost(false))
			if err != nil {
				return err
			}
			node, err := resolveNode(svc, args[0])
			if err != nil {
				return err
			}
			if node == nil {
				return fmt.Errorf("refusing to rename the notes root")
			}

			renamed, err := svc.RenameEntry(ctx, node, newName)
			if err != nil {
				return err
			}
			if renamed == nil {
				return nil
			}

			moveUlog.Success("Renamed").
				Field("from", node.Path).
				Field("to", renamed.Path).
				Pretty(fmt.Sprintf("Renamed: %s -> %s", args[0], relPath(svc, renamed.Path))).
				PrettyOnly().
				Emit()
			return nil
		},
	}
	return cmd
}
