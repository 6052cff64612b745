package cmd

import (
	"context"
	"fmt"

	grovelogging "github.com/mattsolo1/grove-core/logging"
	"github.com/spf13/cobra"

	cmdconfig "github.com/mattsolo1/grove-notetree/cmd/config"
	"github.com/mattsolo1/grove-notetree/pkg/config"
)

var addUlog = grovelogging.NewUnifiedLogger("grove-notetree.cmd.add")

func NewAddCmd(rt *cmdconfig.Runtime) *cobra.Command {
	var (
		folder   string
		noEdit   bool
		template string
	)

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Create a note",
		Long: `Create an empty note and open it in your editor.

The default extension (notes.default_extension) is appended when the name
has none. Without --in the note goes to the notes root. With a template
(notes.template or --template) the note starts with the rendered template;
templates are Go text/templates with sprig functions and see .Name, .Title,
.Folder and .Path.

Examples:
  nt add groceries             # <root>/groceries.md
  nt add standup --in work     # <root>/work/standup.md
  nt add todo.txt --no-edit
  nt add retro --template ~/.config/nt/retro.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			name, err := nameArg(cmd, args, "Note name")
			if err != nil {
				return err
			}

			if template != "" {
				rt.Store.Set(config.KeyTemplate, template)
			}

			svc, err := rt.Service(rt.ExternalHost(!noEdit))
			if err != nil {
				return err
			}
			target, err := resolveNode(svc, folder)
			if err != nil {
				return err
			}
			if folder != "" && !target.IsFolder() {
				return fmt.Errorf("--in %s is not a folder", folder)
			}

			node, err := svc.AddNote(ctx, target, name)
			if err != nil {
				return err
			}
			if node == nil {
				return nil
			}

			addUlog.Success("Note created").
				Field("path", node.Path).
				Pretty(fmt.Sprintf("Created: %s", relPath(svc, node.Path))).
				PrettyOnly().
				Emit()
			return nil
		},
	}

	cmd.Flags().StringVar(&folder, "in", "", "Folder to create the note in, relative to the notes root")
	cmd.Flags().BoolVar(&noEdit, "no-edit", false, "Don't open editor after creating")
	cmd.Flags().StringVar(&template, "template", "", "Template to render into the new note (overrides notes.template)")

	return cmd
}
