package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattsolo1/grove-core/tui/theme"
	"github.com/spf13/cobra"

	cmdconfig "github.com/mattsolo1/grove-notetree/cmd/config"
	"github.com/mattsolo1/grove-notetree/pkg/frontmatter"
	"github.com/mattsolo1/grove-notetree/pkg/service"
	"github.com/mattsolo1/grove-notetree/pkg/tree"
)

type listedEntry struct {
	Name     string         `json:"name"`
	Path     string         `json:"path"`
	Kind     tree.Kind      `json:"kind"`
	Title    string         `json:"title,omitempty"`
	Children []*listedEntry `json:"children,omitempty"`

	icon string
}

func NewListCmd(rt *cmdconfig.Runtime) *cobra.Command {
	var (
		depth      int
		jsonOut    bool
		showTitles bool
	)

	cmd := &cobra.Command{
		Use:     "list [folder]",
		Short:   "List the notes tree",
		Aliases: []string{"ls"},
		Long: `List folders and notes under the notes root, folders first.

Examples:
  nt ls              # Top level of the notes root
  nt ls work         # Contents of the work folder
  nt ls -d 0         # The whole tree
  nt ls --titles     # Show note titles next to file names`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, err := rt.Service(rt.ExternalHost(false))
			if err != nil {
				return err
			}

			var start *tree.Node
			if len(args) == 1 {
				start, err = resolveNode(svc, args[0])
				if err != nil {
					return err
				}
			}

			entries, err := walk(ctx, svc, start, depth, showTitles || jsonOut)
			if err != nil {
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), theme.DefaultTheme.Muted.Render("(empty)"))
				return nil
			}
			printEntries(cmd.OutOrStdout(), entries, 0, showTitles)
			return nil
		},
	}

	cmd.Flags().IntVarP(&depth, "depth", "d", 1, "Levels to descend (0 for unlimited)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&showTitles, "titles", false, "Show note titles")

	return cmd
}

// walk lists node and, while depth allows, its subfolders.
func walk(ctx context.Context, svc *service.Service, node *tree.Node, depth int, titles bool) ([]*listedEntry, error) {
	children, err := svc.Tree.Children(ctx, node)
	if err != nil {
		return nil, err
	}

	out := make([]*listedEntry, 0, len(children))
	for _, child := range children {
		e := &listedEntry{
			Name: child.Name,
			Path: child.Path,
			Kind: child.Kind,
			icon: svc.Tree.DisplayItem(child).Icon,
		}
		if child.IsFolder() && depth != 1 {
			e.Children, err = walk(ctx, svc, child, max(depth-1, 0), titles)
			if err != nil {
				return nil, err
			}
		}
		if child.IsFile() && titles {
			if data, err := os.ReadFile(child.Path); err == nil {
				e.Title = frontmatter.Title(string(data), child.Path)
			}
		}
		out = append(out, e)
	}
	return out, nil
}

func printEntries(w io.Writer, entries []*listedEntry, level int, titles bool) {
	indent := strings.Repeat("  ", level)
	for _, e := range entries {
		name := e.Name
		if e.Kind == tree.KindFolder {
			name += "/"
		}

		line := fmt.Sprintf("%s%s %s", indent, iconGlyph(e.icon), name)
		if titles && e.Title != "" {
			line += "  " + theme.DefaultTheme.Muted.Render(e.Title)
		}
		fmt.Fprintln(w, line)
		printEntries(w, e.Children, level+1, titles)
	}
}
