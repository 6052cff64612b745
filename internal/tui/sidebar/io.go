package sidebar

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/mattsolo1/grove-notetree/pkg/frontmatter"
	"github.com/mattsolo1/grove-notetree/pkg/service"
	"github.com/mattsolo1/grove-notetree/pkg/tree"
)

// waitForEvent delivers the next message pushed by a subscription.
func waitForEvent(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// loadTreeCmd lists the root, then every expanded folder reachable from it.
// Folders are only listed when their parent listing still contains them, so
// a folder removed outside the app is not recreated by the lister.
func loadTreeCmd(svc *service.Service, expanded []string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		root, err := svc.RootPath()
		if err != nil {
			return treeLoadedMsg{err: err}
		}

		want := make(map[string]bool, len(expanded))
		for _, p := range expanded {
			want[p] = true
		}

		listing := make(map[string][]*tree.Node)
		nodes, err := svc.Tree.Children(ctx, nil)
		if err != nil {
			return treeLoadedMsg{root: root, err: err}
		}
		listing[root] = nodes

		queue := append([]*tree.Node(nil), nodes...)
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			if !n.IsFolder() || !want[n.Path] {
				continue
			}
			children, err := svc.Tree.Children(ctx, n)
			if err != nil {
				continue
			}
			listing[n.Path] = children
			queue = append(queue, children...)
		}
		return treeLoadedMsg{root: root, listing: listing}
	}
}

func addNoteCmd(svc *service.Service, target *tree.Node, name string) tea.Cmd {
	return func() tea.Msg {
		node, err := svc.AddNote(context.Background(), target, name)
		return opDoneMsg{op: promptAddNote, target: target, name: name, node: node, err: err}
	}
}

func addFolderCmd(svc *service.Service, parent *tree.Node, name string) tea.Cmd {
	return func() tea.Msg {
		node, err := svc.AddFolder(context.Background(), parent, name)
		return opDoneMsg{op: promptAddFolder, target: parent, name: name, node: node, err: err}
	}
}

func renameCmd(svc *service.Service, node *tree.Node, name string) tea.Cmd {
	return func() tea.Msg {
		renamed, err := svc.RenameEntry(context.Background(), node, name)
		return opDoneMsg{op: promptRename, target: node, name: name, node: renamed, err: err}
	}
}

func deleteCmd(svc *service.Service, node *tree.Node) tea.Cmd {
	return func() tea.Msg {
		return deletedMsg{node: node, err: svc.DeleteEntry(context.Background(), node)}
	}
}

func openSettingsCmd(svc *service.Service) tea.Cmd {
	return func() tea.Msg {
		path, err := svc.OpenSettings(context.Background())
		return settingsOpenedMsg{path: path, err: err}
	}
}

// initRendererCmd creates the shared markdown renderer off the UI loop.
func initRendererCmd() tea.Cmd {
	return func() tea.Msg {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err != nil {
			return rendererReadyMsg{}
		}
		return rendererReadyMsg{renderer: renderer}
	}
}

// renderPreviewCmd renders path as markdown. Without a renderer, or when
// rendering fails, the raw body is shown.
func renderPreviewCmd(path string, id int, renderer *glamour.TermRenderer) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return previewRenderedMsg{id: id, path: path, content: "Error reading file"}
		}
		body := frontmatter.Body(string(data))
		if renderer == nil {
			return previewRenderedMsg{id: id, path: path, content: body}
		}
		out, err := renderer.Render(body)
		if err != nil {
			return previewRenderedMsg{id: id, path: path, content: body}
		}
		return previewRenderedMsg{id: id, path: path, content: out}
	}
}
