package sidebar

import (
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/mattsolo1/grove-core/tui/components/help"

	"github.com/mattsolo1/grove-notetree/internal/tui/sidebar/components/confirm"
	"github.com/mattsolo1/grove-notetree/pkg/editor"
	"github.com/mattsolo1/grove-notetree/pkg/service"
	"github.com/mattsolo1/grove-notetree/pkg/tree"
)

type focusArea int

const (
	focusTree focusArea = iota
	focusEditor
)

type promptKind int

const (
	promptNone promptKind = iota
	promptAddNote
	promptAddFolder
	promptRename
)

const (
	actionQuit     = "quit"
	actionCloseTab = "close-tab"
)

// row is one visible line of the tree pane.
type row struct {
	node  *tree.Node
	depth int
	item  tree.DisplayItem
}

// DirWatcher follows the folders currently shown in the tree.
type DirWatcher interface {
	Reset(dirs []string)
}

// Options configures the sidebar.
type Options struct {
	// Watcher, when set, is re-targeted at the root and every expanded
	// folder after each reload.
	Watcher DirWatcher
}

// hooks holds state shared by every copy of the model.
type hooks struct {
	events      chan tea.Msg
	unsubscribe []func()
}

// Model is the notes sidebar: a tree pane next to a tabbed editor.
type Model struct {
	svc     *service.Service
	ws      *editor.Workspace
	watcher DirWatcher
	hooks   *hooks

	keys   KeyMap
	help   help.Model
	width  int
	height int
	focus  focusArea

	// Tree pane
	root         string
	listing      map[string][]*tree.Node
	expanded     map[string]bool
	rows         []row
	cursor       int
	scrollOffset int
	cursorPath   string // row to select after the next rebuild
	loaded       bool

	// Editor pane
	editor      textarea.Model
	editingPath string

	// Preview pane
	showPreview bool
	preview     viewport.Model
	renderer    *glamour.TermRenderer
	renderID    int
	previewPath string

	// Prompt state
	prompt       promptKind
	input        textinput.Model
	promptTarget *tree.Node

	confirm       confirm.Model
	pendingRef    string
	statusMessage string
}

// New creates the sidebar for svc, editing documents in ws. ws must be the
// host svc was built with.
func New(svc *service.Service, ws *editor.Workspace, opts Options) Model {
	helpModel := help.NewBuilder().
		WithKeys(keys).
		WithTitle("Notes - Help").
		Build()

	ta := textarea.New()
	ta.Placeholder = "Open a note from the tree..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0

	input := textinput.New()
	input.CharLimit = 200
	input.Width = 40

	h := &hooks{events: make(chan tea.Msg, 1)}
	h.unsubscribe = append(h.unsubscribe, svc.Tree.OnDidChange(func(*tree.Node) {
		select {
		case h.events <- treeChangedMsg{}:
		default:
		}
	}))

	return Model{
		svc:      svc,
		ws:       ws,
		watcher:  opts.Watcher,
		hooks:    h,
		keys:     keys,
		help:     helpModel,
		listing:  make(map[string][]*tree.Node),
		expanded: make(map[string]bool),
		editor:   ta,
		preview:  viewport.New(0, 0),
		input:    input,
		confirm:  confirm.New(),
	}
}

// Init loads the tree and starts listening for refreshes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadTreeCmd(m.svc, m.expandedPaths()),
		waitForEvent(m.hooks.events),
		initRendererCmd(),
	)
}

// Close drops the model's subscriptions.
func (m Model) Close() {
	for _, fn := range m.hooks.unsubscribe {
		fn()
	}
	m.hooks.unsubscribe = nil
}

// selected returns the node under the cursor, or nil.
func (m Model) selected() *tree.Node {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].node
}

func (m Model) expandedPaths() []string {
	out := make([]string, 0, len(m.expanded))
	for p := range m.expanded {
		out = append(out, p)
	}
	return out
}

// --- Messages ---

// treeChangedMsg is sent when the tree model fires a refresh.
type treeChangedMsg struct{}

// treeLoadedMsg carries the listing of the root and every expanded folder.
type treeLoadedMsg struct {
	root    string
	listing map[string][]*tree.Node
	err     error
}

// opDoneMsg is sent after a command-layer operation finished. target is the
// node the prompt was opened on when the operation was issued.
type opDoneMsg struct {
	op     promptKind
	target *tree.Node
	name   string
	node   *tree.Node
	err    error
}

// deletedMsg is sent after an entry was deleted.
type deletedMsg struct {
	node *tree.Node
	err  error
}

// settingsOpenedMsg is sent after the settings file was opened.
type settingsOpenedMsg struct {
	path string
	err  error
}

// rendererReadyMsg delivers the shared markdown renderer.
type rendererReadyMsg struct {
	renderer *glamour.TermRenderer
}

// previewRenderedMsg carries a rendered preview for request id.
type previewRenderedMsg struct {
	id      int
	path    string
	content string
}
