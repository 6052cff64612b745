package sidebar

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattsolo1/grove-notetree/internal/tui/sidebar/components/confirm"
	"github.com/mattsolo1/grove-notetree/pkg/notefs"
	"github.com/mattsolo1/grove-notetree/pkg/tree"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.SetSize(msg.Width, msg.Height)
		m.layout()
		return m, nil

	case treeChangedMsg:
		return m, tea.Batch(
			loadTreeCmd(m.svc, m.expandedPaths()),
			waitForEvent(m.hooks.events),
		)

	case treeLoadedMsg:
		if msg.root != "" {
			m.root = msg.root
		}
		if msg.err != nil {
			m.listing = make(map[string][]*tree.Node)
			m.rebuildRows("")
			m.statusMessage = fmt.Sprintf("Error listing notes: %v", msg.err)
			return m, nil
		}
		m.loaded = true
		m.listing = msg.listing
		m.pruneExpanded()
		m.rebuildRows("")
		if m.watcher != nil {
			m.watcher.Reset(m.watchedDirs())
		}
		return m, m.previewCmd()

	case opDoneMsg:
		return m.handleOpDone(msg)

	case deletedMsg:
		if msg.err != nil {
			m.statusMessage = fmt.Sprintf("Error deleting: %v", msg.err)
			return m, nil
		}
		if msg.node != nil {
			m.statusMessage = fmt.Sprintf("Deleted %s", msg.node.Name)
			m.forgetExpanded(msg.node.Path)
		}
		m.syncEditor()
		return m, loadTreeCmd(m.svc, m.expandedPaths())

	case settingsOpenedMsg:
		if msg.err != nil {
			m.statusMessage = fmt.Sprintf("Error opening settings: %v", msg.err)
			return m, nil
		}
		m.statusMessage = fmt.Sprintf("Editing settings: %s", shortenPath(msg.path))
		m.syncEditor()
		return m, m.setFocus(focusEditor)

	case rendererReadyMsg:
		m.renderer = msg.renderer
		m.previewPath = ""
		return m, m.previewCmd()

	case previewRenderedMsg:
		if msg.id == m.renderID {
			m.preview.SetContent(msg.content)
		}
		return m, nil

	case confirm.ConfirmedMsg:
		switch msg.Action {
		case actionQuit:
			if err := m.saveAll(); err != nil {
				m.statusMessage = fmt.Sprintf("Error saving: %v", err)
				return m, nil
			}
			return m, tea.Quit
		case actionCloseTab:
			m.closeTab(m.pendingRef)
		}
		m.pendingRef = ""
		return m, nil

	case confirm.CancelledMsg:
		m.pendingRef = ""
		m.statusMessage = ""
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Cursor blinks and other ticks go to whichever input has focus.
	if m.prompt != promptNone {
		m.input, cmd = m.input.Update(msg)
	} else if m.focus == focusEditor {
		m.editor, cmd = m.editor.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll {
		m.help.Toggle()
		return m, nil
	}
	if m.confirm.Active {
		var cmd tea.Cmd
		m.confirm, cmd = m.confirm.Update(msg)
		return m, cmd
	}
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, tea.Quit
	}
	if m.prompt != promptNone {
		return m.handlePromptKey(msg)
	}
	if m.focus == focusEditor {
		return m.handleEditorKey(msg)
	}
	return m.handleTreeKey(msg)
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		kind, target, name := m.prompt, m.promptTarget, m.input.Value()
		m.closePrompt()
		switch kind {
		case promptAddNote:
			return m, addNoteCmd(m.svc, target, name)
		case promptAddFolder:
			return m, addFolderCmd(m.svc, target, name)
		case promptRename:
			return m, renameCmd(m.svc, target, name)
		}
		return m, nil
	case tea.KeyEsc:
		m.closePrompt()
		m.statusMessage = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleTreeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sel := m.selected()
	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.Toggle()
		return m, nil

	case key.Matches(msg, m.keys.Quit):
		return m.requestQuit()

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.ensureCursorVisible()
		}
		return m, m.previewCmd()

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
			m.ensureCursorVisible()
		}
		return m, m.previewCmd()

	case key.Matches(msg, m.keys.Open):
		if sel == nil {
			return m, nil
		}
		if sel.IsFolder() {
			if m.expanded[sel.Path] {
				return m, nil
			}
			m.expanded[sel.Path] = true
			return m, loadTreeCmd(m.svc, m.expandedPaths())
		}
		if err := m.ws.Open(sel.Path); err != nil {
			m.statusMessage = fmt.Sprintf("Error opening %s: %v", sel.Name, err)
			return m, nil
		}
		m.syncEditor()
		return m, m.setFocus(focusEditor)

	case key.Matches(msg, m.keys.Collapse):
		if sel == nil {
			return m, nil
		}
		if sel.IsFolder() && m.expanded[sel.Path] {
			delete(m.expanded, sel.Path)
			m.rebuildRows(sel.Path)
			return m, nil
		}
		m.rebuildRows(filepath.Dir(sel.Path))
		return m, m.previewCmd()

	case key.Matches(msg, m.keys.Toggle):
		if sel == nil || !sel.IsFolder() {
			return m, nil
		}
		if m.expanded[sel.Path] {
			delete(m.expanded, sel.Path)
			m.rebuildRows(sel.Path)
			return m, nil
		}
		m.expanded[sel.Path] = true
		return m, loadTreeCmd(m.svc, m.expandedPaths())

	case key.Matches(msg, m.keys.AddNote):
		return m, m.openPrompt(promptAddNote, sel, "")

	case key.Matches(msg, m.keys.AddFolder):
		return m, m.openPrompt(promptAddFolder, sel, "")

	case key.Matches(msg, m.keys.Rename):
		if sel == nil {
			return m, nil
		}
		return m, m.openPrompt(promptRename, sel, sel.Name)

	case key.Matches(msg, m.keys.Delete):
		if sel == nil {
			return m, nil
		}
		return m, deleteCmd(m.svc, sel)

	case key.Matches(msg, m.keys.Refresh):
		m.svc.Tree.Refresh()
		return m, loadTreeCmd(m.svc, m.expandedPaths())

	case key.Matches(msg, m.keys.Preview):
		m.showPreview = !m.showPreview
		m.previewPath = ""
		return m, m.previewCmd()

	case key.Matches(msg, m.keys.Settings):
		return m, openSettingsCmd(m.svc)

	case key.Matches(msg, m.keys.FocusEditor):
		if m.editingPath == "" {
			return m, nil
		}
		return m, m.setFocus(focusEditor)
	}

	return m.handleTabKey(msg)
}

func (m Model) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.FocusTree) {
		return m, m.setFocus(focusTree)
	}
	if key.Matches(msg, m.keys.Save, m.keys.CloseTab, m.keys.NextTab, m.keys.PrevTab) {
		return m.handleTabKey(msg)
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if m.editingPath != "" {
		current, _ := m.ws.Content(m.editingPath)
		if value := m.editor.Value(); value != current {
			if err := m.ws.Edit(m.editingPath, value); err != nil {
				m.statusMessage = fmt.Sprintf("Error: %v", err)
			}
		}
	}
	return m, cmd
}

// handleTabKey handles the tab bindings shared by both panes.
func (m Model) handleTabKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Save):
		if m.editingPath == "" {
			return m, nil
		}
		if err := m.ws.Save(m.editingPath); err != nil {
			m.statusMessage = fmt.Sprintf("Error saving: %v", err)
			return m, nil
		}
		m.statusMessage = fmt.Sprintf("Saved %s", filepath.Base(m.editingPath))
		m.previewPath = ""
		return m, m.previewCmd()

	case key.Matches(msg, m.keys.CloseTab):
		active, ok := m.ws.Active()
		if !ok {
			return m, nil
		}
		if active.Dirty {
			m.pendingRef = active.Ref
			m.confirm.Activate(actionCloseTab, fmt.Sprintf("Discard unsaved changes to %s?", filepath.Base(active.Path)))
			return m, nil
		}
		m.closeTab(active.Ref)
		return m, nil

	case key.Matches(msg, m.keys.NextTab):
		m.cycleTab(1)
		return m, nil

	case key.Matches(msg, m.keys.PrevTab):
		m.cycleTab(-1)
		return m, nil
	}
	return m, nil
}

func (m Model) handleOpDone(msg opDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if !errors.Is(msg.err, notefs.ErrNameCollision) && !errors.Is(msg.err, notefs.ErrInvalidInput) {
			m.statusMessage = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.statusMessage = msg.err.Error()
		// A prompt opened after the operation was issued wins over the retry.
		if m.prompt != promptNone {
			return m, nil
		}
		return m, m.openPrompt(msg.op, msg.target, msg.name)
	}
	if msg.node == nil {
		return m, nil
	}

	var cmd tea.Cmd
	switch msg.op {
	case promptAddNote:
		m.statusMessage = fmt.Sprintf("Created %s", msg.node.Name)
		m.syncEditor()
		cmd = m.setFocus(focusEditor)
	case promptAddFolder:
		m.statusMessage = fmt.Sprintf("Created folder %s", msg.node.Name)
	case promptRename:
		m.statusMessage = fmt.Sprintf("Renamed to %s", msg.node.Name)
		if msg.target != nil {
			m.relocateExpanded(msg.target.Path, msg.node.Path)
		}
		m.syncEditor()
	}

	if parent := filepath.Dir(msg.node.Path); parent != m.root {
		m.expanded[parent] = true
	}
	m.cursorPath = msg.node.Path
	return m, tea.Batch(cmd, loadTreeCmd(m.svc, m.expandedPaths()))
}

// requestQuit quits, asking first when documents have unsaved changes.
func (m Model) requestQuit() (tea.Model, tea.Cmd) {
	dirty := 0
	seen := make(map[string]bool)
	for _, t := range m.ws.ListOpenTabs() {
		if t.Dirty && !seen[t.Path] {
			seen[t.Path] = true
			dirty++
		}
	}
	if dirty == 0 {
		return m, tea.Quit
	}
	m.confirm.Activate(actionQuit, fmt.Sprintf("%d note(s) have unsaved changes.\nSave all and quit?", dirty))
	return m, nil
}

func (m *Model) saveAll() error {
	saved := make(map[string]bool)
	var errs []error
	for _, t := range m.ws.ListOpenTabs() {
		if !t.Dirty || saved[t.Path] {
			continue
		}
		saved[t.Path] = true
		if err := m.ws.Save(t.Path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Model) closeTab(ref string) {
	if ref == "" {
		return
	}
	if err := m.ws.Close(ref); err != nil {
		m.statusMessage = fmt.Sprintf("Error: %v", err)
		return
	}
	m.syncEditor()
}

func (m *Model) cycleTab(delta int) {
	tabs := m.ws.ListOpenTabs()
	if len(tabs) < 2 {
		return
	}
	idx := 0
	for i, t := range tabs {
		if t.Active {
			idx = i
			break
		}
	}
	next := (idx + delta + len(tabs)) % len(tabs)
	if err := m.ws.Focus(tabs[next].Ref); err != nil {
		m.statusMessage = fmt.Sprintf("Error: %v", err)
		return
	}
	m.syncEditor()
}

// syncEditor loads the active document into the editor pane.
func (m *Model) syncEditor() {
	active, ok := m.ws.Active()
	if !ok {
		m.editingPath = ""
		m.editor.SetValue("")
		if m.focus == focusEditor {
			m.setFocus(focusTree)
		}
		return
	}
	if active.Path == m.editingPath {
		return
	}
	content, _ := m.ws.Content(active.Path)
	m.editingPath = active.Path
	m.editor.SetValue(content)
}

func (m *Model) setFocus(area focusArea) tea.Cmd {
	m.focus = area
	if area == focusEditor {
		return m.editor.Focus()
	}
	m.editor.Blur()
	return nil
}

func (m *Model) openPrompt(kind promptKind, target *tree.Node, value string) tea.Cmd {
	m.prompt = kind
	m.promptTarget = target
	switch kind {
	case promptAddNote:
		m.input.Placeholder = "note name"
	case promptAddFolder:
		m.input.Placeholder = "folder name"
	case promptRename:
		m.input.Placeholder = "new name"
	}
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
	return textinput.Blink
}

func (m *Model) closePrompt() {
	m.prompt = promptNone
	m.promptTarget = nil
	m.input.Blur()
	m.input.SetValue("")
}

// previewCmd renders the selected note when the preview pane is visible.
func (m *Model) previewCmd() tea.Cmd {
	if !m.showPreview {
		return nil
	}
	sel := m.selected()
	if sel == nil || sel.IsFolder() {
		m.previewPath = ""
		if sel != nil {
			m.preview.SetContent(fmt.Sprintf("Folder:\n%s", shortenPath(sel.Path)))
		} else {
			m.preview.SetContent("")
		}
		return nil
	}
	if sel.Path == m.previewPath {
		return nil
	}
	m.renderID++
	m.previewPath = sel.Path
	return renderPreviewCmd(sel.Path, m.renderID, m.renderer)
}

// pruneExpanded forgets folders that vanished from their parent listing.
func (m *Model) pruneExpanded() {
	for p := range m.expanded {
		if !m.svc.Resolver().Contains(p) {
			delete(m.expanded, p)
			continue
		}
		siblings, ok := m.listing[filepath.Dir(p)]
		if !ok {
			continue
		}
		found := false
		for _, n := range siblings {
			if n.Path == p {
				found = true
				break
			}
		}
		if !found {
			delete(m.expanded, p)
		}
	}
}

func (m *Model) forgetExpanded(dir string) {
	for p := range m.expanded {
		if p == dir || strings.HasPrefix(p, dir+string(filepath.Separator)) {
			delete(m.expanded, p)
		}
	}
}

func (m *Model) relocateExpanded(oldDir, newDir string) {
	moved := make(map[string]bool)
	for p := range m.expanded {
		if p == oldDir {
			moved[newDir] = true
		} else if rest, ok := strings.CutPrefix(p, oldDir+string(filepath.Separator)); ok {
			moved[filepath.Join(newDir, rest)] = true
		} else {
			continue
		}
		delete(m.expanded, p)
	}
	for p := range moved {
		m.expanded[p] = true
	}
}

// watchedDirs is the root plus every expanded folder that is listed.
func (m *Model) watchedDirs() []string {
	dirs := []string{m.root}
	for p := range m.expanded {
		if _, ok := m.listing[p]; ok {
			dirs = append(dirs, p)
		}
	}
	return dirs
}
