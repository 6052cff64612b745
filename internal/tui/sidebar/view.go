package sidebar

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattsolo1/grove-core/tui/theme"
)

const (
	minTreeWidth = 24
	chromeHeight = 7 // header, spacing, tab bar, prompt/status and help lines
)

func (m Model) View() string {
	if !m.loaded && m.statusMessage == "" {
		return "Loading..."
	}

	if m.help.ShowAll {
		return m.help.View()
	}

	if m.confirm.Active {
		return "\n" + m.confirm.View()
	}

	header := theme.DefaultTheme.Header.Render("Notes") + " " +
		theme.DefaultTheme.Muted.Render(shortenPath(m.root))

	treeStyle := lipgloss.NewStyle().Width(m.treeWidth())
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		treeStyle.Render(m.renderTree()),
		" ",
		m.renderRight(),
	)

	var bottom string
	if m.prompt != promptNone {
		bottom = theme.DefaultTheme.Info.Render(m.promptLabel()+": ") + m.input.View()
	} else if m.statusMessage != "" {
		bottom = theme.DefaultTheme.Muted.Render(m.statusMessage)
	}

	fullView := lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		body,
		"",
		bottom,
		m.help.View(),
	)

	return "\n" + fullView
}

func (m Model) renderTree() string {
	if len(m.rows) == 0 {
		return theme.DefaultTheme.Muted.Render("(empty) press a to add a note")
	}

	var b strings.Builder
	height := m.treeHeight()
	start := m.scrollOffset
	end := min(start+height, len(m.rows))

	for i := start; i < end; i++ {
		r := m.rows[i]
		cursor := "  "
		if i == m.cursor && m.focus == focusTree {
			cursor = theme.DefaultTheme.Highlight.Render("▶ ")
		}

		fold := "  "
		if r.node.IsFolder() {
			fold = "▸ "
			if m.expanded[r.node.Path] {
				fold = "▾ "
			}
		}

		label := r.item.Label
		if m.isOpen(r.node) {
			label = theme.DefaultTheme.Info.Render(label)
		}

		line := fmt.Sprintf("%s%s%s%s %s", cursor, strings.Repeat("  ", r.depth), fold, iconGlyph(r.item.Icon), label)
		if i == m.cursor {
			line = theme.DefaultTheme.Selected.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(m.rows) > height {
		b.WriteString(lipgloss.NewStyle().Faint(true).Render(fmt.Sprintf(" (%d-%d of %d)", start+1, end, len(m.rows))))
	}
	return b.String()
}

func (m Model) renderRight() string {
	var tabs []string
	for _, t := range m.ws.ListOpenTabs() {
		name := filepath.Base(t.Path)
		if t.Dirty {
			name = "● " + name
		}
		if t.Active {
			tabs = append(tabs, theme.DefaultTheme.Selected.Render(" "+name+" "))
		} else {
			tabs = append(tabs, theme.DefaultTheme.Muted.Render(" "+name+" "))
		}
	}
	tabBar := strings.Join(tabs, theme.DefaultTheme.Muted.Render("│"))
	if tabBar == "" {
		tabBar = theme.DefaultTheme.Muted.Render("no open notes")
	}

	var pane string
	if m.showPreview {
		pane = m.preview.View()
	} else {
		pane = m.editor.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, tabBar, pane)
}

func (m Model) promptLabel() string {
	switch m.prompt {
	case promptAddNote:
		return "New note"
	case promptAddFolder:
		return "New folder"
	case promptRename:
		return "Rename"
	}
	return ""
}

func (m *Model) layout() {
	rightWidth := m.width - m.treeWidth() - 1
	if rightWidth < 10 {
		rightWidth = 10
	}
	bodyHeight := m.bodyHeight()
	m.editor.SetWidth(rightWidth)
	m.editor.SetHeight(bodyHeight - 1)
	m.preview.Width = rightWidth
	m.preview.Height = bodyHeight - 1
	m.ensureCursorVisible()
}

func (m Model) treeWidth() int {
	return max(minTreeWidth, m.width/3)
}

func (m Model) bodyHeight() int {
	if m.height == 0 {
		return 20
	}
	return max(m.height-chromeHeight, 3)
}

func (m Model) treeHeight() int {
	return max(m.bodyHeight()-1, 1)
}

func iconGlyph(icon string) string {
	switch icon {
	case "folder":
		return theme.IconFolder
	case "markdown":
		return theme.IconNote
	default:
		return theme.IconDocs
	}
}
