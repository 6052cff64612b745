package sidebar

import "github.com/mattsolo1/grove-notetree/pkg/tree"

// rebuildRows flattens the listing into visible rows. The cursor lands on
// prefer, then on a pending cursorPath, then stays on the selected path.
func (m *Model) rebuildRows(prefer string) {
	current := ""
	if sel := m.selected(); sel != nil {
		current = sel.Path
	}

	var rows []row
	var add func(dir string, depth int)
	add = func(dir string, depth int) {
		for _, n := range m.listing[dir] {
			rows = append(rows, row{node: n, depth: depth, item: m.svc.Tree.DisplayItem(n)})
			if n.IsFolder() && m.expanded[n.Path] {
				add(n.Path, depth+1)
			}
		}
	}
	add(m.root, 0)
	m.rows = rows

	moved := false
	for _, target := range []string{prefer, m.cursorPath, current} {
		if target == "" {
			continue
		}
		if idx := m.rowIndex(target); idx >= 0 {
			m.cursor = idx
			moved = true
			break
		}
	}
	if m.cursorPath != "" && m.rowIndex(m.cursorPath) >= 0 {
		m.cursorPath = ""
	}
	if !moved && m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureCursorVisible()
}

func (m *Model) rowIndex(path string) int {
	for i, r := range m.rows {
		if r.node.Path == path {
			return i
		}
	}
	return -1
}

func (m *Model) ensureCursorVisible() {
	height := m.treeHeight()
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+height {
		m.scrollOffset = m.cursor - height + 1
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}

// isOpen reports whether a tab shows node's document.
func (m *Model) isOpen(node *tree.Node) bool {
	for _, t := range m.ws.ListOpenTabs() {
		if t.Path == node.Path {
			return true
		}
	}
	return false
}
