package tree

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-notetree/pkg/config"
	"github.com/mattsolo1/grove-notetree/pkg/notefs"
)

// Model serves tree levels lazily, one directory per expansion. It holds no
// node state; every call re-reads the filesystem.
type Model struct {
	resolver *PathResolver
	lister   *notefs.Lister
	settings config.Provider
	changes  *Notifier
	log      *logrus.Entry
}

// NewModel creates a tree model over the given resolver and lister.
func NewModel(resolver *PathResolver, lister *notefs.Lister, settings config.Provider, log *logrus.Entry) *Model {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Model{
		resolver: resolver,
		lister:   lister,
		settings: settings,
		changes:  NewNotifier(),
		log:      log.WithField("component", "tree"),
	}
}

// Resolver exposes the path resolver the model lists through.
func (m *Model) Resolver() *PathResolver {
	return m.resolver
}

// Children lists the root when node is nil and a folder's own path otherwise.
// Files have no children and cause no I/O.
func (m *Model) Children(ctx context.Context, node *Node) ([]*Node, error) {
	if node != nil && !node.IsFolder() {
		return []*Node{}, nil
	}

	dir, err := m.resolver.ResolveNodePath(node)
	if err != nil {
		return nil, fmt.Errorf("resolve directory: %w", err)
	}

	entries, err := m.lister.List(ctx, dir, notefs.IncludeHidden(m.settings.GetBool(config.KeyShowHidden)))
	if err != nil {
		m.log.WithError(err).WithField("dir", dir).Warn("listing failed")
		return nil, err
	}

	nodes := make([]*Node, 0, len(entries))
	for _, e := range entries {
		if e.IsDir {
			nodes = append(nodes, NewFolder(e.Path))
		} else {
			nodes = append(nodes, NewFile(e.Path))
		}
	}
	m.log.WithFields(logrus.Fields{"dir": dir, "count": len(nodes)}).Debug("listed directory")
	return nodes, nil
}

// DisplayItem maps a node to what the tree widget renders.
func (m *Model) DisplayItem(node *Node) DisplayItem {
	item := DisplayItem{
		Label:   node.Name,
		Tooltip: node.Path,
	}
	if node.IsFolder() {
		item.Icon = "folder"
		item.Collapsible = Collapsed
		return item
	}
	item.Icon = iconFor(node.Name)
	item.Collapsible = CollapsibleNone
	item.Command = node.Open
	return item
}

func iconFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return "markdown"
	default:
		return "file"
	}
}

// Refresh tells subscribers to re-query every visible level.
func (m *Model) Refresh() {
	m.changes.Fire(nil)
}

// OnDidChange subscribes to refresh signals.
func (m *Model) OnDidChange(fn func(*Node)) func() {
	return m.changes.Subscribe(fn)
}
