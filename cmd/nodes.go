package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattsolo1/grove-core/tui/theme"

	"github.com/mattsolo1/grove-notetree/pkg/notefs"
	"github.com/mattsolo1/grove-notetree/pkg/service"
	"github.com/mattsolo1/grove-notetree/pkg/tree"
)

// resolveNode maps a path relative to the notes root onto a tree node. An
// empty path is the root itself and resolves to nil.
func resolveNode(svc *service.Service, rel string) (*tree.Node, error) {
	if rel == "" || rel == "." {
		return nil, nil
	}
	path := rel
	if !filepath.IsAbs(path) {
		root, err := svc.RootPath()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(root, rel)
	}
	if !svc.Resolver().Contains(path) {
		return nil, fmt.Errorf("%w: %s is outside the notes root", notefs.ErrInvalidInput, rel)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, notefs.Classify("resolve", path, err)
	}
	if info.IsDir() {
		return tree.NewFolder(path), nil
	}
	return tree.NewFile(path), nil
}

// relPath shows path relative to the notes root when possible.
func relPath(svc *service.Service, path string) string {
	root, err := svc.RootPath()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
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
