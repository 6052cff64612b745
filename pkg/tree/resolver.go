package tree

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattsolo1/grove-notetree/pkg/config"
)

// PathResolver computes the notes root and node locations. It keeps no state
// between calls, so a settings change applies to the very next lookup.
type PathResolver struct {
	settings    config.Provider
	defaultRoot func() (string, error)
}

// NewPathResolver creates a resolver reading the root from settings.
func NewPathResolver(settings config.Provider) *PathResolver {
	return &PathResolver{settings: settings, defaultRoot: DefaultRoot}
}

// WithDefaultRoot overrides the fallback used when no root is configured.
func (r *PathResolver) WithDefaultRoot(fn func() (string, error)) *PathResolver {
	r.defaultRoot = fn
	return r
}

// DefaultRoot is the per-installation notes directory, ~/.local/share/nt/notes.
func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "nt", "notes"), nil
}

// RootPath returns the configured notes root, or the default location.
func (r *PathResolver) RootPath() (string, error) {
	root, ok := r.settings.GetString(config.KeyRootDir)
	if !ok {
		return r.defaultRoot()
	}
	root, err := expandHome(root)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root %s: %w", root, err)
	}
	return abs, nil
}

// ResolveNodePath returns the node's own resolved path. Nodes without one are
// joined onto the root by name; a nil node is the root itself.
func (r *PathResolver) ResolveNodePath(node *Node) (string, error) {
	if node != nil && node.Path != "" {
		return node.Path, nil
	}
	root, err := r.RootPath()
	if err != nil {
		return "", err
	}
	if node == nil {
		return root, nil
	}
	return filepath.Join(root, node.Name), nil
}

// Contains reports whether path lies under the current notes root.
func (r *PathResolver) Contains(path string) bool {
	root, err := r.RootPath()
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ResolveUserPath expands ~ in a path taken from settings or flags and
// anchors a relative path at the notes root.
func (r *PathResolver) ResolveUserPath(path string) (string, error) {
	path, err := expandHome(path)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	root, err := r.RootPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, path), nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand ~: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
