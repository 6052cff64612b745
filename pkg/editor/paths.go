package editor

import (
	"path/filepath"
	"strings"

	"github.com/mattsolo1/grove-core/util/pathutil"
)

func normalize(path string) string {
	if n, err := pathutil.NormalizeForLookup(path); err == nil {
		return n
	}
	return filepath.Clean(path)
}

// samePath reports whether a and b name the same location.
func samePath(a, b string) bool {
	if same, err := pathutil.ComparePaths(a, b); err == nil && same {
		return true
	}
	return normalize(a) == normalize(b)
}

// within reports whether path is dir itself or lies beneath it.
func within(path, dir string) bool {
	if samePath(path, dir) {
		return true
	}
	p, d := normalize(path), normalize(dir)
	return strings.HasPrefix(p, strings.TrimSuffix(d, string(filepath.Separator))+string(filepath.Separator))
}

// relocate maps path from under oldDir to the same place under newDir.
func relocate(path, oldDir, newDir string) string {
	if samePath(path, oldDir) {
		return newDir
	}
	rel, err := filepath.Rel(normalize(oldDir), normalize(path))
	if err != nil {
		return newDir
	}
	return filepath.Join(newDir, rel)
}
