package notefs

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/text/unicode/norm"
)

// Clash is a set of sibling entries whose names differ only in letter case or
// Unicode normalisation. Such names refer to the same entry on
// case-insensitive or normalising filesystems.
type Clash struct {
	Dir   string
	Names []string
}

// foldName is the key two clashing names share.
func foldName(name string) string {
	return strings.ToLower(norm.NFC.String(name))
}

// FindClashes walks root and reports every directory holding clashing names.
// Hidden entries are skipped unless includeHidden is set.
func FindClashes(ctx context.Context, fsys afero.Fs, root string, includeHidden bool) ([]Clash, error) {
	groups := make(map[string]map[string][]string)

	err := afero.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return Classify("walk", path, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == root {
			return nil
		}
		name := info.Name()
		if !includeHidden && strings.HasPrefix(name, ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		dir := filepath.Dir(path)
		if groups[dir] == nil {
			groups[dir] = make(map[string][]string)
		}
		key := foldName(name)
		groups[dir][key] = append(groups[dir][key], name)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var clashes []Clash
	for dir, byKey := range groups {
		for _, names := range byKey {
			if len(names) < 2 {
				continue
			}
			sort.Strings(names)
			clashes = append(clashes, Clash{Dir: dir, Names: names})
		}
	}
	sort.Slice(clashes, func(i, j int) bool {
		if clashes[i].Dir != clashes[j].Dir {
			return clashes[i].Dir < clashes[j].Dir
		}
		return clashes[i].Names[0] < clashes[j].Names[0]
	})
	return clashes, nil
}
