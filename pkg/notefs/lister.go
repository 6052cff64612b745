package notefs

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/text/unicode/norm"
)

// Entry is one classified directory entry.
type Entry struct {
	Name  string
	Path  string
	IsDir bool
}

// Lister enumerates a single directory level.
type Lister struct {
	fs afero.Fs
}

// NewLister creates a lister over the given filesystem.
func NewLister(fsys afero.Fs) *Lister {
	return &Lister{fs: fsys}
}

type listOptions struct {
	includeHidden bool
}

type ListOption func(*listOptions)

// IncludeHidden keeps dot-prefixed entries in the listing.
func IncludeHidden(include bool) ListOption {
	return func(o *listOptions) {
		o.includeHidden = include
	}
}

// EnsureDir creates dir and any missing parents. It is a no-op when dir exists.
func EnsureDir(fsys afero.Fs, dir string) error {
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return Classify("ensure directory", dir, err)
	}
	return nil
}

// List ensures dir exists, then returns its immediate entries: folders first,
// then files, each group in ascending name order.
func (l *Lister) List(ctx context.Context, dir string, options ...ListOption) ([]Entry, error) {
	opts := &listOptions{}
	for _, opt := range options {
		opt(opts)
	}

	if err := EnsureDir(l.fs, dir); err != nil {
		return nil, err
	}

	infos, err := afero.ReadDir(l.fs, dir)
	if err != nil {
		return nil, Classify("read directory", dir, err)
	}

	var folders, files []Entry
	for _, info := range infos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := info.Name()
		if !opts.includeHidden && strings.HasPrefix(name, ".") {
			continue
		}

		path := filepath.Join(dir, name)
		// Stat follows symlinks, so a linked folder lists as a folder.
		st, err := l.fs.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				// Removed between read and stat.
				continue
			}
			return nil, Classify("stat", path, err)
		}

		entry := Entry{Name: name, Path: path, IsDir: st.IsDir()}
		if entry.IsDir {
			folders = append(folders, entry)
		} else {
			files = append(files, entry)
		}
	}

	SortEntries(folders)
	SortEntries(files)
	return append(folders, files...), nil
}

// SortEntries orders entries by NFC-normalised name. The sort is stable, so
// names that normalise equal keep their directory order.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return CompareNames(entries[i].Name, entries[j].Name) < 0
	})
}

// CompareNames compares two entry names lexicographically after NFC normalisation.
func CompareNames(a, b string) int {
	return strings.Compare(norm.NFC.String(a), norm.NFC.String(b))
}
