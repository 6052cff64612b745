package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/mattsolo1/grove-notetree/pkg/config"
	"github.com/mattsolo1/grove-notetree/pkg/editor"
	"github.com/mattsolo1/grove-notetree/pkg/notefs"
	"github.com/mattsolo1/grove-notetree/pkg/tree"
)

// Service is the command layer over the notes tree: every mutation goes
// straight to disk, reconciles open tabs, then refreshes the tree.
type Service struct {
	Tree    *tree.Model
	Metrics *Metrics

	fs         afero.Fs
	settings   config.Provider
	resolver   *tree.PathResolver
	host       editor.Host
	reconciler *editor.Reconciler
	log        *logrus.Entry
}

// Config holds service dependencies.
type Config struct {
	Fs       afero.Fs
	Settings config.Provider
	Host     editor.Host
	Logger   *logrus.Entry

	// Metrics receives the operation counters. Optional; shared when several
	// services report through one registry.
	Metrics *Metrics

	// DefaultRoot overrides the fallback notes root. Optional.
	DefaultRoot func() (string, error)
}

// New creates a notes service.
func New(cfg *Config) (*Service, error) {
	if cfg.Settings == nil {
		return nil, fmt.Errorf("create service: settings provider is required")
	}
	if cfg.Host == nil {
		return nil, fmt.Errorf("create service: editor host is required")
	}
	fsys := cfg.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}

	resolver := tree.NewPathResolver(cfg.Settings)
	if cfg.DefaultRoot != nil {
		resolver.WithDefaultRoot(cfg.DefaultRoot)
	}

	return &Service{
		Tree:       tree.NewModel(resolver, notefs.NewLister(fsys), cfg.Settings, log),
		Metrics:    metrics,
		fs:         fsys,
		settings:   cfg.Settings,
		resolver:   resolver,
		host:       cfg.Host,
		reconciler: editor.NewReconciler(cfg.Host, log),
		log:        log.WithField("component", "service"),
	}, nil
}

// Resolver returns the path resolver shared with the tree model.
func (s *Service) Resolver() *tree.PathResolver {
	return s.resolver
}

// RootPath returns the current notes root.
func (s *Service) RootPath() (string, error) {
	return s.resolver.RootPath()
}

// EnsureRoot creates the notes root if it is missing.
func (s *Service) EnsureRoot() (string, error) {
	root, err := s.resolver.RootPath()
	if err != nil {
		return "", err
	}
	if err := notefs.EnsureDir(s.fs, root); err != nil {
		return "", err
	}
	return root, nil
}

type changeSource interface {
	OnChange(fn func(key string)) func()
}

// WatchSettings refreshes the tree whenever the notes root setting changes.
func (s *Service) WatchSettings(src changeSource) func() {
	return src.OnChange(func(key string) {
		if key == config.KeyRootDir || key == config.KeyShowHidden {
			s.log.WithField("key", key).Debug("refreshing tree after settings change")
			s.Tree.Refresh()
		}
	})
}

// NewAutoSaver builds the focus-loss auto-save policy for this service's host.
func (s *Service) NewAutoSaver() *editor.AutoSaver {
	return editor.NewAutoSaver(s.host, s.resolver.Contains, func() bool {
		return s.settings.GetBool(config.KeyAutoSave)
	}, s.log)
}

// AddNote creates a note in target (or the root when target is not a folder)
// and opens it. The note is empty unless notes.template names a template. An
// empty name is a no-op and returns nil, nil.
func (s *Service) AddNote(ctx context.Context, target *tree.Node, name string) (*tree.Node, error) {
	const op = "add_note"
	name, err := s.cleanName(name)
	if err != nil {
		return nil, s.Metrics.observe(op, err)
	}
	if name == "" {
		return nil, s.Metrics.skip(op)
	}

	var dir string
	if target.IsFolder() {
		dir, err = s.resolver.ResolveNodePath(target)
	} else {
		dir, err = s.resolver.RootPath()
	}
	if err != nil {
		return nil, s.Metrics.observe(op, fmt.Errorf("resolve target directory: %w", err))
	}
	if err := notefs.EnsureDir(s.fs, dir); err != nil {
		return nil, s.Metrics.observe(op, err)
	}

	if filepath.Ext(name) == "" {
		name += s.defaultExtension()
	}
	path := filepath.Join(dir, name)
	if err := s.checkFree(path); err != nil {
		return nil, s.Metrics.observe(op, err)
	}

	content, err := s.initialContent(path)
	if err != nil {
		return nil, s.Metrics.observe(op, err)
	}

	f, err := s.fs.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return nil, s.Metrics.observe(op, notefs.Classify("create note", path, err))
	}
	_, werr := f.Write(content)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = s.fs.Remove(path)
		return nil, s.Metrics.observe(op, notefs.Classify("create note", path, werr))
	}
	s.log.WithField("path", path).Info("created note")

	if err := s.host.Open(path); err != nil {
		s.log.WithError(err).WithField("path", path).Warn("failed to open note")
	}

	s.Tree.Refresh()
	return tree.NewFile(path), s.Metrics.observe(op, nil)
}

// AddFolder creates a folder at the notes root. With notes.nested_folders
// enabled it is created under parent when parent is a folder.
func (s *Service) AddFolder(ctx context.Context, parent *tree.Node, name string) (*tree.Node, error) {
	const op = "add_folder"
	name, err := s.cleanName(name)
	if err != nil {
		return nil, s.Metrics.observe(op, err)
	}
	if name == "" {
		return nil, s.Metrics.skip(op)
	}

	var dir string
	if parent.IsFolder() && s.settings.GetBool(config.KeyNestedFolders) {
		dir, err = s.resolver.ResolveNodePath(parent)
	} else {
		dir, err = s.resolver.RootPath()
	}
	if err != nil {
		return nil, s.Metrics.observe(op, fmt.Errorf("resolve parent directory: %w", err))
	}

	path := filepath.Join(dir, name)
	if err := s.checkFree(path); err != nil {
		return nil, s.Metrics.observe(op, err)
	}
	if err := notefs.EnsureDir(s.fs, path); err != nil {
		return nil, s.Metrics.observe(op, err)
	}
	s.log.WithField("path", path).Info("created folder")

	s.Tree.Refresh()
	return tree.NewFolder(path), s.Metrics.observe(op, nil)
}

// DeleteEntry removes a note, or a folder and everything beneath it. There is
// no confirmation and no undo.
func (s *Service) DeleteEntry(ctx context.Context, node *tree.Node) error {
	const op = "delete_entry"
	if node == nil {
		return s.Metrics.skip(op)
	}

	path, err := s.resolver.ResolveNodePath(node)
	if err != nil {
		return s.Metrics.observe(op, fmt.Errorf("resolve entry: %w", err))
	}
	if err := s.refuseRoot(path); err != nil {
		return s.Metrics.observe(op, err)
	}

	info, err := s.fs.Stat(path)
	if err != nil {
		return s.Metrics.observe(op, notefs.Classify("delete", path, err))
	}

	var removed bool
	err = s.reconciler.Delete(ctx, path, func() error {
		var err error
		if info.IsDir() {
			err = notefs.Classify("delete folder", path, s.fs.RemoveAll(path))
		} else {
			err = notefs.Classify("delete note", path, s.fs.Remove(path))
		}
		removed = err == nil
		return err
	})
	if err != nil {
		if removed {
			s.Tree.Refresh()
		}
		return s.Metrics.observe(op, err)
	}
	s.log.WithFields(logrus.Fields{"path": path, "folder": info.IsDir()}).Info("deleted entry")

	s.Tree.Refresh()
	return s.Metrics.observe(op, nil)
}

// RenameEntry renames node in place. A file name given without an extension
// gets the default extension appended when notes.append_extension_on_rename
// is set. An empty or unchanged name is a no-op and returns nil, nil.
func (s *Service) RenameEntry(ctx context.Context, node *tree.Node, newName string) (*tree.Node, error) {
	const op = "rename_entry"
	if node == nil {
		return nil, s.Metrics.skip(op)
	}
	newName, err := s.cleanName(newName)
	if err != nil {
		return nil, s.Metrics.observe(op, err)
	}
	if newName == "" {
		return nil, s.Metrics.skip(op)
	}

	oldPath, err := s.resolver.ResolveNodePath(node)
	if err != nil {
		return nil, s.Metrics.observe(op, fmt.Errorf("resolve entry: %w", err))
	}
	if err := s.refuseRoot(oldPath); err != nil {
		return nil, s.Metrics.observe(op, err)
	}

	info, err := s.fs.Stat(oldPath)
	if err != nil {
		return nil, s.Metrics.observe(op, notefs.Classify("rename", oldPath, err))
	}

	finalName := s.renameTarget(newName, info.IsDir())
	newPath := filepath.Join(filepath.Dir(oldPath), finalName)
	if newPath == oldPath {
		return nil, s.Metrics.skip(op)
	}
	if err := s.checkFree(newPath); err != nil {
		return nil, s.Metrics.observe(op, err)
	}

	var moved bool
	err = s.reconciler.Rename(ctx, oldPath, newPath, func() error {
		err := notefs.Classify("rename", oldPath, s.fs.Rename(oldPath, newPath))
		moved = err == nil
		return err
	})
	if err != nil {
		// Tab bookkeeping failed after the move; the tree must still show it.
		if moved {
			s.Tree.Refresh()
		}
		return nil, s.Metrics.observe(op, err)
	}
	s.log.WithFields(logrus.Fields{"from": oldPath, "to": newPath}).Info("renamed entry")

	s.Tree.Refresh()
	if info.IsDir() {
		return tree.NewFolder(newPath), s.Metrics.observe(op, nil)
	}
	return tree.NewFile(newPath), s.Metrics.observe(op, nil)
}

type settingsFile interface {
	EnsureFile() (string, error)
}

// OpenSettings makes sure the settings file exists and opens it in the host.
func (s *Service) OpenSettings(ctx context.Context) (string, error) {
	const op = "open_settings"
	sf, ok := s.settings.(settingsFile)
	if !ok {
		return "", s.Metrics.observe(op, fmt.Errorf("settings are not backed by a file"))
	}
	path, err := sf.EnsureFile()
	if err != nil {
		return "", s.Metrics.observe(op, err)
	}
	if err := s.host.Open(path); err != nil {
		return path, s.Metrics.observe(op, fmt.Errorf("open settings: %w", err))
	}
	return path, s.Metrics.observe(op, nil)
}

// renameTarget applies the extension rule to a new name.
func (s *Service) renameTarget(name string, isDir bool) string {
	if isDir || filepath.Ext(name) != "" || !s.settings.GetBool(config.KeyAppendExtensionOnRename) {
		return name
	}
	return name + s.defaultExtension()
}

func (s *Service) defaultExtension() string {
	ext, ok := s.settings.GetString(config.KeyDefaultExtension)
	if !ok {
		return ".md"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// cleanName trims a prompted name. Blank input returns "", nil so callers
// treat it as a cancelled prompt. While hidden entries are filtered from the
// tree, dot-prefixed names are refused so every created entry stays listed.
func (s *Service) cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		s.log.Debug("empty name, nothing to do")
		return "", nil
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q is not a valid entry name", notefs.ErrInvalidInput, name)
	}
	if strings.HasPrefix(name, ".") && !s.settings.GetBool(config.KeyShowHidden) {
		return "", fmt.Errorf("%w: %q would be hidden while notes.show_hidden is off", notefs.ErrInvalidInput, name)
	}
	return name, nil
}

func (s *Service) checkFree(path string) error {
	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return notefs.Classify("check", path, err)
	}
	if exists {
		return &notefs.OpError{Op: "create", Path: path, Kind: notefs.ErrNameCollision, Err: os.ErrExist}
	}
	return nil
}

func (s *Service) refuseRoot(path string) error {
	root, err := s.resolver.RootPath()
	if err != nil {
		return err
	}
	if filepath.Clean(path) == filepath.Clean(root) {
		return fmt.Errorf("%w: refusing to modify the notes root", notefs.ErrInvalidInput)
	}
	return nil
}
