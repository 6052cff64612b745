package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Settings keys. Everything lives under the "notes" namespace.
const (
	Namespace = "notes"

	KeyRootDir                 = "notes.root_dir"
	KeyDefaultExtension        = "notes.default_extension"
	KeyAppendExtensionOnRename = "notes.append_extension_on_rename"
	KeyNestedFolders           = "notes.nested_folders"
	KeyAutoSave                = "notes.auto_save"
	KeyShowHidden              = "notes.show_hidden"
	KeyEditor                  = "notes.editor"
	KeyTemplate                = "notes.template"
)

// WatchedKeys are diffed on every reload to produce change notifications.
var WatchedKeys = []string{
	KeyRootDir,
	KeyDefaultExtension,
	KeyAppendExtensionOnRename,
	KeyNestedFolders,
	KeyAutoSave,
	KeyShowHidden,
	KeyEditor,
	KeyTemplate,
}

// Provider is the read side of the settings store. Values are read on every
// call; callers must not cache them.
type Provider interface {
	GetString(key string) (string, bool)
	GetBool(key string) bool
}

// Store is a viper-backed Provider that reports changed keys to subscribers.
type Store struct {
	v          *viper.Viper
	configFile string
	log        *logrus.Entry

	mu        sync.Mutex
	snapshot  map[string]string
	listeners map[int]func(key string)
	nextID    int
}

// DefaultConfigFile returns $HOME/.config/nt/config.yaml.
func DefaultConfigFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "nt", "config.yaml"), nil
}

// New loads settings from configFile (or the default location when empty).
// A missing file is not an error; defaults and NT_* environment variables apply.
func New(configFile string, log *logrus.Entry) (*Store, error) {
	if configFile == "" {
		var err error
		configFile, err = DefaultConfigFile()
		if err != nil {
			return nil, err
		}
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("NT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(configFile) {
			return nil, fmt.Errorf("read settings %s: %w", configFile, err)
		}
		log.WithField("file", configFile).Debug("no settings file, using defaults")
	}

	s := &Store{
		v:          v,
		configFile: configFile,
		log:        log.WithField("component", "config"),
		listeners:  make(map[int]func(string)),
	}
	s.snapshot = s.capture()
	return s, nil
}

// SetDefaults registers the default value of every optional key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDefaultExtension, ".md")
	v.SetDefault(KeyAppendExtensionOnRename, true)
	v.SetDefault(KeyNestedFolders, false)
	v.SetDefault(KeyAutoSave, true)
	v.SetDefault(KeyShowHidden, true)
	v.SetDefault(KeyEditor, os.Getenv("EDITOR"))
	v.SetDefault(KeyTemplate, "")
}

func isMissingFile(path string) bool {
	_, err := os.Stat(path)
	return os.IsNotExist(err)
}

// GetString returns the value for key and whether it is set to a non-blank value.
func (s *Store) GetString(key string) (string, bool) {
	val := strings.TrimSpace(s.v.GetString(key))
	if val == "" {
		return "", false
	}
	return val, true
}

// GetBool returns the boolean value for key.
func (s *Store) GetBool(key string) bool {
	return s.v.GetBool(key)
}

// Set overrides a key for the rest of the session and notifies subscribers
// if the effective value changed.
func (s *Store) Set(key string, value any) {
	s.v.Set(key, value)
	s.reconcile()
}

// ConfigFile is the path of the backing settings file.
func (s *Store) ConfigFile() string {
	return s.configFile
}

// AllSettings returns the effective settings of the notes namespace.
func (s *Store) AllSettings() map[string]any {
	out := make(map[string]any)
	for _, key := range WatchedKeys {
		out[strings.TrimPrefix(key, Namespace+".")] = s.v.Get(key)
	}
	return map[string]any{Namespace: out}
}

// EnsureFile writes the current settings to the settings file if it does not
// exist yet and returns its path.
func (s *Store) EnsureFile() (string, error) {
	if err := os.MkdirAll(filepath.Dir(s.configFile), 0755); err != nil {
		return "", fmt.Errorf("create settings directory: %w", err)
	}
	if !isMissingFile(s.configFile) {
		return s.configFile, nil
	}
	if err := s.v.SafeWriteConfigAs(s.configFile); err != nil {
		var exists viper.ConfigFileAlreadyExistsError
		if !errors.As(err, &exists) {
			return "", fmt.Errorf("write settings %s: %w", s.configFile, err)
		}
	}
	return s.configFile, nil
}

// Write saves the effective settings to the settings file, replacing it.
func (s *Store) Write() error {
	if err := os.MkdirAll(filepath.Dir(s.configFile), 0755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	if err := s.v.WriteConfigAs(s.configFile); err != nil {
		return fmt.Errorf("write settings %s: %w", s.configFile, err)
	}
	return nil
}

// OnChange registers fn to be called with every changed key. The returned
// function removes the subscription.
func (s *Store) OnChange(fn func(key string)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Watch re-reads the settings file whenever it changes on disk.
func (s *Store) Watch() {
	if err := os.MkdirAll(filepath.Dir(s.configFile), 0755); err != nil {
		s.log.WithError(err).Warn("cannot watch settings directory")
		return
	}
	s.v.OnConfigChange(func(e fsnotify.Event) {
		s.log.WithField("op", e.Op.String()).Debug("settings file changed")
		s.reconcile()
	})
	s.v.WatchConfig()
}

func (s *Store) capture() map[string]string {
	snap := make(map[string]string, len(WatchedKeys))
	for _, key := range WatchedKeys {
		snap[key] = fmt.Sprint(s.v.Get(key))
	}
	return snap
}

func (s *Store) reconcile() {
	current := s.capture()

	s.mu.Lock()
	var changed []string
	for _, key := range WatchedKeys {
		if s.snapshot[key] != current[key] {
			changed = append(changed, key)
		}
	}
	s.snapshot = current
	listeners := make([]func(string), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, key := range changed {
		s.log.WithField("key", key).Info("setting changed")
		for _, fn := range listeners {
			fn(key)
		}
	}
}
