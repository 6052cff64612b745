package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeSettings(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestNewReadsSettingsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	writeSettings(t, file, "notes:\n  root_dir: /tmp/notesA\n  auto_save: false\n")

	s, err := New(file, nil)
	require.NoError(t, err)

	root, ok := s.GetString(KeyRootDir)
	assert.True(t, ok)
	assert.Equal(t, "/tmp/notesA", root)
	assert.False(t, s.GetBool(KeyAutoSave))

	ext, ok := s.GetString(KeyDefaultExtension)
	assert.True(t, ok)
	assert.Equal(t, ".md", ext)
}

func TestNewMissingFileUsesDefaults(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", "config.yaml")

	s, err := New(file, nil)
	require.NoError(t, err)

	_, ok := s.GetString(KeyRootDir)
	assert.False(t, ok)
	assert.True(t, s.GetBool(KeyAutoSave))
	assert.True(t, s.GetBool(KeyAppendExtensionOnRename))
	assert.False(t, s.GetBool(KeyNestedFolders))
}

func TestNewRejectsMalformedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	writeSettings(t, file, "notes: [unclosed\n")

	_, err := New(file, nil)
	assert.Error(t, err)
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("NT_NOTES_ROOT_DIR", "/from/env")
	s, err := New(filepath.Join(t.TempDir(), "config.yaml"), nil)
	require.NoError(t, err)

	root, ok := s.GetString(KeyRootDir)
	assert.True(t, ok)
	assert.Equal(t, "/from/env", root)
}

func TestBlankStringIsAbsent(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "config.yaml"), nil)
	require.NoError(t, err)

	s.Set(KeyRootDir, "   ")
	_, ok := s.GetString(KeyRootDir)
	assert.False(t, ok)
}

func TestSetNotifiesChangedKeysOnly(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "config.yaml"), nil)
	require.NoError(t, err)

	var changed []string
	unsubscribe := s.OnChange(func(key string) {
		changed = append(changed, key)
	})

	s.Set(KeyRootDir, "/tmp/notesB")
	s.Set(KeyRootDir, "/tmp/notesB")
	s.Set(KeyAutoSave, true) // already the default
	assert.Equal(t, []string{KeyRootDir}, changed)

	unsubscribe()
	s.Set(KeyRootDir, "/tmp/notesC")
	assert.Len(t, changed, 1)
}

func TestReloadNotifiesOnFileChange(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	writeSettings(t, file, "notes:\n  root_dir: /tmp/one\n")

	s, err := New(file, nil)
	require.NoError(t, err)

	var changed []string
	s.OnChange(func(key string) { changed = append(changed, key) })

	writeSettings(t, file, "notes:\n  root_dir: /tmp/two\n")
	require.NoError(t, s.v.ReadInConfig())
	s.reconcile()

	assert.Equal(t, []string{KeyRootDir}, changed)
	root, _ := s.GetString(KeyRootDir)
	assert.Equal(t, "/tmp/two", root)
}

func TestEnsureFileWritesDefaults(t *testing.T) {
	file := filepath.Join(t.TempDir(), "sub", "config.yaml")
	s, err := New(file, nil)
	require.NoError(t, err)

	path, err := s.EnsureFile()
	require.NoError(t, err)
	assert.Equal(t, file, path)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	var parsed map[string]map[string]any
	require.NoError(t, yaml.Unmarshal(data, &parsed))
	assert.Equal(t, ".md", parsed["notes"]["default_extension"])

	// Existing file is left alone.
	writeSettings(t, file, "notes:\n  root_dir: /keep\n")
	_, err = s.EnsureFile()
	require.NoError(t, err)
	data, err = os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "/keep")
}

func TestAllSettingsScopedToNamespace(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "config.yaml"), nil)
	require.NoError(t, err)

	all := s.AllSettings()
	notes, ok := all[Namespace].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, ".md", notes["default_extension"])
	assert.Contains(t, notes, "root_dir")
}

func TestWritePersistsOverrides(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	writeSettings(t, file, "notes:\n  root_dir: /tmp/old\n")

	s, err := New(file, nil)
	require.NoError(t, err)
	s.Set(KeyRootDir, "/tmp/new")
	require.NoError(t, s.Write())

	reloaded, err := New(file, nil)
	require.NoError(t, err)
	root, _ := reloaded.GetString(KeyRootDir)
	assert.Equal(t, "/tmp/new", root)
}
