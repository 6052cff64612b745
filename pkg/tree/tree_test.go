package tree

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-notetree/pkg/config"
	"github.com/mattsolo1/grove-notetree/pkg/notefs"
)

type mapSettings map[string]any

func (m mapSettings) GetString(key string) (string, bool) {
	v, ok := m[key].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (m mapSettings) GetBool(key string) bool {
	v, _ := m[key].(bool)
	return v
}

func newTestModel(t *testing.T, settings mapSettings) (*Model, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	resolver := NewPathResolver(settings).WithDefaultRoot(func() (string, error) {
		return "/default/notes", nil
	})
	return NewModel(resolver, notefs.NewLister(fsys), settings, nil), fsys
}

func labels(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	return out
}

func TestRootPathFallsBackToDefault(t *testing.T) {
	settings := mapSettings{}
	resolver := NewPathResolver(settings).WithDefaultRoot(func() (string, error) {
		return "/default/notes", nil
	})

	root, err := resolver.RootPath()
	require.NoError(t, err)
	assert.Equal(t, "/default/notes", root)

	settings[config.KeyRootDir] = "/tmp/notesA"
	root, err = resolver.RootPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/notesA", root, "settings change must apply without restart")
}

func TestRootPathExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	resolver := NewPathResolver(mapSettings{config.KeyRootDir: "~/notes"})
	root, err := resolver.RootPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "notes"), root)
}

func TestResolveNodePath(t *testing.T) {
	resolver := NewPathResolver(mapSettings{config.KeyRootDir: "/tmp/notesA"})

	tests := []struct {
		name string
		node *Node
		want string
	}{
		{"nil is root", nil, "/tmp/notesA"},
		{"resolved path wins", NewFolder("/tmp/notesA/work/deep"), "/tmp/notesA/work/deep"},
		{"label only joins root", &Node{Name: "loose.md", Kind: KindFile}, "/tmp/notesA/loose.md"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.ResolveNodePath(tt.node)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContains(t *testing.T) {
	resolver := NewPathResolver(mapSettings{config.KeyRootDir: "/tmp/notesA"})
	assert.True(t, resolver.Contains("/tmp/notesA/a.md"))
	assert.True(t, resolver.Contains("/tmp/notesA/work/b.md"))
	assert.False(t, resolver.Contains("/tmp/notesB/a.md"))
	assert.False(t, resolver.Contains("/tmp/notesA-other/a.md"))
	assert.False(t, resolver.Contains("/tmp"))
}

func TestChildrenOfRoot(t *testing.T) {
	m, fsys := newTestModel(t, mapSettings{config.KeyRootDir: "/tmp/notesA"})
	require.NoError(t, fsys.MkdirAll("/tmp/notesA/work", 0755))
	require.NoError(t, afero.WriteFile(fsys, "/tmp/notesA/todo.md", nil, 0644))

	nodes, err := m.Children(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"work", "todo.md"}, labels(nodes))
	assert.Equal(t, KindFolder, nodes[0].Kind)
	assert.Nil(t, nodes[0].Open)
	assert.Equal(t, KindFile, nodes[1].Kind)
	require.NotNil(t, nodes[1].Open)
	assert.Equal(t, "/tmp/notesA/todo.md", nodes[1].Open.Path)
}

func TestChildrenOfNestedFolderUseFolderPath(t *testing.T) {
	m, fsys := newTestModel(t, mapSettings{config.KeyRootDir: "/tmp/notesA"})
	require.NoError(t, fsys.MkdirAll("/tmp/notesA/work/deep", 0755))
	require.NoError(t, afero.WriteFile(fsys, "/tmp/notesA/work/deep/inner.md", nil, 0644))
	// Same label at the root must not leak into the nested listing.
	require.NoError(t, fsys.MkdirAll("/tmp/notesA/deep", 0755))

	top, err := m.Children(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, []string{"deep", "work"}, labels(top))

	work, err := m.Children(context.Background(), top[1])
	require.NoError(t, err)
	require.Equal(t, []string{"deep"}, labels(work))

	deep, err := m.Children(context.Background(), work[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"inner.md"}, labels(deep))
	assert.Equal(t, "/tmp/notesA/work/deep/inner.md", deep[0].Path)
}

func TestChildrenOfFileIsEmpty(t *testing.T) {
	m, _ := newTestModel(t, mapSettings{config.KeyRootDir: "/tmp/notesA"})

	nodes, err := m.Children(context.Background(), NewFile("/tmp/notesA/a.md"))
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestChildrenCreatesRoot(t *testing.T) {
	m, fsys := newTestModel(t, mapSettings{})

	nodes, err := m.Children(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, nodes)

	exists, err := afero.DirExists(fsys, "/default/notes")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestChildrenHonoursShowHidden(t *testing.T) {
	settings := mapSettings{config.KeyRootDir: "/n"}
	m, fsys := newTestModel(t, settings)
	require.NoError(t, afero.WriteFile(fsys, "/n/.hidden.md", nil, 0644))

	nodes, err := m.Children(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, nodes)

	settings[config.KeyShowHidden] = true
	nodes, err = m.Children(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{".hidden.md"}, labels(nodes))
}

func TestDisplayItem(t *testing.T) {
	m, _ := newTestModel(t, mapSettings{})

	folder := m.DisplayItem(NewFolder("/n/work"))
	assert.Equal(t, "work", folder.Label)
	assert.Equal(t, Collapsed, folder.Collapsible)
	assert.Equal(t, "folder", folder.Icon)
	assert.Nil(t, folder.Command)

	note := m.DisplayItem(NewFile("/n/a.md"))
	assert.Equal(t, CollapsibleNone, note.Collapsible)
	assert.Equal(t, "markdown", note.Icon)
	require.NotNil(t, note.Command)
	assert.Equal(t, "/n/a.md", note.Command.Path)

	assert.Equal(t, "file", m.DisplayItem(NewFile("/n/a.txt")).Icon)
}

func TestRefreshFiresWithNilNode(t *testing.T) {
	m, _ := newTestModel(t, mapSettings{})

	calls := 0
	var got *Node = NewFile("/sentinel")
	unsubscribe := m.OnDidChange(func(n *Node) {
		calls++
		got = n
	})

	m.Refresh()
	assert.Equal(t, 1, calls)
	assert.Nil(t, got)

	unsubscribe()
	m.Refresh()
	assert.Equal(t, 1, calls)
}
