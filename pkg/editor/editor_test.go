package editor

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-notetree/pkg/notefs"
)

const root = "/tmp/notesA"

func setup(t *testing.T, files map[string]string) (afero.Fs, *Workspace) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll(root, 0755))
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0644))
	}
	return fsys, NewWorkspace(fsys, nil)
}

func tabPaths(w *Workspace) []string {
	var out []string
	for _, t := range w.ListOpenTabs() {
		out = append(out, t.Path)
	}
	return out
}

func readFile(t *testing.T, fsys afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fsys, path)
	require.NoError(t, err)
	return string(data)
}

func TestWorkspaceOpenEditSave(t *testing.T) {
	fsys, w := setup(t, map[string]string{"a.md": "hello"})
	a := filepath.Join(root, "a.md")

	require.NoError(t, w.Open(a))
	active, ok := w.Active()
	require.True(t, ok)
	assert.Equal(t, a, active.Path)
	assert.NotEmpty(t, active.Ref)

	content, ok := w.Content(a)
	require.True(t, ok)
	assert.Equal(t, "hello", content)

	require.NoError(t, w.Edit(a, "hello world"))
	assert.True(t, w.ListOpenTabs()[0].Dirty)

	require.NoError(t, w.Save(a))
	assert.False(t, w.ListOpenTabs()[0].Dirty)
	assert.Equal(t, "hello world", readFile(t, fsys, a))

	// Opening again focuses the existing tab.
	require.NoError(t, w.Open(a))
	assert.Len(t, w.ListOpenTabs(), 1)
}

func TestWorkspaceOpenMissingFile(t *testing.T) {
	_, w := setup(t, nil)
	err := w.Open(filepath.Join(root, "ghost.md"))
	assert.Error(t, err)
	assert.Empty(t, w.ListOpenTabs())
}

func TestWorkspaceCloseActivatesNeighbour(t *testing.T) {
	_, w := setup(t, map[string]string{"a.md": "", "b.md": ""})
	a, b := filepath.Join(root, "a.md"), filepath.Join(root, "b.md")
	require.NoError(t, w.Open(a))
	require.NoError(t, w.Open(b))

	var events []string
	w.OnActiveDocumentChanged(func(p string) { events = append(events, p) })

	active, _ := w.Active()
	require.NoError(t, w.Close(active.Ref))

	active, ok := w.Active()
	require.True(t, ok)
	assert.Equal(t, a, active.Path)
	assert.Equal(t, []string{a}, events)

	assert.Error(t, w.Close("no-such-ref"))
}

func TestReconcilerRenameDirtyActiveDocument(t *testing.T) {
	fsys, w := setup(t, map[string]string{"a.md": "draft"})
	a, b := filepath.Join(root, "a.md"), filepath.Join(root, "b.md")
	require.NoError(t, w.Open(a))
	require.NoError(t, w.Edit(a, "unsaved edits"))

	r := NewReconciler(w, nil)
	err := r.Rename(context.Background(), a, b, func() error {
		return fsys.Rename(a, b)
	})
	require.NoError(t, err)

	tabs := w.ListOpenTabs()
	require.Len(t, tabs, 1)
	assert.Equal(t, b, tabs[0].Path)
	assert.True(t, tabs[0].Active)
	assert.False(t, tabs[0].Dirty)

	exists, _ := afero.Exists(fsys, a)
	assert.False(t, exists)
	assert.Equal(t, "unsaved edits", readFile(t, fsys, b))
}

func TestReconcilerRenameInactiveTabStaysClosed(t *testing.T) {
	fsys, w := setup(t, map[string]string{"a.md": "", "other.md": ""})
	a, b, other := filepath.Join(root, "a.md"), filepath.Join(root, "b.md"), filepath.Join(root, "other.md")
	require.NoError(t, w.Open(a))
	require.NoError(t, w.Open(other))

	err := NewReconciler(w, nil).Rename(context.Background(), a, b, func() error {
		return fsys.Rename(a, b)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{other}, tabPaths(w))
	active, _ := w.Active()
	assert.Equal(t, other, active.Path)
}

func TestReconcilerRenameSweepsSplitDuplicates(t *testing.T) {
	fsys, w := setup(t, map[string]string{"a.md": ""})
	a, b := filepath.Join(root, "a.md"), filepath.Join(root, "b.md")
	require.NoError(t, w.Open(a))
	require.NoError(t, w.OpenSplit(a))
	require.Len(t, w.ListOpenTabs(), 2)

	err := NewReconciler(w, nil).Rename(context.Background(), a, b, func() error {
		return fsys.Rename(a, b)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{b}, tabPaths(w))
	active, ok := w.Active()
	require.True(t, ok)
	assert.Equal(t, b, active.Path)
}

func TestReconcilerRenameSweepsWhenReattachFails(t *testing.T) {
	fsys, w := setup(t, map[string]string{"a.md": ""})
	a, b := filepath.Join(root, "a.md"), filepath.Join(root, "b.md")
	require.NoError(t, w.Open(a))
	require.NoError(t, w.OpenSplit(a))

	// The entry vanishes instead of moving, so b cannot be opened.
	err := NewReconciler(w, nil).Rename(context.Background(), a, b, func() error {
		return fsys.Remove(a)
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, notefs.ErrPathNotFound)
	assert.Contains(t, err.Error(), "reattach")
	assert.Empty(t, tabPaths(w), "split duplicate still bound to the old path")
}

func TestReconcilerRenameFolderCarriesActiveTab(t *testing.T) {
	fsys, w := setup(t, map[string]string{"work/x.md": "x", "work/y.md": "y"})
	oldDir, newDir := filepath.Join(root, "work"), filepath.Join(root, "job")
	x, y := filepath.Join(oldDir, "x.md"), filepath.Join(oldDir, "y.md")
	require.NoError(t, w.Open(y))
	require.NoError(t, w.Open(x))

	// Move the folder contents explicitly; only the resulting layout matters here.
	err := NewReconciler(w, nil).Rename(context.Background(), oldDir, newDir, func() error {
		for _, name := range []string{"x.md", "y.md"} {
			data, err := afero.ReadFile(fsys, filepath.Join(oldDir, name))
			if err != nil {
				return err
			}
			if err := afero.WriteFile(fsys, filepath.Join(newDir, name), data, 0644); err != nil {
				return err
			}
		}
		return fsys.RemoveAll(oldDir)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(newDir, "x.md")}, tabPaths(w))
}

func TestReconcilerRenameRollsBackOnFailure(t *testing.T) {
	_, w := setup(t, map[string]string{"a.md": "keep", "other.md": ""})
	a, other := filepath.Join(root, "a.md"), filepath.Join(root, "other.md")
	require.NoError(t, w.Open(other))
	require.NoError(t, w.Open(a))
	require.NoError(t, w.Edit(a, "edited"))

	boom := errors.New("disk full")
	err := NewReconciler(w, nil).Rename(context.Background(), a, filepath.Join(root, "b.md"), func() error {
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.ElementsMatch(t, []string{a, other}, tabPaths(w))
	active, _ := w.Active()
	assert.Equal(t, a, active.Path)
	content, _ := w.Content(a)
	assert.Equal(t, "edited", content, "flushed content is reloaded after rollback")
}

func TestReconcilerRollbackRestoresFocus(t *testing.T) {
	_, w := setup(t, map[string]string{"a.md": "", "other.md": ""})
	a, other := filepath.Join(root, "a.md"), filepath.Join(root, "other.md")
	require.NoError(t, w.Open(a))
	require.NoError(t, w.Open(other))

	err := NewReconciler(w, nil).Delete(context.Background(), a, func() error {
		return errors.New("busy")
	})
	require.Error(t, err)

	assert.ElementsMatch(t, []string{a, other}, tabPaths(w))
	active, _ := w.Active()
	assert.Equal(t, other, active.Path)
}

func TestReconcilerDeleteClosesAllTabsUnderFolder(t *testing.T) {
	fsys, w := setup(t, map[string]string{"work/x.md": "", "work/deep/y.md": "", "keep.md": ""})
	work := filepath.Join(root, "work")
	keep := filepath.Join(root, "keep.md")
	require.NoError(t, w.Open(filepath.Join(work, "x.md")))
	require.NoError(t, w.Open(filepath.Join(work, "deep", "y.md")))
	require.NoError(t, w.Open(keep))

	err := NewReconciler(w, nil).Delete(context.Background(), work, func() error {
		return fsys.RemoveAll(work)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{keep}, tabPaths(w))
}

func TestReconcilerWithoutAffectedTabsOnlyMutates(t *testing.T) {
	_, w := setup(t, map[string]string{"a.md": "", "b.md": ""})
	require.NoError(t, w.Open(filepath.Join(root, "b.md")))

	called := false
	err := NewReconciler(w, nil).Rename(context.Background(), filepath.Join(root, "a.md"), filepath.Join(root, "c.md"), func() error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Len(t, w.ListOpenTabs(), 1)
}

func TestReconcilerFlushFailureAbortsBeforeMutation(t *testing.T) {
	base := afero.NewMemMapFs()
	a := filepath.Join(root, "a.md")
	require.NoError(t, base.MkdirAll(root, 0755))
	require.NoError(t, afero.WriteFile(base, a, []byte("x"), 0644))

	w := NewWorkspace(afero.NewReadOnlyFs(base), nil)
	require.NoError(t, w.Open(a))
	require.NoError(t, w.Edit(a, "y"))

	called := false
	err := NewReconciler(w, nil).Delete(context.Background(), a, func() error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
	assert.Len(t, w.ListOpenTabs(), 1)
}

func TestAutoSaverSavesDirtyDocumentOnFocusLoss(t *testing.T) {
	fsys, w := setup(t, map[string]string{"a.md": "", "b.md": ""})
	a, b := filepath.Join(root, "a.md"), filepath.Join(root, "b.md")

	inScope := func(p string) bool { return strings.HasPrefix(p, root+"/") }
	saver := NewAutoSaver(w, inScope, nil, nil)
	stop := saver.Start()
	defer stop()

	require.NoError(t, w.Open(a))
	require.NoError(t, w.Edit(a, "typed"))
	require.NoError(t, w.Open(b))

	assert.Equal(t, "typed", readFile(t, fsys, a))
	for _, tab := range w.ListOpenTabs() {
		assert.False(t, tab.Dirty)
	}

	require.NoError(t, w.Edit(b, "more"))
	w.Blur()
	assert.Equal(t, "more", readFile(t, fsys, b))
}

func TestAutoSaverIgnoresOutOfScopeAndDisabled(t *testing.T) {
	fsys, w := setup(t, map[string]string{"a.md": "", "b.md": ""})
	a, b := filepath.Join(root, "a.md"), filepath.Join(root, "b.md")

	enabled := false
	saver := NewAutoSaver(w, func(string) bool { return true }, func() bool { return enabled }, nil)
	defer saver.Start()()

	require.NoError(t, w.Open(a))
	require.NoError(t, w.Edit(a, "typed"))
	require.NoError(t, w.Open(b))
	assert.Equal(t, "", readFile(t, fsys, a), "disabled auto-save must not write")

	enabled = true
	other := NewAutoSaver(w, func(string) bool { return false }, nil, nil)
	other.ActiveChanged(a)
	other.ActiveChanged(b)
	assert.Equal(t, "", readFile(t, fsys, a), "documents outside the notes root are left alone")
}
