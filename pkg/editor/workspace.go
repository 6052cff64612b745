package editor

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/mattsolo1/grove-notetree/pkg/notefs"
)

type document struct {
	path    string
	content string
	dirty   bool
}

type tab struct {
	ref  string
	path string
}

// Workspace is an in-process editor host: a set of tabs over buffered
// documents backed by a filesystem. Several tabs may show the same document.
type Workspace struct {
	fs  afero.Fs
	log *logrus.Entry

	mu     sync.Mutex
	docs   map[string]*document
	tabs   []tab
	active string // ref of the active tab, "" when focus is elsewhere

	listeners map[int]func(string)
	nextID    int
}

// NewWorkspace creates an empty editor workspace.
func NewWorkspace(fsys afero.Fs, log *logrus.Entry) *Workspace {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Workspace{
		fs:        fsys,
		log:       log.WithField("component", "editor"),
		docs:      make(map[string]*document),
		listeners: make(map[int]func(string)),
	}
}

var _ Host = (*Workspace)(nil)

// ListOpenTabs returns the tabs in display order.
func (w *Workspace) ListOpenTabs() []Tab {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Tab, 0, len(w.tabs))
	for _, t := range w.tabs {
		doc := w.docs[t.path]
		out = append(out, Tab{
			Ref:    t.ref,
			Path:   t.path,
			Dirty:  doc != nil && doc.dirty,
			Active: t.ref == w.active,
		})
	}
	return out
}

// Open focuses the tab showing path, loading the document into a new tab if
// none exists.
func (w *Workspace) Open(path string) error {
	w.mu.Lock()
	for _, t := range w.tabs {
		if t.path == path {
			changed := w.activateLocked(t.ref)
			w.mu.Unlock()
			w.notify(changed)
			return nil
		}
	}
	w.mu.Unlock()
	return w.openTab(path)
}

// OpenSplit always opens an additional tab for path, as a split view does.
func (w *Workspace) OpenSplit(path string) error {
	return w.openTab(path)
}

func (w *Workspace) openTab(path string) error {
	w.mu.Lock()
	_, loaded := w.docs[path]
	w.mu.Unlock()

	var content string
	if !loaded {
		data, err := afero.ReadFile(w.fs, path)
		if err != nil {
			return notefs.Classify("open", path, err)
		}
		content = string(data)
	}

	w.mu.Lock()
	if _, ok := w.docs[path]; !ok {
		w.docs[path] = &document{path: path, content: content}
	}
	ref := uuid.NewString()
	w.tabs = append(w.tabs, tab{ref: ref, path: path})
	changed := w.activateLocked(ref)
	w.mu.Unlock()

	w.log.WithField("path", path).Debug("opened tab")
	w.notify(changed)
	return nil
}

// Close removes a tab. The document is dropped, unsaved edits included, once
// no tab shows it.
func (w *Workspace) Close(ref string) error {
	w.mu.Lock()
	idx := -1
	for i, t := range w.tabs {
		if t.ref == ref {
			idx = i
			break
		}
	}
	if idx < 0 {
		w.mu.Unlock()
		return fmt.Errorf("close tab %s: no such tab", ref)
	}

	closed := w.tabs[idx]
	w.tabs = append(w.tabs[:idx], w.tabs[idx+1:]...)

	stillShown := false
	for _, t := range w.tabs {
		if t.path == closed.path {
			stillShown = true
			break
		}
	}
	if !stillShown {
		delete(w.docs, closed.path)
	}

	changed := ""
	notifyChange := false
	if w.active == closed.ref {
		next := ""
		if len(w.tabs) > 0 {
			if idx >= len(w.tabs) {
				idx = len(w.tabs) - 1
			}
			next = w.tabs[idx].ref
		}
		w.active = next
		changed = w.activePathLocked()
		notifyChange = true
	}
	w.mu.Unlock()

	w.log.WithField("path", closed.path).Debug("closed tab")
	if notifyChange {
		w.notifyPath(changed)
	}
	return nil
}

// Save writes the buffered document for path to disk.
func (w *Workspace) Save(path string) error {
	w.mu.Lock()
	doc, ok := w.docs[path]
	if !ok {
		w.mu.Unlock()
		return fmt.Errorf("save %s: document not open", path)
	}
	content := doc.content
	w.mu.Unlock()

	if err := afero.WriteFile(w.fs, path, []byte(content), 0644); err != nil {
		return notefs.Classify("save", path, err)
	}

	w.mu.Lock()
	if doc.content == content {
		doc.dirty = false
	}
	w.mu.Unlock()
	w.log.WithField("path", path).Debug("saved document")
	return nil
}

// Edit replaces the buffered content of an open document and marks it dirty.
func (w *Workspace) Edit(path, content string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	doc, ok := w.docs[path]
	if !ok {
		return fmt.Errorf("edit %s: document not open", path)
	}
	if doc.content != content {
		doc.content = content
		doc.dirty = true
	}
	return nil
}

// Content returns the buffered content of an open document.
func (w *Workspace) Content(path string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	doc, ok := w.docs[path]
	if !ok {
		return "", false
	}
	return doc.content, true
}

// Active returns the active tab, if any.
func (w *Workspace) Active() (Tab, bool) {
	for _, t := range w.ListOpenTabs() {
		if t.Active {
			return t, true
		}
	}
	return Tab{}, false
}

// Focus activates the tab with ref.
func (w *Workspace) Focus(ref string) error {
	w.mu.Lock()
	found := false
	for _, t := range w.tabs {
		if t.ref == ref {
			found = true
			break
		}
	}
	if !found {
		w.mu.Unlock()
		return fmt.Errorf("focus tab %s: no such tab", ref)
	}
	changed := w.activateLocked(ref)
	w.mu.Unlock()
	w.notify(changed)
	return nil
}

// Blur moves focus away from every document, e.g. to the tree pane.
func (w *Workspace) Blur() {
	w.mu.Lock()
	if w.active == "" {
		w.mu.Unlock()
		return
	}
	w.active = ""
	w.mu.Unlock()
	w.notifyPath("")
}

// OnActiveDocumentChanged subscribes fn to active document changes. fn
// receives the new active path, or "" when no document has focus.
func (w *Workspace) OnActiveDocumentChanged(fn func(path string)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.nextID
	w.nextID++
	w.listeners[id] = fn
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.listeners, id)
	}
}

// activateLocked sets the active tab and reports the new path when the
// active document changed. Caller holds w.mu.
func (w *Workspace) activateLocked(ref string) *string {
	before := w.activePathLocked()
	hadFocus := w.active != ""
	w.active = ref
	after := w.activePathLocked()
	if hadFocus && before == after {
		return nil
	}
	return &after
}

func (w *Workspace) activePathLocked() string {
	for _, t := range w.tabs {
		if t.ref == w.active {
			return t.path
		}
	}
	return ""
}

func (w *Workspace) notify(changed *string) {
	if changed != nil {
		w.notifyPath(*changed)
	}
}

func (w *Workspace) notifyPath(path string) {
	w.mu.Lock()
	listeners := make([]func(string), 0, len(w.listeners))
	for _, fn := range w.listeners {
		listeners = append(listeners, fn)
	}
	w.mu.Unlock()

	for _, fn := range listeners {
		fn(path)
	}
}
