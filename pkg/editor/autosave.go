package editor

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// AutoSaver saves a notes document when focus leaves it with unsaved changes.
// It owns the previously-active path; one instance serves one session.
type AutoSaver struct {
	host    Host
	inScope func(path string) bool
	enabled func() bool
	log     *logrus.Entry

	mu       sync.Mutex
	previous string
}

// NewAutoSaver creates an auto-save policy. inScope limits it to documents
// under the notes root; enabled is consulted on every focus change.
func NewAutoSaver(host Host, inScope func(string) bool, enabled func() bool, log *logrus.Entry) *AutoSaver {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if enabled == nil {
		enabled = func() bool { return true }
	}
	return &AutoSaver{
		host:    host,
		inScope: inScope,
		enabled: enabled,
		log:     log.WithField("component", "autosave"),
	}
}

// Start subscribes to the host and returns the unsubscribe function.
func (a *AutoSaver) Start() func() {
	for _, t := range a.host.ListOpenTabs() {
		if t.Active {
			a.mu.Lock()
			a.previous = t.Path
			a.mu.Unlock()
		}
	}
	return a.host.OnActiveDocumentChanged(a.ActiveChanged)
}

// ActiveChanged handles a focus move to next ("" when no document has focus).
func (a *AutoSaver) ActiveChanged(next string) {
	a.mu.Lock()
	prev := a.previous
	a.previous = next
	a.mu.Unlock()

	if prev == "" || samePath(prev, next) || !a.enabled() || !a.inScope(prev) {
		return
	}

	for _, t := range a.host.ListOpenTabs() {
		if t.Path != prev || !t.Dirty {
			continue
		}
		if err := a.host.Save(prev); err != nil {
			a.log.WithError(err).WithField("path", prev).Warn("auto-save failed")
			return
		}
		a.log.WithField("path", prev).Debug("auto-saved on focus change")
		return
	}
}
