package editor

// Tab is one open editor tab as reported by the host.
type Tab struct {
	Ref    string
	Path   string
	Dirty  bool
	Active bool
}

// Host is the editor surface the notes tree drives. Open focuses the tab it
// opens (or the existing tab for that path).
type Host interface {
	ListOpenTabs() []Tab
	Save(path string) error
	Close(ref string) error
	Open(path string) error
	OnActiveDocumentChanged(fn func(path string)) func()
}
