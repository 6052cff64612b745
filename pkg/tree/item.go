package tree

import "path/filepath"

// Kind categorizes the entries surfaced in the notes tree.
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// OpenCommand describes how the host opens a file node.
type OpenCommand struct {
	Title string
	Path  string
}

// Node is one file or folder projected from disk. Nodes are rebuilt on every
// listing and never outlive a refresh.
type Node struct {
	Name string
	Kind Kind
	Path string // absolute, resolved at listing time
	Open *OpenCommand
}

// NewFile builds a file node that opens its own path.
func NewFile(path string) *Node {
	return &Node{
		Name: filepath.Base(path),
		Kind: KindFile,
		Path: path,
		Open: &OpenCommand{Title: "Open File", Path: path},
	}
}

// NewFolder builds a folder node. Folders are expanded, not opened.
func NewFolder(path string) *Node {
	return &Node{
		Name: filepath.Base(path),
		Kind: KindFolder,
		Path: path,
	}
}

func (n *Node) IsFolder() bool {
	return n != nil && n.Kind == KindFolder
}

func (n *Node) IsFile() bool {
	return n != nil && n.Kind == KindFile
}

// CollapsibleState mirrors the expand affordance a tree widget shows.
type CollapsibleState int

const (
	CollapsibleNone CollapsibleState = iota
	Collapsed
	Expanded
)

// DisplayItem is the UI-agnostic rendering of a node.
type DisplayItem struct {
	Label       string
	Tooltip     string
	Icon        string
	Collapsible CollapsibleState
	Command     *OpenCommand
}
