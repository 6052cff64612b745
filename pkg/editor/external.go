package editor

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// ExternalHost opens documents in an external editor process, one at a time.
// It keeps no tabs, so there is never anything to reconcile or auto-save.
type ExternalHost struct {
	command func() string
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	log     *logrus.Entry

	// Opened records every path passed to Open, in order.
	Opened []string
}

// NewExternalHost creates a host running command, e.g. "vim" or "code -w".
// command is evaluated on each Open; an empty result falls back to $EDITOR
// and then vim. A nil command disables launching entirely.
func NewExternalHost(command func() string, log *logrus.Entry) *ExternalHost {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &ExternalHost{
		command: command,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		log:     log.WithField("component", "external-editor"),
	}
}

var _ Host = (*ExternalHost)(nil)

// SetIO redirects the editor's standard streams.
func (h *ExternalHost) SetIO(in io.Reader, out, errOut io.Writer) {
	h.stdin, h.stdout, h.stderr = in, out, errOut
}

// ListOpenTabs always returns nil.
func (h *ExternalHost) ListOpenTabs() []Tab { return nil }

// Save is a no-op; the external editor owns its buffers.
func (h *ExternalHost) Save(string) error { return nil }

// Close is a no-op.
func (h *ExternalHost) Close(string) error { return nil }

// OnActiveDocumentChanged never fires.
func (h *ExternalHost) OnActiveDocumentChanged(func(string)) func() { return func() {} }

// Open runs the editor on path and waits for it to exit.
func (h *ExternalHost) Open(path string) error {
	h.Opened = append(h.Opened, path)
	if h.command == nil {
		return nil
	}

	args := strings.Fields(h.command())
	if len(args) == 0 {
		args = strings.Fields(os.Getenv("EDITOR"))
	}
	if len(args) == 0 {
		args = []string{"vim"}
	}

	cmd := exec.Command(args[0], append(args[1:], path)...)
	cmd.Stdin = h.stdin
	cmd.Stdout = h.stdout
	cmd.Stderr = h.stderr

	h.log.WithFields(logrus.Fields{"editor": args[0], "path": path}).Debug("launching editor")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run editor %s: %w", args[0], err)
	}
	return nil
}
