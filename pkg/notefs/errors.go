package notefs

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrPathNotFound is returned when a path vanished between listing and use.
	ErrPathNotFound = errors.New("path not found")

	// ErrIOUnavailable covers permission and device-level failures.
	ErrIOUnavailable = errors.New("io unavailable")

	// ErrNameCollision is returned when a create or rename target already exists.
	ErrNameCollision = errors.New("name already exists")

	// ErrInvalidInput marks a name that cannot name an entry in place, or an
	// attempt to modify the notes root itself.
	ErrInvalidInput = errors.New("invalid input")
)

// OpError records the failed operation, the path it targeted and the taxonomy kind.
type OpError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes both the taxonomy kind and the underlying error to errors.Is.
func (e *OpError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Classify wraps a filesystem error with the matching taxonomy kind.
// A nil error stays nil.
func Classify(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var opErr *OpError
	if errors.As(err, &opErr) {
		return err
	}

	kind := ErrIOUnavailable
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = ErrPathNotFound
	case errors.Is(err, fs.ErrExist):
		kind = ErrNameCollision
	}
	return &OpError{Op: op, Path: path, Kind: kind, Err: err}
}
