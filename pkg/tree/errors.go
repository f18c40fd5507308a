package tree

import (
	"errors"
	"io/fs"
)

// BuildErrorKind represents the type of a root-level build failure.
type BuildErrorKind string

const (
	// RootNotFound indicates the root directory does not exist.
	RootNotFound BuildErrorKind = "ROOT_NOT_FOUND"
	// RootPermission indicates insufficient permissions to list the root.
	RootPermission BuildErrorKind = "ROOT_PERMISSION_DENIED"
	// RootUnreadable covers every other failure to list the root, including a root
	// that is not a directory.
	RootUnreadable BuildErrorKind = "ROOT_UNREADABLE"
)

// BuildError is returned when the top-level directory listing fails.
// Failures below the root never surface as errors; those entries are skipped.
type BuildError struct {
	Kind BuildErrorKind
	Path string
	Err  error
}

func (e *BuildError) Error() string {
	return string(e.Kind) + ": " + e.Path + ": " + e.Err.Error()
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

func newBuildError(path string, err error) *BuildError {
	kind := RootUnreadable
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = RootNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = RootPermission
	}
	return &BuildError{Kind: kind, Path: path, Err: err}
}
