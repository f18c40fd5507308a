package filter

import (
	"errors"
	"fmt"
	"os"
)

// ContentReader reads the full text of a file for content search.
type ContentReader interface {
	ReadFileAsText(path string) (string, error)
}

// ContentReaderFunc adapts a plain function to the ContentReader interface.
type ContentReaderFunc func(path string) (string, error)

// ReadFileAsText calls f(path).
func (f ContentReaderFunc) ReadFileAsText(path string) (string, error) {
	return f(path)
}

// ErrTooLarge is returned by DiskReader when a file exceeds its size bound.
var ErrTooLarge = errors.New("file exceeds content search size limit")

// ErrBinary is returned by DiskReader when the content sniffs as binary.
var ErrBinary = errors.New("file content looks binary")

// ErrNotRegular is returned by DiskReader for devices, sockets and named pipes.
var ErrNotRegular = errors.New("not a regular file")

// DiskReader reads files from the local filesystem.
type DiskReader struct {
	MaxBytes int64 // 0 means unbounded
}

// ReadFileAsText reads the whole file at path as text.
// It refuses anything but regular files, files larger than MaxBytes and content
// that looks binary.
func (r DiskReader) ReadFileAsText(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s (%s): %w", path, info.Mode().Type(), ErrNotRegular)
	}
	if r.MaxBytes > 0 && info.Size() > r.MaxBytes {
		return "", fmt.Errorf("%s (%d bytes): %w", path, info.Size(), ErrTooLarge)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if looksBinary(data) {
		return "", fmt.Errorf("%s: %w", path, ErrBinary)
	}
	return string(data), nil
}
