package watch

// Kind represents the type of a watch event.
type Kind int

const (
	// FileCreated indicates a new file appeared.
	FileCreated Kind = iota
	// FileChanged indicates a file was written to.
	FileChanged
	// FileDeleted indicates a file was removed or renamed away.
	FileDeleted
	// DirCreated indicates a new directory appeared.
	DirCreated
	// DirDeleted indicates a directory was removed or renamed away.
	DirDeleted
)

// String returns a human-readable representation of the event kind.
func (k Kind) String() string {
	switch k {
	case FileCreated:
		return "file-created"
	case FileChanged:
		return "file-changed"
	case FileDeleted:
		return "file-deleted"
	case DirCreated:
		return "dir-created"
	case DirDeleted:
		return "dir-deleted"
	default:
		return "unknown"
	}
}

// IsDir reports whether the kind concerns a directory.
func (k Kind) IsDir() bool {
	return k == DirCreated || k == DirDeleted
}

// Event is one change below the watched root.
type Event struct {
	Kind Kind   // Type of change
	Path string // Absolute path of the affected entry
}
