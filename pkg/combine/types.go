// File: pkg/combine/types.go
package combine

import (
	"strings"

	"eazypaste/pkg/filter"
)

// Request holds the inputs for assembling a prompt.
type Request struct {
	Root         string               // Folder the selected files are shown relative to
	Files        []string             // Absolute paths of the selected files, in selection order
	IntroRules   string               // Text placed before the files
	UserTask     string               // Text placed after the files
	IncludeTree  bool                 // If true, a structure section lists the selected files
	MaxWorkers   int                  // Number of concurrent readers (0 = NumCPU)
	MaxFileBytes int64                // Files larger than this are left empty (0 = unbounded)
	Reader       filter.ContentReader // Optional; defaults to a disk reader bounded by MaxFileBytes
}

// FileContent holds the formatted section for one file.
type FileContent struct {
	Path    string // Path relative to the request root
	Content string // Header followed by the file text
}

// SeparatorLine opens every section header.
var SeparatorLine = "# " + strings.Repeat("-", 78)
