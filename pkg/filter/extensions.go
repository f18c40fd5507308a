package filter

import (
	"path/filepath"
	"strings"
)

// TextExtensions lists the file extensions whose content may be searched.
// Anything not listed here (images, archives, executables, ...) is never read for matching.
var TextExtensions = map[string]bool{
	// plain text and docs
	".txt": true, ".md": true, ".markdown": true, ".rst": true, ".tex": true, ".log": true,
	// source
	".go": true, ".js": true, ".jsx": true, ".ts": true, ".tsx": true, ".mjs": true, ".cjs": true,
	".vue": true, ".svelte": true, ".py": true, ".rb": true, ".java": true, ".kt": true,
	".c": true, ".h": true, ".cpp": true, ".hpp": true, ".cs": true, ".rs": true, ".php": true,
	".swift": true, ".sh": true, ".bash": true, ".zsh": true, ".ps1": true, ".sql": true,
	".gradle": true,
	// markup and stylesheets
	".html": true, ".htm": true, ".xml": true, ".css": true, ".scss": true, ".sass": true, ".less": true,
	// structured data and config
	".json": true, ".yaml": true, ".yml": true, ".toml": true, ".ini": true, ".cfg": true,
	".conf": true, ".env": true, ".properties": true,
	// tabular text
	".csv": true, ".tsv": true,
}

// IsTextFile reports whether the file extension is on the content-search allow-list.
func IsTextFile(name string) bool {
	return TextExtensions[strings.ToLower(filepath.Ext(name))]
}
