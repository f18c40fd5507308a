// File: pkg/filter/config.go
package filter

import "strings"

// Config holds the filter options applied to a single traversal.
// It is passed by value and never mutated by the traversal code.
type Config struct {
	HiddenList         []string // Substrings that exclude an entry when found in its name.
	ReverseHiddenMode  bool     // Reserved; carried through but not used by matching.
	SearchWords        []string // Words restricting visible entries; empty means match everything.
	MaxSearchFileBytes int64    // Files larger than this are not content-searched (0 = unbounded).
}

// Words returns the normalized search words: trimmed, lower-cased, blanks dropped.
func (c Config) Words() []string {
	var words []string
	for _, w := range c.SearchWords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

// SearchActive reports whether at least one usable search word is configured.
func (c Config) SearchActive() bool {
	return len(c.Words()) > 0
}

// IsHidden reports whether name contains any of the hidden substrings.
// The comparison is case-sensitive.
func IsHidden(name string, hidden []string) bool {
	for _, h := range hidden {
		if h == "" {
			continue
		}
		if strings.Contains(name, h) {
			return true
		}
	}
	return false
}
