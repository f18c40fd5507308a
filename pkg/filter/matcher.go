// Package filter decides which file-system entries are visible under a filter configuration.
package filter

import (
	"errors"
	"strings"

	"go.uber.org/zap"
)

// Matcher evaluates entries against the search words of a Config.
// Hidden-list exclusion is not part of Matches; callers check IsHidden first.
type Matcher struct {
	words  []string
	reader ContentReader
	logger *zap.Logger
}

// NewMatcher creates a Matcher for cfg. If reader is nil, files are read from disk
// bounded by cfg.MaxSearchFileBytes.
func NewMatcher(cfg Config, reader ContentReader, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reader == nil {
		reader = DiskReader{MaxBytes: cfg.MaxSearchFileBytes}
	}
	return &Matcher{
		words:  cfg.Words(),
		reader: reader,
		logger: logger,
	}
}

// SearchActive reports whether any search word is in effect.
func (m *Matcher) SearchActive() bool {
	return len(m.words) > 0
}

// MatchesName reports whether the lower-cased name contains any search word.
// With no search words every name matches.
func (m *Matcher) MatchesName(name string) bool {
	if len(m.words) == 0 {
		return true
	}
	return containsAny(strings.ToLower(name), m.words)
}

// Matches reports whether an entry satisfies the search words.
// Directories match by name only; files fall back to a content search when their
// extension is on the text allow-list.
func (m *Matcher) Matches(name, path string, isDir bool) bool {
	if len(m.words) == 0 {
		return true
	}
	if containsAny(strings.ToLower(name), m.words) {
		return true
	}
	if isDir || !IsTextFile(name) {
		return false
	}

	content, err := m.reader.ReadFileAsText(path)
	if err != nil {
		if errors.Is(err, ErrTooLarge) || errors.Is(err, ErrBinary) || errors.Is(err, ErrNotRegular) {
			m.logger.Debug("Skipping content search", zap.String("path", path), zap.Error(err))
		} else {
			m.logger.Warn("Failed to read file for content search", zap.String("path", path), zap.Error(err))
		}
		return false
	}
	return containsAny(strings.ToLower(content), m.words)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// Matches is a one-shot form of Matcher.Matches reading content from disk.
func Matches(name, path string, isDir bool, cfg Config) bool {
	return NewMatcher(cfg, nil, nil).Matches(name, path, isDir)
}
