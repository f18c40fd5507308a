// Package settings persists user preferences between runs.
package settings

import (
	"eazypaste/pkg/filter"
)

// DefaultIntroRules is the intro text used until the user sets their own.
const DefaultIntroRules = "Your default intro/rules text here..."

// DefaultMaxSearchFileKB bounds content search reads unless configured otherwise.
const DefaultMaxSearchFileKB = 1024

// Settings is the persisted state of the application.
type Settings struct {
	LastFolderPath    string   `yaml:"last_folder_path"`
	HiddenList        []string `yaml:"hidden_list"`
	IntroRules        string   `yaml:"intro_rules"`
	SelectedFiles     []string `yaml:"selected_files"`
	UserTask          string   `yaml:"user_task"`
	ReverseHiddenMode bool     `yaml:"reverse_hidden_mode"`
	SearchWords       []string `yaml:"search_words"`
	MaxSearchFileKB   int      `yaml:"max_search_file_kb"`
	MaxWorkers        int      `yaml:"max_workers"`
}

// Defaults returns the settings used when nothing has been persisted yet.
func Defaults() Settings {
	return Settings{
		HiddenList:      []string{".git", "node_modules", ".env"},
		IntroRules:      DefaultIntroRules,
		SelectedFiles:   []string{},
		SearchWords:     []string{},
		MaxSearchFileKB: DefaultMaxSearchFileKB,
	}
}

// FilterConfig derives the traversal filter from the settings.
func (s Settings) FilterConfig() filter.Config {
	var maxBytes int64
	if s.MaxSearchFileKB > 0 {
		maxBytes = int64(s.MaxSearchFileKB) * 1024
	}
	return filter.Config{
		HiddenList:         append([]string(nil), s.HiddenList...),
		ReverseHiddenMode:  s.ReverseHiddenMode,
		SearchWords:        append([]string(nil), s.SearchWords...),
		MaxSearchFileBytes: maxBytes,
	}
}
