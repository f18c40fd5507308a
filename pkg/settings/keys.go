package settings

import (
	"fmt"
	"strconv"
	"strings"
)

// field describes how one YAML key maps onto Settings.
type field struct {
	list bool
	get  func(*Settings) []string
	set  func(*Settings, []string) error
}

var fields = map[string]field{
	"last_folder_path": scalar(func(s *Settings) *string { return &s.LastFolderPath }),
	"intro_rules":      scalar(func(s *Settings) *string { return &s.IntroRules }),
	"user_task":        scalar(func(s *Settings) *string { return &s.UserTask }),
	"hidden_list":      list(func(s *Settings) *[]string { return &s.HiddenList }),
	"selected_files":   list(func(s *Settings) *[]string { return &s.SelectedFiles }),
	"search_words":     list(func(s *Settings) *[]string { return &s.SearchWords }),
	"reverse_hidden_mode": {
		get: func(s *Settings) []string { return []string{strconv.FormatBool(s.ReverseHiddenMode)} },
		set: func(s *Settings, v []string) error {
			b, err := strconv.ParseBool(strings.Join(v, ""))
			if err != nil {
				return err
			}
			s.ReverseHiddenMode = b
			return nil
		},
	},
	"max_search_file_kb": integer(func(s *Settings) *int { return &s.MaxSearchFileKB }),
	"max_workers":        integer(func(s *Settings) *int { return &s.MaxWorkers }),
}

func scalar(ptr func(*Settings) *string) field {
	return field{
		get: func(s *Settings) []string { return []string{*ptr(s)} },
		set: func(s *Settings, v []string) error {
			*ptr(s) = strings.Join(v, " ")
			return nil
		},
	}
}

func list(ptr func(*Settings) *[]string) field {
	return field{
		list: true,
		get:  func(s *Settings) []string { return append([]string(nil), *ptr(s)...) },
		set: func(s *Settings, v []string) error {
			*ptr(s) = append([]string{}, v...)
			return nil
		},
	}
}

func integer(ptr func(*Settings) *int) field {
	return field{
		get: func(s *Settings) []string { return []string{strconv.Itoa(*ptr(s))} },
		set: func(s *Settings, v []string) error {
			n, err := strconv.Atoi(strings.Join(v, ""))
			if err != nil {
				return err
			}
			if n < 0 {
				return fmt.Errorf("must not be negative, got %d", n)
			}
			*ptr(s) = n
			return nil
		},
	}
}

// Keys returns every settable key in the order they appear in the settings file.
func Keys() []string {
	return []string{
		"last_folder_path",
		"hidden_list",
		"intro_rules",
		"selected_files",
		"user_task",
		"reverse_hidden_mode",
		"search_words",
		"max_search_file_kb",
		"max_workers",
	}
}

// IsList reports whether key holds a list value.
func IsList(key string) bool {
	return fields[key].list
}

// Get returns the value stored under key. Scalar keys yield a single element.
func (s Settings) Get(key string) ([]string, error) {
	f, ok := fields[key]
	if !ok {
		return nil, &Error{Kind: UnknownKey, Path: key}
	}
	return f.get(&s), nil
}

// Set stores values under key. Scalar string keys join the values with spaces; list
// keys take them as given, so no values clears the list.
func (s *Settings) Set(key string, values []string) error {
	f, ok := fields[key]
	if !ok {
		return &Error{Kind: UnknownKey, Path: key}
	}
	if err := f.set(s, values); err != nil {
		return &Error{Kind: InvalidValue, Path: key, Err: err}
	}
	return nil
}
