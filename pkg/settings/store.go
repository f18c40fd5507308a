package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// AppDirName is the directory below the user config dir holding the settings file.
const AppDirName = "eazypaste"

// FileName is the settings file name.
const FileName = "config.yaml"

// DefaultPath returns the per-user settings file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, AppDirName, FileName), nil
}

// Store reads and writes Settings in a YAML file. Writers hold an exclusive lock on
// a sibling ".lock" file and replace the file atomically, so concurrent processes
// never observe a partial write.
type Store struct {
	path   string
	lock   *flock.Flock
	logger *zap.Logger
}

// NewStore creates a Store for the file at path.
func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger,
	}
}

// Path returns the settings file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the persisted settings. A missing file yields Defaults(); keys absent
// from the file keep their default values.
func (s *Store) Load() (Settings, error) {
	if err := s.acquire(false); err != nil {
		return Settings{}, err
	}
	defer s.release()
	return s.read()
}

// Update applies fn to the current settings and persists the result.
func (s *Store) Update(fn func(*Settings)) (Settings, error) {
	return s.modify(func(st *Settings) error {
		fn(st)
		return nil
	})
}

// Set stores values under key and persists the result. An unknown key or an invalid
// value leaves the file untouched.
func (s *Store) Set(key string, values []string) (Settings, error) {
	return s.modify(func(st *Settings) error {
		return st.Set(key, values)
	})
}

// modify applies fn under the write lock and persists the result unless fn fails.
func (s *Store) modify(fn func(*Settings) error) (Settings, error) {
	if err := s.acquire(true); err != nil {
		return Settings{}, err
	}
	defer s.release()

	current, err := s.read()
	if err != nil {
		return Settings{}, err
	}
	if err := fn(&current); err != nil {
		return Settings{}, err
	}
	if err := s.write(current); err != nil {
		return Settings{}, err
	}
	return current, nil
}

// Reset overwrites the persisted settings with Defaults().
func (s *Store) Reset() (Settings, error) {
	if err := s.acquire(true); err != nil {
		return Settings{}, err
	}
	defer s.release()

	defaults := Defaults()
	if err := s.write(defaults); err != nil {
		return Settings{}, err
	}
	s.logger.Info("Reset settings to defaults", zap.String("path", s.path))
	return defaults, nil
}

func (s *Store) acquire(exclusive bool) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return &Error{Kind: LockFailed, Path: s.path, Err: err}
	}
	lock := s.lock.RLock
	if exclusive {
		lock = s.lock.Lock
	}
	if err := lock(); err != nil {
		return &Error{Kind: LockFailed, Path: s.path, Err: err}
	}
	return nil
}

func (s *Store) release() {
	if err := s.lock.Unlock(); err != nil {
		s.logger.Warn("Failed to release settings lock", zap.String("path", s.path), zap.Error(err))
	}
}

func (s *Store) read() (Settings, error) {
	settings := Defaults()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("No settings file, using defaults", zap.String("path", s.path))
		return settings, nil
	}
	if err != nil {
		return Settings{}, &Error{Kind: ReadFailed, Path: s.path, Err: err}
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return Settings{}, &Error{Kind: ParseFailed, Path: s.path, Err: err}
	}
	return settings, nil
}

func (s *Store) write(settings Settings) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(settings); err != nil {
		return &Error{Kind: WriteFailed, Path: s.path, Err: err}
	}
	if err := enc.Close(); err != nil {
		return &Error{Kind: WriteFailed, Path: s.path, Err: err}
	}

	if err := atomicWrite(s.path, buf.Bytes()); err != nil {
		return &Error{Kind: WriteFailed, Path: s.path, Err: err}
	}
	s.logger.Debug("Saved settings", zap.String("path", s.path))
	return nil
}

// atomicWrite writes data to a temp file in the target directory and renames it
// over path.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}
	committed = true
	return nil
}
