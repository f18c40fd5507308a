// Package watch reports file-system changes below a root directory.
package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"eazypaste/pkg/filter"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// EventBufferSize is the capacity of a session's event channel.
const EventBufferSize = 256

// ErrNotDirectory is returned by Start when the root is not a directory.
var ErrNotDirectory = errors.New("watch root is not a directory")

// Session owns at most one active watch. Its state is either Stopped (active == nil)
// or Watching; starting again tears the previous watch down first.
type Session struct {
	logger *zap.Logger

	mu     sync.Mutex
	active *watching
}

// NewSession creates a stopped Session. A nil logger disables logging.
func NewSession(logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{logger: logger}
}

// Start begins watching root, skipping every path whose part below root contains a
// hidden substring. Entries that already exist produce no events. The returned
// channel is closed when the session is stopped and must be drained by the caller.
func (s *Session) Start(root string, hidden []string) (<-chan Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		if err := s.stopLocked(); err != nil {
			s.logger.Warn("Error tearing down previous watch session", zap.Error(err))
		}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watch root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to stat watch root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", absRoot, ErrNotDirectory)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &watching{
		id:     uuid.NewString(),
		root:   absRoot,
		hidden: append([]string(nil), hidden...),
		fsw:    fsw,
		events: make(chan Event, EventBufferSize),
		done:   make(chan struct{}),
		dirs:   make(map[string]bool),
		gone:   make(map[string]bool),
	}
	w.logger = s.logger.With(zap.String("session", w.id), zap.String("root", absRoot))

	if err := fsw.Add(absRoot); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", absRoot, err)
	}
	w.dirs[absRoot] = true
	w.addTree(absRoot, false)

	w.wg.Add(1)
	go w.loop()

	s.active = w
	w.logger.Info("Started watch session", zap.Int("directories", len(w.dirs)))
	return w.events, nil
}

// Stop releases the watch resources and waits for the event loop to exit. No event is
// delivered after Stop returns. Stopping a stopped session is a no-op.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked()
}

// Watching reports whether a watch is active.
func (s *Session) Watching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != nil
}

// Root returns the root of the active watch, or "" when stopped.
func (s *Session) Root() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return ""
	}
	return s.active.root
}

func (s *Session) stopLocked() error {
	w := s.active
	if w == nil {
		return nil
	}
	s.active = nil

	close(w.done)
	err := w.fsw.Close()
	w.wg.Wait()
	close(w.events)

	w.logger.Info("Stopped watch session")
	return err
}

// watching is the state of one active watch.
type watching struct {
	id     string
	root   string
	hidden []string
	fsw    *fsnotify.Watcher
	events chan Event
	done   chan struct{}
	wg     sync.WaitGroup
	logger *zap.Logger

	// Only touched by Start before the loop runs, then by the loop goroutine.
	dirs map[string]bool // watched directories
	gone map[string]bool // deleted directories whose own watch may still report them
}

// ignored reports whether path, relative to the root, contains a hidden substring.
func (w *watching) ignored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return false
	}
	return filter.IsHidden(rel, w.hidden)
}

// addTree registers dir and every non-hidden directory below it. With emit set, the
// entries found below dir are reported as created.
func (w *watching) addTree(dir string, emit bool) {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("Error accessing path while adding watches", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if path == dir {
			return nil
		}
		if w.ignored(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.IsDir() {
			if emit {
				w.emit(FileCreated, path)
			}
			return nil
		}

		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory", zap.String("path", path), zap.Error(err))
			return filepath.SkipDir
		}
		w.dirs[path] = true
		delete(w.gone, path)
		if emit {
			w.emit(DirCreated, path)
		}
		return nil
	})
	if err != nil {
		w.logger.Warn("Failed to walk directory for watching", zap.String("directory", dir), zap.Error(err))
	}
}

// loop processes fsnotify events until the session is stopped.
func (w *watching) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Log error but continue watching
			w.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

// handle maps one fsnotify event to zero or more Events.
func (w *watching) handle(event fsnotify.Event) {
	path := filepath.Clean(event.Name)
	if path == w.root || w.ignored(path) {
		return
	}

	switch {
	case event.Has(fsnotify.Create):
		// A new entry at the path means any pending notice for the old directory
		// has already been delivered or never will be.
		delete(w.gone, path)
		info, err := os.Stat(path)
		if err != nil {
			w.logger.Debug("Created entry vanished before it could be inspected", zap.String("path", path), zap.Error(err))
			return
		}
		if !info.IsDir() {
			w.emit(FileCreated, path)
			return
		}
		if w.dirs[path] {
			return
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("Failed to watch new directory", zap.String("path", path), zap.Error(err))
		} else {
			w.dirs[path] = true
		}
		delete(w.gone, path)
		w.emit(DirCreated, path)
		w.addTree(path, true)

	case event.Has(fsnotify.Write):
		if w.dirs[path] {
			return
		}
		delete(w.gone, path)
		w.emit(FileChanged, path)

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		if w.gone[path] {
			// Second notice for a directory already reported, from its own watch.
			delete(w.gone, path)
			return
		}
		if !w.dirs[path] {
			w.emit(FileDeleted, path)
			return
		}
		if err := w.forget(path); err != nil {
			w.logger.Debug("Failed to drop watches for deleted directory", zap.String("path", path), zap.Error(err))
		}
		w.gone[path] = true
		w.emit(DirDeleted, path)
	}
}

// forget drops dir and every watched directory below it. Watches the kernel already
// dropped are not reported as errors.
func (w *watching) forget(dir string) error {
	var errs error
	prefix := dir + string(filepath.Separator)
	for path := range w.dirs {
		if path == dir || strings.HasPrefix(path, prefix) {
			delete(w.dirs, path)
			if err := w.fsw.Remove(path); err != nil && !errors.Is(err, fsnotify.ErrNonExistentWatch) {
				errs = multierr.Append(errs, err)
			}
		}
	}
	return errs
}

// emit delivers an event unless the session is stopping.
func (w *watching) emit(kind Kind, path string) {
	w.logger.Debug("Watch event", zap.String("kind", kind.String()), zap.String("path", path))
	select {
	case w.events <- Event{Kind: kind, Path: path}:
	case <-w.done:
	}
}
