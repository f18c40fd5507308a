package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eventTimeout = 2 * time.Second

// waitForEvent reads events until one matches kind and path or the timeout expires.
func waitForEvent(t *testing.T, events <-chan Event, kind Kind, path string) {
	t.Helper()
	deadline := time.After(eventTimeout)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatalf("event channel closed while waiting for %s %s", kind, path)
			}
			if ev.Kind == kind && ev.Path == path {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s %s", kind, path)
		}
	}
}

// drain collects events for d.
func drain(events <-chan Event, d time.Duration) []Event {
	var got []Event
	deadline := time.After(d)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return got
			}
			got = append(got, ev)
		case <-deadline:
			return got
		}
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "file-created", FileCreated.String())
	assert.Equal(t, "file-changed", FileChanged.String())
	assert.Equal(t, "file-deleted", FileDeleted.String())
	assert.Equal(t, "dir-created", DirCreated.String())
	assert.Equal(t, "dir-deleted", DirDeleted.String())
	assert.Equal(t, "unknown", Kind(99).String())
	assert.True(t, DirCreated.IsDir())
	assert.False(t, FileChanged.IsDir())
}

func TestSession_InitialSnapshotProducesNoEvents(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "a.txt"), []byte("a"), 0o644))

	s := NewSession(nil)
	events, err := s.Start(root, nil)
	require.NoError(t, err)
	defer s.Stop()

	assert.Empty(t, drain(events, 200*time.Millisecond))
}

func TestSession_FileLifecycle(t *testing.T) {
	root := t.TempDir()
	s := NewSession(nil)
	events, err := s.Start(root, nil)
	require.NoError(t, err)
	defer s.Stop()

	file := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("one"), 0o644))
	waitForEvent(t, events, FileCreated, file)

	require.NoError(t, os.WriteFile(file, []byte("two"), 0o644))
	waitForEvent(t, events, FileChanged, file)

	require.NoError(t, os.Remove(file))
	waitForEvent(t, events, FileDeleted, file)
}

func TestSession_DirectoryLifecycle(t *testing.T) {
	root := t.TempDir()
	s := NewSession(nil)
	events, err := s.Start(root, nil)
	require.NoError(t, err)
	defer s.Stop()

	dir := filepath.Join(root, "pkg")
	require.NoError(t, os.Mkdir(dir, 0o755))
	waitForEvent(t, events, DirCreated, dir)

	// The new directory is watched too.
	nested := filepath.Join(dir, "inner.go")
	require.NoError(t, os.WriteFile(nested, []byte("package pkg"), 0o644))
	waitForEvent(t, events, FileCreated, nested)

	require.NoError(t, os.RemoveAll(dir))
	waitForEvent(t, events, DirDeleted, dir)
}

func TestSession_FileReusingDeletedDirectoryPath(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "x")
	require.NoError(t, os.Mkdir(path, 0o755))

	s := NewSession(nil)
	events, err := s.Start(root, nil)
	require.NoError(t, err)
	defer s.Stop()

	require.NoError(t, os.Remove(path))
	waitForEvent(t, events, DirDeleted, path)

	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	waitForEvent(t, events, FileCreated, path)

	require.NoError(t, os.Remove(path))
	waitForEvent(t, events, FileDeleted, path)
}

func TestSession_RenameIsDeletePlusCreate(t *testing.T) {
	root := t.TempDir()
	old := filepath.Join(root, "old.txt")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0o644))

	s := NewSession(nil)
	events, err := s.Start(root, nil)
	require.NoError(t, err)
	defer s.Stop()

	renamed := filepath.Join(root, "new.txt")
	require.NoError(t, os.Rename(old, renamed))

	got := drain(events, 500*time.Millisecond)
	assert.Contains(t, got, Event{Kind: FileDeleted, Path: old})
	assert.Contains(t, got, Event{Kind: FileCreated, Path: renamed})
}

func TestSession_HiddenPathsProduceNoEvents(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "pkg"), 0o755))

	s := NewSession(nil)
	events, err := s.Start(root, []string{"node_modules"})
	require.NoError(t, err)
	defer s.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "pkg", "index.js"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "other"), 0o755))

	visible := filepath.Join(root, "visible.js")
	require.NoError(t, os.WriteFile(visible, []byte("x"), 0o644))

	got := drain(events, 500*time.Millisecond)
	require.Contains(t, got, Event{Kind: FileCreated, Path: visible})
	for _, ev := range got {
		assert.NotContains(t, ev.Path, "node_modules")
	}
}

func TestSession_NewDirectoryContentsReported(t *testing.T) {
	root := t.TempDir()
	staging := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(staging, "moved", "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(staging, "moved", "sub", "f.txt"), []byte("x"), 0o644))

	s := NewSession(nil)
	events, err := s.Start(root, nil)
	require.NoError(t, err)
	defer s.Stop()

	target := filepath.Join(root, "moved")
	if err := os.Rename(filepath.Join(staging, "moved"), target); err != nil {
		t.Skipf("cross-directory rename unsupported: %v", err)
	}

	got := drain(events, 500*time.Millisecond)
	assert.Contains(t, got, Event{Kind: DirCreated, Path: target})
	assert.Contains(t, got, Event{Kind: DirCreated, Path: filepath.Join(target, "sub")})
	assert.Contains(t, got, Event{Kind: FileCreated, Path: filepath.Join(target, "sub", "f.txt")})
}

func TestSession_StopClosesChannelAndIsIdempotent(t *testing.T) {
	root := t.TempDir()
	s := NewSession(nil)
	events, err := s.Start(root, nil)
	require.NoError(t, err)
	assert.True(t, s.Watching())
	assert.Equal(t, root, s.Root())

	require.NoError(t, s.Stop())
	assert.False(t, s.Watching())
	assert.Equal(t, "", s.Root())

	require.NoError(t, os.WriteFile(filepath.Join(root, "late.txt"), []byte("x"), 0o644))
	_, ok := <-events
	assert.False(t, ok, "no events after Stop")

	assert.NoError(t, s.Stop())
}

func TestSession_RestartTearsDownPreviousSession(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()

	s := NewSession(nil)
	oldEvents, err := s.Start(first, nil)
	require.NoError(t, err)

	newEvents, err := s.Start(second, nil)
	require.NoError(t, err)
	defer s.Stop()

	_, ok := <-oldEvents
	assert.False(t, ok, "previous session channel closed")
	assert.Equal(t, second, s.Root())

	file := filepath.Join(second, "x.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	waitForEvent(t, newEvents, FileCreated, file)
}

func TestSession_StartErrors(t *testing.T) {
	s := NewSession(nil)

	_, err := s.Start(filepath.Join(t.TempDir(), "missing"), nil)
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = s.Start(file, nil)
	assert.ErrorIs(t, err, ErrNotDirectory)
	assert.False(t, s.Watching())
}
