package tree

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"testing"

	"eazypaste/pkg/filter"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mkTree creates files (relative path -> content) below root. Paths ending in '/'
// create empty directories.
func mkTree(t testing.TB, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			require.NoError(t, os.MkdirAll(path, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// shape renders nodes as "name" / "dir/[...]" for compact assertions.
func shape(nodes []*Node) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if n.IsDirectory {
			parts = append(parts, n.Name+"/["+shape(n.Children)+"]")
		} else {
			parts = append(parts, n.Name)
		}
	}
	return strings.Join(parts, " ")
}

func scenarioRoot(t *testing.T) string {
	root := t.TempDir()
	mkTree(t, root, map[string]string{
		"src/app.ts":   "TODO: fix",
		"src/logo.png": "\x89PNG fix",
		".git/config":  "[core] fix",
	})
	return root
}

func TestBuild_ScenarioA_NoSearch(t *testing.T) {
	root := scenarioRoot(t)

	nodes, err := BuildTree(context.Background(), root, filter.Config{HiddenList: []string{".git"}}, nil)
	require.NoError(t, err)

	assert.Equal(t, "src/[app.ts logo.png]", shape(nodes))
	src := nodes[0]
	assert.Equal(t, filepath.Join(root, "src"), src.Path)
	assert.Equal(t, filepath.Join(root, "src", "app.ts"), src.Children[0].Path)
	assert.False(t, src.Children[0].IsDirectory)
}

func TestBuild_ScenarioB_ContentSearch(t *testing.T) {
	root := scenarioRoot(t)

	cfg := filter.Config{HiddenList: []string{".git"}, SearchWords: []string{"fix"}}
	nodes, err := BuildTree(context.Background(), root, cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, "src/[app.ts]", shape(nodes))
}

func TestBuild_EmptyRoot(t *testing.T) {
	nodes, err := BuildTree(context.Background(), "", filter.Config{}, nil)
	require.NoError(t, err)
	assert.NotNil(t, nodes)
	assert.Empty(t, nodes)
}

func TestBuild_RootErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	_, err := BuildTree(context.Background(), missing, filter.Config{}, nil)
	require.Error(t, err)

	var be *BuildError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, RootNotFound, be.Kind)
	assert.Equal(t, missing, be.Path)
	assert.ErrorIs(t, err, os.ErrNotExist)

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = BuildTree(context.Background(), file, filter.Config{}, nil)
	require.True(t, errors.As(err, &be))
	assert.Equal(t, RootUnreadable, be.Kind)
}

func TestBuild_DirectoriesBeforeFilesInListingOrder(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, map[string]string{
		"b.txt":    "",
		"a.txt":    "",
		"zeta/x":   "",
		"alpha/y":  "",
		"Middle/z": "",
		"c.md":     "",
	})

	nodes, err := BuildTree(context.Background(), root, filter.Config{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Middle/[z] alpha/[y] zeta/[x] a.txt b.txt c.md", shape(nodes))
}

func TestBuild_EmptyDirectoriesVisibleWithoutSearch(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, map[string]string{"empty/": "", "docs/readme.md": "hello"})

	nodes, err := BuildTree(context.Background(), root, filter.Config{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "docs/[readme.md] empty/[]", shape(nodes))

	nodes, err = BuildTree(context.Background(), root, filter.Config{SearchWords: []string{"nomatch"}}, nil)
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestBuild_BubbleUp(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, map[string]string{
		"a/b/c/deep.go":    "package deep // needle",
		"a/b/other.go":     "package other",
		"needle-dir/x.bin": "",
		"plain/nothing.go": "package nothing",
	})

	cfg := filter.Config{SearchWords: []string{"NEEDLE"}}
	nodes, err := BuildTree(context.Background(), root, cfg, nil)
	require.NoError(t, err)

	// needle-dir matches by name and keeps no children; a/ survives through deep.go.
	assert.Equal(t, "a/[b/[c/[deep.go]]] needle-dir/[]", shape(nodes))
}

func TestBuild_HiddenDirectoryNeverEntered(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, map[string]string{
		"node_modules/pkg/index.js": "fix",
		"src/index.js":              "fix",
	})

	var reads atomic.Int32
	reader := filter.ContentReaderFunc(func(path string) (string, error) {
		reads.Add(1)
		assert.NotContains(t, path, "node_modules")
		return "fix", nil
	})

	b := NewBuilder(nil, WithContentReader(reader), WithMaxWorkers(2))
	nodes, err := b.Build(context.Background(), root, filter.Config{
		HiddenList:  []string{"node_modules"},
		SearchWords: []string{"fix"},
	})
	require.NoError(t, err)
	assert.Equal(t, "src/[index.js]", shape(nodes))
	assert.Equal(t, int32(1), reads.Load())
}

func TestBuild_UnreadableSubdirectorySkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	root := t.TempDir()
	mkTree(t, root, map[string]string{"locked/secret.txt": "x", "open/file.txt": "x"})
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	nodes, err := BuildTree(context.Background(), root, filter.Config{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "open/[file.txt]", shape(nodes))
}

func TestBuild_SymlinkLoopDetected(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, map[string]string{"a/file.txt": "x"})
	if err := os.Symlink(root, filepath.Join(root, "a", "loop")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(root, "a", "file.txt"), filepath.Join(root, "link.txt")))
	require.NoError(t, os.Symlink(filepath.Join(root, "gone"), filepath.Join(root, "broken")))

	nodes, err := BuildTree(context.Background(), root, filter.Config{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "a/[file.txt] link.txt", shape(nodes))
}

func TestBuild_Cancelled(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, map[string]string{"a/b.txt": ""})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BuildTree(ctx, root, filter.Config{}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildEntry(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, map[string]string{
		"src/app.ts":   "fix",
		"src/logo.png": "fix",
		"src/.env":     "fix",
	})
	b := NewBuilder(nil)
	cfg := filter.Config{HiddenList: []string{".env"}, SearchWords: []string{"fix"}}

	node, err := b.BuildEntry(context.Background(), filepath.Join(root, "src"), cfg)
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, "src/[app.ts]", shape([]*Node{node}))

	node, err = b.BuildEntry(context.Background(), filepath.Join(root, "src", "logo.png"), cfg)
	require.NoError(t, err)
	assert.Nil(t, node)

	node, err = b.BuildEntry(context.Background(), filepath.Join(root, "src", ".env"), cfg)
	require.NoError(t, err)
	assert.Nil(t, node)

	_, err = b.BuildEntry(context.Background(), filepath.Join(root, "nope"), cfg)
	assert.Error(t, err)
}

var (
	dirNames  = []interface{}{"src", "lib", ".git", "node_modules", "docs", ""}
	fileNames = []interface{}{"app.ts", "logo.png", "notes.md", "fix.txt", ".env", "data.json"}
	hidden    = []string{".git", "node_modules", ".env"}
)

func fileContent(name string) string {
	if name == "notes.md" {
		return "remember to fix this"
	}
	return "nothing here"
}

func genRelPath() gopter.Gen {
	return gopter.CombineGens(
		gen.SliceOfN(3, gen.OneConstOf(dirNames...)),
		gen.OneConstOf(fileNames...),
	).Map(func(vals []interface{}) string {
		var segs []string
		for _, s := range vals[0].([]string) {
			if s != "" {
				segs = append(segs, s)
			}
		}
		return filepath.Join(append(segs, vals[1].(string))...)
	})
}

// expectedPaths returns the absolute paths that must appear in the tree when only the
// files accepted by keep are visible. Directories are kept through visible files, or
// unconditionally (up to the first hidden segment) when keepDirs is set.
func expectedPaths(root string, rels []string, keepDirs bool, keep func(name string) bool) []string {
	set := map[string]bool{}
	for _, rel := range rels {
		segs := strings.Split(rel, string(filepath.Separator))
		visible := 0
		for visible < len(segs) && !filter.IsHidden(segs[visible], hidden) {
			visible++
		}
		if visible == len(segs) && keep(segs[len(segs)-1]) {
			for i := range segs {
				set[filepath.Join(root, filepath.Join(segs[:i+1]...))] = true
			}
			continue
		}
		if keepDirs {
			for i := 0; i < visible && i < len(segs)-1; i++ {
				set[filepath.Join(root, filepath.Join(segs[:i+1]...))] = true
			}
		}
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]*Node) []string {
	out := make([]string, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func orderedLevels(nodes []*Node) bool {
	seenFile := false
	prev := map[bool]string{}
	for _, n := range nodes {
		if n.IsDirectory && seenFile {
			return false
		}
		if !n.IsDirectory {
			seenFile = true
		}
		if last, ok := prev[n.IsDirectory]; ok && last >= n.Name {
			return false
		}
		prev[n.IsDirectory] = n.Name
		if n.IsDirectory && !orderedLevels(n.Children) {
			return false
		}
	}
	return true
}

func TestBuild_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 40
	properties := gopter.NewProperties(parameters)

	build := func(rels []string, cfg filter.Config) (string, []*Node, error) {
		root, err := os.MkdirTemp("", "tree-prop-")
		if err != nil {
			return "", nil, err
		}
		t.Cleanup(func() { os.RemoveAll(root) })
		files := map[string]string{}
		for _, rel := range rels {
			files[filepath.ToSlash(rel)] = fileContent(filepath.Base(rel))
		}
		mkTree(t, root, files)
		nodes, err := BuildTree(context.Background(), root, cfg, nil)
		return root, nodes, err
	}

	properties.Property("hidden entries never appear", prop.ForAll(
		func(rels []string) bool {
			_, nodes, err := build(rels, filter.Config{HiddenList: hidden})
			if err != nil {
				return false
			}
			for _, n := range Flatten(nodes) {
				if filter.IsHidden(n.Name, hidden) {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(6, genRelPath()),
	))

	properties.Property("directories precede files at every level", prop.ForAll(
		func(rels []string) bool {
			_, nodes, err := build(rels, filter.Config{HiddenList: hidden})
			return err == nil && orderedLevels(nodes)
		},
		gen.SliceOfN(6, genRelPath()),
	))

	properties.Property("empty search equals no search", prop.ForAll(
		func(rels []string) bool {
			root, nodes, err := build(rels, filter.Config{HiddenList: hidden, SearchWords: []string{" ", ""}})
			if err != nil {
				return false
			}
			plain, err := BuildTree(context.Background(), root, filter.Config{HiddenList: hidden}, nil)
			if err != nil {
				return false
			}
			want := expectedPaths(root, rels, true, func(string) bool { return true })
			return shape(nodes) == shape(plain) && strings.Join(sortedKeys(Flatten(nodes)), "|") == strings.Join(want, "|")
		},
		gen.SliceOfN(6, genRelPath()),
	))

	properties.Property("directories bubble up only through matching descendants", prop.ForAll(
		func(rels []string) bool {
			root, nodes, err := build(rels, filter.Config{HiddenList: hidden, SearchWords: []string{"fix"}})
			if err != nil {
				return false
			}
			want := expectedPaths(root, rels, false, func(name string) bool {
				return strings.Contains(name, "fix") || name == "notes.md"
			})
			return strings.Join(sortedKeys(Flatten(nodes)), "|") == strings.Join(want, "|")
		},
		gen.SliceOfN(6, genRelPath()),
	))

	properties.TestingRun(t)
}
