// File: pkg/tree/builder.go
package tree

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"eazypaste/pkg/filter"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Builder walks a root directory and produces the filtered tree.
type Builder struct {
	logger     *zap.Logger
	maxWorkers int
	reader     filter.ContentReader
}

// Option configures a Builder.
type Option func(*Builder)

// WithMaxWorkers bounds the number of concurrent file matches (content reads) per
// directory level. Values <= 0 select runtime.NumCPU().
func WithMaxWorkers(n int) Option {
	return func(b *Builder) {
		b.maxWorkers = n
	}
}

// WithContentReader replaces the disk reader used for content search.
func WithContentReader(r filter.ContentReader) Option {
	return func(b *Builder) {
		b.reader = r
	}
}

// NewBuilder creates a Builder. A nil logger disables logging.
func NewBuilder(logger *zap.Logger, opts ...Option) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Builder{logger: logger}
	for _, opt := range opts {
		opt(b)
	}
	if b.maxWorkers <= 0 {
		b.maxWorkers = runtime.NumCPU()
	}
	return b
}

// BuildTree builds the tree for root with a default Builder.
func BuildTree(ctx context.Context, root string, cfg filter.Config, logger *zap.Logger) ([]*Node, error) {
	return NewBuilder(logger).Build(ctx, root, cfg)
}

// Build walks root and returns its visible entries: directories first, then files,
// each group in listing order. An empty root returns an empty tree without touching
// the filesystem. Only a failure to list root itself is returned (as *BuildError);
// unreadable entries below it are logged and skipped.
func (b *Builder) Build(ctx context.Context, root string, cfg filter.Config) ([]*Node, error) {
	if root == "" {
		return []*Node{}, nil
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, newBuildError(root, err)
	}

	entries, err := os.ReadDir(absRoot)
	if err != nil {
		b.logger.Error("Failed to read root directory", zap.String("root", absRoot), zap.Error(err))
		return nil, newBuildError(absRoot, err)
	}

	w := b.newWalk(ctx, cfg)
	realRoot := w.realPath(absRoot)
	w.ancestors[realRoot] = true

	b.logger.Debug("Starting tree build",
		zap.String("root", absRoot),
		zap.Strings("searchWords", cfg.Words()),
		zap.Int("hiddenCount", len(cfg.HiddenList)))

	nodes, err := w.level(absRoot, realRoot, entries)
	if err != nil {
		return nil, err
	}

	b.logger.Debug("Completed tree build", zap.String("root", absRoot), zap.Int("nodes", Count(nodes)))
	return nodes, nil
}

// BuildEntry evaluates a single entry at path, returning its node (with the full
// subtree for directories) or nil when it is not visible under cfg. The entry's own
// name is checked against the hidden list; ancestors are the caller's concern.
func (b *Builder) BuildEntry(ctx context.Context, path string, cfg filter.Config) (*Node, error) {
	name := filepath.Base(path)
	if filter.IsHidden(name, cfg.HiddenList) {
		return nil, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	w := b.newWalk(ctx, cfg)
	if !info.IsDir() {
		if w.matcher.Matches(name, path, false) {
			return NewFile(path), nil
		}
		return nil, nil
	}

	return w.directory(entry{name: name, path: path, real: w.realPath(path), isDir: true})
}

// walk carries the state of one traversal.
type walk struct {
	ctx        context.Context
	cfg        filter.Config
	matcher    *filter.Matcher
	maxWorkers int
	logger     *zap.Logger
	ancestors  map[string]bool // real paths of the directories currently being walked
}

type entry struct {
	name  string
	path  string
	real  string
	isDir bool
}

func (b *Builder) newWalk(ctx context.Context, cfg filter.Config) *walk {
	return &walk{
		ctx:        ctx,
		cfg:        cfg,
		matcher:    filter.NewMatcher(cfg, b.reader, b.logger),
		maxWorkers: b.maxWorkers,
		logger:     b.logger,
		ancestors:  make(map[string]bool),
	}
}

func (w *walk) realPath(path string) string {
	real, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path
	}
	return real
}

// level builds the visible nodes of one directory from its listing.
func (w *walk) level(dir, realDir string, entries []os.DirEntry) ([]*Node, error) {
	if err := w.ctx.Err(); err != nil {
		return nil, err
	}

	var dirs, files []entry
	for _, de := range entries {
		name := de.Name()
		if filter.IsHidden(name, w.cfg.HiddenList) {
			continue
		}
		e, ok := w.classify(dir, realDir, de)
		if !ok {
			continue
		}
		if e.isDir {
			dirs = append(dirs, e)
		} else {
			files = append(files, e)
		}
	}

	nodes := make([]*Node, 0, len(dirs)+len(files))
	for _, d := range dirs {
		node, err := w.directory(d)
		if err != nil {
			return nil, err
		}
		if node != nil {
			nodes = append(nodes, node)
		}
	}

	keep, err := w.matchFiles(files)
	if err != nil {
		return nil, err
	}
	for i, f := range files {
		if keep[i] {
			nodes = append(nodes, NewFile(f.path))
		}
	}
	return nodes, nil
}

// classify resolves whether an entry is a directory, following symlinks.
func (w *walk) classify(dir, realDir string, de os.DirEntry) (entry, bool) {
	name := de.Name()
	path := filepath.Join(dir, name)

	if de.Type()&fs.ModeSymlink == 0 {
		return entry{name: name, path: path, real: filepath.Join(realDir, name), isDir: de.IsDir()}, true
	}

	info, err := os.Stat(path)
	if err != nil {
		w.logger.Warn("Skipping unresolvable symlink", zap.String("path", path), zap.Error(err))
		return entry{}, false
	}
	if !info.IsDir() {
		return entry{name: name, path: path, real: path}, true
	}

	real, err := filepath.EvalSymlinks(path)
	if err != nil {
		w.logger.Warn("Skipping unresolvable directory symlink", zap.String("path", path), zap.Error(err))
		return entry{}, false
	}
	return entry{name: name, path: path, real: real, isDir: true}, true
}

// directory recurses into d and decides its visibility once its children are known.
// A nil node with a nil error means the directory is skipped.
func (w *walk) directory(d entry) (*Node, error) {
	if w.ancestors[d.real] {
		w.logger.Warn("Skipping directory symlink loop", zap.String("path", d.path), zap.String("target", d.real))
		return nil, nil
	}

	entries, err := os.ReadDir(d.path)
	if err != nil {
		w.logger.Warn("Failed to read directory", zap.String("directory", d.path), zap.Error(err))
		return nil, nil
	}

	w.ancestors[d.real] = true
	children, err := w.level(d.path, d.real, entries)
	delete(w.ancestors, d.real)
	if err != nil {
		return nil, err
	}

	if len(children) == 0 && !w.matcher.Matches(d.name, d.path, true) {
		return nil, nil
	}
	return &Node{Name: d.name, Path: d.path, IsDirectory: true, Children: children}, nil
}

// matchFiles runs the matcher over files with at most maxWorkers concurrent
// evaluations. Results are indexed so listing order is preserved.
func (w *walk) matchFiles(files []entry) ([]bool, error) {
	keep := make([]bool, len(files))
	if !w.matcher.SearchActive() {
		for i := range keep {
			keep[i] = true
		}
		return keep, nil
	}

	var g errgroup.Group
	g.SetLimit(w.maxWorkers)
	for i, f := range files {
		g.Go(func() error {
			if err := w.ctx.Err(); err != nil {
				return err
			}
			keep[i] = w.matcher.Matches(f.name, f.path, false)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return keep, nil
}
