// Package reconcile keeps a live folder tree in sync with watch events.
package reconcile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"eazypaste/pkg/filter"
	"eazypaste/pkg/tree"
	"eazypaste/pkg/watch"

	"go.uber.org/zap"
)

// Reconciler exclusively owns the live tree for one root and filter configuration.
// All mutations are serialized; readers get deep-copied snapshots or change streams.
type Reconciler struct {
	cfg     filter.Config
	builder *tree.Builder
	matcher *filter.Matcher
	logger  *zap.Logger
	bus     *broadcaster

	mu   sync.Mutex
	root *tree.Node // virtual node for the root directory itself
}

// Option configures a Reconciler.
type Option func(*options)

type options struct {
	builder *tree.Builder
	reader  filter.ContentReader
}

// WithBuilder sets the builder used for full rebuilds and for created directories.
func WithBuilder(b *tree.Builder) Option {
	return func(o *options) {
		o.builder = b
	}
}

// WithContentReader sets the reader used for content search.
func WithContentReader(r filter.ContentReader) Option {
	return func(o *options) {
		o.reader = r
	}
}

// New creates a Reconciler for root with an empty live tree.
func New(root string, cfg filter.Config, logger *zap.Logger, opts ...Option) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.builder == nil {
		o.builder = tree.NewBuilder(logger, tree.WithContentReader(o.reader))
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &Reconciler{
		cfg:     cfg,
		builder: o.builder,
		matcher: filter.NewMatcher(cfg, o.reader, logger),
		logger:  logger,
		bus:     newBroadcaster(),
		root:    tree.NewDir(root),
	}
}

// Root returns the absolute root path.
func (r *Reconciler) Root() string {
	return r.root.Path
}

// Rebuild builds the tree from scratch and swaps it in. Concurrent rebuilds do not
// block each other; whichever finishes last wins.
func (r *Reconciler) Rebuild(ctx context.Context) error {
	nodes, err := r.builder.Build(ctx, r.root.Path, r.cfg)
	if err != nil {
		return err
	}
	r.Replace(nodes)
	return nil
}

// Replace swaps in a completed build.
func (r *Reconciler) Replace(nodes []*tree.Node) {
	r.mu.Lock()
	r.root.Children = tree.CloneAll(nodes)
	r.mu.Unlock()
	r.publish([]Change{{Op: Replaced, Path: r.root.Path, IsDirectory: true}})
}

// Snapshot returns a deep copy of the live tree.
func (r *Reconciler) Snapshot() []*tree.Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	return tree.CloneAll(r.root.Children)
}

// Subscribe returns a channel receiving every change applied from now on.
func (r *Reconciler) Subscribe() <-chan Change {
	return r.bus.subscribe()
}

// Unsubscribe stops delivery to ch and closes it.
func (r *Reconciler) Unsubscribe(ch <-chan Change) {
	r.bus.mu.RLock()
	var target chan Change
	for c := range r.bus.subscribers {
		if c == ch {
			target = c
			break
		}
	}
	r.bus.mu.RUnlock()
	if target != nil {
		r.bus.unsubscribe(target)
	}
}

// Run applies events until the channel is closed or ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context, events <-chan watch.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			r.Apply(ctx, ev)
		}
	}
}

// Apply patches the live tree for one event and returns the resulting changes.
func (r *Reconciler) Apply(ctx context.Context, ev watch.Event) []Change {
	path := filepath.Clean(ev.Path)

	r.mu.Lock()
	var changes []Change
	switch ev.Kind {
	case watch.FileCreated, watch.DirCreated:
		changes = r.add(ctx, path)
	case watch.FileChanged:
		changes = r.changed(ctx, path)
	case watch.FileDeleted, watch.DirDeleted:
		changes = r.remove(path)
	}
	r.mu.Unlock()

	if len(changes) > 0 {
		r.logger.Debug("Applied watch event",
			zap.String("kind", ev.Kind.String()),
			zap.String("path", path),
			zap.Int("changes", len(changes)))
		r.publish(changes)
	}
	return changes
}

func (r *Reconciler) publish(changes []Change) {
	if dropped := r.bus.publish(changes...); dropped > 0 {
		r.logger.Warn("Dropped tree changes for slow subscribers", zap.Int("dropped", dropped))
	}
}

// segments returns the path components below the root, or false when path is the
// root itself, lies outside it, or crosses a hidden name.
func (r *Reconciler) segments(path string) ([]string, bool) {
	rel, err := filepath.Rel(r.root.Path, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, false
	}
	segs := strings.Split(rel, string(filepath.Separator))
	for _, s := range segs {
		if filter.IsHidden(s, r.cfg.HiddenList) {
			return nil, false
		}
	}
	return segs, true
}

// add inserts a created entry if it is visible. Existing paths are left untouched.
func (r *Reconciler) add(ctx context.Context, path string) []Change {
	segs, ok := r.segments(path)
	if !ok {
		return nil
	}
	if r.root.Find(path) != nil {
		return nil
	}

	node, err := r.builder.BuildEntry(ctx, path, r.cfg)
	if err != nil {
		r.logger.Debug("Created entry could not be inspected", zap.String("path", path), zap.Error(err))
		return nil
	}
	if node == nil {
		return nil
	}
	return r.attach(segs, node)
}

// attach inserts node below the directories named by segs, creating missing
// ancestors so that a visible entry keeps its directory chain visible.
func (r *Reconciler) attach(segs []string, node *tree.Node) []Change {
	var changes []Change
	cur := r.root
	for _, seg := range segs[:len(segs)-1] {
		next := cur.Child(seg)
		if next == nil {
			next = tree.NewDir(filepath.Join(cur.Path, seg))
			cur.InsertChild(next)
			changes = append(changes, Change{Op: Added, Path: next.Path, IsDirectory: true})
		}
		if !next.IsDirectory {
			r.logger.Warn("Cannot attach below a file node", zap.String("path", node.Path), zap.String("file", next.Path))
			return changes
		}
		cur = next
	}
	if cur.InsertChild(node) {
		changes = append(changes, Change{Op: Added, Path: node.Path, IsDirectory: node.IsDirectory})
	}
	return changes
}

// changed re-evaluates a modified file against the search words.
func (r *Reconciler) changed(ctx context.Context, path string) []Change {
	segs, ok := r.segments(path)
	if !ok {
		return nil
	}

	existing := r.root.Find(path)
	if !r.matcher.SearchActive() {
		if existing != nil {
			return nil
		}
		return r.add(ctx, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		r.logger.Debug("Changed entry could not be inspected", zap.String("path", path), zap.Error(err))
		return nil
	}
	if info.IsDir() {
		return nil
	}

	visible := r.matcher.Matches(filepath.Base(path), path, false)
	switch {
	case existing != nil && !visible:
		return r.remove(path)
	case existing == nil && visible:
		return r.attach(segs, tree.NewFile(path))
	}
	return nil
}

// remove deletes the node at path, then prunes ancestors left empty whose own names
// do not match the search words.
func (r *Reconciler) remove(path string) []Change {
	parent := r.root.Find(filepath.Dir(path))
	if parent == nil || !parent.IsDirectory {
		return nil
	}
	removed := parent.RemoveChild(filepath.Base(path))
	if removed == nil {
		return nil
	}
	changes := []Change{{Op: Removed, Path: removed.Path, IsDirectory: removed.IsDirectory}}

	for cur := parent; cur != r.root; {
		if len(cur.Children) > 0 || r.matcher.MatchesName(cur.Name) {
			break
		}
		up := r.root.Find(filepath.Dir(cur.Path))
		if up == nil {
			break
		}
		up.RemoveChild(cur.Name)
		changes = append(changes, Change{Op: Removed, Path: cur.Path, IsDirectory: true})
		cur = up
	}
	return changes
}
