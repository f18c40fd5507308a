package reconcile

import "sync"

// Op is the kind of a tree change.
type Op int

const (
	// Added means a node was inserted.
	Added Op = iota
	// Removed means a node (and its subtree) was removed.
	Removed
	// Replaced means the whole tree was swapped for a fresh build.
	Replaced
)

// String returns a human-readable representation of the op.
func (o Op) String() string {
	switch o {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Replaced:
		return "replaced"
	default:
		return "unknown"
	}
}

// Change describes one patch applied to the live tree.
type Change struct {
	Op          Op
	Path        string
	IsDirectory bool
}

// broadcaster fans changes out to subscribers. Publishing never blocks: changes are
// dropped for subscribers whose buffer is full.
type broadcaster struct {
	mu          sync.RWMutex
	subscribers map[chan Change]struct{}
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subscribers: make(map[chan Change]struct{})}
}

func (b *broadcaster) subscribe() chan Change {
	ch := make(chan Change, 64)
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *broadcaster) unsubscribe(ch chan Change) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[ch]; !ok {
		return
	}
	delete(b.subscribers, ch)
	close(ch)
}

func (b *broadcaster) publish(changes ...Change) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	dropped := 0
	for ch := range b.subscribers {
		for _, c := range changes {
			select {
			case ch <- c:
			default:
				dropped++
			}
		}
	}
	return dropped
}

func (b *broadcaster) count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
