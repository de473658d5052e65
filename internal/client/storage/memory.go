package storage

import (
	"context"
	"sync"
)

// MemoryStorage keeps values in process memory. Watchers are notified of
// every write, so several sessions sharing one
// MemoryStorage behave like processes sharing a database file.
type MemoryStorage struct {
	mu       sync.Mutex
	data     map[string]string
	watchers map[*watcher]struct{}
	closed   bool
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		data:     make(map[string]string),
		watchers: make(map[*watcher]struct{}),
	}
}

func (m *MemoryStorage) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.data[key]; ok && old == value {
		return nil
	}
	m.data[key] = value
	m.broadcast(Change{Key: key, Value: value, Present: true})
	return nil
}

func (m *MemoryStorage) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data[key]; !ok {
		return nil
	}
	delete(m.data, key)
	m.broadcast(Change{Key: key})
	return nil
}

func (m *MemoryStorage) List(ctx context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]string, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out, nil
}

// Watch subscribes to changes. A watcher that falls behind never loses a
// key: queued changes to the same key collapse into the latest one.
func (m *MemoryStorage) Watch(ctx context.Context) (<-chan Change, error) {
	w := newWatcher()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		close(w.out)
		return w.out, nil
	}
	m.watchers[w] = struct{}{}
	m.mu.Unlock()

	go func() {
		w.pump(ctx)
		m.mu.Lock()
		delete(m.watchers, w)
		m.mu.Unlock()
	}()

	return w.out, nil
}

// Close closes every watcher channel.
func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for w := range m.watchers {
		w.stop()
	}
	m.watchers = make(map[*watcher]struct{})
	m.closed = true
	return nil
}

func (m *MemoryStorage) broadcast(c Change) {
	for w := range m.watchers {
		w.push(c)
	}
}

// watcher queues changes for one subscriber and delivers them in order
// from its own goroutine.
type watcher struct {
	out  chan Change
	wake chan struct{}
	done chan struct{}
	once sync.Once

	mu      sync.Mutex
	pending []Change
}

func newWatcher() *watcher {
	return &watcher{
		out:  make(chan Change),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// push queues c, replacing a queued change to the same key.
func (w *watcher) push(c Change) {
	w.mu.Lock()
	for i, p := range w.pending {
		if p.Key == c.Key {
			w.pending = append(w.pending[:i], w.pending[i+1:]...)
			break
		}
	}
	w.pending = append(w.pending, c)
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *watcher) pop() (Change, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) == 0 {
		return Change{}, false
	}
	c := w.pending[0]
	w.pending = w.pending[1:]
	return c, true
}

func (w *watcher) stop() {
	w.once.Do(func() { close(w.done) })
}

// pump delivers queued changes until ctx is done or the watcher is
// stopped, then closes out.
func (w *watcher) pump(ctx context.Context) {
	defer close(w.out)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case <-w.wake:
		}

		for {
			c, ok := w.pop()
			if !ok {
				break
			}
			select {
			case w.out <- c:
			case <-ctx.Done():
				return
			case <-w.done:
				return
			}
		}
	}
}
