package dependent

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/viddefe/go-viddefe/internal/logging"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

var ErrLoaderRequired = errors.New("dependent: loader is required")

// Loader fetches the child collection for key.
type Loader[K comparable, T any] func(ctx context.Context, key K) ([]T, error)

// Observer receives request accounting. Metrics collectors implement it.
type Observer interface {
	Requested(name string)
	Discarded(name string)
}

// Snapshot is the visible state of a collection.
type Snapshot[K comparable, T any] struct {
	Key     K
	Enabled bool
	Items   []T
	Loading bool
	Err     error
}

// Option configures a Collection.
type Option[K comparable, T any] func(*Collection[K, T])

// WithValidator replaces the key validity predicate.
func WithValidator[K comparable, T any](valid func(K) bool) Option[K, T] {
	return func(c *Collection[K, T]) {
		if valid != nil {
			c.valid = valid
		}
	}
}

// WithOnChange registers the callback fired after every visible change. The
// callback must not call back into the collection.
func WithOnChange[K comparable, T any](fn func(Snapshot[K, T])) Option[K, T] {
	return func(c *Collection[K, T]) {
		c.onChange = fn
	}
}

// WithLogger sets the logger.
func WithLogger[K comparable, T any](logger interfaces.Logger) Option[K, T] {
	return func(c *Collection[K, T]) {
		c.logger = logging.Ensure(logger)
	}
}

// WithObserver registers a request observer.
func WithObserver[K comparable, T any](observer Observer) Option[K, T] {
	return func(c *Collection[K, T]) {
		c.observer = observer
	}
}

// WithContext sets the parent context of every request.
func WithContext[K comparable, T any](ctx context.Context) Option[K, T] {
	return func(c *Collection[K, T]) {
		if ctx != nil {
			c.parent = ctx
		}
	}
}

// Collection is a child list whose fetch key comes from other local state.
// It is disabled while the key is invalid, issues one request per distinct
// valid key, and commits only the response of the latest key.
type Collection[K comparable, T any] struct {
	name     string
	load     Loader[K, T]
	valid    func(K) bool
	onChange func(Snapshot[K, T])
	logger   interfaces.Logger
	observer Observer
	parent   context.Context

	deliver sync.Mutex
	wg      sync.WaitGroup

	mu      sync.Mutex
	key     K
	enabled bool
	items   []T
	loading bool
	err     error
	token   uint64
	cancel  context.CancelFunc
	closed  bool
}

// New builds a collection. By default every non-zero key is valid.
func New[K comparable, T any](name string, load Loader[K, T], opts ...Option[K, T]) *Collection[K, T] {
	if load == nil {
		panic(ErrLoaderRequired)
	}
	c := &Collection[K, T]{
		name:   name,
		load:   load,
		valid:  func(k K) bool { var zero K; return k != zero },
		logger: logging.NoOp(),
		parent: context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PositiveID is the validity predicate for numeric catalog identifiers.
func PositiveID(id int64) bool {
	return id > 0
}

// SetKey points the collection at key. An invalid key clears the items before
// SetKey returns and cancels any pending request.
func (c *Collection[K, T]) SetKey(key K) {
	c.deliver.Lock()
	defer c.deliver.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	if !c.valid(key) {
		c.token++
		c.stopLocked()
		var zero K
		wasEnabled := c.enabled || len(c.items) > 0
		c.key, c.enabled, c.items, c.loading, c.err = zero, false, nil, false, nil
		snap := c.snapshotLocked()
		c.mu.Unlock()
		if wasEnabled {
			c.logger.Debug("dependent.disabled", "collection", c.name)
			c.notify(snap)
		}
		return
	}

	if c.enabled && c.key == key {
		c.mu.Unlock()
		return
	}

	snap := c.requestLocked(key)
	c.mu.Unlock()
	c.notify(snap)
}

// Refresh re-requests the current key. It does nothing while disabled.
func (c *Collection[K, T]) Refresh() {
	c.deliver.Lock()
	defer c.deliver.Unlock()

	c.mu.Lock()
	if c.closed || !c.enabled {
		c.mu.Unlock()
		return
	}
	snap := c.requestLocked(c.key)
	c.mu.Unlock()
	c.notify(snap)
}

// RefreshKey reloads the collection when key is the string form of the
// current key. An empty key refreshes unconditionally.
func (c *Collection[K, T]) RefreshKey(key string) {
	c.mu.Lock()
	current := fmt.Sprint(c.key)
	c.mu.Unlock()
	if key != "" && key != current {
		return
	}
	c.Refresh()
}

// Snapshot returns the visible state.
func (c *Collection[K, T]) Snapshot() Snapshot[K, T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Items returns a copy of the visible items.
func (c *Collection[K, T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Close cancels pending work and waits for loaders to return. Nothing is
// committed or reported after Close. It waits for a SetKey or Refresh that is
// notifying to finish first.
func (c *Collection[K, T]) Close() {
	c.deliver.Lock()
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.deliver.Unlock()
		return
	}
	c.closed = true
	c.token++
	c.stopLocked()
	c.mu.Unlock()
	c.deliver.Unlock()

	c.wg.Wait()
}

func (c *Collection[K, T]) requestLocked(key K) Snapshot[K, T] {
	c.token++
	token := c.token
	c.stopLocked()

	ctx, cancel := context.WithCancel(c.parent)
	c.cancel = cancel
	c.key, c.enabled, c.items, c.loading, c.err = key, true, nil, true, nil

	if c.observer != nil {
		c.observer.Requested(c.name)
	}
	c.logger.Debug("dependent.request", "collection", c.name, "key", fmt.Sprint(key))

	c.wg.Add(1)
	go c.run(ctx, key, token)
	return c.snapshotLocked()
}

func (c *Collection[K, T]) run(ctx context.Context, key K, token uint64) {
	defer c.wg.Done()

	items, err := c.load(ctx, key)

	c.deliver.Lock()
	defer c.deliver.Unlock()

	c.mu.Lock()
	if c.closed || token != c.token {
		c.mu.Unlock()
		if c.observer != nil {
			c.observer.Discarded(c.name)
		}
		c.logger.Debug("dependent.response.discarded", "collection", c.name, "key", fmt.Sprint(key))
		return
	}
	c.cancel = nil
	c.loading = false
	if err != nil {
		c.items, c.err = nil, err
		c.logger.Warn("dependent.response.failed", "collection", c.name, "key", fmt.Sprint(key), "error", err)
	} else {
		c.items, c.err = slices.Clone(items), nil
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

func (c *Collection[K, T]) stopLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Collection[K, T]) snapshotLocked() Snapshot[K, T] {
	return Snapshot[K, T]{
		Key:     c.key,
		Enabled: c.enabled,
		Items:   slices.Clone(c.items),
		Loading: c.loading,
		Err:     c.err,
	}
}

func (c *Collection[K, T]) notify(snap Snapshot[K, T]) {
	if c.onChange != nil {
		c.onChange(snap)
	}
}
