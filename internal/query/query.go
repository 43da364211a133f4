package query

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/viccon/sturdyc"

	"github.com/viddefe/go-viddefe/internal/logging"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

var (
	ErrLoaderRequired = errors.New("query: loader is required")
	ErrClosed         = errors.New("query: watch closed")
)

// Loader reads the remote entity identified by key.
type Loader[K comparable, T any] func(ctx context.Context, key K) (T, error)

// Result is the read only view a screen gets of a remote entity.
type Result[T any] struct {
	Data      T
	HasData   bool
	Loading   bool
	Err       error
	UpdatedAt time.Time
}

// Observer receives fetch outcomes. Metrics collectors implement it.
type Observer interface {
	FetchStarted(name string)
	FetchFinished(name string, err error, elapsed time.Duration)
}

// Option configures a Client.
type Option func(*options)

type options struct {
	capacity int
	shards   int
	ttl      time.Duration
	eviction int
	logger   interfaces.Logger
	observer Observer
	now      func() time.Time
}

// WithCapacity sets the number of cached entries.
func WithCapacity(capacity int) Option {
	return func(o *options) {
		if capacity > 0 {
			o.capacity = capacity
		}
	}
}

// WithStaleTime sets how long a fetched entity is served from cache.
func WithStaleTime(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(o *options) {
		o.logger = logging.Ensure(logger)
	}
}

// WithObserver registers a fetch observer.
func WithObserver(observer Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithNow overrides the clock.
func WithNow(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// Client is a named, cached remote entity fetcher. Concurrent fetches of the
// same key share one loader call.
type Client[K comparable, T any] struct {
	name   string
	load   Loader[K, T]
	cache  *sturdyc.Client[T]
	opts   options
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]func()
}

// NewClient builds a client named after the resource it loads.
func NewClient[K comparable, T any](name string, load Loader[K, T], opts ...Option) *Client[K, T] {
	if load == nil {
		panic(ErrLoaderRequired)
	}
	o := options{
		capacity: 512,
		shards:   8,
		ttl:      30 * time.Second,
		eviction: 10,
		logger:   logging.NoOp(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Client[K, T]{
		name:  name,
		load:  load,
		cache: sturdyc.New[T](o.capacity, o.shards, o.ttl, o.eviction),
		opts:  o,
		subs:  map[string]map[int]func(){},
	}
}

// Name returns the resource name.
func (c *Client[K, T]) Name() string {
	return c.name
}

// Fetch returns the cached entity or loads it.
func (c *Client[K, T]) Fetch(ctx context.Context, key K) Result[T] {
	cacheKey := c.cacheKey(key)
	data, err := c.cache.GetOrFetch(ctx, cacheKey, func(ctx context.Context) (T, error) {
		return c.observe(ctx, key)
	})
	return c.result(data, err)
}

// Refetch bypasses the cache, stores the fresh entity and returns it.
func (c *Client[K, T]) Refetch(ctx context.Context, key K) Result[T] {
	data, err := c.observe(ctx, key)
	if err == nil {
		c.cache.Set(c.cacheKey(key), data)
	}
	return c.result(data, err)
}

// Invalidate drops the cached entity and notifies every watch of key.
func (c *Client[K, T]) Invalidate(key K) {
	c.invalidate(c.cacheKey(key))
}

// InvalidateString invalidates by the string form of a key. Event buses use it.
func (c *Client[K, T]) InvalidateString(key string) {
	c.invalidate(key)
}

func (c *Client[K, T]) invalidate(cacheKey string) {
	c.cache.Delete(cacheKey)

	c.mu.Lock()
	listeners := make([]func(), 0, len(c.subs[cacheKey]))
	for _, fn := range c.subs[cacheKey] {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	c.opts.logger.Debug("query.invalidated", "query", c.name, "key", cacheKey, "watchers", len(listeners))
	for _, fn := range listeners {
		fn()
	}
}

func (c *Client[K, T]) subscribe(key K, fn func()) func() {
	cacheKey := c.cacheKey(key)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	if c.subs[cacheKey] == nil {
		c.subs[cacheKey] = map[int]func(){}
	}
	c.subs[cacheKey][id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs[cacheKey], id)
		if len(c.subs[cacheKey]) == 0 {
			delete(c.subs, cacheKey)
		}
	}
}

func (c *Client[K, T]) observe(ctx context.Context, key K) (T, error) {
	if c.opts.observer != nil {
		c.opts.observer.FetchStarted(c.name)
	}
	ctx = logging.ContextWithFields(ctx, map[string]any{"query": c.name, "query_key": fmt.Sprint(key)})
	start := c.opts.now()
	data, err := c.load(ctx, key)
	elapsed := c.opts.now().Sub(start)
	if c.opts.observer != nil {
		c.opts.observer.FetchFinished(c.name, err, elapsed)
	}
	if err != nil {
		c.opts.logger.Warn("query.fetch.failed", "query", c.name, "key", fmt.Sprint(key), "error", err)
	} else {
		c.opts.logger.Trace("query.fetch.success", "query", c.name, "key", fmt.Sprint(key))
	}
	return data, err
}

func (c *Client[K, T]) result(data T, err error) Result[T] {
	if err != nil {
		return Result[T]{Err: err}
	}
	return Result[T]{Data: data, HasData: true, UpdatedAt: c.opts.now()}
}

func (c *Client[K, T]) cacheKey(key K) string {
	return fmt.Sprint(key)
}
