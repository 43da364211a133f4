package events

import (
	"context"
	"errors"
	"sync"

	"github.com/viddefe/go-viddefe/internal/logging"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

// AllResources subscribes to every resource.
const AllResources = "*"

var (
	ErrBusClosed        = errors.New("events: bus is closed")
	ErrResourceRequired = errors.New("events: resource is required")
	ErrHandlerRequired  = errors.New("events: handler is required")
)

// MemoryBus delivers events synchronously to in-process subscribers.
type MemoryBus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]func(interfaces.EntityChanged)
	closed bool
	logger interfaces.Logger
}

var _ interfaces.EventBus = (*MemoryBus)(nil)

// NewMemoryBus builds an in-process bus.
func NewMemoryBus(logger interfaces.Logger) *MemoryBus {
	return &MemoryBus{
		subs:   map[string]map[int]func(interfaces.EntityChanged){},
		logger: logging.Ensure(logger),
	}
}

// Publish delivers event to subscribers of its resource and of AllResources.
func (b *MemoryBus) Publish(ctx context.Context, event interfaces.EntityChanged) error {
	if event.Resource == "" {
		return ErrResourceRequired
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	handlers := make([]func(interfaces.EntityChanged), 0, len(b.subs[event.Resource])+len(b.subs[AllResources]))
	for _, fn := range b.subs[event.Resource] {
		handlers = append(handlers, fn)
	}
	for _, fn := range b.subs[AllResources] {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()

	b.logger.Debug("events.publish", "resource", event.Resource, "id", event.ID, "action", event.Action, "subscribers", len(handlers))
	for _, fn := range handlers {
		fn(event)
	}
	return nil
}

// Subscribe registers fn for resource.
func (b *MemoryBus) Subscribe(resource string, fn func(interfaces.EntityChanged)) (func(), error) {
	if resource == "" {
		return nil, ErrResourceRequired
	}
	if fn == nil {
		return nil, ErrHandlerRequired
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBusClosed
	}
	b.nextID++
	id := b.nextID
	if b.subs[resource] == nil {
		b.subs[resource] = map[int]func(interfaces.EntityChanged){}
	}
	b.subs[resource][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[resource], id)
			if len(b.subs[resource]) == 0 {
				delete(b.subs, resource)
			}
		})
	}, nil
}

// Close drops every subscriber. Further publishes fail with ErrBusClosed.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = map[string]map[int]func(interfaces.EntityChanged){}
	return nil
}
