package events

import (
	"sync"

	"github.com/viddefe/go-viddefe/internal/logging"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

// Invalidator drops cached data for a key, e.g. a query.Client.
type Invalidator interface {
	InvalidateString(key string)
}

// Refresher reloads a dependent collection when its key matches.
type Refresher interface {
	RefreshKey(key string)
}

// Binder connects bus events to cache invalidation. Unbind releases every subscription.
type Binder struct {
	bus    interfaces.EventBus
	logger interfaces.Logger

	mu     sync.Mutex
	unsubs []func()
}

// NewBinder builds a binder over bus.
func NewBinder(bus interfaces.EventBus, logger interfaces.Logger) *Binder {
	return &Binder{bus: bus, logger: logging.Ensure(logger)}
}

// Invalidate drops target's entry for the event id on every change of resource.
func (b *Binder) Invalidate(resource string, target Invalidator) error {
	return b.On(resource, func(event interfaces.EntityChanged) {
		if event.ID == "" {
			return
		}
		target.InvalidateString(event.ID)
	})
}

// Refresh reloads target whenever resource changes for its key.
func (b *Binder) Refresh(resource string, target Refresher) error {
	return b.On(resource, func(event interfaces.EntityChanged) {
		target.RefreshKey(event.ID)
	})
}

// On subscribes fn to resource.
func (b *Binder) On(resource string, fn func(interfaces.EntityChanged)) error {
	if b.bus == nil {
		return nil
	}
	unsubscribe, err := b.bus.Subscribe(resource, func(event interfaces.EntityChanged) {
		b.logger.Debug("events.binder.deliver", "resource", event.Resource, "id", event.ID, "action", event.Action)
		fn(event)
	})
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.unsubs = append(b.unsubs, unsubscribe)
	b.mu.Unlock()
	return nil
}

// Unbind releases every subscription made through the binder.
func (b *Binder) Unbind() {
	b.mu.Lock()
	unsubs := b.unsubs
	b.unsubs = nil
	b.mu.Unlock()
	for _, fn := range unsubs {
		fn()
	}
}
