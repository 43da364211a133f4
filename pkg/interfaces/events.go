package interfaces

import (
	"context"
	"time"
)

// EntityChanged announces that a remote entity was created, updated or deleted.
type EntityChanged struct {
	Resource  string    `json:"resource"`
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// EventBus fans entity change notifications out to subscribers.
type EventBus interface {
	Publish(ctx context.Context, event EntityChanged) error
	Subscribe(resource string, fn func(EntityChanged)) (unsubscribe func(), err error)
	Close() error
}
