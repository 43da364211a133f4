package commands

import (
	"context"
	"time"

	"github.com/viddefe/go-viddefe/internal/logging"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Notify publishes an entity change after a successful mutation. Publish
// failures are logged and never fail the mutation itself.
func Notify(ctx context.Context, bus interfaces.EventBus, logger interfaces.Logger, resource, id, action string) {
	if bus == nil {
		return
	}
	event := interfaces.EntityChanged{
		Resource:  resource,
		ID:        id,
		Action:    action,
		Timestamp: time.Now().UTC(),
	}
	if err := bus.Publish(ctx, event); err != nil {
		logging.WithEntityContext(logging.Ensure(logger), resource, id, action).
			Warn("command.notify.failed", "error", err)
	}
}
