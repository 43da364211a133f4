package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/viddefe/go-viddefe/internal/logging"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

// DefaultSubjectPrefix is the subject root entity events are published under.
const DefaultSubjectPrefix = "viddefe.entities"

// NATSBus publishes entity changes as JSON on <prefix>.<resource>.
type NATSBus struct {
	conn   *nats.Conn
	prefix string
	owned  bool
	logger interfaces.Logger

	mu   sync.Mutex
	subs []*nats.Subscription
}

var _ interfaces.EventBus = (*NATSBus)(nil)

// ConnectNATS dials url and returns a bus that owns the connection.
func ConnectNATS(url, prefix string, logger interfaces.Logger) (*NATSBus, error) {
	conn, err := nats.Connect(url,
		nats.Name("viddefe"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	bus := NewNATSBus(conn, prefix, logger)
	bus.owned = true
	return bus, nil
}

// NewNATSBus wraps an existing connection. Close leaves conn open.
func NewNATSBus(conn *nats.Conn, prefix string, logger interfaces.Logger) *NATSBus {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSBus{conn: conn, prefix: prefix, logger: logging.Ensure(logger)}
}

// Subject returns the subject used for resource.
func (b *NATSBus) Subject(resource string) string {
	if resource == AllResources {
		return b.prefix + ".>"
	}
	return b.prefix + "." + resource
}

func (b *NATSBus) Publish(ctx context.Context, event interfaces.EntityChanged) error {
	if event.Resource == "" {
		return ErrResourceRequired
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: encode %s event: %w", event.Resource, err)
	}
	if err := b.conn.Publish(b.Subject(event.Resource), payload); err != nil {
		return fmt.Errorf("events: publish %s event: %w", event.Resource, err)
	}
	return nil
}

func (b *NATSBus) Subscribe(resource string, fn func(interfaces.EntityChanged)) (func(), error) {
	if resource == "" {
		return nil, ErrResourceRequired
	}
	if fn == nil {
		return nil, ErrHandlerRequired
	}
	sub, err := b.conn.Subscribe(b.Subject(resource), func(msg *nats.Msg) {
		var event interfaces.EntityChanged
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			b.logger.Warn("events.nats.decode_failed", "subject", msg.Subject, "error", err)
			return
		}
		fn(event)
	})
	if err != nil {
		return nil, fmt.Errorf("events: subscribe %s: %w", resource, err)
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	return func() {
		if err := sub.Unsubscribe(); err != nil && err != nats.ErrConnectionClosed && err != nats.ErrBadSubscription {
			b.logger.Warn("events.nats.unsubscribe_failed", "resource", resource, "error", err)
		}
	}, nil
}

// Close unsubscribes everything and, when the bus dialled the connection, drains it.
func (b *NATSBus) Close() error {
	b.mu.Lock()
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()

	for _, sub := range subs {
		_ = sub.Unsubscribe()
	}
	if b.owned {
		return b.conn.Drain()
	}
	return nil
}
