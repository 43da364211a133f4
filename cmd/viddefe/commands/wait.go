package commands

import (
	"context"
	"time"
)

const awaitTimeout = 30 * time.Second

// notifier wakes a waiting command when a screen reports a change.
type notifier chan struct{}

func newNotifier() notifier {
	return make(notifier, 1)
}

func (n notifier) signal() {
	select {
	case n <- struct{}{}:
	default:
	}
}

// await blocks until cond holds, re-checking after every signal.
func (n notifier) await(ctx context.Context, cond func() bool) error {
	ctx, cancel := context.WithTimeout(ctx, awaitTimeout)
	defer cancel()
	for {
		if cond() {
			return nil
		}
		select {
		case <-n:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
