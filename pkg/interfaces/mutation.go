package interfaces

import "context"

// Mutation submits a payload to the backend. OnSuccess runs only after the
// write was accepted; failures are returned and OnSuccess is skipped.
type Mutation[P any, R any] interface {
	Mutate(ctx context.Context, payload P, onSuccess func(R)) error
	IsPending() bool
}
