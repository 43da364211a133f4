package mutation

import (
	"context"
	"errors"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/viddefe/go-viddefe/internal/logging"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

const mutationPendingCode = "MUTATION_PENDING"

// ErrPending is returned when Mutate is called while a previous submission is in flight.
var ErrPending = errors.New("mutation: submission already pending")

// Func performs the write.
type Func[P any, R any] func(ctx context.Context, payload P) (R, error)

// Observer receives mutation outcomes.
type Observer interface {
	MutationFinished(name string, err error, elapsed time.Duration)
}

// Option configures a Mutation.
type Option func(*settings)

type settings struct {
	logger   interfaces.Logger
	observer Observer
	now      func() time.Time
}

// WithLogger sets the mutation logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *settings) {
		s.logger = logging.Ensure(logger)
	}
}

// WithObserver reports every finished submission to observer.
func WithObserver(observer Observer) Option {
	return func(s *settings) {
		s.observer = observer
	}
}

// Mutation serialises submissions of one form or action.
type Mutation[P any, R any] struct {
	name     string
	fn       Func[P, R]
	logger   interfaces.Logger
	observer Observer
	now      func() time.Time

	mu      sync.Mutex
	pending bool
	lastErr error
}

var _ interfaces.Mutation[struct{}, struct{}] = (*Mutation[struct{}, struct{}])(nil)

// New builds a mutation named name around fn.
func New[P any, R any](name string, fn Func[P, R], opts ...Option) *Mutation[P, R] {
	if fn == nil {
		panic("mutation: function cannot be nil")
	}
	cfg := settings{logger: logging.NoOp(), now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Mutation[P, R]{
		name:     name,
		fn:       fn,
		logger:   cfg.logger,
		observer: cfg.observer,
		now:      cfg.now,
	}
}

// Mutate runs the write on the calling goroutine. While it runs IsPending
// reports true and further calls fail with ErrPending.
func (m *Mutation[P, R]) Mutate(ctx context.Context, payload P, onSuccess func(R)) error {
	m.mu.Lock()
	if m.pending {
		m.mu.Unlock()
		return goerrors.Wrap(ErrPending, goerrors.CategoryCommand, "mutation already in flight").
			WithTextCode(mutationPendingCode)
	}
	m.pending = true
	m.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	started := m.now()
	result, err := m.fn(ctx, payload)
	elapsed := m.now().Sub(started)

	m.mu.Lock()
	m.pending = false
	m.lastErr = err
	m.mu.Unlock()

	if m.observer != nil {
		m.observer.MutationFinished(m.name, err, elapsed)
	}
	if err != nil {
		m.logger.Warn("mutation.failed", "mutation", m.name, "error", err)
		return err
	}
	m.logger.Debug("mutation.succeeded", "mutation", m.name, "elapsed_ms", elapsed.Milliseconds())
	if onSuccess != nil {
		onSuccess(result)
	}
	return nil
}

// IsPending reports whether a submission is in flight.
func (m *Mutation[P, R]) IsPending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

// LastError returns the error of the most recent submission.
func (m *Mutation[P, R]) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Name returns the mutation name.
func (m *Mutation[P, R]) Name() string {
	return m.name
}

// IsPendingError reports whether err came from a rejected concurrent submission.
func IsPendingError(err error) bool {
	return errors.Is(err, ErrPending)
}
