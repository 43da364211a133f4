package projection

import (
	"fmt"
	"sync"
)

// Mode is the screen mode a projection is opened in.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
	ModeView
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeEdit:
		return "edit"
	case ModeView:
		return "view"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Outcome explains why an observation did or did not write the projection.
type Outcome int

const (
	Populated Outcome = iota
	SkippedClosed
	SkippedAbsent
	SkippedNoTarget
	SkippedStale
	SkippedMode
	SkippedLatched
)

func (o Outcome) String() string {
	switch o {
	case Populated:
		return "populated"
	case SkippedClosed:
		return "closed"
	case SkippedAbsent:
		return "absent"
	case SkippedNoTarget:
		return "no_target"
	case SkippedStale:
		return "stale"
	case SkippedMode:
		return "mode"
	case SkippedLatched:
		return "latched"
	default:
		return "unknown"
	}
}

// Option configures a Projector.
type Option[P any] func(*settings[P])

type settings[P any] struct {
	empty      func() P
	onPopulate func(P)
}

// WithEmpty sets the projection used on create and after reset.
func WithEmpty[P any](empty func() P) Option[P] {
	return func(s *settings[P]) {
		if empty != nil {
			s.empty = empty
		}
	}
}

// WithOnPopulate registers a callback fired after each population.
func WithOnPopulate[P any](fn func(P)) Option[P] {
	return func(s *settings[P]) {
		s.onPopulate = fn
	}
}

// Projector keeps a local editable projection P in sync with a remote entity R
// identified by K. In edit mode the projection is written once per target; in
// view mode it follows every matching remote value.
type Projector[K comparable, R any, P any] struct {
	mu        sync.Mutex
	project   func(R) P
	settings  settings[P]
	mode      Mode
	target    K
	hasTarget bool
	latch     Latch[K]
	local     P
	open      bool
}

// New builds a closed projector. project must be pure.
func New[K comparable, R any, P any](project func(R) P, opts ...Option[P]) *Projector[K, R, P] {
	if project == nil {
		panic("projection: project function cannot be nil")
	}
	s := settings[P]{empty: func() P { var zero P; return zero }}
	for _, opt := range opts {
		opt(&s)
	}
	return &Projector[K, R, P]{project: project, settings: s}
}

// OpenCreate opens an empty projection with no target.
func (p *Projector[K, R, P]) OpenCreate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	var zero K
	p.mode = ModeCreate
	p.target, p.hasTarget = zero, false
	p.latch.Reset()
	p.local = p.settings.empty()
	p.open = true
}

// Open opens the projection for target in mode.
func (p *Projector[K, R, P]) Open(mode Mode, target K) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = mode
	p.target, p.hasTarget = target, true
	p.latch.Reset()
	p.local = p.settings.empty()
	p.open = true
}

// Select switches the target. A different target reopens the latch.
func (p *Projector[K, R, P]) Select(target K) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.hasTarget && p.target == target {
		return
	}
	p.target, p.hasTarget = target, true
	p.latch.Reset()
}

// SetMode changes the mode. Entering a mode reopens the latch.
func (p *Projector[K, R, P]) SetMode(mode Mode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode == mode {
		return
	}
	p.mode = mode
	p.latch.Reset()
}

// Observe feeds a remote value. present is false while the entity is not loaded.
func (p *Projector[K, R, P]) Observe(remoteID K, remote R, present bool) Outcome {
	p.mu.Lock()
	switch {
	case !p.open:
		p.mu.Unlock()
		return SkippedClosed
	case !present:
		p.mu.Unlock()
		return SkippedAbsent
	case !p.hasTarget:
		p.mu.Unlock()
		return SkippedNoTarget
	case remoteID != p.target:
		p.mu.Unlock()
		return SkippedStale
	case p.mode != ModeEdit && p.mode != ModeView:
		p.mu.Unlock()
		return SkippedMode
	case p.mode == ModeEdit && p.latch.Holds(p.target):
		p.mu.Unlock()
		return SkippedLatched
	}

	p.local = p.project(remote)
	if p.mode == ModeEdit {
		p.latch.Populate(p.target)
	}
	local, notify := p.local, p.settings.onPopulate
	p.mu.Unlock()

	if notify != nil {
		notify(local)
	}
	return Populated
}

// Update applies a user edit. It is ignored while closed.
func (p *Projector[K, R, P]) Update(edit func(*P)) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open || edit == nil {
		return false
	}
	edit(&p.local)
	return true
}

// Local returns the current projection.
func (p *Projector[K, R, P]) Local() P {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.local
}

// Target returns the selected identifier.
func (p *Projector[K, R, P]) Target() (K, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.target, p.hasTarget
}

// Mode returns the current mode.
func (p *Projector[K, R, P]) Mode() Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// Latched reports whether the edit latch holds the current target.
func (p *Projector[K, R, P]) Latched() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasTarget && p.latch.Holds(p.target)
}

// IsOpen reports whether the projection accepts observations.
func (p *Projector[K, R, P]) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// Close discards the projection and resets the latch. Later observations and
// edits are ignored until the projector is opened again.
func (p *Projector[K, R, P]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	var zero K
	p.open = false
	p.target, p.hasTarget = zero, false
	p.latch.Reset()
	p.local = p.settings.empty()
}
