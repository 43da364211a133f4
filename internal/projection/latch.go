package projection

// Latch is a two state machine: unpopulated, or populated for one identifier.
// It replaces an ad hoc boolean so that switching identifiers always reopens it.
type Latch[K comparable] struct {
	populated bool
	id        K
}

// Populate records that the projection holds the entity id.
func (l *Latch[K]) Populate(id K) {
	l.populated = true
	l.id = id
}

// Reset returns the latch to unpopulated.
func (l *Latch[K]) Reset() {
	var zero K
	l.populated = false
	l.id = zero
}

// Holds reports whether the latch is populated for id.
func (l *Latch[K]) Holds(id K) bool {
	return l.populated && l.id == id
}

// State returns the populated identifier, if any.
func (l *Latch[K]) State() (K, bool) {
	return l.id, l.populated
}
