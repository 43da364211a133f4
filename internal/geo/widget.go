package geo

import (
	"fmt"
	"sync"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

// StaticWidget is a headless map used by terminal front ends. It keeps the
// center and the single marker and lets callers emulate clicks.
type StaticWidget struct {
	mu       sync.Mutex
	center   domain.Position
	zoom     int
	marker   *domain.Position
	listener func(domain.Position)
	closed   bool
}

// NewStaticWidgetFactory returns a factory producing StaticWidgets. Each
// created widget is passed to track when it is non-nil.
func NewStaticWidgetFactory(track func(*StaticWidget)) interfaces.MapWidgetFactory {
	return func() (interfaces.MapWidget, error) {
		w := &StaticWidget{}
		if track != nil {
			track(w)
		}
		return w, nil
	}
}

func (w *StaticWidget) SetCenter(center domain.Position, zoom int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.center, w.zoom = center, zoom
}

func (w *StaticWidget) SetMarker(position domain.Position) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p := position
	w.marker = &p
}

func (w *StaticWidget) ClearMarker() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.marker = nil
}

func (w *StaticWidget) OnPositionChange(fn func(domain.Position)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listener = fn
}

func (w *StaticWidget) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	w.listener = nil
	return nil
}

// Click emulates a click on the map.
func (w *StaticWidget) Click(p domain.Position) {
	w.mu.Lock()
	fn := w.listener
	closed := w.closed
	w.mu.Unlock()

	if fn != nil && !closed {
		fn(p)
	}
}

// Marker returns the marker position, if any.
func (w *StaticWidget) Marker() (domain.Position, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.marker == nil {
		return domain.Position{}, false
	}
	return *w.marker, true
}

// Center returns the current view.
func (w *StaticWidget) Center() (domain.Position, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.center, w.zoom
}

// Closed reports whether the widget was closed.
func (w *StaticWidget) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// Describe renders the widget state as one line.
func (w *StaticWidget) Describe() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.marker == nil {
		return fmt.Sprintf("center=%s zoom=%d marker=none", w.center, w.zoom)
	}
	return fmt.Sprintf("center=%s zoom=%d marker=%s", w.center, w.zoom, w.marker)
}
