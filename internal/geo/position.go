package geo

import (
	"errors"
	"sync"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/logging"
	"github.com/viddefe/go-viddefe/internal/runtimeconfig"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

var (
	ErrWidgetFactoryRequired = errors.New("geo: map widget factory required")
	ErrFieldSetterRequired   = errors.New("geo: field setter required")
	ErrNotMounted            = errors.New("geo: map widget not mounted")
	ErrPositionInvalid       = errors.New("geo: position out of range")
)

// CoordinateOrder maps the stored latitude/longitude fields to the map axes.
type CoordinateOrder int

const (
	// OrderLatLng stores the map latitude in Latitude and longitude in Longitude.
	OrderLatLng CoordinateOrder = iota
	// OrderLngLat swaps the axes for records written by legacy clients.
	OrderLngLat
)

// OrderFromConfig resolves the coordinate order configured for the map.
func OrderFromConfig(cfg runtimeconfig.MapConfig) CoordinateOrder {
	if cfg.SwapsCoordinates() {
		return OrderLngLat
	}
	return OrderLatLng
}

// PositionFromFields derives the map position from the stored fields. The
// result is nil unless both fields are present.
func PositionFromFields(latitude, longitude *float64, order CoordinateOrder) *domain.Position {
	if latitude == nil || longitude == nil {
		return nil
	}
	if order == OrderLngLat {
		return &domain.Position{Lat: *longitude, Lng: *latitude}
	}
	return &domain.Position{Lat: *latitude, Lng: *longitude}
}

// FieldsFromPosition is the inverse of PositionFromFields.
func FieldsFromPosition(p domain.Position, order CoordinateOrder) (latitude, longitude float64) {
	if order == OrderLngLat {
		return p.Lng, p.Lat
	}
	return p.Lat, p.Lng
}

// FieldSetter writes both coordinate fields in a single update.
type FieldSetter func(latitude, longitude *float64)

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithOrder sets the coordinate order.
func WithOrder(order CoordinateOrder) AdapterOption {
	return func(a *Adapter) {
		a.order = order
	}
}

// WithDefaultCenter sets the view used while no position is known.
func WithDefaultCenter(center domain.Position, zoom int) AdapterOption {
	return func(a *Adapter) {
		a.center = center
		if zoom > 0 {
			a.zoom = zoom
		}
	}
}

// WithMapConfig applies order and default center from configuration.
func WithMapConfig(cfg runtimeconfig.MapConfig) AdapterOption {
	return func(a *Adapter) {
		a.order = OrderFromConfig(cfg)
		a.center = domain.Position{Lat: cfg.DefaultLat, Lng: cfg.DefaultLng}
		if cfg.DefaultZoom > 0 {
			a.zoom = cfg.DefaultZoom
		}
	}
}

// WithAdapterLogger sets the logger.
func WithAdapterLogger(logger interfaces.Logger) AdapterOption {
	return func(a *Adapter) {
		a.logger = logging.Ensure(logger)
	}
}

// Adapter binds a pair of optional coordinate fields to a map widget. It owns
// at most one widget per mount and the widget holds at most one marker.
type Adapter struct {
	factory interfaces.MapWidgetFactory
	setter  FieldSetter
	order   CoordinateOrder
	center  domain.Position
	zoom    int
	logger  interfaces.Logger

	mu       sync.Mutex
	widget   interfaces.MapWidget
	position *domain.Position
	mounted  bool
}

// NewAdapter builds an adapter. setter receives both fields on every map
// interaction.
func NewAdapter(factory interfaces.MapWidgetFactory, setter FieldSetter, opts ...AdapterOption) (*Adapter, error) {
	if factory == nil {
		return nil, ErrWidgetFactoryRequired
	}
	if setter == nil {
		return nil, ErrFieldSetterRequired
	}
	a := &Adapter{
		factory: factory,
		setter:  setter,
		zoom:    12,
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Mount creates the widget. Mounting an already mounted adapter does nothing.
func (a *Adapter) Mount() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.mounted {
		return nil
	}
	widget, err := a.factory()
	if err != nil {
		return err
	}
	a.widget = widget
	a.mounted = true
	widget.OnPositionChange(a.handlePosition)
	a.renderLocked()
	a.logger.Debug("geo.map.mounted")
	return nil
}

// Sync pushes the current field values to the widget. Syncing before Mount
// only records the position.
func (a *Adapter) Sync(latitude, longitude *float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.position = PositionFromFields(latitude, longitude, a.order)
	if a.mounted {
		a.renderLocked()
	}
}

// Select applies a position picked on the map or typed by the user. Both
// fields are written through the setter in one call.
func (a *Adapter) Select(p domain.Position) error {
	if !p.Valid() {
		return ErrPositionInvalid
	}
	a.handlePosition(p)
	return nil
}

// Clear removes the position and writes both fields as absent.
func (a *Adapter) Clear() {
	a.mu.Lock()
	a.position = nil
	if a.mounted {
		a.renderLocked()
	}
	a.mu.Unlock()

	a.setter(nil, nil)
}

// Position returns the current position or nil.
func (a *Adapter) Position() *domain.Position {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.position == nil {
		return nil
	}
	p := *a.position
	return &p
}

// Mounted reports whether a widget is live.
func (a *Adapter) Mounted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mounted
}

// Unmount closes the widget. A later Mount creates a fresh one.
func (a *Adapter) Unmount() error {
	a.mu.Lock()
	widget := a.widget
	a.widget = nil
	a.mounted = false
	a.mu.Unlock()

	if widget == nil {
		return nil
	}
	a.logger.Debug("geo.map.unmounted")
	return widget.Close()
}

func (a *Adapter) handlePosition(p domain.Position) {
	a.mu.Lock()
	pos := p
	a.position = &pos
	if a.mounted {
		a.widget.SetMarker(pos)
	}
	latitude, longitude := FieldsFromPosition(pos, a.order)
	a.mu.Unlock()

	a.setter(&latitude, &longitude)
}

func (a *Adapter) renderLocked() {
	if a.position == nil {
		a.widget.ClearMarker()
		a.widget.SetCenter(a.center, a.zoom)
		return
	}
	a.widget.SetMarker(*a.position)
	a.widget.SetCenter(*a.position, a.zoom)
}
