package interfaces

import "github.com/viddefe/go-viddefe/domain"

// MapWidget is the map surface driven by a position adapter. Implementations
// keep at most one marker; SetMarker moves it when it already exists.
type MapWidget interface {
	SetCenter(center domain.Position, zoom int)
	SetMarker(position domain.Position)
	ClearMarker()
	// OnPositionChange registers the callback fired on map clicks and marker drags.
	OnPositionChange(fn func(domain.Position))
	Close() error
}

// MapWidgetFactory creates a new widget instance for a mount.
type MapWidgetFactory func() (MapWidget, error)
