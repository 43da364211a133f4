package geo

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/runtimeconfig"
)

func floatPtr(v float64) *float64 { return &v }

func TestPositionFromFieldsRequiresBoth(t *testing.T) {
	cases := []struct {
		name string
		lat  *float64
		lng  *float64
		want bool
	}{
		{name: "both", lat: floatPtr(4.6), lng: floatPtr(-74.1), want: true},
		{name: "latitude only", lat: floatPtr(4.6)},
		{name: "longitude only", lng: floatPtr(-74.1)},
		{name: "none"},
		{name: "zero values", lat: floatPtr(0), lng: floatPtr(0), want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PositionFromFields(tc.lat, tc.lng, OrderLatLng)
			if (got != nil) != tc.want {
				t.Fatalf("expected present=%v, got %v", tc.want, got)
			}
		})
	}
}

func TestPositionRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, order := range []CoordinateOrder{OrderLatLng, OrderLngLat} {
		for i := 0; i < 200; i++ {
			p := domain.Position{Lat: rng.Float64()*180 - 90, Lng: rng.Float64()*360 - 180}
			lat, lng := FieldsFromPosition(p, order)
			back := PositionFromFields(&lat, &lng, order)
			if back == nil || *back != p {
				t.Fatalf("order %d: expected %v, got %v", order, p, back)
			}
		}
	}
}

func TestPositionOrderConvention(t *testing.T) {
	lat, lng := 4.711, -74.0721

	p := PositionFromFields(&lat, &lng, OrderLatLng)
	if p.Lat != lat || p.Lng != lng {
		t.Fatalf("lat_lng: expected latitude on the Lat axis, got %v", p)
	}

	p = PositionFromFields(&lat, &lng, OrderLngLat)
	if p.Lat != lng || p.Lng != lat {
		t.Fatalf("lng_lat: expected swapped axes, got %v", p)
	}

	cfg := runtimeconfig.MapConfig{CoordinateOrder: "LNG_LAT"}
	if OrderFromConfig(cfg) != OrderLngLat {
		t.Fatalf("expected legacy order from config")
	}
	if OrderFromConfig(runtimeconfig.MapConfig{}) != OrderLatLng {
		t.Fatalf("expected lat_lng by default")
	}
}

type fieldRecorder struct {
	calls [][2]*float64
}

func (f *fieldRecorder) set(lat, lng *float64) {
	f.calls = append(f.calls, [2]*float64{lat, lng})
}

func TestAdapterCreatesOneWidgetPerMount(t *testing.T) {
	var widgets []*StaticWidget
	rec := &fieldRecorder{}
	adapter, err := NewAdapter(NewStaticWidgetFactory(func(w *StaticWidget) { widgets = append(widgets, w) }), rec.set)
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := adapter.Mount(); err != nil {
			t.Fatalf("mount: %v", err)
		}
		adapter.Sync(floatPtr(float64(i)), floatPtr(float64(i)))
	}
	if len(widgets) != 1 {
		t.Fatalf("expected one widget, got %d", len(widgets))
	}

	marker, ok := widgets[0].Marker()
	if !ok || marker != (domain.Position{Lat: 2, Lng: 2}) {
		t.Fatalf("expected single marker moved to 2,2, got %v %v", marker, ok)
	}

	if err := adapter.Unmount(); err != nil {
		t.Fatalf("unmount: %v", err)
	}
	if !widgets[0].Closed() {
		t.Fatalf("expected widget closed on unmount")
	}
	if err := adapter.Mount(); err != nil {
		t.Fatalf("remount: %v", err)
	}
	if len(widgets) != 2 {
		t.Fatalf("expected a fresh widget after remount, got %d", len(widgets))
	}
	marker, ok = widgets[1].Marker()
	if !ok || marker != (domain.Position{Lat: 2, Lng: 2}) {
		t.Fatalf("expected marker restored on remount, got %v %v", marker, ok)
	}
}

func TestAdapterClearsMarkerWhenFieldMissing(t *testing.T) {
	var widget *StaticWidget
	adapter, _ := NewAdapter(NewStaticWidgetFactory(func(w *StaticWidget) { widget = w }), func(*float64, *float64) {},
		WithDefaultCenter(domain.Position{Lat: 1, Lng: 1}, 9))
	if err := adapter.Mount(); err != nil {
		t.Fatalf("mount: %v", err)
	}

	adapter.Sync(floatPtr(4), floatPtr(-74))
	if _, ok := widget.Marker(); !ok {
		t.Fatalf("expected marker")
	}

	adapter.Sync(floatPtr(4), nil)
	if _, ok := widget.Marker(); ok {
		t.Fatalf("expected marker cleared when longitude is missing")
	}
	center, zoom := widget.Center()
	if center != (domain.Position{Lat: 1, Lng: 1}) || zoom != 9 {
		t.Fatalf("expected default center, got %v zoom %d", center, zoom)
	}
	if adapter.Position() != nil {
		t.Fatalf("expected no position")
	}
}

func TestAdapterClickWritesBothFieldsAtOnce(t *testing.T) {
	for _, tc := range []struct {
		name    string
		order   CoordinateOrder
		wantLat float64
		wantLng float64
	}{
		{name: "lat_lng", order: OrderLatLng, wantLat: 4.6, wantLng: -74.1},
		{name: "lng_lat", order: OrderLngLat, wantLat: -74.1, wantLng: 4.6},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var widget *StaticWidget
			rec := &fieldRecorder{}
			adapter, _ := NewAdapter(NewStaticWidgetFactory(func(w *StaticWidget) { widget = w }), rec.set, WithOrder(tc.order))
			if err := adapter.Mount(); err != nil {
				t.Fatalf("mount: %v", err)
			}

			widget.Click(domain.Position{Lat: 4.6, Lng: -74.1})

			if len(rec.calls) != 1 {
				t.Fatalf("expected one setter call, got %d", len(rec.calls))
			}
			lat, lng := rec.calls[0][0], rec.calls[0][1]
			if lat == nil || lng == nil || *lat != tc.wantLat || *lng != tc.wantLng {
				t.Fatalf("expected %v/%v, got %v/%v", tc.wantLat, tc.wantLng, lat, lng)
			}
			marker, ok := widget.Marker()
			if !ok || marker != (domain.Position{Lat: 4.6, Lng: -74.1}) {
				t.Fatalf("expected marker at click, got %v", marker)
			}

			// feeding the written fields back yields the clicked position
			adapter.Sync(lat, lng)
			if p := adapter.Position(); p == nil || *p != (domain.Position{Lat: 4.6, Lng: -74.1}) {
				t.Fatalf("expected round trip through fields, got %v", p)
			}
		})
	}
}

func TestAdapterSelectValidatesRange(t *testing.T) {
	rec := &fieldRecorder{}
	adapter, _ := NewAdapter(NewStaticWidgetFactory(nil), rec.set)

	if err := adapter.Select(domain.Position{Lat: 91, Lng: 0}); !errors.Is(err, ErrPositionInvalid) {
		t.Fatalf("expected ErrPositionInvalid, got %v", err)
	}
	if len(rec.calls) != 0 {
		t.Fatalf("expected no field write")
	}

	if err := adapter.Select(domain.Position{Lat: 10, Lng: 20}); err != nil {
		t.Fatalf("select: %v", err)
	}
	adapter.Clear()
	if len(rec.calls) != 2 || rec.calls[1][0] != nil || rec.calls[1][1] != nil {
		t.Fatalf("expected clear to write both fields absent, got %v", rec.calls)
	}
}

func TestNewAdapterRequiresCollaborators(t *testing.T) {
	if _, err := NewAdapter(nil, func(*float64, *float64) {}); !errors.Is(err, ErrWidgetFactoryRequired) {
		t.Fatalf("expected ErrWidgetFactoryRequired, got %v", err)
	}
	if _, err := NewAdapter(NewStaticWidgetFactory(nil), nil); !errors.Is(err, ErrFieldSetterRequired) {
		t.Fatalf("expected ErrFieldSetterRequired, got %v", err)
	}
}
