package events

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/viddefe/go-viddefe/internal/query"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

func TestMemoryBusRoutesByResource(t *testing.T) {
	bus := NewMemoryBus(nil)
	var churches, all []string

	unsub, err := bus.Subscribe("churches", func(e interfaces.EntityChanged) { churches = append(churches, e.ID) })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if _, err := bus.Subscribe(AllResources, func(e interfaces.EntityChanged) { all = append(all, e.Resource) }); err != nil {
		t.Fatalf("subscribe all: %v", err)
	}

	ctx := context.Background()
	_ = bus.Publish(ctx, interfaces.EntityChanged{Resource: "churches", ID: "a"})
	_ = bus.Publish(ctx, interfaces.EntityChanged{Resource: "people", ID: "b"})
	unsub()
	unsub()
	_ = bus.Publish(ctx, interfaces.EntityChanged{Resource: "churches", ID: "c"})

	if len(churches) != 1 || churches[0] != "a" {
		t.Fatalf("expected only the first church event, got %v", churches)
	}
	if len(all) != 3 {
		t.Fatalf("expected wildcard subscriber to see 3 events, got %v", all)
	}
}

func TestMemoryBusClosed(t *testing.T) {
	bus := NewMemoryBus(nil)
	if err := bus.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	err := bus.Publish(context.Background(), interfaces.EntityChanged{Resource: "churches"})
	if !errors.Is(err, ErrBusClosed) {
		t.Fatalf("expected ErrBusClosed, got %v", err)
	}
	if _, err := bus.Subscribe("churches", func(interfaces.EntityChanged) {}); !errors.Is(err, ErrBusClosed) {
		t.Fatalf("expected ErrBusClosed on subscribe, got %v", err)
	}
}

func TestBinderInvalidatesQueryClient(t *testing.T) {
	var loads atomic.Int32
	client := query.NewClient[string, string]("churches", func(ctx context.Context, id string) (string, error) {
		n := loads.Add(1)
		return id + "-v" + string(rune('0'+n)), nil
	}, query.WithStaleTime(time.Hour))

	bus := NewMemoryBus(nil)
	binder := NewBinder(bus, nil)
	if err := binder.Invalidate("churches", client); err != nil {
		t.Fatalf("bind: %v", err)
	}
	defer binder.Unbind()

	ctx := context.Background()
	first := client.Fetch(ctx, "x")
	cached := client.Fetch(ctx, "x")
	if first.Data != cached.Data || loads.Load() != 1 {
		t.Fatalf("expected cached fetch, got %q then %q (%d loads)", first.Data, cached.Data, loads.Load())
	}

	_ = bus.Publish(ctx, interfaces.EntityChanged{Resource: "churches", ID: "x", Action: "updated"})
	fresh := client.Fetch(ctx, "x")
	if loads.Load() != 2 || fresh.Data == first.Data {
		t.Fatalf("expected refetch after invalidation, got %q (%d loads)", fresh.Data, loads.Load())
	}

	binder.Unbind()
	_ = bus.Publish(ctx, interfaces.EntityChanged{Resource: "churches", ID: "x"})
	client.Fetch(ctx, "x")
	if loads.Load() != 2 {
		t.Fatalf("expected no invalidation after unbind, got %d loads", loads.Load())
	}
}

type refreshRecorder struct{ keys []string }

func (r *refreshRecorder) RefreshKey(key string) { r.keys = append(r.keys, key) }

func TestBinderRefresh(t *testing.T) {
	bus := NewMemoryBus(nil)
	binder := NewBinder(bus, nil)
	target := &refreshRecorder{}
	if err := binder.Refresh("attendance", target); err != nil {
		t.Fatalf("bind: %v", err)
	}
	_ = bus.Publish(context.Background(), interfaces.EntityChanged{Resource: "attendance", ID: "m1"})
	if len(target.keys) != 1 || target.keys[0] != "m1" {
		t.Fatalf("expected refresh for m1, got %v", target.keys)
	}
}

func TestNATSBusRoundTrip(t *testing.T) {
	url := os.Getenv("VIDDEFE_TEST_NATS_URL")
	if url == "" {
		t.Skip("VIDDEFE_TEST_NATS_URL not set")
	}
	bus, err := ConnectNATS(url, "viddefe.test", nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer bus.Close()

	received := make(chan interfaces.EntityChanged, 1)
	if _, err := bus.Subscribe("churches", func(e interfaces.EntityChanged) { received <- e }); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := bus.Publish(context.Background(), interfaces.EntityChanged{Resource: "churches", ID: "abc", Action: "updated"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case e := <-received:
		if e.ID != "abc" || e.Action != "updated" {
			t.Fatalf("unexpected event %+v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestNATSSubjects(t *testing.T) {
	bus := NewNATSBus(nil, " viddefe.entities. ", nil)
	if got := bus.Subject("churches"); got != "viddefe.entities.churches" {
		t.Fatalf("expected churches subject, got %q", got)
	}
	if got := bus.Subject(AllResources); got != "viddefe.entities.>" {
		t.Fatalf("expected wildcard subject, got %q", got)
	}
}
