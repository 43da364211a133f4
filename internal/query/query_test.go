package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type church struct {
	ID   string
	Name string
}

func TestFetchCachesAndRefetchBypasses(t *testing.T) {
	var calls atomic.Int32
	client := NewClient("churches", func(ctx context.Context, id string) (church, error) {
		n := calls.Add(1)
		return church{ID: id, Name: "v" + string(rune('0'+n))}, nil
	})

	first := client.Fetch(context.Background(), "A")
	second := client.Fetch(context.Background(), "A")
	if !first.HasData || first.Data.Name != "v1" || second.Data.Name != "v1" {
		t.Fatalf("expected cached v1, got %+v and %+v", first, second)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one loader call, got %d", calls.Load())
	}

	fresh := client.Refetch(context.Background(), "A")
	if fresh.Data.Name != "v2" {
		t.Fatalf("expected refetch to load v2, got %s", fresh.Data.Name)
	}
	if cached := client.Fetch(context.Background(), "A"); cached.Data.Name != "v2" {
		t.Fatalf("expected refetch to refresh the cache, got %s", cached.Data.Name)
	}
}

func TestFetchSurfacesErrors(t *testing.T) {
	boom := errors.New("backend down")
	client := NewClient("churches", func(ctx context.Context, id string) (church, error) {
		return church{}, boom
	})

	res := client.Fetch(context.Background(), "A")
	if !errors.Is(res.Err, boom) {
		t.Fatalf("expected backend error, got %v", res.Err)
	}
	if res.HasData {
		t.Fatal("expected no data on error")
	}
}

type recordingObserver struct {
	mu       sync.Mutex
	started  int
	finished []error
}

func (r *recordingObserver) FetchStarted(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
}

func (r *recordingObserver) FetchFinished(_ string, err error, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, err)
}

func TestObserverSeesEveryLoad(t *testing.T) {
	obs := &recordingObserver{}
	client := NewClient("people", func(ctx context.Context, id int) (string, error) {
		return "ok", nil
	}, WithObserver(obs), WithCapacity(16), WithStaleTime(time.Minute))

	client.Fetch(context.Background(), 1)
	client.Refetch(context.Background(), 1)

	if obs.started != 2 || len(obs.finished) != 2 {
		t.Fatalf("expected 2 observed loads, got %d/%d", obs.started, len(obs.finished))
	}
}

func TestWatchDeliversAndReloadsOnInvalidate(t *testing.T) {
	var version atomic.Int32
	client := NewClient("churches", func(ctx context.Context, id string) (church, error) {
		return church{ID: id, Name: "v" + string(rune('0'+version.Add(1)))}, nil
	})

	updates := make(chan Result[church], 4)
	w := client.Watch(context.Background(), "A", func(key string, res Result[church]) {
		updates <- res
	})
	defer w.Close()

	first := waitResult(t, updates)
	if first.Data.Name != "v1" || first.Loading {
		t.Fatalf("expected loaded v1, got %+v", first)
	}

	client.Invalidate("A")
	second := waitResult(t, updates)
	if second.Data.Name != "v2" {
		t.Fatalf("expected invalidation to reload v2, got %+v", second)
	}
	if got := w.Result(); got.Data.Name != "v2" {
		t.Fatalf("expected Result to return v2, got %+v", got)
	}
}

func TestWatchKeepsDataWhenRefetchFails(t *testing.T) {
	var fail atomic.Bool
	client := NewClient("churches", func(ctx context.Context, id string) (church, error) {
		if fail.Load() {
			return church{}, errors.New("offline")
		}
		return church{ID: id, Name: "Iglesia Central"}, nil
	})

	updates := make(chan Result[church], 4)
	w := client.Watch(context.Background(), "A", func(_ string, res Result[church]) { updates <- res })
	defer w.Close()
	waitResult(t, updates)

	fail.Store(true)
	w.Refetch()
	res := waitResult(t, updates)
	if res.Err == nil {
		t.Fatal("expected refetch error")
	}
	if !res.HasData || res.Data.Name != "Iglesia Central" {
		t.Fatalf("expected previous data to be kept, got %+v", res)
	}
}

func TestWatchCloseCancelsPendingLoad(t *testing.T) {
	started := make(chan struct{})
	client := NewClient("churches", func(ctx context.Context, id string) (church, error) {
		close(started)
		<-ctx.Done()
		return church{}, ctx.Err()
	})

	var delivered atomic.Bool
	w := client.Watch(context.Background(), "A", func(string, Result[church]) { delivered.Store(true) })
	<-started
	w.Close()

	if delivered.Load() {
		t.Fatal("expected no delivery after close")
	}
	client.Invalidate("A")
	if delivered.Load() {
		t.Fatal("expected closed watch to ignore invalidation")
	}
}

func TestInvalidateStringMatchesKeyFormatting(t *testing.T) {
	var calls atomic.Int32
	client := NewClient("meetings", func(ctx context.Context, id int64) (int64, error) {
		calls.Add(1)
		return id, nil
	})
	client.Fetch(context.Background(), int64(7))
	client.InvalidateString("7")
	client.Fetch(context.Background(), int64(7))
	if calls.Load() != 2 {
		t.Fatalf("expected cache miss after string invalidation, got %d calls", calls.Load())
	}
}

func waitResult[T any](t *testing.T, ch <-chan Result[T]) Result[T] {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for result")
	}
	var zero Result[T]
	return zero
}
