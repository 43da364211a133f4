package mutation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type observerFunc func(name string, err error, elapsed time.Duration)

func (f observerFunc) MutationFinished(name string, err error, elapsed time.Duration) {
	f(name, err, elapsed)
}

func TestMutateRunsOnSuccess(t *testing.T) {
	m := New("church.save", func(ctx context.Context, name string) (string, error) {
		return "saved:" + name, nil
	})

	var got string
	if err := m.Mutate(context.Background(), "Norte", func(result string) { got = result }); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got != "saved:Norte" {
		t.Fatalf("expected onSuccess result, got %q", got)
	}
	if m.IsPending() {
		t.Fatal("expected mutation to settle")
	}
}

func TestMutateSkipsOnSuccessWhenFailing(t *testing.T) {
	boom := errors.New("backend rejected")
	var observed []error
	m := New("church.save", func(ctx context.Context, _ int) (int, error) {
		return 0, boom
	}, WithObserver(observerFunc(func(name string, err error, _ time.Duration) {
		observed = append(observed, err)
	})))

	called := false
	err := m.Mutate(context.Background(), 1, func(int) { called = true })
	if !errors.Is(err, boom) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if called {
		t.Fatal("expected onSuccess to be skipped")
	}
	if len(observed) != 1 || !errors.Is(observed[0], boom) {
		t.Fatalf("expected observer to see the failure, got %v", observed)
	}
	if !errors.Is(m.LastError(), boom) {
		t.Fatalf("expected last error to be recorded, got %v", m.LastError())
	}
}

func TestMutateRejectsConcurrentSubmission(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	m := New("attendance.toggle", func(ctx context.Context, _ struct{}) (struct{}, error) {
		close(started)
		<-release
		return struct{}{}, nil
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = m.Mutate(context.Background(), struct{}{}, nil)
	}()

	<-started
	if !m.IsPending() {
		t.Fatal("expected pending while the first submission runs")
	}
	err := m.Mutate(context.Background(), struct{}{}, nil)
	if !IsPendingError(err) {
		t.Fatalf("expected pending error, got %v", err)
	}

	close(release)
	wg.Wait()
	if m.IsPending() {
		t.Fatal("expected mutation to settle after release")
	}
}
