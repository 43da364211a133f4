package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/viddefe/go-viddefe/internal/mutation"
	"github.com/viddefe/go-viddefe/internal/query"
)

func TestCollectorCountsFetches(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector, err := NewCollector("viddefe", registry)
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}

	fail := errors.New("offline")
	client := query.NewClient[int, string]("churches", func(ctx context.Context, id int) (string, error) {
		if id < 0 {
			return "", fail
		}
		return "ok", nil
	}, query.WithObserver(collector))

	client.Refetch(context.Background(), 1)
	client.Refetch(context.Background(), 2)
	client.Refetch(context.Background(), -1)

	if got := testutil.ToFloat64(collector.fetches.WithLabelValues("churches", "success")); got != 2 {
		t.Fatalf("expected 2 successful fetches, got %v", got)
	}
	if got := testutil.ToFloat64(collector.fetches.WithLabelValues("churches", "error")); got != 1 {
		t.Fatalf("expected 1 failed fetch, got %v", got)
	}
	if got := testutil.ToFloat64(collector.inFlight.WithLabelValues("churches")); got != 0 {
		t.Fatalf("expected no fetch in flight, got %v", got)
	}
}

func TestCollectorCountsDependentAndMutations(t *testing.T) {
	collector, err := NewCollector("viddefe", nil)
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}

	collector.Requested("cities")
	collector.Requested("cities")
	collector.Discarded("cities")

	save := mutation.New("churches.save", func(ctx context.Context, name string) (string, error) {
		if name == "" {
			return "", errors.New("name required")
		}
		return name, nil
	}, mutation.WithObserver(collector))
	_ = save.Mutate(context.Background(), "Norte", nil)
	_ = save.Mutate(context.Background(), "", nil)

	if got := testutil.ToFloat64(collector.requests.WithLabelValues("cities")); got != 2 {
		t.Fatalf("expected 2 requests, got %v", got)
	}
	if got := testutil.ToFloat64(collector.discarded.WithLabelValues("cities")); got != 1 {
		t.Fatalf("expected 1 discarded response, got %v", got)
	}
	if got := testutil.ToFloat64(collector.mutations.WithLabelValues("churches.save", "success")); got != 1 {
		t.Fatalf("expected 1 successful mutation, got %v", got)
	}
	if got := testutil.ToFloat64(collector.mutations.WithLabelValues("churches.save", "error")); got != 1 {
		t.Fatalf("expected 1 failed mutation, got %v", got)
	}
	collector.MutationFinished("offerings.register", nil, 5*time.Millisecond)
	if got := testutil.CollectAndCount(collector.mutationTime); got != 2 {
		t.Fatalf("expected histograms for 2 mutations, got %d", got)
	}
}

func TestCollectorRequiresNamespace(t *testing.T) {
	if _, err := NewCollector("  ", nil); !errors.Is(err, ErrNamespaceRequired) {
		t.Fatalf("expected ErrNamespaceRequired, got %v", err)
	}
}
