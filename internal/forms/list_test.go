package forms

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/paging"
	"github.com/viddefe/go-viddefe/internal/people"
	"github.com/viddefe/go-viddefe/internal/permissions"
)

func TestChurchListPagesAndSorts(t *testing.T) {
	env := newFormEnv(t)
	list, err := NewChurchList(ChurchListConfig{Churches: env.services.Churches, PageSize: 1})
	if err != nil {
		t.Fatalf("new list: %v", err)
	}
	t.Cleanup(list.Close)

	if err := list.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	list.Wait()
	st := list.State()
	if st.Loading || st.Err != nil || st.Total != 2 || st.TotalPages != 2 {
		t.Fatalf("unexpected state %+v", st)
	}

	table := list.Table()
	table.ToggleSort("name")
	list.Wait()
	if rows := table.Rows(); len(rows) != 1 || rows[0].Name != "Iglesia Central" {
		t.Fatalf("expected Iglesia Central first, got %+v", table.Cells())
	}

	list.Pager().SetPage(1)
	list.Wait()
	if rows := table.Rows(); len(rows) != 1 || rows[0].Name != "Iglesia Norte" {
		t.Fatalf("expected Iglesia Norte on second page, got %+v", table.Cells())
	}

	table.ToggleSort("name")
	list.Wait()
	if list.Pager().Page() != 0 {
		t.Fatalf("expected sort change to reset the page")
	}
	if rows := table.Rows(); rows[0].Name != "Iglesia Norte" {
		t.Fatalf("expected descending sort, got %+v", table.Cells())
	}
	if got := list.Pager().Request().SortDir; got != domain.SortDesc {
		t.Fatalf("expected desc request, got %q", got)
	}
}

func TestListKeepsLatestResponse(t *testing.T) {
	release := make(chan struct{})
	list, err := NewList(ListConfig[string]{
		Name: "letters",
		Load: func(ctx context.Context, req domain.PageRequest) (domain.Page[string], error) {
			if req.Page == 0 && req.SortField == "" {
				<-release
				return domain.Page[string]{Content: []string{"stale"}, TotalPages: 3, TotalElements: 3}, nil
			}
			return domain.Page[string]{Content: []string{"fresh"}, TotalPages: 3, TotalElements: 3, Number: req.Page}, nil
		},
		Columns:  []paging.Column[string]{{Key: "value", Title: "Valor", Sortable: true, Value: func(s string) string { return s }}},
		PageSize: 1,
	})
	if err != nil {
		t.Fatalf("new list: %v", err)
	}
	t.Cleanup(list.Close)

	if err := list.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	list.Table().ToggleSort("value")
	close(release)
	list.Wait()

	if rows := list.Table().Rows(); len(rows) != 1 || rows[0] != "fresh" {
		t.Fatalf("expected the latest response, got %v", rows)
	}
}

func TestListClampsShrunkenTotals(t *testing.T) {
	var mu sync.Mutex
	items := []string{"a", "b", "c"}
	list, err := NewList(ListConfig[string]{
		Load: func(ctx context.Context, req domain.PageRequest) (domain.Page[string], error) {
			mu.Lock()
			defer mu.Unlock()
			page := domain.Page[string]{TotalElements: int64(len(items)), TotalPages: len(items), Number: req.Page}
			if req.Page < len(items) {
				page.Content = []string{items[req.Page]}
			}
			return page, nil
		},
		PageSize: 1,
	})
	if err != nil {
		t.Fatalf("new list: %v", err)
	}
	t.Cleanup(list.Close)

	if err := list.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	list.Wait()
	list.Pager().SetPage(2)
	list.Wait()

	mu.Lock()
	items = items[:1]
	mu.Unlock()
	if err := list.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	list.Wait()

	if page := list.Pager().Page(); page != 0 {
		t.Fatalf("expected clamp to page 0, got %d", page)
	}
	if rows := list.Table().Rows(); len(rows) != 1 || rows[0] != "a" {
		t.Fatalf("expected refetched first page, got %v", rows)
	}
}

func TestListReportsLoadErrors(t *testing.T) {
	boom := errors.New("backend down")
	list, err := NewList(ListConfig[string]{
		Load: func(context.Context, domain.PageRequest) (domain.Page[string], error) {
			return domain.Page[string]{}, boom
		},
	})
	if err != nil {
		t.Fatalf("new list: %v", err)
	}
	if err := list.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	list.Wait()
	if st := list.State(); !errors.Is(st.Err, boom) || st.Loading {
		t.Fatalf("expected load error, got %+v", st)
	}

	list.Close()
	if err := list.Load(); !errors.Is(err, ErrListClosed) {
		t.Fatalf("expected closed list, got %v", err)
	}
}

func TestChurchListCapabilities(t *testing.T) {
	env := newFormEnv(t)
	noop := func(context.Context, *domain.Church) error { return nil }

	denied, err := NewChurchList(ChurchListConfig{Churches: env.services.Churches, Capabilities: permissions.NewSet("people:read")})
	if err != nil {
		t.Fatalf("new list: %v", err)
	}
	if err := denied.Load(); !errors.Is(err, permissions.ErrPermissionDenied) {
		t.Fatalf("expected denied, got %v", err)
	}

	readOnly, err := NewChurchList(ChurchListConfig{
		Churches:     env.services.Churches,
		Capabilities: permissions.NewSet("churches:read"),
		View:         noop,
		Edit:         noop,
		Delete:       noop,
	})
	if err != nil {
		t.Fatalf("new list: %v", err)
	}
	t.Cleanup(readOnly.Close)
	actions := readOnly.Table().Actions(env.norte)
	if len(actions) != 1 || actions[0].Name != ActionView {
		t.Fatalf("expected only view, got %+v", actions)
	}
}

func TestPeopleListFiltersByChurch(t *testing.T) {
	env := newFormEnv(t)
	list, err := NewPeopleList(env.services.People, people.Filter{ChurchID: &env.norte.ID}, nil, 10, nil)
	if err != nil {
		t.Fatalf("new list: %v", err)
	}
	t.Cleanup(list.Close)
	if err := list.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	list.Wait()
	if st := list.State(); st.Total != 2 {
		t.Fatalf("expected 2 members, got %+v", st)
	}
}
