package paging

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/viddefe/go-viddefe/domain"
)

type requestLog struct {
	requests []domain.PageRequest
}

func (r *requestLog) fetch(req domain.PageRequest) {
	r.requests = append(r.requests, req)
}

func (r *requestLog) last() domain.PageRequest {
	return r.requests[len(r.requests)-1]
}

func TestManualIssuesRequestPerChange(t *testing.T) {
	log := &requestLog{}
	m := NewManual[string](10, log.fetch)

	m.Load()
	m.Update(domain.Page[string]{Content: []string{"a"}, TotalPages: 4, TotalElements: 35, Number: 0, Size: 10})

	m.SetPage(2)
	m.SetPage(2)
	m.SetSize(20)

	if len(log.requests) != 3 {
		t.Fatalf("expected 3 requests, got %d: %+v", len(log.requests), log.requests)
	}
	if got := log.requests[1]; got.Page != 2 || got.Size != 10 {
		t.Fatalf("unexpected page request %+v", got)
	}
	if got := log.last(); got.Page != 0 || got.Size != 20 {
		t.Fatalf("expected size change to reset page, got %+v", got)
	}
}

func TestManualClampsWhenTotalsShrink(t *testing.T) {
	log := &requestLog{}
	m := NewManual[string](10, log.fetch)
	m.Update(domain.Page[string]{TotalPages: 6, TotalElements: 60, Number: 0})
	m.SetPage(5)

	applied := m.Update(domain.Page[string]{TotalPages: 3, TotalElements: 25, Number: 5})
	if !applied {
		t.Fatalf("expected response applied")
	}
	if m.Page() != 2 {
		t.Fatalf("expected page clamped to 2, got %d", m.Page())
	}
	if got := log.last(); got.Page != 2 {
		t.Fatalf("expected clamped page requested, got %+v", got)
	}

	m.Update(domain.Page[string]{TotalPages: 0, TotalElements: 0, Number: 2})
	if m.Page() != 0 {
		t.Fatalf("expected page 0 when empty, got %d", m.Page())
	}
}

func TestManualIgnoresResponseForOtherPage(t *testing.T) {
	m := NewManual[string](10, nil)
	m.Update(domain.Page[string]{TotalPages: 5, Number: 0, Content: []string{"first"}})
	m.SetPage(3)

	if m.Update(domain.Page[string]{TotalPages: 5, Number: 0, Content: []string{"late"}}) {
		t.Fatalf("expected late response ignored")
	}
	if rows := m.Rows(); len(rows) != 1 || rows[0] != "first" {
		t.Fatalf("expected rows untouched, got %v", rows)
	}
}

func TestManualReplyAcceptsServerClampedPage(t *testing.T) {
	log := &requestLog{}
	m := NewManual[string](10, log.fetch)
	m.Update(domain.Page[string]{TotalPages: 6, TotalElements: 60, Number: 0})
	m.SetPage(5)
	req := m.Request()
	sent := len(log.requests)

	if !m.Reply(req, domain.Page[string]{Content: []string{"last"}, TotalPages: 3, TotalElements: 25, Number: 2}) {
		t.Fatalf("expected clamped reply applied")
	}
	if m.Page() != 2 {
		t.Fatalf("expected server page adopted, got %d", m.Page())
	}
	if rows := m.Rows(); len(rows) != 1 || rows[0] != "last" {
		t.Fatalf("expected rows from reply, got %v", rows)
	}
	if len(log.requests) != sent {
		t.Fatalf("expected no refetch for an in range page, got %+v", log.requests[sent:])
	}
}

func TestManualReplyIgnoresSupersededRequest(t *testing.T) {
	m := NewManual[string](10, nil)
	m.Update(domain.Page[string]{TotalPages: 5, Number: 0, Content: []string{"first"}})
	old := m.Request()
	m.ApplySort(Sort{Direction: domain.SortAsc}, "name")

	if m.Reply(old, domain.Page[string]{TotalPages: 5, Number: 0, Content: []string{"unsorted"}}) {
		t.Fatalf("expected reply for the old sort ignored")
	}
	if rows := m.Rows(); len(rows) != 1 || rows[0] != "first" {
		t.Fatalf("expected rows untouched, got %v", rows)
	}
	if !m.Reply(m.Request(), domain.Page[string]{TotalPages: 5, Number: 0, Content: []string{"sorted"}}) {
		t.Fatalf("expected reply for the current request applied")
	}
}

func TestManualClampProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 500; i++ {
		m := NewManual[int](10, nil)
		m.Update(domain.Page[int]{TotalPages: 50, Number: 0})
		m.SetPage(rng.Intn(60) - 5)

		total := rng.Intn(8)
		m.Update(domain.Page[int]{TotalPages: total, Number: m.Page()})

		page := m.Page()
		if total == 0 && page != 0 {
			t.Fatalf("expected page 0 for empty totals, got %d", page)
		}
		if total > 0 && (page < 0 || page >= total) {
			t.Fatalf("page %d outside [0,%d)", page, total)
		}
	}
}

func TestAutoPaginatesAndSorts(t *testing.T) {
	a := NewAuto[int](2, map[string]func(x, y int) int{
		"value": func(x, y int) int { return x - y },
	})
	a.SetItems([]int{3, 1, 5, 4, 2})

	if a.TotalPages() != 3 || a.TotalElements() != 5 {
		t.Fatalf("unexpected totals %d/%d", a.TotalPages(), a.TotalElements())
	}
	a.SetPage(9)
	if a.Page() != 2 {
		t.Fatalf("expected clamp to last page, got %d", a.Page())
	}
	if rows := a.Rows(); len(rows) != 1 || rows[0] != 2 {
		t.Fatalf("unexpected last page %v", rows)
	}

	a.ApplySort(Sort{Column: "value", Direction: domain.SortDesc}, "value")
	if a.Page() != 0 {
		t.Fatalf("expected sort to reset page")
	}
	if rows := a.Rows(); rows[0] != 5 || rows[1] != 4 {
		t.Fatalf("expected descending rows, got %v", rows)
	}

	a.ApplySort(Sort{}, "")
	if rows := a.Rows(); rows[0] != 3 || rows[1] != 1 {
		t.Fatalf("expected source order without sort, got %v", rows)
	}

	a.SetItems([]int{1})
	a.SetPage(1)
	if a.Page() != 0 {
		t.Fatalf("expected single page, got %d", a.Page())
	}
}

func TestAutoKeepsSortAcrossReloads(t *testing.T) {
	a := NewAuto(2, map[string]func(x, y string) int{
		"name": func(x, y string) int { return strings.Compare(x, y) },
	})
	a.SetItems([]string{"c", "a", "b"})
	a.ApplySort(Sort{Column: "name", Direction: domain.SortAsc}, "name")
	a.SetItems([]string{"d", "b", "a"})

	if got := a.Rows(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("expected sorted first page after reload, got %v", got)
	}
}
