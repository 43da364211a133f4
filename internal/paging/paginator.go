package paging

import (
	"sync"

	"github.com/viddefe/go-viddefe/domain"
)

// DefaultPageSize is used when a paginator is built without a size.
const DefaultPageSize = 10

// Paginator is the page state shared by manual and automatic pagination.
// Pages are zero based.
type Paginator interface {
	Page() int
	Size() int
	TotalPages() int
	TotalElements() int64
	SetPage(page int)
	SetSize(size int)
}

// Source is a paginator that also holds the rows of the current page and
// accepts sort changes.
type Source[T any] interface {
	Paginator
	Rows() []T
	ApplySort(sort Sort, field string)
}

// FetchFunc requests a page from the server.
type FetchFunc func(req domain.PageRequest)

// Manual paginates on the server. Every change to page, size or sort issues a
// request through the fetch callback; Update applies the response.
type Manual[T any] struct {
	fetch FetchFunc

	mu         sync.Mutex
	page       int
	size       int
	sortField  string
	sortDir    domain.SortDirection
	totalPages int
	total      int64
	rows       []T
	loaded     bool
}

// NewManual builds a server side paginator.
func NewManual[T any](size int, fetch FetchFunc) *Manual[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	if fetch == nil {
		fetch = func(domain.PageRequest) {}
	}
	return &Manual[T]{size: size, fetch: fetch}
}

// Request returns the current request.
func (m *Manual[T]) Request() domain.PageRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestLocked()
}

// Load issues a request for the current state.
func (m *Manual[T]) Load() {
	m.fetch(m.Request())
}

func (m *Manual[T]) Page() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.page
}

func (m *Manual[T]) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size
}

func (m *Manual[T]) TotalPages() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalPages
}

func (m *Manual[T]) TotalElements() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}

func (m *Manual[T]) Rows() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]T, len(m.rows))
	copy(out, m.rows)
	return out
}

// SetPage moves to page. Once totals are known the page is clamped into range.
func (m *Manual[T]) SetPage(page int) {
	m.mu.Lock()
	page = clampPage(page, m.totalPages, m.loaded)
	if page == m.page {
		m.mu.Unlock()
		return
	}
	m.page = page
	req := m.requestLocked()
	m.mu.Unlock()

	m.fetch(req)
}

// SetSize changes the page size and returns to the first page.
func (m *Manual[T]) SetSize(size int) {
	if size <= 0 {
		return
	}
	m.mu.Lock()
	if size == m.size {
		m.mu.Unlock()
		return
	}
	m.size = size
	m.page = 0
	req := m.requestLocked()
	m.mu.Unlock()

	m.fetch(req)
}

// ApplySort changes the server sort and returns to the first page.
func (m *Manual[T]) ApplySort(sort Sort, field string) {
	m.mu.Lock()
	dir := sort.Direction
	if field == "" {
		dir = domain.SortNone
	}
	m.sortField = field
	m.sortDir = dir
	if dir == domain.SortNone {
		m.sortField = ""
	}
	m.page = 0
	req := m.requestLocked()
	m.mu.Unlock()

	m.fetch(req)
}

// Update applies a server response that is matched to the current state by
// its page number alone. A response numbered for another page is ignored, so
// a server that answers an out of range request with a different page must go
// through Reply instead. When the totals shrank below the current page, the
// page is clamped and the clamped page is requested. Update reports whether
// the response was applied.
func (m *Manual[T]) Update(p domain.Page[T]) bool {
	m.mu.Lock()
	if p.Number != m.page {
		m.mu.Unlock()
		return false
	}
	return m.applyLocked(p)
}

// Reply applies the response to req. It is ignored unless req is still the
// current request. The server may answer with another page than req.Page,
// for instance after clamping; that page becomes current when it lies within
// the reported totals.
func (m *Manual[T]) Reply(req domain.PageRequest, p domain.Page[T]) bool {
	m.mu.Lock()
	if req != m.requestLocked() {
		m.mu.Unlock()
		return false
	}
	if p.Number != m.page && p.Number >= 0 && p.Number < p.TotalPages {
		m.page = p.Number
	}
	return m.applyLocked(p)
}

// applyLocked commits p and unlocks m.mu.
func (m *Manual[T]) applyLocked(p domain.Page[T]) bool {
	m.loaded = true
	m.totalPages = p.TotalPages
	m.total = p.TotalElements
	m.rows = append([]T(nil), p.Content...)

	clamped := clampPage(m.page, m.totalPages, true)
	if clamped == m.page {
		m.mu.Unlock()
		return true
	}
	m.page = clamped
	m.rows = nil
	req := m.requestLocked()
	m.mu.Unlock()

	m.fetch(req)
	return true
}

func (m *Manual[T]) requestLocked() domain.PageRequest {
	return domain.PageRequest{Page: m.page, Size: m.size, SortField: m.sortField, SortDir: m.sortDir}
}

// Auto paginates a fully fetched collection in memory.
type Auto[T any] struct {
	compare map[string]func(a, b T) int

	mu     sync.Mutex
	items  []T
	sorted []T
	sort   Sort
	field  string
	page   int
	size   int
}

// NewAuto builds a client side paginator. compare maps sort fields to
// comparison functions; fields without one keep the source order.
func NewAuto[T any](size int, compare map[string]func(a, b T) int) *Auto[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	return &Auto[T]{size: size, compare: compare}
}

// SetItems replaces the collection and clamps the current page.
func (a *Auto[T]) SetItems(items []T) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.items = append([]T(nil), items...)
	a.sortLocked()
	a.page = clampPage(a.page, a.totalPagesLocked(), true)
}

func (a *Auto[T]) Page() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.page
}

func (a *Auto[T]) Size() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.size
}

func (a *Auto[T]) TotalPages() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.totalPagesLocked()
}

func (a *Auto[T]) TotalElements() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return int64(len(a.items))
}

func (a *Auto[T]) SetPage(page int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.page = clampPage(page, a.totalPagesLocked(), true)
}

func (a *Auto[T]) SetSize(size int) {
	if size <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.size = size
	a.page = 0
}

// ApplySort orders the collection by field and returns to the first page.
func (a *Auto[T]) ApplySort(sort Sort, field string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.page = 0
	a.sort, a.field = sort, field
	a.sortLocked()
}

// sortLocked rebuilds the ordered view; the sort survives item reloads.
func (a *Auto[T]) sortLocked() {
	cmp, ok := a.compare[a.field]
	if !ok || a.sort.Direction == domain.SortNone {
		a.sorted = a.items
		return
	}
	desc := a.sort.Direction == domain.SortDesc
	sorted := append([]T(nil), a.items...)
	stableSort(sorted, func(x, y T) int {
		if desc {
			return cmp(y, x)
		}
		return cmp(x, y)
	})
	a.sorted = sorted
}

// Rows returns the window of the current page.
func (a *Auto[T]) Rows() []T {
	a.mu.Lock()
	defer a.mu.Unlock()
	start := a.page * a.size
	if start >= len(a.sorted) {
		return []T{}
	}
	end := min(start+a.size, len(a.sorted))
	return append([]T(nil), a.sorted[start:end]...)
}

func (a *Auto[T]) totalPagesLocked() int {
	if a.size <= 0 {
		return 0
	}
	return (len(a.items) + a.size - 1) / a.size
}

// clampPage keeps page inside [0, totalPages). Unknown totals only floor the page.
func clampPage(page, totalPages int, known bool) int {
	if page < 0 {
		page = 0
	}
	if !known {
		return page
	}
	if totalPages <= 0 {
		return 0
	}
	if page >= totalPages {
		return totalPages - 1
	}
	return page
}
