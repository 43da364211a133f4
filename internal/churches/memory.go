package churches

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/domain"
)

type memoryRepository struct {
	mu       sync.RWMutex
	byID     map[uuid.UUID]*domain.Church
	bySlug   map[string]uuid.UUID
	sequence []uuid.UUID
}

// NewMemoryRepository constructs an in-memory church repository.
func NewMemoryRepository() ChurchRepository {
	return &memoryRepository{
		byID:   make(map[uuid.UUID]*domain.Church),
		bySlug: make(map[string]uuid.UUID),
	}
}

func (m *memoryRepository) Create(_ context.Context, church *domain.Church) (*domain.Church, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := cloneChurch(church)
	m.byID[cloned.ID] = cloned
	m.bySlug[cloned.Slug] = cloned.ID
	m.sequence = append(m.sequence, cloned.ID)
	return cloneChurch(cloned), nil
}

func (m *memoryRepository) Update(_ context.Context, church *domain.Church) (*domain.Church, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[church.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "church", Key: church.ID.String()}
	}
	if existing.Slug != church.Slug {
		delete(m.bySlug, existing.Slug)
	}
	cloned := cloneChurch(church)
	m.byID[cloned.ID] = cloned
	m.bySlug[cloned.Slug] = cloned.ID
	return cloneChurch(cloned), nil
}

func (m *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Church, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	church, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "church", Key: id.String()}
	}
	return cloneChurch(church), nil
}

func (m *memoryRepository) GetBySlug(_ context.Context, slug string) (*domain.Church, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.bySlug[slug]
	if !ok {
		return nil, &NotFoundError{Resource: "church", Key: slug}
	}
	return cloneChurch(m.byID[id]), nil
}

func (m *memoryRepository) List(_ context.Context, req domain.PageRequest) (domain.Page[*domain.Church], error) {
	m.mu.RLock()
	all := make([]*domain.Church, 0, len(m.sequence))
	for _, id := range m.sequence {
		if church, ok := m.byID[id]; ok {
			all = append(all, cloneChurch(church))
		}
	}
	m.mu.RUnlock()

	sortChurches(all, req)
	return domain.Paginate(all, req), nil
}

func (m *memoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	church, ok := m.byID[id]
	if !ok {
		return &NotFoundError{Resource: "church", Key: id.String()}
	}
	delete(m.byID, id)
	delete(m.bySlug, church.Slug)
	for i, existing := range m.sequence {
		if existing == id {
			m.sequence = append(m.sequence[:i], m.sequence[i+1:]...)
			break
		}
	}
	return nil
}

func sortChurches(items []*domain.Church, req domain.PageRequest) {
	if req.SortDir == domain.SortNone {
		return
	}
	var less func(a, b *domain.Church) bool
	switch req.SortField {
	case "name":
		less = func(a, b *domain.Church) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case "slug":
		less = func(a, b *domain.Church) bool { return a.Slug < b.Slug }
	case "createdAt":
		less = func(a, b *domain.Church) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default:
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		if req.SortDir == domain.SortDesc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}
