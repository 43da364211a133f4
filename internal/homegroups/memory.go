package homegroups

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/domain"
)

type memoryRepository struct {
	mu     sync.RWMutex
	groups map[uuid.UUID]*domain.HomeGroup
}

// NewMemoryRepository constructs an in-memory home group repository.
func NewMemoryRepository() GroupRepository {
	return &memoryRepository{groups: make(map[uuid.UUID]*domain.HomeGroup)}
}

func (m *memoryRepository) Create(_ context.Context, group *domain.HomeGroup) (*domain.HomeGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cloned := cloneGroup(group)
	m.groups[cloned.ID] = cloned
	return cloneGroup(cloned), nil
}

func (m *memoryRepository) Update(_ context.Context, group *domain.HomeGroup) (*domain.HomeGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.groups[group.ID]; !ok {
		return nil, &NotFoundError{Resource: "home group", Key: group.ID.String()}
	}
	cloned := cloneGroup(group)
	m.groups[cloned.ID] = cloned
	return cloneGroup(cloned), nil
}

func (m *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.HomeGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	group, ok := m.groups[id]
	if !ok {
		return nil, &NotFoundError{Resource: "home group", Key: id.String()}
	}
	return cloneGroup(group), nil
}

func (m *memoryRepository) ListByChurch(_ context.Context, churchID uuid.UUID, req domain.PageRequest) (domain.Page[*domain.HomeGroup], error) {
	m.mu.RLock()
	out := make([]*domain.HomeGroup, 0)
	for _, g := range m.groups {
		if g.ChurchID == churchID {
			out = append(out, cloneGroup(g))
		}
	}
	m.mu.RUnlock()

	desc := req.SortDir == domain.SortDesc && req.SortField == "name"
	sort.SliceStable(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if desc {
			return b < a
		}
		return a < b
	})
	return domain.Paginate(out, req), nil
}

func (m *memoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.groups[id]; !ok {
		return &NotFoundError{Resource: "home group", Key: id.String()}
	}
	delete(m.groups, id)
	return nil
}
