package people

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
	byID     map[uuid.UUID]*domain.Person
	sequence []uuid.UUID
}

// NewMemoryRepository constructs an in-memory person repository.
func NewMemoryRepository() PersonRepository {
	return &memoryRepository{byID: make(map[uuid.UUID]*domain.Person)}
}

func (m *memoryRepository) Create(_ context.Context, person *domain.Person) (*domain.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := clonePerson(person)
	if _, exists := m.byID[cloned.ID]; !exists {
		m.sequence = append(m.sequence, cloned.ID)
	}
	m.byID[cloned.ID] = cloned
	return clonePerson(cloned), nil
}

func (m *memoryRepository) Update(_ context.Context, person *domain.Person) (*domain.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[person.ID]; !ok {
		return nil, &NotFoundError{Resource: "person", Key: person.ID.String()}
	}
	cloned := clonePerson(person)
	m.byID[cloned.ID] = cloned
	return clonePerson(cloned), nil
}

func (m *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	person, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "person", Key: id.String()}
	}
	return clonePerson(person), nil
}

func (m *memoryRepository) List(_ context.Context, filter Filter, req domain.PageRequest) (domain.Page[*domain.Person], error) {
	m.mu.RLock()
	all := make([]*domain.Person, 0, len(m.sequence))
	for _, id := range m.sequence {
		if person, ok := m.byID[id]; ok && filter.matches(person) {
			all = append(all, clonePerson(person))
		}
	}
	m.mu.RUnlock()

	if key := sortKey(req.SortField); key != nil && req.SortDir != domain.SortNone {
		sort.SliceStable(all, func(i, j int) bool {
			if req.SortDir == domain.SortDesc {
				return key(all[j]) < key(all[i])
			}
			return key(all[i]) < key(all[j])
		})
	}
	return domain.Paginate(all, req), nil
}

func (m *memoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[id]; !ok {
		return &NotFoundError{Resource: "person", Key: id.String()}
	}
	delete(m.byID, id)
	for i, existing := range m.sequence {
		if existing == id {
			m.sequence = append(m.sequence[:i], m.sequence[i+1:]...)
			break
		}
	}
	return nil
}

func sortKey(field string) func(*domain.Person) string {
	switch field {
	case "firstName":
		return func(p *domain.Person) string { return strings.ToLower(p.FirstName) }
	case "lastName":
		return func(p *domain.Person) string { return strings.ToLower(p.LastName) }
	case "email":
		return func(p *domain.Person) string { return p.Email }
	case "createdAt":
		return func(p *domain.Person) string { return p.CreatedAt.UTC().Format("20060102150405.000000000") }
	}
	return nil
}
