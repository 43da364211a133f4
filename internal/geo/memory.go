package geo

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/viddefe/go-viddefe/domain"
)

type memoryRepository struct {
	mu     sync.RWMutex
	states map[int64]*domain.State
	cities map[int64]*domain.City
}

// NewMemoryRepository constructs an in-memory catalog.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		states: make(map[int64]*domain.State),
		cities: make(map[int64]*domain.City),
	}
}

func (m *memoryRepository) ListStates(_ context.Context) ([]*domain.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.State, 0, len(m.states))
	for _, s := range m.states {
		out = append(out, cloneState(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryRepository) GetState(_ context.Context, id int64) (*domain.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.states[id]
	if !ok {
		return nil, &NotFoundError{Resource: "state", Key: strconv.FormatInt(id, 10)}
	}
	return cloneState(s), nil
}

func (m *memoryRepository) ListCities(_ context.Context, stateID int64) ([]*domain.City, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.City, 0)
	for _, c := range m.cities {
		if c.StateID == stateID {
			out = append(out, cloneCity(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryRepository) GetCity(_ context.Context, id int64) (*domain.City, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.cities[id]
	if !ok {
		return nil, &NotFoundError{Resource: "city", Key: strconv.FormatInt(id, 10)}
	}
	return cloneCity(c), nil
}

func (m *memoryRepository) SaveState(_ context.Context, state *domain.State) (*domain.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := cloneState(state)
	m.states[cloned.ID] = cloned
	return cloneState(cloned), nil
}

func (m *memoryRepository) SaveCity(_ context.Context, city *domain.City) (*domain.City, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := cloneCity(city)
	m.cities[cloned.ID] = cloned
	return cloneCity(cloned), nil
}
