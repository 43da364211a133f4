package offerings

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/domain"
)

type memoryOfferingRepository struct {
	mu        sync.RWMutex
	offerings map[uuid.UUID]*domain.Offering
}

// NewMemoryOfferingRepository constructs an in-memory offering repository.
func NewMemoryOfferingRepository() OfferingRepository {
	return &memoryOfferingRepository{offerings: make(map[uuid.UUID]*domain.Offering)}
}

func (m *memoryOfferingRepository) Create(_ context.Context, offering *domain.Offering) (*domain.Offering, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cloned := cloneOffering(offering)
	m.offerings[cloned.ID] = cloned
	return cloneOffering(cloned), nil
}

func (m *memoryOfferingRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Offering, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	offering, ok := m.offerings[id]
	if !ok {
		return nil, &NotFoundError{Resource: "offering", Key: id.String()}
	}
	return cloneOffering(offering), nil
}

func (m *memoryOfferingRepository) ListByMeeting(_ context.Context, meetingID uuid.UUID) ([]*domain.Offering, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Offering, 0)
	for _, o := range m.offerings {
		if o.MeetingID == meetingID {
			out = append(out, cloneOffering(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memoryOfferingRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.offerings[id]; !ok {
		return &NotFoundError{Resource: "offering", Key: id.String()}
	}
	delete(m.offerings, id)
	return nil
}

type memoryTypeRepository struct {
	mu    sync.RWMutex
	types map[int64]*domain.OfferingType
}

// NewMemoryTypeRepository constructs an in-memory offering type catalog.
func NewMemoryTypeRepository() TypeRepository {
	return &memoryTypeRepository{types: make(map[int64]*domain.OfferingType)}
}

func (m *memoryTypeRepository) List(_ context.Context) ([]*domain.OfferingType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.OfferingType, 0, len(m.types))
	for _, t := range m.types {
		v := *t
		out = append(out, &v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryTypeRepository) Get(_ context.Context, id int64) (*domain.OfferingType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.types[id]
	if !ok {
		return nil, &NotFoundError{Resource: "offering type", Key: strconv.FormatInt(id, 10)}
	}
	v := *t
	return &v, nil
}

func (m *memoryTypeRepository) Save(_ context.Context, t *domain.OfferingType) (*domain.OfferingType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := *t
	m.types[v.ID] = &v
	out := v
	return &out, nil
}
