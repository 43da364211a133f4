package homegroups

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/domain"
)

// GroupRepository exposes persistence operations for home groups.
type GroupRepository interface {
	Create(ctx context.Context, group *domain.HomeGroup) (*domain.HomeGroup, error)
	Update(ctx context.Context, group *domain.HomeGroup) (*domain.HomeGroup, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.HomeGroup, error)
	ListByChurch(ctx context.Context, churchID uuid.UUID, req domain.PageRequest) (domain.Page[*domain.HomeGroup], error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotFoundError is returned when a home group cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func cloneGroup(g *domain.HomeGroup) *domain.HomeGroup {
	if g == nil {
		return nil
	}
	cloned := *g
	if g.Leader != nil {
		v := *g.Leader
		cloned.Leader = &v
	}
	if g.State != nil {
		v := *g.State
		cloned.State = &v
	}
	if g.City != nil {
		v := *g.City
		cloned.City = &v
	}
	if g.Latitude != nil {
		v := *g.Latitude
		cloned.Latitude = &v
	}
	if g.Longitude != nil {
		v := *g.Longitude
		cloned.Longitude = &v
	}
	return &cloned
}
