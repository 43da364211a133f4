package geo

import (
	"context"
	"fmt"

	"github.com/viddefe/go-viddefe/domain"
)

// Repository exposes the geographic catalog.
type Repository interface {
	ListStates(ctx context.Context) ([]*domain.State, error)
	GetState(ctx context.Context, id int64) (*domain.State, error)
	ListCities(ctx context.Context, stateID int64) ([]*domain.City, error)
	GetCity(ctx context.Context, id int64) (*domain.City, error)
	SaveState(ctx context.Context, state *domain.State) (*domain.State, error)
	SaveCity(ctx context.Context, city *domain.City) (*domain.City, error)
}

// NotFoundError is returned when a catalog entry cannot be located.
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

func cloneState(s *domain.State) *domain.State {
	if s == nil {
		return nil
	}
	cloned := *s
	return &cloned
}

func cloneCity(c *domain.City) *domain.City {
	if c == nil {
		return nil
	}
	cloned := *c
	return &cloned
}
