package offerings

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/domain"
)

// OfferingRepository exposes persistence operations for offerings.
type OfferingRepository interface {
	Create(ctx context.Context, offering *domain.Offering) (*domain.Offering, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Offering, error)
	ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*domain.Offering, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TypeRepository stores the offering type catalog.
type TypeRepository interface {
	List(ctx context.Context) ([]*domain.OfferingType, error)
	Get(ctx context.Context, id int64) (*domain.OfferingType, error)
	Save(ctx context.Context, t *domain.OfferingType) (*domain.OfferingType, error)
}

// NotFoundError is returned when an offering or type cannot be located.
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

func cloneOffering(o *domain.Offering) *domain.Offering {
	if o == nil {
		return nil
	}
	cloned := *o
	if o.Type != nil {
		v := *o.Type
		cloned.Type = &v
	}
	if o.Person != nil {
		v := *o.Person
		cloned.Person = &v
	}
	return &cloned
}
