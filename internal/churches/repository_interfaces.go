package churches

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/domain"
)

// ChurchRepository exposes persistence operations for churches.
type ChurchRepository interface {
	Create(ctx context.Context, church *domain.Church) (*domain.Church, error)
	Update(ctx context.Context, church *domain.Church) (*domain.Church, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Church, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Church, error)
	List(ctx context.Context, req domain.PageRequest) (domain.Page[*domain.Church], error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotFoundError is returned when a church cannot be located.
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

// sortColumns maps accepted sort fields to table columns.
var sortColumns = map[string]string{
	"name":           "name",
	"slug":           "slug",
	"createdAt":      "created_at",
	"foundationDate": "foundation_date",
}
