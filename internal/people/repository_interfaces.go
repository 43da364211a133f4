package people

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/domain"
)

// Filter narrows person listings.
type Filter struct {
	ChurchID *uuid.UUID
	Role     domain.PersonRole
}

// PersonRepository exposes persistence operations for people.
type PersonRepository interface {
	Create(ctx context.Context, person *domain.Person) (*domain.Person, error)
	Update(ctx context.Context, person *domain.Person) (*domain.Person, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Person, error)
	List(ctx context.Context, filter Filter, req domain.PageRequest) (domain.Page[*domain.Person], error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotFoundError is returned when a person cannot be located.
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

var sortColumns = map[string]string{
	"firstName": "first_name",
	"lastName":  "last_name",
	"email":     "email",
	"createdAt": "created_at",
}

func (f Filter) matches(p *domain.Person) bool {
	if f.ChurchID != nil && (p.ChurchID == nil || *p.ChurchID != *f.ChurchID) {
		return false
	}
	if f.Role != "" && p.Role != f.Role {
		return false
	}
	return true
}

func clonePerson(p *domain.Person) *domain.Person {
	if p == nil {
		return nil
	}
	cloned := *p
	if p.BirthDate != nil {
		v := *p.BirthDate
		cloned.BirthDate = &v
	}
	if p.ChurchID != nil {
		v := *p.ChurchID
		cloned.ChurchID = &v
	}
	return &cloned
}
