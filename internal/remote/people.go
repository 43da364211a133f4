package remote

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/people"
)

// PersonRepository reads and writes people through the backend API.
type PersonRepository struct {
	client *Client
}

var _ people.PersonRepository = (*PersonRepository)(nil)

func NewPersonRepository(client *Client) *PersonRepository {
	return &PersonRepository{client: client}
}

func (r *PersonRepository) Create(ctx context.Context, person *domain.Person) (*domain.Person, error) {
	created, err := send[domain.Person](ctx, r.client, http.MethodPost, "people", nil, person)
	if err != nil {
		return nil, personError(err, person.Email)
	}
	return &created, nil
}

func (r *PersonRepository) Update(ctx context.Context, person *domain.Person) (*domain.Person, error) {
	updated, err := send[domain.Person](ctx, r.client, http.MethodPut, "person", idParam(person.ID), person)
	if err != nil {
		return nil, personError(err, person.ID.String())
	}
	return &updated, nil
}

func (r *PersonRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Person, error) {
	person, err := get[domain.Person](ctx, r.client, "person", idParam(id), nil)
	if err != nil {
		return nil, personError(err, id.String())
	}
	return &person, nil
}

func (r *PersonRepository) List(ctx context.Context, filter people.Filter, req domain.PageRequest) (domain.Page[*domain.Person], error) {
	query := pageQuery(req)
	if filter.ChurchID != nil {
		query["churchId"] = filter.ChurchID.String()
	}
	if filter.Role != "" {
		query["role"] = string(filter.Role)
	}
	page, err := get[domain.Page[*domain.Person]](ctx, r.client, "people", nil, query)
	if err != nil {
		return domain.Page[*domain.Person]{}, err
	}
	return normalizePage(page), nil
}

func (r *PersonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := del(ctx, r.client, "person", idParam(id)); err != nil {
		return personError(err, id.String())
	}
	return nil
}

func personError(err error, key string) error {
	if IsNotFound(err) {
		return &people.NotFoundError{Resource: "person", Key: key}
	}
	return err
}
