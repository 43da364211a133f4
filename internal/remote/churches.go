package remote

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/churches"
)

// ChurchRepository reads and writes churches through the backend API.
type ChurchRepository struct {
	client *Client
}

var _ churches.ChurchRepository = (*ChurchRepository)(nil)

// NewChurchRepository wraps client as a churches.ChurchRepository.
func NewChurchRepository(client *Client) *ChurchRepository {
	return &ChurchRepository{client: client}
}

func (r *ChurchRepository) Create(ctx context.Context, church *domain.Church) (*domain.Church, error) {
	created, err := send[domain.Church](ctx, r.client, http.MethodPost, "churches", nil, church)
	if err != nil {
		return nil, churchError(err, church.Slug)
	}
	return &created, nil
}

func (r *ChurchRepository) Update(ctx context.Context, church *domain.Church) (*domain.Church, error) {
	updated, err := send[domain.Church](ctx, r.client, http.MethodPut, "church", idParam(church.ID), church)
	if err != nil {
		return nil, churchError(err, church.ID.String())
	}
	return &updated, nil
}

func (r *ChurchRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Church, error) {
	church, err := get[domain.Church](ctx, r.client, "church", idParam(id), nil)
	if err != nil {
		return nil, churchError(err, id.String())
	}
	return &church, nil
}

func (r *ChurchRepository) GetBySlug(ctx context.Context, slug string) (*domain.Church, error) {
	page, err := get[domain.Page[*domain.Church]](ctx, r.client, "churches", nil, map[string]string{"slug": slug})
	if err != nil {
		return nil, churchError(err, slug)
	}
	for _, church := range page.Content {
		if church != nil && church.Slug == slug {
			return church, nil
		}
	}
	return nil, &churches.NotFoundError{Resource: "church", Key: slug}
}

func (r *ChurchRepository) List(ctx context.Context, req domain.PageRequest) (domain.Page[*domain.Church], error) {
	page, err := get[domain.Page[*domain.Church]](ctx, r.client, "churches", nil, pageQuery(req))
	if err != nil {
		return domain.Page[*domain.Church]{}, err
	}
	return normalizePage(page), nil
}

func (r *ChurchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := del(ctx, r.client, "church", idParam(id)); err != nil {
		return churchError(err, id.String())
	}
	return nil
}

func churchError(err error, key string) error {
	if IsNotFound(err) {
		return &churches.NotFoundError{Resource: "church", Key: key}
	}
	return err
}

func idParam(id any) map[string]any {
	if u, ok := id.(uuid.UUID); ok {
		return map[string]any{"id": u.String()}
	}
	return map[string]any{"id": id}
}

func normalizePage[T any](page domain.Page[T]) domain.Page[T] {
	if page.Content == nil {
		page.Content = []T{}
	}
	return page
}
