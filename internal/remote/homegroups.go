package remote

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/homegroups"
)

// GroupRepository reads and writes home groups through the backend API.
type GroupRepository struct {
	client *Client
}

var _ homegroups.GroupRepository = (*GroupRepository)(nil)

func NewGroupRepository(client *Client) *GroupRepository {
	return &GroupRepository{client: client}
}

func (r *GroupRepository) Create(ctx context.Context, group *domain.HomeGroup) (*domain.HomeGroup, error) {
	created, err := send[domain.HomeGroup](ctx, r.client, http.MethodPost, "church_groups", idParam(group.ChurchID), group)
	if err != nil {
		return nil, groupError(err, group.Name)
	}
	return &created, nil
}

func (r *GroupRepository) Update(ctx context.Context, group *domain.HomeGroup) (*domain.HomeGroup, error) {
	updated, err := send[domain.HomeGroup](ctx, r.client, http.MethodPut, "group", idParam(group.ID), group)
	if err != nil {
		return nil, groupError(err, group.ID.String())
	}
	return &updated, nil
}

func (r *GroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.HomeGroup, error) {
	group, err := get[domain.HomeGroup](ctx, r.client, "group", idParam(id), nil)
	if err != nil {
		return nil, groupError(err, id.String())
	}
	return &group, nil
}

func (r *GroupRepository) ListByChurch(ctx context.Context, churchID uuid.UUID, req domain.PageRequest) (domain.Page[*domain.HomeGroup], error) {
	page, err := get[domain.Page[*domain.HomeGroup]](ctx, r.client, "church_groups", idParam(churchID), pageQuery(req))
	if err != nil {
		return domain.Page[*domain.HomeGroup]{}, err
	}
	return normalizePage(page), nil
}

func (r *GroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := del(ctx, r.client, "group", idParam(id)); err != nil {
		return groupError(err, id.String())
	}
	return nil
}

func groupError(err error, key string) error {
	if IsNotFound(err) {
		return &homegroups.NotFoundError{Resource: "home group", Key: key}
	}
	return err
}
