package homegroups

import (
	"context"
	"fmt"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/viddefe/go-viddefe/domain"
)

// NewGroupRepository creates a repository for home group records.
func NewGroupRepository(db *bun.DB) repository.Repository[*domain.HomeGroup] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*domain.HomeGroup]{
		NewRecord: func() *domain.HomeGroup { return &domain.HomeGroup{} },
		GetID: func(g *domain.HomeGroup) uuid.UUID {
			return g.ID
		},
		SetID: func(g *domain.HomeGroup, id uuid.UUID) {
			g.ID = id
		},
		GetIdentifier: func() string {
			return "name"
		},
		GetIdentifierValue: func(g *domain.HomeGroup) string {
			return g.Name
		},
	})
}

// BunGroupRepository implements GroupRepository with optional caching.
type BunGroupRepository struct {
	repo repository.Repository[*domain.HomeGroup]
}

// NewBunGroupRepository creates a home group repository without caching.
func NewBunGroupRepository(db *bun.DB) *BunGroupRepository {
	return NewBunGroupRepositoryWithCache(db, nil, nil)
}

// NewBunGroupRepositoryWithCache creates a home group repository with caching support.
func NewBunGroupRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunGroupRepository {
	base := NewGroupRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunGroupRepository{repo: base}
}

func (r *BunGroupRepository) Create(ctx context.Context, group *domain.HomeGroup) (*domain.HomeGroup, error) {
	return r.repo.Create(ctx, group)
}

func (r *BunGroupRepository) Update(ctx context.Context, group *domain.HomeGroup) (*domain.HomeGroup, error) {
	updated, err := r.repo.Update(ctx, group,
		repository.UpdateByID(group.ID.String()),
		repository.UpdateColumns(
			"name",
			"description",
			"leader",
			"state",
			"city",
			"latitude",
			"longitude",
			"updated_at",
		),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "home group", group.ID.String())
	}
	return updated, nil
}

func (r *BunGroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.HomeGroup, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "home group", id.String())
	}
	return record, nil
}

func (r *BunGroupRepository) ListByChurch(ctx context.Context, churchID uuid.UUID, req domain.PageRequest) (domain.Page[*domain.HomeGroup], error) {
	query := repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Where("?TableAlias.church_id = ?", churchID)
		if req.SortField == "name" && req.SortDir == domain.SortDesc {
			return q.OrderExpr("?TableAlias.name DESC")
		}
		return q.OrderExpr("?TableAlias.name ASC")
	})

	var page domain.Page[*domain.HomeGroup]
	if req.Size > 0 {
		records, total, err := r.repo.List(ctx, query, repository.SelectPaginate(req.Size, req.Offset()))
		if err != nil {
			return page, fmt.Errorf("home group repository error: %w", err)
		}
		return domain.NewPage(records, int64(total), req), nil
	}
	records, total, err := r.repo.List(ctx, query)
	if err != nil {
		return page, fmt.Errorf("home group repository error: %w", err)
	}
	return domain.NewPage(records, int64(total), req), nil
}

func (r *BunGroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return r.repo.Delete(ctx, &domain.HomeGroup{ID: id})
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
