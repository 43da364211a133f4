package churches

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

// BunChurchRepository implements ChurchRepository with optional caching.
type BunChurchRepository struct {
	repo repository.Repository[*domain.Church]
}

// NewBunChurchRepository creates a church repository without caching.
func NewBunChurchRepository(db *bun.DB) *BunChurchRepository {
	return NewBunChurchRepositoryWithCache(db, nil, nil)
}

// NewBunChurchRepositoryWithCache creates a church repository with caching support.
func NewBunChurchRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunChurchRepository {
	base := NewChurchRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunChurchRepository{repo: base}
}

func (r *BunChurchRepository) Create(ctx context.Context, church *domain.Church) (*domain.Church, error) {
	return r.repo.Create(ctx, church)
}

func (r *BunChurchRepository) Update(ctx context.Context, church *domain.Church) (*domain.Church, error) {
	updated, err := r.repo.Update(ctx, church,
		repository.UpdateByID(church.ID.String()),
		repository.UpdateColumns(
			"name",
			"slug",
			"email",
			"phone",
			"address",
			"foundation_date",
			"pastor",
			"state",
			"city",
			"latitude",
			"longitude",
			"updated_at",
		),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "church", church.ID.String())
	}
	return updated, nil
}

func (r *BunChurchRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Church, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "church", id.String())
	}
	return record, nil
}

func (r *BunChurchRepository) GetBySlug(ctx context.Context, slug string) (*domain.Church, error) {
	record, err := r.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, mapRepositoryError(err, "church", slug)
	}
	return record, nil
}

func (r *BunChurchRepository) List(ctx context.Context, req domain.PageRequest) (domain.Page[*domain.Church], error) {
	order := repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return orderBy(q, req)
	})

	if req.Size > 0 {
		records, total, err := r.repo.List(ctx, order, repository.SelectPaginate(req.Size, req.Offset()))
		return listPage(records, int64(total), err, req)
	}
	records, total, err := r.repo.List(ctx, order)
	return listPage(records, int64(total), err, req)
}

func listPage(records []*domain.Church, total int64, err error, req domain.PageRequest) (domain.Page[*domain.Church], error) {
	if err != nil {
		return domain.Page[*domain.Church]{}, fmt.Errorf("church repository error: %w", err)
	}
	return domain.NewPage(records, total, req), nil
}

func (r *BunChurchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return r.repo.Delete(ctx, &domain.Church{ID: id})
}

func orderBy(q *bun.SelectQuery, req domain.PageRequest) *bun.SelectQuery {
	column, ok := sortColumns[req.SortField]
	if !ok || req.SortDir == domain.SortNone {
		return q.OrderExpr("?TableAlias.created_at ASC")
	}
	dir := "ASC"
	if req.SortDir == domain.SortDesc {
		dir = "DESC"
	}
	return q.OrderExpr("?TableAlias." + column + " " + dir)
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
