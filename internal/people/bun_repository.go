package people

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

// NewPersonRepository creates a repository for person records.
func NewPersonRepository(db *bun.DB) repository.Repository[*domain.Person] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*domain.Person]{
		NewRecord: func() *domain.Person { return &domain.Person{} },
		GetID: func(p *domain.Person) uuid.UUID {
			return p.ID
		},
		SetID: func(p *domain.Person, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "email"
		},
		GetIdentifierValue: func(p *domain.Person) string {
			return p.Email
		},
	})
}

// BunPersonRepository implements PersonRepository with optional caching.
type BunPersonRepository struct {
	repo repository.Repository[*domain.Person]
}

// NewBunPersonRepository creates a person repository without caching.
func NewBunPersonRepository(db *bun.DB) *BunPersonRepository {
	return NewBunPersonRepositoryWithCache(db, nil, nil)
}

// NewBunPersonRepositoryWithCache creates a person repository with caching support.
func NewBunPersonRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunPersonRepository {
	base := NewPersonRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunPersonRepository{repo: base}
}

func (r *BunPersonRepository) Create(ctx context.Context, person *domain.Person) (*domain.Person, error) {
	return r.repo.Create(ctx, person)
}

func (r *BunPersonRepository) Update(ctx context.Context, person *domain.Person) (*domain.Person, error) {
	updated, err := r.repo.Update(ctx, person,
		repository.UpdateByID(person.ID.String()),
		repository.UpdateColumns(
			"first_name",
			"last_name",
			"email",
			"phone",
			"birth_date",
			"church_id",
			"role",
			"updated_at",
		),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "person", person.ID.String())
	}
	return updated, nil
}

func (r *BunPersonRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Person, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "person", id.String())
	}
	return record, nil
}

func (r *BunPersonRepository) List(ctx context.Context, filter Filter, req domain.PageRequest) (domain.Page[*domain.Person], error) {
	query := repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		if filter.ChurchID != nil {
			q = q.Where("?TableAlias.church_id = ?", *filter.ChurchID)
		}
		if filter.Role != "" {
			q = q.Where("?TableAlias.role = ?", filter.Role)
		}
		column, ok := sortColumns[req.SortField]
		if !ok || req.SortDir == domain.SortNone {
			return q.OrderExpr("?TableAlias.last_name ASC, ?TableAlias.first_name ASC")
		}
		if req.SortDir == domain.SortDesc {
			return q.OrderExpr("?TableAlias." + column + " DESC")
		}
		return q.OrderExpr("?TableAlias." + column + " ASC")
	})

	if req.Size > 0 {
		records, total, err := r.repo.List(ctx, query, repository.SelectPaginate(req.Size, req.Offset()))
		return listPage(records, int64(total), err, req)
	}
	records, total, err := r.repo.List(ctx, query)
	return listPage(records, int64(total), err, req)
}

func (r *BunPersonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return r.repo.Delete(ctx, &domain.Person{ID: id})
}

func listPage(records []*domain.Person, total int64, err error, req domain.PageRequest) (domain.Page[*domain.Person], error) {
	if err != nil {
		return domain.Page[*domain.Person]{}, fmt.Errorf("person repository error: %w", err)
	}
	return domain.NewPage(records, total, req), nil
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
