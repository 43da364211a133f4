package offerings

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strconv"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/viddefe/go-viddefe/domain"
)

// NewOfferingRepository creates a repository for offering records.
func NewOfferingRepository(db *bun.DB) repository.Repository[*domain.Offering] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*domain.Offering]{
		NewRecord: func() *domain.Offering { return &domain.Offering{} },
		GetID: func(o *domain.Offering) uuid.UUID {
			return o.ID
		},
		SetID: func(o *domain.Offering, id uuid.UUID) {
			o.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(o *domain.Offering) string {
			return o.ID.String()
		},
	})
}

// BunOfferingRepository implements OfferingRepository with optional caching.
type BunOfferingRepository struct {
	repo repository.Repository[*domain.Offering]
}

// NewBunOfferingRepository creates an offering repository without caching.
func NewBunOfferingRepository(db *bun.DB) *BunOfferingRepository {
	return NewBunOfferingRepositoryWithCache(db, nil, nil)
}

// NewBunOfferingRepositoryWithCache creates an offering repository with caching support.
func NewBunOfferingRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunOfferingRepository {
	base := NewOfferingRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunOfferingRepository{repo: base}
}

func (r *BunOfferingRepository) Create(ctx context.Context, offering *domain.Offering) (*domain.Offering, error) {
	return r.repo.Create(ctx, offering)
}

func (r *BunOfferingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Offering, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "offering", id.String())
	}
	return record, nil
}

func (r *BunOfferingRepository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*domain.Offering, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.meeting_id = ?", meetingID).OrderExpr("?TableAlias.created_at ASC")
	}))
	if err != nil {
		return nil, fmt.Errorf("offering repository error: %w", err)
	}
	return records, nil
}

func (r *BunOfferingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return r.repo.Delete(ctx, &domain.Offering{ID: id})
}

// offeringTypeModel is the table shape of the offering type catalog.
type offeringTypeModel struct {
	bun.BaseModel `bun:"table:offering_types,alias:ot"`

	ID   int64  `bun:",pk"`
	Name string `bun:"name,notnull"`
}

// BunTypeRepository stores offering types with bun.
type BunTypeRepository struct {
	db *bun.DB
}

// NewBunTypeRepository creates a bun backed type catalog.
func NewBunTypeRepository(db *bun.DB) *BunTypeRepository {
	return &BunTypeRepository{db: db}
}

// CreateTable creates the offering_types table when missing.
func (r *BunTypeRepository) CreateTable(ctx context.Context) error {
	_, err := r.db.NewCreateTable().Model((*offeringTypeModel)(nil)).IfNotExists().Exec(ctx)
	return err
}

func (r *BunTypeRepository) List(ctx context.Context) ([]*domain.OfferingType, error) {
	var models []offeringTypeModel
	if err := r.db.NewSelect().Model(&models).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("offering type repository error: %w", err)
	}
	out := make([]*domain.OfferingType, 0, len(models))
	for _, m := range models {
		out = append(out, &domain.OfferingType{ID: m.ID, Name: m.Name})
	}
	return out, nil
}

func (r *BunTypeRepository) Get(ctx context.Context, id int64) (*domain.OfferingType, error) {
	model := new(offeringTypeModel)
	if err := r.db.NewSelect().Model(model).Where("id = ?", id).Limit(1).Scan(ctx); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "offering type", Key: strconv.FormatInt(id, 10)}
		}
		return nil, fmt.Errorf("offering type repository error: %w", err)
	}
	return &domain.OfferingType{ID: model.ID, Name: model.Name}, nil
}

func (r *BunTypeRepository) Save(ctx context.Context, t *domain.OfferingType) (*domain.OfferingType, error) {
	model := &offeringTypeModel{ID: t.ID, Name: t.Name}
	_, err := r.db.NewInsert().
		Model(model).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("offering type repository error: %w", err)
	}
	return &domain.OfferingType{ID: model.ID, Name: model.Name}, nil
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
