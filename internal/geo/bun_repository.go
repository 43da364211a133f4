package geo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/uptrace/bun"

	"github.com/viddefe/go-viddefe/domain"
)

// BunRepository stores the catalog with bun. Catalog rows use numeric keys,
// so it queries bun directly instead of going through go-repository-bun.
type BunRepository struct {
	db *bun.DB
}

// NewBunRepository creates a bun backed catalog.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

// CreateTables creates the states and cities tables when missing.
func (r *BunRepository) CreateTables(ctx context.Context) error {
	for _, model := range []any{(*domain.State)(nil), (*domain.City)(nil)} {
		if _, err := r.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("geo: create table: %w", err)
		}
	}
	return nil
}

func (r *BunRepository) ListStates(ctx context.Context) ([]*domain.State, error) {
	var states []*domain.State
	if err := r.db.NewSelect().Model(&states).OrderExpr("?TableAlias.name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("state repository error: %w", err)
	}
	return states, nil
}

func (r *BunRepository) GetState(ctx context.Context, id int64) (*domain.State, error) {
	state := new(domain.State)
	err := r.db.NewSelect().Model(state).Where("?TableAlias.id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		return nil, mapError(err, "state", id)
	}
	return state, nil
}

func (r *BunRepository) ListCities(ctx context.Context, stateID int64) ([]*domain.City, error) {
	var cities []*domain.City
	err := r.db.NewSelect().
		Model(&cities).
		Where("?TableAlias.state_id = ?", stateID).
		OrderExpr("?TableAlias.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("city repository error: %w", err)
	}
	return cities, nil
}

func (r *BunRepository) GetCity(ctx context.Context, id int64) (*domain.City, error) {
	city := new(domain.City)
	err := r.db.NewSelect().Model(city).Where("?TableAlias.id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		return nil, mapError(err, "city", id)
	}
	return city, nil
}

func (r *BunRepository) SaveState(ctx context.Context, state *domain.State) (*domain.State, error) {
	_, err := r.db.NewInsert().
		Model(state).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("state repository error: %w", err)
	}
	return cloneState(state), nil
}

func (r *BunRepository) SaveCity(ctx context.Context, city *domain.City) (*domain.City, error) {
	_, err := r.db.NewInsert().
		Model(city).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("state_id = EXCLUDED.state_id").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("city repository error: %w", err)
	}
	return cloneCity(city), nil
}

func mapError(err error, resource string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Resource: resource, Key: strconv.FormatInt(id, 10)}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
