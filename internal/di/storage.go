package di

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/geo"
	"github.com/viddefe/go-viddefe/internal/offerings"
	"github.com/viddefe/go-viddefe/internal/runtimeconfig"
)

var ErrBunDBRequired = errors.New("di: bun database is required")

// OpenBunDB opens the database named by cfg. The caller owns the returned handle.
func OpenBunDB(cfg runtimeconfig.StorageConfig) (*bun.DB, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, runtimeconfig.ErrStorageDSNRequired
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "sqlite":
		sqlDB, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("di: open sqlite: %w", err)
		}
		db := bun.NewDB(sqlDB, sqlitedialect.New())
		// sqlite serialises writers; one connection keeps in-memory databases shared.
		db.SetMaxOpenConns(1)
		return db, nil
	case "postgres":
		sqlDB, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("di: open postgres: %w", err)
		}
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrStorageDriverUnknown, cfg.Driver)
	}
}

// EnsureSchema creates every table used by the bun repositories.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	if db == nil {
		return ErrBunDBRequired
	}
	if err := geo.NewBunRepository(db).CreateTables(ctx); err != nil {
		return err
	}
	models := []any{
		(*domain.Person)(nil),
		(*domain.Church)(nil),
		(*domain.HomeGroup)(nil),
		(*domain.Meeting)(nil),
		(*domain.Attendance)(nil),
		(*domain.Offering)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("di: create table: %w", err)
		}
	}
	return offerings.NewBunTypeRepository(db).CreateTable(ctx)
}
