// Package testsupport holds helpers shared by the bun backed repository tests.
package testsupport

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var dbSeq atomic.Int64

// MemoryDSN returns a shared-cache in-memory sqlite DSN unique to this process.
func MemoryDSN(name string) string {
	return fmt.Sprintf("file:viddefe_%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))
}

// NewSQLiteMemoryDB opens an isolated in-memory sqlite database.
func NewSQLiteMemoryDB() (*sql.DB, error) {
	return sql.Open("sqlite3", MemoryDSN("test"))
}

// NewBunDB opens an isolated sqlite database wrapped in bun and creates a table
// for every model. The database is closed when the test ends.
func NewBunDB(t testing.TB, models ...any) *bun.DB {
	t.Helper()
	sqlDB, err := NewSQLiteMemoryDB()
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			t.Fatalf("create table for %T: %v", model, err)
		}
	}
	return db
}
