package cache

import (
	"context"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"radassist/internal/infrastructure/persistence/sqlite/schema"
)

func setupSQLiteKV(t *testing.T) *SQLiteKV {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "cache.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return NewSQLiteKV(db, schema.NewManager(db))
}

func TestSQLiteKVSetGetDelete(t *testing.T) {
	kv := setupSQLiteKV(t)
	ctx := context.Background()

	if err := kv.Set(ctx, "calculator.last_inputs", `{"dose":"2","fractions":"30"}`); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, found, err := kv.Get(ctx, "calculator.last_inputs")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatalf("Get() expected found=true")
	}
	if value != `{"dose":"2","fractions":"30"}` {
		t.Fatalf("Get() value = %q", value)
	}

	if err := kv.Set(ctx, "calculator.last_inputs", `{"dose":"3","fractions":"10"}`); err != nil {
		t.Fatalf("Set(update) error = %v", err)
	}

	value, found, err = kv.Get(ctx, "calculator.last_inputs")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found || value != `{"dose":"3","fractions":"10"}` {
		t.Fatalf("Get() after update = %q, found=%v", value, found)
	}

	if err := kv.Delete(ctx, "calculator.last_inputs"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, found, err = kv.Get(ctx, "calculator.last_inputs")
	if err != nil {
		t.Fatalf("Get() after delete error = %v", err)
	}
	if found {
		t.Fatalf("Get() expected found=false after delete")
	}
}

func TestSQLiteKVMissingKey(t *testing.T) {
	kv := setupSQLiteKV(t)

	_, found, err := kv.Get(context.Background(), "never.set")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Fatalf("Get() expected found=false")
	}
}

func TestSQLiteKVRejectsEmptyKey(t *testing.T) {
	kv := setupSQLiteKV(t)
	ctx := context.Background()

	if err := kv.Set(ctx, "", "v"); err == nil {
		t.Fatalf("Set() expected error for empty key")
	}
	if _, _, err := kv.Get(ctx, "  "); err == nil {
		t.Fatalf("Get() expected error for blank key")
	}
	if err := kv.Delete(ctx, ""); err == nil {
		t.Fatalf("Delete() expected error for empty key")
	}
}
