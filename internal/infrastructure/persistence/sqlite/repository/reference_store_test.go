package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"radassist/internal/domain/reference"
	"radassist/internal/infrastructure/persistence/sqlite/schema"
)

func setupDB(t *testing.T) (*gorm.DB, *schema.Manager) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "radassist.sqlite")
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
	return db, schema.NewManager(db)
}

func setupReferenceStore(t *testing.T) *ReferenceStore {
	t.Helper()
	db, mgr := setupDB(t)
	return NewReferenceStore(db, mgr)
}

func TestReferenceStoreInsertAndList(t *testing.T) {
	store := setupReferenceStore(t)
	ctx := context.Background()

	for _, tissue := range []string{"spinal cord", "Breast cancer", "Liver"} {
		if _, err := store.Insert(ctx, reference.TissueReference{Tissue: tissue, AlphaBeta: 2}); err != nil {
			t.Fatalf("Insert(%q) error = %v", tissue, err)
		}
	}

	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("List() len = %d", len(items))
	}
	// Ordering ignores case.
	if items[0].Tissue != "Breast cancer" || items[1].Tissue != "Liver" || items[2].Tissue != "spinal cord" {
		t.Fatalf("List() order = %q, %q, %q", items[0].Tissue, items[1].Tissue, items[2].Tissue)
	}
}

func TestReferenceStoreCitationsRoundTrip(t *testing.T) {
	store := setupReferenceStore(t)
	ctx := context.Background()

	citations := []reference.Citation{
		{Title: "Fowler JF. The linear-quadratic formula", Year: 1989, URL: "https://pubmed.ncbi.nlm.nih.gov/2689390/"},
	}
	created, err := store.Insert(ctx, reference.TissueReference{
		Tissue:    "Lung (late effects)",
		AlphaBeta: 3,
		Citations: citations,
	})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	loaded, err := store.ByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("ByID() error = %v", err)
	}
	if loaded == nil {
		t.Fatalf("ByID() = nil")
	}
	if len(loaded.Citations) != 1 || loaded.Citations[0] != citations[0] {
		t.Fatalf("ByID() citations = %+v", loaded.Citations)
	}
}

func TestReferenceStoreByIDMissReturnsNil(t *testing.T) {
	store := setupReferenceStore(t)

	loaded, err := store.ByID(context.Background(), 42)
	if err != nil {
		t.Fatalf("ByID() error = %v", err)
	}
	if loaded != nil {
		t.Fatalf("ByID() = %+v, want nil", loaded)
	}
}

func TestReferenceStoreByTissueIgnoresCase(t *testing.T) {
	store := setupReferenceStore(t)
	ctx := context.Background()

	if _, err := store.Insert(ctx, reference.TissueReference{Tissue: "Spinal cord", AlphaBeta: 2}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	loaded, err := store.ByTissue(ctx, "  SPINAL CORD ")
	if err != nil {
		t.Fatalf("ByTissue() error = %v", err)
	}
	if loaded == nil || loaded.Tissue != "Spinal cord" {
		t.Fatalf("ByTissue() = %+v", loaded)
	}
}

func TestReferenceStoreTissueExists(t *testing.T) {
	store := setupReferenceStore(t)
	ctx := context.Background()

	created, err := store.Insert(ctx, reference.TissueReference{Tissue: "Liver", AlphaBeta: 2})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	exists, err := store.TissueExists(ctx, "liver", 0)
	if err != nil {
		t.Fatalf("TissueExists() error = %v", err)
	}
	if !exists {
		t.Fatalf("TissueExists() = false, want true")
	}

	// The record itself is excluded when checking an update.
	exists, err = store.TissueExists(ctx, "LIVER", created.ID)
	if err != nil {
		t.Fatalf("TissueExists() error = %v", err)
	}
	if exists {
		t.Fatalf("TissueExists() = true with own id excluded")
	}
}

func TestReferenceStoreSearchMatchesNameAndDescription(t *testing.T) {
	store := setupReferenceStore(t)
	ctx := context.Background()

	if _, err := store.Insert(ctx, reference.TissueReference{
		Tissue:      "Rectum",
		AlphaBeta:   3,
		Description: "For late proctitis",
	}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if _, err := store.Insert(ctx, reference.TissueReference{Tissue: "Bladder", AlphaBeta: 5}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	byName, err := store.Search(ctx, "RECT")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(byName) != 1 || byName[0].Tissue != "Rectum" {
		t.Fatalf("Search(by name) = %+v", byName)
	}

	byDescription, err := store.Search(ctx, "proctitis")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(byDescription) != 1 || byDescription[0].Tissue != "Rectum" {
		t.Fatalf("Search(by description) = %+v", byDescription)
	}
}

func TestReferenceStoreUpdate(t *testing.T) {
	store := setupReferenceStore(t)
	ctx := context.Background()

	created, err := store.Insert(ctx, reference.TissueReference{Tissue: "Kidney", AlphaBeta: 2.5})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	created.AlphaBeta = 2.8
	created.Description = "For late renal effects"
	if err := store.Update(ctx, created); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	loaded, err := store.ByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("ByID() error = %v", err)
	}
	if loaded.AlphaBeta != 2.8 || loaded.Description != "For late renal effects" {
		t.Fatalf("ByID() after update = %+v", loaded)
	}
}

func TestReferenceStoreUpdateMissingReturnsNotFound(t *testing.T) {
	store := setupReferenceStore(t)

	err := store.Update(context.Background(), reference.TissueReference{ID: 99, Tissue: "Ghost", AlphaBeta: 1})
	if !errors.Is(err, reference.ErrNotFound) {
		t.Fatalf("Update() error = %v, want %v", err, reference.ErrNotFound)
	}
}

func TestReferenceStoreDelete(t *testing.T) {
	store := setupReferenceStore(t)
	ctx := context.Background()

	created, err := store.Insert(ctx, reference.TissueReference{Tissue: "Melanoma", AlphaBeta: 0.6})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if err := store.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, created.ID); !errors.Is(err, reference.ErrNotFound) {
		t.Fatalf("Delete() second call error = %v, want %v", err, reference.ErrNotFound)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Fatalf("Count() = %d", count)
	}
}
