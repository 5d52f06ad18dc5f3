package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"radassist/internal/domain/reference"
	"radassist/internal/errs"
	"radassist/internal/infrastructure/persistence/sqlite/model"
	"radassist/internal/infrastructure/persistence/sqlite/schema"
	"radassist/internal/ports"
)

type ReferenceStore struct {
	db     *gorm.DB
	schema *schema.Manager
}

var _ ports.ReferenceStore = (*ReferenceStore)(nil)

func NewReferenceStore(db *gorm.DB, schema *schema.Manager) *ReferenceStore {
	return &ReferenceStore{db: db, schema: schema}
}

func (r *ReferenceStore) resolve(ctx context.Context) (*gorm.DB, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}
	if err := r.schema.Ensure(ctx); err != nil {
		return nil, errs.Wrap(err, "ensure schema")
	}
	return db, nil
}

func (r *ReferenceStore) List(ctx context.Context) ([]reference.TissueReference, error) {
	db, err := r.resolve(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.AlphaBetaReference
	if err := db.Order("tissue COLLATE NOCASE asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query references")
	}

	return mapReferences(rows), nil
}

func (r *ReferenceStore) Search(ctx context.Context, text string) ([]reference.TissueReference, error) {
	db, err := r.resolve(ctx)
	if err != nil {
		return nil, err
	}

	pattern := "%" + strings.ToLower(strings.TrimSpace(text)) + "%"

	var rows []model.AlphaBetaReference
	if err := db.
		Where("LOWER(tissue) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Order("tissue COLLATE NOCASE asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "search references")
	}

	return mapReferences(rows), nil
}

func (r *ReferenceStore) ByID(ctx context.Context, id uint64) (*reference.TissueReference, error) {
	db, err := r.resolve(ctx)
	if err != nil {
		return nil, err
	}

	var row model.AlphaBetaReference
	if err := db.Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errs.Wrap(err, "query reference by id")
	}

	ref := mapReference(row)
	return &ref, nil
}

func (r *ReferenceStore) ByTissue(ctx context.Context, tissue string) (*reference.TissueReference, error) {
	db, err := r.resolve(ctx)
	if err != nil {
		return nil, err
	}

	var row model.AlphaBetaReference
	if err := db.
		Where("LOWER(tissue) = LOWER(?)", strings.TrimSpace(tissue)).
		Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errs.Wrap(err, "query reference by tissue")
	}

	ref := mapReference(row)
	return &ref, nil
}

func (r *ReferenceStore) TissueExists(ctx context.Context, tissue string, excludeID uint64) (bool, error) {
	db, err := r.resolve(ctx)
	if err != nil {
		return false, err
	}

	query := db.Model(&model.AlphaBetaReference{}).
		Where("LOWER(tissue) = LOWER(?)", strings.TrimSpace(tissue))
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, errs.Wrap(err, "count references by tissue")
	}
	return count > 0, nil
}

func (r *ReferenceStore) Insert(ctx context.Context, ref reference.TissueReference) (reference.TissueReference, error) {
	db, err := r.resolve(ctx)
	if err != nil {
		return reference.TissueReference{}, err
	}

	row := model.AlphaBetaReference{
		Tissue:         ref.Tissue,
		AlphaBeta:      ref.AlphaBeta,
		Description:    ref.Description,
		ReferencesJSON: reference.EncodeCitations(ref.Citations),
	}
	if err := db.Create(&row).Error; err != nil {
		return reference.TissueReference{}, errs.Wrap(err, "insert reference")
	}

	return mapReference(row), nil
}

func (r *ReferenceStore) Update(ctx context.Context, ref reference.TissueReference) error {
	db, err := r.resolve(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.AlphaBetaReference{}).
		Where("id = ?", ref.ID).
		Updates(map[string]any{
			"tissue":          ref.Tissue,
			"alphaBeta":       ref.AlphaBeta,
			"description":     ref.Description,
			"references_json": reference.EncodeCitations(ref.Citations),
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update reference")
	}
	if result.RowsAffected == 0 {
		return reference.ErrNotFound
	}
	return nil
}

func (r *ReferenceStore) Delete(ctx context.Context, id uint64) error {
	db, err := r.resolve(ctx)
	if err != nil {
		return err
	}

	result := db.Where("id = ?", id).Delete(&model.AlphaBetaReference{})
	if result.Error != nil {
		return errs.Wrap(result.Error, "delete reference")
	}
	if result.RowsAffected == 0 {
		return reference.ErrNotFound
	}
	return nil
}

func (r *ReferenceStore) Count(ctx context.Context) (int64, error) {
	db, err := r.resolve(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.AlphaBetaReference{}).Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count references")
	}
	return count, nil
}

func mapReference(row model.AlphaBetaReference) reference.TissueReference {
	return reference.TissueReference{
		ID:          row.ID,
		Tissue:      row.Tissue,
		AlphaBeta:   row.AlphaBeta,
		Description: row.Description,
		Citations:   reference.DecodeCitations(row.ReferencesJSON),
	}
}

func mapReferences(rows []model.AlphaBetaReference) []reference.TissueReference {
	refs := make([]reference.TissueReference, 0, len(rows))
	for _, row := range rows {
		refs = append(refs, mapReference(row))
	}
	return refs
}
