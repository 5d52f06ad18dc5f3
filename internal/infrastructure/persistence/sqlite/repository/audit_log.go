package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"radassist/internal/domain/reference"
	"radassist/internal/errs"
	"radassist/internal/infrastructure/persistence/sqlite/model"
	"radassist/internal/infrastructure/persistence/sqlite/schema"
	"radassist/internal/ports"
)

type AuditLog struct {
	db     *gorm.DB
	schema *schema.Manager
	now    func() time.Time
}

var _ ports.AuditLog = (*AuditLog)(nil)

func NewAuditLog(db *gorm.DB, schema *schema.Manager) *AuditLog {
	return &AuditLog{db: db, schema: schema, now: time.Now}
}

func (l *AuditLog) resolve(ctx context.Context) (*gorm.DB, error) {
	db, err := dbFromContext(ctx, l.db)
	if err != nil {
		return nil, err
	}
	if err := l.schema.Ensure(ctx); err != nil {
		return nil, errs.Wrap(err, "ensure schema")
	}
	return db, nil
}

func (l *AuditLog) Append(ctx context.Context, entry reference.AuditEntry) (uint64, error) {
	db, err := l.resolve(ctx)
	if err != nil {
		return 0, err
	}

	ts := entry.Timestamp
	if ts.IsZero() {
		ts = l.now()
	}

	row := model.ReferenceHistory{
		Action:              string(entry.Action),
		Tissue:              entry.Tissue,
		AlphaBeta:           entry.AlphaBeta,
		Description:         entry.Description,
		PreviousTissue:      entry.PreviousTissue,
		PreviousAlphaBeta:   entry.PreviousAlphaBeta,
		PreviousDescription: entry.PreviousDescription,
		Timestamp:           formatTime(ts),
	}
	if err := db.Create(&row).Error; err != nil {
		return 0, errs.Wrap(err, "append audit entry")
	}
	return row.ID, nil
}

func (l *AuditLog) Query(ctx context.Context, start, end time.Time) ([]reference.AuditEntry, error) {
	db, err := l.resolve(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.ReferenceHistory
	if err := db.
		Where("timestamp >= ? AND timestamp < ?", formatTime(start), formatTime(end)).
		Order("timestamp desc").Order("id desc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query audit entries")
	}
	return mapAuditEntries(rows), nil
}

func (l *AuditLog) Recent(ctx context.Context, limit, offset int) ([]reference.AuditEntry, error) {
	db, err := l.resolve(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.ReferenceHistory{}).
		Order("timestamp desc").Order("id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []model.ReferenceHistory
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query recent audit entries")
	}
	return mapAuditEntries(rows), nil
}

func (l *AuditLog) Count(ctx context.Context) (int64, error) {
	db, err := l.resolve(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.ReferenceHistory{}).Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count audit entries")
	}
	return count, nil
}

func (l *AuditLog) Trim(ctx context.Context, olderThan time.Time) (int64, error) {
	db, err := l.resolve(ctx)
	if err != nil {
		return 0, err
	}

	result := db.
		Where("timestamp < ?", formatTime(olderThan)).
		Delete(&model.ReferenceHistory{})
	if result.Error != nil {
		return 0, errs.Wrap(result.Error, "trim audit entries")
	}
	return result.RowsAffected, nil
}

func mapAuditEntries(rows []model.ReferenceHistory) []reference.AuditEntry {
	entries := make([]reference.AuditEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, reference.AuditEntry{
			ID:                  row.ID,
			Action:              reference.Action(row.Action),
			Tissue:              row.Tissue,
			AlphaBeta:           row.AlphaBeta,
			Description:         row.Description,
			PreviousTissue:      row.PreviousTissue,
			PreviousAlphaBeta:   row.PreviousAlphaBeta,
			PreviousDescription: row.PreviousDescription,
			Timestamp:           parseTime(row.Timestamp),
		})
	}
	return entries
}
