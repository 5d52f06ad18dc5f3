// Package schema keeps the embedded store's tables and columns in their
// target shape. Ensure is idempotent and cheap when nothing is missing, so
// every store method runs it before its own work; schema drift left behind
// by older app versions heals on next use instead of at a startup hook.
package schema

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"radassist/internal/bootstrap/logging"
	"radassist/internal/errs"
	"radassist/internal/infrastructure/persistence/sqlite/model"
)

type target struct {
	model  any
	fields []string
}

// Migration is additive only: columns present in the target model but
// missing from a live table are added with the model's default. Columns are
// never removed or renamed.
var targets = []target{
	{
		model:  &model.Calculation{},
		fields: []string{"Dose", "Fractions", "AlphaBeta", "BED", "EQD2", "TissueLabel", "Date"},
	},
	{
		model:  &model.AlphaBetaReference{},
		fields: []string{"Tissue", "AlphaBeta", "Description", "ReferencesJSON"},
	},
	{
		model: &model.ReferenceHistory{},
		fields: []string{
			"Action", "Tissue", "AlphaBeta", "Description",
			"PreviousTissue", "PreviousAlphaBeta", "PreviousDescription", "Timestamp",
		},
	},
	{
		model:  &model.AppCache{},
		fields: []string{"Key", "Value", "UpdatedAt"},
	},
}

type Manager struct {
	db *gorm.DB
}

func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

// Ensure creates missing tables and adds missing columns. A column add that
// fails degrades to a warning so a partially migrated store stays usable; a
// table that cannot be created surfaces, since nothing can work without it.
func (m *Manager) Ensure(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "sqlite.schema"))
	migrator := m.db.WithContext(ctx).Migrator()

	for _, t := range targets {
		if !migrator.HasTable(t.model) {
			if err := migrator.CreateTable(t.model); err != nil {
				return errs.Wrapf(err, "create table for %T", t.model)
			}
			continue
		}

		for _, field := range t.fields {
			if migrator.HasColumn(t.model, field) {
				continue
			}
			if err := migrator.AddColumn(t.model, field); err != nil {
				logging.Warn(logCtx, "column migration failed, continuing",
					slog.String("field", field),
					slog.Any("err", errs.Loggable(err)),
				)
			}
		}
	}

	return nil
}
