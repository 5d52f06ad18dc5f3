package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"radassist/internal/errs"
	"radassist/internal/infrastructure/persistence/sqlite/model"
	"radassist/internal/infrastructure/persistence/sqlite/schema"
	"radassist/internal/ports"
)

// SQLiteKV backs the app-state KV with the app_cache table.
type SQLiteKV struct {
	db     *gorm.DB
	schema *schema.Manager
}

var _ ports.KV = (*SQLiteKV)(nil)

func NewSQLiteKV(db *gorm.DB, schema *schema.Manager) *SQLiteKV {
	return &SQLiteKV{db: db, schema: schema}
}

func (c *SQLiteKV) resolve(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if err := c.schema.Ensure(ctx); err != nil {
		return nil, errs.Wrap(err, "ensure schema")
	}
	return c.db.WithContext(ctx), nil
}

func (c *SQLiteKV) Get(ctx context.Context, key string) (string, bool, error) {
	db, err := c.resolve(ctx)
	if err != nil {
		return "", false, err
	}

	trimmedKey := strings.TrimSpace(key)
	if trimmedKey == "" {
		return "", false, errors.New("key is required")
	}

	var row model.AppCache
	if err := db.Where("key = ?", trimmedKey).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, errs.Wrap(err, "query cache by key")
	}
	return row.Value, true, nil
}

func (c *SQLiteKV) Set(ctx context.Context, key, value string) error {
	db, err := c.resolve(ctx)
	if err != nil {
		return err
	}

	trimmedKey := strings.TrimSpace(key)
	if trimmedKey == "" {
		return errors.New("key is required")
	}

	row := model.AppCache{
		Key:       trimmedKey,
		Value:     value,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"value":      row.Value,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row).Error; err != nil {
		return errs.Wrap(err, "upsert cache key")
	}
	return nil
}

func (c *SQLiteKV) Delete(ctx context.Context, key string) error {
	db, err := c.resolve(ctx)
	if err != nil {
		return err
	}

	trimmedKey := strings.TrimSpace(key)
	if trimmedKey == "" {
		return errors.New("key is required")
	}

	if err := db.Where("key = ?", trimmedKey).Delete(&model.AppCache{}).Error; err != nil {
		return errs.Wrap(err, "delete cache key")
	}
	return nil
}
