// Package repository implements the store ports over gorm + sqlite. Every
// method ensures the schema before touching rows, so a store created by an
// older app version self-heals on first use.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"radassist/internal/ports"
)

// timeLayout is the stored text form of every timestamp column. The
// fractional part is fixed-width so lexicographic comparison in SQL matches
// chronological order; RFC3339Nano drops trailing zeros and breaks that.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func dbFromContext(ctx context.Context, base *gorm.DB) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return base.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime degrades to the zero time on a malformed stored value so one bad
// row cannot fail a whole read. Rows written by earlier builds used
// RFC3339Nano, so that form is still accepted.
func parseTime(raw string) time.Time {
	t, err := time.Parse(timeLayout, raw)
	if err == nil {
		return t
	}
	t, err = time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
