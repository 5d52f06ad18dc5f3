package ports

import (
	"context"
	"time"

	"radassist/internal/domain/reference"
)

// AuditLog is the append-only history of reference mutations. Append never
// validates business rules; the registry is responsible for what it logs.
// Trim is the single maintenance exception to append-only semantics.
type AuditLog interface {
	Append(ctx context.Context, entry reference.AuditEntry) (uint64, error)
	// Query returns entries with start <= timestamp < end, newest first.
	Query(ctx context.Context, start, end time.Time) ([]reference.AuditEntry, error)
	// Recent returns up to limit entries newest first, skipping offset.
	Recent(ctx context.Context, limit, offset int) ([]reference.AuditEntry, error)
	Count(ctx context.Context) (int64, error)
	// Trim deletes entries older than the horizon and returns the count.
	Trim(ctx context.Context, olderThan time.Time) (int64, error)
}
