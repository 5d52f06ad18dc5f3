package ports

import (
	"context"

	"radassist/internal/domain/reference"
)

// ReferenceStore is the storage primitive under the registry usecase. It
// performs no duplicate checking or audit logging itself; the registry
// composes those inside one unit of work.
type ReferenceStore interface {
	// List returns all live records ordered by tissue, case-insensitively.
	List(ctx context.Context) ([]reference.TissueReference, error)
	// Search matches text case-insensitively against tissue and description.
	Search(ctx context.Context, text string) ([]reference.TissueReference, error)
	// ByID returns (nil, nil) when the id has no live record.
	ByID(ctx context.Context, id uint64) (*reference.TissueReference, error)
	// ByTissue is a case-insensitive exact name lookup, (nil, nil) on miss.
	ByTissue(ctx context.Context, tissue string) (*reference.TissueReference, error)
	// TissueExists reports whether a live record matches the name
	// case-insensitively, ignoring excludeID (0 excludes nothing).
	TissueExists(ctx context.Context, tissue string, excludeID uint64) (bool, error)
	Insert(ctx context.Context, ref reference.TissueReference) (reference.TissueReference, error)
	Update(ctx context.Context, ref reference.TissueReference) error
	Delete(ctx context.Context, id uint64) error
	Count(ctx context.Context) (int64, error)
}
