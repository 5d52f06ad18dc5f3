// Package memory holds the in-memory implementation of every store port.
// It is selected once at startup when the embedded sqlite store cannot be
// opened, keeping the CLI usable in a degraded, non-persistent mode, and it
// doubles as a test double. Contents live for the process only.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"radassist/internal/domain/reference"
	"radassist/internal/ports"
)

// Store owns the shared state; the per-port adapters below expose it through
// the same interfaces the sqlite stores implement.
type Store struct {
	mu sync.Mutex

	references map[uint64]reference.TissueReference
	nextRefID  uint64

	audit       []reference.AuditEntry
	nextAuditID uint64

	calculations map[uint64]ports.Calculation
	nextCalcID   uint64

	kv map[string]string

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		references:   make(map[uint64]reference.TissueReference),
		nextRefID:    1,
		nextAuditID:  1,
		calculations: make(map[uint64]ports.Calculation),
		nextCalcID:   1,
		kv:           make(map[string]string),
		now:          time.Now,
	}
}

func (s *Store) References() ports.ReferenceStore     { return referenceAdapter{s} }
func (s *Store) Audit() ports.AuditLog                { return auditAdapter{s} }
func (s *Store) Calculations() ports.CalculationStore { return calculationAdapter{s} }
func (s *Store) KV() ports.KV                         { return kvAdapter{s} }
func (s *Store) UnitOfWork() ports.UnitOfWork         { return uowAdapter{s} }

func checkCtx(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	return ctx.Err()
}

// uowAdapter runs fn directly: the single mutex already serializes callers,
// and degraded mode gives up rollback along with persistence.
type uowAdapter struct{ s *Store }

var _ ports.UnitOfWork = uowAdapter{}

func (u uowAdapter) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	return fn(ctx)
}

type referenceAdapter struct{ s *Store }

var _ ports.ReferenceStore = referenceAdapter{}

func (a referenceAdapter) List(ctx context.Context) ([]reference.TissueReference, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	refs := make([]reference.TissueReference, 0, len(a.s.references))
	for _, ref := range a.s.references {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		return strings.ToLower(refs[i].Tissue) < strings.ToLower(refs[j].Tissue)
	})
	return refs, nil
}

func (a referenceAdapter) Search(ctx context.Context, text string) ([]reference.TissueReference, error) {
	all, err := a.List(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(text))
	matched := make([]reference.TissueReference, 0, len(all))
	for _, ref := range all {
		if strings.Contains(strings.ToLower(ref.Tissue), needle) ||
			strings.Contains(strings.ToLower(ref.Description), needle) {
			matched = append(matched, ref)
		}
	}
	return matched, nil
}

func (a referenceAdapter) ByID(ctx context.Context, id uint64) (*reference.TissueReference, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	ref, ok := a.s.references[id]
	if !ok {
		return nil, nil
	}
	return &ref, nil
}

func (a referenceAdapter) ByTissue(ctx context.Context, tissue string) (*reference.TissueReference, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(tissue))

	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	for _, ref := range a.s.references {
		if strings.ToLower(ref.Tissue) == needle {
			matched := ref
			return &matched, nil
		}
	}
	return nil, nil
}

func (a referenceAdapter) TissueExists(ctx context.Context, tissue string, excludeID uint64) (bool, error) {
	if err := checkCtx(ctx); err != nil {
		return false, err
	}

	needle := strings.ToLower(strings.TrimSpace(tissue))

	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	for id, ref := range a.s.references {
		if id == excludeID {
			continue
		}
		if strings.ToLower(ref.Tissue) == needle {
			return true, nil
		}
	}
	return false, nil
}

func (a referenceAdapter) Insert(ctx context.Context, ref reference.TissueReference) (reference.TissueReference, error) {
	if err := checkCtx(ctx); err != nil {
		return reference.TissueReference{}, err
	}

	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	ref.ID = a.s.nextRefID
	a.s.nextRefID++
	a.s.references[ref.ID] = ref
	return ref, nil
}

func (a referenceAdapter) Update(ctx context.Context, ref reference.TissueReference) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}

	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	if _, ok := a.s.references[ref.ID]; !ok {
		return reference.ErrNotFound
	}
	a.s.references[ref.ID] = ref
	return nil
}

func (a referenceAdapter) Delete(ctx context.Context, id uint64) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}

	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	if _, ok := a.s.references[id]; !ok {
		return reference.ErrNotFound
	}
	delete(a.s.references, id)
	return nil
}

func (a referenceAdapter) Count(ctx context.Context) (int64, error) {
	if err := checkCtx(ctx); err != nil {
		return 0, err
	}

	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return int64(len(a.s.references)), nil
}

type auditAdapter struct{ s *Store }

var _ ports.AuditLog = auditAdapter{}

func (a auditAdapter) Append(ctx context.Context, entry reference.AuditEntry) (uint64, error) {
	if err := checkCtx(ctx); err != nil {
		return 0, err
	}

	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	entry.ID = a.s.nextAuditID
	a.s.nextAuditID++
	if entry.Timestamp.IsZero() {
		entry.Timestamp = a.s.now()
	}
	a.s.audit = append(a.s.audit, entry)
	return entry.ID, nil
}

func (a auditAdapter) Query(ctx context.Context, start, end time.Time) ([]reference.AuditEntry, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	matched := make([]reference.AuditEntry, 0, len(a.s.audit))
	for i := len(a.s.audit) - 1; i >= 0; i-- {
		ts := a.s.audit[i].Timestamp
		if !ts.Before(start) && ts.Before(end) {
			matched = append(matched, a.s.audit[i])
		}
	}
	return matched, nil
}

func (a auditAdapter) Recent(ctx context.Context, limit, offset int) ([]reference.AuditEntry, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	entries := make([]reference.AuditEntry, 0, len(a.s.audit))
	for i := len(a.s.audit) - 1; i >= 0; i-- {
		entries = append(entries, a.s.audit[i])
	}
	if offset > 0 {
		if offset >= len(entries) {
			return nil, nil
		}
		entries = entries[offset:]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (a auditAdapter) Count(ctx context.Context) (int64, error) {
	if err := checkCtx(ctx); err != nil {
		return 0, err
	}

	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return int64(len(a.s.audit)), nil
}

func (a auditAdapter) Trim(ctx context.Context, olderThan time.Time) (int64, error) {
	if err := checkCtx(ctx); err != nil {
		return 0, err
	}

	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	kept := make([]reference.AuditEntry, 0, len(a.s.audit))
	var removed int64
	for _, entry := range a.s.audit {
		if entry.Timestamp.Before(olderThan) {
			removed++
			continue
		}
		kept = append(kept, entry)
	}
	a.s.audit = kept
	return removed, nil
}

type calculationAdapter struct{ s *Store }

var _ ports.CalculationStore = calculationAdapter{}

func (a calculationAdapter) Save(ctx context.Context, calc ports.Calculation) (uint64, error) {
	if err := checkCtx(ctx); err != nil {
		return 0, err
	}

	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	calc.ID = a.s.nextCalcID
	a.s.nextCalcID++
	if calc.Date.IsZero() {
		calc.Date = a.s.now()
	}
	a.s.calculations[calc.ID] = calc
	return calc.ID, nil
}

func (a calculationAdapter) List(ctx context.Context, limit int) ([]ports.Calculation, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	calcs := make([]ports.Calculation, 0, len(a.s.calculations))
	for _, calc := range a.s.calculations {
		calcs = append(calcs, calc)
	}
	sort.Slice(calcs, func(i, j int) bool {
		if calcs[i].Date.Equal(calcs[j].Date) {
			return calcs[i].ID > calcs[j].ID
		}
		return calcs[i].Date.After(calcs[j].Date)
	})
	if limit > 0 && len(calcs) > limit {
		calcs = calcs[:limit]
	}
	return calcs, nil
}

func (a calculationAdapter) Delete(ctx context.Context, id uint64) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}

	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	if _, ok := a.s.calculations[id]; !ok {
		return ports.ErrCalculationNotFound
	}
	delete(a.s.calculations, id)
	return nil
}

func (a calculationAdapter) DeleteAll(ctx context.Context) (int64, error) {
	if err := checkCtx(ctx); err != nil {
		return 0, err
	}

	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	removed := int64(len(a.s.calculations))
	a.s.calculations = make(map[uint64]ports.Calculation)
	return removed, nil
}

func (a calculationAdapter) Stats(ctx context.Context) (ports.CalculationStats, error) {
	all, err := a.List(ctx, 0)
	if err != nil {
		return ports.CalculationStats{}, err
	}

	today := a.s.now().UTC().Format("2006-01-02")
	var todayCount int64
	for _, calc := range all {
		if calc.Date.UTC().Format("2006-01-02") == today {
			todayCount++
		}
	}

	recent := all
	if len(recent) > 5 {
		recent = recent[:5]
	}
	return ports.CalculationStats{
		Total:  int64(len(all)),
		Today:  todayCount,
		Recent: recent,
	}, nil
}

type kvAdapter struct{ s *Store }

var _ ports.KV = kvAdapter{}

func (a kvAdapter) Get(ctx context.Context, key string) (string, bool, error) {
	if err := checkCtx(ctx); err != nil {
		return "", false, err
	}

	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	value, ok := a.s.kv[key]
	return value, ok, nil
}

func (a kvAdapter) Set(ctx context.Context, key, value string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("key is required")
	}

	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	a.s.kv[key] = value
	return nil
}

func (a kvAdapter) Delete(ctx context.Context, key string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}

	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	delete(a.s.kv, key)
	return nil
}
