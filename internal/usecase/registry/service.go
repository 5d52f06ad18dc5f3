// Package registry implements the tissue reference registry: CRUD with
// case-insensitive name uniqueness, a mandatory audit entry for every
// mutation, audit queries and retention trimming, and first-run seeding.
package registry

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"radassist/internal/bootstrap/config"
	"radassist/internal/bootstrap/logging"
	"radassist/internal/domain/reference"
	"radassist/internal/errs"
	"radassist/internal/ports"
)

type Service struct {
	refs  ports.ReferenceStore
	audit ports.AuditLog
	uow   ports.UnitOfWork
	cfg   config.Config
	now   func() time.Time
}

func NewService(refs ports.ReferenceStore, audit ports.AuditLog, uow ports.UnitOfWork, cfg config.Config) *Service {
	return &Service{refs: refs, audit: audit, uow: uow, cfg: cfg, now: time.Now}
}

// Input carries the mutable fields of a reference for add and update.
type Input struct {
	Tissue      string
	AlphaBeta   float64
	Description string
	Citations   []reference.Citation
}

func (in Input) normalized() Input {
	in.Tissue = strings.TrimSpace(in.Tissue)
	in.Description = strings.TrimSpace(in.Description)
	return in
}

func (s *Service) List(ctx context.Context) ([]reference.TissueReference, error) {
	return s.refs.List(ctx)
}

func (s *Service) Search(ctx context.Context, text string) ([]reference.TissueReference, error) {
	return s.refs.Search(ctx, text)
}

// ByID returns (nil, nil) when the id has no live record.
func (s *Service) ByID(ctx context.Context, id uint64) (*reference.TissueReference, error) {
	return s.refs.ByID(ctx, id)
}

func (s *Service) ByTissue(ctx context.Context, tissue string) (*reference.TissueReference, error) {
	return s.refs.ByTissue(ctx, tissue)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.refs.Count(ctx)
}

// Add inserts a new reference and its ADD audit entry in one transaction.
// The duplicate check and the insert are one logical operation under the
// single-writer assumption.
func (s *Service) Add(ctx context.Context, input Input) (reference.TissueReference, error) {
	input = input.normalized()
	if err := reference.ValidateInput(input.Tissue, input.AlphaBeta); err != nil {
		return reference.TissueReference{}, err
	}

	var created reference.TissueReference
	err := s.uow.WithTx(ctx, func(ctx context.Context) error {
		exists, err := s.refs.TissueExists(ctx, input.Tissue, 0)
		if err != nil {
			return err
		}
		if exists {
			return reference.ErrDuplicateTissue
		}

		created, err = s.refs.Insert(ctx, reference.TissueReference{
			Tissue:      input.Tissue,
			AlphaBeta:   input.AlphaBeta,
			Description: input.Description,
			Citations:   input.Citations,
		})
		if err != nil {
			return err
		}

		_, err = s.audit.Append(ctx, reference.AuditEntry{
			Action:      reference.ActionAdd,
			Tissue:      created.Tissue,
			AlphaBeta:   created.AlphaBeta,
			Description: created.Description,
			Timestamp:   s.now(),
		})
		return err
	})
	if err != nil {
		return reference.TissueReference{}, err
	}
	return created, nil
}

// Update overwrites the mutable fields of a live record and appends an
// UPDATE audit entry carrying both the old and the new values.
func (s *Service) Update(ctx context.Context, id uint64, input Input) (reference.TissueReference, error) {
	input = input.normalized()
	if err := reference.ValidateInput(input.Tissue, input.AlphaBeta); err != nil {
		return reference.TissueReference{}, err
	}

	var updated reference.TissueReference
	err := s.uow.WithTx(ctx, func(ctx context.Context) error {
		current, err := s.refs.ByID(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return reference.ErrNotFound
		}

		exists, err := s.refs.TissueExists(ctx, input.Tissue, id)
		if err != nil {
			return err
		}
		if exists {
			return reference.ErrDuplicateTissue
		}

		updated = reference.TissueReference{
			ID:          id,
			Tissue:      input.Tissue,
			AlphaBeta:   input.AlphaBeta,
			Description: input.Description,
			Citations:   input.Citations,
		}
		if err := s.refs.Update(ctx, updated); err != nil {
			return err
		}

		_, err = s.audit.Append(ctx, reference.AuditEntry{
			Action:              reference.ActionUpdate,
			Tissue:              updated.Tissue,
			AlphaBeta:           updated.AlphaBeta,
			Description:         updated.Description,
			PreviousTissue:      &current.Tissue,
			PreviousAlphaBeta:   &current.AlphaBeta,
			PreviousDescription: &current.Description,
			Timestamp:           s.now(),
		})
		return err
	})
	if err != nil {
		return reference.TissueReference{}, err
	}
	return updated, nil
}

// Delete removes a live record and appends a DELETE audit entry recording
// what was removed.
func (s *Service) Delete(ctx context.Context, id uint64) error {
	return s.uow.WithTx(ctx, func(ctx context.Context) error {
		current, err := s.refs.ByID(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return reference.ErrNotFound
		}

		if err := s.refs.Delete(ctx, id); err != nil {
			return err
		}

		_, err = s.audit.Append(ctx, reference.AuditEntry{
			Action:              reference.ActionDelete,
			Tissue:              current.Tissue,
			AlphaBeta:           current.AlphaBeta,
			Description:         current.Description,
			PreviousTissue:      &current.Tissue,
			PreviousAlphaBeta:   &current.AlphaBeta,
			PreviousDescription: &current.Description,
			Timestamp:           s.now(),
		})
		return err
	})
}

func (s *Service) History(ctx context.Context, limit, offset int) ([]reference.AuditEntry, error) {
	return s.audit.Recent(ctx, limit, offset)
}

func (s *Service) HistoryRange(ctx context.Context, start, end time.Time) ([]reference.AuditEntry, error) {
	return s.audit.Query(ctx, start, end)
}

func (s *Service) HistoryCount(ctx context.Context) (int64, error) {
	return s.audit.Count(ctx)
}

// TrimHistory removes audit entries older than the given number of days;
// days <= 0 falls back to the configured retention horizon. This is the
// only operation that deletes audit rows, and it is never run implicitly.
func (s *Service) TrimHistory(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		days = s.cfg.Audit.RetentionDays
	}
	cutoff := s.now().AddDate(0, 0, -days)
	return s.audit.Trim(ctx, cutoff)
}

// Seed populates an empty registry with the literature defaults. Every seed
// row goes through Add, so seeding is audited like any user mutation.
func (s *Service) Seed(ctx context.Context) (int, error) {
	if !s.cfg.Seed.Enabled {
		return 0, nil
	}

	count, err := s.refs.Count(ctx)
	if err != nil {
		return 0, errs.Wrap(err, "count references before seeding")
	}
	if count > 0 {
		return 0, nil
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "usecase.registry"))
	added := 0
	for _, seed := range seedReferences {
		if _, err := s.Add(ctx, seed); err != nil {
			if errors.Is(err, reference.ErrDuplicateTissue) {
				continue
			}
			return added, errs.Wrapf(err, "seed reference %q", seed.Tissue)
		}
		added++
	}

	logging.Info(logCtx, "seeded reference registry", slog.Int("added", added))
	return added, nil
}
