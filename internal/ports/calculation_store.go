package ports

import (
	"context"
	"errors"
	"time"
)

var ErrCalculationNotFound = errors.New("calculation not found")

// Calculation is one computed result. AlphaBeta and TissueLabel are copied
// by value at computation time; reference edits never reach back into saved
// calculations.
type Calculation struct {
	ID          uint64
	Dose        float64
	Fractions   int
	AlphaBeta   float64
	BED         float64
	EQD2        float64
	TissueLabel string
	Date        time.Time
}

type CalculationStats struct {
	Total  int64
	Today  int64
	Recent []Calculation
}

// CalculationStore is an append-only record of computed results: rows are
// created and deleted, never updated.
type CalculationStore interface {
	Save(ctx context.Context, calc Calculation) (uint64, error)
	// List returns calculations newest first; limit <= 0 means all.
	List(ctx context.Context, limit int) ([]Calculation, error)
	Delete(ctx context.Context, id uint64) error
	DeleteAll(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (CalculationStats, error)
}
