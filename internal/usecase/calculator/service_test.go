package calculator

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"radassist/internal/domain/dose"
	"radassist/internal/domain/reference"
	"radassist/internal/infrastructure/persistence/memory"
)

func setupService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	svc := NewService(store.Calculations(), store.References(), store.KV())
	return svc, store
}

func TestComputeAndSaveStandardFractionation(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	result, err := svc.ComputeAndSave(ctx, Request{DoseText: "2", FractionsText: "30", AlphaBetaText: "3"})
	if err != nil {
		t.Fatalf("ComputeAndSave() error = %v", err)
	}

	calc := result.Calculation
	if calc.ID == 0 {
		t.Fatalf("ComputeAndSave() id = 0")
	}
	if math.Abs(calc.BED-100) > 1e-9 {
		t.Fatalf("ComputeAndSave() bed = %v, want 100", calc.BED)
	}
	if math.Abs(calc.EQD2-60) > 1e-9 {
		t.Fatalf("ComputeAndSave() eqd2 = %v, want 60", calc.EQD2)
	}
	if math.Abs(result.TotalDose-60) > 1e-9 {
		t.Fatalf("ComputeAndSave() total dose = %v, want 60", result.TotalDose)
	}
	if !calc.Date.Equal(fixed) {
		t.Fatalf("ComputeAndSave() date = %v", calc.Date)
	}
	if !result.Saved {
		t.Fatalf("ComputeAndSave() saved = false")
	}

	history, err := svc.History(ctx, 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("History() len = %d", len(history))
	}
}

func TestComputeAndSaveRoundsPersistedValues(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	// 7 x 3.33 Gy at alpha/beta 3 produces a long fraction.
	result, err := svc.ComputeAndSave(ctx, Request{DoseText: "3.33", FractionsText: "7", AlphaBetaText: "3"})
	if err != nil {
		t.Fatalf("ComputeAndSave() error = %v", err)
	}

	if result.Calculation.BED != dose.Round4(result.Calculation.BED) {
		t.Fatalf("ComputeAndSave() bed not rounded: %v", result.Calculation.BED)
	}
	if result.Calculation.EQD2 != dose.Round4(result.Calculation.EQD2) {
		t.Fatalf("ComputeAndSave() eqd2 not rounded: %v", result.Calculation.EQD2)
	}
}

func TestComputeDryRunDoesNotPersist(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	result, err := svc.Compute(ctx, Request{DoseText: "2", FractionsText: "30", AlphaBetaText: "10"})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if result.Saved {
		t.Fatalf("Compute() saved = true")
	}

	history, err := svc.History(ctx, 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("History() len = %d after dry run", len(history))
	}
}

func TestComputeAcceptsDecimalComma(t *testing.T) {
	svc, _ := setupService(t)

	result, err := svc.Compute(context.Background(), Request{DoseText: "2,5", FractionsText: "20", AlphaBetaText: "1,5"})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if result.Calculation.Dose != 2.5 || result.Calculation.AlphaBeta != 1.5 {
		t.Fatalf("Compute() = %+v", result.Calculation)
	}
}

func TestComputeResolvesTissueFromRegistry(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()

	if _, err := store.References().Insert(ctx, reference.TissueReference{
		Tissue:    "Prostate adenocarcinoma",
		AlphaBeta: 1.5,
	}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	result, err := svc.ComputeAndSave(ctx, Request{
		DoseText:      "3",
		FractionsText: "20",
		Tissue:        "prostate adenocarcinoma",
	})
	if err != nil {
		t.Fatalf("ComputeAndSave() error = %v", err)
	}
	if result.Calculation.AlphaBeta != 1.5 {
		t.Fatalf("ComputeAndSave() alpha/beta = %v", result.Calculation.AlphaBeta)
	}
	if result.Calculation.TissueLabel != "Prostate adenocarcinoma" {
		t.Fatalf("ComputeAndSave() tissue label = %q", result.Calculation.TissueLabel)
	}
}

func TestComputeUnknownTissueFails(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Compute(context.Background(), Request{
		DoseText:      "2",
		FractionsText: "30",
		Tissue:        "Unobtainium",
	})
	if !errors.Is(err, reference.ErrNotFound) {
		t.Fatalf("Compute() error = %v, want %v", err, reference.ErrNotFound)
	}
}

func TestComputeInvalidInputFails(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Compute(context.Background(), Request{DoseText: "0", FractionsText: "30", AlphaBetaText: "3"})
	if !errors.Is(err, dose.ErrDoseNotPositive) {
		t.Fatalf("Compute() error = %v, want %v", err, dose.ErrDoseNotPositive)
	}
}

func TestLastInputsRoundTrip(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, found, err := svc.LastInputs(ctx)
	if err != nil {
		t.Fatalf("LastInputs() error = %v", err)
	}
	if found {
		t.Fatalf("LastInputs() found=true before any save")
	}

	if _, err := svc.ComputeAndSave(ctx, Request{DoseText: "2,5", FractionsText: "25", AlphaBetaText: "3"}); err != nil {
		t.Fatalf("ComputeAndSave() error = %v", err)
	}

	last, found, err := svc.LastInputs(ctx)
	if err != nil {
		t.Fatalf("LastInputs() error = %v", err)
	}
	if !found {
		t.Fatalf("LastInputs() found=false after save")
	}
	// Remembered in normalized form.
	if last.Dose != "2.5" || last.Fractions != "25" || last.AlphaBeta != "3" {
		t.Fatalf("LastInputs() = %+v", last)
	}
}

func TestLastInputsMalformedSlotReadsAsAbsent(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()

	if err := store.KV().Set(ctx, lastInputsKey, "{not json"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	_, found, err := svc.LastInputs(ctx)
	if err != nil {
		t.Fatalf("LastInputs() error = %v", err)
	}
	if found {
		t.Fatalf("LastInputs() found=true for malformed slot")
	}
}

func TestDeleteAndClear(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	first, err := svc.ComputeAndSave(ctx, Request{DoseText: "2", FractionsText: "30", AlphaBetaText: "3"})
	if err != nil {
		t.Fatalf("ComputeAndSave() error = %v", err)
	}
	if _, err := svc.ComputeAndSave(ctx, Request{DoseText: "3", FractionsText: "10", AlphaBetaText: "10"}); err != nil {
		t.Fatalf("ComputeAndSave() error = %v", err)
	}

	if err := svc.Delete(ctx, first.Calculation.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	removed, err := svc.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if removed != 1 {
		t.Fatalf("Clear() removed = %d", removed)
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Total != 0 {
		t.Fatalf("Stats() total = %d", stats.Total)
	}
}
