// Package dose implements the linear-quadratic dose conversions (BED, EQD2)
// and the input validation in front of them. Everything here is pure and
// storage-free; persistence and formatting belong to the callers.
package dose

import (
	"errors"
	"math"
)

const (
	// MaxBED and MaxEQD2 cap non-physical outputs from pathological inputs.
	MaxBED  = 1000.0
	MaxEQD2 = 500.0

	// DefaultReferenceDose is the per-fraction dose EQD2 normalizes to.
	DefaultReferenceDose = 2.0
)

var (
	ErrDoseNotPositive      = errors.New("dose per fraction must be positive")
	ErrFractionsNotPositive = errors.New("fraction count must be positive")
	ErrAlphaBetaNotPositive = errors.New("alpha/beta ratio must be positive")
	ErrBEDNotPositive       = errors.New("bed must be positive")
	ErrNotFinite            = errors.New("inputs must be finite numbers")
)

// ComputeBED returns the biologically effective dose for a fractionation
// regimen: totalDose * (1 + d/ab), clamped to MaxBED.
func ComputeBED(dosePerFraction float64, fractions int, alphaBeta float64) (float64, error) {
	if !isFinite(dosePerFraction) || !isFinite(alphaBeta) {
		return 0, ErrNotFinite
	}
	if dosePerFraction <= 0 {
		return 0, ErrDoseNotPositive
	}
	if fractions <= 0 {
		return 0, ErrFractionsNotPositive
	}
	if alphaBeta <= 0 {
		return 0, ErrAlphaBetaNotPositive
	}

	totalDose := dosePerFraction * float64(fractions)
	bed := totalDose * (1 + dosePerFraction/alphaBeta)

	return math.Min(bed, MaxBED), nil
}

// ComputeEQD2 re-expresses a BED as the total dose delivered in 2 Gy
// fractions with the same biological effect, clamped to MaxEQD2.
func ComputeEQD2(bed, alphaBeta float64) (float64, error) {
	if !isFinite(bed) || !isFinite(alphaBeta) {
		return 0, ErrNotFinite
	}
	if bed <= 0 {
		return 0, ErrBEDNotPositive
	}
	if alphaBeta <= 0 {
		return 0, ErrAlphaBetaNotPositive
	}

	eqd2 := bed / (1 + DefaultReferenceDose/alphaBeta)

	return math.Min(eqd2, MaxEQD2), nil
}

// ComputeNTD is the normalized total dose at an arbitrary reference dose per
// fraction. NTD at 2 Gy equals EQD2.
func ComputeNTD(dosePerFraction float64, fractions int, alphaBeta, referenceDose float64) (float64, error) {
	if !isFinite(referenceDose) || referenceDose <= 0 {
		return 0, ErrDoseNotPositive
	}

	bed, err := ComputeBED(dosePerFraction, fractions, alphaBeta)
	if err != nil {
		return 0, err
	}

	return bed / (1 + referenceDose/alphaBeta), nil
}

// Round4 rounds to 4 decimal places. Persisted results are stored rounded to
// bound precision drift; display formatting stays with the caller.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
