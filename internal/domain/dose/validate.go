package dose

import (
	"errors"
	"strconv"
	"strings"
)

// Clinical plausibility bounds. They catch transposition and unit errors,
// not mathematical limits.
const (
	MaxDosePerFraction = 20.0
	MaxFractions       = 100
	MaxAlphaBeta       = 100.0
)

var (
	ErrDoseRequired       = errors.New("dose per fraction is required")
	ErrDoseNotNumeric     = errors.New("dose per fraction must be a number")
	ErrDoseTooHigh        = errors.New("dose per fraction exceeds 20 Gy")
	ErrFractionsRequired  = errors.New("fraction count is required")
	ErrFractionsNotWhole  = errors.New("fraction count must be a whole number")
	ErrFractionsTooMany   = errors.New("fraction count exceeds 100")
	ErrAlphaBetaRequired  = errors.New("alpha/beta ratio is required")
	ErrAlphaBetaNotNumber = errors.New("alpha/beta ratio must be a number")
	ErrAlphaBetaTooHigh   = errors.New("alpha/beta ratio exceeds 100 Gy")
)

// Inputs is a validated regimen ready for the dose model.
type Inputs struct {
	Dose      float64
	Fractions int
	AlphaBeta float64
}

// ParseInputs normalizes and checks raw user-entered strings. Dose and
// alpha/beta accept both '.' and ',' as the decimal separator. Each rejection
// carries a user-facing reason; the function never touches storage.
func ParseInputs(doseText, fractionsText, alphaBetaText string) (Inputs, error) {
	doseText = strings.TrimSpace(doseText)
	fractionsText = strings.TrimSpace(fractionsText)
	alphaBetaText = strings.TrimSpace(alphaBetaText)

	if doseText == "" {
		return Inputs{}, ErrDoseRequired
	}
	if fractionsText == "" {
		return Inputs{}, ErrFractionsRequired
	}
	if alphaBetaText == "" {
		return Inputs{}, ErrAlphaBetaRequired
	}

	d, err := strconv.ParseFloat(normalizeDecimal(doseText), 64)
	if err != nil || !isFinite(d) {
		return Inputs{}, ErrDoseNotNumeric
	}
	if d <= 0 {
		return Inputs{}, ErrDoseNotPositive
	}
	if d > MaxDosePerFraction {
		return Inputs{}, ErrDoseTooHigh
	}

	n, err := strconv.Atoi(fractionsText)
	if err != nil {
		return Inputs{}, ErrFractionsNotWhole
	}
	if n <= 0 {
		return Inputs{}, ErrFractionsNotPositive
	}
	if n > MaxFractions {
		return Inputs{}, ErrFractionsTooMany
	}

	ab, err := strconv.ParseFloat(normalizeDecimal(alphaBetaText), 64)
	if err != nil || !isFinite(ab) {
		return Inputs{}, ErrAlphaBetaNotNumber
	}
	if ab <= 0 {
		return Inputs{}, ErrAlphaBetaNotPositive
	}
	if ab > MaxAlphaBeta {
		return Inputs{}, ErrAlphaBetaTooHigh
	}

	return Inputs{Dose: d, Fractions: n, AlphaBeta: ab}, nil
}

func normalizeDecimal(s string) string {
	return strings.ReplaceAll(s, ",", ".")
}
