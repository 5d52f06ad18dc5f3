package dose

import (
	"errors"
	"testing"
)

func TestParseInputs(t *testing.T) {
	got, err := ParseInputs("2.5", "25", "3")
	if err != nil {
		t.Fatalf("ParseInputs() error = %v", err)
	}
	if got.Dose != 2.5 || got.Fractions != 25 || got.AlphaBeta != 3 {
		t.Fatalf("ParseInputs() = %+v", got)
	}
}

func TestParseInputsAcceptsDecimalComma(t *testing.T) {
	got, err := ParseInputs("2,5", "25", "1,5")
	if err != nil {
		t.Fatalf("ParseInputs() error = %v", err)
	}
	if got.Dose != 2.5 || got.AlphaBeta != 1.5 {
		t.Fatalf("ParseInputs() = %+v, want dose 2.5 and alpha/beta 1.5", got)
	}
}

func TestParseInputsTrimsWhitespace(t *testing.T) {
	got, err := ParseInputs("  2 ", " 30 ", " 10 ")
	if err != nil {
		t.Fatalf("ParseInputs() error = %v", err)
	}
	if got.Dose != 2 || got.Fractions != 30 || got.AlphaBeta != 10 {
		t.Fatalf("ParseInputs() = %+v", got)
	}
}

func TestParseInputsRejections(t *testing.T) {
	tests := []struct {
		name      string
		dose      string
		fractions string
		alphaBeta string
		wantErr   error
	}{
		{name: "empty dose", dose: "", fractions: "30", alphaBeta: "3", wantErr: ErrDoseRequired},
		{name: "blank dose", dose: "   ", fractions: "30", alphaBeta: "3", wantErr: ErrDoseRequired},
		{name: "empty fractions", dose: "2", fractions: "", alphaBeta: "3", wantErr: ErrFractionsRequired},
		{name: "empty alpha/beta", dose: "2", fractions: "30", alphaBeta: "", wantErr: ErrAlphaBetaRequired},
		{name: "dose not numeric", dose: "abc", fractions: "30", alphaBeta: "3", wantErr: ErrDoseNotNumeric},
		{name: "dose zero", dose: "0", fractions: "30", alphaBeta: "3", wantErr: ErrDoseNotPositive},
		{name: "dose negative", dose: "-1", fractions: "30", alphaBeta: "3", wantErr: ErrDoseNotPositive},
		{name: "dose too high", dose: "20.1", fractions: "30", alphaBeta: "3", wantErr: ErrDoseTooHigh},
		{name: "fractions fractional", dose: "2", fractions: "2.5", alphaBeta: "3", wantErr: ErrFractionsNotWhole},
		{name: "fractions not numeric", dose: "2", fractions: "many", alphaBeta: "3", wantErr: ErrFractionsNotWhole},
		{name: "fractions zero", dose: "2", fractions: "0", alphaBeta: "3", wantErr: ErrFractionsNotPositive},
		{name: "fractions too many", dose: "2", fractions: "101", alphaBeta: "3", wantErr: ErrFractionsTooMany},
		{name: "alpha/beta not numeric", dose: "2", fractions: "30", alphaBeta: "x", wantErr: ErrAlphaBetaNotNumber},
		{name: "alpha/beta zero", dose: "2", fractions: "30", alphaBeta: "0", wantErr: ErrAlphaBetaNotPositive},
		{name: "alpha/beta too high", dose: "2", fractions: "30", alphaBeta: "100.5", wantErr: ErrAlphaBetaTooHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseInputs(tt.dose, tt.fractions, tt.alphaBeta); !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseInputs() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseInputsBoundaryValuesPass(t *testing.T) {
	got, err := ParseInputs("20", "100", "100")
	if err != nil {
		t.Fatalf("ParseInputs() error = %v", err)
	}
	if got.Dose != MaxDosePerFraction || got.Fractions != MaxFractions || got.AlphaBeta != MaxAlphaBeta {
		t.Fatalf("ParseInputs() = %+v", got)
	}
}
