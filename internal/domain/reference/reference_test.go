package reference

import (
	"errors"
	"testing"
)

func TestValidateInput(t *testing.T) {
	if err := ValidateInput("Spinal cord", 2); err != nil {
		t.Fatalf("ValidateInput() error = %v", err)
	}
	if err := ValidateInput("", 2); !errors.Is(err, ErrTissueRequired) {
		t.Fatalf("ValidateInput() error = %v, want %v", err, ErrTissueRequired)
	}
	if err := ValidateInput("Spinal cord", 0); !errors.Is(err, ErrAlphaBetaNotPositive) {
		t.Fatalf("ValidateInput() error = %v, want %v", err, ErrAlphaBetaNotPositive)
	}
	if err := ValidateInput("Spinal cord", -1.5); !errors.Is(err, ErrAlphaBetaNotPositive) {
		t.Fatalf("ValidateInput() error = %v, want %v", err, ErrAlphaBetaNotPositive)
	}
}

func TestEncodeDecodeCitations(t *testing.T) {
	citations := []Citation{
		{Title: "Fowler JF. The linear-quadratic formula", Year: 1989, URL: "https://pubmed.ncbi.nlm.nih.gov/2689390/"},
		{Title: "ESTRO/EORTC recommendations", Year: 1995},
	}

	decoded := DecodeCitations(EncodeCitations(citations))
	if len(decoded) != 2 {
		t.Fatalf("DecodeCitations() len = %d", len(decoded))
	}
	if decoded[0] != citations[0] || decoded[1] != citations[1] {
		t.Fatalf("DecodeCitations() = %+v", decoded)
	}
}

func TestEncodeCitationsEmpty(t *testing.T) {
	if got := EncodeCitations(nil); got != "[]" {
		t.Fatalf("EncodeCitations(nil) = %q", got)
	}
	if got := EncodeCitations([]Citation{}); got != "[]" {
		t.Fatalf("EncodeCitations([]) = %q", got)
	}
}

func TestDecodeCitationsDegradesOnMalformedBlob(t *testing.T) {
	for _, raw := range []string{"", "[]", "{not json", `{"title":"object not array"}`} {
		if got := DecodeCitations(raw); got != nil {
			t.Fatalf("DecodeCitations(%q) = %+v, want nil", raw, got)
		}
	}
}
