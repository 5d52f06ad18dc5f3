// Package reference defines the tissue alpha/beta reference records, their
// audit trail, and the domain rules the registry enforces over them.
package reference

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrTissueRequired       = errors.New("tissue name is required")
	ErrAlphaBetaNotPositive = errors.New("alpha/beta ratio must be positive")
	ErrDuplicateTissue      = errors.New("tissue already exists")
	ErrNotFound             = errors.New("reference not found")
)

// Citation points at the literature backing a reference value.
type Citation struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
	URL   string `json:"url"`
}

// TissueReference is a named radiosensitivity record. Tissue names are
// unique case-insensitively among live records.
type TissueReference struct {
	ID          uint64
	Tissue      string
	AlphaBeta   float64
	Description string
	Citations   []Citation
}

// Action is the kind of mutation an audit entry records.
type Action string

const (
	ActionAdd    Action = "ADD"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// AuditEntry is an immutable record of one reference mutation. Previous*
// fields carry the pre-mutation state for UPDATE and DELETE.
type AuditEntry struct {
	ID                  uint64
	Action              Action
	Tissue              string
	AlphaBeta           float64
	Description         string
	PreviousTissue      *string
	PreviousAlphaBeta   *float64
	PreviousDescription *string
	Timestamp           time.Time
}

// EncodeCitations serializes the ordered citation list for storage.
func EncodeCitations(citations []Citation) string {
	if len(citations) == 0 {
		return "[]"
	}

	raw, err := json.Marshal(citations)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

// DecodeCitations parses the stored citation blob. A malformed blob degrades
// to an empty list; a single bad row must not fail a whole read.
func DecodeCitations(raw string) []Citation {
	if raw == "" || raw == "[]" {
		return nil
	}

	var citations []Citation
	if err := json.Unmarshal([]byte(raw), &citations); err != nil {
		return nil
	}
	return citations
}

// ValidateInput checks the mutable fields shared by add and update.
func ValidateInput(tissue string, alphaBeta float64) error {
	if tissue == "" {
		return ErrTissueRequired
	}
	if alphaBeta <= 0 {
		return ErrAlphaBetaNotPositive
	}
	return nil
}
