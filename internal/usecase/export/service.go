// Package export builds derived, lossy projections of the stored data for
// sharing. Exports read through the same ports as everything else and never
// mutate.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"radassist/internal/domain/reference"
	"radassist/internal/errs"
	"radassist/internal/ports"
)

const (
	DatasetCalculations = "calculations"
	DatasetReferences   = "references"
)

var errInvalidDataset = errors.New("unknown export dataset")

type Service struct {
	calcs ports.CalculationStore
	refs  ports.ReferenceStore
	audit ports.AuditLog
	now   func() time.Time
}

func NewService(calcs ports.CalculationStore, refs ports.ReferenceStore, audit ports.AuditLog) *Service {
	return &Service{calcs: calcs, refs: refs, audit: audit, now: time.Now}
}

type calculationRow struct {
	ID          uint64  `json:"id"`
	Date        string  `json:"date"`
	Dose        float64 `json:"dose"`
	Fractions   int     `json:"fractions"`
	AlphaBeta   float64 `json:"alphaBeta"`
	BED         float64 `json:"bed"`
	EQD2        float64 `json:"eqd2"`
	TotalDose   float64 `json:"totalDose"`
	TissueLabel string  `json:"tissueLabel,omitempty"`
}

type referenceRow struct {
	ID          uint64               `json:"id"`
	Tissue      string               `json:"tissue"`
	AlphaBeta   float64              `json:"alphaBeta"`
	Description string               `json:"description,omitempty"`
	Citations   []reference.Citation `json:"citations,omitempty"`
}

type auditRow struct {
	ID                  uint64   `json:"id"`
	Action              string   `json:"action"`
	Tissue              string   `json:"tissue"`
	AlphaBeta           float64  `json:"alphaBeta"`
	Description         string   `json:"description,omitempty"`
	PreviousTissue      *string  `json:"previousTissue,omitempty"`
	PreviousAlphaBeta   *float64 `json:"previousAlphaBeta,omitempty"`
	PreviousDescription *string  `json:"previousDescription,omitempty"`
	Timestamp           string   `json:"timestamp"`
}

// Manifest is the JSON export envelope.
type Manifest struct {
	ExportID     string           `json:"exportId"`
	ExportedAt   string           `json:"exportedAt"`
	Calculations []calculationRow `json:"calculations"`
	References   []referenceRow   `json:"references"`
	Audit        []auditRow       `json:"audit"`
}

func (s *Service) snapshot(ctx context.Context) (Manifest, error) {
	calcs, err := s.calcs.List(ctx, 0)
	if err != nil {
		return Manifest{}, errs.Wrap(err, "export calculations")
	}
	refs, err := s.refs.List(ctx)
	if err != nil {
		return Manifest{}, errs.Wrap(err, "export references")
	}
	audit, err := s.audit.Recent(ctx, 0, 0)
	if err != nil {
		return Manifest{}, errs.Wrap(err, "export audit trail")
	}

	m := Manifest{
		ExportID:     uuid.NewString(),
		ExportedAt:   s.now().UTC().Format(time.RFC3339),
		Calculations: make([]calculationRow, 0, len(calcs)),
		References:   make([]referenceRow, 0, len(refs)),
		Audit:        make([]auditRow, 0, len(audit)),
	}
	for _, c := range calcs {
		m.Calculations = append(m.Calculations, mapCalculation(c))
	}
	for _, r := range refs {
		m.References = append(m.References, referenceRow{
			ID:          r.ID,
			Tissue:      r.Tissue,
			AlphaBeta:   r.AlphaBeta,
			Description: r.Description,
			Citations:   r.Citations,
		})
	}
	for _, e := range audit {
		m.Audit = append(m.Audit, auditRow{
			ID:                  e.ID,
			Action:              string(e.Action),
			Tissue:              e.Tissue,
			AlphaBeta:           e.AlphaBeta,
			Description:         e.Description,
			PreviousTissue:      e.PreviousTissue,
			PreviousAlphaBeta:   e.PreviousAlphaBeta,
			PreviousDescription: e.PreviousDescription,
			Timestamp:           e.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	return m, nil
}

// JSON renders the full snapshot as an indented manifest.
func (s *Service) JSON(ctx context.Context) ([]byte, error) {
	m, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, errs.Wrap(err, "encode export manifest")
	}
	return raw, nil
}

// CSV renders one dataset as comma-separated rows with a header line.
func (s *Service) CSV(ctx context.Context, dataset string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	switch dataset {
	case DatasetCalculations:
		calcs, err := s.calcs.List(ctx, 0)
		if err != nil {
			return nil, errs.Wrap(err, "export calculations")
		}
		if err := w.Write([]string{"date", "dose", "fractions", "alphaBeta", "bed", "eqd2", "totalDose", "tissue"}); err != nil {
			return nil, errs.Wrap(err, "write csv header")
		}
		for _, c := range calcs {
			row := mapCalculation(c)
			record := []string{
				row.Date,
				formatFloat(row.Dose),
				strconv.Itoa(row.Fractions),
				formatFloat(row.AlphaBeta),
				formatFloat(row.BED),
				formatFloat(row.EQD2),
				formatFloat(row.TotalDose),
				row.TissueLabel,
			}
			if err := w.Write(record); err != nil {
				return nil, errs.Wrap(err, "write csv row")
			}
		}
	case DatasetReferences:
		refs, err := s.refs.List(ctx)
		if err != nil {
			return nil, errs.Wrap(err, "export references")
		}
		if err := w.Write([]string{"tissue", "alphaBeta", "description", "citations"}); err != nil {
			return nil, errs.Wrap(err, "write csv header")
		}
		for _, r := range refs {
			record := []string{
				r.Tissue,
				formatFloat(r.AlphaBeta),
				r.Description,
				reference.EncodeCitations(r.Citations),
			}
			if err := w.Write(record); err != nil {
				return nil, errs.Wrap(err, "write csv row")
			}
		}
	default:
		return nil, errs.Wrapf(errInvalidDataset, "dataset %q", dataset)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errs.Wrap(err, "flush csv")
	}
	return buf.Bytes(), nil
}

// XLSX writes a workbook with Calculations and References sheets to path.
func (s *Service) XLSX(ctx context.Context, path string) error {
	m, err := s.snapshot(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const calcSheet = "Calculations"
	if err := f.SetSheetName(f.GetSheetName(0), calcSheet); err != nil {
		return errs.Wrap(err, "name calculations sheet")
	}
	calcHeader := []any{"Date", "Dose (Gy)", "Fractions", "Alpha/Beta", "BED (Gy)", "EQD2 (Gy)", "Total dose (Gy)", "Tissue"}
	if err := writeSheetRow(f, calcSheet, 1, calcHeader); err != nil {
		return err
	}
	for i, row := range m.Calculations {
		values := []any{row.Date, row.Dose, row.Fractions, row.AlphaBeta, row.BED, row.EQD2, row.TotalDose, row.TissueLabel}
		if err := writeSheetRow(f, calcSheet, i+2, values); err != nil {
			return err
		}
	}

	const refSheet = "References"
	if _, err := f.NewSheet(refSheet); err != nil {
		return errs.Wrap(err, "create references sheet")
	}
	refHeader := []any{"Tissue", "Alpha/Beta", "Description", "Citations"}
	if err := writeSheetRow(f, refSheet, 1, refHeader); err != nil {
		return err
	}
	for i, row := range m.References {
		values := []any{row.Tissue, row.AlphaBeta, row.Description, reference.EncodeCitations(row.Citations)}
		if err := writeSheetRow(f, refSheet, i+2, values); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errs.Wrapf(err, "save workbook %q", path)
	}
	return nil
}

func writeSheetRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return errs.Wrap(err, "compute cell name")
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return errs.Wrap(err, "set cell value")
		}
	}
	return nil
}

func mapCalculation(c ports.Calculation) calculationRow {
	return calculationRow{
		ID:          c.ID,
		Date:        c.Date.UTC().Format(time.RFC3339),
		Dose:        c.Dose,
		Fractions:   c.Fractions,
		AlphaBeta:   c.AlphaBeta,
		BED:         c.BED,
		EQD2:        c.EQD2,
		TotalDose:   c.Dose * float64(c.Fractions),
		TissueLabel: c.TissueLabel,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
