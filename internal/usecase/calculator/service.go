// Package calculator drives the validate → compute → persist flow and the
// queries over saved calculations.
package calculator

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"radassist/internal/bootstrap/logging"
	"radassist/internal/domain/dose"
	"radassist/internal/domain/reference"
	"radassist/internal/errs"
	"radassist/internal/ports"
)

// lastInputsKey is the app-state slot remembering the most recent inputs.
const lastInputsKey = "calculator.last_inputs"

type Service struct {
	calcs ports.CalculationStore
	refs  ports.ReferenceStore
	kv    ports.KV
	now   func() time.Time
}

func NewService(calcs ports.CalculationStore, refs ports.ReferenceStore, kv ports.KV) *Service {
	return &Service{calcs: calcs, refs: refs, kv: kv, now: time.Now}
}

// Request carries raw user-entered strings. Either AlphaBetaText or Tissue
// must be set; a named tissue resolves alpha/beta from the registry and
// snapshots the label onto the stored calculation.
type Request struct {
	DoseText      string
	FractionsText string
	AlphaBetaText string
	Tissue        string
}

// Result is a computed (and possibly persisted) dose conversion together
// with the advisory texts for the chosen regimen.
type Result struct {
	Calculation ports.Calculation
	TotalDose   float64
	Safety      dose.Safety
	Explanation string
	Saved       bool
}

// LastInputs is the remembered previous request.
type LastInputs struct {
	Dose      string `json:"dose"`
	Fractions string `json:"fractions"`
	AlphaBeta string `json:"alphaBeta"`
	Tissue    string `json:"tissue,omitempty"`
}

// Compute validates and converts without persisting.
func (s *Service) Compute(ctx context.Context, req Request) (Result, error) {
	result, _, err := s.compute(ctx, req)
	return result, err
}

// ComputeAndSave validates, converts, and persists the result with values
// rounded to 4 decimals and a creation timestamp. The alpha/beta value and
// tissue label are copied onto the row; later reference edits or deletes
// never reach back into it.
func (s *Service) ComputeAndSave(ctx context.Context, req Request) (Result, error) {
	result, inputs, err := s.compute(ctx, req)
	if err != nil {
		return Result{}, err
	}

	calc := result.Calculation
	calc.BED = dose.Round4(calc.BED)
	calc.EQD2 = dose.Round4(calc.EQD2)
	calc.Date = s.now()

	id, err := s.calcs.Save(ctx, calc)
	if err != nil {
		return Result{}, errs.Wrap(err, "save calculation")
	}
	calc.ID = id
	result.Calculation = calc
	result.Saved = true

	s.rememberInputs(ctx, req, inputs)
	return result, nil
}

func (s *Service) compute(ctx context.Context, req Request) (Result, dose.Inputs, error) {
	alphaBetaText := req.AlphaBetaText
	label := ""

	if req.Tissue != "" {
		ref, err := s.refs.ByTissue(ctx, req.Tissue)
		if err != nil {
			return Result{}, dose.Inputs{}, errs.Wrapf(err, "look up tissue %q", req.Tissue)
		}
		if ref == nil {
			return Result{}, dose.Inputs{}, errs.Wrapf(reference.ErrNotFound, "tissue %q", req.Tissue)
		}
		alphaBetaText = strconv.FormatFloat(ref.AlphaBeta, 'f', -1, 64)
		label = ref.Tissue
	}

	inputs, err := dose.ParseInputs(req.DoseText, req.FractionsText, alphaBetaText)
	if err != nil {
		return Result{}, dose.Inputs{}, err
	}

	bed, err := dose.ComputeBED(inputs.Dose, inputs.Fractions, inputs.AlphaBeta)
	if err != nil {
		return Result{}, dose.Inputs{}, err
	}
	eqd2, err := dose.ComputeEQD2(bed, inputs.AlphaBeta)
	if err != nil {
		return Result{}, dose.Inputs{}, err
	}

	return Result{
		Calculation: ports.Calculation{
			Dose:        inputs.Dose,
			Fractions:   inputs.Fractions,
			AlphaBeta:   inputs.AlphaBeta,
			BED:         bed,
			EQD2:        eqd2,
			TissueLabel: label,
		},
		TotalDose:   inputs.Dose * float64(inputs.Fractions),
		Safety:      dose.CheckSafety(inputs.Dose, inputs.AlphaBeta),
		Explanation: dose.ExplainAlphaBeta(inputs.AlphaBeta),
	}, inputs, nil
}

// rememberInputs is best effort: a cache failure never fails a calculation.
func (s *Service) rememberInputs(ctx context.Context, req Request, inputs dose.Inputs) {
	raw, err := json.Marshal(LastInputs{
		Dose:      strconv.FormatFloat(inputs.Dose, 'f', -1, 64),
		Fractions: strconv.Itoa(inputs.Fractions),
		AlphaBeta: strconv.FormatFloat(inputs.AlphaBeta, 'f', -1, 64),
		Tissue:    req.Tissue,
	})
	if err != nil {
		return
	}
	if err := s.kv.Set(ctx, lastInputsKey, string(raw)); err != nil {
		logging.Warn(ctx, "remember last inputs failed",
			slog.String("component", "usecase.calculator"),
			slog.Any("err", errs.Loggable(err)),
		)
	}
}

// LastInputs returns the most recently saved request, if any.
func (s *Service) LastInputs(ctx context.Context) (LastInputs, bool, error) {
	raw, found, err := s.kv.Get(ctx, lastInputsKey)
	if err != nil {
		return LastInputs{}, false, errs.Wrap(err, "read last inputs")
	}
	if !found {
		return LastInputs{}, false, nil
	}

	var last LastInputs
	if err := json.Unmarshal([]byte(raw), &last); err != nil {
		// A stale or malformed slot reads as absent.
		return LastInputs{}, false, nil
	}
	return last, true, nil
}

func (s *Service) History(ctx context.Context, limit int) ([]ports.Calculation, error) {
	return s.calcs.List(ctx, limit)
}

func (s *Service) Stats(ctx context.Context) (ports.CalculationStats, error) {
	return s.calcs.Stats(ctx)
}

func (s *Service) Delete(ctx context.Context, id uint64) error {
	return s.calcs.Delete(ctx, id)
}

func (s *Service) Clear(ctx context.Context) (int64, error) {
	return s.calcs.DeleteAll(ctx)
}
