package report

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sasqart/radqa/internal/domain/catalog"
	"github.com/sasqart/radqa/internal/domain/equipment"
	"github.com/sasqart/radqa/pkg/qacalc"
)

var (
	ErrNotFound          = errors.New("report not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type equipmentStore interface {
	GetEquipment(ctx context.Context, orgID, id uuid.UUID) (*equipment.Equipment, error)
	CurrentBaseline(ctx context.Context, equipmentID uuid.UUID, testID string) (*equipment.Baseline, error)
}

type catalogStore interface {
	DefinitionIndex(ctx context.Context, orgID uuid.UUID, equipmentType, frequency string) (map[string]*catalog.TestDefinition, error)
}

type Service struct {
	repo       Repository
	equipment  equipmentStore
	catalog    catalogStore
	decayBands qacalc.DecayBands
	logger     zerolog.Logger
}

func NewService(repo Repository, eq equipmentStore, cat catalogStore, decayBands qacalc.DecayBands, logger zerolog.Logger) *Service {
	if decayBands.Investigate == 0 && decayBands.Fail == 0 {
		decayBands = qacalc.DefaultDecayBands
	}
	return &Service{repo: repo, equipment: eq, catalog: cat, decayBands: decayBands, logger: logger}
}

// CreateReport validates ownership, scores every line item that has a bound
// calculator against the current baseline, derives the overall result and
// persists the report together with its lines in one transaction.
func (s *Service) CreateReport(ctx context.Context, rep *Report) error {
	if rep.Performer == "" {
		return fmt.Errorf("performer is required")
	}
	if !validFrequencies[rep.Frequency] {
		return fmt.Errorf("invalid frequency: %s", rep.Frequency)
	}
	if rep.ReportDate.IsZero() {
		rep.ReportDate = time.Now().UTC()
	}
	eq, err := s.equipment.GetEquipment(ctx, rep.OrgID, rep.EquipmentID)
	if err != nil {
		return fmt.Errorf("equipment not found")
	}
	for _, l := range rep.Lines {
		if l.TestID == "" {
			return fmt.Errorf("line item without test_id")
		}
		if !validLineStatuses[l.Status] {
			return fmt.Errorf("invalid line status %q for test %s", l.Status, l.TestID)
		}
	}

	defs, err := s.catalog.DefinitionIndex(ctx, rep.OrgID, eq.EquipmentType, rep.Frequency)
	if err != nil {
		return fmt.Errorf("loading test catalog: %w", err)
	}
	for _, l := range rep.Lines {
		if err := s.score(ctx, rep, l, defs[l.TestID]); err != nil {
			return fmt.Errorf("scoring %s: %w", l.TestID, err)
		}
	}

	rep.Status = StatusSubmitted
	rep.OverallResult = deriveOverallResult(rep.Lines)

	return s.repo.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.InsertReport(ctx, rep); err != nil {
			return err
		}
		for _, l := range rep.Lines {
			l.ReportID = rep.ID
			if err := s.repo.InsertLine(ctx, l); err != nil {
				return err
			}
		}
		return nil
	})
}

// score runs the bound calculator for one line item, when there is one.
// Lines without a calculator, a parseable measurement, or the inputs their
// calculator needs are stored as entered.
func (s *Service) score(ctx context.Context, rep *Report, l *LineItem, def *catalog.TestDefinition) error {
	if l.Measurement == nil && l.Result != nil {
		if v, err := strconv.ParseFloat(*l.Result, 64); err == nil {
			l.Measurement = &v
		}
	}
	if def == nil || def.Calculator == nil || *def.Calculator == "" {
		return nil
	}
	tol := qacalc.ToleranceValue(def.Tolerance)
	act := qacalc.ToleranceValue(def.ActionLevel)

	baseline, err := s.equipment.CurrentBaseline(ctx, rep.EquipmentID, l.TestID)
	if err != nil {
		baseline = nil
	}

	var res *qacalc.Result
	switch *def.Calculator {
	case catalog.CalcPercentDiff, catalog.CalcDwellTime:
		if l.Measurement == nil {
			return nil
		}
		ref, ok := baselineValue(baseline, l.Energy)
		if !ok {
			return nil
		}
		if *def.Calculator == catalog.CalcDwellTime {
			res, err = qacalc.DwellTimeAccuracy(ref, *l.Measurement, tol, act)
		} else {
			res, err = qacalc.PercentDiff(ref, *l.Measurement, tol, act)
		}
		if err != nil {
			return err
		}
		l.BaselineValue = &ref

	case catalog.CalcPosition:
		if l.Measurement == nil {
			return nil
		}
		// Positional checks without a stored baseline measure the offset
		// from the nominal zero position.
		expected := 0.0
		if v, ok := baselineValue(baseline, l.Energy); ok {
			expected = v
		}
		res = qacalc.PositionDeviation(expected, *l.Measurement, tol, act)
		l.BaselineValue = &expected

	case catalog.CalcTimerLin:
		if len(l.Readings) == 0 {
			return nil
		}
		if len(l.Readings)%2 != 0 {
			return fmt.Errorf("timer linearity readings must be (set, measured) pairs")
		}
		pairs := make([]qacalc.TimerPair, 0, len(l.Readings)/2)
		for i := 0; i < len(l.Readings); i += 2 {
			pairs = append(pairs, qacalc.TimerPair{Set: l.Readings[i], Measured: l.Readings[i+1]})
		}
		res, err = qacalc.TimerLinearity(pairs, tol, act)
		if err != nil {
			return err
		}

	case catalog.CalcTransit:
		if len(l.Readings) == 0 {
			return nil
		}
		res, err = qacalc.TransitReproducibility(l.Readings, tol, act)
		if err != nil {
			return err
		}

	case catalog.CalcDecay:
		if l.Measurement == nil || baseline == nil {
			return nil
		}
		a0, ok := baseline.Values["initial_activity"]
		if !ok {
			return nil
		}
		halfLife := qacalc.IridiumHalfLifeDays
		if hl, ok := baseline.Values["half_life_days"]; ok && hl > 0 {
			halfLife = hl
		}
		// Configured tolerance strings win; the fixed regulatory bands are
		// the fallback.
		bands := s.decayBands
		if tol != nil && act != nil {
			bands = qacalc.DecayBands{Investigate: *tol, Fail: *act}
		}
		res, err = qacalc.DecayCheck(a0, halfLife, baseline.ValidFrom, *l.Measurement, rep.ReportDate, bands)
		if err != nil {
			return err
		}
		l.BaselineValue = &a0

	default:
		return nil
	}

	l.Deviation = &res.Deviation
	l.Evaluation = &res.Explanation
	if res.Verdict != qacalc.VerdictNone {
		v := string(res.Verdict)
		l.Verdict = &v
	}
	return nil
}

// baselineValue resolves the reference value for a line: the per-energy
// entry when the line names one, the "reference" entry, or the single value
// of a scalar baseline.
func baselineValue(b *equipment.Baseline, energy *string) (float64, bool) {
	if b == nil {
		return 0, false
	}
	if energy != nil {
		v, ok := b.Values[*energy]
		return v, ok
	}
	if v, ok := b.Values["reference"]; ok {
		return v, true
	}
	if len(b.Values) == 1 {
		for _, v := range b.Values {
			return v, true
		}
	}
	return 0, false
}

// deriveOverallResult folds line statuses and computed verdicts into the
// report-level result: any failure wins, any investigate verdict makes the
// report conditional, everything else passes.
func deriveOverallResult(lines []*LineItem) string {
	result := ResultPass
	for _, l := range lines {
		if l.Status == "fail" {
			return ResultFail
		}
		if l.Verdict != nil {
			switch *l.Verdict {
			case string(qacalc.VerdictFail):
				return ResultFail
			case string(qacalc.VerdictInvestigate):
				result = ResultConditional
			}
		}
	}
	return result
}

func (s *Service) GetReport(ctx context.Context, orgID, id uuid.UUID) (*Report, error) {
	rep, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, ErrNotFound
	}
	lines, err := s.repo.Lines(ctx, id)
	if err != nil {
		return nil, err
	}
	rep.Lines = lines
	return rep, nil
}

// DeleteReport removes the report and its lines in one transaction.
func (s *Service) DeleteReport(ctx context.Context, orgID, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, orgID, id); err != nil {
		return ErrNotFound
	}
	return s.repo.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.DeleteLines(ctx, id); err != nil {
			return err
		}
		return s.repo.DeleteReport(ctx, orgID, id)
	})
}

// UpdateStatus advances a report through the review flow:
// submitted -> reviewed -> approved.
func (s *Service) UpdateStatus(ctx context.Context, orgID, id uuid.UUID, status string) (*Report, error) {
	rep, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if statusTransitions[rep.Status] != status {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, rep.Status, status)
	}
	if err := s.repo.UpdateStatus(ctx, orgID, id, status); err != nil {
		return nil, err
	}
	rep.Status = status
	return rep, nil
}

// History lists reports in a date range, defaulting to the last 30 days.
func (s *Service) History(ctx context.Context, orgID uuid.UUID, filter ListFilter, limit, offset int) ([]*Report, int, error) {
	if filter.From.IsZero() && filter.To.IsZero() {
		filter.From = time.Now().AddDate(0, 0, -30)
	}
	return s.repo.List(ctx, orgID, filter, limit, offset)
}

// Summary returns report counts grouped by frequency and overall result.
func (s *Service) Summary(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]SummaryRow, error) {
	if from.IsZero() {
		from = time.Now().AddDate(0, 0, -30)
	}
	if to.IsZero() {
		to = time.Now()
	}
	return s.repo.Summary(ctx, orgID, from, to)
}
