package trend

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/sasqart/radqa/internal/domain/catalog"
	"github.com/sasqart/radqa/internal/domain/equipment"
	"github.com/sasqart/radqa/pkg/qacalc"
)

// defaultWindowDays is the lookback applied when the caller gives no range.
const defaultWindowDays = 90

type equipmentStore interface {
	GetEquipment(ctx context.Context, orgID, id uuid.UUID) (*equipment.Equipment, error)
	CurrentBaseline(ctx context.Context, equipmentID uuid.UUID, testID string) (*equipment.Baseline, error)
}

type catalogStore interface {
	DefinitionIndex(ctx context.Context, orgID uuid.UUID, equipmentType, frequency string) (map[string]*catalog.TestDefinition, error)
}

type Service struct {
	repo      Repository
	equipment equipmentStore
	catalog   catalogStore
}

func NewService(repo Repository, eq equipmentStore, cat catalogStore) *Service {
	return &Service{repo: repo, equipment: eq, catalog: cat}
}

// Series builds per-test time series for one piece of equipment. Line items
// without a numeric value are skipped, and a test needs at least two numeric
// points to chart a trend.
func (s *Service) Series(ctx context.Context, orgID, equipmentID uuid.UUID, testID string, from, to time.Time) ([]*Series, error) {
	eq, err := s.equipment.GetEquipment(ctx, orgID, equipmentID)
	if err != nil {
		return nil, fmt.Errorf("equipment not found")
	}
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -defaultWindowDays)
	}

	raw, err := s.repo.LinePoints(ctx, orgID, equipmentID, testID, from, to)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]Point)
	for _, p := range raw {
		v, ok := numericValue(p)
		if !ok {
			continue
		}
		groups[p.TestID] = append(groups[p.TestID], Point{
			Date:    p.ReportDate,
			Value:   v,
			Verdict: p.Verdict,
		})
	}

	defs, err := s.catalog.DefinitionIndex(ctx, orgID, eq.EquipmentType, "")
	if err != nil {
		return nil, fmt.Errorf("loading test catalog: %w", err)
	}

	ids := make([]string, 0, len(groups))
	for id, points := range groups {
		if len(points) < 2 {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	series := make([]*Series, 0, len(ids))
	for _, id := range ids {
		ser := &Series{TestID: id, Points: groups[id]}
		ser.Mean, ser.Min, ser.Max = stats(ser.Points)

		if def := defs[id]; def != nil {
			ser.Description = def.Description
			ser.Unit = def.Unit
			ser.Tolerance = qacalc.ToleranceValue(def.Tolerance)
			ser.ActionLevel = qacalc.ToleranceValue(def.ActionLevel)
		}
		if b, err := s.equipment.CurrentBaseline(ctx, equipmentID, id); err == nil && b != nil {
			ser.Baseline = referenceValue(b)
		}
		series = append(series, ser)
	}
	return series, nil
}

func numericValue(p RawPoint) (float64, bool) {
	if p.Measurement != nil {
		return *p.Measurement, true
	}
	if p.Result == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(*p.Result, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func referenceValue(b *equipment.Baseline) *float64 {
	if v, ok := b.Values["reference"]; ok {
		return &v
	}
	if len(b.Values) == 1 {
		for _, v := range b.Values {
			return &v
		}
	}
	return nil
}

func stats(points []Point) (mean, min, max float64) {
	min, max = points[0].Value, points[0].Value
	var sum float64
	for _, p := range points {
		sum += p.Value
		if p.Value < min {
			min = p.Value
		}
		if p.Value > max {
			max = p.Value
		}
	}
	return sum / float64(len(points)), min, max
}
