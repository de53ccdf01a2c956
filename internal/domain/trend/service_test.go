package trend

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sasqart/radqa/internal/domain/catalog"
	"github.com/sasqart/radqa/internal/domain/equipment"
)

type mockRepo struct {
	points []RawPoint
}

func (m *mockRepo) LinePoints(_ context.Context, _, _ uuid.UUID, testID string, _, _ time.Time) ([]RawPoint, error) {
	if testID == "" {
		return m.points, nil
	}
	var out []RawPoint
	for _, p := range m.points {
		if p.TestID == testID {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockEquipmentStore struct {
	eq        *equipment.Equipment
	baselines map[string]*equipment.Baseline
}

func (m *mockEquipmentStore) GetEquipment(_ context.Context, orgID, id uuid.UUID) (*equipment.Equipment, error) {
	if m.eq == nil || m.eq.ID != id || m.eq.OrgID != orgID {
		return nil, fmt.Errorf("not found")
	}
	return m.eq, nil
}

func (m *mockEquipmentStore) CurrentBaseline(_ context.Context, _ uuid.UUID, testID string) (*equipment.Baseline, error) {
	b, ok := m.baselines[testID]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return b, nil
}

type mockCatalogStore struct {
	defs map[string]*catalog.TestDefinition
}

func (m *mockCatalogStore) DefinitionIndex(_ context.Context, _ uuid.UUID, _, _ string) (map[string]*catalog.TestDefinition, error) {
	return m.defs, nil
}

func str(s string) *string { return &s }
func num(v float64) *float64 { return &v }

func day(n int) time.Time {
	return time.Date(2026, 1, n, 0, 0, 0, 0, time.UTC)
}

func newTrendFixture(points []RawPoint) (*Service, uuid.UUID, uuid.UUID, *mockEquipmentStore) {
	orgID := uuid.New()
	eqID := uuid.New()
	eq := &mockEquipmentStore{
		eq:        &equipment.Equipment{ID: eqID, OrgID: orgID, Name: "Linac A", EquipmentType: equipment.TypeLinac, Active: true},
		baselines: map[string]*equipment.Baseline{},
	}
	calc := catalog.CalcPercentDiff
	cat := &mockCatalogStore{defs: map[string]*catalog.TestDefinition{
		"DL8": {TestID: "DL8", Description: "Photon output constancy", Frequency: "daily",
			Tolerance: "2.00%", ActionLevel: "3.00%", Unit: str("%"), Calculator: &calc, Active: true},
	}}
	return NewService(&mockRepo{points: points}, eq, cat), orgID, eqID, eq
}

func TestSeries_GroupsAndFilters(t *testing.T) {
	points := []RawPoint{
		{TestID: "DL8", ReportDate: day(1), Measurement: num(100.2)},
		{TestID: "DL8", ReportDate: day(2), Result: str("99.8")},
		{TestID: "DL8", ReportDate: day(3), Result: str("Functional")}, // not numeric
		{TestID: "DL1", ReportDate: day(1), Result: str("100")},       // single point
		{TestID: "DL2", ReportDate: day(1), Result: str("pass")},
		{TestID: "DL2", ReportDate: day(2), Result: str("pass")},
	}
	svc, orgID, eqID, _ := newTrendFixture(points)

	series, err := svc.Series(context.Background(), orgID, eqID, "", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 1 {
		t.Fatalf("got %d series, want 1 (only DL8 has 2+ numeric points)", len(series))
	}
	s := series[0]
	if s.TestID != "DL8" || len(s.Points) != 2 {
		t.Fatalf("series = %s with %d points, want DL8 with 2", s.TestID, len(s.Points))
	}
	if s.Mean != 100.0 || s.Min != 99.8 || s.Max != 100.2 {
		t.Errorf("stats = %.2f/%.2f/%.2f, want 100.00/99.80/100.20", s.Mean, s.Min, s.Max)
	}
	if s.Tolerance == nil || *s.Tolerance != 2.0 {
		t.Errorf("tolerance = %v, want 2.0", s.Tolerance)
	}
}

func TestSeries_BaselineJoined(t *testing.T) {
	points := []RawPoint{
		{TestID: "DL8", ReportDate: day(1), Measurement: num(100.5)},
		{TestID: "DL8", ReportDate: day(2), Measurement: num(101.0)},
	}
	svc, orgID, eqID, eq := newTrendFixture(points)
	eq.baselines["DL8"] = &equipment.Baseline{
		TestID: "DL8", Values: map[string]float64{"reference": 100}, IsCurrent: true,
	}

	series, err := svc.Series(context.Background(), orgID, eqID, "DL8", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 1 {
		t.Fatalf("got %d series, want 1", len(series))
	}
	if series[0].Baseline == nil || *series[0].Baseline != 100 {
		t.Errorf("baseline = %v, want 100", series[0].Baseline)
	}
}

func TestSeries_ForeignEquipment(t *testing.T) {
	svc, orgID, _, _ := newTrendFixture(nil)
	if _, err := svc.Series(context.Background(), orgID, uuid.New(), "", time.Time{}, time.Time{}); err == nil {
		t.Fatal("expected error for equipment outside the organization")
	}
}
