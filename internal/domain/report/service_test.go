package report

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sasqart/radqa/internal/domain/catalog"
	"github.com/sasqart/radqa/internal/domain/equipment"
	"github.com/sasqart/radqa/pkg/qacalc"
)

// -- Mocks --

type mockRepo struct {
	reports map[uuid.UUID]*Report
	lines   map[uuid.UUID][]*LineItem
	txDepth int
	failTx  bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		reports: make(map[uuid.UUID]*Report),
		lines:   make(map[uuid.UUID][]*LineItem),
	}
}

func (m *mockRepo) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txDepth++
	defer func() { m.txDepth-- }()
	return fn(ctx)
}

func (m *mockRepo) InsertReport(_ context.Context, r *Report) error {
	if m.txDepth == 0 {
		return fmt.Errorf("report insert outside transaction")
	}
	if m.failTx {
		return fmt.Errorf("insert failed")
	}
	r.ID = uuid.New()
	m.reports[r.ID] = r
	return nil
}

func (m *mockRepo) InsertLine(_ context.Context, l *LineItem) error {
	if m.txDepth == 0 {
		return fmt.Errorf("line insert outside transaction")
	}
	l.ID = uuid.New()
	m.lines[l.ReportID] = append(m.lines[l.ReportID], l)
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, orgID, id uuid.UUID) (*Report, error) {
	r, ok := m.reports[id]
	if !ok || r.OrgID != orgID {
		return nil, fmt.Errorf("not found")
	}
	return r, nil
}

func (m *mockRepo) Lines(_ context.Context, reportID uuid.UUID) ([]*LineItem, error) {
	return m.lines[reportID], nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, orgID, id uuid.UUID, status string) error {
	r, ok := m.reports[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	r.Status = status
	return nil
}

func (m *mockRepo) DeleteLines(_ context.Context, reportID uuid.UUID) error {
	delete(m.lines, reportID)
	return nil
}

func (m *mockRepo) DeleteReport(_ context.Context, orgID, id uuid.UUID) error {
	delete(m.reports, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, orgID uuid.UUID, filter ListFilter, limit, offset int) ([]*Report, int, error) {
	var out []*Report
	for _, r := range m.reports {
		if r.OrgID != orgID {
			continue
		}
		if filter.EquipmentID != uuid.Nil && r.EquipmentID != filter.EquipmentID {
			continue
		}
		if filter.Frequency != "" && r.Frequency != filter.Frequency {
			continue
		}
		if !filter.From.IsZero() && r.ReportDate.Before(filter.From) {
			continue
		}
		out = append(out, r)
	}
	return out, len(out), nil
}

func (m *mockRepo) Summary(_ context.Context, orgID uuid.UUID, from, to time.Time) ([]SummaryRow, error) {
	counts := map[[2]string]int{}
	for _, r := range m.reports {
		if r.OrgID == orgID {
			counts[[2]string{r.Frequency, r.OverallResult}]++
		}
	}
	var out []SummaryRow
	for k, n := range counts {
		out = append(out, SummaryRow{Frequency: k[0], Result: k[1], Count: n})
	}
	return out, nil
}

type mockEquipmentStore struct {
	equipment map[uuid.UUID]*equipment.Equipment
	baselines map[string]*equipment.Baseline // equipmentID/testID
}

func (m *mockEquipmentStore) GetEquipment(_ context.Context, orgID, id uuid.UUID) (*equipment.Equipment, error) {
	e, ok := m.equipment[id]
	if !ok || e.OrgID != orgID {
		return nil, fmt.Errorf("not found")
	}
	return e, nil
}

func (m *mockEquipmentStore) CurrentBaseline(_ context.Context, equipmentID uuid.UUID, testID string) (*equipment.Baseline, error) {
	b, ok := m.baselines[equipmentID.String()+"/"+testID]
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

// -- Fixtures --

func str(s string) *string { return &s }
func num(v float64) *float64 { return &v }

func percentDiffDef(testID string) *catalog.TestDefinition {
	calc := catalog.CalcPercentDiff
	return &catalog.TestDefinition{
		TestID: testID, Frequency: "daily", Tolerance: "2.00%", ActionLevel: "3.00%",
		Calculator: &calc, Active: true,
	}
}

type fixture struct {
	svc     *Service
	repo    *mockRepo
	eq      *mockEquipmentStore
	orgID   uuid.UUID
	linacID uuid.UUID
}

func newFixture(defs map[string]*catalog.TestDefinition) *fixture {
	orgID := uuid.New()
	linacID := uuid.New()
	repo := newMockRepo()
	eq := &mockEquipmentStore{
		equipment: map[uuid.UUID]*equipment.Equipment{
			linacID: {ID: linacID, OrgID: orgID, Name: "Linac A", EquipmentType: equipment.TypeLinac, Active: true},
		},
		baselines: map[string]*equipment.Baseline{},
	}
	cat := &mockCatalogStore{defs: defs}
	svc := NewService(repo, eq, cat, qacalc.DefaultDecayBands, zerolog.Nop())
	return &fixture{svc: svc, repo: repo, eq: eq, orgID: orgID, linacID: linacID}
}

func (f *fixture) setBaseline(testID string, values map[string]float64) {
	f.eq.baselines[f.linacID.String()+"/"+testID] = &equipment.Baseline{
		ID: uuid.New(), EquipmentID: f.linacID, TestID: testID,
		Values: values, IsCurrent: true, ValidFrom: time.Now().AddDate(0, 0, -30),
	}
}

func (f *fixture) newReport(lines ...*LineItem) *Report {
	return &Report{
		OrgID:       f.orgID,
		EquipmentID: f.linacID,
		Frequency:   "daily",
		ReportDate:  time.Now(),
		Performer:   "A. Physicist",
		SubmittedBy: "user-1",
		Lines:       lines,
	}
}

// -- Tests --

func TestCreateReport_AllPass(t *testing.T) {
	f := newFixture(nil)
	rep := f.newReport(
		&LineItem{TestID: "DL1", Status: "pass"},
		&LineItem{TestID: "DL2", Status: "na"},
		&LineItem{TestID: "DL3", Status: ""},
	)
	if err := f.svc.CreateReport(context.Background(), rep); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.OverallResult != ResultPass {
		t.Errorf("overall = %q, want pass", rep.OverallResult)
	}
	if rep.Status != StatusSubmitted {
		t.Errorf("status = %q, want submitted", rep.Status)
	}
	if len(f.repo.lines[rep.ID]) != 3 {
		t.Errorf("persisted %d lines, want 3", len(f.repo.lines[rep.ID]))
	}
}

func TestCreateReport_ExplicitFail(t *testing.T) {
	f := newFixture(nil)
	rep := f.newReport(
		&LineItem{TestID: "DL1", Status: "pass"},
		&LineItem{TestID: "DL2", Status: "fail"},
	)
	if err := f.svc.CreateReport(context.Background(), rep); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.OverallResult != ResultFail {
		t.Errorf("overall = %q, want fail", rep.OverallResult)
	}
}

func TestCreateReport_InvestigateMakesConditional(t *testing.T) {
	f := newFixture(map[string]*catalog.TestDefinition{"DL8": percentDiffDef("DL8")})
	f.setBaseline("DL8", map[string]float64{"reference": 100})

	// 103 vs 100 is +3.00%: beyond the 2% tolerance, at the 3% action level.
	rep := f.newReport(&LineItem{TestID: "DL8", Status: "pass", Measurement: num(103)})
	if err := f.svc.CreateReport(context.Background(), rep); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l := rep.Lines[0]
	if l.Deviation == nil || math.Abs(*l.Deviation-3.0) > 1e-9 {
		t.Fatalf("deviation = %v, want 3.0", l.Deviation)
	}
	if l.Verdict == nil || *l.Verdict != string(qacalc.VerdictInvestigate) {
		t.Errorf("verdict = %v, want investigate", l.Verdict)
	}
	if rep.OverallResult != ResultConditional {
		t.Errorf("overall = %q, want conditional", rep.OverallResult)
	}
}

func TestCreateReport_CalculatorFailVerdict(t *testing.T) {
	f := newFixture(map[string]*catalog.TestDefinition{"DL8": percentDiffDef("DL8")})
	f.setBaseline("DL8", map[string]float64{"reference": 100})

	rep := f.newReport(&LineItem{TestID: "DL8", Status: "pass", Measurement: num(104)})
	if err := f.svc.CreateReport(context.Background(), rep); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.OverallResult != ResultFail {
		t.Errorf("overall = %q, want fail", rep.OverallResult)
	}
}

func TestCreateReport_PerEnergyBaseline(t *testing.T) {
	f := newFixture(map[string]*catalog.TestDefinition{"DL8": percentDiffDef("DL8")})
	f.setBaseline("DL8", map[string]float64{"6MV": 100, "10MV": 200})

	rep := f.newReport(&LineItem{TestID: "DL8", Status: "pass", Measurement: num(201), Energy: str("10MV")})
	if err := f.svc.CreateReport(context.Background(), rep); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l := rep.Lines[0]
	if l.BaselineValue == nil || *l.BaselineValue != 200 {
		t.Errorf("baseline value = %v, want 200", l.BaselineValue)
	}
	if l.Deviation == nil || math.Abs(*l.Deviation-0.5) > 1e-9 {
		t.Errorf("deviation = %v, want 0.5", l.Deviation)
	}
}

func TestCreateReport_RawResultParsed(t *testing.T) {
	f := newFixture(map[string]*catalog.TestDefinition{"DL8": percentDiffDef("DL8")})
	f.setBaseline("DL8", map[string]float64{"reference": 100})

	rep := f.newReport(&LineItem{TestID: "DL8", Status: "pass", Result: str("101.0")})
	if err := f.svc.CreateReport(context.Background(), rep); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l := rep.Lines[0]
	if l.Measurement == nil || *l.Measurement != 101.0 {
		t.Fatalf("measurement = %v, want 101.0", l.Measurement)
	}
	if l.Verdict == nil || *l.Verdict != string(qacalc.VerdictPass) {
		t.Errorf("verdict = %v, want pass", l.Verdict)
	}
}

func TestCreateReport_NoBaselineStoredAsEntered(t *testing.T) {
	f := newFixture(map[string]*catalog.TestDefinition{"DL8": percentDiffDef("DL8")})
	rep := f.newReport(&LineItem{TestID: "DL8", Status: "pass", Measurement: num(103)})
	if err := f.svc.CreateReport(context.Background(), rep); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l := rep.Lines[0]
	if l.Deviation != nil || l.Verdict != nil {
		t.Error("line without baseline must not be scored")
	}
	if rep.OverallResult != ResultPass {
		t.Errorf("overall = %q, want pass", rep.OverallResult)
	}
}

func TestCreateReport_ForeignEquipment(t *testing.T) {
	f := newFixture(nil)
	rep := f.newReport(&LineItem{TestID: "DL1", Status: "pass"})
	rep.EquipmentID = uuid.New()
	if err := f.svc.CreateReport(context.Background(), rep); err == nil {
		t.Fatal("expected error for equipment outside the organization")
	}
	if len(f.repo.reports) != 0 {
		t.Error("rejected report must not be persisted")
	}
}

func TestCreateReport_InvalidLineStatus(t *testing.T) {
	f := newFixture(nil)
	rep := f.newReport(&LineItem{TestID: "DL1", Status: "maybe"})
	if err := f.svc.CreateReport(context.Background(), rep); err == nil {
		t.Fatal("expected error for invalid line status")
	}
}

func TestUpdateStatus_Flow(t *testing.T) {
	f := newFixture(nil)
	rep := f.newReport(&LineItem{TestID: "DL1", Status: "pass"})
	_ = f.svc.CreateReport(context.Background(), rep)

	if _, err := f.svc.UpdateStatus(context.Background(), f.orgID, rep.ID, StatusApproved); err == nil {
		t.Fatal("submitted -> approved must be rejected")
	}
	if _, err := f.svc.UpdateStatus(context.Background(), f.orgID, rep.ID, StatusReviewed); err != nil {
		t.Fatalf("submitted -> reviewed failed: %v", err)
	}
	if _, err := f.svc.UpdateStatus(context.Background(), f.orgID, rep.ID, StatusApproved); err != nil {
		t.Fatalf("reviewed -> approved failed: %v", err)
	}
	if _, err := f.svc.UpdateStatus(context.Background(), f.orgID, rep.ID, StatusReviewed); err == nil {
		t.Fatal("approved reports must not move backwards")
	}
}

func TestDeleteReport_RemovesLines(t *testing.T) {
	f := newFixture(nil)
	rep := f.newReport(&LineItem{TestID: "DL1", Status: "pass"})
	_ = f.svc.CreateReport(context.Background(), rep)

	if err := f.svc.DeleteReport(context.Background(), f.orgID, rep.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.repo.reports) != 0 || len(f.repo.lines[rep.ID]) != 0 {
		t.Error("report and lines must both be removed")
	}
}

func TestTransitScoring(t *testing.T) {
	calc := catalog.CalcTransit
	defs := map[string]*catalog.TestDefinition{
		"BD4": {TestID: "BD4", Frequency: "daily", Tolerance: "1%", ActionLevel: "2%", Calculator: &calc, Active: true},
	}
	f := newFixture(defs)

	rep := f.newReport(&LineItem{TestID: "BD4", Status: "pass", Readings: []float64{100, 100.5, 99.5, 100}})
	if err := f.svc.CreateReport(context.Background(), rep); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l := rep.Lines[0]
	if l.Deviation == nil {
		t.Fatal("expected transit deviation to be computed")
	}
	if l.Verdict == nil || *l.Verdict != string(qacalc.VerdictPass) {
		t.Errorf("verdict = %v, want pass", l.Verdict)
	}
}
