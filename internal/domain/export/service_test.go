package export

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/sasqart/radqa/internal/domain/catalog"
	"github.com/sasqart/radqa/internal/domain/equipment"
	"github.com/sasqart/radqa/internal/domain/instrument"
	"github.com/sasqart/radqa/internal/domain/org"
	"github.com/sasqart/radqa/internal/domain/report"
	"github.com/sasqart/radqa/internal/domain/source"
)

// -- Mock Stores --

type mockOrgStore struct {
	orgs map[uuid.UUID]*org.Organization
}

func (m *mockOrgStore) Settings(_ context.Context, orgID uuid.UUID) (*org.Organization, error) {
	return m.orgs[orgID], nil
}

type mockEquipmentStore struct {
	items     []*equipment.Equipment
	baselines map[uuid.UUID][]*equipment.Baseline
}

func (m *mockEquipmentStore) ListEquipment(_ context.Context, orgID uuid.UUID, _ equipment.ListFilter, limit, offset int) ([]*equipment.Equipment, int, error) {
	var scoped []*equipment.Equipment
	for _, e := range m.items {
		if e.OrgID == orgID {
			scoped = append(scoped, e)
		}
	}
	if offset >= len(scoped) {
		return nil, len(scoped), nil
	}
	end := offset + limit
	if end > len(scoped) {
		end = len(scoped)
	}
	return scoped[offset:end], len(scoped), nil
}

func (m *mockEquipmentStore) GetBaselines(_ context.Context, _, equipmentID uuid.UUID, _ string, _ bool) ([]*equipment.Baseline, error) {
	return m.baselines[equipmentID], nil
}

type mockInstrumentStore struct {
	items []*instrument.Instrument
}

func (m *mockInstrumentStore) ListInstruments(_ context.Context, orgID uuid.UUID, _ bool, _, offset int) ([]*instrument.Instrument, int, error) {
	if offset > 0 {
		return nil, len(m.items), nil
	}
	var scoped []*instrument.Instrument
	for _, i := range m.items {
		if i.OrgID == orgID {
			scoped = append(scoped, i)
		}
	}
	return scoped, len(scoped), nil
}

type mockSourceStore struct {
	items []*source.Source
}

func (m *mockSourceStore) ListSources(_ context.Context, orgID uuid.UUID, _ string, _, offset int) ([]*source.Source, int, error) {
	if offset > 0 {
		return nil, len(m.items), nil
	}
	var scoped []*source.Source
	for _, s := range m.items {
		if s.OrgID == orgID {
			scoped = append(scoped, s)
		}
	}
	return scoped, len(scoped), nil
}

type mockCatalogStore struct {
	defs []*catalog.TestDefinition
}

func (m *mockCatalogStore) ListTests(_ context.Context, orgID uuid.UUID, _ catalog.ListFilter) ([]*catalog.TestDefinition, error) {
	var scoped []*catalog.TestDefinition
	for _, d := range m.defs {
		if d.OrgID == orgID {
			scoped = append(scoped, d)
		}
	}
	return scoped, nil
}

type mockReportStore struct {
	reports []*report.Report
	lines   map[uuid.UUID][]*report.LineItem
}

func (m *mockReportStore) History(_ context.Context, orgID uuid.UUID, _ report.ListFilter, _, offset int) ([]*report.Report, int, error) {
	if offset > 0 {
		return nil, len(m.reports), nil
	}
	var scoped []*report.Report
	for _, r := range m.reports {
		if r.OrgID == orgID {
			scoped = append(scoped, r)
		}
	}
	return scoped, len(scoped), nil
}

func (m *mockReportStore) GetReport(_ context.Context, orgID, id uuid.UUID) (*report.Report, error) {
	for _, r := range m.reports {
		if r.OrgID == orgID && r.ID == id {
			full := *r
			full.Lines = m.lines[id]
			return &full, nil
		}
	}
	return nil, report.ErrNotFound
}

// -- Service Tests --

func TestBuild_ScopedToOrganization(t *testing.T) {
	orgID := uuid.New()
	otherOrg := uuid.New()
	linacID := uuid.New()
	reportID := uuid.New()

	svc := NewService(
		&mockOrgStore{orgs: map[uuid.UUID]*org.Organization{
			orgID: {ID: orgID, Name: "Memorial Physics"},
		}},
		&mockEquipmentStore{
			items: []*equipment.Equipment{
				{ID: linacID, OrgID: orgID, Name: "TrueBeam 1"},
				{ID: uuid.New(), OrgID: otherOrg, Name: "Foreign Linac"},
			},
			baselines: map[uuid.UUID][]*equipment.Baseline{
				linacID: {{ID: uuid.New(), OrgID: orgID, EquipmentID: linacID, TestID: "DL8"}},
			},
		},
		&mockInstrumentStore{items: []*instrument.Instrument{
			{ID: uuid.New(), OrgID: orgID, Name: "Farmer chamber"},
			{ID: uuid.New(), OrgID: otherOrg, Name: "Foreign chamber"},
		}},
		&mockSourceStore{items: []*source.Source{
			{ID: uuid.New(), OrgID: orgID, Radionuclide: "Cs-137"},
		}},
		&mockCatalogStore{defs: []*catalog.TestDefinition{
			{ID: uuid.New(), OrgID: orgID, TestID: "DL8"},
			{ID: uuid.New(), OrgID: otherOrg, TestID: "DL8"},
		}},
		&mockReportStore{
			reports: []*report.Report{
				{ID: reportID, OrgID: orgID, EquipmentID: linacID},
				{ID: uuid.New(), OrgID: otherOrg},
			},
			lines: map[uuid.UUID][]*report.LineItem{
				reportID: {{ID: uuid.New(), TestID: "DL8"}},
			},
		},
	)

	snap, err := svc.Build(context.Background(), orgID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Organization == nil || snap.Organization.Name != "Memorial Physics" {
		t.Errorf("organization = %+v", snap.Organization)
	}
	if len(snap.Equipment) != 1 || snap.Equipment[0].ID != linacID {
		t.Errorf("equipment = %d items, want only the org's linac", len(snap.Equipment))
	}
	if len(snap.Baselines) != 1 || snap.Baselines[0].EquipmentID != linacID {
		t.Errorf("baselines = %d items, want 1", len(snap.Baselines))
	}
	if len(snap.Instruments) != 1 {
		t.Errorf("instruments = %d items, want 1", len(snap.Instruments))
	}
	if len(snap.Sources) != 1 {
		t.Errorf("sources = %d items, want 1", len(snap.Sources))
	}
	if len(snap.TestCatalog) != 1 {
		t.Errorf("test catalog = %d items, want 1", len(snap.TestCatalog))
	}
	if len(snap.Reports) != 1 || len(snap.Reports[0].Lines) != 1 {
		t.Fatalf("reports = %d items, want 1 with its line items", len(snap.Reports))
	}
	if snap.ExportedAt.IsZero() {
		t.Error("exported_at not stamped")
	}
}

func TestBuild_EmptyOrganization(t *testing.T) {
	orgID := uuid.New()
	svc := NewService(
		&mockOrgStore{orgs: map[uuid.UUID]*org.Organization{orgID: {ID: orgID, Name: "New Clinic"}}},
		&mockEquipmentStore{baselines: map[uuid.UUID][]*equipment.Baseline{}},
		&mockInstrumentStore{},
		&mockSourceStore{},
		&mockCatalogStore{},
		&mockReportStore{lines: map[uuid.UUID][]*report.LineItem{}},
	)

	snap, err := svc.Build(context.Background(), orgID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Sections render as empty arrays, never null, so the dump round-trips.
	if snap.Equipment == nil || snap.Instruments == nil || snap.Sources == nil ||
		snap.TestCatalog == nil || snap.Reports == nil || snap.Baselines == nil {
		t.Error("empty sections must be non-nil slices")
	}
}
