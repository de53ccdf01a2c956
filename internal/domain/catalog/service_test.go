package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

// -- Mock Repository --

type mockRepo struct {
	store map[uuid.UUID]*TestDefinition
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: make(map[uuid.UUID]*TestDefinition)}
}

func (m *mockRepo) Create(_ context.Context, d *TestDefinition) error {
	d.ID = uuid.New()
	m.store[d.ID] = d
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, orgID, id uuid.UUID) (*TestDefinition, error) {
	d, ok := m.store[id]
	if !ok || d.OrgID != orgID {
		return nil, fmt.Errorf("not found")
	}
	return d, nil
}

func (m *mockRepo) Update(_ context.Context, d *TestDefinition) error {
	if _, ok := m.store[d.ID]; !ok {
		return fmt.Errorf("not found")
	}
	m.store[d.ID] = d
	return nil
}

func (m *mockRepo) Delete(_ context.Context, orgID, id uuid.UUID) error {
	delete(m.store, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, orgID uuid.UUID, filter ListFilter) ([]*TestDefinition, error) {
	var out []*TestDefinition
	for _, d := range m.store {
		if d.OrgID != orgID {
			continue
		}
		if filter.EquipmentType != "" && d.EquipmentType != filter.EquipmentType {
			continue
		}
		if filter.Frequency != "" && d.Frequency != filter.Frequency {
			continue
		}
		if filter.ActiveOnly && !d.Active {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (m *mockRepo) Exists(_ context.Context, orgID uuid.UUID, equipmentType, testID string) (bool, error) {
	for _, d := range m.store {
		if d.OrgID == orgID && d.EquipmentType == equipmentType && d.TestID == testID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) MaxDisplayOrder(_ context.Context, orgID uuid.UUID, equipmentType, frequency string) (int, error) {
	max := 0
	for _, d := range m.store {
		if d.OrgID == orgID && d.EquipmentType == equipmentType && d.Frequency == frequency && d.DisplayOrder > max {
			max = d.DisplayOrder
		}
	}
	return max, nil
}

// -- Service Tests --

func TestCreateTests_AssignsDisplayOrder(t *testing.T) {
	svc := NewService(newMockRepo())
	orgID := uuid.New()

	defs := []*TestDefinition{
		{EquipmentType: "linac", TestID: "C1", Description: "Custom check 1", Frequency: "daily", Tolerance: "1%", ActionLevel: "2%"},
		{EquipmentType: "linac", TestID: "C2", Description: "Custom check 2", Frequency: "daily", Tolerance: "1%", ActionLevel: "2%"},
	}
	created, err := svc.CreateTests(context.Background(), orgID, defs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created[0].DisplayOrder != 1 || created[1].DisplayOrder != 2 {
		t.Errorf("display orders = %d, %d; want 1, 2", created[0].DisplayOrder, created[1].DisplayOrder)
	}
}

func TestCreateTests_DuplicateRejected(t *testing.T) {
	svc := NewService(newMockRepo())
	orgID := uuid.New()

	first := []*TestDefinition{{EquipmentType: "linac", TestID: "C1", Description: "Check", Frequency: "daily", Tolerance: "1%", ActionLevel: "2%"}}
	if _, err := svc.CreateTests(context.Background(), orgID, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dup := []*TestDefinition{{EquipmentType: "linac", TestID: "C1", Description: "Again", Frequency: "daily", Tolerance: "1%", ActionLevel: "2%"}}
	if _, err := svc.CreateTests(context.Background(), orgID, dup); err == nil {
		t.Fatal("expected duplicate test_id to be rejected")
	}
}

func TestCreateTests_InvalidFrequency(t *testing.T) {
	svc := NewService(newMockRepo())
	defs := []*TestDefinition{{EquipmentType: "linac", TestID: "C1", Description: "Check", Frequency: "weekly", Tolerance: "1%", ActionLevel: "2%"}}
	if _, err := svc.CreateTests(context.Background(), uuid.New(), defs); err == nil {
		t.Fatal("expected error for invalid frequency")
	}
}

func TestImportDefaults(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	orgID := uuid.New()

	created, err := svc.ImportDefaults(context.Background(), orgID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 9 daily + 16 monthly + 1 quarterly + 18 annual.
	if created != 44 {
		t.Errorf("imported %d tests, want 44", created)
	}

	daily, _ := repo.List(context.Background(), orgID, ListFilter{Frequency: "daily"})
	if len(daily) != 9 {
		t.Errorf("daily tests = %d, want 9", len(daily))
	}

	// Re-import skips everything already present.
	again, err := svc.ImportDefaults(context.Background(), orgID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != 0 {
		t.Errorf("re-import created %d tests, want 0", again)
	}
}

func TestImportDefaults_CalculatorBindings(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	orgID := uuid.New()
	_, _ = svc.ImportDefaults(context.Background(), orgID)

	defs, _ := repo.List(context.Background(), orgID, ListFilter{})
	byID := map[string]*TestDefinition{}
	for _, d := range defs {
		byID[d.TestID] = d
	}

	if c := byID["DL8"].Calculator; c == nil || *c != CalcPercentDiff {
		t.Errorf("DL8 calculator = %v, want percent_diff", c)
	}
	if c := byID["ML2"].Calculator; c == nil || *c != CalcPosition {
		t.Errorf("ML2 calculator = %v, want position", c)
	}
	if c := byID["DL1"].Calculator; c != nil {
		t.Errorf("DL1 (functional) must have no calculator, got %v", *c)
	}
	if byID["DL8"].Tolerance != "2.00%" || byID["DL8"].ActionLevel != "3.00%" {
		t.Errorf("DL8 bands = %q / %q", byID["DL8"].Tolerance, byID["DL8"].ActionLevel)
	}
}

func TestUpdateTest_NotFound(t *testing.T) {
	svc := NewService(newMockRepo())
	_, err := svc.UpdateTest(context.Background(), uuid.New(), &TestDefinition{ID: uuid.New()}, nil)
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateTest_PartialKeepsActive(t *testing.T) {
	svc := NewService(newMockRepo())
	orgID := uuid.New()

	defs := []*TestDefinition{{EquipmentType: "linac", TestID: "C1", Description: "Check", Frequency: "daily", Tolerance: "1%", ActionLevel: "2%"}}
	created, err := svc.CreateTests(context.Background(), orgID, defs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A description-only update must not touch the active flag.
	updated, err := svc.UpdateTest(context.Background(), orgID, &TestDefinition{ID: created[0].ID, Description: "Renamed check"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.Active {
		t.Error("partial update deactivated the test definition")
	}

	inactive := false
	updated, err = svc.UpdateTest(context.Background(), orgID, &TestDefinition{ID: created[0].ID}, &inactive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Active {
		t.Error("explicit active=false was not applied")
	}
}
