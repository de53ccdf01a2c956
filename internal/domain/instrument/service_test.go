package instrument

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	store map[uuid.UUID]*Instrument
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: make(map[uuid.UUID]*Instrument)}
}

func (m *mockRepo) Create(_ context.Context, i *Instrument) error {
	i.ID = uuid.New()
	m.store[i.ID] = i
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, orgID, id uuid.UUID) (*Instrument, error) {
	i, ok := m.store[id]
	if !ok || i.OrgID != orgID {
		return nil, fmt.Errorf("not found")
	}
	return i, nil
}

func (m *mockRepo) Update(_ context.Context, i *Instrument) error {
	if _, ok := m.store[i.ID]; !ok {
		return fmt.Errorf("not found")
	}
	m.store[i.ID] = i
	return nil
}

func (m *mockRepo) Delete(_ context.Context, orgID, id uuid.UUID) error {
	delete(m.store, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, orgID uuid.UUID, activeOnly bool, limit, offset int) ([]*Instrument, int, error) {
	var out []*Instrument
	for _, i := range m.store {
		if i.OrgID != orgID {
			continue
		}
		if activeOnly && !i.Active {
			continue
		}
		out = append(out, i)
	}
	return out, len(out), nil
}

func TestCreateInstrument(t *testing.T) {
	svc := NewService(newMockRepo())
	i := &Instrument{OrgID: uuid.New(), Name: "Farmer chamber", InstrumentType: "ion_chamber"}
	if err := svc.CreateInstrument(context.Background(), i); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !i.Active {
		t.Error("new instrument must be active")
	}
}

func TestCreateInstrument_InvalidType(t *testing.T) {
	svc := NewService(newMockRepo())
	i := &Instrument{OrgID: uuid.New(), Name: "Gadget", InstrumentType: "tricorder"}
	if err := svc.CreateInstrument(context.Background(), i); err == nil {
		t.Fatal("expected error for invalid instrument type")
	}
}

func TestListInstruments_OverdueFlag(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	orgID := uuid.New()

	past := time.Now().AddDate(-1, 0, 0)
	future := time.Now().AddDate(1, 0, 0)
	overdue := &Instrument{OrgID: orgID, Name: "Old chamber", InstrumentType: "ion_chamber", CalibrationDue: &past}
	fresh := &Instrument{OrgID: orgID, Name: "New chamber", InstrumentType: "ion_chamber", CalibrationDue: &future}
	_ = svc.CreateInstrument(context.Background(), overdue)
	_ = svc.CreateInstrument(context.Background(), fresh)

	items, total, err := svc.ListInstruments(context.Background(), orgID, false, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}
	for _, i := range items {
		switch i.Name {
		case "Old chamber":
			if !i.CalibrationOverdue {
				t.Error("expired calibration must be flagged overdue")
			}
		case "New chamber":
			if i.CalibrationOverdue {
				t.Error("future calibration must not be flagged overdue")
			}
		}
	}
}

func TestUpdateInstrument_ForeignOrg(t *testing.T) {
	svc := NewService(newMockRepo())
	orgID := uuid.New()
	i := &Instrument{OrgID: orgID, Name: "Chamber", InstrumentType: "ion_chamber"}
	_ = svc.CreateInstrument(context.Background(), i)

	_, err := svc.UpdateInstrument(context.Background(), &Instrument{ID: i.ID, OrgID: uuid.New(), Name: "Stolen"}, nil)
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for foreign org, got %v", err)
	}
}

func TestUpdateInstrument_PartialKeepsActive(t *testing.T) {
	svc := NewService(newMockRepo())
	orgID := uuid.New()
	i := &Instrument{OrgID: orgID, Name: "Chamber", InstrumentType: "ion_chamber"}
	_ = svc.CreateInstrument(context.Background(), i)

	serial := "SN-42"
	updated, err := svc.UpdateInstrument(context.Background(),
		&Instrument{ID: i.ID, OrgID: orgID, SerialNumber: &serial}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.Active {
		t.Error("a serial-only update must not deactivate the instrument")
	}
}
