package equipment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sasqart/radqa/internal/domain/org"
)

var (
	ErrNotFound       = errors.New("equipment not found")
	ErrEquipmentLimit = errors.New("organization equipment limit reached")
)

// Baseline put outcomes.
const (
	PutUnchanged = "unchanged"
	PutCreated   = "created"
)

type orgStore interface {
	GetOrganization(ctx context.Context, id uuid.UUID) (*org.Organization, error)
}

type Service struct {
	equipment Repository
	baselines BaselineRepository
	orgs      orgStore
	logger    zerolog.Logger
}

func NewService(equipment Repository, baselines BaselineRepository, orgs orgStore, logger zerolog.Logger) *Service {
	return &Service{equipment: equipment, baselines: baselines, orgs: orgs, logger: logger}
}

func (s *Service) CreateEquipment(ctx context.Context, e *Equipment) error {
	if e.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !validEquipmentTypes[e.EquipmentType] {
		return fmt.Errorf("invalid equipment_type: %s", e.EquipmentType)
	}

	o, err := s.orgs.GetOrganization(ctx, e.OrgID)
	if err != nil {
		return fmt.Errorf("organization not found")
	}
	count, err := s.equipment.CountActive(ctx, e.OrgID)
	if err != nil {
		return fmt.Errorf("counting equipment: %w", err)
	}
	if count >= o.MaxEquipment {
		return ErrEquipmentLimit
	}

	e.Active = true
	return s.equipment.Create(ctx, e)
}

func (s *Service) GetEquipment(ctx context.Context, orgID, id uuid.UUID) (*Equipment, error) {
	e, err := s.equipment.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return e, nil
}

// UpdateEquipment applies the given fields to an existing machine. Clearing
// Active deactivates it; there is no hard delete.
// UpdateEquipment merges the set fields of e into the stored record. active
// is separate from the model so an absent field keeps the stored value
// rather than silently deactivating the machine.
func (s *Service) UpdateEquipment(ctx context.Context, e *Equipment, active *bool) (*Equipment, error) {
	existing, err := s.equipment.GetByID(ctx, e.OrgID, e.ID)
	if err != nil {
		return nil, ErrNotFound
	}
	if e.Name != "" {
		existing.Name = e.Name
	}
	if e.EquipmentType != "" {
		if !validEquipmentTypes[e.EquipmentType] {
			return nil, fmt.Errorf("invalid equipment_type: %s", e.EquipmentType)
		}
		existing.EquipmentType = e.EquipmentType
	}
	if e.Manufacturer != nil {
		existing.Manufacturer = e.Manufacturer
	}
	if e.Model != nil {
		existing.Model = e.Model
	}
	if e.SerialNumber != nil {
		existing.SerialNumber = e.SerialNumber
	}
	if e.Location != nil {
		existing.Location = e.Location
	}
	if e.InstallationDate != nil {
		existing.InstallationDate = e.InstallationDate
	}
	if e.PhotonEnergies != nil {
		existing.PhotonEnergies = e.PhotonEnergies
	}
	if e.ElectronEnergies != nil {
		existing.ElectronEnergies = e.ElectronEnergies
	}
	if e.FFFEnergies != nil {
		existing.FFFEnergies = e.FFFEnergies
	}
	if active != nil {
		existing.Active = *active
	}
	if err := s.equipment.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Service) ListEquipment(ctx context.Context, orgID uuid.UUID, filter ListFilter, limit, offset int) ([]*Equipment, int, error) {
	return s.equipment.List(ctx, orgID, filter, limit, offset)
}

// GetBaselines returns the current baselines for one machine, or the full
// version history of one test when testID is given with history.
func (s *Service) GetBaselines(ctx context.Context, orgID, equipmentID uuid.UUID, testID string, history bool) ([]*Baseline, error) {
	if _, err := s.equipment.GetByID(ctx, orgID, equipmentID); err != nil {
		return nil, ErrNotFound
	}
	if testID != "" && history {
		return s.baselines.History(ctx, equipmentID, testID)
	}
	if testID != "" {
		b, err := s.baselines.GetCurrent(ctx, equipmentID, testID)
		if err != nil {
			return nil, nil
		}
		return []*Baseline{b}, nil
	}
	return s.baselines.ListCurrent(ctx, equipmentID)
}

// PutBaseline stores a new current baseline for (equipment, test). If the
// incoming values and source serial match the current record exactly the call
// is a no-op and the existing record is returned with outcome "unchanged".
// Otherwise a new record is inserted and the prior current record is
// superseded, both inside one transaction so at most one row per pair is ever
// current.
func (s *Service) PutBaseline(ctx context.Context, orgID, equipmentID uuid.UUID, testID string, values map[string]float64, sourceSerial *string, createdBy string) (*Baseline, string, error) {
	if testID == "" {
		return nil, "", fmt.Errorf("test_id is required")
	}
	if len(values) == 0 {
		return nil, "", fmt.Errorf("values are required")
	}
	eq, err := s.equipment.GetByID(ctx, orgID, equipmentID)
	if err != nil {
		return nil, "", ErrNotFound
	}

	current, err := s.baselines.GetCurrent(ctx, equipmentID, testID)
	if err != nil {
		current = nil
	}
	if current != nil && current.Matches(values, sourceSerial) {
		return current, PutUnchanged, nil
	}

	nb, err := s.writeBaseline(ctx, orgID, equipmentID, testID, values, sourceSerial, createdBy, current)
	if err != nil {
		return nil, "", err
	}

	if eq.EquipmentType == TypeBrachyHDR && sourceSerial != nil {
		s.propagateSourceBaseline(ctx, orgID, equipmentID, testID, values, sourceSerial, createdBy)
	}

	return nb, PutCreated, nil
}

func (s *Service) writeBaseline(ctx context.Context, orgID, equipmentID uuid.UUID, testID string, values map[string]float64, sourceSerial *string, createdBy string, current *Baseline) (*Baseline, error) {
	now := time.Now().UTC()
	nb := &Baseline{
		OrgID:        orgID,
		EquipmentID:  equipmentID,
		TestID:       testID,
		Values:       values,
		SourceSerial: sourceSerial,
		IsCurrent:    true,
		ValidFrom:    now,
		CreatedBy:    createdBy,
	}
	err := s.baselines.InTx(ctx, func(ctx context.Context) error {
		if err := s.baselines.Insert(ctx, nb); err != nil {
			return fmt.Errorf("inserting baseline: %w", err)
		}
		if current != nil {
			if err := s.baselines.Supersede(ctx, current.ID, nb.ID, now); err != nil {
				return fmt.Errorf("superseding baseline %s: %w", current.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return nb, nil
}

// propagateSourceBaseline duplicates a brachy source baseline to the other
// tests on the same machine that track the physical source. Failures are
// logged and never fail the primary write.
func (s *Service) propagateSourceBaseline(ctx context.Context, orgID, equipmentID uuid.UUID, originTestID string, values map[string]float64, sourceSerial *string, createdBy string) {
	siblings, err := s.baselines.ListCurrent(ctx, equipmentID)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("equipment_id", equipmentID.String()).
			Msg("source baseline propagation: listing siblings failed")
		return
	}
	for _, sib := range siblings {
		if sib.TestID == originTestID || sib.SourceSerial == nil {
			continue
		}
		if sib.Matches(values, sourceSerial) {
			continue
		}
		if _, err := s.writeBaseline(ctx, orgID, equipmentID, sib.TestID, values, sourceSerial, createdBy, sib); err != nil {
			s.logger.Warn().Err(err).
				Str("equipment_id", equipmentID.String()).
				Str("test_id", sib.TestID).
				Msg("source baseline propagation failed")
		}
	}
}

// DeleteBaseline removes the baseline rows for (equipment, test) outright.
func (s *Service) DeleteBaseline(ctx context.Context, orgID, equipmentID uuid.UUID, testID string) error {
	if testID == "" {
		return fmt.Errorf("test_id is required")
	}
	if _, err := s.equipment.GetByID(ctx, orgID, equipmentID); err != nil {
		return ErrNotFound
	}
	return s.baselines.Delete(ctx, equipmentID, testID)
}

// CurrentBaseline exposes the current baseline for one (equipment, test) to
// other services (report scoring, trends).
func (s *Service) CurrentBaseline(ctx context.Context, equipmentID uuid.UUID, testID string) (*Baseline, error) {
	return s.baselines.GetCurrent(ctx, equipmentID, testID)
}
