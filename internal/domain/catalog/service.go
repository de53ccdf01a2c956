package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("test definition not found")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) validate(d *TestDefinition) error {
	if d.TestID == "" {
		return fmt.Errorf("test_id is required")
	}
	if d.Description == "" {
		return fmt.Errorf("description is required")
	}
	if d.EquipmentType == "" {
		return fmt.Errorf("equipment_type is required")
	}
	if !validFrequencies[d.Frequency] {
		return fmt.Errorf("invalid frequency: %s", d.Frequency)
	}
	if d.Calculator != nil && *d.Calculator != "" && !validCalculators[*d.Calculator] {
		return fmt.Errorf("invalid calculator: %s", *d.Calculator)
	}
	return nil
}

// CreateTests inserts one or more definitions, assigning display order after
// the current maximum within each (equipment_type, frequency) group.
func (s *Service) CreateTests(ctx context.Context, orgID uuid.UUID, defs []*TestDefinition) ([]*TestDefinition, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("no tests given")
	}
	for _, d := range defs {
		if err := s.validate(d); err != nil {
			return nil, err
		}
	}

	// Next display order per group, advanced as the batch is inserted.
	nextOrder := map[string]int{}
	for _, d := range defs {
		d.OrgID = orgID
		d.Active = true

		exists, err := s.repo.Exists(ctx, orgID, d.EquipmentType, d.TestID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("test %s already defined for %s", d.TestID, d.EquipmentType)
		}

		if d.DisplayOrder == 0 {
			key := d.EquipmentType + "/" + d.Frequency
			if _, ok := nextOrder[key]; !ok {
				max, err := s.repo.MaxDisplayOrder(ctx, orgID, d.EquipmentType, d.Frequency)
				if err != nil {
					return nil, err
				}
				nextOrder[key] = max
			}
			nextOrder[key]++
			d.DisplayOrder = nextOrder[key]
		}
		if err := s.repo.Create(ctx, d); err != nil {
			return nil, err
		}
	}
	return defs, nil
}

func (s *Service) ListTests(ctx context.Context, orgID uuid.UUID, filter ListFilter) ([]*TestDefinition, error) {
	return s.repo.List(ctx, orgID, filter)
}

// UpdateTest merges the set fields of d into the stored definition; active
// is a pointer so an absent field keeps the stored value.
func (s *Service) UpdateTest(ctx context.Context, orgID uuid.UUID, d *TestDefinition, active *bool) (*TestDefinition, error) {
	existing, err := s.repo.GetByID(ctx, orgID, d.ID)
	if err != nil {
		return nil, ErrNotFound
	}
	if d.Description != "" {
		existing.Description = d.Description
	}
	if d.Frequency != "" {
		if !validFrequencies[d.Frequency] {
			return nil, fmt.Errorf("invalid frequency: %s", d.Frequency)
		}
		existing.Frequency = d.Frequency
	}
	if d.Tolerance != "" {
		existing.Tolerance = d.Tolerance
	}
	if d.ActionLevel != "" {
		existing.ActionLevel = d.ActionLevel
	}
	if d.Unit != nil {
		existing.Unit = d.Unit
	}
	if d.Calculator != nil {
		if *d.Calculator != "" && !validCalculators[*d.Calculator] {
			return nil, fmt.Errorf("invalid calculator: %s", *d.Calculator)
		}
		existing.Calculator = d.Calculator
	}
	if d.DisplayOrder > 0 {
		existing.DisplayOrder = d.DisplayOrder
	}
	if active != nil {
		existing.Active = *active
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Service) DeleteTest(ctx context.Context, orgID, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, orgID, id); err != nil {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, orgID, id)
}

// ImportDefaults seeds the SASQART linac catalog for the organization,
// skipping test ids that already exist. Returns the number of created rows.
func (s *Service) ImportDefaults(ctx context.Context, orgID uuid.UUID) (int, error) {
	created := 0
	for _, freq := range seedFrequencies {
		for i, t := range sasqartLinacCatalog[freq] {
			exists, err := s.repo.Exists(ctx, orgID, "linac", t.TestID)
			if err != nil {
				return created, err
			}
			if exists {
				continue
			}
			d := &TestDefinition{
				OrgID:         orgID,
				EquipmentType: "linac",
				TestID:        t.TestID,
				Description:   t.Description,
				Frequency:     freq,
				Tolerance:     t.Tolerance,
				ActionLevel:   t.ActionLevel,
				DisplayOrder:  i + 1,
				Active:        true,
			}
			if t.Unit != "" {
				u := t.Unit
				d.Unit = &u
			}
			if t.Calculator != "" {
				c := t.Calculator
				d.Calculator = &c
			}
			if err := s.repo.Create(ctx, d); err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}

// DefinitionIndex returns the active definitions for one equipment type and
// frequency, keyed by test id. Used when scoring report line items.
func (s *Service) DefinitionIndex(ctx context.Context, orgID uuid.UUID, equipmentType, frequency string) (map[string]*TestDefinition, error) {
	defs, err := s.repo.List(ctx, orgID, ListFilter{
		EquipmentType: equipmentType,
		Frequency:     frequency,
		ActiveOnly:    true,
	})
	if err != nil {
		return nil, err
	}
	index := make(map[string]*TestDefinition, len(defs))
	for _, d := range defs {
		index[d.TestID] = d
	}
	return index, nil
}
