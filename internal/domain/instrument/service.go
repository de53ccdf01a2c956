package instrument

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("instrument not found")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateInstrument(ctx context.Context, i *Instrument) error {
	if i.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !validInstrumentTypes[i.InstrumentType] {
		return fmt.Errorf("invalid instrument_type: %s", i.InstrumentType)
	}
	i.Active = true
	if err := s.repo.Create(ctx, i); err != nil {
		return err
	}
	i.markOverdue(time.Now())
	return nil
}

func (s *Service) GetInstrument(ctx context.Context, orgID, id uuid.UUID) (*Instrument, error) {
	i, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, ErrNotFound
	}
	i.markOverdue(time.Now())
	return i, nil
}

// UpdateInstrument merges the set fields of i into the stored record; active
// is a pointer so an absent field keeps the stored value.
func (s *Service) UpdateInstrument(ctx context.Context, i *Instrument, active *bool) (*Instrument, error) {
	existing, err := s.repo.GetByID(ctx, i.OrgID, i.ID)
	if err != nil {
		return nil, ErrNotFound
	}
	if i.Name != "" {
		existing.Name = i.Name
	}
	if i.InstrumentType != "" {
		if !validInstrumentTypes[i.InstrumentType] {
			return nil, fmt.Errorf("invalid instrument_type: %s", i.InstrumentType)
		}
		existing.InstrumentType = i.InstrumentType
	}
	if i.SerialNumber != nil {
		existing.SerialNumber = i.SerialNumber
	}
	if i.CalibrationFactor != nil {
		existing.CalibrationFactor = i.CalibrationFactor
	}
	if i.CalibrationDate != nil {
		existing.CalibrationDate = i.CalibrationDate
	}
	if i.CalibrationDue != nil {
		existing.CalibrationDue = i.CalibrationDue
	}
	if active != nil {
		existing.Active = *active
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	existing.markOverdue(time.Now())
	return existing, nil
}

func (s *Service) DeleteInstrument(ctx context.Context, orgID, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, orgID, id); err != nil {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, orgID, id)
}

func (s *Service) ListInstruments(ctx context.Context, orgID uuid.UUID, activeOnly bool, limit, offset int) ([]*Instrument, int, error) {
	items, total, err := s.repo.List(ctx, orgID, activeOnly, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	now := time.Now()
	for _, i := range items {
		i.markOverdue(now)
	}
	return items, total, nil
}
