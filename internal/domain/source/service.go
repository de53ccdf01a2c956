package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sasqart/radqa/pkg/qacalc"
)

var ErrNotFound = errors.New("source not found")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateSource(ctx context.Context, src *Source) error {
	if src.SerialNumber == "" {
		return fmt.Errorf("serial_number is required")
	}
	if _, ok := HalfLifeDays(src.Radionuclide); !ok {
		return fmt.Errorf("unknown radionuclide: %s", src.Radionuclide)
	}
	if src.InitialActivity <= 0 {
		return fmt.Errorf("initial_activity must be positive")
	}
	if src.CalibrationDate.IsZero() {
		return fmt.Errorf("calibration_date is required")
	}
	if src.Status == "" {
		src.Status = StatusInStorage
	}
	if !validStatuses[src.Status] {
		return fmt.Errorf("invalid status: %s", src.Status)
	}
	if src.ActivityUnit == "" {
		src.ActivityUnit = "Ci"
	}
	if err := s.repo.Create(ctx, src); err != nil {
		return err
	}
	s.decorate(src, time.Now())
	return nil
}

func (s *Service) GetSource(ctx context.Context, orgID, id uuid.UUID) (*Source, []*StatusChange, error) {
	src, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, nil, ErrNotFound
	}
	history, err := s.repo.StatusHistory(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	s.decorate(src, time.Now())
	return src, history, nil
}

// UpdateSource applies changes; a status transition is appended to the
// source's status history.
func (s *Service) UpdateSource(ctx context.Context, src *Source, changedBy string) (*Source, error) {
	existing, err := s.repo.GetByID(ctx, src.OrgID, src.ID)
	if err != nil {
		return nil, ErrNotFound
	}

	if src.Radionuclide != "" {
		if _, ok := HalfLifeDays(src.Radionuclide); !ok {
			return nil, fmt.Errorf("unknown radionuclide: %s", src.Radionuclide)
		}
		existing.Radionuclide = src.Radionuclide
	}
	if src.SerialNumber != "" {
		existing.SerialNumber = src.SerialNumber
	}
	if src.InitialActivity > 0 {
		existing.InitialActivity = src.InitialActivity
	}
	if src.ActivityUnit != "" {
		existing.ActivityUnit = src.ActivityUnit
	}
	if !src.CalibrationDate.IsZero() {
		existing.CalibrationDate = src.CalibrationDate
	}
	if src.EquipmentID != nil {
		existing.EquipmentID = src.EquipmentID
	}

	var change *StatusChange
	if src.Status != "" && src.Status != existing.Status {
		if !validStatuses[src.Status] {
			return nil, fmt.Errorf("invalid status: %s", src.Status)
		}
		change = &StatusChange{
			SourceID:   existing.ID,
			FromStatus: existing.Status,
			ToStatus:   src.Status,
			ChangedBy:  changedBy,
			ChangedAt:  time.Now().UTC(),
		}
		existing.Status = src.Status
	}

	// The history row and the source row must land together: a failed
	// update may not leave a phantom transition behind.
	err = s.repo.InTx(ctx, func(ctx context.Context) error {
		if change != nil {
			if err := s.repo.AppendStatusChange(ctx, change); err != nil {
				return fmt.Errorf("recording status change: %w", err)
			}
		}
		return s.repo.Update(ctx, existing)
	})
	if err != nil {
		return nil, err
	}
	s.decorate(existing, time.Now())
	return existing, nil
}

func (s *Service) DeleteSource(ctx context.Context, orgID, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, orgID, id); err != nil {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, orgID, id)
}

func (s *Service) ListSources(ctx context.Context, orgID uuid.UUID, status string, limit, offset int) ([]*Source, int, error) {
	items, total, err := s.repo.List(ctx, orgID, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	now := time.Now()
	for _, src := range items {
		s.decorate(src, now)
	}
	return items, total, nil
}

// decorate fills the decay-computed current activity.
func (s *Service) decorate(src *Source, now time.Time) {
	halfLife, ok := HalfLifeDays(src.Radionuclide)
	if !ok || src.CalibrationDate.IsZero() {
		return
	}
	a := qacalc.DecayedActivity(src.InitialActivity, halfLife, now.Sub(src.CalibrationDate))
	src.CurrentActivity = &a
}
