package org

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sasqart/radqa/internal/platform/middleware"
)

type Service struct {
	repo           Repository
	audit          AuditRepository
	defaultOrgName string
	defaultCeiling int
}

func NewService(repo Repository, audit AuditRepository, defaultOrgName string, defaultCeiling int) *Service {
	if defaultOrgName == "" {
		defaultOrgName = "Default Clinic"
	}
	if defaultCeiling <= 0 {
		defaultCeiling = 25
	}
	return &Service{
		repo:           repo,
		audit:          audit,
		defaultOrgName: defaultOrgName,
		defaultCeiling: defaultCeiling,
	}
}

// Ensure resolves the organization for an authenticated subject, provisioning
// the organization and profile on first contact. Safe to call concurrently
// for the same subject: inserts are ON CONFLICT DO NOTHING with read-back.
func (s *Service) Ensure(ctx context.Context, subject, name, orgHint string) (uuid.UUID, error) {
	if subject == "" {
		return uuid.Nil, fmt.Errorf("subject is required")
	}

	if p, err := s.repo.GetProfileBySubject(ctx, subject); err == nil {
		return p.OrgID, nil
	}

	orgID, err := s.resolveOrg(ctx, orgHint)
	if err != nil {
		return uuid.Nil, err
	}

	if name == "" {
		name = subject
	}
	p := &Profile{OrgID: orgID, Subject: subject, DisplayName: name, Role: "physicist"}
	if err := s.repo.CreateProfile(ctx, p); err != nil {
		return uuid.Nil, fmt.Errorf("creating profile: %w", err)
	}
	// Re-read in case a concurrent request won the insert with a different org.
	p, err = s.repo.GetProfileBySubject(ctx, subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("reading back profile: %w", err)
	}
	return p.OrgID, nil
}

func (s *Service) resolveOrg(ctx context.Context, orgHint string) (uuid.UUID, error) {
	if orgHint != "" {
		if id, err := uuid.Parse(orgHint); err == nil {
			if o, err := s.repo.GetOrganization(ctx, id); err == nil {
				return o.ID, nil
			}
			return uuid.Nil, fmt.Errorf("organization %s not found", orgHint)
		}
		// Non-UUID hints are treated as organization names.
		return s.ensureOrgByName(ctx, orgHint)
	}
	return s.ensureOrgByName(ctx, s.defaultOrgName)
}

func (s *Service) ensureOrgByName(ctx context.Context, name string) (uuid.UUID, error) {
	if o, err := s.repo.GetOrganizationByName(ctx, name); err == nil {
		return o.ID, nil
	}
	o := &Organization{Name: name, MaxEquipment: s.defaultCeiling}
	if err := s.repo.CreateOrganization(ctx, o); err != nil {
		return uuid.Nil, fmt.Errorf("creating organization: %w", err)
	}
	o, err := s.repo.GetOrganizationByName(ctx, name)
	if err != nil {
		return uuid.Nil, fmt.Errorf("reading back organization: %w", err)
	}
	return o.ID, nil
}

// CreateOrganization provisions a named organization directly (tenant create CLI).
func (s *Service) CreateOrganization(ctx context.Context, name string, maxEquipment int) (*Organization, error) {
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if maxEquipment <= 0 {
		maxEquipment = s.defaultCeiling
	}
	o := &Organization{Name: name, MaxEquipment: maxEquipment}
	if err := s.repo.CreateOrganization(ctx, o); err != nil {
		return nil, err
	}
	return s.repo.GetOrganizationByName(ctx, name)
}

func (s *Service) Settings(ctx context.Context, orgID uuid.UUID) (*Organization, error) {
	return s.repo.GetOrganization(ctx, orgID)
}

func (s *Service) UpdateSettings(ctx context.Context, orgID uuid.UUID, name string, maxEquipment int) (*Organization, error) {
	o, err := s.repo.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("organization not found")
	}
	if name != "" {
		o.Name = name
	}
	if maxEquipment > 0 {
		o.MaxEquipment = maxEquipment
	}
	if err := s.repo.UpdateOrganization(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) Dashboard(ctx context.Context, orgID uuid.UUID) (*Dashboard, error) {
	count, err := s.repo.EquipmentCount(ctx, orgID)
	if err != nil {
		return nil, err
	}
	since := time.Now().AddDate(0, 0, -30)
	results, total, err := s.repo.ReportResultCounts(ctx, orgID, since)
	if err != nil {
		return nil, err
	}
	statuses, err := s.repo.EquipmentQAStatus(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		EquipmentCount: count,
		ReportsLast30:  total,
		ResultCounts:   results,
		Equipment:      statuses,
	}, nil
}

func (s *Service) ListAudit(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*AuditRecord, int, error) {
	return s.audit.List(ctx, orgID, limit, offset)
}

// RecordAccess implements middleware.AuditRecorder, persisting audit entries
// to the audit_log table. Entries with no resolved organization are skipped.
func (s *Service) RecordAccess(ctx context.Context, entry middleware.AuditEntry) error {
	if entry.OrgID == uuid.Nil {
		return nil
	}
	return s.audit.Insert(ctx, &AuditRecord{
		OrgID:      entry.OrgID,
		Subject:    entry.Subject,
		Resource:   entry.Resource,
		Action:     entry.Action,
		Method:     entry.Method,
		Path:       entry.Path,
		IPAddress:  entry.IPAddress,
		UserAgent:  entry.UserAgent,
		RequestID:  entry.RequestID,
		StatusCode: entry.StatusCode,
		CreatedAt:  entry.Timestamp,
	})
}
