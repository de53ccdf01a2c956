package org

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	CreateOrganization(ctx context.Context, o *Organization) error
	GetOrganization(ctx context.Context, id uuid.UUID) (*Organization, error)
	GetOrganizationByName(ctx context.Context, name string) (*Organization, error)
	UpdateOrganization(ctx context.Context, o *Organization) error

	CreateProfile(ctx context.Context, p *Profile) error
	GetProfileBySubject(ctx context.Context, subject string) (*Profile, error)

	EquipmentCount(ctx context.Context, orgID uuid.UUID) (int, error)
	ReportResultCounts(ctx context.Context, orgID uuid.UUID, since time.Time) (map[string]int, int, error)
	EquipmentQAStatus(ctx context.Context, orgID uuid.UUID) ([]EquipmentQAStatus, error)
}

type AuditRepository interface {
	Insert(ctx context.Context, rec *AuditRecord) error
	List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*AuditRecord, int, error)
}
