package catalog

import (
	"context"

	"github.com/google/uuid"
)

type ListFilter struct {
	EquipmentType string
	Frequency     string
	ActiveOnly    bool
}

type Repository interface {
	Create(ctx context.Context, d *TestDefinition) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*TestDefinition, error)
	Update(ctx context.Context, d *TestDefinition) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
	List(ctx context.Context, orgID uuid.UUID, filter ListFilter) ([]*TestDefinition, error)
	Exists(ctx context.Context, orgID uuid.UUID, equipmentType, testID string) (bool, error)
	MaxDisplayOrder(ctx context.Context, orgID uuid.UUID, equipmentType, frequency string) (int, error)
}
