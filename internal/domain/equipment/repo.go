package equipment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ListFilter struct {
	IncludeInactive bool
	EquipmentType   string
}

type Repository interface {
	Create(ctx context.Context, e *Equipment) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*Equipment, error)
	Update(ctx context.Context, e *Equipment) error
	List(ctx context.Context, orgID uuid.UUID, filter ListFilter, limit, offset int) ([]*Equipment, int, error)
	CountActive(ctx context.Context, orgID uuid.UUID) (int, error)
}

type BaselineRepository interface {
	// InTx runs fn with all repository calls inside one transaction.
	InTx(ctx context.Context, fn func(ctx context.Context) error) error

	ListCurrent(ctx context.Context, equipmentID uuid.UUID) ([]*Baseline, error)
	GetCurrent(ctx context.Context, equipmentID uuid.UUID, testID string) (*Baseline, error)
	History(ctx context.Context, equipmentID uuid.UUID, testID string) ([]*Baseline, error)
	Insert(ctx context.Context, b *Baseline) error
	Supersede(ctx context.Context, oldID, newID uuid.UUID, at time.Time) error
	Delete(ctx context.Context, equipmentID uuid.UUID, testID string) error
}
