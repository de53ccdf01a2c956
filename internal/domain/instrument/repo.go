package instrument

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, i *Instrument) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*Instrument, error)
	Update(ctx context.Context, i *Instrument) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
	List(ctx context.Context, orgID uuid.UUID, activeOnly bool, limit, offset int) ([]*Instrument, int, error)
}
