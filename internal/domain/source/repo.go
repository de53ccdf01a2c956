package source

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
	Create(ctx context.Context, s *Source) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*Source, error)
	Update(ctx context.Context, s *Source) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
	List(ctx context.Context, orgID uuid.UUID, status string, limit, offset int) ([]*Source, int, error)

	AppendStatusChange(ctx context.Context, c *StatusChange) error
	StatusHistory(ctx context.Context, sourceID uuid.UUID) ([]*StatusChange, error)
}
