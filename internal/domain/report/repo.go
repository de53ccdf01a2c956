package report

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ListFilter struct {
	EquipmentID uuid.UUID
	Frequency   string
	From        time.Time
	To          time.Time
}

// SummaryRow is one (frequency, overall_result) bucket of report counts.
type SummaryRow struct {
	Frequency string `json:"frequency"`
	Result    string `json:"result"`
	Count     int    `json:"count"`
}

type Repository interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error

	InsertReport(ctx context.Context, r *Report) error
	InsertLine(ctx context.Context, l *LineItem) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*Report, error)
	Lines(ctx context.Context, reportID uuid.UUID) ([]*LineItem, error)
	UpdateStatus(ctx context.Context, orgID, id uuid.UUID, status string) error
	DeleteLines(ctx context.Context, reportID uuid.UUID) error
	DeleteReport(ctx context.Context, orgID, id uuid.UUID) error
	List(ctx context.Context, orgID uuid.UUID, filter ListFilter, limit, offset int) ([]*Report, int, error)
	Summary(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]SummaryRow, error)
}
