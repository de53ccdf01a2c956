package trend

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RawPoint is one report line item as stored, before numeric filtering.
type RawPoint struct {
	TestID      string
	ReportDate  time.Time
	Measurement *float64
	Result      *string
	Verdict     *string
}

type Repository interface {
	// LinePoints returns the line items for one equipment within [from, to],
	// ordered by report date. testID narrows to a single series when set.
	LinePoints(ctx context.Context, orgID, equipmentID uuid.UUID, testID string, from, to time.Time) ([]RawPoint, error)
}
