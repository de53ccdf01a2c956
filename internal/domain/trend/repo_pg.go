package trend

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type trendRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &trendRepoPG{pool: pool}
}

func (r *trendRepoPG) LinePoints(ctx context.Context, orgID, equipmentID uuid.UUID, testID string, from, to time.Time) ([]RawPoint, error) {
	q := `
		SELECT l.test_id, r.report_date, l.measurement, l.result, l.verdict
		FROM qa_report_lines l
		JOIN qa_reports r ON r.id = l.report_id
		WHERE r.organization_id = $1 AND r.equipment_id = $2
		  AND r.report_date >= $3 AND r.report_date <= $4`
	args := []interface{}{orgID, equipmentID, from, to}
	if testID != "" {
		args = append(args, testID)
		q += fmt.Sprintf(" AND l.test_id = $%d", len(args))
	}
	q += " ORDER BY r.report_date, l.test_id"

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []RawPoint
	for rows.Next() {
		var p RawPoint
		if err := rows.Scan(&p.TestID, &p.ReportDate, &p.Measurement, &p.Result, &p.Verdict); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
