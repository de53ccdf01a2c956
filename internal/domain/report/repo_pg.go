package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sasqart/radqa/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type reportRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &reportRepoPG{pool: pool}
}

func (r *reportRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *reportRepoPG) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.WithTx(ctx, r.pool, fn)
}

const reportCols = `id, organization_id, equipment_id, frequency, report_date,
	performer, witness, comments, signature, submitted_by, status,
	overall_result, created_at, updated_at`

func (r *reportRepoPG) scanReport(row pgx.Row) (*Report, error) {
	var rep Report
	err := row.Scan(&rep.ID, &rep.OrgID, &rep.EquipmentID, &rep.Frequency,
		&rep.ReportDate, &rep.Performer, &rep.Witness, &rep.Comments,
		&rep.Signature, &rep.SubmittedBy, &rep.Status, &rep.OverallResult,
		&rep.CreatedAt, &rep.UpdatedAt)
	return &rep, err
}

func (r *reportRepoPG) InsertReport(ctx context.Context, rep *Report) error {
	if rep.ID == uuid.Nil {
		rep.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO qa_reports (id, organization_id, equipment_id, frequency,
			report_date, performer, witness, comments, signature, submitted_by,
			status, overall_result)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		rep.ID, rep.OrgID, rep.EquipmentID, rep.Frequency, rep.ReportDate,
		rep.Performer, rep.Witness, rep.Comments, rep.Signature, rep.SubmittedBy,
		rep.Status, rep.OverallResult)
	return err
}

func (r *reportRepoPG) InsertLine(ctx context.Context, l *LineItem) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO qa_report_lines (id, report_id, test_id, status, result,
			measurement, energy, readings, baseline_value, deviation, verdict,
			evaluation, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		l.ID, l.ReportID, l.TestID, l.Status, l.Result,
		l.Measurement, l.Energy, l.Readings, l.BaselineValue, l.Deviation,
		l.Verdict, l.Evaluation, l.Notes)
	return err
}

func (r *reportRepoPG) GetByID(ctx context.Context, orgID, id uuid.UUID) (*Report, error) {
	return r.scanReport(r.conn(ctx).QueryRow(ctx,
		`SELECT `+reportCols+` FROM qa_reports WHERE id = $1 AND organization_id = $2`, id, orgID))
}

const lineCols = `id, report_id, test_id, status, result, measurement, energy,
	readings, baseline_value, deviation, verdict, evaluation, notes`

func (r *reportRepoPG) Lines(ctx context.Context, reportID uuid.UUID) ([]*LineItem, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+lineCols+` FROM qa_report_lines WHERE report_id = $1 ORDER BY test_id`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []*LineItem
	for rows.Next() {
		var l LineItem
		if err := rows.Scan(&l.ID, &l.ReportID, &l.TestID, &l.Status, &l.Result,
			&l.Measurement, &l.Energy, &l.Readings, &l.BaselineValue,
			&l.Deviation, &l.Verdict, &l.Evaluation, &l.Notes); err != nil {
			return nil, err
		}
		lines = append(lines, &l)
	}
	return lines, rows.Err()
}

func (r *reportRepoPG) UpdateStatus(ctx context.Context, orgID, id uuid.UUID, status string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE qa_reports SET status = $3, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2`, id, orgID, status)
	return err
}

func (r *reportRepoPG) DeleteLines(ctx context.Context, reportID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM qa_report_lines WHERE report_id = $1`, reportID)
	return err
}

func (r *reportRepoPG) DeleteReport(ctx context.Context, orgID, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM qa_reports WHERE id = $1 AND organization_id = $2`, id, orgID)
	return err
}

func (r *reportRepoPG) List(ctx context.Context, orgID uuid.UUID, filter ListFilter, limit, offset int) ([]*Report, int, error) {
	query := `SELECT ` + reportCols + ` FROM qa_reports WHERE organization_id = $1`
	countQuery := `SELECT COUNT(*) FROM qa_reports WHERE organization_id = $1`
	args := []interface{}{orgID}
	idx := 2

	add := func(clause string, value interface{}) {
		query += fmt.Sprintf(clause, idx)
		countQuery += fmt.Sprintf(clause, idx)
		args = append(args, value)
		idx++
	}
	if filter.EquipmentID != uuid.Nil {
		add(` AND equipment_id = $%d`, filter.EquipmentID)
	}
	if filter.Frequency != "" {
		add(` AND frequency = $%d`, filter.Frequency)
	}
	if !filter.From.IsZero() {
		add(` AND report_date >= $%d`, filter.From)
	}
	if !filter.To.IsZero() {
		add(` AND report_date <= $%d`, filter.To)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY report_date DESC, created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Report
	for rows.Next() {
		rep, err := r.scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rep)
	}
	return items, total, rows.Err()
}

func (r *reportRepoPG) Summary(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]SummaryRow, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT frequency, overall_result, COUNT(*)
		FROM qa_reports
		WHERE organization_id = $1 AND report_date >= $2 AND report_date <= $3
		GROUP BY frequency, overall_result
		ORDER BY frequency, overall_result`, orgID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SummaryRow
	for rows.Next() {
		var s SummaryRow
		if err := rows.Scan(&s.Frequency, &s.Result, &s.Count); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
