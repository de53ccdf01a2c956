package source

import (
	"context"
	"fmt"

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

type sourceRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &sourceRepoPG{pool: pool}
}

func (r *sourceRepoPG) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.WithTx(ctx, r.pool, fn)
}

func (r *sourceRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const sourceCols = `id, organization_id, radionuclide, serial_number,
	initial_activity, activity_unit, calibration_date, status, equipment_id,
	created_at, updated_at`

func (r *sourceRepoPG) scan(row pgx.Row) (*Source, error) {
	var s Source
	err := row.Scan(&s.ID, &s.OrgID, &s.Radionuclide, &s.SerialNumber,
		&s.InitialActivity, &s.ActivityUnit, &s.CalibrationDate, &s.Status,
		&s.EquipmentID, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *sourceRepoPG) Create(ctx context.Context, s *Source) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO sources (id, organization_id, radionuclide, serial_number,
			initial_activity, activity_unit, calibration_date, status, equipment_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		s.ID, s.OrgID, s.Radionuclide, s.SerialNumber,
		s.InitialActivity, s.ActivityUnit, s.CalibrationDate, s.Status, s.EquipmentID)
	return err
}

func (r *sourceRepoPG) GetByID(ctx context.Context, orgID, id uuid.UUID) (*Source, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+sourceCols+` FROM sources WHERE id = $1 AND organization_id = $2`, id, orgID))
}

func (r *sourceRepoPG) Update(ctx context.Context, s *Source) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE sources SET radionuclide=$3, serial_number=$4, initial_activity=$5,
			activity_unit=$6, calibration_date=$7, status=$8, equipment_id=$9,
			updated_at=NOW()
		WHERE id = $1 AND organization_id = $2`,
		s.ID, s.OrgID, s.Radionuclide, s.SerialNumber, s.InitialActivity,
		s.ActivityUnit, s.CalibrationDate, s.Status, s.EquipmentID)
	return err
}

func (r *sourceRepoPG) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM sources WHERE id = $1 AND organization_id = $2`, id, orgID)
	return err
}

func (r *sourceRepoPG) List(ctx context.Context, orgID uuid.UUID, status string, limit, offset int) ([]*Source, int, error) {
	query := `SELECT ` + sourceCols + ` FROM sources WHERE organization_id = $1`
	countQuery := `SELECT COUNT(*) FROM sources WHERE organization_id = $1`
	args := []interface{}{orgID}
	idx := 2

	if status != "" {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		countQuery += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, status)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY calibration_date DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Source
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

func (r *sourceRepoPG) AppendStatusChange(ctx context.Context, c *StatusChange) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO source_status_history (id, source_id, from_status, to_status, changed_by, changed_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		c.ID, c.SourceID, c.FromStatus, c.ToStatus, c.ChangedBy, c.ChangedAt)
	return err
}

func (r *sourceRepoPG) StatusHistory(ctx context.Context, sourceID uuid.UUID) ([]*StatusChange, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, source_id, from_status, to_status, changed_by, changed_at
		FROM source_status_history
		WHERE source_id = $1
		ORDER BY changed_at DESC`, sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []*StatusChange
	for rows.Next() {
		var c StatusChange
		if err := rows.Scan(&c.ID, &c.SourceID, &c.FromStatus, &c.ToStatus, &c.ChangedBy, &c.ChangedAt); err != nil {
			return nil, err
		}
		changes = append(changes, &c)
	}
	return changes, rows.Err()
}
