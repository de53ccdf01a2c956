package instrument

import (
	"context"

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

type instrumentRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &instrumentRepoPG{pool: pool}
}

func (r *instrumentRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const instrumentCols = `id, organization_id, name, instrument_type, serial_number,
	calibration_factor, calibration_date, calibration_due, active, created_at, updated_at`

func (r *instrumentRepoPG) scan(row pgx.Row) (*Instrument, error) {
	var i Instrument
	err := row.Scan(&i.ID, &i.OrgID, &i.Name, &i.InstrumentType, &i.SerialNumber,
		&i.CalibrationFactor, &i.CalibrationDate, &i.CalibrationDue,
		&i.Active, &i.CreatedAt, &i.UpdatedAt)
	return &i, err
}

func (r *instrumentRepoPG) Create(ctx context.Context, i *Instrument) error {
	i.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO instruments (id, organization_id, name, instrument_type,
			serial_number, calibration_factor, calibration_date, calibration_due, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		i.ID, i.OrgID, i.Name, i.InstrumentType, i.SerialNumber,
		i.CalibrationFactor, i.CalibrationDate, i.CalibrationDue, i.Active)
	return err
}

func (r *instrumentRepoPG) GetByID(ctx context.Context, orgID, id uuid.UUID) (*Instrument, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+instrumentCols+` FROM instruments WHERE id = $1 AND organization_id = $2`, id, orgID))
}

func (r *instrumentRepoPG) Update(ctx context.Context, i *Instrument) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE instruments SET name=$3, instrument_type=$4, serial_number=$5,
			calibration_factor=$6, calibration_date=$7, calibration_due=$8,
			active=$9, updated_at=NOW()
		WHERE id = $1 AND organization_id = $2`,
		i.ID, i.OrgID, i.Name, i.InstrumentType, i.SerialNumber,
		i.CalibrationFactor, i.CalibrationDate, i.CalibrationDue, i.Active)
	return err
}

func (r *instrumentRepoPG) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM instruments WHERE id = $1 AND organization_id = $2`, id, orgID)
	return err
}

func (r *instrumentRepoPG) List(ctx context.Context, orgID uuid.UUID, activeOnly bool, limit, offset int) ([]*Instrument, int, error) {
	query := `SELECT ` + instrumentCols + ` FROM instruments WHERE organization_id = $1`
	countQuery := `SELECT COUNT(*) FROM instruments WHERE organization_id = $1`
	if activeOnly {
		query += ` AND active`
		countQuery += ` AND active`
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, orgID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, query+` ORDER BY name LIMIT $2 OFFSET $3`, orgID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Instrument
	for rows.Next() {
		i, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, i)
	}
	return items, total, rows.Err()
}
