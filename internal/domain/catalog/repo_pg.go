package catalog

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

type catalogRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &catalogRepoPG{pool: pool}
}

func (r *catalogRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const defCols = `id, organization_id, equipment_type, test_id, description,
	frequency, tolerance, action_level, measurement_unit, calculator,
	display_order, active, created_at, updated_at`

func (r *catalogRepoPG) scan(row pgx.Row) (*TestDefinition, error) {
	var d TestDefinition
	err := row.Scan(&d.ID, &d.OrgID, &d.EquipmentType, &d.TestID, &d.Description,
		&d.Frequency, &d.Tolerance, &d.ActionLevel, &d.Unit, &d.Calculator,
		&d.DisplayOrder, &d.Active, &d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (r *catalogRepoPG) Create(ctx context.Context, d *TestDefinition) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO qa_test_definitions (id, organization_id, equipment_type, test_id,
			description, frequency, tolerance, action_level, measurement_unit,
			calculator, display_order, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		d.ID, d.OrgID, d.EquipmentType, d.TestID, d.Description, d.Frequency,
		d.Tolerance, d.ActionLevel, d.Unit, d.Calculator, d.DisplayOrder, d.Active)
	return err
}

func (r *catalogRepoPG) GetByID(ctx context.Context, orgID, id uuid.UUID) (*TestDefinition, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+defCols+` FROM qa_test_definitions WHERE id = $1 AND organization_id = $2`, id, orgID))
}

func (r *catalogRepoPG) Update(ctx context.Context, d *TestDefinition) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE qa_test_definitions SET description=$3, frequency=$4, tolerance=$5,
			action_level=$6, measurement_unit=$7, calculator=$8, display_order=$9,
			active=$10, updated_at=NOW()
		WHERE id = $1 AND organization_id = $2`,
		d.ID, d.OrgID, d.Description, d.Frequency, d.Tolerance, d.ActionLevel,
		d.Unit, d.Calculator, d.DisplayOrder, d.Active)
	return err
}

func (r *catalogRepoPG) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM qa_test_definitions WHERE id = $1 AND organization_id = $2`, id, orgID)
	return err
}

func (r *catalogRepoPG) List(ctx context.Context, orgID uuid.UUID, filter ListFilter) ([]*TestDefinition, error) {
	query := `SELECT ` + defCols + ` FROM qa_test_definitions WHERE organization_id = $1`
	args := []interface{}{orgID}
	idx := 2

	if filter.EquipmentType != "" {
		query += fmt.Sprintf(` AND equipment_type = $%d`, idx)
		args = append(args, filter.EquipmentType)
		idx++
	}
	if filter.Frequency != "" {
		query += fmt.Sprintf(` AND frequency = $%d`, idx)
		args = append(args, filter.Frequency)
		idx++
	}
	if filter.ActiveOnly {
		query += ` AND active`
	}
	query += ` ORDER BY frequency, display_order, test_id`

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*TestDefinition
	for rows.Next() {
		d, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (r *catalogRepoPG) Exists(ctx context.Context, orgID uuid.UUID, equipmentType, testID string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM qa_test_definitions
			WHERE organization_id = $1 AND equipment_type = $2 AND test_id = $3)`,
		orgID, equipmentType, testID).Scan(&exists)
	return exists, err
}

func (r *catalogRepoPG) MaxDisplayOrder(ctx context.Context, orgID uuid.UUID, equipmentType, frequency string) (int, error) {
	var max int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COALESCE(MAX(display_order), 0) FROM qa_test_definitions
		WHERE organization_id = $1 AND equipment_type = $2 AND frequency = $3`,
		orgID, equipmentType, frequency).Scan(&max)
	return max, err
}
