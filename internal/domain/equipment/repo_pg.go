package equipment

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

type equipmentRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &equipmentRepoPG{pool: pool}
}

func (r *equipmentRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const equipmentCols = `id, organization_id, name, equipment_type, manufacturer,
	model, serial_number, location, installation_date,
	photon_energies, electron_energies, fff_energies,
	active, created_at, updated_at`

func (r *equipmentRepoPG) scan(row pgx.Row) (*Equipment, error) {
	var e Equipment
	err := row.Scan(&e.ID, &e.OrgID, &e.Name, &e.EquipmentType, &e.Manufacturer,
		&e.Model, &e.SerialNumber, &e.Location, &e.InstallationDate,
		&e.PhotonEnergies, &e.ElectronEnergies, &e.FFFEnergies,
		&e.Active, &e.CreatedAt, &e.UpdatedAt)
	return &e, err
}

func (r *equipmentRepoPG) Create(ctx context.Context, e *Equipment) error {
	e.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO equipment (id, organization_id, name, equipment_type,
			manufacturer, model, serial_number, location, installation_date,
			photon_energies, electron_energies, fff_energies, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		e.ID, e.OrgID, e.Name, e.EquipmentType,
		e.Manufacturer, e.Model, e.SerialNumber, e.Location, e.InstallationDate,
		e.PhotonEnergies, e.ElectronEnergies, e.FFFEnergies, e.Active)
	return err
}

func (r *equipmentRepoPG) GetByID(ctx context.Context, orgID, id uuid.UUID) (*Equipment, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+equipmentCols+` FROM equipment WHERE id = $1 AND organization_id = $2`, id, orgID))
}

func (r *equipmentRepoPG) Update(ctx context.Context, e *Equipment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE equipment SET name=$3, equipment_type=$4, manufacturer=$5, model=$6,
			serial_number=$7, location=$8, installation_date=$9,
			photon_energies=$10, electron_energies=$11, fff_energies=$12,
			active=$13, updated_at=NOW()
		WHERE id = $1 AND organization_id = $2`,
		e.ID, e.OrgID, e.Name, e.EquipmentType, e.Manufacturer, e.Model,
		e.SerialNumber, e.Location, e.InstallationDate,
		e.PhotonEnergies, e.ElectronEnergies, e.FFFEnergies, e.Active)
	return err
}

func (r *equipmentRepoPG) List(ctx context.Context, orgID uuid.UUID, filter ListFilter, limit, offset int) ([]*Equipment, int, error) {
	query := `SELECT ` + equipmentCols + ` FROM equipment WHERE organization_id = $1`
	countQuery := `SELECT COUNT(*) FROM equipment WHERE organization_id = $1`
	args := []interface{}{orgID}
	idx := 2

	if !filter.IncludeInactive {
		query += ` AND active`
		countQuery += ` AND active`
	}
	if filter.EquipmentType != "" {
		query += fmt.Sprintf(` AND equipment_type = $%d`, idx)
		countQuery += fmt.Sprintf(` AND equipment_type = $%d`, idx)
		args = append(args, filter.EquipmentType)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY name LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Equipment
	for rows.Next() {
		e, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}

func (r *equipmentRepoPG) CountActive(ctx context.Context, orgID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM equipment WHERE organization_id = $1 AND active`, orgID).Scan(&n)
	return n, err
}

// -- baselines --

type baselineRepoPG struct{ pool *pgxpool.Pool }

func NewBaselineRepoPG(pool *pgxpool.Pool) BaselineRepository {
	return &baselineRepoPG{pool: pool}
}

func (r *baselineRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *baselineRepoPG) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.WithTx(ctx, r.pool, fn)
}

const baselineCols = `id, organization_id, equipment_id, test_id, baseline_values,
	source_serial, is_current, valid_from, valid_until, superseded_by,
	created_by, created_at`

func (r *baselineRepoPG) scan(row pgx.Row) (*Baseline, error) {
	var b Baseline
	err := row.Scan(&b.ID, &b.OrgID, &b.EquipmentID, &b.TestID, &b.Values,
		&b.SourceSerial, &b.IsCurrent, &b.ValidFrom, &b.ValidUntil,
		&b.SupersededBy, &b.CreatedBy, &b.CreatedAt)
	return &b, err
}

func (r *baselineRepoPG) ListCurrent(ctx context.Context, equipmentID uuid.UUID) ([]*Baseline, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+baselineCols+` FROM equipment_baselines
		WHERE equipment_id = $1 AND is_current
		ORDER BY test_id`, equipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Baseline
	for rows.Next() {
		b, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

func (r *baselineRepoPG) GetCurrent(ctx context.Context, equipmentID uuid.UUID, testID string) (*Baseline, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `
		SELECT `+baselineCols+` FROM equipment_baselines
		WHERE equipment_id = $1 AND test_id = $2 AND is_current`, equipmentID, testID))
}

func (r *baselineRepoPG) History(ctx context.Context, equipmentID uuid.UUID, testID string) ([]*Baseline, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+baselineCols+` FROM equipment_baselines
		WHERE equipment_id = $1 AND test_id = $2
		ORDER BY valid_from DESC`, equipmentID, testID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Baseline
	for rows.Next() {
		b, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

func (r *baselineRepoPG) Insert(ctx context.Context, b *Baseline) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO equipment_baselines (id, organization_id, equipment_id, test_id,
			baseline_values, source_serial, is_current, valid_from, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		b.ID, b.OrgID, b.EquipmentID, b.TestID,
		b.Values, b.SourceSerial, b.IsCurrent, b.ValidFrom, b.CreatedBy)
	return err
}

func (r *baselineRepoPG) Supersede(ctx context.Context, oldID, newID uuid.UUID, at time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE equipment_baselines
		SET is_current = FALSE, valid_until = $2, superseded_by = $3
		WHERE id = $1`, oldID, at, newID)
	return err
}

func (r *baselineRepoPG) Delete(ctx context.Context, equipmentID uuid.UUID, testID string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		DELETE FROM equipment_baselines WHERE equipment_id = $1 AND test_id = $2`,
		equipmentID, testID)
	return err
}
