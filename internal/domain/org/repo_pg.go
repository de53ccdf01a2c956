package org

import (
	"context"
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

type orgRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &orgRepoPG{pool: pool}
}

func (r *orgRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const orgCols = `id, name, max_equipment, created_at, updated_at`

func (r *orgRepoPG) scanOrg(row pgx.Row) (*Organization, error) {
	var o Organization
	err := row.Scan(&o.ID, &o.Name, &o.MaxEquipment, &o.CreatedAt, &o.UpdatedAt)
	return &o, err
}

func (r *orgRepoPG) CreateOrganization(ctx context.Context, o *Organization) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO organizations (id, name, max_equipment)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO NOTHING`,
		o.ID, o.Name, o.MaxEquipment)
	return err
}

func (r *orgRepoPG) GetOrganization(ctx context.Context, id uuid.UUID) (*Organization, error) {
	return r.scanOrg(r.conn(ctx).QueryRow(ctx, `SELECT `+orgCols+` FROM organizations WHERE id = $1`, id))
}

func (r *orgRepoPG) GetOrganizationByName(ctx context.Context, name string) (*Organization, error) {
	return r.scanOrg(r.conn(ctx).QueryRow(ctx, `SELECT `+orgCols+` FROM organizations WHERE name = $1`, name))
}

func (r *orgRepoPG) UpdateOrganization(ctx context.Context, o *Organization) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE organizations SET name = $2, max_equipment = $3, updated_at = NOW()
		WHERE id = $1`,
		o.ID, o.Name, o.MaxEquipment)
	return err
}

func (r *orgRepoPG) CreateProfile(ctx context.Context, p *Profile) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO profiles (id, organization_id, subject, display_name, role)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (subject) DO NOTHING`,
		p.ID, p.OrgID, p.Subject, p.DisplayName, p.Role)
	return err
}

func (r *orgRepoPG) GetProfileBySubject(ctx context.Context, subject string) (*Profile, error) {
	var p Profile
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, organization_id, subject, display_name, role, created_at, updated_at
		FROM profiles WHERE subject = $1`, subject).
		Scan(&p.ID, &p.OrgID, &p.Subject, &p.DisplayName, &p.Role, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *orgRepoPG) EquipmentCount(ctx context.Context, orgID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM equipment WHERE organization_id = $1 AND active`, orgID).Scan(&n)
	return n, err
}

func (r *orgRepoPG) ReportResultCounts(ctx context.Context, orgID uuid.UUID, since time.Time) (map[string]int, int, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT overall_result, COUNT(*)
		FROM qa_reports
		WHERE organization_id = $1 AND report_date >= $2
		GROUP BY overall_result`, orgID, since)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	counts := map[string]int{}
	total := 0
	for rows.Next() {
		var result string
		var n int
		if err := rows.Scan(&result, &n); err != nil {
			return nil, 0, err
		}
		counts[result] = n
		total += n
	}
	return counts, total, rows.Err()
}

func (r *orgRepoPG) EquipmentQAStatus(ctx context.Context, orgID uuid.UUID) ([]EquipmentQAStatus, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT e.id, e.name, e.equipment_type,
			MAX(r.report_date) FILTER (WHERE r.frequency = 'daily'),
			MAX(r.report_date) FILTER (WHERE r.frequency = 'monthly')
		FROM equipment e
		LEFT JOIN qa_reports r ON r.equipment_id = e.id
		WHERE e.organization_id = $1 AND e.active
		GROUP BY e.id, e.name, e.equipment_type
		ORDER BY e.name`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := time.Now()
	var statuses []EquipmentQAStatus
	for rows.Next() {
		var s EquipmentQAStatus
		if err := rows.Scan(&s.EquipmentID, &s.Name, &s.EquipmentType, &s.LastDailyQA, &s.LastMonthlyQA); err != nil {
			return nil, err
		}
		s.markDue(now)
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}

// -- audit --

type auditRepoPG struct{ pool *pgxpool.Pool }

func NewAuditRepoPG(pool *pgxpool.Pool) AuditRepository {
	return &auditRepoPG{pool: pool}
}

func (r *auditRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *auditRepoPG) Insert(ctx context.Context, rec *AuditRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO audit_log (id, organization_id, subject, resource, action,
			method, path, ip_address, user_agent, request_id, status_code, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		rec.ID, rec.OrgID, rec.Subject, rec.Resource, rec.Action,
		rec.Method, rec.Path, rec.IPAddress, rec.UserAgent, rec.RequestID,
		rec.StatusCode, rec.CreatedAt)
	return err
}

func (r *auditRepoPG) List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*AuditRecord, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM audit_log WHERE organization_id = $1`, orgID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, organization_id, subject, resource, action, method, path,
			ip_address, user_agent, request_id, status_code, created_at
		FROM audit_log
		WHERE organization_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, orgID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var recs []*AuditRecord
	for rows.Next() {
		var rec AuditRecord
		if err := rows.Scan(&rec.ID, &rec.OrgID, &rec.Subject, &rec.Resource,
			&rec.Action, &rec.Method, &rec.Path, &rec.IPAddress, &rec.UserAgent,
			&rec.RequestID, &rec.StatusCode, &rec.CreatedAt); err != nil {
			return nil, 0, err
		}
		recs = append(recs, &rec)
	}
	return recs, total, rows.Err()
}
