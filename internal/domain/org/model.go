package org

import (
	"time"

	"github.com/google/uuid"
)

// Organization is the tenant. Every equipment item, baseline and report
// belongs to exactly one organization.
type Organization struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	MaxEquipment int       `db:"max_equipment" json:"max_equipment"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Profile links an identity-provider subject to an organization.
type Profile struct {
	ID          uuid.UUID `db:"id" json:"id"`
	OrgID       uuid.UUID `db:"organization_id" json:"organization_id"`
	Subject     string    `db:"subject" json:"subject"`
	DisplayName string    `db:"display_name" json:"display_name"`
	Role        string    `db:"role" json:"role"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// EquipmentQAStatus summarizes the most recent daily and monthly QA for one
// equipment item on the dashboard.
type EquipmentQAStatus struct {
	EquipmentID   uuid.UUID  `json:"equipment_id"`
	Name          string     `json:"name"`
	EquipmentType string     `json:"equipment_type"`
	LastDailyQA   *time.Time `json:"last_daily_qa,omitempty"`
	LastMonthlyQA *time.Time `json:"last_monthly_qa,omitempty"`
	DailyQADue    bool       `json:"daily_qa_due"`
	MonthlyQADue  bool       `json:"monthly_qa_due"`
}

// Dashboard is the landing-page summary for one organization.
type Dashboard struct {
	EquipmentCount int                 `json:"equipment_count"`
	ReportsLast30  int                 `json:"reports_last_30_days"`
	ResultCounts   map[string]int      `json:"result_counts"`
	Equipment      []EquipmentQAStatus `json:"equipment"`
}

// AuditRecord is one row of the audit trail.
type AuditRecord struct {
	ID         uuid.UUID `db:"id" json:"id"`
	OrgID      uuid.UUID `db:"organization_id" json:"organization_id"`
	Subject    string    `db:"subject" json:"subject"`
	Resource   string    `db:"resource" json:"resource"`
	Action     string    `db:"action" json:"action"`
	Method     string    `db:"method" json:"method"`
	Path       string    `db:"path" json:"path"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	RequestID  string    `db:"request_id" json:"request_id"`
	StatusCode int       `db:"status_code" json:"status_code"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Daily QA is considered due after one calendar day without a report,
// monthly after 31 days.
const (
	dailyDueAfter   = 24 * time.Hour
	monthlyDueAfter = 31 * 24 * time.Hour
)

func (s *EquipmentQAStatus) markDue(now time.Time) {
	s.DailyQADue = s.LastDailyQA == nil || now.Sub(*s.LastDailyQA) > dailyDueAfter
	s.MonthlyQADue = s.LastMonthlyQA == nil || now.Sub(*s.LastMonthlyQA) > monthlyDueAfter
}
