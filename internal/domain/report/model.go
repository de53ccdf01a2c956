package report

import (
	"time"

	"github.com/google/uuid"
)

// Report is one QA session for one machine: a header plus a set of line
// items. Line items are written once with the report and never mutated.
type Report struct {
	ID            uuid.UUID `db:"id" json:"id"`
	OrgID         uuid.UUID `db:"organization_id" json:"organization_id"`
	EquipmentID   uuid.UUID `db:"equipment_id" json:"equipment_id"`
	Frequency     string    `db:"frequency" json:"frequency"`
	ReportDate    time.Time `db:"report_date" json:"report_date"`
	Performer     string    `db:"performer" json:"performer"`
	Witness       *string   `db:"witness" json:"witness,omitempty"`
	Comments      *string   `db:"comments" json:"comments,omitempty"`
	Signature     *string   `db:"signature" json:"signature,omitempty"`
	SubmittedBy   string    `db:"submitted_by" json:"submitted_by"`
	Status        string    `db:"status" json:"status"`
	OverallResult string    `db:"overall_result" json:"overall_result"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`

	Lines []*LineItem `db:"-" json:"tests,omitempty"`
}

// LineItem is one check within a report. Result holds the raw operator
// entry; Measurement is its numeric parse when one exists. BaselineValue,
// Deviation and Verdict are filled by the scorer when the test has a bound
// calculator and a current baseline.
type LineItem struct {
	ID       uuid.UUID `db:"id" json:"id"`
	ReportID uuid.UUID `db:"report_id" json:"report_id"`
	TestID   string    `db:"test_id" json:"test_id"`
	Status   string    `db:"status" json:"status"`

	Result      *string   `db:"result" json:"result,omitempty"`
	Measurement *float64  `db:"measurement" json:"measurement,omitempty"`
	Energy      *string   `db:"energy" json:"energy,omitempty"`
	Readings    []float64 `db:"readings" json:"readings,omitempty"`

	BaselineValue *float64 `db:"baseline_value" json:"baseline_value,omitempty"`
	Deviation     *float64 `db:"deviation" json:"deviation,omitempty"`
	Verdict       *string  `db:"verdict" json:"verdict,omitempty"`
	Evaluation    *string  `db:"evaluation" json:"evaluation,omitempty"`

	Notes *string `db:"notes" json:"notes,omitempty"`
}

// Report life cycle.
const (
	StatusSubmitted = "submitted"
	StatusReviewed  = "reviewed"
	StatusApproved  = "approved"
)

// Overall results.
const (
	ResultPass        = "pass"
	ResultConditional = "conditional"
	ResultFail        = "fail"
)

// statusTransitions lists the allowed review flow.
var statusTransitions = map[string]string{
	StatusSubmitted: StatusReviewed,
	StatusReviewed:  StatusApproved,
}

var validFrequencies = map[string]bool{
	"daily":     true,
	"monthly":   true,
	"quarterly": true,
	"annual":    true,
}

var validLineStatuses = map[string]bool{
	"pass": true, "fail": true, "na": true, "": true,
}
