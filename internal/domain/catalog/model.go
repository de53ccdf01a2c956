package catalog

import (
	"time"

	"github.com/google/uuid"
)

// TestDefinition is one entry of an organization's QA test catalog: what is
// checked, how often, and which tolerance and action-level bands apply.
// Tolerance and action level are stored as the protocol strings
// ("2.00%", "1 mm", "0.5°", "Functional"); numeric bands are parsed out at
// scoring time.
type TestDefinition struct {
	ID            uuid.UUID `db:"id" json:"id"`
	OrgID         uuid.UUID `db:"organization_id" json:"organization_id"`
	EquipmentType string    `db:"equipment_type" json:"equipment_type"`
	TestID        string    `db:"test_id" json:"test_id"`
	Description   string    `db:"description" json:"description"`
	Frequency     string    `db:"frequency" json:"frequency"`
	Tolerance     string    `db:"tolerance" json:"tolerance"`
	ActionLevel   string    `db:"action_level" json:"action_level"`
	Unit          *string   `db:"measurement_unit" json:"measurement_unit,omitempty"`
	Calculator    *string   `db:"calculator" json:"calculator,omitempty"`
	DisplayOrder  int       `db:"display_order" json:"display_order"`
	Active        bool      `db:"active" json:"active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Calculator bindings understood by the report scorer.
const (
	CalcPercentDiff = "percent_diff"
	CalcPosition    = "position"
	CalcDwellTime   = "dwell_time"
	CalcTimerLin    = "timer_linearity"
	CalcTransit     = "transit"
	CalcDecay       = "decay"
)

var validFrequencies = map[string]bool{
	"daily":     true,
	"monthly":   true,
	"quarterly": true,
	"annual":    true,
}

var validCalculators = map[string]bool{
	CalcPercentDiff: true,
	CalcPosition:    true,
	CalcDwellTime:   true,
	CalcTimerLin:    true,
	CalcTransit:     true,
	CalcDecay:       true,
}
