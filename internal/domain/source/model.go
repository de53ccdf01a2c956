package source

import (
	"time"

	"github.com/google/uuid"
)

// Source is one physical radioactive source tracked through its life cycle:
// delivery, clinical use, storage, return to the vendor or disposal.
type Source struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	OrgID           uuid.UUID  `db:"organization_id" json:"organization_id"`
	Radionuclide    string     `db:"radionuclide" json:"radionuclide"`
	SerialNumber    string     `db:"serial_number" json:"serial_number"`
	InitialActivity float64    `db:"initial_activity" json:"initial_activity"`
	ActivityUnit    string     `db:"activity_unit" json:"activity_unit"`
	CalibrationDate time.Time  `db:"calibration_date" json:"calibration_date"`
	Status          string     `db:"status" json:"status"`
	EquipmentID     *uuid.UUID `db:"equipment_id" json:"equipment_id,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`

	// Computed from the radionuclide half-life, never stored.
	CurrentActivity *float64 `db:"-" json:"current_activity,omitempty"`
}

// StatusChange is one entry of a source's status history.
type StatusChange struct {
	ID         uuid.UUID `db:"id" json:"id"`
	SourceID   uuid.UUID `db:"source_id" json:"source_id"`
	FromStatus string    `db:"from_status" json:"from_status"`
	ToStatus   string    `db:"to_status" json:"to_status"`
	ChangedBy  string    `db:"changed_by" json:"changed_by"`
	ChangedAt  time.Time `db:"changed_at" json:"changed_at"`
}

const (
	StatusInUse     = "in_use"
	StatusInStorage = "in_storage"
	StatusReturned  = "returned"
	StatusDisposed  = "disposed"
)

var validStatuses = map[string]bool{
	StatusInUse:     true,
	StatusInStorage: true,
	StatusReturned:  true,
	StatusDisposed:  true,
}

// Radionuclide is a catalog entry of physical decay data.
type Radionuclide struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	HalfLifeDays float64 `json:"half_life_days"`
}

// Radionuclides used in brachytherapy and calibration sources.
var Radionuclides = []Radionuclide{
	{Symbol: "Ir-192", Name: "Iridium-192", HalfLifeDays: 73.83},
	{Symbol: "Co-60", Name: "Cobalt-60", HalfLifeDays: 1925.28},
	{Symbol: "Cs-137", Name: "Cesium-137", HalfLifeDays: 10983},
	{Symbol: "I-125", Name: "Iodine-125", HalfLifeDays: 59.4},
	{Symbol: "Pd-103", Name: "Palladium-103", HalfLifeDays: 16.99},
}

// HalfLifeDays looks up the half-life for a radionuclide symbol.
func HalfLifeDays(symbol string) (float64, bool) {
	for _, r := range Radionuclides {
		if r.Symbol == symbol {
			return r.HalfLifeDays, true
		}
	}
	return 0, false
}
