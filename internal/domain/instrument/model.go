package instrument

import (
	"time"

	"github.com/google/uuid"
)

// Instrument is a calibration measurement device (chamber, electrometer,
// survey meter) with a traceable calibration that expires.
type Instrument struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	OrgID             uuid.UUID  `db:"organization_id" json:"organization_id"`
	Name              string     `db:"name" json:"name"`
	InstrumentType    string     `db:"instrument_type" json:"instrument_type"`
	SerialNumber      *string    `db:"serial_number" json:"serial_number,omitempty"`
	CalibrationFactor *float64   `db:"calibration_factor" json:"calibration_factor,omitempty"`
	CalibrationDate   *time.Time `db:"calibration_date" json:"calibration_date,omitempty"`
	CalibrationDue    *time.Time `db:"calibration_due" json:"calibration_due,omitempty"`
	Active            bool       `db:"active" json:"active"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`

	// Computed, not stored.
	CalibrationOverdue bool `db:"-" json:"calibration_overdue"`
}

var validInstrumentTypes = map[string]bool{
	"ion_chamber":  true,
	"electrometer": true,
	"well_chamber": true,
	"survey_meter": true,
	"thermometer":  true,
	"barometer":    true,
}

func (i *Instrument) markOverdue(now time.Time) {
	i.CalibrationOverdue = i.CalibrationDue != nil && i.CalibrationDue.Before(now)
}
