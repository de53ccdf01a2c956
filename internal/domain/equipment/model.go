package equipment

import (
	"time"

	"github.com/google/uuid"
)

// Equipment is one treatment or imaging machine owned by an organization.
// Machines are never hard-deleted; deactivation keeps history intact.
type Equipment struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	OrgID            uuid.UUID  `db:"organization_id" json:"organization_id"`
	Name             string     `db:"name" json:"name"`
	EquipmentType    string     `db:"equipment_type" json:"equipment_type"`
	Manufacturer     *string    `db:"manufacturer" json:"manufacturer,omitempty"`
	Model            *string    `db:"model" json:"model,omitempty"`
	SerialNumber     *string    `db:"serial_number" json:"serial_number,omitempty"`
	Location         *string    `db:"location" json:"location,omitempty"`
	InstallationDate *time.Time `db:"installation_date" json:"installation_date,omitempty"`
	PhotonEnergies   []string   `db:"photon_energies" json:"photon_energies,omitempty"`
	ElectronEnergies []string   `db:"electron_energies" json:"electron_energies,omitempty"`
	FFFEnergies      []string   `db:"fff_energies" json:"fff_energies,omitempty"`
	Active           bool       `db:"active" json:"active"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

const (
	TypeLinac                 = "linac"
	TypeBrachyHDR             = "brachy_hdr"
	TypeCTSimulator           = "ct_simulator"
	TypeConventionalSimulator = "conventional_simulator"
	TypeOrthovoltage          = "orthovoltage"
	TypeMRISimulator          = "mri_simulator"
)

var validEquipmentTypes = map[string]bool{
	TypeLinac:                 true,
	TypeBrachyHDR:             true,
	TypeCTSimulator:           true,
	TypeConventionalSimulator: true,
	TypeOrthovoltage:          true,
	TypeMRISimulator:          true,
}

// Baseline is one reference-value record for an (equipment, test) pair.
// At most one row per pair is current; superseded rows are kept for audit.
type Baseline struct {
	ID           uuid.UUID          `db:"id" json:"id"`
	OrgID        uuid.UUID          `db:"organization_id" json:"organization_id"`
	EquipmentID  uuid.UUID          `db:"equipment_id" json:"equipment_id"`
	TestID       string             `db:"test_id" json:"test_id"`
	Values       map[string]float64 `db:"values" json:"values"`
	SourceSerial *string            `db:"source_serial" json:"source_serial,omitempty"`
	IsCurrent    bool               `db:"is_current" json:"is_current"`
	ValidFrom    time.Time          `db:"valid_from" json:"valid_from"`
	ValidUntil   *time.Time         `db:"valid_until" json:"valid_until,omitempty"`
	SupersededBy *uuid.UUID         `db:"superseded_by" json:"superseded_by,omitempty"`
	CreatedBy    string             `db:"created_by" json:"created_by"`
	CreatedAt    time.Time          `db:"created_at" json:"created_at"`
}

// Matches reports whether the stored baseline carries exactly the given
// values and source serial.
func (b *Baseline) Matches(values map[string]float64, sourceSerial *string) bool {
	if len(b.Values) != len(values) {
		return false
	}
	for k, v := range values {
		cur, ok := b.Values[k]
		if !ok || cur != v {
			return false
		}
	}
	switch {
	case b.SourceSerial == nil && sourceSerial == nil:
		return true
	case b.SourceSerial != nil && sourceSerial != nil:
		return *b.SourceSerial == *sourceSerial
	default:
		return false
	}
}
