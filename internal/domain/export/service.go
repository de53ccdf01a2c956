package export

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sasqart/radqa/internal/domain/catalog"
	"github.com/sasqart/radqa/internal/domain/equipment"
	"github.com/sasqart/radqa/internal/domain/instrument"
	"github.com/sasqart/radqa/internal/domain/org"
	"github.com/sasqart/radqa/internal/domain/report"
	"github.com/sasqart/radqa/internal/domain/source"
)

// pageSize bounds each registry sweep so one large table does not pin a
// pool connection for the whole dump.
const pageSize = 500

type orgStore interface {
	Settings(ctx context.Context, orgID uuid.UUID) (*org.Organization, error)
}

type equipmentStore interface {
	ListEquipment(ctx context.Context, orgID uuid.UUID, filter equipment.ListFilter, limit, offset int) ([]*equipment.Equipment, int, error)
	GetBaselines(ctx context.Context, orgID, equipmentID uuid.UUID, testID string, history bool) ([]*equipment.Baseline, error)
}

type instrumentStore interface {
	ListInstruments(ctx context.Context, orgID uuid.UUID, activeOnly bool, limit, offset int) ([]*instrument.Instrument, int, error)
}

type sourceStore interface {
	ListSources(ctx context.Context, orgID uuid.UUID, status string, limit, offset int) ([]*source.Source, int, error)
}

type catalogStore interface {
	ListTests(ctx context.Context, orgID uuid.UUID, filter catalog.ListFilter) ([]*catalog.TestDefinition, error)
}

type reportStore interface {
	History(ctx context.Context, orgID uuid.UUID, filter report.ListFilter, limit, offset int) ([]*report.Report, int, error)
	GetReport(ctx context.Context, orgID, id uuid.UUID) (*report.Report, error)
}

// Snapshot is a portable dump of one organization's data: registries,
// test catalog, baseline history and reports with their line items.
type Snapshot struct {
	ExportedAt   time.Time                 `json:"exported_at"`
	Organization *org.Organization         `json:"organization"`
	Equipment    []*equipment.Equipment    `json:"equipment"`
	Baselines    []*equipment.Baseline     `json:"baselines"`
	Instruments  []*instrument.Instrument  `json:"instruments"`
	Sources      []*source.Source          `json:"sources"`
	TestCatalog  []*catalog.TestDefinition `json:"test_catalog"`
	Reports      []*report.Report          `json:"reports"`
}

type Service struct {
	orgs        orgStore
	equipment   equipmentStore
	instruments instrumentStore
	sources     sourceStore
	catalog     catalogStore
	reports     reportStore
}

func NewService(orgs orgStore, eq equipmentStore, ins instrumentStore, src sourceStore, cat catalogStore, rep reportStore) *Service {
	return &Service{orgs: orgs, equipment: eq, instruments: ins, sources: src, catalog: cat, reports: rep}
}

// Build assembles the full snapshot for one organization. Every section is
// scoped to orgID; nothing from other tenants can appear in the dump.
func (s *Service) Build(ctx context.Context, orgID uuid.UUID) (*Snapshot, error) {
	snap := &Snapshot{
		ExportedAt:  time.Now().UTC(),
		Equipment:   []*equipment.Equipment{},
		Baselines:   []*equipment.Baseline{},
		Instruments: []*instrument.Instrument{},
		Sources:     []*source.Source{},
		TestCatalog: []*catalog.TestDefinition{},
		Reports:     []*report.Report{},
	}

	o, err := s.orgs.Settings(ctx, orgID)
	if err != nil {
		return nil, err
	}
	snap.Organization = o

	for offset := 0; ; offset += pageSize {
		page, _, err := s.equipment.ListEquipment(ctx, orgID, equipment.ListFilter{IncludeInactive: true}, pageSize, offset)
		if err != nil {
			return nil, err
		}
		snap.Equipment = append(snap.Equipment, page...)
		if len(page) < pageSize {
			break
		}
	}
	for _, e := range snap.Equipment {
		bl, err := s.equipment.GetBaselines(ctx, orgID, e.ID, "", true)
		if err != nil {
			return nil, err
		}
		snap.Baselines = append(snap.Baselines, bl...)
	}

	for offset := 0; ; offset += pageSize {
		page, _, err := s.instruments.ListInstruments(ctx, orgID, false, pageSize, offset)
		if err != nil {
			return nil, err
		}
		snap.Instruments = append(snap.Instruments, page...)
		if len(page) < pageSize {
			break
		}
	}

	for offset := 0; ; offset += pageSize {
		page, _, err := s.sources.ListSources(ctx, orgID, "", pageSize, offset)
		if err != nil {
			return nil, err
		}
		snap.Sources = append(snap.Sources, page...)
		if len(page) < pageSize {
			break
		}
	}

	defs, err := s.catalog.ListTests(ctx, orgID, catalog.ListFilter{})
	if err != nil {
		return nil, err
	}
	snap.TestCatalog = append(snap.TestCatalog, defs...)

	// History windows to 30 days by default, so pin the range to cover
	// every report the organization has ever filed.
	filter := report.ListFilter{From: time.Unix(0, 0), To: time.Now().UTC().AddDate(0, 0, 1)}
	for offset := 0; ; offset += pageSize {
		page, _, err := s.reports.History(ctx, orgID, filter, pageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, r := range page {
			full, err := s.reports.GetReport(ctx, orgID, r.ID)
			if err != nil {
				return nil, err
			}
			snap.Reports = append(snap.Reports, full)
		}
		if len(page) < pageSize {
			break
		}
	}

	return snap, nil
}
