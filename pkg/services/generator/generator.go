package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/therma-tools/fleet-reports/pkg/adapters"
	"github.com/therma-tools/fleet-reports/pkg/models/domain"
	"github.com/therma-tools/fleet-reports/pkg/models/store"
	"github.com/therma-tools/fleet-reports/pkg/services/fleet"
	"github.com/therma-tools/fleet-reports/pkg/store/duckdb/readings"
)

// AlertSource provides raised alerts for a set of units.
type AlertSource interface {
	GetAlerts(ctx context.Context, unitIDs []string, start, end *time.Time) ([]store.Alert, error)
}

// Generator renders a valid report configuration into a report.
type Generator interface {
	Generate(ctx context.Context, cfg domain.ReportConfig) (*domain.Report, error)
}

type reportGenerator struct {
	explorer fleet.Explorer
	readings readings.Store
	alerts   AlertSource
}

func NewGenerator(explorer fleet.Explorer, readingStore readings.Store, alerts AlertSource) Generator {
	return &reportGenerator{
		explorer: explorer,
		readings: readingStore,
		alerts:   alerts,
	}
}

// Generate resolves the config's scope to units, loads their telemetry
// once, and renders every enabled section in display order.
func (g *reportGenerator) Generate(ctx context.Context, cfg domain.ReportConfig) (*domain.Report, error) {
	logger := zerolog.Ctx(ctx)

	units, err := g.explorer.ResolveUnits(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve units: %w", err)
	}
	if len(units) == 0 && cfg.Scope != domain.ScopeMaster {
		return nil, fmt.Errorf("no units match the selection")
	}

	unitIDs := make([]string, 0, len(units))
	for _, u := range units {
		unitIDs = append(unitIDs, u.ID)
	}

	rows, err := g.readings.GetReadings(ctx, unitIDs, cfg.Dates.Start, cfg.Dates.End)
	if err != nil {
		return nil, fmt.Errorf("load readings: %w", err)
	}
	telemetry := make([]domain.Reading, 0, len(rows))
	for _, r := range rows {
		telemetry = append(telemetry, adapters.MapReadingStoreToDomain(r))
	}

	report := &domain.Report{
		Title:       "ThermaCore Fleet Report",
		Scope:       cfg.Scope,
		Period:      cfg.Dates,
		GeneratedAt: time.Now(),
	}

	for _, key := range cfg.EnabledSections() {
		section, err := g.renderSection(ctx, key, cfg, units, telemetry)
		if err != nil {
			return nil, fmt.Errorf("render section %s: %w", key, err)
		}
		report.Sections = append(report.Sections, section)
	}

	logger.Info().
		Int("units", len(units)).
		Int("sections", len(report.Sections)).
		Msg("report generated")
	return report, nil
}

func (g *reportGenerator) renderSection(
	ctx context.Context,
	key domain.SectionKey,
	cfg domain.ReportConfig,
	units []domain.Unit,
	telemetry []domain.Reading,
) (domain.ReportSection, error) {
	switch key {
	case domain.SectionVitalStatistics:
		return renderVitalStatistics(units, telemetry), nil
	case domain.SectionAlertsAlarms:
		return g.renderAlertsAlarms(ctx, cfg, units)
	case domain.SectionMaintenance:
		return renderMaintenance(units), nil
	case domain.SectionPerformance:
		return renderPerformance(units, telemetry), nil
	case domain.SectionCompliance:
		return renderCompliance(units, telemetry), nil
	case domain.SectionSalesRevenue:
		return renderSalesRevenue(units, telemetry), nil
	default:
		return domain.ReportSection{}, fmt.Errorf("no renderer for section %q", key)
	}
}
