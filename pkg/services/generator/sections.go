package generator

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/therma-tools/fleet-reports/pkg/adapters"
	"github.com/therma-tools/fleet-reports/pkg/models/domain"
)

// Operating envelope and tariff assumptions for the current hardware
// generation. These mirror the dashboard's published unit data sheet.
const (
	ratedCapacityKW = 250.0
	maxSafeTempC    = 95.0
	maxSafePressure = 18.0
	tariffPerKWh    = 0.12
	// Readings are hourly aggregates, so one reading's output_kw is also
	// its energy in kWh.
	readingHours = 1.0
)

func renderVitalStatistics(units []domain.Unit, telemetry []domain.Reading) domain.ReportSection {
	byUnit := groupReadings(telemetry)

	section := newSection(domain.SectionVitalStatistics)
	var totalOutput float64
	online := 0
	for _, u := range units {
		if u.Status == domain.UnitStatusOnline {
			online++
		}
		rs := byUnit[u.ID]
		avgTemp := avg(rs, func(r domain.Reading) float64 { return r.TempC })
		avgPressure := avg(rs, func(r domain.Reading) float64 { return r.PressureBar })
		avgOutput := avg(rs, func(r domain.Reading) float64 { return r.OutputKW })
		totalOutput += avgOutput

		section.Details = append(section.Details, domain.ReportDetail{
			Name:        u.Name,
			Value:       fmt.Sprintf("%.1f°C / %.1f bar / %.0f kW", avgTemp, avgPressure, avgOutput),
			Description: fmt.Sprintf("%s, %s", u.Location, u.Status),
		})
	}
	section.Summary["Units Covered"] = len(units)
	section.Summary["Units Online"] = online
	section.Summary["Combined Avg Output (kW)"] = round1(totalOutput)
	return section
}

func (g *reportGenerator) renderAlertsAlarms(
	ctx context.Context,
	cfg domain.ReportConfig,
	units []domain.Unit,
) (domain.ReportSection, error) {
	unitIDs := make([]string, 0, len(units))
	names := make(map[string]string, len(units))
	for _, u := range units {
		unitIDs = append(unitIDs, u.ID)
		names[u.ID] = u.Name
	}

	rows, err := g.alerts.GetAlerts(ctx, unitIDs, cfg.Dates.Start, cfg.Dates.End)
	if err != nil {
		return domain.ReportSection{}, fmt.Errorf("load alerts: %w", err)
	}

	section := newSection(domain.SectionAlertsAlarms)
	bySeverity := map[string]int{}
	open := 0
	for _, row := range rows {
		a := adapters.MapAlertStoreToDomain(row)
		bySeverity[a.Severity]++
		state := "resolved"
		if !a.Resolved {
			open++
			state = "open"
		}
		section.Details = append(section.Details, domain.ReportDetail{
			Name:        names[a.UnitID],
			Value:       a.Severity,
			Description: fmt.Sprintf("%s (%s, %s)", a.Message, a.RaisedAt.Format("2006-01-02"), state),
		})
	}
	section.Summary["Total Alerts"] = len(rows)
	section.Summary["Open Alerts"] = open
	for severity, n := range bySeverity {
		section.Summary[fmt.Sprintf("Severity: %s", severity)] = n
	}
	return section, nil
}

func renderMaintenance(units []domain.Unit) domain.ReportSection {
	section := newSection(domain.SectionMaintenance)
	inMaintenance := 0
	now := time.Now()
	for _, u := range units {
		if u.Status == domain.UnitStatusMaintenance {
			inMaintenance++
		}
		// Service interval is yearly from commissioning.
		nextService := u.CommissionedAt.AddDate(now.Year()-u.CommissionedAt.Year(), 0, 0)
		if nextService.Before(now) {
			nextService = nextService.AddDate(1, 0, 0)
		}
		section.Details = append(section.Details, domain.ReportDetail{
			Name:        u.Name,
			Value:       string(u.Status),
			Description: fmt.Sprintf("commissioned %s, next service %s", u.CommissionedAt.Format("2006-01-02"), nextService.Format("2006-01-02")),
		})
	}
	section.Summary["Units In Maintenance"] = inMaintenance
	section.Summary["Units Covered"] = len(units)
	return section
}

func renderPerformance(units []domain.Unit, telemetry []domain.Reading) domain.ReportSection {
	byUnit := groupReadings(telemetry)

	section := newSection(domain.SectionPerformance)
	var fleetUptime, fleetCapacity float64
	counted := 0
	for _, u := range units {
		rs := byUnit[u.ID]
		if len(rs) == 0 {
			continue
		}
		counted++
		uptime := avg(rs, func(r domain.Reading) float64 { return r.UptimePct })
		capacityFactor := avg(rs, func(r domain.Reading) float64 { return r.OutputKW }) / ratedCapacityKW * 100
		fleetUptime += uptime
		fleetCapacity += capacityFactor

		section.Details = append(section.Details, domain.ReportDetail{
			Name:        u.Name,
			Value:       round1(capacityFactor),
			Unit:        "% capacity",
			Description: fmt.Sprintf("uptime %.1f%% over %d readings", uptime, len(rs)),
		})
	}
	if counted > 0 {
		section.Summary["Fleet Avg Uptime (%)"] = round1(fleetUptime / float64(counted))
		section.Summary["Fleet Avg Capacity Factor (%)"] = round1(fleetCapacity / float64(counted))
	}
	section.Summary["Units Reporting"] = counted
	return section
}

func renderCompliance(units []domain.Unit, telemetry []domain.Reading) domain.ReportSection {
	byUnit := groupReadings(telemetry)

	section := newSection(domain.SectionCompliance)
	totalBreaches := 0
	for _, u := range units {
		breaches := 0
		for _, r := range byUnit[u.ID] {
			if r.TempC > maxSafeTempC || r.PressureBar > maxSafePressure {
				breaches++
			}
		}
		totalBreaches += breaches
		verdict := "compliant"
		if breaches > 0 {
			verdict = "breaches recorded"
		}
		section.Details = append(section.Details, domain.ReportDetail{
			Name:        u.Name,
			Value:       breaches,
			Unit:        "breaches",
			Description: fmt.Sprintf("%s (limits %.0f°C / %.0f bar)", verdict, maxSafeTempC, maxSafePressure),
		})
	}
	section.Summary["Envelope Breaches"] = totalBreaches
	section.Summary["Units Covered"] = len(units)
	return section
}

func renderSalesRevenue(units []domain.Unit, telemetry []domain.Reading) domain.ReportSection {
	byUnit := groupReadings(telemetry)

	section := newSection(domain.SectionSalesRevenue)
	revenueByClient := map[string]float64{}
	var totalKWh float64
	for _, u := range units {
		var kwh float64
		for _, r := range byUnit[u.ID] {
			kwh += r.OutputKW * readingHours
		}
		totalKWh += kwh
		revenueByClient[u.ClientID] += kwh * tariffPerKWh

		section.Details = append(section.Details, domain.ReportDetail{
			Name:        u.Name,
			Value:       round1(kwh * tariffPerKWh),
			Unit:        "USD",
			Description: fmt.Sprintf("%.0f kWh delivered for %s", kwh, u.ClientID),
		})
	}
	section.Summary["Energy Delivered (kWh)"] = round1(totalKWh)
	section.Summary["Total Revenue (USD)"] = round1(totalKWh * tariffPerKWh)
	section.Summary["Clients Billed"] = len(revenueByClient)
	return section
}

func newSection(key domain.SectionKey) domain.ReportSection {
	return domain.ReportSection{
		Key:     key,
		Title:   key.Title(),
		Summary: map[string]any{},
	}
}

func groupReadings(telemetry []domain.Reading) map[string][]domain.Reading {
	byUnit := make(map[string][]domain.Reading)
	for _, r := range telemetry {
		byUnit[r.UnitID] = append(byUnit[r.UnitID], r)
	}
	return byUnit
}

func avg(rs []domain.Reading, f func(domain.Reading) float64) float64 {
	if len(rs) == 0 {
		return 0
	}
	var sum float64
	for _, r := range rs {
		sum += f(r)
	}
	return sum / float64(len(rs))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
