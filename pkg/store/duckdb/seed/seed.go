package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/therma-tools/fleet-reports/pkg/models/store"
	"github.com/therma-tools/fleet-reports/pkg/store/duckdb/fleet"
	"github.com/therma-tools/fleet-reports/pkg/store/duckdb/readings"
)

// Demo loads a small demonstration fleet when the database is empty, so a
// fresh install has something to report on.
func Demo(ctx context.Context, fleetStore fleet.Store, readingStore readings.Store) error {
	count, err := fleetStore.CountUnits(ctx)
	if err != nil {
		return fmt.Errorf("count units: %w", err)
	}
	if count > 0 {
		return nil
	}
	zerolog.Ctx(ctx).Info().Msg("empty database, loading demo fleet")

	clients := []store.Client{
		{ID: "acme-foods", Name: "Acme Foods", Email: "ops@acmefoods.example"},
		{ID: "nordic-paper", Name: "Nordic Paper", Email: "plant@nordicpaper.example"},
	}
	if err := fleetStore.AddClients(ctx, clients); err != nil {
		return fmt.Errorf("seed clients: %w", err)
	}

	now := time.Now()
	units := []store.Unit{
		{ID: "TC001", Name: "Boiler North", ClientID: "acme-foods", Location: "Rotterdam", Status: "online", CommissionedAt: now.AddDate(-3, 0, 0)},
		{ID: "TC002", Name: "Boiler South", ClientID: "acme-foods", Location: "Rotterdam", Status: "online", CommissionedAt: now.AddDate(-2, -6, 0)},
		{ID: "TC003", Name: "Line 2 Heater", ClientID: "nordic-paper", Location: "Oslo", Status: "online", CommissionedAt: now.AddDate(-1, 0, 0)},
		{ID: "TC004", Name: "Line 3 Heater", ClientID: "nordic-paper", Location: "Oslo", Status: "maintenance", CommissionedAt: now.AddDate(0, -8, 0)},
	}
	if err := fleetStore.AddUnits(ctx, units); err != nil {
		return fmt.Errorf("seed units: %w", err)
	}

	var rows []store.Reading
	for day := 30; day > 0; day-- {
		at := now.AddDate(0, 0, -day)
		for i, u := range units {
			rows = append(rows, store.Reading{
				UnitID:         u.ID,
				RecordedAt:     at,
				TempC:          78 + float64((day+i*7)%15),
				PressureBar:    11 + float64((day+i*3)%5),
				OutputKW:       180 + float64((day*i)%60),
				WaterOutputLph: 900 + float64((day+i*11)%200),
				UptimePct:      96 + float64(day%4),
			})
		}
	}
	if err := readingStore.Add(ctx, rows); err != nil {
		return fmt.Errorf("seed readings: %w", err)
	}

	alerts := []store.Alert{
		{ID: "AL-1001", UnitID: "TC002", Severity: "warning", Message: "pressure approaching limit", RaisedAt: now.AddDate(0, 0, -12)},
		{ID: "AL-1002", UnitID: "TC004", Severity: "critical", Message: "temperature above safe threshold", RaisedAt: now.AddDate(0, 0, -5)},
		{ID: "AL-1003", UnitID: "TC004", Severity: "info", Message: "maintenance window opened", RaisedAt: now.AddDate(0, 0, -4)},
	}
	if err := fleetStore.AddAlerts(ctx, alerts); err != nil {
		return fmt.Errorf("seed alerts: %w", err)
	}
	return nil
}
