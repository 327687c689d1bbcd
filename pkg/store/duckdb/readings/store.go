package readings

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/therma-tools/fleet-reports/pkg/models/store"
)

// Store holds telemetry aggregates the section renderers read. Readings
// are append-only.
type Store interface {
	Add(ctx context.Context, readings []store.Reading) error
	GetReadings(ctx context.Context, unitIDs []string, start, end *time.Time) ([]store.Reading, error)
}

type readingsStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &readingsStore{db: db}, nil
}

func (s *readingsStore) Add(ctx context.Context, readings []store.Reading) error {
	if len(readings) == 0 {
		return nil
	}
	stmt, err := s.db.PrepareContext(ctx, `
		INSERT INTO unit_readings (
			unit_id, recorded_at, temp_c, pressure_bar, output_kw, water_output_lph, uptime_pct
		) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range readings {
		_, err := stmt.ExecContext(ctx,
			r.UnitID, r.RecordedAt, r.TempC, r.PressureBar, r.OutputKW, r.WaterOutputLph, r.UptimePct)
		if err != nil {
			return fmt.Errorf("insert reading: %w", err)
		}
	}
	return nil
}

func (s *readingsStore) GetReadings(ctx context.Context, unitIDs []string, start, end *time.Time) ([]store.Reading, error) {
	if len(unitIDs) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT unit_id, recorded_at, temp_c, pressure_bar, output_kw, water_output_lph, uptime_pct
		FROM unit_readings WHERE unit_id IN (%s)`,
		strings.TrimSuffix(strings.Repeat("?,", len(unitIDs)), ","))
	args := make([]any, 0, len(unitIDs)+2)
	for _, id := range unitIDs {
		args = append(args, id)
	}
	if start != nil && end != nil {
		query += ` AND recorded_at >= ? AND recorded_at < ?`
		args = append(args, *start, *end)
	}
	query += ` ORDER BY unit_id, recorded_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	var readings []store.Reading
	for rows.Next() {
		var r store.Reading
		err := rows.Scan(&r.UnitID, &r.RecordedAt, &r.TempC, &r.PressureBar,
			&r.OutputKW, &r.WaterOutputLph, &r.UptimePct)
		if err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		readings = append(readings, r)
	}
	return readings, rows.Err()
}
