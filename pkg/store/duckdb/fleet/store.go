package fleet

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/therma-tools/fleet-reports/pkg/models/store"
)

// Store persists the fleet inventory: units, the clients that own them,
// and raised alerts.
type Store interface {
	AddUnits(ctx context.Context, units []store.Unit) error
	AddClients(ctx context.Context, clients []store.Client) error
	AddAlerts(ctx context.Context, alerts []store.Alert) error
	ListUnits(ctx context.Context) ([]store.Unit, error)
	ListClients(ctx context.Context) ([]store.Client, error)
	GetUnits(ctx context.Context, ids []string) ([]store.Unit, error)
	GetUnitsByClients(ctx context.Context, clientIDs []string) ([]store.Unit, error)
	GetAlerts(ctx context.Context, unitIDs []string, start, end *time.Time) ([]store.Alert, error)
	CountUnits(ctx context.Context) (int, error)
}

type fleetStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &fleetStore{db: db}, nil
}

func (s *fleetStore) AddUnits(ctx context.Context, units []store.Unit) error {
	stmt, err := s.db.PrepareContext(ctx, `
		INSERT INTO units (id, name, client_id, location, status, commissioned_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, u := range units {
		_, err := stmt.ExecContext(ctx, u.ID, u.Name, u.ClientID, u.Location, u.Status, u.CommissionedAt)
		if err != nil {
			return fmt.Errorf("insert unit %s: %w", u.ID, err)
		}
	}
	return nil
}

func (s *fleetStore) AddClients(ctx context.Context, clients []store.Client) error {
	stmt, err := s.db.PrepareContext(ctx, `
		INSERT INTO clients (id, name, email) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range clients {
		if _, err := stmt.ExecContext(ctx, c.ID, c.Name, c.Email); err != nil {
			return fmt.Errorf("insert client %s: %w", c.ID, err)
		}
	}
	return nil
}

func (s *fleetStore) AddAlerts(ctx context.Context, alerts []store.Alert) error {
	stmt, err := s.db.PrepareContext(ctx, `
		INSERT INTO unit_alerts (id, unit_id, severity, message, raised_at, resolved)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, a := range alerts {
		_, err := stmt.ExecContext(ctx, a.ID, a.UnitID, a.Severity, a.Message, a.RaisedAt, a.Resolved)
		if err != nil {
			return fmt.Errorf("insert alert %s: %w", a.ID, err)
		}
	}
	return nil
}

func (s *fleetStore) ListUnits(ctx context.Context) ([]store.Unit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, client_id, location, status, commissioned_at
		FROM units ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	defer rows.Close()
	return scanUnits(rows)
}

func (s *fleetStore) GetUnits(ctx context.Context, ids []string) ([]store.Unit, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT id, name, client_id, location, status, commissioned_at
		FROM units WHERE id IN (%s) ORDER BY id`, placeholders(len(ids)))
	rows, err := s.db.QueryContext(ctx, query, toAnySlice(ids)...)
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	defer rows.Close()
	return scanUnits(rows)
}

func (s *fleetStore) GetUnitsByClients(ctx context.Context, clientIDs []string) ([]store.Unit, error) {
	if len(clientIDs) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT id, name, client_id, location, status, commissioned_at
		FROM units WHERE client_id IN (%s) ORDER BY id`, placeholders(len(clientIDs)))
	rows, err := s.db.QueryContext(ctx, query, toAnySlice(clientIDs)...)
	if err != nil {
		return nil, fmt.Errorf("query units by client: %w", err)
	}
	defer rows.Close()
	return scanUnits(rows)
}

func (s *fleetStore) ListClients(ctx context.Context) ([]store.Client, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, email FROM clients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	defer rows.Close()

	var clients []store.Client
	for rows.Next() {
		var c store.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Email); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (s *fleetStore) GetAlerts(ctx context.Context, unitIDs []string, start, end *time.Time) ([]store.Alert, error) {
	if len(unitIDs) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT id, unit_id, severity, message, raised_at, resolved
		FROM unit_alerts WHERE unit_id IN (%s)`, placeholders(len(unitIDs)))
	args := toAnySlice(unitIDs)
	if start != nil && end != nil {
		query += ` AND raised_at >= ? AND raised_at < ?`
		args = append(args, *start, *end)
	}
	query += ` ORDER BY raised_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []store.Alert
	for rows.Next() {
		var a store.Alert
		if err := rows.Scan(&a.ID, &a.UnitID, &a.Severity, &a.Message, &a.RaisedAt, &a.Resolved); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (s *fleetStore) CountUnits(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM units`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count units: %w", err)
	}
	return n, nil
}

func scanUnits(rows *sql.Rows) ([]store.Unit, error) {
	var units []store.Unit
	for rows.Next() {
		var u store.Unit
		if err := rows.Scan(&u.ID, &u.Name, &u.ClientID, &u.Location, &u.Status, &u.CommissionedAt); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toAnySlice(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
