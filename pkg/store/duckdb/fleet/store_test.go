package fleet

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/therma-tools/fleet-reports/pkg/models/store"
	"github.com/therma-tools/fleet-reports/pkg/store/duckdb"
)

type fixture struct {
	db    *sql.DB
	store Store
}

func setupFixture(t *testing.T) *fixture {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)

	s, err := NewStore(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return &fixture{db: db, store: s}
}

func seedFleet(t *testing.T, f *fixture) {
	ctx := context.Background()
	require.NoError(t, f.store.AddClients(ctx, []store.Client{
		{ID: "acme", Name: "Acme Water", Email: "ops@acme.example"},
		{ID: "nordic", Name: "Nordic Power", Email: "fleet@nordic.example"},
	}))
	require.NoError(t, f.store.AddUnits(ctx, []store.Unit{
		{ID: "TC001", Name: "ThermaCore 001", ClientID: "acme", Location: "Reykjavik", Status: "online",
			CommissionedAt: time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "TC002", Name: "ThermaCore 002", ClientID: "acme", Location: "Akureyri", Status: "maintenance",
			CommissionedAt: time.Date(2023, 8, 15, 0, 0, 0, 0, time.UTC)},
		{ID: "TC003", Name: "ThermaCore 003", ClientID: "nordic", Location: "Tromsø", Status: "online",
			CommissionedAt: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)},
	}))
}

func TestFleetStore_ListUnits(t *testing.T) {
	f := setupFixture(t)
	seedFleet(t, f)

	units, err := f.store.ListUnits(context.Background())
	require.NoError(t, err)
	require.Len(t, units, 3)
	assert.Equal(t, "TC001", units[0].ID)
	assert.Equal(t, "acme", units[0].ClientID)
}

func TestFleetStore_GetUnits(t *testing.T) {
	f := setupFixture(t)
	seedFleet(t, f)

	units, err := f.store.GetUnits(context.Background(), []string{"TC003", "TC001"})
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "TC001", units[0].ID)
	assert.Equal(t, "TC003", units[1].ID)

	none, err := f.store.GetUnits(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFleetStore_GetUnitsByClients(t *testing.T) {
	f := setupFixture(t)
	seedFleet(t, f)

	units, err := f.store.GetUnitsByClients(context.Background(), []string{"acme"})
	require.NoError(t, err)
	require.Len(t, units, 2)
	for _, u := range units {
		assert.Equal(t, "acme", u.ClientID)
	}
}

func TestFleetStore_Alerts(t *testing.T) {
	f := setupFixture(t)
	seedFleet(t, f)
	ctx := context.Background()

	raised := time.Date(2025, 2, 10, 9, 30, 0, 0, time.UTC)
	require.NoError(t, f.store.AddAlerts(ctx, []store.Alert{
		{ID: "a1", UnitID: "TC001", Severity: "critical", Message: "overpressure", RaisedAt: raised},
		{ID: "a2", UnitID: "TC001", Severity: "warning", Message: "filter due", RaisedAt: raised.AddDate(0, 1, 0), Resolved: true},
	}))

	all, err := f.store.GetAlerts(ctx, []string{"TC001"}, nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	windowed, err := f.store.GetAlerts(ctx, []string{"TC001"}, &start, &end)
	require.NoError(t, err)
	require.Len(t, windowed, 1)
	assert.Equal(t, "a1", windowed[0].ID)
}

func TestFleetStore_CountUnits(t *testing.T) {
	f := setupFixture(t)

	n, err := f.store.CountUnits(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	seedFleet(t, f)
	n, err = f.store.CountUnits(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
