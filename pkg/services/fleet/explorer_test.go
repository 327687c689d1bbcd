package fleet

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/therma-tools/fleet-reports/pkg/models/domain"
	"github.com/therma-tools/fleet-reports/pkg/models/store"
)

type mockFleetStore struct {
	mock.Mock
}

func (m *mockFleetStore) AddUnits(ctx context.Context, units []store.Unit) error {
	return m.Called(ctx, units).Error(0)
}

func (m *mockFleetStore) AddClients(ctx context.Context, clients []store.Client) error {
	return m.Called(ctx, clients).Error(0)
}

func (m *mockFleetStore) AddAlerts(ctx context.Context, alerts []store.Alert) error {
	return m.Called(ctx, alerts).Error(0)
}

func (m *mockFleetStore) ListUnits(ctx context.Context) ([]store.Unit, error) {
	args := m.Called(ctx)
	return args.Get(0).([]store.Unit), args.Error(1)
}

func (m *mockFleetStore) ListClients(ctx context.Context) ([]store.Client, error) {
	args := m.Called(ctx)
	return args.Get(0).([]store.Client), args.Error(1)
}

func (m *mockFleetStore) GetUnits(ctx context.Context, ids []string) ([]store.Unit, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]store.Unit), args.Error(1)
}

func (m *mockFleetStore) GetUnitsByClients(ctx context.Context, clientIDs []string) ([]store.Unit, error) {
	args := m.Called(ctx, clientIDs)
	return args.Get(0).([]store.Unit), args.Error(1)
}

func (m *mockFleetStore) GetAlerts(ctx context.Context, unitIDs []string, start, end *time.Time) ([]store.Alert, error) {
	args := m.Called(ctx, unitIDs, start, end)
	return args.Get(0).([]store.Alert), args.Error(1)
}

func (m *mockFleetStore) CountUnits(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestExplorer_ResolveUnits(t *testing.T) {
	unit := store.Unit{ID: "TC001", Name: "ThermaCore 001", ClientID: "acme", Status: "online"}

	tests := []struct {
		name      string
		cfg       domain.ReportConfig
		setupMock func(*mockFleetStore)
		wantIDs   []string
		wantErr   bool
	}{
		{
			name: "single scope fetches the selected unit",
			cfg: domain.ReportConfig{
				Scope:   domain.ScopeSingle,
				UnitIDs: map[string]bool{"TC001": true},
			},
			setupMock: func(m *mockFleetStore) {
				m.On("GetUnits", mock.Anything, []string{"TC001"}).
					Return([]store.Unit{unit}, nil)
			},
			wantIDs: []string{"TC001"},
		},
		{
			name: "client scope expands the portfolio",
			cfg: domain.ReportConfig{
				Scope:     domain.ScopeClient,
				ClientIDs: map[string]bool{"acme": true},
			},
			setupMock: func(m *mockFleetStore) {
				m.On("GetUnitsByClients", mock.Anything, []string{"acme"}).
					Return([]store.Unit{unit, {ID: "TC002", ClientID: "acme"}}, nil)
			},
			wantIDs: []string{"TC001", "TC002"},
		},
		{
			name: "master scope covers the whole fleet",
			cfg:  domain.ReportConfig{Scope: domain.ScopeMaster},
			setupMock: func(m *mockFleetStore) {
				m.On("ListUnits", mock.Anything).
					Return([]store.Unit{unit, {ID: "TC003"}}, nil)
			},
			wantIDs: []string{"TC001", "TC003"},
		},
		{
			name:      "unset scope is an error",
			cfg:       domain.ReportConfig{},
			setupMock: func(m *mockFleetStore) {},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(mockFleetStore)
			tt.setupMock(m)
			e := NewExplorer(m)

			units, err := e.ResolveUnits(context.Background(), tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			var ids []string
			for _, u := range units {
				ids = append(ids, u.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			m.AssertExpectations(t)
		})
	}
}
