package fleet

import (
	"context"
	"fmt"

	"github.com/therma-tools/fleet-reports/pkg/adapters"
	"github.com/therma-tools/fleet-reports/pkg/models/domain"
	"github.com/therma-tools/fleet-reports/pkg/models/store"
	storefleet "github.com/therma-tools/fleet-reports/pkg/store/duckdb/fleet"
)

// Explorer reads the fleet inventory and resolves a report config's scope
// down to the concrete units it covers.
type Explorer interface {
	ListUnits(ctx context.Context) ([]domain.Unit, error)
	ListClients(ctx context.Context) ([]domain.Client, error)
	ResolveUnits(ctx context.Context, cfg domain.ReportConfig) ([]domain.Unit, error)
}

type explorer struct {
	store storefleet.Store
}

func NewExplorer(store storefleet.Store) Explorer {
	return &explorer{store: store}
}

func (e *explorer) ListUnits(ctx context.Context) ([]domain.Unit, error) {
	rows, err := e.store.ListUnits(ctx)
	if err != nil {
		return nil, err
	}
	return mapUnits(rows), nil
}

func (e *explorer) ListClients(ctx context.Context) ([]domain.Client, error) {
	rows, err := e.store.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	clients := make([]domain.Client, 0, len(rows))
	for _, r := range rows {
		clients = append(clients, adapters.MapClientStoreToDomain(r))
	}
	return clients, nil
}

// ResolveUnits expands the config's scope: explicit units for single and
// multiple, the selected clients' portfolios for client, the whole fleet
// for master.
func (e *explorer) ResolveUnits(ctx context.Context, cfg domain.ReportConfig) ([]domain.Unit, error) {
	switch cfg.Scope {
	case domain.ScopeSingle, domain.ScopeMultiple:
		rows, err := e.store.GetUnits(ctx, setToSlice(cfg.UnitIDs))
		if err != nil {
			return nil, err
		}
		return mapUnits(rows), nil
	case domain.ScopeClient:
		rows, err := e.store.GetUnitsByClients(ctx, setToSlice(cfg.ClientIDs))
		if err != nil {
			return nil, err
		}
		return mapUnits(rows), nil
	case domain.ScopeMaster:
		rows, err := e.store.ListUnits(ctx)
		if err != nil {
			return nil, err
		}
		return mapUnits(rows), nil
	default:
		return nil, fmt.Errorf("cannot resolve units for scope %q", cfg.Scope)
	}
}

func mapUnits(rows []store.Unit) []domain.Unit {
	units := make([]domain.Unit, 0, len(rows))
	for _, r := range rows {
		units = append(units, adapters.MapUnitStoreToDomain(r))
	}
	return units
}

func setToSlice(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
