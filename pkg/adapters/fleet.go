package adapters

import (
	"github.com/therma-tools/fleet-reports/pkg/models/api"
	"github.com/therma-tools/fleet-reports/pkg/models/domain"
	"github.com/therma-tools/fleet-reports/pkg/models/store"
)

func MapUnitStoreToDomain(u store.Unit) domain.Unit {
	return domain.Unit{
		ID:             u.ID,
		Name:           u.Name,
		ClientID:       u.ClientID,
		Location:       u.Location,
		Status:         domain.UnitStatus(u.Status),
		CommissionedAt: u.CommissionedAt,
	}
}

func MapClientStoreToDomain(c store.Client) domain.Client {
	return domain.Client{ID: c.ID, Name: c.Name, Email: c.Email}
}

func MapAlertStoreToDomain(a store.Alert) domain.Alert {
	return domain.Alert{
		ID:       a.ID,
		UnitID:   a.UnitID,
		Severity: a.Severity,
		Message:  a.Message,
		RaisedAt: a.RaisedAt,
		Resolved: a.Resolved,
	}
}

func MapReadingStoreToDomain(r store.Reading) domain.Reading {
	return domain.Reading{
		UnitID:         r.UnitID,
		RecordedAt:     r.RecordedAt,
		TempC:          r.TempC,
		PressureBar:    r.PressureBar,
		OutputKW:       r.OutputKW,
		WaterOutputLph: r.WaterOutputLph,
		UptimePct:      r.UptimePct,
	}
}

func MapUnitDomainToApi(u domain.Unit) api.Unit {
	return api.Unit{
		ID:       u.ID,
		Name:     u.Name,
		ClientID: u.ClientID,
		Location: u.Location,
		Status:   string(u.Status),
	}
}

func MapClientDomainToApi(c domain.Client) api.Client {
	return api.Client{ID: c.ID, Name: c.Name}
}
