package domain

import "time"

type UnitStatus string

const (
	UnitStatusOnline      UnitStatus = "online"
	UnitStatusOffline     UnitStatus = "offline"
	UnitStatusMaintenance UnitStatus = "maintenance"
)

// Unit is one deployed ThermaCore generation unit.
type Unit struct {
	ID             string
	Name           string
	ClientID       string
	Location       string
	Status         UnitStatus
	CommissionedAt time.Time
}

// Client owns a portfolio of units.
type Client struct {
	ID    string
	Name  string
	Email string
}

// Alert is a raised condition on a unit.
type Alert struct {
	ID       string
	UnitID   string
	Severity string
	Message  string
	RaisedAt time.Time
	Resolved bool
}

// Reading is one telemetry aggregate for a unit over an interval.
type Reading struct {
	UnitID         string
	RecordedAt     time.Time
	TempC          float64
	PressureBar    float64
	OutputKW       float64
	WaterOutputLph float64
	UptimePct      float64
}
