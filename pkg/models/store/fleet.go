package store

import "time"

type Unit struct {
	ID             string
	Name           string
	ClientID       string
	Location       string
	Status         string
	CommissionedAt time.Time
}

type Client struct {
	ID    string
	Name  string
	Email string
}

type Reading struct {
	UnitID         string
	RecordedAt     time.Time
	TempC          float64
	PressureBar    float64
	OutputKW       float64
	WaterOutputLph float64
	UptimePct      float64
}

type Alert struct {
	ID       string
	UnitID   string
	Severity string
	Message  string
	RaisedAt time.Time
	Resolved bool
}
