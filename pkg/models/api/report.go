package api

import "time"

type ReportType struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Sections []string `json:"sections,omitempty"`
}

type BuilderSession struct {
	ID              string       `json:"id"`
	Catalog         []ReportType `json:"catalog"`
	AllowedSections []string     `json:"allowed_sections"`
	AllowedScopes   []string     `json:"allowed_scopes"`
	Config          ReportConfig `json:"config"`
	Valid           bool         `json:"valid"`
}

type ReportConfig struct {
	ReportTypeIDs []string        `json:"report_type_ids"`
	Sections      map[string]bool `json:"sections"`
	Scope         string          `json:"scope"`
	DateStart     *string         `json:"date_start,omitempty"`
	DateEnd       *string         `json:"date_end,omitempty"`
	UnitIDs       []string        `json:"unit_ids"`
	ClientIDs     []string        `json:"client_ids"`
}

type ToggleSectionRequest struct {
	Enabled bool `json:"enabled"`
}

type SetScopeRequest struct {
	Scope string `json:"scope"`
}

type SetDatesRequest struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

type SelectRequest struct {
	Checked bool `json:"checked"`
}

type ScheduleRequest struct {
	RunAt time.Time `json:"run_at"`
}

type ReportJob struct {
	ID        string     `json:"id"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	RunAt     *time.Time `json:"run_at,omitempty"`
	Error     *string    `json:"error,omitempty"`
}

type Error struct {
	Error string `json:"error"`
}
