package domain

import "time"

// SectionKey identifies a block of content that can appear in a generated
// report. The set of keys is closed; adding one means touching every
// exhaustive switch below.
type SectionKey string

const (
	SectionVitalStatistics SectionKey = "vital-statistics"
	SectionAlertsAlarms    SectionKey = "alerts-alarms"
	SectionMaintenance     SectionKey = "maintenance"
	SectionPerformance     SectionKey = "performance"
	SectionCompliance      SectionKey = "compliance"
	SectionSalesRevenue    SectionKey = "sales-revenue"
)

// Sections lists every known section key in display order.
func Sections() []SectionKey {
	return []SectionKey{
		SectionVitalStatistics,
		SectionAlertsAlarms,
		SectionMaintenance,
		SectionPerformance,
		SectionCompliance,
		SectionSalesRevenue,
	}
}

func (s SectionKey) Known() bool {
	switch s {
	case SectionVitalStatistics, SectionAlertsAlarms, SectionMaintenance,
		SectionPerformance, SectionCompliance, SectionSalesRevenue:
		return true
	}
	return false
}

func (s SectionKey) Title() string {
	switch s {
	case SectionVitalStatistics:
		return "Vital Statistics"
	case SectionAlertsAlarms:
		return "Alerts & Alarms"
	case SectionMaintenance:
		return "Maintenance"
	case SectionPerformance:
		return "Performance"
	case SectionCompliance:
		return "Compliance"
	case SectionSalesRevenue:
		return "Sales & Revenue"
	default:
		return string(s)
	}
}

// Scope is the breadth of the report subject.
type Scope string

const (
	ScopeUnset    Scope = ""
	ScopeSingle   Scope = "single"
	ScopeMultiple Scope = "multiple"
	ScopeClient   Scope = "client"
	ScopeMaster   Scope = "master"
)

// AllSectionsTypeID is the reserved report type meaning "every section the
// caller is allowed to see". It is never produced by section inference.
const AllSectionsTypeID = "all-sections"

// ReportType is a named preset bundling a fixed set of sections.
type ReportType struct {
	ID       string
	Name     string
	Sections []SectionKey
}

// DateRange is the reporting window. Both ends unset means "all time";
// a half-filled range is rejected by validation, not by transitions.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

func (r DateRange) Empty() bool {
	return r.Start == nil && r.End == nil
}

func (r DateRange) Complete() bool {
	return r.Start != nil && r.End != nil
}

// ReportConfig is the state of one in-progress report build. It is a plain
// value: reconciler operations take a config and return a new one, they
// never share maps between the two.
type ReportConfig struct {
	ReportTypeIDs []string
	Sections      map[SectionKey]bool
	Scope         Scope
	Dates         DateRange
	UnitIDs       map[string]bool
	ClientIDs     map[string]bool
}

// EnabledSections returns the enabled section keys in display order.
func (c ReportConfig) EnabledSections() []SectionKey {
	var keys []SectionKey
	for _, s := range Sections() {
		if c.Sections[s] {
			keys = append(keys, s)
		}
	}
	return keys
}

// Report is a fully rendered report, ready for export.
type Report struct {
	Title       string
	Scope       Scope
	Period      DateRange
	GeneratedAt time.Time
	Sections    []ReportSection
}

// ReportSection is one rendered block of a report.
type ReportSection struct {
	Key     SectionKey
	Title   string
	Summary map[string]any
	Details []ReportDetail
}

// ReportDetail is a single row within a section.
type ReportDetail struct {
	Name        string
	Value       any
	Unit        string
	Description string
}
