package adapters

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/therma-tools/fleet-reports/pkg/models/api"
	"github.com/therma-tools/fleet-reports/pkg/models/domain"
	"github.com/therma-tools/fleet-reports/pkg/models/store"
	"github.com/therma-tools/fleet-reports/pkg/services/report"
)

const dateLayout = "2006-01-02"

func MapReportTypeDomainToApi(t domain.ReportType) api.ReportType {
	out := api.ReportType{ID: t.ID, Name: t.Name}
	for _, s := range t.Sections {
		out.Sections = append(out.Sections, string(s))
	}
	return out
}

func MapReportConfigDomainToApi(cfg domain.ReportConfig) api.ReportConfig {
	out := api.ReportConfig{
		ReportTypeIDs: append([]string{}, cfg.ReportTypeIDs...),
		Sections:      make(map[string]bool, len(cfg.Sections)),
		Scope:         string(cfg.Scope),
		UnitIDs:       sortedKeys(cfg.UnitIDs),
		ClientIDs:     sortedKeys(cfg.ClientIDs),
	}
	for k, v := range cfg.Sections {
		out.Sections[string(k)] = v
	}
	if cfg.Dates.Start != nil {
		s := cfg.Dates.Start.Format(dateLayout)
		out.DateStart = &s
	}
	if cfg.Dates.End != nil {
		e := cfg.Dates.End.Format(dateLayout)
		out.DateEnd = &e
	}
	return out
}

// MapSessionToApi flattens a builder session into the payload the
// dashboard renders: the role's catalog plus the current config state.
func MapSessionToApi(s report.Session) api.BuilderSession {
	out := api.BuilderSession{
		ID:     s.ID,
		Config: MapReportConfigDomainToApi(s.Config),
		Valid:  s.Valid(),
	}
	for _, t := range s.Reconciler.Catalog() {
		out.Catalog = append(out.Catalog, MapReportTypeDomainToApi(t))
	}
	for _, key := range s.Reconciler.AllowedSections() {
		out.AllowedSections = append(out.AllowedSections, string(key))
	}
	for _, scope := range s.Reconciler.AllowedScopes() {
		out.AllowedScopes = append(out.AllowedScopes, string(scope))
	}
	return out
}

// ParseDate reads a builder date in the dashboard's day-granular format.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", value)
	}
	return t, nil
}

func MapJobDomainToApi(job domain.ReportJob) api.ReportJob {
	return api.ReportJob{
		ID:        job.ID,
		Status:    string(job.Status),
		CreatedAt: job.CreatedAt,
		RunAt:     job.RunAt,
		Error:     job.Error,
	}
}

func MapJobDomainToStore(job domain.ReportJob) (*store.ReportJob, error) {
	cfg, err := json.Marshal(job.Config)
	if err != nil {
		return nil, fmt.Errorf("marshal report config: %w", err)
	}
	return &store.ReportJob{
		ID:         job.ID,
		Owner:      job.Owner,
		Status:     string(job.Status),
		ConfigJSON: string(cfg),
		CreatedAt:  job.CreatedAt,
		RunAt:      job.RunAt,
		CSVPath:    job.CSVPath,
		XLSXPath:   job.XLSXPath,
		Error:      job.Error,
	}, nil
}

func MapJobStoreToDomain(job *store.ReportJob) (domain.ReportJob, error) {
	var cfg domain.ReportConfig
	if err := json.Unmarshal([]byte(job.ConfigJSON), &cfg); err != nil {
		return domain.ReportJob{}, fmt.Errorf("unmarshal report config: %w", err)
	}
	return domain.ReportJob{
		ID:        job.ID,
		Owner:     job.Owner,
		Status:    domain.JobStatus(job.Status),
		Config:    cfg,
		CreatedAt: job.CreatedAt,
		RunAt:     job.RunAt,
		CSVPath:   job.CSVPath,
		XLSXPath:  job.XLSXPath,
		Error:     job.Error,
	}, nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
