package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/therma-tools/fleet-reports/pkg/models/domain"
)

func testCatalog() []domain.ReportType {
	return []domain.ReportType{
		{ID: "unit-health", Name: "Unit Health", Sections: []domain.SectionKey{
			domain.SectionVitalStatistics,
		}},
		{ID: "ops-summary", Name: "Operations Summary", Sections: []domain.SectionKey{
			domain.SectionVitalStatistics,
			domain.SectionMaintenance,
		}},
		{ID: "billing", Name: "Billing", Sections: []domain.SectionKey{
			domain.SectionSalesRevenue,
		}},
		{ID: domain.AllSectionsTypeID, Name: "All Sections"},
	}
}

func allScopes() []domain.Scope {
	return []domain.Scope{
		domain.ScopeSingle,
		domain.ScopeMultiple,
		domain.ScopeClient,
		domain.ScopeMaster,
	}
}

func newTestReconciler(t *testing.T) *Reconciler {
	t.Helper()
	return NewReconciler(testCatalog(), domain.Sections(), allScopes())
}

func enabledKeys(cfg domain.ReportConfig) []domain.SectionKey {
	return cfg.EnabledSections()
}

func TestSelectReportType_TogglesMembership(t *testing.T) {
	r := newTestReconciler(t)
	cfg := r.NewConfig()

	cfg = r.SelectReportType(cfg, "unit-health")
	assert.Equal(t, []string{"unit-health"}, cfg.ReportTypeIDs)
	assert.Equal(t, []domain.SectionKey{domain.SectionVitalStatistics}, enabledKeys(cfg))

	cfg = r.SelectReportType(cfg, "billing")
	assert.Equal(t, []string{"unit-health", "billing"}, cfg.ReportTypeIDs)

	// Selecting again removes, preserving the order of what remains.
	cfg = r.SelectReportType(cfg, "unit-health")
	assert.Equal(t, []string{"billing"}, cfg.ReportTypeIDs)
	assert.Equal(t, []domain.SectionKey{domain.SectionSalesRevenue}, enabledKeys(cfg))
}

func TestSelectReportType_SectionUnionIsOrderIndependent(t *testing.T) {
	r := newTestReconciler(t)

	a := r.NewConfig()
	a = r.SelectReportType(a, "unit-health")
	a = r.SelectReportType(a, "billing")
	a = r.SelectReportType(a, "ops-summary")

	b := r.NewConfig()
	b = r.SelectReportType(b, "ops-summary")
	b = r.SelectReportType(b, "billing")
	b = r.SelectReportType(b, "unit-health")

	assert.Equal(t, a.Sections, b.Sections)
}

func TestSelectReportType_UnknownIDIsNoOp(t *testing.T) {
	r := newTestReconciler(t)
	cfg := r.SelectReportType(r.NewConfig(), "quarterly-vibes")
	assert.Empty(t, cfg.ReportTypeIDs)
	assert.Empty(t, enabledKeys(cfg))
}

func TestSelectReportType_RoleFilteredIDIsNoOp(t *testing.T) {
	// Operator may not see revenue, so the billing preset is out of
	// catalog for them even though the id exists in the file.
	operatorSections := []domain.SectionKey{
		domain.SectionVitalStatistics,
		domain.SectionAlertsAlarms,
		domain.SectionMaintenance,
	}
	r := NewReconciler(testCatalog(), operatorSections, allScopes())

	cfg := r.SelectReportType(r.NewConfig(), "billing")
	assert.Empty(t, cfg.ReportTypeIDs)

	// The surviving catalog keeps its order.
	var ids []string
	for _, tp := range r.Catalog() {
		ids = append(ids, tp.ID)
	}
	assert.Equal(t, []string{"unit-health", "ops-summary", domain.AllSectionsTypeID}, ids)
}

func TestSelectReportType_AllSectionsEnablesEverything(t *testing.T) {
	r := newTestReconciler(t)
	cfg := r.SelectReportType(r.NewConfig(), domain.AllSectionsTypeID)

	assert.Equal(t, []string{domain.AllSectionsTypeID}, cfg.ReportTypeIDs)
	for _, s := range domain.Sections() {
		assert.True(t, cfg.Sections[s], "section %s should be enabled", s)
	}
}

func TestToggleSection_ExactMatchBeatsSubset(t *testing.T) {
	r := newTestReconciler(t)
	cfg := r.NewConfig()

	cfg = r.ToggleSection(cfg, domain.SectionVitalStatistics, true)
	assert.Equal(t, []string{"unit-health"}, cfg.ReportTypeIDs)

	// Once maintenance is on too, ops-summary matches exactly and the
	// narrower unit-health preset is no longer offered.
	cfg = r.ToggleSection(cfg, domain.SectionMaintenance, true)
	assert.Equal(t, []string{"ops-summary"}, cfg.ReportTypeIDs)
}

func TestToggleSection_SubsetsOfferedWithoutExactMatch(t *testing.T) {
	r := newTestReconciler(t)
	cfg := r.NewConfig()

	// No preset is exactly {vital, compliance}; unit-health is contained
	// in it and surfaces as the closest label.
	cfg = r.ToggleSection(cfg, domain.SectionVitalStatistics, true)
	cfg = r.ToggleSection(cfg, domain.SectionCompliance, true)
	assert.Equal(t, []string{"unit-health"}, cfg.ReportTypeIDs)
}

func TestToggleSection_MultipleSubsetsKeepCatalogOrder(t *testing.T) {
	r := newTestReconciler(t)
	cfg := r.NewConfig()

	cfg = r.ToggleSection(cfg, domain.SectionVitalStatistics, true)
	cfg = r.ToggleSection(cfg, domain.SectionSalesRevenue, true)
	assert.Equal(t, []string{"unit-health", "billing"}, cfg.ReportTypeIDs)
}

func TestToggleSection_NeverInfersAllSections(t *testing.T) {
	r := newTestReconciler(t)
	cfg := r.NewConfig()

	for _, s := range domain.Sections() {
		cfg = r.ToggleSection(cfg, s, true)
		assert.NotContains(t, cfg.ReportTypeIDs, domain.AllSectionsTypeID)
	}
	// Every section on by hand still does not select the reserved preset.
	for _, s := range domain.Sections() {
		assert.True(t, cfg.Sections[s])
	}
}

func TestToggleSection_DisableAllClearsTypes(t *testing.T) {
	r := newTestReconciler(t)
	cfg := r.ToggleSection(r.NewConfig(), domain.SectionVitalStatistics, true)
	require.NotEmpty(t, cfg.ReportTypeIDs)

	cfg = r.ToggleSection(cfg, domain.SectionVitalStatistics, false)
	assert.Empty(t, cfg.ReportTypeIDs)
	assert.Empty(t, enabledKeys(cfg))
}

func TestToggleSection_UnknownKeyIsNoOp(t *testing.T) {
	r := NewReconciler(testCatalog(), []domain.SectionKey{domain.SectionVitalStatistics}, allScopes())
	cfg := r.NewConfig()

	got := r.ToggleSection(cfg, domain.SectionSalesRevenue, true)
	assert.Equal(t, cfg, got)

	got = r.ToggleSection(cfg, domain.SectionKey("weather"), true)
	assert.Equal(t, cfg, got)
}

func TestToggleSection_SectionMapKeysStayFixed(t *testing.T) {
	allowed := []domain.SectionKey{
		domain.SectionVitalStatistics,
		domain.SectionMaintenance,
	}
	r := NewReconciler(testCatalog(), allowed, allScopes())
	cfg := r.NewConfig()
	require.Len(t, cfg.Sections, 2)

	cfg = r.ToggleSection(cfg, domain.SectionVitalStatistics, true)
	cfg = r.SelectAllSections(cfg, true)
	cfg = r.SelectReportType(cfg, "ops-summary")

	assert.Len(t, cfg.Sections, 2)
	for _, s := range allowed {
		_, ok := cfg.Sections[s]
		assert.True(t, ok, "missing key %s", s)
	}
}

func TestSelectAllSections_RoundTrip(t *testing.T) {
	r := newTestReconciler(t)
	cfg := r.SelectAllSections(r.NewConfig(), true)

	assert.Equal(t, []string{domain.AllSectionsTypeID}, cfg.ReportTypeIDs)
	for _, s := range domain.Sections() {
		assert.True(t, cfg.Sections[s])
	}

	cfg = r.SelectAllSections(cfg, false)
	assert.Empty(t, cfg.ReportTypeIDs)
	assert.Empty(t, enabledKeys(cfg))
}

func TestSetScope_ClearsSelections(t *testing.T) {
	r := newTestReconciler(t)
	cfg := r.SetScope(r.NewConfig(), domain.ScopeMultiple)
	cfg = r.SelectUnit(cfg, "TC001", true)
	cfg = r.SelectUnit(cfg, "TC002", true)
	require.Len(t, cfg.UnitIDs, 2)

	cfg = r.SetScope(cfg, domain.ScopeClient)
	assert.Equal(t, domain.ScopeClient, cfg.Scope)
	assert.Empty(t, cfg.UnitIDs)
	assert.Empty(t, cfg.ClientIDs)
}

func TestSetScope_DisallowedScopeIsNoOp(t *testing.T) {
	r := NewReconciler(testCatalog(), domain.Sections(), []domain.Scope{domain.ScopeSingle})
	cfg := r.SetScope(r.NewConfig(), domain.ScopeMaster)
	assert.Equal(t, domain.ScopeUnset, cfg.Scope)
}

func TestSetScope_LeavesSectionsAlone(t *testing.T) {
	r := newTestReconciler(t)
	cfg := r.SelectReportType(r.NewConfig(), "ops-summary")
	cfg = r.SetScope(cfg, domain.ScopeSingle)

	assert.Equal(t, []string{"ops-summary"}, cfg.ReportTypeIDs)
	assert.True(t, cfg.Sections[domain.SectionMaintenance])
}

func TestSelectUnit_SingleScopeReplaces(t *testing.T) {
	r := newTestReconciler(t)
	cfg := r.SetScope(r.NewConfig(), domain.ScopeSingle)

	cfg = r.SelectUnit(cfg, "TC001", true)
	cfg = r.SelectUnit(cfg, "TC002", true)
	assert.Equal(t, map[string]bool{"TC002": true}, cfg.UnitIDs)
}

func TestSelectUnit_MultipleScopeAccumulates(t *testing.T) {
	r := newTestReconciler(t)
	cfg := r.SetScope(r.NewConfig(), domain.ScopeMultiple)

	cfg = r.SelectUnit(cfg, "TC001", true)
	cfg = r.SelectUnit(cfg, "TC002", true)
	assert.Len(t, cfg.UnitIDs, 2)

	cfg = r.SelectUnit(cfg, "TC001", false)
	assert.Equal(t, map[string]bool{"TC002": true}, cfg.UnitIDs)
}

func TestValid(t *testing.T) {
	r := newTestReconciler(t)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		build func() domain.ReportConfig
		want  bool
	}{
		{
			name:  "empty config",
			build: func() domain.ReportConfig { return r.NewConfig() },
			want:  false,
		},
		{
			name: "single scope without a unit",
			build: func() domain.ReportConfig {
				cfg := r.SetScope(r.NewConfig(), domain.ScopeSingle)
				return r.ToggleSection(cfg, domain.SectionVitalStatistics, true)
			},
			want: false,
		},
		{
			name: "single scope with a unit and no dates",
			build: func() domain.ReportConfig {
				cfg := r.SetScope(r.NewConfig(), domain.ScopeSingle)
				cfg = r.ToggleSection(cfg, domain.SectionVitalStatistics, true)
				return r.SelectUnit(cfg, "TC001", true)
			},
			want: true,
		},
		{
			name: "half-filled date range",
			build: func() domain.ReportConfig {
				cfg := r.SetScope(r.NewConfig(), domain.ScopeSingle)
				cfg = r.ToggleSection(cfg, domain.SectionVitalStatistics, true)
				cfg = r.SelectUnit(cfg, "TC001", true)
				cfg.Dates = domain.DateRange{Start: &start}
				return cfg
			},
			want: false,
		},
		{
			name: "complete date range",
			build: func() domain.ReportConfig {
				cfg := r.SetScope(r.NewConfig(), domain.ScopeSingle)
				cfg = r.ToggleSection(cfg, domain.SectionVitalStatistics, true)
				cfg = r.SelectUnit(cfg, "TC001", true)
				cfg.Dates = domain.DateRange{Start: &start, End: &end}
				return cfg
			},
			want: true,
		},
		{
			name: "no sections enabled",
			build: func() domain.ReportConfig {
				cfg := r.SetScope(r.NewConfig(), domain.ScopeSingle)
				return r.SelectUnit(cfg, "TC001", true)
			},
			want: false,
		},
		{
			name: "master scope needs no selection",
			build: func() domain.ReportConfig {
				cfg := r.SetScope(r.NewConfig(), domain.ScopeMaster)
				return r.SelectAllSections(cfg, true)
			},
			want: true,
		},
		{
			name: "client scope with a client",
			build: func() domain.ReportConfig {
				cfg := r.SetScope(r.NewConfig(), domain.ScopeClient)
				cfg = r.ToggleSection(cfg, domain.SectionSalesRevenue, true)
				return r.SelectClient(cfg, "acme", true)
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Valid(tt.build()))
		})
	}
}

func TestOperationsDoNotMutateInput(t *testing.T) {
	r := newTestReconciler(t)
	base := r.SetScope(r.NewConfig(), domain.ScopeMultiple)
	base = r.SelectReportType(base, "unit-health")
	base = r.SelectUnit(base, "TC001", true)

	snapshot := func(cfg domain.ReportConfig) (ids []string, sections map[domain.SectionKey]bool, units map[string]bool) {
		ids = append([]string(nil), cfg.ReportTypeIDs...)
		sections = map[domain.SectionKey]bool{}
		for k, v := range cfg.Sections {
			sections[k] = v
		}
		units = map[string]bool{}
		for k := range cfg.UnitIDs {
			units[k] = true
		}
		return
	}

	ids, sections, units := snapshot(base)

	_ = r.SelectReportType(base, "billing")
	_ = r.ToggleSection(base, domain.SectionCompliance, true)
	_ = r.SelectAllSections(base, true)
	_ = r.SetScope(base, domain.ScopeClient)
	_ = r.SelectUnit(base, "TC002", true)
	_ = r.SelectClient(base, "acme", true)

	gotIDs, gotSections, gotUnits := snapshot(base)
	assert.Equal(t, ids, gotIDs)
	assert.Equal(t, sections, gotSections)
	assert.Equal(t, units, gotUnits)
}
