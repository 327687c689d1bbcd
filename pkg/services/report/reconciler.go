package report

import (
	"golang.org/x/exp/maps"

	"github.com/therma-tools/fleet-reports/pkg/models/domain"
)

// Reconciler keeps the two halves of a report configuration consistent:
// picking a report type preset enables its sections, and hand-toggling
// sections re-derives which presets the selection corresponds to. It also
// owns the single validity gate the submission layer checks.
//
// A Reconciler is built once per caller role and never mutated afterward.
// Every operation takes a ReportConfig value and returns a new one; the
// input is left untouched.
type Reconciler struct {
	catalog  []domain.ReportType
	byID     map[string]domain.ReportType
	sections map[domain.SectionKey]bool
	scopes   map[domain.Scope]bool
}

// NewReconciler builds a reconciler over a role-filtered catalog. Catalog
// entries declaring a section outside allowedSections are dropped here,
// which is the mechanism enforcing role-based section restriction: an id
// that was filtered out simply no-ops when selected.
func NewReconciler(
	catalog []domain.ReportType,
	allowedSections []domain.SectionKey,
	allowedScopes []domain.Scope,
) *Reconciler {
	r := &Reconciler{
		byID:     make(map[string]domain.ReportType),
		sections: make(map[domain.SectionKey]bool, len(allowedSections)),
		scopes:   make(map[domain.Scope]bool, len(allowedScopes)),
	}
	for _, s := range allowedSections {
		r.sections[s] = true
	}
	for _, sc := range allowedScopes {
		if sc != domain.ScopeUnset {
			r.scopes[sc] = true
		}
	}
	for _, t := range catalog {
		if t.ID != domain.AllSectionsTypeID && !r.sectionsAllowed(t.Sections) {
			continue
		}
		r.catalog = append(r.catalog, t)
		r.byID[t.ID] = t
	}
	return r
}

func (r *Reconciler) sectionsAllowed(keys []domain.SectionKey) bool {
	for _, k := range keys {
		if !r.sections[k] {
			return false
		}
	}
	return true
}

// Catalog returns the role-filtered report type presets, in catalog order.
func (r *Reconciler) Catalog() []domain.ReportType {
	out := make([]domain.ReportType, len(r.catalog))
	copy(out, r.catalog)
	return out
}

// AllowedSections returns the section vocabulary for this role, in
// display order.
func (r *Reconciler) AllowedSections() []domain.SectionKey {
	var keys []domain.SectionKey
	for _, s := range domain.Sections() {
		if r.sections[s] {
			keys = append(keys, s)
		}
	}
	return keys
}

// AllowedScopes returns the scopes this role may report over.
func (r *Reconciler) AllowedScopes() []domain.Scope {
	var scopes []domain.Scope
	for _, sc := range []domain.Scope{
		domain.ScopeSingle, domain.ScopeMultiple, domain.ScopeClient, domain.ScopeMaster,
	} {
		if r.scopes[sc] {
			scopes = append(scopes, sc)
		}
	}
	return scopes
}

// NewConfig returns an empty configuration: no types, every allowed
// section present and disabled, scope unset, nothing selected.
func (r *Reconciler) NewConfig() domain.ReportConfig {
	cfg := domain.ReportConfig{
		Sections:  make(map[domain.SectionKey]bool, len(r.sections)),
		UnitIDs:   map[string]bool{},
		ClientIDs: map[string]bool{},
	}
	for s := range r.sections {
		cfg.Sections[s] = false
	}
	return cfg
}

func cloneConfig(cfg domain.ReportConfig) domain.ReportConfig {
	out := cfg
	out.ReportTypeIDs = append([]string(nil), cfg.ReportTypeIDs...)
	out.Sections = maps.Clone(cfg.Sections)
	if out.Sections == nil {
		out.Sections = map[domain.SectionKey]bool{}
	}
	out.UnitIDs = maps.Clone(cfg.UnitIDs)
	if out.UnitIDs == nil {
		out.UnitIDs = map[string]bool{}
	}
	out.ClientIDs = maps.Clone(cfg.ClientIDs)
	if out.ClientIDs == nil {
		out.ClientIDs = map[string]bool{}
	}
	return out
}

// SelectReportType toggles typeID in the selected set and recomputes the
// section map as the union of every selected preset. Ids not present in
// the role-filtered catalog are ignored.
func (r *Reconciler) SelectReportType(cfg domain.ReportConfig, typeID string) domain.ReportConfig {
	if _, ok := r.byID[typeID]; !ok {
		return cfg
	}
	out := cloneConfig(cfg)

	removed := false
	ids := out.ReportTypeIDs[:0]
	for _, id := range out.ReportTypeIDs {
		if id == typeID {
			removed = true
			continue
		}
		ids = append(ids, id)
	}
	out.ReportTypeIDs = ids
	if !removed {
		out.ReportTypeIDs = append(out.ReportTypeIDs, typeID)
	}

	r.recomputeSections(&out)
	return out
}

// recomputeSections rebuilds the section map from the selected type ids:
// everything off, then the union of each selected preset's sections.
func (r *Reconciler) recomputeSections(cfg *domain.ReportConfig) {
	for s := range cfg.Sections {
		cfg.Sections[s] = false
	}
	for _, id := range cfg.ReportTypeIDs {
		if id == domain.AllSectionsTypeID {
			for s := range cfg.Sections {
				cfg.Sections[s] = true
			}
			continue
		}
		t, ok := r.byID[id]
		if !ok {
			continue
		}
		for _, s := range t.Sections {
			if r.sections[s] {
				cfg.Sections[s] = true
			}
		}
	}
}

// ToggleSection flips one section and re-infers the selected report types
// from the enabled set: presets whose sections exactly equal the enabled
// set win outright; only when no preset matches exactly are presets whose
// sections are a strict subset of the enabled set offered instead, in
// catalog order. The all-sections preset is never inferred; it can only be
// selected explicitly. Keys outside the allowed vocabulary are ignored.
func (r *Reconciler) ToggleSection(cfg domain.ReportConfig, key domain.SectionKey, enabled bool) domain.ReportConfig {
	if !r.sections[key] {
		return cfg
	}
	out := cloneConfig(cfg)
	out.Sections[key] = enabled
	out.ReportTypeIDs = r.inferReportTypes(out.Sections)
	return out
}

func (r *Reconciler) inferReportTypes(sections map[domain.SectionKey]bool) []string {
	enabled := 0
	for _, on := range sections {
		if on {
			enabled++
		}
	}
	if enabled == 0 {
		return nil
	}

	var exact, subset []string
	for _, t := range r.catalog {
		if t.ID == domain.AllSectionsTypeID {
			continue
		}
		contained := true
		for _, s := range t.Sections {
			if !sections[s] {
				contained = false
				break
			}
		}
		if !contained {
			continue
		}
		if len(t.Sections) == enabled {
			exact = append(exact, t.ID)
		} else {
			subset = append(subset, t.ID)
		}
	}

	// A perfect match subsumes every narrower preset, so subsets are only
	// meaningful labels when nothing matches exactly.
	if len(exact) > 0 {
		return exact
	}
	return subset
}

// SelectAllSections turns every allowed section on (selecting the reserved
// all-sections preset) or off (clearing the selection entirely).
func (r *Reconciler) SelectAllSections(cfg domain.ReportConfig, enabled bool) domain.ReportConfig {
	out := cloneConfig(cfg)
	for s := range out.Sections {
		out.Sections[s] = enabled
	}
	if enabled {
		out.ReportTypeIDs = []string{domain.AllSectionsTypeID}
	} else {
		out.ReportTypeIDs = nil
	}
	return out
}

// SetScope switches the report scope and drops any unit/client selection
// made under the previous scope. Scopes outside the role's allowed set are
// ignored. Section and report type state is untouched.
func (r *Reconciler) SetScope(cfg domain.ReportConfig, scope domain.Scope) domain.ReportConfig {
	if !r.scopes[scope] {
		return cfg
	}
	out := cloneConfig(cfg)
	out.Scope = scope
	out.UnitIDs = map[string]bool{}
	out.ClientIDs = map[string]bool{}
	return out
}

// SelectUnit adds or removes a unit. Under the single scope a selection
// replaces the whole set, so at most one unit is ever selected.
func (r *Reconciler) SelectUnit(cfg domain.ReportConfig, unitID string, checked bool) domain.ReportConfig {
	out := cloneConfig(cfg)
	if checked && out.Scope == domain.ScopeSingle {
		out.UnitIDs = map[string]bool{unitID: true}
		return out
	}
	if checked {
		out.UnitIDs[unitID] = true
	} else {
		delete(out.UnitIDs, unitID)
	}
	return out
}

// SelectClient adds or removes a client from the selection.
func (r *Reconciler) SelectClient(cfg domain.ReportConfig, clientID string, checked bool) domain.ReportConfig {
	out := cloneConfig(cfg)
	if checked {
		out.ClientIDs[clientID] = true
	} else {
		delete(out.ClientIDs, clientID)
	}
	return out
}

// SetDates replaces the reporting window. An empty range means all time.
func (r *Reconciler) SetDates(cfg domain.ReportConfig, dates domain.DateRange) domain.ReportConfig {
	out := cloneConfig(cfg)
	out.Dates = dates
	return out
}

// Valid reports whether cfg may be handed to the generate/schedule
// boundary: a scope is set, the date range is all-time or fully bounded,
// at least one section is enabled, and something is selected to report on
// unless the scope is master.
func (r *Reconciler) Valid(cfg domain.ReportConfig) bool {
	if cfg.Scope == domain.ScopeUnset {
		return false
	}
	if !cfg.Dates.Empty() && !cfg.Dates.Complete() {
		return false
	}
	any := false
	for _, on := range cfg.Sections {
		if on {
			any = true
			break
		}
	}
	if !any {
		return false
	}
	if cfg.Scope == domain.ScopeMaster {
		return true
	}
	return len(cfg.UnitIDs) > 0 || len(cfg.ClientIDs) > 0
}
