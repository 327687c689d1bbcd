package report

import (
	"fmt"
	"os"

	"github.com/therma-tools/fleet-reports/pkg/models/domain"
	"gopkg.in/yaml.v3"
)

// Catalog holds the report type presets and the per-role visibility rules
// loaded from the catalog file. It is read once at startup and shared.
type Catalog struct {
	Types []domain.ReportType
	Roles map[string]Role
}

// Role describes what one dashboard role may report on.
type Role struct {
	Sections []domain.SectionKey
	Scopes   []domain.Scope
}

type catalogFile struct {
	ReportTypes []reportTypeDef    `yaml:"report_types"`
	Roles       map[string]roleDef `yaml:"roles"`
}

type reportTypeDef struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Sections []string `yaml:"sections"`
}

type roleDef struct {
	AllowedSections []string `yaml:"allowed_sections"`
	AllowedScopes   []string `yaml:"allowed_scopes"`
}

// LoadCatalog reads the catalog file. Unknown section keys or scopes are
// configuration mistakes and fail the load; at runtime the reconciler is
// permissive, but the file is the source of truth and gets no slack.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}
	return buildCatalog(file)
}

func buildCatalog(file catalogFile) (*Catalog, error) {
	c := &Catalog{Roles: make(map[string]Role, len(file.Roles))}

	for _, def := range file.ReportTypes {
		if def.ID == "" {
			return nil, fmt.Errorf("report type without id")
		}
		if def.ID == domain.AllSectionsTypeID {
			return nil, fmt.Errorf("report type id %q is reserved", def.ID)
		}
		sections, err := parseSections(def.Sections)
		if err != nil {
			return nil, fmt.Errorf("report type %q: %w", def.ID, err)
		}
		c.Types = append(c.Types, domain.ReportType{
			ID:       def.ID,
			Name:     def.Name,
			Sections: sections,
		})
	}
	// The reserved preset is always the last catalog entry.
	c.Types = append(c.Types, domain.ReportType{
		ID:   domain.AllSectionsTypeID,
		Name: "All Sections",
	})

	for name, def := range file.Roles {
		sections, err := parseSections(def.AllowedSections)
		if err != nil {
			return nil, fmt.Errorf("role %q: %w", name, err)
		}
		scopes, err := parseScopes(def.AllowedScopes)
		if err != nil {
			return nil, fmt.Errorf("role %q: %w", name, err)
		}
		c.Roles[name] = Role{Sections: sections, Scopes: scopes}
	}
	return c, nil
}

func parseSections(keys []string) ([]domain.SectionKey, error) {
	var out []domain.SectionKey
	for _, k := range keys {
		s := domain.SectionKey(k)
		if !s.Known() {
			return nil, fmt.Errorf("unknown section %q", k)
		}
		out = append(out, s)
	}
	return out, nil
}

func parseScopes(values []string) ([]domain.Scope, error) {
	var out []domain.Scope
	for _, v := range values {
		switch sc := domain.Scope(v); sc {
		case domain.ScopeSingle, domain.ScopeMultiple, domain.ScopeClient, domain.ScopeMaster:
			out = append(out, sc)
		default:
			return nil, fmt.Errorf("unknown scope %q", v)
		}
	}
	return out, nil
}

// ReconcilerFor builds a reconciler for one role, with the catalog
// filtered down to the presets that role may see.
func (c *Catalog) ReconcilerFor(role string) (*Reconciler, error) {
	r, ok := c.Roles[role]
	if !ok {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	return NewReconciler(c.Types, r.Sections, r.Scopes), nil
}
