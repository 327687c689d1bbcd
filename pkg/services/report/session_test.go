package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/therma-tools/fleet-reports/pkg/models/domain"
)

func testCatalogForSessions(t *testing.T) *Catalog {
	t.Helper()
	c, err := buildCatalog(catalogFile{
		ReportTypes: []reportTypeDef{
			{ID: "unit-health", Name: "Unit Health", Sections: []string{"vital-statistics"}},
		},
		Roles: map[string]roleDef{
			"admin": {
				AllowedSections: []string{"vital-statistics", "maintenance"},
				AllowedScopes:   []string{"single", "master"},
			},
		},
	})
	require.NoError(t, err)
	return c
}

func TestSessionRegistry_OpenUpdateSubmit(t *testing.T) {
	reg := NewSessionRegistry(testCatalogForSessions(t), time.Hour)

	s, err := reg.Open("amira", "admin")
	require.NoError(t, err)
	assert.False(t, s.Valid())

	_, err = reg.Submit(s.ID, "amira")
	require.ErrorIs(t, err, ErrIncompleteConfig)
	_, err = reg.View(s.ID, "amira")
	assert.NoError(t, err, "a rejected submission keeps the session open")

	s, err = reg.Update(s.ID, "amira", func(r *Reconciler, cfg domain.ReportConfig) domain.ReportConfig {
		cfg = r.SetScope(cfg, domain.ScopeMaster)
		return r.SelectAllSections(cfg, true)
	})
	require.NoError(t, err)
	assert.True(t, s.Valid())

	submitted, err := reg.Submit(s.ID, "amira")
	require.NoError(t, err)
	assert.Equal(t, s.Config, submitted.Config)

	_, err = reg.Submit(s.ID, "amira")
	assert.Error(t, err, "only one submission can spend the session")
	_, err = reg.View(s.ID, "amira")
	assert.Error(t, err, "session should be gone after Submit")
}

func TestSessionRegistry_RestoreAfterFailedSubmission(t *testing.T) {
	reg := NewSessionRegistry(testCatalogForSessions(t), time.Hour)

	s, err := reg.Open("amira", "admin")
	require.NoError(t, err)
	s, err = reg.Update(s.ID, "amira", func(r *Reconciler, cfg domain.ReportConfig) domain.ReportConfig {
		cfg = r.SetScope(cfg, domain.ScopeMaster)
		return r.SelectAllSections(cfg, true)
	})
	require.NoError(t, err)

	submitted, err := reg.Submit(s.ID, "amira")
	require.NoError(t, err)

	reg.Restore(submitted)
	restored, err := reg.View(s.ID, "amira")
	require.NoError(t, err)
	assert.Equal(t, submitted.Config, restored.Config)
}

func TestSessionRegistry_UnknownRole(t *testing.T) {
	reg := NewSessionRegistry(testCatalogForSessions(t), time.Hour)
	_, err := reg.Open("amira", "intern")
	assert.Error(t, err)
}

func TestSessionRegistry_OwnerIsolation(t *testing.T) {
	reg := NewSessionRegistry(testCatalogForSessions(t), time.Hour)
	s, err := reg.Open("amira", "admin")
	require.NoError(t, err)

	_, err = reg.View(s.ID, "bo")
	assert.Error(t, err)
	_, err = reg.Submit(s.ID, "bo")
	assert.Error(t, err)
}

func TestSessionRegistry_Expiry(t *testing.T) {
	reg := NewSessionRegistry(testCatalogForSessions(t), time.Nanosecond)
	s, err := reg.Open("amira", "admin")
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	_, err = reg.View(s.ID, "amira")
	assert.Error(t, err)
}
