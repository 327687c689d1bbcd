package report

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/therma-tools/fleet-reports/pkg/models/domain"
)

// Session is one in-progress report build. A session belongs to exactly
// one caller; all transitions on its config go through the registry so no
// two are ever interleaved.
type Session struct {
	ID         string
	Owner      string
	Role       string
	Config     domain.ReportConfig
	CreatedAt  time.Time
	Reconciler *Reconciler
}

func (s Session) Valid() bool {
	return s.Reconciler.Valid(s.Config)
}

// SessionRegistry tracks open builder sessions in memory. Sessions are
// discarded when the config crosses the generate/schedule boundary or when
// they outlive the TTL; they are never persisted.
type SessionRegistry struct {
	catalog *Catalog
	ttl     time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionRegistry(catalog *Catalog, ttl time.Duration) *SessionRegistry {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionRegistry{
		catalog:  catalog,
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

// Open starts a fresh session for owner under the given role.
func (reg *SessionRegistry) Open(owner, role string) (Session, error) {
	rec, err := reg.catalog.ReconcilerFor(role)
	if err != nil {
		return Session{}, err
	}

	s := &Session{
		ID:         uuid.NewString(),
		Owner:      owner,
		Role:       role,
		Config:     rec.NewConfig(),
		CreatedAt:  time.Now(),
		Reconciler: rec,
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.prune()
	reg.sessions[s.ID] = s
	return *s, nil
}

// View returns a snapshot of the session.
func (reg *SessionRegistry) View(id, owner string) (Session, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	s, err := reg.lookup(id, owner)
	if err != nil {
		return Session{}, err
	}
	return *s, nil
}

// Update applies one transition to the session config under the registry
// lock and returns the resulting snapshot.
func (reg *SessionRegistry) Update(
	id, owner string,
	fn func(*Reconciler, domain.ReportConfig) domain.ReportConfig,
) (Session, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	s, err := reg.lookup(id, owner)
	if err != nil {
		return Session{}, err
	}
	s.Config = fn(s.Reconciler, s.Config)
	return *s, nil
}

// ErrIncompleteConfig signals a submission attempt on a config that does
// not pass validation yet.
var ErrIncompleteConfig = errors.New("report config is not complete")

// Submit validates the session and removes it in the same critical
// section, so two concurrent submissions of one session cannot both cross
// the boundary. An incomplete config leaves the session in place.
func (reg *SessionRegistry) Submit(id, owner string) (Session, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	s, err := reg.lookup(id, owner)
	if err != nil {
		return Session{}, err
	}
	if !s.Reconciler.Valid(s.Config) {
		return Session{}, ErrIncompleteConfig
	}
	delete(reg.sessions, id)
	return *s, nil
}

// Restore puts a submitted session back after a downstream failure.
func (reg *SessionRegistry) Restore(s Session) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	restored := s
	reg.sessions[s.ID] = &restored
}

// Close discards a session without submitting it.
func (reg *SessionRegistry) Close(id, owner string) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, err := reg.lookup(id, owner); err != nil {
		return err
	}
	delete(reg.sessions, id)
	return nil
}

func (reg *SessionRegistry) lookup(id, owner string) (*Session, error) {
	s, ok := reg.sessions[id]
	if !ok || time.Since(s.CreatedAt) > reg.ttl {
		return nil, fmt.Errorf("builder session not found: %s", id)
	}
	if s.Owner != owner {
		return nil, fmt.Errorf("builder session not found: %s", id)
	}
	return s, nil
}

func (reg *SessionRegistry) prune() {
	for id, s := range reg.sessions {
		if time.Since(s.CreatedAt) > reg.ttl {
			delete(reg.sessions, id)
		}
	}
}
