package session

import (
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"

	"geopits.dev/internal/sim/tuning"
	"geopits.dev/internal/sim/world"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrLimit    = errors.New("session limit reached")
)

// Recorder is notified when sessions open and close. Implemented by
// internal/persistence/indexdb.
type Recorder interface {
	RecordSessionOpen(id, worldID, seed string)
	RecordSessionClose(id string)
}

type Config struct {
	Tuning tuning.Tuning
	// Optional sinks (may be nil).
	Events   world.EventLogger
	Recorder Recorder
	Logger   logrus.FieldLogger
	// Zero means unlimited.
	MaxSessions int
}

type Manager struct {
	tune     tuning.Tuning
	events   world.EventLogger
	recorder Recorder
	log      logrus.FieldLogger
	max      int

	mu       deadlock.RWMutex
	sessions map[string]*Session

	eventsTotal  atomic.Uint64
	createdTotal atomic.Uint64
}

type Stats struct {
	Sessions      int
	ActiveCaches  int
	EventsTotal   uint64
	SessionsTotal uint64
}

func NewManager(cfg Config) *Manager {
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{
		tune:     cfg.Tuning,
		events:   cfg.Events,
		recorder: cfg.Recorder,
		log:      log,
		max:      cfg.MaxSessions,
		sessions: map[string]*Session{},
	}
}

// sessionEvents stamps the session id on world events before forwarding.
type sessionEvents struct {
	id string
	m  *Manager
}

func (e sessionEvents) WriteEvent(ev world.Event) error {
	e.m.eventsTotal.Add(1)
	if e.m.events == nil {
		return nil
	}
	ev.SessionID = e.id
	return e.m.events.WriteEvent(ev)
}

// Create starts a private world. An empty seed uses the tuned seed.
func (m *Manager) Create(seed string) (*Session, error) {
	id := uuid.NewString()
	worldID := "world_" + id[:8]
	cfg := m.tune.WorldConfig(worldID, seed)

	m.mu.RLock()
	full := m.max > 0 && len(m.sessions) >= m.max
	m.mu.RUnlock()
	if full {
		return nil, ErrLimit
	}

	// Record before the world emits its first events.
	if m.recorder != nil {
		m.recorder.RecordSessionOpen(id, worldID, cfg.Seed)
	}
	w, err := world.New(cfg,
		world.WithEventLogger(sessionEvents{id: id, m: m}),
		world.WithLogger(m.log.WithField("session", id)),
	)
	if err != nil {
		if m.recorder != nil {
			m.recorder.RecordSessionClose(id)
		}
		return nil, fmt.Errorf("create session: %w", err)
	}
	now := time.Now()
	s := &Session{
		ID:       id,
		Seed:     w.Config().Seed,
		Created:  now,
		w:        w,
		lastUsed: now,
	}

	m.mu.Lock()
	if m.max > 0 && len(m.sessions) >= m.max {
		m.mu.Unlock()
		if m.recorder != nil {
			m.recorder.RecordSessionClose(id)
		}
		return nil, ErrLimit
	}
	m.sessions[id] = s
	m.mu.Unlock()

	m.createdTotal.Add(1)
	m.log.WithField("session", id).WithField("seed", s.Seed).Info("session created")
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if m.recorder != nil {
		m.recorder.RecordSessionClose(id)
	}
	m.log.WithField("session", id).Info("session closed")
	return nil
}

// IDs returns the live session ids, sorted.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	out := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		out = append(out, id)
	}
	m.mu.RUnlock()
	sort.Strings(out)
	return out
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Expire closes sessions idle for longer than idle and returns how many.
func (m *Manager) Expire(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)
	var stale []string
	m.mu.RLock()
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	n := 0
	for _, id := range stale {
		if m.Delete(id) == nil {
			n++
		}
	}
	return n
}

func (m *Manager) Stats() Stats {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	st := Stats{
		Sessions:      len(sessions),
		EventsTotal:   m.eventsTotal.Load(),
		SessionsTotal: m.createdTotal.Load(),
	}
	for _, s := range sessions {
		st.ActiveCaches += s.activeCaches()
	}
	return st
}
