package composer

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultsSource loads the per-user composer defaults (posting time,
// default platform set, brand name). The settings service implements it.
type DefaultsSource interface {
	ComposerDefaults(ctx context.Context, userID int64) (Defaults, error)
}

// Manager owns the live composer per user. Composers are created lazily,
// seeded from the user's defaults, and dropped on logout.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*Composer

	submitter Submitter
	generator Generator
	defaults  DefaultsSource
	loc       *time.Location
}

func NewManager(submitter Submitter, generator Generator, defaults DefaultsSource, loc *time.Location) *Manager {
	if loc == nil {
		loc = time.UTC
	}
	return &Manager{
		sessions:  make(map[int64]*Composer),
		submitter: submitter,
		generator: generator,
		defaults:  defaults,
		loc:       loc,
	}
}

// Get returns the user's live composer, creating one on first use. A
// defaults lookup failure falls back to the built-in defaults rather than
// blocking composition.
func (m *Manager) Get(ctx context.Context, userID int64) *Composer {
	m.mu.Lock()
	if c, ok := m.sessions[userID]; ok {
		m.mu.Unlock()
		return c
	}
	m.mu.Unlock()

	var d Defaults
	if m.defaults != nil {
		loaded, err := m.defaults.ComposerDefaults(ctx, userID)
		if err != nil {
			slog.Info(err.Error())
		} else {
			d = loaded
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.sessions[userID]; ok {
		return c
	}
	c := New(userID, d, m.submitter, m.generator, m.loc)
	m.sessions[userID] = c
	return c
}

// Drop discards the user's composer state.
func (m *Manager) Drop(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}
