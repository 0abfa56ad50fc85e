package session

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/grevocab/api/internal/gateway"
)

// Manager holds one Session per execution context (client) and fans bus
// events out to them. It carries the process-wide origin ID used to filter
// out this context's own broadcasts.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	local    gateway.LocalStore
	remote   gateway.RemoteStore
	bus      gateway.Bus
	originID string

	unsubscribe func()
}

func NewManager(local gateway.LocalStore, remote gateway.RemoteStore, bus gateway.Bus) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		local:    local,
		remote:   remote,
		bus:      bus,
		originID: uuid.NewString(),
	}
}

func (m *Manager) OriginID() string {
	return m.originID
}

// Session returns the live session for clientID, loading it on first use.
func (m *Manager) Session(clientID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[clientID]; ok {
		return s, nil
	}

	s, err := New(clientID, m.originID, m.local, m.remote, m.bus)
	if err != nil {
		return nil, err
	}
	m.sessions[clientID] = s
	return s, nil
}

// Start subscribes to the sync bus and dispatches events to every live
// session. Dispatch runs on the bus goroutine; sessions do their own
// locking and remote fetches.
func (m *Manager) Start(ctx context.Context) error {
	if m.bus == nil {
		return nil
	}

	unsub, err := m.bus.Subscribe(ctx, func(ev gateway.Event) {
		m.mu.Lock()
		targets := make([]*Session, 0, len(m.sessions))
		for _, s := range m.sessions {
			targets = append(targets, s)
		}
		m.mu.Unlock()

		for _, s := range targets {
			s.HandleEvent(ctx, ev)
		}
	})
	if err != nil {
		return err
	}

	m.unsubscribe = unsub
	return nil
}

// Shutdown flushes every pending debounced save and detaches from the bus.
func (m *Manager) Shutdown() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}

	m.mu.Lock()
	targets := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		targets = append(targets, s)
	}
	m.mu.Unlock()

	for _, s := range targets {
		s.Flush()
	}
	log.Printf("[session] flushed %d sessions", len(targets))
}
