package store

import (
	"sync"

	"github.com/casarossa/casarossa-backend/internal/app/repository"
	"github.com/casarossa/casarossa-backend/internal/feed"
	"github.com/casarossa/casarossa-backend/pkg/logger"
)

// managerEntry latches store initialization: ready is closed once
// Initialize has run, so concurrent acquirers never observe the store
// in its pre-session (anonymous) state.
type managerEntry struct {
	store *CartStore
	ready chan struct{}
}

// Manager owns one CartStore per signed-in user. Stores are created
// lazily on first use and torn down on Release or Close.
type Manager struct {
	mu     sync.Mutex
	stores map[uint]*managerEntry

	cartRepo   repository.CartRepository
	adminRepo  repository.AdminRepository
	bus        *feed.Bus
	adminEmail string
}

func NewManager(
	cartRepo repository.CartRepository,
	adminRepo repository.AdminRepository,
	bus *feed.Bus,
	adminEmail string,
) *Manager {
	return &Manager{
		stores:     make(map[uint]*managerEntry),
		cartRepo:   cartRepo,
		adminRepo:  adminRepo,
		bus:        bus,
		adminEmail: adminEmail,
	}
}

// Acquire returns the store for the given session, creating and
// initializing one if the user has none yet. Initialization failures
// are logged; the store is still returned with whatever state loaded.
func (m *Manager) Acquire(session Session) *CartStore {
	m.mu.Lock()
	if e, ok := m.stores[session.UserID]; ok {
		m.mu.Unlock()
		<-e.ready
		return e.store
	}

	e := &managerEntry{
		store: NewCartStore(m.cartRepo, m.adminRepo, m.bus, m.adminEmail),
		ready: make(chan struct{}),
	}
	m.stores[session.UserID] = e
	m.mu.Unlock()

	if err := e.store.Initialize(&session); err != nil {
		logger.Warn("Cart store initialized with errors", map[string]interface{}{
			"user_id": session.UserID,
			"error":   err.Error(),
		})
	}
	close(e.ready)
	return e.store
}

// Lookup returns the store for a user without creating one.
func (m *Manager) Lookup(userID uint) *CartStore {
	m.mu.Lock()
	e, ok := m.stores[userID]
	m.mu.Unlock()
	if !ok {
		return nil
	}
	<-e.ready
	return e.store
}

// Release closes and forgets a user's store. Called when the session
// ends; safe to call for a user with no store.
func (m *Manager) Release(userID uint) {
	m.mu.Lock()
	e, ok := m.stores[userID]
	if ok {
		delete(m.stores, userID)
	}
	m.mu.Unlock()

	if ok {
		<-e.ready
		e.store.Close()
	}
}

// Close releases every store.
func (m *Manager) Close() {
	m.mu.Lock()
	stores := m.stores
	m.stores = make(map[uint]*managerEntry)
	m.mu.Unlock()

	for _, e := range stores {
		<-e.ready
		e.store.Close()
	}
}
