// Package store holds the per-session cart state for the storefront:
// the signed-in session, its cart lines, the resolved admin flag and
// the cart sidebar toggle. Each authenticated session gets its own
// CartStore, constructed and owned by a Manager; there is no package
// level singleton.
package store

import (
	"sync"

	"github.com/casarossa/casarossa-backend/internal/app/model"
	"github.com/casarossa/casarossa-backend/internal/app/repository"
	"github.com/casarossa/casarossa-backend/internal/feed"
	"github.com/casarossa/casarossa-backend/pkg/logger"
)

// Session identifies the signed-in user a store belongs to. A nil
// *Session means anonymous.
type Session struct {
	UserID uint
	Email  string
}

// Snapshot is a point-in-time copy of the store state, taken under the
// store mutex. Items is a fresh slice; callers may keep it.
type Snapshot struct {
	Session     *Session
	IsAdmin     bool
	Items       []model.CartItem
	SidebarOpen bool
}

// CartStore is the working state of one session's cart. All mutations
// write through to the database first and only then update local state,
// so a failed write leaves the snapshot unchanged. Mutations on an
// anonymous store are no-ops.
type CartStore struct {
	mu          sync.Mutex
	session     *Session
	isAdmin     bool
	items       []model.CartItem
	sidebarOpen bool

	cartRepo    repository.CartRepository
	adminRepo   repository.AdminRepository
	bus         *feed.Bus
	adminEmail  string
	unsubscribe func()
}

func NewCartStore(
	cartRepo repository.CartRepository,
	adminRepo repository.AdminRepository,
	bus *feed.Bus,
	adminEmail string,
) *CartStore {
	return &CartStore{
		cartRepo:   cartRepo,
		adminRepo:  adminRepo,
		bus:        bus,
		adminEmail: adminEmail,
	}
}

// Initialize adopts the given session, loads its cart and admin flag,
// and subscribes to session events so a sign-out observed on the bus
// clears this store. Close must be called when the session ends.
func (s *CartStore) Initialize(session *Session) error {
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	s.unsubscribe = s.bus.Subscribe("sessions", func(e feed.Event) {
		s.mu.Lock()
		mine := s.session != nil && s.session.UserID == e.RowID
		s.mu.Unlock()
		if mine && e.Kind == feed.ChangeDelete {
			s.OnSessionChanged(nil)
		}
	})

	return s.OnSessionChanged(session)
}

// Close unsubscribes from session events. After Close returns no bus
// handler for this store will run again.
func (s *CartStore) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// OnSessionChanged moves the store to a new session. Going anonymous
// synchronously drops the local items and admin flag without touching
// the database; rows persist for the next sign-in. Going authenticated
// refreshes the cart and recomputes the admin flag.
func (s *CartStore) OnSessionChanged(session *Session) error {
	s.mu.Lock()
	previous := s.session
	s.session = session
	if session == nil {
		s.items = nil
		s.isAdmin = false
		s.mu.Unlock()
		return nil
	}
	// A different user's lines must never survive a session switch,
	// even if the refresh below fails.
	if previous != nil && previous.UserID != session.UserID {
		s.items = nil
	}
	s.mu.Unlock()

	if err := s.ResolveAdminStatus(); err != nil {
		// Already logged; the flag stays false.
		_ = err
	}
	return s.RefreshCart()
}

// ResolveAdminStatus recomputes the admin flag for the current session.
// The configured administrator email is admin without a lookup; anyone
// else needs a membership row. A lookup failure leaves the flag false.
func (s *CartStore) ResolveAdminStatus() error {
	s.mu.Lock()
	session := s.session
	s.mu.Unlock()

	if session == nil {
		s.setAdmin(false)
		return nil
	}
	if session.Email == s.adminEmail {
		s.setAdmin(true)
		return nil
	}

	isMember, err := s.adminRepo.IsMember(session.UserID)
	if err != nil {
		logger.Error("Failed to resolve admin status, treating as non-admin", err, map[string]interface{}{
			"user_id": session.UserID,
		})
		s.setAdmin(false)
		return err
	}
	s.setAdmin(isMember)
	return nil
}

func (s *CartStore) setAdmin(isAdmin bool) {
	s.mu.Lock()
	s.isAdmin = isAdmin
	s.mu.Unlock()
}

// RefreshCart replaces the local line slice with a full re-read for the
// current user. No-op when anonymous. On failure the previous slice is
// kept.
func (s *CartStore) RefreshCart() error {
	s.mu.Lock()
	session := s.session
	s.mu.Unlock()
	if session == nil {
		return nil
	}

	items, err := s.cartRepo.FindByUserID(session.UserID)
	if err != nil {
		logger.Error("Failed to refresh cart", err, map[string]interface{}{
			"user_id": session.UserID,
		})
		return err
	}

	s.mu.Lock()
	if s.session != nil && s.session.UserID == session.UserID {
		s.items = items
	}
	s.mu.Unlock()
	return nil
}

// AddToCart merges quantity into an existing line for the same menu item
// or inserts a new line, then refreshes and opens the sidebar. The
// existing line is looked up in the local snapshot, not re-read from the
// database; two stores for the same user adding concurrently can both
// miss the other's line and insert duplicates. UpdateQuantity and
// RemoveFromCart still behave on such carts, so this is tolerated
// rather than serialized away.
func (s *CartStore) AddToCart(menuItemID uint, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	session := s.session
	var existing *model.CartItem
	for i := range s.items {
		if s.items[i].MenuItemID == menuItemID {
			line := s.items[i]
			existing = &line
			break
		}
	}
	s.mu.Unlock()

	if session == nil {
		logger.Debug("Ignoring add to cart for anonymous session", map[string]interface{}{
			"menu_item_id": menuItemID,
		})
		return nil
	}

	var err error
	if existing != nil {
		err = s.cartRepo.UpdateQuantity(existing.ID, existing.Quantity+quantity)
	} else {
		err = s.cartRepo.Create(&model.CartItem{
			UserID:     session.UserID,
			MenuItemID: menuItemID,
			Quantity:   quantity,
		})
	}
	if err != nil {
		logger.Error("Failed to add item to cart", err, map[string]interface{}{
			"user_id":      session.UserID,
			"menu_item_id": menuItemID,
		})
		return err
	}

	if err := s.RefreshCart(); err != nil {
		return err
	}

	s.OpenSidebar()
	return nil
}

// RemoveFromCart deletes one line and refreshes. Removing a line that is
// already gone is not an error.
func (s *CartStore) RemoveFromCart(lineID uint) error {
	s.mu.Lock()
	session := s.session
	s.mu.Unlock()
	if session == nil {
		return nil
	}

	if err := s.cartRepo.Delete(lineID); err != nil {
		logger.Error("Failed to remove item from cart", err, map[string]interface{}{
			"user_id":      session.UserID,
			"cart_item_id": lineID,
		})
		return err
	}
	return s.RefreshCart()
}

// UpdateQuantity sets a line's quantity. Anything below one removes the
// line instead.
func (s *CartStore) UpdateQuantity(lineID uint, quantity int) error {
	if quantity <= 0 {
		return s.RemoveFromCart(lineID)
	}

	s.mu.Lock()
	session := s.session
	s.mu.Unlock()
	if session == nil {
		return nil
	}

	if err := s.cartRepo.UpdateQuantity(lineID, quantity); err != nil {
		logger.Error("Failed to update cart quantity", err, map[string]interface{}{
			"user_id":      session.UserID,
			"cart_item_id": lineID,
			"quantity":     quantity,
		})
		return err
	}
	return s.RefreshCart()
}

// ClearCart deletes every line for the current user and empties the
// local slice directly, skipping the refetch a refresh would do.
func (s *CartStore) ClearCart() error {
	s.mu.Lock()
	session := s.session
	s.mu.Unlock()
	if session == nil {
		return nil
	}

	if err := s.cartRepo.DeleteByUserID(session.UserID); err != nil {
		logger.Error("Failed to clear cart", err, map[string]interface{}{
			"user_id": session.UserID,
		})
		return err
	}

	s.mu.Lock()
	if s.session != nil && s.session.UserID == session.UserID {
		s.items = []model.CartItem{}
	}
	s.mu.Unlock()
	return nil
}

func (s *CartStore) OpenSidebar() {
	s.mu.Lock()
	s.sidebarOpen = true
	s.mu.Unlock()
}

func (s *CartStore) CloseSidebar() {
	s.mu.Lock()
	s.sidebarOpen = false
	s.mu.Unlock()
}

// Snapshot copies the current state under the lock.
func (s *CartStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]model.CartItem, len(s.items))
	copy(items, s.items)

	var session *Session
	if s.session != nil {
		copied := *s.session
		session = &copied
	}

	return Snapshot{
		Session:     session,
		IsAdmin:     s.isAdmin,
		Items:       items,
		SidebarOpen: s.sidebarOpen,
	}
}
