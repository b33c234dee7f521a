package store

import (
	"sync"
	"testing"

	"github.com/casarossa/casarossa-backend/internal/app/model"
	"github.com/casarossa/casarossa-backend/internal/app/repository"
	"github.com/casarossa/casarossa-backend/internal/db"
	"github.com/casarossa/casarossa-backend/internal/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testAdminEmail = "admin@example.com"

type storeFixture struct {
	db      *gorm.DB
	bus     *feed.Bus
	store   *CartStore
	user    *model.User
	pizza   *model.MenuItem
	dessert *model.MenuItem
}

func setupStoreTest(t *testing.T) *storeFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	user := &model.User{
		Email:        "diner@example.com",
		PasswordHash: "hash",
		Name:         "Test Diner",
		Role:         model.RoleUser,
	}
	require.NoError(t, testDB.Create(user).Error)

	pizza := &model.MenuItem{Name: "Margherita", Price: 9.99, Category: model.CategoryMain, IsFeatured: true}
	dessert := &model.MenuItem{Name: "Tiramisu", Price: 4.50, Category: model.CategoryDessert}
	require.NoError(t, testDB.Create(pizza).Error)
	require.NoError(t, testDB.Create(dessert).Error)

	bus := feed.NewBus()
	s := NewCartStore(
		repository.NewCartRepository(testDB),
		repository.NewAdminRepository(testDB),
		bus,
		testAdminEmail,
	)
	require.NoError(t, s.Initialize(&Session{UserID: user.ID, Email: user.Email}))
	t.Cleanup(s.Close)

	return &storeFixture{db: testDB, bus: bus, store: s, user: user, pizza: pizza, dessert: dessert}
}

func TestCartStore_AddToCart_InsertsLine(t *testing.T) {
	f := setupStoreTest(t)

	require.NoError(t, f.store.AddToCart(f.pizza.ID, 2))

	snap := f.store.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, f.pizza.ID, snap.Items[0].MenuItemID)
	assert.Equal(t, 2, snap.Items[0].Quantity)
	assert.Equal(t, "Margherita", snap.Items[0].MenuItem.Name)
}

func TestCartStore_AddToCart_MergesExistingLine(t *testing.T) {
	f := setupStoreTest(t)

	require.NoError(t, f.store.AddToCart(f.pizza.ID, 2))
	require.NoError(t, f.store.AddToCart(f.pizza.ID, 3))

	snap := f.store.Snapshot()
	require.Len(t, snap.Items, 1, "same menu item should merge into one line")
	assert.Equal(t, 5, snap.Items[0].Quantity)

	var count int64
	f.db.Model(&model.CartItem{}).Where("user_id = ?", f.user.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCartStore_AddToCart_DistinctItemsKeepSeparateLines(t *testing.T) {
	f := setupStoreTest(t)

	require.NoError(t, f.store.AddToCart(f.pizza.ID, 1))
	require.NoError(t, f.store.AddToCart(f.dessert.ID, 2))

	snap := f.store.Snapshot()
	assert.Len(t, snap.Items, 2)
}

func TestCartStore_AddToCart_OpensSidebar(t *testing.T) {
	f := setupStoreTest(t)

	assert.False(t, f.store.Snapshot().SidebarOpen)
	require.NoError(t, f.store.AddToCart(f.pizza.ID, 1))
	assert.True(t, f.store.Snapshot().SidebarOpen)

	f.store.CloseSidebar()
	assert.False(t, f.store.Snapshot().SidebarOpen)
}

func TestCartStore_AddToCart_AnonymousIsNoOp(t *testing.T) {
	f := setupStoreTest(t)
	require.NoError(t, f.store.OnSessionChanged(nil))

	require.NoError(t, f.store.AddToCart(f.pizza.ID, 1))

	snap := f.store.Snapshot()
	assert.Empty(t, snap.Items)
	assert.False(t, snap.SidebarOpen)

	var count int64
	f.db.Model(&model.CartItem{}).Count(&count)
	assert.Zero(t, count)
}

func TestCartStore_AddToCart_FlooredQuantity(t *testing.T) {
	f := setupStoreTest(t)

	require.NoError(t, f.store.AddToCart(f.pizza.ID, 0))

	snap := f.store.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 1, snap.Items[0].Quantity)
}

func TestCartStore_UpdateQuantity(t *testing.T) {
	f := setupStoreTest(t)
	require.NoError(t, f.store.AddToCart(f.pizza.ID, 1))
	lineID := f.store.Snapshot().Items[0].ID

	require.NoError(t, f.store.UpdateQuantity(lineID, 4))

	snap := f.store.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 4, snap.Items[0].Quantity)
}

func TestCartStore_UpdateQuantity_ZeroRemovesLine(t *testing.T) {
	f := setupStoreTest(t)
	require.NoError(t, f.store.AddToCart(f.pizza.ID, 2))
	lineID := f.store.Snapshot().Items[0].ID

	require.NoError(t, f.store.UpdateQuantity(lineID, 0))
	assert.Empty(t, f.store.Snapshot().Items)

	require.NoError(t, f.store.AddToCart(f.dessert.ID, 2))
	lineID = f.store.Snapshot().Items[0].ID
	require.NoError(t, f.store.UpdateQuantity(lineID, -3))
	assert.Empty(t, f.store.Snapshot().Items)
}

func TestCartStore_RemoveFromCart(t *testing.T) {
	f := setupStoreTest(t)
	require.NoError(t, f.store.AddToCart(f.pizza.ID, 1))
	require.NoError(t, f.store.AddToCart(f.dessert.ID, 1))

	lineID := f.store.Snapshot().Items[0].ID
	require.NoError(t, f.store.RemoveFromCart(lineID))

	assert.Len(t, f.store.Snapshot().Items, 1)
}

func TestCartStore_RemoveFromCart_AbsentLine(t *testing.T) {
	f := setupStoreTest(t)

	assert.NoError(t, f.store.RemoveFromCart(999))
}

func TestCartStore_ClearCart(t *testing.T) {
	f := setupStoreTest(t)
	require.NoError(t, f.store.AddToCart(f.pizza.ID, 2))
	require.NoError(t, f.store.AddToCart(f.dessert.ID, 1))

	require.NoError(t, f.store.ClearCart())

	snap := f.store.Snapshot()
	assert.NotNil(t, snap.Items)
	assert.Empty(t, snap.Items)

	var count int64
	f.db.Model(&model.CartItem{}).Where("user_id = ?", f.user.ID).Count(&count)
	assert.Zero(t, count)
}

func TestCartStore_SignOutClearsStateButKeepsRows(t *testing.T) {
	f := setupStoreTest(t)
	require.NoError(t, f.store.AddToCart(f.pizza.ID, 2))

	require.NoError(t, f.store.OnSessionChanged(nil))

	snap := f.store.Snapshot()
	assert.Nil(t, snap.Session)
	assert.Empty(t, snap.Items)
	assert.False(t, snap.IsAdmin)

	// Rows survive for the next sign-in.
	var count int64
	f.db.Model(&model.CartItem{}).Where("user_id = ?", f.user.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCartStore_SignInReloadsPersistedCart(t *testing.T) {
	f := setupStoreTest(t)
	require.NoError(t, f.store.AddToCart(f.pizza.ID, 3))
	require.NoError(t, f.store.OnSessionChanged(nil))

	require.NoError(t, f.store.OnSessionChanged(&Session{UserID: f.user.ID, Email: f.user.Email}))

	snap := f.store.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 3, snap.Items[0].Quantity)
}

func TestCartStore_SessionDeleteEventClearsStore(t *testing.T) {
	f := setupStoreTest(t)
	require.NoError(t, f.store.AddToCart(f.pizza.ID, 1))

	f.bus.Publish(feed.Event{Table: "sessions", Kind: feed.ChangeDelete, RowID: f.user.ID})

	snap := f.store.Snapshot()
	assert.Nil(t, snap.Session)
	assert.Empty(t, snap.Items)
}

func TestCartStore_SessionDeleteEventForOtherUserIgnored(t *testing.T) {
	f := setupStoreTest(t)
	require.NoError(t, f.store.AddToCart(f.pizza.ID, 1))

	f.bus.Publish(feed.Event{Table: "sessions", Kind: feed.ChangeDelete, RowID: f.user.ID + 1})

	snap := f.store.Snapshot()
	require.NotNil(t, snap.Session)
	assert.Len(t, snap.Items, 1)
}

func TestCartStore_NoEventsAfterClose(t *testing.T) {
	f := setupStoreTest(t)
	require.NoError(t, f.store.AddToCart(f.pizza.ID, 1))

	f.store.Close()
	f.bus.Publish(feed.Event{Table: "sessions", Kind: feed.ChangeDelete, RowID: f.user.ID})

	snap := f.store.Snapshot()
	require.NotNil(t, snap.Session)
	assert.Len(t, snap.Items, 1)
}

func TestCartStore_AdminByConfiguredEmail(t *testing.T) {
	f := setupStoreTest(t)

	require.NoError(t, f.store.OnSessionChanged(&Session{UserID: f.user.ID, Email: testAdminEmail}))

	assert.True(t, f.store.Snapshot().IsAdmin)
}

func TestCartStore_AdminByMembershipRow(t *testing.T) {
	f := setupStoreTest(t)
	assert.False(t, f.store.Snapshot().IsAdmin)

	require.NoError(t, f.db.Create(&model.AdminUser{UserID: f.user.ID}).Error)
	require.NoError(t, f.store.ResolveAdminStatus())

	assert.True(t, f.store.Snapshot().IsAdmin)
}

func TestCartStore_AdminResolutionFailsClosed(t *testing.T) {
	f := setupStoreTest(t)
	require.NoError(t, f.db.Create(&model.AdminUser{UserID: f.user.ID}).Error)
	require.NoError(t, f.store.ResolveAdminStatus())
	require.True(t, f.store.Snapshot().IsAdmin)

	// Break the membership table so the lookup errors.
	require.NoError(t, f.db.Migrator().DropTable(&model.AdminUser{}))

	err := f.store.ResolveAdminStatus()
	assert.Error(t, err)
	assert.False(t, f.store.Snapshot().IsAdmin)
}

func TestManager_AcquireReusesStore(t *testing.T) {
	f := setupStoreTest(t)

	m := NewManager(
		repository.NewCartRepository(f.db),
		repository.NewAdminRepository(f.db),
		f.bus,
		testAdminEmail,
	)
	defer m.Close()

	session := Session{UserID: f.user.ID, Email: f.user.Email}
	first := m.Acquire(session)
	second := m.Acquire(session)
	assert.Same(t, first, second)

	assert.Same(t, first, m.Lookup(f.user.ID))
	assert.Nil(t, m.Lookup(f.user.ID+1))

	m.Release(f.user.ID)
	assert.Nil(t, m.Lookup(f.user.ID))
}

func TestManager_ConcurrentFirstAcquireWaitsForSession(t *testing.T) {
	f := setupStoreTest(t)
	require.NoError(t, f.store.AddToCart(f.pizza.ID, 1))

	m := NewManager(
		repository.NewCartRepository(f.db),
		repository.NewAdminRepository(f.db),
		f.bus,
		testAdminEmail,
	)
	defer m.Close()

	session := Session{UserID: f.user.ID, Email: f.user.Email}

	const callers = 16
	stores := make([]*CartStore, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			stores[i] = m.Acquire(session)
		}(i)
	}
	wg.Wait()

	// Every caller gets the one fully initialized store, never a
	// pre-session view where mutations would no-op.
	for i := 0; i < callers; i++ {
		require.Same(t, stores[0], stores[i])
		snap := stores[i].Snapshot()
		require.NotNil(t, snap.Session)
		assert.Equal(t, f.user.ID, snap.Session.UserID)
		assert.Len(t, snap.Items, 1)
	}
}

func TestCartStore_SessionSwitchDropsPreviousUsersItems(t *testing.T) {
	f := setupStoreTest(t)
	require.NoError(t, f.store.AddToCart(f.pizza.ID, 2))
	require.Len(t, f.store.Snapshot().Items, 1)

	other := &model.User{
		Email:        "other@example.com",
		PasswordHash: "hash",
		Name:         "Other Diner",
		Role:         model.RoleUser,
	}
	require.NoError(t, f.db.Create(other).Error)

	// Break the cart table so the refresh for the new user fails; the
	// previous user's lines must be gone regardless.
	require.NoError(t, f.db.Migrator().DropTable(&model.CartItem{}))

	err := f.store.OnSessionChanged(&Session{UserID: other.ID, Email: other.Email})
	assert.Error(t, err)
	assert.Empty(t, f.store.Snapshot().Items)
}
