package repository

import (
	"testing"

	"github.com/casarossa/casarossa-backend/internal/app/model"
	"github.com/casarossa/casarossa-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCartTest(t *testing.T) (*gorm.DB, CartRepository, *model.User, *model.MenuItem) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	repo := NewCartRepository(testDB)

	user := &model.User{
		Email:        "diner@example.com",
		PasswordHash: "hash",
		Name:         "Test Diner",
		Role:         model.RoleUser,
	}
	testDB.Create(user)

	item := &model.MenuItem{
		Name:       "Margherita",
		Price:      9.99,
		Category:   model.CategoryMain,
		IsFeatured: true,
		Available:  true,
	}
	testDB.Create(item)

	return testDB, repo, user, item
}

func TestCartRepository_Create(t *testing.T) {
	testDB, repo, user, item := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	cartItem := &model.CartItem{
		UserID:     user.ID,
		MenuItemID: item.ID,
		Quantity:   2,
	}

	err := repo.Create(cartItem)
	assert.NoError(t, err)
	assert.NotZero(t, cartItem.ID)
}

func TestCartRepository_FindByUserID(t *testing.T) {
	testDB, repo, user, item := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	second := &model.MenuItem{
		Name:     "Tiramisu",
		Price:    4.50,
		Category: model.CategoryDessert,
	}
	testDB.Create(second)

	repo.Create(&model.CartItem{UserID: user.ID, MenuItemID: item.ID, Quantity: 2})
	repo.Create(&model.CartItem{UserID: user.ID, MenuItemID: second.ID, Quantity: 1})

	items, err := repo.FindByUserID(user.ID)
	assert.NoError(t, err)
	assert.Len(t, items, 2)
	for _, line := range items {
		assert.NotZero(t, line.MenuItem.ID, "menu item should be preloaded")
	}
}

func TestCartRepository_FindByUserID_Empty(t *testing.T) {
	testDB, repo, user, _ := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	items, err := repo.FindByUserID(user.ID)
	assert.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartRepository_FindByID(t *testing.T) {
	testDB, repo, user, item := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	cartItem := &model.CartItem{
		UserID:     user.ID,
		MenuItemID: item.ID,
		Quantity:   3,
	}
	repo.Create(cartItem)

	found, err := repo.FindByID(cartItem.ID)
	require.NoError(t, err)
	assert.Equal(t, cartItem.ID, found.ID)
	assert.Equal(t, 3, found.Quantity)
	assert.Equal(t, "Margherita", found.MenuItem.Name)
}

func TestCartRepository_FindByID_NotFound(t *testing.T) {
	testDB, repo, _, _ := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	_, err := repo.FindByID(999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCartRepository_UpdateQuantity(t *testing.T) {
	testDB, repo, user, item := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	cartItem := &model.CartItem{
		UserID:     user.ID,
		MenuItemID: item.ID,
		Quantity:   2,
	}
	repo.Create(cartItem)

	err := repo.UpdateQuantity(cartItem.ID, 5)
	require.NoError(t, err)

	found, err := repo.FindByID(cartItem.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, found.Quantity)
}

func TestCartRepository_Delete(t *testing.T) {
	testDB, repo, user, item := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	cartItem := &model.CartItem{
		UserID:     user.ID,
		MenuItemID: item.ID,
		Quantity:   1,
	}
	repo.Create(cartItem)

	err := repo.Delete(cartItem.ID)
	require.NoError(t, err)

	_, err = repo.FindByID(cartItem.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCartRepository_DeleteByUserID(t *testing.T) {
	testDB, repo, user, item := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	repo.Create(&model.CartItem{UserID: user.ID, MenuItemID: item.ID, Quantity: 2})
	repo.Create(&model.CartItem{UserID: user.ID, MenuItemID: item.ID, Quantity: 1})

	other := &model.User{Email: "other@example.com", PasswordHash: "hash", Name: "Other", Role: model.RoleUser}
	testDB.Create(other)
	repo.Create(&model.CartItem{UserID: other.ID, MenuItemID: item.ID, Quantity: 4})

	err := repo.DeleteByUserID(user.ID)
	require.NoError(t, err)

	items, err := repo.FindByUserID(user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	otherItems, err := repo.FindByUserID(other.ID)
	require.NoError(t, err)
	assert.Len(t, otherItems, 1)
}
