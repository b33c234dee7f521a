package repository

import (
	"github.com/casarossa/casarossa-backend/internal/app/model"
	"github.com/casarossa/casarossa-backend/pkg/logger"
	"gorm.io/gorm"
)

type CartRepository interface {
	Create(cartItem *model.CartItem) error
	FindByUserID(userID uint) ([]model.CartItem, error)
	FindByID(id uint) (*model.CartItem, error)
	UpdateQuantity(id uint, quantity int) error
	Delete(id uint) error
	DeleteByUserID(userID uint) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) Create(cartItem *model.CartItem) error {
	logger.Debug("Creating cart item in database", map[string]interface{}{
		"user_id":      cartItem.UserID,
		"menu_item_id": cartItem.MenuItemID,
		"quantity":     cartItem.Quantity,
	})

	if err := r.db.Create(cartItem).Error; err != nil {
		logger.Error("Failed to create cart item in database", err, map[string]interface{}{
			"user_id":      cartItem.UserID,
			"menu_item_id": cartItem.MenuItemID,
		})
		return err
	}

	return nil
}

// FindByUserID returns the user's cart lines joined with their menu item
// snapshot, in whatever order the database returns them.
func (r *cartRepository) FindByUserID(userID uint) ([]model.CartItem, error) {
	var cartItems []model.CartItem
	err := r.db.Where("user_id = ?", userID).
		Preload("MenuItem").
		Find(&cartItems).Error
	if err != nil {
		logger.Error("Failed to find cart items by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return cartItems, nil
}

func (r *cartRepository) FindByID(id uint) (*model.CartItem, error) {
	var cartItem model.CartItem
	if err := r.db.Preload("MenuItem").First(&cartItem, id).Error; err != nil {
		return nil, err
	}
	return &cartItem, nil
}

func (r *cartRepository) UpdateQuantity(id uint, quantity int) error {
	logger.Debug("Updating cart item quantity in database", map[string]interface{}{
		"cart_item_id": id,
		"quantity":     quantity,
	})

	if err := r.db.Model(&model.CartItem{}).Where("id = ?", id).
		Update("quantity", quantity).Error; err != nil {
		logger.Error("Failed to update cart item quantity in database", err, map[string]interface{}{
			"cart_item_id": id,
		})
		return err
	}
	return nil
}

// Delete removes a line by id. Deleting an absent row is not an error.
func (r *cartRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.CartItem{}, id).Error; err != nil {
		logger.Error("Failed to delete cart item from database", err, map[string]interface{}{
			"cart_item_id": id,
		})
		return err
	}
	return nil
}

func (r *cartRepository) DeleteByUserID(userID uint) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&model.CartItem{}).Error; err != nil {
		logger.Error("Failed to delete cart items by user ID from database", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	return nil
}
