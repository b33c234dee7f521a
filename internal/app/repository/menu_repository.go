package repository

import (
	"github.com/casarossa/casarossa-backend/internal/app/model"
	"github.com/casarossa/casarossa-backend/pkg/logger"
	"gorm.io/gorm"
)

type MenuRepository interface {
	Create(item *model.MenuItem) error
	FindByID(id uint) (*model.MenuItem, error)
	FindAll() ([]model.MenuItem, error)
	FindFeatured() ([]model.MenuItem, error)
	Update(item *model.MenuItem) error
	Delete(id uint) error
	BulkCreate(items []model.MenuItem, batchSize int) error
}

type menuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) MenuRepository {
	return &menuRepository{db: db}
}

func (r *menuRepository) Create(item *model.MenuItem) error {
	logger.Debug("Creating menu item in database", map[string]interface{}{
		"name": item.Name,
	})

	if err := r.db.Create(item).Error; err != nil {
		logger.Error("Failed to create menu item in database", err, map[string]interface{}{
			"name": item.Name,
		})
		return err
	}

	return nil
}

func (r *menuRepository) FindByID(id uint) (*model.MenuItem, error) {
	var item model.MenuItem
	if err := r.db.First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindAll lists every menu item, newest first, for the admin panel.
func (r *menuRepository) FindAll() ([]model.MenuItem, error) {
	var items []model.MenuItem
	if err := r.db.Order("id DESC").Find(&items).Error; err != nil {
		logger.Error("Failed to list menu items in database", err, nil)
		return nil, err
	}
	return items, nil
}

// FindFeatured lists the rows the storefront shows: featured flag set,
// in the order the database returns them.
func (r *menuRepository) FindFeatured() ([]model.MenuItem, error) {
	var items []model.MenuItem
	if err := r.db.Where("is_featured = ?", true).Find(&items).Error; err != nil {
		logger.Error("Failed to list featured menu items in database", err, nil)
		return nil, err
	}
	return items, nil
}

func (r *menuRepository) Update(item *model.MenuItem) error {
	if err := r.db.Save(item).Error; err != nil {
		logger.Error("Failed to update menu item in database", err, map[string]interface{}{
			"menu_item_id": item.ID,
		})
		return err
	}
	return nil
}

func (r *menuRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.MenuItem{}, id).Error; err != nil {
		logger.Error("Failed to delete menu item from database", err, map[string]interface{}{
			"menu_item_id": id,
		})
		return err
	}
	return nil
}

// BulkCreate inserts menu items in batches, used by the seed command.
func (r *menuRepository) BulkCreate(items []model.MenuItem, batchSize int) error {
	if len(items) == 0 {
		return nil
	}
	if err := r.db.CreateInBatches(items, batchSize).Error; err != nil {
		logger.Error("Failed to bulk create menu items in database", err, map[string]interface{}{
			"count": len(items),
		})
		return err
	}
	return nil
}
