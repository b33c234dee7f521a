package service

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/casarossa/casarossa-backend/internal/app/model"
	"github.com/casarossa/casarossa-backend/internal/app/repository"
	"github.com/casarossa/casarossa-backend/internal/feed"
	"github.com/casarossa/casarossa-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var (
	ErrMenuItemNotFound = errors.New("menu item not found")
	ErrInvalidMenuItem  = errors.New("invalid menu item")
)

// menuTable is the feed table name for catalog changes. The storefront
// hub refetches the featured list on every event from this table.
const menuTable = "menu_items"

type MenuService interface {
	GetFeatured() ([]model.MenuItem, error)
	GetByID(id uint) (*model.MenuItem, error)
	List() ([]model.MenuItem, error)
	Create(item *model.MenuItem) error
	Update(item *model.MenuItem) error
	Delete(id uint) error
	ExportXLSX() ([]byte, error)
}

type menuService struct {
	menuRepo repository.MenuRepository
	bus      *feed.Bus
}

func NewMenuService(menuRepo repository.MenuRepository, bus *feed.Bus) MenuService {
	return &menuService{
		menuRepo: menuRepo,
		bus:      bus,
	}
}

func (s *menuService) GetFeatured() ([]model.MenuItem, error) {
	items, err := s.menuRepo.FindFeatured()
	if err != nil {
		logger.Error("Failed to fetch featured menu items", err, nil)
		return nil, err
	}
	return items, nil
}

func (s *menuService) GetByID(id uint) (*model.MenuItem, error) {
	item, err := s.menuRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Menu item not found", map[string]interface{}{
				"menu_item_id": id,
			})
			return nil, ErrMenuItemNotFound
		}
		logger.Error("Failed to fetch menu item", err, map[string]interface{}{
			"menu_item_id": id,
		})
		return nil, err
	}
	return item, nil
}

func (s *menuService) List() ([]model.MenuItem, error) {
	items, err := s.menuRepo.FindAll()
	if err != nil {
		logger.Error("Failed to list menu items", err, nil)
		return nil, err
	}
	return items, nil
}

func (s *menuService) Create(item *model.MenuItem) error {
	if err := validateMenuItem(item); err != nil {
		return err
	}

	logger.Info("Creating menu item", map[string]interface{}{
		"name":     item.Name,
		"category": item.Category,
	})

	if err := s.menuRepo.Create(item); err != nil {
		logger.Error("Failed to create menu item", err, map[string]interface{}{
			"name": item.Name,
		})
		return err
	}

	s.bus.Publish(feed.Event{Table: menuTable, Kind: feed.ChangeInsert, RowID: item.ID})
	return nil
}

func (s *menuService) Update(item *model.MenuItem) error {
	if err := validateMenuItem(item); err != nil {
		return err
	}

	existing, err := s.menuRepo.FindByID(item.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMenuItemNotFound
		}
		logger.Error("Failed to fetch menu item for update", err, map[string]interface{}{
			"menu_item_id": item.ID,
		})
		return err
	}

	item.CreatedAt = existing.CreatedAt
	if err := s.menuRepo.Update(item); err != nil {
		logger.Error("Failed to update menu item", err, map[string]interface{}{
			"menu_item_id": item.ID,
		})
		return err
	}

	s.bus.Publish(feed.Event{Table: menuTable, Kind: feed.ChangeUpdate, RowID: item.ID})
	return nil
}

func (s *menuService) Delete(id uint) error {
	if _, err := s.menuRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMenuItemNotFound
		}
		logger.Error("Failed to fetch menu item for delete", err, map[string]interface{}{
			"menu_item_id": id,
		})
		return err
	}

	if err := s.menuRepo.Delete(id); err != nil {
		logger.Error("Failed to delete menu item", err, map[string]interface{}{
			"menu_item_id": id,
		})
		return err
	}

	s.bus.Publish(feed.Event{Table: menuTable, Kind: feed.ChangeDelete, RowID: id})
	return nil
}

// ExportXLSX renders the full catalog as a spreadsheet for the admin
// dashboard download.
func (s *menuService) ExportXLSX() ([]byte, error) {
	items, err := s.menuRepo.FindAll()
	if err != nil {
		logger.Error("Failed to list menu items for export", err, nil)
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Menu"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Name", "Description", "Category", "Price", "Featured", "Available", "Position", "Allergens"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, item := range items {
		values := []interface{}{
			item.ID,
			item.Name,
			item.Description,
			string(item.Category),
			item.Price,
			item.IsFeatured,
			item.Available,
			item.Position,
			strings.Join(item.Allergens, ", "),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		logger.Error("Failed to write menu export", err, nil)
		return nil, err
	}

	logger.Info("Menu export generated", map[string]interface{}{
		"count": len(items),
	})
	return buf.Bytes(), nil
}

func validateMenuItem(item *model.MenuItem) error {
	if item.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidMenuItem)
	}
	if item.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidMenuItem)
	}
	switch item.Category {
	case model.CategoryStarter, model.CategoryMain, model.CategoryDessert, model.CategoryDrink:
	default:
		return fmt.Errorf("%w: unknown category %q", ErrInvalidMenuItem, item.Category)
	}
	return nil
}
