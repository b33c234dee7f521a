package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/casarossa/casarossa-backend/internal/app/model"
	"github.com/casarossa/casarossa-backend/internal/app/service"
	apperrors "github.com/casarossa/casarossa-backend/internal/errors"
	"github.com/casarossa/casarossa-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
)

type MenuController struct {
	menuService service.MenuService
}

func NewMenuController(menuService service.MenuService) *MenuController {
	return &MenuController{
		menuService: menuService,
	}
}

type MenuItemRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Price       float64  `json:"price" binding:"min=0"`
	ImageURL    string   `json:"image_url"`
	IsFeatured  bool     `json:"is_featured"`
	Available   *bool    `json:"available"`
	Position    int      `json:"position"`
	Category    string   `json:"category" binding:"required"`
	Allergens   []string `json:"allergens"`
}

func (req *MenuItemRequest) toModel() *model.MenuItem {
	available := true
	if req.Available != nil {
		available = *req.Available
	}
	return &model.MenuItem{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		IsFeatured:  req.IsFeatured,
		Available:   available,
		Position:    req.Position,
		Category:    model.MenuCategory(req.Category),
		Allergens:   pq.StringArray(req.Allergens),
	}
}

// GetFeatured returns the storefront's featured menu items
// GET /api/v1/menu/featured
func (ctrl *MenuController) GetFeatured(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	items, err := ctrl.menuService.GetFeatured()
	if err != nil {
		log.Error("Failed to fetch featured menu", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "menu item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// GetMenuItem returns one menu item
// GET /api/v1/menu/:id
func (ctrl *MenuController) GetMenuItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid menu item ID")
		return
	}

	item, err := ctrl.menuService.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrMenuItemNotFound) {
			apperrors.NotFound(c, apperrors.MenuItemNotFound, "Menu item not found")
			return
		}
		log.Error("Failed to fetch menu item", err, map[string]interface{}{
			"menu_item_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "menu item")
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

// ListMenuItems returns the full catalog for the admin dashboard,
// newest first
// GET /api/v1/admin/menu
func (ctrl *MenuController) ListMenuItems(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	items, err := ctrl.menuService.List()
	if err != nil {
		log.Error("Failed to list menu items", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "menu item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// CreateMenuItem adds a catalog entry
// POST /api/v1/admin/menu
func (ctrl *MenuController) CreateMenuItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid menu item request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid menu item details")
		return
	}

	item := req.toModel()
	if err := ctrl.menuService.Create(item); err != nil {
		if errors.Is(err, service.ErrInvalidMenuItem) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
			return
		}
		log.Error("Failed to create menu item", err, map[string]interface{}{
			"name": req.Name,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "menu item")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Menu item created",
		"item":    item,
	})
}

// UpdateMenuItem replaces a catalog entry
// PUT /api/v1/admin/menu/:id
func (ctrl *MenuController) UpdateMenuItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid menu item ID")
		return
	}

	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid menu item details")
		return
	}

	item := req.toModel()
	item.ID = uint(id)
	if err := ctrl.menuService.Update(item); err != nil {
		switch {
		case errors.Is(err, service.ErrMenuItemNotFound):
			apperrors.NotFound(c, apperrors.MenuItemNotFound, "Menu item not found")
		case errors.Is(err, service.ErrInvalidMenuItem):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		default:
			log.Error("Failed to update menu item", err, map[string]interface{}{
				"menu_item_id": id,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "menu item")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Menu item updated",
		"item":    item,
	})
}

// DeleteMenuItem removes a catalog entry
// DELETE /api/v1/admin/menu/:id
func (ctrl *MenuController) DeleteMenuItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid menu item ID")
		return
	}

	if err := ctrl.menuService.Delete(uint(id)); err != nil {
		if errors.Is(err, service.ErrMenuItemNotFound) {
			apperrors.NotFound(c, apperrors.MenuItemNotFound, "Menu item not found")
			return
		}
		log.Error("Failed to delete menu item", err, map[string]interface{}{
			"menu_item_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "menu item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Menu item deleted",
	})
}

// ExportMenu streams the catalog as an XLSX download
// GET /api/v1/admin/menu/export
func (ctrl *MenuController) ExportMenu(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	data, err := ctrl.menuService.ExportXLSX()
	if err != nil {
		log.Error("Failed to export menu", err, nil)
		apperrors.InternalError(c, "Failed to generate menu export")
		return
	}

	filename := fmt.Sprintf("menu-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
