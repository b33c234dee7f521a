package controller

import (
	"net/http"
	"strconv"

	apperrors "github.com/casarossa/casarossa-backend/internal/errors"
	"github.com/casarossa/casarossa-backend/internal/middleware"
	"github.com/casarossa/casarossa-backend/internal/store"
	"github.com/gin-gonic/gin"
)

// CartController exposes the session's cart store over HTTP. Mutations
// are treated as non-fatal: a gateway failure is reported in the
// response body but the endpoint still returns the current snapshot, so
// the storefront keeps rendering whatever state it had.
type CartController struct {
	stores *store.Manager
}

func NewCartController(stores *store.Manager) *CartController {
	return &CartController{
		stores: stores,
	}
}

type AddToCartRequest struct {
	MenuItemID uint `json:"menu_item_id" binding:"required"`
	Quantity   int  `json:"quantity"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type SidebarRequest struct {
	Open bool `json:"open"`
}

func (ctrl *CartController) session(c *gin.Context) (*store.CartStore, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Sign in required")
		return nil, false
	}
	email, _ := middleware.GetUserEmail(c)
	return ctrl.stores.Acquire(store.Session{UserID: userID, Email: email}), true
}

func snapshotPayload(snap store.Snapshot) gin.H {
	return gin.H{
		"items":        snap.Items,
		"count":        len(snap.Items),
		"is_admin":     snap.IsAdmin,
		"sidebar_open": snap.SidebarOpen,
	}
}

// GetCart returns the session's cart snapshot
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	cart, ok := ctrl.session(c)
	if !ok {
		return
	}

	// Refresh failures fall back to the last known snapshot.
	_ = cart.RefreshCart()

	c.JSON(http.StatusOK, snapshotPayload(cart.Snapshot()))
}

// AddToCart merges or inserts a line and opens the sidebar
// POST /api/v1/cart/items
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	cart, ok := ctrl.session(c)
	if !ok {
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid cart request")
		return
	}

	response := snapshotAfter(cart, cart.AddToCart(req.MenuItemID, req.Quantity))
	c.JSON(http.StatusOK, response)
}

// UpdateCartItem sets a line's quantity; zero or less removes the line
// PUT /api/v1/cart/items/:id
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	cart, ok := ctrl.session(c)
	if !ok {
		return
	}

	lineID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid cart item ID")
		return
	}

	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid cart request")
		return
	}

	response := snapshotAfter(cart, cart.UpdateQuantity(uint(lineID), req.Quantity))
	c.JSON(http.StatusOK, response)
}

// RemoveFromCart deletes one line
// DELETE /api/v1/cart/items/:id
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	cart, ok := ctrl.session(c)
	if !ok {
		return
	}

	lineID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid cart item ID")
		return
	}

	response := snapshotAfter(cart, cart.RemoveFromCart(uint(lineID)))
	c.JSON(http.StatusOK, response)
}

// ClearCart removes every line for the session
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	cart, ok := ctrl.session(c)
	if !ok {
		return
	}

	response := snapshotAfter(cart, cart.ClearCart())
	c.JSON(http.StatusOK, response)
}

// SetSidebar toggles the cart sidebar flag
// PUT /api/v1/cart/sidebar
func (ctrl *CartController) SetSidebar(c *gin.Context) {
	cart, ok := ctrl.session(c)
	if !ok {
		return
	}

	var req SidebarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid sidebar request")
		return
	}

	if req.Open {
		cart.OpenSidebar()
	} else {
		cart.CloseSidebar()
	}

	c.JSON(http.StatusOK, snapshotPayload(cart.Snapshot()))
}

// snapshotAfter builds the mutation response. The error, if any, rides
// along as a warning instead of failing the request.
func snapshotAfter(cart *store.CartStore, err error) gin.H {
	response := snapshotPayload(cart.Snapshot())
	if err != nil {
		response["warning"] = "Cart update failed, showing last known state"
	}
	return response
}
