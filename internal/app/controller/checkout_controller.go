package controller

import (
	"errors"
	"net/http"

	"github.com/casarossa/casarossa-backend/internal/app/service"
	apperrors "github.com/casarossa/casarossa-backend/internal/errors"
	"github.com/casarossa/casarossa-backend/internal/middleware"
	"github.com/casarossa/casarossa-backend/internal/store"
	"github.com/gin-gonic/gin"
)

type CheckoutController struct {
	checkoutService service.CheckoutService
}

func NewCheckoutController(checkoutService service.CheckoutService) *CheckoutController {
	return &CheckoutController{
		checkoutService: checkoutService,
	}
}

type CheckoutRequest struct {
	Billing         service.BillingDetails `json:"billing"`
	PaymentMethodID string                 `json:"payment_method_id" binding:"required"`
}

// Checkout submits the session's cart for payment
// POST /api/v1/checkout
func (ctrl *CheckoutController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Sign in to complete checkout")
		return
	}
	email, _ := middleware.GetUserEmail(c)

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid checkout request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid checkout request")
		return
	}

	session := store.Session{UserID: userID, Email: email}
	result, err := ctrl.checkoutService.Submit(c.Request.Context(), session, req.Billing, req.PaymentMethodID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingBilling):
			apperrors.BadRequest(c, apperrors.CheckoutMissingBilling, err.Error())
		case errors.Is(err, service.ErrNotAuthenticated):
			apperrors.Unauthorized(c, err.Error())
		case errors.Is(err, service.ErrEmptyCart):
			apperrors.BadRequest(c, apperrors.CheckoutEmptyCart, err.Error())
		case errors.Is(err, service.ErrInvalidTotal):
			apperrors.BadRequest(c, apperrors.CheckoutInvalidTotal, err.Error())
		default:
			log.Error("Checkout failed", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "order")
		}
		return
	}

	if result.Status == service.CheckoutFailed {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":   apperrors.CheckoutPaymentFailed,
			"message": result.Message,
			"result":  result,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment successful",
		"result":  result,
	})
}
