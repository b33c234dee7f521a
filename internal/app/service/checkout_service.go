package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/casarossa/casarossa-backend/internal/app/model"
	"github.com/casarossa/casarossa-backend/internal/app/repository"
	"github.com/casarossa/casarossa-backend/internal/store"
	"github.com/casarossa/casarossa-backend/pkg/logger"
	"github.com/casarossa/casarossa-backend/pkg/payment/stripe"
	"github.com/casarossa/casarossa-backend/pkg/util"
	"github.com/google/uuid"
)

var (
	ErrMissingBilling   = errors.New("billing name, email and address are required")
	ErrNotAuthenticated = errors.New("sign in to complete checkout")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrInvalidTotal     = errors.New("order total must be positive")
)

// CheckoutStatus tracks the submit state machine. A submission starts
// collecting, moves to submitting once validation passes, and ends
// succeeded or failed. Failed is recoverable: the cart is untouched and
// the user may resubmit.
type CheckoutStatus string

const (
	CheckoutCollecting CheckoutStatus = "collecting"
	CheckoutSubmitting CheckoutStatus = "submitting"
	CheckoutSucceeded  CheckoutStatus = "succeeded"
	CheckoutFailed     CheckoutStatus = "failed"
)

// BillingDetails is the ephemeral billing form. It is never persisted
// on its own; a successful payment snapshots it onto the order row.
type BillingDetails struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Address    string `json:"address" binding:"required"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// CheckoutLine is one derived order line. Price and quantity are
// sanitized copies of the cart snapshot, not live cart state.
type CheckoutLine struct {
	MenuItemID uint    `json:"menu_item_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
}

// CheckoutResult is returned for every submission that got past
// validation, whether the payment went through or not.
type CheckoutResult struct {
	Status          CheckoutStatus `json:"status"`
	Message         string         `json:"message,omitempty"`
	OrderID         uint           `json:"order_id,omitempty"`
	PaymentIntentID string         `json:"payment_intent_id,omitempty"`
	Total           float64        `json:"total"`
}

type CheckoutService interface {
	Submit(ctx context.Context, session store.Session, billing BillingDetails, paymentMethodID string) (*CheckoutResult, error)
}

type checkoutService struct {
	stores    *store.Manager
	orderRepo repository.OrderRepository
	payments  *stripe.Client
	currency  string
}

func NewCheckoutService(
	stores *store.Manager,
	orderRepo repository.OrderRepository,
	payments *stripe.Client,
	currency string,
) CheckoutService {
	return &checkoutService{
		stores:    stores,
		orderRepo: orderRepo,
		payments:  payments,
		currency:  currency,
	}
}

// Submit runs one checkout attempt. Validation failures return a
// sentinel error before any network call; a processor decline returns a
// failed result with a nil error and leaves the cart untouched. Only a
// succeeded payment clears the cart.
func (s *checkoutService) Submit(ctx context.Context, session store.Session, billing BillingDetails, paymentMethodID string) (*CheckoutResult, error) {
	if strings.TrimSpace(billing.Name) == "" ||
		strings.TrimSpace(billing.Email) == "" ||
		strings.TrimSpace(billing.Address) == "" {
		return nil, ErrMissingBilling
	}

	if session.UserID == 0 {
		return nil, ErrNotAuthenticated
	}

	cart := s.stores.Acquire(session)
	lines, total := deriveLines(cart.Snapshot().Items)
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	if total <= 0 {
		return nil, ErrInvalidTotal
	}

	logger.Info("Submitting checkout", map[string]interface{}{
		"user_id": session.UserID,
		"lines":   len(lines),
		"total":   total,
	})

	billing.Country = util.NormalizeCountry(billing.Country)

	order := &model.Order{
		UserID:         session.UserID,
		TotalAmount:    total,
		PaymentStatus:  model.PaymentStatusPending,
		BillingName:    billing.Name,
		BillingEmail:   billing.Email,
		BillingAddress: billing.Address,
		BillingCity:    billing.City,
		BillingPostal:  billing.PostalCode,
		BillingCountry: billing.Country,
	}
	for _, line := range lines {
		order.OrderItems = append(order.OrderItems, model.OrderItem{
			MenuItemID: line.MenuItemID,
			Name:       line.Name,
			Price:      line.Price,
			Quantity:   line.Quantity,
		})
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}

	intent, err := s.payments.CreateIntent(ctx, stripe.CreateIntentRequest{
		Amount:         minorUnits(total),
		Currency:       s.currency,
		ReceiptEmail:   billing.Email,
		Description:    fmt.Sprintf("Casa Rossa order #%d", order.ID),
		IdempotencyKey: uuid.New().String(),
		Metadata:       intentMetadata(session.UserID, order.ID, billing, lines),
	})
	if err != nil {
		return s.failOrder(order, err), nil
	}

	order.PaymentIntentID = intent.ID
	if err := s.orderRepo.Update(order); err != nil {
		logger.Error("Failed to attach payment intent to order", err, map[string]interface{}{
			"order_id": order.ID,
		})
	}

	confirmed, err := s.payments.ConfirmIntent(ctx, stripe.ConfirmIntentRequest{
		IntentID:      intent.ID,
		PaymentMethod: paymentMethodID,
	})
	if err != nil {
		return s.failOrder(order, err), nil
	}
	if confirmed.Status != stripe.StatusSucceeded {
		return s.failOrder(order, fmt.Errorf("payment not completed, status %s", confirmed.Status)), nil
	}

	order.PaymentStatus = model.PaymentStatusCompleted
	if err := s.orderRepo.Update(order); err != nil {
		logger.Error("Failed to mark order completed", err, map[string]interface{}{
			"order_id": order.ID,
		})
	}

	if err := cart.ClearCart(); err != nil {
		logger.Error("Failed to clear cart after payment", err, map[string]interface{}{
			"user_id":  session.UserID,
			"order_id": order.ID,
		})
	}

	logger.Info("Checkout succeeded", map[string]interface{}{
		"user_id":  session.UserID,
		"order_id": order.ID,
		"total":    total,
	})

	return &CheckoutResult{
		Status:          CheckoutSucceeded,
		OrderID:         order.ID,
		PaymentIntentID: confirmed.ID,
		Total:           total,
	}, nil
}

// failOrder marks the pending order failed and builds the recoverable
// result. The cart is left as it was.
func (s *checkoutService) failOrder(order *model.Order, cause error) *CheckoutResult {
	logger.Warn("Checkout payment failed", map[string]interface{}{
		"order_id": order.ID,
		"error":    cause.Error(),
	})

	order.PaymentStatus = model.PaymentStatusFailed
	if err := s.orderRepo.Update(order); err != nil {
		logger.Error("Failed to mark order failed", err, map[string]interface{}{
			"order_id": order.ID,
		})
	}

	message := "Payment failed. Please check your card details and try again."
	if errors.Is(cause, stripe.ErrCardDeclined) {
		message = "Your card was declined."
	}

	return &CheckoutResult{
		Status:          CheckoutFailed,
		Message:         message,
		OrderID:         order.ID,
		PaymentIntentID: order.PaymentIntentID,
		Total:           order.TotalAmount,
	}
}

// deriveLines sanitizes the cart snapshot into order lines. A price
// that is not a finite number becomes 0; quantity is floored to 1.
func deriveLines(items []model.CartItem) ([]CheckoutLine, float64) {
	lines := make([]CheckoutLine, 0, len(items))
	var total float64
	for _, item := range items {
		price := item.MenuItem.Price
		if math.IsNaN(price) || math.IsInf(price, 0) {
			price = 0
		}
		quantity := item.Quantity
		if quantity < 1 {
			quantity = 1
		}
		lines = append(lines, CheckoutLine{
			MenuItemID: item.MenuItemID,
			Name:       item.MenuItem.Name,
			Price:      price,
			Quantity:   quantity,
		})
		total += price * float64(quantity)
	}
	return lines, total
}

func minorUnits(total float64) int64 {
	return int64(math.Round(total * 100))
}

func intentMetadata(userID, orderID uint, billing BillingDetails, lines []CheckoutLine) map[string]string {
	parts := make([]string, len(lines))
	for i, line := range lines {
		parts[i] = fmt.Sprintf("%dx#%d", line.Quantity, line.MenuItemID)
	}
	return map[string]string{
		"user_id":  strconv.FormatUint(uint64(userID), 10),
		"order_id": strconv.FormatUint(uint64(orderID), 10),
		"country":  billing.Country,
		"lines":    strings.Join(parts, ","),
	}
}
