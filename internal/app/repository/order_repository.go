package repository

import (
	"time"

	"github.com/casarossa/casarossa-backend/internal/app/model"
	"github.com/casarossa/casarossa-backend/pkg/logger"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(order *model.Order) error
	FindByID(id uint) (*model.Order, error)
	FindByUserID(userID uint) ([]model.Order, error)
	FindAll() ([]model.Order, error)
	Update(order *model.Order) error
	DeleteStalePending(olderThan time.Time) (int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"user_id": order.UserID,
		"total":   order.TotalAmount,
	})

	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"user_id": order.UserID,
		})
		return err
	}
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	var order model.Order
	if err := r.db.Preload("OrderItems").First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByUserID(userID uint) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Where("user_id = ?", userID).
		Preload("OrderItems").
		Order("id DESC").
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to find orders by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) FindAll() ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Preload("OrderItems").Order("id DESC").Find(&orders).Error
	if err != nil {
		logger.Error("Failed to list orders in database", err, nil)
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) Update(order *model.Order) error {
	if err := r.db.Save(order).Error; err != nil {
		logger.Error("Failed to update order in database", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return err
	}
	return nil
}

// DeleteStalePending removes checkout attempts that never completed.
// The scheduler calls this; payment state lives with the processor, so
// an abandoned pending row has nothing to reconcile against.
func (r *orderRepository) DeleteStalePending(olderThan time.Time) (int64, error) {
	result := r.db.Where("payment_status = ? AND created_at < ?", model.PaymentStatusPending, olderThan).
		Delete(&model.Order{})
	if result.Error != nil {
		logger.Error("Failed to delete stale pending orders from database", result.Error, nil)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
