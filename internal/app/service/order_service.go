package service

import (
	"errors"
	"fmt"

	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/internal/app/repository"
	"github.com/storefront/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrInvalidOrderStatus   = errors.New("invalid order status")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
)

// terminal statuses accept no further change.
var terminalStatuses = map[model.OrderStatus]bool{
	model.OrderStatusDelivered: true,
	model.OrderStatusCancelled: true,
}

type OrderService interface {
	GetUserOrders(userID uint) ([]model.Order, error)
	// GetOrderByID returns the order if it belongs to userID, or to anyone
	// when isAdmin is set. Other users' orders read as not found.
	GetOrderByID(userID, orderID uint, isAdmin bool) (*model.Order, error)
	ListOrders(status string, limit, offset int) ([]model.Order, error)
	UpdateOrderStatus(orderID uint, status model.OrderStatus) error
	UpdatePaymentStatus(orderID uint, status model.PaymentStatus) error
}

type orderService struct {
	orderRepo repository.OrderRepository
}

func NewOrderService(orderRepo repository.OrderRepository) OrderService {
	return &orderService{orderRepo: orderRepo}
}

func (s *orderService) GetUserOrders(userID uint) ([]model.Order, error) {
	logger.Debug("Fetching user orders", map[string]interface{}{
		"user_id": userID,
	})

	orders, err := s.orderRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user orders", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

func (s *orderService) GetOrderByID(userID, orderID uint, isAdmin bool) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if !isAdmin && order.UserID != userID {
		logger.Warn("Order access denied", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
			"owner_id": order.UserID,
		})
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) ListOrders(status string, limit, offset int) ([]model.Order, error) {
	if status != "" && !model.OrderStatus(status).Valid() {
		return nil, ErrInvalidOrderStatus
	}
	return s.orderRepo.FindAll(status, limit, offset)
}

func (s *orderService) UpdateOrderStatus(orderID uint, status model.OrderStatus) error {
	logger.Info("Updating order status", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})

	if !status.Valid() {
		return ErrInvalidOrderStatus
	}

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	if terminalStatuses[order.Status] && order.Status != status {
		return fmt.Errorf("%w: order is already %s", ErrInvalidOrderStatus, order.Status)
	}

	if err := s.orderRepo.UpdateStatus(orderID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	return nil
}

func (s *orderService) UpdatePaymentStatus(orderID uint, status model.PaymentStatus) error {
	logger.Info("Updating payment status", map[string]interface{}{
		"order_id":       orderID,
		"payment_status": status,
	})

	switch status {
	case model.PaymentStatusPending, model.PaymentStatusCompleted, model.PaymentStatusFailed, model.PaymentStatusRefunded:
	default:
		return ErrInvalidPaymentStatus
	}

	if err := s.orderRepo.UpdatePaymentStatus(orderID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	return nil
}
