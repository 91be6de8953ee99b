package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/storefront/storefront-backend/internal/app/service"
	apperrors "github.com/storefront/storefront-backend/internal/errors"
	"github.com/storefront/storefront-backend/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

type UpdateOrderStatusRequest struct {
	Status model.OrderStatus `json:"status" binding:"required"`
}

type UpdatePaymentStatusRequest struct {
	Status model.PaymentStatus `json:"status" binding:"required"`
}

// GetOrders returns user's orders
// GET /api/v1/orders
func (ctrl *OrderController) GetOrders(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	orders, err := ctrl.orderService.GetUserOrders(userID)
	if err != nil {
		respondServiceError(c, err, "list orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrderByID returns one order of the user, or any order for admins
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrderByID(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}
	orderID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	role, _ := middleware.GetUserRole(c)
	order, err := ctrl.orderService.GetOrderByID(userID, orderID, role == model.RoleAdmin)
	if err != nil {
		respondServiceError(c, err, "get order")
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// ListOrders returns all orders, optionally by status
// GET /api/v1/admin/orders?status=&limit=&offset=
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	orders, err := ctrl.orderService.ListOrders(c.Query("status"), intQuery(c, "limit", 50), intQuery(c, "offset", 0))
	if err != nil {
		respondServiceError(c, err, "list all orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// UpdateOrderStatus moves an order along its fulfilment
// PUT /api/v1/admin/orders/:id/status
func (ctrl *OrderController) UpdateOrderStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "status is required")
		return
	}

	if err := ctrl.orderService.UpdateOrderStatus(orderID, req.Status); err != nil {
		respondServiceError(c, err, "update order status")
		return
	}

	log.Info("Order status updated", map[string]interface{}{
		"order_id": orderID,
		"status":   req.Status,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Order status updated"})
}

// UpdatePaymentStatus records a payment status change
// PUT /api/v1/admin/orders/:id/payment
func (ctrl *OrderController) UpdatePaymentStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "status is required")
		return
	}

	if err := ctrl.orderService.UpdatePaymentStatus(orderID, req.Status); err != nil {
		respondServiceError(c, err, "update payment status")
		return
	}

	log.Info("Payment status updated", map[string]interface{}{
		"order_id": orderID,
		"status":   req.Status,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Payment status updated"})
}
