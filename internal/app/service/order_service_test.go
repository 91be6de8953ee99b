package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createOrder(t *testing.T, env *testEnv, userID uint, status model.OrderStatus) *model.Order {
	t.Helper()
	order := &model.Order{
		UserID:        userID,
		Status:        status,
		PaymentStatus: model.PaymentStatusCompleted,
		Subtotal:      decimal.NewFromInt(100),
		DiscountTotal: decimal.Zero,
		Tax:           decimal.NewFromInt(20),
		Total:         decimal.NewFromInt(120),
		GiftCardTotal: decimal.Zero,
		FinalTotal:    decimal.NewFromInt(120),
		ContactName:   "Test User",
		ContactEmail:  "test@example.com",
		AddressLine:   "1 Market Street",
		City:          "London",
		PostalCode:    "EC1A 1BB",
		Country:       "UK",
	}
	require.NoError(t, env.orderRepo.Create(order))
	return order
}

func TestOrderService_GetUserOrders(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@example.com")
	other := env.createUser(t, "b@example.com")
	createOrder(t, env, user.ID, model.OrderStatusConfirmed)
	createOrder(t, env, user.ID, model.OrderStatusConfirmed)
	createOrder(t, env, other.ID, model.OrderStatusConfirmed)

	orders, err := env.orders.GetUserOrders(user.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestOrderService_GetOrderByID(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@example.com")
	other := env.createUser(t, "b@example.com")
	order := createOrder(t, env, user.ID, model.OrderStatusConfirmed)

	got, err := env.orders.GetOrderByID(user.ID, order.ID, false)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = env.orders.GetOrderByID(other.ID, order.ID, false)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	got, err = env.orders.GetOrderByID(other.ID, order.ID, true)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)

	_, err = env.orders.GetOrderByID(user.ID, 999, false)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_ListOrders(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@example.com")
	createOrder(t, env, user.ID, model.OrderStatusConfirmed)
	createOrder(t, env, user.ID, model.OrderStatusShipping)

	shipping, err := env.orders.ListOrders("shipping", 0, 0)
	require.NoError(t, err)
	assert.Len(t, shipping, 1)

	all, err := env.orders.ListOrders("", 1, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = env.orders.ListOrders("lost", 0, 0)
	assert.ErrorIs(t, err, ErrInvalidOrderStatus)
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@example.com")
	order := createOrder(t, env, user.ID, model.OrderStatusConfirmed)

	require.NoError(t, env.orders.UpdateOrderStatus(order.ID, model.OrderStatusShipping))
	require.NoError(t, env.orders.UpdateOrderStatus(order.ID, model.OrderStatusDelivered))

	err := env.orders.UpdateOrderStatus(order.ID, model.OrderStatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidOrderStatus, "delivered orders are final")

	assert.ErrorIs(t, env.orders.UpdateOrderStatus(order.ID, "lost"), ErrInvalidOrderStatus)
	assert.ErrorIs(t, env.orders.UpdateOrderStatus(999, model.OrderStatusShipping), ErrOrderNotFound)

	got, err := env.orders.GetOrderByID(user.ID, order.ID, false)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDelivered, got.Status)
}

func TestOrderService_UpdatePaymentStatus(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@example.com")
	order := createOrder(t, env, user.ID, model.OrderStatusConfirmed)

	require.NoError(t, env.orders.UpdatePaymentStatus(order.ID, model.PaymentStatusRefunded))
	assert.ErrorIs(t, env.orders.UpdatePaymentStatus(order.ID, "lost"), ErrInvalidPaymentStatus)
	assert.ErrorIs(t, env.orders.UpdatePaymentStatus(999, model.PaymentStatusFailed), ErrOrderNotFound)

	got, err := env.orders.GetOrderByID(user.ID, order.ID, false)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusRefunded, got.PaymentStatus)
}
