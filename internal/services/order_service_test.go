package services_test

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"farmtoclick/internal/models"
	"farmtoclick/internal/repositories"
	"farmtoclick/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPublisher records published events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(exchange, routingKey string, body []byte) error {
	args := m.Called(exchange, routingKey, body)
	return args.Error(0)
}

type orderFixture struct {
	service  *services.OrderService
	orders   *repositories.MockOrderRepository
	products *repositories.MockProductRepository
	users    *MockUserRepository
	events   *MockPublisher
	tomato   *models.Product
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	f := &orderFixture{
		products: repositories.NewMockProductRepository(),
		users:    new(MockUserRepository),
		events:   new(MockPublisher),
	}
	f.orders = repositories.NewMockOrderRepository(f.products)
	f.events.On("Publish", "", mock.Anything, mock.Anything).Return(nil)
	f.service = services.NewOrderService(f.orders, f.products, f.users, f.events)

	f.tomato = &models.Product{FarmerID: "farmer-1", Name: "Tomatoes", Price: 45, Stock: 10}
	require.NoError(t, f.products.Create(f.tomato))
	return f
}

func (f *orderFixture) place(t *testing.T, qty int) *models.Order {
	t.Helper()
	order, err := f.service.CreateOrder("buyer-1", services.CreateOrderInput{
		Items:           []services.OrderItemInput{{ProductID: f.tomato.ID, Quantity: qty}},
		ShippingName:    "Ana",
		ShippingPhone:   "0917",
		ShippingAddress: "Km 5",
	})
	require.NoError(t, err)
	return order
}

func (f *orderFixture) stock(t *testing.T) int {
	t.Helper()
	p, err := f.products.GetByID(f.tomato.ID)
	require.NoError(t, err)
	return p.Stock
}

func TestOrderService_CreateOrder(t *testing.T) {
	f := newOrderFixture(t)

	order := f.place(t, 3)

	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, 135.0, order.TotalAmount)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "farmer-1", order.Items[0].FarmerID)
	assert.Equal(t, "Tomatoes", order.Items[0].Name)
	assert.Equal(t, 7, f.stock(t))
	require.Len(t, order.History, 1)

	var published services.OrderEvent
	for _, call := range f.events.Calls {
		if call.Arguments.String(1) == services.EventOrderCreated {
			require.NoError(t, json.Unmarshal(call.Arguments.Get(2).([]byte), &published))
		}
	}
	assert.Equal(t, order.ID, published.OrderID)
	assert.Equal(t, 135.0, published.Total)
}

func TestOrderService_CreateOrder_Rejections(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.service.CreateOrder("buyer-1", services.CreateOrderInput{
		Items: []services.OrderItemInput{{ProductID: f.tomato.ID, Quantity: 6}, {ProductID: f.tomato.ID, Quantity: 5}},
	})
	assert.ErrorIs(t, err, services.ErrInsufficientStock, "quantities of repeated lines add up")

	_, err = f.service.CreateOrder("buyer-1", services.CreateOrderInput{
		Items: []services.OrderItemInput{{ProductID: "ghost", Quantity: 1}},
	})
	assert.ErrorIs(t, err, services.ErrInvalidOrder)

	_, err = f.service.CreateOrder("buyer-1", services.CreateOrderInput{})
	assert.ErrorIs(t, err, services.ErrInvalidOrder)

	assert.Equal(t, 10, f.stock(t), "failed orders reserve nothing")
	f.events.AssertNotCalled(t, "Publish", "", services.EventOrderCreated, mock.Anything)
}

// downOrderRepository fails every insert.
type downOrderRepository struct {
	*repositories.MockOrderRepository
}

func (downOrderRepository) Create(*models.Order) error { return errors.New("db down") }

func TestOrderService_CreateOrder_FailedInsertKeepsStock(t *testing.T) {
	f := newOrderFixture(t)
	service := services.NewOrderService(downOrderRepository{f.orders}, f.products, f.users, f.events)

	_, err := service.CreateOrder("buyer-1", services.CreateOrderInput{
		Items: []services.OrderItemInput{{ProductID: f.tomato.ID, Quantity: 4}},
	})
	assert.ErrorContains(t, err, "db down")
	assert.Equal(t, 10, f.stock(t))
	f.events.AssertNotCalled(t, "Publish", "", services.EventOrderCreated, mock.Anything)
}

func TestOrderService_CreateOrder_ConcurrentBuyersNeverOversell(t *testing.T) {
	f := newOrderFixture(t)
	f.tomato.Stock = 5
	require.NoError(t, f.products.Update(f.tomato))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.CreateOrder("buyer-1", services.CreateOrderInput{
				Items: []services.OrderItemInput{{ProductID: f.tomato.ID, Quantity: 1}},
			})
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, services.ErrInsufficientStock)
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, accepted)
	assert.Equal(t, 0, f.stock(t))
}

func TestOrderService_SellerFlow(t *testing.T) {
	f := newOrderFixture(t)
	order := f.place(t, 2)

	_, err := f.service.UpdateBySeller("farmer-2", order.ID, "confirmed", "")
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = f.service.UpdateBySeller("farmer-1", order.ID, "ready", "")
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	_, err = f.service.UpdateBySeller("farmer-1", order.ID, "teleported", "")
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	for _, status := range []string{"confirm", "preparing", "ready"} {
		_, err := f.service.UpdateBySeller("farmer-1", order.ID, status, "")
		require.NoError(t, err, status)
	}

	f.users.On("GetByID", "buyer-1").Return(&models.User{ID: "buyer-1", Role: models.RoleUser}, nil).Once()
	_, err = f.service.AssignRider("farmer-1", order.ID, "buyer-1")
	assert.ErrorIs(t, err, services.ErrInvalidOrder)

	f.users.On("GetByID", "rider-1").Return(&models.User{ID: "rider-1", Role: models.RoleRider}, nil).Once()
	assigned, err := f.service.AssignRider("farmer-1", order.ID, "rider-1")
	require.NoError(t, err)
	assert.Equal(t, "ready_for_ship", assigned.Status)
	assert.Equal(t, "rider-1", assigned.AssignedRiderID)

	stored, err := f.orders.GetByID(order.ID)
	require.NoError(t, err)
	var history []string
	for _, h := range stored.History {
		history = append(history, h.Status)
	}
	assert.Equal(t, []string{"pending", "confirmed", "preparing", "ready", "ready_for_ship"}, history)
	f.users.AssertExpectations(t)
}

func TestOrderService_RejectNeedsReasonAndRestocks(t *testing.T) {
	f := newOrderFixture(t)
	order := f.place(t, 4)
	assert.Equal(t, 6, f.stock(t))

	_, err := f.service.UpdateBySeller("farmer-1", order.ID, "reject", "   ")
	assert.ErrorIs(t, err, services.ErrReasonRequired)

	rejected, err := f.service.UpdateBySeller("farmer-1", order.ID, "rejected", "Typhoon damage")
	require.NoError(t, err)
	assert.Equal(t, "rejected", rejected.Status)
	assert.Equal(t, "Typhoon damage", rejected.RejectionReason)
	assert.Equal(t, 10, f.stock(t))

	_, err = f.service.UpdateBySeller("farmer-1", order.ID, "confirm", "")
	assert.ErrorIs(t, err, services.ErrInvalidTransition, "rejected is terminal")
}

func TestOrderService_ApprovedIsConfirmed(t *testing.T) {
	f := newOrderFixture(t)
	order := f.place(t, 1)

	updated, err := f.service.UpdateBySeller("farmer-1", order.ID, "approved", "")
	require.NoError(t, err)
	assert.Equal(t, "confirmed", updated.Status)
}

func TestOrderService_RiderFlow(t *testing.T) {
	f := newOrderFixture(t)
	order := f.place(t, 1)
	for _, status := range []string{"confirmed", "preparing", "ready"} {
		_, err := f.service.UpdateBySeller("farmer-1", order.ID, status, "")
		require.NoError(t, err)
	}
	f.users.On("GetByID", "rider-1").Return(&models.User{ID: "rider-1", Role: models.RoleRider}, nil)
	_, err := f.service.AssignRider("farmer-1", order.ID, "rider-1")
	require.NoError(t, err)

	_, err = f.service.UpdateByRider("rider-2", order.ID, "picked_up", "")
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = f.service.UpdateByRider("rider-1", order.ID, "delivered", "/uploads/x.jpg")
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	_, err = f.service.UpdateByRider("rider-1", order.ID, "picked_up", "")
	require.NoError(t, err)
	_, err = f.service.UpdateByRider("rider-1", order.ID, "on the way", "")
	require.NoError(t, err)

	_, err = f.service.UpdateByRider("rider-1", order.ID, "delivered", "")
	assert.ErrorIs(t, err, services.ErrProofRequired)

	delivered, err := f.service.UpdateByRider("rider-1", order.ID, "delivered", "/uploads/delivery_1.jpg")
	require.NoError(t, err)
	assert.Equal(t, "delivered", delivered.Status)
	assert.Equal(t, "/uploads/delivery_1.jpg", delivered.ProofOfDelivery)

	riderOrders, err := f.service.OrdersForRider("rider-1")
	require.NoError(t, err)
	assert.Len(t, riderOrders, 1)

	f.events.AssertNumberOfCalls(t, "Publish", 8)
}

func TestOrderService_CancelOrder(t *testing.T) {
	f := newOrderFixture(t)
	order := f.place(t, 2)

	_, err := f.service.CancelOrder("buyer-2", order.ID)
	assert.ErrorIs(t, err, services.ErrForbidden)

	cancelled, err := f.service.CancelOrder("buyer-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.Equal(t, 10, f.stock(t))

	_, err = f.service.CancelOrder("buyer-1", order.ID)
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	_, err = f.service.CancelOrder("buyer-1", "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestOrderService_GetOrderVisibility(t *testing.T) {
	f := newOrderFixture(t)
	order := f.place(t, 1)

	for _, tc := range []struct {
		user, role string
		allowed    bool
	}{
		{"buyer-1", models.RoleUser, true},
		{"farmer-1", models.RoleFarmer, true},
		{"farmer-2", models.RoleFarmer, false},
		{"admin-1", models.RoleAdmin, true},
		{"buyer-2", models.RoleUser, false},
	} {
		_, err := f.service.GetOrder(tc.user, tc.role, order.ID)
		assert.Equal(t, tc.allowed, err == nil, tc.user)
		if !tc.allowed {
			assert.True(t, errors.Is(err, services.ErrForbidden))
		}
	}
}

func TestOrderService_NilPublisher(t *testing.T) {
	products := repositories.NewMockProductRepository()
	p := &models.Product{FarmerID: "f", Name: "Eggs", Price: 8, Stock: 30}
	require.NoError(t, products.Create(p))
	service := services.NewOrderService(repositories.NewMockOrderRepository(products), products, new(MockUserRepository), nil)

	_, err := service.CreateOrder("b", services.CreateOrderInput{
		Items: []services.OrderItemInput{{ProductID: p.ID, Quantity: 12}},
	})
	assert.NoError(t, err)
}
