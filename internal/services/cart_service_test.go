package services_test

import (
	"testing"

	"farmtoclick/internal/models"
	"farmtoclick/internal/repositories"
	"farmtoclick/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCartFixture(t *testing.T) (*services.CartService, *repositories.MockProductRepository, *models.Product) {
	t.Helper()
	products := repositories.NewMockProductRepository()
	tomato := &models.Product{FarmerID: "farmer-1", Name: "Tomatoes", Price: 45, Stock: 10}
	require.NoError(t, products.Create(tomato))
	return services.NewCartService(repositories.NewMockCartRepository(), products), products, tomato
}

func TestCartService_AddItem(t *testing.T) {
	service, _, tomato := newCartFixture(t)

	require.NoError(t, service.AddItem("buyer-1", tomato.ID, 2))
	require.NoError(t, service.AddItem("buyer-1", tomato.ID, 1))

	cart, err := service.Cart("buyer-1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 135.0, cart.Items[0].Subtotal)
	assert.Equal(t, 135.0, cart.Total)

	empty, err := service.Cart("buyer-2")
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.Zero(t, empty.Total)
}

func TestCartService_AddItem_Rejects(t *testing.T) {
	service, _, tomato := newCartFixture(t)

	assert.ErrorIs(t, service.AddItem("buyer-1", tomato.ID, 0), services.ErrInvalidCartItem)
	assert.ErrorIs(t, service.AddItem("buyer-1", " ", 1), services.ErrInvalidCartItem)
	assert.ErrorIs(t, service.AddItem("buyer-1", "missing", 1), repositories.ErrNotFound)
}

func TestCartService_UpdateItem(t *testing.T) {
	service, _, tomato := newCartFixture(t)
	require.NoError(t, service.AddItem("buyer-1", tomato.ID, 2))

	removed, err := service.UpdateItem("buyer-1", tomato.ID, 5)
	require.NoError(t, err)
	assert.False(t, removed)
	cart, _ := service.Cart("buyer-1")
	assert.Equal(t, 5, cart.Items[0].Quantity)

	_, err = service.UpdateItem("buyer-1", "missing", 1)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	removed, err = service.UpdateItem("buyer-1", tomato.ID, 0)
	require.NoError(t, err)
	assert.True(t, removed)
	cart, _ = service.Cart("buyer-1")
	assert.Empty(t, cart.Items)
}

func TestCartService_SkipsDelistedProducts(t *testing.T) {
	service, products, tomato := newCartFixture(t)
	eggs := &models.Product{FarmerID: "farmer-1", Name: "Eggs", Price: 8, Stock: 30}
	require.NoError(t, products.Create(eggs))
	require.NoError(t, service.AddItem("buyer-1", tomato.ID, 1))
	require.NoError(t, service.AddItem("buyer-1", eggs.ID, 6))

	require.NoError(t, products.Delete(tomato.ID))

	cart, err := service.Cart("buyer-1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "Eggs", cart.Items[0].Product.Name)
	assert.Equal(t, 48.0, cart.Total)
}

func TestCartService_RemoveAndClear(t *testing.T) {
	service, products, tomato := newCartFixture(t)
	eggs := &models.Product{FarmerID: "farmer-1", Name: "Eggs", Price: 8, Stock: 30}
	require.NoError(t, products.Create(eggs))
	require.NoError(t, service.AddItem("buyer-1", tomato.ID, 1))
	require.NoError(t, service.AddItem("buyer-1", eggs.ID, 1))

	require.NoError(t, service.RemoveItem("buyer-1", tomato.ID))
	require.NoError(t, service.RemoveItem("buyer-1", tomato.ID), "removing twice is fine")
	cart, _ := service.Cart("buyer-1")
	require.Len(t, cart.Items, 1)

	require.NoError(t, service.Clear("buyer-1"))
	cart, _ = service.Cart("buyer-1")
	assert.Empty(t, cart.Items)
}
