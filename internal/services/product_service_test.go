package services_test

import (
	"fmt"
	"testing"

	"farmtoclick/internal/models"
	"farmtoclick/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll() ([]models.Product, error) {
	args := m.Called()
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) ListByFarmer(farmerID string) ([]models.Product, error) {
	args := m.Called(farmerID)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockProductRepository) AddStock(id string, qty int) error {
	args := m.Called(id, qty)
	return args.Error(0)
}

func TestProductService_GetAllProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	expectedProducts := []models.Product{
		{ID: "1", Name: "Pechay", Price: 10.0, Stock: 100},
		{ID: "2", Name: "Calamansi", Price: 20.0, Stock: 50},
	}
	mockRepo.On("GetAll").Return(expectedProducts, nil).Once()

	products, err := service.GetAllProducts()

	assert.NoError(t, err)
	assert.Equal(t, expectedProducts, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductByID(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	expectedProduct := &models.Product{ID: "1", Name: "Pechay", Price: 10.0, Stock: 100}

	mockRepo.On("GetByID", "1").Return(expectedProduct, nil).Once()
	product, err := service.GetProductByID("1")
	assert.NoError(t, err)
	assert.Equal(t, expectedProduct, product)

	mockRepo.On("GetByID", "99").Return(nil, notFound("product with ID 99")).Once()
	product, err = service.GetProductByID("99")
	assert.Error(t, err)
	assert.Nil(t, product)
	mockRepo.AssertExpectations(t)
}

func TestProductService_ProductsForFarmer(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	mine := []models.Product{{ID: "1", FarmerID: "farmer-1", Name: "Pechay"}}
	mockRepo.On("ListByFarmer", "farmer-1").Return(mine, nil).Once()

	products, err := service.ProductsForFarmer("farmer-1")
	assert.NoError(t, err)
	assert.Equal(t, mine, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	newProduct := &models.Product{ID: "client-chosen", FarmerID: "someone-else", Name: "Ube", Price: 50.0, Stock: 20}

	mockRepo.On("Create", mock.MatchedBy(func(p *models.Product) bool {
		return p.ID == "" && p.FarmerID == "farmer-1"
	})).Return(nil).Once()
	assert.NoError(t, service.CreateProduct("farmer-1", newProduct))

	mockRepo.On("Create", newProduct).Return(fmt.Errorf("database error")).Once()
	err := service.CreateProduct("farmer-1", newProduct)
	assert.ErrorContains(t, err, "database error")
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateProduct_OwnerOnly(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	mockRepo.On("GetByID", "1").Return(&models.Product{ID: "1", FarmerID: "farmer-1"}, nil)

	err := service.UpdateProduct("farmer-2", &models.Product{ID: "1", Name: "Taken over"})
	assert.ErrorIs(t, err, services.ErrForbidden)

	updated := &models.Product{ID: "1", Name: "Pechay Baguio", Price: 12.0, Stock: 95}
	mockRepo.On("Update", updated).Return(nil).Once()
	assert.NoError(t, service.UpdateProduct("farmer-1", updated))
	assert.Equal(t, "farmer-1", updated.FarmerID)
	mockRepo.AssertExpectations(t)
}

func TestProductService_DeleteProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	mockRepo.On("GetByID", "1").Return(&models.Product{ID: "1", FarmerID: "farmer-1"}, nil)
	mockRepo.On("Delete", "1").Return(nil).Once()

	assert.ErrorIs(t, service.DeleteProduct("farmer-2", "1"), services.ErrForbidden)
	assert.NoError(t, service.DeleteProduct("farmer-1", "1"))
	mockRepo.AssertExpectations(t)
}
