package services

import (
	"errors"

	"farmtoclick/internal/models"
	"farmtoclick/internal/repositories"
)

// ErrForbidden is returned when the caller does not own the resource.
var ErrForbidden = errors.New("not authorized")

// ProductService handles business logic related to products.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// GetAllProducts retrieves the catalog.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// ProductsForFarmer lists the farmer's own products.
func (s *ProductService) ProductsForFarmer(farmerID string) ([]models.Product, error) {
	return s.repo.ListByFarmer(farmerID)
}

// CreateProduct lists a product under farmerID.
func (s *ProductService) CreateProduct(farmerID string, product *models.Product) error {
	product.ID = ""
	product.FarmerID = farmerID
	return s.repo.Create(product)
}

// UpdateProduct updates a product owned by farmerID.
func (s *ProductService) UpdateProduct(farmerID string, product *models.Product) error {
	existing, err := s.repo.GetByID(product.ID)
	if err != nil {
		return err
	}
	if existing.FarmerID != farmerID {
		return ErrForbidden
	}
	product.FarmerID = farmerID
	product.CreatedAt = existing.CreatedAt
	return s.repo.Update(product)
}

// DeleteProduct removes a product owned by farmerID.
func (s *ProductService) DeleteProduct(farmerID, id string) error {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if existing.FarmerID != farmerID {
		return ErrForbidden
	}
	return s.repo.Delete(id)
}
