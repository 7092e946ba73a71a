package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"stockwise-decd/internal/adapters/persistence/models"
	"stockwise-decd/internal/adapters/persistence/repositories"
	"stockwise-decd/internal/core/domain"
	"stockwise-decd/internal/pkg/validator"

	"github.com/google/uuid"
)

// ProductService handles catalog business logic. Stock mutations outside
// the loan ledger go through AdjustStock so every movement is journaled.
type ProductService struct {
	productRepo repositories.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(productRepo repositories.ProductRepository) *ProductService {
	return &ProductService{
		productRepo: productRepo,
	}
}

// CreateProductInput represents a catalog add request
type CreateProductInput struct {
	Name         string `json:"name" validate:"required,min=2"`
	SKU          string `json:"sku" validate:"required,min=2"`
	Category     string `json:"category" validate:"required,min=2"`
	Location     string `json:"location" validate:"required,min=2"`
	Quantity     int    `json:"quantity" validate:"gte=0"`
	ReorderPoint int    `json:"reorder_point" validate:"gte=0"`
}

// CreateProduct adds a product to the catalog. SKUs are unique,
// compared case-insensitively.
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*models.Product, error) {
	if err := validator.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	if _, err := s.productRepo.GetBySKU(ctx, input.SKU); err == nil {
		return nil, domain.ErrDuplicateSKU
	} else if !errors.Is(err, domain.ErrProductNotFound) {
		return nil, err
	}

	product := &models.Product{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(input.Name),
		SKU:          strings.TrimSpace(input.SKU),
		Category:     strings.TrimSpace(input.Category),
		Location:     strings.TrimSpace(input.Location),
		Quantity:     input.Quantity,
		ReorderPoint: input.ReorderPoint,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	log.Printf("✅ Product created: %s (%s), %d units", product.Name, product.SKU, product.Quantity)
	return product, nil
}

// UpdateProductInput represents a partial catalog edit
type UpdateProductInput struct {
	Name         *string `json:"name"`
	SKU          *string `json:"sku"`
	Category     *string `json:"category"`
	Location     *string `json:"location"`
	Quantity     *int    `json:"quantity"`
	ReorderPoint *int    `json:"reorder_point"`
}

// UpdateProduct applies a partial edit. Quantity edits here are direct
// stock corrections and are journaled as adjustments.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input *UpdateProductInput) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.SKU != nil && !strings.EqualFold(*input.SKU, product.SKU) {
		if _, err := s.productRepo.GetBySKU(ctx, *input.SKU); err == nil {
			return nil, domain.ErrDuplicateSKU
		} else if !errors.Is(err, domain.ErrProductNotFound) {
			return nil, err
		}
		product.SKU = strings.TrimSpace(*input.SKU)
	}
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.Location != nil {
		product.Location = strings.TrimSpace(*input.Location)
	}
	if input.ReorderPoint != nil {
		if *input.ReorderPoint < 0 {
			return nil, domain.ErrInvalidInput
		}
		product.ReorderPoint = *input.ReorderPoint
	}

	// Direct quantity edits are expressed as a journaled adjustment so the
	// stock log stays a complete record of movements.
	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return nil, domain.ErrInvalidInput
		}
		delta := *input.Quantity - product.Quantity
		if delta != 0 {
			adjusted, err := s.productRepo.AdjustQuantity(ctx, id, delta, models.ReasonAdjustment)
			if err != nil {
				return nil, err
			}
			product.Quantity = adjusted.Quantity
		}
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product from the catalog. Deletion is permitted
// even while active loans reference the product; a later return then finds
// no product to credit and the units are lost (known edge case).
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("🗑️ Product %s deleted", id)
	return nil
}

// GetProduct returns a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

// ListProducts lists products with pagination
func (s *ProductService) ListProducts(ctx context.Context, offset, limit int) ([]*models.Product, int64, error) {
	return s.productRepo.List(ctx, offset, limit)
}

// ListAllProducts returns the full catalog snapshot
func (s *ProductService) ListAllProducts(ctx context.Context) ([]*models.Product, error) {
	return s.productRepo.ListAll(ctx)
}

// AdjustStockInput represents a manual stock movement
type AdjustStockInput struct {
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason"`
}

// AdjustStock applies a signed stock delta (restock or correction) and
// journals it. Taking stock below zero is rejected.
func (s *ProductService) AdjustStock(ctx context.Context, id string, input *AdjustStockInput) (*models.Product, error) {
	if input.Delta == 0 {
		return nil, domain.ErrInvalidInput
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		if input.Delta > 0 {
			reason = models.ReasonRestock
		} else {
			reason = models.ReasonAdjustment
		}
	}

	product, err := s.productRepo.AdjustQuantity(ctx, id, input.Delta, reason)
	if err != nil {
		return nil, err
	}
	log.Printf("📦 Stock adjusted: %s %+d (%s)", product.Name, input.Delta, reason)
	return product, nil
}
