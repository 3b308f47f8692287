package repositories

import (
	"context"

	"github.com/Kamey12/Apex-Inventory-System/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetBySKU(ctx context.Context, sku string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	ListLowStock(ctx context.Context) ([]models.Product, error)
	Count(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context) (int64, error)
	CategoryCounts(ctx context.Context) ([]models.CategoryCount, error)
}
