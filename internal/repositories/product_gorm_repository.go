package repositories

import (
	"context"
	"fmt"

	"github.com/Kamey12/Apex-Inventory-System/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products from the database.
func (r *GORMProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Order("name").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("product with ID %s: %w", id, translate(err))
	}
	return &product, nil
}

// GetBySKU retrieves a single product by its SKU.
func (r *GORMProductRepository) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "sku = ?", sku).Error; err != nil {
		return nil, fmt.Errorf("product with SKU %s: %w", sku, translate(err))
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", translate(err))
	}
	return nil
}

// Update overwrites every column of an existing product, zero values included.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).Model(product).Select("*").Omit("created_at").Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", product.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListLowStock returns products whose quantity is at or below their threshold.
func (r *GORMProductRepository) ListLowStock(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("quantity <= low_stock_threshold").
		Order("quantity").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}
	return products, nil
}

// Count returns the number of products in the catalog.
func (r *GORMProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

// CountLowStock returns the number of products at or below their threshold.
func (r *GORMProductRepository) CountLowStock(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("quantity <= low_stock_threshold").
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count low stock products: %w", err)
	}
	return n, nil
}

// CategoryCounts groups products by category, largest group first.
func (r *GORMProductRepository) CategoryCounts(ctx context.Context) ([]models.CategoryCount, error) {
	var counts []models.CategoryCount
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Select("category AS name, COUNT(*) AS value").
		Group("category").
		Order("value DESC, name ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate categories: %w", err)
	}
	return counts, nil
}
