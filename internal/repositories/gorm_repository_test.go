package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Kamey12/Apex-Inventory-System/internal/database"
	"github.com/Kamey12/Apex-Inventory-System/internal/models"
	"github.com/Kamey12/Apex-Inventory-System/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// openTestDB gives every test its own in-memory SQLite database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := database.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func newProduct(name, sku, category string, qty, threshold int) *models.Product {
	return &models.Product{
		Name:              name,
		SKU:               sku,
		Category:          category,
		Price:             decimal.NewFromInt(10),
		Quantity:          qty,
		LowStockThreshold: threshold,
	}
}

func TestGORMProductRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMProductRepository(openTestDB(t))

	p := newProduct("Laptop", "LAP-1", "Electronics", 10, 5)
	require.NoError(t, repo.Create(ctx, p))
	assert.NotEmpty(t, p.ID)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "LAP-1", got.SKU)
	assert.True(t, decimal.NewFromInt(10).Equal(got.Price))

	bySKU, err := repo.GetBySKU(ctx, "LAP-1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, bySKU.ID)

	// Zero quantity must be written, not skipped
	got.Quantity = 0
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)

	require.NoError(t, repo.Delete(ctx, p.ID))
	_, err = repo.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, p.ID), repositories.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &models.Product{ID: "missing", SKU: "X"}), repositories.ErrNotFound)
}

func TestGORMProductRepository_DuplicateSKU(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMProductRepository(openTestDB(t))

	require.NoError(t, repo.Create(ctx, newProduct("A", "DUP", "X", 1, 0)))
	err := repo.Create(ctx, newProduct("B", "DUP", "X", 1, 0))
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
}

func TestGORMProductRepository_LowStockAndCategories(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMProductRepository(openTestDB(t))

	require.NoError(t, repo.Create(ctx, newProduct("Mouse", "M-1", "Electronics", 5, 5)))  // at threshold
	require.NoError(t, repo.Create(ctx, newProduct("Cable", "C-1", "Electronics", 2, 5)))  // below
	require.NoError(t, repo.Create(ctx, newProduct("Desk", "D-1", "Furniture", 20, 5)))    // above
	require.NoError(t, repo.Create(ctx, newProduct("Sticker", "S-1", "Misc", 0, 0)))       // zero/zero

	low, err := repo.ListLowStock(ctx)
	require.NoError(t, err)
	skus := make([]string, 0, len(low))
	for _, p := range low {
		skus = append(skus, p.SKU)
	}
	assert.ElementsMatch(t, []string{"M-1", "C-1", "S-1"}, skus)

	n, err := repo.CountLowStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)

	cats, err := repo.CategoryCounts(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 3)
	assert.Equal(t, models.CategoryCount{Name: "Electronics", Value: 2}, cats[0])
}

func TestGORMTransactionRepository_HistoryToleratesDeletedProducts(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	products := repositories.NewGORMProductRepository(db)
	ledger := repositories.NewGORMTransactionRepository(db)

	kept := newProduct("Keyboard", "K-1", "Electronics", 10, 2)
	gone := newProduct("Lamp", "L-1", "Furniture", 10, 2)
	require.NoError(t, products.Create(ctx, kept))
	require.NoError(t, products.Create(ctx, gone))

	base := time.Now().Add(-time.Hour)
	require.NoError(t, ledger.Create(ctx, &models.Transaction{ProductID: kept.ID, Type: models.TransactionSale, Quantity: 1, Date: base}))
	require.NoError(t, ledger.Create(ctx, &models.Transaction{ProductID: gone.ID, Type: models.TransactionRestock, Quantity: 4, Date: base.Add(time.Minute)}))
	require.NoError(t, ledger.Create(ctx, &models.Transaction{ProductID: kept.ID, Type: models.TransactionSale, Quantity: 2, Date: base.Add(2 * time.Minute)}))

	require.NoError(t, products.Delete(ctx, gone.ID))

	history, err := ledger.ListWithProducts(ctx)
	require.NoError(t, err)
	require.Len(t, history, 3)

	// Newest first
	assert.Equal(t, 2, history[0].Quantity)
	require.NotNil(t, history[0].Product)
	assert.Equal(t, "K-1", history[0].Product.SKU)
	assert.Nil(t, history[1].Product)
	assert.Equal(t, gone.ID, history[1].ProductID)

	sales, err := ledger.CountByType(ctx, models.TransactionSale)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sales)

	recent, err := ledger.ListByTypeSince(ctx, models.TransactionSale, base.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, 2, recent[0].Quantity)
}

func TestGORMUserRepository_ResetTokenLookup(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMUserRepository(openTestDB(t))

	expire := time.Now().Add(10 * time.Minute)
	u := &models.User{Username: "clerk", Password: "hash", Role: models.RoleStaff, ResetPasswordToken: "abc", ResetPasswordExpire: &expire}
	require.NoError(t, repo.Create(ctx, u))

	found, err := repo.GetByResetToken(ctx, "abc", time.Now())
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = repo.GetByResetToken(ctx, "abc", expire.Add(time.Second))
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	found.ClearReset()
	require.NoError(t, repo.Update(ctx, found))
	_, err = repo.GetByResetToken(ctx, "abc", time.Now())
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	err = repo.Create(ctx, &models.User{Username: "clerk", Password: "x", Role: models.RoleStaff})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	n, err := repo.CountByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
