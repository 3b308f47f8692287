package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/Kamey12/Apex-Inventory-System/internal/models"
	"github.com/Kamey12/Apex-Inventory-System/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryProductRepository_UniqueSKU(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryProductRepository()

	a := newProduct("A", "SKU-A", "X", 1, 1)
	b := newProduct("B", "SKU-B", "X", 1, 1)
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))
	assert.ErrorIs(t, repo.Create(ctx, newProduct("C", "SKU-A", "X", 1, 1)), repositories.ErrDuplicate)

	b.SKU = "SKU-A"
	assert.ErrorIs(t, repo.Update(ctx, b), repositories.ErrDuplicate)

	// Keeping its own SKU is not a collision
	a.Quantity = 7
	require.NoError(t, repo.Update(ctx, a))
}

func TestMemoryTransactionRepository_JoinsProducts(t *testing.T) {
	ctx := context.Background()
	products := repositories.NewMemoryProductRepository()
	ledger := repositories.NewMemoryTransactionRepository(products)

	p := newProduct("Pen", "P-1", "Office", 3, 1)
	require.NoError(t, products.Create(ctx, p))

	now := time.Now()
	require.NoError(t, ledger.Create(ctx, &models.Transaction{ProductID: p.ID, Type: models.TransactionSale, Quantity: 1, Date: now.Add(-time.Minute)}))
	require.NoError(t, ledger.Create(ctx, &models.Transaction{ProductID: "deleted", Type: models.TransactionSale, Quantity: 2, Date: now}))

	history, err := ledger.ListWithProducts(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Nil(t, history[0].Product)
	require.NotNil(t, history[1].Product)
	assert.Equal(t, "Pen", history[1].Product.Name)
}

func TestMemoryUserRepository_ResetToken(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryUserRepository()

	expire := time.Now().Add(time.Minute)
	u := &models.User{Username: "a", Role: models.RoleStaff, ResetPasswordToken: "h", ResetPasswordExpire: &expire}
	require.NoError(t, repo.Create(ctx, u))

	_, err := repo.GetByResetToken(ctx, "h", time.Now())
	require.NoError(t, err)
	_, err = repo.GetByResetToken(ctx, "h", expire)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = repo.GetByResetToken(ctx, "", time.Now())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
