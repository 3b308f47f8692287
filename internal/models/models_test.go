package models_test

import (
	"testing"
	"time"

	"github.com/Kamey12/Apex-Inventory-System/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	role, err := models.ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role)

	role, err = models.ParseRole("staff")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, role)

	// Empty role falls back to staff
	role, err = models.ParseRole("")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, role)

	_, err = models.ParseRole("superuser")
	assert.Error(t, err)
}

func TestRole_Satisfies(t *testing.T) {
	assert.True(t, models.RoleAdmin.Satisfies(models.RoleAdmin))
	assert.True(t, models.RoleAdmin.Satisfies(models.RoleStaff))
	assert.True(t, models.RoleStaff.Satisfies(models.RoleStaff))
	assert.False(t, models.RoleStaff.Satisfies(models.RoleAdmin))
	assert.False(t, models.Role("guest").Satisfies(models.RoleStaff))
}

func TestProduct_IsLowStock(t *testing.T) {
	cases := []struct {
		quantity, threshold int
		want                bool
	}{
		{0, 0, true},
		{3, 5, true},
		{5, 5, true},
		{6, 5, false},
		{10, 0, false},
	}
	for _, tc := range cases {
		p := models.Product{Quantity: tc.quantity, LowStockThreshold: tc.threshold}
		assert.Equal(t, tc.want, p.IsLowStock(), "quantity=%d threshold=%d", tc.quantity, tc.threshold)
	}
}

func TestProduct_StockValue(t *testing.T) {
	p := models.Product{Price: decimal.RequireFromString("2.50"), Quantity: 4}
	assert.True(t, decimal.NewFromInt(10).Equal(p.StockValue()))
}

func TestNewHistoryEntry_DanglingProduct(t *testing.T) {
	now := time.Now()
	entry := models.NewHistoryEntry(models.Transaction{ID: "t1", ProductID: "gone", Type: models.TransactionSale, Quantity: 2, Date: now})
	assert.Nil(t, entry.Product)
	assert.Equal(t, 2, entry.Quantity)

	entry = models.NewHistoryEntry(models.Transaction{
		ID: "t2", ProductID: "p1", Type: models.TransactionRestock, Quantity: 1, Date: now,
		Product: &models.Product{ID: "p1", Name: "Widget", SKU: "W-1"},
	})
	require.NotNil(t, entry.Product)
	assert.Equal(t, "W-1", entry.Product.SKU)
}
