package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultLowStockThreshold is applied when a product is created without an explicit threshold.
const DefaultLowStockThreshold = 5

func init() {
	// Prices go over the wire as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents a catalog item and its current stock level.
type Product struct {
	ID                string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name              string          `json:"name" gorm:"type:varchar(200);not null"`
	SKU               string          `json:"sku" gorm:"column:sku;uniqueIndex;type:varchar(100);not null"`
	Category          string          `json:"category" gorm:"type:varchar(100);not null;index"`
	Price             decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	Quantity          int             `json:"quantity" gorm:"not null;default:0"`
	LowStockThreshold int             `json:"lowStockThreshold" gorm:"not null;default:5"`
	LastUpdated       time.Time       `json:"lastUpdated" gorm:"autoUpdateTime"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// IsLowStock reports whether the quantity is at or below the product's threshold.
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.LowStockThreshold
}

// StockValue is price × quantity.
func (p *Product) StockValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// CategoryCount is one slice of the category breakdown on the dashboard.
type CategoryCount struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}
