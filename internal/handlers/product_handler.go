package handlers

import (
	"errors"

	"github.com/Kamey12/Apex-Inventory-System/internal/middleware"
	"github.com/Kamey12/Apex-Inventory-System/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	lowStockAlert = "LOW STOCK WARNING!"
	stockOKAlert  = "Stock level okay"
)

// ProductHandler handles HTTP requests for products and stock movements.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the product routes. protect must authenticate the request.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, protect fiber.Handler) {
	productRoutes := router.Group("/products")
	admin := middleware.AdminOnly()

	productRoutes.Get("/alerts", h.HandleGetLowStock)

	productRoutes.Post("/add", protect, admin, h.HandleCreateProduct)
	productRoutes.Get("/all", protect, h.HandleGetProducts)
	productRoutes.Patch("/sell/:id", protect, h.HandleSell)
	productRoutes.Post("/bulk-sell", protect, h.HandleBulkSell)
	productRoutes.Patch("/restock/:id", protect, admin, h.HandleRestock)
	productRoutes.Get("/history", protect, admin, h.HandleGetHistory)
	productRoutes.Get("/dashboard/stats", protect, h.HandleGetDashboardStats)
	productRoutes.Put("/:id", protect, admin, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", protect, admin, h.HandleDeleteProduct)
}

// CreateProductRequest represents the request body for a new product.
type CreateProductRequest struct {
	Name              string           `json:"name" validate:"required,max=200"`
	SKU               string           `json:"sku" validate:"required,max=100"`
	Category          string           `json:"category" validate:"required,max=100"`
	Price             *decimal.Decimal `json:"price" validate:"required"`
	Quantity          int              `json:"quantity" validate:"min=0"`
	LowStockThreshold *int             `json:"lowStockThreshold" validate:"omitempty,min=0"`
}

// HandleCreateProduct creates a product. Admin only.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req CreateProductRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	product, err := h.service.CreateProduct(c.UserContext(), services.ProductInput{
		Name:              req.Name,
		SKU:               req.SKU,
		Category:          req.Category,
		Price:             *req.Price,
		Quantity:          req.Quantity,
		LowStockThreshold: req.LowStockThreshold,
	})
	if err != nil {
		return respondError(c, err, "create product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleGetProducts lists every product.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return respondError(c, err, "list products")
	}
	return c.JSON(products)
}

// HandleGetLowStock lists products at or below their threshold.
func (h *ProductHandler) HandleGetLowStock(c *fiber.Ctx) error {
	products, err := h.service.GetLowStock(c.UserContext())
	if err != nil {
		return respondError(c, err, "list low stock")
	}
	return c.JSON(products)
}

// UpdateProductRequest is a partial product update; absent fields are left as they are.
type UpdateProductRequest struct {
	Name              *string          `json:"name" validate:"omitempty,min=1,max=200"`
	SKU               *string          `json:"sku" validate:"omitempty,min=1,max=100"`
	Category          *string          `json:"category" validate:"omitempty,min=1,max=100"`
	Price             *decimal.Decimal `json:"price"`
	Quantity          *int             `json:"quantity" validate:"omitempty,min=0"`
	LowStockThreshold *int             `json:"lowStockThreshold" validate:"omitempty,min=0"`
}

// HandleUpdateProduct applies a partial update. Admin only.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req UpdateProductRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), services.ProductPatch{
		Name:              req.Name,
		SKU:               req.SKU,
		Category:          req.Category,
		Price:             req.Price,
		Quantity:          req.Quantity,
		LowStockThreshold: req.LowStockThreshold,
	})
	if err != nil {
		return respondError(c, err, "update product")
	}
	return c.JSON(product)
}

// HandleDeleteProduct removes a product. Admin only.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err, "delete product")
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// SellRequest represents the request body for a single sale.
type SellRequest struct {
	QuantitySold int `json:"quantitySold"`
}

// HandleSell sells units of one product.
func (h *ProductHandler) HandleSell(c *fiber.Ctx) error {
	var req SellRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	result, err := h.service.Sell(c.UserContext(), c.Params("id"), req.QuantitySold)
	if err != nil {
		return respondError(c, err, "sell")
	}

	alert := stockOKAlert
	if result.LowStock {
		alert = lowStockAlert
	}
	return c.JSON(fiber.Map{
		"message":        "Sale successful",
		"remainingStock": result.Remaining,
		"lowStock":       result.LowStock,
		"alert":          alert,
	})
}

// BulkSellItem is one line of a bulk sale request.
type BulkSellItem struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"`
}

// BulkSellRequest represents the request body for a multi-item sale.
type BulkSellRequest struct {
	Items []BulkSellItem `json:"items" validate:"required,min=1,dive"`
}

// HandleBulkSell sells several items in order. Items sold before a failing one are kept.
func (h *ProductHandler) HandleBulkSell(c *fiber.Ctx) error {
	var req BulkSellRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	items := make([]services.SaleItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = services.SaleItem{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	processed, err := h.service.BulkSell(c.UserContext(), items)
	if err != nil {
		var bulkErr *services.BulkSellError
		if errors.As(err, &bulkErr) {
			log.Warn().Int("processed", processed).Int("items", len(items)).Msg(bulkErr.Error())
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message":   bulkErr.Error(),
				"processed": processed,
			})
		}
		return respondError(c, err, "bulk sell")
	}

	return c.JSON(fiber.Map{
		"message":   "All sales processed successfully",
		"processed": processed,
	})
}

// RestockRequest represents the request body for a restock.
type RestockRequest struct {
	QuantityAdded int `json:"quantityAdded"`
}

// HandleRestock adds units to a product. Admin only.
func (h *ProductHandler) HandleRestock(c *fiber.Ctx) error {
	var req RestockRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	product, err := h.service.Restock(c.UserContext(), c.Params("id"), req.QuantityAdded)
	if err != nil {
		return respondError(c, err, "restock")
	}
	return c.JSON(fiber.Map{
		"message":     "Stock updated successfully",
		"newQuantity": product.Quantity,
	})
}

// HandleGetHistory returns the transaction ledger newest first. Admin only.
func (h *ProductHandler) HandleGetHistory(c *fiber.Ctx) error {
	history, err := h.service.GetHistory(c.UserContext())
	if err != nil {
		return respondError(c, err, "history")
	}
	return c.JSON(history)
}

// HandleGetDashboardStats returns the aggregated dashboard figures.
func (h *ProductHandler) HandleGetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats(c.UserContext())
	if err != nil {
		return respondError(c, err, "dashboard stats")
	}
	return c.JSON(stats)
}
