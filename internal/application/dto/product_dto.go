package dto

import (
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
)

// CreateProductRequest entrada para crear un producto. Quantity es el stock inicial.
type CreateProductRequest struct {
	Name             string `json:"name" validate:"required,min=1,max=100"`
	Description      string `json:"description" validate:"max=500"`
	Quantity         int64  `json:"quantity" validate:"min=0"`
	ReorderThreshold *int64 `json:"reorder_threshold" validate:"omitempty,min=0"`
	Unit             string `json:"unit" validate:"max=20"`
	Category         string `json:"category" validate:"max=50"`
	Supplier         string `json:"supplier" validate:"max=100"`
}

// UpdateProductRequest metadatos editables. La cantidad solo cambia vía /api/stock.
type UpdateProductRequest struct {
	Name             *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description      *string `json:"description" validate:"omitempty,max=500"`
	ReorderThreshold *int64  `json:"reorder_threshold" validate:"omitempty,min=0"`
	Unit             *string `json:"unit" validate:"omitempty,max=20"`
	Category         *string `json:"category" validate:"omitempty,max=50"`
	Supplier         *string `json:"supplier" validate:"omitempty,max=100"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Quantity         int64     `json:"quantity"`
	ReorderThreshold int64     `json:"reorder_threshold"`
	Unit             string    `json:"unit"`
	Category         string    `json:"category"`
	Supplier         string    `json:"supplier"`
	OwnerID          string    `json:"owner_id"`
	LowStock         bool      `json:"low_stock"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CategoryCountDTO productos por categoría.
type CategoryCountDTO struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// InventoryStatsResponse agregados del inventario del usuario.
type InventoryStatsResponse struct {
	TotalProducts int64              `json:"total_products"`
	TotalQuantity int64              `json:"total_quantity"`
	LowStockCount int64              `json:"low_stock_count"`
	CategoryStats []CategoryCountDTO `json:"category_stats"`
}

// FromProduct mapea la entidad; low_stock se deriva en cada respuesta.
func FromProduct(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:               p.ID,
		Name:             p.Name,
		Description:      p.Description,
		Quantity:         p.Quantity,
		ReorderThreshold: p.ReorderThreshold,
		Unit:             p.Unit,
		Category:         p.Category,
		Supplier:         p.Supplier,
		OwnerID:          p.OwnerID,
		LowStock:         p.IsLowStock(),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// FromProducts mapea una lista (nunca nil).
func FromProducts(list []*entity.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, FromProduct(p))
	}
	return out
}

// FromStats mapea los agregados de inventario.
func FromStats(st inventory.Stats) InventoryStatsResponse {
	cats := make([]CategoryCountDTO, 0, len(st.CategoryBreakdown))
	for _, c := range st.CategoryBreakdown {
		cats = append(cats, CategoryCountDTO{Category: c.Category, Count: c.Count})
	}
	return InventoryStatsResponse{
		TotalProducts: st.TotalItems,
		TotalQuantity: st.TotalQuantity,
		LowStockCount: st.LowStockCount,
		CategoryStats: cats,
	}
}

// ProductSearchQuery parámetros de GET /api/products/search.
type ProductSearchQuery struct {
	Name     string `query:"name"`
	Category string `query:"category"`
	Unit     string `query:"unit"`
	Supplier string `query:"supplier"`
	LowStock bool   `query:"lowStock"`
	MinQty   *int64 `query:"minQty" validate:"omitempty,min=0"`
	MaxQty   *int64 `query:"maxQty" validate:"omitempty,min=0"`
}
