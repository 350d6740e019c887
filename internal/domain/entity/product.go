package entity

import "time"

// Límites de longitud de los campos de metadatos del producto.
const (
	ProductNameMaxLen        = 100
	ProductDescriptionMaxLen = 500
	ProductUnitMaxLen        = 20
	ProductCategoryMaxLen    = 50
	ProductSupplierMaxLen    = 100

	DefaultReorderThreshold int64 = 5
	DefaultUnit                   = "pcs"
)

// Product representa un ítem de stock propiedad de un usuario.
// Quantity es un valor redundante: debe coincidir con la suma de los StockMovement del producto.
// Solo el motor del ledger la modifica; los metadatos se editan directamente.
type Product struct {
	ID               string
	Name             string
	Description      string
	Quantity         int64 // >= 0 siempre
	ReorderThreshold int64 // >= 0
	Unit             string
	Category         string
	Supplier         string
	OwnerID          string // usuario que lo creó
	IsDeleted        bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsLowStock indica si la cantidad está en o por debajo del umbral de reorden.
// Se recalcula en cada consulta; nunca se persiste.
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.ReorderThreshold
}

// OwnedBy indica si el producto pertenece al usuario.
func (p *Product) OwnedBy(userID string) bool {
	return p.OwnerID == userID
}
