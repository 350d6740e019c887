package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// ProductFilter criterios de búsqueda de productos activos (no eliminados).
// Los campos vacíos o nil no filtran.
type ProductFilter struct {
	OwnerID  string
	Name     string // coincidencia parcial, sin distinguir mayúsculas
	Category string
	Unit     string
	Supplier string
	LowStock bool // quantity <= reorder_threshold
	MinQty   *int64
	MaxQty   *int64
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID y GetForUpdate devuelven (nil, nil) si el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT ... FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// Update modifica solo metadatos; la cantidad se cambia con UpdateQuantity.
	Update(ctx context.Context, product *entity.Product) error
	UpdateQuantity(ctx context.Context, id string, quantity int64) error
	SoftDelete(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	// ListIDs devuelve los IDs de todos los productos activos (auditoría del ledger).
	ListIDs(ctx context.Context) ([]string, error)
}
