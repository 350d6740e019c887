package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// La actualización del producto y el alta del movimiento se confirman juntas o no se confirman.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// ItemLocker exclusión mutua por producto: un solo escritor a la vez por ID.
// unlock debe llamarse en todos los caminos de salida.
type ItemLocker interface {
	Lock(ctx context.Context, itemID string) (unlock func(), err error)
}
