package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// StockMovementRepository puerto de persistencia del log append-only de movimientos (DIP).
// No hay Update ni Delete: un movimiento creado es permanente.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// ListByProduct devuelve los movimientos del producto, más recientes primero.
	ListByProduct(ctx context.Context, productID string) ([]*entity.ItemMovement, error)
	// ListByUser devuelve los movimientos creados por el usuario, más recientes primero.
	ListByUser(ctx context.Context, userID string) ([]*entity.UserMovement, error)
	// SumByProduct suma los change del producto (replay del log).
	SumByProduct(ctx context.Context, productID string) (int64, error)
}
