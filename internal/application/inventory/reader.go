package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// LedgerReader consultas de solo lectura sobre movimientos y agregados de productos.
type LedgerReader struct {
	productRepo repository.ProductRepository
	movRepo     repository.StockMovementRepository
}

// NewLedgerReader construye el lector.
func NewLedgerReader(productRepo repository.ProductRepository, movRepo repository.StockMovementRepository) *LedgerReader {
	return &LedgerReader{productRepo: productRepo, movRepo: movRepo}
}

// MovementsForItem historial de un producto, más reciente primero, con nombre y email del actor.
// El historial se conserva aunque el producto haya sido eliminado.
func (r *LedgerReader) MovementsForItem(ctx context.Context, itemID string) ([]*entity.ItemMovement, error) {
	if _, err := uuid.Parse(itemID); err != nil {
		return nil, domain.ErrInvalidIdentifier
	}
	list, err := r.movRepo.ListByProduct(ctx, itemID)
	if err != nil {
		return nil, storageErr("list movements by product", err)
	}
	if list == nil {
		list = []*entity.ItemMovement{}
	}
	return list, nil
}

// MovementsForUser movimientos creados por el usuario en todos sus productos, más reciente primero.
func (r *LedgerReader) MovementsForUser(ctx context.Context, userID string) ([]*entity.UserMovement, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, domain.ErrInvalidIdentifier
	}
	list, err := r.movRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, storageErr("list movements by user", err)
	}
	if list == nil {
		list = []*entity.UserMovement{}
	}
	return list, nil
}

// LowStockItems productos activos del dueño con quantity <= reorderThreshold.
func (r *LedgerReader) LowStockItems(ctx context.Context, ownerID string) ([]*entity.Product, error) {
	list, err := r.productRepo.Search(ctx, repository.ProductFilter{OwnerID: ownerID, LowStock: true})
	if err != nil {
		return nil, storageErr("list low stock", err)
	}
	if list == nil {
		list = []*entity.Product{}
	}
	return list, nil
}

// InventoryStats agregados del dueño calculados en memoria sobre sus productos activos.
func (r *LedgerReader) InventoryStats(ctx context.Context, ownerID string) (inventory.Stats, error) {
	list, err := r.productRepo.Search(ctx, repository.ProductFilter{OwnerID: ownerID})
	if err != nil {
		return inventory.Stats{}, storageErr("list products", err)
	}
	return inventory.ComputeStats(list), nil
}

// Replay suma los change del log del producto.
func (r *LedgerReader) Replay(ctx context.Context, itemID string) (int64, error) {
	if _, err := uuid.Parse(itemID); err != nil {
		return 0, domain.ErrInvalidIdentifier
	}
	sum, err := r.movRepo.SumByProduct(ctx, itemID)
	if err != nil {
		return 0, storageErr("replay", err)
	}
	return sum, nil
}
