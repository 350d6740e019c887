package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo log append-only de movimientos sobre PostgreSQL (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create agrega un movimiento al log.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, product_id, user_id, change, type, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, m.ID, m.ProductID, m.UserID, m.Change, m.Type, m.Note, m.CreatedAt)
	return mapError(err, "insert stock movement")
}

// ListByProduct movimientos del producto con nombre y email del actor, más recientes primero.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.ItemMovement, error) {
	query := `
		SELECT m.id, m.product_id, m.user_id, m.change, m.type, m.note, m.created_at,
			COALESCE(u.name, ''), COALESCE(u.email, '')
		FROM stock_movements m
		LEFT JOIN users u ON u.id = m.user_id
		WHERE m.product_id = $1
		ORDER BY m.created_at DESC, m.id DESC`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, mapError(err, "list movements by product")
	}
	defer rows.Close()

	list := []*entity.ItemMovement{}
	for rows.Next() {
		var im entity.ItemMovement
		if err := rows.Scan(&im.ID, &im.ProductID, &im.UserID, &im.Change, &im.Type, &im.Note, &im.CreatedAt,
			&im.UserName, &im.UserEmail); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &im)
	}
	return list, rows.Err()
}

// ListByUser movimientos creados por el usuario con el nombre del producto, más recientes primero.
func (r *StockMovementRepo) ListByUser(ctx context.Context, userID string) ([]*entity.UserMovement, error) {
	query := `
		SELECT m.id, m.product_id, m.user_id, m.change, m.type, m.note, m.created_at,
			COALESCE(p.name, '')
		FROM stock_movements m
		LEFT JOIN products p ON p.id = m.product_id
		WHERE m.user_id = $1
		ORDER BY m.created_at DESC, m.id DESC`
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, mapError(err, "list movements by user")
	}
	defer rows.Close()

	list := []*entity.UserMovement{}
	for rows.Next() {
		var um entity.UserMovement
		if err := rows.Scan(&um.ID, &um.ProductID, &um.UserID, &um.Change, &um.Type, &um.Note, &um.CreatedAt,
			&um.ProductName); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &um)
	}
	return list, rows.Err()
}

// SumByProduct replay del log: suma de change del producto.
func (r *StockMovementRepo) SumByProduct(ctx context.Context, productID string) (int64, error) {
	var sum int64
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(change), 0)::BIGINT FROM stock_movements WHERE product_id = $1`, productID,
	).Scan(&sum)
	if err != nil {
		return 0, mapError(err, "sum movements")
	}
	return sum, nil
}
