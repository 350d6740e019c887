package postgres

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.StatsRepository = (*StatsRepo)(nil)

// StatsRepo consultas agregadas de solo lectura.
type StatsRepo struct {
	q Querier
}

// NewStatsRepository construye el adaptador.
func NewStatsRepository(q Querier) *StatsRepo {
	return &StatsRepo{q: q}
}

func (r *StatsRepo) scalar(ctx context.Context, op, query string) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, mapError(err, op)
	}
	return n, nil
}

// CountUsers usuarios activos.
func (r *StatsRepo) CountUsers(ctx context.Context) (int64, error) {
	return r.scalar(ctx, "count users", `SELECT count(*) FROM users WHERE NOT is_deleted`)
}

// CountProducts productos activos.
func (r *StatsRepo) CountProducts(ctx context.Context) (int64, error) {
	return r.scalar(ctx, "count products", `SELECT count(*) FROM products WHERE NOT is_deleted`)
}

// TotalStock suma de cantidades de productos activos.
func (r *StatsRepo) TotalStock(ctx context.Context) (int64, error) {
	return r.scalar(ctx, "total stock", `SELECT COALESCE(SUM(quantity), 0)::BIGINT FROM products WHERE NOT is_deleted`)
}

// CountMovements total de movimientos registrados.
func (r *StatsRepo) CountMovements(ctx context.Context) (int64, error) {
	return r.scalar(ctx, "count movements", `SELECT count(*) FROM stock_movements`)
}
