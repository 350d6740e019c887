package repository

import "context"

// StatsRepository consultas agregadas de solo lectura (panel de administración).
// Las implementaciones no modifican datos.
type StatsRepository interface {
	CountUsers(ctx context.Context) (int64, error)
	CountProducts(ctx context.Context) (int64, error)
	// TotalStock suma la cantidad de todos los productos activos.
	TotalStock(ctx context.Context) (int64, error)
	CountMovements(ctx context.Context) (int64, error)
}
