// Package analytics contiene los casos de uso de reportes agregados del panel de administración.
package analytics

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// StatsUseCase genera las métricas globales del sistema.
//
// Fuente de datos: StatsRepository (consultas read-only).
type StatsUseCase struct {
	statsRepo repository.StatsRepository
}

// NewStatsUseCase construye el caso de uso.
func NewStatsUseCase(statsRepo repository.StatsRepository) *StatsUseCase {
	return &StatsUseCase{statsRepo: statsRepo}
}

// GlobalStats construye el resumen global.
//
// Cuatro consultas en paralelo:
//  1. CountUsers      → usuarios activos
//  2. CountProducts   → productos activos
//  3. TotalStock      → suma de cantidades
//  4. CountMovements  → movimientos del ledger
func (uc *StatsUseCase) GlobalStats(ctx context.Context) (*dto.GlobalStatsResponse, error) {
	var out dto.GlobalStatsResponse

	// ── Consultas en paralelo; la primera que falla cancela el resto ─────────
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if out.TotalUsers, err = uc.statsRepo.CountUsers(gctx); err != nil {
			return fmt.Errorf("stats: usuarios: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if out.TotalProducts, err = uc.statsRepo.CountProducts(gctx); err != nil {
			return fmt.Errorf("stats: productos: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if out.TotalStock, err = uc.statsRepo.TotalStock(gctx); err != nil {
			return fmt.Errorf("stats: stock total: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if out.TotalLogs, err = uc.statsRepo.CountMovements(gctx); err != nil {
			return fmt.Errorf("stats: movimientos: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
