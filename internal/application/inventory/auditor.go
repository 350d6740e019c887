package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
	"github.com/jhoicas/stock-ledger-api/pkg/metrics"
)

// DriftReport compara la cantidad almacenada con el replay del log.
type DriftReport struct {
	ItemID   string
	Stored   int64
	Replayed int64
	Drift    int64 // Stored - Replayed
	Repaired bool
}

// HasDrift indica si la cantidad almacenada no coincide con el log.
func (r DriftReport) HasDrift() bool {
	return r.Drift != 0
}

// LedgerAuditor detecta y corrige la deriva entre products.quantity y la suma de movimientos.
// Toma el mismo lock por producto que el motor, así nunca observa una operación a medias.
type LedgerAuditor struct {
	productRepo repository.ProductRepository
	txRunner    TxRunner
	locker      ItemLocker
	metrics     *metrics.Metrics
	log         *logger.Logger
}

// NewLedgerAuditor construye el auditor. m y log pueden ser nil.
func NewLedgerAuditor(productRepo repository.ProductRepository, txRunner TxRunner, locker ItemLocker, m *metrics.Metrics, log *logger.Logger) *LedgerAuditor {
	if log == nil {
		log = logger.Nop()
	}
	return &LedgerAuditor{
		productRepo: productRepo,
		txRunner:    txRunner,
		locker:      locker,
		metrics:     m,
		log:         log.Component("ledger_auditor"),
	}
}

// Check compara un producto contra su log sin modificar nada.
func (a *LedgerAuditor) Check(ctx context.Context, itemID string) (DriftReport, error) {
	return a.inspect(ctx, itemID, false)
}

// Repair fija la cantidad almacenada al replay del log. No crea movimientos:
// el log es la fuente de verdad y la cantidad es solo una copia.
func (a *LedgerAuditor) Repair(ctx context.Context, itemID string) (DriftReport, error) {
	return a.inspect(ctx, itemID, true)
}

// Scan revisa todos los productos activos y devuelve los que tienen deriva.
func (a *LedgerAuditor) Scan(ctx context.Context) ([]DriftReport, error) {
	ids, err := a.productRepo.ListIDs(ctx)
	if err != nil {
		return nil, storageErr("list product ids", err)
	}
	drifting := []DriftReport{}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rep, err := a.Check(ctx, id)
		if err != nil {
			return nil, err
		}
		if rep.HasDrift() {
			drifting = append(drifting, rep)
		}
	}
	a.metrics.SetDrift(len(drifting))
	return drifting, nil
}

// Run ejecuta Scan cada interval hasta que ctx se cancele. Con repair=true corrige la deriva encontrada.
func (a *LedgerAuditor) Run(ctx context.Context, interval time.Duration, repair bool) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	a.log.Info().Dur("interval", interval).Bool("repair", repair).Msg("auditoría periódica del ledger iniciada")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.runOnce(ctx, repair)
		}
	}
}

func (a *LedgerAuditor) runOnce(ctx context.Context, repair bool) {
	reports, err := a.Scan(ctx)
	if err != nil {
		a.log.Error().Err(err).Msg("auditoría del ledger falló")
		return
	}
	for _, rep := range reports {
		a.log.Warn().
			Str("product_id", rep.ItemID).
			Int64("stored", rep.Stored).
			Int64("replayed", rep.Replayed).
			Int64("drift", rep.Drift).
			Msg("deriva detectada entre cantidad y log")
		if !repair {
			continue
		}
		if _, err := a.Repair(ctx, rep.ItemID); err != nil {
			a.log.Error().Err(err).Str("product_id", rep.ItemID).Msg("no se pudo corregir la deriva")
		}
	}
}

func (a *LedgerAuditor) inspect(ctx context.Context, itemID string, repair bool) (DriftReport, error) {
	if _, err := uuid.Parse(itemID); err != nil {
		return DriftReport{}, domain.ErrInvalidIdentifier
	}
	unlock, err := a.locker.Lock(ctx, itemID)
	if err != nil {
		return DriftReport{}, lockErr(err)
	}
	defer unlock()

	var rep DriftReport
	err = a.txRunner.Run(ctx, func(productRepo repository.ProductRepository, movRepo repository.StockMovementRepository) error {
		product, err := productRepo.GetForUpdate(ctx, itemID)
		if err != nil {
			return storageErr("get product", err)
		}
		if product == nil || product.IsDeleted {
			return domain.ErrNotFound
		}
		sum, err := movRepo.SumByProduct(ctx, itemID)
		if err != nil {
			return storageErr("replay", err)
		}
		rep = DriftReport{ItemID: itemID, Stored: product.Quantity, Replayed: sum, Drift: product.Quantity - sum}
		if !repair || !rep.HasDrift() {
			return nil
		}
		if sum < 0 {
			return fmt.Errorf("%w: el replay del log es negativo (%d)", domain.ErrInvalidInput, sum)
		}
		if err := productRepo.UpdateQuantity(ctx, itemID, sum); err != nil {
			return storageErr("update quantity", err)
		}
		rep.Repaired = true
		return nil
	})
	if err != nil {
		if !isLedgerOutcome(err) {
			err = storageErr("transaction", err)
		}
		return DriftReport{}, err
	}
	if rep.Repaired {
		a.log.Info().Str("product_id", itemID).Int64("from", rep.Stored).Int64("to", rep.Replayed).Msg("cantidad corregida desde el log")
	}
	return rep, nil
}
