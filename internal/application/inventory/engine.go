package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
	"github.com/jhoicas/stock-ledger-api/pkg/metrics"
)

// Nombres de operación (logs y métricas).
const (
	OpReceive   = "receive"
	OpIssue     = "issue"
	OpReconcile = "reconcile"
)

// Actor identidad del caller (ya autenticado por la capa HTTP).
type Actor struct {
	UserID string
	Role   string
}

// IsAdmin indica si el actor tiene rol administrador.
func (a Actor) IsAdmin() bool {
	return a.Role == entity.RoleAdmin
}

// LedgerResult resultado exitoso de una operación del ledger.
// Movement es nil y Changed false cuando un ajuste no cambia la cantidad.
type LedgerResult struct {
	Item     *entity.Product
	Movement *entity.StockMovement
	LowStock bool
	Changed  bool
}

// LedgerEngine única autoridad para modificar la cantidad de un producto.
// Cada operación toma el lock del producto y corre en una transacción que bloquea la fila
// (SELECT FOR UPDATE), actualiza la cantidad y agrega el movimiento.
type LedgerEngine struct {
	txRunner         TxRunner
	locker           ItemLocker
	enforceOwnership bool
	metrics          *metrics.Metrics
	log              *logger.Logger
	now              func() time.Time
}

// EngineOption configura el LedgerEngine.
type EngineOption func(*LedgerEngine)

// WithOwnershipCheck restringe las operaciones al dueño del producto o a un admin.
func WithOwnershipCheck(enabled bool) EngineOption {
	return func(e *LedgerEngine) { e.enforceOwnership = enabled }
}

// WithMetrics registra movimientos, rechazos y duraciones.
func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *LedgerEngine) { e.metrics = m }
}

// WithLogger fija el logger del motor.
func WithLogger(l *logger.Logger) EngineOption {
	return func(e *LedgerEngine) { e.log = l.Component("ledger") }
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) EngineOption {
	return func(e *LedgerEngine) { e.now = now }
}

// NewLedgerEngine construye el motor.
func NewLedgerEngine(txRunner TxRunner, locker ItemLocker, opts ...EngineOption) *LedgerEngine {
	e := &LedgerEngine{
		txRunner: txRunner,
		locker:   locker,
		log:      logger.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Receive registra una entrada: quantity += amount, movimiento in con change = +amount.
func (e *LedgerEngine) Receive(ctx context.Context, itemID string, amount int64, note string, actor Actor) (*LedgerResult, error) {
	if amount <= 0 {
		return e.reject(OpReceive, fmt.Errorf("%w: la cantidad debe ser positiva", domain.ErrInvalidInput))
	}
	return e.apply(ctx, OpReceive, itemID, note, actor, entity.MovementTypeIn, entity.DefaultNoteIn,
		func(q int64) (int64, int64, error) { return inventory.Receive(q, amount) })
}

// Issue registra una salida: quantity -= amount, movimiento out con change = -amount.
// Falla con ErrInsufficientStock si quantity < amount; nunca hay cumplimiento parcial.
func (e *LedgerEngine) Issue(ctx context.Context, itemID string, amount int64, note string, actor Actor) (*LedgerResult, error) {
	if amount <= 0 {
		return e.reject(OpIssue, fmt.Errorf("%w: la cantidad debe ser positiva", domain.ErrInvalidInput))
	}
	return e.apply(ctx, OpIssue, itemID, note, actor, entity.MovementTypeOut, entity.DefaultNoteOut,
		func(q int64) (int64, int64, error) { return inventory.Issue(q, amount) })
}

// Reconcile fija la cantidad a newQuantity y registra la diferencia como adjustment.
// Si la diferencia es cero no escribe nada y devuelve Changed=false.
func (e *LedgerEngine) Reconcile(ctx context.Context, itemID string, newQuantity int64, note string, actor Actor) (*LedgerResult, error) {
	if newQuantity < 0 {
		return e.reject(OpReconcile, fmt.Errorf("%w: la cantidad no puede ser negativa", domain.ErrInvalidInput))
	}
	return e.apply(ctx, OpReconcile, itemID, note, actor, entity.MovementTypeAdjustment, entity.DefaultNoteAdjustment,
		func(q int64) (int64, int64, error) { return inventory.Reconcile(q, newQuantity) })
}

type computeFunc func(quantity int64) (newQuantity, change int64, err error)

func (e *LedgerEngine) apply(
	ctx context.Context,
	op, itemID, note string,
	actor Actor,
	movementType, defaultNote string,
	compute computeFunc,
) (*LedgerResult, error) {
	start := e.now()
	defer func() { e.metrics.ObserveDuration(op, e.now().Sub(start).Seconds()) }()

	if _, err := uuid.Parse(itemID); err != nil {
		return e.reject(op, domain.ErrInvalidIdentifier)
	}
	if len([]rune(note)) > entity.MovementNoteMaxLen {
		return e.reject(op, fmt.Errorf("%w: la nota excede %d caracteres", domain.ErrInvalidInput, entity.MovementNoteMaxLen))
	}
	if note == "" {
		note = defaultNote
	}

	unlock, err := e.locker.Lock(ctx, itemID)
	if err != nil {
		return e.reject(op, lockErr(err))
	}
	defer unlock()

	var result *LedgerResult
	err = e.txRunner.Run(ctx, func(productRepo repository.ProductRepository, movRepo repository.StockMovementRepository) error {
		product, err := productRepo.GetForUpdate(ctx, itemID)
		if err != nil {
			return storageErr("get product", err)
		}
		if product == nil || product.IsDeleted {
			return domain.ErrNotFound
		}
		if e.enforceOwnership && !product.OwnedBy(actor.UserID) && !actor.IsAdmin() {
			return domain.ErrForbidden
		}

		newQty, change, err := compute(product.Quantity)
		if err != nil {
			return err
		}
		if change == 0 {
			result = &LedgerResult{Item: product, LowStock: product.IsLowStock()}
			return nil
		}

		now := e.now()
		if err := productRepo.UpdateQuantity(ctx, product.ID, newQty); err != nil {
			return storageErr("update quantity", err)
		}
		product.Quantity = newQty
		product.UpdatedAt = now

		mov := &entity.StockMovement{
			ID:        uuid.New().String(),
			ProductID: product.ID,
			UserID:    actor.UserID,
			Change:    change,
			Type:      movementType,
			Note:      note,
			CreatedAt: now,
		}
		if err := movRepo.Create(ctx, mov); err != nil {
			return storageErr("create movement", err)
		}
		result = &LedgerResult{Item: product, Movement: mov, LowStock: product.IsLowStock(), Changed: true}
		return nil
	})
	if err != nil {
		if !isLedgerOutcome(err) {
			err = storageErr("transaction", err)
		}
		return e.reject(op, err)
	}

	if result.Changed {
		e.metrics.ObserveMovement(movementType)
		e.log.Info().
			Str("op", op).
			Str("product_id", itemID).
			Str("user_id", actor.UserID).
			Int64("change", result.Movement.Change).
			Int64("quantity", result.Item.Quantity).
			Bool("low_stock", result.LowStock).
			Msg("movimiento de stock registrado")
	} else {
		e.log.Debug().Str("op", op).Str("product_id", itemID).Msg("ajuste sin cambios")
	}
	return result, nil
}

func (e *LedgerEngine) reject(op string, err error) (*LedgerResult, error) {
	reason := rejectReason(err)
	e.metrics.ObserveRejected(op, reason)
	ev := e.log.Debug()
	if reason == "storage_failure" || reason == "lock_timeout" {
		ev = e.log.Error()
	}
	ev.Err(err).Str("op", op).Str("reason", reason).Msg("operación de stock rechazada")
	return nil, err
}

// storageErr envuelve un error de persistencia como ErrStorageFailure conservando la causa.
func storageErr(op string, err error) error {
	if errors.Is(err, domain.ErrStorageFailure) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrStorageFailure, op, err)
}

// lockErr distingue la espera agotada (ctx cancelado o vencido) de una falla del
// backend del lock, que se reporta como ErrStorageFailure.
func lockErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", domain.ErrLockTimeout, err)
	}
	return storageErr("lock", err)
}

var ledgerOutcomes = []error{
	domain.ErrNotFound,
	domain.ErrInsufficientStock,
	domain.ErrInvalidInput,
	domain.ErrInvalidIdentifier,
	domain.ErrForbidden,
	domain.ErrStorageFailure,
	domain.ErrLockTimeout,
}

func isLedgerOutcome(err error) bool {
	for _, target := range ledgerOutcomes {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidIdentifier):
		return "invalid_identifier"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrLockTimeout):
		return "lock_timeout"
	default:
		return "storage_failure"
	}
}
