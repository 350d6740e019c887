package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// AuditLogFilter filtros del listado de auditoría. Limit <= 0 usa el valor por defecto.
type AuditLogFilter struct {
	UserID string
	Action string
	From   *time.Time
	To     *time.Time
	Limit  int
}

// AuditLogRepository puerto del log de auditoría (append-only).
type AuditLogRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	// List devuelve las entradas más recientes primero.
	List(ctx context.Context, filter AuditLogFilter) ([]*entity.AuditLog, error)
}
