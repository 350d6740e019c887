package dto

import (
	"encoding/json"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// GlobalStatsResponse métricas globales del panel de administración.
type GlobalStatsResponse struct {
	TotalUsers    int64 `json:"total_users"`
	TotalProducts int64 `json:"total_products"`
	TotalStock    int64 `json:"total_stock"`
	TotalLogs     int64 `json:"total_logs"`
}

// AuditLogResponse entrada del log de auditoría.
type AuditLogResponse struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Action    string          `json:"action"`
	Details   json.RawMessage `json:"details"`
	CreatedAt time.Time       `json:"created_at"`
}

// DriftReportResponse resultado de la auditoría del ledger para un producto.
type DriftReportResponse struct {
	ProductID string `json:"product_id"`
	Stored    int64  `json:"stored"`
	Replayed  int64  `json:"replayed"`
	Drift     int64  `json:"drift"`
	Repaired  bool   `json:"repaired"`
}

// FromAuditLogs mapea la lista (nunca nil).
func FromAuditLogs(list []*entity.AuditLog) []AuditLogResponse {
	out := make([]AuditLogResponse, 0, len(list))
	for _, l := range list {
		details := l.Details
		if len(details) == 0 {
			details = json.RawMessage(`{}`)
		}
		out = append(out, AuditLogResponse{ID: l.ID, UserID: l.UserID, Action: l.Action, Details: details, CreatedAt: l.CreatedAt})
	}
	return out
}

// AuditLogQuery filtros de GET /api/admin/audit-logs; from/to aceptan RFC3339 o AAAA-MM-DD.
type AuditLogQuery struct {
	UserID string `query:"userId"`
	Action string `query:"action"`
	From   string `query:"from"`
	To     string `query:"to"`
}
