package entity

import (
	"encoding/json"
	"time"
)

// Acciones registradas en el log de auditoría.
const (
	AuditCreateProduct     = "create_product"
	AuditUpdateProduct     = "update_product"
	AuditDeleteProduct     = "delete_product"
	AuditHardDeleteProduct = "hard_delete_product"
	AuditUpdateUser        = "update_user"
	AuditDeleteUser        = "delete_user"
	AuditHardDeleteUser    = "hard_delete_user"
	AuditRepairLedger      = "repair_ledger"
)

// AuditLog entrada append-only con acciones administrativas y de catálogo.
type AuditLog struct {
	ID        string
	UserID    string
	Action    string
	Details   json.RawMessage
	CreatedAt time.Time
}
