package dto

import (
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// StockChangeRequest body de POST /api/stock/in y /api/stock/out.
type StockChangeRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
	Note      string `json:"note" validate:"max=200"`
}

// StockAdjustRequest body de POST /api/stock/adjust. NewQuantity es el valor absoluto contado.
type StockAdjustRequest struct {
	ProductID   string `json:"product_id" validate:"required"`
	NewQuantity *int64 `json:"new_quantity" validate:"required,min=0"`
	Note        string `json:"note" validate:"max=200"`
}

// MovementResponse salida de un movimiento; los campos del actor o del producto
// solo vienen en los historiales que los anotan.
type MovementResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	UserID      string    `json:"user_id"`
	Change      int64     `json:"change"`
	Type        string    `json:"type"`
	TypeLabel   string    `json:"type_label"`
	Note        string    `json:"note"`
	CreatedAt   time.Time `json:"created_at"`
	UserName    string    `json:"user_name,omitempty"`
	UserEmail   string    `json:"user_email,omitempty"`
	ProductName string    `json:"product_name,omitempty"`
}

// NotificationDTO aviso de stock bajo adjunto a las respuestas de movimiento.
type NotificationDTO struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// StockOperationResponse salida de in/out/adjust.
type StockOperationResponse struct {
	Message      string            `json:"message"`
	Product      ProductResponse   `json:"product"`
	Movement     *MovementResponse `json:"movement,omitempty"`
	Changed      bool              `json:"changed"`
	Notification *NotificationDTO  `json:"notification,omitempty"`
}

// FromMovement mapea un movimiento sin anotaciones.
func FromMovement(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:        m.ID,
		ProductID: m.ProductID,
		UserID:    m.UserID,
		Change:    m.Change,
		Type:      m.Type,
		TypeLabel: m.TypeLabel(),
		Note:      m.Note,
		CreatedAt: m.CreatedAt,
	}
}

// FromItemMovements historial de un producto con datos del actor.
func FromItemMovements(list []*entity.ItemMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		r := FromMovement(&m.StockMovement)
		r.UserName, r.UserEmail = m.UserName, m.UserEmail
		out = append(out, r)
	}
	return out
}

// FromUserMovements historial de un usuario con el nombre del producto.
func FromUserMovements(list []*entity.UserMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		r := FromMovement(&m.StockMovement)
		r.ProductName = m.ProductName
		out = append(out, r)
	}
	return out
}

// LowStockNotification construye el aviso si el producto está en o bajo su umbral; nil si no.
func LowStockNotification(p *entity.Product) *NotificationDTO {
	if !p.IsLowStock() {
		return nil
	}
	units := "unidades restantes"
	if p.Quantity == 1 {
		units = "unidad restante"
	}
	return &NotificationDTO{
		Type:    "warning",
		Title:   "Stock bajo",
		Message: fmt.Sprintf("Atención: el producto %q tiene stock bajo (%d %s).", p.Name, p.Quantity, units),
	}
}
