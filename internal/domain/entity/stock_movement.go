package entity

import "time"

// Tipos de movimiento de stock.
const (
	MovementTypeIn         = "in"         // entrada
	MovementTypeOut        = "out"        // salida
	MovementTypeAdjustment = "adjustment" // ajuste manual (conteo físico)
)

// MovementNoteMaxLen longitud máxima de la nota de un movimiento.
const MovementNoteMaxLen = 200

// Notas por defecto cuando el caller no envía una.
const (
	DefaultNoteIn         = "Entrada de stock"
	DefaultNoteOut        = "Salida de stock"
	DefaultNoteAdjustment = "Ajuste manual"
	DefaultNoteInitial    = "Stock inicial"
)

// StockMovement registro inmutable de un cambio de cantidad sobre un producto.
// Change nunca es cero: positivo para in, negativo para out, con signo para adjustment.
type StockMovement struct {
	ID        string
	ProductID string
	UserID    string // actor
	Change    int64
	Type      string // in, out, adjustment
	Note      string
	CreatedAt time.Time
}

// IsValidMovementType indica si t es uno de los tipos soportados.
func IsValidMovementType(t string) bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeAdjustment:
		return true
	}
	return false
}

// ItemMovement movimiento anotado con los datos del actor (historial por producto).
type ItemMovement struct {
	StockMovement
	UserName  string
	UserEmail string
}

// UserMovement movimiento anotado con el nombre del producto (historial por usuario).
type UserMovement struct {
	StockMovement
	ProductName string
}

// TypeLabel etiqueta legible del tipo de movimiento.
func (m *StockMovement) TypeLabel() string {
	switch m.Type {
	case MovementTypeIn:
		return "Entrada"
	case MovementTypeOut:
		return "Salida"
	case MovementTypeAdjustment:
		return "Ajuste"
	}
	return m.Type
}

// IsIncoming indica si el movimiento aumentó el stock.
func (m *StockMovement) IsIncoming() bool {
	return m.Type == MovementTypeIn || m.Change > 0
}

// IsOutgoing indica si el movimiento redujo el stock.
func (m *StockMovement) IsOutgoing() bool {
	return m.Type == MovementTypeOut || m.Change < 0
}
