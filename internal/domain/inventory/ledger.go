package inventory

import (
	"sort"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// Reglas puras del ledger de stock (servicio de dominio, sin I/O).
// Cada función devuelve el change a registrar en el movimiento; nunca deja cantidad negativa.

// Receive calcula una entrada: quantity += amount.
func Receive(quantity, amount int64) (newQuantity, change int64, err error) {
	if amount <= 0 {
		return quantity, 0, domain.ErrInvalidInput
	}
	return quantity + amount, amount, nil
}

// Issue calcula una salida: quantity -= amount. Todo o nada: sin cumplimiento parcial.
func Issue(quantity, amount int64) (newQuantity, change int64, err error) {
	if amount <= 0 {
		return quantity, 0, domain.ErrInvalidInput
	}
	if quantity < amount {
		return quantity, 0, domain.ErrInsufficientStock
	}
	return quantity - amount, -amount, nil
}

// Reconcile calcula un ajuste a un valor absoluto. change == 0 significa que no hay nada que registrar.
func Reconcile(quantity, target int64) (newQuantity, change int64, err error) {
	if target < 0 {
		return quantity, 0, domain.ErrInvalidInput
	}
	return target, target - quantity, nil
}

// Replay reconstruye la cantidad sumando los change del log.
func Replay(movements []*entity.StockMovement) int64 {
	var total int64
	for _, m := range movements {
		total += m.Change
	}
	return total
}

// CategoryCount cantidad de productos por categoría.
type CategoryCount struct {
	Category string
	Count    int64
}

// Stats agregados de inventario de un dueño.
type Stats struct {
	TotalItems        int64
	TotalQuantity     int64
	LowStockCount     int64
	CategoryBreakdown []CategoryCount
}

// ComputeStats agrega en memoria sobre el conjunto de productos ya filtrado.
// Es la definición canónica del total actual: se re-deriva siempre de los productos.
func ComputeStats(products []*entity.Product) Stats {
	st := Stats{CategoryBreakdown: []CategoryCount{}}
	byCategory := make(map[string]int64)
	for _, p := range products {
		if p.IsDeleted {
			continue
		}
		st.TotalItems++
		st.TotalQuantity += p.Quantity
		if p.IsLowStock() {
			st.LowStockCount++
		}
		byCategory[p.Category]++
	}
	for cat, n := range byCategory {
		st.CategoryBreakdown = append(st.CategoryBreakdown, CategoryCount{Category: cat, Count: n})
	}
	sort.Slice(st.CategoryBreakdown, func(i, j int) bool {
		if st.CategoryBreakdown[i].Count != st.CategoryBreakdown[j].Count {
			return st.CategoryBreakdown[i].Count > st.CategoryBreakdown[j].Count
		}
		return st.CategoryBreakdown[i].Category < st.CategoryBreakdown[j].Category
	})
	return st
}
